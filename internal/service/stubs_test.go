package service_test

import (
	"context"
	"time"

	"github.com/crisgp1/orodetamar-sub000/internal/model"
	"github.com/crisgp1/orodetamar-sub000/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// All stubs return a nil DB(), so services run their transactional closures
// with a nil tx.

// ── MovimientoRepository ─────────────────────────────────────────────────────

type stubMovimientoRepo struct {
	movs      []model.MovimientoInventario
	bloqueos  [][]uint
	productos *stubProductoRepo
}

var _ repository.MovimientoRepository = (*stubMovimientoRepo)(nil)

func newStubMovimientoRepo(productos *stubProductoRepo) *stubMovimientoRepo {
	return &stubMovimientoRepo{productos: productos}
}

func (r *stubMovimientoRepo) Registrar(_ context.Context, _ *gorm.DB, m *model.MovimientoInventario) error {
	if err := m.Validar(); err != nil {
		return err
	}
	m.ID = uint(len(r.movs) + 1)
	m.CreatedAt = time.Now()
	r.movs = append(r.movs, *m)
	return nil
}

func (r *stubMovimientoRepo) Disponible(_ context.Context, _ *gorm.DB, productoID uint) (int, error) {
	total := 0
	for _, m := range r.movs {
		if m.ProductoID == productoID {
			total += m.Cantidad
		}
	}
	return total, nil
}

func (r *stubMovimientoRepo) DisponiblePorProducto(_ context.Context) (map[uint]int, error) {
	out := make(map[uint]int)
	for _, m := range r.movs {
		out[m.ProductoID] += m.Cantidad
	}
	return out, nil
}

func (r *stubMovimientoRepo) Bloquear(_ context.Context, _ *gorm.DB, ids []uint) error {
	r.bloqueos = append(r.bloqueos, append([]uint(nil), ids...))
	return nil
}

func (r *stubMovimientoRepo) List(_ context.Context, f repository.MovimientoFilter) ([]model.MovimientoInventario, int64, error) {
	var out []model.MovimientoInventario
	for _, m := range r.movs {
		if f.ProductoID != nil && m.ProductoID != *f.ProductoID {
			continue
		}
		if f.Tipo != "" && string(m.Tipo) != f.Tipo {
			continue
		}
		if f.PedidoID != nil && (m.PedidoID == nil || *m.PedidoID != *f.PedidoID) {
			continue
		}
		if f.ConsignacionID != nil && (m.ConsignacionID == nil || *m.ConsignacionID != *f.ConsignacionID) {
			continue
		}
		out = append(out, m)
	}
	return out, int64(len(out)), nil
}

func (r *stubMovimientoRepo) DB() *gorm.DB { return nil }

// porTipo returns the movements of one kind.
func (r *stubMovimientoRepo) porTipo(tipo model.TipoMovimiento) []model.MovimientoInventario {
	var out []model.MovimientoInventario
	for _, m := range r.movs {
		if m.Tipo == tipo {
			out = append(out, m)
		}
	}
	return out
}

// sembrar writes an opening AJUSTE so the product starts with stock.
func (r *stubMovimientoRepo) sembrar(productoID uint, cantidad int) {
	_ = r.Registrar(context.Background(), nil, &model.MovimientoInventario{
		ProductoID: productoID,
		Cantidad:   cantidad,
		Tipo:       model.MovAjuste,
		Nota:       "inicial",
	})
}

func (r *stubMovimientoRepo) stock(productoID uint) int {
	n, _ := r.Disponible(context.Background(), nil, productoID)
	return n
}

// ── ProductoRepository ───────────────────────────────────────────────────────

type stubProductoRepo struct {
	productos map[uint]*model.Producto
}

var _ repository.ProductoRepository = (*stubProductoRepo)(nil)

func newStubProductoRepo() *stubProductoRepo {
	return &stubProductoRepo{productos: make(map[uint]*model.Producto)}
}

func (r *stubProductoRepo) Create(_ context.Context, p *model.Producto) error {
	p.ID = uint(len(r.productos) + 1)
	r.productos[p.ID] = p
	return nil
}

func (r *stubProductoRepo) FindByID(_ context.Context, id uint) (*model.Producto, error) {
	p, ok := r.productos[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *stubProductoRepo) List(_ context.Context, f repository.ProductoFilter) ([]model.Producto, error) {
	var out []model.Producto
	for id := uint(1); id <= uint(len(r.productos)); id++ {
		p, ok := r.productos[id]
		if !ok {
			continue
		}
		switch f.Activo {
		case "all":
		case "false":
			if p.Activo {
				continue
			}
		default:
			if !p.Activo {
				continue
			}
		}
		out = append(out, *p)
	}
	return out, nil
}

func (r *stubProductoRepo) Update(_ context.Context, _ *gorm.DB, p *model.Producto) error {
	if _, ok := r.productos[p.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *p
	r.productos[p.ID] = &cp
	return nil
}

func (r *stubProductoRepo) SetActivo(_ context.Context, id uint, activo bool) error {
	p, ok := r.productos[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	p.Activo = activo
	return nil
}

func (r *stubProductoRepo) DB() *gorm.DB { return nil }

func (r *stubProductoRepo) nuevo(nombre, precio string) *model.Producto {
	p := &model.Producto{
		Nombre:       nombre,
		Presentacion: "frasco 250 g",
		PrecioVenta:  decimal.RequireFromString(precio),
		Activo:       true,
	}
	_ = r.Create(context.Background(), p)
	return p
}

// ── HistorialPrecioRepository ────────────────────────────────────────────────

type stubHistorialPrecioRepo struct {
	rows []model.HistorialPrecio
}

var _ repository.HistorialPrecioRepository = (*stubHistorialPrecioRepo)(nil)

func (r *stubHistorialPrecioRepo) Registrar(_ context.Context, _ *gorm.DB, h *model.HistorialPrecio) error {
	h.ID = uint(len(r.rows) + 1)
	r.rows = append(r.rows, *h)
	return nil
}

func (r *stubHistorialPrecioRepo) ListByProducto(_ context.Context, productoID uint, _, _ int) ([]model.HistorialPrecio, int64, error) {
	var out []model.HistorialPrecio
	for i := len(r.rows) - 1; i >= 0; i-- {
		if r.rows[i].ProductoID == productoID {
			out = append(out, r.rows[i])
		}
	}
	return out, int64(len(out)), nil
}

// ── ClienteRepository ────────────────────────────────────────────────────────

type stubClienteRepo struct {
	clientes map[uint]*model.Cliente
}

var _ repository.ClienteRepository = (*stubClienteRepo)(nil)

func newStubClienteRepo() *stubClienteRepo {
	return &stubClienteRepo{clientes: make(map[uint]*model.Cliente)}
}

func (r *stubClienteRepo) Create(_ context.Context, c *model.Cliente) error {
	c.ID = uint(len(r.clientes) + 1)
	r.clientes[c.ID] = c
	return nil
}

func (r *stubClienteRepo) FindByID(_ context.Context, id uint) (*model.Cliente, error) {
	c, ok := r.clientes[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *stubClienteRepo) List(_ context.Context, _ string) ([]model.Cliente, error) {
	var out []model.Cliente
	for _, c := range r.clientes {
		if c.Activo {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (r *stubClienteRepo) nuevo(nombre string) *model.Cliente {
	c := &model.Cliente{Nombre: nombre, Activo: true}
	_ = r.Create(context.Background(), c)
	return c
}

// ── MateriaPrimaRepository ───────────────────────────────────────────────────

type stubMateriaPrimaRepo struct {
	materias map[uint]*model.MateriaPrima
	movs     []model.MovimientoMateriaPrima
}

var _ repository.MateriaPrimaRepository = (*stubMateriaPrimaRepo)(nil)

func newStubMateriaPrimaRepo() *stubMateriaPrimaRepo {
	return &stubMateriaPrimaRepo{materias: make(map[uint]*model.MateriaPrima)}
}

func (r *stubMateriaPrimaRepo) Create(_ context.Context, m *model.MateriaPrima) error {
	m.ID = uint(len(r.materias) + 1)
	r.materias[m.ID] = m
	return nil
}

func (r *stubMateriaPrimaRepo) FindByID(_ context.Context, id uint) (*model.MateriaPrima, error) {
	m, ok := r.materias[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *m
	return &cp, nil
}

func (r *stubMateriaPrimaRepo) List(_ context.Context, soloActivas bool) ([]model.MateriaPrima, error) {
	var out []model.MateriaPrima
	for id := uint(1); id <= uint(len(r.materias)); id++ {
		m := r.materias[id]
		if soloActivas && !m.Activo {
			continue
		}
		out = append(out, *m)
	}
	return out, nil
}

func (r *stubMateriaPrimaRepo) ActualizarCosto(_ context.Context, _ *gorm.DB, id uint, costo decimal.Decimal) error {
	m, ok := r.materias[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	m.CostoUnitario = costo
	return nil
}

func (r *stubMateriaPrimaRepo) RegistrarMovimiento(_ context.Context, _ *gorm.DB, m *model.MovimientoMateriaPrima) error {
	if err := m.Validar(); err != nil {
		return err
	}
	m.ID = uint(len(r.movs) + 1)
	m.CreatedAt = time.Now()
	r.movs = append(r.movs, *m)
	return nil
}

func (r *stubMateriaPrimaRepo) Disponible(_ context.Context, _ *gorm.DB, id uint) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, m := range r.movs {
		if m.MateriaPrimaID == id {
			total = total.Add(m.Cantidad)
		}
	}
	return total, nil
}

func (r *stubMateriaPrimaRepo) DisponiblePorMateria(_ context.Context) (map[uint]decimal.Decimal, error) {
	out := make(map[uint]decimal.Decimal)
	for _, m := range r.movs {
		out[m.MateriaPrimaID] = out[m.MateriaPrimaID].Add(m.Cantidad)
	}
	return out, nil
}

func (r *stubMateriaPrimaRepo) Bloquear(_ context.Context, _ *gorm.DB, _ []uint) error { return nil }

func (r *stubMateriaPrimaRepo) ListMovimientos(_ context.Context, f repository.MovimientoMPFilter) ([]model.MovimientoMateriaPrima, int64, error) {
	var out []model.MovimientoMateriaPrima
	for _, m := range r.movs {
		if f.MateriaPrimaID != nil && m.MateriaPrimaID != *f.MateriaPrimaID {
			continue
		}
		out = append(out, m)
	}
	return out, int64(len(out)), nil
}

func (r *stubMateriaPrimaRepo) DB() *gorm.DB { return nil }

func (r *stubMateriaPrimaRepo) nueva(nombre, unidad, costo, stock string) *model.MateriaPrima {
	m := &model.MateriaPrima{
		Nombre:        nombre,
		UnidadMedida:  unidad,
		CostoUnitario: decimal.RequireFromString(costo),
		Activo:        true,
	}
	_ = r.Create(context.Background(), m)
	if cant := decimal.RequireFromString(stock); cant.IsPositive() {
		_ = r.RegistrarMovimiento(context.Background(), nil, &model.MovimientoMateriaPrima{
			MateriaPrimaID: m.ID,
			Cantidad:       cant,
			Tipo:           model.MovMPCompra,
		})
	}
	return m
}

func (r *stubMateriaPrimaRepo) stock(id uint) decimal.Decimal {
	d, _ := r.Disponible(context.Background(), nil, id)
	return d
}

// ── RecetaRepository ─────────────────────────────────────────────────────────

type stubRecetaRepo struct {
	lineas   []model.Receta
	materias *stubMateriaPrimaRepo
}

var _ repository.RecetaRepository = (*stubRecetaRepo)(nil)

func (r *stubRecetaRepo) Guardar(_ context.Context, l *model.Receta) error {
	for i := range r.lineas {
		if r.lineas[i].ProductoID == l.ProductoID && r.lineas[i].MateriaPrimaID == l.MateriaPrimaID {
			r.lineas[i].CantidadPorUnidad = l.CantidadPorUnidad
			r.lineas[i].UnidadMedida = l.UnidadMedida
			l.ID = r.lineas[i].ID
			return nil
		}
	}
	l.ID = uint(len(r.lineas) + 1)
	r.lineas = append(r.lineas, *l)
	return nil
}

func (r *stubRecetaRepo) Eliminar(_ context.Context, productoID, materiaPrimaID uint) (bool, error) {
	for i := range r.lineas {
		if r.lineas[i].ProductoID == productoID && r.lineas[i].MateriaPrimaID == materiaPrimaID {
			r.lineas = append(r.lineas[:i], r.lineas[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (r *stubRecetaRepo) ListByProducto(_ context.Context, _ *gorm.DB, productoID uint) ([]model.Receta, error) {
	var out []model.Receta
	for _, l := range r.lineas {
		if l.ProductoID != productoID {
			continue
		}
		if mp, ok := r.materias.materias[l.MateriaPrimaID]; ok {
			cp := *mp
			l.MateriaPrima = &cp
		}
		out = append(out, l)
	}
	return out, nil
}

// ── ConsignacionRepository ───────────────────────────────────────────────────

type stubConsignacionRepo struct {
	consignaciones map[uint]*model.Consignacion
	pagos          []model.PagoConsignacion
	nextDetalleID  uint
	productos      *stubProductoRepo
	clientes       *stubClienteRepo
}

var _ repository.ConsignacionRepository = (*stubConsignacionRepo)(nil)

func newStubConsignacionRepo(productos *stubProductoRepo, clientes *stubClienteRepo) *stubConsignacionRepo {
	return &stubConsignacionRepo{
		consignaciones: make(map[uint]*model.Consignacion),
		productos:      productos,
		clientes:       clientes,
	}
}

func (r *stubConsignacionRepo) Create(_ context.Context, _ *gorm.DB, c *model.Consignacion) error {
	c.ID = uint(len(r.consignaciones) + 1)
	c.CreatedAt = time.Now()
	for i := range c.Detalles {
		r.nextDetalleID++
		c.Detalles[i].ID = r.nextDetalleID
		c.Detalles[i].ConsignacionID = c.ID
	}
	cp := *c
	cp.Detalles = append([]model.ConsignacionDetalle(nil), c.Detalles...)
	r.consignaciones[c.ID] = &cp
	return nil
}

// cargar returns a detached copy with the associations preloaded.
func (r *stubConsignacionRepo) cargar(id uint) (*model.Consignacion, error) {
	c, ok := r.consignaciones[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *c
	cp.Detalles = append([]model.ConsignacionDetalle(nil), c.Detalles...)
	for i := range cp.Detalles {
		if p, ok := r.productos.productos[cp.Detalles[i].ProductoID]; ok {
			pc := *p
			cp.Detalles[i].Producto = &pc
		}
	}
	if cl, ok := r.clientes.clientes[cp.ClienteID]; ok {
		clc := *cl
		cp.Cliente = &clc
	}
	cp.Pagos = nil
	for _, p := range r.pagos {
		if p.ConsignacionID == id {
			cp.Pagos = append(cp.Pagos, p)
		}
	}
	return &cp, nil
}

func (r *stubConsignacionRepo) FindByID(_ context.Context, id uint) (*model.Consignacion, error) {
	return r.cargar(id)
}

func (r *stubConsignacionRepo) FindByIDForUpdate(_ context.Context, _ *gorm.DB, id uint) (*model.Consignacion, error) {
	return r.cargar(id)
}

func (r *stubConsignacionRepo) UpdateDetalle(_ context.Context, _ *gorm.DB, d *model.ConsignacionDetalle) error {
	c, ok := r.consignaciones[d.ConsignacionID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	for i := range c.Detalles {
		if c.Detalles[i].ID == d.ID {
			c.Detalles[i].CantidadVendida = d.CantidadVendida
			c.Detalles[i].CantidadDevuelta = d.CantidadDevuelta
			c.Detalles[i].DestinoDevolucion = d.DestinoDevolucion
			c.Detalles[i].NotaFaltante = d.NotaFaltante
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *stubConsignacionRepo) ActualizarEstado(_ context.Context, _ *gorm.DB, id uint, estadoActual model.EstadoConsignacion, campos map[string]interface{}) (bool, error) {
	c, ok := r.consignaciones[id]
	if !ok || c.Estado != estadoActual {
		return false, nil
	}
	for k, v := range campos {
		switch k {
		case "estado":
			c.Estado = v.(model.EstadoConsignacion)
		case "total_vendido":
			c.TotalVendido = v.(decimal.Decimal)
		case "total_cobrado":
			c.TotalCobrado = v.(decimal.Decimal)
		case "fecha_liquidacion":
			t := v.(time.Time)
			c.FechaLiquidacion = &t
		}
	}
	return true, nil
}

func (r *stubConsignacionRepo) CreatePago(_ context.Context, _ *gorm.DB, p *model.PagoConsignacion) error {
	p.ID = uint(len(r.pagos) + 1)
	r.pagos = append(r.pagos, *p)
	return nil
}

func (r *stubConsignacionRepo) SumPagos(_ context.Context, _ *gorm.DB, id uint) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, p := range r.pagos {
		if p.ConsignacionID == id {
			total = total.Add(p.Monto)
		}
	}
	return total, nil
}

func (r *stubConsignacionRepo) List(_ context.Context, _ repository.ConsignacionFilter) ([]model.Consignacion, int64, error) {
	var out []model.Consignacion
	for id := uint(1); id <= uint(len(r.consignaciones)); id++ {
		c, _ := r.cargar(id)
		out = append(out, *c)
	}
	return out, int64(len(out)), nil
}

func (r *stubConsignacionRepo) ListSaldoPendienteAnteriores(_ context.Context, corte time.Time) ([]model.Consignacion, error) {
	var out []model.Consignacion
	for id := uint(1); id <= uint(len(r.consignaciones)); id++ {
		c, _ := r.cargar(id)
		if c.Estado == model.ConsignacionSaldoPendiente && c.FechaEntrega.Before(corte) {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (r *stubConsignacionRepo) DB() *gorm.DB { return nil }

// ── PedidoRepository ─────────────────────────────────────────────────────────

type stubPedidoRepo struct {
	pedidos       map[uint]*model.Pedido
	pagos         []model.PagoPedido
	comprobantes  []model.ComprobantePago
	nextDetalleID uint
	productos     *stubProductoRepo
}

var _ repository.PedidoRepository = (*stubPedidoRepo)(nil)

func newStubPedidoRepo(productos *stubProductoRepo) *stubPedidoRepo {
	return &stubPedidoRepo{pedidos: make(map[uint]*model.Pedido), productos: productos}
}

func (r *stubPedidoRepo) Create(_ context.Context, _ *gorm.DB, p *model.Pedido) error {
	p.ID = uint(len(r.pedidos) + 1)
	p.CreatedAt = time.Now()
	r.asignarLineas(p.ID, p.Detalles)
	cp := *p
	cp.Detalles = append([]model.PedidoDetalle(nil), p.Detalles...)
	r.pedidos[p.ID] = &cp
	return nil
}

func (r *stubPedidoRepo) asignarLineas(pedidoID uint, lineas []model.PedidoDetalle) {
	for i := range lineas {
		r.nextDetalleID++
		lineas[i].ID = r.nextDetalleID
		lineas[i].PedidoID = pedidoID
	}
}

func (r *stubPedidoRepo) cargar(id uint) (*model.Pedido, error) {
	p, ok := r.pedidos[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *p
	cp.Detalles = append([]model.PedidoDetalle(nil), p.Detalles...)
	for i := range cp.Detalles {
		if prod, ok := r.productos.productos[cp.Detalles[i].ProductoID]; ok {
			pc := *prod
			cp.Detalles[i].Producto = &pc
		}
	}
	cp.Pagos, cp.Comprobantes = nil, nil
	for _, pg := range r.pagos {
		if pg.PedidoID == id {
			cp.Pagos = append(cp.Pagos, pg)
		}
	}
	for _, c := range r.comprobantes {
		if c.PedidoID == id {
			cp.Comprobantes = append(cp.Comprobantes, c)
		}
	}
	return &cp, nil
}

func (r *stubPedidoRepo) FindByID(_ context.Context, id uint) (*model.Pedido, error) {
	return r.cargar(id)
}

func (r *stubPedidoRepo) FindByIDForUpdate(_ context.Context, _ *gorm.DB, id uint) (*model.Pedido, error) {
	return r.cargar(id)
}

func (r *stubPedidoRepo) ReemplazarDetalles(_ context.Context, _ *gorm.DB, pedidoID uint, lineas []model.PedidoDetalle) error {
	p, ok := r.pedidos[pedidoID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	r.asignarLineas(pedidoID, lineas)
	p.Detalles = append([]model.PedidoDetalle(nil), lineas...)
	return nil
}

func (r *stubPedidoRepo) ActualizarEstado(_ context.Context, _ *gorm.DB, id uint, estadoActual model.EstadoPedido, campos map[string]interface{}) (bool, error) {
	p, ok := r.pedidos[id]
	if !ok || p.Estado != estadoActual {
		return false, nil
	}
	for k, v := range campos {
		switch k {
		case "estado":
			p.Estado = v.(model.EstadoPedido)
		case "descuento_pct":
			p.DescuentoPct = v.(decimal.Decimal)
		case "subtotal":
			p.Subtotal = v.(decimal.Decimal)
		case "total":
			p.Total = v.(decimal.Decimal)
		case "fecha_entrega":
			t := v.(time.Time)
			p.FechaEntrega = &t
		case "fecha_estimada_entrega":
			t := v.(time.Time)
			p.FechaEstimadaEntrega = &t
		case "retrasado":
			p.Retrasado = v.(bool)
		case "motivo_retraso":
			if s, ok := v.(string); ok {
				p.MotivoRetraso = &s
			} else {
				p.MotivoRetraso = nil
			}
		case "motivo_cancelacion":
			s := v.(string)
			p.MotivoCancelacion = &s
		}
	}
	return true, nil
}

func (r *stubPedidoRepo) CreatePago(_ context.Context, _ *gorm.DB, p *model.PagoPedido) error {
	p.ID = uint(len(r.pagos) + 1)
	r.pagos = append(r.pagos, *p)
	return nil
}

func (r *stubPedidoRepo) SumPagos(_ context.Context, _ *gorm.DB, id uint) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, p := range r.pagos {
		if p.PedidoID == id {
			total = total.Add(p.Monto)
		}
	}
	return total, nil
}

func (r *stubPedidoRepo) List(_ context.Context, _ repository.PedidoFilter) ([]model.Pedido, int64, error) {
	var out []model.Pedido
	for id := uint(1); id <= uint(len(r.pedidos)); id++ {
		p, _ := r.cargar(id)
		out = append(out, *p)
	}
	return out, int64(len(out)), nil
}

func (r *stubPedidoRepo) CreateComprobante(_ context.Context, _ *gorm.DB, c *model.ComprobantePago) error {
	c.ID = uint(len(r.comprobantes) + 1)
	c.CreatedAt = time.Now()
	r.comprobantes = append(r.comprobantes, *c)
	return nil
}

func (r *stubPedidoRepo) FindComprobanteForUpdate(_ context.Context, _ *gorm.DB, pedidoID, comprobanteID uint) (*model.ComprobantePago, error) {
	for _, c := range r.comprobantes {
		if c.ID == comprobanteID && c.PedidoID == pedidoID {
			cp := c
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubPedidoRepo) RevisarComprobante(_ context.Context, _ *gorm.DB, c *model.ComprobantePago) (bool, error) {
	for i := range r.comprobantes {
		if r.comprobantes[i].ID == c.ID {
			if r.comprobantes[i].Estado != model.RevisionPendiente {
				return false, nil
			}
			r.comprobantes[i].Estado = c.Estado
			r.comprobantes[i].NotaRevision = c.NotaRevision
			r.comprobantes[i].RevisadoAt = c.RevisadoAt
			return true, nil
		}
	}
	return false, nil
}

func (r *stubPedidoRepo) DB() *gorm.DB { return nil }

// ── Fixture ──────────────────────────────────────────────────────────────────

type fixture struct {
	productos      *stubProductoRepo
	historial      *stubHistorialPrecioRepo
	clientes       *stubClienteRepo
	movimientos    *stubMovimientoRepo
	materias       *stubMateriaPrimaRepo
	recetas        *stubRecetaRepo
	consignaciones *stubConsignacionRepo
	pedidos        *stubPedidoRepo
}

func newFixture() *fixture {
	productos := newStubProductoRepo()
	clientes := newStubClienteRepo()
	materias := newStubMateriaPrimaRepo()
	return &fixture{
		productos:      productos,
		historial:      &stubHistorialPrecioRepo{},
		clientes:       clientes,
		movimientos:    newStubMovimientoRepo(productos),
		materias:       materias,
		recetas:        &stubRecetaRepo{materias: materias},
		consignaciones: newStubConsignacionRepo(productos, clientes),
		pedidos:        newStubPedidoRepo(productos),
	}
}
