package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/crisgp1/orodetamar-sub000/internal/apierror"
	"github.com/crisgp1/orodetamar-sub000/internal/dto"
	"github.com/crisgp1/orodetamar-sub000/internal/model"
	"github.com/crisgp1/orodetamar-sub000/internal/repository"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ConsignacionService drives goods left at a client's location on credit:
// dispatch, review, settlement, payment collection and cancellation.
type ConsignacionService interface {
	Crear(ctx context.Context, req dto.CrearConsignacionRequest) (*dto.ConsignacionResponse, error)
	Obtener(ctx context.Context, id uint) (*dto.ConsignacionResponse, error)
	Listar(ctx context.Context, filter dto.ConsignacionFilter) (*dto.ConsignacionListResponse, error)
	MarcarEnRevision(ctx context.Context, id uint) (*dto.ConsignacionResponse, error)
	Liquidar(ctx context.Context, id uint, req dto.LiquidarConsignacionRequest) (*dto.ConsignacionResponse, error)
	RegistrarPago(ctx context.Context, id uint, req dto.PagoRequest) (*dto.ConsignacionResponse, error)
	Cancelar(ctx context.Context, id uint) (*dto.ConsignacionResponse, error)
}

type consignacionService struct {
	repo        repository.ConsignacionRepository
	clientes    repository.ClienteRepository
	productos   repository.ProductoRepository
	movimientos repository.MovimientoRepository
	inventario  InventarioService
}

func NewConsignacionService(
	repo repository.ConsignacionRepository,
	clientes repository.ClienteRepository,
	productos repository.ProductoRepository,
	movimientos repository.MovimientoRepository,
	inventario InventarioService,
) ConsignacionService {
	return &consignacionService{
		repo:        repo,
		clientes:    clientes,
		productos:   productos,
		movimientos: movimientos,
		inventario:  inventario,
	}
}

// ── Crear ────────────────────────────────────────────────────────────────────
// Prices come from Producto (wholesale price when set). Duplicate product
// lines are merged. Stock for every line is checked under lock before the
// header is written; one CONSIGNACION_SALIDA per line follows.

func (s *consignacionService) Crear(ctx context.Context, req dto.CrearConsignacionRequest) (*dto.ConsignacionResponse, error) {
	if len(req.Detalles) == 0 {
		return nil, apierror.Validation("la consignacion debe tener al menos un producto")
	}
	cliente, err := s.clientes.FindByID(ctx, req.ClienteID)
	if err != nil {
		return nil, storeErr(err, "cliente", req.ClienteID)
	}
	if !cliente.Activo {
		return nil, apierror.Precondition("el cliente %s esta inactivo", cliente.Nombre)
	}

	detalles := make([]model.ConsignacionDetalle, 0, len(req.Detalles))
	idx := make(map[uint]int, len(req.Detalles))
	for _, linea := range req.Detalles {
		if linea.Cantidad <= 0 {
			return nil, apierror.Validation("la cantidad del producto %d debe ser mayor a cero", linea.ProductoID)
		}
		if i, ok := idx[linea.ProductoID]; ok {
			detalles[i].CantidadDejada += linea.Cantidad
			continue
		}
		p, err := s.productos.FindByID(ctx, linea.ProductoID)
		if err != nil {
			return nil, storeErr(err, "producto", linea.ProductoID)
		}
		if !p.Activo {
			return nil, apierror.Precondition("el producto %s esta inactivo", nombreProducto(p, p.ID))
		}
		idx[linea.ProductoID] = len(detalles)
		detalles = append(detalles, model.ConsignacionDetalle{
			ProductoID:     p.ID,
			CantidadDejada: linea.Cantidad,
			PrecioUnitario: p.PrecioConsignacion(),
		})
	}

	fecha := time.Now()
	if req.FechaEntrega != nil {
		fecha = *req.FechaEntrega
	}
	c := &model.Consignacion{
		ClienteID:    cliente.ID,
		FechaEntrega: fecha,
		Estado:       model.ConsignacionActiva,
		TotalVendido: decimal.Zero,
		TotalCobrado: decimal.Zero,
		Notas:        req.Notas,
		Detalles:     detalles,
	}

	salidas := make([]Salida, 0, len(detalles))
	for _, d := range detalles {
		salidas = append(salidas, Salida{ProductoID: d.ProductoID, Cantidad: d.CantidadDejada})
	}

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.inventario.VerificarStockTx(ctx, tx, salidas); err != nil {
			return err
		}
		if err := s.repo.Create(ctx, tx, c); err != nil {
			return fmt.Errorf("crear consignacion: %w", err)
		}
		consignacionID := c.ID
		_, err := s.inventario.RegistrarSalidasTx(ctx, tx, model.MovimientoInventario{
			Tipo:           model.MovConsignacionSalida,
			ConsignacionID: &consignacionID,
			Nota:           fmt.Sprintf("Consignacion #%d a %s", c.ID, cliente.Nombre),
		}, salidas)
		return err
	})
	if txErr != nil {
		return nil, txErr
	}

	log.Info().
		Uint("consignacion_id", c.ID).
		Uint("cliente_id", cliente.ID).
		Int("lineas", len(detalles)).
		Str("estado", string(c.Estado)).
		Msg("consignacion creada")
	return s.Obtener(ctx, c.ID)
}

func (s *consignacionService) Obtener(ctx context.Context, id uint) (*dto.ConsignacionResponse, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, storeErr(err, "consignacion", id)
	}
	return consignacionToResponse(c, time.Now()), nil
}

func (s *consignacionService) Listar(ctx context.Context, filter dto.ConsignacionFilter) (*dto.ConsignacionListResponse, error) {
	page, limit := normalizarPagina(filter.Page, filter.Limit, 50)
	items, total, err := s.repo.List(ctx, repository.ConsignacionFilter{
		ClienteID: filter.ClienteID,
		Estado:    filter.Estado,
		Page:      page,
		Limit:     limit,
	})
	if err != nil {
		return nil, fmt.Errorf("listar consignaciones: %w", err)
	}
	ahora := time.Now()
	data := make([]dto.ConsignacionResponse, 0, len(items))
	for i := range items {
		data = append(data, *consignacionToResponse(&items[i], ahora))
	}
	return &dto.ConsignacionListResponse{
		Data:       data,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages(total, limit),
	}, nil
}

// MarcarEnRevision records that staff are counting the goods at the client.
func (s *consignacionService) MarcarEnRevision(ctx context.Context, id uint) (*dto.ConsignacionResponse, error) {
	err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		c, err := s.repo.FindByIDForUpdate(ctx, tx, id)
		if err != nil {
			return storeErr(err, "consignacion", id)
		}
		if !c.Estado.PuedeTransicionarA(model.ConsignacionEnRevision) {
			return apierror.Precondition("solo una consignacion ACTIVA puede pasar a revision (estado actual: %s)", c.Estado)
		}
		return s.transicionar(ctx, tx, c, model.ConsignacionEnRevision, nil)
	})
	if err != nil {
		return nil, err
	}
	log.Info().Uint("consignacion_id", id).Str("estado", string(model.ConsignacionEnRevision)).Msg("consignacion en revision")
	return s.Obtener(ctx, id)
}

// ── Liquidar ─────────────────────────────────────────────────────────────────
// Every detail line must be reported exactly once. All checks run before the
// first write:
//   - vendida + devuelta <= dejada
//   - a shortfall needs a non-empty justification
//   - an immediate payment may not exceed total_vendido (+ tolerance)
// Then: line updates, one CONSIGNACION_DEVOLUCION per returned line, the
// optional payment and the header (LIQUIDADA or SALDO_PENDIENTE).

func (s *consignacionService) Liquidar(ctx context.Context, id uint, req dto.LiquidarConsignacionRequest) (*dto.ConsignacionResponse, error) {
	if req.Pago != nil {
		if err := validarMonto(req.Pago.Monto, "el monto del pago"); err != nil {
			return nil, err
		}
	}
	var estadoFinal model.EstadoConsignacion
	var totalVendido decimal.Decimal

	err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		c, err := s.repo.FindByIDForUpdate(ctx, tx, id)
		if err != nil {
			return storeErr(err, "consignacion", id)
		}
		if !c.Estado.Liquidable() {
			return apierror.Precondition("la consignacion no puede liquidarse en estado %s", c.Estado)
		}

		reportes := make(map[uint]dto.LiquidacionDetalleRequest, len(req.Detalles))
		for _, r := range req.Detalles {
			if _, dup := reportes[r.DetalleID]; dup {
				return apierror.Validation("la linea %d aparece mas de una vez en la liquidacion", r.DetalleID)
			}
			reportes[r.DetalleID] = r
		}

		totalVendido = decimal.Zero
		actualizados := make([]model.ConsignacionDetalle, 0, len(c.Detalles))
		for _, d := range c.Detalles {
			r, ok := reportes[d.ID]
			if !ok {
				return apierror.Validation("la liquidacion debe incluir todas las lineas (falta la linea %d, %s)",
					d.ID, nombreProducto(d.Producto, d.ProductoID))
			}
			delete(reportes, d.ID)

			nombre := nombreProducto(d.Producto, d.ProductoID)
			if r.CantidadVendida < 0 || r.CantidadDevuelta < 0 {
				return apierror.Validation("%s: las cantidades no pueden ser negativas", nombre)
			}
			if r.CantidadVendida+r.CantidadDevuelta > d.CantidadDejada {
				return apierror.Precondition("%s: vendidas (%d) + devueltas (%d) exceden las dejadas (%d)",
					nombre, r.CantidadVendida, r.CantidadDevuelta, d.CantidadDejada)
			}

			d.CantidadVendida = r.CantidadVendida
			d.CantidadDevuelta = r.CantidadDevuelta
			d.DestinoDevolucion = nil
			d.NotaFaltante = nil
			if faltante := d.Faltante(); faltante > 0 {
				if r.NotaFaltante == nil || strings.TrimSpace(*r.NotaFaltante) == "" {
					return apierror.Precondition("%s: faltan %d unidades sin justificar", nombre, faltante)
				}
				nota := strings.TrimSpace(*r.NotaFaltante)
				d.NotaFaltante = &nota
			}
			if d.CantidadDevuelta > 0 {
				destino := model.DestinoInventario
				if r.DestinoDevolucion != "" {
					destino = model.DestinoDevolucion(r.DestinoDevolucion)
				}
				d.DestinoDevolucion = &destino
			}

			totalVendido = totalVendido.Add(d.PrecioUnitario.Mul(decimal.NewFromInt(int64(d.CantidadVendida))))
			actualizados = append(actualizados, d)
		}
		if len(reportes) > 0 {
			ajenas := make([]string, 0, len(reportes))
			for detalleID := range reportes {
				ajenas = append(ajenas, fmt.Sprint(detalleID))
			}
			sort.Strings(ajenas)
			return apierror.Validation("lineas que no pertenecen a la consignacion %d: %s", id, strings.Join(ajenas, ", "))
		}
		totalVendido = totalVendido.Round(2)

		cobrado, err := s.repo.SumPagos(ctx, tx, id)
		if err != nil {
			return fmt.Errorf("pagos consignacion %d: %w", id, err)
		}
		if req.Pago != nil {
			saldo := totalVendido.Sub(cobrado)
			if req.Pago.Monto.GreaterThan(saldo.Add(toleranciaPago)) {
				return apierror.Precondition("el pago de %s excede el saldo de la liquidacion (%s)",
					req.Pago.Monto.StringFixed(2), saldo.StringFixed(2))
			}
		}

		// ── writes ──
		for i := range actualizados {
			d := &actualizados[i]
			if err := s.repo.UpdateDetalle(ctx, tx, d); err != nil {
				return fmt.Errorf("actualizar linea %d: %w", d.ID, err)
			}
			if d.CantidadDevuelta == 0 {
				continue
			}
			consignacionID := id
			dev := model.MovimientoInventario{
				ProductoID:     d.ProductoID,
				Cantidad:       d.CantidadDevuelta,
				Tipo:           model.MovConsignacionDevolucion,
				ConsignacionID: &consignacionID,
				Nota:           fmt.Sprintf("Devolucion consignacion #%d (destino: %s)", id, *d.DestinoDevolucion),
			}
			if err := s.movimientos.Registrar(ctx, tx, &dev); err != nil {
				return fmt.Errorf("registrar devolucion linea %d: %w", d.ID, err)
			}
		}

		if req.Pago != nil {
			if err := s.repo.CreatePago(ctx, tx, nuevoPagoConsignacion(id, *req.Pago)); err != nil {
				return fmt.Errorf("registrar pago: %w", err)
			}
			cobrado = cobrado.Add(req.Pago.Monto)
		}

		estadoFinal = estadoTrasCobro(totalVendido, cobrado)
		campos := map[string]interface{}{
			"total_vendido": totalVendido,
			"total_cobrado": cobrado,
		}
		if estadoFinal == model.ConsignacionLiquidada {
			campos["fecha_liquidacion"] = time.Now()
		}
		return s.transicionar(ctx, tx, c, estadoFinal, campos)
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Uint("consignacion_id", id).
		Str("total_vendido", totalVendido.StringFixed(2)).
		Str("estado", string(estadoFinal)).
		Msg("consignacion liquidada")
	return s.Obtener(ctx, id)
}

// RegistrarPago collects part of the outstanding balance of a settled
// consignment. The consignment closes once collected >= total_vendido - 0.01.
func (s *consignacionService) RegistrarPago(ctx context.Context, id uint, req dto.PagoRequest) (*dto.ConsignacionResponse, error) {
	if err := validarMonto(req.Monto, "el monto del pago"); err != nil {
		return nil, err
	}
	var estadoFinal model.EstadoConsignacion
	err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		c, err := s.repo.FindByIDForUpdate(ctx, tx, id)
		if err != nil {
			return storeErr(err, "consignacion", id)
		}
		switch c.Estado {
		case model.ConsignacionSaldoPendiente:
		case model.ConsignacionLiquidada:
			return apierror.Precondition("la consignacion %d ya esta liquidada", id)
		default:
			return apierror.Precondition("solo se registran pagos en consignaciones con saldo pendiente (estado actual: %s)", c.Estado)
		}

		cobrado, err := s.repo.SumPagos(ctx, tx, id)
		if err != nil {
			return fmt.Errorf("pagos consignacion %d: %w", id, err)
		}
		saldo := c.TotalVendido.Sub(cobrado)
		if req.Monto.GreaterThan(saldo.Add(toleranciaPago)) {
			return apierror.Precondition("el pago de %s excede el saldo pendiente (%s)",
				req.Monto.StringFixed(2), saldo.StringFixed(2))
		}

		if err := s.repo.CreatePago(ctx, tx, nuevoPagoConsignacion(id, req)); err != nil {
			return fmt.Errorf("registrar pago: %w", err)
		}
		cobrado = cobrado.Add(req.Monto)

		estadoFinal = estadoTrasCobro(c.TotalVendido, cobrado)
		campos := map[string]interface{}{
			"total_cobrado": cobrado,
		}
		if estadoFinal == model.ConsignacionLiquidada {
			campos["fecha_liquidacion"] = time.Now()
		}
		return s.transicionar(ctx, tx, c, estadoFinal, campos)
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Uint("consignacion_id", id).
		Str("monto", req.Monto.StringFixed(2)).
		Str("estado", string(estadoFinal)).
		Msg("pago de consignacion registrado")
	return s.Obtener(ctx, id)
}

// Cancelar returns the full dispatched quantity of every line to stock.
func (s *consignacionService) Cancelar(ctx context.Context, id uint) (*dto.ConsignacionResponse, error) {
	err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		c, err := s.repo.FindByIDForUpdate(ctx, tx, id)
		if err != nil {
			return storeErr(err, "consignacion", id)
		}
		if !c.Estado.PuedeTransicionarA(model.ConsignacionCancelada) {
			return apierror.Precondition("solo se puede cancelar una consignacion ACTIVA (estado actual: %s)", c.Estado)
		}
		for _, d := range c.Detalles {
			consignacionID := id
			dev := model.MovimientoInventario{
				ProductoID:     d.ProductoID,
				Cantidad:       d.CantidadDejada,
				Tipo:           model.MovConsignacionDevolucion,
				ConsignacionID: &consignacionID,
				Nota:           fmt.Sprintf("Cancelacion consignacion #%d", id),
			}
			if err := s.movimientos.Registrar(ctx, tx, &dev); err != nil {
				return fmt.Errorf("registrar devolucion linea %d: %w", d.ID, err)
			}
		}
		return s.transicionar(ctx, tx, c, model.ConsignacionCancelada, map[string]interface{}{
			"fecha_liquidacion": time.Now(),
		})
	})
	if err != nil {
		return nil, err
	}
	log.Info().Uint("consignacion_id", id).Str("estado", string(model.ConsignacionCancelada)).Msg("consignacion cancelada")
	return s.Obtener(ctx, id)
}

// transicionar moves the header to destino, writing campos alongside, only
// if the state table allows it and the header is still in c.Estado.
func (s *consignacionService) transicionar(ctx context.Context, tx *gorm.DB, c *model.Consignacion, destino model.EstadoConsignacion, campos map[string]interface{}) error {
	if !c.Estado.PuedeTransicionarA(destino) {
		return apierror.Precondition("la consignacion %d no puede pasar de %s a %s", c.ID, c.Estado, destino)
	}
	if campos == nil {
		campos = make(map[string]interface{}, 1)
	}
	campos["estado"] = destino
	ok, err := s.repo.ActualizarEstado(ctx, tx, c.ID, c.Estado, campos)
	if err != nil {
		return fmt.Errorf("actualizar consignacion %d: %w", c.ID, err)
	}
	if !ok {
		return apierror.Conflict("la consignacion %d fue modificada por otra operacion; reintente", c.ID)
	}
	return nil
}

// estadoTrasCobro keeps the original rule: nothing sold closes the consignment.
func estadoTrasCobro(totalVendido, cobrado decimal.Decimal) model.EstadoConsignacion {
	if totalVendido.IsZero() || cobrado.GreaterThanOrEqual(totalVendido.Sub(toleranciaPago)) {
		return model.ConsignacionLiquidada
	}
	return model.ConsignacionSaldoPendiente
}

func nuevoPagoConsignacion(consignacionID uint, req dto.PagoRequest) *model.PagoConsignacion {
	fecha := time.Now()
	if req.Fecha != nil {
		fecha = *req.Fecha
	}
	return &model.PagoConsignacion{
		ConsignacionID: consignacionID,
		Monto:          req.Monto,
		MetodoPago:     req.MetodoPago,
		Fecha:          fecha,
		Nota:           req.Nota,
	}
}

func consignacionToResponse(c *model.Consignacion, ahora time.Time) *dto.ConsignacionResponse {
	resp := &dto.ConsignacionResponse{
		ID:                c.ID,
		ClienteID:         c.ClienteID,
		Cliente:           nombreCliente(c.Cliente),
		FechaEntrega:      fmtFecha(c.FechaEntrega),
		Estado:            string(c.Estado),
		TotalVendido:      c.TotalVendido,
		TotalCobrado:      c.TotalCobrado,
		SaldoPendiente:    c.SaldoPendiente(),
		DiasTranscurridos: diasTranscurridos(c.FechaEntrega, ahora),
		FechaLiquidacion:  fmtFechaPtr(c.FechaLiquidacion),
		Notas:             c.Notas,
		Detalles:          make([]dto.ConsignacionDetalleResponse, 0, len(c.Detalles)),
		Pagos:             make([]dto.PagoResponse, 0, len(c.Pagos)),
	}
	for i := range c.Detalles {
		d := &c.Detalles[i]
		var destino *string
		if d.DestinoDevolucion != nil {
			v := string(*d.DestinoDevolucion)
			destino = &v
		}
		resp.Detalles = append(resp.Detalles, dto.ConsignacionDetalleResponse{
			ID:                d.ID,
			ProductoID:        d.ProductoID,
			Producto:          nombreProducto(d.Producto, d.ProductoID),
			CantidadDejada:    d.CantidadDejada,
			CantidadVendida:   d.CantidadVendida,
			CantidadDevuelta:  d.CantidadDevuelta,
			Faltante:          d.Faltante(),
			PrecioUnitario:    d.PrecioUnitario,
			Subtotal:          d.PrecioUnitario.Mul(decimal.NewFromInt(int64(d.CantidadVendida))),
			DestinoDevolucion: destino,
			NotaFaltante:      d.NotaFaltante,
		})
	}
	for _, p := range c.Pagos {
		resp.Pagos = append(resp.Pagos, pagoToResponse(p.ID, p.Monto, p.MetodoPago, p.Fecha, p.Nota))
	}
	return resp
}
