package service

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/crisgp1/orodetamar-sub000/internal/apierror"
	"github.com/crisgp1/orodetamar-sub000/internal/dto"
	"github.com/crisgp1/orodetamar-sub000/internal/model"
	"github.com/crisgp1/orodetamar-sub000/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ArchivoStorage is the object store that keeps uploaded proof-of-payment files.
type ArchivoStorage interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) error
	DownloadURL(ctx context.Context, key string) (string, error)
}

// prefijoComprobantes marks references that are keys in ArchivoStorage.
const prefijoComprobantes = "comprobantes/"

// PedidoService drives direct customer orders. Stock is committed exactly
// once, on the transition into ENTREGADO.
type PedidoService interface {
	Crear(ctx context.Context, req dto.CrearPedidoRequest) (*dto.PedidoResponse, error)
	Obtener(ctx context.Context, id uint) (*dto.PedidoResponse, error)
	Listar(ctx context.Context, filter dto.PedidoFilter) (*dto.PedidoListResponse, error)
	Editar(ctx context.Context, id uint, req dto.EditarPedidoRequest) (*dto.PedidoResponse, error)
	Avanzar(ctx context.Context, id uint) (*dto.PedidoResponse, error)
	Entregar(ctx context.Context, id uint, req dto.EntregarPedidoRequest) (*dto.PedidoResponse, error)
	RegistrarPago(ctx context.Context, id uint, req dto.PagoRequest) (*dto.PagoPedidoResponse, error)
	Cancelar(ctx context.Context, id uint, req dto.CancelarPedidoRequest) (*dto.PedidoResponse, error)
	ActualizarSeguimiento(ctx context.Context, id uint, req dto.SeguimientoPedidoRequest) (*dto.PedidoResponse, error)

	RegistrarComprobante(ctx context.Context, id uint, req dto.ComprobanteReferenciaRequest) (*dto.ComprobanteResponse, error)
	SubirComprobante(ctx context.Context, id uint, nombreArchivo, contentType string, data []byte, monto decimal.Decimal) (*dto.ComprobanteResponse, error)
	AprobarComprobante(ctx context.Context, id, comprobanteID uint, req dto.RevisarComprobanteRequest) (*dto.PedidoResponse, error)
	RechazarComprobante(ctx context.Context, id, comprobanteID uint, req dto.RevisarComprobanteRequest) (*dto.PedidoResponse, error)
}

type pedidoService struct {
	repo       repository.PedidoRepository
	clientes   repository.ClienteRepository
	productos  repository.ProductoRepository
	inventario InventarioService
	storage    ArchivoStorage // nil disables uploads
}

func NewPedidoService(
	repo repository.PedidoRepository,
	clientes repository.ClienteRepository,
	productos repository.ProductoRepository,
	inventario InventarioService,
	storage ArchivoStorage,
) PedidoService {
	return &pedidoService{
		repo:       repo,
		clientes:   clientes,
		productos:  productos,
		inventario: inventario,
		storage:    storage,
	}
}

// ── Crear / Editar ───────────────────────────────────────────────────────────

// resolverLineas prices every line from Producto and merges duplicates.
func (s *pedidoService) resolverLineas(ctx context.Context, lineas []dto.LineaPedidoRequest) ([]model.PedidoDetalle, decimal.Decimal, error) {
	if len(lineas) == 0 {
		return nil, decimal.Zero, apierror.Validation("el pedido debe tener al menos un producto")
	}
	detalles := make([]model.PedidoDetalle, 0, len(lineas))
	idx := make(map[uint]int, len(lineas))
	for _, l := range lineas {
		if l.Cantidad <= 0 {
			return nil, decimal.Zero, apierror.Validation("la cantidad del producto %d debe ser mayor a cero", l.ProductoID)
		}
		if i, ok := idx[l.ProductoID]; ok {
			detalles[i].Cantidad += l.Cantidad
			continue
		}
		p, err := s.productos.FindByID(ctx, l.ProductoID)
		if err != nil {
			return nil, decimal.Zero, storeErr(err, "producto", l.ProductoID)
		}
		if !p.Activo {
			return nil, decimal.Zero, apierror.Precondition("el producto %s esta inactivo", nombreProducto(p, p.ID))
		}
		idx[l.ProductoID] = len(detalles)
		detalles = append(detalles, model.PedidoDetalle{
			ProductoID:     p.ID,
			Cantidad:       l.Cantidad,
			PrecioUnitario: p.PrecioVenta,
		})
	}

	subtotal := decimal.Zero
	for i := range detalles {
		d := &detalles[i]
		d.Subtotal = d.PrecioUnitario.Mul(decimal.NewFromInt(int64(d.Cantidad))).Round(2)
		subtotal = subtotal.Add(d.Subtotal)
	}
	return detalles, subtotal, nil
}

// aplicarDescuento returns subtotal x (1 - pct/100).
func aplicarDescuento(subtotal, pct decimal.Decimal) (decimal.Decimal, error) {
	if pct.IsNegative() || pct.GreaterThan(cien) {
		return decimal.Zero, apierror.Validation("el descuento debe estar entre 0 y 100")
	}
	return subtotal.Mul(cien.Sub(pct)).Div(cien).Round(2), nil
}

func (s *pedidoService) Crear(ctx context.Context, req dto.CrearPedidoRequest) (*dto.PedidoResponse, error) {
	cliente, err := s.clientes.FindByID(ctx, req.ClienteID)
	if err != nil {
		return nil, storeErr(err, "cliente", req.ClienteID)
	}
	if !cliente.Activo {
		return nil, apierror.Precondition("el cliente %s esta inactivo", cliente.Nombre)
	}
	detalles, subtotal, err := s.resolverLineas(ctx, req.Detalles)
	if err != nil {
		return nil, err
	}
	total, err := aplicarDescuento(subtotal, req.DescuentoPct)
	if err != nil {
		return nil, err
	}

	estado := model.PedidoRecibido
	if req.RequierePago {
		estado = model.PedidoPendientePago
	}
	p := &model.Pedido{
		ClienteID:            cliente.ID,
		Estado:               estado,
		DescuentoPct:         req.DescuentoPct,
		Subtotal:             subtotal,
		Total:                total,
		FechaEstimadaEntrega: req.FechaEstimadaEntrega,
		Notas:                req.Notas,
		Detalles:             detalles,
	}
	if err := s.repo.Create(ctx, nil, p); err != nil {
		return nil, fmt.Errorf("crear pedido: %w", err)
	}

	log.Info().
		Uint("pedido_id", p.ID).
		Uint("cliente_id", cliente.ID).
		Str("total", total.StringFixed(2)).
		Str("estado", string(estado)).
		Msg("pedido creado")
	return s.Obtener(ctx, p.ID)
}

// Editar replaces every line and recomputes totals while the order is RECIBIDO.
func (s *pedidoService) Editar(ctx context.Context, id uint, req dto.EditarPedidoRequest) (*dto.PedidoResponse, error) {
	detalles, subtotal, err := s.resolverLineas(ctx, req.Detalles)
	if err != nil {
		return nil, err
	}
	err = runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		p, err := s.repo.FindByIDForUpdate(ctx, tx, id)
		if err != nil {
			return storeErr(err, "pedido", id)
		}
		if !p.Estado.Editable() {
			return apierror.Precondition("el pedido solo puede editarse en estado RECIBIDO (estado actual: %s)", p.Estado)
		}
		pct := p.DescuentoPct
		if req.DescuentoPct != nil {
			pct = *req.DescuentoPct
		}
		total, err := aplicarDescuento(subtotal, pct)
		if err != nil {
			return err
		}
		cobrado, err := s.repo.SumPagos(ctx, tx, id)
		if err != nil {
			return fmt.Errorf("pagos pedido %d: %w", id, err)
		}
		if cobrado.GreaterThan(total.Add(toleranciaPago)) {
			return apierror.Precondition("el nuevo total (%s) es menor a lo ya cobrado (%s)", total.StringFixed(2), cobrado.StringFixed(2))
		}

		if err := s.repo.ReemplazarDetalles(ctx, tx, id, detalles); err != nil {
			return fmt.Errorf("reemplazar lineas pedido %d: %w", id, err)
		}
		return s.transicionar(ctx, tx, p, map[string]interface{}{
			"descuento_pct": pct,
			"subtotal":      subtotal,
			"total":         total,
		})
	})
	if err != nil {
		return nil, err
	}
	log.Info().Uint("pedido_id", id).Int("lineas", len(detalles)).Msg("pedido editado")
	return s.Obtener(ctx, id)
}

func (s *pedidoService) Obtener(ctx context.Context, id uint) (*dto.PedidoResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, storeErr(err, "pedido", id)
	}
	resp := pedidoToResponse(p, time.Now())
	for i := range resp.Comprobantes {
		resp.Comprobantes[i].URL = s.urlComprobante(ctx, resp.Comprobantes[i].Referencia)
	}
	return resp, nil
}

func (s *pedidoService) Listar(ctx context.Context, filter dto.PedidoFilter) (*dto.PedidoListResponse, error) {
	page, limit := normalizarPagina(filter.Page, filter.Limit, 50)
	items, total, err := s.repo.List(ctx, repository.PedidoFilter{
		ClienteID: filter.ClienteID,
		Estado:    filter.Estado,
		Page:      page,
		Limit:     limit,
	})
	if err != nil {
		return nil, fmt.Errorf("listar pedidos: %w", err)
	}
	ahora := time.Now()
	data := make([]dto.PedidoResponse, 0, len(items))
	for i := range items {
		data = append(data, *pedidoToResponse(&items[i], ahora))
	}
	return &dto.PedidoListResponse{
		Data:       data,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages(total, limit),
	}, nil
}

// ── Stage transitions ────────────────────────────────────────────────────────

// Avanzar moves one step through RECIBIDO -> ... -> EN_RUTA.
func (s *pedidoService) Avanzar(ctx context.Context, id uint) (*dto.PedidoResponse, error) {
	var siguiente model.EstadoPedido
	err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		p, err := s.repo.FindByIDForUpdate(ctx, tx, id)
		if err != nil {
			return storeErr(err, "pedido", id)
		}
		sig, ok := p.Estado.SiguienteEtapa()
		if !ok {
			switch p.Estado {
			case model.PedidoPendientePago:
				return apierror.Precondition("el pedido espera la aprobacion de un comprobante de pago")
			case model.PedidoEnRuta:
				return apierror.Precondition("el pedido esta en ruta; registre la entrega")
			default:
				return apierror.Precondition("el pedido en estado %s no puede avanzar", p.Estado)
			}
		}
		siguiente = sig
		return s.transicionar(ctx, tx, p, map[string]interface{}{"estado": sig})
	})
	if err != nil {
		return nil, err
	}
	log.Info().Uint("pedido_id", id).Str("estado", string(siguiente)).Msg("pedido avanzado")
	return s.Obtener(ctx, id)
}

// ── Entregar ─────────────────────────────────────────────────────────────────
// The only point where an order touches the ledger:
//  1. Lock the products and check every line (any shortage aborts)
//  2. One VENTA movement per line, linked to the order
//  3. Optional immediate payment of the outstanding balance
//  4. Header -> ENTREGADO with the delivery timestamp
// Re-delivering is rejected, so stock is never decremented twice.

func (s *pedidoService) Entregar(ctx context.Context, id uint, req dto.EntregarPedidoRequest) (*dto.PedidoResponse, error) {
	err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		p, err := s.repo.FindByIDForUpdate(ctx, tx, id)
		if err != nil {
			return storeErr(err, "pedido", id)
		}
		if p.Estado == model.PedidoEntregado {
			return apierror.Precondition("el pedido %d ya fue entregado", id)
		}
		if !p.Estado.Entregable() {
			return apierror.Precondition("el pedido no puede entregarse en estado %s", p.Estado)
		}

		salidas := make([]Salida, 0, len(p.Detalles))
		for _, d := range p.Detalles {
			salidas = append(salidas, Salida{ProductoID: d.ProductoID, Cantidad: d.Cantidad})
		}
		if err := s.inventario.VerificarStockTx(ctx, tx, salidas); err != nil {
			return err
		}

		cobrado, err := s.repo.SumPagos(ctx, tx, id)
		if err != nil {
			return fmt.Errorf("pagos pedido %d: %w", id, err)
		}

		pedidoID := id
		if _, err := s.inventario.RegistrarSalidasTx(ctx, tx, model.MovimientoInventario{
			Tipo:     model.MovVenta,
			PedidoID: &pedidoID,
			Nota:     fmt.Sprintf("Entrega pedido #%d", id),
		}, salidas); err != nil {
			return err
		}

		ahora := time.Now()
		if req.MetodoPago != "" {
			if saldo := p.Total.Sub(cobrado); saldo.IsPositive() {
				nota := "Pago contra entrega"
				if err := s.repo.CreatePago(ctx, tx, &model.PagoPedido{
					PedidoID:   id,
					Monto:      saldo,
					MetodoPago: req.MetodoPago,
					Fecha:      ahora,
					Nota:       &nota,
				}); err != nil {
					return fmt.Errorf("registrar pago contra entrega: %w", err)
				}
			}
		}

		return s.transicionar(ctx, tx, p, map[string]interface{}{
			"estado":        model.PedidoEntregado,
			"fecha_entrega": ahora,
			"retrasado":     false,
		})
	})
	if err != nil {
		return nil, err
	}
	log.Info().Uint("pedido_id", id).Str("estado", string(model.PedidoEntregado)).Msg("pedido entregado")
	return s.Obtener(ctx, id)
}

// RegistrarPago appends an installment. It never changes the stage; the
// response reports whether the order is now fully paid.
func (s *pedidoService) RegistrarPago(ctx context.Context, id uint, req dto.PagoRequest) (*dto.PagoPedidoResponse, error) {
	if err := validarMonto(req.Monto, "el monto del pago"); err != nil {
		return nil, err
	}
	var (
		pago  *model.PagoPedido
		saldo decimal.Decimal
	)
	err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		p, err := s.repo.FindByIDForUpdate(ctx, tx, id)
		if err != nil {
			return storeErr(err, "pedido", id)
		}
		if p.Estado == model.PedidoCancelado {
			return apierror.Precondition("no se registran pagos en un pedido cancelado")
		}
		cobrado, err := s.repo.SumPagos(ctx, tx, id)
		if err != nil {
			return fmt.Errorf("pagos pedido %d: %w", id, err)
		}
		saldo = p.Total.Sub(cobrado)
		if req.Monto.GreaterThan(saldo.Add(toleranciaPago)) {
			return apierror.Precondition("el pago de %s excede el saldo pendiente (%s)",
				req.Monto.StringFixed(2), saldo.StringFixed(2))
		}
		pago = nuevoPagoPedido(id, req.Monto, req.MetodoPago, req.Fecha, req.Nota)
		if err := s.repo.CreatePago(ctx, tx, pago); err != nil {
			return fmt.Errorf("registrar pago: %w", err)
		}
		saldo = saldo.Sub(pago.Monto)
		return nil
	})
	if err != nil {
		return nil, err
	}

	liquidado := saldo.LessThanOrEqual(toleranciaPago)
	if saldo.IsNegative() {
		saldo = decimal.Zero
	}
	log.Info().
		Uint("pedido_id", id).
		Str("monto", pago.Monto.StringFixed(2)).
		Bool("liquidado", liquidado).
		Msg("pago de pedido registrado")
	return &dto.PagoPedidoResponse{
		Pago:           pagoToResponse(pago.ID, pago.Monto, pago.MetodoPago, pago.Fecha, pago.Nota),
		SaldoPendiente: saldo,
		Liquidado:      liquidado,
	}, nil
}

// Cancelar closes an order that never committed stock, so no reversal is written.
func (s *pedidoService) Cancelar(ctx context.Context, id uint, req dto.CancelarPedidoRequest) (*dto.PedidoResponse, error) {
	motivo := strings.TrimSpace(req.Motivo)
	if motivo == "" {
		return nil, apierror.Validation("el motivo de cancelacion es obligatorio")
	}
	err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		p, err := s.repo.FindByIDForUpdate(ctx, tx, id)
		if err != nil {
			return storeErr(err, "pedido", id)
		}
		if !p.Estado.Cancelable() {
			return apierror.Precondition("solo se cancelan pedidos en RECIBIDO o PENDIENTE_PAGO (estado actual: %s)", p.Estado)
		}
		return s.transicionar(ctx, tx, p, map[string]interface{}{
			"estado":             model.PedidoCancelado,
			"motivo_cancelacion": motivo,
		})
	})
	if err != nil {
		return nil, err
	}
	log.Info().Uint("pedido_id", id).Str("estado", string(model.PedidoCancelado)).Msg("pedido cancelado")
	return s.Obtener(ctx, id)
}

// ActualizarSeguimiento edits the delay flag and the estimated delivery date.
func (s *pedidoService) ActualizarSeguimiento(ctx context.Context, id uint, req dto.SeguimientoPedidoRequest) (*dto.PedidoResponse, error) {
	err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		p, err := s.repo.FindByIDForUpdate(ctx, tx, id)
		if err != nil {
			return storeErr(err, "pedido", id)
		}
		if p.Estado.Terminal() {
			return apierror.Precondition("el pedido en estado %s ya no admite seguimiento", p.Estado)
		}

		campos := map[string]interface{}{}
		if req.FechaEstimadaEntrega != nil {
			campos["fecha_estimada_entrega"] = *req.FechaEstimadaEntrega
		}
		if req.Retrasado != nil {
			if *req.Retrasado {
				motivo := ""
				if req.MotivoRetraso != nil {
					motivo = strings.TrimSpace(*req.MotivoRetraso)
				} else if p.MotivoRetraso != nil {
					motivo = *p.MotivoRetraso
				}
				if motivo == "" {
					return apierror.Validation("marcar un pedido como retrasado requiere un motivo")
				}
				campos["retrasado"] = true
				campos["motivo_retraso"] = motivo
			} else {
				campos["retrasado"] = false
				campos["motivo_retraso"] = nil
			}
		} else if req.MotivoRetraso != nil && p.Retrasado {
			campos["motivo_retraso"] = strings.TrimSpace(*req.MotivoRetraso)
		}
		if len(campos) == 0 {
			return nil
		}
		return s.transicionar(ctx, tx, p, campos)
	})
	if err != nil {
		return nil, err
	}
	log.Info().Uint("pedido_id", id).Msg("seguimiento de pedido actualizado")
	return s.Obtener(ctx, id)
}

// ── Comprobantes de pago ─────────────────────────────────────────────────────

func (s *pedidoService) RegistrarComprobante(ctx context.Context, id uint, req dto.ComprobanteReferenciaRequest) (*dto.ComprobanteResponse, error) {
	ref := strings.TrimSpace(req.Referencia)
	if ref == "" {
		return nil, apierror.Validation("la referencia del comprobante es obligatoria")
	}
	return s.crearComprobante(ctx, id, ref, req.MontoDeclarado)
}

// SubirComprobante stores the file under comprobantes/pedido-<id>/ and
// registers it as a PENDIENTE proof.
func (s *pedidoService) SubirComprobante(ctx context.Context, id uint, nombreArchivo, contentType string, data []byte, monto decimal.Decimal) (*dto.ComprobanteResponse, error) {
	if s.storage == nil {
		return nil, apierror.Precondition("la carga de archivos no esta configurada")
	}
	if len(data) == 0 {
		return nil, apierror.Validation("el archivo del comprobante esta vacio")
	}
	if err := validarMonto(monto, "el monto declarado"); err != nil {
		return nil, err
	}
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return nil, storeErr(err, "pedido", id)
	}
	key := fmt.Sprintf("%spedido-%d/%s%s", prefijoComprobantes, id, uuid.NewString(), strings.ToLower(path.Ext(nombreArchivo)))
	if err := s.storage.Upload(ctx, key, data, contentType); err != nil {
		return nil, fmt.Errorf("subir comprobante: %w", err)
	}
	return s.crearComprobante(ctx, id, key, monto)
}

func (s *pedidoService) crearComprobante(ctx context.Context, id uint, referencia string, monto decimal.Decimal) (*dto.ComprobanteResponse, error) {
	if err := validarMonto(monto, "el monto declarado"); err != nil {
		return nil, err
	}
	c := &model.ComprobantePago{
		PedidoID:       id,
		Referencia:     referencia,
		MontoDeclarado: monto,
		Estado:         model.RevisionPendiente,
	}
	err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		p, err := s.repo.FindByIDForUpdate(ctx, tx, id)
		if err != nil {
			return storeErr(err, "pedido", id)
		}
		if p.Estado == model.PedidoCancelado {
			return apierror.Precondition("no se aceptan comprobantes en un pedido cancelado")
		}
		return s.repo.CreateComprobante(ctx, tx, c)
	})
	if err != nil {
		return nil, err
	}
	log.Info().Uint("pedido_id", id).Uint("comprobante_id", c.ID).Str("monto", c.MontoDeclarado.StringFixed(2)).Msg("comprobante registrado")
	resp := comprobanteToResponse(c)
	resp.URL = s.urlComprobante(ctx, c.Referencia)
	return &resp, nil
}

// AprobarComprobante records the declared amount as a payment and lifts the
// PENDIENTE_PAGO gate.
func (s *pedidoService) AprobarComprobante(ctx context.Context, id, comprobanteID uint, req dto.RevisarComprobanteRequest) (*dto.PedidoResponse, error) {
	err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		p, c, err := s.comprobantePendiente(ctx, tx, id, comprobanteID)
		if err != nil {
			return err
		}
		cobrado, err := s.repo.SumPagos(ctx, tx, id)
		if err != nil {
			return fmt.Errorf("pagos pedido %d: %w", id, err)
		}
		saldo := p.Total.Sub(cobrado)
		if c.MontoDeclarado.GreaterThan(saldo.Add(toleranciaPago)) {
			return apierror.Precondition("el monto declarado (%s) excede el saldo pendiente (%s)",
				c.MontoDeclarado.StringFixed(2), saldo.StringFixed(2))
		}

		if err := s.revisar(ctx, tx, c, model.RevisionAprobado, req.Nota); err != nil {
			return err
		}
		nota := fmt.Sprintf("Comprobante #%d", c.ID)
		if err := s.repo.CreatePago(ctx, tx, nuevoPagoPedido(id, c.MontoDeclarado, "TRANSFERENCIA", nil, &nota)); err != nil {
			return fmt.Errorf("registrar pago de comprobante: %w", err)
		}
		if p.Estado == model.PedidoPendientePago {
			return s.transicionar(ctx, tx, p, map[string]interface{}{"estado": model.PedidoRecibido})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Info().Uint("pedido_id", id).Uint("comprobante_id", comprobanteID).Msg("comprobante aprobado")
	return s.Obtener(ctx, id)
}

// RechazarComprobante leaves the order where it is so the client can resubmit.
func (s *pedidoService) RechazarComprobante(ctx context.Context, id, comprobanteID uint, req dto.RevisarComprobanteRequest) (*dto.PedidoResponse, error) {
	err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		_, c, err := s.comprobantePendiente(ctx, tx, id, comprobanteID)
		if err != nil {
			return err
		}
		return s.revisar(ctx, tx, c, model.RevisionRechazado, req.Nota)
	})
	if err != nil {
		return nil, err
	}
	log.Info().Uint("pedido_id", id).Uint("comprobante_id", comprobanteID).Msg("comprobante rechazado")
	return s.Obtener(ctx, id)
}

func (s *pedidoService) comprobantePendiente(ctx context.Context, tx *gorm.DB, id, comprobanteID uint) (*model.Pedido, *model.ComprobantePago, error) {
	p, err := s.repo.FindByIDForUpdate(ctx, tx, id)
	if err != nil {
		return nil, nil, storeErr(err, "pedido", id)
	}
	c, err := s.repo.FindComprobanteForUpdate(ctx, tx, id, comprobanteID)
	if err != nil {
		return nil, nil, storeErr(err, "comprobante", comprobanteID)
	}
	if c.Estado != model.RevisionPendiente {
		return nil, nil, apierror.Precondition("el comprobante %d ya fue revisado (%s)", c.ID, c.Estado)
	}
	if p.Estado == model.PedidoCancelado {
		return nil, nil, apierror.Precondition("el pedido %d esta cancelado", id)
	}
	return p, c, nil
}

func (s *pedidoService) revisar(ctx context.Context, tx *gorm.DB, c *model.ComprobantePago, estado model.EstadoRevision, nota *string) error {
	ahora := time.Now()
	c.Estado = estado
	c.NotaRevision = nota
	c.RevisadoAt = &ahora
	ok, err := s.repo.RevisarComprobante(ctx, tx, c)
	if err != nil {
		return fmt.Errorf("revisar comprobante %d: %w", c.ID, err)
	}
	if !ok {
		return apierror.Conflict("el comprobante %d fue revisado por otra operacion", c.ID)
	}
	return nil
}

func (s *pedidoService) urlComprobante(ctx context.Context, referencia string) string {
	if !strings.HasPrefix(referencia, prefijoComprobantes) {
		return referencia
	}
	if s.storage == nil {
		return ""
	}
	url, err := s.storage.DownloadURL(ctx, referencia)
	if err != nil {
		log.Warn().Err(err).Str("key", referencia).Msg("no se pudo firmar la url del comprobante")
		return ""
	}
	return url
}

// transicionar applies campos only if the order is still in p.Estado.
func (s *pedidoService) transicionar(ctx context.Context, tx *gorm.DB, p *model.Pedido, campos map[string]interface{}) error {
	ok, err := s.repo.ActualizarEstado(ctx, tx, p.ID, p.Estado, campos)
	if err != nil {
		return fmt.Errorf("actualizar pedido %d: %w", p.ID, err)
	}
	if !ok {
		return apierror.Conflict("el pedido %d fue modificado por otra operacion; reintente", p.ID)
	}
	return nil
}

func nuevoPagoPedido(pedidoID uint, monto decimal.Decimal, metodo string, fecha *time.Time, nota *string) *model.PagoPedido {
	f := time.Now()
	if fecha != nil {
		f = *fecha
	}
	return &model.PagoPedido{
		PedidoID:   pedidoID,
		Monto:      monto,
		MetodoPago: metodo,
		Fecha:      f,
		Nota:       nota,
	}
}

func comprobanteToResponse(c *model.ComprobantePago) dto.ComprobanteResponse {
	return dto.ComprobanteResponse{
		ID:             c.ID,
		Referencia:     c.Referencia,
		MontoDeclarado: c.MontoDeclarado,
		Estado:         string(c.Estado),
		NotaRevision:   c.NotaRevision,
		RevisadoAt:     fmtFechaPtr(c.RevisadoAt),
		CreatedAt:      fmtFecha(c.CreatedAt),
	}
}

func pedidoToResponse(p *model.Pedido, ahora time.Time) *dto.PedidoResponse {
	cobrado := decimal.Zero
	for _, pg := range p.Pagos {
		cobrado = cobrado.Add(pg.Monto)
	}
	saldo := p.Total.Sub(cobrado)
	if saldo.IsNegative() {
		saldo = decimal.Zero
	}
	resp := &dto.PedidoResponse{
		ID:                   p.ID,
		ClienteID:            p.ClienteID,
		Cliente:              nombreCliente(p.Cliente),
		Estado:               string(p.Estado),
		DescuentoPct:         p.DescuentoPct,
		Subtotal:             p.Subtotal,
		Total:                p.Total,
		TotalCobrado:         cobrado,
		SaldoPendiente:       saldo,
		DiasTranscurridos:    diasTranscurridos(p.CreatedAt, ahora),
		Retrasado:            p.Retrasado,
		MotivoRetraso:        p.MotivoRetraso,
		FechaEstimadaEntrega: fmtFechaPtr(p.FechaEstimadaEntrega),
		FechaEntrega:         fmtFechaPtr(p.FechaEntrega),
		MotivoCancelacion:    p.MotivoCancelacion,
		Notas:                p.Notas,
		Detalles:             make([]dto.PedidoDetalleResponse, 0, len(p.Detalles)),
		Pagos:                make([]dto.PagoResponse, 0, len(p.Pagos)),
		Comprobantes:         make([]dto.ComprobanteResponse, 0, len(p.Comprobantes)),
		CreatedAt:            fmtFecha(p.CreatedAt),
	}
	for _, d := range p.Detalles {
		resp.Detalles = append(resp.Detalles, dto.PedidoDetalleResponse{
			ID:             d.ID,
			ProductoID:     d.ProductoID,
			Producto:       nombreProducto(d.Producto, d.ProductoID),
			Cantidad:       d.Cantidad,
			PrecioUnitario: d.PrecioUnitario,
			Subtotal:       d.Subtotal,
		})
	}
	for _, pg := range p.Pagos {
		resp.Pagos = append(resp.Pagos, pagoToResponse(pg.ID, pg.Monto, pg.MetodoPago, pg.Fecha, pg.Nota))
	}
	for i := range p.Comprobantes {
		resp.Comprobantes = append(resp.Comprobantes, comprobanteToResponse(&p.Comprobantes[i]))
	}
	return resp
}
