package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/crisgp1/orodetamar-sub000/internal/apierror"
	"github.com/crisgp1/orodetamar-sub000/internal/dto"
	"github.com/crisgp1/orodetamar-sub000/internal/model"
	"github.com/crisgp1/orodetamar-sub000/internal/repository"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// Salida is one outgoing quantity requested by a lifecycle operation.
type Salida struct {
	ProductoID uint
	Cantidad   int
}

// InventarioService owns the finished-goods ledger: availability reads,
// manual entries and the locked stock check every outgoing flow goes through.
type InventarioService interface {
	Disponible(ctx context.Context, productoID uint) (int, error)
	Stock(ctx context.Context) ([]dto.StockProductoResponse, error)
	ListarMovimientos(ctx context.Context, filter dto.MovimientoFilter) (*dto.MovimientoListResponse, error)
	Ajustar(ctx context.Context, req dto.AjusteRequest) (*dto.MovimientoResponse, error)
	RegistrarMerma(ctx context.Context, req dto.MermaRequest) (*dto.MovimientoResponse, error)
	VenderEnStand(ctx context.Context, req dto.VentaStandRequest) (*dto.MovimientoResponse, error)

	// VerificarStockTx takes the product locks and checks that every salida
	// (aggregated per product) is covered. Nothing is written.
	VerificarStockTx(ctx context.Context, tx *gorm.DB, salidas []Salida) error
	// RegistrarSalidasTx appends one negative movement per salida, copying
	// Tipo, Nota and the entity links from base. Callers verify first.
	RegistrarSalidasTx(ctx context.Context, tx *gorm.DB, base model.MovimientoInventario, salidas []Salida) ([]model.MovimientoInventario, error)
}

type inventarioService struct {
	movimientos repository.MovimientoRepository
	productos   repository.ProductoRepository
}

func NewInventarioService(movimientos repository.MovimientoRepository, productos repository.ProductoRepository) InventarioService {
	return &inventarioService{movimientos: movimientos, productos: productos}
}

func (s *inventarioService) Disponible(ctx context.Context, productoID uint) (int, error) {
	if _, err := s.productos.FindByID(ctx, productoID); err != nil {
		return 0, storeErr(err, "producto", productoID)
	}
	return s.movimientos.Disponible(ctx, nil, productoID)
}

func (s *inventarioService) Stock(ctx context.Context) ([]dto.StockProductoResponse, error) {
	productos, err := s.productos.List(ctx, repository.ProductoFilter{})
	if err != nil {
		return nil, fmt.Errorf("listar productos: %w", err)
	}
	disponibles, err := s.movimientos.DisponiblePorProducto(ctx)
	if err != nil {
		return nil, fmt.Errorf("calcular stock: %w", err)
	}
	out := make([]dto.StockProductoResponse, 0, len(productos))
	for _, p := range productos {
		out = append(out, dto.StockProductoResponse{
			ProductoID:   p.ID,
			Nombre:       p.Nombre,
			Presentacion: p.Presentacion,
			Disponible:   disponibles[p.ID],
		})
	}
	return out, nil
}

func (s *inventarioService) ListarMovimientos(ctx context.Context, filter dto.MovimientoFilter) (*dto.MovimientoListResponse, error) {
	page, limit := normalizarPagina(filter.Page, filter.Limit, 100)
	movs, total, err := s.movimientos.List(ctx, repository.MovimientoFilter{
		ProductoID:     filter.ProductoID,
		Tipo:           filter.Tipo,
		ConsignacionID: filter.ConsignacionID,
		PedidoID:       filter.PedidoID,
		Page:           page,
		Limit:          limit,
	})
	if err != nil {
		return nil, fmt.Errorf("listar movimientos: %w", err)
	}
	data := make([]dto.MovimientoResponse, 0, len(movs))
	for i := range movs {
		data = append(data, movimientoToResponse(&movs[i]))
	}
	return &dto.MovimientoListResponse{
		Data:       data,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages(total, limit),
	}, nil
}

// ── Manual entries ───────────────────────────────────────────────────────────

func (s *inventarioService) Ajustar(ctx context.Context, req dto.AjusteRequest) (*dto.MovimientoResponse, error) {
	if req.Cantidad == 0 {
		return nil, apierror.Validation("la cantidad del ajuste no puede ser cero")
	}
	if _, err := s.productos.FindByID(ctx, req.ProductoID); err != nil {
		return nil, storeErr(err, "producto", req.ProductoID)
	}

	mov := model.MovimientoInventario{
		ProductoID: req.ProductoID,
		Cantidad:   req.Cantidad,
		Tipo:       model.MovAjuste,
		Nota:       strings.TrimSpace(req.Nota),
	}
	err := runTx(ctx, s.movimientos.DB(), func(tx *gorm.DB) error {
		if req.Cantidad < 0 {
			// A negative adjustment may not push the product below zero.
			if err := s.VerificarStockTx(ctx, tx, []Salida{{ProductoID: req.ProductoID, Cantidad: -req.Cantidad}}); err != nil {
				return err
			}
		}
		return s.movimientos.Registrar(ctx, tx, &mov)
	})
	if err != nil {
		return nil, err
	}

	log.Info().Uint("producto_id", req.ProductoID).Int("cantidad", req.Cantidad).Msg("ajuste de inventario registrado")
	resp := movimientoToResponse(&mov)
	return &resp, nil
}

func (s *inventarioService) RegistrarMerma(ctx context.Context, req dto.MermaRequest) (*dto.MovimientoResponse, error) {
	if req.Cantidad <= 0 {
		return nil, apierror.Validation("la cantidad de merma debe ser mayor a cero")
	}
	if _, err := s.productos.FindByID(ctx, req.ProductoID); err != nil {
		return nil, storeErr(err, "producto", req.ProductoID)
	}
	mov, err := s.descontar(ctx, model.MovimientoInventario{Tipo: model.MovMerma, Nota: strings.TrimSpace(req.Nota)},
		Salida{ProductoID: req.ProductoID, Cantidad: req.Cantidad})
	if err != nil {
		return nil, err
	}
	log.Info().Uint("producto_id", req.ProductoID).Int("cantidad", req.Cantidad).Msg("merma registrada")
	resp := movimientoToResponse(mov)
	return &resp, nil
}

// VenderEnStand records a walk-in sale: stock check plus one VENTA movement.
func (s *inventarioService) VenderEnStand(ctx context.Context, req dto.VentaStandRequest) (*dto.MovimientoResponse, error) {
	if req.Cantidad <= 0 {
		return nil, apierror.Validation("la cantidad vendida debe ser mayor a cero")
	}
	p, err := s.productos.FindByID(ctx, req.ProductoID)
	if err != nil {
		return nil, storeErr(err, "producto", req.ProductoID)
	}
	if !p.Activo {
		return nil, apierror.Precondition("el producto %s esta inactivo", nombreProducto(p, p.ID))
	}
	nota := strings.TrimSpace(req.Nota)
	if nota == "" {
		nota = "Venta en stand"
	}
	mov, err := s.descontar(ctx, model.MovimientoInventario{Tipo: model.MovVenta, Nota: nota},
		Salida{ProductoID: req.ProductoID, Cantidad: req.Cantidad})
	if err != nil {
		return nil, err
	}
	log.Info().Uint("producto_id", req.ProductoID).Int("cantidad", req.Cantidad).Msg("venta en stand registrada")
	resp := movimientoToResponse(mov)
	return &resp, nil
}

func (s *inventarioService) descontar(ctx context.Context, base model.MovimientoInventario, salida Salida) (*model.MovimientoInventario, error) {
	var movs []model.MovimientoInventario
	err := runTx(ctx, s.movimientos.DB(), func(tx *gorm.DB) error {
		if err := s.VerificarStockTx(ctx, tx, []Salida{salida}); err != nil {
			return err
		}
		var err error
		movs, err = s.RegistrarSalidasTx(ctx, tx, base, []Salida{salida})
		return err
	})
	if err != nil {
		return nil, err
	}
	return &movs[0], nil
}

// ── Locked stock check ───────────────────────────────────────────────────────

func (s *inventarioService) VerificarStockTx(ctx context.Context, tx *gorm.DB, salidas []Salida) error {
	orden := make([]uint, 0, len(salidas))
	requerido := make(map[uint]int, len(salidas))
	for _, sa := range salidas {
		if _, ok := requerido[sa.ProductoID]; !ok {
			orden = append(orden, sa.ProductoID)
		}
		requerido[sa.ProductoID] += sa.Cantidad
	}

	if err := s.movimientos.Bloquear(ctx, tx, orden); err != nil {
		return fmt.Errorf("bloquear productos: %w", err)
	}

	for _, id := range orden {
		disponible, err := s.movimientos.Disponible(ctx, tx, id)
		if err != nil {
			return fmt.Errorf("disponible producto %d: %w", id, err)
		}
		if disponible < requerido[id] {
			var p *model.Producto
			if found, ferr := s.productos.FindByID(ctx, id); ferr == nil {
				p = found
			}
			return apierror.Precondition("stock insuficiente de %s: disponible %d, requerido %d",
				nombreProducto(p, id), disponible, requerido[id])
		}
	}
	return nil
}

func (s *inventarioService) RegistrarSalidasTx(ctx context.Context, tx *gorm.DB, base model.MovimientoInventario, salidas []Salida) ([]model.MovimientoInventario, error) {
	out := make([]model.MovimientoInventario, 0, len(salidas))
	for _, sa := range salidas {
		mov := base
		mov.ID = 0
		mov.ProductoID = sa.ProductoID
		mov.Cantidad = -sa.Cantidad
		if err := s.movimientos.Registrar(ctx, tx, &mov); err != nil {
			return nil, fmt.Errorf("registrar salida producto %d: %w", sa.ProductoID, err)
		}
		out = append(out, mov)
	}
	return out, nil
}
