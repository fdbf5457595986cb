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
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ProductoService defines the business logic contract for the product catalog.
// Price changes only affect future consignments and orders; the ledger and
// already priced lines keep their values.
type ProductoService interface {
	Crear(ctx context.Context, req dto.CrearProductoRequest) (*dto.ProductoResponse, error)
	ObtenerPorID(ctx context.Context, id uint) (*dto.ProductoResponse, error)
	Listar(ctx context.Context, filter dto.ProductoFilter) ([]dto.ProductoResponse, error)
	Actualizar(ctx context.Context, id uint, req dto.ActualizarProductoRequest) (*dto.ProductoResponse, error)
	Desactivar(ctx context.Context, id uint) error
	HistorialPrecios(ctx context.Context, id uint, page, limit int) (*dto.HistorialPrecioListResponse, error)
}

type productoService struct {
	repo      repository.ProductoRepository
	historial repository.HistorialPrecioRepository
}

func NewProductoService(repo repository.ProductoRepository, historial repository.HistorialPrecioRepository) ProductoService {
	return &productoService{repo: repo, historial: historial}
}

func productoToResponse(p *model.Producto) *dto.ProductoResponse {
	return &dto.ProductoResponse{
		ID:            p.ID,
		Nombre:        p.Nombre,
		Presentacion:  p.Presentacion,
		PrecioVenta:   p.PrecioVenta,
		PrecioMayoreo: p.PrecioMayoreo,
		Activo:        p.Activo,
	}
}

func validarPrecios(venta decimal.Decimal, mayoreo *decimal.Decimal) error {
	if !venta.IsPositive() {
		return apierror.Validation("el precio de venta debe ser mayor a cero")
	}
	if mayoreo != nil && mayoreo.IsNegative() {
		return apierror.Validation("el precio de mayoreo no puede ser negativo")
	}
	return nil
}

func (s *productoService) Crear(ctx context.Context, req dto.CrearProductoRequest) (*dto.ProductoResponse, error) {
	if err := validarPrecios(req.PrecioVenta, req.PrecioMayoreo); err != nil {
		return nil, err
	}
	p := &model.Producto{
		Nombre:        strings.TrimSpace(req.Nombre),
		Presentacion:  strings.TrimSpace(req.Presentacion),
		PrecioVenta:   req.PrecioVenta.Round(2),
		PrecioMayoreo: req.PrecioMayoreo,
		Activo:        true,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("crear producto: %w", err)
	}
	log.Info().Uint("producto_id", p.ID).Str("nombre", p.Nombre).Msg("producto creado")
	return productoToResponse(p), nil
}

func (s *productoService) ObtenerPorID(ctx context.Context, id uint) (*dto.ProductoResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, storeErr(err, "producto", id)
	}
	return productoToResponse(p), nil
}

func (s *productoService) Listar(ctx context.Context, filter dto.ProductoFilter) ([]dto.ProductoResponse, error) {
	productos, err := s.repo.List(ctx, repository.ProductoFilter{Nombre: filter.Nombre, Activo: filter.Activo})
	if err != nil {
		return nil, fmt.Errorf("listar productos: %w", err)
	}
	out := make([]dto.ProductoResponse, 0, len(productos))
	for i := range productos {
		out = append(out, *productoToResponse(&productos[i]))
	}
	return out, nil
}

func (s *productoService) Actualizar(ctx context.Context, id uint, req dto.ActualizarProductoRequest) (*dto.ProductoResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, storeErr(err, "producto", id)
	}
	if req.Nombre != nil {
		p.Nombre = strings.TrimSpace(*req.Nombre)
	}
	if req.Presentacion != nil {
		p.Presentacion = strings.TrimSpace(*req.Presentacion)
	}
	ventaAntes, mayoreoAntes := p.PrecioVenta, p.PrecioMayoreo
	if req.PrecioVenta != nil {
		p.PrecioVenta = req.PrecioVenta.Round(2)
	}
	if req.PrecioMayoreo != nil {
		m := req.PrecioMayoreo.Round(2)
		p.PrecioMayoreo = &m
	}
	if req.Activo != nil {
		p.Activo = *req.Activo
	}
	if err := validarPrecios(p.PrecioVenta, p.PrecioMayoreo); err != nil {
		return nil, err
	}

	cambioPrecio := !ventaAntes.Equal(p.PrecioVenta) || !mismoPrecio(mayoreoAntes, p.PrecioMayoreo)
	err = runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.repo.Update(ctx, tx, p); err != nil {
			return fmt.Errorf("actualizar producto %d: %w", id, err)
		}
		if !cambioPrecio {
			return nil
		}
		return s.historial.Registrar(ctx, tx, &model.HistorialPrecio{
			ProductoID:     id,
			VentaAntes:     ventaAntes,
			VentaDespues:   p.PrecioVenta,
			MayoreoAntes:   mayoreoAntes,
			MayoreoDespues: p.PrecioMayoreo,
			Usuario:        req.Usuario,
		})
	})
	if err != nil {
		return nil, err
	}
	log.Info().Uint("producto_id", id).Bool("cambio_precio", cambioPrecio).Msg("producto actualizado")
	return productoToResponse(p), nil
}

func mismoPrecio(a, b *decimal.Decimal) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}

func (s *productoService) HistorialPrecios(ctx context.Context, id uint, page, limit int) (*dto.HistorialPrecioListResponse, error) {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return nil, storeErr(err, "producto", id)
	}
	page, limit = normalizarPagina(page, limit, 50)
	rows, total, err := s.historial.ListByProducto(ctx, id, page, limit)
	if err != nil {
		return nil, fmt.Errorf("historial de precios %d: %w", id, err)
	}
	out := make([]dto.HistorialPrecioResponse, 0, len(rows))
	for _, h := range rows {
		out = append(out, dto.HistorialPrecioResponse{
			ID:             h.ID,
			VentaAntes:     h.VentaAntes,
			VentaDespues:   h.VentaDespues,
			MayoreoAntes:   h.MayoreoAntes,
			MayoreoDespues: h.MayoreoDespues,
			Usuario:        h.Usuario,
			CreatedAt:      fmtFecha(h.CreatedAt),
		})
	}
	return &dto.HistorialPrecioListResponse{
		Data: out, Total: total, Page: page, Limit: limit, TotalPages: totalPages(total, limit),
	}, nil
}

func (s *productoService) Desactivar(ctx context.Context, id uint) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return storeErr(err, "producto", id)
	}
	if err := s.repo.SetActivo(ctx, id, false); err != nil {
		return fmt.Errorf("desactivar producto %d: %w", id, err)
	}
	log.Info().Uint("producto_id", id).Msg("producto desactivado")
	return nil
}
