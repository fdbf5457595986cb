package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/crisgp1/orodetamar-sub000/internal/apierror"
	"github.com/crisgp1/orodetamar-sub000/internal/dto"
	"github.com/crisgp1/orodetamar-sub000/internal/infra"
	"github.com/crisgp1/orodetamar-sub000/internal/model"
	"github.com/crisgp1/orodetamar-sub000/internal/repository"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// RecetaService manages bills of materials and the per-unit cost derived
// from them. It never writes to either ledger.
type RecetaService interface {
	Obtener(ctx context.Context, productoID uint) (*dto.RecetaResponse, error)
	Guardar(ctx context.Context, productoID uint, req dto.GuardarRecetaRequest) (*dto.RecetaResponse, error)
	Eliminar(ctx context.Context, productoID, materiaPrimaID uint) error
	// GenerarFicha writes the PDF cost sheet and returns its path.
	GenerarFicha(ctx context.Context, productoID uint) (string, error)
}

type recetaService struct {
	recetas     repository.RecetaRepository
	productos   repository.ProductoRepository
	materias    repository.MateriaPrimaRepository
	negocio     string
	storagePath string
}

func NewRecetaService(
	recetas repository.RecetaRepository,
	productos repository.ProductoRepository,
	materias repository.MateriaPrimaRepository,
	negocio, storagePath string,
) RecetaService {
	return &recetaService{
		recetas:     recetas,
		productos:   productos,
		materias:    materias,
		negocio:     negocio,
		storagePath: storagePath,
	}
}

func (s *recetaService) Obtener(ctx context.Context, productoID uint) (*dto.RecetaResponse, error) {
	p, err := s.productos.FindByID(ctx, productoID)
	if err != nil {
		return nil, storeErr(err, "producto", productoID)
	}
	lineas, err := s.recetas.ListByProducto(ctx, nil, productoID)
	if err != nil {
		return nil, fmt.Errorf("receta producto %d: %w", productoID, err)
	}
	return recetaToResponse(p, lineas), nil
}

func (s *recetaService) Guardar(ctx context.Context, productoID uint, req dto.GuardarRecetaRequest) (*dto.RecetaResponse, error) {
	if !req.CantidadPorUnidad.IsPositive() {
		return nil, apierror.Validation("la cantidad por unidad debe ser mayor a cero")
	}
	if err := validarCantidadMP(req.CantidadPorUnidad, "la cantidad por unidad"); err != nil {
		return nil, err
	}
	if _, err := s.productos.FindByID(ctx, productoID); err != nil {
		return nil, storeErr(err, "producto", productoID)
	}
	if _, err := s.materias.FindByID(ctx, req.MateriaPrimaID); err != nil {
		return nil, storeErr(err, "materia prima", req.MateriaPrimaID)
	}
	linea := &model.Receta{
		ProductoID:        productoID,
		MateriaPrimaID:    req.MateriaPrimaID,
		CantidadPorUnidad: req.CantidadPorUnidad,
		UnidadMedida:      strings.TrimSpace(req.UnidadMedida),
	}
	if err := s.recetas.Guardar(ctx, linea); err != nil {
		return nil, fmt.Errorf("guardar receta: %w", err)
	}
	log.Info().Uint("producto_id", productoID).Uint("materia_prima_id", req.MateriaPrimaID).Msg("linea de receta guardada")
	return s.Obtener(ctx, productoID)
}

func (s *recetaService) Eliminar(ctx context.Context, productoID, materiaPrimaID uint) error {
	ok, err := s.recetas.Eliminar(ctx, productoID, materiaPrimaID)
	if err != nil {
		return fmt.Errorf("eliminar receta: %w", err)
	}
	if !ok {
		return apierror.NotFound("el producto %d no usa la materia prima %d en su receta", productoID, materiaPrimaID)
	}
	log.Info().Uint("producto_id", productoID).Uint("materia_prima_id", materiaPrimaID).Msg("linea de receta eliminada")
	return nil
}

func (s *recetaService) GenerarFicha(ctx context.Context, productoID uint) (string, error) {
	p, err := s.productos.FindByID(ctx, productoID)
	if err != nil {
		return "", storeErr(err, "producto", productoID)
	}
	lineas, err := s.recetas.ListByProducto(ctx, nil, productoID)
	if err != nil {
		return "", fmt.Errorf("receta producto %d: %w", productoID, err)
	}
	path, err := infra.GenerarFichaReceta(s.negocio, p, lineas, s.storagePath)
	if err != nil {
		return "", err
	}
	log.Info().Uint("producto_id", productoID).Str("pdf", path).Msg("ficha de receta generada")
	return path, nil
}

// recetaToResponse computes cost = sum(ratio x material unit cost).
func recetaToResponse(p *model.Producto, lineas []model.Receta) *dto.RecetaResponse {
	resp := &dto.RecetaResponse{
		ProductoID:  p.ID,
		Producto:    nombreProducto(p, p.ID),
		Lineas:      make([]dto.RecetaLineaResponse, 0, len(lineas)),
		PrecioVenta: p.PrecioVenta,
	}
	costo := decimal.Zero
	for _, l := range lineas {
		nombre, costoUnit := "", decimal.Zero
		if l.MateriaPrima != nil {
			nombre = l.MateriaPrima.Nombre
			costoUnit = l.MateriaPrima.CostoUnitario
		}
		costoLinea := l.CantidadPorUnidad.Mul(costoUnit)
		costo = costo.Add(costoLinea)
		resp.Lineas = append(resp.Lineas, dto.RecetaLineaResponse{
			MateriaPrimaID:    l.MateriaPrimaID,
			MateriaPrima:      nombre,
			CantidadPorUnidad: l.CantidadPorUnidad,
			UnidadMedida:      l.UnidadMedida,
			CostoUnitario:     costoUnit,
			CostoLinea:        costoLinea.Round(4),
		})
	}
	resp.CostoUnitario = costo.Round(2)
	resp.Margen = p.PrecioVenta.Sub(resp.CostoUnitario)
	if p.PrecioVenta.IsPositive() {
		resp.MargenPct = resp.Margen.Div(p.PrecioVenta).Mul(cien).Round(2)
	}
	return resp
}
