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

// ProduccionService turns raw materials into finished goods through the
// product's recipe.
type ProduccionService interface {
	Producir(ctx context.Context, req dto.ProduccionRequest) (*dto.ProduccionResponse, error)
}

type produccionService struct {
	movimientos repository.MovimientoRepository
	productos   repository.ProductoRepository
	recetas     repository.RecetaRepository
	materias    repository.MateriaPrimaRepository
}

func NewProduccionService(
	movimientos repository.MovimientoRepository,
	productos repository.ProductoRepository,
	recetas repository.RecetaRepository,
	materias repository.MateriaPrimaRepository,
) ProduccionService {
	return &produccionService{
		movimientos: movimientos,
		productos:   productos,
		recetas:     recetas,
		materias:    materias,
	}
}

// ── Producir ─────────────────────────────────────────────────────────────────
// Inside one transaction:
//  1. Load the recipe and compute consumption = ratio x cantidad per line
//  2. Lock every raw material and check all lines before writing anything
//  3. Append PRODUCCION (+cantidad) and one CONSUMO (-consumption) per line
//
// A product without recipe lines produces without consuming anything.

func (s *produccionService) Producir(ctx context.Context, req dto.ProduccionRequest) (*dto.ProduccionResponse, error) {
	if req.Cantidad <= 0 {
		return nil, apierror.Validation("la cantidad a producir debe ser mayor a cero")
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
		nota = "Produccion"
	}

	var (
		produccion model.MovimientoInventario
		consumos   []model.MovimientoMateriaPrima
	)
	txErr := runTx(ctx, s.movimientos.DB(), func(tx *gorm.DB) error {
		lineas, err := s.recetas.ListByProducto(ctx, tx, p.ID)
		if err != nil {
			return fmt.Errorf("receta producto %d: %w", p.ID, err)
		}

		ids := make([]uint, 0, len(lineas))
		for _, l := range lineas {
			ids = append(ids, l.MateriaPrimaID)
		}
		if err := s.materias.Bloquear(ctx, tx, ids); err != nil {
			return fmt.Errorf("bloquear materias primas: %w", err)
		}

		for i := range lineas {
			l := &lineas[i]
			requerido := l.Consumo(req.Cantidad)
			disponible, err := s.materias.Disponible(ctx, tx, l.MateriaPrimaID)
			if err != nil {
				return fmt.Errorf("disponible materia prima %d: %w", l.MateriaPrimaID, err)
			}
			if disponible.LessThan(requerido) {
				nombre := fmt.Sprintf("materia prima %d", l.MateriaPrimaID)
				if l.MateriaPrima != nil {
					nombre = l.MateriaPrima.Nombre
				}
				return apierror.Precondition("materia prima insuficiente: %s (disponible %s, requerido %s %s)",
					nombre, disponible.String(), requerido.String(), l.UnidadMedida)
			}
		}

		produccion = model.MovimientoInventario{
			ProductoID: p.ID,
			Cantidad:   req.Cantidad,
			Tipo:       model.MovProduccion,
			Nota:       nota,
		}
		if err := s.movimientos.Registrar(ctx, tx, &produccion); err != nil {
			return fmt.Errorf("registrar produccion: %w", err)
		}

		consumos = make([]model.MovimientoMateriaPrima, 0, len(lineas))
		for i := range lineas {
			l := &lineas[i]
			consumo := model.MovimientoMateriaPrima{
				MateriaPrimaID: l.MateriaPrimaID,
				Cantidad:       l.Consumo(req.Cantidad).Neg(),
				Tipo:           model.MovMPConsumo,
				ProductoID:     &p.ID,
				Nota:           fmt.Sprintf("Produccion de %d x %s", req.Cantidad, nombreProducto(p, p.ID)),
			}
			if l.MateriaPrima != nil {
				costo := l.MateriaPrima.CostoUnitario
				consumo.CostoUnitario = &costo
			}
			if err := s.materias.RegistrarMovimiento(ctx, tx, &consumo); err != nil {
				return fmt.Errorf("registrar consumo materia prima %d: %w", l.MateriaPrimaID, err)
			}
			consumos = append(consumos, consumo)
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	log.Info().
		Uint("producto_id", p.ID).
		Int("cantidad", req.Cantidad).
		Int("consumos", len(consumos)).
		Msg("produccion registrada")

	resp := &dto.ProduccionResponse{
		Movimiento: movimientoToResponse(&produccion),
		Consumos:   make([]dto.MovimientoMPResponse, 0, len(consumos)),
	}
	for i := range consumos {
		resp.Consumos = append(resp.Consumos, movimientoMPToResponse(&consumos[i]))
	}
	return resp, nil
}
