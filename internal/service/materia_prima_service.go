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

// MateriaPrimaService manages raw materials and their parallel ledger.
type MateriaPrimaService interface {
	Crear(ctx context.Context, req dto.CrearMateriaPrimaRequest) (*dto.MateriaPrimaResponse, error)
	ObtenerPorID(ctx context.Context, id uint) (*dto.MateriaPrimaResponse, error)
	Listar(ctx context.Context) ([]dto.MateriaPrimaResponse, error)
	RegistrarCompra(ctx context.Context, id uint, req dto.CompraMPRequest) (*dto.MovimientoMPResponse, error)
	RegistrarMerma(ctx context.Context, id uint, req dto.MermaMPRequest) (*dto.MovimientoMPResponse, error)
	Ajustar(ctx context.Context, id uint, req dto.AjusteMPRequest) (*dto.MovimientoMPResponse, error)
	ListarMovimientos(ctx context.Context, filter dto.MovimientoMPFilter) (*dto.MovimientoMPListResponse, error)
}

type materiaPrimaService struct {
	repo repository.MateriaPrimaRepository
}

func NewMateriaPrimaService(repo repository.MateriaPrimaRepository) MateriaPrimaService {
	return &materiaPrimaService{repo: repo}
}

func materiaPrimaToResponse(m *model.MateriaPrima, disponible decimal.Decimal) *dto.MateriaPrimaResponse {
	return &dto.MateriaPrimaResponse{
		ID:            m.ID,
		Nombre:        m.Nombre,
		UnidadMedida:  m.UnidadMedida,
		CostoUnitario: m.CostoUnitario,
		Disponible:    disponible,
		Activo:        m.Activo,
	}
}

func (s *materiaPrimaService) Crear(ctx context.Context, req dto.CrearMateriaPrimaRequest) (*dto.MateriaPrimaResponse, error) {
	if req.CostoUnitario.IsNegative() {
		return nil, apierror.Validation("el costo unitario no puede ser negativo")
	}
	m := &model.MateriaPrima{
		Nombre:        strings.TrimSpace(req.Nombre),
		UnidadMedida:  strings.TrimSpace(req.UnidadMedida),
		CostoUnitario: req.CostoUnitario,
		Activo:        true,
	}
	if err := s.repo.Create(ctx, m); err != nil {
		return nil, fmt.Errorf("crear materia prima: %w", err)
	}
	log.Info().Uint("materia_prima_id", m.ID).Str("nombre", m.Nombre).Msg("materia prima creada")
	return materiaPrimaToResponse(m, decimal.Zero), nil
}

func (s *materiaPrimaService) ObtenerPorID(ctx context.Context, id uint) (*dto.MateriaPrimaResponse, error) {
	m, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, storeErr(err, "materia prima", id)
	}
	disponible, err := s.repo.Disponible(ctx, nil, id)
	if err != nil {
		return nil, fmt.Errorf("disponible materia prima %d: %w", id, err)
	}
	return materiaPrimaToResponse(m, disponible), nil
}

func (s *materiaPrimaService) Listar(ctx context.Context) ([]dto.MateriaPrimaResponse, error) {
	materias, err := s.repo.List(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("listar materias primas: %w", err)
	}
	disponibles, err := s.repo.DisponiblePorMateria(ctx)
	if err != nil {
		return nil, fmt.Errorf("calcular stock de materias primas: %w", err)
	}
	out := make([]dto.MateriaPrimaResponse, 0, len(materias))
	for i := range materias {
		out = append(out, *materiaPrimaToResponse(&materias[i], disponibles[materias[i].ID]))
	}
	return out, nil
}

// RegistrarCompra appends a COMPRA entry and, when a unit cost is given,
// makes it the material's current cost.
func (s *materiaPrimaService) RegistrarCompra(ctx context.Context, id uint, req dto.CompraMPRequest) (*dto.MovimientoMPResponse, error) {
	if !req.Cantidad.IsPositive() {
		return nil, apierror.Validation("la cantidad comprada debe ser mayor a cero")
	}
	if err := validarCantidadMP(req.Cantidad, "la cantidad comprada"); err != nil {
		return nil, err
	}
	if req.CostoUnitario != nil && req.CostoUnitario.IsNegative() {
		return nil, apierror.Validation("el costo unitario no puede ser negativo")
	}
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return nil, storeErr(err, "materia prima", id)
	}

	mov := model.MovimientoMateriaPrima{
		MateriaPrimaID: id,
		Cantidad:       req.Cantidad,
		Tipo:           model.MovMPCompra,
		CostoUnitario:  req.CostoUnitario,
		Nota:           strings.TrimSpace(req.Nota),
	}
	err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.repo.RegistrarMovimiento(ctx, tx, &mov); err != nil {
			return err
		}
		if req.CostoUnitario != nil {
			return s.repo.ActualizarCosto(ctx, tx, id, *req.CostoUnitario)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("registrar compra materia prima %d: %w", id, err)
	}
	log.Info().Uint("materia_prima_id", id).Str("cantidad", req.Cantidad.String()).Msg("compra de materia prima registrada")
	resp := movimientoMPToResponse(&mov)
	return &resp, nil
}

func (s *materiaPrimaService) RegistrarMerma(ctx context.Context, id uint, req dto.MermaMPRequest) (*dto.MovimientoMPResponse, error) {
	if !req.Cantidad.IsPositive() {
		return nil, apierror.Validation("la cantidad de merma debe ser mayor a cero")
	}
	if err := validarCantidadMP(req.Cantidad, "la cantidad de merma"); err != nil {
		return nil, err
	}
	return s.salida(ctx, id, model.MovMPMerma, req.Cantidad, req.Nota)
}

func (s *materiaPrimaService) Ajustar(ctx context.Context, id uint, req dto.AjusteMPRequest) (*dto.MovimientoMPResponse, error) {
	if req.Cantidad.IsZero() {
		return nil, apierror.Validation("la cantidad del ajuste no puede ser cero")
	}
	if err := validarCantidadMP(req.Cantidad, "la cantidad del ajuste"); err != nil {
		return nil, err
	}
	if req.Cantidad.IsNegative() {
		return s.salida(ctx, id, model.MovMPAjuste, req.Cantidad.Neg(), req.Nota)
	}
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return nil, storeErr(err, "materia prima", id)
	}
	mov := model.MovimientoMateriaPrima{
		MateriaPrimaID: id,
		Cantidad:       req.Cantidad,
		Tipo:           model.MovMPAjuste,
		Nota:           strings.TrimSpace(req.Nota),
	}
	if err := s.repo.RegistrarMovimiento(ctx, nil, &mov); err != nil {
		return nil, fmt.Errorf("ajuste materia prima %d: %w", id, err)
	}
	log.Info().Uint("materia_prima_id", id).Str("cantidad", req.Cantidad.String()).Msg("ajuste de materia prima registrado")
	resp := movimientoMPToResponse(&mov)
	return &resp, nil
}

// salida appends a negative entry after a locked availability check.
func (s *materiaPrimaService) salida(ctx context.Context, id uint, tipo model.TipoMovimientoMP, cantidad decimal.Decimal, nota string) (*dto.MovimientoMPResponse, error) {
	m, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, storeErr(err, "materia prima", id)
	}
	mov := model.MovimientoMateriaPrima{
		MateriaPrimaID: id,
		Cantidad:       cantidad.Neg(),
		Tipo:           tipo,
		Nota:           strings.TrimSpace(nota),
	}
	err = runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.repo.Bloquear(ctx, tx, []uint{id}); err != nil {
			return fmt.Errorf("bloquear materia prima %d: %w", id, err)
		}
		disponible, err := s.repo.Disponible(ctx, tx, id)
		if err != nil {
			return fmt.Errorf("disponible materia prima %d: %w", id, err)
		}
		if disponible.LessThan(cantidad) {
			return apierror.Precondition("stock insuficiente de %s: disponible %s %s, requerido %s",
				m.Nombre, disponible.String(), m.UnidadMedida, cantidad.String())
		}
		return s.repo.RegistrarMovimiento(ctx, tx, &mov)
	})
	if err != nil {
		return nil, err
	}
	log.Info().Uint("materia_prima_id", id).Str("tipo", string(tipo)).Str("cantidad", cantidad.String()).Msg("salida de materia prima registrada")
	resp := movimientoMPToResponse(&mov)
	return &resp, nil
}

func (s *materiaPrimaService) ListarMovimientos(ctx context.Context, filter dto.MovimientoMPFilter) (*dto.MovimientoMPListResponse, error) {
	page, limit := normalizarPagina(filter.Page, filter.Limit, 100)
	movs, total, err := s.repo.ListMovimientos(ctx, repository.MovimientoMPFilter{
		MateriaPrimaID: filter.MateriaPrimaID,
		Tipo:           filter.Tipo,
		Page:           page,
		Limit:          limit,
	})
	if err != nil {
		return nil, fmt.Errorf("listar movimientos de materia prima: %w", err)
	}
	data := make([]dto.MovimientoMPResponse, 0, len(movs))
	for i := range movs {
		data = append(data, movimientoMPToResponse(&movs[i]))
	}
	return &dto.MovimientoMPListResponse{
		Data:       data,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages(total, limit),
	}, nil
}
