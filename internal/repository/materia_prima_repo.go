package repository

import (
	"context"

	"github.com/crisgp1/orodetamar-sub000/internal/model"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type MovimientoMPFilter struct {
	MateriaPrimaID *uint
	Tipo           string
	Page           int
	Limit          int
}

// MateriaPrimaRepository covers the raw-material catalog and its ledger.
type MateriaPrimaRepository interface {
	Create(ctx context.Context, m *model.MateriaPrima) error
	FindByID(ctx context.Context, id uint) (*model.MateriaPrima, error)
	List(ctx context.Context, soloActivas bool) ([]model.MateriaPrima, error)
	ActualizarCosto(ctx context.Context, tx *gorm.DB, id uint, costo decimal.Decimal) error

	RegistrarMovimiento(ctx context.Context, tx *gorm.DB, m *model.MovimientoMateriaPrima) error
	Disponible(ctx context.Context, tx *gorm.DB, materiaPrimaID uint) (decimal.Decimal, error)
	DisponiblePorMateria(ctx context.Context) (map[uint]decimal.Decimal, error)
	Bloquear(ctx context.Context, tx *gorm.DB, materiaPrimaIDs []uint) error
	ListMovimientos(ctx context.Context, filter MovimientoMPFilter) ([]model.MovimientoMateriaPrima, int64, error)
	DB() *gorm.DB
}

type materiaPrimaRepo struct{ db *gorm.DB }

func NewMateriaPrimaRepository(db *gorm.DB) MateriaPrimaRepository {
	return &materiaPrimaRepo{db: db}
}

func (r *materiaPrimaRepo) DB() *gorm.DB { return r.db }

func (r *materiaPrimaRepo) Create(ctx context.Context, m *model.MateriaPrima) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *materiaPrimaRepo) FindByID(ctx context.Context, id uint) (*model.MateriaPrima, error) {
	var m model.MateriaPrima
	err := r.db.WithContext(ctx).First(&m, id).Error
	return &m, err
}

func (r *materiaPrimaRepo) List(ctx context.Context, soloActivas bool) ([]model.MateriaPrima, error) {
	q := r.db.WithContext(ctx).Model(&model.MateriaPrima{})
	if soloActivas {
		q = q.Where("activo = true")
	}
	var out []model.MateriaPrima
	err := q.Order("nombre ASC").Find(&out).Error
	return out, err
}

func (r *materiaPrimaRepo) ActualizarCosto(ctx context.Context, tx *gorm.DB, id uint, costo decimal.Decimal) error {
	return conn(ctx, r.db, tx).Model(&model.MateriaPrima{}).Where("id = ?", id).
		Update("costo_unitario", costo).Error
}

func (r *materiaPrimaRepo) RegistrarMovimiento(ctx context.Context, tx *gorm.DB, m *model.MovimientoMateriaPrima) error {
	if err := m.Validar(); err != nil {
		return err
	}
	return conn(ctx, r.db, tx).Create(m).Error
}

func (r *materiaPrimaRepo) Disponible(ctx context.Context, tx *gorm.DB, materiaPrimaID uint) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := conn(ctx, r.db, tx).
		Raw("SELECT COALESCE(SUM(cantidad), 0) FROM movimientos_materia_prima WHERE materia_prima_id = ?", materiaPrimaID).
		Row().Scan(&total)
	return total, err
}

func (r *materiaPrimaRepo) DisponiblePorMateria(ctx context.Context) (map[uint]decimal.Decimal, error) {
	var rows []struct {
		MateriaPrimaID uint
		Total          decimal.Decimal
	}
	err := r.db.WithContext(ctx).
		Raw("SELECT materia_prima_id, COALESCE(SUM(cantidad), 0) AS total FROM movimientos_materia_prima GROUP BY materia_prima_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[uint]decimal.Decimal, len(rows))
	for _, row := range rows {
		out[row.MateriaPrimaID] = row.Total
	}
	return out, nil
}

func (r *materiaPrimaRepo) Bloquear(ctx context.Context, tx *gorm.DB, materiaPrimaIDs []uint) error {
	if tx == nil {
		return nil
	}
	return lockIDs(ctx, tx, lockMateriaPrima, materiaPrimaIDs)
}

func (r *materiaPrimaRepo) ListMovimientos(ctx context.Context, filter MovimientoMPFilter) ([]model.MovimientoMateriaPrima, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.MovimientoMateriaPrima{})
	if filter.MateriaPrimaID != nil {
		q = q.Where("materia_prima_id = ?", *filter.MateriaPrimaID)
	}
	if filter.Tipo != "" {
		q = q.Where("tipo = ?", filter.Tipo)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	_, limit, offset := paginate(filter.Page, filter.Limit)
	var movs []model.MovimientoMateriaPrima
	err := q.Preload("MateriaPrima").Order("created_at DESC, id DESC").Offset(offset).Limit(limit).Find(&movs).Error
	return movs, total, err
}
