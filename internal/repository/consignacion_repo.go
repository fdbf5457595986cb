package repository

import (
	"context"
	"time"

	"github.com/crisgp1/orodetamar-sub000/internal/model"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ConsignacionFilter struct {
	ClienteID *uint
	Estado    string
	Page      int
	Limit     int
}

type ConsignacionRepository interface {
	Create(ctx context.Context, tx *gorm.DB, c *model.Consignacion) error
	FindByID(ctx context.Context, id uint) (*model.Consignacion, error)
	// FindByIDForUpdate locks the header row (SELECT ... FOR UPDATE) and loads its lines.
	FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id uint) (*model.Consignacion, error)
	UpdateDetalle(ctx context.Context, tx *gorm.DB, d *model.ConsignacionDetalle) error
	// ActualizarEstado applies fields only if the row is still in estadoActual.
	// It returns false when another transaction moved the consignment first.
	ActualizarEstado(ctx context.Context, tx *gorm.DB, id uint, estadoActual model.EstadoConsignacion, campos map[string]interface{}) (bool, error)
	CreatePago(ctx context.Context, tx *gorm.DB, p *model.PagoConsignacion) error
	SumPagos(ctx context.Context, tx *gorm.DB, consignacionID uint) (decimal.Decimal, error)
	List(ctx context.Context, filter ConsignacionFilter) ([]model.Consignacion, int64, error)
	// ListSaldoPendienteAnteriores returns SALDO_PENDIENTE consignments delivered before the cutoff.
	ListSaldoPendienteAnteriores(ctx context.Context, corte time.Time) ([]model.Consignacion, error)
	DB() *gorm.DB
}

type consignacionRepo struct{ db *gorm.DB }

func NewConsignacionRepository(db *gorm.DB) ConsignacionRepository {
	return &consignacionRepo{db: db}
}

func (r *consignacionRepo) DB() *gorm.DB { return r.db }

func (r *consignacionRepo) Create(ctx context.Context, tx *gorm.DB, c *model.Consignacion) error {
	return conn(ctx, r.db, tx).Create(c).Error
}

func (r *consignacionRepo) FindByID(ctx context.Context, id uint) (*model.Consignacion, error) {
	var c model.Consignacion
	err := r.db.WithContext(ctx).
		Preload("Cliente").
		Preload("Detalles", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Preload("Detalles.Producto").
		Preload("Pagos", func(db *gorm.DB) *gorm.DB { return db.Order("fecha ASC, id ASC") }).
		First(&c, id).Error
	return &c, err
}

func (r *consignacionRepo) FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id uint) (*model.Consignacion, error) {
	db := conn(ctx, r.db, tx)
	var c model.Consignacion
	if err := db.Clauses(clause.Locking{Strength: "UPDATE"}).First(&c, id).Error; err != nil {
		return nil, err
	}
	err := db.Preload("Producto").
		Where("consignacion_id = ?", id).
		Order("id ASC").
		Find(&c.Detalles).Error
	return &c, err
}

func (r *consignacionRepo) UpdateDetalle(ctx context.Context, tx *gorm.DB, d *model.ConsignacionDetalle) error {
	return conn(ctx, r.db, tx).Model(&model.ConsignacionDetalle{}).
		Where("id = ?", d.ID).
		Updates(map[string]interface{}{
			"cantidad_vendida":   d.CantidadVendida,
			"cantidad_devuelta":  d.CantidadDevuelta,
			"destino_devolucion": d.DestinoDevolucion,
			"nota_faltante":      d.NotaFaltante,
		}).Error
}

func (r *consignacionRepo) ActualizarEstado(ctx context.Context, tx *gorm.DB, id uint, estadoActual model.EstadoConsignacion, campos map[string]interface{}) (bool, error) {
	res := conn(ctx, r.db, tx).Model(&model.Consignacion{}).
		Where("id = ? AND estado = ?", id, estadoActual).
		Updates(campos)
	return res.RowsAffected > 0, res.Error
}

func (r *consignacionRepo) CreatePago(ctx context.Context, tx *gorm.DB, p *model.PagoConsignacion) error {
	return conn(ctx, r.db, tx).Create(p).Error
}

func (r *consignacionRepo) SumPagos(ctx context.Context, tx *gorm.DB, consignacionID uint) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := conn(ctx, r.db, tx).
		Raw("SELECT COALESCE(SUM(monto), 0) FROM pagos_consignacion WHERE consignacion_id = ?", consignacionID).
		Row().Scan(&total)
	return total, err
}

func (r *consignacionRepo) List(ctx context.Context, filter ConsignacionFilter) ([]model.Consignacion, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.Consignacion{})
	if filter.ClienteID != nil {
		q = q.Where("cliente_id = ?", *filter.ClienteID)
	}
	if filter.Estado != "" {
		q = q.Where("estado = ?", filter.Estado)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	_, limit, offset := paginate(filter.Page, filter.Limit)
	var out []model.Consignacion
	err := q.Preload("Cliente").Preload("Detalles.Producto").
		Order("fecha_entrega DESC, id DESC").
		Offset(offset).Limit(limit).
		Find(&out).Error
	return out, total, err
}

func (r *consignacionRepo) ListSaldoPendienteAnteriores(ctx context.Context, corte time.Time) ([]model.Consignacion, error) {
	var out []model.Consignacion
	err := r.db.WithContext(ctx).Preload("Cliente").
		Where("estado = ? AND fecha_entrega < ?", model.ConsignacionSaldoPendiente, corte).
		Order("fecha_entrega ASC").
		Find(&out).Error
	return out, err
}
