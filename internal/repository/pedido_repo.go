package repository

import (
	"context"

	"github.com/crisgp1/orodetamar-sub000/internal/model"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PedidoFilter struct {
	ClienteID *uint
	Estado    string
	Page      int
	Limit     int
}

type PedidoRepository interface {
	Create(ctx context.Context, tx *gorm.DB, p *model.Pedido) error
	FindByID(ctx context.Context, id uint) (*model.Pedido, error)
	FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id uint) (*model.Pedido, error)
	// ReemplazarDetalles deletes every line of the order and inserts lineas.
	ReemplazarDetalles(ctx context.Context, tx *gorm.DB, pedidoID uint, lineas []model.PedidoDetalle) error
	ActualizarEstado(ctx context.Context, tx *gorm.DB, id uint, estadoActual model.EstadoPedido, campos map[string]interface{}) (bool, error)
	CreatePago(ctx context.Context, tx *gorm.DB, p *model.PagoPedido) error
	SumPagos(ctx context.Context, tx *gorm.DB, pedidoID uint) (decimal.Decimal, error)
	List(ctx context.Context, filter PedidoFilter) ([]model.Pedido, int64, error)

	CreateComprobante(ctx context.Context, tx *gorm.DB, c *model.ComprobantePago) error
	FindComprobanteForUpdate(ctx context.Context, tx *gorm.DB, pedidoID, comprobanteID uint) (*model.ComprobantePago, error)
	// RevisarComprobante moves a PENDIENTE proof to estado; false if it was already reviewed.
	RevisarComprobante(ctx context.Context, tx *gorm.DB, c *model.ComprobantePago) (bool, error)
	DB() *gorm.DB
}

type pedidoRepo struct{ db *gorm.DB }

func NewPedidoRepository(db *gorm.DB) PedidoRepository { return &pedidoRepo{db: db} }

func (r *pedidoRepo) DB() *gorm.DB { return r.db }

func (r *pedidoRepo) Create(ctx context.Context, tx *gorm.DB, p *model.Pedido) error {
	return conn(ctx, r.db, tx).Create(p).Error
}

func (r *pedidoRepo) FindByID(ctx context.Context, id uint) (*model.Pedido, error) {
	var p model.Pedido
	err := r.db.WithContext(ctx).
		Preload("Cliente").
		Preload("Detalles", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Preload("Detalles.Producto").
		Preload("Pagos", func(db *gorm.DB) *gorm.DB { return db.Order("fecha ASC, id ASC") }).
		Preload("Comprobantes", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		First(&p, id).Error
	return &p, err
}

func (r *pedidoRepo) FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id uint) (*model.Pedido, error) {
	db := conn(ctx, r.db, tx)
	var p model.Pedido
	if err := db.Clauses(clause.Locking{Strength: "UPDATE"}).First(&p, id).Error; err != nil {
		return nil, err
	}
	err := db.Preload("Producto").Where("pedido_id = ?", id).Order("id ASC").Find(&p.Detalles).Error
	return &p, err
}

func (r *pedidoRepo) ReemplazarDetalles(ctx context.Context, tx *gorm.DB, pedidoID uint, lineas []model.PedidoDetalle) error {
	db := conn(ctx, r.db, tx)
	if err := db.Where("pedido_id = ?", pedidoID).Delete(&model.PedidoDetalle{}).Error; err != nil {
		return err
	}
	for i := range lineas {
		lineas[i].ID = 0
		lineas[i].PedidoID = pedidoID
	}
	if len(lineas) == 0 {
		return nil
	}
	return db.Omit("Producto").Create(&lineas).Error
}

func (r *pedidoRepo) ActualizarEstado(ctx context.Context, tx *gorm.DB, id uint, estadoActual model.EstadoPedido, campos map[string]interface{}) (bool, error) {
	res := conn(ctx, r.db, tx).Model(&model.Pedido{}).
		Where("id = ? AND estado = ?", id, estadoActual).
		Updates(campos)
	return res.RowsAffected > 0, res.Error
}

func (r *pedidoRepo) CreatePago(ctx context.Context, tx *gorm.DB, p *model.PagoPedido) error {
	return conn(ctx, r.db, tx).Create(p).Error
}

func (r *pedidoRepo) SumPagos(ctx context.Context, tx *gorm.DB, pedidoID uint) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := conn(ctx, r.db, tx).
		Raw("SELECT COALESCE(SUM(monto), 0) FROM pagos_pedido WHERE pedido_id = ?", pedidoID).
		Row().Scan(&total)
	return total, err
}

func (r *pedidoRepo) List(ctx context.Context, filter PedidoFilter) ([]model.Pedido, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.Pedido{})
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
	var out []model.Pedido
	err := q.Preload("Cliente").Preload("Detalles.Producto").
		Order("created_at DESC, id DESC").
		Offset(offset).Limit(limit).
		Find(&out).Error
	return out, total, err
}

func (r *pedidoRepo) CreateComprobante(ctx context.Context, tx *gorm.DB, c *model.ComprobantePago) error {
	return conn(ctx, r.db, tx).Create(c).Error
}

func (r *pedidoRepo) FindComprobanteForUpdate(ctx context.Context, tx *gorm.DB, pedidoID, comprobanteID uint) (*model.ComprobantePago, error) {
	var c model.ComprobantePago
	err := conn(ctx, r.db, tx).Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ? AND pedido_id = ?", comprobanteID, pedidoID).
		First(&c).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *pedidoRepo) RevisarComprobante(ctx context.Context, tx *gorm.DB, c *model.ComprobantePago) (bool, error) {
	res := conn(ctx, r.db, tx).Model(&model.ComprobantePago{}).
		Where("id = ? AND estado = ?", c.ID, model.RevisionPendiente).
		Updates(map[string]interface{}{
			"estado":        c.Estado,
			"nota_revision": c.NotaRevision,
			"revisado_at":   c.RevisadoAt,
		})
	return res.RowsAffected > 0, res.Error
}
