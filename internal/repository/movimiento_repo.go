package repository

import (
	"context"

	"github.com/crisgp1/orodetamar-sub000/internal/model"

	"gorm.io/gorm"
)

// MovimientoFilter defines filters for listing finished-goods movements.
type MovimientoFilter struct {
	ProductoID     *uint
	Tipo           string
	ConsignacionID *uint
	PedidoID       *uint
	Page           int
	Limit          int
}

// MovimientoRepository is the finished-goods ledger. It only appends and
// aggregates; there is no update or delete.
type MovimientoRepository interface {
	// Registrar validates and appends one movement.
	Registrar(ctx context.Context, tx *gorm.DB, m *model.MovimientoInventario) error
	// Disponible returns SUM(cantidad) for the product.
	Disponible(ctx context.Context, tx *gorm.DB, productoID uint) (int, error)
	// DisponiblePorProducto returns the ledger sum of every product with movements.
	DisponiblePorProducto(ctx context.Context) (map[uint]int, error)
	// Bloquear serializes availability checks on the given products until tx ends.
	Bloquear(ctx context.Context, tx *gorm.DB, productoIDs []uint) error
	List(ctx context.Context, filter MovimientoFilter) ([]model.MovimientoInventario, int64, error)
	DB() *gorm.DB
}

type movimientoRepo struct{ db *gorm.DB }

func NewMovimientoRepository(db *gorm.DB) MovimientoRepository {
	return &movimientoRepo{db: db}
}

func (r *movimientoRepo) DB() *gorm.DB { return r.db }

func (r *movimientoRepo) Registrar(ctx context.Context, tx *gorm.DB, m *model.MovimientoInventario) error {
	if err := m.Validar(); err != nil {
		return err
	}
	return conn(ctx, r.db, tx).Create(m).Error
}

func (r *movimientoRepo) Disponible(ctx context.Context, tx *gorm.DB, productoID uint) (int, error) {
	var total int64
	err := conn(ctx, r.db, tx).
		Raw("SELECT COALESCE(SUM(cantidad), 0) FROM movimientos_inventario WHERE producto_id = ?", productoID).
		Row().Scan(&total)
	return int(total), err
}

func (r *movimientoRepo) DisponiblePorProducto(ctx context.Context) (map[uint]int, error) {
	var rows []struct {
		ProductoID uint
		Total      int64
	}
	err := r.db.WithContext(ctx).
		Raw("SELECT producto_id, COALESCE(SUM(cantidad), 0) AS total FROM movimientos_inventario GROUP BY producto_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[uint]int, len(rows))
	for _, row := range rows {
		out[row.ProductoID] = int(row.Total)
	}
	return out, nil
}

func (r *movimientoRepo) Bloquear(ctx context.Context, tx *gorm.DB, productoIDs []uint) error {
	if tx == nil {
		return nil
	}
	return lockIDs(ctx, tx, lockProducto, productoIDs)
}

func (r *movimientoRepo) List(ctx context.Context, filter MovimientoFilter) ([]model.MovimientoInventario, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.MovimientoInventario{})
	if filter.ProductoID != nil {
		q = q.Where("producto_id = ?", *filter.ProductoID)
	}
	if filter.Tipo != "" {
		q = q.Where("tipo = ?", filter.Tipo)
	}
	if filter.ConsignacionID != nil {
		q = q.Where("consignacion_id = ?", *filter.ConsignacionID)
	}
	if filter.PedidoID != nil {
		q = q.Where("pedido_id = ?", *filter.PedidoID)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	_, limit, offset := paginate(filter.Page, filter.Limit)
	var movimientos []model.MovimientoInventario
	err := q.Preload("Producto").Order("created_at DESC, id DESC").Offset(offset).Limit(limit).Find(&movimientos).Error
	return movimientos, total, err
}
