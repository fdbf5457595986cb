package repository

import (
	"context"

	"github.com/crisgp1/orodetamar-sub000/internal/model"

	"gorm.io/gorm"
)

// HistorialPrecioRepository is the append-only audit of catalog price changes.
type HistorialPrecioRepository interface {
	Registrar(ctx context.Context, tx *gorm.DB, h *model.HistorialPrecio) error
	ListByProducto(ctx context.Context, productoID uint, page, limit int) ([]model.HistorialPrecio, int64, error)
}

type historialPrecioRepository struct{ db *gorm.DB }

func NewHistorialPrecioRepository(db *gorm.DB) HistorialPrecioRepository {
	return &historialPrecioRepository{db: db}
}

func (r *historialPrecioRepository) Registrar(ctx context.Context, tx *gorm.DB, h *model.HistorialPrecio) error {
	return conn(ctx, r.db, tx).Create(h).Error
}

// ListByProducto returns paginated price-change records for one product,
// newest first.
func (r *historialPrecioRepository) ListByProducto(ctx context.Context, productoID uint, page, limit int) ([]model.HistorialPrecio, int64, error) {
	_, limit, offset := paginate(page, limit)

	var total int64
	if err := r.db.WithContext(ctx).
		Model(&model.HistorialPrecio{}).
		Where("producto_id = ?", productoID).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []model.HistorialPrecio
	if err := r.db.WithContext(ctx).
		Where("producto_id = ?", productoID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Offset(offset).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}
