package repository

import (
	"context"

	"github.com/crisgp1/orodetamar-sub000/internal/model"

	"gorm.io/gorm"
)

type ProductoFilter struct {
	Nombre string
	// Activo: "false" = inactivos, "all" = todos, anything else = activos
	Activo string
}

// ProductoRepository defines the data access contract for products.
// Services depend on this interface, not on the concrete GORM implementation.
type ProductoRepository interface {
	Create(ctx context.Context, p *model.Producto) error
	FindByID(ctx context.Context, id uint) (*model.Producto, error)
	List(ctx context.Context, filter ProductoFilter) ([]model.Producto, error)
	Update(ctx context.Context, tx *gorm.DB, p *model.Producto) error
	SetActivo(ctx context.Context, id uint, activo bool) error
	DB() *gorm.DB
}

type productoRepo struct{ db *gorm.DB }

func NewProductoRepository(db *gorm.DB) ProductoRepository { return &productoRepo{db: db} }

func (r *productoRepo) DB() *gorm.DB { return r.db }

func (r *productoRepo) Create(ctx context.Context, p *model.Producto) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *productoRepo) FindByID(ctx context.Context, id uint) (*model.Producto, error) {
	var p model.Producto
	err := r.db.WithContext(ctx).First(&p, id).Error
	return &p, err
}

func (r *productoRepo) List(ctx context.Context, filter ProductoFilter) ([]model.Producto, error) {
	q := r.db.WithContext(ctx).Model(&model.Producto{})
	switch filter.Activo {
	case "false":
		q = q.Where("activo = false")
	case "all":
	default:
		q = q.Where("activo = true")
	}
	if filter.Nombre != "" {
		q = q.Where("nombre ILIKE ?", "%"+filter.Nombre+"%")
	}
	var productos []model.Producto
	err := q.Order("nombre ASC").Find(&productos).Error
	return productos, err
}

// Update persists catalog fields only; the ledger is untouched so past
// movements keep the prices they were written with.
func (r *productoRepo) Update(ctx context.Context, tx *gorm.DB, p *model.Producto) error {
	return conn(ctx, r.db, tx).Save(p).Error
}

func (r *productoRepo) SetActivo(ctx context.Context, id uint, activo bool) error {
	return r.db.WithContext(ctx).Model(&model.Producto{}).Where("id = ?", id).Update("activo", activo).Error
}
