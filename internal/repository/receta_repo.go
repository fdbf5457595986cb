package repository

import (
	"context"

	"github.com/crisgp1/orodetamar-sub000/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type RecetaRepository interface {
	// Guardar inserts the line or updates the ratio of the existing pair.
	Guardar(ctx context.Context, r *model.Receta) error
	Eliminar(ctx context.Context, productoID, materiaPrimaID uint) (bool, error)
	ListByProducto(ctx context.Context, tx *gorm.DB, productoID uint) ([]model.Receta, error)
}

type recetaRepo struct{ db *gorm.DB }

func NewRecetaRepository(db *gorm.DB) RecetaRepository { return &recetaRepo{db: db} }

func (r *recetaRepo) Guardar(ctx context.Context, rec *model.Receta) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "producto_id"}, {Name: "materia_prima_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"cantidad_por_unidad", "unidad_medida"}),
	}).Create(rec).Error
}

func (r *recetaRepo) Eliminar(ctx context.Context, productoID, materiaPrimaID uint) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("producto_id = ? AND materia_prima_id = ?", productoID, materiaPrimaID).
		Delete(&model.Receta{})
	return res.RowsAffected > 0, res.Error
}

func (r *recetaRepo) ListByProducto(ctx context.Context, tx *gorm.DB, productoID uint) ([]model.Receta, error) {
	var lineas []model.Receta
	err := conn(ctx, r.db, tx).Preload("MateriaPrima").
		Where("producto_id = ?", productoID).
		Order("materia_prima_id ASC").
		Find(&lineas).Error
	return lineas, err
}
