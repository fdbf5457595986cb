package model

import "github.com/shopspring/decimal"

// Receta is one bill-of-materials line: how much of a raw material one unit
// of the product consumes. Unique per (producto, materia prima).
type Receta struct {
	ID                uint            `gorm:"primaryKey"`
	ProductoID        uint            `gorm:"uniqueIndex:idx_receta_par;not null"`
	MateriaPrimaID    uint            `gorm:"uniqueIndex:idx_receta_par;not null"`
	CantidadPorUnidad decimal.Decimal `gorm:"type:decimal(12,4);not null"`
	UnidadMedida      string          `gorm:"not null"`

	Producto     *Producto     `gorm:"foreignKey:ProductoID"`
	MateriaPrima *MateriaPrima `gorm:"foreignKey:MateriaPrimaID"`
}

func (Receta) TableName() string { return "recetas" }

// Consumo returns the raw material needed to produce cantidad units.
func (r *Receta) Consumo(cantidad int) decimal.Decimal {
	return r.CantidadPorUnidad.Mul(decimal.NewFromInt(int64(cantidad)))
}
