package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Producto is a finished good. Its stock is never stored here: the available
// quantity is always the sum of its MovimientoInventario rows.
type Producto struct {
	ID           uint            `gorm:"primaryKey"`
	Nombre       string          `gorm:"index;not null"`
	Presentacion string          `gorm:"not null"` // e.g. "frasco 250 g"
	PrecioVenta  decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	// PrecioMayoreo is used for consignment when set.
	PrecioMayoreo *decimal.Decimal `gorm:"type:decimal(12,2)"`
	Activo        bool             `gorm:"not null;default:true"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (Producto) TableName() string { return "productos" }

// PrecioConsignacion returns the unit price charged to a consignment client.
func (p *Producto) PrecioConsignacion() decimal.Decimal {
	if p.PrecioMayoreo != nil && p.PrecioMayoreo.IsPositive() {
		return *p.PrecioMayoreo
	}
	return p.PrecioVenta
}
