package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// HistorialPrecio records one catalog price change. Rows are append-only.
type HistorialPrecio struct {
	ID             uint             `gorm:"primaryKey"`
	ProductoID     uint             `gorm:"not null;index"`
	VentaAntes     decimal.Decimal  `gorm:"type:decimal(12,2);not null"`
	VentaDespues   decimal.Decimal  `gorm:"type:decimal(12,2);not null"`
	MayoreoAntes   *decimal.Decimal `gorm:"type:decimal(12,2)"`
	MayoreoDespues *decimal.Decimal `gorm:"type:decimal(12,2)"`
	// Usuario is the JWT subject that made the change, when known.
	Usuario   string
	CreatedAt time.Time
}

func (HistorialPrecio) TableName() string { return "historial_precios" }
