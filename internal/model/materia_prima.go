package model

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// MateriaPrima is a raw material consumed by production through recipes.
type MateriaPrima struct {
	ID           uint   `gorm:"primaryKey"`
	Nombre       string `gorm:"uniqueIndex;not null"`
	UnidadMedida string `gorm:"not null"` // kg | g | l | ml | pieza
	// CostoUnitario is the last purchase cost per UnidadMedida.
	CostoUnitario decimal.Decimal `gorm:"type:decimal(12,4);not null;default:0"`
	Activo        bool            `gorm:"not null;default:true"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (MateriaPrima) TableName() string { return "materias_primas" }

// TipoMovimientoMP classifies a raw-material ledger entry.
type TipoMovimientoMP string

const (
	MovMPCompra  TipoMovimientoMP = "COMPRA"
	MovMPConsumo TipoMovimientoMP = "CONSUMO"
	MovMPMerma   TipoMovimientoMP = "MERMA"
	MovMPAjuste  TipoMovimientoMP = "AJUSTE"
)

var signoMovimientoMP = map[TipoMovimientoMP]int{
	MovMPCompra:  1,
	MovMPConsumo: -1,
	MovMPMerma:   -1,
	MovMPAjuste:  0,
}

// MovimientoMateriaPrima mirrors MovimientoInventario for raw materials.
// Quantities are decimal because materials are measured by weight or volume.
type MovimientoMateriaPrima struct {
	ID             uint             `gorm:"primaryKey"`
	MateriaPrimaID uint             `gorm:"not null;index"`
	Cantidad       decimal.Decimal  `gorm:"type:decimal(12,4);not null"`
	Tipo           TipoMovimientoMP `gorm:"type:varchar(20);not null;index"`
	// ProductoID is set on CONSUMO rows written by a production run.
	ProductoID    *uint            `gorm:"index"`
	CostoUnitario *decimal.Decimal `gorm:"type:decimal(12,4)"`
	Nota          string
	CreatedAt     time.Time

	MateriaPrima *MateriaPrima `gorm:"foreignKey:MateriaPrimaID"`
}

func (MovimientoMateriaPrima) TableName() string { return "movimientos_materia_prima" }

func (m *MovimientoMateriaPrima) Validar() error {
	signo, ok := signoMovimientoMP[m.Tipo]
	if !ok {
		return fmt.Errorf("tipo de movimiento de materia prima desconocido: %q", m.Tipo)
	}
	if m.Cantidad.IsZero() {
		return ErrCantidadCero
	}
	if signo > 0 && m.Cantidad.IsNegative() || signo < 0 && m.Cantidad.IsPositive() {
		return fmt.Errorf("signo invalido para movimiento %s: %s", m.Tipo, m.Cantidad)
	}
	return nil
}
