package model

import (
	"errors"
	"fmt"
	"time"
)

// TipoMovimiento classifies a finished-goods ledger entry.
type TipoMovimiento string

const (
	MovProduccion             TipoMovimiento = "PRODUCCION"
	MovVenta                  TipoMovimiento = "VENTA"
	MovConsignacionSalida     TipoMovimiento = "CONSIGNACION_SALIDA"
	MovConsignacionDevolucion TipoMovimiento = "CONSIGNACION_DEVOLUCION"
	MovReproceso              TipoMovimiento = "REPROCESO"
	MovMerma                  TipoMovimiento = "MERMA"
	MovAjuste                 TipoMovimiento = "AJUSTE"
)

// signo is the required sign of Cantidad per kind: +1, -1, or 0 for either.
var signoMovimiento = map[TipoMovimiento]int{
	MovProduccion:             1,
	MovVenta:                  -1,
	MovConsignacionSalida:     -1,
	MovConsignacionDevolucion: 1,
	MovReproceso:              0,
	MovMerma:                  -1,
	MovAjuste:                 0,
}

// ErrCantidadCero is returned when a movement carries no quantity.
var ErrCantidadCero = errors.New("la cantidad del movimiento no puede ser cero")

// MovimientoInventario is an immutable finished-goods ledger entry.
// Positive Cantidad = entrada, negative = salida. Rows are never updated or
// deleted; a reversal is a new movement.
type MovimientoInventario struct {
	ID             uint           `gorm:"primaryKey"`
	ProductoID     uint           `gorm:"not null;index"`
	Cantidad       int            `gorm:"not null"`
	Tipo           TipoMovimiento `gorm:"type:varchar(30);not null;index"`
	ConsignacionID *uint          `gorm:"index"`
	PedidoID       *uint          `gorm:"index"`
	// ProductoOrigenID links both legs of a reprocessing to the origin product.
	ProductoOrigenID *uint
	Nota             string
	CreatedAt        time.Time

	Producto *Producto `gorm:"foreignKey:ProductoID"`
}

func (MovimientoInventario) TableName() string { return "movimientos_inventario" }

// Validar checks that the kind is known and the sign matches it.
func (m *MovimientoInventario) Validar() error {
	signo, ok := signoMovimiento[m.Tipo]
	if !ok {
		return fmt.Errorf("tipo de movimiento desconocido: %q", m.Tipo)
	}
	if m.Cantidad == 0 {
		return ErrCantidadCero
	}
	if signo > 0 && m.Cantidad < 0 || signo < 0 && m.Cantidad > 0 {
		return fmt.Errorf("signo invalido para movimiento %s: %d", m.Tipo, m.Cantidad)
	}
	return nil
}
