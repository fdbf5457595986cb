package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// EstadoConsignacion is the lifecycle state of a Consignacion.
type EstadoConsignacion string

const (
	ConsignacionActiva         EstadoConsignacion = "ACTIVA"
	ConsignacionEnRevision     EstadoConsignacion = "EN_REVISION"
	ConsignacionSaldoPendiente EstadoConsignacion = "SALDO_PENDIENTE"
	ConsignacionLiquidada      EstadoConsignacion = "LIQUIDADA"
	ConsignacionCancelada      EstadoConsignacion = "CANCELADA"
)

// transicionesConsignacion lists the legal targets from each state.
var transicionesConsignacion = map[EstadoConsignacion][]EstadoConsignacion{
	ConsignacionActiva:         {ConsignacionEnRevision, ConsignacionSaldoPendiente, ConsignacionLiquidada, ConsignacionCancelada},
	ConsignacionEnRevision:     {ConsignacionSaldoPendiente, ConsignacionLiquidada},
	ConsignacionSaldoPendiente: {ConsignacionSaldoPendiente, ConsignacionLiquidada},
	ConsignacionLiquidada:      nil,
	ConsignacionCancelada:      nil,
}

// PuedeTransicionarA reports whether destino is reachable from e in one step.
func (e EstadoConsignacion) PuedeTransicionarA(destino EstadoConsignacion) bool {
	for _, d := range transicionesConsignacion[e] {
		if d == destino {
			return true
		}
	}
	return false
}

// Terminal reports whether the consignment is locked.
func (e EstadoConsignacion) Terminal() bool {
	return e == ConsignacionLiquidada || e == ConsignacionCancelada
}

// Liquidable reports whether settlement may start from e.
func (e EstadoConsignacion) Liquidable() bool {
	return e == ConsignacionActiva || e == ConsignacionEnRevision
}

// DestinoDevolucion is where returned units go. It only changes the ledger
// note; physical routing happens outside this service.
type DestinoDevolucion string

const (
	DestinoInventario     DestinoDevolucion = "INVENTARIO"
	DestinoReprocesoPulpa DestinoDevolucion = "REPROCESO_PULPA"
)

// Consignacion is goods left at a client's location on credit.
type Consignacion struct {
	ID               uint               `gorm:"primaryKey"`
	ClienteID        uint               `gorm:"not null;index"`
	FechaEntrega     time.Time          `gorm:"not null"`
	Estado           EstadoConsignacion `gorm:"type:varchar(20);not null;index"`
	TotalVendido     decimal.Decimal    `gorm:"type:decimal(12,2);not null;default:0"`
	TotalCobrado     decimal.Decimal    `gorm:"type:decimal(12,2);not null;default:0"`
	FechaLiquidacion *time.Time
	Notas            *string
	CreatedAt        time.Time
	UpdatedAt        time.Time

	Cliente  *Cliente              `gorm:"foreignKey:ClienteID"`
	Detalles []ConsignacionDetalle `gorm:"foreignKey:ConsignacionID"`
	Pagos    []PagoConsignacion    `gorm:"foreignKey:ConsignacionID"`
}

func (Consignacion) TableName() string { return "consignaciones" }

// SaldoPendiente is what the client still owes on sold units.
func (c *Consignacion) SaldoPendiente() decimal.Decimal {
	saldo := c.TotalVendido.Sub(c.TotalCobrado)
	if saldo.IsNegative() {
		return decimal.Zero
	}
	return saldo
}

// ConsignacionDetalle is one dispatched product line.
// Invariant: CantidadVendida + CantidadDevuelta <= CantidadDejada.
type ConsignacionDetalle struct {
	ID                uint               `gorm:"primaryKey"`
	ConsignacionID    uint               `gorm:"not null;index"`
	ProductoID        uint               `gorm:"not null;index"`
	CantidadDejada    int                `gorm:"not null"`
	CantidadVendida   int                `gorm:"not null;default:0"`
	CantidadDevuelta  int                `gorm:"not null;default:0"`
	PrecioUnitario    decimal.Decimal    `gorm:"type:decimal(12,2);not null"`
	DestinoDevolucion *DestinoDevolucion `gorm:"type:varchar(20)"`
	NotaFaltante      *string

	Producto *Producto `gorm:"foreignKey:ProductoID"`
}

func (ConsignacionDetalle) TableName() string { return "consignacion_detalles" }

// Faltante is the quantity neither sold nor returned.
func (d *ConsignacionDetalle) Faltante() int {
	return d.CantidadDejada - d.CantidadVendida - d.CantidadDevuelta
}

// PagoConsignacion is an append-only payment against a consignment.
type PagoConsignacion struct {
	ID             uint            `gorm:"primaryKey"`
	ConsignacionID uint            `gorm:"not null;index"`
	Monto          decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	MetodoPago     string          `gorm:"type:varchar(20);not null"`
	Fecha          time.Time       `gorm:"not null"`
	Nota           *string
	CreatedAt      time.Time
}

func (PagoConsignacion) TableName() string { return "pagos_consignacion" }
