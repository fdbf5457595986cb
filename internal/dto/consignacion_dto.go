package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ─── Request DTOs ────────────────────────────────────────────────────────────

type LineaConsignacionRequest struct {
	ProductoID uint `json:"producto_id" validate:"required"`
	Cantidad   int  `json:"cantidad"    validate:"required,gt=0"`
}

// CrearConsignacionRequest carries no prices: they are resolved from Producto.
type CrearConsignacionRequest struct {
	ClienteID    uint                       `json:"cliente_id"    validate:"required"`
	FechaEntrega *time.Time                 `json:"fecha_entrega"`
	Notas        *string                    `json:"notas"         validate:"omitempty,max=500"`
	Detalles     []LineaConsignacionRequest `json:"detalles"      validate:"required,min=1,dive"`
}

type PagoRequest struct {
	Monto      decimal.Decimal `json:"monto"       validate:"required,gt=0"`
	MetodoPago string          `json:"metodo_pago" validate:"required,oneof=EFECTIVO TRANSFERENCIA TARJETA DEPOSITO"`
	Fecha      *time.Time      `json:"fecha"`
	Nota       *string         `json:"nota"        validate:"omitempty,max=250"`
}

type LiquidacionDetalleRequest struct {
	DetalleID         uint    `json:"detalle_id"         validate:"required"`
	CantidadVendida   int     `json:"cantidad_vendida"   validate:"min=0"`
	CantidadDevuelta  int     `json:"cantidad_devuelta"  validate:"min=0"`
	DestinoDevolucion string  `json:"destino_devolucion" validate:"omitempty,oneof=INVENTARIO REPROCESO_PULPA"`
	NotaFaltante      *string `json:"nota_faltante"      validate:"omitempty,max=500"`
}

// LiquidarConsignacionRequest must list every detail line exactly once.
type LiquidarConsignacionRequest struct {
	Detalles []LiquidacionDetalleRequest `json:"detalles" validate:"required,min=1,dive"`
	Pago     *PagoRequest                `json:"pago"`
}

type ConsignacionFilter struct {
	ClienteID *uint  `form:"cliente_id"`
	Estado    string `form:"estado"`
	Page      int    `form:"page,default=1"`
	Limit     int    `form:"limit,default=50"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type PagoResponse struct {
	ID         uint            `json:"id"`
	Monto      decimal.Decimal `json:"monto"`
	MetodoPago string          `json:"metodo_pago"`
	Fecha      string          `json:"fecha"`
	Nota       *string         `json:"nota"`
}

type ConsignacionDetalleResponse struct {
	ID                uint            `json:"id"`
	ProductoID        uint            `json:"producto_id"`
	Producto          string          `json:"producto"`
	CantidadDejada    int             `json:"cantidad_dejada"`
	CantidadVendida   int             `json:"cantidad_vendida"`
	CantidadDevuelta  int             `json:"cantidad_devuelta"`
	Faltante          int             `json:"faltante"`
	PrecioUnitario    decimal.Decimal `json:"precio_unitario"`
	Subtotal          decimal.Decimal `json:"subtotal"`
	DestinoDevolucion *string         `json:"destino_devolucion"`
	NotaFaltante      *string         `json:"nota_faltante"`
}

type ConsignacionResponse struct {
	ID                uint                          `json:"id"`
	ClienteID         uint                          `json:"cliente_id"`
	Cliente           string                        `json:"cliente"`
	FechaEntrega      string                        `json:"fecha_entrega"`
	Estado            string                        `json:"estado"`
	TotalVendido      decimal.Decimal               `json:"total_vendido"`
	TotalCobrado      decimal.Decimal               `json:"total_cobrado"`
	SaldoPendiente    decimal.Decimal               `json:"saldo_pendiente"`
	DiasTranscurridos int                           `json:"dias_transcurridos"`
	FechaLiquidacion  *string                       `json:"fecha_liquidacion"`
	Notas             *string                       `json:"notas"`
	Detalles          []ConsignacionDetalleResponse `json:"detalles"`
	Pagos             []PagoResponse                `json:"pagos"`
}

type ConsignacionListResponse struct {
	Data       []ConsignacionResponse `json:"data"`
	Total      int64                  `json:"total"`
	Page       int                    `json:"page"`
	Limit      int                    `json:"limit"`
	TotalPages int                    `json:"total_pages"`
}
