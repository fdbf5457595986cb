package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ─── Request DTOs ────────────────────────────────────────────────────────────

type LineaPedidoRequest struct {
	ProductoID uint `json:"producto_id" validate:"required"`
	Cantidad   int  `json:"cantidad"    validate:"required,gt=0"`
}

type CrearPedidoRequest struct {
	ClienteID            uint                 `json:"cliente_id"    validate:"required"`
	DescuentoPct         decimal.Decimal      `json:"descuento_pct" validate:"min=0,max=100"`
	// RequierePago creates the order at PENDIENTE_PAGO until a proof is approved.
	RequierePago         bool                 `json:"requiere_pago"`
	FechaEstimadaEntrega *time.Time           `json:"fecha_estimada_entrega"`
	Notas                *string              `json:"notas"    validate:"omitempty,max=500"`
	Detalles             []LineaPedidoRequest `json:"detalles" validate:"required,min=1,dive"`
}

type EditarPedidoRequest struct {
	DescuentoPct *decimal.Decimal     `json:"descuento_pct"`
	Detalles     []LineaPedidoRequest `json:"detalles" validate:"required,min=1,dive"`
}

type EntregarPedidoRequest struct {
	// MetodoPago, when set, records an immediate payment of the outstanding balance.
	MetodoPago string `json:"metodo_pago" validate:"omitempty,oneof=EFECTIVO TRANSFERENCIA TARJETA DEPOSITO"`
}

type CancelarPedidoRequest struct {
	Motivo string `json:"motivo" validate:"required,min=3,max=250"`
}

type SeguimientoPedidoRequest struct {
	Retrasado            *bool      `json:"retrasado"`
	MotivoRetraso        *string    `json:"motivo_retraso" validate:"omitempty,max=250"`
	FechaEstimadaEntrega *time.Time `json:"fecha_estimada_entrega"`
}

// ComprobanteReferenciaRequest registers a proof hosted elsewhere (URL or
// an already uploaded object key).
type ComprobanteReferenciaRequest struct {
	Referencia     string          `json:"referencia"      validate:"required,max=500"`
	MontoDeclarado decimal.Decimal `json:"monto_declarado" validate:"required,gt=0"`
}

type RevisarComprobanteRequest struct {
	Nota *string `json:"nota" validate:"omitempty,max=250"`
}

type PedidoFilter struct {
	ClienteID *uint  `form:"cliente_id"`
	Estado    string `form:"estado"`
	Page      int    `form:"page,default=1"`
	Limit     int    `form:"limit,default=50"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type PedidoDetalleResponse struct {
	ID             uint            `json:"id"`
	ProductoID     uint            `json:"producto_id"`
	Producto       string          `json:"producto"`
	Cantidad       int             `json:"cantidad"`
	PrecioUnitario decimal.Decimal `json:"precio_unitario"`
	Subtotal       decimal.Decimal `json:"subtotal"`
}

type ComprobanteResponse struct {
	ID             uint            `json:"id"`
	Referencia     string          `json:"referencia"`
	URL            string          `json:"url,omitempty"`
	MontoDeclarado decimal.Decimal `json:"monto_declarado"`
	Estado         string          `json:"estado"`
	NotaRevision   *string         `json:"nota_revision"`
	RevisadoAt     *string         `json:"revisado_at"`
	CreatedAt      string          `json:"created_at"`
}

type PedidoResponse struct {
	ID                   uint                    `json:"id"`
	ClienteID            uint                    `json:"cliente_id"`
	Cliente              string                  `json:"cliente"`
	Estado               string                  `json:"estado"`
	DescuentoPct         decimal.Decimal         `json:"descuento_pct"`
	Subtotal             decimal.Decimal         `json:"subtotal"`
	Total                decimal.Decimal         `json:"total"`
	TotalCobrado         decimal.Decimal         `json:"total_cobrado"`
	SaldoPendiente       decimal.Decimal         `json:"saldo_pendiente"`
	DiasTranscurridos    int                     `json:"dias_transcurridos"`
	Retrasado            bool                    `json:"retrasado"`
	MotivoRetraso        *string                 `json:"motivo_retraso"`
	FechaEstimadaEntrega *string                 `json:"fecha_estimada_entrega"`
	FechaEntrega         *string                 `json:"fecha_entrega"`
	MotivoCancelacion    *string                 `json:"motivo_cancelacion"`
	Notas                *string                 `json:"notas"`
	Detalles             []PedidoDetalleResponse `json:"detalles"`
	Pagos                []PagoResponse          `json:"pagos"`
	Comprobantes         []ComprobanteResponse   `json:"comprobantes"`
	CreatedAt            string                  `json:"created_at"`
}

type PedidoListResponse struct {
	Data       []PedidoResponse `json:"data"`
	Total      int64            `json:"total"`
	Page       int              `json:"page"`
	Limit      int              `json:"limit"`
	TotalPages int              `json:"total_pages"`
}

type PagoPedidoResponse struct {
	Pago           PagoResponse    `json:"pago"`
	SaldoPendiente decimal.Decimal `json:"saldo_pendiente"`
	Liquidado      bool            `json:"liquidado"`
}
