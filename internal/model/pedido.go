package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// EstadoPedido is the fulfillment stage of a Pedido.
type EstadoPedido string

const (
	PedidoPendientePago  EstadoPedido = "PENDIENTE_PAGO"
	PedidoRecibido       EstadoPedido = "RECIBIDO"
	PedidoPagoConfirmado EstadoPedido = "PAGO_CONFIRMADO"
	PedidoEnPreparacion  EstadoPedido = "EN_PREPARACION"
	PedidoListo          EstadoPedido = "LISTO"
	PedidoEnRuta         EstadoPedido = "EN_RUTA"
	PedidoEntregado      EstadoPedido = "ENTREGADO"
	PedidoCancelado      EstadoPedido = "CANCELADO"
)

// siguienteEtapa is the one-step forward pipeline used by Avanzar.
// PENDIENTE_PAGO only leaves through proof approval; ENTREGADO only through
// the delivery transition, which commits stock.
var siguienteEtapa = map[EstadoPedido]EstadoPedido{
	PedidoRecibido:       PedidoPagoConfirmado,
	PedidoPagoConfirmado: PedidoEnPreparacion,
	PedidoEnPreparacion:  PedidoListo,
	PedidoListo:          PedidoEnRuta,
}

// SiguienteEtapa returns the next preparation stage, if any.
func (e EstadoPedido) SiguienteEtapa() (EstadoPedido, bool) {
	s, ok := siguienteEtapa[e]
	return s, ok
}

// Entregable reports whether the delivery transition may start from e.
// Besides the normal EN_RUTA path, staff may jump straight to delivery from
// any earlier non-terminal stage.
func (e EstadoPedido) Entregable() bool {
	switch e {
	case PedidoPendientePago, PedidoRecibido, PedidoPagoConfirmado,
		PedidoEnPreparacion, PedidoListo, PedidoEnRuta:
		return true
	}
	return false
}

// Cancelable reports whether e precedes any stock commitment and may be cancelled.
func (e EstadoPedido) Cancelable() bool {
	return e == PedidoRecibido || e == PedidoPendientePago
}

// Editable reports whether the lines may still be replaced.
func (e EstadoPedido) Editable() bool { return e == PedidoRecibido }

func (e EstadoPedido) Terminal() bool {
	return e == PedidoEntregado || e == PedidoCancelado
}

// Pedido is a direct customer order. Stock is committed only when it
// reaches ENTREGADO.
type Pedido struct {
	ID                   uint            `gorm:"primaryKey"`
	ClienteID            uint            `gorm:"not null;index"`
	Estado               EstadoPedido    `gorm:"type:varchar(20);not null;index"`
	DescuentoPct         decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0"`
	Subtotal             decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Total                decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Retrasado            bool            `gorm:"not null;default:false"`
	MotivoRetraso        *string
	FechaEstimadaEntrega *time.Time
	FechaEntrega         *time.Time
	MotivoCancelacion    *string
	Notas                *string
	CreatedAt            time.Time
	UpdatedAt            time.Time

	Cliente      *Cliente          `gorm:"foreignKey:ClienteID"`
	Detalles     []PedidoDetalle   `gorm:"foreignKey:PedidoID"`
	Pagos        []PagoPedido      `gorm:"foreignKey:PedidoID"`
	Comprobantes []ComprobantePago `gorm:"foreignKey:PedidoID"`
}

func (Pedido) TableName() string { return "pedidos" }

type PedidoDetalle struct {
	ID             uint            `gorm:"primaryKey"`
	PedidoID       uint            `gorm:"not null;index"`
	ProductoID     uint            `gorm:"not null;index"`
	Cantidad       int             `gorm:"not null"`
	PrecioUnitario decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Subtotal       decimal.Decimal `gorm:"type:decimal(12,2);not null"`

	Producto *Producto `gorm:"foreignKey:ProductoID"`
}

func (PedidoDetalle) TableName() string { return "pedido_detalles" }

// PagoPedido is an append-only installment against an order.
type PagoPedido struct {
	ID         uint            `gorm:"primaryKey"`
	PedidoID   uint            `gorm:"not null;index"`
	Monto      decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	MetodoPago string          `gorm:"type:varchar(20);not null"`
	Fecha      time.Time       `gorm:"not null"`
	Nota       *string
	CreatedAt  time.Time
}

func (PagoPedido) TableName() string { return "pagos_pedido" }

// EstadoRevision is the review state of a proof of payment.
type EstadoRevision string

const (
	RevisionPendiente EstadoRevision = "PENDIENTE"
	RevisionAprobado  EstadoRevision = "APROBADO"
	RevisionRechazado EstadoRevision = "RECHAZADO"
)

// ComprobantePago is a client-submitted proof of payment. Once reviewed it
// is immutable.
type ComprobantePago struct {
	ID       uint `gorm:"primaryKey"`
	PedidoID uint `gorm:"not null;index"`
	// Referencia is an object-storage key or an external URL.
	Referencia     string          `gorm:"not null"`
	MontoDeclarado decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Estado         EstadoRevision  `gorm:"type:varchar(20);not null;default:'PENDIENTE'"`
	NotaRevision   *string
	RevisadoAt     *time.Time
	CreatedAt      time.Time
}

func (ComprobantePago) TableName() string { return "comprobantes_pago" }
