package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CrearProductoRequest struct {
	Nombre        string           `json:"nombre"         validate:"required,min=2,max=120"`
	Presentacion  string           `json:"presentacion"   validate:"max=60"`
	PrecioVenta   decimal.Decimal  `json:"precio_venta"   validate:"required,gt=0"`
	PrecioMayoreo *decimal.Decimal `json:"precio_mayoreo"`
}

type ActualizarProductoRequest struct {
	Nombre        *string          `json:"nombre"         validate:"omitempty,min=2,max=120"`
	Presentacion  *string          `json:"presentacion"   validate:"omitempty,max=60"`
	PrecioVenta   *decimal.Decimal `json:"precio_venta"`
	PrecioMayoreo *decimal.Decimal `json:"precio_mayoreo"`
	Activo        *bool            `json:"activo"`

	// Usuario is filled from the JWT, never from the body.
	Usuario string `json:"-"`
}

type ProductoFilter struct {
	Nombre string `form:"nombre"`
	Activo string `form:"activo"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ProductoResponse struct {
	ID            uint             `json:"id"`
	Nombre        string           `json:"nombre"`
	Presentacion  string           `json:"presentacion"`
	PrecioVenta   decimal.Decimal  `json:"precio_venta"`
	PrecioMayoreo *decimal.Decimal `json:"precio_mayoreo"`
	Activo        bool             `json:"activo"`
}

type HistorialPrecioResponse struct {
	ID             uint             `json:"id"`
	VentaAntes     decimal.Decimal  `json:"venta_antes"`
	VentaDespues   decimal.Decimal  `json:"venta_despues"`
	MayoreoAntes   *decimal.Decimal `json:"mayoreo_antes"`
	MayoreoDespues *decimal.Decimal `json:"mayoreo_despues"`
	Usuario        string           `json:"usuario"`
	CreatedAt      string           `json:"created_at"`
}

type HistorialPrecioListResponse struct {
	Data       []HistorialPrecioResponse `json:"data"`
	Total      int64                     `json:"total"`
	Page       int                       `json:"page"`
	Limit      int                       `json:"limit"`
	TotalPages int                       `json:"total_pages"`
}

// ─── Clientes ────────────────────────────────────────────────────────────────

type CrearClienteRequest struct {
	Nombre    string  `json:"nombre"    validate:"required,min=2,max=120"`
	Telefono  *string `json:"telefono"  validate:"omitempty,max=30"`
	Email     *string `json:"email"     validate:"omitempty,email"`
	Direccion *string `json:"direccion" validate:"omitempty,max=250"`
}

type ClienteResponse struct {
	ID        uint    `json:"id"`
	Nombre    string  `json:"nombre"`
	Telefono  *string `json:"telefono"`
	Email     *string `json:"email"`
	Direccion *string `json:"direccion"`
}
