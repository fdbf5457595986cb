package dto

import "github.com/shopspring/decimal"

// ─── Ledger movements ────────────────────────────────────────────────────────

type AjusteRequest struct {
	ProductoID uint   `json:"producto_id" validate:"required"`
	Cantidad   int    `json:"cantidad"    validate:"required"`
	Nota       string `json:"nota"        validate:"required,min=3,max=250"`
}

type MermaRequest struct {
	ProductoID uint   `json:"producto_id" validate:"required"`
	Cantidad   int    `json:"cantidad"    validate:"required,gt=0"`
	Nota       string `json:"nota"        validate:"required,min=3,max=250"`
}

// VentaStandRequest is a direct sale at the stand; it has no order entity.
type VentaStandRequest struct {
	ProductoID uint   `json:"producto_id" validate:"required"`
	Cantidad   int    `json:"cantidad"    validate:"required,gt=0"`
	Nota       string `json:"nota"        validate:"max=250"`
}

type ProduccionRequest struct {
	ProductoID uint   `json:"producto_id" validate:"required"`
	Cantidad   int    `json:"cantidad"    validate:"required,gt=0"`
	Nota       string `json:"nota"        validate:"max=250"`
}

type ReprocesoRequest struct {
	ProductoOrigenID  uint   `json:"producto_origen_id"  validate:"required"`
	CantidadOrigen    int    `json:"cantidad_origen"     validate:"required,gt=0"`
	ProductoDestinoID uint   `json:"producto_destino_id" validate:"required"`
	CantidadDestino   int    `json:"cantidad_destino"    validate:"required,gt=0"`
	Nota              string `json:"nota"                validate:"max=250"`
}

type MovimientoFilter struct {
	ProductoID     *uint  `form:"producto_id"`
	Tipo           string `form:"tipo"`
	ConsignacionID *uint  `form:"consignacion_id"`
	PedidoID       *uint  `form:"pedido_id"`
	Page           int    `form:"page,default=1"`
	Limit          int    `form:"limit,default=100"`
}

type MovimientoResponse struct {
	ID               uint   `json:"id"`
	ProductoID       uint   `json:"producto_id"`
	Producto         string `json:"producto,omitempty"`
	Cantidad         int    `json:"cantidad"`
	Tipo             string `json:"tipo"`
	ConsignacionID   *uint  `json:"consignacion_id"`
	PedidoID         *uint  `json:"pedido_id"`
	ProductoOrigenID *uint  `json:"producto_origen_id"`
	Nota             string `json:"nota"`
	CreatedAt        string `json:"created_at"`
}

type MovimientoListResponse struct {
	Data       []MovimientoResponse `json:"data"`
	Total      int64                `json:"total"`
	Page       int                  `json:"page"`
	Limit      int                  `json:"limit"`
	TotalPages int                  `json:"total_pages"`
}

type StockProductoResponse struct {
	ProductoID   uint   `json:"producto_id"`
	Nombre       string `json:"nombre"`
	Presentacion string `json:"presentacion"`
	Disponible   int    `json:"disponible"`
}

type ProduccionResponse struct {
	Movimiento MovimientoResponse     `json:"movimiento"`
	Consumos   []MovimientoMPResponse `json:"consumos"`
}

type ReprocesoResponse struct {
	Salida  MovimientoResponse `json:"salida"`
	Entrada MovimientoResponse `json:"entrada"`
	// Perdida is the implicit process loss (origen - destino); it can be negative.
	Perdida int `json:"perdida"`
}

// ─── Materias primas ─────────────────────────────────────────────────────────

type CrearMateriaPrimaRequest struct {
	Nombre        string          `json:"nombre"         validate:"required,min=2,max=120"`
	UnidadMedida  string          `json:"unidad_medida"  validate:"required,max=20"`
	CostoUnitario decimal.Decimal `json:"costo_unitario" validate:"min=0"`
}

type CompraMPRequest struct {
	Cantidad      decimal.Decimal  `json:"cantidad"       validate:"required,gt=0"`
	CostoUnitario *decimal.Decimal `json:"costo_unitario"`
	Nota          string           `json:"nota"           validate:"max=250"`
}

type MermaMPRequest struct {
	Cantidad decimal.Decimal `json:"cantidad" validate:"required,gt=0"`
	Nota     string          `json:"nota"     validate:"required,min=3,max=250"`
}

type AjusteMPRequest struct {
	Cantidad decimal.Decimal `json:"cantidad" validate:"required"`
	Nota     string          `json:"nota"     validate:"required,min=3,max=250"`
}

type MateriaPrimaResponse struct {
	ID            uint            `json:"id"`
	Nombre        string          `json:"nombre"`
	UnidadMedida  string          `json:"unidad_medida"`
	CostoUnitario decimal.Decimal `json:"costo_unitario"`
	Disponible    decimal.Decimal `json:"disponible"`
	Activo        bool            `json:"activo"`
}

type MovimientoMPFilter struct {
	MateriaPrimaID *uint  `form:"materia_prima_id"`
	Tipo           string `form:"tipo"`
	Page           int    `form:"page,default=1"`
	Limit          int    `form:"limit,default=100"`
}

type MovimientoMPResponse struct {
	ID             uint             `json:"id"`
	MateriaPrimaID uint             `json:"materia_prima_id"`
	MateriaPrima   string           `json:"materia_prima,omitempty"`
	Cantidad       decimal.Decimal  `json:"cantidad"`
	Tipo           string           `json:"tipo"`
	ProductoID     *uint            `json:"producto_id"`
	CostoUnitario  *decimal.Decimal `json:"costo_unitario"`
	Nota           string           `json:"nota"`
	CreatedAt      string           `json:"created_at"`
}

type MovimientoMPListResponse struct {
	Data       []MovimientoMPResponse `json:"data"`
	Total      int64                  `json:"total"`
	Page       int                    `json:"page"`
	Limit      int                    `json:"limit"`
	TotalPages int                    `json:"total_pages"`
}

// ─── Recetas ─────────────────────────────────────────────────────────────────

type GuardarRecetaRequest struct {
	MateriaPrimaID    uint            `json:"materia_prima_id"    validate:"required"`
	CantidadPorUnidad decimal.Decimal `json:"cantidad_por_unidad" validate:"required,gt=0"`
	UnidadMedida      string          `json:"unidad_medida"       validate:"required,max=20"`
}

type RecetaLineaResponse struct {
	MateriaPrimaID    uint            `json:"materia_prima_id"`
	MateriaPrima      string          `json:"materia_prima"`
	CantidadPorUnidad decimal.Decimal `json:"cantidad_por_unidad"`
	UnidadMedida      string          `json:"unidad_medida"`
	CostoUnitario     decimal.Decimal `json:"costo_unitario"`
	CostoLinea        decimal.Decimal `json:"costo_linea"`
}

// RecetaResponse is a product's bill of materials with its per-unit cost.
type RecetaResponse struct {
	ProductoID    uint                  `json:"producto_id"`
	Producto      string                `json:"producto"`
	Lineas        []RecetaLineaResponse `json:"lineas"`
	CostoUnitario decimal.Decimal       `json:"costo_unitario"`
	PrecioVenta   decimal.Decimal       `json:"precio_venta"`
	Margen        decimal.Decimal       `json:"margen"`
	MargenPct     decimal.Decimal       `json:"margen_pct"`
}
