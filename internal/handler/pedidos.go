package handler

import (
	"io"
	"net/http"

	"github.com/crisgp1/orodetamar-sub000/internal/apierror"
	"github.com/crisgp1/orodetamar-sub000/internal/dto"
	"github.com/crisgp1/orodetamar-sub000/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

const maxComprobanteBytes = 10 << 20

type PedidosHandler struct{ svc service.PedidoService }

func NewPedidosHandler(svc service.PedidoService) *PedidosHandler {
	return &PedidosHandler{svc: svc}
}

func (h *PedidosHandler) Crear(c *gin.Context) {
	var req dto.CrearPedidoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Crear(c.Request.Context(), req)
	if err != nil {
		respondError(c, err, "Error al crear pedido")
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *PedidosHandler) Listar(c *gin.Context) {
	var filter dto.PedidoFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.svc.Listar(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err, "Error al listar pedidos")
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *PedidosHandler) Obtener(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.Obtener(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "Error al obtener pedido")
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *PedidosHandler) Editar(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.EditarPedidoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Editar(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err, "Error al editar pedido")
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *PedidosHandler) Avanzar(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.Avanzar(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "Error al avanzar pedido")
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Entregar accepts an empty body.
func (h *PedidosHandler) Entregar(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.EntregarPedidoRequest
	if c.Request.ContentLength > 0 && !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Entregar(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err, "Error al entregar pedido")
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *PedidosHandler) RegistrarPago(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.PagoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.RegistrarPago(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err, "Error al registrar pago")
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *PedidosHandler) Cancelar(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.CancelarPedidoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Cancelar(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err, "Error al cancelar pedido")
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *PedidosHandler) ActualizarSeguimiento(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.SeguimientoPedidoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.ActualizarSeguimiento(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err, "Error al actualizar seguimiento")
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ── Comprobantes ─────────────────────────────────────────────────────────────

func (h *PedidosHandler) RegistrarComprobante(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.ComprobanteReferenciaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.RegistrarComprobante(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err, "Error al registrar comprobante")
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// SubirComprobante takes a multipart form with "archivo" and "monto_declarado".
func (h *PedidosHandler) SubirComprobante(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	monto, err := decimal.NewFromString(c.PostForm("monto_declarado"))
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(map[string]string{"monto_declarado": "decimal"}))
		return
	}
	fh, err := c.FormFile("archivo")
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("archivo requerido"))
		return
	}
	if fh.Size > maxComprobanteBytes {
		c.JSON(http.StatusRequestEntityTooLarge, apierror.New("el archivo excede 10 MB"))
		return
	}
	f, err := fh.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("no se pudo leer el archivo"))
		return
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, maxComprobanteBytes))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("no se pudo leer el archivo"))
		return
	}

	resp, err := h.svc.SubirComprobante(c.Request.Context(), id, fh.Filename, fh.Header.Get("Content-Type"), data, monto)
	if err != nil {
		respondError(c, err, "Error al subir comprobante")
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *PedidosHandler) AprobarComprobante(c *gin.Context) {
	h.revisarComprobante(c, true)
}

func (h *PedidosHandler) RechazarComprobante(c *gin.Context) {
	h.revisarComprobante(c, false)
}

func (h *PedidosHandler) revisarComprobante(c *gin.Context, aprobar bool) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	compID, ok := parseID(c, "comprobante_id")
	if !ok {
		return
	}
	var req dto.RevisarComprobanteRequest
	if c.Request.ContentLength > 0 && !bindAndValidate(c, &req) {
		return
	}

	var (
		resp *dto.PedidoResponse
		err  error
	)
	if aprobar {
		resp, err = h.svc.AprobarComprobante(c.Request.Context(), id, compID, req)
	} else {
		resp, err = h.svc.RechazarComprobante(c.Request.Context(), id, compID, req)
	}
	if err != nil {
		respondError(c, err, "Error al revisar comprobante")
		return
	}
	c.JSON(http.StatusOK, resp)
}
