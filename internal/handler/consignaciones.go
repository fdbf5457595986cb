package handler

import (
	"net/http"

	"github.com/crisgp1/orodetamar-sub000/internal/dto"
	"github.com/crisgp1/orodetamar-sub000/internal/service"

	"github.com/gin-gonic/gin"
)

type ConsignacionesHandler struct{ svc service.ConsignacionService }

func NewConsignacionesHandler(svc service.ConsignacionService) *ConsignacionesHandler {
	return &ConsignacionesHandler{svc: svc}
}

func (h *ConsignacionesHandler) Crear(c *gin.Context) {
	var req dto.CrearConsignacionRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Crear(c.Request.Context(), req)
	if err != nil {
		respondError(c, err, "Error al crear consignacion")
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *ConsignacionesHandler) Listar(c *gin.Context) {
	var filter dto.ConsignacionFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.svc.Listar(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err, "Error al listar consignaciones")
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ConsignacionesHandler) Obtener(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.Obtener(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "Error al obtener consignacion")
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ConsignacionesHandler) MarcarEnRevision(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.MarcarEnRevision(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "Error al actualizar consignacion")
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ConsignacionesHandler) Liquidar(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.LiquidarConsignacionRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Liquidar(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err, "Error al liquidar consignacion")
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ConsignacionesHandler) RegistrarPago(c *gin.Context) {
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

func (h *ConsignacionesHandler) Cancelar(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.Cancelar(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "Error al cancelar consignacion")
		return
	}
	c.JSON(http.StatusOK, resp)
}
