package handler

import (
	"net/http"

	"github.com/crisgp1/orodetamar-sub000/internal/dto"
	"github.com/crisgp1/orodetamar-sub000/internal/service"

	"github.com/gin-gonic/gin"
)

// InventarioHandler exposes the finished-goods ledger: stock view, manual
// entries, stand sales, production and reprocessing.
type InventarioHandler struct {
	svc        service.InventarioService
	produccion service.ProduccionService
	reproceso  service.ReprocesoService
}

func NewInventarioHandler(svc service.InventarioService, produccion service.ProduccionService, reproceso service.ReprocesoService) *InventarioHandler {
	return &InventarioHandler{svc: svc, produccion: produccion, reproceso: reproceso}
}

func (h *InventarioHandler) Stock(c *gin.Context) {
	resp, err := h.svc.Stock(c.Request.Context())
	if err != nil {
		respondError(c, err, "Error al consultar stock")
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *InventarioHandler) ListarMovimientos(c *gin.Context) {
	var filter dto.MovimientoFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.svc.ListarMovimientos(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err, "Error al listar movimientos")
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *InventarioHandler) Ajustar(c *gin.Context) {
	var req dto.AjusteRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Ajustar(c.Request.Context(), req)
	if err != nil {
		respondError(c, err, "Error al registrar ajuste")
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *InventarioHandler) RegistrarMerma(c *gin.Context) {
	var req dto.MermaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.RegistrarMerma(c.Request.Context(), req)
	if err != nil {
		respondError(c, err, "Error al registrar merma")
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *InventarioHandler) VenderEnStand(c *gin.Context) {
	var req dto.VentaStandRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.VenderEnStand(c.Request.Context(), req)
	if err != nil {
		respondError(c, err, "Error al registrar venta")
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *InventarioHandler) Producir(c *gin.Context) {
	var req dto.ProduccionRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.produccion.Producir(c.Request.Context(), req)
	if err != nil {
		respondError(c, err, "Error al registrar produccion")
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *InventarioHandler) Reprocesar(c *gin.Context) {
	var req dto.ReprocesoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.reproceso.Reprocesar(c.Request.Context(), req)
	if err != nil {
		respondError(c, err, "Error al registrar reproceso")
		return
	}
	c.JSON(http.StatusCreated, resp)
}
