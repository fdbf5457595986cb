package handler

import (
	"fmt"
	"net/http"

	"github.com/crisgp1/orodetamar-sub000/internal/dto"
	"github.com/crisgp1/orodetamar-sub000/internal/service"

	"github.com/gin-gonic/gin"
)

type MateriasPrimasHandler struct{ svc service.MateriaPrimaService }

func NewMateriasPrimasHandler(svc service.MateriaPrimaService) *MateriasPrimasHandler {
	return &MateriasPrimasHandler{svc: svc}
}

func (h *MateriasPrimasHandler) Crear(c *gin.Context) {
	var req dto.CrearMateriaPrimaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Crear(c.Request.Context(), req)
	if err != nil {
		respondError(c, err, "Error al crear materia prima")
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Listar includes the ledger-derived available quantity of each material.
func (h *MateriasPrimasHandler) Listar(c *gin.Context) {
	resp, err := h.svc.Listar(c.Request.Context())
	if err != nil {
		respondError(c, err, "Error al listar materias primas")
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *MateriasPrimasHandler) ObtenerPorID(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.ObtenerPorID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "Error al obtener materia prima")
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *MateriasPrimasHandler) RegistrarCompra(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.CompraMPRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.RegistrarCompra(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err, "Error al registrar compra")
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *MateriasPrimasHandler) RegistrarMerma(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.MermaMPRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.RegistrarMerma(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err, "Error al registrar merma")
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *MateriasPrimasHandler) Ajustar(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.AjusteMPRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Ajustar(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err, "Error al registrar ajuste")
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *MateriasPrimasHandler) ListarMovimientos(c *gin.Context) {
	var filter dto.MovimientoMPFilter
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

// ── Recetas ──────────────────────────────────────────────────────────────────

type RecetasHandler struct{ svc service.RecetaService }

func NewRecetasHandler(svc service.RecetaService) *RecetasHandler {
	return &RecetasHandler{svc: svc}
}

func (h *RecetasHandler) Obtener(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.Obtener(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "Error al obtener receta")
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *RecetasHandler) Guardar(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.GuardarRecetaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Guardar(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err, "Error al guardar receta")
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *RecetasHandler) Eliminar(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	mpID, ok := parseID(c, "materia_prima_id")
	if !ok {
		return
	}
	if err := h.svc.Eliminar(c.Request.Context(), id, mpID); err != nil {
		respondError(c, err, "Error al eliminar linea de receta")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *RecetasHandler) DescargarFicha(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	path, err := h.svc.GenerarFicha(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "Error al generar ficha")
		return
	}
	c.FileAttachment(path, fmt.Sprintf("receta-producto-%d.pdf", id))
}
