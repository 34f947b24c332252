package handler

import (
	"net/http"
	"path/filepath"

	"estudio/internal/dto"
	"estudio/internal/infra"
	"estudio/internal/middleware"
	"estudio/internal/service"

	"github.com/gin-gonic/gin"
)

type SesionesHandler struct {
	svc          service.SesionService
	distribucion service.DistribucionService
	reportesPath string
}

func NewSesionesHandler(svc service.SesionService, distribucion service.DistribucionService, reportesPath string) *SesionesHandler {
	return &SesionesHandler{svc: svc, distribucion: distribucion, reportesPath: reportesPath}
}

// Crear godoc
// @Summary Registra una sesión con su anticipo y apartado de ahorro
// @Tags sesiones
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.CrearSesionRequest true "Sesión"
// @Success 201 {object} dto.SesionResponse
// @Failure 400 {object} apierror.APIError
// @Failure 404 {object} apierror.APIError
// @Failure 409 {object} apierror.APIError
// @Router /v1/sesiones [post]
func (h *SesionesHandler) Crear(c *gin.Context) {
	var req dto.CrearSesionRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Crear(c.Request.Context(), middleware.ActorID(c), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Listar godoc
// @Summary Lista sesiones activas, más recientes primero
// @Tags sesiones
// @Produce json
// @Security BearerAuth
// @Param fecha query string false "YYYY-MM-DD"
// @Param cliente query string false "Substring del nombre del cliente"
// @Param limit query int false "Máximo de filas (1-200)"
// @Param offset query int false "Desplazamiento"
// @Success 200 {object} dto.SesionListResponse
// @Router /v1/sesiones [get]
func (h *SesionesHandler) Listar(c *gin.Context) {
	var filter dto.SesionFilter
	if !bindQueryAndValidate(c, &filter) {
		return
	}
	resp, err := h.svc.Listar(c.Request.Context(), filter)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Proximas godoc
// @Summary Próximas sesiones (desde hoy, máximo 20)
// @Tags sesiones
// @Produce json
// @Security BearerAuth
// @Success 200 {array} dto.SesionResponse
// @Router /v1/sesiones/proximas [get]
func (h *SesionesHandler) Proximas(c *gin.Context) {
	resp, err := h.svc.Proximas(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Obtener godoc
// @Summary Detalle de una sesión con liquidaciones, ingresos, gastos y distribución
// @Tags sesiones
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID de sesión"
// @Success 200 {object} dto.SesionResponse
// @Failure 404 {object} apierror.APIError
// @Router /v1/sesiones/{id} [get]
func (h *SesionesHandler) Obtener(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.ObtenerDetalle(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Actualizar godoc
// @Summary Actualiza datos generales y financieros de una sesión
// @Tags sesiones
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID de sesión"
// @Param body body dto.ActualizarSesionRequest true "Campos a modificar"
// @Success 200 {object} dto.SesionResponse
// @Failure 400 {object} apierror.APIError
// @Failure 404 {object} apierror.APIError
// @Router /v1/sesiones/{id} [put]
func (h *SesionesHandler) Actualizar(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	var req dto.ActualizarSesionRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Actualizar(c.Request.Context(), middleware.ActorID(c), id, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Eliminar godoc
// @Summary Revierte una sesión: compensa sus movimientos y la desactiva
// @Tags sesiones
// @Security BearerAuth
// @Param id path string true "ID de sesión"
// @Success 204
// @Failure 404 {object} apierror.APIError
// @Failure 422 {object} apierror.APIError
// @Router /v1/sesiones/{id} [delete]
func (h *SesionesHandler) Eliminar(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Eliminar(c.Request.Context(), middleware.ActorID(c), id); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// AgregarLiquidacion godoc
// @Summary Registra una liquidación y su ingreso en la caja destino
// @Tags sesiones
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID de sesión"
// @Param body body dto.LiquidacionRequest true "Liquidación"
// @Success 201 {object} dto.LiquidacionResponse
// @Failure 404 {object} apierror.APIError
// @Router /v1/sesiones/{id}/liquidaciones [post]
func (h *SesionesHandler) AgregarLiquidacion(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	var req dto.LiquidacionRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.AgregarLiquidacion(c.Request.Context(), middleware.ActorID(c), id, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *SesionesHandler) AgregarIngresoExtra(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	var req dto.ConceptoMontoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.AgregarIngresoExtra(c.Request.Context(), middleware.ActorID(c), id, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *SesionesHandler) AgregarGasto(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	var req dto.ConceptoMontoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.AgregarGasto(c.Request.Context(), middleware.ActorID(c), id, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// ActualizarPorcentajes godoc
// @Summary Fija los porcentajes de distribución de la sesión
// @Tags sesiones
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID de sesión"
// @Param body body dto.PorcentajesRequest true "Porcentajes (suman 100)"
// @Success 200 {object} dto.DistribucionResponse
// @Failure 400 {object} apierror.APIError
// @Router /v1/sesiones/{id}/distribucion [put]
func (h *SesionesHandler) ActualizarPorcentajes(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	var req dto.PorcentajesRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.ActualizarPorcentajes(c.Request.Context(), middleware.ActorID(c), id, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ReporteDistribucion godoc
// @Summary Totales y distribución de las sesiones activas en un rango de fechas
// @Tags reportes
// @Produce json
// @Security BearerAuth
// @Param fecha_inicio query string true "YYYY-MM-DD"
// @Param fecha_fin query string true "YYYY-MM-DD"
// @Success 200 {object} dto.ReporteDistribucionResponse
// @Failure 400 {object} apierror.APIError
// @Router /v1/sesiones/reporte/distribucion [get]
func (h *SesionesHandler) ReporteDistribucion(c *gin.Context) {
	rep, ok := h.reporte(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, rep)
}

// ReporteDistribucionPDF godoc
// @Summary Reporte de distribución en PDF
// @Tags reportes
// @Produce application/pdf
// @Security BearerAuth
// @Param fecha_inicio query string true "YYYY-MM-DD"
// @Param fecha_fin query string true "YYYY-MM-DD"
// @Success 200 {file} binary
// @Router /v1/sesiones/reporte/distribucion.pdf [get]
func (h *SesionesHandler) ReporteDistribucionPDF(c *gin.Context) {
	rep, ok := h.reporte(c)
	if !ok {
		return
	}
	path, err := infra.GenerateReportePDF(rep, h.reportesPath)
	if err != nil {
		writeError(c, err)
		return
	}
	c.FileAttachment(path, filepath.Base(path))
}

func (h *SesionesHandler) reporte(c *gin.Context) (*dto.ReporteDistribucionResponse, bool) {
	var filter dto.ReporteFilter
	if !bindQueryAndValidate(c, &filter) {
		return nil, false
	}
	rep, err := h.distribucion.Reporte(c.Request.Context(), filter)
	if err != nil {
		writeError(c, err)
		return nil, false
	}
	return rep, true
}
