package handler

import (
	"net/http"

	"estudio/internal/dto"
	"estudio/internal/service"

	"github.com/gin-gonic/gin"
)

type PaquetesHandler struct{ svc service.PaqueteService }

func NewPaquetesHandler(svc service.PaqueteService) *PaquetesHandler {
	return &PaquetesHandler{svc: svc}
}

// Crear godoc
// @Summary Crea un paquete
// @Tags paquetes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.CrearPaqueteRequest true "Paquete"
// @Success 201 {object} dto.PaqueteResponse
// @Failure 400 {object} apierror.APIError
// @Router /v1/paquetes [post]
func (h *PaquetesHandler) Crear(c *gin.Context) {
	var req dto.CrearPaqueteRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Crear(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Listar godoc
// @Summary Lista los paquetes activos
// @Tags paquetes
// @Produce json
// @Security BearerAuth
// @Success 200 {array} dto.PaqueteResponse
// @Router /v1/paquetes [get]
func (h *PaquetesHandler) Listar(c *gin.Context) {
	resp, err := h.svc.Listar(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *PaquetesHandler) Obtener(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.Obtener(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Actualizar godoc
// @Summary Actualiza un paquete
// @Tags paquetes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID de paquete"
// @Param body body dto.ActualizarPaqueteRequest true "Campos a modificar"
// @Success 200 {object} dto.PaqueteResponse
// @Failure 400 {object} apierror.APIError
// @Failure 404 {object} apierror.APIError
// @Router /v1/paquetes/{id} [put]
func (h *PaquetesHandler) Actualizar(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	var req dto.ActualizarPaqueteRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Actualizar(c.Request.Context(), id, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *PaquetesHandler) Desactivar(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Desactivar(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
