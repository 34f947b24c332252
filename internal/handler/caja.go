package handler

import (
	"net/http"
	"strconv"

	"estudio/internal/apierror"
	"estudio/internal/dto"
	"estudio/internal/service"
	"estudio/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

type CajaHandler struct {
	svc service.CajaService
	rdb *redis.Client
}

func NewCajaHandler(svc service.CajaService, rdb *redis.Client) *CajaHandler {
	return &CajaHandler{svc: svc, rdb: rdb}
}

// Listar godoc
// @Summary Lista las cajas activas con su saldo
// @Tags cajas
// @Produce json
// @Security BearerAuth
// @Success 200 {array} dto.CajaResponse
// @Router /v1/cajas [get]
func (h *CajaHandler) Listar(c *gin.Context) {
	resp, err := h.svc.ListarCajas(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Movimientos godoc
// @Summary Movimientos activos de una caja, del más reciente al más antiguo
// @Tags cajas
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID de caja"
// @Param limit query int false "Máximo de filas (1-200)"
// @Param offset query int false "Desplazamiento"
// @Success 200 {object} dto.MovimientoListResponse
// @Failure 404 {object} apierror.APIError
// @Router /v1/cajas/{id}/movimientos [get]
func (h *CajaHandler) Movimientos(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	var filter dto.MovimientoFilter
	if !bindQueryAndValidate(c, &filter) {
		return
	}
	resp, err := h.svc.ListarMovimientos(c.Request.Context(), id, filter)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Auditoria godoc
// @Summary Reproduce el historial de la caja y verifica su saldo
// @Tags cajas
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID de caja"
// @Success 200 {object} dto.AuditoriaResponse
// @Failure 404 {object} apierror.APIError
// @Router /v1/cajas/{id}/auditoria [get]
func (h *CajaHandler) Auditoria(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.Auditar(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// AuditoriasPendientes godoc
// @Summary Auditorías fallidas o inconsistentes en espera de revisión
// @Tags cajas
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Máximo de entradas (por defecto 50)"
// @Success 200 {object} map[string]interface{}
// @Failure 503 {object} apierror.APIError
// @Router /v1/auditorias/pendientes [get]
func (h *CajaHandler) AuditoriasPendientes(c *gin.Context) {
	limit, err := strconv.ParseInt(c.DefaultQuery("limit", "50"), 10, 64)
	if err != nil || limit < 1 {
		c.JSON(http.StatusBadRequest, apierror.New("limit inválido"))
		return
	}

	ctx := c.Request.Context()
	total, err := worker.DLQLength(ctx, h.rdb, worker.QueueAuditoria)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, apierror.New("Cola de auditorías no disponible"))
		return
	}
	entries, err := worker.DLQEntries(ctx, h.rdb, worker.QueueAuditoria, limit)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, apierror.New("Cola de auditorías no disponible"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"total": total, "data": entries})
}
