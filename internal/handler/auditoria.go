package handler

import (
	"net/http"
	"strconv"
	"time"

	"cajaledger/internal/apierror"
	"cajaledger/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type AuditoriaHandler struct {
	svc service.AuditoriaService
}

func NewAuditoriaHandler(svc service.AuditoriaService) *AuditoriaHandler {
	return &AuditoriaHandler{svc: svc}
}

// HistorialSesion godoc
// @Summary Registros de auditoria de una sesion de caja
// @Tags auditoria
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID de sesion"
// @Success 200 {object} map[string]interface{}
// @Router /v1/auditoria/sesion/{id} [get]
func (h *AuditoriaHandler) HistorialSesion(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return
	}
	resp, err := h.svc.HistorialSesion(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// HistorialCaja godoc
// @Summary Registros de auditoria de una caja en un rango de fechas
// @Tags auditoria
// @Produce json
// @Security BearerAuth
// @Param caja_id path int true "ID de caja"
// @Param desde query string false "Fecha desde (YYYY-MM-DD)"
// @Param hasta query string false "Fecha hasta (YYYY-MM-DD)"
// @Success 200 {object} map[string]interface{}
// @Router /v1/auditoria/caja/{caja_id} [get]
func (h *AuditoriaHandler) HistorialCaja(c *gin.Context) {
	cajaID, err := strconv.Atoi(c.Param("caja_id"))
	if err != nil || cajaID < 1 {
		c.JSON(http.StatusBadRequest, apierror.New("caja_id invalido"))
		return
	}

	hasta := time.Now()
	desde := hasta.AddDate(0, -1, 0)
	if v := c.Query("desde"); v != "" {
		if t, perr := time.Parse("2006-01-02", v); perr == nil {
			desde = t
		} else {
			c.JSON(http.StatusBadRequest, apierror.New("Formato de fecha 'desde' invalido, se espera YYYY-MM-DD"))
			return
		}
	}
	if v := c.Query("hasta"); v != "" {
		if t, perr := time.Parse("2006-01-02", v); perr == nil {
			// inclusive end of day
			hasta = t.Add(24*time.Hour - time.Nanosecond)
		} else {
			c.JSON(http.StatusBadRequest, apierror.New("Formato de fecha 'hasta' invalido, se espera YYYY-MM-DD"))
			return
		}
	}

	resp, err := h.svc.HistorialCaja(c.Request.Context(), cajaID, desde, hasta)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}
