package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"cajaledger/internal/apierror"
	"cajaledger/internal/dto"
	"cajaledger/internal/middleware"
	"cajaledger/internal/model"
	"cajaledger/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Closed sessions are immutable, so their reports cache indefinitely short
// of operational hygiene; open ones change with every operation.
const reporteCacheTTL = 12 * time.Hour

type CajaHandler struct {
	svc service.CajaService
	rdb *redis.Client
}

func NewCajaHandler(svc service.CajaService, rdb *redis.Client) *CajaHandler {
	return &CajaHandler{svc: svc, rdb: rdb}
}

// Abrir godoc
// @Summary Abre una nueva sesion de caja
// @Tags caja
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.AbrirCajaRequest true "Datos de apertura"
// @Success 201 {object} dto.ReporteCajaResponse
// @Failure 409 {object} apierror.APIError
// @Router /v1/caja/abrir [post]
func (h *CajaHandler) Abrir(c *gin.Context) {
	var req dto.AbrirCajaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)
	usuarioID, err := uuid.Parse(claims.UserID)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID de usuario invalido"))
		return
	}

	resp, err := h.svc.Abrir(c.Request.Context(), usuarioID, req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// RegistrarOperacion godoc
// @Summary Registra una operacion en la sesion de caja
// @Tags caja
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.RegistrarOperacionRequest true "Operacion"
// @Success 201 {object} dto.OperacionResponse
// @Failure 409 {object} apierror.APIError
// @Failure 422 {object} apierror.APIError
// @Router /v1/caja/operacion [post]
func (h *CajaHandler) RegistrarOperacion(c *gin.Context) {
	var req dto.RegistrarOperacionRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.RegistrarOperacion(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// SolicitarCierre godoc
// @Summary Cierra la sesion contra el monto declarado
// @Tags caja
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.CierreCajaRequest true "Declaracion de cierre"
// @Success 200 {object} dto.CierreCajaResponse
// @Failure 409 {object} apierror.APIError
// @Router /v1/caja/cierre [post]
func (h *CajaHandler) SolicitarCierre(c *gin.Context) {
	var req dto.CierreCajaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.SolicitarCierre(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ObtenerReporte godoc
// @Summary Obtiene el reporte de una sesion de caja
// @Tags caja
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID de sesion"
// @Success 200 {object} dto.ReporteCajaResponse
// @Failure 404 {object} apierror.APIError
// @Router /v1/caja/{id}/reporte [get]
func (h *CajaHandler) ObtenerReporte(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return
	}
	ctx := c.Request.Context()
	cacheKey := "reporte:" + id.String()

	if cached, err := h.rdb.Get(ctx, cacheKey).Bytes(); err == nil {
		var resp dto.ReporteCajaResponse
		if jsonErr := json.Unmarshal(cached, &resp); jsonErr == nil {
			c.JSON(http.StatusOK, resp)
			return
		}
	}

	resp, err := h.svc.ObtenerReporte(ctx, id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	// Only closed sessions are safe to cache — they never change again.
	if resp.Estado == model.EstadoCerrada {
		if b, jsonErr := json.Marshal(resp); jsonErr == nil {
			_ = h.rdb.Set(context.Background(), cacheKey, b, reporteCacheTTL).Err()
		}
	}
	c.JSON(http.StatusOK, resp)
}

// GetActiva returns the currently open cash session for the authenticated user.
func (h *CajaHandler) GetActiva(c *gin.Context) {
	claims := middleware.GetClaims(c)
	usuarioID, err := uuid.Parse(claims.UserID)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID de usuario invalido"))
		return
	}
	resp, err := h.svc.GetActiva(c.Request.Context(), usuarioID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New(err.Error()))
		return
	}
	if resp == nil {
		c.JSON(http.StatusNotFound, apierror.New("Sin sesion activa"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Historial returns a paginated list of closed cash sessions.
func (h *CajaHandler) Historial(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	resp, err := h.svc.Historial(c.Request.Context(), page, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp, "page": page, "limit": limit})
}

// GuardarConfig sets the per-register audit policy override (modo and/or
// tolerancia) — the lever for the staged flexible → estricto rollout.
func (h *CajaHandler) GuardarConfig(c *gin.Context) {
	cajaID, err := strconv.Atoi(c.Param("id"))
	if err != nil || cajaID < 1 {
		c.JSON(http.StatusBadRequest, apierror.New("ID de caja invalido"))
		return
	}
	var req dto.ConfigCajaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	if err := h.svc.GuardarConfig(c.Request.Context(), cajaID, req); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
