package handler

import (
	"net/http"
	"strconv"

	"cajaledger/internal/apierror"
	"cajaledger/internal/dto"
	"cajaledger/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type CuentasHandler struct {
	svc service.CuentasService
}

func NewCuentasHandler(svc service.CuentasService) *CuentasHandler {
	return &CuentasHandler{svc: svc}
}

// NotificarVentaCredito godoc
// @Summary Notificacion de venta a credito (abre cuenta corriente)
// @Tags cuentas
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.VentaCreditoRequest true "Venta a credito"
// @Success 201 {object} dto.CuentaCorrienteResponse
// @Failure 409 {object} apierror.APIError
// @Router /v1/cuentas/venta-credito [post]
func (h *CuentasHandler) NotificarVentaCredito(c *gin.Context) {
	var req dto.VentaCreditoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.NotificarVentaCredito(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Saldar godoc
// @Summary Registra un pago contra una cuenta corriente
// @Tags cuentas
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID de cuenta"
// @Param body body dto.SaldarCuentaRequest true "Pago"
// @Success 200 {object} dto.CuentaCorrienteResponse
// @Failure 409 {object} apierror.APIError
// @Failure 422 {object} apierror.APIError
// @Router /v1/cuentas/{id}/saldar [post]
func (h *CuentasHandler) Saldar(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return
	}
	var req dto.SaldarCuentaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Saldar(c.Request.Context(), id, req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ListarAbiertas godoc
// @Summary Lista cuentas con saldo pendiente de un deudor
// @Tags cuentas
// @Produce json
// @Security BearerAuth
// @Param deudor_id path string true "ID de deudor"
// @Success 200 {object} map[string]interface{}
// @Router /v1/cuentas/deudor/{deudor_id}/abiertas [get]
func (h *CuentasHandler) ListarAbiertas(c *gin.Context) {
	deudorID, err := uuid.Parse(c.Param("deudor_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("deudor_id invalido"))
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 200 {
		limit = 50
	}
	resp, err := h.svc.ListarAbiertas(c.Request.Context(), deudorID, (page-1)*limit, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp, "page": page, "limit": limit})
}

// ListarPorDeudor returns the full ledger of a debtor, settled rows included.
func (h *CuentasHandler) ListarPorDeudor(c *gin.Context) {
	deudorID, err := uuid.Parse(c.Param("deudor_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("deudor_id invalido"))
		return
	}
	resp, err := h.svc.ListarPorDeudor(c.Request.Context(), deudorID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// Obtener godoc
// @Summary Obtiene una cuenta corriente por ID
// @Tags cuentas
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID de cuenta"
// @Success 200 {object} dto.CuentaCorrienteResponse
// @Failure 404 {object} apierror.APIError
// @Router /v1/cuentas/{id} [get]
func (h *CuentasHandler) Obtener(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return
	}
	resp, err := h.svc.Obtener(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
