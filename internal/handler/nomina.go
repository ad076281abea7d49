package handler

import (
	"net/http"

	"cajaledger/internal/dto"
	"cajaledger/internal/service"

	"github.com/gin-gonic/gin"
)

type NominaHandler struct {
	svc service.NominaService
}

func NewNominaHandler(svc service.NominaService) *NominaHandler {
	return &NominaHandler{svc: svc}
}

// NotificarAnticipo godoc
// @Summary Notificacion de anticipo de sueldo (egreso + cuenta corriente)
// @Tags nomina
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.AnticipoRequest true "Anticipo"
// @Success 201 {object} dto.OperacionResponse
// @Failure 409 {object} apierror.APIError
// @Router /v1/nomina/anticipo [post]
func (h *NominaHandler) NotificarAnticipo(c *gin.Context) {
	var req dto.AnticipoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.NotificarAnticipo(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// NotificarPagoSueldo godoc
// @Summary Notificacion de pago de sueldo en efectivo (egreso)
// @Tags nomina
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.PagoSueldoRequest true "Pago de sueldo"
// @Success 201 {object} dto.OperacionResponse
// @Failure 409 {object} apierror.APIError
// @Router /v1/nomina/sueldo [post]
func (h *NominaHandler) NotificarPagoSueldo(c *gin.Context) {
	var req dto.PagoSueldoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.NotificarPagoSueldo(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}
