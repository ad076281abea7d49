package handler

import (
	"net/http"
	"strings"

	"cajaledger/internal/dto"
	"cajaledger/internal/service"

	"github.com/gin-gonic/gin"
)

type CatalogoHandler struct {
	svc service.CatalogoService
}

func NewCatalogoHandler(svc service.CatalogoService) *CatalogoHandler {
	return &CatalogoHandler{svc: svc}
}

// Listar godoc
// @Summary Lista los tipos de operacion del catalogo
// @Tags catalogo
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Router /v1/catalogo [get]
func (h *CatalogoHandler) Listar(c *gin.Context) {
	tipos := h.svc.Listar()
	out := make([]dto.TipoOperacionResponse, 0, len(tipos))
	for _, t := range tipos {
		out = append(out, dto.TipoOperacionResponse{
			Codigo:        t.Codigo,
			Nombre:        t.Nombre,
			Direccion:     t.Direccion,
			GeneraCredito: t.GeneraCredito,
			Activo:        t.Activo,
		})
	}
	c.JSON(http.StatusOK, gin.H{"data": out})
}

// Registrar godoc
// @Summary Registra un nuevo tipo de operacion
// @Tags catalogo
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.RegistrarTipoOperacionRequest true "Tipo de operacion"
// @Success 201 {object} dto.TipoOperacionResponse
// @Failure 409 {object} apierror.APIError
// @Router /v1/catalogo [post]
func (h *CatalogoHandler) Registrar(c *gin.Context) {
	var req dto.RegistrarTipoOperacionRequest
	if !bindAndValidate(c, &req) {
		return
	}
	tipo, err := h.svc.Registrar(c.Request.Context(), strings.ToUpper(req.Codigo), req.Nombre, req.Direccion, req.GeneraCredito)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.TipoOperacionResponse{
		Codigo:        tipo.Codigo,
		Nombre:        tipo.Nombre,
		Direccion:     tipo.Direccion,
		GeneraCredito: tipo.GeneraCredito,
		Activo:        tipo.Activo,
	})
}

// Desactivar godoc
// @Summary Desactiva un tipo de operacion (las operaciones historicas se conservan)
// @Tags catalogo
// @Produce json
// @Security BearerAuth
// @Param codigo path string true "Codigo"
// @Success 204
// @Failure 404 {object} apierror.APIError
// @Router /v1/catalogo/{codigo} [delete]
func (h *CatalogoHandler) Desactivar(c *gin.Context) {
	codigo := strings.ToUpper(c.Param("codigo"))
	if err := h.svc.Desactivar(c.Request.Context(), codigo); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
