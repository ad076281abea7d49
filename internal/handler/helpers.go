package handler

import (
	"errors"
	"net/http"
	"reflect"
	"time"

	"cajaledger/internal/apierror"
	"cajaledger/internal/dto"
	"cajaledger/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var validate = validator.New()

func init() {
	// Register decimal.Decimal as a numeric type so that validator tags like
	// min=0, gt=0, required work without panicking ("Bad field type decimal.Decimal").
	validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if v, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := v.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
}

// bindAndValidate binds JSON body and runs go-playground/validator tags.
// Returns false and writes the error response if validation fails —
// the caller should return immediately without writing another response.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("JSON invalido: "+err.Error()))
		return false
	}
	if err := validate.Struct(req); err != nil {
		fields := make(map[string]string)
		for _, fe := range err.(validator.ValidationErrors) {
			fields[fe.Field()] = fe.Tag()
		}
		c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(fields))
		return false
	}
	return true
}

// respondServiceError maps domain errors onto HTTP statuses: validation 422,
// state conflicts 409, not-found 404. A blocked close is 409 with the full
// audit row attached — the operator needs it to reconcile the drawer.
func respondServiceError(c *gin.Context, err error) {
	var bloqueado *service.CierreBloqueadoError
	if errors.As(err, &bloqueado) {
		r := bloqueado.Registro
		c.JSON(http.StatusConflict, gin.H{
			"detail": bloqueado.Error(),
			"auditoria": dto.RegistroAuditoriaResponse{
				ID:           r.ID.String(),
				SesionCajaID: r.SesionCajaID.String(),
				CajaID:       r.CajaID,
				Modo:         r.Modo,
				Accion:       r.Accion,
				Esperado:     r.Esperado,
				Declarado:    r.Declarado,
				Desvio:       r.Desvio,
				Resultado:    r.Resultado,
				CreatedAt:    r.CreatedAt.UTC().Format(time.RFC3339),
			},
		})
		return
	}

	switch {
	case errors.Is(err, service.ErrMontoInvalido),
		errors.Is(err, service.ErrDeudorRequerido),
		errors.Is(err, service.ErrOperacionDesconocida),
		errors.Is(err, service.ErrCodigoDuplicado),
		errors.Is(err, service.ErrDireccionInvalida),
		errors.Is(err, service.ErrSobreSaldo),
		errors.Is(err, service.ErrModoInvalido):
		c.JSON(http.StatusUnprocessableEntity, apierror.New(err.Error()))
	case errors.Is(err, service.ErrCajaYaAbierta),
		errors.Is(err, service.ErrSesionCerrada),
		errors.Is(err, service.ErrSesionEnCierre),
		errors.Is(err, service.ErrCuentaSaldada):
		c.JSON(http.StatusConflict, apierror.New(err.Error()))
	case errors.Is(err, service.ErrSesionNoExiste),
		errors.Is(err, service.ErrCuentaNoExiste),
		errors.Is(err, service.ErrUsuarioNoExiste):
		c.JSON(http.StatusNotFound, apierror.New(err.Error()))
	case errors.Is(err, service.ErrCajaNoAsignada):
		c.JSON(http.StatusForbidden, apierror.New(err.Error()))
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, apierror.New("Error interno del servidor"))
	}
}
