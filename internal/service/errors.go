package service

import (
	"errors"
	"fmt"

	"cajaledger/internal/model"

	"github.com/shopspring/decimal"
)

var decimalZero = decimal.Zero

// Validation errors — bad input, surfaced immediately, never retried.
var (
	ErrMontoInvalido        = errors.New("el monto debe ser mayor a cero")
	ErrOperacionDesconocida = errors.New("codigo de operacion desconocido")
	ErrCodigoDuplicado      = errors.New("el codigo de operacion ya existe")
	ErrDireccionInvalida    = errors.New("la direccion debe ser ingreso o egreso")
	ErrSobreSaldo           = errors.New("el pago excede el saldo pendiente de la cuenta")
	ErrDeudorRequerido      = errors.New("la operacion requiere un deudor_id")
)

// State conflicts — the caller decides whether to retry against current state.
var (
	ErrCajaYaAbierta   = errors.New("ya existe una sesion abierta para esta caja")
	ErrSesionCerrada   = errors.New("la sesion ya esta cerrada")
	ErrSesionEnCierre  = errors.New("la sesion tiene un cierre en curso")
	ErrSesionNoExiste  = errors.New("sesion de caja no encontrada")
	ErrCuentaNoExiste  = errors.New("cuenta corriente no encontrada")
	ErrCuentaSaldada   = errors.New("la cuenta ya esta saldada")
	ErrModoInvalido    = errors.New("modo de auditoria invalido")
	ErrUsuarioNoExiste = errors.New("usuario no encontrado")
	ErrCajaNoAsignada  = errors.New("el usuario no esta habilitado para esta caja")
)

// CierreBloqueadoError is the intended business signal of a hard-block audit:
// the declared count does not match the expected balance and the session
// needs manual reconciliation before closing. It carries the full audit row
// for operator review — it is not a system fault.
type CierreBloqueadoError struct {
	Registro *model.RegistroAuditoria
}

func (e *CierreBloqueadoError) Error() string {
	return fmt.Sprintf("cierre bloqueado: desvio de %s sobre un esperado de %s",
		e.Registro.Desvio.StringFixed(2), e.Registro.Esperado.StringFixed(2))
}

// Desvio is a convenience accessor for handlers.
func (e *CierreBloqueadoError) DesvioMonto() decimal.Decimal { return e.Registro.Desvio }
