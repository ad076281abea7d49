package dto

import "github.com/shopspring/decimal"

// Inbound notifications from the payroll subsystem. Both route through the
// register's active session: ANTICIPO opens a receivable against the
// employee, PAGO_SUELDO is a plain outflow.

type AnticipoRequest struct {
	CajaID     int             `json:"caja_id"     validate:"required,min=1"`
	EmpleadoID string          `json:"empleado_id" validate:"required,uuid"`
	Monto      decimal.Decimal `json:"monto"       validate:"required,gt=0"`
}

type PagoSueldoRequest struct {
	CajaID     int             `json:"caja_id"     validate:"required,min=1"`
	EmpleadoID string          `json:"empleado_id" validate:"required,uuid"`
	Monto      decimal.Decimal `json:"monto"       validate:"required,gt=0"`
}
