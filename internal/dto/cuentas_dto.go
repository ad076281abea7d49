package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

// VentaCreditoRequest is the inbound notification from the sales subsystem:
// a sale was closed on credit and the receivable must be opened against the
// buyer, recording the CREDITO operation on the register's active session.
type VentaCreditoRequest struct {
	CajaID   int             `json:"caja_id"   validate:"required,min=1"`
	VentaID  string          `json:"venta_id"  validate:"required,uuid"`
	DeudorID string          `json:"deudor_id" validate:"required,uuid"`
	Monto    decimal.Decimal `json:"monto"     validate:"required,gt=0"`
}

type SaldarCuentaRequest struct {
	Monto decimal.Decimal `json:"monto" validate:"required,gt=0"`
	// SesionCajaID, when present, also records a COBRANZA operation on that
	// session (payment collected at the register)
	SesionCajaID *string `json:"sesion_caja_id" validate:"omitempty,uuid"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type CuentaCorrienteResponse struct {
	ID            string          `json:"id"`
	DeudorID      string          `json:"deudor_id"`
	VentaOrigenID *string         `json:"venta_origen_id,omitempty"`
	Monto         decimal.Decimal `json:"monto"`
	MontoSaldado  decimal.Decimal `json:"monto_saldado"`
	Saldo         decimal.Decimal `json:"saldo"`
	Estado        string          `json:"estado"`
	Migrada       bool            `json:"migrada"`
	CreatedAt     string          `json:"created_at"`
	SaldadaAt     *string         `json:"saldada_at,omitempty"`
}
