package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Receivable states — a pure function of (Monto, MontoSaldado).
const (
	CuentaAbierta = "abierta"
	CuentaParcial = "parcial"
	CuentaSaldada = "saldada"
)

// CuentaCorriente is one debtor obligation in the receivables ledger.
// VentaOrigenID nil marks a manual credit (payroll advance, discretionary
// grant) — it settles and lists exactly like a sale-linked one.
// Settled accounts are retained for history, never deleted.
type CuentaCorriente struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	DeudorID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	VentaOrigenID *uuid.UUID      `gorm:"type:uuid"`
	Monto         decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	MontoSaldado  decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Estado        string          `gorm:"type:varchar(20);not null;default:'abierta'"`
	// Migrada marks rows backfilled from the legacy system (cmd/backfill)
	Migrada   bool `gorm:"not null;default:false"`
	CreatedAt time.Time
	SaldadaAt *time.Time
}

// EstadoCalculado derives the state from the amounts. Persisted Estado must
// always equal this; the repository recomputes it on every settlement.
func (c *CuentaCorriente) EstadoCalculado() string {
	switch {
	case c.MontoSaldado.IsZero():
		return CuentaAbierta
	case c.MontoSaldado.LessThan(c.Monto):
		return CuentaParcial
	default:
		return CuentaSaldada
	}
}

// Saldo returns the outstanding balance.
func (c *CuentaCorriente) Saldo() decimal.Decimal {
	return c.Monto.Sub(c.MontoSaldado)
}

func (CuentaCorriente) TableName() string { return "cuentas_corrientes" }
