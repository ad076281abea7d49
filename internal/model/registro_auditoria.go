package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Audit modes.
// "estricto" refuses to close a session whose discrepancy exceeds tolerance;
// "flexible" lets the close proceed and flags the discrepancy for review.
const (
	ModoEstricto = "estricto"
	ModoFlexible = "flexible"
)

// Audit outcomes.
const (
	ResultadoAprobado    = "aprobado"
	ResultadoAdvertencia = "advertencia"
	ResultadoBloqueado   = "bloqueado"
)

// RegistroAuditoria is one row of the compliance trail: exactly one is
// written per close evaluation, whatever the outcome. A session that was
// blocked and later closed keeps all of its "bloqueado" rows — the table is
// insert-only (see infra.applySchemaPatches).
type RegistroAuditoria struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SesionCajaID uuid.UUID       `gorm:"type:uuid;index;not null"`
	CajaID       int             `gorm:"not null;index"`
	Modo         string          `gorm:"type:varchar(20);not null"`
	Accion       string          `gorm:"type:varchar(40);not null"`
	Esperado     decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Declarado    decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	// Desvio = Declarado - Esperado
	Desvio    decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Resultado string          `gorm:"type:varchar(20);not null"`
	CreatedAt time.Time       `gorm:"index"`
}

func (RegistroAuditoria) TableName() string { return "registros_auditoria" }
