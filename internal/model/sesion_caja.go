package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Session states.
// "cerrando" exists only inside a close transaction — it is never observable
// across requests; a failed close rolls back to the prior state.
const (
	EstadoAbierta   = "abierta"
	EstadoCerrando  = "cerrando"
	EstadoCerrada   = "cerrada"
	EstadoBloqueada = "bloqueada"
)

// SesionCaja represents one open-to-close working period of a cash drawer.
// At most one session per caja may be "abierta" or "cerrando" at any time —
// enforced by a partial unique index (see infra.applySchemaPatches).
type SesionCaja struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CajaID       int             `gorm:"not null;index"`
	UsuarioID    uuid.UUID       `gorm:"type:uuid;not null"`
	MontoInicial decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	// MontoEsperado = MontoInicial + Σ(signed operation amounts); recomputed
	// in the same transaction as every operation append.
	MontoEsperado  decimal.Decimal  `gorm:"type:decimal(12,2);not null"`
	MontoDeclarado *decimal.Decimal `gorm:"type:decimal(12,2)"`
	Estado         string           `gorm:"type:varchar(20);not null;default:'abierta'"`
	OpenedAt       time.Time
	ClosedAt       *time.Time

	Operaciones []OperacionCaja `gorm:"foreignKey:SesionCajaID"`
}

// Abierta reports whether the session still accepts operations.
// A blocked session stays usable for corrective entries and a close retry.
func (s *SesionCaja) Abierta() bool {
	return s.Estado == EstadoAbierta || s.Estado == EstadoBloqueada
}

// OperacionCaja is an immutable event in the register ledger.
// Monto is always positive; the sign comes from the catalog direction.
// Operations are NEVER updated or deleted — corrections are offsetting entries.
type OperacionCaja struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SesionCajaID uuid.UUID       `gorm:"type:uuid;index;not null"`
	Codigo       string          `gorm:"type:varchar(40);not null"`
	Monto        decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Descripcion  string
	// ReferenciaID links to the originating venta / nomina record
	ReferenciaID *uuid.UUID `gorm:"type:uuid"`
	CreatedAt    time.Time
}

// CajaConfig overrides the deployment-wide audit settings for one register.
// Nil fields fall back to config defaults — supports staged rollout from
// soft-warn (flexible) to hard-block (estricto).
type CajaConfig struct {
	CajaID     int              `gorm:"primaryKey"`
	Modo       *string          `gorm:"type:varchar(20)"`
	Tolerancia *decimal.Decimal `gorm:"type:decimal(12,2)"`
	UpdatedAt  time.Time
}

func (SesionCaja) TableName() string { return "sesiones_caja" }

func (OperacionCaja) TableName() string { return "operaciones_caja" }

func (CajaConfig) TableName() string { return "cajas_config" }
