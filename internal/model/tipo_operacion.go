package model

import "time"

// Operation directions — the sign a movement applies to the drawer balance.
const (
	DireccionIngreso = "ingreso"
	DireccionEgreso  = "egreso"
)

// Catalog codes seeded on first boot. Additional codes can be registered at
// runtime by an administrador; codes are never reused or deleted.
const (
	CodigoVenta         = "VENTA"
	CodigoCobranza      = "COBRANZA"
	CodigoCredito       = "CREDITO"
	CodigoAnticipo      = "ANTICIPO"
	CodigoPagoSueldo    = "PAGO_SUELDO"
	CodigoIngresoManual = "INGRESO_MANUAL"
	CodigoEgresoManual  = "EGRESO_MANUAL"
)

// TipoOperacion is an immutable catalog entry classifying cash movements.
// Direccion: "ingreso" | "egreso".
// GeneraCredito marks operations that open a cuenta corriente entry
// (CREDITO, ANTICIPO). Referenced types are soft-disabled, never deleted.
type TipoOperacion struct {
	Codigo        string `gorm:"primaryKey;type:varchar(40)"`
	Nombre        string `gorm:"not null"`
	Direccion     string `gorm:"type:varchar(10);not null"`
	GeneraCredito bool   `gorm:"not null;default:false"`
	Activo        bool   `gorm:"not null;default:true"`
	CreatedAt     time.Time
}

func (TipoOperacion) TableName() string { return "tipos_operacion" }
