package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type AbrirCajaRequest struct {
	CajaID       int             `json:"caja_id"       validate:"required,min=1"`
	MontoInicial decimal.Decimal `json:"monto_inicial" validate:"min=0"`
}

type RegistrarOperacionRequest struct {
	SesionCajaID string          `json:"sesion_caja_id" validate:"required,uuid"`
	Codigo       string          `json:"codigo"         validate:"required"`
	Monto        decimal.Decimal `json:"monto"          validate:"required,gt=0"`
	Descripcion  string          `json:"descripcion"`
	// DeudorID is required when the operation code grants credit
	DeudorID     *string `json:"deudor_id"     validate:"omitempty,uuid"`
	ReferenciaID *string `json:"referencia_id" validate:"omitempty,uuid"`
}

type CierreCajaRequest struct {
	SesionCajaID   string          `json:"sesion_caja_id"  validate:"required,uuid"`
	MontoDeclarado decimal.Decimal `json:"monto_declarado" validate:"min=0"`
}

type ConfigCajaRequest struct {
	Modo       *string          `json:"modo"       validate:"omitempty,oneof=estricto flexible"`
	Tolerancia *decimal.Decimal `json:"tolerancia"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type OperacionResponse struct {
	ID           string          `json:"id"`
	Codigo       string          `json:"codigo"`
	Monto        decimal.Decimal `json:"monto"`
	Descripcion  string          `json:"descripcion,omitempty"`
	ReferenciaID *string         `json:"referencia_id,omitempty"`
	CreatedAt    string          `json:"created_at"`
}

type CierreCajaResponse struct {
	SesionCajaID   string          `json:"sesion_caja_id"`
	MontoEsperado  decimal.Decimal `json:"monto_esperado"`
	MontoDeclarado decimal.Decimal `json:"monto_declarado"`
	Desvio         decimal.Decimal `json:"desvio"`
	Modo           string          `json:"modo"`
	Resultado      string          `json:"resultado"`
	Estado         string          `json:"estado"`
}

type ReporteCajaResponse struct {
	SesionCajaID   string              `json:"sesion_caja_id"`
	CajaID         int                 `json:"caja_id"`
	MontoInicial   decimal.Decimal     `json:"monto_inicial"`
	MontoEsperado  decimal.Decimal     `json:"monto_esperado"`
	MontoDeclarado *decimal.Decimal    `json:"monto_declarado,omitempty"`
	Estado         string              `json:"estado"`
	Operaciones    []OperacionResponse `json:"operaciones"`
	OpenedAt       string              `json:"opened_at"`
	ClosedAt       *string             `json:"closed_at,omitempty"`
}

type TipoOperacionResponse struct {
	Codigo        string `json:"codigo"`
	Nombre        string `json:"nombre"`
	Direccion     string `json:"direccion"`
	GeneraCredito bool   `json:"genera_credito"`
	Activo        bool   `json:"activo"`
}

type RegistrarTipoOperacionRequest struct {
	Codigo        string `json:"codigo"         validate:"required,uppercase,min=3,max=40"`
	Nombre        string `json:"nombre"         validate:"required,min=3"`
	Direccion     string `json:"direccion"      validate:"required,oneof=ingreso egreso"`
	GeneraCredito bool   `json:"genera_credito"`
}
