package dto

import "github.com/shopspring/decimal"

type RegistroAuditoriaResponse struct {
	ID           string          `json:"id"`
	SesionCajaID string          `json:"sesion_caja_id"`
	CajaID       int             `json:"caja_id"`
	Modo         string          `json:"modo"`
	Accion       string          `json:"accion"`
	Esperado     decimal.Decimal `json:"esperado"`
	Declarado    decimal.Decimal `json:"declarado"`
	Desvio       decimal.Decimal `json:"desvio"`
	Resultado    string          `json:"resultado"`
	CreatedAt    string          `json:"created_at"`
}
