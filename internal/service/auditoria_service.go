package service

import (
	"context"
	"time"

	"cajaledger/internal/config"
	"cajaledger/internal/dto"
	"cajaledger/internal/model"
	"cajaledger/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AuditoriaService evaluates close-out declarations and serves the
// compliance trail to the reporting UI.
type AuditoriaService interface {
	// Evaluar is a pure decision: same session state, declaration, mode and
	// tolerance always yield the same outcome. Persistence happens in
	// CajaService's close transaction, not here.
	Evaluar(sesion *model.SesionCaja, declarado decimal.Decimal, modo string, tolerancia decimal.Decimal) *model.RegistroAuditoria

	// ResolverPolitica returns the effective (modo, tolerancia) for a register:
	// per-register override when present, deployment defaults otherwise.
	ResolverPolitica(ctx context.Context, cajaID int) (string, decimal.Decimal)

	HistorialSesion(ctx context.Context, sesionID uuid.UUID) ([]dto.RegistroAuditoriaResponse, error)
	HistorialCaja(ctx context.Context, cajaID int, desde, hasta time.Time) ([]dto.RegistroAuditoriaResponse, error)
}

type auditoriaService struct {
	repo     repository.AuditoriaRepository
	cajaRepo repository.CajaRepository
	cfg      *config.Config
}

func NewAuditoriaService(repo repository.AuditoriaRepository, cajaRepo repository.CajaRepository, cfg *config.Config) AuditoriaService {
	return &auditoriaService{repo: repo, cajaRepo: cajaRepo, cfg: cfg}
}

func (s *auditoriaService) Evaluar(sesion *model.SesionCaja, declarado decimal.Decimal, modo string, tolerancia decimal.Decimal) *model.RegistroAuditoria {
	desvio := declarado.Sub(sesion.MontoEsperado)
	fueraDeTolerancia := desvio.Abs().GreaterThan(tolerancia)

	resultado := model.ResultadoAprobado
	if fueraDeTolerancia {
		if modo == model.ModoEstricto {
			resultado = model.ResultadoBloqueado
		} else {
			resultado = model.ResultadoAdvertencia
		}
	}

	return &model.RegistroAuditoria{
		SesionCajaID: sesion.ID,
		CajaID:       sesion.CajaID,
		Modo:         modo,
		Accion:       "cierre",
		Esperado:     sesion.MontoEsperado,
		Declarado:    declarado,
		Desvio:       desvio,
		Resultado:    resultado,
	}
}

func (s *auditoriaService) ResolverPolitica(ctx context.Context, cajaID int) (string, decimal.Decimal) {
	modo := s.cfg.AuditModoDefault
	tolerancia := s.cfg.AuditTolerancia

	if override, err := s.cajaRepo.FindConfig(ctx, cajaID); err == nil {
		if override.Modo != nil {
			modo = *override.Modo
		}
		if override.Tolerancia != nil {
			tolerancia = *override.Tolerancia
		}
	}
	return modo, tolerancia
}

func (s *auditoriaService) HistorialSesion(ctx context.Context, sesionID uuid.UUID) ([]dto.RegistroAuditoriaResponse, error) {
	regs, err := s.repo.ListBySesion(ctx, sesionID)
	if err != nil {
		return nil, err
	}
	return registrosToResponse(regs), nil
}

func (s *auditoriaService) HistorialCaja(ctx context.Context, cajaID int, desde, hasta time.Time) ([]dto.RegistroAuditoriaResponse, error) {
	regs, err := s.repo.ListByCaja(ctx, cajaID, desde, hasta)
	if err != nil {
		return nil, err
	}
	return registrosToResponse(regs), nil
}

func registrosToResponse(regs []model.RegistroAuditoria) []dto.RegistroAuditoriaResponse {
	out := make([]dto.RegistroAuditoriaResponse, 0, len(regs))
	for _, r := range regs {
		out = append(out, dto.RegistroAuditoriaResponse{
			ID:           r.ID.String(),
			SesionCajaID: r.SesionCajaID.String(),
			CajaID:       r.CajaID,
			Modo:         r.Modo,
			Accion:       r.Accion,
			Esperado:     r.Esperado,
			Declarado:    r.Declarado,
			Desvio:       r.Desvio,
			Resultado:    r.Resultado,
			CreatedAt:    r.CreatedAt.Format(time.RFC3339),
		})
	}
	return out
}
