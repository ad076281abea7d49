package service_test

import (
	"context"
	"testing"

	"cajaledger/internal/config"
	"cajaledger/internal/model"
	"cajaledger/internal/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func newAuditoria(cfg *config.Config, cajaRepo *fakeCajaRepo) service.AuditoriaService {
	return service.NewAuditoriaService(&fakeAuditoriaRepo{}, cajaRepo, cfg)
}

func sesionConEsperado(esperado float64) *model.SesionCaja {
	return &model.SesionCaja{
		ID:            uuid.New(),
		CajaID:        1,
		MontoEsperado: decimal.NewFromFloat(esperado),
		Estado:        model.EstadoCerrando,
	}
}

func TestEvaluarExacto(t *testing.T) {
	svc := newAuditoria(&config.Config{}, newFakeCajaRepo())
	reg := svc.Evaluar(sesionConEsperado(5000), decimal.NewFromFloat(5000), model.ModoEstricto, decimal.Zero)

	assert.Equal(t, model.ResultadoAprobado, reg.Resultado)
	assert.True(t, reg.Desvio.IsZero())
	assert.Equal(t, "cierre", reg.Accion)
}

func TestEvaluarDentroDeTolerancia(t *testing.T) {
	svc := newAuditoria(&config.Config{}, newFakeCajaRepo())
	// Deviation of exactly the tolerance is still approved (strictly-greater cutoff).
	reg := svc.Evaluar(sesionConEsperado(5000), decimal.NewFromFloat(4950), model.ModoEstricto, decimal.NewFromFloat(50))
	assert.Equal(t, model.ResultadoAprobado, reg.Resultado)

	reg = svc.Evaluar(sesionConEsperado(5000), decimal.NewFromFloat(4949), model.ModoEstricto, decimal.NewFromFloat(50))
	assert.Equal(t, model.ResultadoBloqueado, reg.Resultado)
}

func TestEvaluarFlexibleAdvierte(t *testing.T) {
	svc := newAuditoria(&config.Config{}, newFakeCajaRepo())
	reg := svc.Evaluar(sesionConEsperado(1000), decimal.NewFromFloat(1300), model.ModoFlexible, decimal.Zero)

	assert.Equal(t, model.ResultadoAdvertencia, reg.Resultado)
	// Surplus is as suspicious as shortage; the deviation keeps its sign.
	assert.Equal(t, "300", reg.Desvio.String())
}

func TestEvaluarEstrictoBloquea(t *testing.T) {
	svc := newAuditoria(&config.Config{}, newFakeCajaRepo())
	reg := svc.Evaluar(sesionConEsperado(1000), decimal.NewFromFloat(999.99), model.ModoEstricto, decimal.Zero)
	assert.Equal(t, model.ResultadoBloqueado, reg.Resultado)
}

func TestResolverPoliticaDefaults(t *testing.T) {
	cfg := &config.Config{AuditModoDefault: model.ModoFlexible, AuditTolerancia: decimal.NewFromFloat(10)}
	svc := newAuditoria(cfg, newFakeCajaRepo())

	modo, tolerancia := svc.ResolverPolitica(context.Background(), 7)
	assert.Equal(t, model.ModoFlexible, modo)
	assert.Equal(t, "10", tolerancia.String())
}

func TestResolverPoliticaOverride(t *testing.T) {
	cfg := &config.Config{AuditModoDefault: model.ModoFlexible, AuditTolerancia: decimal.NewFromFloat(10)}
	repo := newFakeCajaRepo()
	estricto := model.ModoEstricto
	repo.configs[7] = &model.CajaConfig{CajaID: 7, Modo: &estricto}
	svc := newAuditoria(cfg, repo)

	modo, tolerancia := svc.ResolverPolitica(context.Background(), 7)
	assert.Equal(t, model.ModoEstricto, modo)
	// tolerance not overridden, default survives
	assert.Equal(t, "10", tolerancia.String())
}
