package service_test

import (
	"context"
	"testing"

	"cajaledger/internal/config"
	"cajaledger/internal/dto"
	"cajaledger/internal/model"
	"cajaledger/internal/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cajaFixture struct {
	repo      *fakeCajaRepo
	auditRepo *fakeAuditoriaRepo
	cuentas   *fakeCuentasRepo
	usuarios  *fakeUsuarioRepo
	catalogo  service.CatalogoService
	svc       service.CajaService
	usuarioID uuid.UUID
}

func newCajaFixture(t *testing.T, cfg *config.Config) *cajaFixture {
	t.Helper()
	if cfg == nil {
		cfg = &config.Config{AuditModoDefault: model.ModoFlexible, AuditTolerancia: decimal.Zero}
	}

	catRepo := newFakeCatalogoRepo()
	catRepo.tipos[model.CodigoVenta] = &model.TipoOperacion{
		Codigo: model.CodigoVenta, Nombre: "Venta", Direccion: model.DireccionIngreso, Activo: true}
	catRepo.tipos[model.CodigoEgresoManual] = &model.TipoOperacion{
		Codigo: model.CodigoEgresoManual, Nombre: "Egreso manual", Direccion: model.DireccionEgreso, Activo: true}
	catRepo.tipos[model.CodigoCredito] = &model.TipoOperacion{
		Codigo: model.CodigoCredito, Nombre: "Venta a credito", Direccion: model.DireccionIngreso, GeneraCredito: true, Activo: true}
	catRepo.tipos[model.CodigoAnticipo] = &model.TipoOperacion{
		Codigo: model.CodigoAnticipo, Nombre: "Anticipo", Direccion: model.DireccionEgreso, GeneraCredito: true, Activo: true}
	catRepo.tipos[model.CodigoPagoSueldo] = &model.TipoOperacion{
		Codigo: model.CodigoPagoSueldo, Nombre: "Pago de sueldo", Direccion: model.DireccionEgreso, Activo: true}
	catRepo.tipos[model.CodigoCobranza] = &model.TipoOperacion{
		Codigo: model.CodigoCobranza, Nombre: "Cobranza", Direccion: model.DireccionIngreso, Activo: true}

	catalogo := service.NewCatalogoService(catRepo)
	require.NoError(t, catalogo.Cargar(context.Background()))

	repo := newFakeCajaRepo()
	auditRepo := &fakeAuditoriaRepo{}
	cuentas := newFakeCuentasRepo()
	usuarios := newFakeUsuarioRepo()
	auditoria := service.NewAuditoriaService(auditRepo, repo, cfg)

	usuarioID := uuid.New()
	usuarios.usuarios[usuarioID] = &model.Usuario{
		ID: usuarioID, Username: "cajero1", Nombre: "Cajero Uno", Rol: "cajero", Activo: true,
	}

	return &cajaFixture{
		repo:      repo,
		auditRepo: auditRepo,
		cuentas:   cuentas,
		usuarios:  usuarios,
		catalogo:  catalogo,
		svc:       service.NewCajaService(repo, auditRepo, cuentas, usuarios, catalogo, auditoria, nil),
		usuarioID: usuarioID,
	}
}

func (f *cajaFixture) abrir(t *testing.T, cajaID int, inicial float64) string {
	t.Helper()
	resp, err := f.svc.Abrir(context.Background(), f.usuarioID, dto.AbrirCajaRequest{
		CajaID:       cajaID,
		MontoInicial: decimal.NewFromFloat(inicial),
	})
	require.NoError(t, err)
	return resp.SesionCajaID
}

// ── Abrir ────────────────────────────────────────────────────────────────────

func TestAbrirCaja(t *testing.T) {
	f := newCajaFixture(t, nil)

	resp, err := f.svc.Abrir(context.Background(), f.usuarioID, dto.AbrirCajaRequest{
		CajaID:       1,
		MontoInicial: decimal.NewFromFloat(5000),
	})

	require.NoError(t, err)
	assert.Equal(t, model.EstadoAbierta, resp.Estado)
	assert.Equal(t, 1, resp.CajaID)
	assert.Equal(t, "5000", resp.MontoInicial.String())
	// expected balance starts at the opening float
	assert.Equal(t, "5000", resp.MontoEsperado.String())
}

func TestAbrirCajaDuplicada(t *testing.T) {
	f := newCajaFixture(t, nil)
	f.abrir(t, 1, 5000)

	_, err := f.svc.Abrir(context.Background(), f.usuarioID, dto.AbrirCajaRequest{
		CajaID:       1,
		MontoInicial: decimal.NewFromFloat(2000),
	})
	assert.ErrorIs(t, err, service.ErrCajaYaAbierta)
}

func TestAbrirCajaNoAsignada(t *testing.T) {
	f := newCajaFixture(t, nil)
	caja := 3
	f.usuarios.usuarios[f.usuarioID].CajaID = &caja

	_, err := f.svc.Abrir(context.Background(), f.usuarioID, dto.AbrirCajaRequest{
		CajaID:       1,
		MontoInicial: decimal.NewFromFloat(1000),
	})
	assert.ErrorIs(t, err, service.ErrCajaNoAsignada)
}

// ── RegistrarOperacion ───────────────────────────────────────────────────────

func TestRegistrarOperacionBalance(t *testing.T) {
	f := newCajaFixture(t, nil)
	sesionID := f.abrir(t, 1, 1000)

	_, err := f.svc.RegistrarOperacion(context.Background(), dto.RegistrarOperacionRequest{
		SesionCajaID: sesionID,
		Codigo:       model.CodigoVenta,
		Monto:        decimal.NewFromFloat(250.50),
	})
	require.NoError(t, err)

	_, err = f.svc.RegistrarOperacion(context.Background(), dto.RegistrarOperacionRequest{
		SesionCajaID: sesionID,
		Codigo:       model.CodigoEgresoManual,
		Monto:        decimal.NewFromFloat(100),
		Descripcion:  "compra de bolsas",
	})
	require.NoError(t, err)

	// 1000 + 250.50 − 100 = 1150.50; amounts stay positive, direction signs
	reporte, err := f.svc.ObtenerReporte(context.Background(), uuid.MustParse(sesionID))
	require.NoError(t, err)
	assert.Equal(t, "1150.5", reporte.MontoEsperado.String())
	require.Len(t, reporte.Operaciones, 2)
	assert.True(t, reporte.Operaciones[1].Monto.IsPositive())
}

func TestRegistrarOperacionMontoInvalido(t *testing.T) {
	f := newCajaFixture(t, nil)
	sesionID := f.abrir(t, 1, 1000)

	_, err := f.svc.RegistrarOperacion(context.Background(), dto.RegistrarOperacionRequest{
		SesionCajaID: sesionID,
		Codigo:       model.CodigoVenta,
		Monto:        decimal.NewFromFloat(-50),
	})
	assert.ErrorIs(t, err, service.ErrMontoInvalido)
}

func TestRegistrarOperacionCodigoDesconocido(t *testing.T) {
	f := newCajaFixture(t, nil)
	sesionID := f.abrir(t, 1, 1000)

	_, err := f.svc.RegistrarOperacion(context.Background(), dto.RegistrarOperacionRequest{
		SesionCajaID: sesionID,
		Codigo:       "DEVOLUCION",
		Monto:        decimal.NewFromFloat(50),
	})
	assert.ErrorIs(t, err, service.ErrOperacionDesconocida)
}

func TestOperacionCreditoCreaCuenta(t *testing.T) {
	f := newCajaFixture(t, nil)
	sesionID := f.abrir(t, 1, 0)

	deudor := uuid.New().String()
	venta := uuid.New().String()
	_, err := f.svc.RegistrarOperacion(context.Background(), dto.RegistrarOperacionRequest{
		SesionCajaID: sesionID,
		Codigo:       model.CodigoCredito,
		Monto:        decimal.NewFromFloat(3000),
		DeudorID:     &deudor,
		ReferenciaID: &venta,
	})
	require.NoError(t, err)

	require.Len(t, f.cuentas.cuentas, 1)
	for _, c := range f.cuentas.cuentas {
		assert.Equal(t, deudor, c.DeudorID.String())
		require.NotNil(t, c.VentaOrigenID)
		assert.Equal(t, venta, c.VentaOrigenID.String())
		assert.Equal(t, model.CuentaAbierta, c.Estado)
		assert.Equal(t, "3000", c.Monto.String())
		assert.True(t, c.MontoSaldado.IsZero())
	}
}

func TestOperacionAnticipoCuentaSinVenta(t *testing.T) {
	// A payroll advance opens a receivable with no originating sale.
	f := newCajaFixture(t, nil)
	sesionID := f.abrir(t, 1, 10000)

	empleado := uuid.New().String()
	_, err := f.svc.RegistrarOperacion(context.Background(), dto.RegistrarOperacionRequest{
		SesionCajaID: sesionID,
		Codigo:       model.CodigoAnticipo,
		Monto:        decimal.NewFromFloat(2000),
		DeudorID:     &empleado,
	})
	require.NoError(t, err)

	require.Len(t, f.cuentas.cuentas, 1)
	for _, c := range f.cuentas.cuentas {
		assert.Nil(t, c.VentaOrigenID)
	}

	// Advance is an egreso: 10000 − 2000
	reporte, err := f.svc.ObtenerReporte(context.Background(), uuid.MustParse(sesionID))
	require.NoError(t, err)
	assert.Equal(t, "8000", reporte.MontoEsperado.String())
}

func TestOperacionCreditoSinDeudor(t *testing.T) {
	f := newCajaFixture(t, nil)
	sesionID := f.abrir(t, 1, 0)

	_, err := f.svc.RegistrarOperacion(context.Background(), dto.RegistrarOperacionRequest{
		SesionCajaID: sesionID,
		Codigo:       model.CodigoCredito,
		Monto:        decimal.NewFromFloat(3000),
	})
	assert.ErrorIs(t, err, service.ErrDeudorRequerido)
	assert.Empty(t, f.cuentas.cuentas)
	assert.Empty(t, f.repo.operaciones)
}

// ── SolicitarCierre ──────────────────────────────────────────────────────────

func TestCierreAprobado(t *testing.T) {
	f := newCajaFixture(t, nil)
	sesionID := f.abrir(t, 1, 5000)

	resp, err := f.svc.SolicitarCierre(context.Background(), dto.CierreCajaRequest{
		SesionCajaID:   sesionID,
		MontoDeclarado: decimal.NewFromFloat(5000),
	})
	require.NoError(t, err)
	assert.Equal(t, model.ResultadoAprobado, resp.Resultado)
	assert.Equal(t, model.EstadoCerrada, resp.Estado)
	assert.True(t, resp.Desvio.IsZero())

	sesion := f.repo.sesiones[uuid.MustParse(sesionID)]
	assert.Equal(t, model.EstadoCerrada, sesion.Estado)
	assert.NotNil(t, sesion.ClosedAt)

	require.Len(t, f.auditRepo.registros, 1)
	assert.Equal(t, model.ResultadoAprobado, f.auditRepo.registros[0].Resultado)
}

func TestCierreAdvertenciaFlexible(t *testing.T) {
	f := newCajaFixture(t, nil)
	sesionID := f.abrir(t, 1, 5000)

	// flexible mode: deviation closes the session but leaves a warning
	resp, err := f.svc.SolicitarCierre(context.Background(), dto.CierreCajaRequest{
		SesionCajaID:   sesionID,
		MontoDeclarado: decimal.NewFromFloat(4800),
	})
	require.NoError(t, err)
	assert.Equal(t, model.ResultadoAdvertencia, resp.Resultado)
	assert.Equal(t, model.EstadoCerrada, resp.Estado)
	assert.Equal(t, "-200", resp.Desvio.String())

	require.Len(t, f.auditRepo.registros, 1)
	assert.Equal(t, model.ResultadoAdvertencia, f.auditRepo.registros[0].Resultado)
}

func TestCierreBloqueadoEstricto(t *testing.T) {
	cfg := &config.Config{AuditModoDefault: model.ModoEstricto, AuditTolerancia: decimal.Zero}
	f := newCajaFixture(t, cfg)
	sesionID := f.abrir(t, 1, 5000)

	_, err := f.svc.SolicitarCierre(context.Background(), dto.CierreCajaRequest{
		SesionCajaID:   sesionID,
		MontoDeclarado: decimal.NewFromFloat(4800),
	})

	var bloqueado *service.CierreBloqueadoError
	require.ErrorAs(t, err, &bloqueado)
	assert.Equal(t, "-200.00", bloqueado.Registro.Desvio.StringFixed(2))

	// The session stays blocked, the audit row is still committed.
	sesion := f.repo.sesiones[uuid.MustParse(sesionID)]
	assert.Equal(t, model.EstadoBloqueada, sesion.Estado)
	assert.Nil(t, sesion.ClosedAt)
	require.Len(t, f.auditRepo.registros, 1)
	assert.Equal(t, model.ResultadoBloqueado, f.auditRepo.registros[0].Resultado)
}

func TestCierreDentroDeTolerancia(t *testing.T) {
	cfg := &config.Config{AuditModoDefault: model.ModoEstricto, AuditTolerancia: decimal.NewFromFloat(100)}
	f := newCajaFixture(t, cfg)
	sesionID := f.abrir(t, 1, 5000)

	resp, err := f.svc.SolicitarCierre(context.Background(), dto.CierreCajaRequest{
		SesionCajaID:   sesionID,
		MontoDeclarado: decimal.NewFromFloat(4950),
	})
	require.NoError(t, err)
	assert.Equal(t, model.ResultadoAprobado, resp.Resultado)
}

func TestCierreReintentoTrasBloqueo(t *testing.T) {
	// A blocked session accepts a corrective operation and a second close.
	cfg := &config.Config{AuditModoDefault: model.ModoEstricto, AuditTolerancia: decimal.Zero}
	f := newCajaFixture(t, cfg)
	sesionID := f.abrir(t, 1, 5000)

	_, err := f.svc.SolicitarCierre(context.Background(), dto.CierreCajaRequest{
		SesionCajaID:   sesionID,
		MontoDeclarado: decimal.NewFromFloat(4800),
	})
	var bloqueado *service.CierreBloqueadoError
	require.ErrorAs(t, err, &bloqueado)

	// The drawer really is 200 short: record the shortfall as an egreso.
	_, err = f.svc.RegistrarOperacion(context.Background(), dto.RegistrarOperacionRequest{
		SesionCajaID: sesionID,
		Codigo:       model.CodigoEgresoManual,
		Monto:        decimal.NewFromFloat(200),
		Descripcion:  "faltante verificado por supervisor",
	})
	require.NoError(t, err)

	resp, err := f.svc.SolicitarCierre(context.Background(), dto.CierreCajaRequest{
		SesionCajaID:   sesionID,
		MontoDeclarado: decimal.NewFromFloat(4800),
	})
	require.NoError(t, err)
	assert.Equal(t, model.ResultadoAprobado, resp.Resultado)
	assert.Equal(t, model.EstadoCerrada, resp.Estado)

	// One audit row per evaluation — blocked attempt included.
	assert.Len(t, f.auditRepo.registros, 2)
}

func TestCierreSesionYaCerrada(t *testing.T) {
	f := newCajaFixture(t, nil)
	sesionID := f.abrir(t, 1, 1000)

	_, err := f.svc.SolicitarCierre(context.Background(), dto.CierreCajaRequest{
		SesionCajaID:   sesionID,
		MontoDeclarado: decimal.NewFromFloat(1000),
	})
	require.NoError(t, err)

	_, err = f.svc.SolicitarCierre(context.Background(), dto.CierreCajaRequest{
		SesionCajaID:   sesionID,
		MontoDeclarado: decimal.NewFromFloat(1000),
	})
	assert.ErrorIs(t, err, service.ErrSesionCerrada)

	_, err = f.svc.RegistrarOperacion(context.Background(), dto.RegistrarOperacionRequest{
		SesionCajaID: sesionID,
		Codigo:       model.CodigoVenta,
		Monto:        decimal.NewFromFloat(10),
	})
	assert.ErrorIs(t, err, service.ErrSesionCerrada)
}

func TestCierreConfigPorCaja(t *testing.T) {
	// Deployment default flexible; register 2 overridden to estricto.
	f := newCajaFixture(t, nil)
	modo := model.ModoEstricto
	require.NoError(t, f.svc.GuardarConfig(context.Background(), 2, dto.ConfigCajaRequest{Modo: &modo}))

	sesionID := f.abrir(t, 2, 1000)
	_, err := f.svc.SolicitarCierre(context.Background(), dto.CierreCajaRequest{
		SesionCajaID:   sesionID,
		MontoDeclarado: decimal.NewFromFloat(900),
	})
	var bloqueado *service.CierreBloqueadoError
	assert.ErrorAs(t, err, &bloqueado)
}

func TestGuardarConfigModoInvalido(t *testing.T) {
	f := newCajaFixture(t, nil)
	modo := "permisivo"
	err := f.svc.GuardarConfig(context.Background(), 1, dto.ConfigCajaRequest{Modo: &modo})
	assert.ErrorIs(t, err, service.ErrModoInvalido)
}
