package service_test

import (
	"context"
	"testing"

	"cajaledger/internal/model"
	"cajaledger/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogoRegistrarYLookup(t *testing.T) {
	svc := service.NewCatalogoService(newFakeCatalogoRepo())
	require.NoError(t, svc.Cargar(context.Background()))

	_, err := svc.Registrar(context.Background(), "DEVOLUCION", "Devolucion de venta", model.DireccionEgreso, false)
	require.NoError(t, err)

	tipo, err := svc.Lookup("DEVOLUCION")
	require.NoError(t, err)
	assert.Equal(t, model.DireccionEgreso, tipo.Direccion)
	assert.False(t, tipo.GeneraCredito)
}

func TestCatalogoCodigoDuplicado(t *testing.T) {
	svc := service.NewCatalogoService(newFakeCatalogoRepo())
	require.NoError(t, svc.Cargar(context.Background()))

	_, err := svc.Registrar(context.Background(), "DEVOLUCION", "Devolucion", model.DireccionEgreso, false)
	require.NoError(t, err)

	_, err = svc.Registrar(context.Background(), "DEVOLUCION", "Otra cosa", model.DireccionIngreso, false)
	assert.ErrorIs(t, err, service.ErrCodigoDuplicado)
}

func TestCatalogoDireccionInvalida(t *testing.T) {
	svc := service.NewCatalogoService(newFakeCatalogoRepo())
	_, err := svc.Registrar(context.Background(), "RARO", "Raro", "lateral", false)
	assert.ErrorIs(t, err, service.ErrDireccionInvalida)
}

func TestCatalogoLookupDesconocido(t *testing.T) {
	svc := service.NewCatalogoService(newFakeCatalogoRepo())
	require.NoError(t, svc.Cargar(context.Background()))

	_, err := svc.Lookup("NO_EXISTE")
	assert.ErrorIs(t, err, service.ErrOperacionDesconocida)
}

func TestCatalogoDesactivar(t *testing.T) {
	repo := newFakeCatalogoRepo()
	svc := service.NewCatalogoService(repo)
	require.NoError(t, svc.Cargar(context.Background()))

	_, err := svc.Registrar(context.Background(), "DEVOLUCION", "Devolucion", model.DireccionEgreso, false)
	require.NoError(t, err)
	require.NoError(t, svc.Desactivar(context.Background(), "DEVOLUCION"))

	// Deactivated codes reject new operations but stay listed for history.
	_, err = svc.Lookup("DEVOLUCION")
	assert.ErrorIs(t, err, service.ErrOperacionDesconocida)

	tipos := svc.Listar()
	require.Len(t, tipos, 1)
	assert.False(t, tipos[0].Activo)

	// The code cannot be re-registered either — codes are never reused.
	_, err = svc.Registrar(context.Background(), "DEVOLUCION", "Devolucion v2", model.DireccionEgreso, false)
	assert.ErrorIs(t, err, service.ErrCodigoDuplicado)
}
