package service_test

import (
	"context"
	"errors"
	"testing"

	"estudio/internal/dto"
	"estudio/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaqueteCrear_ValidatesPercentagesAndPrice(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	_, err := e.paquetes.Crear(ctx, dto.CrearPaqueteRequest{
		Nombre: "Boda", Precio: d("5000"), PorcentajeA: d("50"), PorcentajeB: d("30"), PorcentajeC: d("30"),
	})
	assert.True(t, errors.Is(err, service.ErrPorcentajesInvalidos))

	_, err = e.paquetes.Crear(ctx, dto.CrearPaqueteRequest{
		Nombre: "Boda", Precio: d("5000.123"), PorcentajeA: d("40"), PorcentajeB: d("30"), PorcentajeC: d("30"),
	})
	assert.True(t, errors.Is(err, service.ErrMontoInvalido))

	_, err = e.paquetes.Crear(ctx, dto.CrearPaqueteRequest{
		Nombre: "Boda", Precio: d("5000"), PorcentajeA: d("33.333"), PorcentajeB: d("33.333"), PorcentajeC: d("33.334"),
	})
	assert.True(t, errors.Is(err, service.ErrPorcentajesInvalidos), "shares are stored with two decimals")

	p, err := e.paquetes.Crear(ctx, dto.CrearPaqueteRequest{
		Nombre: "Boda", Precio: d("5000"), PorcentajeA: d("33.33"), PorcentajeB: d("33.33"), PorcentajeC: d("33.34"),
	})
	require.NoError(t, err)
	assert.True(t, p.Activo)
}

func TestPaqueteActualizar(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	p := e.crearPaquete(t, "1000", "40", "30", "30")
	id := uuid.MustParse(p.ID)

	_, err := e.paquetes.Actualizar(ctx, id, dto.ActualizarPaqueteRequest{PorcentajeA: dp("50")})
	require.Error(t, err, "percentages travel together")

	upd, err := e.paquetes.Actualizar(ctx, id, dto.ActualizarPaqueteRequest{
		Nombre:      sp("Premium"),
		Precio:      dp("1500"),
		PorcentajeA: dp("50"),
		PorcentajeB: dp("25"),
		PorcentajeC: dp("25"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Premium", upd.Nombre)
	requireMoney(t, "1500", upd.Precio)
	requireMoney(t, "50", upd.PorcentajeA)

	got, err := e.paquetes.Obtener(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Premium", got.Nombre)
}

func TestPaqueteDesactivar_HidesFromListing(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	p := e.crearPaquete(t, "1000", "40", "30", "30")
	e.crearPaquete(t, "2000", "40", "30", "30")

	require.NoError(t, e.paquetes.Desactivar(ctx, uuid.MustParse(p.ID)))

	list, err := e.paquetes.Listar(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	err = e.paquetes.Desactivar(ctx, uuid.MustParse(p.ID))
	assert.True(t, errors.Is(err, service.ErrPaqueteNoEncontrado))

	_, err = e.paquetes.Actualizar(ctx, uuid.MustParse(p.ID), dto.ActualizarPaqueteRequest{Nombre: sp("x")})
	assert.True(t, errors.Is(err, service.ErrPaqueteInactivo))

	_, err = e.paquetes.Obtener(ctx, uuid.New())
	assert.True(t, errors.Is(err, service.ErrPaqueteNoEncontrado))
}
