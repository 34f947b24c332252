package service_test

import (
	"context"
	"errors"
	"testing"

	"estudio/internal/apierror"
	"estudio/internal/dto"
	"estudio/internal/model"
	"estudio/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func (e *testEnv) registrar(t *testing.T, tipo, movTipo, monto string) (*model.MovimientoCaja, error) {
	t.Helper()
	caja := e.caja(t, tipo)
	var mov *model.MovimientoCaja
	err := e.tx.Run(context.Background(), func(tx *gorm.DB) error {
		var err error
		mov, err = e.cajas.RegistrarMovimientoTx(tx, service.MovimientoInput{
			CajaID:    caja.ID,
			Tipo:      movTipo,
			Concepto:  "prueba",
			Monto:     d(monto),
			UsuarioID: e.actor,
		})
		return err
	})
	return mov, err
}

func TestRegistrarMovimiento_SnapshotsAndBalance(t *testing.T) {
	e := newTestEnv(t)

	m1, err := e.registrar(t, model.TipoCajaBanco, model.MovimientoIngreso, "500")
	require.NoError(t, err)
	requireMoney(t, "0", m1.SaldoAnterior)
	requireMoney(t, "500", m1.SaldoNuevo)
	assert.Equal(t, int64(1), m1.Secuencia)

	m2, err := e.registrar(t, model.TipoCajaBanco, model.MovimientoRetiro, "120.55")
	require.NoError(t, err)
	requireMoney(t, "500", m2.SaldoAnterior)
	requireMoney(t, "379.45", m2.SaldoNuevo)
	assert.Equal(t, int64(2), m2.Secuencia)

	caja := e.caja(t, model.TipoCajaBanco)
	requireMoney(t, "379.45", caja.Saldo)
	assert.Equal(t, int64(2), caja.UltimaSecuencia)
	e.requireConsistente(t, model.TipoCajaBanco)
}

func TestRegistrarMovimiento_InsufficientBalanceLeavesNoTrace(t *testing.T) {
	e := newTestEnv(t)
	_, err := e.registrar(t, model.TipoCajaEfectivo, model.MovimientoIngreso, "100")
	require.NoError(t, err)

	_, err = e.registrar(t, model.TipoCajaEfectivo, model.MovimientoRetiro, "100.01")
	require.Error(t, err)
	assert.True(t, errors.Is(err, service.ErrSaldoInsuficiente))
	assert.Equal(t, apierror.KindInsufficientBalance, apierror.KindOf(err))

	caja := e.caja(t, model.TipoCajaEfectivo)
	requireMoney(t, "100", caja.Saldo)
	assert.Len(t, e.movimientos(t, caja.ID), 1)
}

func TestRegistrarMovimiento_RejectsInvalidAmounts(t *testing.T) {
	e := newTestEnv(t)
	for _, monto := range []string{"0", "-5", "10.001"} {
		_, err := e.registrar(t, model.TipoCajaBanco, model.MovimientoIngreso, monto)
		assert.Equal(t, apierror.KindInvalidInput, apierror.KindOf(err), monto)
	}
	assert.Empty(t, e.movimientos(t, e.caja(t, model.TipoCajaBanco).ID))
}

func TestRegistrarMovimiento_UnknownCaja(t *testing.T) {
	e := newTestEnv(t)
	err := e.tx.Run(context.Background(), func(tx *gorm.DB) error {
		_, err := e.cajas.RegistrarMovimientoTx(tx, service.MovimientoInput{
			CajaID: uuid.New(), Tipo: model.MovimientoIngreso, Concepto: "x", Monto: d("1"), UsuarioID: e.actor,
		})
		return err
	})
	assert.True(t, errors.Is(err, service.ErrCajaNoEncontrada))
}

func TestRevertirMovimiento_CompensatesThenDeactivates(t *testing.T) {
	e := newTestEnv(t)
	orig, err := e.registrar(t, model.TipoCajaBanco, model.MovimientoIngreso, "250")
	require.NoError(t, err)

	err = e.tx.Run(context.Background(), func(tx *gorm.DB) error {
		comp, err := e.cajas.RevertirMovimientoTx(tx, orig, e.actor)
		if err != nil {
			return err
		}
		assert.Equal(t, model.MovimientoRetiro, comp.Tipo)
		require.NotNil(t, comp.ReversaDeID)
		assert.Equal(t, orig.ID, *comp.ReversaDeID)
		assert.Equal(t, "Reversión: prueba", comp.Concepto)
		return nil
	})
	require.NoError(t, err)

	caja := e.caja(t, model.TipoCajaBanco)
	requireMoney(t, "0", caja.Saldo)
	movs := e.movimientos(t, caja.ID)
	require.Len(t, movs, 2)
	assert.False(t, movs[0].Activo)
	assert.True(t, movs[1].Activo)
	e.requireConsistente(t, model.TipoCajaBanco)
}

func TestListarCajasYMovimientos(t *testing.T) {
	e := newTestEnv(t)
	for _, m := range []string{"10", "20", "30"} {
		_, err := e.registrar(t, model.TipoCajaBanco, model.MovimientoIngreso, m)
		require.NoError(t, err)
	}

	cajas, err := e.cajas.ListarCajas(context.Background())
	require.NoError(t, err)
	assert.Len(t, cajas, 3)

	banco := e.caja(t, model.TipoCajaBanco)
	page, err := e.cajas.ListarMovimientos(context.Background(), banco.ID, dto.MovimientoFilter{Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), page.Total)
	require.Len(t, page.Data, 2)
	assert.Equal(t, int64(3), page.Data[0].Secuencia, "newest first")
	requireMoney(t, "60", page.Data[0].SaldoNuevo)

	_, err = e.cajas.ListarMovimientos(context.Background(), uuid.New(), dto.MovimientoFilter{Limit: 10})
	assert.True(t, errors.Is(err, service.ErrCajaNoEncontrada))
}

func TestAuditar_DetectsTamperedBalance(t *testing.T) {
	e := newTestEnv(t)
	_, err := e.registrar(t, model.TipoCajaAhorro, model.MovimientoIngreso, "80")
	require.NoError(t, err)

	caja := e.caja(t, model.TipoCajaAhorro)
	require.NoError(t, e.db.Model(&model.Caja{}).Where("id = ?", caja.ID).Update("saldo", d("95")).Error)

	res, err := e.cajas.Auditar(context.Background(), caja.ID)
	require.NoError(t, err)
	assert.False(t, res.Consistente)
	requireMoney(t, "80", res.SaldoEsperado)
	assert.NotEmpty(t, res.Discrepancias)
}

func TestAuditar_DetectsDeactivationWithoutReversal(t *testing.T) {
	e := newTestEnv(t)
	mov, err := e.registrar(t, model.TipoCajaBanco, model.MovimientoIngreso, "40")
	require.NoError(t, err)
	require.NoError(t, e.db.Model(&model.MovimientoCaja{}).Where("id = ?", mov.ID).Update("activo", false).Error)

	res, err := e.cajas.Auditar(context.Background(), mov.CajaID)
	require.NoError(t, err)
	assert.False(t, res.Consistente)
}
