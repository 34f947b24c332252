package repository

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"estudio/internal/apierror"
	"estudio/internal/infra"
	"estudio/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := infra.NewDatabase(infra.DatabaseConfig{
		Driver: "sqlite",
		DSN:    fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()),
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func TestMapTxError(t *testing.T) {
	ctx := context.Background()
	dominio := apierror.InsufficientBalance("Saldo insuficiente")

	tests := []struct {
		name string
		err  error
		want apierror.Kind
	}{
		{"domain error passes through", fmt.Errorf("%w: detalle", dominio), apierror.KindInsufficientBalance},
		{"deadline", context.DeadlineExceeded, apierror.KindConflict},
		{"serialization failure", &pgconn.PgError{Code: "40001"}, apierror.KindConflict},
		{"deadlock", &pgconn.PgError{Code: "40P01"}, apierror.KindConflict},
		{"lock timeout", &pgconn.PgError{Code: "55P03"}, apierror.KindConflict},
		{"sequence race", &pgconn.PgError{Code: "23505", ConstraintName: movimientoSecuenciaIndex}, apierror.KindConflict},
		{"other unique violation", &pgconn.PgError{Code: "23505", ConstraintName: "idx_usuarios_username"}, apierror.KindInternal},
		{"sqlite busy", errors.New("database is locked"), apierror.KindConflict},
		{"record not found", gorm.ErrRecordNotFound, apierror.KindNotFound},
		{"anything else", errors.New("boom"), apierror.KindInternal},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, apierror.KindOf(mapTxError(ctx, tc.err)))
		})
	}
}

func TestMapTxError_KeepsSentinelIdentity(t *testing.T) {
	sentinel := apierror.NotFound("Caja no encontrada o inactiva")
	err := mapTxError(context.Background(), fmt.Errorf("%w: banco", sentinel))
	assert.True(t, errors.Is(err, sentinel))
}

func TestTxRunner_RollsBackOnError(t *testing.T) {
	db := newTestDB(t)
	runner := NewTxRunner(db, TxOptions{Timeout: 5 * time.Second})

	err := runner.Run(context.Background(), func(tx *gorm.DB) error {
		if err := tx.Create(&model.Caja{Nombre: "BBVA", Tipo: model.TipoCajaBanco, Activo: true}).Error; err != nil {
			return err
		}
		return apierror.InvalidInput("abortar")
	})
	assert.Equal(t, apierror.KindInvalidInput, apierror.KindOf(err))

	var n int64
	require.NoError(t, db.Model(&model.Caja{}).Count(&n).Error)
	assert.Zero(t, n)
}

func TestTxRunner_RetriesConflicts(t *testing.T) {
	db := newTestDB(t)
	runner := NewTxRunner(db, TxOptions{Timeout: 5 * time.Second, MaxRetries: 2})

	var intentos int32
	err := runner.Run(context.Background(), func(tx *gorm.DB) error {
		if atomic.AddInt32(&intentos, 1) < 3 {
			return apierror.Conflict("Conflicto de concurrencia, reintente la operación", nil)
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, int32(3), atomic.LoadInt32(&intentos))

	atomic.StoreInt32(&intentos, 0)
	err = runner.Run(context.Background(), func(tx *gorm.DB) error {
		atomic.AddInt32(&intentos, 1)
		return apierror.Conflict("Conflicto de concurrencia, reintente la operación", nil)
	})
	require.Error(t, err)
	assert.True(t, err.(*apierror.Error).Retryable())
	assert.Equal(t, int32(3), atomic.LoadInt32(&intentos), "first attempt plus MaxRetries")
}

func TestTxRunner_DoesNotRetryDomainErrors(t *testing.T) {
	runner := NewTxRunner(newTestDB(t), TxOptions{MaxRetries: 5})

	var intentos int
	err := runner.Run(context.Background(), func(tx *gorm.DB) error {
		intentos++
		return apierror.NotFound("Sesión no encontrada o inactiva")
	})
	require.Error(t, err)
	assert.Equal(t, 1, intentos)
}

func TestLockManyTx_DedupsAndLocksEveryRegister(t *testing.T) {
	db := newTestDB(t)
	repo := NewCajaRepository(db)
	ctx := context.Background()

	banco := &model.Caja{Nombre: "BBVA", Tipo: model.TipoCajaBanco, Activo: true}
	ahorro := &model.Caja{Nombre: "Caja", Tipo: model.TipoCajaAhorro, Activo: true}
	require.NoError(t, repo.Create(ctx, banco))
	require.NoError(t, repo.Create(ctx, ahorro))

	runner := NewTxRunner(db, TxOptions{})
	err := runner.Run(ctx, func(tx *gorm.DB) error {
		return repo.LockManyTx(tx, []uuid.UUID{ahorro.ID, banco.ID, ahorro.ID})
	})
	assert.NoError(t, err)

	err = runner.Run(ctx, func(tx *gorm.DB) error {
		return repo.LockManyTx(tx, []uuid.UUID{banco.ID, uuid.New()})
	})
	assert.Equal(t, apierror.KindNotFound, apierror.KindOf(err))
}

func TestCajaRepo_MovementHistory(t *testing.T) {
	db := newTestDB(t)
	repo := NewCajaRepository(db)
	ctx := context.Background()

	caja := &model.Caja{Nombre: "Efectivo", Tipo: model.TipoCajaEfectivo, Activo: true}
	require.NoError(t, repo.Create(ctx, caja))

	sesionID := uuid.New()
	runner := NewTxRunner(db, TxOptions{})
	err := runner.Run(ctx, func(tx *gorm.DB) error {
		saldo := decimal.Zero
		for i, monto := range []string{"100", "50.25"} {
			m := decimal.RequireFromString(monto)
			mov := &model.MovimientoCaja{
				CajaID: caja.ID, Tipo: model.MovimientoIngreso, Concepto: "x", Monto: m,
				SaldoAnterior: saldo, SaldoNuevo: saldo.Add(m), SesionID: &sesionID,
				UsuarioID: uuid.New(), Activo: true, Secuencia: int64(i + 1),
			}
			if err := repo.CreateMovimientoTx(tx, mov); err != nil {
				return err
			}
			saldo = mov.SaldoNuevo
		}
		return repo.UpdateSaldoTx(tx, caja.ID, saldo, 2)
	})
	require.NoError(t, err)

	got, err := repo.FindByID(ctx, caja.ID)
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("150.25").Equal(got.Saldo))
	assert.Equal(t, int64(2), got.UltimaSecuencia)

	movs, total, err := repo.ListMovimientos(ctx, caja.ID, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Equal(t, int64(2), movs[0].Secuencia)

	err = runner.Run(ctx, func(tx *gorm.DB) error {
		activos, err := repo.MovimientosActivosPorSesionTx(tx, sesionID)
		require.NoError(t, err)
		assert.Len(t, activos, 2)
		return repo.DesactivarMovimientoTx(tx, activos[0].ID)
	})
	require.NoError(t, err)

	_, total, err = repo.ListMovimientos(ctx, caja.ID, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total, "listing shows active movements only")
}
