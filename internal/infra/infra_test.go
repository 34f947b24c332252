package infra

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"estudio/internal/dto"
	"estudio/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeedCajasIsIdempotent(t *testing.T) {
	db, err := NewDatabase(DatabaseConfig{
		Driver: "sqlite",
		DSN:    fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()),
	})
	require.NoError(t, err)
	ctx := context.Background()

	seeds := DefaultCajaSeeds("BBVA", "Efectivo", "Caja")
	require.NoError(t, SeedCajas(ctx, db, seeds))
	require.NoError(t, SeedCajas(ctx, db, seeds))

	var cajas []model.Caja
	require.NoError(t, db.Order("tipo ASC").Find(&cajas).Error)
	require.Len(t, cajas, 3)
	for _, c := range cajas {
		assert.True(t, c.Activo, c.Tipo)
		assert.True(t, c.Saldo.IsZero(), c.Tipo)
	}
}

func TestNewDatabaseRejectsUnknownDriver(t *testing.T) {
	_, err := NewDatabase(DatabaseConfig{Driver: "mysql"})
	assert.Error(t, err)
}

func TestGenerateReportePDF(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "reportes")
	rep := &dto.ReporteDistribucionResponse{
		FechaInicio:    "2025-03-01",
		FechaFin:       "2025-03-31",
		Sesiones:       4,
		TotalAnticipos: decimal.RequireFromString("1200"),
		TotalIngresos:  decimal.RequireFromString("4300.50"),
		TotalGastos:    decimal.RequireFromString("300"),
		TotalNeto:      decimal.RequireFromString("4000.50"),
		Distribucion: []dto.ParticipacionResponse{
			{Beneficiario: "Socio A", Monto: decimal.RequireFromString("1600.20")},
			{Beneficiario: "Socio B", Monto: decimal.RequireFromString("1200.15")},
			{Beneficiario: "Socio C", Monto: decimal.RequireFromString("1200.15")},
		},
	}

	path, err := GenerateReportePDF(rep, dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "reporte_2025-03-01_2025-03-31.pdf"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, len(data) > 4 && string(data[:4]) == "%PDF")
}

func TestCircuitBreakerRecoversAfterTimeout(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{FailureThreshold: 1, SuccessThreshold: 1, OpenTimeout: 1})
	fail := fmt.Errorf("down")

	assert.ErrorIs(t, cb.Execute(func() error { return fail }), fail)
	// OpenTimeout of 1ns elapses immediately, so the next call probes.
	assert.Equal(t, CBHalfOpen, cb.State())
	assert.NoError(t, cb.Execute(func() error { return nil }))
	assert.Equal(t, CBClosed, cb.State())
}

func TestCircuitBreakerAdmitsOneProbeAtATime(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{FailureThreshold: 1, OpenTimeout: 1})
	require.Error(t, cb.Execute(func() error { return fmt.Errorf("down") }))
	require.Equal(t, CBHalfOpen, cb.State())

	probeStarted := make(chan struct{})
	release := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- cb.Execute(func() error {
			close(probeStarted)
			<-release
			return fmt.Errorf("still down")
		})
	}()
	<-probeStarted

	assert.ErrorIs(t, cb.Execute(func() error { return nil }), ErrCircuitOpen, "second caller rejected while probing")
	close(release)
	assert.Error(t, <-done)
	assert.Equal(t, CBOpen, cb.stateNoRefresh())
}

// stateNoRefresh reads the raw state; with a 1ns OpenTimeout State() would
// already report half-open again.
func (cb *CircuitBreaker) stateNoRefresh() CBState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}
