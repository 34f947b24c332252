//go:build integration

package service_test

// integration_test.go
// Ledger and orchestrator behavior against real Postgres + Redis via testcontainers.
// Run with: go test -tags integration ./internal/service/... -v
//
// SQLite serializes every writer on one connection; these tests exercise the
// row locks, the lock ordering and the conflict retry path under real concurrency.

import (
	"context"
	"sync"
	"testing"
	"time"

	"estudio/internal/dto"
	"estudio/internal/infra"
	"estudio/internal/model"
	"estudio/internal/repository"
	"estudio/internal/service"
	"estudio/internal/worker"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcPostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	tcRedis "github.com/testcontainers/testcontainers-go/modules/redis"
)

func newPostgresEnv(t *testing.T) (*testEnv, *redis.Client) {
	t.Helper()
	ctx := context.Background()

	pgC, err := tcPostgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:15-alpine"),
		tcPostgres.WithDatabase("estudio_test"),
		tcPostgres.WithUsername("estudio"),
		tcPostgres.WithPassword("estudio"),
		testcontainers.WithWaitStrategy(
			tcPostgres.BasicWaitStrategies()...,
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pgC.Terminate(ctx) })

	pgURL, err := pgC.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	rdC, err := tcRedis.RunContainer(ctx, testcontainers.WithImage("redis:7-alpine"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdC.Terminate(ctx) })

	rdURL, err := rdC.ConnectionString(ctx)
	require.NoError(t, err)

	db, err := infra.NewDatabase(infra.DatabaseConfig{Driver: "postgres", DSN: pgURL, MaxOpenConns: 20})
	require.NoError(t, err)
	require.NoError(t, infra.SeedCajas(ctx, db, infra.DefaultCajaSeeds("BBVA", "Efectivo", "Caja")))

	rdb, err := infra.NewRedis(infra.RedisConfig{URL: rdURL, BlockingWorkers: 1})
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdb.Close() })
	dispatcher := worker.NewDispatcher(rdb, infra.NewCircuitBreaker(infra.DefaultCBConfig()))

	tx := repository.NewTxRunner(db, repository.TxOptions{MaxWait: 5 * time.Second, Timeout: 20 * time.Second, MaxRetries: 5})
	cajaRepo := repository.NewCajaRepository(db)
	paqueteRepo := repository.NewPaqueteRepository(db)
	sesionRepo := repository.NewSesionRepository(db)
	cajas := service.NewCajaService(cajaRepo, tx)
	dist := service.NewDistribucionService(repository.NewDistribucionRepository(), sesionRepo, paqueteRepo,
		[3]string{"Socio A", "Socio B", "Socio C"})

	return &testEnv{
		db:       db,
		tx:       tx,
		cajas:    cajas,
		dist:     dist,
		sesiones: service.NewSesionService(tx, sesionRepo, paqueteRepo, cajas, dist, dispatcher),
		paquetes: service.NewPaqueteService(paqueteRepo),
		actor:    uuid.New(),
	}, rdb
}

func TestIntegration_ConcurrentSessionsKeepLedgerConsistent(t *testing.T) {
	e, _ := newPostgresEnv(t)
	ctx := context.Background()
	p := e.crearPaquete(t, "1000", "40", "30", "30")

	const n = 25
	var wg sync.WaitGroup
	ids := make(chan string, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s, err := e.sesiones.Crear(ctx, e.actor, sesionReq(p.ID, "100", "10"))
			if assert.NoError(t, err) {
				ids <- s.ID
			}
		}()
	}
	wg.Wait()
	close(ids)

	requireMoney(t, "2500", e.caja(t, model.TipoCajaBanco).Saldo)
	requireMoney(t, "250", e.caja(t, model.TipoCajaAhorro).Saldo)
	e.requireConsistente(t, model.TipoCajaBanco)
	e.requireConsistente(t, model.TipoCajaAhorro)

	// Liquidate and revert concurrently: every session touches banco and ahorro,
	// in different orders, which would deadlock without the global lock order.
	var creadas []string
	for id := range ids {
		creadas = append(creadas, id)
	}
	for i, id := range creadas {
		wg.Add(1)
		go func(i int, id uuid.UUID) {
			defer wg.Done()
			if i%2 == 0 {
				assert.NoError(t, e.sesiones.Eliminar(ctx, e.actor, id))
				return
			}
			_, err := e.sesiones.AgregarLiquidacion(ctx, e.actor, id, dto.LiquidacionRequest{
				Monto: d("900"), CajaDestino: model.TipoCajaBanco,
			})
			assert.NoError(t, err)
		}(i, uuid.MustParse(id))
	}
	wg.Wait()

	liquidadas := int64(len(creadas) / 2)
	requireMoney(t, decimal.NewFromInt(1000*liquidadas).String(), e.caja(t, model.TipoCajaBanco).Saldo)
	requireMoney(t, decimal.NewFromInt(10*liquidadas).String(), e.caja(t, model.TipoCajaAhorro).Saldo)
	for _, tipo := range []string{model.TipoCajaBanco, model.TipoCajaAhorro, model.TipoCajaEfectivo} {
		e.requireConsistente(t, tipo)
	}
}

func TestIntegration_OverdraftIsRejectedAtomically(t *testing.T) {
	e, _ := newPostgresEnv(t)
	_, err := e.registrar(t, model.TipoCajaEfectivo, model.MovimientoIngreso, "100")
	require.NoError(t, err)

	var wg sync.WaitGroup
	var mu sync.Mutex
	aceptados := 0
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := e.registrar(t, model.TipoCajaEfectivo, model.MovimientoRetiro, "30"); err == nil {
				mu.Lock()
				aceptados++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 3, aceptados)
	requireMoney(t, "10", e.caja(t, model.TipoCajaEfectivo).Saldo)
	e.requireConsistente(t, model.TipoCajaEfectivo)
}

func TestIntegration_CommittedEventsScheduleAudits(t *testing.T) {
	e, rdb := newPostgresEnv(t)
	p := e.crearPaquete(t, "1000", "40", "30", "30")
	e.crearSesion(t, sesionReq(p.ID, "300", "50"))

	raw, err := rdb.LRange(context.Background(), worker.QueueAuditoria, 0, -1).Result()
	require.NoError(t, err)
	assert.Len(t, raw, 1)
}

func TestIntegration_PercentagesRoundTripThroughNumericColumns(t *testing.T) {
	e, _ := newPostgresEnv(t)
	ctx := context.Background()

	_, err := e.paquetes.Crear(ctx, dto.CrearPaqueteRequest{
		Nombre: "Tercios", Precio: d("1000"), PorcentajeA: d("33.333"), PorcentajeB: d("33.333"), PorcentajeC: d("33.334"),
	})
	require.ErrorIs(t, err, service.ErrPorcentajesInvalidos)

	p := e.crearPaquete(t, "1000", "33.33", "33.33", "33.34")
	id := uuid.MustParse(e.crearSesion(t, sesionReq(p.ID, "300", "0")).ID)

	_, err = e.sesiones.ActualizarPorcentajes(ctx, e.actor, id, dto.PorcentajesRequest{
		PorcentajeA: d("33.335"), PorcentajeB: d("33.335"), PorcentajeC: d("33.33"),
	})
	require.ErrorIs(t, err, service.ErrPorcentajesInvalidos)

	_, err = e.sesiones.ActualizarPorcentajes(ctx, e.actor, id, dto.PorcentajesRequest{
		PorcentajeA: d("33.34"), PorcentajeB: d("33.33"), PorcentajeC: d("33.33"),
	})
	require.NoError(t, err)

	_, err = e.sesiones.AgregarIngresoExtra(ctx, e.actor, id, dto.ConceptoMontoRequest{Concepto: "Fotos extra", Monto: d("100")})
	require.NoError(t, err)
	det, err := e.sesiones.ObtenerDetalle(ctx, id)
	require.NoError(t, err)
	requireReparto(t, det.Distribucion, "400", "133.36", "133.32", "133.32")
}
