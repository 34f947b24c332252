package service_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"estudio/internal/dto"
	"estudio/internal/infra"
	"estudio/internal/model"
	"estudio/internal/repository"
	"estudio/internal/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// ── Helpers ───────────────────────────────────────────────────────────────────

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }
func dp(s string) *decimal.Decimal {
	v := d(s)
	return &v
}
func sp(s string) *string { return &s }

func requireMoney(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...interface{}) {
	t.Helper()
	require.True(t, d(want).Equal(got), append([]interface{}{fmt.Sprintf("want %s, got %s", want, got.String())}, msgAndArgs...)...)
}

// newTestDB opens a private in-memory SQLite database with the full schema and the three seeded cajas.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := infra.NewDatabase(infra.DatabaseConfig{Driver: "sqlite", DSN: dsn})
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	require.NoError(t, infra.SeedCajas(context.Background(), db, infra.DefaultCajaSeeds("BBVA", "Efectivo", "Caja")))
	return db
}

type testEnv struct {
	db       *gorm.DB
	tx       *repository.TxRunner
	cajas    service.CajaService
	dist     service.DistribucionService
	sesiones service.SesionService
	paquetes service.PaqueteService
	actor    uuid.UUID
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := newTestDB(t)
	tx := repository.NewTxRunner(db, repository.TxOptions{Timeout: 10 * time.Second, MaxRetries: 3})

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
		sesiones: service.NewSesionService(tx, sesionRepo, paqueteRepo, cajas, dist, nil),
		paquetes: service.NewPaqueteService(paqueteRepo),
		actor:    uuid.New(),
	}
}

func (e *testEnv) crearPaquete(t *testing.T, precio, a, b, c string) *dto.PaqueteResponse {
	t.Helper()
	p, err := e.paquetes.Crear(context.Background(), dto.CrearPaqueteRequest{
		Nombre:      "Paquete " + precio,
		Precio:      d(precio),
		PorcentajeA: d(a),
		PorcentajeB: d(b),
		PorcentajeC: d(c),
	})
	require.NoError(t, err)
	return p
}

func sesionReq(paqueteID, anticipo, montoCaja string) dto.CrearSesionRequest {
	return dto.CrearSesionRequest{
		Fecha:          time.Now().UTC().AddDate(0, 0, 7).Format("2006-01-02"),
		HoraInicial:    "10:00",
		HoraFinal:      "12:00",
		NombreCliente:  "Ana Pérez",
		CelularCliente: "5512345678",
		PaqueteID:      paqueteID,
		Anticipo:       d(anticipo),
		MontoCaja:      d(montoCaja),
	}
}

func (e *testEnv) caja(t *testing.T, tipo string) model.Caja {
	t.Helper()
	var c model.Caja
	require.NoError(t, e.db.Where("tipo = ?", tipo).First(&c).Error)
	return c
}

func (e *testEnv) movimientos(t *testing.T, cajaID uuid.UUID) []model.MovimientoCaja {
	t.Helper()
	var movs []model.MovimientoCaja
	require.NoError(t, e.db.Where("caja_id = ?", cajaID).Order("secuencia ASC").Find(&movs).Error)
	return movs
}

func (e *testEnv) requireConsistente(t *testing.T, tipo string) {
	t.Helper()
	res, err := e.cajas.Auditar(context.Background(), e.caja(t, tipo).ID)
	require.NoError(t, err)
	require.True(t, res.Consistente, "caja %s: %v", tipo, res.Discrepancias)
}
