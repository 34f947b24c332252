package infra

import (
	"context"
	"errors"
	"fmt"
	"time"

	"estudio/internal/model"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type DatabaseConfig struct {
	Driver       string // postgres | sqlite
	DSN          string
	MaxOpenConns int
	Log          bool
}

// NewDatabase opens the store, runs the migrations and returns the pool handle.
// The pool is owned by the process; business code only ever sees the *gorm.DB
// through repositories and the TxRunner.
func NewDatabase(cfg DatabaseConfig) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case "", "postgres":
		dialector = postgres.Open(cfg.DSN)
	case "sqlite":
		dialector = sqlite.Open(cfg.DSN)
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.Driver)
	}

	mode := logger.Silent
	if cfg.Log {
		mode = logger.Info
	}
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:  logger.Default.LogMode(mode),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	maxOpen := cfg.MaxOpenConns
	if maxOpen <= 0 {
		maxOpen = 25
	}
	if cfg.Driver == "sqlite" {
		// SQLite serializes writers anyway; one connection avoids SQLITE_BUSY storms.
		maxOpen = 1
	}
	sqlDB.SetMaxOpenConns(maxOpen)
	sqlDB.SetMaxIdleConns(min(maxOpen, 5))

	if err := RunMigrations(db); err != nil {
		return nil, err
	}
	return db, nil
}

// RunMigrations creates/updates every table and then applies the idempotent
// patches AutoMigrate cannot express. Tests call it on their own databases.
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.Usuario{},
		&model.Caja{},
		&model.MovimientoCaja{},
		&model.Paquete{},
		&model.Sesion{},
		&model.Liquidacion{},
		&model.IngresoExtra{},
		&model.Gasto{},
		&model.DistribucionSesion{},
	); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}
	if db.Dialector.Name() != "postgres" {
		return nil
	}
	if err := applySchemaPatches(db); err != nil {
		return fmt.Errorf("schema patches: %w", err)
	}
	return nil
}

// applySchemaPatches runs idempotent DDL that AutoMigrate cannot express:
// CHECK constraints backing the ledger invariants and partial indexes for the
// hot queries. Each statement is guarded so re-running is a no-op.
func applySchemaPatches(db *gorm.DB) error {
	patches := []struct{ descr, sql string }{
		{"cajas saldo no negativo", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_cajas_saldo_no_negativo') THEN
    ALTER TABLE cajas ADD CONSTRAINT chk_cajas_saldo_no_negativo CHECK (saldo >= 0);
  END IF;
END $$`},
		{"movimientos monto positivo", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_movimientos_caja_monto_positivo') THEN
    ALTER TABLE movimientos_caja ADD CONSTRAINT chk_movimientos_caja_monto_positivo CHECK (monto > 0);
  END IF;
END $$`},
		{"movimientos tipo", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_movimientos_caja_tipo') THEN
    ALTER TABLE movimientos_caja ADD CONSTRAINT chk_movimientos_caja_tipo CHECK (tipo IN ('ingreso', 'retiro'));
  END IF;
END $$`},
		{"partial index movimientos activos por sesion",
			`CREATE INDEX IF NOT EXISTS idx_movimientos_caja_sesion_activos
			     ON movimientos_caja (sesion_id) WHERE activo = true`},
		{"partial index sesiones activas por fecha",
			`CREATE INDEX IF NOT EXISTS idx_sesiones_activas_fecha
			     ON sesiones (fecha) WHERE activo = true`},
	}
	for _, p := range patches {
		if err := db.Exec(p.sql).Error; err != nil {
			return fmt.Errorf("patch %q: %w", p.descr, err)
		}
	}
	return nil
}

// CajaSeed is the display name and opening balance of one seeded register.
type CajaSeed struct {
	Tipo         string
	Nombre       string
	SaldoInicial decimal.Decimal
}

// SeedCajas makes sure exactly one register exists per type. Existing
// registers are left untouched: their balance belongs to the ledger.
func SeedCajas(ctx context.Context, db *gorm.DB, seeds []CajaSeed) error {
	for _, s := range seeds {
		var existing model.Caja
		err := db.WithContext(ctx).Where("tipo = ?", s.Tipo).First(&existing).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		caja := model.Caja{
			Nombre:       s.Nombre,
			Tipo:         s.Tipo,
			SaldoInicial: s.SaldoInicial,
			Saldo:        s.SaldoInicial,
			Activo:       true,
		}
		if err := db.WithContext(ctx).Create(&caja).Error; err != nil {
			return fmt.Errorf("seed caja %s: %w", s.Tipo, err)
		}
		log.Info().Str("tipo", s.Tipo).Str("nombre", s.Nombre).Msg("caja sembrada")
	}
	return nil
}

// DefaultCajaSeeds returns the three registers every installation starts with.
func DefaultCajaSeeds(banco, efectivo, ahorro string) []CajaSeed {
	return []CajaSeed{
		{Tipo: model.TipoCajaBanco, Nombre: banco},
		{Tipo: model.TipoCajaEfectivo, Nombre: efectivo},
		{Tipo: model.TipoCajaAhorro, Nombre: ahorro},
	}
}
