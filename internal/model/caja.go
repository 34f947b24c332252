package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Tipo de caja. Each type has exactly one seeded register.
const (
	TipoCajaBanco    = "banco"    // settlements by transfer and every advance payment
	TipoCajaEfectivo = "efectivo" // cash drawer
	TipoCajaAhorro   = "ahorro"   // savings earmarked per session (montoCaja)
)

// Tipo de movimiento.
const (
	MovimientoIngreso = "ingreso" // credit
	MovimientoRetiro  = "retiro"  // debit
)

// Caja is a named pool of funds with a running balance.
// Saldo is written only by the ledger, in the same transaction that appends
// the movement that explains the change.
type Caja struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey"`
	Nombre       string          `gorm:"type:varchar(50);not null"`
	Tipo         string          `gorm:"type:varchar(20);not null;uniqueIndex"`
	SaldoInicial decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Saldo        decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	// UltimaSecuencia is the Secuencia of the newest movement posted to this register.
	UltimaSecuencia int64 `gorm:"not null;default:0"`
	Activo          bool  `gorm:"not null;default:true"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (c *Caja) BeforeCreate(*gorm.DB) error { ensureID(&c.ID); return nil }

// MovimientoCaja is an immutable event in a register's ledger.
// Only Activo ever changes: reversals append an opposite movement and then
// deactivate the original. SaldoAnterior/SaldoNuevo are snapshots taken when
// the row was created and are never recomputed.
type MovimientoCaja struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey"`
	CajaID        uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_movimientos_caja_secuencia,priority:1"`
	Tipo          string          `gorm:"type:varchar(10);not null"`
	Concepto      string          `gorm:"not null"`
	Monto         decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	SaldoAnterior decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	SaldoNuevo    decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	// SesionID links the movement to the session event that caused it.
	SesionID *uuid.UUID `gorm:"type:uuid;index"`
	// ReversaDeID points a compensating movement at the movement it reverses.
	ReversaDeID *uuid.UUID `gorm:"type:uuid;index"`
	UsuarioID   uuid.UUID  `gorm:"type:uuid;not null"`
	Activo      bool       `gorm:"not null;default:true"`
	// Secuencia is the 1-based position of the movement in its register's history.
	// (caja_id, secuencia) is unique, so two writers that raced past the row lock cannot both commit.
	Secuencia int64 `gorm:"not null;uniqueIndex:idx_movimientos_caja_secuencia,priority:2"`
	CreatedAt time.Time

	Caja *Caja `gorm:"foreignKey:CajaID"`
}

// TableName overrides GORM's default pluralization (movimiento_cajas → movimientos_caja).
func (MovimientoCaja) TableName() string { return "movimientos_caja" }

func (m *MovimientoCaja) BeforeCreate(*gorm.DB) error { ensureID(&m.ID); return nil }

// Signo returns the signed amount: positive for ingreso, negative for retiro.
func (m MovimientoCaja) Signo() decimal.Decimal {
	if m.Tipo == MovimientoRetiro {
		return m.Monto.Neg()
	}
	return m.Monto
}

func ensureID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}
