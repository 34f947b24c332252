package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DistribucionSesion is the three-way split of a session's net result.
// MontoA + MontoB + MontoC == Neto to the cent; MontoC absorbs the rounding remainder.
type DistribucionSesion struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey"`
	SesionID        uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex"`
	PorcentajeA     decimal.Decimal `gorm:"type:decimal(5,2);not null"`
	PorcentajeB     decimal.Decimal `gorm:"type:decimal(5,2);not null"`
	PorcentajeC     decimal.Decimal `gorm:"type:decimal(5,2);not null"`
	MontoA          decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	MontoB          decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	MontoC          decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	IngresosTotales decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	GastosTotales   decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Neto            decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Activo          bool            `gorm:"not null;default:true"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (DistribucionSesion) TableName() string { return "distribuciones_sesion" }

func (d *DistribucionSesion) BeforeCreate(*gorm.DB) error { ensureID(&d.ID); return nil }
