package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Paquete is a priced service offering. Its percentages are the default
// distribution for every session booked with it.
type Paquete struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey"`
	Nombre      string          `gorm:"type:varchar(100);not null"`
	Descripcion *string         `gorm:"type:text"`
	Precio      decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	PorcentajeA decimal.Decimal `gorm:"type:decimal(5,2);not null"`
	PorcentajeB decimal.Decimal `gorm:"type:decimal(5,2);not null"`
	PorcentajeC decimal.Decimal `gorm:"type:decimal(5,2);not null"`
	Activo      bool            `gorm:"not null;default:true"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (p *Paquete) BeforeCreate(*gorm.DB) error { ensureID(&p.ID); return nil }
