package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Roles. Both operate sessions; only administrators manage paquetes,
// users and ledger audits.
const (
	RolAdministrador = "administrador"
	RolOperador      = "operador"
)

// Usuario is a studio operator. Its ID is the actor recorded on every
// movement and session it creates.
type Usuario struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	Username     string    `gorm:"type:varchar(150);uniqueIndex;not null"`
	Nombre       string    `gorm:"type:varchar(100);not null"`
	Email        *string   `gorm:"type:varchar(254)"`
	PasswordHash string    `gorm:"not null"`
	Rol          string    `gorm:"type:varchar(20);not null"`
	Activo       bool      `gorm:"not null;default:true"`
	UltimoAcceso *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (u *Usuario) BeforeCreate(*gorm.DB) error { ensureID(&u.ID); return nil }

func (u *Usuario) EsAdministrador() bool { return u.Rol == RolAdministrador }
