package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Estado de sesión. A session only reaches "revertida" through the
// compensation path in SesionService.Eliminar.
const (
	EstadoSesionActiva    = "activa"
	EstadoSesionRevertida = "revertida"
)

// Sesion is a booked appointment with its own sub-ledger of income and expense.
// HoraInicial/HoraFinal are "HH:MM" time-of-day strings on Fecha.
type Sesion struct {
	ID               uuid.UUID       `gorm:"type:uuid;primaryKey"`
	Fecha            time.Time       `gorm:"type:date;not null;index"`
	HoraInicial      string          `gorm:"type:varchar(8);not null"`
	HoraFinal        string          `gorm:"type:varchar(8);not null"`
	NombreCliente    string          `gorm:"type:varchar(150);not null"`
	CelularCliente   string          `gorm:"type:varchar(20)"`
	PaqueteID        uuid.UUID       `gorm:"type:uuid;not null;index"`
	Especificaciones *string         `gorm:"type:text"`
	Comentario       *string         `gorm:"type:text"`
	Anticipo         decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Restante         decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	MontoCaja        decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Editado          bool            `gorm:"not null;default:false"`
	Entregado        bool            `gorm:"not null;default:false"`
	UsuarioID        uuid.UUID       `gorm:"type:uuid;not null"`
	Estado           string          `gorm:"type:varchar(20);not null;default:'activa'"`
	Activo           bool            `gorm:"not null;default:true"`
	CreatedAt        time.Time
	UpdatedAt        time.Time

	Paquete       *Paquete            `gorm:"foreignKey:PaqueteID"`
	Liquidaciones []Liquidacion       `gorm:"foreignKey:SesionID"`
	IngresosExtra []IngresoExtra      `gorm:"foreignKey:SesionID"`
	Gastos        []Gasto             `gorm:"foreignKey:SesionID"`
	Distribucion  *DistribucionSesion `gorm:"foreignKey:SesionID"`
}

// TableName overrides GORM's default pluralization (sesions → sesiones).
func (Sesion) TableName() string { return "sesiones" }

func (s *Sesion) BeforeCreate(*gorm.DB) error { ensureID(&s.ID); return nil }

// Liquidacion is a post-booking payment toward a session's remaining balance.
// Every liquidacion is mirrored by an ingreso movement on CajaDestinoID.
type Liquidacion struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey"`
	SesionID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	CajaDestinoID uuid.UUID       `gorm:"type:uuid;not null"`
	Monto         decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Activo        bool            `gorm:"not null;default:true"`
	CreatedAt     time.Time

	CajaDestino *Caja `gorm:"foreignKey:CajaDestinoID"`
}

// TableName overrides GORM's default pluralization (liquidacions → liquidaciones).
func (Liquidacion) TableName() string { return "liquidaciones" }

func (l *Liquidacion) BeforeCreate(*gorm.DB) error { ensureID(&l.ID); return nil }

// IngresoExtra adds to a session's income without touching any register.
type IngresoExtra struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey"`
	SesionID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	Concepto  string          `gorm:"not null"`
	Monto     decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Activo    bool            `gorm:"not null;default:true"`
	CreatedAt time.Time
}

func (IngresoExtra) TableName() string { return "ingresos_extra" }

func (i *IngresoExtra) BeforeCreate(*gorm.DB) error { ensureID(&i.ID); return nil }

// Gasto is a session expense. Like IngresoExtra it only affects the computed net.
type Gasto struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey"`
	SesionID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	Concepto  string          `gorm:"not null"`
	Monto     decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Activo    bool            `gorm:"not null;default:true"`
	CreatedAt time.Time
}

func (g *Gasto) BeforeCreate(*gorm.DB) error { ensureID(&g.ID); return nil }
