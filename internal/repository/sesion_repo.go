package repository

import (
	"context"
	"strings"
	"time"

	"estudio/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SesionFilter narrows List. Zero values mean "no filter".
type SesionFilter struct {
	Fecha   *time.Time
	Cliente string
	Limit   int
	Offset  int
}

// MontosSesion are the active child amounts a session's totals are computed from.
type MontosSesion struct {
	Liquidaciones []decimal.Decimal
	IngresosExtra []decimal.Decimal
	Gastos        []decimal.Decimal
}

type SesionRepository interface {
	FindDetalle(ctx context.Context, id uuid.UUID) (*model.Sesion, error)
	List(ctx context.Context, filter SesionFilter) ([]model.Sesion, int64, error)
	ListDesde(ctx context.Context, desde time.Time, limit int) ([]model.Sesion, error)
	ListEnRango(ctx context.Context, desde, hasta time.Time) ([]model.Sesion, error)

	CreateTx(tx *gorm.DB, s *model.Sesion) error
	LockTx(tx *gorm.DB, id uuid.UUID) (*model.Sesion, error)
	UpdateTx(tx *gorm.DB, s *model.Sesion) error
	CreateLiquidacionTx(tx *gorm.DB, l *model.Liquidacion) error
	CreateIngresoExtraTx(tx *gorm.DB, i *model.IngresoExtra) error
	CreateGastoTx(tx *gorm.DB, g *model.Gasto) error
	MontosActivosTx(tx *gorm.DB, sesionID uuid.UUID) (*MontosSesion, error)
	DesactivarHijosTx(tx *gorm.DB, sesionID uuid.UUID) error
}

type sesionRepo struct{ db *gorm.DB }

func NewSesionRepository(db *gorm.DB) SesionRepository { return &sesionRepo{db: db} }

func activos(db *gorm.DB) *gorm.DB { return db.Where("activo = ?", true) }

// FindDetalle loads an active session with its package, active children and distribution.
func (r *sesionRepo) FindDetalle(ctx context.Context, id uuid.UUID) (*model.Sesion, error) {
	var s model.Sesion
	err := r.db.WithContext(ctx).
		Preload("Paquete").
		Preload("Liquidaciones", activos).
		Preload("IngresosExtra", activos).
		Preload("Gastos", activos).
		Preload("Distribucion", activos).
		Where("id = ? AND activo = ?", id, true).
		First(&s).Error
	return &s, err
}

func (r *sesionRepo) List(ctx context.Context, filter SesionFilter) ([]model.Sesion, int64, error) {
	var sesiones []model.Sesion
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Sesion{}).Where("activo = ?", true)
	if filter.Fecha != nil {
		q = q.Where("fecha = ?", *filter.Fecha)
	}
	if filter.Cliente != "" {
		q = q.Where("LOWER(nombre_cliente) LIKE ?", "%"+strings.ToLower(filter.Cliente)+"%")
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := q.Preload("Paquete").
		Order("fecha DESC, hora_inicial DESC").
		Offset(filter.Offset).Limit(filter.Limit).
		Find(&sesiones).Error
	return sesiones, total, err
}

// ListDesde returns upcoming active sessions, earliest first.
func (r *sesionRepo) ListDesde(ctx context.Context, desde time.Time, limit int) ([]model.Sesion, error) {
	var sesiones []model.Sesion
	err := r.db.WithContext(ctx).
		Preload("Paquete").
		Where("activo = ? AND fecha >= ?", true, desde).
		Order("fecha ASC, hora_inicial ASC").
		Limit(limit).
		Find(&sesiones).Error
	return sesiones, err
}

// ListEnRango returns the active sessions dated in [desde, hasta] with their distribution.
func (r *sesionRepo) ListEnRango(ctx context.Context, desde, hasta time.Time) ([]model.Sesion, error) {
	var sesiones []model.Sesion
	err := r.db.WithContext(ctx).
		Preload("Distribucion", activos).
		Where("activo = ? AND fecha >= ? AND fecha <= ?", true, desde, hasta).
		Order("fecha ASC").
		Find(&sesiones).Error
	return sesiones, err
}

func (r *sesionRepo) CreateTx(tx *gorm.DB, s *model.Sesion) error {
	return tx.Omit(clause.Associations).Create(s).Error
}

// LockTx loads an active session with a row lock, serializing events on the same session.
func (r *sesionRepo) LockTx(tx *gorm.DB, id uuid.UUID) (*model.Sesion, error) {
	var s model.Sesion
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ? AND activo = ?", id, true).
		First(&s).Error
	return &s, err
}

func (r *sesionRepo) UpdateTx(tx *gorm.DB, s *model.Sesion) error {
	return tx.Omit(clause.Associations).Save(s).Error
}

func (r *sesionRepo) CreateLiquidacionTx(tx *gorm.DB, l *model.Liquidacion) error {
	return tx.Omit(clause.Associations).Create(l).Error
}

func (r *sesionRepo) CreateIngresoExtraTx(tx *gorm.DB, i *model.IngresoExtra) error {
	return tx.Create(i).Error
}

func (r *sesionRepo) CreateGastoTx(tx *gorm.DB, g *model.Gasto) error {
	return tx.Create(g).Error
}

func (r *sesionRepo) MontosActivosTx(tx *gorm.DB, sesionID uuid.UUID) (*MontosSesion, error) {
	m := &MontosSesion{}
	if err := tx.Model(&model.Liquidacion{}).
		Where("sesion_id = ? AND activo = ?", sesionID, true).
		Pluck("monto", &m.Liquidaciones).Error; err != nil {
		return nil, err
	}
	if err := tx.Model(&model.IngresoExtra{}).
		Where("sesion_id = ? AND activo = ?", sesionID, true).
		Pluck("monto", &m.IngresosExtra).Error; err != nil {
		return nil, err
	}
	if err := tx.Model(&model.Gasto{}).
		Where("sesion_id = ? AND activo = ?", sesionID, true).
		Pluck("monto", &m.Gastos).Error; err != nil {
		return nil, err
	}
	return m, nil
}

// DesactivarHijosTx soft-deletes every liquidacion, ingreso extra and gasto of a session.
func (r *sesionRepo) DesactivarHijosTx(tx *gorm.DB, sesionID uuid.UUID) error {
	for _, m := range []interface{}{&model.Liquidacion{}, &model.IngresoExtra{}, &model.Gasto{}} {
		if err := tx.Model(m).Where("sesion_id = ?", sesionID).Update("activo", false).Error; err != nil {
			return err
		}
	}
	return nil
}
