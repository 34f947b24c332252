package repository

import (
	"bytes"
	"context"
	"sort"

	"estudio/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CajaRepository interface {
	Create(ctx context.Context, c *model.Caja) error
	ListActivas(ctx context.Context) ([]model.Caja, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.Caja, error)
	ListMovimientos(ctx context.Context, cajaID uuid.UUID, limit, offset int) ([]model.MovimientoCaja, int64, error)

	// Tx variants run inside the caller's unit of work.
	FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.Caja, error)
	FindByTipoTx(tx *gorm.DB, tipo string) (*model.Caja, error)
	LockTx(tx *gorm.DB, id uuid.UUID) (*model.Caja, error)
	LockManyTx(tx *gorm.DB, ids []uuid.UUID) error
	UpdateSaldoTx(tx *gorm.DB, id uuid.UUID, saldo decimal.Decimal, secuencia int64) error
	CreateMovimientoTx(tx *gorm.DB, m *model.MovimientoCaja) error
	MovimientosActivosPorSesionTx(tx *gorm.DB, sesionID uuid.UUID) ([]model.MovimientoCaja, error)
	DesactivarMovimientoTx(tx *gorm.DB, id uuid.UUID) error
	HistorialTx(tx *gorm.DB, cajaID uuid.UUID) ([]model.MovimientoCaja, error)
}

type cajaRepo struct{ db *gorm.DB }

func NewCajaRepository(db *gorm.DB) CajaRepository { return &cajaRepo{db: db} }

func (r *cajaRepo) Create(ctx context.Context, c *model.Caja) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *cajaRepo) ListActivas(ctx context.Context) ([]model.Caja, error) {
	var cajas []model.Caja
	err := r.db.WithContext(ctx).Where("activo = ?", true).Order("nombre ASC").Find(&cajas).Error
	return cajas, err
}

func (r *cajaRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Caja, error) {
	return r.FindByIDTx(r.db.WithContext(ctx), id)
}

func (r *cajaRepo) ListMovimientos(ctx context.Context, cajaID uuid.UUID, limit, offset int) ([]model.MovimientoCaja, int64, error) {
	var movs []model.MovimientoCaja
	var total int64
	q := r.db.WithContext(ctx).Model(&model.MovimientoCaja{}).Where("caja_id = ? AND activo = ?", cajaID, true)
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := q.Order("secuencia DESC").Limit(limit).Offset(offset).Find(&movs).Error
	return movs, total, err
}

func (r *cajaRepo) FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.Caja, error) {
	var c model.Caja
	err := tx.Where("id = ?", id).First(&c).Error
	return &c, err
}

func (r *cajaRepo) FindByTipoTx(tx *gorm.DB, tipo string) (*model.Caja, error) {
	var c model.Caja
	err := tx.Where("tipo = ? AND activo = ?", tipo, true).First(&c).Error
	return &c, err
}

// LockTx reads a register with a row lock held until the transaction ends.
// The sqlite dialect drops the FOR UPDATE clause; there the single writer
// connection serializes access instead.
func (r *cajaRepo) LockTx(tx *gorm.DB, id uuid.UUID) (*model.Caja, error) {
	var c model.Caja
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", id).First(&c).Error
	return &c, err
}

// LockManyTx locks the given registers in ascending id order, so two
// transactions touching the same pair of registers can never deadlock.
func (r *cajaRepo) LockManyTx(tx *gorm.DB, ids []uuid.UUID) error {
	sorted := make([]uuid.UUID, 0, len(ids))
	seen := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			sorted = append(sorted, id)
		}
	}
	sort.Slice(sorted, func(i, j int) bool { return bytes.Compare(sorted[i][:], sorted[j][:]) < 0 })

	for _, id := range sorted {
		if _, err := r.LockTx(tx, id); err != nil {
			return err
		}
	}
	return nil
}

func (r *cajaRepo) UpdateSaldoTx(tx *gorm.DB, id uuid.UUID, saldo decimal.Decimal, secuencia int64) error {
	return tx.Model(&model.Caja{}).Where("id = ?", id).Updates(map[string]interface{}{
		"saldo":            saldo,
		"ultima_secuencia": secuencia,
	}).Error
}

func (r *cajaRepo) CreateMovimientoTx(tx *gorm.DB, m *model.MovimientoCaja) error {
	return tx.Omit(clause.Associations).Create(m).Error
}

func (r *cajaRepo) MovimientosActivosPorSesionTx(tx *gorm.DB, sesionID uuid.UUID) ([]model.MovimientoCaja, error) {
	var movs []model.MovimientoCaja
	err := tx.Where("sesion_id = ? AND activo = ?", sesionID, true).Order("created_at ASC, secuencia ASC").Find(&movs).Error
	return movs, err
}

func (r *cajaRepo) DesactivarMovimientoTx(tx *gorm.DB, id uuid.UUID) error {
	return tx.Model(&model.MovimientoCaja{}).Where("id = ?", id).Update("activo", false).Error
}

// HistorialTx returns every movement of a register, reversed ones included, in posting order.
func (r *cajaRepo) HistorialTx(tx *gorm.DB, cajaID uuid.UUID) ([]model.MovimientoCaja, error) {
	var movs []model.MovimientoCaja
	err := tx.Where("caja_id = ?", cajaID).Order("secuencia ASC").Find(&movs).Error
	return movs, err
}
