package repository

import (
	"context"

	"estudio/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PaqueteRepository interface {
	Create(ctx context.Context, p *model.Paquete) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Paquete, error)
	FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.Paquete, error)
	List(ctx context.Context) ([]model.Paquete, error)
	Update(ctx context.Context, p *model.Paquete) error
	SoftDelete(ctx context.Context, id uuid.UUID) error
}

type paqueteRepo struct{ db *gorm.DB }

func NewPaqueteRepository(db *gorm.DB) PaqueteRepository { return &paqueteRepo{db: db} }

func (r *paqueteRepo) Create(ctx context.Context, p *model.Paquete) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *paqueteRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Paquete, error) {
	return r.FindByIDTx(r.db.WithContext(ctx), id)
}

// FindByIDTx returns the package whatever its activo flag; callers decide.
func (r *paqueteRepo) FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.Paquete, error) {
	var p model.Paquete
	err := tx.Where("id = ?", id).First(&p).Error
	return &p, err
}

func (r *paqueteRepo) List(ctx context.Context) ([]model.Paquete, error) {
	var paquetes []model.Paquete
	err := r.db.WithContext(ctx).Where("activo = ?", true).Order("nombre ASC").Find(&paquetes).Error
	return paquetes, err
}

func (r *paqueteRepo) Update(ctx context.Context, p *model.Paquete) error {
	return r.db.WithContext(ctx).Save(p).Error
}

func (r *paqueteRepo) SoftDelete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Model(&model.Paquete{}).Where("id = ? AND activo = ?", id, true).Update("activo", false)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
