package repository

import (
	"estudio/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DistribucionRepository only exposes Tx methods: a distribution is written
// exclusively inside a session event's unit of work.
type DistribucionRepository interface {
	FindBySesionTx(tx *gorm.DB, sesionID uuid.UUID) (*model.DistribucionSesion, error)
	SaveTx(tx *gorm.DB, d *model.DistribucionSesion) error
	DesactivarTx(tx *gorm.DB, sesionID uuid.UUID) error
}

type distribucionRepo struct{}

func NewDistribucionRepository() DistribucionRepository { return &distribucionRepo{} }

func (r *distribucionRepo) FindBySesionTx(tx *gorm.DB, sesionID uuid.UUID) (*model.DistribucionSesion, error) {
	var d model.DistribucionSesion
	err := tx.Where("sesion_id = ?", sesionID).First(&d).Error
	return &d, err
}

func (r *distribucionRepo) SaveTx(tx *gorm.DB, d *model.DistribucionSesion) error {
	if d.ID == uuid.Nil {
		return tx.Create(d).Error
	}
	return tx.Save(d).Error
}

func (r *distribucionRepo) DesactivarTx(tx *gorm.DB, sesionID uuid.UUID) error {
	return tx.Model(&model.DistribucionSesion{}).Where("sesion_id = ?", sesionID).Update("activo", false).Error
}
