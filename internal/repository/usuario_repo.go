package repository

import (
	"context"
	"strings"
	"time"

	"estudio/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UsuarioRepository interface {
	Create(ctx context.Context, u *model.Usuario) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Usuario, error)
	// FindActivoByUsername matches the login name case-insensitively.
	FindActivoByUsername(ctx context.Context, username string) (*model.Usuario, error)
	ExisteUsername(ctx context.Context, username string) (bool, error)
	List(ctx context.Context, incluirInactivos bool) ([]model.Usuario, error)
	Update(ctx context.Context, u *model.Usuario) error
	// SetActivo returns gorm.ErrRecordNotFound when no user has that id.
	SetActivo(ctx context.Context, id uuid.UUID, activo bool) error
	RegistrarAcceso(ctx context.Context, id uuid.UUID, at time.Time) error
}

type usuarioRepo struct{ db *gorm.DB }

func NewUsuarioRepository(db *gorm.DB) UsuarioRepository { return &usuarioRepo{db: db} }

func (r *usuarioRepo) Create(ctx context.Context, u *model.Usuario) error {
	u.Username = strings.ToLower(strings.TrimSpace(u.Username))
	return r.db.WithContext(ctx).Create(u).Error
}

func (r *usuarioRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Usuario, error) {
	var u model.Usuario
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *usuarioRepo) FindActivoByUsername(ctx context.Context, username string) (*model.Usuario, error) {
	var u model.Usuario
	err := r.db.WithContext(ctx).
		Where("username = ? AND activo = ?", strings.ToLower(strings.TrimSpace(username)), true).
		First(&u).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *usuarioRepo) ExisteUsername(ctx context.Context, username string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Usuario{}).
		Where("username = ?", strings.ToLower(strings.TrimSpace(username))).
		Count(&n).Error
	return n > 0, err
}

func (r *usuarioRepo) List(ctx context.Context, incluirInactivos bool) ([]model.Usuario, error) {
	q := r.db.WithContext(ctx).Order("username ASC")
	if !incluirInactivos {
		q = q.Where("activo = ?", true)
	}
	var users []model.Usuario
	err := q.Find(&users).Error
	return users, err
}

// Update writes the editable profile columns only; activo and ultimo_acceso
// have their own methods.
func (r *usuarioRepo) Update(ctx context.Context, u *model.Usuario) error {
	u.UpdatedAt = time.Now()
	return r.db.WithContext(ctx).
		Model(u).
		Select("nombre", "email", "rol", "password_hash", "updated_at").
		Updates(u).Error
}

func (r *usuarioRepo) SetActivo(ctx context.Context, id uuid.UUID, activo bool) error {
	res := r.db.WithContext(ctx).Model(&model.Usuario{}).Where("id = ?", id).Update("activo", activo)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *usuarioRepo) RegistrarAcceso(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).Model(&model.Usuario{}).Where("id = ?", id).
		UpdateColumn("ultimo_acceso", at).Error
}
