package repository

import (
	"context"

	"cajaledger/internal/model"

	"gorm.io/gorm"
)

type CatalogoRepository interface {
	Create(ctx context.Context, t *model.TipoOperacion) error
	FindByCodigo(ctx context.Context, codigo string) (*model.TipoOperacion, error)
	ListAll(ctx context.Context) ([]model.TipoOperacion, error)
	Desactivar(ctx context.Context, codigo string) error
}

type catalogoRepo struct{ db *gorm.DB }

func NewCatalogoRepository(db *gorm.DB) CatalogoRepository { return &catalogoRepo{db: db} }

func (r *catalogoRepo) Create(ctx context.Context, t *model.TipoOperacion) error {
	return r.db.WithContext(ctx).Create(t).Error
}

func (r *catalogoRepo) FindByCodigo(ctx context.Context, codigo string) (*model.TipoOperacion, error) {
	var t model.TipoOperacion
	err := r.db.WithContext(ctx).First(&t, "codigo = ?", codigo).Error
	return &t, err
}

func (r *catalogoRepo) ListAll(ctx context.Context) ([]model.TipoOperacion, error) {
	var tipos []model.TipoOperacion
	err := r.db.WithContext(ctx).Order("codigo ASC").Find(&tipos).Error
	return tipos, err
}

// Desactivar soft-disables a catalog entry. Historical operations keep
// referencing the code; the row itself is never deleted.
func (r *catalogoRepo) Desactivar(ctx context.Context, codigo string) error {
	return r.db.WithContext(ctx).Model(&model.TipoOperacion{}).
		Where("codigo = ?", codigo).Update("activo", false).Error
}
