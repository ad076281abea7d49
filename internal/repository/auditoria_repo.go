package repository

import (
	"context"
	"time"

	"cajaledger/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AuditoriaRepository is insert-only: the audit trail admits no Update or
// Delete method on purpose — the DB enforces the same at the table level.
type AuditoriaRepository interface {
	CreateTx(tx *gorm.DB, r *model.RegistroAuditoria) error
	ListBySesion(ctx context.Context, sesionID uuid.UUID) ([]model.RegistroAuditoria, error)
	ListByCaja(ctx context.Context, cajaID int, desde, hasta time.Time) ([]model.RegistroAuditoria, error)
}

type auditoriaRepo struct{ db *gorm.DB }

func NewAuditoriaRepository(db *gorm.DB) AuditoriaRepository { return &auditoriaRepo{db: db} }

func (r *auditoriaRepo) CreateTx(tx *gorm.DB, reg *model.RegistroAuditoria) error {
	return tx.Create(reg).Error
}

func (r *auditoriaRepo) ListBySesion(ctx context.Context, sesionID uuid.UUID) ([]model.RegistroAuditoria, error) {
	var regs []model.RegistroAuditoria
	err := r.db.WithContext(ctx).
		Where("sesion_caja_id = ?", sesionID).
		Order("created_at ASC").
		Find(&regs).Error
	return regs, err
}

func (r *auditoriaRepo) ListByCaja(ctx context.Context, cajaID int, desde, hasta time.Time) ([]model.RegistroAuditoria, error) {
	var regs []model.RegistroAuditoria
	err := r.db.WithContext(ctx).
		Where("caja_id = ? AND created_at >= ? AND created_at < ?", cajaID, desde, hasta).
		Order("created_at ASC").
		Find(&regs).Error
	return regs, err
}
