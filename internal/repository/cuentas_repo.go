package repository

import (
	"context"
	"errors"
	"strings"

	"cajaledger/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrVentaYaNotificada maps the partial unique index violation on
// venta_origen_id: the sale already produced a receivable, so a racing
// re-delivery loses at insert time instead of double-charging the debtor.
var ErrVentaYaNotificada = errors.New("la venta ya tiene una cuenta corriente")

type CuentasRepository interface {
	// CreateTx participates in the caller's transaction so that the credit
	// operation and its receivable commit (or roll back) as one unit.
	CreateTx(tx *gorm.DB, c *model.CuentaCorriente) error
	Create(ctx context.Context, c *model.CuentaCorriente) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.CuentaCorriente, error)

	// WithCuentaLock serializes settlements against a single account.
	WithCuentaLock(ctx context.Context, id uuid.UUID, fn func(tx *gorm.DB, c *model.CuentaCorriente) error) error
	// FindByIDForUpdateTx locks the account row inside an existing transaction.
	// Callers that also hold a session lock take the session first.
	FindByIDForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.CuentaCorriente, error)
	UpdateTx(tx *gorm.DB, c *model.CuentaCorriente) error

	// ListAbiertas returns non-settled accounts oldest-first (collection
	// priority). Pagination makes the sequence restartable from any offset.
	ListAbiertas(ctx context.Context, deudorID uuid.UUID, offset, limit int) ([]model.CuentaCorriente, error)
	ListByDeudor(ctx context.Context, deudorID uuid.UUID) ([]model.CuentaCorriente, error)
	ExisteVentaOrigen(ctx context.Context, ventaID uuid.UUID) (bool, error)
}

type cuentasRepo struct{ db *gorm.DB }

func NewCuentasRepository(db *gorm.DB) CuentasRepository { return &cuentasRepo{db: db} }

func (r *cuentasRepo) CreateTx(tx *gorm.DB, c *model.CuentaCorriente) error {
	return traducirVentaDuplicada(tx.Create(c).Error)
}

func (r *cuentasRepo) Create(ctx context.Context, c *model.CuentaCorriente) error {
	return traducirVentaDuplicada(r.db.WithContext(ctx).Create(c).Error)
}

func traducirVentaDuplicada(err error) error {
	if err != nil && strings.Contains(err.Error(), "uni_cuentas_venta_origen") {
		return ErrVentaYaNotificada
	}
	return err
}

func (r *cuentasRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.CuentaCorriente, error) {
	var c model.CuentaCorriente
	err := r.db.WithContext(ctx).First(&c, "id = ?", id).Error
	return &c, err
}

func (r *cuentasRepo) WithCuentaLock(ctx context.Context, id uuid.UUID, fn func(tx *gorm.DB, c *model.CuentaCorriente) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var c model.CuentaCorriente
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&c, "id = ?", id).Error; err != nil {
			return err
		}
		return fn(tx, &c)
	})
}

func (r *cuentasRepo) FindByIDForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.CuentaCorriente, error) {
	var c model.CuentaCorriente
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&c, "id = ?", id).Error
	return &c, err
}

func (r *cuentasRepo) UpdateTx(tx *gorm.DB, c *model.CuentaCorriente) error {
	return tx.Save(c).Error
}

func (r *cuentasRepo) ListAbiertas(ctx context.Context, deudorID uuid.UUID, offset, limit int) ([]model.CuentaCorriente, error) {
	var cuentas []model.CuentaCorriente
	err := r.db.WithContext(ctx).
		Where("deudor_id = ? AND estado <> ?", deudorID, model.CuentaSaldada).
		Order("created_at ASC").
		Offset(offset).Limit(limit).
		Find(&cuentas).Error
	return cuentas, err
}

func (r *cuentasRepo) ListByDeudor(ctx context.Context, deudorID uuid.UUID) ([]model.CuentaCorriente, error) {
	var cuentas []model.CuentaCorriente
	err := r.db.WithContext(ctx).
		Where("deudor_id = ?", deudorID).
		Order("created_at ASC").
		Find(&cuentas).Error
	return cuentas, err
}

func (r *cuentasRepo) ExisteVentaOrigen(ctx context.Context, ventaID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.CuentaCorriente{}).
		Where("venta_origen_id = ?", ventaID).Count(&count).Error
	return count > 0, err
}
