package repository

import (
	"context"
	"errors"
	"strings"

	"cajaledger/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrSesionDuplicada maps the partial unique index violation on
// (caja_id) WHERE estado IN ('abierta','cerrando') back to the caller.
var ErrSesionDuplicada = errors.New("sesion activa duplicada para la caja")

type CajaRepository interface {
	// CreateSesion inserts a new session; the partial unique index rejects a
	// second active session per register atomically.
	CreateSesion(ctx context.Context, s *model.SesionCaja) error
	FindSesionByID(ctx context.Context, id uuid.UUID) (*model.SesionCaja, error)
	FindSesionActivaPorCaja(ctx context.Context, cajaID int) (*model.SesionCaja, error)
	FindSesionActivaPorUsuario(ctx context.Context, usuarioID uuid.UUID) (*model.SesionCaja, error)
	ListSesionesCerradas(ctx context.Context, page, limit int) ([]model.SesionCaja, error)
	ListOperaciones(ctx context.Context, sesionID uuid.UUID) ([]model.OperacionCaja, error)

	// WithSesionLock runs fn inside a transaction holding a FOR UPDATE lock on
	// the session row. All mutating session work goes through here — it is the
	// per-session single-writer discipline.
	WithSesionLock(ctx context.Context, sesionID uuid.UUID, fn func(tx *gorm.DB, s *model.SesionCaja) error) error

	// AppendOperacionTx records an immutable operation and the recomputed
	// expected balance in one transaction; callers obtain tx via WithSesionLock.
	AppendOperacionTx(tx *gorm.DB, op *model.OperacionCaja, montoEsperado decimal.Decimal) error
	UpdateSesionTx(tx *gorm.DB, s *model.SesionCaja) error

	FindConfig(ctx context.Context, cajaID int) (*model.CajaConfig, error)
	SaveConfig(ctx context.Context, cfg *model.CajaConfig) error
}

type cajaRepo struct{ db *gorm.DB }

func NewCajaRepository(db *gorm.DB) CajaRepository { return &cajaRepo{db: db} }

func (r *cajaRepo) CreateSesion(ctx context.Context, s *model.SesionCaja) error {
	err := r.db.WithContext(ctx).Create(s).Error
	if err != nil && strings.Contains(err.Error(), "uni_sesiones_caja_activa") {
		return ErrSesionDuplicada
	}
	return err
}

func (r *cajaRepo) FindSesionByID(ctx context.Context, id uuid.UUID) (*model.SesionCaja, error) {
	var s model.SesionCaja
	err := r.db.WithContext(ctx).Preload("Operaciones", func(db *gorm.DB) *gorm.DB {
		return db.Order("created_at ASC")
	}).First(&s, "id = ?", id).Error
	return &s, err
}

func (r *cajaRepo) FindSesionActivaPorCaja(ctx context.Context, cajaID int) (*model.SesionCaja, error) {
	// A bloqueada session can coexist with its abierta replacement; new work
	// must land in the replacement, so bloqueada sorts last.
	var s model.SesionCaja
	err := r.db.WithContext(ctx).
		Where("caja_id = ? AND estado IN ?", cajaID, []string{model.EstadoAbierta, model.EstadoCerrando, model.EstadoBloqueada}).
		Order("CASE estado WHEN 'abierta' THEN 0 WHEN 'cerrando' THEN 1 ELSE 2 END").
		First(&s).Error
	return &s, err
}

func (r *cajaRepo) FindSesionActivaPorUsuario(ctx context.Context, usuarioID uuid.UUID) (*model.SesionCaja, error) {
	var s model.SesionCaja
	err := r.db.WithContext(ctx).
		Where("usuario_id = ? AND estado IN ?", usuarioID, []string{model.EstadoAbierta, model.EstadoBloqueada}).
		First(&s).Error
	return &s, err
}

func (r *cajaRepo) ListSesionesCerradas(ctx context.Context, page, limit int) ([]model.SesionCaja, error) {
	var sesiones []model.SesionCaja
	err := r.db.WithContext(ctx).
		Where("estado = ?", model.EstadoCerrada).
		Order("closed_at DESC").
		Offset((page - 1) * limit).Limit(limit).
		Find(&sesiones).Error
	return sesiones, err
}

func (r *cajaRepo) ListOperaciones(ctx context.Context, sesionID uuid.UUID) ([]model.OperacionCaja, error) {
	var ops []model.OperacionCaja
	err := r.db.WithContext(ctx).
		Where("sesion_caja_id = ?", sesionID).
		Order("created_at ASC").
		Find(&ops).Error
	return ops, err
}

func (r *cajaRepo) WithSesionLock(ctx context.Context, sesionID uuid.UUID, fn func(tx *gorm.DB, s *model.SesionCaja) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var s model.SesionCaja
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&s, "id = ?", sesionID).Error; err != nil {
			return err
		}
		return fn(tx, &s)
	})
}

func (r *cajaRepo) AppendOperacionTx(tx *gorm.DB, op *model.OperacionCaja, montoEsperado decimal.Decimal) error {
	if err := tx.Create(op).Error; err != nil {
		return err
	}
	return tx.Model(&model.SesionCaja{}).
		Where("id = ?", op.SesionCajaID).
		Update("monto_esperado", montoEsperado).Error
}

func (r *cajaRepo) UpdateSesionTx(tx *gorm.DB, s *model.SesionCaja) error {
	return tx.Save(s).Error
}

func (r *cajaRepo) FindConfig(ctx context.Context, cajaID int) (*model.CajaConfig, error) {
	var cfg model.CajaConfig
	err := r.db.WithContext(ctx).First(&cfg, "caja_id = ?", cajaID).Error
	return &cfg, err
}

func (r *cajaRepo) SaveConfig(ctx context.Context, cfg *model.CajaConfig) error {
	return r.db.WithContext(ctx).Save(cfg).Error
}
