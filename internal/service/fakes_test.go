package service_test

import (
	"context"
	"errors"
	"time"

	"cajaledger/internal/model"
	"cajaledger/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// In-memory repository fakes shared by the service tests. The Tx variants
// ignore the *gorm.DB handle — atomicity is the real repositories' concern,
// the services only care about call sequencing.

// ── CajaRepository ───────────────────────────────────────────────────────────

type fakeCajaRepo struct {
	sesiones    map[uuid.UUID]*model.SesionCaja
	operaciones []model.OperacionCaja
	configs     map[int]*model.CajaConfig
}

func newFakeCajaRepo() *fakeCajaRepo {
	return &fakeCajaRepo{
		sesiones: make(map[uuid.UUID]*model.SesionCaja),
		configs:  make(map[int]*model.CajaConfig),
	}
}

func (r *fakeCajaRepo) CreateSesion(_ context.Context, s *model.SesionCaja) error {
	for _, existente := range r.sesiones {
		if existente.CajaID == s.CajaID &&
			(existente.Estado == model.EstadoAbierta || existente.Estado == model.EstadoCerrando) {
			return repository.ErrSesionDuplicada
		}
	}
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	s.OpenedAt = time.Now()
	r.sesiones[s.ID] = s
	return nil
}

func (r *fakeCajaRepo) FindSesionByID(_ context.Context, id uuid.UUID) (*model.SesionCaja, error) {
	s, ok := r.sesiones[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copia := *s
	copia.Operaciones = nil
	for _, op := range r.operaciones {
		if op.SesionCajaID == id {
			copia.Operaciones = append(copia.Operaciones, op)
		}
	}
	return &copia, nil
}

func (r *fakeCajaRepo) FindSesionActivaPorCaja(_ context.Context, cajaID int) (*model.SesionCaja, error) {
	// bloqueada loses to its abierta/cerrando replacement, like the real query.
	var bloqueada *model.SesionCaja
	for _, s := range r.sesiones {
		if s.CajaID != cajaID || s.Estado == model.EstadoCerrada {
			continue
		}
		if s.Estado == model.EstadoBloqueada {
			bloqueada = s
			continue
		}
		return s, nil
	}
	if bloqueada != nil {
		return bloqueada, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeCajaRepo) FindSesionActivaPorUsuario(_ context.Context, usuarioID uuid.UUID) (*model.SesionCaja, error) {
	for _, s := range r.sesiones {
		if s.UsuarioID == usuarioID && s.Abierta() {
			return s, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeCajaRepo) ListSesionesCerradas(_ context.Context, page, limit int) ([]model.SesionCaja, error) {
	var out []model.SesionCaja
	for _, s := range r.sesiones {
		if s.Estado == model.EstadoCerrada {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (r *fakeCajaRepo) ListOperaciones(_ context.Context, sesionID uuid.UUID) ([]model.OperacionCaja, error) {
	var out []model.OperacionCaja
	for _, op := range r.operaciones {
		if op.SesionCajaID == sesionID {
			out = append(out, op)
		}
	}
	return out, nil
}

func (r *fakeCajaRepo) WithSesionLock(_ context.Context, sesionID uuid.UUID, fn func(tx *gorm.DB, s *model.SesionCaja) error) error {
	s, ok := r.sesiones[sesionID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	// Work on a copy and snapshot the append-side state: a returned error
	// must leave everything as it was, mirroring the real rollback.
	copia := *s
	opsAntes := len(r.operaciones)
	esperadoAntes := s.MontoEsperado
	if err := fn(nil, &copia); err != nil {
		r.operaciones = r.operaciones[:opsAntes]
		s.MontoEsperado = esperadoAntes
		return err
	}
	return nil
}

func (r *fakeCajaRepo) AppendOperacionTx(_ *gorm.DB, op *model.OperacionCaja, montoEsperado decimal.Decimal) error {
	if op.ID == uuid.Nil {
		op.ID = uuid.New()
	}
	op.CreatedAt = time.Now()
	r.operaciones = append(r.operaciones, *op)
	if s, ok := r.sesiones[op.SesionCajaID]; ok {
		s.MontoEsperado = montoEsperado
	}
	return nil
}

func (r *fakeCajaRepo) UpdateSesionTx(_ *gorm.DB, s *model.SesionCaja) error {
	copia := *s
	r.sesiones[s.ID] = &copia
	return nil
}

func (r *fakeCajaRepo) FindConfig(_ context.Context, cajaID int) (*model.CajaConfig, error) {
	cfg, ok := r.configs[cajaID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return cfg, nil
}

func (r *fakeCajaRepo) SaveConfig(_ context.Context, cfg *model.CajaConfig) error {
	r.configs[cfg.CajaID] = cfg
	return nil
}

var _ repository.CajaRepository = (*fakeCajaRepo)(nil)

// ── AuditoriaRepository ──────────────────────────────────────────────────────

type fakeAuditoriaRepo struct {
	registros []model.RegistroAuditoria
}

func (r *fakeAuditoriaRepo) CreateTx(_ *gorm.DB, reg *model.RegistroAuditoria) error {
	if reg.ID == uuid.Nil {
		reg.ID = uuid.New()
	}
	reg.CreatedAt = time.Now()
	r.registros = append(r.registros, *reg)
	return nil
}

func (r *fakeAuditoriaRepo) ListBySesion(_ context.Context, sesionID uuid.UUID) ([]model.RegistroAuditoria, error) {
	var out []model.RegistroAuditoria
	for _, reg := range r.registros {
		if reg.SesionCajaID == sesionID {
			out = append(out, reg)
		}
	}
	return out, nil
}

func (r *fakeAuditoriaRepo) ListByCaja(_ context.Context, cajaID int, desde, hasta time.Time) ([]model.RegistroAuditoria, error) {
	var out []model.RegistroAuditoria
	for _, reg := range r.registros {
		if reg.CajaID == cajaID && !reg.CreatedAt.Before(desde) && reg.CreatedAt.Before(hasta) {
			out = append(out, reg)
		}
	}
	return out, nil
}

var _ repository.AuditoriaRepository = (*fakeAuditoriaRepo)(nil)

// ── CuentasRepository ────────────────────────────────────────────────────────

type fakeCuentasRepo struct {
	cuentas map[uuid.UUID]*model.CuentaCorriente

	// errExiste, when set, is returned by ExisteVentaOrigen to exercise the
	// degraded pre-check path. noExiste makes the pre-check report false,
	// simulating the window before a concurrent delivery commits.
	errExiste error
	noExiste  bool
}

func newFakeCuentasRepo() *fakeCuentasRepo {
	return &fakeCuentasRepo{cuentas: make(map[uuid.UUID]*model.CuentaCorriente)}
}

func (r *fakeCuentasRepo) CreateTx(_ *gorm.DB, c *model.CuentaCorriente) error {
	// Same guard as the uni_cuentas_venta_origen partial unique index.
	if c.VentaOrigenID != nil {
		for _, otra := range r.cuentas {
			if otra.VentaOrigenID != nil && *otra.VentaOrigenID == *c.VentaOrigenID {
				return repository.ErrVentaYaNotificada
			}
		}
	}
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}
	copia := *c
	r.cuentas[c.ID] = &copia
	return nil
}

func (r *fakeCuentasRepo) Create(ctx context.Context, c *model.CuentaCorriente) error {
	return r.CreateTx(nil, c)
}

func (r *fakeCuentasRepo) FindByID(_ context.Context, id uuid.UUID) (*model.CuentaCorriente, error) {
	c, ok := r.cuentas[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copia := *c
	return &copia, nil
}

func (r *fakeCuentasRepo) WithCuentaLock(_ context.Context, id uuid.UUID, fn func(tx *gorm.DB, c *model.CuentaCorriente) error) error {
	c, ok := r.cuentas[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	copia := *c
	return fn(nil, &copia)
}

func (r *fakeCuentasRepo) FindByIDForUpdateTx(_ *gorm.DB, id uuid.UUID) (*model.CuentaCorriente, error) {
	return r.FindByID(context.Background(), id)
}

func (r *fakeCuentasRepo) UpdateTx(_ *gorm.DB, c *model.CuentaCorriente) error {
	if _, ok := r.cuentas[c.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	copia := *c
	r.cuentas[c.ID] = &copia
	return nil
}

func (r *fakeCuentasRepo) ListAbiertas(_ context.Context, deudorID uuid.UUID, offset, limit int) ([]model.CuentaCorriente, error) {
	all, _ := r.ListByDeudor(context.Background(), deudorID)
	var out []model.CuentaCorriente
	for _, c := range all {
		if c.Estado != model.CuentaSaldada {
			out = append(out, c)
		}
	}
	if offset >= len(out) {
		return nil, nil
	}
	end := offset + limit
	if end > len(out) {
		end = len(out)
	}
	return out[offset:end], nil
}

func (r *fakeCuentasRepo) ListByDeudor(_ context.Context, deudorID uuid.UUID) ([]model.CuentaCorriente, error) {
	var out []model.CuentaCorriente
	for _, c := range r.cuentas {
		if c.DeudorID == deudorID {
			out = append(out, *c)
		}
	}
	// oldest first, like the real query
	for i := 0; i < len(out); i++ {
		for j := i + 1; j < len(out); j++ {
			if out[j].CreatedAt.Before(out[i].CreatedAt) {
				out[i], out[j] = out[j], out[i]
			}
		}
	}
	return out, nil
}

func (r *fakeCuentasRepo) ExisteVentaOrigen(_ context.Context, ventaID uuid.UUID) (bool, error) {
	if r.errExiste != nil {
		return false, r.errExiste
	}
	if r.noExiste {
		return false, nil
	}
	for _, c := range r.cuentas {
		if c.VentaOrigenID != nil && *c.VentaOrigenID == ventaID {
			return true, nil
		}
	}
	return false, nil
}

var _ repository.CuentasRepository = (*fakeCuentasRepo)(nil)

// ── UsuarioRepository ────────────────────────────────────────────────────────

type fakeUsuarioRepo struct {
	usuarios map[uuid.UUID]*model.Usuario
}

func newFakeUsuarioRepo() *fakeUsuarioRepo {
	return &fakeUsuarioRepo{usuarios: make(map[uuid.UUID]*model.Usuario)}
}

func (r *fakeUsuarioRepo) Create(_ context.Context, u *model.Usuario) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	r.usuarios[u.ID] = u
	return nil
}

func (r *fakeUsuarioRepo) FindByUsername(_ context.Context, username string) (*model.Usuario, error) {
	for _, u := range r.usuarios {
		if u.Username == username && u.Activo {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUsuarioRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Usuario, error) {
	u, ok := r.usuarios[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return u, nil
}

func (r *fakeUsuarioRepo) List(_ context.Context) ([]model.Usuario, error) {
	var out []model.Usuario
	for _, u := range r.usuarios {
		if u.Activo {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (r *fakeUsuarioRepo) Update(_ context.Context, u *model.Usuario) error {
	r.usuarios[u.ID] = u
	return nil
}

func (r *fakeUsuarioRepo) SoftDelete(_ context.Context, id uuid.UUID) error {
	u, ok := r.usuarios[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	u.Activo = false
	return nil
}

var _ repository.UsuarioRepository = (*fakeUsuarioRepo)(nil)

// ── CatalogoRepository ───────────────────────────────────────────────────────

type fakeCatalogoRepo struct {
	tipos map[string]*model.TipoOperacion
}

func newFakeCatalogoRepo() *fakeCatalogoRepo {
	return &fakeCatalogoRepo{tipos: make(map[string]*model.TipoOperacion)}
}

func (r *fakeCatalogoRepo) Create(_ context.Context, t *model.TipoOperacion) error {
	if _, ok := r.tipos[t.Codigo]; ok {
		return errors.New("duplicate key")
	}
	copia := *t
	r.tipos[t.Codigo] = &copia
	return nil
}

func (r *fakeCatalogoRepo) FindByCodigo(_ context.Context, codigo string) (*model.TipoOperacion, error) {
	t, ok := r.tipos[codigo]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return t, nil
}

func (r *fakeCatalogoRepo) ListAll(_ context.Context) ([]model.TipoOperacion, error) {
	var out []model.TipoOperacion
	for _, t := range r.tipos {
		out = append(out, *t)
	}
	return out, nil
}

func (r *fakeCatalogoRepo) Desactivar(_ context.Context, codigo string) error {
	t, ok := r.tipos[codigo]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	t.Activo = false
	return nil
}

var _ repository.CatalogoRepository = (*fakeCatalogoRepo)(nil)
