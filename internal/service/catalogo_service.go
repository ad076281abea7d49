package service

import (
	"context"
	"sort"
	"sync"

	"cajaledger/internal/model"
	"cajaledger/internal/repository"

	"github.com/rs/zerolog/log"
)

// CatalogoService is the registry of operation types. It is loaded once at
// process start and held in memory behind an RWMutex: lookups are hot (one
// per recorded operation) while registrations are rare administrative acts.
// Readers never observe a partially registered type — the entry is persisted
// first and published to the map under the write lock.
type CatalogoService interface {
	Cargar(ctx context.Context) error
	Registrar(ctx context.Context, codigo, nombre, direccion string, generaCredito bool) (*model.TipoOperacion, error)
	Lookup(codigo string) (*model.TipoOperacion, error)
	Listar() []model.TipoOperacion
	Desactivar(ctx context.Context, codigo string) error
}

type catalogoService struct {
	repo  repository.CatalogoRepository
	mu    sync.RWMutex
	tipos map[string]model.TipoOperacion
}

func NewCatalogoService(repo repository.CatalogoRepository) CatalogoService {
	return &catalogoService{repo: repo, tipos: make(map[string]model.TipoOperacion)}
}

// Cargar loads the full catalog from storage. Called once from main before
// the router starts accepting requests.
func (s *catalogoService) Cargar(ctx context.Context) error {
	tipos, err := s.repo.ListAll(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.tipos = make(map[string]model.TipoOperacion, len(tipos))
	for _, t := range tipos {
		s.tipos[t.Codigo] = t
	}
	log.Info().Int("tipos", len(tipos)).Msg("catalogo de operaciones cargado")
	return nil
}

func (s *catalogoService) Registrar(ctx context.Context, codigo, nombre, direccion string, generaCredito bool) (*model.TipoOperacion, error) {
	if direccion != model.DireccionIngreso && direccion != model.DireccionEgreso {
		return nil, ErrDireccionInvalida
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tipos[codigo]; ok {
		return nil, ErrCodigoDuplicado
	}

	t := &model.TipoOperacion{
		Codigo:        codigo,
		Nombre:        nombre,
		Direccion:     direccion,
		GeneraCredito: generaCredito,
		Activo:        true,
	}
	if err := s.repo.Create(ctx, t); err != nil {
		return nil, err
	}
	s.tipos[codigo] = *t
	return t, nil
}

func (s *catalogoService) Lookup(codigo string) (*model.TipoOperacion, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tipos[codigo]
	if !ok || !t.Activo {
		return nil, ErrOperacionDesconocida
	}
	return &t, nil
}

func (s *catalogoService) Listar() []model.TipoOperacion {
	s.mu.RLock()
	defer s.mu.RUnlock()
	tipos := make([]model.TipoOperacion, 0, len(s.tipos))
	for _, t := range s.tipos {
		tipos = append(tipos, t)
	}
	sort.Slice(tipos, func(i, j int) bool { return tipos[i].Codigo < tipos[j].Codigo })
	return tipos
}

func (s *catalogoService) Desactivar(ctx context.Context, codigo string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tipos[codigo]
	if !ok {
		return ErrOperacionDesconocida
	}
	if err := s.repo.Desactivar(ctx, codigo); err != nil {
		return err
	}
	t.Activo = false
	s.tipos[codigo] = t
	return nil
}
