package service

import (
	"context"
	"fmt"
	"time"

	"cajaledger/internal/dto"
	"cajaledger/internal/model"
	"cajaledger/internal/repository"
	"cajaledger/internal/worker"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

type CajaService interface {
	Abrir(ctx context.Context, usuarioID uuid.UUID, req dto.AbrirCajaRequest) (*dto.ReporteCajaResponse, error)
	RegistrarOperacion(ctx context.Context, req dto.RegistrarOperacionRequest) (*dto.OperacionResponse, error)
	SolicitarCierre(ctx context.Context, req dto.CierreCajaRequest) (*dto.CierreCajaResponse, error)
	ObtenerReporte(ctx context.Context, sesionID uuid.UUID) (*dto.ReporteCajaResponse, error)
	GetActiva(ctx context.Context, usuarioID uuid.UUID) (*dto.ReporteCajaResponse, error)
	Historial(ctx context.Context, page, limit int) ([]dto.ReporteCajaResponse, error)
	GuardarConfig(ctx context.Context, cajaID int, req dto.ConfigCajaRequest) error
}

type cajaService struct {
	repo        repository.CajaRepository
	auditRepo   repository.AuditoriaRepository
	cuentasRepo repository.CuentasRepository
	usuarioRepo repository.UsuarioRepository
	catalogo    CatalogoService
	auditoria   AuditoriaService
	dispatcher  *worker.Dispatcher
}

func NewCajaService(
	repo repository.CajaRepository,
	auditRepo repository.AuditoriaRepository,
	cuentasRepo repository.CuentasRepository,
	usuarioRepo repository.UsuarioRepository,
	catalogo CatalogoService,
	auditoria AuditoriaService,
	dispatcher *worker.Dispatcher,
) CajaService {
	return &cajaService{
		repo:        repo,
		auditRepo:   auditRepo,
		cuentasRepo: cuentasRepo,
		usuarioRepo: usuarioRepo,
		catalogo:    catalogo,
		auditoria:   auditoria,
		dispatcher:  dispatcher,
	}
}

// ── Abrir ─────────────────────────────────────────────────────────────────────

func (s *cajaService) Abrir(ctx context.Context, usuarioID uuid.UUID, req dto.AbrirCajaRequest) (*dto.ReporteCajaResponse, error) {
	usuario, err := s.usuarioRepo.FindByID(ctx, usuarioID)
	if err != nil {
		return nil, ErrUsuarioNoExiste
	}
	if usuario.CajaID != nil && *usuario.CajaID != req.CajaID {
		return nil, ErrCajaNoAsignada
	}

	sesion := &model.SesionCaja{
		CajaID:        req.CajaID,
		UsuarioID:     usuarioID,
		MontoInicial:  req.MontoInicial,
		MontoEsperado: req.MontoInicial,
		Estado:        model.EstadoAbierta,
	}
	// The partial unique index is the authority on "one active session per
	// caja" — a pre-check would race with a concurrent open.
	if err := s.repo.CreateSesion(ctx, sesion); err != nil {
		if err == repository.ErrSesionDuplicada {
			return nil, ErrCajaYaAbierta
		}
		return nil, err
	}

	log.Info().Int("caja_id", req.CajaID).Str("sesion_id", sesion.ID.String()).Msg("sesion de caja abierta")
	return s.buildReporte(ctx, sesion)
}

// ── RegistrarOperacion ────────────────────────────────────────────────────────
// Appends an immutable operation and recomputes the expected balance in one
// row-locked transaction. When the catalog entry grants credit, the cuenta
// corriente is opened inside the same transaction — both commit or neither.

func (s *cajaService) RegistrarOperacion(ctx context.Context, req dto.RegistrarOperacionRequest) (*dto.OperacionResponse, error) {
	sesionID, err := uuid.Parse(req.SesionCajaID)
	if err != nil {
		return nil, fmt.Errorf("sesion_caja_id invalido: %w", err)
	}
	if !req.Monto.IsPositive() {
		return nil, ErrMontoInvalido
	}

	tipo, err := s.catalogo.Lookup(req.Codigo)
	if err != nil {
		return nil, err
	}

	var deudorID *uuid.UUID
	if tipo.GeneraCredito {
		if req.DeudorID == nil {
			return nil, ErrDeudorRequerido
		}
		id, err := uuid.Parse(*req.DeudorID)
		if err != nil {
			return nil, fmt.Errorf("deudor_id invalido: %w", err)
		}
		deudorID = &id
	}

	var referenciaID *uuid.UUID
	if req.ReferenciaID != nil {
		id, err := uuid.Parse(*req.ReferenciaID)
		if err != nil {
			return nil, fmt.Errorf("referencia_id invalido: %w", err)
		}
		referenciaID = &id
	}

	var op *model.OperacionCaja
	err = s.repo.WithSesionLock(ctx, sesionID, func(tx *gorm.DB, sesion *model.SesionCaja) error {
		if err := validarSesionOperable(sesion); err != nil {
			return err
		}

		signed := req.Monto
		if tipo.Direccion == model.DireccionEgreso {
			signed = signed.Neg()
		}
		esperado := sesion.MontoEsperado.Add(signed)

		op = &model.OperacionCaja{
			SesionCajaID: sesionID,
			Codigo:       tipo.Codigo,
			Monto:        req.Monto,
			Descripcion:  req.Descripcion,
			ReferenciaID: referenciaID,
		}
		if err := s.repo.AppendOperacionTx(tx, op, esperado); err != nil {
			return err
		}

		if tipo.GeneraCredito {
			var ventaOrigen *uuid.UUID
			if tipo.Codigo == model.CodigoCredito {
				ventaOrigen = referenciaID
			}
			cuenta := &model.CuentaCorriente{
				DeudorID:      *deudorID,
				VentaOrigenID: ventaOrigen,
				Monto:         req.Monto,
				MontoSaldado:  decimalZero,
				Estado:        model.CuentaAbierta,
			}
			if err := s.cuentasRepo.CreateTx(tx, cuenta); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return operacionToResponse(op), nil
}

// ── SolicitarCierre ───────────────────────────────────────────────────────────
// The session passes through "cerrando" only inside the transaction: a
// persistence failure rolls everything back to the prior state, and the row
// lock serializes concurrent close attempts. Exactly one audit row is
// written per evaluation, blocked ones included.

func (s *cajaService) SolicitarCierre(ctx context.Context, req dto.CierreCajaRequest) (*dto.CierreCajaResponse, error) {
	sesionID, err := uuid.Parse(req.SesionCajaID)
	if err != nil {
		return nil, fmt.Errorf("sesion_caja_id invalido: %w", err)
	}

	var registro *model.RegistroAuditoria
	var estadoFinal string
	err = s.repo.WithSesionLock(ctx, sesionID, func(tx *gorm.DB, sesion *model.SesionCaja) error {
		if err := validarSesionOperable(sesion); err != nil {
			return err
		}
		sesion.Estado = model.EstadoCerrando

		modo, tolerancia := s.auditoria.ResolverPolitica(ctx, sesion.CajaID)
		registro = s.auditoria.Evaluar(sesion, req.MontoDeclarado, modo, tolerancia)
		if err := s.auditRepo.CreateTx(tx, registro); err != nil {
			return err
		}

		declarado := req.MontoDeclarado
		sesion.MontoDeclarado = &declarado
		if registro.Resultado == model.ResultadoBloqueado {
			sesion.Estado = model.EstadoBloqueada
		} else {
			now := time.Now()
			sesion.Estado = model.EstadoCerrada
			sesion.ClosedAt = &now
		}
		estadoFinal = sesion.Estado
		return s.repo.UpdateSesionTx(tx, sesion)
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("sesion_id", sesionID.String()).
		Str("resultado", registro.Resultado).
		Str("desvio", registro.Desvio.StringFixed(2)).
		Msg("cierre de caja evaluado")

	s.notificarCierre(ctx, registro, estadoFinal)

	if registro.Resultado == model.ResultadoBloqueado {
		return nil, &CierreBloqueadoError{Registro: registro}
	}

	return &dto.CierreCajaResponse{
		SesionCajaID:   sesionID.String(),
		MontoEsperado:  registro.Esperado,
		MontoDeclarado: registro.Declarado,
		Desvio:         registro.Desvio,
		Modo:           registro.Modo,
		Resultado:      registro.Resultado,
		Estado:         estadoFinal,
	}, nil
}

// notificarCierre enqueues the async follow-ups after the close transaction
// committed: supervisor alert on any discrepancy, close-out PDF on a
// completed close. Best effort — the close itself already succeeded.
func (s *cajaService) notificarCierre(ctx context.Context, registro *model.RegistroAuditoria, estadoFinal string) {
	if s.dispatcher == nil {
		return
	}
	if registro.Resultado != model.ResultadoAprobado {
		if err := s.dispatcher.EnqueueAlertaDesvio(ctx, worker.AlertaDesvioPayload{
			SesionCajaID: registro.SesionCajaID.String(),
			CajaID:       registro.CajaID,
			Modo:         registro.Modo,
			Resultado:    registro.Resultado,
			Esperado:     registro.Esperado.StringFixed(2),
			Declarado:    registro.Declarado.StringFixed(2),
			Desvio:       registro.Desvio.StringFixed(2),
		}); err != nil {
			log.Error().Err(err).Msg("no se pudo encolar la alerta de desvio")
		}
	}
	if estadoFinal == model.EstadoCerrada {
		if err := s.dispatcher.EnqueueReporteCierre(ctx, worker.ReporteCierrePayload{
			SesionCajaID: registro.SesionCajaID.String(),
		}); err != nil {
			log.Error().Err(err).Msg("no se pudo encolar el reporte de cierre")
		}
	}
}

// ── Consultas ─────────────────────────────────────────────────────────────────

func (s *cajaService) ObtenerReporte(ctx context.Context, sesionID uuid.UUID) (*dto.ReporteCajaResponse, error) {
	sesion, err := s.repo.FindSesionByID(ctx, sesionID)
	if err != nil {
		return nil, ErrSesionNoExiste
	}
	return s.buildReporte(ctx, sesion)
}

func (s *cajaService) GetActiva(ctx context.Context, usuarioID uuid.UUID) (*dto.ReporteCajaResponse, error) {
	sesion, err := s.repo.FindSesionActivaPorUsuario(ctx, usuarioID)
	if err != nil {
		return nil, nil
	}
	return s.buildReporte(ctx, sesion)
}

func (s *cajaService) Historial(ctx context.Context, page, limit int) ([]dto.ReporteCajaResponse, error) {
	sesiones, err := s.repo.ListSesionesCerradas(ctx, page, limit)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ReporteCajaResponse, 0, len(sesiones))
	for i := range sesiones {
		r, err := s.buildReporte(ctx, &sesiones[i])
		if err != nil {
			return nil, err
		}
		out = append(out, *r)
	}
	return out, nil
}

func (s *cajaService) GuardarConfig(ctx context.Context, cajaID int, req dto.ConfigCajaRequest) error {
	if req.Modo != nil && *req.Modo != model.ModoEstricto && *req.Modo != model.ModoFlexible {
		return ErrModoInvalido
	}
	return s.repo.SaveConfig(ctx, &model.CajaConfig{
		CajaID:     cajaID,
		Modo:       req.Modo,
		Tolerancia: req.Tolerancia,
	})
}

// ── Helpers ───────────────────────────────────────────────────────────────────

func validarSesionOperable(sesion *model.SesionCaja) error {
	switch sesion.Estado {
	case model.EstadoCerrada:
		return ErrSesionCerrada
	case model.EstadoCerrando:
		return ErrSesionEnCierre
	}
	return nil
}

func (s *cajaService) buildReporte(ctx context.Context, sesion *model.SesionCaja) (*dto.ReporteCajaResponse, error) {
	ops := sesion.Operaciones
	if ops == nil {
		var err error
		ops, err = s.repo.ListOperaciones(ctx, sesion.ID)
		if err != nil {
			return nil, err
		}
	}

	reporte := &dto.ReporteCajaResponse{
		SesionCajaID:   sesion.ID.String(),
		CajaID:         sesion.CajaID,
		MontoInicial:   sesion.MontoInicial,
		MontoEsperado:  sesion.MontoEsperado,
		MontoDeclarado: sesion.MontoDeclarado,
		Estado:         sesion.Estado,
		Operaciones:    make([]dto.OperacionResponse, 0, len(ops)),
		OpenedAt:       sesion.OpenedAt.UTC().Format(time.RFC3339),
	}
	for i := range ops {
		reporte.Operaciones = append(reporte.Operaciones, *operacionToResponse(&ops[i]))
	}
	if sesion.ClosedAt != nil {
		t := sesion.ClosedAt.UTC().Format(time.RFC3339)
		reporte.ClosedAt = &t
	}
	return reporte, nil
}

func operacionToResponse(op *model.OperacionCaja) *dto.OperacionResponse {
	resp := &dto.OperacionResponse{
		ID:          op.ID.String(),
		Codigo:      op.Codigo,
		Monto:       op.Monto,
		Descripcion: op.Descripcion,
		CreatedAt:   op.CreatedAt.UTC().Format(time.RFC3339),
	}
	if op.ReferenciaID != nil {
		ref := op.ReferenciaID.String()
		resp.ReferenciaID = &ref
	}
	return resp
}
