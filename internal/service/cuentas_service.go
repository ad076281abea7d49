package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cajaledger/internal/dto"
	"cajaledger/internal/model"
	"cajaledger/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CuentasService maintains the receivables ledger. Accounts are created by
// credit-granting register operations (see CajaService.RegistrarOperacion)
// or directly for legacy backfills; they are settled here and never deleted.
type CuentasService interface {
	// NotificarVentaCredito is the inbound boundary from the sales subsystem.
	// Idempotent per venta: a repeated notification returns the existing account.
	NotificarVentaCredito(ctx context.Context, req dto.VentaCreditoRequest) (*dto.CuentaCorrienteResponse, error)

	Saldar(ctx context.Context, cuentaID uuid.UUID, req dto.SaldarCuentaRequest) (*dto.CuentaCorrienteResponse, error)
	ListarAbiertas(ctx context.Context, deudorID uuid.UUID, offset, limit int) ([]dto.CuentaCorrienteResponse, error)
	ListarPorDeudor(ctx context.Context, deudorID uuid.UUID) ([]dto.CuentaCorrienteResponse, error)
	Obtener(ctx context.Context, cuentaID uuid.UUID) (*dto.CuentaCorrienteResponse, error)
}

type cuentasService struct {
	repo     repository.CuentasRepository
	cajaRepo repository.CajaRepository
	caja     CajaService
}

func NewCuentasService(repo repository.CuentasRepository, cajaRepo repository.CajaRepository, caja CajaService) CuentasService {
	return &cuentasService{repo: repo, cajaRepo: cajaRepo, caja: caja}
}

// ── NotificarVentaCredito ─────────────────────────────────────────────────────

func (s *cuentasService) NotificarVentaCredito(ctx context.Context, req dto.VentaCreditoRequest) (*dto.CuentaCorrienteResponse, error) {
	ventaID, err := uuid.Parse(req.VentaID)
	if err != nil {
		return nil, fmt.Errorf("venta_id invalido: %w", err)
	}

	// Re-delivered notification: the receivable already exists, do nothing.
	existe, err := s.repo.ExisteVentaOrigen(ctx, ventaID)
	if err != nil {
		return nil, err
	}
	if existe {
		log.Warn().Str("venta_id", req.VentaID).Msg("venta a credito ya notificada, se ignora")
		return s.buscarPorVenta(ctx, req, ventaID)
	}

	sesion, err := s.cajaRepo.FindSesionActivaPorCaja(ctx, req.CajaID)
	if err != nil {
		return nil, ErrSesionNoExiste
	}

	ventaRef := req.VentaID
	if _, err := s.caja.RegistrarOperacion(ctx, dto.RegistrarOperacionRequest{
		SesionCajaID: sesion.ID.String(),
		Codigo:       model.CodigoCredito,
		Monto:        req.Monto,
		Descripcion:  "venta a credito",
		DeudorID:     &req.DeudorID,
		ReferenciaID: &ventaRef,
	}); err != nil {
		// Lost the race against a concurrent delivery of the same venta:
		// the unique index on venta_origen_id rolled our insert back, the
		// winner's account is the one to return.
		if errors.Is(err, repository.ErrVentaYaNotificada) {
			return s.buscarPorVenta(ctx, req, ventaID)
		}
		return nil, err
	}

	return s.buscarPorVenta(ctx, req, ventaID)
}

func (s *cuentasService) buscarPorVenta(ctx context.Context, req dto.VentaCreditoRequest, ventaID uuid.UUID) (*dto.CuentaCorrienteResponse, error) {
	deudorID, err := uuid.Parse(req.DeudorID)
	if err != nil {
		return nil, fmt.Errorf("deudor_id invalido: %w", err)
	}
	cuentas, err := s.repo.ListByDeudor(ctx, deudorID)
	if err != nil {
		return nil, err
	}
	for i := range cuentas {
		if cuentas[i].VentaOrigenID != nil && *cuentas[i].VentaOrigenID == ventaID {
			return cuentaToResponse(&cuentas[i]), nil
		}
	}
	return nil, ErrCuentaNoExiste
}

// ── Saldar ────────────────────────────────────────────────────────────────────
// Settlement keeps monto_saldado monotonic under a row lock and recomputes
// the state from the amounts. When the payment is collected at a register,
// the COBRANZA operation joins the same transaction (session lock first,
// account lock second — the single place both locks are taken together).

func (s *cuentasService) Saldar(ctx context.Context, cuentaID uuid.UUID, req dto.SaldarCuentaRequest) (*dto.CuentaCorrienteResponse, error) {
	if !req.Monto.IsPositive() {
		return nil, ErrMontoInvalido
	}

	var resultado *model.CuentaCorriente

	if req.SesionCajaID == nil {
		err := s.repo.WithCuentaLock(ctx, cuentaID, func(tx *gorm.DB, c *model.CuentaCorriente) error {
			var err error
			resultado, err = aplicarPago(c, req.Monto)
			if err != nil {
				return err
			}
			return s.repo.UpdateTx(tx, c)
		})
		if err != nil {
			return nil, traducirNoEncontrada(err)
		}
		return cuentaToResponse(resultado), nil
	}

	sesionID, err := uuid.Parse(*req.SesionCajaID)
	if err != nil {
		return nil, fmt.Errorf("sesion_caja_id invalido: %w", err)
	}
	err = s.cajaRepo.WithSesionLock(ctx, sesionID, func(tx *gorm.DB, sesion *model.SesionCaja) error {
		if err := validarSesionOperable(sesion); err != nil {
			return err
		}
		c, err := s.repo.FindByIDForUpdateTx(tx, cuentaID)
		if err != nil {
			return err
		}
		resultado, err = aplicarPago(c, req.Monto)
		if err != nil {
			return err
		}
		if err := s.repo.UpdateTx(tx, c); err != nil {
			return err
		}

		ref := cuentaID
		esperado := sesion.MontoEsperado.Add(req.Monto) // COBRANZA es ingreso
		return s.cajaRepo.AppendOperacionTx(tx, &model.OperacionCaja{
			SesionCajaID: sesionID,
			Codigo:       model.CodigoCobranza,
			Monto:        req.Monto,
			Descripcion:  "cobranza de cuenta corriente",
			ReferenciaID: &ref,
		}, esperado)
	})
	if err != nil {
		return nil, traducirNoEncontrada(err)
	}
	return cuentaToResponse(resultado), nil
}

// aplicarPago mutates the account in memory; the caller persists it. Returns
// an error without touching the account when the payment is invalid.
func aplicarPago(c *model.CuentaCorriente, monto decimal.Decimal) (*model.CuentaCorriente, error) {
	if c.Estado == model.CuentaSaldada {
		return nil, ErrCuentaSaldada
	}
	nuevoSaldado := c.MontoSaldado.Add(monto)
	if nuevoSaldado.GreaterThan(c.Monto) {
		return nil, ErrSobreSaldo
	}

	c.MontoSaldado = nuevoSaldado
	c.Estado = c.EstadoCalculado()
	if c.Estado == model.CuentaSaldada {
		now := time.Now()
		c.SaldadaAt = &now
	}
	return c, nil
}

// ── Consultas ─────────────────────────────────────────────────────────────────

func (s *cuentasService) ListarAbiertas(ctx context.Context, deudorID uuid.UUID, offset, limit int) ([]dto.CuentaCorrienteResponse, error) {
	cuentas, err := s.repo.ListAbiertas(ctx, deudorID, offset, limit)
	if err != nil {
		return nil, err
	}
	return cuentasToResponse(cuentas), nil
}

func (s *cuentasService) ListarPorDeudor(ctx context.Context, deudorID uuid.UUID) ([]dto.CuentaCorrienteResponse, error) {
	cuentas, err := s.repo.ListByDeudor(ctx, deudorID)
	if err != nil {
		return nil, err
	}
	return cuentasToResponse(cuentas), nil
}

func (s *cuentasService) Obtener(ctx context.Context, cuentaID uuid.UUID) (*dto.CuentaCorrienteResponse, error) {
	c, err := s.repo.FindByID(ctx, cuentaID)
	if err != nil {
		return nil, ErrCuentaNoExiste
	}
	return cuentaToResponse(c), nil
}

// ── Helpers ───────────────────────────────────────────────────────────────────

func traducirNoEncontrada(err error) error {
	if err == gorm.ErrRecordNotFound {
		return ErrCuentaNoExiste
	}
	return err
}

func cuentasToResponse(cuentas []model.CuentaCorriente) []dto.CuentaCorrienteResponse {
	out := make([]dto.CuentaCorrienteResponse, 0, len(cuentas))
	for i := range cuentas {
		out = append(out, *cuentaToResponse(&cuentas[i]))
	}
	return out
}

func cuentaToResponse(c *model.CuentaCorriente) *dto.CuentaCorrienteResponse {
	resp := &dto.CuentaCorrienteResponse{
		ID:           c.ID.String(),
		DeudorID:     c.DeudorID.String(),
		Monto:        c.Monto,
		MontoSaldado: c.MontoSaldado,
		Saldo:        c.Saldo(),
		Estado:       c.Estado,
		Migrada:      c.Migrada,
		CreatedAt:    c.CreatedAt.UTC().Format(time.RFC3339),
	}
	if c.VentaOrigenID != nil {
		v := c.VentaOrigenID.String()
		resp.VentaOrigenID = &v
	}
	if c.SaldadaAt != nil {
		t := c.SaldadaAt.UTC().Format(time.RFC3339)
		resp.SaldadaAt = &t
	}
	return resp
}
