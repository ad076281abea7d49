package service

import (
	"context"

	"cajaledger/internal/dto"
	"cajaledger/internal/model"
	"cajaledger/internal/repository"
)

// NominaService is the inbound boundary from the payroll subsystem. Both
// notifications route through the register's active session: the advance
// opens a receivable against the employee, the salary payment is a plain
// drawer outflow.
type NominaService interface {
	NotificarAnticipo(ctx context.Context, req dto.AnticipoRequest) (*dto.OperacionResponse, error)
	NotificarPagoSueldo(ctx context.Context, req dto.PagoSueldoRequest) (*dto.OperacionResponse, error)
}

type nominaService struct {
	cajaRepo repository.CajaRepository
	caja     CajaService
}

func NewNominaService(cajaRepo repository.CajaRepository, caja CajaService) NominaService {
	return &nominaService{cajaRepo: cajaRepo, caja: caja}
}

func (s *nominaService) NotificarAnticipo(ctx context.Context, req dto.AnticipoRequest) (*dto.OperacionResponse, error) {
	sesion, err := s.cajaRepo.FindSesionActivaPorCaja(ctx, req.CajaID)
	if err != nil {
		return nil, ErrSesionNoExiste
	}
	return s.caja.RegistrarOperacion(ctx, dto.RegistrarOperacionRequest{
		SesionCajaID: sesion.ID.String(),
		Codigo:       model.CodigoAnticipo,
		Monto:        req.Monto,
		Descripcion:  "anticipo de sueldo",
		DeudorID:     &req.EmpleadoID,
		ReferenciaID: &req.EmpleadoID,
	})
}

func (s *nominaService) NotificarPagoSueldo(ctx context.Context, req dto.PagoSueldoRequest) (*dto.OperacionResponse, error) {
	sesion, err := s.cajaRepo.FindSesionActivaPorCaja(ctx, req.CajaID)
	if err != nil {
		return nil, ErrSesionNoExiste
	}
	return s.caja.RegistrarOperacion(ctx, dto.RegistrarOperacionRequest{
		SesionCajaID: sesion.ID.String(),
		Codigo:       model.CodigoPagoSueldo,
		Monto:        req.Monto,
		Descripcion:  "pago de sueldo",
		ReferenciaID: &req.EmpleadoID,
	})
}
