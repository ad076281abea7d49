package worker

// reporte_worker.go
// Generates the close-out (arqueo) PDF for a session that reached "cerrada".
// The file lands in PDF_STORAGE_PATH for the back-office UI to serve.

import (
	"context"
	"encoding/json"

	"cajaledger/internal/infra"
	"cajaledger/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type ReporteWorker struct {
	cajaRepo    repository.CajaRepository
	auditRepo   repository.AuditoriaRepository
	storagePath string
}

func NewReporteWorker(cajaRepo repository.CajaRepository, auditRepo repository.AuditoriaRepository, storagePath string) *ReporteWorker {
	return &ReporteWorker{cajaRepo: cajaRepo, auditRepo: auditRepo, storagePath: storagePath}
}

func (w *ReporteWorker) Process(ctx context.Context, raw json.RawMessage) error {
	var payload ReporteCierrePayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("reporte_worker: invalid payload")
		return nil
	}
	sesionID, err := uuid.Parse(payload.SesionCajaID)
	if err != nil {
		log.Error().Err(err).Msg("reporte_worker: invalid sesion id")
		return nil
	}

	sesion, err := w.cajaRepo.FindSesionByID(ctx, sesionID)
	if err != nil {
		return err
	}
	registros, err := w.auditRepo.ListBySesion(ctx, sesionID)
	if err != nil {
		return err
	}

	path, err := infra.GenerateCierrePDF(sesion, registros, w.storagePath)
	if err != nil {
		log.Error().Err(err).Str("sesion_id", payload.SesionCajaID).Msg("reporte_worker: pdf generation failed")
		return err
	}

	log.Info().Str("sesion_id", payload.SesionCajaID).Str("path", path).Msg("reporte_worker: pdf generado")
	return nil
}
