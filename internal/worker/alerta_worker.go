package worker

// alerta_worker.go
// Processes discrepancy alert jobs from QueueAlertas: every close-out whose
// outcome was "advertencia" or "bloqueado" ends up as an email in the
// supervisor's inbox for later review.

import (
	"context"
	"encoding/json"
	"fmt"

	"cajaledger/internal/infra"

	"github.com/rs/zerolog/log"
)

type AlertaWorker struct {
	mailer  *infra.Mailer
	toEmail string
}

// NewAlertaWorker creates an AlertaWorker sending to the configured
// supervisor address.
func NewAlertaWorker(mailer *infra.Mailer, toEmail string) *AlertaWorker {
	return &AlertaWorker{mailer: mailer, toEmail: toEmail}
}

func (w *AlertaWorker) Process(_ context.Context, raw json.RawMessage) error {
	var payload AlertaDesvioPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("alerta_worker: invalid payload")
		return nil // malformed payloads are not retryable
	}
	if w.toEmail == "" {
		log.Warn().Msg("alerta_worker: ALERTA_EMAIL not configured — skipping")
		return nil
	}

	subject := fmt.Sprintf("[Caja %d] Desvio en cierre: %s", payload.CajaID, payload.Resultado)
	body := fmt.Sprintf(
		"Sesion: %s\nModo: %s\nResultado: %s\nEsperado: %s\nDeclarado: %s\nDesvio: %s\n",
		payload.SesionCajaID, payload.Modo, payload.Resultado,
		payload.Esperado, payload.Declarado, payload.Desvio,
	)

	if err := w.mailer.SendAlerta(w.toEmail, subject, body); err != nil {
		log.Error().Err(err).Str("to", w.toEmail).Msg("alerta_worker: failed to send email")
		return err
	}

	log.Info().Str("sesion_id", payload.SesionCajaID).Str("resultado", payload.Resultado).
		Msg("alerta_worker: alerta enviada")
	return nil
}
