package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	QueueAlertas  = "jobs:alertas"
	QueueReportes = "jobs:reportes"

	maxAttempts = 3
)

// Job is the generic envelope for all async tasks.
type Job struct {
	Type     string          `json:"type"`
	Payload  json.RawMessage `json:"payload"`
	Attempts int             `json:"attempts"`
}

// AlertaDesvioPayload notifies a supervisor that a close-out came back with
// a discrepancy (advertencia or bloqueado).
type AlertaDesvioPayload struct {
	SesionCajaID string `json:"sesion_caja_id"`
	CajaID       int    `json:"caja_id"`
	Modo         string `json:"modo"`
	Resultado    string `json:"resultado"`
	Esperado     string `json:"esperado"`
	Declarado    string `json:"declarado"`
	Desvio       string `json:"desvio"`
}

// ReporteCierrePayload requests the close-out PDF for a closed session.
type ReporteCierrePayload struct {
	SesionCajaID string `json:"sesion_caja_id"`
}

// Dispatcher enqueues async jobs into Redis lists.
// The worker pool dequeues them via BRPOP.
type Dispatcher struct {
	rdb *redis.Client
}

func NewDispatcher(rdb *redis.Client) *Dispatcher {
	return &Dispatcher{rdb: rdb}
}

// EnqueueAlertaDesvio pushes a discrepancy alert job to Redis.
func (d *Dispatcher) EnqueueAlertaDesvio(ctx context.Context, payload AlertaDesvioPayload) error {
	return d.enqueue(ctx, QueueAlertas, "alerta_desvio", payload)
}

// EnqueueReporteCierre pushes a close-out PDF job to Redis.
func (d *Dispatcher) EnqueueReporteCierre(ctx context.Context, payload ReporteCierrePayload) error {
	return d.enqueue(ctx, QueueReportes, "reporte_cierre", payload)
}

func (d *Dispatcher) enqueue(ctx context.Context, queue, jobType string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	job := Job{Type: jobType, Payload: data}
	encoded, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return d.rdb.LPush(ctx, queue, encoded).Err()
}

// Handlers holds the concrete processors wired in main (composition root).
type Handlers struct {
	Alertas  *AlertaWorker
	Reportes *ReporteWorker
}

// StartPool launches numWorkers goroutines consuming both queues.
// Each goroutine blocks on BRPOP — zero CPU when idle.
func StartPool(ctx context.Context, rdb *redis.Client, handlers *Handlers, numWorkers int) {
	for i := 0; i < numWorkers; i++ {
		go runWorker(ctx, rdb, handlers, i)
	}
	log.Info().Msgf("worker pool started with %d workers", numWorkers)
}

func runWorker(ctx context.Context, rdb *redis.Client, handlers *Handlers, id int) {
	queues := []string{QueueAlertas, QueueReportes}
	for {
		select {
		case <-ctx.Done():
			log.Info().Msgf("worker %d shutting down", id)
			return
		default:
			// Blocking pop — waits up to 5s then loops to check ctx
			result, err := rdb.BRPop(ctx, 5*time.Second, queues...).Result()
			if err != nil {
				continue // timeout or context cancelled
			}
			if len(result) < 2 {
				continue
			}
			processJob(ctx, rdb, handlers, result[0], result[1])
		}
	}
}

func processJob(ctx context.Context, rdb *redis.Client, handlers *Handlers, queue, raw string) {
	var job Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		log.Error().Str("queue", queue).Err(err).Msg("failed to unmarshal job")
		return
	}

	var err error
	switch queue {
	case QueueAlertas:
		err = handlers.Alertas.Process(ctx, job.Payload)
	case QueueReportes:
		err = handlers.Reportes.Process(ctx, job.Payload)
	default:
		log.Warn().Str("queue", queue).Msg("unknown queue")
		return
	}
	if err == nil {
		return
	}

	// Bounded retries, then the dead letter queue for manual inspection.
	job.Attempts++
	if job.Attempts >= maxAttempts {
		sendToDLQ(ctx, rdb, queue, job, err.Error())
		return
	}
	log.Warn().Str("type", job.Type).Int("attempt", job.Attempts).Err(err).Msg("job failed, re-enqueueing")
	if encoded, mErr := json.Marshal(job); mErr == nil {
		_ = rdb.LPush(ctx, queue, encoded).Err()
	}
}
