package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// Jobs that exhaust their retry budget land in a dead-letter list
// ("dlq:" + source queue) and stay there until an operator requeues or
// discards them.

const dlqPrefix = "dlq:"

type deadLetter struct {
	Queue    string          `json:"queue"`
	Type     string          `json:"type"`
	Payload  json.RawMessage `json:"payload"`
	Reason   string          `json:"reason"`
	Attempts int             `json:"attempts"`
	FailedAt time.Time       `json:"failed_at"`
}

func sendToDLQ(ctx context.Context, rdb *redis.Client, queue string, job Job, reason string) {
	entry := deadLetter{
		Queue:    queue,
		Type:     job.Type,
		Payload:  job.Payload,
		Reason:   reason,
		Attempts: job.Attempts,
		FailedAt: time.Now().UTC(),
	}

	data, err := json.Marshal(entry)
	if err != nil {
		log.Error().Err(err).Str("queue", queue).Msg("dlq: marshal failed")
		return
	}
	if err := rdb.LPush(ctx, dlqPrefix+queue, data).Err(); err != nil {
		log.Error().Err(err).Str("queue", queue).Msg("dlq: push failed")
		return
	}

	log.Warn().
		Str("queue", queue).
		Str("type", job.Type).
		Str("reason", reason).
		Int("attempts", job.Attempts).
		Msg("job moved to dead letter queue")
}

// DLQLength reports the number of dead-lettered jobs for a queue.
func DLQLength(ctx context.Context, rdb *redis.Client, queue string) (int64, error) {
	return rdb.LLen(ctx, dlqPrefix+queue).Result()
}

// RequeueDLQ moves up to n dead-lettered jobs back onto their source queue
// with the attempt counter reset. Used from an operator shell after the
// underlying outage (mail relay, disk) is fixed.
func RequeueDLQ(ctx context.Context, rdb *redis.Client, queue string, n int) (int, error) {
	moved := 0
	for i := 0; i < n; i++ {
		raw, err := rdb.RPop(ctx, dlqPrefix+queue).Result()
		if err == redis.Nil {
			break
		}
		if err != nil {
			return moved, err
		}

		var entry deadLetter
		if err := json.Unmarshal([]byte(raw), &entry); err != nil {
			log.Error().Err(err).Str("queue", queue).Msg("dlq: skipping undecodable entry")
			continue
		}
		job := Job{Type: entry.Type, Payload: entry.Payload}
		encoded, err := json.Marshal(job)
		if err != nil {
			return moved, err
		}
		if err := rdb.LPush(ctx, queue, encoded).Err(); err != nil {
			return moved, err
		}
		moved++
	}
	return moved, nil
}
