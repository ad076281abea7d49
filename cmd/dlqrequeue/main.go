// cmd/dlqrequeue/main.go — Reencola trabajos desde la dead letter queue.
//
// Después de resolver la falla de fondo (relay de correo caído, disco lleno)
// este comando devuelve los trabajos muertos a su cola de origen para que el
// pool los procese de nuevo.
//
// Uso: go run cmd/dlqrequeue/main.go -queue jobs:alertas [-n 100]
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"cajaledger/internal/config"
	"cajaledger/internal/infra"
	"cajaledger/internal/worker"
)

func main() {
	queue := flag.String("queue", "", "cola de origen (jobs:alertas | jobs:reportes)")
	n := flag.Int("n", 100, "máximo de trabajos a reencolar")
	flag.Parse()

	if *queue != worker.QueueAlertas && *queue != worker.QueueReportes {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	rdb, err := infra.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatalf("redis: %v", err)
	}
	defer rdb.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pending, err := worker.DLQLength(ctx, rdb, *queue)
	if err != nil {
		log.Fatalf("dlq: %v", err)
	}
	moved, err := worker.RequeueDLQ(ctx, rdb, *queue, *n)
	if err != nil {
		log.Fatalf("reencolando (%d movidos): %v", moved, err)
	}
	log.Printf("cola %s: %d en DLQ, %d reencolados", *queue, pending, moved)
}
