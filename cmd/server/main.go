package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cajaledger/internal/config"
	"cajaledger/internal/infra"
	"cajaledger/internal/repository"
	"cajaledger/internal/router"
	"cajaledger/internal/service"
	"cajaledger/internal/worker"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// Structured logger — dev: pretty, prod: JSON
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}

	rdb, err := infra.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}

	// The operation catalog lives in memory after boot; a register cannot
	// take operations the engine does not know how to classify.
	catalogoRepo := repository.NewCatalogoRepository(db)
	catalogoSvc := service.NewCatalogoService(catalogoRepo)
	if err := catalogoSvc.Cargar(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("failed to load operation catalog")
	}

	// Start goroutine worker pool for async tasks (deviation alerts, close-out
	// PDFs). Worker handlers are wired here (composition root) so that the pool
	// has full access to all infrastructure dependencies.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mailer := infra.NewMailer(cfg)
	dispatcher := worker.NewDispatcher(rdb)
	cajaRepo := repository.NewCajaRepository(db)
	auditoriaRepo := repository.NewAuditoriaRepository(db)

	handlers := &worker.Handlers{
		Alertas:  worker.NewAlertaWorker(mailer, cfg.AlertaEmail),
		Reportes: worker.NewReporteWorker(cajaRepo, auditoriaRepo, cfg.PDFStoragePath),
	}
	worker.StartPool(ctx, rdb, handlers, cfg.WorkerPoolSize)

	r := router.New(cfg, db, rdb, catalogoSvc, dispatcher)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM
	go func() {
		log.Info().Msgf("cajaledger listening on :%d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server…")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("forced shutdown")
	}
	log.Info().Msg("server exited")
}
