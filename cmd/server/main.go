package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/crisgp1/orodetamar-sub000/internal/config"
	"github.com/crisgp1/orodetamar-sub000/internal/infra"
	"github.com/crisgp1/orodetamar-sub000/internal/repository"
	"github.com/crisgp1/orodetamar-sub000/internal/router"
	"github.com/crisgp1/orodetamar-sub000/internal/service"
	"github.com/crisgp1/orodetamar-sub000/internal/worker"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	// Structured logger: dev pretty, prod JSON
	zerolog.TimeFieldFormat = time.RFC3339
	if cfg.Env != "production" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}

	if cfg.AutoMigrate {
		if err := infra.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath); err != nil {
			log.Fatal().Err(err).Msg("failed to apply migrations")
		}
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}

	rdb, err := infra.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}

	var storage service.ArchivoStorage
	if cfg.UploadsEnabled() {
		s3, err := infra.NewS3Storage(cfg)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to configure object storage")
		}
		storage = s3
	} else {
		log.Warn().Msg("S3_BUCKET not set, proof-of-payment uploads disabled")
	}

	// Background work: email pool and balance reminders. Both stop with ctx.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mailer := infra.NewMailer(cfg)
	mailCB := infra.NewCircuitBreaker(infra.DefaultCBConfig())
	dispatcher := worker.NewDispatcher(rdb)

	if mailer.Enabled() {
		worker.NewPool(rdb, worker.NewEmailWorker(mailer, mailCB)).Start(ctx, cfg.WorkerPoolSize)
		worker.StartRecordatorioCron(ctx, worker.RecordatorioCronConfig{
			Consignaciones: repository.NewConsignacionRepository(db),
			Dispatcher:     dispatcher,
			CB:             mailCB,
			RDB:            rdb,
			Dias:           cfg.RecordatorioDias,
			Negocio:        cfg.NombreNegocio,
		})
	} else {
		log.Warn().Msg("SMTP_HOST not set, email reminders disabled")
	}

	r := router.New(cfg, db, rdb, mailCB, storage)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM
	go func() {
		log.Info().Msgf("%s backend listening on :%d", cfg.NombreNegocio, cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")
	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("forced shutdown")
	}
	log.Info().Msg("server exited")
}
