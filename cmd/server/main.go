package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"estudio/internal/config"
	"estudio/internal/infra"
	"estudio/internal/router"
	"estudio/internal/worker"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	// Structured logger: dev pretty, prod JSON
	if cfg.Env != "production" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}

	db, err := infra.NewDatabase(infra.DatabaseConfig{
		Driver:       cfg.DBDriver,
		DSN:          cfg.DatabaseURL,
		MaxOpenConns: cfg.DBMaxOpenConns,
		Log:          cfg.DBLog,
	})
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.DBDriver).Msg("failed to open database")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	seeds := infra.DefaultCajaSeeds(cfg.CajaBancoNombre, cfg.CajaEfectivoNombre, cfg.CajaAhorroNombre)
	if err := infra.SeedCajas(ctx, db, seeds); err != nil {
		log.Fatal().Err(err).Msg("failed to seed cajas")
	}

	rdb, err := infra.NewRedis(infra.RedisConfig{URL: cfg.RedisURL, BlockingWorkers: cfg.WorkerPoolSize})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}

	// Composition root: the services are shared by the HTTP routes and the
	// audit workers, which only see them through worker.LedgerAuditor.
	dispatcher := worker.NewDispatcher(rdb, infra.NewCircuitBreaker(infra.DefaultCBConfig()))
	svcs := router.NewServices(cfg, db, dispatcher)

	auditoriaWorker := worker.NewAuditoriaWorker(svcs.Caja, rdb)
	worker.StartWorkerPool(ctx, rdb, cfg.WorkerPoolSize, auditoriaWorker)
	worker.StartAuditCron(ctx, worker.AuditCronConfig{
		Auditor:    svcs.Caja,
		Dispatcher: dispatcher,
		Worker:     auditoriaWorker,
		Interval:   cfg.AuditInterval,
	})

	r := router.New(cfg, db, rdb, dispatcher, svcs)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.TxTimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM
	go func() {
		log.Info().Msgf("estudio backend listening on :%d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server…")
	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("forced shutdown")
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	_ = rdb.Close()
	log.Info().Msg("server exited")
}
