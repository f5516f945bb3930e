// Package main runs the projection API server:
// - HTTP API and websocket stream
// - Stores selected by config (memory or Postgres + ClickHouse)
// - Scheduled retention of old runs
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"dividend-projection-lab/internal/api"
	"dividend-projection-lab/internal/config"
	"dividend-projection-lab/internal/engine"
	"dividend-projection-lab/internal/jobs"
	"dividend-projection-lab/internal/logger"
	"dividend-projection-lab/internal/metrics"
	"dividend-projection-lab/internal/observability"
	"dividend-projection-lab/internal/reporting"
	"dividend-projection-lab/internal/simulation"
	"dividend-projection-lab/internal/storage/backend"
	"dividend-projection-lab/internal/verification"
)

func main() {
	cfgPath := os.Getenv("DPL_CONFIG")
	if cfgPath == "" {
		cfgPath = "config/config.yaml"
	}

	envOnly := false
	if raw := os.Getenv("DPL_ENV_ONLY"); raw != "" {
		envOnly = strings.EqualFold(raw, "true") || raw == "1"
	}

	cfg, err := config.Load(cfgPath, envOnly)
	if err != nil {
		panic(err)
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Stores
	stores, err := backend.Open(ctx, cfg.Storage)
	if err != nil {
		log.Fatal("open storage failed", zap.Error(err))
	}
	defer stores.Close()
	log.Info("storage ready", zap.String("backend", stores.Backend), zap.Bool("migrate", cfg.Storage.Migrate))

	// Components
	m := observability.ForNamespace(cfg.Metrics.Namespace)
	eng := engine.New(engine.Options{
		MaxPeriods:      cfg.Engine.MaxPeriods,
		MilestoneWindow: cfg.Engine.MilestoneWindow,
	})
	runner := simulation.NewRunner(simulation.RunnerOptions{
		Engine:        eng,
		ScenarioStore: stores.Scenarios,
		RunStore:      stores.Runs,
		RecordStore:   stores.Records,
		Metrics:       m,
		Logger:        log.Named("runner"),
	})
	verifier := verification.NewReplayVerifier(verification.ReplayVerifierOptions{
		Engine:        eng,
		ScenarioStore: stores.Scenarios,
		RunStore:      stores.Runs,
		RecordStore:   stores.Records,
	})
	aggregator := metrics.NewAggregator(stores.Scenarios, stores.Runs, stores.Records,
		metrics.Options{Window: cfg.Engine.MilestoneWindow})
	reports := reporting.NewGenerator(stores.Scenarios, stores.Runs, aggregator)

	// Retention
	scheduler := jobs.NewScheduler(log.Named("cron"), ctx)
	if cfg.Retention.Enabled {
		job, err := jobs.NewRetentionJob(jobs.RetentionOptions{
			Purger:  runner,
			MaxAge:  cfg.Retention.MaxAge,
			Metrics: m,
			Logger:  log.Named("retention"),
		})
		if err != nil {
			log.Fatal("retention job invalid", zap.Error(err))
		}
		if err := job.Schedule(scheduler, cfg.Retention.Schedule); err != nil {
			log.Fatal("schedule retention failed", zap.String("schedule", cfg.Retention.Schedule), zap.Error(err))
		}
	}
	scheduler.Start()
	defer scheduler.Stop()

	// HTTP
	gin.SetMode(cfg.Server.Mode)
	router := api.NewRouter(api.Options{
		Runner:   runner,
		Verifier: verifier,
		Reports:  reports,
		Metrics:  m,
		Logger:   log.Named("api"),
		Ready:    stores.Ping,
	})

	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("http server listening", zap.String("addr", cfg.Server.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil {
			log.Error("http server failed", zap.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("http shutdown failed", zap.Error(err))
	}

	log.Info("shutdown complete")
}
