package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/scarlet-sypher/HelpMeMake-Base-sub001/internal/config"
	"github.com/scarlet-sypher/HelpMeMake-Base-sub001/internal/db"
	"github.com/scarlet-sypher/HelpMeMake-Base-sub001/internal/directory"
	"github.com/scarlet-sypher/HelpMeMake-Base-sub001/internal/elastic"
	"github.com/scarlet-sypher/HelpMeMake-Base-sub001/internal/events"
	"github.com/scarlet-sypher/HelpMeMake-Base-sub001/internal/handler"
	"github.com/scarlet-sypher/HelpMeMake-Base-sub001/internal/logging"
	"github.com/scarlet-sypher/HelpMeMake-Base-sub001/internal/metrics"
	"github.com/scarlet-sypher/HelpMeMake-Base-sub001/internal/ratelimit"
	"github.com/scarlet-sypher/HelpMeMake-Base-sub001/internal/services"
	"github.com/scarlet-sypher/HelpMeMake-Base-sub001/internal/store"
	"github.com/scarlet-sypher/HelpMeMake-Base-sub001/internal/upload"
	"github.com/scarlet-sypher/HelpMeMake-Base-sub001/internal/workers"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pg, err := db.Connect(cfg.PostgresDSN, logger)
	if err != nil {
		return err
	}
	if err := db.Migrate(pg); err != nil {
		return err
	}
	if cfg.SeedDemo {
		if err := db.Seed(pg, logger); err != nil {
			return err
		}
	}

	metrics.Register()

	var publisher events.Publisher = events.Nop{}
	if cfg.NatsURL != "" {
		nc, err := events.Connect(cfg.NatsURL, logger)
		if err != nil {
			return err
		}
		defer nc.Drain()
		publisher = events.NewNATSPublisher(nc, logger)
	} else {
		logger.Warn("NATS_URL not set, domain events are dropped")
	}

	var limiter ratelimit.Limiter = ratelimit.NewMemoryLimiter(cfg.MessageRateLimit, cfg.MessageRateWindow)
	if cfg.RedisURL != "" {
		rdb, err := ratelimit.Connect(ctx, cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		defer rdb.Close()
		limiter = ratelimit.NewRedisLimiter(rdb, cfg.MessageRateLimit, cfg.MessageRateWindow, "helpmemake:ratelimit")
	}

	images, err := upload.NewLocalStore(cfg.UploadDir, cfg.UploadBaseURL, cfg.MaxUploadBytes)
	if err != nil {
		return err
	}

	st := store.New(pg)
	orch := services.NewOrchestrator(st, directory.New(pg), publisher, logger, services.Options{
		RollbackDelay: cfg.RollbackDelay,
		MaxRetries:    cfg.MutationMaxRetries,
		Outbox:        cfg.ElasticURL != "",
	})

	var wg sync.WaitGroup
	spawn := func(fn func(context.Context)) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			fn(ctx)
		}()
	}

	jobs := &workers.JobWorker{
		Store:       st,
		Handler:     orch,
		Logger:      logger.Named("jobs"),
		Interval:    cfg.JobPollInterval,
		BatchSize:   cfg.JobBatchSize,
		MaxAttempts: cfg.JobMaxAttempts,
	}
	spawn(jobs.Run)

	deps := handler.Deps{
		Orchestrator:   orch,
		Images:         images,
		Limiter:        limiter,
		Logger:         logger,
		AllowedOrigins: cfg.AllowedOrigins,
		MaxUploadBytes: cfg.MaxUploadBytes,
		Debug:          cfg.Debug,
	}

	if cfg.ElasticURL != "" {
		es, err := elastic.Connect(cfg.ElasticURL, logger)
		if err != nil {
			return err
		}
		syncer := &workers.SyncWorker{
			DB:            pg,
			ES:            es,
			Logger:        logger.Named("sync"),
			Interval:      cfg.OutboxPollInterval,
			RetryInterval: cfg.DLQRetryInterval,
		}
		spawn(syncer.Run)
		spawn(syncer.RetryDLQ)
		deps.Search = elastic.NewSearcher(es)
	} else {
		logger.Warn("ELASTIC_URL not set, project search and outbox sync are disabled")
	}

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           handler.New(deps).Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case err := <-errCh:
		stop()
		wg.Wait()
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown", zap.Error(err))
	}
	wg.Wait()
	return nil
}
