// cmd/activity-api/main.go
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

	"go.uber.org/zap"

	awsclients "activity-signup/internal/common/aws"
	"activity-signup/internal/common/config"
	"activity-signup/internal/common/database"
	"activity-signup/internal/common/logger"
	"activity-signup/internal/common/observability"
	"activity-signup/internal/events"
	"activity-signup/internal/notify"
	"activity-signup/internal/registry"
	"activity-signup/internal/server"
	seed "activity-signup/pkg/registry"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog, err := logger.Build(logger.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger init failed: %v\n", err)
		os.Exit(1)
	}
	defer zapLog.Sync()

	log := logger.NewZapAdapter(zapLog).WithFields(map[string]interface{}{
		"service": cfg.App.Name,
		"version": cfg.App.Version,
	})
	zapLog.Info("Starting activity API", zap.String("environment", cfg.App.Environment))

	ctx := context.Background()

	obs, err := observability.New(ctx, cfg)
	if err != nil {
		zapLog.Fatal("observability init failed", zap.Error(err))
	}

	// --- Seed ---
	doc := seed.Default()
	if cfg.Registry.SeedPath != "" {
		doc, err = seed.LoadRegistry(cfg.Registry.SeedPath)
		if err != nil {
			zapLog.Fatal("seed load failed", zap.String("path", cfg.Registry.SeedPath), zap.Error(err))
		}
	}

	// --- Event sinks ---
	var (
		sinks  []events.Sink
		checks = map[string]server.Check{}
	)

	if cfg.Events.Redis.Enabled {
		rdb := database.NewRedis(cfg.Database.Redis)
		err = retryWithBackoff(func() error {
			return rdb.Ping(ctx)
		}, 10, 2*time.Second, zapLog, "Redis connection")
		if err != nil {
			zapLog.Fatal("redis failed after retries", zap.Error(err))
		}
		defer rdb.Close()
		zapLog.Info("Redis connected successfully")

		sinks = append(sinks, events.NewRedisSink(rdb.Client, cfg.Events.Redis.Channel))
		checks["redis"] = rdb.Ping
	}

	if cfg.Events.Audit.Enabled {
		var pg *database.PostgresClient
		err = retryWithBackoff(func() error {
			var err error
			if pg == nil {
				pg, err = database.NewPostgres(cfg.Database.Postgres)
				if err != nil {
					return err
				}
			}
			return pg.Ping(ctx)
		}, 15, 2*time.Second, zapLog, "PostgreSQL connection")
		if err != nil {
			zapLog.Fatal("postgres failed after retries", zap.Error(err))
		}
		defer pg.Close()
		zapLog.Info("PostgreSQL connected successfully")

		audit := events.NewAuditSink(pg.DB, cfg.Events.Audit.Table)
		if err := audit.EnsureTable(ctx); err != nil {
			zapLog.Fatal("audit table setup failed", zap.Error(err))
		}
		sinks = append(sinks, audit)
		checks["postgres"] = pg.Ping
	}

	if cfg.NeedsAWS() {
		awsCfg, err := awsclients.LoadConfig(ctx, cfg.Integrations.AWS.Region, cfg.Integrations.AWS.Endpoint)
		if err != nil {
			zapLog.Fatal("aws config failed", zap.Error(err))
		}

		if cfg.Events.SNS.Enabled {
			sinks = append(sinks, events.NewSNSSink(awsclients.NewSNSClient(awsCfg), cfg.Events.SNS.TopicARN))
		}

		if cfg.Notifications.SES.Enabled {
			templates, err := notify.LoadTemplates(cfg.Notifications.TemplatePath)
			if err != nil {
				zapLog.Fatal("notification templates failed", zap.Error(err))
			}
			sinks = append(sinks, notify.NewEmailSink(
				awsclients.NewSESClient(awsCfg),
				cfg.Notifications.SES.FromEmail,
				templates,
				log,
			))
		}
		zapLog.Info("AWS clients initialized", zap.String("region", cfg.Integrations.AWS.Region))
	}

	dispatcher := events.NewDispatcher(&events.Config{
		Workers:      cfg.Events.Workers,
		QueueSize:    cfg.Events.QueueSize,
		MaxRetries:   cfg.Events.MaxRetries,
		RetryBackoff: config.GetDuration(cfg.Events.RetryBackoff),
		Timeout:      config.GetDuration(cfg.Events.Timeout),
	}, sinks, log)

	// --- Registry & HTTP ---
	reg := registry.New(doc, dispatcher, log)
	handler := server.NewHandler(reg, log, checks)

	srv := &http.Server{
		Addr: cfg.Server.Address,
		Handler: server.NewRouter(handler, server.Options{
			StaticDir: cfg.Server.StaticDir,
			Recorder:  obs,
		}),
		ReadTimeout:  cfg.Server.ReadTimeoutDuration(),
		WriteTimeout: cfg.Server.WriteTimeoutDuration(),
		IdleTimeout:  cfg.Server.IdleTimeoutDuration(),
	}

	serverErr := make(chan error, 1)
	go func() {
		zapLog.Info("HTTP server listening", zap.String("address", cfg.Server.Address))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		zapLog.Info("Shutdown signal received", zap.String("signal", sig.String()))
	case err := <-serverErr:
		zapLog.Error("HTTP server failed", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeoutDuration())
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error shutting down HTTP server", zap.Error(err))
	}
	if err := dispatcher.Close(shutdownCtx); err != nil {
		zapLog.Error("Error draining event dispatcher", zap.Error(err))
	}
	if err := obs.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error shutting down observability", zap.Error(err))
	}

	zapLog.Info("Activity API stopped gracefully")
}
