// cmd/package-provider/main.go
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"package-provider/internal/common/aws"
	"package-provider/internal/common/camunda"
	"package-provider/internal/common/config"
	"package-provider/internal/common/database"
	httpclient "package-provider/internal/common/http"
	"package-provider/internal/common/logger"
	"package-provider/internal/common/observability"
	"package-provider/internal/delivery"
	"package-provider/internal/search"
	"package-provider/internal/server"
	packagesearch "package-provider/internal/workers/packages/package-search"
	"package-provider/pkg/imagemap"
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

	zapLog := logger.NewWithOptions(logger.Options{
		Level:   cfg.Logging.Level,
		Format:  cfg.Logging.Format,
		Output:  cfg.Logging.Output,
		Service: cfg.Observability.ServiceName,
	})
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting package provider...",
		zap.String("environment", cfg.App.Environment),
		zap.String("sink", cfg.Output.Sink),
	)

	obs := observability.NewWithOptions(observability.Options{
		ServiceName:    cfg.Observability.ServiceName,
		JaegerEndpoint: cfg.Observability.JaegerEndpoint,
	})
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Search pipeline ---
	images, err := loadImageMap(cfg.Search.ImageMapPath)
	if err != nil {
		zapLog.Fatal("image map load failed", zap.Error(err))
	}
	zapLog.Info("Image map loaded", zap.Int("hotels", len(images)))

	hc := httpclient.NewClient(config.GetDuration(cfg.Search.RequestTimeout))
	client := search.NewClient(cfg.Search, hc, log)
	resolver := search.NewResolver(client, search.NewHotelInfoCache(), log)
	coordinator := search.NewCoordinator(client, resolver, search.NewMapper(images, cfg.Search.ProviderID), log, search.CoordinatorOptions{
		MaxConcurrency:  cfg.Search.MaxConcurrency,
		DeliveryTimeout: config.GetDuration(cfg.Output.DeliveryTimeout),
		Observability:   obs,
	})
	service := search.NewService(search.NewNormalizer(cfg.Search, log), coordinator, obs, log)

	// --- Output sink ---
	checks := map[string]server.ReadinessCheck{}
	var backends delivery.Backends

	switch cfg.Output.Sink {
	case config.SinkSNS:
		snsClient, err := aws.NewSNSClient(ctx, cfg.AWS.Region)
		if err != nil {
			zapLog.Fatal("sns client init failed", zap.Error(err))
		}
		backends.SNS = snsClient
	case config.SinkRedis:
		var redis *database.RedisClient
		err = retryWithBackoff(func() error {
			var err error
			redis, err = database.NewRedis(cfg.Database.Redis)
			if err != nil {
				return err
			}
			return redis.Ping(ctx)
		}, 10, 2*time.Second, zapLog, "Redis connection")
		if err != nil {
			zapLog.Fatal("redis failed after retries", zap.Error(err))
		}
		defer redis.Close()
		zapLog.Info("Redis connected successfully")

		backends.Redis = redis.GetClient()
		checks["redis"] = redis.Ping
	}

	sink, err := delivery.NewFromConfig(cfg.Output, backends, log)
	if err != nil {
		zapLog.Fatal("output sink init failed", zap.Error(err))
	}

	// --- Zeebe worker ---
	var jobWorker *camunda.CamundaWorker
	if cfg.Camunda.Enabled && config.IsWorkerEnabled(cfg, packagesearch.TaskType) {
		var zeebe *camunda.Client
		err = retryWithBackoff(func() error {
			var err error
			zeebe, err = camunda.NewClientWithConfig(ctx, camunda.ConfigFrom(cfg.Camunda))
			return err
		}, 10, 2*time.Second, zapLog, "Zeebe client initialization")
		if err != nil {
			zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
		}
		defer zeebe.Close()
		zapLog.Info("Zeebe client connected successfully")

		workerCfg := packagesearch.LoadConfig(cfg)
		handler := packagesearch.NewHandler(workerCfg, service, sink, log)
		jobWorker = camunda.NewWorker(zeebe.GetClient(), camunda.WorkerOptions{
			TaskType:      packagesearch.TaskType,
			MaxJobsActive: workerCfg.MaxJobsActive,
			Timeout:       workerCfg.Timeout,
		}, handler, log)
		checks["zeebe"] = zeebe.HealthCheck
	} else {
		zapLog.Info("worker disabled", zap.String("taskType", packagesearch.TaskType))
	}

	// --- HTTP trigger, health & metrics ---
	srv := server.New(cfg.Server, service, sink, checks, log)
	go func() {
		if err := srv.ListenAndServe(); err != nil {
			zapLog.Error("HTTP server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, draining...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.GetDuration(cfg.Server.ShutdownTimeout))
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error stopping HTTP server", zap.Error(err))
	}
	if jobWorker != nil {
		jobWorker.Stop()
	}

	zapLog.Info("Package provider stopped gracefully")
}

func loadImageMap(path string) (imagemap.ImageMap, error) {
	if path == "" {
		return imagemap.ImageMap{}, nil
	}
	return imagemap.Load(path)
}
