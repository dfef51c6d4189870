// cmd/worker-manager/main.go
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
	"golang.org/x/sync/errgroup"

	"decree-workers/internal/api"
	"decree-workers/internal/common/camunda"
	"decree-workers/internal/common/config"
	"decree-workers/internal/common/database"
	"decree-workers/internal/common/logger"
	"decree-workers/internal/common/observability"
	"decree-workers/internal/decree/batch"
	"decree-workers/internal/decree/classify"
	"decree-workers/internal/decree/render"
	"decree-workers/internal/decree/sequence"
	"decree-workers/internal/decree/store"
	"decree-workers/internal/decree/verify"
	gdb "decree-workers/internal/workers/decree/generate-decree-batch"
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

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting decree worker manager...", zap.String("version", cfg.App.Version))

	obs := observability.New(cfg.App.Name)
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Zeebe ---
	var zeebe *camunda.Client
	err = retryWithBackoff(func() error {
		var err error
		zeebe, err = camunda.NewClientWithConfig(&camunda.ClientConfig{
			GatewayAddress:         cfg.Camunda.BrokerAddress,
			UsePlaintextConnection: true,
			ConnectionTimeout:      10 * time.Second,
			RequestTimeout:         config.GetDuration(cfg.Camunda.RequestTimeout),
		})
		return err
	}, 10, 2*time.Second, zapLog, "Zeebe client initialization")
	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	defer zeebe.Close()
	zapLog.Info("Zeebe client connected successfully")

	// --- Stores ---
	pg, err := database.NewPostgres(cfg.Database.Postgres)
	if err != nil {
		zapLog.Fatal("postgres client failed", zap.Error(err))
	}
	defer pg.Close()

	redis, err := database.NewRedis(cfg.Database.Redis)
	if err != nil {
		zapLog.Fatal("redis client failed", zap.Error(err))
	}
	defer redis.Close()

	var es *database.ElasticsearchClient
	if cfg.Database.Elasticsearch.Enabled() {
		es, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
		if err != nil {
			zapLog.Fatal("elasticsearch client failed", zap.Error(err))
		}
	}

	err = retryWithBackoff(func() error {
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error { return pg.Ping(gctx) })
		g.Go(func() error { return redis.Ping(gctx) })
		if es != nil {
			g.Go(func() error { return es.Ping(gctx) })
		}
		return g.Wait()
	}, 15, 2*time.Second, zapLog, "Store connections")
	if err != nil {
		zapLog.Fatal("stores unreachable after retries", zap.Error(err))
	}
	if err := pg.EnsureSchema(ctx); err != nil {
		zapLog.Fatal("schema setup failed", zap.Error(err))
	}
	if es != nil {
		if err := es.EnsureIndex(ctx); err != nil {
			zapLog.Fatal("search index setup failed", zap.Error(err))
		}
	}
	zapLog.Info("Stores connected successfully")

	// --- Decree engine ---
	source, s3Client, err := buildTemplateSource(ctx, cfg)
	if err != nil {
		zapLog.Fatal("template source setup failed", zap.Error(err))
	}
	selector, err := buildSelector(cfg, source)
	if err != nil {
		zapLog.Fatal("template registry load failed", zap.Error(err))
	}

	decrees := store.NewPostgresStore(pg.DB)
	opts := []batch.Option{batch.WithMarker(decrees)}
	if es != nil {
		opts = append(opts, batch.WithIndexer(store.NewElasticIndexer(es.Client, es.Index)))
	}
	generator := batch.NewGenerator(
		classify.New(),
		selector,
		verify.NewLinker(decrees, cfg.Decree.VerifyBaseURL, cfg.Decree.QRSize),
		render.New(cfg.Decree.QRImagePart),
		sequence.NewRedisStore(redis.Client, cfg.Decree.CounterKey),
		log,
		opts...,
	)

	notifier, err := buildNotifier(ctx, cfg)
	if err != nil {
		zapLog.Fatal("notifier setup failed", zap.Error(err))
	}

	// --- Workers ---
	var workers []*camunda.CamundaWorker
	if wcfg := config.GetWorkerConfig(cfg, gdb.TaskType); wcfg.Enabled {
		wc := gdb.LoadConfig()
		wc.Timeout = config.GetDuration(wcfg.Timeout)
		wc.Defaults = cfg.Decree.Settings()
		handler := gdb.NewHandler(wc, generator, buildUploader(cfg, s3Client), notifier, log).WithRecorder(obs)
		workers = append(workers, camunda.NewWorker(zeebe.GetClient(), gdb.TaskType, camunda.WorkerOptions{
			MaxJobsActive: wcfg.MaxJobsActive,
			Timeout:       wc.Timeout,
		}, handler, log))
	} else {
		zapLog.Info("worker disabled", zap.String("taskType", gdb.TaskType))
	}

	// --- HTTP ---
	checks := map[string]api.CheckFunc{
		"postgres": pg.Ping,
		"redis":    redis.CounterCheck(cfg.Decree.CounterKey),
		"zeebe":    zeebe.HealthCheck,
	}
	if es != nil {
		checks["elasticsearch"] = es.Ping
	}
	server := &http.Server{
		Addr:              cfg.HTTP.Address,
		Handler:           api.NewHandler(decrees, checks, log).Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		zapLog.Info("HTTP server listening", zap.String("address", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLog.Error("HTTP server failed", zap.Error(err))
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping workers...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	for _, w := range workers {
		w.Stop()
	}
	if err := server.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error stopping HTTP server", zap.Error(err))
	}

	zapLog.Info("Worker manager stopped gracefully")
}
