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

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/okian/swatch/internal/adapters/cache"
	"github.com/okian/swatch/internal/adapters/fetch"
	"github.com/okian/swatch/internal/adapters/http/api"
	"github.com/okian/swatch/internal/adapters/http/swagger"
	service "github.com/okian/swatch/internal/app"
	"github.com/okian/swatch/internal/config"
	"github.com/okian/swatch/pkg/logger"
	"github.com/okian/swatch/pkg/metrics"
)

// HTTP server timeout constants.
const (
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
	redisPingTimeout  = 3 * time.Second
)

func main() {
	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		logger.Get().Error(ctx, "swatch exited", logger.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	log := logger.Get()

	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	m := newMetrics(cfg)
	go m.RunSystemCollector(ctx, 0)

	c, closeCache, err := newCache(ctx, cfg, m, log)
	if err != nil {
		return err
	}
	defer closeCache()

	svc, err := newService(cfg, c, m, log)
	if err != nil {
		return err
	}
	if err := svc.Start(ctx); err != nil {
		return fmt.Errorf("start service: %w", err)
	}

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           newRouter(cfg, svc, m, log),
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info(ctx, "starting HTTP server",
			logger.String("addr", cfg.Server.Addr),
			logger.String("calibration_version", cfg.Calibration.Version),
			logger.String("cache", c.Backend()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	}
	log.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
	}
	if err := svc.Stop(shutdownCtx); err != nil {
		log.Error(ctx, "service stop failed", logger.Error(err))
	}

	log.Info(ctx, "server stopped")
	return nil
}

// newMetrics rebuilds the process-wide manager from cfg, or returns a
// disabled one on a private registry when metrics are turned off.
func newMetrics(cfg *config.Config) *metrics.Manager {
	if mc := cfg.Metrics; mc.Enabled {
		return metrics.Configure(
			metrics.WithNamespace(mc.Namespace),
			metrics.WithSubsystem(mc.Subsystem),
			metrics.WithMetricPrefix(mc.Prefix),
			metrics.WithHistogramBuckets(mc.Buckets),
			metrics.WithConstLabels(mc.ConstLabels),
			metrics.WithRefreshInterval(mc.RefreshInterval),
		)
	}
	return metrics.NewManager(
		metrics.WithMetricsEnabled(false),
		metrics.WithPrometheusRegistry(prometheus.NewRegistry()),
	)
}

// newCache builds the configured result cache. The returned func releases it.
func newCache(ctx context.Context, cfg *config.Config, m *metrics.Manager, log logger.Logger) (cache.Cache, func(), error) {
	switch cfg.Cache.Backend {
	case config.CacheMemory:
		return cache.NewMemory(
			cache.WithMaxSize(cfg.Cache.Size),
			cache.WithTTL(cfg.Cache.TTL),
			cache.WithMemoryMetrics(m),
		), func() {}, nil

	case config.CacheRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		pingCtx, cancel := context.WithTimeout(ctx, redisPingTimeout)
		defer cancel()
		if err := client.Ping(pingCtx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("redis ping %s: %w", cfg.Redis.Addr, err)
		}
		rc := cache.NewRedis(client,
			cache.WithKeyPrefix(cfg.Redis.KeyPrefix),
			cache.WithRedisTTL(cfg.Cache.TTL),
			cache.WithRedisMetrics(m),
			cache.WithRedisLogger(log.Named("cache")),
		)
		return rc, func() { _ = client.Close() }, nil
	}
	return cache.NewNop(), func() {}, nil
}

func newService(cfg *config.Config, c cache.Cache, m *metrics.Manager, log logger.Logger) (*service.Service, error) {
	opts := []service.Option{
		service.WithCalibration(cfg.Calibration),
		service.WithCache(c),
		service.WithWorkerCount(cfg.Workers.Count),
		service.WithQueueSize(cfg.Workers.QueueSize),
		service.WithMaxBatch(cfg.Workers.MaxBatch),
		service.WithMetrics(m),
		service.WithLogger(log.Named("service")),
	}
	if cfg.Fetch.Enabled {
		opts = append(opts, service.WithFetcher(fetch.New(
			fetch.WithTimeout(cfg.Fetch.Timeout),
			fetch.WithMaxBytes(cfg.Fetch.MaxBytes),
			fetch.WithRetries(cfg.Fetch.Retries),
			fetch.WithBackoff(cfg.Fetch.Backoff),
			fetch.WithAllowPrivateHosts(cfg.Fetch.AllowPrivateHosts),
			fetch.WithMetrics(m),
			fetch.WithLogger(log.Named("fetch")),
		)))
	}
	return service.New(opts...)
}

func newRouter(cfg *config.Config, svc *service.Service, m *metrics.Manager, log logger.Logger) *gin.Engine {
	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	server := api.NewServer(svc, svc.Calibration().Version,
		api.WithMaxBodyBytes(cfg.Server.MaxBodyBytes),
		api.WithMetrics(m),
		api.WithLogger(log.Named("http")),
	)
	router := server.Router()
	swagger.Register(router)
	return router
}
