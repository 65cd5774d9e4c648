package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/lox/holdem-engine/internal/config"
	"github.com/lox/holdem-engine/internal/eventbus"
	"github.com/lox/holdem-engine/internal/logging"
	"github.com/lox/holdem-engine/internal/metrics"
	"github.com/lox/holdem-engine/internal/store"
)

// runtime holds the process-wide collaborators built from a config file.
type runtime struct {
	cfg       *config.Config
	logger    zerolog.Logger
	registry  *prometheus.Registry
	metrics   *metrics.Metrics
	publisher eventbus.Publisher
	store     store.Store

	closers []func() error
}

func loadConfig(g *Globals) (*config.Config, zerolog.Logger, error) {
	cfg, err := config.Load(g.Config)
	if err != nil {
		return nil, zerolog.Nop(), err
	}
	level := cfg.Engine.LogLevel
	if g.Debug {
		level = "debug"
	}
	logger, err := logging.New(logging.Options{Level: level, JSON: g.JSONLogs || cfg.Engine.JSONLogs})
	if err != nil {
		return nil, zerolog.Nop(), err
	}
	return cfg, logger, nil
}

func newRuntime(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*runtime, error) {
	rt := &runtime{
		cfg:      cfg,
		logger:   logger,
		registry: prometheus.NewRegistry(),
	}
	rt.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	rt.metrics = metrics.New(rt.registry)

	publishers := eventbus.Multi{eventbus.NewLogPublisher(logger)}
	if cfg.NATS != nil {
		nc, err := eventbus.ConnectNATS(os.ExpandEnv(cfg.NATS.URL), "holdem-engine")
		if err != nil {
			return nil, err
		}
		rt.closers = append(rt.closers, func() error {
			return nc.Drain()
		})
		publishers = append(publishers, eventbus.NewNATSPublisher(nc, cfg.NATS.SubjectPrefix))
		logger.Info().Str("url", nc.ConnectedUrlRedacted()).Msg("Publishing events to NATS")
	}
	rt.publisher = publishers

	s, err := rt.openStore(ctx, cfg.Store)
	if err != nil {
		_ = rt.Close()
		return nil, err
	}
	rt.store = s
	return rt, nil
}

func (rt *runtime) openStore(ctx context.Context, cfg *config.StoreConfig) (store.Store, error) {
	switch cfg.Kind {
	case config.StoreFile:
		return store.NewFileStore(cfg.Dir)
	case config.StoreRedis:
		client := store.NewRedisClient(cfg.RedisAddr, os.Getenv("HOLDEM_REDIS_PASSWORD"), cfg.RedisDB)
		rt.closers = append(rt.closers, client.Close)
		if err := client.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("redis %s: %w", cfg.RedisAddr, err)
		}
		return store.NewRedisStore(client, cfg.RedisPrefix, cfg.RedisTTLDuration()), nil
	case config.StorePostgres:
		db, err := store.OpenPostgres(ctx, os.ExpandEnv(cfg.PostgresDSN))
		if err != nil {
			return nil, err
		}
		rt.closers = append(rt.closers, db.Close)
		ps := store.NewPostgresStore(db)
		if err := ps.Migrate(ctx); err != nil {
			return nil, err
		}
		return ps, nil
	default:
		return store.NewMemoryStore(), nil
	}
}

// serveMetrics exposes the registry until ctx is done.
func (rt *runtime) serveMetrics(ctx context.Context, addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(rt.registry, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	go func() {
		rt.logger.Info().Str("address", addr).Msg("Serving metrics")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			rt.logger.Error().Err(err).Msg("Metrics server failed")
		}
	}()
}

func (rt *runtime) Close() error {
	var errs []error
	for i := len(rt.closers) - 1; i >= 0; i-- {
		errs = append(errs, rt.closers[i]())
	}
	rt.closers = nil
	return errors.Join(errs...)
}
