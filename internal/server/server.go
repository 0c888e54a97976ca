// Package server assembles the feed engine from configuration: record store,
// optional Redis publisher, tracing and the service layer.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"socialfeed/internal/config"
	"socialfeed/internal/database"
	"socialfeed/internal/notifications"
	"socialfeed/internal/observability"
	"socialfeed/internal/repository"
	"socialfeed/internal/service"
	"socialfeed/internal/store"

	"github.com/redis/go-redis/v9"
)

// Version is reported to the tracer.
const Version = "0.1.0"

// package-level constructor hooks so tests can replace backends.
var (
	openBadger   = store.OpenBadger
	connectSQL   = database.Connect
	connectRedis = database.ConnectRedis
	initTracing  = observability.InitTracing
)

// Server holds the engine's dependencies.
type Server struct {
	config          *config.Config
	store           store.Store
	redis           *redis.Client
	ownsRedis       bool
	notifier        *notifications.Notifier
	services        *service.Services
	shutdownTracing func(context.Context) error
}

// NewServer opens every backend cfg selects and wires the services on top.
func NewServer(ctx context.Context, cfg *config.Config) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	observability.SetLevel(cfg.LogLevel)

	shutdownTracing, err := initTracing(observability.TracingConfig{
		ServiceName:    "socialfeed",
		ServiceVersion: Version,
		Environment:    cfg.Env,
		Enabled:        cfg.TracingEnabled,
		Exporter:       cfg.TracingExporter,
		OTLPEndpoint:   cfg.OTLPEndpoint,
		SamplerRatio:   cfg.TracingSampleRatio,
	})
	if err != nil {
		return nil, fmt.Errorf("tracing init failed: %w", err)
	}

	s, redisClient, err := openStore(ctx, cfg)
	if err != nil {
		_ = shutdownTracing(ctx)
		return nil, err
	}

	ownsRedis := false
	if cfg.PublishNotifications && redisClient == nil {
		redisClient, err = connectRedis(ctx, cfg.RedisURL)
		if err != nil {
			_ = s.Close()
			_ = shutdownTracing(ctx)
			return nil, fmt.Errorf("redis connection failed: %w", err)
		}
		ownsRedis = true
	}

	srv := NewServerWithDeps(cfg, s, redisClient)
	srv.ownsRedis = ownsRedis
	srv.shutdownTracing = shutdownTracing
	return srv, nil
}

// NewServerWithDeps wires the services over an already opened store. redisClient may be nil.
func NewServerWithDeps(cfg *config.Config, s store.Store, redisClient *redis.Client) *Server {
	keys := store.Keys{Namespace: cfg.StoreNamespace}
	instrumented := store.Instrument(s, cfg.StoreDriver)

	srv := &Server{
		config:          cfg,
		store:           instrumented,
		redis:           redisClient,
		shutdownTracing: func(context.Context) error { return nil },
	}

	deps := service.Deps{
		Users:         repository.NewUserRepository(instrumented, keys),
		Posts:         repository.NewPostRepository(instrumented, keys),
		Notifications: repository.NewNotificationRepository(instrumented, keys),
	}
	if redisClient != nil && cfg.PublishNotifications {
		srv.notifier = notifications.NewNotifier(redisClient)
		deps.Publisher = srv.notifier
	}
	srv.services = service.New(deps)
	return srv
}

func openStore(ctx context.Context, cfg *config.Config) (store.Store, *redis.Client, error) {
	switch cfg.StoreDriver {
	case config.DriverMemory:
		return store.NewMemory(), nil, nil
	case config.DriverBadger:
		b, err := openBadger(store.BadgerConfig{
			Path:       cfg.BadgerPath,
			SyncWrites: cfg.IsProduction(),
			Logger:     observability.GlobalLogger.Logger,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("badger open failed: %w", err)
		}
		return b, nil, nil
	case config.DriverSQLite, config.DriverPostgres:
		db, err := connectSQL(cfg)
		if err != nil {
			return nil, nil, fmt.Errorf("database connection failed: %w", err)
		}
		return store.NewSQL(db), nil, nil
	case config.DriverRedis:
		rdb, err := connectRedis(ctx, cfg.RedisURL)
		if err != nil {
			return nil, nil, fmt.Errorf("redis connection failed: %w", err)
		}
		return store.NewRedis(rdb), rdb, nil
	default:
		return nil, nil, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
	}
}

func (s *Server) Config() *config.Config { return s.config }

func (s *Server) Services() *service.Services { return s.services }

func (s *Server) Store() store.Store { return s.store }

// Notifier is nil unless notification publishing is enabled.
func (s *Server) Notifier() *notifications.Notifier { return s.notifier }

// Shutdown closes the store, any Redis client opened only for publishing, and the tracer.
func (s *Server) Shutdown(ctx context.Context) error {
	var errs []error
	if err := s.store.Close(); err != nil {
		errs = append(errs, fmt.Errorf("store close: %w", err))
	}
	if s.ownsRedis && s.redis != nil {
		if err := s.redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("redis close: %w", err))
		}
	}
	if err := s.shutdownTracing(ctx); err != nil {
		errs = append(errs, fmt.Errorf("tracing shutdown: %w", err))
	}
	if len(errs) > 0 {
		observability.GlobalLogger.Error("shutdown completed with errors", slog.Int("errors", len(errs)))
	}
	return errors.Join(errs...)
}
