package control

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/pressly/goose/v3"

	"github.com/tonpay/events/internal/core/config"
	"github.com/tonpay/events/internal/health"
	"github.com/tonpay/events/internal/ingest"
	redisclient "github.com/tonpay/events/internal/infra/redis"
	"github.com/tonpay/events/internal/infra/storage"
	"github.com/tonpay/events/internal/infra/storage/memory"
	"github.com/tonpay/events/internal/infra/storage/postgres"
	"github.com/tonpay/events/internal/notify"
)

// Service is the main application struct that manages the event service
// lifecycle: storage, recorder, notifier and the health endpoint.
type Service struct {
	cfg          Config
	recorder     *ingest.Recorder
	notifier     *notify.Notifier
	healthServer *health.Server
	db           *postgres.DB
	redisClient  *redisclient.Client
	cancel       context.CancelFunc
	log          *slog.Logger
}

// Config holds the application configuration.
type Config struct {
	Port     int
	Database postgres.Config
	Redis    redisclient.Config
	Notifier config.NotifierConfig
}

// NewService creates a new Service instance with all dependencies initialized.
func NewService(cfg Config) (*Service, error) {
	log := slog.With("component", "control")

	// 1. Initialize Storage
	var events storage.EventRepository
	var tokenEvents storage.TokenEventRepository
	var db *postgres.DB

	if cfg.Database.URL != "" {
		var err error
		db, err = postgres.NewDB(context.Background(), cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("failed to init db: %w", err)
		}

		// Run migrations
		if err := goose.SetDialect("postgres"); err != nil {
			return nil, err
		}
		if err := goose.Up(db.DB.DB, "migrations"); err != nil {
			return nil, fmt.Errorf("failed to migrate db: %w", err)
		}

		events = postgres.NewEventRepo(db)
		tokenEvents = postgres.NewTokenEventRepo(db)
		log.Info("Using PostgreSQL storage")
	} else {
		store := memory.NewMemoryStorage()
		events = memory.NewEventRepo(store)
		tokenEvents = memory.NewTokenEventRepo(store)
		log.Info("Using Memory storage")
	}

	// 2. Initialize Redis (optional: without it delivery leases are skipped)
	var redisClient *redisclient.Client
	var locker notify.Locker
	if cfg.Redis.URL != "" {
		var err error
		redisClient, err = redisclient.NewClient(cfg.Redis)
		if err != nil {
			return nil, fmt.Errorf("failed to init redis: %w", err)
		}
		locker = redisClient
	}

	// 3. Recorder and notifier
	recorder := ingest.NewRecorder(events, tokenEvents)

	services := make([]notify.Service, 0, len(cfg.Notifier.Services))
	for _, svc := range cfg.Notifier.Services {
		id, err := uuid.Parse(svc.ID)
		if err != nil {
			return nil, fmt.Errorf("invalid service id %q: %w", svc.ID, err)
		}
		services = append(services, notify.Service{ID: id, CallbackURL: svc.CallbackURL})
	}

	notifier := notify.New(events, tokenEvents, locker, notify.NewHTTPSender(10*time.Second), notify.Config{
		Interval: cfg.Notifier.Interval,
		LeaseTTL: cfg.Notifier.LeaseTTL,
		Services: services,
	})

	// 4. Health server
	checks := make(map[string]health.Checker)
	if db != nil {
		checks["database"] = db
	}
	if redisClient != nil {
		checks["redis"] = redisClient
	}
	healthServer := health.NewServer(cfg.Port, checks)

	return &Service{
		cfg:          cfg,
		recorder:     recorder,
		notifier:     notifier,
		healthServer: healthServer,
		db:           db,
		redisClient:  redisClient,
		log:          log,
	}, nil
}

// Recorder exposes the transaction recorder for embedding callers.
func (s *Service) Recorder() *ingest.Recorder {
	return s.recorder
}

// Start launches the background loops.
func (s *Service) Start(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	go func() {
		s.log.Info("Health server listening", "port", s.cfg.Port)
		if err := s.healthServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error("Health server stopped", "error", err)
		}
	}()

	if s.db != nil {
		s.db.StartMetricsCollector(runCtx)
	}

	go s.notifier.Start(runCtx)

	return nil
}

// Stop shuts everything down gracefully.
func (s *Service) Stop(ctx context.Context) error {
	if s.cancel != nil {
		s.cancel()
	}

	if err := s.healthServer.Stop(ctx); err != nil {
		return fmt.Errorf("failed to stop health server: %w", err)
	}

	if s.redisClient != nil {
		if err := s.redisClient.Close(); err != nil {
			s.log.Warn("Failed to close redis client", "error", err)
		}
	}

	if s.db != nil {
		if err := s.db.Close(); err != nil {
			return fmt.Errorf("failed to close db: %w", err)
		}
	}

	return nil
}
