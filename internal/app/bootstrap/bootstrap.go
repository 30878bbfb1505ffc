package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	approvalengine "weldvault/contexts/document-approval/approval-engine"
	approvalevents "weldvault/contexts/document-approval/approval-engine/adapters/events"
	approvalpostgres "weldvault/contexts/document-approval/approval-engine/adapters/postgres"
	approvalworkers "weldvault/contexts/document-approval/approval-engine/application/workers"
	accesscontrol "weldvault/contexts/identity-access/access-control"
	accesspostgres "weldvault/contexts/identity-access/access-control/adapters/postgres"
	"weldvault/internal/platform/config"
	"weldvault/internal/platform/db"
	"weldvault/internal/platform/httpserver"
	"weldvault/internal/platform/messaging"
)

// Package bootstrap is the composition root.
// Keep construction/wiring here so module code stays framework-agnostic.

type APIApp struct {
	server   *httpserver.Server
	postgres *db.Postgres
	logger   *slog.Logger
}

type WorkerApp struct {
	postgres     *db.Postgres
	relay        approvalworkers.NotificationRelay
	pollInterval time.Duration
	logger       *slog.Logger
}

func BuildAPI() (*APIApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "api")
	if strings.TrimSpace(cfg.PostgresDSN) == "" {
		return nil, errors.New("POSTGRES_DSN is required")
	}

	pg, err := db.Connect(cfg.PostgresDSN)
	if err != nil {
		return nil, err
	}

	accessRepo := accesspostgres.NewRepository(pg.DB, logger)
	accessModule := accesscontrol.NewModule(accesscontrol.Dependencies{
		Directory:   accessRepo,
		Roles:       accessRepo,
		Clock:       accesspostgres.SystemClock{},
		IDGenerator: accesspostgres.UUIDGenerator{},
		Logger:      logger,
	})

	bus := messaging.NewBus(logger)
	approvalRepo := approvalpostgres.NewRepository(pg.DB, logger)
	approvalModule := approvalengine.NewModule(approvalengine.Dependencies{
		Workflows: approvalRepo,
		Instances: approvalRepo,
		History:   approvalRepo,
		Outbox:    approvalRepo,
		Directory: approvalRepo,
		Permissions: approvalPermissions{
			resolve:   accessModule.ResolvePermission,
			directory: accessRepo,
		},
		Publisher:        approvalevents.NewPublisher(bus, logger),
		Clock:            approvalpostgres.SystemClock{},
		IDGenerator:      approvalpostgres.UUIDGenerator{},
		OverdueThreshold: cfg.OverdueThreshold,
		RelayBatchSize:   cfg.NotificationBatchSize,
		Logger:           logger,
	})

	server := httpserver.New(accessModule, approvalModule, logger, normalizeAddr(cfg.HTTPPort))
	return &APIApp{
		server:   server,
		postgres: pg,
		logger:   logger,
	}, nil
}

func BuildWorker() (*WorkerApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "worker")
	if strings.TrimSpace(cfg.PostgresDSN) == "" {
		return nil, errors.New("POSTGRES_DSN is required")
	}

	pg, err := db.Connect(cfg.PostgresDSN)
	if err != nil {
		return nil, err
	}

	bus := messaging.NewBus(logger)
	approvalRepo := approvalpostgres.NewRepository(pg.DB, logger)
	return &WorkerApp{
		postgres: pg,
		relay: approvalworkers.NotificationRelay{
			Outbox:    approvalRepo,
			Publisher: approvalevents.NewPublisher(bus, logger),
			Clock:     approvalpostgres.SystemClock{},
			BatchSize: cfg.NotificationBatchSize,
			Logger:    logger,
		},
		pollInterval: cfg.NotificationPollInterval,
		logger:       logger,
	}, nil
}

func (a *APIApp) Run(_ context.Context) error {
	if a.logger != nil {
		a.logger.Info("api app started",
			"event", "bootstrap_api_started",
			"module", "internal/app/bootstrap",
			"layer", "platform",
		)
	}
	return a.server.Start()
}

func (a *APIApp) Close() error {
	if a.postgres != nil {
		return a.postgres.Close()
	}
	return nil
}

func (w *WorkerApp) Run(ctx context.Context) error {
	interval := w.pollInterval
	if interval <= 0 {
		interval = 5 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	w.logger.Info("worker app started",
		"event", "bootstrap_worker_started",
		"module", "internal/app/bootstrap",
		"layer", "platform",
		"poll_interval", interval.String(),
	)

	for {
		if err := w.relay.RunOnce(ctx); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func (w *WorkerApp) Close() error {
	if w.postgres != nil {
		return w.postgres.Close()
	}
	return nil
}

func normalizeAddr(port string) string {
	value := strings.TrimSpace(port)
	if value == "" {
		return ":8080"
	}
	if strings.HasPrefix(value, ":") {
		return value
	}
	return ":" + value
}
