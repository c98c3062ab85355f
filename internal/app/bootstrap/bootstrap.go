package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	mediabuyservice "adbroker/contexts/ad-sales/media-buy-service"
	mockadapter "adbroker/contexts/ad-sales/media-buy-service/adapters/mock"
	"adbroker/contexts/ad-sales/media-buy-service/adapters/registry"
	postgresadapter "adbroker/contexts/ad-sales/media-buy-service/adapters/postgres"
	slackadapter "adbroker/contexts/ad-sales/media-buy-service/adapters/slack"
	zonaladapter "adbroker/contexts/ad-sales/media-buy-service/adapters/zonal"
	"adbroker/contexts/ad-sales/media-buy-service/application/workflow"
	"adbroker/contexts/ad-sales/media-buy-service/domain/entities"
	"adbroker/contexts/ad-sales/media-buy-service/ports"
	"adbroker/internal/platform/config"
	"adbroker/internal/platform/db"
	"adbroker/internal/platform/httpserver"
	"adbroker/internal/platform/messaging"
)

// Package bootstrap is the composition root.
// Keep construction/wiring here so module code stays framework-agnostic.

type APIApp struct {
	server   *httpserver.Server
	postgres *db.Postgres
	bus      *messaging.Kafka
	logger   *slog.Logger
}

func BuildAPI() (*APIApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "api")

	principal := entities.Principal{
		PrincipalID: cfg.PrincipalID,
		Name:        cfg.PrincipalName,
		AdapterIDs:  map[string]string{},
	}
	if strings.TrimSpace(cfg.ZonalDefaultAdvertiserID) != "" {
		principal.AdapterIDs[zonaladapter.BackendName] = cfg.ZonalDefaultAdvertiserID
	}

	bus, err := messaging.NewKafka(cfg.KafkaBrokers, logger)
	if err != nil {
		return nil, err
	}

	// Local runs without Postgres fall back to the in-memory wiring with the
	// mock backend.
	if strings.TrimSpace(cfg.PostgresDSN) == "" {
		if cfg.Backend != mockadapter.BackendName && !cfg.DryRun {
			return nil, errors.New("POSTGRES_DSN is required for non-mock backends")
		}
		module := mediabuyservice.NewInMemoryModule(principal, cfg.TenantID, logger)
		module.Handler.Buys.Events = bus
		server := httpserver.New(module, logger, normalizeAddr(cfg.HTTPPort))
		return &APIApp{server: server, bus: bus, logger: logger}, nil
	}

	pg, err := db.Connect(cfg.PostgresDSN)
	if err != nil {
		return nil, err
	}

	repo := postgresadapter.NewRepository(pg.DB, logger)
	tenants := tenantConfigWithFallback{inner: repo, fallback: cfg.SlackWebhookURL}
	manager := workflow.Manager{
		Repo:      repo,
		Tenants:   tenants,
		Notifier:  slackadapter.NewNotifier(),
		TenantID:  cfg.TenantID,
		Principal: principal,
		Clock:     postgresadapter.SystemClock{},
		Logger:    logger,
	}

	adapter, err := buildAdapter(cfg, principal, repo, manager, logger)
	if err != nil {
		_ = pg.Close()
		return nil, err
	}

	module := mediabuyservice.NewModule(mediabuyservice.Dependencies{
		Adapter:   adapter,
		Packages:  repo,
		Workflows: repo,
		Events:    bus,
		Clock:     postgresadapter.SystemClock{},
		Logger:    logger,
	})

	server := httpserver.New(module, logger, normalizeAddr(cfg.HTTPPort))
	return &APIApp{
		server:   server,
		postgres: pg,
		bus:      bus,
		logger:   logger,
	}, nil
}

// buildAdapter resolves the configured backend through the adapter registry.
func buildAdapter(
	cfg config.Config,
	principal entities.Principal,
	repo *postgresadapter.Repository,
	manager workflow.Manager,
	logger *slog.Logger,
) (ports.AdServerAdapter, error) {
	backends, err := registry.New(
		registry.Entry{
			Tag:         zonaladapter.BackendName,
			DisplayName: "Zonal",
			BuyIDPrefix: zonaladapter.BackendName,
			New: func(bc registry.BuildContext) (ports.AdServerAdapter, error) {
				return zonaladapter.NewAdapter(zonaladapter.Dependencies{
					Connection: zonaladapter.ConnectionConfig{
						NetworkID:           stringValue(bc.Connection, "network_id"),
						APIKey:              stringValue(bc.Connection, "api_key"),
						BaseURL:             stringValue(bc.Connection, "base_url"),
						DefaultAdvertiserID: stringValue(bc.Connection, "default_advertiser_id"),
					},
					Principal:    principal,
					TenantID:     bc.TenantID,
					DryRun:       bc.DryRun,
					Packages:     repo,
					Workflows:    manager,
					Clock:        postgresadapter.SystemClock{},
					Logger:       logger,
					InventoryTTL: cfg.InventoryCacheTTL,
				})
			},
		},
		registry.Entry{
			Tag:         mockadapter.BackendName,
			DisplayName: "Mock",
			BuyIDPrefix: mockadapter.BackendName,
			New: func(bc registry.BuildContext) (ports.AdServerAdapter, error) {
				return mockadapter.NewAdapter(mockadapter.Dependencies{
					Principal: principal,
					Packages:  repo,
					Workflows: manager,
					Clock:     postgresadapter.SystemClock{},
					Logger:    logger,
				}), nil
			},
		},
	)
	if err != nil {
		return nil, err
	}

	return backends.Build(cfg.Backend, registry.BuildContext{
		TenantID: cfg.TenantID,
		Principal: registry.PrincipalRef{
			PrincipalID: principal.PrincipalID,
			Name:        principal.Name,
			AdapterIDs:  principal.AdapterIDs,
		},
		Connection: map[string]any{
			"network_id":            cfg.ZonalNetworkID,
			"api_key":               cfg.ZonalAPIKey,
			"base_url":              cfg.ZonalBaseURL,
			"default_advertiser_id": cfg.ZonalDefaultAdvertiserID,
		},
		DryRun: cfg.DryRun,
	})
}

func stringValue(connection map[string]any, key string) string {
	value, _ := connection[key].(string)
	return value
}

func (a *APIApp) Run(ctx context.Context) error {
	if a.bus != nil {
		go messaging.LogMediaBuyEvents(ctx, a.bus, a.logger)
	}
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

// tenantConfigWithFallback serves the process-level webhook when the tenant
// row has none configured.
type tenantConfigWithFallback struct {
	inner    ports.TenantConfig
	fallback string
}

func (t tenantConfigWithFallback) NotificationWebhook(ctx context.Context, tenantID string) (string, error) {
	webhookURL, err := t.inner.NotificationWebhook(ctx, tenantID)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(webhookURL) == "" {
		return strings.TrimSpace(t.fallback), nil
	}
	return webhookURL, nil
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
