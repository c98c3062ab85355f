// Package mediabuyservice wires the media buy broker: one backend adapter,
// the workflow manager and the HTTP-facing handler.
package mediabuyservice

import (
	"log/slog"

	httpadapter "adbroker/contexts/ad-sales/media-buy-service/adapters/http"
	memoryadapter "adbroker/contexts/ad-sales/media-buy-service/adapters/memory"
	mockadapter "adbroker/contexts/ad-sales/media-buy-service/adapters/mock"
	"adbroker/contexts/ad-sales/media-buy-service/application/commands"
	"adbroker/contexts/ad-sales/media-buy-service/application/queries"
	"adbroker/contexts/ad-sales/media-buy-service/application/workflow"
	"adbroker/contexts/ad-sales/media-buy-service/domain/entities"
	"adbroker/contexts/ad-sales/media-buy-service/ports"
)

type Module struct {
	Handler httpadapter.Handler
	Store   *memoryadapter.Store
}

type Dependencies struct {
	Adapter   ports.AdServerAdapter
	Packages  ports.PackageRepository
	Workflows ports.WorkflowRepository
	Events    ports.EventPublisher
	Clock     ports.Clock
	Logger    *slog.Logger
}

func NewModule(deps Dependencies) Module {
	buyUseCase := commands.MediaBuyUseCase{
		Adapter:  deps.Adapter,
		Packages: deps.Packages,
		Events:   deps.Events,
		Clock:    deps.Clock,
		Logger:   deps.Logger,
	}
	stepUseCase := commands.WorkflowStepUseCase{
		Workflows: deps.Workflows,
		Packages:  deps.Packages,
		Clock:     deps.Clock,
		Logger:    deps.Logger,
	}
	return Module{
		Handler: httpadapter.Handler{
			Buys:      buyUseCase,
			Steps:     stepUseCase,
			Workflows: queries.WorkflowQuery{Workflows: deps.Workflows, Logger: deps.Logger},
			Packages:  queries.PackageQuery{Packages: deps.Packages},
			Logger:    deps.Logger,
		},
	}
}

// NewInMemoryModule wires the mock backend against the memory store. Used by
// tests and local runs without Postgres or a real ad server.
func NewInMemoryModule(principal entities.Principal, tenantID string, logger *slog.Logger) Module {
	store := memoryadapter.NewStore()
	adapter := mockadapter.NewAdapter(mockadapter.Dependencies{
		Principal: principal,
		Packages:  store,
		Workflows: workflow.Manager{
			Repo:      store,
			Tenants:   store,
			TenantID:  tenantID,
			Principal: principal,
			Logger:    logger,
		},
		Logger: logger,
	})
	module := NewModule(Dependencies{
		Adapter:   adapter,
		Packages:  store,
		Workflows: store,
		Logger:    logger,
	})
	module.Store = store
	return module
}
