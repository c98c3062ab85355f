package commands

import (
	"context"
	"log/slog"
	"strings"
	"time"

	application "adbroker/contexts/ad-sales/media-buy-service/application"
	"adbroker/contexts/ad-sales/media-buy-service/domain/entities"
	domainerrors "adbroker/contexts/ad-sales/media-buy-service/domain/errors"
	"adbroker/contexts/ad-sales/media-buy-service/domain/targeting"
	"adbroker/contexts/ad-sales/media-buy-service/ports"
	"adbroker/internal/shared/events"

	"github.com/google/uuid"
)

// CreateMediaBuyCommand is the write-model input for buy creation.
type CreateMediaBuyCommand struct {
	Request  ports.CreateMediaBuyRequest
	Packages []entities.MediaPackage
	Start    time.Time
	End      time.Time
	Pricing  map[string]ports.PackagePricing
}

// CreateMediaBuyResult carries the adapter result plus any targeting
// violations. Violations and a non-nil error arrive together; the transport
// layer maps them to a structured rejection.
type CreateMediaBuyResult struct {
	Result     ports.CreateMediaBuyResult
	Violations []targeting.Violation
}

// UpdateMediaBuyCommand wraps the adapter update command.
type UpdateMediaBuyCommand struct {
	Command ports.UpdateMediaBuyCommand
}

// AddCreativesCommand uploads creatives to an existing buy.
type AddCreativesCommand struct {
	MediaBuyID string
	Assets     []ports.CreativeAsset
}

// MediaBuyUseCase orchestrates buy operations against one backend adapter.
// Targeting validation runs here, before any adapter call, so a buy with
// unsupported geo systems never reaches the backend.
type MediaBuyUseCase struct {
	Adapter  ports.AdServerAdapter
	Packages ports.PackageRepository
	Events   ports.EventPublisher
	Clock    ports.Clock
	Logger   *slog.Logger
}

func (uc MediaBuyUseCase) CreateMediaBuy(ctx context.Context, cmd CreateMediaBuyCommand) (CreateMediaBuyResult, error) {
	logger := application.ResolveLogger(uc.Logger)
	logger.Info("media buy create processing started",
		"event", "mediabuy_create_started",
		"module", "ad-sales/media-buy-service",
		"layer", "application",
		"buyer_ref", strings.TrimSpace(cmd.Request.BuyerRef),
		"po_number", strings.TrimSpace(cmd.Request.PONumber),
		"package_count", len(cmd.Packages),
	)

	if strings.TrimSpace(cmd.Request.BuyerRef) == "" {
		return CreateMediaBuyResult{}, domainerrors.ErrInvalidRequest
	}
	if len(cmd.Packages) == 0 {
		return CreateMediaBuyResult{}, domainerrors.ErrNoPackagesFound
	}
	if !cmd.End.After(cmd.Start) {
		return CreateMediaBuyResult{}, domainerrors.ErrInvalidRequest
	}

	supported := uc.Adapter.SupportedPricingModels()
	for packageID, pricing := range cmd.Pricing {
		if _, ok := supported[pricing.Model]; !ok {
			logger.Warn("unsupported pricing model",
				"event", "mediabuy_create_pricing_rejected",
				"module", "ad-sales/media-buy-service",
				"layer", "application",
				"package_id", packageID,
				"pricing_model", string(pricing.Model),
			)
			return CreateMediaBuyResult{}, domainerrors.ErrInvalidRequest
		}
	}

	violations := uc.Adapter.TargetingCapabilities().ValidateGeoSystems(cmd.Request.Targeting)
	if len(violations) > 0 {
		logger.Warn("targeting validation rejected the buy",
			"event", "mediabuy_create_targeting_rejected",
			"module", "ad-sales/media-buy-service",
			"layer", "application",
			"buyer_ref", strings.TrimSpace(cmd.Request.BuyerRef),
			"violation_count", len(violations),
		)
		return CreateMediaBuyResult{Violations: violations}, domainerrors.ErrTargetingRejected
	}

	result, err := uc.Adapter.CreateMediaBuy(ctx, cmd.Request, cmd.Packages, cmd.Start.UTC(), cmd.End.UTC(), cmd.Pricing)
	if err != nil {
		return CreateMediaBuyResult{}, err
	}

	now := uc.now()
	pausedByPackage := make(map[string]bool, len(result.Packages))
	for _, pkg := range result.Packages {
		pausedByPackage[pkg.PackageID] = pkg.Paused
	}

	rows := make([]entities.MediaPackage, 0, len(cmd.Packages))
	for _, pkg := range cmd.Packages {
		pkg.MediaBuyID = result.MediaBuyID.Encode()
		pkg.Config.Paused = pausedByPackage[pkg.PackageID]
		pkg.Config.PlatformLineItemID = result.PlatformLineItemIDs[pkg.PackageID]
		if pkg.CreatedAt.IsZero() {
			pkg.CreatedAt = now
		}
		pkg.UpdatedAt = now
		rows = append(rows, pkg)
	}
	if err := uc.Packages.SavePackages(ctx, rows); err != nil {
		logger.Error("persisting packages failed after backend creation",
			"event", "mediabuy_create_persist_failed",
			"module", "ad-sales/media-buy-service",
			"layer", "application",
			"media_buy_id", result.MediaBuyID.Encode(),
			"error", err.Error(),
		)
		return CreateMediaBuyResult{}, err
	}

	logger.Info("media buy created",
		"event", "mediabuy_created",
		"module", "ad-sales/media-buy-service",
		"layer", "application",
		"media_buy_id", result.MediaBuyID.Encode(),
		"workflow_step_id", result.WorkflowStepID,
		"package_count", len(result.Packages),
	)
	uc.publish(ctx, "media_buy.created", result.MediaBuyID.Encode(), map[string]any{
		"buyer_ref":        result.BuyerRef,
		"workflow_step_id": result.WorkflowStepID,
		"package_count":    len(result.Packages),
	})
	return CreateMediaBuyResult{Result: result}, nil
}

func (uc MediaBuyUseCase) UpdateMediaBuy(ctx context.Context, cmd UpdateMediaBuyCommand) (ports.UpdateMediaBuyResult, error) {
	logger := application.ResolveLogger(uc.Logger)
	if strings.TrimSpace(cmd.Command.MediaBuyID) == "" {
		return ports.UpdateMediaBuyResult{}, domainerrors.ErrInvalidRequest
	}
	if cmd.Command.Today.IsZero() {
		cmd.Command.Today = uc.now()
	}

	result, err := uc.Adapter.UpdateMediaBuy(ctx, cmd.Command)
	if err != nil {
		logger.Warn("media buy update failed",
			"event", "mediabuy_update_failed",
			"module", "ad-sales/media-buy-service",
			"layer", "application",
			"media_buy_id", cmd.Command.MediaBuyID,
			"action", string(cmd.Command.Action),
			"error", err.Error(),
		)
		return ports.UpdateMediaBuyResult{}, err
	}

	logger.Info("media buy updated",
		"event", "mediabuy_updated",
		"module", "ad-sales/media-buy-service",
		"layer", "application",
		"media_buy_id", cmd.Command.MediaBuyID,
		"action", string(cmd.Command.Action),
		"affected_packages", len(result.AffectedPackages),
	)
	uc.publish(ctx, "media_buy.updated", cmd.Command.MediaBuyID, map[string]any{
		"action":            string(cmd.Command.Action),
		"affected_packages": len(result.AffectedPackages),
	})
	return result, nil
}

func (uc MediaBuyUseCase) AddCreativeAssets(ctx context.Context, cmd AddCreativesCommand) ([]entities.AssetStatus, error) {
	if strings.TrimSpace(cmd.MediaBuyID) == "" || len(cmd.Assets) == 0 {
		return nil, domainerrors.ErrInvalidRequest
	}
	return uc.Adapter.AddCreativeAssets(ctx, cmd.MediaBuyID, cmd.Assets, uc.now())
}

func (uc MediaBuyUseCase) GetMediaBuyDelivery(ctx context.Context, mediaBuyID string, period entities.ReportingPeriod) (entities.DeliveryReport, error) {
	if strings.TrimSpace(mediaBuyID) == "" {
		return entities.DeliveryReport{}, domainerrors.ErrInvalidRequest
	}
	return uc.Adapter.GetMediaBuyDelivery(ctx, mediaBuyID, period, uc.now())
}

func (uc MediaBuyUseCase) CheckMediaBuyStatus(ctx context.Context, mediaBuyID string) (ports.MediaBuyStatusResult, error) {
	if strings.TrimSpace(mediaBuyID) == "" {
		return ports.MediaBuyStatusResult{}, domainerrors.ErrInvalidRequest
	}
	return uc.Adapter.CheckMediaBuyStatus(ctx, mediaBuyID, uc.now())
}

// publish is best-effort: event delivery never fails a committed operation.
func (uc MediaBuyUseCase) publish(ctx context.Context, eventType string, mediaBuyID string, payload map[string]any) {
	if uc.Events == nil {
		return
	}
	envelope := events.Envelope{
		EventID:        uuid.NewString(),
		EventType:      eventType,
		SourceService:  "media-buy-service",
		OccurredAtUTC:  uc.now(),
		EntityType:     "media_buy",
		EntityID:       mediaBuyID,
		PayloadVersion: 1,
		Payload:        payload,
	}
	if err := uc.Events.Publish(ctx, events.TopicMediaBuy, envelope); err != nil {
		application.ResolveLogger(uc.Logger).Warn("event publish failed",
			"event", "mediabuy_event_publish_failed",
			"module", "ad-sales/media-buy-service",
			"layer", "application",
			"event_type", eventType,
			"media_buy_id", mediaBuyID,
			"error", err.Error(),
		)
	}
}

func (uc MediaBuyUseCase) now() time.Time {
	now := time.Now().UTC()
	if uc.Clock != nil {
		now = uc.Clock.Now().UTC()
	}
	return now
}
