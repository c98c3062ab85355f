// Package mock is a simulation backend. It accepts every buy, fabricates
// plausible delivery and never talks to a network. Used for buyer onboarding
// and end-to-end rehearsals.
package mock

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"adbroker/contexts/ad-sales/media-buy-service/application/workflow"
	"adbroker/contexts/ad-sales/media-buy-service/domain/entities"
	domainerrors "adbroker/contexts/ad-sales/media-buy-service/domain/errors"
	"adbroker/contexts/ad-sales/media-buy-service/domain/targeting"
	"adbroker/contexts/ad-sales/media-buy-service/ports"
)

const BackendName = "mock"

type Dependencies struct {
	Principal entities.Principal
	Packages  ports.PackageRepository
	Workflows workflow.Manager
	Clock     ports.Clock
	Logger    *slog.Logger
}

// Adapter simulates an ad server. Buys are identified by generated ids and
// all state lives in the package repository.
type Adapter struct {
	principal entities.Principal
	packages  ports.PackageRepository
	workflows workflow.Manager
	clock     ports.Clock
	logger    *slog.Logger
}

func NewAdapter(deps Dependencies) *Adapter {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	deps.Workflows.PlatformName = "Mock"
	return &Adapter{
		principal: deps.Principal,
		packages:  deps.Packages,
		workflows: deps.Workflows,
		clock:     deps.Clock,
		logger:    logger,
	}
}

func (a *Adapter) Capabilities() ports.AdapterCapabilities {
	return ports.AdapterCapabilities{
		SupportsInventorySync:     false,
		SupportsInventoryProfiles: false,
		InventoryEntityLabel:      "Placements",
		SupportsCustomTargeting:   true,
		SupportsGeoTargeting:      true,
		SupportsDynamicProducts:   true,
		SupportedPricingModels: []entities.PricingModel{
			entities.PricingCPM, entities.PricingCPCV, entities.PricingCPP,
			entities.PricingCPC, entities.PricingCPV, entities.PricingFlatRate,
		},
		SupportsWebhooks:          false,
		SupportsRealtimeReporting: true,
	}
}

func (a *Adapter) SupportedPricingModels() map[entities.PricingModel]struct{} {
	return map[entities.PricingModel]struct{}{
		entities.PricingCPM:      {},
		entities.PricingCPCV:     {},
		entities.PricingCPP:      {},
		entities.PricingCPC:      {},
		entities.PricingCPV:      {},
		entities.PricingFlatRate: {},
	}
}

// TargetingCapabilities accepts every geo system the broker knows about, so
// buyer requests never fail targeting validation against the mock.
func (a *Adapter) TargetingCapabilities() targeting.Capabilities {
	return targeting.Capabilities{
		GeoCountries:  true,
		GeoRegions:    true,
		NielsenDMA:    true,
		EurostatNUTS2: true,
		UKITL1:        true,
		UKITL2:        true,
		USZip:         true,
		USZipPlusFour: true,
		CAFSA:         true,
		CAFull:        true,
		GBOutward:     true,
		GBFull:        true,
		DEPLZ:         true,
		FRCodePostal:  true,
		AUPostcode:    true,
	}
}

func (a *Adapter) CreateMediaBuy(
	ctx context.Context,
	req ports.CreateMediaBuyRequest,
	packages []entities.MediaPackage,
	start time.Time,
	end time.Time,
	_ map[string]ports.PackagePricing,
) (ports.CreateMediaBuyResult, error) {
	if len(packages) == 0 {
		return ports.CreateMediaBuyResult{}, domainerrors.NewAdapterError(
			domainerrors.CodeNoPackagesFound, "create_media_buy requires at least one package")
	}

	buyID := entities.BuyID{
		Backend:  BackendName,
		NativeID: strings.ReplaceAll(uuid.NewString(), "-", "")[:12],
	}
	mode := a.resolveMode(packages[0].Implementation)

	a.logger.Info("simulating media buy creation",
		"event", "mock_create_media_buy",
		"module", "ad-sales/media-buy-service",
		"layer", "adapter",
		"media_buy_id", buyID.Encode(),
		"automation_mode", string(mode),
		"package_count", len(packages),
	)

	stepID := ""
	paused := false
	if mode == entities.AutomationManual {
		paused = true
		stepID = a.workflows.CreateWorkflowStep(ctx, workflow.CreateStepInput{
			StepType:     entities.StepTypeCreation,
			ToolName:     "create_media_buy",
			ObjectType:   "media_buy",
			ObjectID:     buyID.Encode(),
			ObjectAction: entities.ObjectActionCreate,
			StepPrefix:   "c",
			ActionDetails: map[string]any{
				"action_type":     "create_campaign",
				"platform":        "Mock",
				"automation_mode": string(mode),
				"media_buy_id":    buyID.Encode(),
				"packages":        workflow.PackagesSummary(packages),
				"instructions":    []string{"Confirm the simulated order in the admin dashboard"},
			},
		})
	} else if mode == entities.AutomationConfirmationRequired {
		stepID = a.workflows.CreateWorkflowStep(ctx, workflow.CreateStepInput{
			StepType:     entities.StepTypeApproval,
			ToolName:     "activate_media_buy",
			ObjectType:   "media_buy",
			ObjectID:     buyID.Encode(),
			ObjectAction: entities.ObjectActionActivate,
			StepPrefix:   "a",
			ActionDetails: map[string]any{
				"action_type":     "activate_campaign",
				"platform":        "Mock",
				"automation_mode": string(mode),
				"media_buy_id":    buyID.Encode(),
				"packages":        workflow.PackagesSummary(packages),
				"instructions":    []string{"Approve the simulated order to activate it"},
			},
		})
	}

	results := make([]ports.PackageResult, 0, len(packages))
	lineItemIDs := make(map[string]string, len(packages))
	for _, pkg := range packages {
		results = append(results, ports.PackageResult{
			PackageID: pkg.PackageID,
			BuyerRef:  pkg.BuyerRef,
			Paused:    paused,
		})
		// Manual buys have no backend entity yet; the id is retrofitted
		// when a human completes the creation step.
		if mode != entities.AutomationManual {
			lineItemIDs[pkg.PackageID] = "mock-li-" + pkg.PackageID
		}
	}

	return ports.CreateMediaBuyResult{
		BuyerRef:            req.BuyerRef,
		MediaBuyID:          buyID,
		CreativeDeadline:    a.now().Add(48 * time.Hour),
		Packages:            results,
		WorkflowStepID:      stepID,
		PlatformLineItemIDs: lineItemIDs,
	}, nil
}

func (a *Adapter) AddCreativeAssets(_ context.Context, mediaBuyID string, assets []ports.CreativeAsset, _ time.Time) ([]entities.AssetStatus, error) {
	statuses := make([]entities.AssetStatus, 0, len(assets))
	for _, asset := range assets {
		statuses = append(statuses, entities.AssetStatus{
			CreativeID: asset.CreativeID,
			Status:     entities.AssetApproved,
		})
	}
	a.logger.Info("simulated creative upload",
		"event", "mock_add_creative_assets",
		"module", "ad-sales/media-buy-service",
		"layer", "adapter",
		"media_buy_id", mediaBuyID,
		"asset_count", len(assets),
	)
	return statuses, nil
}

func (a *Adapter) AssociateCreatives(_ context.Context, lineItemIDs []string, creativeIDs []string) []entities.AssociationResult {
	results := make([]entities.AssociationResult, 0, len(lineItemIDs)*len(creativeIDs))
	for _, lineItemID := range lineItemIDs {
		for _, creativeID := range creativeIDs {
			results = append(results, entities.AssociationResult{
				LineItemID: lineItemID,
				CreativeID: creativeID,
				Status:     entities.AssociationSuccess,
			})
		}
	}
	return results
}

func (a *Adapter) CheckMediaBuyStatus(ctx context.Context, mediaBuyID string, _ time.Time) (ports.MediaBuyStatusResult, error) {
	pkgs, err := a.packages.ListPackagesByBuy(ctx, mediaBuyID)
	if err != nil {
		return ports.MediaBuyStatusResult{}, err
	}
	return ports.MediaBuyStatusResult{
		MediaBuyID: mediaBuyID,
		BuyerRef:   mediaBuyID,
		Status:     entities.ReconstructBuyStatus(pkgs),
	}, nil
}

// GetMediaBuyDelivery fabricates delivery that ramps linearly over a
// two-week flight and plateaus slightly under goal.
func (a *Adapter) GetMediaBuyDelivery(_ context.Context, mediaBuyID string, period entities.ReportingPeriod, today time.Time) (entities.DeliveryReport, error) {
	progress := today.Sub(period.Start).Hours() / 24 / 14
	if progress > 1 {
		progress = 1
	}
	if progress < 0 {
		progress = 0
	}
	impressions := int64(100000 * progress * 0.95)
	return entities.DeliveryReport{
		MediaBuyID: mediaBuyID,
		Period:     period,
		Totals: entities.DeliveryTotals{
			Impressions: impressions,
			Spend:       float64(impressions) * 10 / 1000,
			Clicks:      int64(float64(impressions) * 0.002),
			CTR:         0.2,
		},
		Currency: "USD",
	}, nil
}

func (a *Adapter) UpdateMediaBuyPerformanceIndex(_ context.Context, _ string, _ []entities.PackagePerformance) (bool, error) {
	return true, nil
}

func (a *Adapter) UpdateMediaBuy(ctx context.Context, cmd ports.UpdateMediaBuyCommand) (ports.UpdateMediaBuyResult, error) {
	if !ports.IsSupportedUpdateAction(cmd.Action) {
		return ports.UpdateMediaBuyResult{}, domainerrors.NewAdapterErrorf(
			domainerrors.CodeUnsupportedAction,
			"action %q not supported; supported: %v", cmd.Action, ports.SupportedUpdateActions())
	}

	switch cmd.Action {
	case ports.ActionPauseMediaBuy, ports.ActionResumeMediaBuy:
		pause := cmd.Action == ports.ActionPauseMediaBuy
		pkgs, err := a.packages.ListPackagesByBuy(ctx, cmd.MediaBuyID)
		if err != nil {
			return ports.UpdateMediaBuyResult{}, err
		}
		if len(pkgs) == 0 {
			return ports.UpdateMediaBuyResult{}, domainerrors.NewAdapterErrorf(
				domainerrors.CodeNoPackagesFound, "no packages found for media buy %s", cmd.MediaBuyID)
		}
		affected := make([]entities.AffectedPackage, 0, len(pkgs))
		for _, pkg := range pkgs {
			pkg.Config.Paused = pause
			if err := a.packages.SavePackageConfig(ctx, cmd.MediaBuyID, pkg.PackageID, pkg.Config); err != nil {
				return ports.UpdateMediaBuyResult{}, err
			}
			affected = append(affected, entities.AffectedPackage{
				PackageID: pkg.PackageID,
				BuyerRef:  pkg.BuyerRef,
				Paused:    pause,
			})
		}
		return ports.UpdateMediaBuyResult{
			MediaBuyID:         cmd.MediaBuyID,
			BuyerRef:           cmd.BuyerRef,
			AffectedPackages:   affected,
			ImplementationDate: cmd.Today,
		}, nil
	default:
		if strings.TrimSpace(cmd.PackageID) == "" {
			return ports.UpdateMediaBuyResult{}, domainerrors.NewAdapterErrorf(
				domainerrors.CodeMissingPackageID, "package_id is required for %s", cmd.Action)
		}
		pkg, err := a.packages.GetPackage(ctx, cmd.MediaBuyID, cmd.PackageID)
		if err != nil {
			return ports.UpdateMediaBuyResult{}, err
		}
		changes := map[string]any{}
		switch cmd.Action {
		case ports.ActionPausePackage:
			pkg.Config.Paused = true
		case ports.ActionResumePackage:
			pkg.Config.Paused = false
		case ports.ActionUpdatePackageBudget:
			if cmd.Budget == nil {
				return ports.UpdateMediaBuyResult{}, domainerrors.NewAdapterError(
					domainerrors.CodeMissingBudget, "budget is required for update_package_budget")
			}
			pkg.Config.Budget = float64(*cmd.Budget)
			changes["budget"] = *cmd.Budget
		case ports.ActionUpdatePackageImpressions:
			if cmd.Budget == nil {
				return ports.UpdateMediaBuyResult{}, domainerrors.NewAdapterError(
					domainerrors.CodeMissingImpressions, "impressions is required for update_package_impressions")
			}
			pkg.Config.Impressions = *cmd.Budget
			changes["impressions"] = *cmd.Budget
		}
		if err := a.packages.SavePackageConfig(ctx, cmd.MediaBuyID, cmd.PackageID, pkg.Config); err != nil {
			return ports.UpdateMediaBuyResult{}, err
		}
		return ports.UpdateMediaBuyResult{
			MediaBuyID: cmd.MediaBuyID,
			BuyerRef:   cmd.BuyerRef,
			AffectedPackages: []entities.AffectedPackage{{
				PackageID:      cmd.PackageID,
				BuyerRef:       cmd.BuyerRef,
				Paused:         pkg.Config.Paused,
				ChangesApplied: changes,
			}},
			ImplementationDate: cmd.Today,
		}, nil
	}
}

func (a *Adapter) resolveMode(raw json.RawMessage) entities.AutomationMode {
	var cfg struct {
		AutomationMode string `json:"automation_mode"`
	}
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &cfg)
	}
	return entities.NormalizeAutomationMode(cfg.AutomationMode)
}

func (a *Adapter) now() time.Time {
	if a.clock != nil {
		return a.clock.Now().UTC()
	}
	return time.Now().UTC()
}

var _ ports.AdServerAdapter = (*Adapter)(nil)
