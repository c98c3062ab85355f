// Package zonal adapts the uniform media buy contract onto a simple
// zone-based ad server.
//
// Entity mapping: media buy -> campaign, package -> placement set on a
// zone, creative -> advertisement, product -> zone configuration.
package zonal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"adbroker/contexts/ad-sales/media-buy-service/application/workflow"
	"adbroker/contexts/ad-sales/media-buy-service/domain/entities"
	domainerrors "adbroker/contexts/ad-sales/media-buy-service/domain/errors"
	"adbroker/contexts/ad-sales/media-buy-service/domain/targeting"
	"adbroker/contexts/ad-sales/media-buy-service/ports"
)

// BackendName tags zonal buy ids and principal mappings.
const BackendName = "zonal"

const creativeDeadlineWindow = 48 * time.Hour

type Dependencies struct {
	Connection ConnectionConfig
	Principal  entities.Principal
	TenantID   string
	DryRun     bool
	// Client may be injected for tests; when nil and not in dry-run mode a
	// real HTTP client is built from Connection.
	Client    Client
	Packages  ports.PackageRepository
	Workflows workflow.Manager
	Clock     ports.Clock
	Logger    *slog.Logger
	// InventoryTTL bounds the zone cache; zero means the package default.
	InventoryTTL time.Duration
}

// Adapter implements ports.AdServerAdapter for the zonal backend. It holds
// no cross-request state: backend identifiers live in package configs and
// are re-read from storage on every call.
type Adapter struct {
	connection   ConnectionConfig
	principal    entities.Principal
	tenantID     string
	dryRun       bool
	client       Client
	packages     ports.PackageRepository
	workflows    workflow.Manager
	clock        ports.Clock
	logger       *slog.Logger
	advertiserID string
	inventory    *inventoryCache
}

func NewAdapter(deps Dependencies) (*Adapter, error) {
	if err := deps.Connection.validate(deps.DryRun); err != nil {
		return nil, err
	}

	advertiserID, ok := deps.Principal.AdapterID(BackendName)
	if !ok {
		advertiserID = strings.TrimSpace(deps.Connection.DefaultAdvertiserID)
		if advertiserID == "" && !deps.DryRun {
			return nil, fmt.Errorf("principal %s: %w", deps.Principal.PrincipalID, domainerrors.ErrMissingAdvertiserID)
		}
	}

	client := deps.Client
	if client == nil && !deps.DryRun {
		client = NewHTTPClient(deps.Connection)
	}

	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	deps.Workflows.PlatformName = platformLabel

	inventoryTTL := deps.InventoryTTL
	if inventoryTTL <= 0 {
		inventoryTTL = defaultInventoryTTL
	}

	return &Adapter{
		connection:   deps.Connection,
		principal:    deps.Principal,
		tenantID:     deps.TenantID,
		dryRun:       deps.DryRun,
		client:       client,
		packages:     deps.Packages,
		workflows:    deps.Workflows,
		clock:        deps.Clock,
		logger:       logger,
		advertiserID: advertiserID,
		inventory:    newInventoryCache(inventoryTTL),
	}, nil
}

func (a *Adapter) Capabilities() ports.AdapterCapabilities {
	return ports.AdapterCapabilities{
		SupportsInventorySync:     true,
		SupportsInventoryProfiles: true,
		InventoryEntityLabel:      "Zones",
		SupportsCustomTargeting:   false,
		SupportsGeoTargeting:      true,
		SupportsDynamicProducts:   false,
		SupportedPricingModels:    []entities.PricingModel{entities.PricingCPM, entities.PricingFlatRate},
		SupportsWebhooks:          false,
		SupportsRealtimeReporting: true,
	}
}

func (a *Adapter) SupportedPricingModels() map[entities.PricingModel]struct{} {
	return map[entities.PricingModel]struct{}{
		entities.PricingCPM:      {},
		entities.PricingFlatRate: {},
	}
}

// TargetingCapabilities declares zonal's limited geo support. Targeting is
// primarily zone-based; only country geo is representable.
func (a *Adapter) TargetingCapabilities() targeting.Capabilities {
	return targeting.Capabilities{GeoCountries: true}
}

func (a *Adapter) CreateMediaBuy(
	ctx context.Context,
	req ports.CreateMediaBuyRequest,
	packages []entities.MediaPackage,
	start time.Time,
	end time.Time,
	pricing map[string]ports.PackagePricing,
) (ports.CreateMediaBuyResult, error) {
	a.logger.Info("creating media buy",
		"event", "zonal_create_media_buy_started",
		"module", "ad-sales/media-buy-service",
		"layer", "adapter",
		"principal_id", a.principal.PrincipalID,
		"advertiser_id", a.advertiserID,
		"po_number", req.PONumber,
		"dry_run", a.dryRun,
	)

	if len(packages) == 0 {
		return ports.CreateMediaBuyResult{}, domainerrors.NewAdapterError(
			domainerrors.CodeNoPackagesFound, "create_media_buy requires at least one package")
	}

	// Parse and validate each product's implementation config before any
	// backend mutation.
	configs := make(map[string]ImplementationConfig, len(packages))
	for _, pkg := range packages {
		cfg, err := ParseImplementationConfig(pkg.Implementation)
		if err != nil {
			return ports.CreateMediaBuyResult{}, domainerrors.NewAdapterErrorf(
				domainerrors.CodeInvalidProductSetup,
				"product %s has an invalid implementation config", pkg.ProductID,
			).WithDetails(map[string]any{"product_id": pkg.ProductID})
		}
		if len(cfg.ZoneIDs()) == 0 {
			return ports.CreateMediaBuyResult{}, domainerrors.NewAdapterErrorf(
				domainerrors.CodeNoZonesConfigured,
				"product %s has no zones configured", pkg.ProductID,
			).WithDetails(map[string]any{"product_id": pkg.ProductID})
		}
		configs[pkg.PackageID] = cfg
	}

	firstConfig := configs[packages[0].PackageID]
	mode := firstConfig.Mode()
	a.logger.Info("resolved automation mode",
		"event", "zonal_automation_mode_resolved",
		"module", "ad-sales/media-buy-service",
		"layer", "adapter",
		"automation_mode", string(mode),
	)

	buyID := a.placeholderBuyID(req.PONumber)
	deadline := a.now().Add(creativeDeadlineWindow)

	// Manual mode: no backend call at all. A creation workflow step tells a
	// human to create the campaign out of band; packages stay paused and the
	// buy id is a local placeholder until the real id is retrofitted.
	if mode == entities.AutomationManual {
		stepID := a.createManualCampaignStep(ctx, req, packages, start, end, buyID)
		return ports.CreateMediaBuyResult{
			BuyerRef:         req.BuyerRef,
			MediaBuyID:       buyID,
			CreativeDeadline: deadline,
			Packages:         packageResults(req.BuyerRef, packages, true),
			WorkflowStepID:   stepID,
		}, nil
	}

	campaignName := firstConfig.CampaignName(req.PONumber, packages[0].Name, a.principal.Name)
	campaignID := buyID.NativeID
	if a.dryRun {
		a.logger.Info("dry run: would create campaign",
			"event", "zonal_create_campaign_simulated",
			"module", "ad-sales/media-buy-service",
			"layer", "adapter",
			"campaign_name", campaignName,
		)
	} else {
		campaign, err := a.client.CreateCampaign(ctx, CreateCampaignInput{
			AdvertiserID: a.advertiserID,
			Name:         campaignName,
			StartDate:    start,
			EndDate:      end,
			Active:       mode == entities.AutomationAutomatic,
		})
		if err != nil {
			return ports.CreateMediaBuyResult{}, a.translateBackendError("create campaign", err)
		}
		campaignID = campaign.ID
		buyID = entities.BuyID{Backend: BackendName, NativeID: campaignID}
	}

	// Confirmation required: campaign exists (budgets and flights are real)
	// but stays inactive behind an activation approval.
	stepID := ""
	if mode == entities.AutomationConfirmationRequired {
		stepID = a.createActivationStep(ctx, buyID, packages)
	}

	lineItemIDs := make(map[string]string, len(packages))
	for _, pkg := range packages {
		lineItemIDs[pkg.PackageID] = campaignID
	}

	return ports.CreateMediaBuyResult{
		BuyerRef:            req.BuyerRef,
		MediaBuyID:          buyID,
		CreativeDeadline:    deadline,
		Packages:            packageResults(req.BuyerRef, packages, false),
		WorkflowStepID:      stepID,
		PlatformLineItemIDs: lineItemIDs,
	}, nil
}

func (a *Adapter) AddCreativeAssets(
	ctx context.Context,
	mediaBuyID string,
	assets []ports.CreativeAsset,
	today time.Time,
) ([]entities.AssetStatus, error) {
	pkgs, err := a.packages.ListPackagesByBuy(ctx, mediaBuyID)
	if err != nil {
		return nil, a.translateBackendError("load packages", err)
	}
	campaignID := effectiveCampaignID(mediaBuyID, pkgs)

	mode := entities.AutomationManual
	if len(pkgs) > 0 {
		if cfg, cfgErr := ParseImplementationConfig(pkgs[0].Implementation); cfgErr == nil {
			mode = cfg.Mode()
		}
	}

	statuses := make([]entities.AssetStatus, 0, len(assets))
	var createdAdIDs []string
	for i, asset := range assets {
		if a.dryRun {
			adID := fmt.Sprintf("dryrun-ad-%d", i+1)
			createdAdIDs = append(createdAdIDs, adID)
			statuses = append(statuses, entities.AssetStatus{CreativeID: asset.CreativeID, Status: entities.AssetApproved})
			continue
		}
		ad, err := a.client.CreateAdvertisement(ctx, CreateAdvertisementInput{
			AdvertiserID: a.advertiserID,
			Name:         asset.Name,
			Type:         asset.Format,
			MediaURL:     asset.MediaURL,
			ClickURL:     asset.ClickURL,
			Snippet:      asset.Snippet,
		})
		if err != nil {
			// Partial failure: record this asset and keep going.
			a.logger.Error("advertisement creation failed",
				"event", "zonal_create_advertisement_failed",
				"module", "ad-sales/media-buy-service",
				"layer", "adapter",
				"media_buy_id", mediaBuyID,
				"creative_id", asset.CreativeID,
				"error", err.Error(),
			)
			statuses = append(statuses, entities.AssetStatus{
				CreativeID: asset.CreativeID,
				Status:     entities.AssetFailed,
				Message:    "backend rejected the advertisement",
			})
			continue
		}
		createdAdIDs = append(createdAdIDs, ad.ID)
		statuses = append(statuses, entities.AssetStatus{CreativeID: asset.CreativeID, Status: entities.AssetApproved})
	}

	if len(createdAdIDs) == 0 {
		return statuses, nil
	}

	for _, pkg := range pkgs {
		cfg, cfgErr := ParseImplementationConfig(pkg.Implementation)
		if cfgErr != nil {
			continue
		}
		if !a.dryRun {
			for _, zoneID := range cfg.ZoneIDs() {
				for _, adID := range createdAdIDs {
					if _, err := a.client.CreatePlacement(ctx, CreatePlacementInput{
						CampaignID:      campaignID,
						ZoneID:          zoneID,
						AdvertisementID: adID,
					}); err != nil {
						a.logger.Error("placement creation failed",
							"event", "zonal_create_placement_failed",
							"module", "ad-sales/media-buy-service",
							"layer", "adapter",
							"zone_id", zoneID,
							"advertisement_id", adID,
							"error", err.Error(),
						)
					}
				}
			}
		}

		// Persist ad ids so pause/resume can reconstruct state from storage
		// in later requests.
		pkg.Config.MergeAdvertisementIDs(createdAdIDs)
		if err := a.packages.SavePackageConfig(ctx, mediaBuyID, pkg.PackageID, pkg.Config); err != nil {
			a.logger.Error("persisting advertisement ids failed",
				"event", "zonal_persist_ad_ids_failed",
				"module", "ad-sales/media-buy-service",
				"layer", "adapter",
				"media_buy_id", mediaBuyID,
				"package_id", pkg.PackageID,
				"error", err.Error(),
			)
		}
	}

	// Non-automatic buys gate new creatives behind a publisher review.
	if mode != entities.AutomationAutomatic {
		if stepID := a.createCreativeApprovalStep(ctx, mediaBuyID, assets, mode); stepID != "" {
			for i := range statuses {
				if statuses[i].Status == entities.AssetApproved {
					statuses[i].Status = entities.AssetPending
					statuses[i].Message = "pending publisher approval"
				}
			}
		}
	}

	return statuses, nil
}

// AssociateCreatives cannot run synchronously on zonal: placements require a
// campaign context. Every pair is reported as skipped rather than failing.
func (a *Adapter) AssociateCreatives(_ context.Context, lineItemIDs []string, creativeIDs []string) []entities.AssociationResult {
	results := make([]entities.AssociationResult, 0, len(lineItemIDs)*len(creativeIDs))
	for _, lineItemID := range lineItemIDs {
		for _, creativeID := range creativeIDs {
			if a.dryRun {
				results = append(results, entities.AssociationResult{
					LineItemID: lineItemID,
					CreativeID: creativeID,
					Status:     entities.AssociationSuccess,
				})
				continue
			}
			results = append(results, entities.AssociationResult{
				LineItemID: lineItemID,
				CreativeID: creativeID,
				Status:     entities.AssociationSkipped,
				Message:    "zonal requires campaign context for placements",
			})
		}
	}
	return results
}

// CheckMediaBuyStatus reconstructs the buy state from stored package
// configs: a paused buy with no retrofitted campaign id is still waiting on
// manual creation.
func (a *Adapter) CheckMediaBuyStatus(ctx context.Context, mediaBuyID string, _ time.Time) (ports.MediaBuyStatusResult, error) {
	pkgs, err := a.packages.ListPackagesByBuy(ctx, mediaBuyID)
	if err != nil {
		return ports.MediaBuyStatusResult{}, a.translateBackendError("load packages", err)
	}
	return ports.MediaBuyStatusResult{
		MediaBuyID: mediaBuyID,
		BuyerRef:   mediaBuyID,
		Status:     entities.ReconstructBuyStatus(pkgs),
	}, nil
}

func (a *Adapter) GetMediaBuyDelivery(
	_ context.Context,
	mediaBuyID string,
	period entities.ReportingPeriod,
	today time.Time,
) (entities.DeliveryReport, error) {
	if a.dryRun {
		daysElapsed := today.Sub(period.Start).Hours() / 24
		progress := daysElapsed / 14
		if progress > 1 {
			progress = 1
		}
		if progress < 0 {
			progress = 0
		}
		impressions := int64(100000 * progress * 0.95)
		spend := float64(impressions) * 10 / 1000 // $10 CPM
		return entities.DeliveryReport{
			MediaBuyID: mediaBuyID,
			Period:     period,
			Totals: entities.DeliveryTotals{
				Impressions: impressions,
				Spend:       spend,
				Clicks:      int64(float64(impressions) * 0.002),
				CTR:         0.2,
			},
			Currency: "USD",
		}, nil
	}

	// Realtime reporting aggregation lands with the reporting client; until
	// then the report is empty rather than fabricated.
	return entities.DeliveryReport{
		MediaBuyID: mediaBuyID,
		Period:     period,
		Currency:   "USD",
	}, nil
}

// UpdateMediaBuyPerformanceIndex is a permitted no-op: zonal has no
// performance index feature.
func (a *Adapter) UpdateMediaBuyPerformanceIndex(_ context.Context, mediaBuyID string, _ []entities.PackagePerformance) (bool, error) {
	a.logger.Info("performance index not supported; ignoring",
		"event", "zonal_performance_index_noop",
		"module", "ad-sales/media-buy-service",
		"layer", "adapter",
		"media_buy_id", mediaBuyID,
	)
	return true, nil
}

func (a *Adapter) UpdateMediaBuy(ctx context.Context, cmd ports.UpdateMediaBuyCommand) (ports.UpdateMediaBuyResult, error) {
	// Vocabulary guard runs before any database or backend access.
	if !ports.IsSupportedUpdateAction(cmd.Action) {
		return ports.UpdateMediaBuyResult{}, domainerrors.NewAdapterErrorf(
			domainerrors.CodeUnsupportedAction,
			"action %q not supported; supported: %v", cmd.Action, ports.SupportedUpdateActions())
	}

	a.logger.Info("updating media buy",
		"event", "zonal_update_media_buy_started",
		"module", "ad-sales/media-buy-service",
		"layer", "adapter",
		"media_buy_id", cmd.MediaBuyID,
		"action", string(cmd.Action),
		"package_id", cmd.PackageID,
	)

	switch cmd.Action {
	case ports.ActionPauseMediaBuy, ports.ActionResumeMediaBuy:
		return a.toggleMediaBuy(ctx, cmd)
	case ports.ActionPausePackage, ports.ActionResumePackage:
		return a.togglePackage(ctx, cmd)
	case ports.ActionUpdatePackageBudget:
		return a.updatePackageValue(ctx, cmd, false)
	default: // ActionUpdatePackageImpressions
		return a.updatePackageValue(ctx, cmd, true)
	}
}

// toggleMediaBuy pauses or resumes every advertisement across all packages
// of the buy. State is reconstructed from stored package configs.
func (a *Adapter) toggleMediaBuy(ctx context.Context, cmd ports.UpdateMediaBuyCommand) (ports.UpdateMediaBuyResult, error) {
	pause := cmd.Action == ports.ActionPauseMediaBuy

	pkgs, err := a.packages.ListPackagesByBuy(ctx, cmd.MediaBuyID)
	if err != nil {
		return ports.UpdateMediaBuyResult{}, a.translateBackendError("load packages", err)
	}
	if len(pkgs) == 0 {
		return ports.UpdateMediaBuyResult{}, domainerrors.NewAdapterErrorf(
			domainerrors.CodeNoPackagesFound, "no packages found for media buy %s", cmd.MediaBuyID)
	}

	seen := make(map[string]struct{})
	var adIDs []string
	for _, pkg := range pkgs {
		for _, adID := range pkg.Config.AdvertisementIDs {
			if _, ok := seen[adID]; ok {
				continue
			}
			seen[adID] = struct{}{}
			adIDs = append(adIDs, adID)
		}
	}

	if failed := a.toggleAdvertisements(ctx, adIDs, !pause); len(failed) > 0 {
		return ports.UpdateMediaBuyResult{}, domainerrors.NewAdapterErrorf(
			domainerrors.CodePartialFailure,
			"failed to update %d advertisements", len(failed),
		).WithDetails(map[string]any{"failed_advertisement_ids": failed})
	}

	affected := make([]entities.AffectedPackage, 0, len(pkgs))
	for _, pkg := range pkgs {
		pkg.Config.Paused = pause
		if err := a.packages.SavePackageConfig(ctx, cmd.MediaBuyID, pkg.PackageID, pkg.Config); err != nil {
			return ports.UpdateMediaBuyResult{}, a.translateBackendError("persist package state", err)
		}
		affected = append(affected, entities.AffectedPackage{
			PackageID: pkg.PackageID,
			BuyerRef:  firstNonEmpty(cmd.BuyerRef, pkg.PackageID),
			Paused:    pause,
		})
	}

	return ports.UpdateMediaBuyResult{
		MediaBuyID:         cmd.MediaBuyID,
		BuyerRef:           cmd.BuyerRef,
		AffectedPackages:   affected,
		ImplementationDate: cmd.Today,
	}, nil
}

func (a *Adapter) togglePackage(ctx context.Context, cmd ports.UpdateMediaBuyCommand) (ports.UpdateMediaBuyResult, error) {
	pause := cmd.Action == ports.ActionPausePackage
	if strings.TrimSpace(cmd.PackageID) == "" {
		return ports.UpdateMediaBuyResult{}, domainerrors.NewAdapterErrorf(
			domainerrors.CodeMissingPackageID, "package_id is required for %s", cmd.Action)
	}

	pkg, err := a.packages.GetPackage(ctx, cmd.MediaBuyID, cmd.PackageID)
	if err != nil {
		if errors.Is(err, domainerrors.ErrPackageNotFound) {
			return ports.UpdateMediaBuyResult{}, domainerrors.NewAdapterErrorf(
				domainerrors.CodePackageNotFound,
				"package %s not found in media buy %s", cmd.PackageID, cmd.MediaBuyID)
		}
		return ports.UpdateMediaBuyResult{}, a.translateBackendError("load package", err)
	}

	if failed := a.toggleAdvertisements(ctx, pkg.Config.AdvertisementIDs, !pause); len(failed) > 0 {
		return ports.UpdateMediaBuyResult{}, domainerrors.NewAdapterErrorf(
			domainerrors.CodeAPIUpdateFailed,
			"failed to update %d advertisements", len(failed),
		).WithDetails(map[string]any{"failed_advertisement_ids": failed})
	}

	pkg.Config.Paused = pause
	if err := a.packages.SavePackageConfig(ctx, cmd.MediaBuyID, pkg.PackageID, pkg.Config); err != nil {
		return ports.UpdateMediaBuyResult{}, a.translateBackendError("persist package state", err)
	}

	return ports.UpdateMediaBuyResult{
		MediaBuyID: cmd.MediaBuyID,
		BuyerRef:   cmd.BuyerRef,
		AffectedPackages: []entities.AffectedPackage{{
			PackageID: cmd.PackageID,
			BuyerRef:  cmd.BuyerRef,
			Paused:    pause,
		}},
		ImplementationDate: cmd.Today,
	}, nil
}

// updatePackageValue persists a budget or impression goal change. Zonal has
// no budget API, so the value lives in the package config only.
func (a *Adapter) updatePackageValue(ctx context.Context, cmd ports.UpdateMediaBuyCommand, impressions bool) (ports.UpdateMediaBuyResult, error) {
	if strings.TrimSpace(cmd.PackageID) == "" {
		return ports.UpdateMediaBuyResult{}, domainerrors.NewAdapterErrorf(
			domainerrors.CodeMissingPackageID, "package_id is required for %s", cmd.Action)
	}
	if cmd.Budget == nil {
		code := domainerrors.CodeMissingBudget
		field := "budget"
		if impressions {
			code = domainerrors.CodeMissingImpressions
			field = "impressions"
		}
		return ports.UpdateMediaBuyResult{}, domainerrors.NewAdapterErrorf(
			code, "%s is required for %s", field, cmd.Action)
	}

	pkg, err := a.packages.GetPackage(ctx, cmd.MediaBuyID, cmd.PackageID)
	if err != nil {
		if errors.Is(err, domainerrors.ErrPackageNotFound) {
			return ports.UpdateMediaBuyResult{}, domainerrors.NewAdapterErrorf(
				domainerrors.CodePackageNotFound, "package %s not found", cmd.PackageID)
		}
		return ports.UpdateMediaBuyResult{}, a.translateBackendError("load package", err)
	}

	changes := map[string]any{}
	if impressions {
		pkg.Config.Impressions = *cmd.Budget
		changes["impressions"] = *cmd.Budget
	} else {
		pkg.Config.Budget = float64(*cmd.Budget)
		changes["budget"] = *cmd.Budget
	}
	if err := a.packages.SavePackageConfig(ctx, cmd.MediaBuyID, cmd.PackageID, pkg.Config); err != nil {
		return ports.UpdateMediaBuyResult{}, a.translateBackendError("persist package state", err)
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

// toggleAdvertisements flips the active flag on each advertisement and
// returns the ids that failed so retries can be scoped narrowly.
func (a *Adapter) toggleAdvertisements(ctx context.Context, adIDs []string, active bool) []string {
	if a.dryRun || a.client == nil || len(adIDs) == 0 {
		return nil
	}
	var failed []string
	for _, adID := range adIDs {
		if err := a.client.SetAdvertisementActive(ctx, a.advertiserID, adID, active); err != nil {
			a.logger.Error("advertisement toggle failed",
				"event", "zonal_toggle_advertisement_failed",
				"module", "ad-sales/media-buy-service",
				"layer", "adapter",
				"advertisement_id", adID,
				"active", active,
				"error", err.Error(),
			)
			failed = append(failed, adID)
		}
	}
	return failed
}

// translateBackendError maps any backend/storage failure into the uniform
// error shape. Backend-specific error types never escape the adapter.
func (a *Adapter) translateBackendError(operation string, err error) error {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return domainerrors.NewAdapterErrorf(
			domainerrors.CodeBackendUnavailable, "%s failed against the zonal backend", operation,
		).WithDetails(map[string]any{"status_code": apiErr.StatusCode})
	}
	return domainerrors.NewAdapterErrorf(domainerrors.CodeAPIUpdateFailed, "%s failed", operation)
}

// effectiveCampaignID resolves the backend campaign for a buy. Manual-mode
// buys keep their placeholder wire id; the real campaign id arrives later
// through the creation approval and lives on every package config, so
// storage wins over the id parsed from the wire.
func effectiveCampaignID(mediaBuyID string, pkgs []entities.MediaPackage) string {
	for _, pkg := range pkgs {
		if id := strings.TrimSpace(pkg.Config.PlatformLineItemID); id != "" {
			return id
		}
	}
	return entities.ParseBuyID(BackendName, mediaBuyID).NativeID
}

func (a *Adapter) placeholderBuyID(poNumber string) entities.BuyID {
	native := strings.TrimSpace(poNumber)
	if native == "" {
		native = strconv.FormatInt(a.now().Unix(), 10)
	}
	return entities.BuyID{Backend: BackendName, NativeID: native}
}

func (a *Adapter) now() time.Time {
	if a.clock != nil {
		return a.clock.Now().UTC()
	}
	return time.Now().UTC()
}

func packageResults(buyerRef string, packages []entities.MediaPackage, paused bool) []ports.PackageResult {
	results := make([]ports.PackageResult, 0, len(packages))
	for _, pkg := range packages {
		results = append(results, ports.PackageResult{
			PackageID: pkg.PackageID,
			BuyerRef:  firstNonEmpty(pkg.BuyerRef, buyerRef, pkg.PackageID),
			Paused:    paused,
		})
	}
	return results
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if strings.TrimSpace(value) != "" {
			return value
		}
	}
	return ""
}

var _ ports.AdServerAdapter = (*Adapter)(nil)
