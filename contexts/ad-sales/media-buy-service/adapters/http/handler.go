package httpadapter

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"adbroker/contexts/ad-sales/media-buy-service/application/commands"
	"adbroker/contexts/ad-sales/media-buy-service/application/queries"
	"adbroker/contexts/ad-sales/media-buy-service/domain/entities"
	domainerrors "adbroker/contexts/ad-sales/media-buy-service/domain/errors"
	"adbroker/contexts/ad-sales/media-buy-service/domain/targeting"
	"adbroker/contexts/ad-sales/media-buy-service/ports"
	httptransport "adbroker/contexts/ad-sales/media-buy-service/transport/http"
)

type Handler struct {
	Buys      commands.MediaBuyUseCase
	Steps     commands.WorkflowStepUseCase
	Workflows queries.WorkflowQuery
	Packages  queries.PackageQuery
	Logger    *slog.Logger
}

// TargetingRejection pairs the transport error body with the violations so
// the server can render a structured 422.
type TargetingRejection struct {
	Violations []targeting.Violation
}

func (e *TargetingRejection) Error() string {
	return "targeting rejected"
}

func (h Handler) CreateMediaBuyHandler(ctx context.Context, req httptransport.CreateMediaBuyRequest) (httptransport.CreateMediaBuyResponse, error) {
	start, err := time.Parse(time.RFC3339, req.StartTime)
	if err != nil {
		return httptransport.CreateMediaBuyResponse{}, domainerrors.ErrInvalidRequest
	}
	end, err := time.Parse(time.RFC3339, req.EndTime)
	if err != nil {
		return httptransport.CreateMediaBuyResponse{}, domainerrors.ErrInvalidRequest
	}

	packages := make([]entities.MediaPackage, 0, len(req.Packages))
	pricing := make(map[string]ports.PackagePricing, len(req.Packages))
	for _, pkg := range req.Packages {
		packages = append(packages, entities.MediaPackage{
			PackageID:      pkg.PackageID,
			ProductID:      pkg.ProductID,
			Name:           pkg.Name,
			BuyerRef:       pkg.BuyerRef,
			CPM:            pkg.CPM,
			FlatRate:       pkg.FlatRate,
			Impressions:    pkg.Impressions,
			Implementation: pkg.Implementation,
		})
		model := entities.PricingModel(pkg.PricingModel)
		if model == "" {
			model = entities.PricingCPM
		}
		pricing[pkg.PackageID] = ports.PackagePricing{Model: model, Rate: pkg.CPM, Currency: "USD"}
	}

	result, err := h.Buys.CreateMediaBuy(ctx, commands.CreateMediaBuyCommand{
		Request: ports.CreateMediaBuyRequest{
			BuyerRef:    req.BuyerRef,
			PONumber:    req.PONumber,
			BrandName:   req.BrandName,
			TotalBudget: req.TotalBudget,
			Targeting:   targetingFromDTO(req.Targeting),
		},
		Packages: packages,
		Start:    start,
		End:      end,
		Pricing:  pricing,
	})
	if err != nil {
		if errors.Is(err, domainerrors.ErrTargetingRejected) {
			return httptransport.CreateMediaBuyResponse{}, &TargetingRejection{Violations: result.Violations}
		}
		return httptransport.CreateMediaBuyResponse{}, err
	}

	packageResponses := make([]httptransport.PackageResponse, 0, len(result.Result.Packages))
	for _, pkg := range result.Result.Packages {
		packageResponses = append(packageResponses, httptransport.PackageResponse{
			PackageID: pkg.PackageID,
			BuyerRef:  pkg.BuyerRef,
			Paused:    pkg.Paused,
		})
	}
	return httptransport.CreateMediaBuyResponse{
		MediaBuyID:       result.Result.MediaBuyID.Encode(),
		BuyerRef:         result.Result.BuyerRef,
		CreativeDeadline: result.Result.CreativeDeadline.UTC().Format(time.RFC3339),
		Packages:         packageResponses,
		WorkflowStepID:   result.Result.WorkflowStepID,
	}, nil
}

func (h Handler) UpdateMediaBuyHandler(ctx context.Context, mediaBuyID string, req httptransport.UpdateMediaBuyRequest) (httptransport.UpdateMediaBuyResponse, error) {
	result, err := h.Buys.UpdateMediaBuy(ctx, commands.UpdateMediaBuyCommand{
		Command: ports.UpdateMediaBuyCommand{
			MediaBuyID: mediaBuyID,
			Action:     ports.UpdateAction(req.Action),
			PackageID:  req.PackageID,
			Budget:     req.Budget,
		},
	})
	if err != nil {
		return httptransport.UpdateMediaBuyResponse{}, err
	}

	affected := make([]httptransport.AffectedPackageDTO, 0, len(result.AffectedPackages))
	for _, pkg := range result.AffectedPackages {
		affected = append(affected, httptransport.AffectedPackageDTO{
			PackageID:      pkg.PackageID,
			BuyerRef:       pkg.BuyerRef,
			Paused:         pkg.Paused,
			ChangesApplied: pkg.ChangesApplied,
		})
	}
	return httptransport.UpdateMediaBuyResponse{
		MediaBuyID:         result.MediaBuyID,
		AffectedPackages:   affected,
		ImplementationDate: result.ImplementationDate.UTC().Format(time.RFC3339),
	}, nil
}

func (h Handler) AddCreativesHandler(ctx context.Context, mediaBuyID string, req httptransport.AddCreativesRequest) (httptransport.AddCreativesResponse, error) {
	assets := make([]ports.CreativeAsset, 0, len(req.Assets))
	for _, asset := range req.Assets {
		assets = append(assets, ports.CreativeAsset{
			CreativeID: asset.CreativeID,
			Name:       asset.Name,
			Format:     asset.Format,
			MediaURL:   asset.MediaURL,
			ClickURL:   asset.ClickURL,
			Snippet:    asset.Snippet,
		})
	}

	statuses, err := h.Buys.AddCreativeAssets(ctx, commands.AddCreativesCommand{
		MediaBuyID: mediaBuyID,
		Assets:     assets,
	})
	if err != nil {
		return httptransport.AddCreativesResponse{}, err
	}

	items := make([]httptransport.AssetStatusDTO, 0, len(statuses))
	for _, status := range statuses {
		items = append(items, httptransport.AssetStatusDTO{
			CreativeID: status.CreativeID,
			Status:     string(status.Status),
			Message:    status.Message,
		})
	}
	return httptransport.AddCreativesResponse{Statuses: items}, nil
}

func (h Handler) StatusHandler(ctx context.Context, mediaBuyID string) (httptransport.MediaBuyStatusResponse, error) {
	result, err := h.Buys.CheckMediaBuyStatus(ctx, mediaBuyID)
	if err != nil {
		return httptransport.MediaBuyStatusResponse{}, err
	}
	return httptransport.MediaBuyStatusResponse{
		MediaBuyID: result.MediaBuyID,
		BuyerRef:   result.BuyerRef,
		Status:     string(result.Status),
	}, nil
}

func (h Handler) DeliveryHandler(ctx context.Context, mediaBuyID string, start time.Time, end time.Time) (httptransport.DeliveryResponse, error) {
	report, err := h.Buys.GetMediaBuyDelivery(ctx, mediaBuyID, entities.ReportingPeriod{Start: start, End: end})
	if err != nil {
		return httptransport.DeliveryResponse{}, err
	}
	return httptransport.DeliveryResponse{
		MediaBuyID:  report.MediaBuyID,
		PeriodStart: report.Period.Start.UTC().Format(time.RFC3339),
		PeriodEnd:   report.Period.End.UTC().Format(time.RFC3339),
		Impressions: report.Totals.Impressions,
		Spend:       report.Totals.Spend,
		Clicks:      report.Totals.Clicks,
		CTR:         report.Totals.CTR,
		Currency:    report.Currency,
	}, nil
}

func (h Handler) PendingStepsHandler(ctx context.Context, mediaBuyID string) (httptransport.PendingStepsResponse, error) {
	steps, err := h.Workflows.PendingStepsForBuy(ctx, mediaBuyID)
	if err != nil {
		return httptransport.PendingStepsResponse{}, err
	}
	items := make([]httptransport.WorkflowStepResponse, 0, len(steps))
	for _, step := range steps {
		items = append(items, stepToDTO(step))
	}
	return httptransport.PendingStepsResponse{Steps: items}, nil
}

func (h Handler) GetStepHandler(ctx context.Context, stepID string) (httptransport.WorkflowStepResponse, error) {
	step, err := h.Workflows.GetStep(ctx, stepID)
	if err != nil {
		return httptransport.WorkflowStepResponse{}, err
	}
	return stepToDTO(step), nil
}

func (h Handler) ResolveStepHandler(ctx context.Context, stepID string, req httptransport.ResolveStepRequest) (httptransport.WorkflowStepResponse, error) {
	result, err := h.Steps.ResolveStep(ctx, commands.ResolveWorkflowStepCommand{
		StepID:        stepID,
		Approve:       req.Approve,
		PlatformBuyID: req.PlatformBuyID,
		ResolvedBy:    req.ResolvedBy,
	})
	if err != nil {
		return httptransport.WorkflowStepResponse{}, err
	}
	return stepToDTO(result.Step), nil
}

func stepToDTO(step entities.WorkflowStep) httptransport.WorkflowStepResponse {
	return httptransport.WorkflowStepResponse{
		StepID:     step.StepID,
		StepType:   string(step.Type),
		ToolName:   step.ToolName,
		Status:     string(step.Status),
		Owner:      string(step.Owner),
		AssignedTo: step.AssignedTo,
		Request:    step.RequestData,
		CreatedAt:  step.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:  step.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func targetingFromDTO(dto httptransport.TargetingDTO) targeting.Spec {
	return targeting.Spec{
		GeoCountries:          dto.GeoCountriesInclude,
		GeoCountriesExclude:   dto.GeoCountriesExclude,
		GeoRegions:            dto.GeoRegionsInclude,
		GeoRegionsExclude:     dto.GeoRegionsExclude,
		GeoMetros:             geoItemsFromDTO(dto.GeoMetrosInclude),
		GeoMetrosExclude:      geoItemsFromDTO(dto.GeoMetrosExclude),
		GeoPostalAreas:        geoItemsFromDTO(dto.GeoPostalAreasInclude),
		GeoPostalAreasExclude: geoItemsFromDTO(dto.GeoPostalAreasExclude),
	}
}

func geoItemsFromDTO(items []httptransport.GeoItemDTO) []targeting.GeoItem {
	out := make([]targeting.GeoItem, 0, len(items))
	for _, item := range items {
		out = append(out, targeting.GeoItem{System: item.System, Values: item.Values})
	}
	return out
}
