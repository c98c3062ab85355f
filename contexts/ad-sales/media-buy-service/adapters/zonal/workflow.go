package zonal

import (
	"context"
	"time"

	"adbroker/contexts/ad-sales/media-buy-service/application/workflow"
	"adbroker/contexts/ad-sales/media-buy-service/domain/entities"
	"adbroker/contexts/ad-sales/media-buy-service/ports"
)

const platformLabel = "Zonal"

// Step id prefixes per human task kind.
const (
	activationStepPrefix       = "a"
	creationStepPrefix         = "c"
	creativeApprovalStepPrefix = "p"
)

// createActivationStep records the approval gate for a confirmation-required
// buy: the campaign exists inactive and a human turns it on.
func (a *Adapter) createActivationStep(ctx context.Context, buyID entities.BuyID, packages []entities.MediaPackage) string {
	return a.workflows.CreateWorkflowStep(ctx, workflow.CreateStepInput{
		StepType:     entities.StepTypeApproval,
		ToolName:     "activate_media_buy",
		ObjectType:   "media_buy",
		ObjectID:     buyID.Encode(),
		ObjectAction: entities.ObjectActionActivate,
		StepPrefix:   activationStepPrefix,
		ActionDetails: map[string]any{
			"action_type":     "activate_campaign",
			"platform":        platformLabel,
			"automation_mode": string(entities.AutomationConfirmationRequired),
			"media_buy_id":    buyID.Encode(),
			"campaign_id":     buyID.NativeID,
			"packages":        workflow.PackagesSummary(packages),
			"instructions": []string{
				"Review the campaign flight dates and budget in the zonal dashboard",
				"Set the campaign active once the order is confirmed",
				"Approve this step to mark the buy live",
			},
		},
	})
}

// createManualCampaignStep records the out-of-band creation task for a
// manual-mode buy. No backend call precedes it; the placeholder buy id is
// retrofitted with the real campaign id when the step completes.
func (a *Adapter) createManualCampaignStep(
	ctx context.Context,
	req ports.CreateMediaBuyRequest,
	packages []entities.MediaPackage,
	start time.Time,
	end time.Time,
	buyID entities.BuyID,
) string {
	return a.workflows.CreateWorkflowStep(ctx, workflow.CreateStepInput{
		StepType:     entities.StepTypeCreation,
		ToolName:     "create_media_buy",
		ObjectType:   "media_buy",
		ObjectID:     buyID.Encode(),
		ObjectAction: entities.ObjectActionCreate,
		StepPrefix:   creationStepPrefix,
		ActionDetails: map[string]any{
			"action_type":     "create_campaign",
			"platform":        platformLabel,
			"automation_mode": string(entities.AutomationManual),
			"media_buy_id":    buyID.Encode(),
			"po_number":       req.PONumber,
			"brand_name":      req.BrandName,
			"total_budget":    req.TotalBudget,
			"flight_start":    start.Format(time.RFC3339),
			"flight_end":      end.Format(time.RFC3339),
			"packages":        workflow.PackagesSummary(packages),
			"instructions": []string{
				"Create the campaign in the zonal dashboard using the order details below",
				"Record the zonal campaign id on this step when done",
				"Complete this step to attach the campaign id to the buy",
			},
		},
	})
}

// createCreativeApprovalStep records the review gate for uploaded creatives
// on non-automatic buys.
func (a *Adapter) createCreativeApprovalStep(ctx context.Context, mediaBuyID string, assets []ports.CreativeAsset, mode entities.AutomationMode) string {
	names := make([]string, 0, len(assets))
	for _, asset := range assets {
		names = append(names, asset.Name)
	}
	return a.workflows.CreateWorkflowStep(ctx, workflow.CreateStepInput{
		StepType:     entities.StepTypeApproval,
		ToolName:     "add_creative_assets",
		ObjectType:   "media_buy",
		ObjectID:     mediaBuyID,
		ObjectAction: entities.ObjectActionApprove,
		StepPrefix:   creativeApprovalStepPrefix,
		ActionDetails: map[string]any{
			"action_type":     "approve_creatives",
			"platform":        platformLabel,
			"automation_mode": string(mode),
			"media_buy_id":    mediaBuyID,
			"creative_names":  names,
			"instructions": []string{
				"Review the uploaded creatives in the zonal dashboard",
				"Approve this step once the creatives meet the placement requirements",
			},
		},
	})
}
