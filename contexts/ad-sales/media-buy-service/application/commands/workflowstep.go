package commands

import (
	"context"
	"log/slog"
	"strings"
	"time"

	application "adbroker/contexts/ad-sales/media-buy-service/application"
	"adbroker/contexts/ad-sales/media-buy-service/domain/entities"
	domainerrors "adbroker/contexts/ad-sales/media-buy-service/domain/errors"
	"adbroker/contexts/ad-sales/media-buy-service/ports"
)

// ResolveWorkflowStepCommand applies a human decision to a pending step.
// PlatformBuyID is required when approving a creation step: it is the real
// backend id for a buy that was created out of band.
type ResolveWorkflowStepCommand struct {
	StepID        string
	Approve       bool
	PlatformBuyID string
	ResolvedBy    string
}

type ResolveWorkflowStepResult struct {
	Step entities.WorkflowStep
}

// WorkflowStepUseCase resolves pending workflow steps. Approving a creation
// step retrofits the real backend id onto the buy's packages; the rows keep
// their placeholder media_buy_id key.
type WorkflowStepUseCase struct {
	Workflows ports.WorkflowRepository
	Packages  ports.PackageRepository
	Clock     ports.Clock
	Logger    *slog.Logger
}

func (uc WorkflowStepUseCase) ResolveStep(ctx context.Context, cmd ResolveWorkflowStepCommand) (ResolveWorkflowStepResult, error) {
	logger := application.ResolveLogger(uc.Logger)
	stepID := strings.TrimSpace(cmd.StepID)
	if stepID == "" {
		return ResolveWorkflowStepResult{}, domainerrors.ErrInvalidRequest
	}

	step, err := uc.Workflows.GetWorkflowStep(ctx, stepID)
	if err != nil {
		return ResolveWorkflowStepResult{}, err
	}
	if step.Status.IsTerminal() {
		return ResolveWorkflowStepResult{}, domainerrors.ErrStepTerminal
	}

	if !cmd.Approve {
		if err := uc.Workflows.UpdateWorkflowStepStatus(ctx, stepID, entities.StepStatusRejected); err != nil {
			return ResolveWorkflowStepResult{}, err
		}
		step.Status = entities.StepStatusRejected
		logger.Info("workflow step rejected",
			"event", "workflow_step_rejected",
			"module", "ad-sales/media-buy-service",
			"layer", "application",
			"step_id", stepID,
			"resolved_by", strings.TrimSpace(cmd.ResolvedBy),
		)
		return ResolveWorkflowStepResult{Step: step}, nil
	}

	// Creation steps carry the placeholder buy id in their request data; the
	// approval must supply the backend id the human created.
	if step.Type == entities.StepTypeCreation {
		platformID := strings.TrimSpace(cmd.PlatformBuyID)
		if platformID == "" {
			return ResolveWorkflowStepResult{}, domainerrors.ErrInvalidRequest
		}
		mediaBuyID, _ := step.RequestData["media_buy_id"].(string)
		if strings.TrimSpace(mediaBuyID) == "" {
			return ResolveWorkflowStepResult{}, domainerrors.ErrInvalidRequest
		}
		if err := uc.Packages.AttachPlatformBuyID(ctx, mediaBuyID, platformID); err != nil {
			return ResolveWorkflowStepResult{}, err
		}
		logger.Info("platform buy id attached",
			"event", "workflow_platform_id_attached",
			"module", "ad-sales/media-buy-service",
			"layer", "application",
			"step_id", stepID,
			"media_buy_id", mediaBuyID,
			"platform_buy_id", platformID,
		)
	}

	if err := uc.Workflows.UpdateWorkflowStepStatus(ctx, stepID, entities.StepStatusCompleted); err != nil {
		return ResolveWorkflowStepResult{}, err
	}
	step.Status = entities.StepStatusCompleted
	step.UpdatedAt = uc.now()

	logger.Info("workflow step completed",
		"event", "workflow_step_completed",
		"module", "ad-sales/media-buy-service",
		"layer", "application",
		"step_id", stepID,
		"step_type", string(step.Type),
		"resolved_by", strings.TrimSpace(cmd.ResolvedBy),
	)
	return ResolveWorkflowStepResult{Step: step}, nil
}

func (uc WorkflowStepUseCase) now() time.Time {
	now := time.Now().UTC()
	if uc.Clock != nil {
		now = uc.Clock.Now().UTC()
	}
	return now
}
