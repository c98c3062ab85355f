package queries

import (
	"context"
	"log/slog"
	"strings"

	application "adbroker/contexts/ad-sales/media-buy-service/application"
	"adbroker/contexts/ad-sales/media-buy-service/domain/entities"
	domainerrors "adbroker/contexts/ad-sales/media-buy-service/domain/errors"
	"adbroker/contexts/ad-sales/media-buy-service/ports"
)

// WorkflowQuery serves step lookups for admin tooling.
type WorkflowQuery struct {
	Workflows ports.WorkflowRepository
	Logger    *slog.Logger
}

func (q WorkflowQuery) GetStep(ctx context.Context, stepID string) (entities.WorkflowStep, error) {
	if strings.TrimSpace(stepID) == "" {
		return entities.WorkflowStep{}, domainerrors.ErrInvalidRequest
	}
	return q.Workflows.GetWorkflowStep(ctx, strings.TrimSpace(stepID))
}

// PendingStepsForBuy lists non-terminal steps attached to a media buy.
func (q WorkflowQuery) PendingStepsForBuy(ctx context.Context, mediaBuyID string) ([]entities.WorkflowStep, error) {
	logger := application.ResolveLogger(q.Logger)
	if strings.TrimSpace(mediaBuyID) == "" {
		return nil, domainerrors.ErrInvalidRequest
	}
	steps, err := q.Workflows.PendingStepsForObject(ctx, "media_buy", strings.TrimSpace(mediaBuyID))
	if err != nil {
		logger.Error("pending step lookup failed",
			"event", "workflow_pending_lookup_failed",
			"module", "ad-sales/media-buy-service",
			"layer", "application",
			"media_buy_id", strings.TrimSpace(mediaBuyID),
			"error", err.Error(),
		)
		return nil, err
	}
	return steps, nil
}
