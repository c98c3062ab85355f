// Package workflow persists human-in-the-loop workflow steps and dispatches
// best-effort notifications for them.
package workflow

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"adbroker/contexts/ad-sales/media-buy-service/domain/entities"
	"adbroker/contexts/ad-sales/media-buy-service/ports"

	"github.com/google/uuid"
)

const defaultNotifyTimeout = 10 * time.Second

// Manager records workflow steps. Persistence of the Context + WorkflowStep
// + ObjectWorkflowMapping triple is atomic; the post-commit notification is
// fire-and-forget and can never undo a committed step.
type Manager struct {
	Repo      ports.WorkflowRepository
	Tenants   ports.TenantConfig
	Notifier  ports.NotificationSender
	TenantID  string
	Principal entities.Principal
	Clock     ports.Clock

	// PlatformName labels notifications when action details carry none.
	PlatformName  string
	NotifyTimeout time.Duration
	Logger        *slog.Logger

	// OnNotifyResult observes every notification attempt, including the
	// swallowed failures. Optional.
	OnNotifyResult func(stepID string, err error)
}

type CreateStepInput struct {
	StepType           entities.StepType
	ToolName           string
	ActionDetails      map[string]any
	ObjectType         string
	ObjectID           string
	ObjectAction       entities.ObjectAction
	StepPrefix         string
	Owner              entities.StepOwner
	Status             entities.StepStatus
	AssignedTo         string
	TransactionDetails map[string]any
}

// CreateWorkflowStep persists a step and returns its id, or "" when the
// step could not be recorded. Failures are logged and audited, never raised:
// workflow bookkeeping is secondary to the buy operation, and callers decide
// their own fallback for an unrecorded step.
func (m Manager) CreateWorkflowStep(ctx context.Context, input CreateStepInput) string {
	logger := m.logger()

	prefix := strings.TrimSpace(input.StepPrefix)
	if prefix == "" {
		prefix = "w"
	}
	owner := input.Owner
	if owner == "" {
		owner = entities.OwnerPublisher
	}
	status := input.Status
	if status == "" {
		status = entities.StepStatusApproval
	}

	now := m.now()
	stepID := prefix + uuid.NewString()[:5]
	contextID := "ctx_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:12]

	transactionDetails := input.TransactionDetails
	if transactionDetails == nil {
		transactionDetails = map[string]any{}
	}

	triple := ports.WorkflowTriple{
		Context: entities.WorkflowContext{
			ContextID:   contextID,
			TenantID:    m.TenantID,
			PrincipalID: m.Principal.PrincipalID,
			CreatedAt:   now,
		},
		Step: entities.WorkflowStep{
			StepID:             stepID,
			ContextID:          contextID,
			Type:               input.StepType,
			ToolName:           input.ToolName,
			RequestData:        input.ActionDetails,
			Status:             status,
			Owner:              owner,
			AssignedTo:         strings.TrimSpace(input.AssignedTo),
			TransactionDetails: transactionDetails,
			CreatedAt:          now,
			UpdatedAt:          now,
		},
		Mapping: entities.ObjectWorkflowMapping{
			ObjectType: input.ObjectType,
			ObjectID:   input.ObjectID,
			StepID:     stepID,
			Action:     input.ObjectAction,
			CreatedAt:  now,
		},
	}

	if err := m.Repo.CreateWorkflowTriple(ctx, triple); err != nil {
		logger.Error("workflow step creation failed",
			"event", "workflow_step_create_failed",
			"module", "ad-sales/media-buy-service",
			"layer", "application",
			"tool_name", input.ToolName,
			"object_type", input.ObjectType,
			"object_id", input.ObjectID,
			"error", err.Error(),
		)
		return ""
	}

	logger.Info("workflow step created",
		"event", "workflow_step_created",
		"module", "ad-sales/media-buy-service",
		"layer", "application",
		"step_id", stepID,
		"step_type", string(input.StepType),
		"tool_name", input.ToolName,
		"object_type", input.ObjectType,
		"object_id", input.ObjectID,
	)

	m.sendNotification(ctx, stepID, input.ActionDetails)
	return stepID
}

// sendNotification delivers the side-channel message for a committed step.
// Every failure path logs and reports through OnNotifyResult; none
// propagates.
func (m Manager) sendNotification(ctx context.Context, stepID string, actionDetails map[string]any) {
	logger := m.logger()
	if m.Notifier == nil || m.Tenants == nil {
		return
	}

	webhookURL, err := m.Tenants.NotificationWebhook(ctx, m.TenantID)
	if err != nil {
		logger.Warn("notification webhook lookup failed",
			"event", "workflow_notify_config_failed",
			"module", "ad-sales/media-buy-service",
			"layer", "application",
			"step_id", stepID,
			"error", err.Error(),
		)
		m.reportNotify(stepID, err)
		return
	}
	if strings.TrimSpace(webhookURL) == "" {
		logger.Info("no notification webhook configured; skipping",
			"event", "workflow_notify_skipped",
			"module", "ad-sales/media-buy-service",
			"layer", "application",
			"step_id", stepID,
		)
		return
	}

	note := m.buildNotification(stepID, actionDetails)

	timeout := m.NotifyTimeout
	if timeout <= 0 {
		timeout = defaultNotifyTimeout
	}
	notifyCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := m.Notifier.Send(notifyCtx, webhookURL, note); err != nil {
		logger.Warn("workflow notification failed",
			"event", "workflow_notify_failed",
			"module", "ad-sales/media-buy-service",
			"layer", "application",
			"step_id", stepID,
			"error", err.Error(),
		)
		m.reportNotify(stepID, err)
		return
	}

	logger.Info("workflow notification sent",
		"event", "workflow_notify_sent",
		"module", "ad-sales/media-buy-service",
		"layer", "application",
		"step_id", stepID,
	)
	m.reportNotify(stepID, nil)
}

func (m Manager) buildNotification(stepID string, actionDetails map[string]any) ports.Notification {
	title, description, color := notificationStyle(m.PlatformName, stepID, actionDetails)

	platform := detailString(actionDetails, "platform")
	if platform == "" {
		platform = m.PlatformName
	}
	automationMode := detailString(actionDetails, "automation_mode")
	if automationMode == "" {
		automationMode = "unknown"
	}
	actionRequired := "Check the admin dashboard"
	if instructions, ok := actionDetails["instructions"].([]string); ok && len(instructions) > 0 {
		actionRequired = instructions[0]
	}

	return ports.Notification{
		Title:       title,
		Description: description,
		Color:       color,
		Fields: []ports.NotificationField{
			{Title: "Step ID", Value: stepID},
			{Title: "Platform", Value: platform},
			{Title: "Automation Mode", Value: automationMode},
			{Title: "Action Required", Value: actionRequired},
		},
		Footer:    "ad sales workflow",
		Timestamp: m.now(),
	}
}

// notificationStyle picks title/description/color from action_type and
// automation_mode substrings.
func notificationStyle(platform string, stepID string, actionDetails map[string]any) (string, string, string) {
	actionType := strings.ToLower(detailString(actionDetails, "action_type"))
	automationMode := strings.ToLower(detailString(actionDetails, "automation_mode"))

	switch {
	case strings.Contains(actionType, "creative"):
		return platform + " creative approval required",
			"creatives uploaded - approval needed before activation",
			"#9B59B6"
	case strings.Contains(automationMode, "manual") || strings.Contains(actionType, "creat"):
		return "manual " + platform + " action required",
			"manual mode activated - human intervention needed",
			"#FF9500"
	case strings.Contains(automationMode, "approval") || strings.Contains(actionType, "activate"):
		return platform + " approval required",
			"approval needed before the entity is turned on",
			"#FFD700"
	case strings.Contains(automationMode, "background") || detailString(actionDetails, "status") == "working":
		return platform + " background task started",
			"background processing in progress",
			"#36A2EB"
	default:
		return "workflow step requires attention",
			"workflow step " + stepID + " needs human intervention",
			"#36A2EB"
	}
}

// PackagesSummary builds the package digest embedded in action details.
func PackagesSummary(packages []entities.MediaPackage) []map[string]any {
	summary := make([]map[string]any, 0, len(packages))
	for _, pkg := range packages {
		summary = append(summary, map[string]any{
			"name":        pkg.Name,
			"impressions": pkg.Impressions,
			"cpm":         pkg.CPM,
		})
	}
	return summary
}

func (m Manager) reportNotify(stepID string, err error) {
	if m.OnNotifyResult != nil {
		m.OnNotifyResult(stepID, err)
	}
}

func (m Manager) now() time.Time {
	if m.Clock != nil {
		return m.Clock.Now().UTC()
	}
	return time.Now().UTC()
}

func (m Manager) logger() *slog.Logger {
	if m.Logger != nil {
		return m.Logger
	}
	return slog.Default()
}

func detailString(details map[string]any, key string) string {
	value, _ := details[key].(string)
	return strings.TrimSpace(value)
}
