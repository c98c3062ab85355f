package ports

import (
	"context"
	"time"

	"adbroker/contexts/ad-sales/media-buy-service/domain/entities"
	"adbroker/contexts/ad-sales/media-buy-service/domain/targeting"
	"adbroker/internal/shared/events"
)

// UpdateAction is the fixed, adapter-independent update vocabulary. Any
// other value is rejected with unsupported_action before any database or
// backend access.
type UpdateAction string

const (
	ActionPauseMediaBuy            UpdateAction = "pause_media_buy"
	ActionResumeMediaBuy           UpdateAction = "resume_media_buy"
	ActionPausePackage             UpdateAction = "pause_package"
	ActionResumePackage            UpdateAction = "resume_package"
	ActionUpdatePackageBudget      UpdateAction = "update_package_budget"
	ActionUpdatePackageImpressions UpdateAction = "update_package_impressions"
)

func IsSupportedUpdateAction(action UpdateAction) bool {
	switch action {
	case ActionPauseMediaBuy, ActionResumeMediaBuy,
		ActionPausePackage, ActionResumePackage,
		ActionUpdatePackageBudget, ActionUpdatePackageImpressions:
		return true
	default:
		return false
	}
}

// SupportedUpdateActions lists the vocabulary for error messages.
func SupportedUpdateActions() []UpdateAction {
	return []UpdateAction{
		ActionPauseMediaBuy, ActionResumeMediaBuy,
		ActionPausePackage, ActionResumePackage,
		ActionUpdatePackageBudget, ActionUpdatePackageImpressions,
	}
}

type CreateMediaBuyRequest struct {
	BuyerRef    string
	PONumber    string
	BrandName   string
	TotalBudget float64
	Targeting   targeting.Spec
}

// PackagePricing is validated pricing information per package.
type PackagePricing struct {
	Model    entities.PricingModel
	Rate     float64
	Currency string
	IsFixed  bool
}

type PackageResult struct {
	PackageID string
	BuyerRef  string
	Paused    bool
}

// CreateMediaBuyResult is the uniform success shape. A buy routed through a
// workflow carries the step id; manual-mode buys return a placeholder id and
// paused packages until a human supplies the real backend id.
type CreateMediaBuyResult struct {
	BuyerRef         string
	MediaBuyID       entities.BuyID
	CreativeDeadline time.Time
	Packages         []PackageResult
	WorkflowStepID   string
	// PlatformLineItemIDs maps package id to the backend-side id needed to
	// mutate state later. The orchestrator persists it at creation time so
	// subsequent calls can reconstruct state from storage.
	PlatformLineItemIDs map[string]string
}

type CreativeAsset struct {
	CreativeID string
	Name       string
	Format     string
	MediaURL   string
	ClickURL   string
	Snippet    string
}

type UpdateMediaBuyCommand struct {
	MediaBuyID string
	BuyerRef   string
	Action     UpdateAction
	PackageID  string
	// Budget doubles as the impression goal for update_package_impressions,
	// matching the wire contract.
	Budget *int64
	Today  time.Time
}

type UpdateMediaBuyResult struct {
	MediaBuyID         string
	BuyerRef           string
	AffectedPackages   []entities.AffectedPackage
	ImplementationDate time.Time
}

type MediaBuyStatusResult struct {
	MediaBuyID string
	BuyerRef   string
	Status     entities.MediaBuyStatus
}

// AdapterCapabilities declares UI/feature capabilities per adapter variant.
// Used for capability negotiation only, never for backend calls.
type AdapterCapabilities struct {
	SupportsInventorySync     bool
	SupportsInventoryProfiles bool
	InventoryEntityLabel      string
	SupportsCustomTargeting   bool
	SupportsGeoTargeting      bool
	SupportsDynamicProducts   bool
	SupportedPricingModels    []entities.PricingModel
	SupportsWebhooks          bool
	SupportsRealtimeReporting bool
}

// AdServerAdapter is the uniform contract every ad-serving backend variant
// satisfies. Implementations must never let a backend-specific error escape;
// failures surface as *domainerrors.AdapterError values.
type AdServerAdapter interface {
	CreateMediaBuy(
		ctx context.Context,
		req CreateMediaBuyRequest,
		packages []entities.MediaPackage,
		start time.Time,
		end time.Time,
		pricing map[string]PackagePricing,
	) (CreateMediaBuyResult, error)

	AddCreativeAssets(ctx context.Context, mediaBuyID string, assets []CreativeAsset, today time.Time) ([]entities.AssetStatus, error)

	AssociateCreatives(ctx context.Context, lineItemIDs []string, creativeIDs []string) []entities.AssociationResult

	CheckMediaBuyStatus(ctx context.Context, mediaBuyID string, today time.Time) (MediaBuyStatusResult, error)

	GetMediaBuyDelivery(ctx context.Context, mediaBuyID string, period entities.ReportingPeriod, today time.Time) (entities.DeliveryReport, error)

	UpdateMediaBuyPerformanceIndex(ctx context.Context, mediaBuyID string, performance []entities.PackagePerformance) (bool, error)

	UpdateMediaBuy(ctx context.Context, cmd UpdateMediaBuyCommand) (UpdateMediaBuyResult, error)

	SupportedPricingModels() map[entities.PricingModel]struct{}

	TargetingCapabilities() targeting.Capabilities

	Capabilities() AdapterCapabilities
}

type PackageRepository interface {
	ListPackagesByBuy(ctx context.Context, mediaBuyID string) ([]entities.MediaPackage, error)
	GetPackage(ctx context.Context, mediaBuyID string, packageID string) (entities.MediaPackage, error)
	SavePackages(ctx context.Context, packages []entities.MediaPackage) error
	SavePackageConfig(ctx context.Context, mediaBuyID string, packageID string, config entities.PackageConfig) error
	// AttachPlatformBuyID annotates every package of a placeholder buy with
	// the real backend id once out-of-band creation completes. Rows are
	// annotated, never re-keyed.
	AttachPlatformBuyID(ctx context.Context, mediaBuyID string, platformID string) error
}

// WorkflowTriple is the atomic unit of workflow persistence: all three rows
// exist or none do.
type WorkflowTriple struct {
	Context entities.WorkflowContext
	Step    entities.WorkflowStep
	Mapping entities.ObjectWorkflowMapping
}

type WorkflowRepository interface {
	CreateWorkflowTriple(ctx context.Context, triple WorkflowTriple) error
	GetWorkflowStep(ctx context.Context, stepID string) (entities.WorkflowStep, error)
	PendingStepsForObject(ctx context.Context, objectType string, objectID string) ([]entities.WorkflowStep, error)
	UpdateWorkflowStepStatus(ctx context.Context, stepID string, status entities.StepStatus) error
}

type NotificationField struct {
	Title string
	Value string
}

// Notification is the structured outbound webhook payload.
type Notification struct {
	Title       string
	Description string
	Color       string
	Fields      []NotificationField
	Footer      string
	Timestamp   time.Time
}

type NotificationSender interface {
	Send(ctx context.Context, webhookURL string, note Notification) error
}

// TenantConfig resolves per-tenant settings the workflow side-channel needs.
type TenantConfig interface {
	NotificationWebhook(ctx context.Context, tenantID string) (string, error)
}

// EventPublisher emits lifecycle events for downstream consumers. Nil
// publishers are treated as no-ops by the application layer.
type EventPublisher interface {
	Publish(ctx context.Context, topic string, event events.Envelope) error
}

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}
