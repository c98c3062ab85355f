package entities

import (
	"encoding/json"
	"strings"
	"time"
)

// AutomationMode is the per-product policy controlling how much of buy
// creation happens without human intervention.
type AutomationMode string

const (
	AutomationAutomatic            AutomationMode = "automatic"
	AutomationConfirmationRequired AutomationMode = "confirmation_required"
	AutomationManual               AutomationMode = "manual"
)

// NormalizeAutomationMode lowercases and defaults to manual, the most
// conservative mode.
func NormalizeAutomationMode(raw string) AutomationMode {
	switch AutomationMode(strings.ToLower(strings.TrimSpace(raw))) {
	case AutomationAutomatic:
		return AutomationAutomatic
	case AutomationConfirmationRequired:
		return AutomationConfirmationRequired
	default:
		return AutomationManual
	}
}

type PricingModel string

const (
	PricingCPM      PricingModel = "cpm"
	PricingCPCV     PricingModel = "cpcv"
	PricingCPP      PricingModel = "cpp"
	PricingCPC      PricingModel = "cpc"
	PricingCPV      PricingModel = "cpv"
	PricingFlatRate PricingModel = "flat_rate"
)

// BuyID is the tagged media buy identifier. Backend holds the backend tag
// (e.g. "zonal"); NativeID holds the backend-native campaign/order id.
// Internal code passes BuyID values around and serializes to the
// "<prefix>_<native>" wire form only at the boundary.
type BuyID struct {
	Backend  string
	NativeID string
}

// Encode renders the wire form. An untagged id is emitted as-is so legacy
// and placeholder ids survive a round trip.
func (id BuyID) Encode() string {
	if strings.TrimSpace(id.Backend) == "" {
		return id.NativeID
	}
	return id.Backend + "_" + id.NativeID
}

func (id BuyID) IsZero() bool {
	return id.Backend == "" && id.NativeID == ""
}

// ParseBuyID recovers a BuyID from its wire form. A recognized backend
// prefix (or the legacy "mb" prefix) is stripped; any other shape is kept
// as-is rather than rejected, to tolerate placeholder and legacy ids.
func ParseBuyID(backend string, raw string) BuyID {
	raw = strings.TrimSpace(raw)
	if backend != "" && strings.HasPrefix(raw, backend+"_") {
		return BuyID{Backend: backend, NativeID: raw[len(backend)+1:]}
	}
	if strings.HasPrefix(raw, "mb_") {
		return BuyID{Backend: backend, NativeID: raw[3:]}
	}
	return BuyID{NativeID: raw}
}

// MediaPackage is one line item within a media buy. The row is never
// deleted; updates supersede prior state through Config.
type MediaPackage struct {
	PackageID   string
	MediaBuyID  string
	ProductID   string
	Name        string
	BuyerRef    string
	CPM         float64
	FlatRate    float64
	Impressions int64
	// Implementation is the backend-specific product configuration. It is
	// opaque to the core and parsed by the owning adapter into its typed
	// config at the boundary.
	Implementation json.RawMessage
	Config         PackageConfig
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// PackageConfig is the durable cross-request state persisted against a
// package. Adapters must re-read it from storage on every call; it is the
// only place backend-side identifiers survive between requests.
type PackageConfig struct {
	Paused             bool     `json:"paused"`
	Budget             float64  `json:"budget,omitempty"`
	Impressions        int64    `json:"impressions,omitempty"`
	PlatformLineItemID string   `json:"platform_line_item_id,omitempty"`
	AdvertisementIDs   []string `json:"advertisement_ids,omitempty"`
}

// MergeAdvertisementIDs appends ids without duplicates.
func (c *PackageConfig) MergeAdvertisementIDs(ids []string) {
	seen := make(map[string]struct{}, len(c.AdvertisementIDs))
	for _, id := range c.AdvertisementIDs {
		seen[id] = struct{}{}
	}
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		c.AdvertisementIDs = append(c.AdvertisementIDs, id)
	}
}

type MediaBuyStatus string

const (
	BuyStatusActive         MediaBuyStatus = "active"
	BuyStatusPaused         MediaBuyStatus = "paused"
	BuyStatusPendingManual  MediaBuyStatus = "pending_manual"
	BuyStatusPendingApprove MediaBuyStatus = "pending_activation"
	BuyStatusCompleted      MediaBuyStatus = "completed"
)

// ReconstructBuyStatus derives the buy state from its stored packages. A
// fully paused buy with no backend id on any package is still waiting for
// manual creation; paused with a backend id means a deliberate pause. An
// unknown buy reports active rather than failing the status call.
func ReconstructBuyStatus(pkgs []MediaPackage) MediaBuyStatus {
	if len(pkgs) == 0 {
		return BuyStatusActive
	}
	allPaused := true
	retrofitted := false
	for _, pkg := range pkgs {
		if !pkg.Config.Paused {
			allPaused = false
		}
		if strings.TrimSpace(pkg.Config.PlatformLineItemID) != "" {
			retrofitted = true
		}
	}
	if allPaused && !retrofitted {
		return BuyStatusPendingManual
	}
	if allPaused {
		return BuyStatusPaused
	}
	return BuyStatusActive
}

// ReportingPeriod is a half-open delivery reporting window.
type ReportingPeriod struct {
	Start time.Time
	End   time.Time
}

type DeliveryTotals struct {
	Impressions      int64
	Spend            float64
	Clicks           int64
	CTR              float64
	VideoCompletions int64
	CompletionRate   float64
}

type PackageDelivery struct {
	PackageID   string
	Impressions int64
	Spend       float64
}

type DeliveryReport struct {
	MediaBuyID string
	Period     ReportingPeriod
	Totals     DeliveryTotals
	ByPackage  []PackageDelivery
	Currency   string
}

type AssetStatusValue string

const (
	AssetApproved AssetStatusValue = "approved"
	AssetPending  AssetStatusValue = "pending"
	AssetFailed   AssetStatusValue = "failed"
)

// AssetStatus is the per-asset outcome of AddCreativeAssets. One failed
// asset never fails the whole call.
type AssetStatus struct {
	CreativeID string
	Status     AssetStatusValue
	Message    string
}

type AssociationStatus string

const (
	AssociationSuccess AssociationStatus = "success"
	AssociationFailed  AssociationStatus = "failed"
	AssociationSkipped AssociationStatus = "skipped"
)

// AssociationResult is the per-pair outcome of AssociateCreatives.
type AssociationResult struct {
	LineItemID string
	CreativeID string
	Status     AssociationStatus
	Message    string
}

type PackagePerformance struct {
	PackageID        string
	PerformanceIndex float64
}

// AffectedPackage reports post-update package state to the caller.
type AffectedPackage struct {
	PackageID      string
	BuyerRef       string
	Paused         bool
	ChangesApplied map[string]any
}
