package http

import "encoding/json"

type ErrorResponse struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

type GeoItemDTO struct {
	System string   `json:"system"`
	Values []string `json:"values"`
}

type TargetingDTO struct {
	GeoCountriesInclude   []string     `json:"geo_countries_include,omitempty"`
	GeoCountriesExclude   []string     `json:"geo_countries_exclude,omitempty"`
	GeoRegionsInclude     []string     `json:"geo_regions_include,omitempty"`
	GeoRegionsExclude     []string     `json:"geo_regions_exclude,omitempty"`
	GeoMetrosInclude      []GeoItemDTO `json:"geo_metros_include,omitempty"`
	GeoMetrosExclude      []GeoItemDTO `json:"geo_metros_exclude,omitempty"`
	GeoPostalAreasInclude []GeoItemDTO `json:"geo_postal_areas_include,omitempty"`
	GeoPostalAreasExclude []GeoItemDTO `json:"geo_postal_areas_exclude,omitempty"`
}

type PackageRequest struct {
	PackageID      string          `json:"package_id"`
	ProductID      string          `json:"product_id"`
	Name           string          `json:"name"`
	BuyerRef       string          `json:"buyer_ref,omitempty"`
	CPM            float64         `json:"cpm,omitempty"`
	FlatRate       float64         `json:"flat_rate,omitempty"`
	Impressions    int64           `json:"impressions,omitempty"`
	PricingModel   string          `json:"pricing_model,omitempty"`
	Implementation json.RawMessage `json:"implementation,omitempty"`
}

type CreateMediaBuyRequest struct {
	BuyerRef    string           `json:"buyer_ref"`
	PONumber    string           `json:"po_number,omitempty"`
	BrandName   string           `json:"brand_name,omitempty"`
	TotalBudget float64          `json:"total_budget,omitempty"`
	StartTime   string           `json:"start_time"`
	EndTime     string           `json:"end_time"`
	Targeting   TargetingDTO     `json:"targeting_overlay,omitempty"`
	Packages    []PackageRequest `json:"packages"`
}

type PackageResponse struct {
	PackageID string `json:"package_id"`
	BuyerRef  string `json:"buyer_ref,omitempty"`
	Paused    bool   `json:"paused"`
}

type TargetingViolation struct {
	Dimension string `json:"dimension"`
	System    string `json:"system"`
	Message   string `json:"message"`
}

type CreateMediaBuyResponse struct {
	MediaBuyID       string            `json:"media_buy_id"`
	BuyerRef         string            `json:"buyer_ref"`
	CreativeDeadline string            `json:"creative_deadline,omitempty"`
	Packages         []PackageResponse `json:"packages"`
	WorkflowStepID   string            `json:"workflow_step_id,omitempty"`
}

type TargetingRejectionResponse struct {
	Code       string               `json:"code"`
	Message    string               `json:"message"`
	Violations []TargetingViolation `json:"violations"`
}

type UpdateMediaBuyRequest struct {
	Action    string `json:"action"`
	PackageID string `json:"package_id,omitempty"`
	Budget    *int64 `json:"budget,omitempty"`
}

type AffectedPackageDTO struct {
	PackageID      string         `json:"package_id"`
	BuyerRef       string         `json:"buyer_ref,omitempty"`
	Paused         bool           `json:"paused"`
	ChangesApplied map[string]any `json:"changes_applied,omitempty"`
}

type UpdateMediaBuyResponse struct {
	MediaBuyID         string               `json:"media_buy_id"`
	AffectedPackages   []AffectedPackageDTO `json:"affected_packages"`
	ImplementationDate string               `json:"implementation_date"`
}

type CreativeAssetRequest struct {
	CreativeID string `json:"creative_id"`
	Name       string `json:"name"`
	Format     string `json:"format"`
	MediaURL   string `json:"media_url,omitempty"`
	ClickURL   string `json:"click_url,omitempty"`
	Snippet    string `json:"snippet,omitempty"`
}

type AddCreativesRequest struct {
	Assets []CreativeAssetRequest `json:"assets"`
}

type AssetStatusDTO struct {
	CreativeID string `json:"creative_id"`
	Status     string `json:"status"`
	Message    string `json:"message,omitempty"`
}

type AddCreativesResponse struct {
	Statuses []AssetStatusDTO `json:"statuses"`
}

type MediaBuyStatusResponse struct {
	MediaBuyID string `json:"media_buy_id"`
	BuyerRef   string `json:"buyer_ref,omitempty"`
	Status     string `json:"status"`
}

type DeliveryResponse struct {
	MediaBuyID  string  `json:"media_buy_id"`
	PeriodStart string  `json:"period_start"`
	PeriodEnd   string  `json:"period_end"`
	Impressions int64   `json:"impressions"`
	Spend       float64 `json:"spend"`
	Clicks      int64   `json:"clicks"`
	CTR         float64 `json:"ctr"`
	Currency    string  `json:"currency"`
}

type WorkflowStepResponse struct {
	StepID     string         `json:"step_id"`
	StepType   string         `json:"step_type"`
	ToolName   string         `json:"tool_name"`
	Status     string         `json:"status"`
	Owner      string         `json:"owner"`
	AssignedTo string         `json:"assigned_to,omitempty"`
	Request    map[string]any `json:"request_data,omitempty"`
	CreatedAt  string         `json:"created_at"`
	UpdatedAt  string         `json:"updated_at"`
}

type PendingStepsResponse struct {
	Steps []WorkflowStepResponse `json:"steps"`
}

type ResolveStepRequest struct {
	Approve       bool   `json:"approve"`
	PlatformBuyID string `json:"platform_buy_id,omitempty"`
	ResolvedBy    string `json:"resolved_by,omitempty"`
}
