package zonal

import (
	"encoding/json"
	"fmt"
	"strings"

	"adbroker/contexts/ad-sales/media-buy-service/domain/entities"
)

// ConnectionConfig is the tenant-level connection configuration for the
// zonal backend, validated once at adapter construction.
type ConnectionConfig struct {
	NetworkID           string `json:"network_id" yaml:"network_id"`
	APIKey              string `json:"api_key" yaml:"api_key"`
	BaseURL             string `json:"base_url,omitempty" yaml:"base_url"`
	DefaultAdvertiserID string `json:"default_advertiser_id,omitempty" yaml:"default_advertiser_id"`
}

func (c ConnectionConfig) validate(dryRun bool) error {
	if dryRun {
		return nil
	}
	if strings.TrimSpace(c.NetworkID) == "" || strings.TrimSpace(c.APIKey) == "" {
		return fmt.Errorf("zonal connection config is missing network_id or api_key")
	}
	return nil
}

// CreativeSize defines expected creative dimensions for a zone.
type CreativeSize struct {
	Width         int `json:"width"`
	Height        int `json:"height"`
	ExpectedCount int `json:"expected_count,omitempty"`
}

// ZoneTarget is one targeted zone with optional size constraints.
type ZoneTarget struct {
	ZoneID   string         `json:"zone_id"`
	ZoneName string         `json:"zone_name,omitempty"`
	Sizes    []CreativeSize `json:"sizes,omitempty"`
	Position string         `json:"position,omitempty"`
}

// ImplementationConfig controls how campaigns and placements are created on
// the zonal backend for one product. Every field formerly read ad hoc from
// an opaque mapping has a named, validated home here.
type ImplementationConfig struct {
	TargetedZoneIDs      []string       `json:"targeted_zone_ids,omitempty"`
	ZoneTargeting        []ZoneTarget   `json:"zone_targeting,omitempty"`
	CampaignNameTemplate string         `json:"campaign_name_template,omitempty"`
	CostType             string         `json:"cost_type,omitempty"`
	DeliveryRate         string         `json:"delivery_rate,omitempty"`
	FrequencyCap         int            `json:"frequency_cap,omitempty"`
	CreativeSizes        []CreativeSize `json:"creative_sizes,omitempty"`
	AdFormat             string         `json:"ad_format,omitempty"`
	AllowHTMLCreatives   *bool          `json:"allow_html_creatives,omitempty"`
	AutomationMode       string         `json:"automation_mode,omitempty"`
}

const defaultCampaignNameTemplate = "AdBroker-{po_number}-{product_name}"

var (
	validCostTypes     = map[string]struct{}{"CPM": {}, "FLAT_RATE": {}}
	validDeliveryRates = map[string]struct{}{"EVEN": {}, "FRONTLOADED": {}, "ASAP": {}}
	validAdFormats     = map[string]struct{}{"display": {}, "html": {}, "text": {}}
)

// ParseImplementationConfig decodes and validates a product implementation
// config. A nil/empty raw config yields the defaults (manual mode, CPM,
// even delivery).
func ParseImplementationConfig(raw json.RawMessage) (ImplementationConfig, error) {
	cfg := ImplementationConfig{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &cfg); err != nil {
			return ImplementationConfig{}, fmt.Errorf("decode implementation config: %w", err)
		}
	}

	if strings.TrimSpace(cfg.CampaignNameTemplate) == "" {
		cfg.CampaignNameTemplate = defaultCampaignNameTemplate
	}

	cfg.CostType = strings.ToUpper(strings.TrimSpace(cfg.CostType))
	if cfg.CostType == "" {
		cfg.CostType = "CPM"
	}
	if _, ok := validCostTypes[cfg.CostType]; !ok {
		return ImplementationConfig{}, fmt.Errorf("invalid cost_type %q", cfg.CostType)
	}

	cfg.DeliveryRate = strings.ToUpper(strings.TrimSpace(cfg.DeliveryRate))
	if cfg.DeliveryRate == "" {
		cfg.DeliveryRate = "EVEN"
	}
	if _, ok := validDeliveryRates[cfg.DeliveryRate]; !ok {
		return ImplementationConfig{}, fmt.Errorf("invalid delivery_rate %q", cfg.DeliveryRate)
	}

	cfg.AdFormat = strings.ToLower(strings.TrimSpace(cfg.AdFormat))
	if cfg.AdFormat == "" {
		cfg.AdFormat = "display"
	}
	if _, ok := validAdFormats[cfg.AdFormat]; !ok {
		return ImplementationConfig{}, fmt.Errorf("invalid ad_format %q", cfg.AdFormat)
	}

	if cfg.FrequencyCap < 0 {
		return ImplementationConfig{}, fmt.Errorf("frequency_cap must be positive")
	}

	cfg.AutomationMode = string(entities.NormalizeAutomationMode(cfg.AutomationMode))
	return cfg, nil
}

// Mode returns the normalized automation mode.
func (c ImplementationConfig) Mode() entities.AutomationMode {
	return entities.NormalizeAutomationMode(c.AutomationMode)
}

// ZoneIDs merges both zone sources without duplicates.
func (c ImplementationConfig) ZoneIDs() []string {
	seen := make(map[string]struct{})
	ids := make([]string, 0, len(c.TargetedZoneIDs)+len(c.ZoneTargeting))
	for _, id := range c.TargetedZoneIDs {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	for _, target := range c.ZoneTargeting {
		id := strings.TrimSpace(target.ZoneID)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids
}

// CreativeSizesForZone returns the zone-specific sizes, falling back to the
// product-level sizes.
func (c ImplementationConfig) CreativeSizesForZone(zoneID string) []CreativeSize {
	for _, target := range c.ZoneTargeting {
		if target.ZoneID == zoneID {
			return target.Sizes
		}
	}
	return c.CreativeSizes
}

// CampaignName renders the naming template.
func (c ImplementationConfig) CampaignName(poNumber string, productName string, advertiserName string) string {
	name := c.CampaignNameTemplate
	name = strings.ReplaceAll(name, "{po_number}", poNumber)
	name = strings.ReplaceAll(name, "{product_name}", productName)
	name = strings.ReplaceAll(name, "{advertiser_name}", advertiserName)
	return name
}
