package zonal

import (
	"encoding/json"
	"testing"

	"adbroker/contexts/ad-sales/media-buy-service/domain/entities"
)

func TestParseImplementationConfigDefaults(t *testing.T) {
	cfg, err := ParseImplementationConfig(nil)
	if err != nil {
		t.Fatalf("parse empty config: %v", err)
	}
	if cfg.CostType != "CPM" {
		t.Fatalf("expected CPM default, got %q", cfg.CostType)
	}
	if cfg.DeliveryRate != "EVEN" {
		t.Fatalf("expected EVEN default, got %q", cfg.DeliveryRate)
	}
	if cfg.AdFormat != "display" {
		t.Fatalf("expected display default, got %q", cfg.AdFormat)
	}
	if cfg.Mode() != entities.AutomationManual {
		t.Fatalf("expected manual default mode, got %q", cfg.Mode())
	}
}

func TestParseImplementationConfigNormalizesCase(t *testing.T) {
	raw := json.RawMessage(`{"cost_type":"flat_rate","delivery_rate":"asap","ad_format":"HTML","automation_mode":"AUTOMATIC"}`)
	cfg, err := ParseImplementationConfig(raw)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.CostType != "FLAT_RATE" || cfg.DeliveryRate != "ASAP" || cfg.AdFormat != "html" {
		t.Fatalf("expected normalized values, got %+v", cfg)
	}
	if cfg.Mode() != entities.AutomationAutomatic {
		t.Fatalf("expected automatic mode, got %q", cfg.Mode())
	}
}

func TestParseImplementationConfigRejectsBadValues(t *testing.T) {
	cases := []string{
		`{"cost_type":"CPA"}`,
		`{"delivery_rate":"BURST"}`,
		`{"ad_format":"audio"}`,
		`{"frequency_cap":-1}`,
		`{not json`,
	}
	for _, raw := range cases {
		if _, err := ParseImplementationConfig(json.RawMessage(raw)); err == nil {
			t.Fatalf("expected error for %s", raw)
		}
	}
}

func TestZoneIDsMergesBothSourcesWithoutDuplicates(t *testing.T) {
	cfg := ImplementationConfig{
		TargetedZoneIDs: []string{"zone-1", "zone-2", " "},
		ZoneTargeting: []ZoneTarget{
			{ZoneID: "zone-2"},
			{ZoneID: "zone-3"},
		},
	}
	ids := cfg.ZoneIDs()
	want := []string{"zone-1", "zone-2", "zone-3"}
	if len(ids) != len(want) {
		t.Fatalf("expected %v, got %v", want, ids)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, ids)
		}
	}
}

func TestCampaignNameRendersTemplate(t *testing.T) {
	cfg := ImplementationConfig{CampaignNameTemplate: "{advertiser_name}/{po_number}/{product_name}"}
	name := cfg.CampaignName("PO-1", "Homepage", "Acme")
	if name != "Acme/PO-1/Homepage" {
		t.Fatalf("unexpected campaign name %q", name)
	}
}

func TestCreativeSizesForZoneFallsBackToProductSizes(t *testing.T) {
	productSizes := []CreativeSize{{Width: 728, Height: 90}}
	cfg := ImplementationConfig{
		CreativeSizes: productSizes,
		ZoneTargeting: []ZoneTarget{
			{ZoneID: "zone-1", Sizes: []CreativeSize{{Width: 300, Height: 250}}},
		},
	}
	if sizes := cfg.CreativeSizesForZone("zone-1"); len(sizes) != 1 || sizes[0].Width != 300 {
		t.Fatalf("expected zone-specific sizes, got %v", sizes)
	}
	if sizes := cfg.CreativeSizesForZone("zone-9"); len(sizes) != 1 || sizes[0].Width != 728 {
		t.Fatalf("expected fallback to product sizes, got %v", sizes)
	}
}
