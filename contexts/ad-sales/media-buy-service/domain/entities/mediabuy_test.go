package entities

import "testing"

func TestBuyIDEncodeAndParseRoundTrip(t *testing.T) {
	id := BuyID{Backend: "zonal", NativeID: "12345"}
	encoded := id.Encode()
	if encoded != "zonal_12345" {
		t.Fatalf("expected zonal_12345, got %q", encoded)
	}
	parsed := ParseBuyID("zonal", encoded)
	if parsed != id {
		t.Fatalf("round trip mismatch: %+v", parsed)
	}
}

func TestParseBuyIDStripsLegacyPrefix(t *testing.T) {
	parsed := ParseBuyID("zonal", "mb_987")
	if parsed.NativeID != "987" {
		t.Fatalf("expected legacy prefix stripped, got %+v", parsed)
	}
}

func TestParseBuyIDKeepsUnrecognizedShapeAsIs(t *testing.T) {
	parsed := ParseBuyID("zonal", "PO-2026-001")
	if parsed.NativeID != "PO-2026-001" || parsed.Backend != "" {
		t.Fatalf("expected placeholder kept as-is, got %+v", parsed)
	}
}

func TestBuyIDEncodeUntagged(t *testing.T) {
	id := BuyID{NativeID: "PO-2026-001"}
	if id.Encode() != "PO-2026-001" {
		t.Fatalf("expected untagged id emitted as-is, got %q", id.Encode())
	}
}

func TestNormalizeAutomationModeDefaultsToManual(t *testing.T) {
	cases := map[string]AutomationMode{
		"automatic":             AutomationAutomatic,
		" AUTOMATIC ":           AutomationAutomatic,
		"confirmation_required": AutomationConfirmationRequired,
		"manual":                AutomationManual,
		"":                      AutomationManual,
		"bogus":                 AutomationManual,
	}
	for raw, want := range cases {
		if got := NormalizeAutomationMode(raw); got != want {
			t.Fatalf("NormalizeAutomationMode(%q) = %q, want %q", raw, got, want)
		}
	}
}

func TestMergeAdvertisementIDsDeduplicates(t *testing.T) {
	config := PackageConfig{AdvertisementIDs: []string{"ad-1", "ad-2"}}
	config.MergeAdvertisementIDs([]string{"ad-2", "ad-3", "ad-3"})
	want := []string{"ad-1", "ad-2", "ad-3"}
	if len(config.AdvertisementIDs) != len(want) {
		t.Fatalf("expected %v, got %v", want, config.AdvertisementIDs)
	}
	for i := range want {
		if config.AdvertisementIDs[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, config.AdvertisementIDs)
		}
	}
}

func TestStepStatusIsTerminal(t *testing.T) {
	terminal := []StepStatus{StepStatusCompleted, StepStatusFailed, StepStatusRejected}
	for _, status := range terminal {
		if !status.IsTerminal() {
			t.Fatalf("expected %q to be terminal", status)
		}
	}
	open := []StepStatus{StepStatusApproval, StepStatusWorking}
	for _, status := range open {
		if status.IsTerminal() {
			t.Fatalf("expected %q to be open", status)
		}
	}
}
