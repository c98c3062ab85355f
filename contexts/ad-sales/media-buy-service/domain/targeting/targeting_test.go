package targeting

import (
	"strings"
	"testing"
)

func TestValidateGeoSystemsAcceptsSupportedSystems(t *testing.T) {
	caps := Capabilities{NielsenDMA: true, USZip: true}
	spec := Spec{
		GeoMetros:      []GeoItem{{System: "nielsen_dma", Values: []string{"501"}}},
		GeoPostalAreas: []GeoItem{{System: "us_zip", Values: []string{"10001"}}},
	}

	if violations := caps.ValidateGeoSystems(spec); len(violations) != 0 {
		t.Fatalf("expected no violations, got %v", violations)
	}
}

func TestValidateGeoSystemsPoolsIncludeAndExclude(t *testing.T) {
	caps := Capabilities{NielsenDMA: true}
	spec := Spec{
		GeoMetros:        []GeoItem{{System: "eurostat_nuts2", Values: []string{"DE21"}}},
		GeoMetrosExclude: []GeoItem{{System: "uk_itl1", Values: []string{"TLC"}}},
	}

	violations := caps.ValidateGeoSystems(spec)
	if len(violations) != 2 {
		t.Fatalf("expected 2 violations (include and exclude), got %d: %v", len(violations), violations)
	}
	for _, violation := range violations {
		if violation.Dimension != DimensionMetro {
			t.Fatalf("expected dimension %q, got %q", DimensionMetro, violation.Dimension)
		}
		if len(violation.Supported) != 1 || violation.Supported[0] != "nielsen_dma" {
			t.Fatalf("expected supported list [nielsen_dma], got %v", violation.Supported)
		}
	}
}

func TestValidateGeoSystemsNormalizesSystemNames(t *testing.T) {
	caps := Capabilities{USZip: true}
	spec := Spec{
		GeoPostalAreas: []GeoItem{{System: "  US_ZIP  ", Values: []string{"94105"}}},
	}

	if violations := caps.ValidateGeoSystems(spec); len(violations) != 0 {
		t.Fatalf("expected case-insensitive match, got %v", violations)
	}
}

func TestValidateGeoSystemsMessageNamesAlternatives(t *testing.T) {
	caps := Capabilities{USZip: true, GBFull: true}
	spec := Spec{
		GeoPostalAreas: []GeoItem{{System: "de_plz", Values: []string{"10115"}}},
	}

	violations := caps.ValidateGeoSystems(spec)
	if len(violations) != 1 {
		t.Fatalf("expected 1 violation, got %d", len(violations))
	}
	message := violations[0].Message
	if !strings.Contains(message, "de_plz") || !strings.Contains(message, "gb_full, us_zip") {
		t.Fatalf("expected message to name the system and sorted alternatives, got %q", message)
	}
}

func TestValidateGeoSystemsNoAlternativesSaysNone(t *testing.T) {
	caps := Capabilities{GeoCountries: true}
	spec := Spec{
		GeoMetros: []GeoItem{{System: "nielsen_dma", Values: []string{"501"}}},
	}

	violations := caps.ValidateGeoSystems(spec)
	if len(violations) != 1 {
		t.Fatalf("expected 1 violation, got %d", len(violations))
	}
	if !strings.Contains(violations[0].Message, "none") {
		t.Fatalf("expected message to say no alternatives exist, got %q", violations[0].Message)
	}
}

func TestSupportedSystemsAreSorted(t *testing.T) {
	caps := Capabilities{USZip: true, CAFSA: true, AUPostcode: true}
	got := caps.SupportedPostalSystems()
	want := []string{"au_postcode", "ca_fsa", "us_zip"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}
