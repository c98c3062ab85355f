// Package targeting declares per-adapter geo targeting capabilities and
// validates targeting requests against them before any backend call.
package targeting

import (
	"fmt"
	"sort"
	"strings"
)

// GeoItem is one metro or postal targeting entry tagged with the taxonomy
// it belongs to (e.g. "nielsen_dma", "us_zip").
type GeoItem struct {
	System string
	Values []string
}

// Spec is the geo portion of a targeting request. Each dimension carries an
// inclusion and an exclusion list; both are validated.
type Spec struct {
	GeoCountries        []string
	GeoCountriesExclude []string
	GeoRegions          []string
	GeoRegionsExclude   []string

	GeoMetros             []GeoItem
	GeoMetrosExclude      []GeoItem
	GeoPostalAreas        []GeoItem
	GeoPostalAreasExclude []GeoItem
}

// Capabilities declares which geo systems a backend can represent. Values
// are constructed once per adapter and never mutated.
type Capabilities struct {
	GeoCountries bool
	GeoRegions   bool

	// Metro / DMA systems.
	NielsenDMA    bool
	EurostatNUTS2 bool
	UKITL1        bool
	UKITL2        bool

	// Postal code systems.
	USZip         bool
	USZipPlusFour bool
	CAFSA         bool
	CAFull        bool
	GBOutward     bool
	GBFull        bool
	DEPLZ         bool
	FRCodePostal  bool
	AUPostcode    bool
}

// Violation reports a single targeting item whose geo system the adapter
// cannot represent.
type Violation struct {
	Dimension string
	System    string
	Supported []string
	Message   string
}

const (
	DimensionMetro  = "geo_metros"
	DimensionPostal = "geo_postal_areas"
)

func (c Capabilities) metroSystems() map[string]bool {
	return map[string]bool{
		"nielsen_dma":    c.NielsenDMA,
		"eurostat_nuts2": c.EurostatNUTS2,
		"uk_itl1":        c.UKITL1,
		"uk_itl2":        c.UKITL2,
	}
}

func (c Capabilities) postalSystems() map[string]bool {
	return map[string]bool{
		"us_zip":           c.USZip,
		"us_zip_plus_four": c.USZipPlusFour,
		"ca_fsa":           c.CAFSA,
		"ca_full":          c.CAFull,
		"gb_outward":       c.GBOutward,
		"gb_full":          c.GBFull,
		"de_plz":           c.DEPLZ,
		"fr_code_postal":   c.FRCodePostal,
		"au_postcode":      c.AUPostcode,
	}
}

// SupportedMetroSystems returns the enabled metro systems, sorted.
func (c Capabilities) SupportedMetroSystems() []string {
	return enabledSystems(c.metroSystems())
}

// SupportedPostalSystems returns the enabled postal systems, sorted.
func (c Capabilities) SupportedPostalSystems() []string {
	return enabledSystems(c.postalSystems())
}

// ValidateGeoSystems checks every metro and postal item, inclusion and
// exclusion alike, against the declared capabilities. It is pure: no
// violations yields an empty result, and callers must translate a non-empty
// result into a rejected request before any backend mutation.
func (c Capabilities) ValidateGeoSystems(spec Spec) []Violation {
	var violations []Violation

	metros := append(append([]GeoItem(nil), spec.GeoMetros...), spec.GeoMetrosExclude...)
	violations = append(violations, validateDimension(DimensionMetro, metros, c.metroSystems())...)

	postals := append(append([]GeoItem(nil), spec.GeoPostalAreas...), spec.GeoPostalAreasExclude...)
	violations = append(violations, validateDimension(DimensionPostal, postals, c.postalSystems())...)

	return violations
}

func validateDimension(dimension string, items []GeoItem, systems map[string]bool) []Violation {
	if len(items) == 0 {
		return nil
	}
	supported := enabledSystems(systems)
	alternatives := "none"
	if len(supported) > 0 {
		alternatives = strings.Join(supported, ", ")
	}

	var violations []Violation
	for _, item := range items {
		system := strings.ToLower(strings.TrimSpace(item.System))
		if systems[system] {
			continue
		}
		violations = append(violations, Violation{
			Dimension: dimension,
			System:    system,
			Supported: supported,
			Message: fmt.Sprintf("unsupported %s system %q; this adapter supports: %s",
				dimensionLabel(dimension), system, alternatives),
		})
	}
	return violations
}

func dimensionLabel(dimension string) string {
	if dimension == DimensionPostal {
		return "postal"
	}
	return "metro"
}

func enabledSystems(systems map[string]bool) []string {
	enabled := make([]string, 0, len(systems))
	for name, ok := range systems {
		if ok {
			enabled = append(enabled, name)
		}
	}
	sort.Strings(enabled)
	return enabled
}
