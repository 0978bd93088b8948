package ppp

import "strings"

// Volcano is one immutable entry of the volcano catalog (spec.md §3).
// SPEC_FULL.md §5 adds Aliases and SourceRadius beyond spec.md's base
// fields, carried over from the original VolcanoInfo catalog.
type Volcano struct {
	Code           string
	Name           string
	SimplifiedName string
	// Aliases holds additional spellings the original catalog matched a
	// volcano against (original_source VolcanoInfo::GetVolcanoCode
	// compared several name variants); kept so config.Catalog lookups are
	// not limited to Name/SimplifiedName/Code.
	Aliases []string

	PeakLatitude, PeakLongitude, PeakAltitude float64

	// LocalTimeOffset is the local civil time's offset from UTC, used to
	// interpret the calibration-window hours in SPEC_FULL.md §5.
	LocalTimeOffset float64

	// SourceRadius bounds how far apart two instruments on this volcano
	// may be for two-scan geometry pairing (spec.md §4.6's 200-10000m
	// defaults may be overridden per volcano). Zero means "use defaults".
	SourceRadius float64
}

// Matches reports whether query (case-insensitively) names this volcano
// by code, name, simplified name, or any alias.
func (v *Volcano) Matches(query string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return false
	}
	if strings.ToLower(v.Code) == q || strings.ToLower(v.Name) == q || strings.ToLower(v.SimplifiedName) == q {
		return true
	}
	for _, a := range v.Aliases {
		if strings.ToLower(a) == q {
			return true
		}
	}
	return false
}
