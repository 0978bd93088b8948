package ppp

import "time"

// WindSource is the tagged provenance of a wind-field value (spec.md §3),
// ranked for database tie-breaking (lower rank wins in WindDataBase ties;
// see winddb.DataBase) and for flux quality grading (flux.Grade).
type WindSource int

const (
	WindDefault WindSource = iota
	WindUser
	WindEcmwfForecast
	WindEcmwfAnalysis
	WindDualBeam
	WindWrf
	WindNoaaGdas
	WindNoaaFnl
	WindGeometryCalc
	WindGeometryCalcSingleInstrument
)

func (s WindSource) String() string {
	switch s {
	case WindDefault:
		return "default"
	case WindUser:
		return "user"
	case WindEcmwfForecast:
		return "ecmwf_forecast"
	case WindEcmwfAnalysis:
		return "ecmwf_analysis"
	case WindDualBeam:
		return "dual_beam"
	case WindWrf:
		return "wrf"
	case WindNoaaGdas:
		return "noaa_gdas"
	case WindNoaaFnl:
		return "noaa_fnl"
	case WindGeometryCalc:
		return "geometry_calc"
	case WindGeometryCalcSingleInstrument:
		return "geometry_calc_single_instr"
	default:
		return "unknown"
	}
}

// IsCalculated reports whether the source is one of the two
// geometry-derived sources, used by flux quality grading (spec.md §4.5).
func (s WindSource) IsCalculated() bool {
	return s == WindGeometryCalc || s == WindGeometryCalcSingleInstrument
}

// IsForecastGrade reports whether the source counts as "forecast/analysis/
// dual-beam/wrf/gdas/fnl" for the wind quality sub-grade (spec.md §4.5
// green tier).
func (s WindSource) IsForecastGrade() bool {
	switch s {
	case WindEcmwfForecast, WindEcmwfAnalysis, WindDualBeam, WindWrf, WindNoaaGdas, WindNoaaFnl:
		return true
	default:
		return false
	}
}

// WindField is one wind-speed/direction record, optionally tagged with a
// validity interval and geographic point (spec.md §3).
type WindField struct {
	Speed    float64 // m/s
	Direction float64 // degrees from north, clockwise
	Source   WindSource

	From, To time.Time // zero values mean "always valid"

	HasPoint           bool
	Latitude, Longitude float64
}
