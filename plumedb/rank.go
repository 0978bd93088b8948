package plumedb

import ppp "github.com/novacppp/novacppp"

// plumeRank orders ppp.WindSource from least to most trustworthy for
// PlumeDataBase query resolution. Grounded the same way winddb.rank is
// (no original priority table survived retrieval): derived from
// flux.Grade's plume-height sub-grade, which grades the two
// geometry-calculated sources Green and everything but default/user
// Yellow — the inverse preference from the wind sub-grade's forecast
// bias, hence a separate ranking rather than a shared one.
func plumeRank(s ppp.WindSource) int {
	switch s {
	case ppp.WindDefault:
		return 0
	case ppp.WindUser:
		return 1
	case ppp.WindWrf, ppp.WindNoaaGdas, ppp.WindNoaaFnl, ppp.WindEcmwfAnalysis, ppp.WindEcmwfForecast, ppp.WindDualBeam:
		return 2
	case ppp.WindGeometryCalcSingleInstrument:
		return 3
	case ppp.WindGeometryCalc:
		return 4
	default:
		return -1
	}
}
