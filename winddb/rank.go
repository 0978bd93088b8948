package winddb

import ppp "github.com/novacppp/novacppp"

// rank orders ppp.WindSource from least to most trustworthy for
// WindDataBase query resolution. No original source-priority table
// survived distillation retrieval for the wind database specifically;
// this ordering is derived from flux.Grade's own classification of the
// same enum (spec.md §4.5: default/user input grades Red, forecast/
// analysis/dual-beam/model sources grade Green) rather than invented
// independently of anything in the corpus.
func rank(s ppp.WindSource) int {
	switch s {
	case ppp.WindDefault:
		return 0
	case ppp.WindUser:
		return 1
	case ppp.WindGeometryCalcSingleInstrument:
		return 2
	case ppp.WindGeometryCalc:
		return 3
	case ppp.WindWrf, ppp.WindNoaaGdas, ppp.WindNoaaFnl:
		return 4
	case ppp.WindEcmwfAnalysis:
		return 5
	case ppp.WindEcmwfForecast:
		return 6
	case ppp.WindDualBeam:
		return 7
	default:
		return -1
	}
}
