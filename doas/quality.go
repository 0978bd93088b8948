package doas

import (
	"math"

	ppp "github.com/novacppp/novacppp"
)

const (
	defaultChiSqOkThreshold = 10.0
	defaultDeltaThreshold   = 0.1
	defaultSaturationMin    = 1000.0
	defaultSaturationMax    = 60000.0
)

// judgeQuality derives the "isOk" flag of spec.md §4.1 "Quality
// judgment": chi-square below threshold, peak saturation within range,
// delta below threshold, and a finite column error.
func judgeQuality(window *ppp.FitWindow, result *forwardResult, peakIntensity float64) bool {
	chiSqThreshold := window.ChiSqOkThreshold
	if chiSqThreshold <= 0 {
		chiSqThreshold = defaultChiSqOkThreshold
	}
	deltaThreshold := window.DeltaThreshold
	if deltaThreshold <= 0 {
		deltaThreshold = defaultDeltaThreshold
	}
	satMin := window.SaturationMin
	if satMin <= 0 {
		satMin = defaultSaturationMin
	}
	satMax := window.SaturationMax
	if satMax <= 0 {
		satMax = defaultSaturationMax
	}

	if result.chiSquare >= chiSqThreshold {
		return false
	}
	if result.delta >= deltaThreshold {
		return false
	}
	if peakIntensity < satMin || peakIntensity > satMax {
		return false
	}
	for _, e := range result.columnErr {
		if math.IsNaN(e) || math.IsInf(e, 0) {
			return false
		}
	}
	return true
}
