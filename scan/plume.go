// Package scan drives per-spectrum DOAS evaluation across a scan and
// derives the plume geometry from the resulting column series (spec.md
// §4.2, §4.3).
package scan

import (
	"math"
	"sort"

	"github.com/samber/lo"

	ppp "github.com/novacppp/novacppp"
)

const (
	// eInv is the e^-1 fraction of the peak column that marks a plume
	// edge (spec.md §4.3 "Plume detection").
	eInv = 0.36787944117144233

	minGoodForOffset     = 5
	minGoodOutsideWindow = 5
	minIntervalWidth     = 5
	offsetFraction       = 0.2

	scoreSigmaMultiplier = 5.0
)

// AnalyzePlume implements spec.md §4.3 over one scan's aligned column
// series. angles and azimuths are the per-spectrum viewing directions
// (azimuths only meaningful when hasAzimuth is set); columns/columnErrors
// are the fit window's resolved species values; good marks which points
// are eligible ("isgoodpoint && isOk").
func AnalyzePlume(angles, azimuths []float64, hasAzimuth bool, columns, columnErrors []float64, good []bool) ppp.PlumeInScanProperty {
	n := len(columns)
	var goodIdx []int
	for i := 0; i < n; i++ {
		if good[i] {
			goodIdx = append(goodIdx, i)
		}
	}

	offset := computeOffset(columns, goodIdx)
	if len(goodIdx) == 0 {
		out := ppp.NoPlume()
		out.Offset = offset
		return out
	}

	minGood := lo.Min(lo.Map(goodIdx, func(i, _ int) float64 { return columns[i] }))
	adjusted := make([]float64, n)
	for i := range columns {
		adjusted[i] = columns[i] - minGood
	}

	meanErr := 0.0
	for _, i := range goodIdx {
		meanErr += columnErrors[i]
	}
	meanErr /= float64(len(goodIdx))

	lowIdx, highIdx, bestScore, found := bestInterval(adjusted, goodIdx)
	if !found || bestScore <= scoreSigmaMultiplier*meanErr {
		out := ppp.NoPlume()
		out.Offset = offset
		return out
	}

	peakIdx := lowIdx
	peak := adjusted[lowIdx]
	for i := lowIdx; i <= highIdx; i++ {
		if !good[i] {
			continue
		}
		if adjusted[i] > peak {
			peak = adjusted[i]
			peakIdx = i
		}
	}

	centre, centreAzimuth := weightedCentroid(angles, azimuths, hasAzimuth, adjusted, good, lowIdx, highIdx)
	lowEdge := crossingAngle(angles, adjusted, good, peakIdx, -1, eInv*peak)
	highEdge := crossingAngle(angles, adjusted, good, peakIdx, 1, eInv*peak)
	lowNinety := crossingAngle(angles, adjusted, good, peakIdx, -1, 0.9*peak)
	highNinety := crossingAngle(angles, adjusted, good, peakIdx, 1, 0.9*peak)

	completeness, hasCompleteness := computeCompleteness(columns, good, peak)
	if !hasCompleteness {
		out := ppp.NoPlume()
		out.Offset = offset
		return out
	}

	return ppp.PlumeInScanProperty{
		Centre:        centre,
		CentreAzimuth: centreAzimuth,
		CentreError:   math.Abs(highNinety-lowNinety) / 2,
		LowEdge:       lowEdge,
		HighEdge:      highEdge,
		Completeness:  completeness,
		Offset:        offset,
	}
}

// computeOffset averages the lowest 20% of good columns, requiring at
// least five good points (spec.md §4.3 "Offset").
func computeOffset(columns []float64, goodIdx []int) float64 {
	if len(goodIdx) < minGoodForOffset {
		return 0
	}
	values := make([]float64, len(goodIdx))
	for i, idx := range goodIdx {
		values[i] = columns[idx]
	}
	sort.Float64s(values)

	k := int(math.Ceil(offsetFraction * float64(len(values))))
	if k < 1 {
		k = 1
	}
	sum := 0.0
	for i := 0; i < k; i++ {
		sum += values[i]
	}
	return sum / float64(k)
}

// bestInterval searches every [low, high] sub-interval of width >= 5
// that leaves >= 5 good points outside, scoring each by (mean inside) -
// (mean outside) over the baseline-subtracted column series.
func bestInterval(adjusted []float64, goodIdx []int) (low, high int, score float64, found bool) {
	n := len(adjusted)
	bestScore := math.Inf(-1)
	bestLow, bestHigh := -1, -1

	for lo := 0; lo < n; lo++ {
		for hi := lo + minIntervalWidth - 1; hi < n; hi++ {
			insideSum, insideN := 0.0, 0
			outsideSum, outsideN := 0.0, 0
			for _, idx := range goodIdx {
				if idx >= lo && idx <= hi {
					insideSum += adjusted[idx]
					insideN++
				} else {
					outsideSum += adjusted[idx]
					outsideN++
				}
			}
			if insideN == 0 || outsideN < minGoodOutsideWindow {
				continue
			}
			s := insideSum/float64(insideN) - outsideSum/float64(outsideN)
			if s > bestScore {
				bestScore = s
				bestLow, bestHigh = lo, hi
			}
		}
	}

	if bestLow < 0 {
		return 0, 0, 0, false
	}
	return bestLow, bestHigh, bestScore, true
}

// weightedCentroid returns the column-weighted centre angle (and, for
// two-axis instruments, azimuth) over the good points of [lowIdx, highIdx].
func weightedCentroid(angles, azimuths []float64, hasAzimuth bool, adjusted []float64, good []bool, lowIdx, highIdx int) (centre, centreAzimuth float64) {
	weightSum, angleSum, azimuthSum := 0.0, 0.0, 0.0
	for i := lowIdx; i <= highIdx; i++ {
		if !good[i] || adjusted[i] <= 0 {
			continue
		}
		w := adjusted[i]
		weightSum += w
		angleSum += w * angles[i]
		if hasAzimuth {
			azimuthSum += w * azimuths[i]
		}
	}
	if weightSum == 0 {
		return math.NaN(), math.NaN()
	}
	centre = angleSum / weightSum
	if hasAzimuth {
		centreAzimuth = azimuthSum / weightSum
	} else {
		centreAzimuth = math.NaN()
	}
	return centre, centreAzimuth
}

// crossingAngle walks outward from peakIdx in direction dir (-1 or +1)
// over good points and linearly interpolates the angle at which adjusted
// crosses threshold.
func crossingAngle(angles, adjusted []float64, good []bool, peakIdx, dir int, threshold float64) float64 {
	prevIdx := peakIdx
	prevVal := adjusted[peakIdx]
	n := len(adjusted)

	for i := peakIdx + dir; i >= 0 && i < n; i += dir {
		if !good[i] {
			continue
		}
		v := adjusted[i]
		if v <= threshold {
			if prevVal == v {
				return angles[i]
			}
			frac := (prevVal - threshold) / (prevVal - v)
			return angles[prevIdx] + frac*(angles[i]-angles[prevIdx])
		}
		prevIdx = i
		prevVal = v
	}
	return angles[prevIdx]
}

// computeCompleteness implements spec.md §4.3 "Completeness": requires
// at least five good values on each side of the series.
func computeCompleteness(columns []float64, good []bool, peak float64) (completeness float64, ok bool) {
	leftVals := firstGood(columns, good, 5, 1)
	rightVals := firstGood(columns, good, 5, -1)
	if len(leftVals) < 5 || len(rightVals) < 5 || peak <= 0 {
		return 0, false
	}

	leftMean := mean(leftVals)
	rightMean := mean(rightVals)
	edge := leftMean
	if rightMean > edge {
		edge = rightMean
	}

	completeness = 1 - 0.5*edge/peak
	if completeness > 1 {
		completeness = 1
	}
	return completeness, true
}

// firstGood collects up to count good values scanning from the start
// (dir=1) or the end (dir=-1) of the series.
func firstGood(columns []float64, good []bool, count, dir int) []float64 {
	var out []float64
	n := len(columns)
	start, end := 0, n
	if dir < 0 {
		start, end = n-1, -1
	}
	for i := start; i != end && len(out) < count; i += dir {
		if good[i] {
			out = append(out, columns[i])
		}
	}
	return out
}

func mean(v []float64) float64 {
	sum := 0.0
	for _, x := range v {
		sum += x
	}
	return sum / float64(len(v))
}
