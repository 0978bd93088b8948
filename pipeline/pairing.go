package pipeline

import (
	"errors"
	"time"

	ppp "github.com/novacppp/novacppp"
	"github.com/novacppp/novacppp/geometry"
	"github.com/novacppp/novacppp/plumedb"
	"github.com/novacppp/novacppp/stats"
	"github.com/novacppp/novacppp/winddb"
)

// candidateForGeometry reports whether r qualifies for geometry pairing
// at all (spec.md §4.6 "Pair selection for geometry"): a flux-mode
// measurement, with a plume seen, above the completeness threshold.
// Per-pair checks (serial, volcano, distance, time gap) are evaluated in
// runGeometrySweep.
func candidateForGeometry(r *ppp.ExtendedScanResult, minCompleteness float64) bool {
	return r.Mode == ppp.ModeFlux && r.Plume.Found() && r.Plume.Completeness >= minCompleteness
}

// runGeometrySweep implements spec.md §4.6's "pairwise geometry over the
// sorted list with an O(n*k) sweep bounded by a time window": results
// must already be sorted by start time ascending, so once a following
// scan's start-time gap exceeds the configured bound, every later scan's
// gap is at least as large and the inner scan stops. Geometry outputs
// are inserted into wind/plumes here, on the orchestrator goroutine only
// (spec.md §5's "mutated only on the orchestrator thread" rule) — never
// from inside a worker.
func runGeometrySweep(
	results []ppp.ExtendedScanResult,
	opts Options,
	source geometry.Source,
	wind *winddb.DataBase,
	plumes *plumedb.DataBase,
	st *stats.Statistics,
) []ppp.GeometryResult {
	u := opts.User
	used := make([]bool, len(results))
	var out []ppp.GeometryResult

	for i := range results {
		if used[i] || !candidateForGeometry(&results[i], u.CalcGeometryCompletenessLimit) {
			continue
		}
		locA, err := opts.Setup.InstrumentLocation(results[i].Serial, results[i].StartTime())
		if err != nil {
			continue
		}

		if gr, ok := pairWith(results, i, used, opts, locA, source, st); ok {
			insertTwoScanResult(gr, wind, plumes, st)
			out = append(out, gr)
			continue
		}

		if gr, ok := singleInstrumentFallback(&results[i], locA, source, plumes, st); ok {
			insertSingleInstrumentResult(gr, results[i].StartTime(), wind, st)
			out = append(out, gr)
		}
	}

	return out
}

// pairWith looks ahead from i for the first later, unused, qualifying
// scan and solves the two-scan geometry for the pair.
func pairWith(results []ppp.ExtendedScanResult, i int, used []bool, opts Options, locA *ppp.InstrumentLocation, source geometry.Source, st *stats.Statistics) (ppp.GeometryResult, bool) {
	u := opts.User

	for j := i + 1; j < len(results); j++ {
		dt := results[j].StartTime().Sub(results[i].StartTime())
		if dt > u.CalcGeometryMaxTimeDifference {
			break
		}
		if used[j] || !candidateForGeometry(&results[j], u.CalcGeometryCompletenessLimit) {
			continue
		}
		if results[j].Serial == results[i].Serial {
			continue
		}

		locB, err := opts.Setup.InstrumentLocation(results[j].Serial, results[j].StartTime())
		if err != nil {
			continue
		}
		if !opts.Volcano.Matches(locA.Volcano) || !opts.Volcano.Matches(locB.Volcano) {
			continue
		}

		d := geometry.Distance(locA.Latitude, locA.Longitude, locB.Latitude, locB.Longitude)
		if d < u.CalcGeometryMinDistance || d > u.CalcGeometryMaxDistance {
			continue
		}

		gr, err := geometry.TwoScan(
			geometry.TwoScanInput{
				Location:         locA,
				PlumeCentre:      results[i].Plume.Centre,
				PlumeCentreError: results[i].Plume.CentreError,
				StartTime:        results[i].StartTime(),
			},
			geometry.TwoScanInput{
				Location:         locB,
				PlumeCentre:      results[j].Plume.Centre,
				PlumeCentreError: results[j].Plume.CentreError,
				StartTime:        results[j].StartTime(),
			},
			source,
		)
		if err != nil {
			recordGeometryFailure(err, st)
			continue
		}

		used[i], used[j] = true, true
		return gr, true
	}
	return ppp.GeometryResult{}, false
}

// singleInstrumentFallback implements "if no pair satisfies for a given
// scan but single-instrument wind direction is computable from the
// current best plume height, emit that instead".
func singleInstrumentFallback(r *ppp.ExtendedScanResult, loc *ppp.InstrumentLocation, source geometry.Source, plumes *plumedb.DataBase, st *stats.Statistics) (ppp.GeometryResult, bool) {
	height, ok := plumes.At(r.StartTime())
	if !ok {
		return ppp.GeometryResult{}, false
	}
	gr, err := geometry.SingleKnownAltitude(loc, r.Plume.Centre, r.Plume.CentreError, height.Altitude, source)
	if err != nil {
		recordGeometryFailure(err, st)
		return ppp.GeometryResult{}, false
	}
	return gr, true
}

// recordGeometryFailure counts spec.md §7 category-4 numerical failures
// out of the geometry engine (ErrDegenerateGeometry/ErrNonConvergence),
// as opposed to ErrNoPlume, which is an ordinary "nothing to solve"
// outcome candidateForGeometry is already supposed to have filtered.
func recordGeometryFailure(err error, st *stats.Statistics) {
	if errors.Is(err, geometry.ErrDegenerateGeometry) || errors.Is(err, geometry.ErrNonConvergence) {
		st.IncrementNumericFailure(stats.DegenerateGeometry)
	}
}

// insertTwoScanResult records both the altitude and wind-direction
// halves of a two-scan solve. The wind speed is inherited from whatever
// record already covers this instant: geometry never derives a speed of
// its own (spec.md §4.4 only solves for altitude and direction), so a
// fresh record would otherwise silently zero it out for any query that
// prefers this entry over an earlier, speed-bearing one.
func insertTwoScanResult(gr ppp.GeometryResult, wind *winddb.DataBase, plumes *plumedb.DataBase, st *stats.Statistics) {
	speed, speedErr := inheritedSpeed(wind, gr.StartTime)

	wind.Insert(winddb.Record{
		Field: ppp.WindField{
			Speed:     speed,
			Direction: gr.WindDirection,
			Source:    ppp.WindGeometryCalc,
			From:      gr.StartTime.Add(-gr.StartTimeDifference / 2),
			To:        gr.StartTime.Add(gr.StartTimeDifference / 2),
		},
		SpeedError:     speedErr,
		DirectionError: gr.WindDirectionError,
	})
	plumes.Insert(ppp.PlumeHeight{
		Altitude: gr.Altitude,
		Error:    gr.AltitudeError,
		Source:   ppp.WindGeometryCalc,
	})
	st.IncrementGeometryResult()
}

// insertSingleInstrumentResult records the wind-direction half only: a
// single-instrument solve never touches plumedb, since it consumes the
// current best plume height rather than producing a new one.
func insertSingleInstrumentResult(gr ppp.GeometryResult, at time.Time, wind *winddb.DataBase, st *stats.Statistics) {
	speed, speedErr := inheritedSpeed(wind, at)

	wind.Insert(winddb.Record{
		Field: ppp.WindField{
			Speed:     speed,
			Direction: gr.WindDirection,
			Source:    ppp.WindGeometryCalcSingleInstrument,
			From:      at,
			To:        at,
		},
		SpeedError:     speedErr,
		DirectionError: gr.WindDirectionError,
	})
	st.IncrementGeometryResult()
}

func inheritedSpeed(wind *winddb.DataBase, at time.Time) (speed, speedError float64) {
	if existing, ok := wind.At(at); ok {
		return existing.Field.Speed, existing.SpeedError
	}
	return 0, 0
}
