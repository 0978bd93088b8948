package pipeline

import (
	ppp "github.com/novacppp/novacppp"
	"github.com/novacppp/novacppp/config"
	"github.com/novacppp/novacppp/flux"
	"github.com/novacppp/novacppp/fluxlog"
	"github.com/novacppp/novacppp/plumedb"
	"github.com/novacppp/novacppp/stats"
	"github.com/novacppp/novacppp/winddb"
)

// integrateFlux implements the per-scan tail of spec.md §4.6: "for each
// scan, read wind + plume, compute flux (§4.5), append to flux log",
// applying §4.5's rejection rules before calling flux.Integrate. Each
// rejection is tallied under its spec.md §7 taxonomy-3 reason so
// ProcessingStatistics.txt explains exactly why a scan produced no flux
// row, rather than just how many didn't.
func integrateFlux(results []ppp.ExtendedScanResult, opts Options, wind *winddb.DataBase, plumes *plumedb.DataBase, st *stats.Statistics) []fluxlog.Entry {
	var entries []fluxlog.Entry

	reject := func(r *ppp.ExtendedScanResult, reason stats.QualityRejection) {
		st.IncrementQualityRejection(reason)
		r.Rejected = reason.String()
	}

	for i := range results {
		r := &results[i]
		if r.Mode != ppp.ModeFlux {
			continue
		}
		if !r.Plume.Found() {
			reject(r, stats.NoPlume)
			continue
		}
		if r.Plume.Completeness < opts.User.CompletenessLimitFlux {
			reject(r, stats.LowCompleteness)
			continue
		}

		loc, err := opts.Setup.InstrumentLocation(r.Serial, r.StartTime())
		if err != nil {
			reject(r, stats.NoWindRecord)
			continue
		}
		windRecord, ok := wind.At(r.StartTime())
		if !ok {
			reject(r, stats.NoWindRecord)
			continue
		}
		height, ok := plumes.At(r.StartTime())
		if !ok {
			reject(r, stats.NoPlumeHeightRecord)
			continue
		}
		if height.Altitude-loc.Altitude <= 0 {
			reject(r, stats.PlumeBelowInstrument)
			continue
		}

		species := mainSpeciesFor(opts.Setup, r.Serial)
		result, err := flux.Integrate(r, species, loc, windRecord.Field, windRecord.SpeedError, windRecord.DirectionError, height, opts.User.CompletenessLimitFlux)
		if err != nil {
			reject(r, qualityRejectionFor(err))
			continue
		}

		r.Flux = &result
		st.IncrementFluxResult()
		entries = append(entries, fluxlog.Entry{
			Result:             result,
			WindSpeedError:     windRecord.SpeedError,
			WindDirectionError: windRecord.DirectionError,
		})
	}

	return entries
}

// qualityRejectionFor maps flux.Integrate's own rejection check (it
// re-verifies everything integrateFlux already checked, plus the
// species-has-no-column-series case this package cannot check ahead of
// time) onto the nearest spec.md §7 taxonomy-3 reason.
func qualityRejectionFor(err error) stats.QualityRejection {
	switch err {
	case flux.ErrPlumeAbsent:
		return stats.NoPlume
	case flux.ErrLowCompleteness:
		return stats.LowCompleteness
	case flux.ErrPlumeBelowInstrument:
		return stats.PlumeBelowInstrument
	case flux.ErrUnknownInstrument:
		return stats.NoWindRecord
	default:
		return stats.NoPlumeHeightRecord
	}
}

// mainSpeciesFor returns the species the flux integrator reads for
// serial: the first reference of its first configured fit window,
// matching scan.EvaluateScan's own mainSpecies choice so flux integrates
// the same column series the plume analyzer measured completeness on.
func mainSpeciesFor(setup *config.Setup, serial string) string {
	ic, err := setup.Instrument(serial)
	if err != nil || len(ic.FitWindows) == 0 || len(ic.FitWindows[0].References) == 0 {
		return ""
	}
	return ic.FitWindows[0].References[0].Name
}
