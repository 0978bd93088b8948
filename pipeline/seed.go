package pipeline

import (
	"math"

	ppp "github.com/novacppp/novacppp"
	"github.com/novacppp/novacppp/config"
	"github.com/novacppp/novacppp/plumedb"
)

// seedPlumeHeight implements CPostProcessing::PreparePlumeHeights: the
// default plume-height entry is the volcano's peak altitude, with an
// error estimate of half the gap between the peak and the highest
// instrument configured on that volcano (or half the peak altitude
// itself, if no instrument names this volcano). plumedb.Seed only takes
// the flat altitude; this richer, original-matching error estimate is
// computed here instead, once per run, rather than widening that
// package's simpler helper for a single caller.
func seedPlumeHeight(plumes *plumedb.DataBase, setup *config.Setup, volcano ppp.Volcano) {
	highest, found := highestInstrumentAltitude(setup, volcano)

	errorEstimate := volcano.PeakAltitude / 2
	if found {
		errorEstimate = math.Abs(volcano.PeakAltitude-highest) / 2
	}

	plumes.Insert(ppp.PlumeHeight{
		Altitude: volcano.PeakAltitude,
		Error:    errorEstimate,
		Source:   ppp.WindDefault,
	})
}

func highestInstrumentAltitude(setup *config.Setup, volcano ppp.Volcano) (float64, bool) {
	highest := 0.0
	found := false
	for _, ic := range setup.Instruments {
		for _, loc := range ic.Locations {
			if !volcano.Matches(loc.Volcano) {
				continue
			}
			if !found || loc.Altitude > highest {
				highest = loc.Altitude
				found = true
			}
		}
	}
	return highest, found
}
