// Package plumedb implements spec.md §3/§4.6's PlumeDataBase: the
// append-only, process-local, time-keyed plume-height store, seeded
// with a default entry from the volcano peak altitude and queried once
// per scan by the orchestrator.
package plumedb

import (
	"time"

	"github.com/samber/lo"

	ppp "github.com/novacppp/novacppp"
)

type entry struct {
	height ppp.PlumeHeight
	seq    int
}

// DataBase is the append-only plume-height store of spec.md §4.6/§6.
// Like winddb.DataBase, it is mutated only on the orchestrator
// goroutine (spec.md §5) and holds no lock of its own.
type DataBase struct {
	entries []entry
	next    int
}

// Insert appends h; see winddb.DataBase.Insert for the append-only
// rationale this package shares with it.
func (db *DataBase) Insert(h ppp.PlumeHeight) {
	db.entries = append(db.entries, entry{height: h, seq: db.next})
	db.next++
}

// Seed inserts the default plume-height entry spec.md §4.6 requires at
// startup: the volcano's peak altitude, tagged WindDefault, valid for
// all time until a better record supersedes it.
func (db *DataBase) Seed(peakAltitude float64) {
	db.Insert(ppp.PlumeHeight{Altitude: peakAltitude, Source: ppp.WindDefault})
}

// At returns the highest-rank plume-height record whose validity
// interval contains t, using plumeRank rather than winddb's rank (the
// two databases prefer different sources for the same spec.md §4.5
// sub-grades: plumeRank favors the geometry-calculated sources that
// grade Green for plume-height, not the ones that grade Green for wind).
func (db *DataBase) At(t time.Time) (ppp.PlumeHeight, bool) {
	var best *entry
	for i := range db.entries {
		e := &db.entries[i]
		if !covers(e.height.From, e.height.To, t) {
			continue
		}
		if best == nil || better(*e, *best) {
			best = e
		}
	}
	if best == nil {
		return ppp.PlumeHeight{}, false
	}
	return best.height, true
}

func covers(from, to, t time.Time) bool {
	if !from.IsZero() && t.Before(from) {
		return false
	}
	if !to.IsZero() && t.After(to) {
		return false
	}
	return true
}

func better(a, b entry) bool {
	ra, rb := plumeRank(a.height.Source), plumeRank(b.height.Source)
	if ra != rb {
		return ra > rb
	}
	return a.seq > b.seq
}

// All returns every inserted record in insertion order.
func (db *DataBase) All() []ppp.PlumeHeight {
	return lo.Map(db.entries, func(e entry, _ int) ppp.PlumeHeight { return e.height })
}

// Len reports the number of inserted records.
func (db *DataBase) Len() int { return len(db.entries) }
