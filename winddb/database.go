// Package winddb implements spec.md §3/§4.6's WindDataBase: the
// append-only, process-local, time-keyed wind-field store the
// orchestrator queries once per scan and persists to XML on shutdown.
package winddb

import (
	"time"

	"github.com/samber/lo"

	ppp "github.com/novacppp/novacppp"
)

// Record pairs a wind-field value with the uncertainty of its own
// measurement or forecast. ppp.WindField itself carries no error
// (flux.Integrate's doc comment already notes this gap); DataBase keeps
// the error alongside the field rather than widening the shared type.
type Record struct {
	Field          ppp.WindField
	SpeedError     float64
	DirectionError float64
}

type entry struct {
	record Record
	seq    int
}

// DataBase is the append-only wind-field store of spec.md §4.6/§6. All
// mutation happens on the orchestrator goroutine (spec.md §5: "mutated
// only on the orchestrator thread, never by workers"); DataBase itself
// holds no lock.
type DataBase struct {
	VolcanoName string

	entries []entry
	next    int
}

// Insert appends r. Insertion order only matters for breaking ties
// between same-rank records (see better); it never removes or
// overwrites an earlier record, per the "append-only" requirement.
func (db *DataBase) Insert(r Record) {
	db.entries = append(db.entries, entry{record: r, seq: db.next})
	db.next++
}

// At returns the best record whose validity interval contains t. "Best"
// is the highest-ranked source (rank, in rank.go); ties are broken by
// most recent insertion. This is what makes queries monotone (spec.md
// §8): inserting a higher-rank record for an interval can only replace
// the answer with a better one, never a worse one, and a lower-rank
// insertion can never displace an existing better answer.
func (db *DataBase) At(t time.Time) (Record, bool) {
	var best *entry
	for i := range db.entries {
		e := &db.entries[i]
		if !covers(e.record.Field.From, e.record.Field.To, t) {
			continue
		}
		if best == nil || better(*e, *best) {
			best = e
		}
	}
	if best == nil {
		return Record{}, false
	}
	return best.record, true
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
	ra, rb := rank(a.record.Field.Source), rank(b.record.Field.Source)
	if ra != rb {
		return ra > rb
	}
	return a.seq > b.seq
}

// All returns every inserted record in insertion order, for XML
// persistence (GeneratedWindField.wxml, spec.md §6).
func (db *DataBase) All() []Record {
	return lo.Map(db.entries, func(e entry, _ int) Record { return e.record })
}

// Len reports the number of inserted records.
func (db *DataBase) Len() int { return len(db.entries) }
