package ppp

import "time"

// PlumeHeight is an altitude-above-sea-level record with its provenance
// and validity interval (spec.md §3).
type PlumeHeight struct {
	Altitude float64
	Error    float64
	Source   WindSource // plume-height sources share the same tag set as wind
	From, To time.Time
}
