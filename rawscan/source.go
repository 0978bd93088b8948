// Package rawscan defines the boundary between NovacPPP-Go and the raw
// scan file format. spec.md §1 treats the spectrum source as an external
// collaborator and names redesigning the on-disk binary format a
// non-goal; this package therefore ships only the interface that
// component exposes (spec.md §2 component A) and a deterministic
// in-memory fake used by tests, never a binary decoder.
package rawscan

import "github.com/novacppp/novacppp"

// Source is the interface a raw scan file reader exposes: sky and dark
// spectra, an optional offset/dark-current spectrum, and an ordered
// series of measurement spectra with their viewing-angle metadata
// (spec.md §2 component A).
type Source interface {
	Sky() (ppp.Spectrum, error)
	Dark() (*ppp.Spectrum, error)
	Offset() (*ppp.Spectrum, error)
	Measurements() ([]ppp.Spectrum, error)

	// Serial, Mode and Type describe the scan as a whole; a scan's
	// spectra all share one serial (spec.md §3 invariant).
	Serial() string
	Mode() ppp.ScanMode
	Type() ppp.InstrumentType
}

// Open is the shape a concrete reader's constructor has. NovacPPP-Go does
// not provide one: production code supplies a reader for the real binary
// format; Fake below stands in for it in tests.
type Open func(path string) (Source, error)
