// Package archive is the optional TileDB-backed analytics store for
// computed flux results: a sparse, time-indexed array mirroring the
// role winddb/plumedb play for process-local lookups, but meant for
// downstream querying across runs (SPEC_FULL.md domain-stack
// addition). It is never the pipeline's required persisted state --
// FluxLog.txt/.xml and GeneratedWindField.wxml remain that -- archive
// writing is best-effort and a failure here must not fail a run.
//
// Grounded on the teacher's tiledb.go/schema.go: CreateAttr, the filter
// constructors, and setStructFieldBuffers are adapted in place (same
// struct-tag-driven attribute construction via stagparser, same
// query/buffer wiring), generalized from multibeam ping metadata to
// flux-result columns.
package archive

import (
	"errors"
	"time"

	tiledb "github.com/TileDB-Inc/TileDB-Go"

	ppp "github.com/novacppp/novacppp"
)

var (
	ErrCreateAttribute = errors.New("archive: error creating TileDB attribute")
	ErrCreateSchema    = errors.New("archive: error creating TileDB array schema")
	ErrSetBuffer       = errors.New("archive: error setting TileDB data buffer")
)

// timeDimension is the sparse array's sole dimension, grounded on
// PingHeaders' `dtype=datetime_ns` attribute convention but promoted to
// a dimension here since the archive's whole purpose is time-ranged
// query (spec.md §3's per-scan timestamps are the natural key).
const timeDimension = "Time"

// Create builds the sparse column-density array at uri with one
// dimension (Time, nanoseconds since the Unix epoch) and one attribute
// per exported Entries field, via entrySchemaAttrs. domainStart/End
// bound the dimension's representable range; a run that exceeds it is
// a configuration error the caller should surface, not something this
// package guesses a fallback for.
func Create(ctx *tiledb.Context, uri string, domainStart, domainEnd time.Time) error {
	domain, err := tiledb.NewDomain(ctx)
	if err != nil {
		return errors.Join(ErrCreateSchema, err)
	}
	defer domain.Free()

	dim, err := tiledb.NewDimension(ctx, timeDimension, tiledb.TILEDB_DATETIME_NS,
		[]int64{domainStart.UnixNano(), domainEnd.UnixNano()}, int64(time.Hour))
	if err != nil {
		return errors.Join(ErrCreateSchema, err)
	}
	defer dim.Free()

	if err := domain.AddDimensions(dim); err != nil {
		return errors.Join(ErrCreateSchema, err)
	}

	schema, err := tiledb.NewArraySchema(ctx, tiledb.TILEDB_SPARSE)
	if err != nil {
		return errors.Join(ErrCreateSchema, err)
	}
	defer schema.Free()

	if err := schema.SetDomain(domain); err != nil {
		return errors.Join(ErrCreateSchema, err)
	}
	if err := schema.SetCellOrder(tiledb.TILEDB_ROW_MAJOR); err != nil {
		return errors.Join(ErrCreateSchema, err)
	}
	if err := schema.SetTileOrder(tiledb.TILEDB_ROW_MAJOR); err != nil {
		return errors.Join(ErrCreateSchema, err)
	}

	if err := entrySchemaAttrs(&Entries{}, schema, ctx); err != nil {
		return errors.Join(ErrCreateSchema, err)
	}

	if err := tiledb.CreateArray(ctx, uri, schema); err != nil {
		return errors.Join(ErrCreateSchema, err)
	}
	return nil
}

// Append writes entries into the array at uri, using Time as the
// coordinate buffer (TILEDB_UNORDERED layout), grounded on
// PingData.writeBeamData's sparse write pattern.
func Append(ctx *tiledb.Context, uri string, entries *Entries) error {
	array, err := tiledb.NewArray(ctx, uri)
	if err != nil {
		return err
	}
	defer array.Free()
	if err := array.Open(tiledb.TILEDB_WRITE); err != nil {
		return err
	}
	defer array.Close()

	query, err := tiledb.NewQuery(ctx, array)
	if err != nil {
		return err
	}
	defer query.Free()

	if err := query.SetLayout(tiledb.TILEDB_UNORDERED); err != nil {
		return err
	}

	nanos := make([]int64, len(entries.Time))
	for i, t := range entries.Time {
		nanos[i] = t.UnixNano()
	}
	if _, err := query.SetDataBuffer(timeDimension, nanos); err != nil {
		return errors.Join(ErrSetBuffer, err)
	}

	if err := setEntryFieldBuffers(query, entries); err != nil {
		return err
	}

	if err := query.Submit(); err != nil {
		return err
	}
	return query.Finalize()
}

// FromResults transposes row-oriented flux results into the archive's
// columnar Entries, the "row view in, parallel vectors stored" split
// spec.md §9's "Arena + index for per-scan data" guidance recommends.
func FromResults(results []ppp.FluxResult) *Entries {
	e := &Entries{
		Time:          make([]time.Time, len(results)),
		Serial:        make([]string, len(results)),
		Flux:          make([]float64, len(results)),
		WindSpeed:     make([]float64, len(results)),
		WindDirection: make([]float64, len(results)),
		PlumeHeight:   make([]float64, len(results)),
		Completeness:  make([]float64, len(results)),
	}
	for i, r := range results {
		e.Time[i] = r.StartTime
		e.Serial[i] = r.Serial
		e.Flux[i] = r.Value
		e.WindSpeed[i] = r.Wind.Speed
		e.WindDirection[i] = r.Wind.Direction
		e.PlumeHeight[i] = r.PlumeHeight.Altitude
		e.Completeness[i] = r.Completeness
	}
	return e
}
