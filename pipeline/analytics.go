package pipeline

import (
	tiledb "github.com/TileDB-Inc/TileDB-Go"

	ppp "github.com/novacppp/novacppp"
	"github.com/novacppp/novacppp/archive"
	"github.com/novacppp/novacppp/fluxlog"
	"github.com/novacppp/novacppp/statuslog"
)

// AnalyticsTarget points Run at an optional TileDB-backed analytics
// array (archive.Create/Append) to mirror a run's flux results into,
// alongside the required FluxLog.txt/.xml. Nil disables archiving
// entirely. Context is the caller's TileDB context (construction and
// lifetime are the caller's responsibility, same as opening a database
// connection); URI is the array's location, created on first use.
type AnalyticsTarget struct {
	Context *tiledb.Context
	URI     string
}

// archiveResults mirrors entries into target's TileDB array, creating it
// first if it doesn't already exist. Archiving is best-effort: per
// archive's own doc comment, a failure here must never fail the run, so
// errors are only logged to status and swallowed.
func archiveResults(target *AnalyticsTarget, entries []fluxlog.Entry, status *statuslog.Writer) {
	if target == nil || len(entries) == 0 {
		return
	}

	results := make([]ppp.FluxResult, len(entries))
	earliest, latest := entries[0].Result.StartTime, entries[0].Result.StartTime
	for i, e := range entries {
		results[i] = e.Result
		if e.Result.StartTime.Before(earliest) {
			earliest = e.Result.StartTime
		}
		if e.Result.StartTime.After(latest) {
			latest = e.Result.StartTime
		}
	}

	if !arrayExists(target.Context, target.URI) {
		if err := archive.Create(target.Context, target.URI, earliest, latest); err != nil {
			status.Write(statuslog.Error, "archive: creating array: "+err.Error())
			return
		}
	}
	if err := archive.Append(target.Context, target.URI, archive.FromResults(results)); err != nil {
		status.Write(statuslog.Error, "archive: appending results: "+err.Error())
	}
}

// arrayExists reports whether uri already holds a TileDB array, so
// archiveResults only calls archive.Create on a run's first pass over a
// given output location rather than erroring on every continuation.
func arrayExists(ctx *tiledb.Context, uri string) bool {
	array, err := tiledb.NewArray(ctx, uri)
	if err != nil {
		return false
	}
	defer array.Free()
	return array.Open(tiledb.TILEDB_READ) == nil
}
