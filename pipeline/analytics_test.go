package pipeline

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/novacppp/novacppp/fluxlog"
	"github.com/novacppp/novacppp/statuslog"
)

func TestArchiveResultsNoOpWithoutTarget(t *testing.T) {
	status, err := statuslog.Open(t.TempDir())
	require.NoError(t, err)
	defer status.Close()

	// Nil target and empty entries must both be safe no-ops: archiving
	// is opt-in and must never be exercised by a plain pipeline.Run call.
	archiveResults(nil, []fluxlog.Entry{{}}, status)
	archiveResults(&AnalyticsTarget{URI: filepath.Join(t.TempDir(), "flux")}, nil, status)
}
