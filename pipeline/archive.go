package pipeline

import (
	"fmt"
	"os"

	"github.com/mholt/archiver/v3"

	"github.com/novacppp/novacppp/archivefile"
)

// archiveCompressed implements the orchestrator's half of spec.md §6's
// archive pattern: rename any previous copy of path aside, then
// gzip-compress the renamed copy and remove the uncompressed one, so
// repeated runs don't accumulate uncompressed history next to the
// current wind database. Grounded on de-bkg-gognss's rinex.met/obs
// post-write archiver.CompressFile call.
func archiveCompressed(path string) error {
	stamped, err := archivefile.Rename(path)
	if err != nil {
		return fmt.Errorf("pipeline: archiving %s: %w", path, err)
	}
	if stamped == "" {
		return nil
	}

	if err := archiver.CompressFile(stamped, stamped+".gz"); err != nil {
		return fmt.Errorf("pipeline: compressing archived copy of %s: %w", path, err)
	}
	return os.Remove(stamped)
}
