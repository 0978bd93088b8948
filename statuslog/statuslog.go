// Package statuslog writes outputDirectory/StatusLog.txt, the run-wide
// message log spec.md §6 lists under "Persisted state" and §7's
// "Propagation policy" routes {information, error, fatal} severities
// through. Grounded on original_source/StatusLogFileWriter.cpp: that
// writer archives any pre-existing StatusLog.txt once at startup, then
// appends newline-terminated messages for the life of the run. The
// buffered-writer-on-a-timer thread is collapsed into a single mutex and
// a *os.File kept open for the run's duration, since nothing here is
// driven by a Windows message pump.
package statuslog

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/novacppp/novacppp/archivefile"
)

// Severity is spec.md §7's message severity tag.
type Severity int

const (
	Information Severity = iota
	Error
	Fatal
)

func (s Severity) String() string {
	switch s {
	case Information:
		return "information"
	case Error:
		return "error"
	case Fatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// Writer appends severity-tagged messages to outputDirectory/StatusLog.txt.
type Writer struct {
	mu   sync.Mutex
	file *os.File
}

// Open archives any previous StatusLog.txt in dir (the original's
// once-at-startup ArchiveFile call) and opens a fresh one for appending.
func Open(dir string) (*Writer, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("statuslog: creating output directory: %w", err)
	}
	path := filepath.Join(dir, "StatusLog.txt")
	if _, err := archivefile.Rename(path); err != nil {
		return nil, fmt.Errorf("statuslog: archiving previous log: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("statuslog: opening %s: %w", path, err)
	}
	return &Writer{file: f}, nil
}

// Write appends one timestamped, severity-tagged line.
func (w *Writer) Write(severity Severity, message string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	line := fmt.Sprintf("%s\t%s\t%s\n", time.Now().UTC().Format("2006.01.02 15:04:05"), severity, message)
	_, err := w.file.WriteString(line)
	return err
}

// Close flushes and closes the underlying file.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.file.Close()
}
