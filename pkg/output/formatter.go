package output

import (
	"io"

	"github.com/sdejongh/aethsort/pkg/models"
)

// ProgressUpdate represents a progress notification during a sort pass
type ProgressUpdate struct {
	Type        string // "file_start", "file_moved", "file_planned", "file_skipped", "file_error"
	FilePath    string
	Destination string
	Filter      string
	Reason      string
	CurrentFile int
	TotalFiles  int
	Error       error
}

// Formatter defines the interface for output formatting
// Implementations include human-readable, JSON and progress bar formatters
type Formatter interface {
	// Start initializes the formatter for a new sort pass
	Start(writer io.Writer, totalFiles int) error

	// Progress reports progress during the pass
	Progress(update ProgressUpdate) error

	// Complete finalizes output and displays summary
	Complete(report *models.SortReport) error

	// Error reports an error that aborted the pass
	Error(err error) error

	// Name returns the formatter name
	Name() string
}

// New returns the formatter for the given format name.
// Progress only applies to human output.
func New(format string, progress, colored bool) Formatter {
	switch format {
	case "json":
		return NewJSONFormatter()
	default:
		if progress {
			return NewProgressFormatter(colored)
		}
		return NewHumanFormatter(colored)
	}
}
