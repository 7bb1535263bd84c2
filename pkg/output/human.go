package output

import (
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"

	"github.com/sdejongh/aethsort/pkg/models"
)

// HumanFormatter formats output in human-readable format
type HumanFormatter struct {
	writer     io.Writer
	totalFiles int
	startTime  time.Time
	verbose    bool

	ok   *color.Color
	warn *color.Color
	bad  *color.Color
}

// NewHumanFormatter creates a new human-readable formatter.
// When colored is false no escape sequences are written.
func NewHumanFormatter(colored bool) *HumanFormatter {
	f := &HumanFormatter{
		ok:   color.New(color.FgGreen),
		warn: color.New(color.FgYellow),
		bad:  color.New(color.FgRed, color.Bold),
	}
	if !colored {
		f.ok.DisableColor()
		f.warn.DisableColor()
		f.bad.DisableColor()
	}
	return f
}

// SetVerbose makes Progress print skipped files too
func (f *HumanFormatter) SetVerbose(verbose bool) {
	f.verbose = verbose
}

// Start initializes the formatter
func (f *HumanFormatter) Start(writer io.Writer, totalFiles int) error {
	f.writer = writer
	f.totalFiles = totalFiles
	f.startTime = time.Now()

	if writer != nil {
		fmt.Fprintf(writer, "Sorting %d files\n", totalFiles)
	}

	return nil
}

// Progress reports progress during the pass
func (f *HumanFormatter) Progress(update ProgressUpdate) error {
	if f.writer == nil {
		return nil
	}

	switch update.Type {
	case "file_moved":
		fmt.Fprintf(f.writer, "[%d/%d] %s %s -> %s\n",
			update.CurrentFile, f.totalFiles, f.ok.Sprint("✓"),
			update.FilePath, update.Destination)

	case "file_planned":
		fmt.Fprintf(f.writer, "[%d/%d] %s %s -> %s\n",
			update.CurrentFile, f.totalFiles, f.ok.Sprint("→"),
			update.FilePath, update.Destination)

	case "file_skipped":
		if f.verbose {
			fmt.Fprintf(f.writer, "[%d/%d] - %s (%s)\n",
				update.CurrentFile, f.totalFiles,
				update.FilePath, update.Reason)
		}

	case "file_error":
		fmt.Fprintf(f.writer, "[%d/%d] %s %s: %v\n",
			update.CurrentFile, f.totalFiles, f.bad.Sprint("✗"),
			update.FilePath, update.Error)
	}

	return nil
}

// Complete finalizes output and displays summary
func (f *HumanFormatter) Complete(report *models.SortReport) error {
	if f.writer == nil {
		f.writer = io.Discard
	}
	writeSummary(f.writer, report, f.ok, f.warn, f.bad)
	return nil
}

// writeSummary prints the end-of-pass summary shared by the human and progress formatters
func writeSummary(w io.Writer, report *models.SortReport, ok, warn, bad *color.Color) {
	verb := "Sort"
	moved := "Moved"
	if report.DryRun {
		verb = "Preview"
		moved = "Would move"
	}

	fmt.Fprintf(w, "\n")
	fmt.Fprintf(w, "%s completed in %s\n", verb, report.Duration.Round(time.Millisecond))
	fmt.Fprintf(w, "\n")
	fmt.Fprintf(w, "Summary:\n")
	fmt.Fprintf(w, "  Source:   %s\n", report.SourcePath)
	fmt.Fprintf(w, "  %-10s %d\n", moved+":", report.Result.Moved)
	fmt.Fprintf(w, "  %-10s %d\n", "Skipped:", report.Result.Skipped)
	fmt.Fprintf(w, "  %-10s %d\n", "Errors:", report.Result.Errors)
	fmt.Fprintf(w, "\n")

	status := string(report.Status)
	switch report.Status {
	case models.StatusSuccess:
		status = ok.Sprint(status)
	case models.StatusPartial, models.StatusCancelled:
		status = warn.Sprint(status)
	default:
		status = bad.Sprint(status)
	}
	fmt.Fprintf(w, "Status: %s\n", status)

	if len(report.Errors) > 0 {
		fmt.Fprintf(w, "\nErrors:\n")
		for _, err := range report.Errors {
			fmt.Fprintf(w, "  %s: %s\n", err.FilePath, err.Error)
		}
	}
}

// Error reports an error
func (f *HumanFormatter) Error(err error) error {
	if f.writer != nil {
		fmt.Fprintf(f.writer, "%s %v\n", f.bad.Sprint("Error:"), err)
	}
	return nil
}

// Name returns the formatter name
func (f *HumanFormatter) Name() string {
	return "human"
}

// formatBytes formats bytes in human-readable format
func formatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
