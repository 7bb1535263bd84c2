package output

import (
	"io"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"github.com/cheggaaa/pb/v3"
	"github.com/fatih/color"
	"golang.org/x/term"

	"github.com/sdejongh/aethsort/pkg/models"
)

const progressTemplate = `{{counters . }} {{bar . "[" "=" ">" " " "]"}} {{percent . }} {{string . "file"}}`

// getUpdateInterval returns the progress refresh interval based on OS
// Windows terminals have higher latency with ANSI sequences, so we use a longer interval
func getUpdateInterval() time.Duration {
	if runtime.GOOS == "windows" {
		return 300 * time.Millisecond
	}
	return 100 * time.Millisecond
}

// ProgressFormatter shows a progress bar while a pass runs and the
// human summary once it completes
type ProgressFormatter struct {
	writer    io.Writer
	termWidth int

	mu  sync.Mutex
	bar *pb.ProgressBar

	ok   *color.Color
	warn *color.Color
	bad  *color.Color
}

// NewProgressFormatter creates a new progress bar formatter
func NewProgressFormatter(colored bool) *ProgressFormatter {
	human := NewHumanFormatter(colored)
	return &ProgressFormatter{
		ok:   human.ok,
		warn: human.warn,
		bad:  human.bad,
	}
}

// Start initializes the formatter and starts the bar
func (f *ProgressFormatter) Start(writer io.Writer, totalFiles int) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if writer == nil {
		writer = os.Stdout
	}
	f.writer = writer

	// Detect terminal width to prevent line wrapping issues
	if file, ok := writer.(*os.File); ok {
		if width, _, err := term.GetSize(int(file.Fd())); err == nil && width > 0 {
			f.termWidth = width
		}
	}
	// Default to 100 if we couldn't detect (pipe, redirect, etc.)
	if f.termWidth == 0 {
		f.termWidth = 100
	}

	f.bar = pb.ProgressBarTemplate(progressTemplate).New(totalFiles)
	f.bar.SetWriter(writer)
	f.bar.SetWidth(f.termWidth)
	f.bar.SetRefreshRate(getUpdateInterval())
	f.bar.Set("file", "")
	f.bar.Start()

	return nil
}

// Progress advances the bar once per finished file
func (f *ProgressFormatter) Progress(update ProgressUpdate) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.bar == nil {
		return nil
	}

	switch update.Type {
	case "file_start":
		f.bar.Set("file", filepath.Base(update.FilePath))
	case "file_moved", "file_planned", "file_skipped", "file_error":
		f.bar.Increment()
	}

	return nil
}

// Complete stops the bar and prints the summary
func (f *ProgressFormatter) Complete(report *models.SortReport) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.finishBar()
	if f.writer == nil {
		f.writer = io.Discard
	}
	writeSummary(f.writer, report, f.ok, f.warn, f.bad)
	return nil
}

// Error stops the bar and reports err
func (f *ProgressFormatter) Error(err error) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.finishBar()
	if f.writer != nil {
		io.WriteString(f.writer, f.bad.Sprint("Error:")+" "+err.Error()+"\n")
	}
	return nil
}

func (f *ProgressFormatter) finishBar() {
	if f.bar == nil {
		return
	}
	f.bar.Set("file", "")
	f.bar.Finish()
	f.bar = nil
}

// Name returns the formatter name
func (f *ProgressFormatter) Name() string {
	return "progress"
}
