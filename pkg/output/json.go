package output

import (
	"encoding/json"
	"io"
	"os"
	"time"

	"github.com/sdejongh/aethsort/pkg/models"
)

// JSONFormatter formats output as JSON for automation and scripting
type JSONFormatter struct {
	writer     io.Writer
	totalFiles int
	startTime  time.Time
}

// JSONReportData represents the final report data
type JSONReportData struct {
	RunID        string          `json:"run_id"`
	SourcePath   string          `json:"source_path"`
	FolderPrefix string          `json:"folder_prefix"`
	DryRun       bool            `json:"dry_run"`
	Status       string          `json:"status"`
	Duration     string          `json:"duration"`
	DurationMs   int64           `json:"duration_ms"`
	Result       JSONResultData  `json:"result"`
	Files        []JSONFileData  `json:"files,omitempty"`
	Errors       []JSONErrorData `json:"errors,omitempty"`
}

// JSONResultData holds the pass counters
type JSONResultData struct {
	Moved   int `json:"moved"`
	Skipped int `json:"skipped"`
	Errors  int `json:"errors"`
}

// JSONFileData represents one file outcome
type JSONFileData struct {
	Name        string `json:"name"`
	Size        int64  `json:"size"`
	Action      string `json:"action"`
	Filter      string `json:"filter,omitempty"`
	Destination string `json:"destination,omitempty"`
	Reason      string `json:"reason,omitempty"`
	Error       string `json:"error,omitempty"`
}

// JSONErrorData represents an error entry
type JSONErrorData struct {
	Path  string `json:"path"`
	Error string `json:"error"`
}

// NewJSONFormatter creates a new JSON formatter
func NewJSONFormatter() *JSONFormatter {
	return &JSONFormatter{}
}

// Start initializes the formatter
func (f *JSONFormatter) Start(writer io.Writer, totalFiles int) error {
	if writer == nil {
		writer = os.Stdout
	}
	f.writer = writer
	f.totalFiles = totalFiles
	f.startTime = time.Now()
	return nil
}

// Progress is a no-op; the JSON document is written once on Complete
// to keep the output parseable
func (f *JSONFormatter) Progress(update ProgressUpdate) error {
	return nil
}

// Complete writes the report as a single JSON document
func (f *JSONFormatter) Complete(report *models.SortReport) error {
	if f.writer == nil {
		f.writer = os.Stdout
	}

	encoder := json.NewEncoder(f.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(NewJSONReport(report))
}

// NewJSONReport converts a report to its JSON shape
func NewJSONReport(report *models.SortReport) JSONReportData {
	data := JSONReportData{
		RunID:        report.RunID,
		SourcePath:   report.SourcePath,
		FolderPrefix: report.FolderPrefix,
		DryRun:       report.DryRun,
		Status:       string(report.Status),
		Duration:     report.Duration.Round(time.Millisecond).String(),
		DurationMs:   report.Duration.Milliseconds(),
		Result: JSONResultData{
			Moved:   report.Result.Moved,
			Skipped: report.Result.Skipped,
			Errors:  report.Result.Errors,
		},
	}

	for _, outcome := range report.Files {
		file := JSONFileData{
			Name:        outcome.Entry.Name,
			Size:        outcome.Entry.Size,
			Action:      string(outcome.Action),
			Filter:      outcome.Filter,
			Destination: outcome.Destination,
			Reason:      outcome.Reason,
		}
		if outcome.Error != nil {
			file.Error = outcome.Error.Error()
		}
		data.Files = append(data.Files, file)
	}

	for _, err := range report.Errors {
		data.Errors = append(data.Errors, JSONErrorData{
			Path:  err.FilePath,
			Error: err.Error,
		})
	}

	return data
}

// Error writes err as a JSON object so scripts reading stdout still get a document
func (f *JSONFormatter) Error(err error) error {
	if f.writer == nil {
		return nil
	}
	return json.NewEncoder(f.writer).Encode(map[string]string{"error": err.Error()})
}

// Name returns the formatter name
func (f *JSONFormatter) Name() string {
	return "json"
}
