package models

import (
	"time"
)

// MoveResult holds the per-run counters. Exactly one counter is
// incremented for every regular file in the source directory.
type MoveResult struct {
	Moved   int `json:"moved"`
	Skipped int `json:"skipped"`
	Errors  int `json:"errors"`
}

// Total returns the number of files the pass considered
func (r MoveResult) Total() int {
	return r.Moved + r.Skipped + r.Errors
}

// SortReport represents the results of one sort pass
type SortReport struct {
	// Run details
	RunID        string
	SourcePath   string
	FolderPrefix string
	DryRun       bool

	// Timing
	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration

	Result MoveResult

	// Files lists one outcome per regular file, in scan order
	Files []FileOutcome

	// Errors lists per-file failures
	Errors []SortError

	Status SortStatus
}

// Record appends an outcome and bumps the matching counter
func (r *SortReport) Record(outcome FileOutcome) {
	r.Files = append(r.Files, outcome)

	switch outcome.Action {
	case ActionMove, ActionPlan:
		r.Result.Moved++
	case ActionSkip:
		r.Result.Skipped++
	case ActionError:
		r.Result.Errors++
		msg := outcome.Reason
		if outcome.Error != nil {
			msg = outcome.Error.Error()
		}
		r.Errors = append(r.Errors, SortError{
			FilePath:  outcome.Entry.Path,
			Error:     msg,
			Timestamp: time.Now(),
		})
	}
}

// Finish stamps the end time and derives the status
func (r *SortReport) Finish(cancelled bool) {
	r.EndTime = time.Now()
	r.Duration = r.EndTime.Sub(r.StartTime)

	switch {
	case cancelled:
		r.Status = StatusCancelled
	case r.Result.Errors == 0:
		r.Status = StatusSuccess
	case r.Result.Moved == 0 && r.Result.Skipped == 0:
		r.Status = StatusFailed
	default:
		r.Status = StatusPartial
	}
}

// SortStatus represents the overall result
type SortStatus string

const (
	// StatusSuccess indicates no file failed to move
	StatusSuccess SortStatus = "success"
	// StatusPartial indicates some moves failed
	StatusPartial SortStatus = "partial"
	// StatusFailed indicates every considered file failed
	StatusFailed SortStatus = "failed"
	// StatusCancelled indicates the pass was interrupted
	StatusCancelled SortStatus = "cancelled"
)

// SortError represents a per-file failure
type SortError struct {
	FilePath  string
	Error     string
	Timestamp time.Time
}

// ExitCode returns the appropriate exit code for the sort status
func (s SortStatus) ExitCode() int {
	switch s {
	case StatusSuccess:
		return 0
	case StatusPartial:
		return 1
	case StatusFailed:
		return 2
	case StatusCancelled:
		return 3
	default:
		return 2
	}
}

// ValidationError represents a validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}
