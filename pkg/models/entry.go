package models

import (
	"time"
)

// FileEntry represents a regular file found directly in the source directory
type FileEntry struct {
	// Name is the base name of the file
	Name string

	// Path is the full path on the filesystem
	Path string

	// Size in bytes at scan time
	Size int64

	// ModTime is the last modification time at scan time
	ModTime time.Time
}

// Action represents what happened to a file during a sort pass
type Action string

const (
	// ActionMove moves the file into its destination folder
	ActionMove Action = "move"
	// ActionSkip leaves the file in place (no filter matched or excluded)
	ActionSkip Action = "skip"
	// ActionError indicates the file matched but could not be moved
	ActionError Action = "error"
	// ActionPlan indicates the file would be moved (dry-run)
	ActionPlan Action = "plan"
)

// FileOutcome records the result for a single file
type FileOutcome struct {
	Entry FileEntry

	Action Action

	// Filter is the name of the winning filter, empty when skipped
	Filter string

	// Destination is the full target path, empty when skipped
	Destination string

	// Reason explains skips and errors
	Reason string

	Error    error
	Duration time.Duration
}
