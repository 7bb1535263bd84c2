// Package sorter moves the files of one directory into destination
// subfolders chosen by an ordered list of filters.
package sorter

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/afero"

	"github.com/sdejongh/aethsort/pkg/config"
	"github.com/sdejongh/aethsort/pkg/filter"
	"github.com/sdejongh/aethsort/pkg/logging"
	"github.com/sdejongh/aethsort/pkg/models"
	"github.com/sdejongh/aethsort/pkg/output"
	"github.com/sdejongh/aethsort/pkg/storage"
)

var (
	// ErrInvalidConfig is returned by LoadConfigStrict when the filter file
	// exists but could not be loaded in full
	ErrInvalidConfig = errors.New("invalid filter file")

	// ErrInvalidDirectory is returned when the source path is missing or not a directory
	ErrInvalidDirectory = errors.New("invalid directory")
	// ErrNoSourceDirectory is returned when a pass starts before a source directory is set
	ErrNoSourceDirectory = errors.New("no source directory selected")
)

// DefaultConfigPath is the filter record file used when none is given
const DefaultConfigPath = "config.json"

// Sorter holds the ordered filter list and the source directory.
// It is not safe for concurrent use; passes must run one at a time.
type Sorter struct {
	fs     afero.Fs
	logger logging.Logger
	mover  *storage.Mover
	now    func() time.Time

	formatter output.Formatter
	writer    io.Writer

	configPath   string
	sourceDir    string
	folderPrefix string
	filters      []*filter.Filter
	excludes     excluder

	// persisted but never consulted by a pass
	recursive         bool
	overwriteExisting bool
}

// Option configures a Sorter
type Option func(*Sorter)

// WithConfigPath sets the filter record file used by LoadConfig and SaveConfig
func WithConfigPath(path string) Option {
	return func(s *Sorter) {
		s.configPath = path
	}
}

// WithClock sets the reference clock for age filters
func WithClock(now func() time.Time) Option {
	return func(s *Sorter) {
		s.now = now
	}
}

// WithFormatter reports pass progress to f, writing to w
func WithFormatter(f output.Formatter, w io.Writer) Option {
	return func(s *Sorter) {
		s.formatter = f
		s.writer = w
	}
}

// New creates a sorter on fs with no filters and the default prefix
func New(fs afero.Fs, logger logging.Logger, opts ...Option) *Sorter {
	if logger == nil {
		logger = logging.NewNullLogger()
	}

	s := &Sorter{
		fs:           fs,
		logger:       logger,
		mover:        storage.NewMover(fs),
		now:          time.Now,
		configPath:   DefaultConfigPath,
		folderPrefix: config.DefaultFolderPrefix,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetSourceDirectory validates path and makes it the directory sorted by the next pass
func (s *Sorter) SetSourceDirectory(ctx context.Context, path string) error {
	info, err := s.fs.Stat(path)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidDirectory, path, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s is not a directory", ErrInvalidDirectory, path)
	}

	s.sourceDir = path
	s.logger.Info(ctx, "Source directory set to: "+path, nil)
	return nil
}

// SourceDirectory returns the current source directory, empty when unset
func (s *Sorter) SourceDirectory() string {
	return s.sourceDir
}

// AddFilter appends f to the filter list; earlier filters take precedence
func (s *Sorter) AddFilter(ctx context.Context, f *filter.Filter) {
	s.filters = append(s.filters, f)
	s.logger.Info(ctx, fmt.Sprintf("Added filter: %s -> %s", f.Name, f.DestinationFolder(s.folderPrefix)), nil)
}

// ResetFilters empties the filter list
func (s *Sorter) ResetFilters() {
	s.filters = nil
}

// Filters returns a copy of the filter list in evaluation order
func (s *Sorter) Filters() []*filter.Filter {
	out := make([]*filter.Filter, len(s.filters))
	copy(out, s.filters)
	return out
}

// FolderPrefix returns the prefix prepended to every destination folder
func (s *Sorter) FolderPrefix() string {
	return s.folderPrefix
}

// SetFolderPrefix replaces the folder prefix
func (s *Sorter) SetFolderPrefix(prefix string) {
	s.folderPrefix = prefix
}

// ConfigPath returns the filter record file path
func (s *Sorter) ConfigPath() string {
	return s.configPath
}

// SetExcludes replaces the exclude patterns. Nothing changes on error.
func (s *Sorter) SetExcludes(patterns []string) error {
	var next excluder
	for _, p := range patterns {
		if err := next.add(p); err != nil {
			return err
		}
	}
	s.excludes = next
	return nil
}

// Excludes returns the exclude patterns
func (s *Sorter) Excludes() []string {
	return append([]string(nil), s.excludes.patterns...)
}

// SortFiles moves every regular file directly inside the source directory
// into the destination folder of the first filter it matches.
// Per-file failures are recorded in the report and never abort the pass.
// On cancellation the partial report is returned with ctx.Err().
func (s *Sorter) SortFiles(ctx context.Context) (*models.SortReport, error) {
	return s.run(ctx, false)
}

// Preview evaluates the filters like SortFiles without touching the filesystem
func (s *Sorter) Preview(ctx context.Context) (*models.SortReport, error) {
	return s.run(ctx, true)
}

func (s *Sorter) run(ctx context.Context, dryRun bool) (*models.SortReport, error) {
	if s.sourceDir == "" {
		return nil, ErrNoSourceDirectory
	}

	entries, err := s.scan(ctx)
	if err != nil {
		return nil, err
	}

	report := &models.SortReport{
		RunID:        uuid.NewString(),
		SourcePath:   s.sourceDir,
		FolderPrefix: s.folderPrefix,
		DryRun:       dryRun,
		StartTime:    time.Now(),
	}

	s.logger.Debug(ctx, "Sort pass started", logging.Fields{
		"run_id":  report.RunID,
		"files":   len(entries),
		"filters": len(s.filters),
		"dry_run": dryRun,
	})

	if s.formatter != nil {
		s.formatter.Start(s.writer, len(entries))
	}

	now := s.now()
	cancelled := false
	for i, entry := range entries {
		if ctx.Err() != nil {
			cancelled = true
			break
		}

		s.progress(output.ProgressUpdate{
			Type:        "file_start",
			FilePath:    entry.Path,
			CurrentFile: i + 1,
			TotalFiles:  len(entries),
		})

		start := time.Now()
		outcome := s.sortOne(ctx, entry, now, dryRun)
		outcome.Duration = time.Since(start)
		report.Record(outcome)

		s.progress(output.ProgressUpdate{
			Type:        progressType(outcome.Action),
			FilePath:    entry.Path,
			Destination: outcome.Destination,
			Filter:      outcome.Filter,
			Reason:      outcome.Reason,
			CurrentFile: i + 1,
			TotalFiles:  len(entries),
			Error:       outcome.Error,
		})
	}

	report.Finish(cancelled)

	if s.formatter != nil {
		s.formatter.Complete(report)
	}

	s.logger.Info(ctx, "Sorting complete", logging.Fields{
		"moved":   report.Result.Moved,
		"skipped": report.Result.Skipped,
		"errors":  report.Result.Errors,
		"status":  string(report.Status),
	})

	if cancelled {
		return report, ctx.Err()
	}
	return report, nil
}

// scan lists the regular files directly inside the source directory,
// sorted by name. Symlinks are followed; entries that cannot be
// stat'ed are left out.
func (s *Sorter) scan(ctx context.Context) ([]models.FileEntry, error) {
	infos, err := afero.ReadDir(s.fs, s.sourceDir)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", s.sourceDir, err)
	}

	entries := make([]models.FileEntry, 0, len(infos))
	for _, info := range infos {
		path := filepath.Join(s.sourceDir, info.Name())

		target, err := s.fs.Stat(path)
		if err != nil {
			s.logger.Debug(ctx, "Ignoring "+path, logging.Fields{"error": err.Error()})
			continue
		}
		if !target.Mode().IsRegular() {
			continue
		}

		entries = append(entries, models.FileEntry{
			Name:    info.Name(),
			Path:    path,
			Size:    target.Size(),
			ModTime: target.ModTime(),
		})
	}
	return entries, nil
}

// sortOne handles a single file and returns exactly one outcome for it
func (s *Sorter) sortOne(ctx context.Context, entry models.FileEntry, now time.Time, dryRun bool) models.FileOutcome {
	outcome := models.FileOutcome{Entry: entry}

	if pattern, ok := s.excludes.match(entry.Path); ok {
		outcome.Action = models.ActionSkip
		outcome.Reason = "excluded by " + pattern
		s.logger.Info(ctx, fmt.Sprintf("Skipped %s: excluded by %s", entry.Path, pattern), nil)
		return outcome
	}

	var winner *filter.Filter
	for _, f := range s.filters {
		ok, err := f.Matches(s.fs, entry.Path, now)
		if err != nil {
			outcome.Action = models.ActionError
			outcome.Filter = f.Name
			outcome.Error = err
			s.logger.Error(ctx, "Error evaluating "+entry.Path, err, logging.Fields{"filter": f.Name})
			return outcome
		}
		if ok {
			winner = f
			break
		}
	}

	if winner == nil {
		outcome.Action = models.ActionSkip
		outcome.Reason = "no matching filter"
		s.logger.Info(ctx, fmt.Sprintf("Skipped %s: no matching filter", entry.Path), nil)
		return outcome
	}

	dir := filepath.Join(s.sourceDir, winner.DestinationFolder(s.folderPrefix))
	outcome.Filter = winner.Name
	outcome.Destination = filepath.Join(dir, entry.Name)

	if dryRun {
		outcome.Action = models.ActionPlan
		s.logger.Debug(ctx, fmt.Sprintf("Would move %s to %s", entry.Path, outcome.Destination), nil)
		return outcome
	}

	dst, err := s.mover.Move(ctx, entry.Path, dir)
	if err != nil {
		outcome.Action = models.ActionError
		outcome.Error = err
		s.logger.Error(ctx, "Error moving "+entry.Path, err, nil)
		return outcome
	}

	outcome.Action = models.ActionMove
	outcome.Destination = dst
	s.logger.Info(ctx, fmt.Sprintf("Moved %s to %s", entry.Path, dst), nil)
	return outcome
}

func (s *Sorter) progress(update output.ProgressUpdate) {
	if s.formatter != nil {
		s.formatter.Progress(update)
	}
}

func progressType(action models.Action) string {
	switch action {
	case models.ActionMove:
		return "file_moved"
	case models.ActionPlan:
		return "file_planned"
	case models.ActionSkip:
		return "file_skipped"
	default:
		return "file_error"
	}
}
