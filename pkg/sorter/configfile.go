package sorter

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"

	"github.com/sdejongh/aethsort/pkg/config"
	"github.com/sdejongh/aethsort/pkg/filter"
	"github.com/sdejongh/aethsort/pkg/logging"
)

// Defaults for fields a filter record leaves out
const (
	defaultDestination = "Default"
	defaultDaysAgo     = 7
	defaultPattern     = ".*"
)

// LoadConfig replaces the prefix, filters and excludes with the contents of
// the filter record file. It never fails: a missing or unreadable file
// leaves the sorter in its default state and logs why, and a filter
// record that cannot be loaded is logged and left out.
func (s *Sorter) LoadConfig(ctx context.Context) {
	s.load(ctx)
}

// LoadConfigStrict loads like LoadConfig, then reports a file that exists
// but could not be loaded in full. Saving after such a load would lose the
// records that were left out, so commands that edit the file use this.
func (s *Sorter) LoadConfigStrict(ctx context.Context) error {
	return s.load(ctx)
}

func (s *Sorter) load(ctx context.Context) error {
	s.folderPrefix = config.DefaultFolderPrefix
	s.filters = nil
	s.excludes.reset()
	s.recursive = false
	s.overwriteExisting = false

	rec, err := config.ReadRecordFile(s.fs, s.configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			s.logger.Warn(ctx, fmt.Sprintf("Config file %s not found", s.configPath), nil)
			return nil
		}
		s.logger.Error(ctx, "Error loading config "+s.configPath, err, nil)
		return fmt.Errorf("%w %s: %w", ErrInvalidConfig, s.configPath, err)
	}

	s.folderPrefix = rec.Settings.Prefix()
	s.recursive = rec.Settings.Recursive
	s.overwriteExisting = rec.Settings.OverwriteExisting
	s.logger.Info(ctx, "Loaded folder prefix: "+s.folderPrefix, nil)

	dropped := 0
	for _, pattern := range rec.Settings.Exclude {
		if err := s.excludes.add(pattern); err != nil {
			s.logger.Error(ctx, "Ignoring exclude pattern", err, nil)
			dropped++
		}
	}

	for i, r := range rec.Filters {
		if r.Err != nil {
			s.logger.Error(ctx, fmt.Sprintf("Skipping %s filter", r.Type), r.Err, logging.Fields{"index": i})
			dropped++
			continue
		}
		f, err := filterFromRecord(r)
		if err != nil {
			s.logger.Error(ctx, fmt.Sprintf("Skipping %s filter", r.Type), err, logging.Fields{"index": i})
			dropped++
			continue
		}
		if f == nil {
			s.logger.Debug(ctx, "Ignoring unknown filter type", logging.Fields{"type": r.Type})
			dropped++
			continue
		}
		s.AddFilter(ctx, f)
		s.logger.Info(ctx, fmt.Sprintf("Loaded filter: %s -> %s", r.Type, f.Destination), nil)
	}

	if dropped > 0 {
		return fmt.Errorf("%w %s: %d entries could not be loaded", ErrInvalidConfig, s.configPath, dropped)
	}
	return nil
}

// SaveConfig writes the prefix, filters and excludes to the filter record
// file, replacing its contents
func (s *Sorter) SaveConfig(ctx context.Context) error {
	prefix := s.folderPrefix
	rec := &config.Record{
		Filters: make([]config.FilterRecord, 0, len(s.filters)),
		Settings: config.Settings{
			Recursive:         s.recursive,
			OverwriteExisting: s.overwriteExisting,
			FolderPrefix:      &prefix,
			Exclude:           s.Excludes(),
		},
	}
	for _, f := range s.filters {
		rec.Filters = append(rec.Filters, recordFromFilter(f))
	}

	if err := config.WriteRecordFile(s.fs, s.configPath, rec); err != nil {
		s.logger.Error(ctx, "Error saving config", err, nil)
		return err
	}

	s.logger.Info(ctx, "Saved config to "+s.configPath, nil)
	return nil
}

// filterFromRecord builds the filter a record describes. It returns nil
// and no error for an unknown type.
func filterFromRecord(r config.FilterRecord) (*filter.Filter, error) {
	dest := r.Destination
	if dest == "" {
		dest = defaultDestination
	}

	switch filter.Kind(r.Type) {
	case filter.KindExtension:
		return filter.NewExtension(dest, r.Extensions...), nil

	case filter.KindSize:
		return filter.NewSize("LargeFiles", dest, bytesOf(r.MinSizeMB), bytesOf(r.MaxSizeMB)), nil

	case filter.KindAge:
		days := defaultDaysAgo
		if r.DaysAgo != nil {
			days = *r.DaysAgo
		}
		return filter.NewAge("RecentFiles", dest, days), nil

	case filter.KindRegex:
		pattern := defaultPattern
		if r.Pattern != nil {
			pattern = *r.Pattern
		}
		return filter.NewRegex("Custom", dest, pattern)

	default:
		return nil, nil
	}
}

func recordFromFilter(f *filter.Filter) config.FilterRecord {
	r := config.FilterRecord{
		Type:        string(f.Kind),
		Destination: f.Destination,
	}

	switch f.Kind {
	case filter.KindExtension:
		r.Extensions = append([]string(nil), f.Extension.Extensions...)
	case filter.KindSize:
		r.MinSizeMB = megabytesOf(f.Size.MinSize)
		r.MaxSizeMB = megabytesOf(f.Size.MaxSize)
	case filter.KindAge:
		days := f.Age.DaysAgo
		r.DaysAgo = &days
	case filter.KindRegex:
		pattern := f.Regex.Pattern
		r.Pattern = &pattern
	}
	return r
}

// bytesOf converts a megabyte bound to bytes
func bytesOf(mb *float64) *int64 {
	if mb == nil {
		return nil
	}
	return filter.Bound(int64(math.Round(*mb * filter.MB)))
}

// megabytesOf converts a byte bound to megabytes
func megabytesOf(b *int64) *float64 {
	if b == nil {
		return nil
	}
	mb := float64(*b) / filter.MB
	return &mb
}
