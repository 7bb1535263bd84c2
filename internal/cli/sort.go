package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/sdejongh/aethsort/pkg/config"
	"github.com/sdejongh/aethsort/pkg/logging"
	"github.com/sdejongh/aethsort/pkg/models"
	"github.com/sdejongh/aethsort/pkg/output"
	"github.com/sdejongh/aethsort/pkg/sorter"
)

// SortFlags holds sort command flags
type SortFlags struct {
	Source       string
	Filters      string
	Presets      []string
	Regex        string
	Prefix       string
	Exclude      []string
	DryRun       bool
	Output       string
	Report       string
	ReportFormat string
	Save         bool
	// Logging flags
	LogFile   string
	LogFormat string
	LogLevel  string
}

var sortFlags SortFlags

// ExitError carries a non-zero process exit code for a run that finished
// but did not fully succeed
type ExitError struct {
	Code   int
	Status models.SortStatus
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("sort finished with status %s", e.Status)
}

// NewSortCommand creates the sort command
func NewSortCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sort",
		Short: "Sort the files of a directory into subfolders",
		Long: `Move every file directly inside the source directory into the
destination folder of the first filter it matches. Filters come from the
filter file, or from --preset and --regex when given.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSort(cmd, sortFlags.DryRun)
		},
	}

	addSortFlags(cmd)
	cmd.Flags().BoolVar(&sortFlags.DryRun, "dry-run", false, "show where files would go without moving them")
	cmd.Flags().BoolVar(&sortFlags.Save, "save", false, "save the resulting filters to the filter file")

	return cmd
}

// addSortFlags registers the flags shared by sort, preview and watch
func addSortFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&sortFlags.Source, "source", "s", "", "directory to sort (required)")
	cmd.MarkFlagRequired("source")

	cmd.Flags().StringVarP(&sortFlags.Filters, "filters", "f", "", "filter file, .json or .yaml (default: config.json)")
	cmd.Flags().StringSliceVar(&sortFlags.Presets, "preset", []string{}, "built-in filters: images, documents, large, recent")
	cmd.Flags().StringVar(&sortFlags.Regex, "regex", "", "move names matching this pattern to Backups")
	cmd.Flags().StringVar(&sortFlags.Prefix, "prefix", "", "destination folder prefix (default from filter file, else AETH_)")
	cmd.Flags().StringSliceVar(&sortFlags.Exclude, "exclude", []string{}, "glob patterns of file names to leave in place")
	cmd.Flags().StringVarP(&sortFlags.Output, "output", "o", "human", "output format: human, json")
	cmd.Flags().StringVar(&sortFlags.Report, "report", "", "write the per-file report to a file")
	cmd.Flags().StringVar(&sortFlags.ReportFormat, "report-format", "human", "report file format: human, json")

	// Logging flags
	cmd.Flags().StringVar(&sortFlags.LogFile, "log-file", "", "log file (default: sorting_log.txt)")
	cmd.Flags().StringVar(&sortFlags.LogFormat, "log-format", "", "log format: text, json")
	cmd.Flags().StringVar(&sortFlags.LogLevel, "log-level", "", "log level: debug, info, warn, error")
}

func runSort(cmd *cobra.Command, dryRun bool) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	// Validate flags
	if err := validateSortFlags(); err != nil {
		return err
	}

	// Load configuration
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Override config with command-line flags
	applyFlagsToConfig(cfg)

	// Create logger
	logger, err := createLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer logger.Close()

	formatter, writer := createFormatter(cfg)
	s, err := newSorter(ctx, cfg, logger, sorter.WithFormatter(formatter, writer))
	if err != nil {
		return err
	}

	if err := s.SetSourceDirectory(ctx, sortFlags.Source); err != nil {
		logger.Error(ctx, "Failed to set source directory", err, nil)
		return err
	}

	var report *models.SortReport
	if dryRun {
		report, err = s.Preview(ctx)
	} else {
		report, err = s.SortFiles(ctx)
	}
	if err != nil && report == nil {
		logger.Error(ctx, "Sorting failed", err, nil)
		if formatter != nil {
			formatter.Error(err)
		}
		return fmt.Errorf("sort failed: %w", err)
	}

	if sortFlags.Report != "" {
		if err := output.WriteReportFile(report, sortFlags.Report, sortFlags.ReportFormat); err != nil {
			return err
		}
	}

	if sortFlags.Save {
		if err := s.SaveConfig(ctx); err != nil {
			return fmt.Errorf("failed to save filters: %w", err)
		}
	}

	if code := report.Status.ExitCode(); code != 0 {
		return &ExitError{Code: code, Status: report.Status}
	}
	return nil
}

// newSorter builds a sorter from the filter file and the flag overrides
func newSorter(ctx context.Context, cfg *config.Config, logger logging.Logger, opts ...sorter.Option) (*sorter.Sorter, error) {
	opts = append([]sorter.Option{sorter.WithConfigPath(cfg.Sorter.ConfigFile)}, opts...)
	s := sorter.New(afero.NewOsFs(), logger, opts...)
	if sortFlags.Save {
		// --save rewrites the file; refuse one that did not load in full
		if err := s.LoadConfigStrict(ctx); err != nil {
			return nil, fmt.Errorf("not saving to %s: %w", cfg.Sorter.ConfigFile, err)
		}
	} else {
		s.LoadConfig(ctx)
	}

	if cfg.Sorter.FolderPrefix != "" {
		s.SetFolderPrefix(cfg.Sorter.FolderPrefix)
	}
	if len(cfg.Sorter.Exclude) > 0 {
		if err := s.SetExcludes(cfg.Sorter.Exclude); err != nil {
			return nil, err
		}
	}

	if len(sortFlags.Presets) > 0 || sortFlags.Regex != "" {
		filters, err := buildPresetFilters(sortFlags.Presets, sortFlags.Regex)
		if err != nil {
			logger.Error(ctx, "Invalid --regex pattern", err, nil)
			return nil, err
		}
		s.ResetFilters()
		for _, f := range filters {
			s.AddFilter(ctx, f)
		}
	}

	if len(s.Filters()) == 0 {
		logger.Warn(ctx, "No filters configured; every file will be skipped", nil)
	}

	return s, nil
}

// createFormatter picks the result formatter; quiet mode gets none
func createFormatter(cfg *config.Config) (output.Formatter, io.Writer) {
	if cfg.Output.Quiet && cfg.Output.Format != "json" {
		return nil, io.Discard
	}

	formatter := output.New(cfg.Output.Format, cfg.Output.Progress, cfg.Output.Color)
	if human, ok := formatter.(*output.HumanFormatter); ok {
		human.SetVerbose(globalFlags.Verbose)
	}
	return formatter, os.Stdout
}

// createLogger creates a logger based on configuration
func createLogger(cfg config.LoggingConfig) (logging.Logger, error) {
	if !cfg.Enabled || cfg.File == "" {
		return logging.NewNullLogger(), nil
	}

	// Parse log format
	var format logging.Format
	switch cfg.Format {
	case "json":
		format = logging.FormatJSON
	default:
		format = logging.FormatText
	}

	return logging.NewFileLogger(logging.FileLoggerConfig{
		Path:       cfg.File,
		Format:     format,
		Level:      logging.ParseLevel(cfg.Level),
		MaxSize:    cfg.MaxSize,
		MaxBackups: cfg.MaxBackups,
	})
}

// IsExitError reports the exit code carried by err, if any
func IsExitError(err error) (int, bool) {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code, true
	}
	return 0, false
}
