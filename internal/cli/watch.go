package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sdejongh/aethsort/pkg/models"
	"github.com/sdejongh/aethsort/pkg/output"
	"github.com/sdejongh/aethsort/pkg/sorter"
	"github.com/sdejongh/aethsort/pkg/watch"
)

// NewWatchCommand creates the watch command
func NewWatchCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Keep sorting a directory as files arrive",
		Long: `Sort the source directory once, then sort again whenever new files
appear, after the directory has been quiet for the debounce period.
Runs until interrupted.`,
		RunE: runWatch,
	}

	addSortFlags(cmd)
	cmd.Flags().String("debounce", "", "quiet period before a pass, e.g. 2s (default from config)")

	return cmd
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)

	if err := validateSortFlags(); err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyFlagsToConfig(cfg)
	if d, _ := cmd.Flags().GetString("debounce"); d != "" {
		cfg.Watch.Debounce = d
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	debounce, _ := cfg.DebounceDuration()

	logger, err := createLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer logger.Close()

	// A progress bar per pass would scroll away; watch prints summaries only
	cfg.Output.Progress = false
	formatter, writer := createFormatter(cfg)

	s, err := newSorter(ctx, cfg, logger, sorter.WithFormatter(formatter, writer))
	if err != nil {
		return err
	}
	if err := s.SetSourceDirectory(ctx, sortFlags.Source); err != nil {
		logger.Error(ctx, "Failed to set source directory", err, nil)
		return err
	}

	w := watch.New(s.SourceDirectory(), s, logger,
		watch.WithDebounce(debounce),
		watch.WithPassFunc(func(report *models.SortReport, err error) {
			if err != nil && report == nil && formatter != nil {
				formatter.Error(err)
			}
			if report != nil && sortFlags.Report != "" {
				if err := output.WriteReportFile(report, sortFlags.Report, sortFlags.ReportFormat); err != nil {
					logger.Error(ctx, "Failed to write report", err, nil)
				}
			}
		}),
	)

	if !cfg.Output.Quiet && cfg.Output.Format != "json" {
		fmt.Fprintf(cmd.OutOrStdout(), "Watching %s (Ctrl+C to stop)\n", s.SourceDirectory())
	}
	return w.Run(ctx)
}
