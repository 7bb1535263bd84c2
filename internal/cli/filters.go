package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/sdejongh/aethsort/pkg/filter"
	"github.com/sdejongh/aethsort/pkg/logging"
	"github.com/sdejongh/aethsort/pkg/sorter"
)

// FilterFlags holds filters command flags
type FilterFlags struct {
	File        string
	Type        string
	Destination string
	Extensions  []string
	MinMB       float64
	MaxMB       float64
	Days        int
	Pattern     string
	Presets     []string
	Regex       string
	Prefix      string
}

var filterFlags FilterFlags

// NewFiltersCommand creates the filters command
func NewFiltersCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "filters",
		Short: "Manage the filter file",
		Long:  `List, extend or rewrite the filters stored in the filter file.`,
	}

	cmd.PersistentFlags().StringVarP(&filterFlags.File, "filters", "f", "", "filter file, .json or .yaml (default: config.json)")

	cmd.AddCommand(newFiltersListCommand())
	cmd.AddCommand(newFiltersAddCommand())
	cmd.AddCommand(newFiltersSaveCommand())

	return cmd
}

func newFiltersListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List filters in evaluation order",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)
			s, logger, err := openFilterFile(ctx)
			if err != nil {
				return err
			}
			defer logger.Close()
			printFilters(cmd.OutOrStdout(), s)
			return nil
		},
	}
}

func newFiltersAddCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Append a filter to the filter file",
		Long: `Append a filter. Earlier filters take precedence.

Examples:
  aethsort filters add --type extension --ext .mp3,.flac --dest Music
  aethsort filters add --type size --min-mb 100 --dest Huge
  aethsort filters add --type date --days 1 --dest Today
  aethsort filters add --type regex --pattern '^invoice' --dest Invoices`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)
			f, err := filterFromFlags(cmd)
			if err != nil {
				return err
			}

			s, logger, err := openFilterFile(ctx)
			if err != nil {
				return err
			}
			defer logger.Close()
			s.AddFilter(ctx, f)
			if err := s.SaveConfig(ctx); err != nil {
				return fmt.Errorf("failed to save filters: %w", err)
			}

			if !globalFlags.Quiet {
				fmt.Fprintf(cmd.OutOrStdout(), "Added %s -> %s to %s\n", f.Kind, f.DestinationFolder(s.FolderPrefix()), s.ConfigPath())
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&filterFlags.Type, "type", "t", "", "filter type: extension, size, date, regex (required)")
	cmd.Flags().StringVarP(&filterFlags.Destination, "dest", "d", "", "destination folder, without prefix (required)")
	cmd.Flags().StringSliceVar(&filterFlags.Extensions, "ext", []string{}, "extensions with leading dot (extension)")
	cmd.Flags().Float64Var(&filterFlags.MinMB, "min-mb", 0, "minimum size in MB, inclusive (size)")
	cmd.Flags().Float64Var(&filterFlags.MaxMB, "max-mb", 0, "maximum size in MB, inclusive (size)")
	cmd.Flags().IntVar(&filterFlags.Days, "days", 7, "maximum age in days (date)")
	cmd.Flags().StringVar(&filterFlags.Pattern, "pattern", "", "case-insensitive pattern searched in the name (regex)")
	cmd.MarkFlagRequired("type")
	cmd.MarkFlagRequired("dest")

	return cmd
}

func newFiltersSaveCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "save",
		Short: "Replace the filter file with built-in filters",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)
			for _, p := range filterFlags.Presets {
				if !isPreset(p) {
					return fmt.Errorf("invalid preset: %s (valid: %s)", p, strings.Join(presetOrder, ", "))
				}
			}
			filters, err := buildPresetFilters(filterFlags.Presets, filterFlags.Regex)
			if err != nil {
				return err
			}
			if len(filters) == 0 {
				return fmt.Errorf("nothing to save: give --preset or --regex")
			}

			s, logger, err := openFilterFile(ctx)
			if err != nil {
				return err
			}
			defer logger.Close()
			if filterFlags.Prefix != "" {
				s.SetFolderPrefix(filterFlags.Prefix)
			}
			s.ResetFilters()
			for _, f := range filters {
				s.AddFilter(ctx, f)
			}
			if err := s.SaveConfig(ctx); err != nil {
				return fmt.Errorf("failed to save filters: %w", err)
			}

			if !globalFlags.Quiet {
				fmt.Fprintf(cmd.OutOrStdout(), "Saved %d filters to %s\n", len(filters), s.ConfigPath())
			}
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&filterFlags.Presets, "preset", []string{}, "built-in filters: images, documents, large, recent")
	cmd.Flags().StringVar(&filterFlags.Regex, "regex", "", "move names matching this pattern to Backups")
	cmd.Flags().StringVar(&filterFlags.Prefix, "prefix", "", "destination folder prefix")

	return cmd
}

// openFilterFile loads the filter file named by --filters or the app config
// for editing. A file that exists but does not load in full is an error.
// The caller closes the returned logger.
func openFilterFile(ctx context.Context) (*sorter.Sorter, logging.Logger, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	if filterFlags.File != "" {
		cfg.Sorter.ConfigFile = filterFlags.File
	}

	logger, err := createLogger(cfg.Logging)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create logger: %w", err)
	}

	// Saving after a partial load would drop the entries left out
	s := sorter.New(afero.NewOsFs(), logger, sorter.WithConfigPath(cfg.Sorter.ConfigFile))
	if err := s.LoadConfigStrict(ctx); err != nil {
		logger.Close()
		return nil, nil, fmt.Errorf("not editing %s: %w", cfg.Sorter.ConfigFile, err)
	}
	return s, logger, nil
}

// filterFromFlags builds the filter described by the add flags
func filterFromFlags(cmd *cobra.Command) (*filter.Filter, error) {
	dest := filterFlags.Destination

	switch strings.ToLower(filterFlags.Type) {
	case "extension", "ext":
		if len(filterFlags.Extensions) == 0 {
			return nil, fmt.Errorf("--ext is required for extension filters")
		}
		return filter.NewExtension(dest, filterFlags.Extensions...), nil

	case "size":
		var minSize, maxSize *int64
		if cmd.Flags().Changed("min-mb") {
			minSize = filter.Bound(int64(filterFlags.MinMB * filter.MB))
		}
		if cmd.Flags().Changed("max-mb") {
			maxSize = filter.Bound(int64(filterFlags.MaxMB * filter.MB))
		}
		return filter.NewSize("LargeFiles", dest, minSize, maxSize), nil

	case "date", "age":
		return filter.NewAge("RecentFiles", dest, filterFlags.Days), nil

	case "regex":
		if filterFlags.Pattern == "" {
			return nil, fmt.Errorf("--pattern is required for regex filters")
		}
		return filter.NewRegex("Custom", dest, filterFlags.Pattern)

	default:
		return nil, fmt.Errorf("invalid filter type: %s (valid: extension, size, date, regex)", filterFlags.Type)
	}
}

func printFilters(w io.Writer, s *sorter.Sorter) {
	filters := s.Filters()
	fmt.Fprintf(w, "Filter file: %s\n", s.ConfigPath())
	fmt.Fprintf(w, "Folder prefix: %s\n", s.FolderPrefix())
	if ex := s.Excludes(); len(ex) > 0 {
		fmt.Fprintf(w, "Exclude: %s\n", strings.Join(ex, ", "))
	}
	if len(filters) == 0 {
		fmt.Fprintf(w, "No filters configured\n")
		return
	}

	fmt.Fprintf(w, "\n")
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "#\tTYPE\tMATCHES\tDESTINATION\n")
	for i, f := range filters {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", i+1, f.Kind, describe(f), f.DestinationFolder(s.FolderPrefix()))
	}
	tw.Flush()
}

// describe summarizes what a filter matches
func describe(f *filter.Filter) string {
	switch f.Kind {
	case filter.KindExtension:
		return strings.Join(f.Extension.Extensions, " ")
	case filter.KindSize:
		switch {
		case f.Size.MinSize != nil && f.Size.MaxSize != nil:
			return fmt.Sprintf("%s to %s", mb(*f.Size.MinSize), mb(*f.Size.MaxSize))
		case f.Size.MinSize != nil:
			return ">= " + mb(*f.Size.MinSize)
		case f.Size.MaxSize != nil:
			return "<= " + mb(*f.Size.MaxSize)
		default:
			return "any size"
		}
	case filter.KindAge:
		return fmt.Sprintf("modified <= %d days ago", f.Age.DaysAgo)
	case filter.KindRegex:
		return "/" + f.Regex.Pattern + "/i"
	default:
		return ""
	}
}

func mb(b int64) string {
	return fmt.Sprintf("%g MB", float64(b)/filter.MB)
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
