package cli

import (
	"fmt"
	"strings"

	"github.com/sdejongh/aethsort/internal/platform"
	"github.com/sdejongh/aethsort/pkg/config"
	"github.com/sdejongh/aethsort/pkg/filter"
)

// presetOrder is the evaluation order of the built-in filters,
// whatever order they are given in
var presetOrder = []string{"images", "documents", "large", "recent"}

// validateSortFlags validates the sort command flags
func validateSortFlags() error {
	if err := platform.ValidatePath(sortFlags.Source); err != nil {
		return err
	}
	// Existence is checked by the sorter once the log is open
	sortFlags.Source = platform.NormalizePath(sortFlags.Source)

	validOutputs := map[string]bool{"human": true, "json": true}
	if !validOutputs[sortFlags.Output] {
		return fmt.Errorf("invalid output format: %s (valid: human, json)", sortFlags.Output)
	}
	if !validOutputs[sortFlags.ReportFormat] {
		return fmt.Errorf("invalid report format: %s (valid: human, json)", sortFlags.ReportFormat)
	}

	for _, p := range sortFlags.Presets {
		if !isPreset(p) {
			return fmt.Errorf("invalid preset: %s (valid: %s)", p, strings.Join(presetOrder, ", "))
		}
	}

	if sortFlags.Prefix != "" && strings.ContainsAny(sortFlags.Prefix, `/\`) {
		return fmt.Errorf("prefix must not contain path separators: %s", sortFlags.Prefix)
	}

	return nil
}

func isPreset(name string) bool {
	for _, p := range presetOrder {
		if strings.EqualFold(p, name) {
			return true
		}
	}
	return false
}

// loadConfig loads configuration from file or returns default
func loadConfig() (*config.Config, error) {
	if globalFlags.ConfigFile != "" {
		return config.LoadFromFile(globalFlags.ConfigFile)
	}
	return config.LoadDefault()
}

// applyFlagsToConfig overrides config values with command-line flags
func applyFlagsToConfig(cfg *config.Config) {
	// Filter file
	if sortFlags.Filters != "" {
		cfg.Sorter.ConfigFile = sortFlags.Filters
	}

	// Folder prefix
	if sortFlags.Prefix != "" {
		cfg.Sorter.FolderPrefix = sortFlags.Prefix
	}

	// Exclude patterns
	if len(sortFlags.Exclude) > 0 {
		cfg.Sorter.Exclude = sortFlags.Exclude
	}

	// Output format
	if sortFlags.Output != "" {
		cfg.Output.Format = sortFlags.Output
	}

	// Logging
	if sortFlags.LogFile != "" {
		cfg.Logging.Enabled = true
		cfg.Logging.File = sortFlags.LogFile
	}
	if sortFlags.LogFormat != "" {
		cfg.Logging.Format = sortFlags.LogFormat
	}
	if sortFlags.LogLevel != "" {
		cfg.Logging.Level = sortFlags.LogLevel
	}

	// Disable progress in quiet mode
	if globalFlags.Quiet {
		cfg.Output.Progress = false
		cfg.Output.Quiet = true
	}

	// Per-file lines replace the bar in verbose mode
	if globalFlags.Verbose {
		cfg.Output.Progress = false
		if cfg.Logging.Level == "info" {
			cfg.Logging.Level = "debug"
		}
	}
}

// buildPresetFilters returns the built-in filters for presets in their
// fixed order, followed by the regex filter when pattern is set
func buildPresetFilters(presets []string, pattern string) ([]*filter.Filter, error) {
	enabled := make(map[string]bool, len(presets))
	for _, p := range presets {
		enabled[strings.ToLower(p)] = true
	}

	var filters []*filter.Filter
	for _, p := range presetOrder {
		if !enabled[p] {
			continue
		}
		switch p {
		case "images":
			filters = append(filters, filter.NewExtension("Images", ".jpg", ".png", ".gif"))
		case "documents":
			filters = append(filters, filter.NewExtension("Documents", ".pdf", ".doc", ".docx", ".txt"))
		case "large":
			filters = append(filters, filter.NewSize("LargeFiles", "LargeFiles", filter.Bound(10*filter.MB), nil))
		case "recent":
			filters = append(filters, filter.NewAge("RecentFiles", "RecentFiles", 7))
		}
	}

	if pattern != "" {
		f, err := filter.NewRegex("Custom", "Backups", pattern)
		if err != nil {
			return nil, err
		}
		filters = append(filters, f)
	}

	return filters, nil
}
