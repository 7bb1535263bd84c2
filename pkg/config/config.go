package config

import (
	"time"

	"github.com/sdejongh/aethsort/pkg/models"
)

// Config represents the application configuration
type Config struct {
	Sorter  SorterConfig  `yaml:"sorter"`
	Output  OutputConfig  `yaml:"output"`
	Logging LoggingConfig `yaml:"logging"`
	Watch   WatchConfig   `yaml:"watch"`
}

// SorterConfig holds sort-related settings
type SorterConfig struct {
	ConfigFile   string   `yaml:"config_file"`   // Filter record file (.json, .yaml)
	FolderPrefix string   `yaml:"folder_prefix"` // Overrides the record prefix when set
	Exclude      []string `yaml:"exclude"`       // Glob patterns on base names
}

// OutputConfig holds output-related settings
type OutputConfig struct {
	Format   string `yaml:"format"`   // "human" or "json"
	Progress bool   `yaml:"progress"` // Show a progress bar during sort passes
	Quiet    bool   `yaml:"quiet"`    // Suppress non-error output
	Color    bool   `yaml:"color"`    // Colorize human output
}

// LoggingConfig holds logging-related settings
type LoggingConfig struct {
	Enabled    bool   `yaml:"enabled"`
	Format     string `yaml:"format"` // "text" or "json"
	Level      string `yaml:"level"`  // "debug", "info", "warn", "error"
	File       string `yaml:"file"`
	MaxSize    int64  `yaml:"max_size"` // bytes before rotation, 0 disables
	MaxBackups int    `yaml:"max_backups"`
}

// WatchConfig holds watch mode settings
type WatchConfig struct {
	Debounce string `yaml:"debounce"` // quiet period before a pass, e.g. "2s"
}

// Default returns the default configuration
func Default() *Config {
	return &Config{
		Sorter: SorterConfig{
			ConfigFile: "config.json",
		},
		Output: OutputConfig{
			Format:   "human",
			Progress: true,
			Quiet:    false,
			Color:    true,
		},
		Logging: LoggingConfig{
			Enabled:    true,
			Format:     "text",
			Level:      "info",
			File:       "sorting_log.txt",
			MaxSize:    10 * 1024 * 1024,
			MaxBackups: 5,
		},
		Watch: WatchConfig{
			Debounce: "2s",
		},
	}
}

// DebounceDuration parses Watch.Debounce
func (c *Config) DebounceDuration() (time.Duration, error) {
	return time.ParseDuration(c.Watch.Debounce)
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Sorter.ConfigFile == "" {
		return &models.ValidationError{
			Field:   "sorter.config_file",
			Message: "must not be empty",
		}
	}

	validFormats := map[string]bool{"human": true, "json": true}
	if !validFormats[c.Output.Format] {
		return &models.ValidationError{
			Field:   "output.format",
			Message: "must be 'human' or 'json'",
		}
	}

	validLogFormats := map[string]bool{"json": true, "text": true}
	if !validLogFormats[c.Logging.Format] {
		return &models.ValidationError{
			Field:   "logging.format",
			Message: "must be 'json' or 'text'",
		}
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.Logging.Level] {
		return &models.ValidationError{
			Field:   "logging.level",
			Message: "must be 'debug', 'info', 'warn', or 'error'",
		}
	}

	if c.Logging.Enabled && c.Logging.File == "" {
		return &models.ValidationError{
			Field:   "logging.file",
			Message: "required when logging is enabled",
		}
	}

	if c.Logging.MaxSize < 0 || c.Logging.MaxBackups < 0 {
		return &models.ValidationError{
			Field:   "logging.max_size",
			Message: "rotation settings must not be negative",
		}
	}

	if d, err := c.DebounceDuration(); err != nil || d <= 0 {
		return &models.ValidationError{
			Field:   "watch.debounce",
			Message: "must be a positive duration such as '2s'",
		}
	}

	return nil
}
