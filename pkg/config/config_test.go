package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sdejongh/aethsort/pkg/models"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default().Validate() error = %v", err)
	}
	if cfg.Sorter.ConfigFile != "config.json" {
		t.Errorf("Sorter.ConfigFile = %s, want config.json", cfg.Sorter.ConfigFile)
	}
	if cfg.Logging.File != "sorting_log.txt" {
		t.Errorf("Logging.File = %s, want sorting_log.txt", cfg.Logging.File)
	}
	d, err := cfg.DebounceDuration()
	if err != nil || d != 2*time.Second {
		t.Errorf("DebounceDuration() = %v, %v", d, err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"EmptyConfigFile", func(c *Config) { c.Sorter.ConfigFile = "" }, "sorter.config_file"},
		{"BadOutputFormat", func(c *Config) { c.Output.Format = "xml" }, "output.format"},
		{"BadLogFormat", func(c *Config) { c.Logging.Format = "xml" }, "logging.format"},
		{"BadLogLevel", func(c *Config) { c.Logging.Level = "trace" }, "logging.level"},
		{"MissingLogFile", func(c *Config) { c.Logging.File = "" }, "logging.file"},
		{"NegativeRotation", func(c *Config) { c.Logging.MaxBackups = -1 }, "logging.max_size"},
		{"BadDebounce", func(c *Config) { c.Watch.Debounce = "soon" }, "watch.debounce"},
		{"ZeroDebounce", func(c *Config) { c.Watch.Debounce = "0s" }, "watch.debounce"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := cfg.Validate()
			if err == nil {
				t.Fatal("Validate() should fail")
			}
			var ve *models.ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("error should be a *ValidationError, got %T", err)
			}
			if ve.Field != tt.field {
				t.Errorf("Field = %s, want %s", ve.Field, tt.field)
			}
		})
	}

	t.Run("LoggingDisabledNeedsNoFile", func(t *testing.T) {
		cfg := Default()
		cfg.Logging.Enabled = false
		cfg.Logging.File = ""
		if err := cfg.Validate(); err != nil {
			t.Errorf("Validate() error = %v", err)
		}
	})
}

func TestSaveAndLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := Default()
	cfg.Sorter.ConfigFile = "filters.yaml"
	cfg.Sorter.FolderPrefix = "SORTED_"
	cfg.Sorter.Exclude = []string{"*.part", "~*"}
	cfg.Output.Format = "json"
	cfg.Logging.Level = "debug"
	cfg.Watch.Debounce = "500ms"

	if err := SaveToFile(cfg, path); err != nil {
		t.Fatalf("SaveToFile() error = %v", err)
	}

	loaded, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile() error = %v", err)
	}

	if loaded.Sorter.ConfigFile != "filters.yaml" || loaded.Sorter.FolderPrefix != "SORTED_" {
		t.Errorf("Sorter = %+v", loaded.Sorter)
	}
	if len(loaded.Sorter.Exclude) != 2 || loaded.Sorter.Exclude[1] != "~*" {
		t.Errorf("Exclude = %v", loaded.Sorter.Exclude)
	}
	if loaded.Output.Format != "json" || loaded.Logging.Level != "debug" {
		t.Errorf("Output/Logging not restored: %+v %+v", loaded.Output, loaded.Logging)
	}
	if d, _ := loaded.DebounceDuration(); d != 500*time.Millisecond {
		t.Errorf("DebounceDuration() = %v, want 500ms", d)
	}
}

func TestLoadFromFile(t *testing.T) {
	t.Run("PartialFileKeepsDefaults", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		os.WriteFile(path, []byte("output:\n  format: json\n"), 0644)

		cfg, err := LoadFromFile(path)
		if err != nil {
			t.Fatalf("LoadFromFile() error = %v", err)
		}
		if cfg.Output.Format != "json" {
			t.Errorf("Output.Format = %s, want json", cfg.Output.Format)
		}
		if cfg.Sorter.ConfigFile != "config.json" {
			t.Errorf("Sorter.ConfigFile = %s, want default", cfg.Sorter.ConfigFile)
		}
	})

	t.Run("Missing", func(t *testing.T) {
		if _, err := LoadFromFile(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
			t.Error("LoadFromFile() should fail for a missing file")
		}
	})

	t.Run("Malformed", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		os.WriteFile(path, []byte("output: [unterminated"), 0644)
		if _, err := LoadFromFile(path); err == nil {
			t.Error("LoadFromFile() should fail for malformed YAML")
		}
	})

	t.Run("Invalid", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		os.WriteFile(path, []byte("logging:\n  level: loud\n"), 0644)
		if _, err := LoadFromFile(path); err == nil {
			t.Error("LoadFromFile() should fail validation")
		}
	})
}
