package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sdejongh/aethsort/pkg/config"
)

// NewConfigCommand creates the config command
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration",
		Long:  `View or create the aethsort application configuration.`,
	}

	cmd.AddCommand(newConfigShowCommand())
	cmd.AddCommand(newConfigInitCommand())

	return cmd
}

func newConfigShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "Filter File: %s\n", cfg.Sorter.ConfigFile)
			if cfg.Sorter.FolderPrefix != "" {
				fmt.Fprintf(w, "Folder Prefix: %s\n", cfg.Sorter.FolderPrefix)
			} else {
				fmt.Fprintf(w, "Folder Prefix: (from filter file)\n")
			}
			if len(cfg.Sorter.Exclude) > 0 {
				fmt.Fprintf(w, "Exclude: %s\n", strings.Join(cfg.Sorter.Exclude, ", "))
			}
			fmt.Fprintf(w, "Output Format: %s\n", cfg.Output.Format)
			fmt.Fprintf(w, "Progress: %v\n", cfg.Output.Progress)
			if cfg.Logging.Enabled {
				fmt.Fprintf(w, "Log File: %s\n", cfg.Logging.File)
			} else {
				fmt.Fprintf(w, "Log File: (disabled)\n")
			}
			fmt.Fprintf(w, "Log Format: %s\n", cfg.Logging.Format)
			fmt.Fprintf(w, "Log Level: %s\n", cfg.Logging.Level)
			fmt.Fprintf(w, "Watch Debounce: %s\n", cfg.Watch.Debounce)

			return nil
		},
	}
}

func newConfigInitCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create default configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := globalFlags.ConfigFile
			if path == "" {
				var err error
				path, err = config.DefaultConfigPath()
				if err != nil {
					return err
				}
			}

			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("configuration file already exists: %s (use --force to overwrite)", path)
			}

			cfg := config.Default()
			if err := config.SaveToFile(cfg, path); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Configuration file created at: %s\n", path)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing configuration file")

	return cmd
}
