package cli

import (
	"github.com/spf13/cobra"
)

// NewPreviewCommand creates the preview command
func NewPreviewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Show where files would go without moving them (dry-run)",
		Long: `Evaluate the filters against the source directory and report the
destination of every file without performing any file operations.
This is equivalent to sort --dry-run.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSort(cmd, true)
		},
	}

	// Reuse sort flags for the preview
	addSortFlags(cmd)

	return cmd
}
