package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/sdejongh/aethsort/pkg/models"
)

// WriteReportFile writes the per-file outcomes of a pass to a file
// Format can be "human" or "json"
func WriteReportFile(report *models.SortReport, path string, format string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}
	defer file.Close()

	switch format {
	case "json":
		err = writeReportJSON(report, file)
	default: // "human"
		err = writeReportHuman(report, file)
	}
	if err != nil {
		return fmt.Errorf("failed to write report file: %w", err)
	}
	return nil
}

// writeReportHuman writes outcomes grouped by action
func writeReportHuman(report *models.SortReport, w io.Writer) error {
	title := "Sort Report"
	if report.DryRun {
		title = "Sort Preview"
	}
	fmt.Fprintf(w, "%s\n", title)
	fmt.Fprintf(w, "%s\n\n", strings.Repeat("=", len(title)))
	fmt.Fprintf(w, "Generated: %s\n", time.Now().Format(time.RFC3339))
	fmt.Fprintf(w, "Run: %s\n", report.RunID)
	fmt.Fprintf(w, "Source: %s\n", report.SourcePath)
	fmt.Fprintf(w, "Prefix: %s\n", report.FolderPrefix)
	fmt.Fprintf(w, "Dry Run: %v\n\n", report.DryRun)

	byAction := make(map[models.Action][]models.FileOutcome)
	for _, outcome := range report.Files {
		byAction[outcome.Action] = append(byAction[outcome.Action], outcome)
	}

	actionOrder := []models.Action{
		models.ActionError,
		models.ActionMove,
		models.ActionPlan,
		models.ActionSkip,
	}

	actionLabels := map[models.Action]string{
		models.ActionError: "Errors",
		models.ActionMove:  "Moved",
		models.ActionPlan:  "Would Move",
		models.ActionSkip:  "Skipped",
	}

	for _, action := range actionOrder {
		outcomes := byAction[action]
		if len(outcomes) == 0 {
			continue
		}

		label := fmt.Sprintf("%s (%d files)", actionLabels[action], len(outcomes))
		fmt.Fprintf(w, "%s\n", label)
		fmt.Fprintf(w, "%s\n", strings.Repeat("-", len(label)))

		for _, outcome := range outcomes {
			fmt.Fprintf(w, "  %s (%s)\n", outcome.Entry.Name, formatBytes(outcome.Entry.Size))
			if outcome.Destination != "" {
				fmt.Fprintf(w, "    To:     %s\n", outcome.Destination)
			}
			if outcome.Filter != "" {
				fmt.Fprintf(w, "    Filter: %s\n", outcome.Filter)
			}
			if outcome.Error != nil {
				fmt.Fprintf(w, "    Error:  %v\n", outcome.Error)
			} else if outcome.Reason != "" {
				fmt.Fprintf(w, "    Reason: %s\n", outcome.Reason)
			}
		}

		fmt.Fprintf(w, "\n")
	}

	return nil
}

// writeReportJSON writes the same document the JSON formatter prints
func writeReportJSON(report *models.SortReport, w io.Writer) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(NewJSONReport(report))
}
