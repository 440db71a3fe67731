package main

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/Veraticus/billable/internal/cli"
	"github.com/Veraticus/billable/internal/document"
	"github.com/spf13/cobra"
)

func extractCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "extract FILE...",
		Short: "Show the figures found in invoice documents",
		Long: `Read each document and print the hours, earnings and payments the
extraction rules find in it, without touching the history.

Examples:
  billable extract "2025 Sept 1-30.docx"
  billable extract invoices/*.docx --json`,
		Args: cobra.MinimumNArgs(1),
		RunE: runExtract,
	}

	cmd.Flags().Bool("json", false, "Print results as JSON")

	return cmd
}

type extractOutput struct {
	Error  string `json:"error,omitempty"`
	Source string `json:"source"`
	Result any    `json:"result,omitempty"`
}

func runExtract(cmd *cobra.Command, args []string) error {
	asJSON, _ := cmd.Flags().GetBool("json")

	files, err := expandFiles(args)
	if err != nil {
		return err
	}

	extractor, err := newExtractor()
	if err != nil {
		return fmt.Errorf("failed to load extraction rules: %w", err)
	}

	out := cmd.OutOrStdout()
	var results []extractOutput
	failed := 0

	for _, path := range files {
		text, err := document.ReadText(path)
		if err != nil {
			failed++
			slog.Error("Failed to read document", "file", path, "error", err)
			results = append(results, extractOutput{Source: path, Error: err.Error()})
			continue
		}

		res := extractor.Extract(text)
		if asJSON {
			results = append(results, extractOutput{Source: path, Result: res})
			continue
		}
		if err := cli.RenderExtraction(out, path, res); err != nil {
			return err
		}
	}

	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(results); err != nil {
			return fmt.Errorf("failed to encode results: %w", err)
		}
	}

	if failed == len(files) {
		return fmt.Errorf("no documents could be read")
	}
	return nil
}
