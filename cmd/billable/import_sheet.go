package main

import (
	"fmt"
	"log/slog"

	"github.com/Veraticus/billable/internal/cli"
	"github.com/Veraticus/billable/internal/document"
	"github.com/Veraticus/billable/internal/ledger"
	"github.com/spf13/cobra"
)

func importSheetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import-sheet FILE.xlsx",
		Short: "Import monthly records from a spreadsheet",
		Long: `Read a spreadsheet whose first row names the columns (Month, Hours, Amount,
Received, Notes) and merge its rows into the history. Rows whose month cannot
be read are skipped.

Examples:
  billable import-sheet "Work Hours.xlsx"
  billable import-sheet tracker.xlsx --sheet 2025 --dry-run`,
		Args: cobra.ExactArgs(1),
		RunE: runImportSheet,
	}

	cmd.Flags().String("sheet", "", "Worksheet to read (default: first sheet)")
	cmd.Flags().BoolP("dry-run", "d", false, "Preview import without saving")

	return cmd
}

func runImportSheet(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	sheet, _ := cmd.Flags().GetString("sheet")
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	rows, err := document.ReadTable(args[0], sheet)
	if err != nil {
		return fmt.Errorf("failed to read spreadsheet: %w", err)
	}

	incoming := ledger.FromTable(rows)
	slog.Info("Read spreadsheet", "file", args[0], "rows", len(rows), "records", len(incoming))
	if len(incoming) == 0 {
		_, err := fmt.Fprintln(cmd.OutOrStdout(), cli.FormatWarning("No monthly records found in "+args[0]))
		return err
	}

	store, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	existing, err := store.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load history: %w", err)
	}

	merged := ledger.Merge(existing, incoming)
	out := cmd.OutOrStdout()

	if dryRun {
		if _, err := fmt.Fprintln(out, cli.FormatInfo("Dry run: history not saved")); err != nil {
			return err
		}
		return cli.RenderRecords(out, merged)
	}

	if err := store.Save(ctx, merged); err != nil {
		return fmt.Errorf("failed to save history: %w", err)
	}

	_, err = fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Imported %d records; history has %d months", len(incoming), len(merged))))
	return err
}
