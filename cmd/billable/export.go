package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Veraticus/billable/internal/cli"
	"github.com/Veraticus/billable/internal/config"
	"github.com/Veraticus/billable/internal/sheets"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// newSheetsExporter is replaced in tests.
var newSheetsExporter = func(ctx context.Context, cfg sheets.Config) (sheets.Exporter, error) {
	return sheets.NewWriter(ctx, cfg, slog.Default())
}

func exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Publish the history to external services",
	}

	cmd.AddCommand(exportSheetsCmd())

	return cmd
}

func exportSheetsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sheets",
		Short: "Write the history to a Google Sheets tab",
		Long: `Replace the contents of the billing tab of a Google spreadsheet with the
history: one row per month plus a totals row.

Credentials come from the sheets.* config keys or GOOGLE_SHEETS_* environment
variables (a .env file is read too). Run 'billable auth sheets' once to get an
OAuth2 refresh token, or point sheets.service_account_path at a key file.`,
		RunE: runExportSheets,
	}

	cmd.Flags().String("spreadsheet-id", "", "Spreadsheet to update (default: create a new one)")
	cmd.Flags().String("sheet", "", "Tab name (default: Billing)")
	_ = viper.BindPFlag("sheets.spreadsheet_id", cmd.Flags().Lookup("spreadsheet-id"))
	_ = viper.BindPFlag("sheets.sheet_name", cmd.Flags().Lookup("sheet"))

	return cmd
}

func runExportSheets(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	cfg, err := config.LoadSheetsConfig(viper.GetViper())
	if err != nil {
		return fmt.Errorf("google sheets is not configured: %w", err)
	}

	store, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	records, err := store.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load history: %w", err)
	}

	exporter, err := newSheetsExporter(ctx, *cfg)
	if err != nil {
		return err
	}

	if err := exporter.Export(ctx, records); err != nil {
		return fmt.Errorf("export failed: %w", err)
	}

	_, err = fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Exported %d months to Google Sheets", len(records))))
	return err
}
