package main

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/Veraticus/billable/internal/model"
	"github.com/Veraticus/billable/internal/ofx"
	"github.com/spf13/cobra"
)

func importOFXCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import-ofx [files...]",
		Short: "Set received amounts from OFX/QFX bank statements",
		Long: `Sum the deposits in OFX or QFX statements by month and store them as the
received amount of each month. Months the statements cover replace their
received amount; a month without a record gets a new one.

Examples:
  # Count every deposit
  billable import-ofx ~/Downloads/checking_2025.qfx

  # Only deposits from one client
  billable import-ofx ~/Downloads/*.qfx --payer "acme|cleaning co"`,
		Args: cobra.MinimumNArgs(1),
		RunE: runImportOFX,
	}

	cmd.Flags().String("payer", "", "Only count deposits whose payee or memo matches this regex")
	cmd.Flags().BoolP("dry-run", "d", false, "Preview import without saving")


	return cmd
}

func runImportOFX(cmd *cobra.Command, args []string) error {
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	payer, err := payerPattern(cmd)
	if err != nil {
		return err
	}

	files, err := expandFiles(args)
	if err != nil {
		return err
	}

	slog.Info("Importing OFX files", "file_count", len(files), "dry_run", dryRun)

	parser := ofx.NewParser()
	var deposits []model.Deposit
	for _, path := range files {
		found, err := parseStatement(cmd, parser, path)
		if err != nil {
			slog.Error("Failed to parse OFX file", "file", path, "error", err)
			continue
		}
		deposits = append(deposits, found...)
	}

	return applyReceived(cmd, deposits, payer, dryRun)
}

func parseStatement(cmd *cobra.Command, parser *ofx.Parser, path string) ([]model.Deposit, error) {
	f, err := os.Open(path) // #nosec G304
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	deposits, err := parser.Deposits(cmd.Context(), f)
	if err != nil {
		return nil, err
	}
	slog.Info("Processed file", "file", filepath.Base(path), "deposits", len(deposits))
	return deposits, nil
}
