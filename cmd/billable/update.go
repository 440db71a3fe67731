package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/Veraticus/billable/internal/cli"
	"github.com/Veraticus/billable/internal/common"
	"github.com/Veraticus/billable/internal/document"
	"github.com/Veraticus/billable/internal/ledger"
	"github.com/Veraticus/billable/internal/model"
	"github.com/Veraticus/billable/internal/render"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func updateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   `update "MONTH YEAR=FILE"...`,
		Short: "Extract monthly invoices and merge them into the history",
		Long: `Extract each invoice document, build one record per month and merge the
records into the history. A month that already has a record is replaced
whole.

When an invoice lists only money, hours can be estimated from an hourly rate
(--hourly-rate or extract.hourly_rate).

Examples:
  billable update "September 2025=2025 Sept 1-30.docx" "October 2025=2025 Oct 1-31.docx"
  billable update "March 2024=march.docx" --dry-run
  billable update "May 2025=may.txt" --yes --html index.html`,
		Args: cobra.MinimumNArgs(1),
		RunE: runUpdate,
	}

	cmd.Flags().Float64("hourly-rate", 0, "Estimate hours as amount/rate when an invoice lists none")
	cmd.Flags().String("notes", "", "Notes for the new records (default: source file name)")
	cmd.Flags().BoolP("dry-run", "d", false, "Show the merged history without saving")
	cmd.Flags().BoolP("yes", "y", false, "Replace existing months without asking")
	cmd.Flags().String("html", "", "Also write the dashboard to this file")

	_ = viper.BindPFlag("extract.hourly_rate", cmd.Flags().Lookup("hourly-rate"))

	return cmd
}

func runUpdate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	yes, _ := cmd.Flags().GetBool("yes")
	notes, _ := cmd.Flags().GetString("notes")
	htmlPath, _ := cmd.Flags().GetString("html")
	rate := viper.GetFloat64("extract.hourly_rate")

	targets := make([]target, 0, len(args))
	for _, arg := range args {
		t, err := parseTarget(arg)
		if err != nil {
			return common.NewUserError("bad update target", err)
		}
		targets = append(targets, t)
	}

	extractor, err := newExtractor()
	if err != nil {
		return fmt.Errorf("failed to load extraction rules: %w", err)
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

	out := cmd.OutOrStdout()
	progress := cli.NewProgress(cmd.ErrOrStderr(), len(targets), "Extracting invoices...")

	incoming := make([]model.MonthlyRecord, 0, len(targets))
	runs := make([]model.ExtractionRun, 0, len(targets))
	for _, t := range targets {
		if err := ctx.Err(); err != nil {
			return err
		}

		text, err := document.ReadText(t.Path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", t.Path, err)
		}

		res := extractor.Extract(text)
		recordNotes := notes
		if recordNotes == "" {
			recordNotes = "Data from " + filepath.Base(t.Path)
		}
		rec := ledger.NewRecord(t.Period, res, recordNotes, rate)
		incoming = append(incoming, rec)
		runs = append(runs, model.ExtractionRun{
			Source:      t.Path,
			Period:      t.Period,
			Result:      res,
			ExtractedAt: time.Now(),
		})

		slog.Info("Extracted invoice",
			"period", t.Period.String(),
			"file", filepath.Base(t.Path),
			"matched", cli.MatchedFields(res))
		if err := progress.Add(1); err != nil {
			slog.Warn("Failed to update progress bar", "error", err)
		}
	}

	if _, err := fmt.Fprintln(out, cli.FormatTitle("New records")); err != nil {
		return err
	}
	for _, rec := range incoming {
		if _, err := fmt.Fprintln(out, "  "+ledger.Describe(rec)); err != nil {
			return err
		}
	}

	merged := ledger.Merge(existing, incoming)

	if dryRun {
		if _, err := fmt.Fprintln(out, cli.FormatInfo("Dry run: history not saved")); err != nil {
			return err
		}
		return cli.RenderRecords(out, merged)
	}

	if replaced := replacedPeriods(existing, incoming); len(replaced) > 0 && !yes {
		prompter := cli.NewPrompter(cmd.InOrStdin(), out)
		ok, err := prompter.Confirm(ctx, fmt.Sprintf("Replace existing records for %s?", joinPeriods(replaced)))
		if err != nil {
			return err
		}
		if !ok {
			_, err := fmt.Fprintln(out, cli.FormatWarning("Update canceled; history unchanged"))
			return err
		}
	}

	if err := store.Save(ctx, merged); err != nil {
		return fmt.Errorf("failed to save history: %w", err)
	}

	if a, ok := store.(auditor); ok {
		for i := range runs {
			if err := a.RecordExtraction(ctx, &runs[i]); err != nil {
				slog.Warn("Failed to record extraction", "source", runs[i].Source, "error", err)
			}
		}
	}

	if htmlPath != "" {
		if err := writeDashboard(htmlPath, merged); err != nil {
			return err
		}
		if _, err := fmt.Fprintln(out, cli.FormatSuccess("Dashboard written to "+htmlPath)); err != nil {
			return err
		}
	}

	if _, err := fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("History updated: %d months", len(merged)))); err != nil {
		return err
	}
	return cli.RenderSummary(out, ledger.Summarize(merged))
}

// writeDashboard renders the HTML dashboard to path.
func writeDashboard(path string, records []model.MonthlyRecord) error {
	renderer, err := render.NewRenderer()
	if err != nil {
		return err
	}

	f, err := os.Create(path) // #nosec G304
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}

	dashboard := render.NewDashboard(viper.GetString("render.title"), records, time.Now())
	if err := renderer.Render(f, dashboard); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
