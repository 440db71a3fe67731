package main

import (
	"encoding/json"
	"fmt"

	"github.com/Veraticus/billable/internal/cli"
	"github.com/Veraticus/billable/internal/ledger"
	"github.com/spf13/cobra"
)

func summaryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Print the history and its totals",
		RunE:  runSummary,
	}

	cmd.Flags().Bool("json", false, "Print the totals as JSON")
	cmd.Flags().Bool("totals-only", false, "Skip the month-by-month table")

	return cmd
}

func runSummary(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	asJSON, _ := cmd.Flags().GetBool("json")
	totalsOnly, _ := cmd.Flags().GetBool("totals-only")

	store, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	records, err := store.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load history: %w", err)
	}

	summary := ledger.Summarize(records)
	out := cmd.OutOrStdout()

	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(summary)
	}

	if !totalsOnly {
		if err := cli.RenderRecords(out, records); err != nil {
			return err
		}
		if _, err := fmt.Fprintln(out); err != nil {
			return err
		}
	}
	return cli.RenderSummary(out, summary)
}
