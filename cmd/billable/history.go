package main

import (
	"fmt"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/Veraticus/billable/internal/cli"
	"github.com/Veraticus/billable/internal/common"
	"github.com/spf13/cobra"
)

func historyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List past invoice extractions",
		Long: `List the invoice extractions recorded by 'billable update', newest first.
Extractions are recorded in the SQLite database whatever the history backend.`,
		RunE: runHistory,
	}

	cmd.Flags().IntP("limit", "n", 20, "Number of extractions to show (0 for all)")

	return cmd
}

func runHistory(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	limit, _ := cmd.Flags().GetInt("limit")

	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	runs, err := store.ListExtractions(ctx, limit)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(runs) == 0 {
		_, err := fmt.Fprintln(out, cli.FormatInfo("No extractions recorded yet"))
		return err
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
		cli.TableHeaderStyle.Render("When"),
		cli.TableHeaderStyle.Render("Month"),
		cli.TableHeaderStyle.Render("Hours"),
		cli.TableHeaderStyle.Render("Earned"),
		cli.TableHeaderStyle.Render("Matched"),
		cli.TableHeaderStyle.Render("Source"),
	); err != nil {
		return err
	}

	for _, run := range runs {
		matched := strings.Join(cli.MatchedFields(run.Result), ",")
		if matched == "" {
			matched = "-"
		}
		if _, err := fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			run.ExtractedAt.Local().Format("2006-01-02 15:04"),
			run.Period,
			common.FormatHours(run.Result.HoursWorked),
			common.FormatMoney(run.Result.AmountEarned),
			matched,
			filepath.Base(run.Source),
		); err != nil {
			return err
		}
	}
	return w.Flush()
}
