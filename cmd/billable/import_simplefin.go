package main

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"regexp"
	"time"

	"github.com/Veraticus/billable/internal/cli"
	"github.com/Veraticus/billable/internal/common"
	"github.com/Veraticus/billable/internal/config"
	"github.com/Veraticus/billable/internal/ledger"
	"github.com/Veraticus/billable/internal/model"
	"github.com/Veraticus/billable/internal/simplefin"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func importSimpleFINCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import-simplefin",
		Short: "Set received amounts from a SimpleFIN Bridge connection",
		Long: `Fetch deposits from SimpleFIN Bridge and store their monthly sums as the
received amount of each month, the same way import-ofx does for statement
files.

The first run needs a setup token (--token or simplefin.token). It is claimed
once and the resulting access URL is saved under the data directory.

Examples:
  billable import-simplefin --token aHR0cHM6Ly9icmlkZ2Uu... --since 2025-01-01
  billable import-simplefin --payer acme --months 3 --dry-run`,
		Args: cobra.NoArgs,
		RunE: runImportSimpleFIN,
	}

	cmd.Flags().String("token", "", "SimpleFIN setup token (only needed once)")
	cmd.Flags().String("since", "", "First day to fetch, YYYY-MM-DD (default: --months ago)")
	cmd.Flags().Int("months", 6, "Months of history to fetch when --since is not set")
	cmd.Flags().String("payer", "", "Only count deposits whose payee or memo matches this regex")
	cmd.Flags().BoolP("dry-run", "d", false, "Preview import without saving")

	_ = viper.BindPFlag("simplefin.token", cmd.Flags().Lookup("token"))

	return cmd
}

func runImportSimpleFIN(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	since, _ := cmd.Flags().GetString("since")
	months, _ := cmd.Flags().GetInt("months")

	end := time.Now()
	start := end.AddDate(0, -months, 0)
	if since != "" {
		parsed, err := time.ParseInLocation("2006-01-02", since, time.Local)
		if err != nil {
			return common.NewUserError("invalid --since date (want YYYY-MM-DD)", err)
		}
		start = parsed
	}

	payer, err := payerPattern(cmd)
	if err != nil {
		return err
	}

	stateFile := filepath.Join(config.DataDir(), "simplefin_auth.json")
	auth, err := simplefin.LoadOrClaimAuth(ctx, nil, viper.GetString("simplefin.token"), stateFile)
	if errors.Is(err, simplefin.ErrNoToken) {
		return common.NewUserError("SimpleFIN is not connected; pass --token with a setup token", err)
	}
	if err != nil {
		return err
	}

	client, err := simplefin.NewClient(auth.AccessURL, nil)
	if err != nil {
		return err
	}

	deposits, err := client.Deposits(ctx, start, end)
	if err != nil {
		return fmt.Errorf("failed to fetch SimpleFIN transactions: %w", err)
	}
	slog.Info("Fetched SimpleFIN deposits",
		"deposits", len(deposits),
		"start", start.Format("2006-01-02"),
		"end", end.Format("2006-01-02"))

	return applyReceived(cmd, deposits, payer, dryRun)
}

// payerPattern compiles --payer, falling back to bank.payer. It returns nil
// when neither is set.
func payerPattern(cmd *cobra.Command) (*regexp.Regexp, error) {
	pattern := viper.GetString("bank.payer")
	if cmd.Flags().Changed("payer") {
		pattern, _ = cmd.Flags().GetString("payer")
	}
	if pattern == "" {
		return nil, nil
	}
	re, err := common.CompileFold(pattern)
	if err != nil {
		return nil, common.NewUserError("invalid --payer pattern", err)
	}
	return re, nil
}

// applyReceived sums deposits by month and writes them into the history.
func applyReceived(cmd *cobra.Command, deposits []model.Deposit, payer *regexp.Regexp, dryRun bool) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	received := ledger.ReceivedByPeriod(deposits, payer)
	if len(received) == 0 {
		_, err := fmt.Fprintln(out, cli.FormatWarning("No matching deposits found"))
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

	updates := ledger.WithReceived(existing, received)
	merged := ledger.Merge(existing, updates)

	if _, err := fmt.Fprintln(out, cli.FormatTitle("Received by month")); err != nil {
		return err
	}
	for _, rec := range updates {
		if _, err := fmt.Fprintf(out, "  %s: %s\n", rec.Period, common.FormatMoney(rec.AmountReceived)); err != nil {
			return err
		}
	}

	if dryRun {
		_, err := fmt.Fprintln(out, cli.FormatInfo("Dry run: history not saved"))
		return err
	}

	if err := store.Save(ctx, merged); err != nil {
		return fmt.Errorf("failed to save history: %w", err)
	}

	_, err = fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Updated received amounts for %d months", len(updates))))
	return err
}
