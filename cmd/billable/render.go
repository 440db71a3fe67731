package main

import (
	"fmt"

	"github.com/Veraticus/billable/internal/cli"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func renderCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "render OUT.html",
		Short: "Write the history as an HTML dashboard",
		Args:  cobra.ExactArgs(1),
		RunE:  runRender,
	}

	cmd.Flags().String("title", "", "Page title (default: render.title)")
	_ = viper.BindPFlag("render.title", cmd.Flags().Lookup("title"))

	return cmd
}

func runRender(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	store, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	records, err := store.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load history: %w", err)
	}

	if err := writeDashboard(args[0], records); err != nil {
		return err
	}

	_, err = fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Dashboard with %d months written to %s", len(records), args[0])))
	return err
}
