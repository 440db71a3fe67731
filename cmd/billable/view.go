package main

import (
	"fmt"

	"github.com/Veraticus/billable/internal/tui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func viewCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "view",
		Short: "Browse the history in an interactive table",
		Long: `Browse the history in an interactive table.

Keys: ↑/↓ move, p toggles months with money pending, r reverses the order,
? shows help, q or Esc quits.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := openStore(ctx)
			if err != nil {
				return err
			}
			records, err := store.Load(ctx)
			_ = store.Close()
			if err != nil {
				return fmt.Errorf("failed to load history: %w", err)
			}

			return tui.Run(ctx, viper.GetString("render.title"), records)
		},
	}
}
