package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Veraticus/billable/internal/cli"
	"github.com/Veraticus/billable/internal/common"
	"github.com/Veraticus/billable/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	version = "dev"
	rootCmd = &cobra.Command{
		Use:   "billable",
		Short: "📊 Monthly billing history from invoices and bank statements",
		Long: `billable keeps a month-by-month record of hours worked, money earned and
money received.

It pulls figures out of invoice documents (.docx, .xlsx, .txt), merges them
into the history, reconciles payments from bank statements and renders the
result as a terminal summary, an HTML dashboard or a Google Sheet.`,
		PersistentPreRunE: initConfig,
		SilenceUsage:      true,
	}
)

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.config/billable/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "console", "log format (console, json)")
	rootCmd.PersistentFlags().String("backend", "", "history backend (json, sqlite)")

	// Bind flags to viper
	_ = viper.BindPFlag("logging.level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("logging.format", rootCmd.PersistentFlags().Lookup("log-format"))
	_ = viper.BindPFlag("ledger.backend", rootCmd.PersistentFlags().Lookup("backend"))

	setDefaults(viper.GetViper())

	rootCmd.AddCommand(extractCmd())
	rootCmd.AddCommand(updateCmd())
	rootCmd.AddCommand(importSheetCmd())
	rootCmd.AddCommand(importOFXCmd())
	rootCmd.AddCommand(importSimpleFINCmd())
	rootCmd.AddCommand(summaryCmd())
	rootCmd.AddCommand(viewCmd())
	rootCmd.AddCommand(renderCmd())
	rootCmd.AddCommand(exportCmd())
	rootCmd.AddCommand(historyCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(authCmd())
	rootCmd.AddCommand(versionCmd())
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ledger.backend", backendJSON)
	v.SetDefault("ledger.path", filepath.Join(config.DataDir(), "data.json"))
	v.SetDefault("database.path", filepath.Join(config.DataDir(), "billable.db"))
	v.SetDefault("extract.hourly_rate", 0.0)
	v.SetDefault("render.title", "Work Dashboard")
	v.SetDefault("sheets.env_file", ".env")
}

func main() {
	ctx, stop := cli.NewInterruptHandler(os.Stderr).HandleInterrupts(context.Background())

	err := rootCmd.ExecuteContext(ctx)
	stop()

	if err != nil {
		var userErr *common.UserError
		if errors.As(err, &userErr) {
			fmt.Fprintln(os.Stderr, cli.FormatError(userErr.Error()))
		} else {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

func initConfig(_ *cobra.Command, _ []string) error {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(config.Dir())
		viper.AddConfigPath(".")
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("BILLABLE")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config: %w", err)
		}
	}

	if err := common.SetupLogger(viper.GetString("logging.level"), viper.GetString("logging.format")); err != nil {
		return fmt.Errorf("failed to setup logging: %w", err)
	}

	return nil
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "billable %s\n", version)
			return err
		},
	}
}
