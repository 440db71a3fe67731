package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/Veraticus/billable/internal/sheets"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// LoadDotEnv loads variables from path without overriding ones already set.
// An empty path or a missing file is not an error.
func LoadDotEnv(path string) error {
	if path == "" {
		return nil
	}
	err := godotenv.Load(ExpandPath(path))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	slog.Debug("Loaded environment file", "path", path)
	return nil
}

// LoadSheetsConfig loads Google Sheets configuration from Viper and environment variables.
// It follows this precedence:
// 1. Viper configuration (from config file or BILLABLE_ env vars)
// 2. Direct environment variables (GOOGLE_SHEETS_*), including those from sheets.env_file
// 3. Default values
func LoadSheetsConfig(v *viper.Viper) (*sheets.Config, error) {
	if err := LoadDotEnv(v.GetString("sheets.env_file")); err != nil {
		return nil, err
	}

	config := sheets.DefaultConfig()

	str := func(key, env string) string {
		if val := v.GetString(key); val != "" {
			return val
		}
		return os.Getenv(env)
	}

	config.ServiceAccountPath = ExpandPath(str("sheets.service_account_path", "GOOGLE_SHEETS_SERVICE_ACCOUNT_PATH"))
	config.ClientID = str("sheets.client_id", "GOOGLE_SHEETS_CLIENT_ID")
	config.ClientSecret = str("sheets.client_secret", "GOOGLE_SHEETS_CLIENT_SECRET")
	config.RefreshToken = str("sheets.refresh_token", "GOOGLE_SHEETS_REFRESH_TOKEN")
	config.SpreadsheetID = str("sheets.spreadsheet_id", "GOOGLE_SHEETS_SPREADSHEET_ID")

	if name := str("sheets.spreadsheet_name", "GOOGLE_SHEETS_SPREADSHEET_NAME"); name != "" {
		config.SpreadsheetName = name
	}
	if name := v.GetString("sheets.sheet_name"); name != "" {
		config.SheetName = name
	}
	if tz := v.GetString("sheets.time_zone"); tz != "" {
		config.TimeZone = tz
	}
	if v.IsSet("sheets.enable_formatting") {
		config.EnableFormatting = v.GetBool("sheets.enable_formatting")
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}
