package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Veraticus/billable/internal/common"
	"github.com/Veraticus/billable/internal/sheets"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sheetsEnv = []string{
	"GOOGLE_SHEETS_SERVICE_ACCOUNT_PATH",
	"GOOGLE_SHEETS_CLIENT_ID",
	"GOOGLE_SHEETS_CLIENT_SECRET",
	"GOOGLE_SHEETS_REFRESH_TOKEN",
	"GOOGLE_SHEETS_SPREADSHEET_ID",
	"GOOGLE_SHEETS_SPREADSHEET_NAME",
}

// clearSheetsEnv blanks the variables for the test and restores them afterwards.
func clearSheetsEnv(t *testing.T) {
	t.Helper()
	for _, key := range sheetsEnv {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)
	t.Setenv("BILLABLE_TEST_DIR", "/srv/billing")

	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"~", home},
		{"~/data.json", filepath.Join(home, "data.json")},
		{"$BILLABLE_TEST_DIR/data.json", "/srv/billing/data.json"},
		{"/abs/path", "/abs/path"},
		{"relative/~", "relative/~"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ExpandPath(tt.in), tt.in)
	}
}

func TestDirs(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/xdg/config")
	t.Setenv("XDG_DATA_HOME", "/xdg/data")

	assert.Equal(t, "/xdg/config/billable", Dir())
	assert.Equal(t, "/xdg/data/billable", DataDir())

	t.Setenv("XDG_CONFIG_HOME", "")
	assert.Equal(t, AppName, filepath.Base(Dir()))
}

func TestLoadSheetsConfigFromViper(t *testing.T) {
	clearSheetsEnv(t)

	v := viper.New()
	v.Set("sheets.service_account_path", "/keys/sa.json")
	v.Set("sheets.spreadsheet_id", "abc")
	v.Set("sheets.sheet_name", "Invoices")
	v.Set("sheets.enable_formatting", false)

	cfg, err := LoadSheetsConfig(v)
	require.NoError(t, err)
	assert.Equal(t, "/keys/sa.json", cfg.ServiceAccountPath)
	assert.Equal(t, "abc", cfg.SpreadsheetID)
	assert.Equal(t, "Invoices", cfg.SheetName)
	assert.Equal(t, sheets.DefaultSpreadsheetName, cfg.SpreadsheetName)
	assert.False(t, cfg.EnableFormatting)
}

func TestLoadSheetsConfigFromDotEnv(t *testing.T) {
	clearSheetsEnv(t)

	envFile := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(envFile, []byte(
		"GOOGLE_SHEETS_CLIENT_ID=client\n"+
			"GOOGLE_SHEETS_CLIENT_SECRET=secret\n"+
			"GOOGLE_SHEETS_REFRESH_TOKEN=refresh\n"+
			"GOOGLE_SHEETS_SPREADSHEET_NAME=Cleaning Work\n"), 0o600))

	v := viper.New()
	v.Set("sheets.env_file", envFile)
	v.Set("sheets.client_id", "from-viper")

	cfg, err := LoadSheetsConfig(v)
	require.NoError(t, err)
	assert.Equal(t, "from-viper", cfg.ClientID)
	assert.Equal(t, "secret", cfg.ClientSecret)
	assert.Equal(t, "refresh", cfg.RefreshToken)
	assert.Equal(t, "Cleaning Work", cfg.SpreadsheetName)
	assert.True(t, cfg.HasOAuth())
}

func TestLoadSheetsConfigMissingAuth(t *testing.T) {
	clearSheetsEnv(t)

	_, err := LoadSheetsConfig(viper.New())
	assert.ErrorIs(t, err, common.ErrMissingConfig)
}

func TestLoadDotEnvMissingFile(t *testing.T) {
	assert.NoError(t, LoadDotEnv(filepath.Join(t.TempDir(), "absent.env")))
}
