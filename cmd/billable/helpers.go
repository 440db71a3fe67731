package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/Veraticus/billable/internal/common"
	"github.com/Veraticus/billable/internal/config"
	"github.com/Veraticus/billable/internal/dataset"
	"github.com/Veraticus/billable/internal/extract"
	"github.com/Veraticus/billable/internal/model"
	"github.com/Veraticus/billable/internal/storage"
	"github.com/spf13/viper"
)

const (
	backendJSON   = "json"
	backendSQLite = "sqlite"
)

// openStore opens the configured history backend.
func openStore(ctx context.Context) (dataset.RecordStore, error) {
	switch backend := strings.ToLower(viper.GetString("ledger.backend")); backend {
	case backendJSON, "":
		path := config.ExpandPath(viper.GetString("ledger.path"))
		slog.Debug("Using JSON history", "path", path)
		return dataset.NewJSONStore(path), nil
	case backendSQLite:
		return initStorage(ctx)
	default:
		return nil, fmt.Errorf("%w: ledger.backend %q (want json or sqlite)", common.ErrInvalidConfig, backend)
	}
}

// initStorage opens the SQLite database and applies migrations.
func initStorage(ctx context.Context) (*storage.SQLiteStorage, error) {
	dbPath := config.ExpandPath(viper.GetString("database.path"))

	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return nil, err
	}

	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// newExtractor builds an extractor from extract.rules_file, or the defaults.
func newExtractor() (*extract.Extractor, error) {
	rules := extract.DefaultRules()
	if path := viper.GetString("extract.rules_file"); path != "" {
		loaded, err := extract.LoadRules(config.ExpandPath(path))
		if err != nil {
			return nil, err
		}
		rules = loaded
	}
	return extract.NewExtractor(rules)
}

// expandFiles resolves glob patterns, keeping literal paths that exist.
func expandFiles(patterns []string) ([]string, error) {
	var files []string
	for _, pattern := range patterns {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %s: %w", pattern, err)
		}
		if len(matches) == 0 {
			if _, err := os.Stat(pattern); err == nil {
				files = append(files, pattern)
			} else {
				slog.Warn("No files found matching pattern", "pattern", pattern)
			}
			continue
		}
		files = append(files, matches...)
	}

	if len(files) == 0 {
		return nil, common.ErrNoDocuments
	}
	return files, nil
}

// target is one "PERIOD=FILE" argument.
type target struct {
	Path   string
	Period model.Period
}

func parseTarget(arg string) (target, error) {
	label, path, ok := strings.Cut(arg, "=")
	label, path = strings.TrimSpace(label), strings.TrimSpace(path)
	if !ok || label == "" || path == "" {
		return target{}, fmt.Errorf("%w: %q (want \"Month YYYY=FILE\")", common.ErrInvalidTarget, arg)
	}

	period, err := model.ParsePeriod(label)
	if err != nil {
		return target{}, fmt.Errorf("%w: %w", common.ErrInvalidTarget, err)
	}
	if !period.Valid() {
		slog.Warn("Unrecognized month name; the record will sort with January", "period", label)
	}

	return target{Period: period, Path: path}, nil
}

// auditor is implemented by stores that keep an extraction audit trail.
type auditor interface {
	RecordExtraction(ctx context.Context, run *model.ExtractionRun) error
}

// replacedPeriods lists the incoming periods that already have a record.
func replacedPeriods(existing, incoming []model.MonthlyRecord) []model.Period {
	have := make(map[model.Period]bool, len(existing))
	for _, r := range existing {
		have[r.Period] = true
	}

	var out []model.Period
	seen := make(map[model.Period]bool)
	for _, r := range incoming {
		if have[r.Period] && !seen[r.Period] {
			seen[r.Period] = true
			out = append(out, r.Period)
		}
	}
	return out
}

func joinPeriods(periods []model.Period) string {
	labels := make([]string, len(periods))
	for i, p := range periods {
		labels[i] = p.String()
	}
	return strings.Join(labels, ", ")
}
