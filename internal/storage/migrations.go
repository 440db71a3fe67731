package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// ExpectedSchemaVersion is the latest schema version that the application expects.
// If the database cannot be migrated to this version, it's a fatal error.
const ExpectedSchemaVersion = 3

// Migration represents a database schema migration.
type Migration struct {
	Up          func(*sql.Tx) error
	Description string
	Version     int
}

var migrations = []Migration{
	{
		Version:     1,
		Description: "Initial schema",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`CREATE TABLE IF NOT EXISTS monthly_records (
					year INTEGER NOT NULL,
					month INTEGER NOT NULL,
					hours REAL NOT NULL DEFAULT 0,
					earned REAL NOT NULL DEFAULT 0,
					received REAL NOT NULL DEFAULT 0,
					notes TEXT NOT NULL DEFAULT '',
					updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
					PRIMARY KEY (year, month)
				)`,

				`CREATE TABLE IF NOT EXISTS extraction_runs (
					id TEXT PRIMARY KEY,
					source TEXT NOT NULL,
					year INTEGER NOT NULL,
					month INTEGER NOT NULL,
					hours REAL NOT NULL DEFAULT 0,
					earned REAL NOT NULL DEFAULT 0,
					received REAL NOT NULL DEFAULT 0,
					excerpt TEXT NOT NULL DEFAULT '',
					extracted_at DATETIME NOT NULL
				)`,
				`CREATE INDEX idx_extraction_runs_period ON extraction_runs(year, month)`,
			}

			for _, query := range queries {
				if _, err := tx.Exec(query); err != nil {
					return fmt.Errorf("failed to execute query: %w", err)
				}
			}
			return nil
		},
	},
	{
		Version:     2,
		Description: "Track which fields each extraction matched",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`ALTER TABLE extraction_runs ADD COLUMN hours_matched BOOLEAN NOT NULL DEFAULT 0`,
				`ALTER TABLE extraction_runs ADD COLUMN earned_matched BOOLEAN NOT NULL DEFAULT 0`,
				`ALTER TABLE extraction_runs ADD COLUMN received_matched BOOLEAN NOT NULL DEFAULT 0`,
				`CREATE INDEX IF NOT EXISTS idx_extraction_runs_extracted_at ON extraction_runs(extracted_at)`,
			}

			for _, query := range queries {
				if _, err := tx.Exec(query); err != nil {
					return fmt.Errorf("failed to execute query '%s': %w", query, err)
				}
			}
			return nil
		},
	},
	{
		Version:     3,
		Description: "Key records by month name for unrecognized months",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`CREATE TABLE monthly_records_new (
					year INTEGER NOT NULL,
					month INTEGER NOT NULL,
					month_name TEXT NOT NULL DEFAULT '',
					hours REAL NOT NULL DEFAULT 0,
					earned REAL NOT NULL DEFAULT 0,
					received REAL NOT NULL DEFAULT 0,
					notes TEXT NOT NULL DEFAULT '',
					updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
					PRIMARY KEY (year, month, month_name)
				)`,
				`INSERT INTO monthly_records_new (year, month, hours, earned, received, notes, updated_at)
					SELECT year, month, hours, earned, received, notes, updated_at FROM monthly_records`,
				`DROP TABLE monthly_records`,
				`ALTER TABLE monthly_records_new RENAME TO monthly_records`,
				`ALTER TABLE extraction_runs ADD COLUMN month_name TEXT NOT NULL DEFAULT ''`,
			}

			for _, query := range queries {
				if _, err := tx.Exec(query); err != nil {
					return fmt.Errorf("failed to execute query '%s': %w", query, err)
				}
			}
			return nil
		},
	},
}

// SchemaVersion returns the version recorded in the database.
func (s *SQLiteStorage) SchemaVersion(ctx context.Context) (int, error) {
	var version int
	if err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return 0, fmt.Errorf("failed to get schema version: %w", err)
	}
	return version, nil
}

// Migrate applies all pending database migrations.
func (s *SQLiteStorage) Migrate(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	currentVersion, err := s.SchemaVersion(ctx)
	if err != nil {
		return err
	}

	for _, migration := range migrations {
		if migration.Version <= currentVersion {
			continue
		}

		tx, txErr := s.db.BeginTx(ctx, nil)
		if txErr != nil {
			return fmt.Errorf("failed to begin transaction: %w", txErr)
		}

		if upErr := migration.Up(tx); upErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d failed: %w", migration.Version, upErr)
		}

		if _, execErr := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", migration.Version)); execErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to update schema version: %w", execErr)
		}

		if commitErr := tx.Commit(); commitErr != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, commitErr)
		}

		slog.Info("Applied migration",
			"version", migration.Version,
			"description", migration.Description)
	}

	finalVersion, err := s.SchemaVersion(ctx)
	if err != nil {
		return fmt.Errorf("failed to verify final schema version: %w", err)
	}

	if finalVersion != ExpectedSchemaVersion {
		return fmt.Errorf("database schema version mismatch: expected %d, got %d", ExpectedSchemaVersion, finalVersion)
	}

	return nil
}
