package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/Veraticus/billable/internal/model"
	"github.com/google/uuid"
)

// RecordExtraction appends run to the audit trail, assigning an ID when empty.
func (s *SQLiteStorage) RecordExtraction(ctx context.Context, run *model.ExtractionRun) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateExtraction(run); err != nil {
		return err
	}
	if run.ID == "" {
		run.ID = uuid.New().String()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO extraction_runs (
			id, source, year, month, month_name, hours, earned, received,
			hours_matched, earned_matched, received_matched, excerpt, extracted_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		run.ID,
		run.Source,
		run.Period.Year,
		int(run.Period.Month),
		run.Period.MonthName(),
		run.Result.HoursWorked,
		run.Result.AmountEarned,
		run.Result.AmountReceived,
		run.Result.IsMatched(model.FieldHours),
		run.Result.IsMatched(model.FieldEarned),
		run.Result.IsMatched(model.FieldReceived),
		run.Result.Excerpt,
		run.ExtractedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to record extraction: %w", err)
	}
	return nil
}

// ListExtractions returns the most recent runs first. A limit of 0 returns all runs.
func (s *SQLiteStorage) ListExtractions(ctx context.Context, limit int) ([]model.ExtractionRun, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	query := `
		SELECT id, source, year, month, month_name, hours, earned, received,
		       hours_matched, earned_matched, received_matched, excerpt, extracted_at
		FROM extraction_runs
		ORDER BY extracted_at DESC, rowid DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query extraction runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var runs []model.ExtractionRun
	for rows.Next() {
		var run model.ExtractionRun
		var year, month int
		var monthName string
		var hoursMatched, earnedMatched, receivedMatched bool
		var extractedAt time.Time

		if err := rows.Scan(
			&run.ID,
			&run.Source,
			&year,
			&month,
			&monthName,
			&run.Result.HoursWorked,
			&run.Result.AmountEarned,
			&run.Result.AmountReceived,
			&hoursMatched,
			&earnedMatched,
			&receivedMatched,
			&run.Result.Excerpt,
			&extractedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan extraction run: %w", err)
		}

		run.Period = periodFromColumns(year, month, monthName)
		run.ExtractedAt = extractedAt
		run.Result.Matched = map[model.Field]bool{}
		if hoursMatched {
			run.Result.Matched[model.FieldHours] = true
		}
		if earnedMatched {
			run.Result.Matched[model.FieldEarned] = true
		}
		if receivedMatched {
			run.Result.Matched[model.FieldReceived] = true
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate extraction runs: %w", err)
	}

	return runs, nil
}
