package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Veraticus/billable/internal/common"
	"github.com/Veraticus/billable/internal/ledger"
	"github.com/Veraticus/billable/internal/model"
)

// queryable is satisfied by both *sql.DB and *sql.Tx.
type queryable interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Load returns the stored history in period order.
func (s *SQLiteStorage) Load(ctx context.Context) ([]model.MonthlyRecord, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT year, month, month_name, hours, earned, received, notes
		FROM monthly_records
		ORDER BY year, month
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query records: %w", err)
	}
	defer func() { _ = rows.Close() }()

	records := []model.MonthlyRecord{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate records: %w", err)
	}

	ledger.Sort(records)
	return records, nil
}

func periodFromColumns(year, month int, monthName string) model.Period {
	if month == 0 {
		return model.NewPeriod(year, monthName)
	}
	return model.Period{Year: year, Month: time.Month(month)}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (model.MonthlyRecord, error) {
	var rec model.MonthlyRecord
	var year, month int
	var monthName string
	if err := row.Scan(
		&year,
		&month,
		&monthName,
		&rec.HoursWorked,
		&rec.AmountEarned,
		&rec.AmountReceived,
		&rec.Notes,
	); err != nil {
		return model.MonthlyRecord{}, fmt.Errorf("failed to scan record: %w", err)
	}
	rec.Period = periodFromColumns(year, month, monthName)
	return rec, nil
}

// Save replaces the stored history with records in a single transaction.
func (s *SQLiteStorage) Save(ctx context.Context, records []model.MonthlyRecord) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateRecords(records); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM monthly_records`); err != nil {
		return fmt.Errorf("failed to clear records: %w", err)
	}

	for _, rec := range records {
		if err := s.putRecordTx(ctx, tx, rec); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit records: %w", err)
	}
	return nil
}

// PutRecord inserts rec or replaces the record for its period.
func (s *SQLiteStorage) PutRecord(ctx context.Context, rec model.MonthlyRecord) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateRecord(&rec); err != nil {
		return err
	}
	return s.putRecordTx(ctx, s.db, rec)
}

func (s *SQLiteStorage) putRecordTx(ctx context.Context, q queryable, rec model.MonthlyRecord) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO monthly_records (year, month, month_name, hours, earned, received, notes, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(year, month, month_name) DO UPDATE SET
			hours = excluded.hours,
			earned = excluded.earned,
			received = excluded.received,
			notes = excluded.notes,
			updated_at = CURRENT_TIMESTAMP
	`, rec.Period.Year, int(rec.Period.Month), rec.Period.MonthName(), rec.HoursWorked, rec.AmountEarned, rec.AmountReceived, rec.Notes)
	if err != nil {
		return fmt.Errorf("failed to save record %s: %w", rec.Period, err)
	}
	return nil
}

// GetRecord returns the record for period or common.ErrNotFound.
func (s *SQLiteStorage) GetRecord(ctx context.Context, period model.Period) (*model.MonthlyRecord, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT year, month, month_name, hours, earned, received, notes
		FROM monthly_records
		WHERE year = ? AND month = ? AND month_name = ?
	`, period.Year, int(period.Month), period.MonthName())

	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: record for %s", common.ErrNotFound, period)
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// DeleteRecord removes the record for period.
func (s *SQLiteStorage) DeleteRecord(ctx context.Context, period model.Period) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `DELETE FROM monthly_records WHERE year = ? AND month = ? AND month_name = ?`,
		period.Year, int(period.Month), period.MonthName())
	if err != nil {
		return fmt.Errorf("failed to delete record: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check deleted rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: record for %s", common.ErrNotFound, period)
	}
	return nil
}
