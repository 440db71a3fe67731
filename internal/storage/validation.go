// Package storage provides the data persistence layer for the billable application.
package storage

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/Veraticus/billable/internal/model"
)

// Validation errors.
var (
	ErrNilContext        = errors.New("context cannot be nil")
	ErrEmptyString       = errors.New("string parameter cannot be empty")
	ErrInvalidRecord     = errors.New("invalid monthly record")
	ErrDuplicatePeriod   = errors.New("duplicate period")
	ErrInvalidExtraction = errors.New("invalid extraction run")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateRecords validates a whole history before it replaces the stored one.
func validateRecords(records []model.MonthlyRecord) error {
	seen := make(map[model.Period]bool, len(records))
	for i := range records {
		if err := validateRecord(&records[i]); err != nil {
			return fmt.Errorf("record at index %d: %w", i, err)
		}
		if seen[records[i].Period] {
			return fmt.Errorf("%w: %s", ErrDuplicatePeriod, records[i].Period)
		}
		seen[records[i].Period] = true
	}
	return nil
}

// validateRecord validates a single monthly record.
func validateRecord(r *model.MonthlyRecord) error {
	if r.Period.Year <= 0 {
		return fmt.Errorf("%w: year must be positive", ErrInvalidRecord)
	}
	if err := validateAmount(r.HoursWorked, "hours"); err != nil {
		return err
	}
	if err := validateAmount(r.AmountEarned, "earned"); err != nil {
		return err
	}
	return validateAmount(r.AmountReceived, "received")
}

func validateAmount(v float64, name string) error {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return fmt.Errorf("%w: %s must be a non-negative number, got %v", ErrInvalidRecord, name, v)
	}
	return nil
}

// validateExtraction validates an extraction audit entry.
func validateExtraction(run *model.ExtractionRun) error {
	if run == nil {
		return fmt.Errorf("%w: nil run", ErrInvalidExtraction)
	}
	if err := validateString(run.Source, "source"); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidExtraction, err)
	}
	if run.ExtractedAt.IsZero() {
		return fmt.Errorf("%w: missing extraction time", ErrInvalidExtraction)
	}
	return nil
}
