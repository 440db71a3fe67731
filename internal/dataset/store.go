// Package dataset loads and saves billing histories.
package dataset

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Veraticus/billable/internal/ledger"
	"github.com/Veraticus/billable/internal/model"
)

// RecordStore persists a complete billing history.
type RecordStore interface {
	Load(ctx context.Context) ([]model.MonthlyRecord, error)
	Save(ctx context.Context, records []model.MonthlyRecord) error
	Close() error
}

// JSONStore keeps the history as a JSON array in a single file.
type JSONStore struct {
	path string
}

// NewJSONStore returns a store backed by path. The file need not exist yet.
func NewJSONStore(path string) *JSONStore {
	return &JSONStore{path: path}
}

// Path returns the backing file.
func (s *JSONStore) Path() string {
	return s.path
}

// Load reads the history in period order. A missing file is an empty history.
func (s *JSONStore) Load(ctx context.Context) ([]model.MonthlyRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return []model.MonthlyRecord{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read history: %w", err)
	}

	var records []model.MonthlyRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to parse history %s: %w", s.path, err)
	}

	return ledger.Merge(records, nil), nil
}

// Save replaces the file contents with records.
// The new file is written beside the old one and renamed into place.
func (s *JSONStore) Save(ctx context.Context, records []model.MonthlyRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if records == nil {
		records = []model.MonthlyRecord{}
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal history: %w", err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("failed to create history directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".history-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() { _ = os.Remove(tmpPath) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write history: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		return fmt.Errorf("failed to replace history: %w", err)
	}

	return nil
}

// Close is a no-op; the file is not held open.
func (s *JSONStore) Close() error {
	return nil
}
