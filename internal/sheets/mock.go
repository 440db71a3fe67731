package sheets

import (
	"context"
	"sync"

	"github.com/Veraticus/billable/internal/model"
)

// MockWriter is a mock implementation of Exporter for testing.
type MockWriter struct {
	ExportFunc  func(ctx context.Context, records []model.MonthlyRecord) error
	LastRecords []model.MonthlyRecord
	ExportCalls int
	mu          sync.Mutex
}

// NewMockWriter creates a new mock writer.
func NewMockWriter() *MockWriter {
	return &MockWriter{}
}

// Export implements the Exporter interface.
func (m *MockWriter) Export(ctx context.Context, records []model.MonthlyRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.ExportCalls++
	m.LastRecords = append([]model.MonthlyRecord(nil), records...)

	if m.ExportFunc != nil {
		return m.ExportFunc(ctx, records)
	}
	return nil
}

// Calls returns how many times Export ran.
func (m *MockWriter) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ExportCalls
}
