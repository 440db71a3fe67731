package tui

import (
	"context"
	"fmt"

	"github.com/Veraticus/billable/internal/model"
	tea "github.com/charmbracelet/bubbletea"
)

// Run shows records in an interactive table until the user quits or ctx is done.
func Run(ctx context.Context, title string, records []model.MonthlyRecord) error {
	p := tea.NewProgram(New(title, records),
		tea.WithContext(ctx),
		tea.WithAltScreen(),
	)
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("viewer failed: %w", err)
	}
	return nil
}
