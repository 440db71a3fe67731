package tui

import (
	"testing"
	"time"

	"github.com/Veraticus/billable/internal/model"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRecords() []model.MonthlyRecord {
	return []model.MonthlyRecord{
		{Period: model.Period{Year: 2025, Month: time.March}, HoursWorked: 236.25, AmountEarned: 5906.25, AmountReceived: 1600},
		{Period: model.Period{Year: 2025, Month: time.April}, HoursWorked: 140, AmountEarned: 3500, AmountReceived: 16000},
		{Period: model.Period{Year: 2025, Month: time.May}, AmountReceived: 6000},
		{Period: model.Period{Year: 2025, Month: time.June}, HoursWorked: 226, AmountEarned: 6102, AmountReceived: 4000},
	}
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	got, ok := next.(Model)
	require.True(t, ok)
	return got, cmd
}

func TestNewShowsAllRecords(t *testing.T) {
	m := New("Work", testRecords())

	assert.Len(t, m.Visible(), 4)
	view := m.View()
	assert.Contains(t, view, "Work")
	assert.Contains(t, view, "March 2025")
	assert.Contains(t, view, "4 months")
}

func TestTogglePending(t *testing.T) {
	m := New("Work", testRecords())

	m, _ = update(t, m, runes("p"))
	require.Len(t, m.Visible(), 2)
	assert.Equal(t, time.March, m.Visible()[0].Period.Month)
	assert.Equal(t, time.June, m.Visible()[1].Period.Month)
	assert.Contains(t, m.View(), "(pending only)")

	m, _ = update(t, m, runes("p"))
	assert.Len(t, m.Visible(), 4)
}

func TestReverse(t *testing.T) {
	records := testRecords()
	m := New("Work", records)

	m, _ = update(t, m, runes("r"))
	assert.Equal(t, time.June, m.Visible()[0].Period.Month)
	assert.Equal(t, time.March, records[0].Period.Month, "input must not be reordered")
}

func TestQuitKeys(t *testing.T) {
	tests := []struct {
		msg  tea.KeyMsg
		name string
	}{
		{name: "q", msg: runes("q")},
		{name: "esc", msg: tea.KeyMsg{Type: tea.KeyEsc}},
		{name: "ctrl+c", msg: tea.KeyMsg{Type: tea.KeyCtrlC}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, cmd := update(t, New("Work", testRecords()), tt.msg)
			require.NotNil(t, cmd)
			assert.IsType(t, tea.QuitMsg{}, cmd())
		})
	}
}

func TestWindowResize(t *testing.T) {
	m := New("Work", testRecords())

	m, cmd := update(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})
	assert.Nil(t, cmd)
	assert.Equal(t, 40-chromeHeight, m.table.Height())
}

func TestEmptyHistory(t *testing.T) {
	m := New("Work", nil)

	assert.Empty(t, m.Visible())
	assert.Contains(t, m.View(), "0 months")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcdefg...", truncate("abcdefghijklmnop", 10))
}
