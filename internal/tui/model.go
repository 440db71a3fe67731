// Package tui provides an interactive terminal viewer for the billing history.
package tui

import (
	"fmt"

	"github.com/Veraticus/billable/internal/common"
	"github.com/Veraticus/billable/internal/ledger"
	"github.com/Veraticus/billable/internal/model"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const (
	defaultHeight = 20
	chromeHeight  = 7
	notesWidth    = 40
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#4F9DDE"))
	footerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#95E1D3"))
	pendingStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFE66D"))
	baseStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("240"))
)

// Model is the bubbletea model for the record viewer.
type Model struct {
	keys        KeyMap
	title       string
	records     []model.MonthlyRecord
	visible     []model.MonthlyRecord
	help        help.Model
	table       table.Model
	onlyPending bool
	newestFirst bool
}

// New creates a viewer over records, which must already be in period order.
func New(title string, records []model.MonthlyRecord) Model {
	columns := []table.Column{
		{Title: "Month", Width: 16},
		{Title: "Hours", Width: 9},
		{Title: "Earned", Width: 12},
		{Title: "Received", Width: 12},
		{Title: "Pending", Width: 12},
		{Title: "Notes", Width: notesWidth},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(defaultHeight),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(false)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	m := Model{
		keys:    DefaultKeyMap(),
		title:   title,
		records: records,
		help:    help.New(),
		table:   t,
	}
	m.refresh()
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		height := msg.Height - chromeHeight
		if height < 3 {
			height = 3
		}
		m.table.SetHeight(height)
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit), key.Matches(msg, m.keys.ForceQuit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		case key.Matches(msg, m.keys.TogglePending):
			m.onlyPending = !m.onlyPending
			m.refresh()
			return m, nil
		case key.Matches(msg, m.keys.Reverse):
			m.newestFirst = !m.newestFirst
			m.refresh()
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// View implements tea.Model.
func (m Model) View() string {
	s := ledger.Summarize(m.visible)

	footer := fmt.Sprintf("%d months  %s hours  earned %s  received %s  pending ",
		s.Months,
		common.FormatHours(s.TotalHours),
		common.FormatMoney(s.TotalEarned),
		common.FormatMoney(s.TotalReceived),
	) + pendingStyle.Render(common.FormatMoney(s.TotalPending))

	title := m.title
	if m.onlyPending {
		title += " (pending only)"
	}

	return titleStyle.Render(title) + "\n" +
		baseStyle.Render(m.table.View()) + "\n" +
		footerStyle.Render(footer) + "\n" +
		m.help.View(m.keys)
}

// Visible returns the records currently shown, in display order.
func (m Model) Visible() []model.MonthlyRecord {
	return m.visible
}

func (m *Model) refresh() {
	visible := make([]model.MonthlyRecord, 0, len(m.records))
	for _, r := range m.records {
		if m.onlyPending && r.Pending() <= 0 {
			continue
		}
		visible = append(visible, r)
	}
	if m.newestFirst {
		for i, j := 0, len(visible)-1; i < j; i, j = i+1, j-1 {
			visible[i], visible[j] = visible[j], visible[i]
		}
	}
	m.visible = visible

	rows := make([]table.Row, 0, len(visible))
	for _, r := range visible {
		rows = append(rows, table.Row{
			r.Period.String(),
			common.FormatHours(r.HoursWorked),
			common.FormatMoney(r.AmountEarned),
			common.FormatMoney(r.AmountReceived),
			common.FormatMoney(r.Pending()),
			truncate(r.Notes, notesWidth),
		})
	}
	m.table.SetRows(rows)
	m.table.GotoTop()
}

func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen-3]) + "..."
}
