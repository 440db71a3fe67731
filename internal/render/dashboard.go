// Package render writes the billing history as a standalone HTML dashboard.
package render

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/Veraticus/billable/internal/common"
	"github.com/Veraticus/billable/internal/ledger"
	"github.com/Veraticus/billable/internal/model"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// DefaultTitle is used when a Dashboard has no title.
const DefaultTitle = "Work Dashboard"

// Dashboard contains all data needed for the page.
type Dashboard struct {
	GeneratedAt time.Time
	Title       string
	Records     []model.MonthlyRecord
	Summary     ledger.Summary
}

// NewDashboard summarizes records into a Dashboard.
func NewDashboard(title string, records []model.MonthlyRecord, now time.Time) Dashboard {
	if title == "" {
		title = DefaultTitle
	}
	return Dashboard{
		Title:       title,
		Records:     records,
		Summary:     ledger.Summarize(records),
		GeneratedAt: now,
	}
}

// Renderer executes the embedded dashboard template.
type Renderer struct {
	tmpl *template.Template
}

// NewRenderer parses the embedded template.
func NewRenderer() (*Renderer, error) {
	funcMap := template.FuncMap{
		"money":      common.FormatMoney,
		"hours":      common.FormatHours,
		"formatDate": formatDate,
	}

	tmpl, err := template.New("dashboard.html.tmpl").Funcs(funcMap).ParseFS(templateFS, "templates/dashboard.html.tmpl")
	if err != nil {
		return nil, fmt.Errorf("failed to parse dashboard template: %w", err)
	}
	return &Renderer{tmpl: tmpl}, nil
}

// Render writes the dashboard HTML to w.
func (r *Renderer) Render(w io.Writer, d Dashboard) error {
	if d.Records == nil {
		d.Records = []model.MonthlyRecord{}
	}
	if err := r.tmpl.Execute(w, d); err != nil {
		return fmt.Errorf("failed to render dashboard: %w", err)
	}
	return nil
}

func formatDate(t time.Time) string {
	return t.Format("2006-01-02 15:04")
}
