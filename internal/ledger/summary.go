package ledger

import "github.com/Veraticus/billable/internal/model"

// Summary totals a billing history.
type Summary struct {
	Months        int     `json:"months"`
	TotalHours    float64 `json:"total_hours"`
	TotalEarned   float64 `json:"total_earned"`
	TotalReceived float64 `json:"total_received"`
	TotalPending  float64 `json:"total_pending"`
}

// Summarize sums hours, earnings and payments over records.
func Summarize(records []model.MonthlyRecord) Summary {
	var s Summary
	for _, r := range records {
		s.TotalHours += r.HoursWorked
		s.TotalEarned += r.AmountEarned
		s.TotalReceived += r.AmountReceived
	}
	s.Months = len(records)
	s.TotalPending = s.TotalEarned - s.TotalReceived
	return s
}

// AverageRate is earnings per hour, or 0 when no hours were recorded.
func (s Summary) AverageRate() float64 {
	if s.TotalHours == 0 {
		return 0
	}
	return s.TotalEarned / s.TotalHours
}
