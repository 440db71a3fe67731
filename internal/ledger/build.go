package ledger

import (
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"github.com/Veraticus/billable/internal/model"
)

// NewRecord turns an extraction into a record for period.
// Invoices often list only money; when hours did not match but the amount did
// and hourlyRate is positive, hours are estimated from the amount.
func NewRecord(period model.Period, res model.ExtractionResult, notes string, hourlyRate float64) model.MonthlyRecord {
	rec := model.MonthlyRecord{
		Period:         period,
		HoursWorked:    res.HoursWorked,
		AmountEarned:   res.AmountEarned,
		AmountReceived: res.AmountReceived,
		Notes:          notes,
	}

	if !res.IsMatched(model.FieldHours) && res.IsMatched(model.FieldEarned) && hourlyRate > 0 {
		rec.HoursWorked = round2(res.AmountEarned / hourlyRate)
		slog.Debug("Estimated hours from amount",
			"period", period.String(),
			"amount", res.AmountEarned,
			"rate", hourlyRate,
			"hours", rec.HoursWorked)
	}

	return rec
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// WithReceived returns copies of the records for each period in received,
// carrying the new received amount. Periods without a record get a new one.
// The result is meant to be merged back over records.
func WithReceived(records []model.MonthlyRecord, received map[model.Period]float64) []model.MonthlyRecord {
	byPeriod := make(map[model.Period]model.MonthlyRecord, len(records))
	for _, r := range records {
		byPeriod[r.Period] = r
	}

	out := make([]model.MonthlyRecord, 0, len(received))
	for period, amount := range received {
		rec, ok := byPeriod[period]
		if !ok {
			rec = model.MonthlyRecord{Period: period}
		}
		rec.AmountReceived = round2(amount)
		out = append(out, rec)
	}

	Sort(out)
	return out
}

// FromTable converts spreadsheet rows keyed by header into records.
// Rows without a parsable month are skipped.
func FromTable(rows []map[string]string) []model.MonthlyRecord {
	records := make([]model.MonthlyRecord, 0, len(rows))
	for i, row := range rows {
		label := column(row, "month", "period")
		period, err := model.ParsePeriod(label)
		if err != nil {
			slog.Warn("Skipping spreadsheet row", "row", i+1, "month", label, "error", err)
			continue
		}

		records = append(records, model.MonthlyRecord{
			Period:         period,
			HoursWorked:    cellNumber(column(row, "hours", "total hours")),
			AmountEarned:   cellNumber(column(row, "amount", "earned", "total amount")),
			AmountReceived: cellNumber(column(row, "received", "paid", "amount received")),
			Notes:          strings.TrimSpace(column(row, "notes", "note")),
		})
	}
	return records
}

// column returns the first cell whose header matches one of names, ignoring case.
func column(row map[string]string, names ...string) string {
	for _, name := range names {
		for header, value := range row {
			if strings.EqualFold(strings.TrimSpace(header), name) {
				return value
			}
		}
	}
	return ""
}

// cellNumber reads "$1,234.50" style cells; anything unreadable is 0.
func cellNumber(cell string) float64 {
	cleaned := strings.NewReplacer("$", "", ",", "", " ", "").Replace(cell)
	if cleaned == "" {
		return 0
	}
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		slog.Debug("Unreadable numeric cell", "cell", cell)
		return 0
	}
	return v
}

// Describe formats a record for log and console output.
func Describe(r model.MonthlyRecord) string {
	return fmt.Sprintf("%s: %.2f hours, $%.2f, received $%.2f", r.Period, r.HoursWorked, r.AmountEarned, r.AmountReceived)
}
