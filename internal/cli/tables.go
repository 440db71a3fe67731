package cli

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/Veraticus/billable/internal/common"
	"github.com/Veraticus/billable/internal/ledger"
	"github.com/Veraticus/billable/internal/model"
)

// RenderRecords writes one row per month followed by a totals row.
func RenderRecords(out io.Writer, records []model.MonthlyRecord) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)

	if _, err := fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t\n",
		TableHeaderStyle.Render("Month"),
		TableHeaderStyle.Render("Hours"),
		TableHeaderStyle.Render("Earned"),
		TableHeaderStyle.Render("Received"),
		TableHeaderStyle.Render("Pending"),
	); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for _, r := range records {
		if _, err := fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t\n",
			r.Period,
			common.FormatHours(r.HoursWorked),
			common.FormatMoney(r.AmountEarned),
			common.FormatMoney(r.AmountReceived),
			common.FormatMoney(r.Pending()),
		); err != nil {
			return fmt.Errorf("failed to write record: %w", err)
		}
	}

	s := ledger.Summarize(records)
	if _, err := fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t\n",
		"Total",
		common.FormatHours(s.TotalHours),
		common.FormatMoney(s.TotalEarned),
		common.FormatMoney(s.TotalReceived),
		common.FormatMoney(s.TotalPending),
	); err != nil {
		return fmt.Errorf("failed to write totals: %w", err)
	}

	return w.Flush()
}

// RenderSummary writes the totals in a box.
func RenderSummary(out io.Writer, s ledger.Summary) error {
	lines := []string{
		fmt.Sprintf("Months:          %d", s.Months),
		fmt.Sprintf("Total Hours:     %s", common.FormatHours(s.TotalHours)),
		fmt.Sprintf("Total Earnings:  %s", common.FormatMoney(s.TotalEarned)),
		fmt.Sprintf("Amount Received: %s", common.FormatMoney(s.TotalReceived)),
		"Pending Amount:  " + PendingStyle.Render(common.FormatMoney(s.TotalPending)),
	}
	if rate := s.AverageRate(); rate > 0 {
		lines = append(lines, fmt.Sprintf("Average Rate:    %s/h", common.FormatMoney(rate)))
	}

	_, err := fmt.Fprintln(out, RenderBox(MoneyIcon+" Billing Summary", strings.Join(lines, "\n")))
	return err
}

// RenderExtraction writes the figures recovered from one document.
func RenderExtraction(out io.Writer, source string, res model.ExtractionResult) error {
	rows := []struct {
		field model.Field
		value string
	}{
		{model.FieldHours, common.FormatHours(res.HoursWorked)},
		{model.FieldEarned, common.FormatMoney(res.AmountEarned)},
		{model.FieldReceived, common.FormatMoney(res.AmountReceived)},
	}

	if _, err := fmt.Fprintln(out, FormatTitle(source)); err != nil {
		return err
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for _, row := range rows {
		status := SuccessStyle.Render(SuccessIcon)
		if !res.IsMatched(row.field) {
			status = SubtleStyle.Render("no match")
		}
		if _, err := fmt.Fprintf(w, "  %s\t%s\t%s\n", row.field, row.value, status); err != nil {
			return fmt.Errorf("failed to write extraction: %w", err)
		}
	}
	return w.Flush()
}

// MatchedFields lists the matched fields in a stable order.
func MatchedFields(res model.ExtractionResult) []string {
	var out []string
	for f, ok := range res.Matched {
		if ok {
			out = append(out, string(f))
		}
	}
	sort.Strings(out)
	return out
}
