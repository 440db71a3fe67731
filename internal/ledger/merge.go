// Package ledger reconciles monthly billing records into a single chronological history.
package ledger

import (
	"sort"

	"github.com/Veraticus/billable/internal/model"
)

// Merge replaces every existing record whose period appears in incoming,
// appends incoming and returns the union sorted by period.
// Within each input a later record for the same period wins.
// Neither input is modified.
func Merge(existing, incoming []model.MonthlyRecord) []model.MonthlyRecord {
	replaced := make(map[model.Period]bool, len(incoming))
	for _, r := range incoming {
		replaced[r.Period] = true
	}

	merged := make([]model.MonthlyRecord, 0, len(existing)+len(incoming))
	for _, r := range existing {
		if !replaced[r.Period] {
			merged = append(merged, r)
		}
	}
	merged = append(merged, incoming...)

	merged = dedupe(merged)
	Sort(merged)
	return merged
}

// dedupe keeps the last record seen for each period.
func dedupe(records []model.MonthlyRecord) []model.MonthlyRecord {
	last := make(map[model.Period]int, len(records))
	for i, r := range records {
		last[r.Period] = i
	}
	if len(last) == len(records) {
		return records
	}

	out := make([]model.MonthlyRecord, 0, len(last))
	for i, r := range records {
		if last[r.Period] == i {
			out = append(out, r)
		}
	}
	return out
}

// Sort orders records by period in place. Records whose months sort equally keep their order.
func Sort(records []model.MonthlyRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Period.Before(records[j].Period)
	})
}
