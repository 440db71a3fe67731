package ledger

import (
	"regexp"

	"github.com/Veraticus/billable/internal/model"
)

// ReceivedByPeriod sums deposits per month. When payer is set, only deposits
// whose payee or memo match it are counted. Deposits sharing account and ID
// are counted once.
func ReceivedByPeriod(deposits []model.Deposit, payer *regexp.Regexp) map[model.Period]float64 {
	seen := make(map[string]bool, len(deposits))
	totals := make(map[model.Period]float64)

	for _, d := range deposits {
		if payer != nil && !payer.MatchString(d.Payee) && !payer.MatchString(d.Memo) {
			continue
		}
		if d.ID != "" {
			key := d.AccountID + "/" + d.ID
			if seen[key] {
				continue
			}
			seen[key] = true
		}
		totals[model.PeriodOf(d.Date)] += d.Amount
	}
	return totals
}
