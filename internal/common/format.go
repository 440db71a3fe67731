package common

import (
	"fmt"

	"github.com/dustin/go-humanize"
)

// FormatMoney renders an amount as "$14,698.67".
func FormatMoney(amount float64) string {
	if amount < 0 {
		return "-$" + humanize.FormatFloat("#,###.##", -amount)
	}
	return "$" + humanize.FormatFloat("#,###.##", amount)
}

// FormatHours renders hours with two decimals.
func FormatHours(hours float64) string {
	return fmt.Sprintf("%.2f", hours)
}
