package chat

import (
	"strings"

	"github.com/shopspring/decimal"
)

// formatAmount renders v with two decimals, rounding half away from zero.
func formatAmount(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}

// formatINR renders a rupee amount with two decimals, e.g. "₹12.50".
func formatINR(v float64) string {
	return "₹" + formatAmount(v)
}

// formatINRWhole renders a rupee amount rounded to whole rupees with
// thousands separators, e.g. 350000 is written as "₹350,000".
func formatINRWhole(v float64) string {
	s := decimal.NewFromFloat(v).Round(0).String()
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	var b strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}

	if neg {
		return "-₹" + b.String()
	}
	return "₹" + b.String()
}
