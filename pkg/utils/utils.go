package utils

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sabamas/arrears-engine/internal/domain"
)

var indonesianMonths = [...]string{
	time.January:   "Januari",
	time.February:  "Februari",
	time.March:     "Maret",
	time.April:     "April",
	time.May:       "Mei",
	time.June:      "Juni",
	time.July:      "Juli",
	time.August:    "Agustus",
	time.September: "September",
	time.October:   "Oktober",
	time.November:  "November",
	time.December:  "Desember",
}

// MonthLabel renders a billing month in Indonesian, e.g. "Januari 2024".
func MonthLabel(m domain.Month) string {
	return indonesianMonths[m.Mon] + " " + m.FirstDay().Format("2006")
}

// JoinMonthLabels joins billing months into free text for confirmation
// messages, e.g. "Januari 2024, Februari 2024".
func JoinMonthLabels(months []domain.Month) string {
	labels := make([]string, len(months))
	for i, m := range months {
		labels[i] = MonthLabel(m)
	}
	return strings.Join(labels, ", ")
}

// FormatRupiah renders an amount as "Rp 15.000" with dot thousand
// separators. Amounts are whole rupiah; any fraction is rounded away first.
func FormatRupiah(amount decimal.Decimal) string {
	s := amount.Round(0).String()

	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}

	var b strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}

	out := "Rp " + b.String()
	if neg {
		out = "Rp -" + b.String()
	}
	return out
}

// EqualSplit divides a payment total evenly over n months. No rounding is
// applied here; only summed or displayed amounts are rounded, so a split
// never leaks rounding drift across the months of one payment.
func EqualSplit(total decimal.Decimal, n int) decimal.Decimal {
	if n <= 0 {
		return decimal.Zero
	}
	return total.Div(decimal.NewFromInt(int64(n)))
}
