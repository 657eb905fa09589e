package utils

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

const (
	// NoPrefixLayout formats the second-resolution timestamp prefix of an installment no
	NoPrefixLayout = "20060102150405"
	NoSuffixDigits = 6
	// NoSuffixSpace is the exclusive upper bound of the random suffix
	NoSuffixSpace = 1000000

	// Days between two installment due dates
	PeriodDays = 30
)

var hundred = decimal.NewFromInt(100)

// FormatNoPrefix returns the 14-digit YYYYMMDDhhmmss prefix for t.
func FormatNoPrefix(t time.Time) string {
	return t.Format(NoPrefixLayout)
}

// FormatNoSuffix left-pads n with zeros to six digits.
func FormatNoSuffix(n int64) string {
	return fmt.Sprintf("%0*d", NoSuffixDigits, n)
}

// SplitAmount divides total into count bases rounded to 2 decimal places.
// The last base absorbs the rounding remainder so the bases sum to total.
func SplitAmount(total decimal.Decimal, count int) []decimal.Decimal {
	if count <= 0 {
		return nil
	}

	base := total.Div(decimal.NewFromInt(int64(count))).Round(2)
	bases := make([]decimal.Decimal, count)
	allocated := decimal.Zero
	for i := 0; i < count-1; i++ {
		bases[i] = base
		allocated = allocated.Add(base)
	}
	bases[count-1] = total.Sub(allocated)

	return bases
}

// CalculateFee returns base * rate%, rounded to 2 decimal places
func CalculateFee(base decimal.Decimal, feeRate decimal.Decimal) decimal.Decimal {
	return base.Mul(feeRate).Div(hundred).Round(2)
}

// CalculateFine returns the overdue fine: base * days * rate%, capped at base + fee.
func CalculateFine(base, fee, fineRate decimal.Decimal, overdueDays int) decimal.Decimal {
	if overdueDays <= 0 {
		return decimal.Zero
	}

	fine := base.Mul(decimal.NewFromInt(int64(overdueDays))).Mul(fineRate).Div(hundred)
	if limit := base.Add(fee); fine.GreaterThan(limit) {
		fine = limit
	}

	return fine.Round(2)
}

// CalculateDueDate returns the due date of the item with the given 0-based sequence
func CalculateDueDate(firstDueDate time.Time, sequence int) time.Time {
	return firstDueDate.AddDate(0, 0, PeriodDays*sequence)
}

// StartOfTomorrow returns midnight of the day after now, in now's location.
func StartOfTomorrow(now time.Time) time.Time {
	y, m, d := now.Date()
	return time.Date(y, m, d+1, 0, 0, 0, 0, now.Location())
}

// OverdueDays counts the whole days elapsed since dueDate
func OverdueDays(dueDate time.Time, now time.Time) int {
	if !now.After(dueDate) {
		return 0
	}
	return int(now.Sub(dueDate).Hours() / 24)
}
