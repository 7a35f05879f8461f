package services

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// CentsPlaces is the fixed-point precision of every ledger amount.
const CentsPlaces int32 = 2

// maxAmount bounds amounts to what a NUMERIC(14,2) column can hold.
var maxAmount = decimal.New(1, 12)

// NewAmount rounds d to cents and rejects values the ledger cannot store.
func NewAmount(d decimal.Decimal) (decimal.Decimal, error) {
	r := d.Round(CentsPlaces)
	if r.Abs().GreaterThanOrEqual(maxAmount) {
		return decimal.Zero, fmt.Errorf("%w: %s out of range", ErrInvalidAmount, d.String())
	}
	return r, nil
}

// ParseAmount parses a user-entered amount. Currency symbols, thousands
// separators and surrounding whitespace are ignored.
func ParseAmount(s string) (decimal.Decimal, error) {
	cleaned := strings.TrimSpace(s)
	for _, sym := range []string{"$", "€", "£", "₹", "Rs.", ","} {
		cleaned = strings.ReplaceAll(cleaned, sym, "")
	}
	cleaned = strings.TrimSpace(cleaned)
	if cleaned == "" {
		return decimal.Zero, fmt.Errorf("%w: empty", ErrInvalidAmount)
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	return NewAmount(d)
}

// SumAmounts adds amounts exactly.
func SumAmounts(amounts ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total
}

// FormatMoney renders an amount as -$1,234.50.
func FormatMoney(amount decimal.Decimal, symbol string) string {
	s := amount.Round(CentsPlaces).Abs().StringFixed(CentsPlaces)
	intPart, frac, _ := strings.Cut(s, ".")

	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}

	sign := ""
	if amount.Round(CentsPlaces).IsNegative() {
		sign = "-"
	}
	return sign + symbol + b.String() + "." + frac
}
