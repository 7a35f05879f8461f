package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var dateFormats = []string{
	DateLayout,     // YYYY-MM-DD
	"01/02/2006",   // MM/DD/YYYY
	"1/2/2006",     // M/D/YYYY
	"02-Jan-2006",  // DD-MMM-YYYY
	"Jan 02, 2006", // MMM DD, YYYY
	"Jan 2, 2006",  // MMM D, YYYY
}

// ParseDate parses a calendar date in any of the accepted formats.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, format := range dateFormats {
		t, err := time.Parse(format, s)
		if err == nil {
			return DateOf(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
}

// ParseDateOr parses s, falling back to the calendar day of fallback when s is
// empty or malformed.
func ParseDateOr(s string, fallback time.Time) time.Time {
	t, err := ParseDate(s)
	if err != nil {
		return DateOf(fallback)
	}
	return t
}

// ParseAmountOrZero parses s, falling back to zero when s is empty or malformed.
func ParseAmountOrZero(s string) decimal.Decimal {
	d, err := ParseAmount(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}
