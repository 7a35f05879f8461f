package services

import (
	"fmt"
	"time"

	"github.com/ashmitsharp/payledger-api/internal/models"
)

func clampRange(v, lo, hi int) int {
	return max(lo, min(hi, v))
}

// NextMonthlyDue returns the first due date on or after from for a bill due
// on day dom of every month, clamped to short months. The comparison uses the
// requested day, before clamping.
func NextMonthlyDue(dom int, from time.Time) time.Time {
	dom = clampRange(dom, 1, 31)
	from = DateOf(from)
	year, month := from.Year(), from.Month()
	if from.Day() <= dom {
		return Date(year, month, ClampDay(year, month, dom))
	}
	if month == time.December {
		year, month = year+1, time.January
	} else {
		month++
	}
	return Date(year, month, ClampDay(year, month, dom))
}

// NextYearlyDue returns the first due date on or after from for a bill due on
// month/dom every year, clamped to short months.
func NextYearlyDue(month, dom int, from time.Time) time.Time {
	m := time.Month(clampRange(month, 1, 12))
	dom = clampRange(dom, 1, 31)
	from = DateOf(from)

	candidate := Date(from.Year(), m, ClampDay(from.Year(), m, dom))
	if !candidate.Before(from) {
		return candidate
	}
	next := from.Year() + 1
	return Date(next, m, ClampDay(next, m, dom))
}

// ValidateRecurrence rejects recurrences with out-of-range fields.
func ValidateRecurrence(r models.Recurrence) error {
	if r.DayOfMonth < 1 || r.DayOfMonth > 31 {
		return fmt.Errorf("%w: %d", ErrInvalidDayOfMonth, r.DayOfMonth)
	}
	switch r.Frequency {
	case models.FrequencyMonthly:
		return nil
	case models.FrequencyYearly:
		if r.Month < 1 || r.Month > 12 {
			return fmt.Errorf("%w: %d", ErrInvalidMonth, r.Month)
		}
		return nil
	default:
		return fmt.Errorf("%w: frequency %q", ErrInvalidRecurrence, r.Frequency)
	}
}

// NextDue returns the next occurrence of r on or after from.
func NextDue(r models.Recurrence, from time.Time) (time.Time, error) {
	if err := ValidateRecurrence(r); err != nil {
		return time.Time{}, err
	}
	if r.Frequency == models.FrequencyYearly {
		return NextYearlyDue(r.Month, r.DayOfMonth, from), nil
	}
	return NextMonthlyDue(r.DayOfMonth, from), nil
}
