package services

import (
	"testing"
	"time"

	"github.com/ashmitsharp/payledger-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextMonthlyDue(t *testing.T) {
	tests := []struct {
		name string
		dom  int
		from time.Time
		want string
	}{
		{"later this month", 20, Date(2024, time.January, 5), "2024-01-20"},
		{"due today", 5, Date(2024, time.January, 5), "2024-01-05"},
		{"passed, next month", 1, Date(2024, time.January, 5), "2024-02-01"},
		{"31st in leap february", 31, Date(2024, time.February, 15), "2024-02-29"},
		{"31st in common february", 31, Date(2023, time.February, 15), "2023-02-28"},
		{"30th in april", 30, Date(2024, time.April, 2), "2024-04-30"},
		{"december rolls into january", 10, Date(2024, time.December, 11), "2025-01-10"},
		{"clamped day already passed", 31, Date(2024, time.February, 29), "2024-02-29"},
		{"due on the 31st itself", 31, Date(2024, time.January, 31), "2024-01-31"},
		{"rollover into short month clamps", 30, Date(2024, time.January, 31), "2024-02-29"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NextMonthlyDue(tt.dom, tt.from)
			assert.Equal(t, tt.want, got.Format(DateLayout))
			assert.False(t, got.Before(tt.from), "due date must not precede from")
		})
	}
}

func TestNextYearlyDue(t *testing.T) {
	tests := []struct {
		name  string
		month int
		dom   int
		from  time.Time
		want  string
	}{
		{"later this year", 3, 15, Date(2024, time.January, 1), "2024-03-15"},
		{"passed, next year", 1, 1, Date(2024, time.June, 1), "2025-01-01"},
		{"due today", 6, 1, Date(2024, time.June, 1), "2024-06-01"},
		{"leap day in leap year", 2, 29, Date(2024, time.January, 10), "2024-02-29"},
		{"leap day in common year", 2, 29, Date(2025, time.January, 10), "2025-02-28"},
		{"leap day next year clamps", 2, 29, Date(2024, time.March, 1), "2025-02-28"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NextYearlyDue(tt.month, tt.dom, tt.from).Format(DateLayout))
		})
	}
}

func TestValidateRecurrence(t *testing.T) {
	tests := []struct {
		name    string
		r       models.Recurrence
		wantErr error
	}{
		{"monthly", models.Recurrence{Frequency: models.FrequencyMonthly, DayOfMonth: 31}, nil},
		{"yearly", models.Recurrence{Frequency: models.FrequencyYearly, DayOfMonth: 1, Month: 12}, nil},
		{"day zero", models.Recurrence{Frequency: models.FrequencyMonthly, DayOfMonth: 0}, ErrInvalidDayOfMonth},
		{"negative day", models.Recurrence{Frequency: models.FrequencyMonthly, DayOfMonth: -3}, ErrInvalidDayOfMonth},
		{"day 32", models.Recurrence{Frequency: models.FrequencyMonthly, DayOfMonth: 32}, ErrInvalidDayOfMonth},
		{"month zero", models.Recurrence{Frequency: models.FrequencyYearly, DayOfMonth: 1}, ErrInvalidMonth},
		{"month 13", models.Recurrence{Frequency: models.FrequencyYearly, DayOfMonth: 1, Month: 13}, ErrInvalidMonth},
		{"unknown frequency", models.Recurrence{Frequency: "weekly", DayOfMonth: 1}, ErrInvalidRecurrence},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRecurrence(tt.r)
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestNextDue(t *testing.T) {
	from := Date(2024, time.February, 15)

	got, err := NextDue(models.Recurrence{Frequency: models.FrequencyMonthly, DayOfMonth: 31}, from)
	require.NoError(t, err)
	assert.Equal(t, "2024-02-29", got.Format(DateLayout))

	got, err = NextDue(models.Recurrence{Frequency: models.FrequencyYearly, DayOfMonth: 1, Month: 1}, from)
	require.NoError(t, err)
	assert.Equal(t, "2025-01-01", got.Format(DateLayout))

	_, err = NextDue(models.Recurrence{Frequency: models.FrequencyMonthly, DayOfMonth: 40}, from)
	assert.ErrorIs(t, err, ErrInvalidDayOfMonth)
}
