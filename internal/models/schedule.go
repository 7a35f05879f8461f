package models

import "time"

// PayCadenceDays is the fixed bi-weekly pay cadence.
const PayCadenceDays = 14

// PaySchedule is the single global pay schedule record.
type PaySchedule struct {
	CadenceDays int       `json:"cadence_days"`
	Anchor      time.Time `json:"anchor_date"`
}

// Window is a closed date range [Start, End].
type Window struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Contains reports whether d falls within the window, inclusive of both ends.
func (w Window) Contains(d time.Time) bool {
	return !d.Before(w.Start) && !d.After(w.End)
}
