package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Frequency is how often a bill recurs.
type Frequency string

const (
	FrequencyMonthly Frequency = "monthly"
	FrequencyYearly  Frequency = "yearly"
)

// Recurrence describes when a bill falls due. Month is only used for yearly bills.
type Recurrence struct {
	Frequency  Frequency `json:"frequency"`
	DayOfMonth int       `json:"day_of_month"`
	Month      int       `json:"month,omitempty"`
}

// Bill is a recurring obligation. Bills are deactivated, never deleted.
type Bill struct {
	ID         uuid.UUID       `json:"id"`
	Payee      string          `json:"payee"`
	Recurrence Recurrence      `json:"recurrence"`
	AmountDue  decimal.Decimal `json:"amount_due"`
	AccountID  *uuid.UUID      `json:"account_id,omitempty"`
	TotalDebt  decimal.Decimal `json:"total_debt"`
	Active     bool            `json:"active"`
	Notes      string          `json:"notes"`
}

// BillPayment is the state record of a single occurrence, keyed by (BillID, DueDate).
// PaidAt is nil when the record only exists to carry the ignored flag.
type BillPayment struct {
	BillID  uuid.UUID       `json:"bill_id"`
	DueDate time.Time       `json:"due_date"`
	Amount  decimal.Decimal `json:"amount"`
	PaidAt  *time.Time      `json:"paid_at,omitempty"`
	Ignored bool            `json:"ignored"`
}

// Occurrence is one computed due date of a bill annotated with its state.
type Occurrence struct {
	Bill        Bill      `json:"bill"`
	DueDate     time.Time `json:"due_date"`
	Paid        bool      `json:"paid"`
	Ignored     bool      `json:"ignored"`
	AccountName string    `json:"account_name,omitempty"`
}
