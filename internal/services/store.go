package services

import (
	"context"
	"time"

	"github.com/ashmitsharp/payledger-api/internal/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PendingFilter selects which transactions a sum covers.
type PendingFilter int

const (
	AllTransactions PendingFilter = iota
	PostedOnly
	PendingOnly
)

// AccountStore persists accounts.
type AccountStore interface {
	InsertAccount(ctx context.Context, a models.Account) error
	GetAccount(ctx context.Context, id uuid.UUID) (models.Account, error)
	ListAccounts(ctx context.Context, activeOnly bool) ([]models.Account, error)
	SetAccountActive(ctx context.Context, id uuid.UUID, active bool) error
}

// TransactionStore persists transactions and answers the ordering queries.
type TransactionStore interface {
	InsertTransaction(ctx context.Context, t models.Transaction) error
	// UpdateTransaction rewrites every field except the order key.
	UpdateTransaction(ctx context.Context, t models.Transaction) error
	GetTransaction(ctx context.Context, id uuid.UUID) (models.Transaction, error)
	DeleteTransaction(ctx context.Context, id uuid.UUID) error
	// ListTransactions returns rows ordered by order key, date and id, all descending.
	ListTransactions(ctx context.Context, accountID uuid.UUID) ([]models.TransactionRow, error)
	SetTransactionPending(ctx context.Context, id uuid.UUID, pending bool) error
	SumTransactions(ctx context.Context, accountID uuid.UUID, filter PendingFilter) (decimal.Decimal, error)
	MaxOrderKey(ctx context.Context, accountID uuid.UUID) (key int64, ok bool, err error)
	// NextOrderKeyAbove returns the transaction with the smallest key strictly greater than key.
	NextOrderKeyAbove(ctx context.Context, accountID uuid.UUID, key int64) (models.Transaction, bool, error)
	// NextOrderKeyBelow returns the transaction with the largest key strictly less than key.
	NextOrderKeyBelow(ctx context.Context, accountID uuid.UUID, key int64) (models.Transaction, bool, error)
	// SwapOrderKeys exchanges the keys of two transactions in one statement.
	SwapOrderKeys(ctx context.Context, a, b uuid.UUID) error
}

// LookupStore persists the append-only label tables.
type LookupStore interface {
	ListLookups(ctx context.Context, table models.LookupTable) ([]models.Lookup, error)
	InsertLookup(ctx context.Context, l models.Lookup) (models.Lookup, error)
}

// BillStore persists bills and occurrence state records.
type BillStore interface {
	InsertBill(ctx context.Context, b models.Bill) error
	UpdateBill(ctx context.Context, b models.Bill) error
	GetBill(ctx context.Context, id uuid.UUID) (models.Bill, error)
	ListBills(ctx context.Context, activeOnly bool) ([]models.Bill, error)
	GetBillPayment(ctx context.Context, billID uuid.UUID, due time.Time) (models.BillPayment, bool, error)
	// UpsertBillPaid sets amount and paid_at and clears ignored.
	UpsertBillPaid(ctx context.Context, p models.BillPayment) error
	// UpsertBillIgnored creates a zero-amount record if none exists and only sets ignored.
	UpsertBillIgnored(ctx context.Context, billID uuid.UUID, due time.Time, ignored bool) error
	// DeleteBillPayment is a no-op when no record exists.
	DeleteBillPayment(ctx context.Context, billID uuid.UUID, due time.Time) error
}

// ScheduleStore persists the single pay schedule record.
type ScheduleStore interface {
	GetPaySchedule(ctx context.Context) (models.PaySchedule, bool, error)
	UpsertPaySchedule(ctx context.Context, s models.PaySchedule) error
}

// Store is the persistence collaborator of the ledger.
type Store interface {
	AccountStore
	TransactionStore
	LookupStore
	BillStore
	ScheduleStore

	// WithTx runs fn against a store whose writes commit together or not at all.
	WithTx(ctx context.Context, fn func(tx Store) error) error
}

// Clock returns the current time.
type Clock func() time.Time
