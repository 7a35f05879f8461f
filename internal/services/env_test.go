package services_test

import (
	"testing"
	"time"

	"github.com/ashmitsharp/payledger-api/internal/database/memory"
	"github.com/ashmitsharp/payledger-api/internal/models"
	"github.com/ashmitsharp/payledger-api/internal/services"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// Seeded lookup ids of memory.New.
const (
	typeExpense  int32 = 1
	typeDeposit  int32 = 2
	typeTransfer int32 = 3
	methodNA     int32 = 1
	classBills   int32 = 1
)

var testNow = time.Date(2024, time.May, 3, 9, 30, 0, 0, time.UTC)

type env struct {
	store     *memory.Store
	lookups   *services.LookupResolver
	ledger    *services.Ledger
	bills     *services.BillService
	scheduler *services.Scheduler
	summary   *services.SummaryService
}

func newEnv(t *testing.T) *env {
	t.Helper()
	clock := func() time.Time { return testNow }

	store := memory.New()
	lookups := services.NewLookupResolver(store)
	ledger := services.NewLedger(store, lookups).WithClock(clock)
	bills := services.NewBillService(store, ledger, lookups).WithClock(clock)
	scheduler := services.NewScheduler(store)
	return &env{
		store:     store,
		lookups:   lookups,
		ledger:    ledger,
		bills:     bills,
		scheduler: scheduler,
		summary:   services.NewSummaryService(ledger.Balances(), scheduler, bills),
	}
}

func (e *env) account(t *testing.T, institution, name, opening string) models.Account {
	t.Helper()
	a, err := e.ledger.CreateAccount(t.Context(), services.NewAccount{
		Institution:    institution,
		Name:           name,
		OpeningBalance: dec(opening),
	})
	require.NoError(t, err)
	return a
}

func (e *env) txn(t *testing.T, accountID uuid.UUID, typeID int32, desc, amount string, pending bool) models.Transaction {
	t.Helper()
	created, err := e.ledger.AddTransaction(t.Context(), models.NewTransaction{
		AccountID:   accountID,
		TypeID:      typeID,
		Description: desc,
		Amount:      dec(amount),
		OccurredOn:  services.Date(2024, time.May, 1),
		Pending:     pending,
	})
	require.NoError(t, err)
	return created
}

func (e *env) register(t *testing.T, accountID uuid.UUID) []string {
	t.Helper()
	rows, err := e.ledger.ListTransactions(t.Context(), accountID)
	require.NoError(t, err)
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.Description
	}
	return out
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func requireDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	require.True(t, dec(want).Equal(got), "want %s, got %s", want, got)
}
