package services_test

import (
	"testing"

	"github.com/ashmitsharp/payledger-api/internal/models"
	"github.com/ashmitsharp/payledger-api/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostedAndAvailableBalance(t *testing.T) {
	txns := []models.Transaction{
		{Amount: dec("-30"), Pending: false},
		{Amount: dec("50"), Pending: true},
		{Amount: dec("-0.01"), Pending: true},
		{Amount: dec("12.5"), Pending: false},
	}

	tests := []struct {
		name          string
		opening       string
		txns          []models.Transaction
		wantPosted    string
		wantAvailable string
	}{
		{"no transactions", "100", nil, "100", "100"},
		{"mixed pending", "100", txns, "82.5", "132.49"},
		{"negative opening", "-20", txns, "-37.5", "12.49"},
		{"only pending", "0", txns[1:3], "0", "49.99"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			posted := services.PostedBalance(dec(tt.opening), tt.txns)
			available := services.AvailableBalance(dec(tt.opening), tt.txns)
			requireDecimal(t, tt.wantPosted, posted)
			requireDecimal(t, tt.wantAvailable, available)

			pending := dec("0")
			for _, txn := range tt.txns {
				if txn.Pending {
					pending = pending.Add(txn.Amount)
				}
			}
			requireDecimal(t, pending.String(), available.Sub(posted))
		})
	}
}

func TestBalanceCalculator(t *testing.T) {
	e := newEnv(t)
	a := e.account(t, "First Bank", "Checking", "100")
	e.txn(t, a.ID, typeExpense, "rent", "30", false)
	pending := e.txn(t, a.ID, typeDeposit, "paycheck", "50", true)
	e.txn(t, a.ID, typeExpense, "card hold", "0.01", true)
	ctx := t.Context()

	bal, err := e.ledger.AccountHeader(ctx, a.ID)
	require.NoError(t, err)
	requireDecimal(t, "70", bal.Posted)
	requireDecimal(t, "119.99", bal.Available)

	pendingSum, err := e.store.SumTransactions(ctx, a.ID, services.PendingOnly)
	require.NoError(t, err)
	requireDecimal(t, pendingSum.String(), bal.Available.Sub(bal.Posted))

	// Register contents agree with the aggregate queries.
	rows, err := e.ledger.ListTransactions(ctx, a.ID)
	require.NoError(t, err)
	txns := make([]models.Transaction, len(rows))
	for i, r := range rows {
		txns[i] = r.Transaction
	}
	requireDecimal(t, bal.Posted.String(), services.PostedBalance(a.OpeningBalance, txns))
	requireDecimal(t, bal.Available.String(), services.AvailableBalance(a.OpeningBalance, txns))

	require.NoError(t, e.ledger.SetPending(ctx, pending.ID, false))
	posted, err := e.ledger.Balances().Posted(ctx, a)
	require.NoError(t, err)
	requireDecimal(t, "120", posted)
	available, err := e.ledger.Balances().Available(ctx, a)
	require.NoError(t, err)
	requireDecimal(t, "119.99", available)
}

func TestBalanceCalculator_TotalAvailable(t *testing.T) {
	e := newEnv(t)
	checking := e.account(t, "First Bank", "Checking", "100")
	e.account(t, "First Bank", "Savings", "250.50")
	closed := e.account(t, "First Bank", "Closed", "1000")
	e.txn(t, checking.ID, typeExpense, "groceries", "20", true)
	require.NoError(t, e.ledger.SetAccountActive(t.Context(), closed.ID, false))

	total, count, err := e.ledger.Balances().TotalAvailable(t.Context())
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	requireDecimal(t, "330.50", total)
}
