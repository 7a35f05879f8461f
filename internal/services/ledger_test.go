package services_test

import (
	"testing"
	"time"

	"github.com/ashmitsharp/payledger-api/internal/models"
	"github.com/ashmitsharp/payledger-api/internal/services"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLedger_CreateAccount(t *testing.T) {
	e := newEnv(t)

	a := e.account(t, "  First Bank ", "Checking", "100.005")
	assert.Equal(t, "First Bank", a.Institution)
	assert.True(t, a.Active)
	assert.Equal(t, services.Date(2024, time.May, 3), a.OpenedOn)
	requireDecimal(t, "100.01", a.OpeningBalance)

	_, err := e.ledger.CreateAccount(t.Context(), services.NewAccount{Institution: "First Bank", Name: "  "})
	assert.ErrorIs(t, err, services.ErrInvalidInput)
}

func TestLedger_AddTransactionNormalizesSign(t *testing.T) {
	e := newEnv(t)
	a := e.account(t, "First Bank", "Checking", "0")

	tests := []struct {
		name   string
		typeID int32
		amount string
		want   string
	}{
		{"expense entered positive", typeExpense, "25.00", "-25.00"},
		{"expense entered negative", typeExpense, "-25.00", "-25.00"},
		{"deposit entered negative", typeDeposit, "-100", "100"},
		{"transfer entered negative", typeTransfer, "-5.5", "5.5"},
		{"zero amount", typeExpense, "0", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			created := e.txn(t, a.ID, tt.typeID, tt.name, tt.amount, false)
			requireDecimal(t, tt.want, created.Amount)

			stored, err := e.ledger.GetTransaction(t.Context(), a.ID, created.ID)
			require.NoError(t, err)
			requireDecimal(t, tt.want, stored.Amount)
		})
	}
}

func TestLedger_OrderKeysGrowByGap(t *testing.T) {
	e := newEnv(t)
	a := e.account(t, "First Bank", "Checking", "0")
	other := e.account(t, "First Bank", "Savings", "0")

	first := e.txn(t, a.ID, typeExpense, "first", "1", false)
	second := e.txn(t, a.ID, typeExpense, "second", "1", false)
	elsewhere := e.txn(t, other.ID, typeExpense, "elsewhere", "1", false)

	assert.Equal(t, int64(services.OrderKeyGap), first.OrderKey)
	assert.Equal(t, int64(2*services.OrderKeyGap), second.OrderKey)
	assert.Equal(t, int64(services.OrderKeyGap), elsewhere.OrderKey)
	assert.Equal(t, []string{"second", "first"}, e.register(t, a.ID))
}

func TestLedger_RejectsWrites(t *testing.T) {
	e := newEnv(t)
	a := e.account(t, "First Bank", "Checking", "0")
	ctx := t.Context()
	badMethod := int32(99)

	tests := []struct {
		name    string
		in      models.NewTransaction
		wantErr error
	}{
		{
			name:    "unknown type",
			in:      models.NewTransaction{AccountID: a.ID, TypeID: 99, Amount: dec("1"), OccurredOn: testNow},
			wantErr: services.ErrUnknownCategory,
		},
		{
			name:    "unknown method",
			in:      models.NewTransaction{AccountID: a.ID, TypeID: typeExpense, MethodID: &badMethod, Amount: dec("1"), OccurredOn: testNow},
			wantErr: services.ErrInvalidLookup,
		},
		{
			name:    "missing date",
			in:      models.NewTransaction{AccountID: a.ID, TypeID: typeExpense, Amount: dec("1")},
			wantErr: services.ErrInvalidDate,
		},
		{
			name:    "amount out of range",
			in:      models.NewTransaction{AccountID: a.ID, TypeID: typeExpense, Amount: dec("1000000000000"), OccurredOn: testNow},
			wantErr: services.ErrInvalidAmount,
		},
		{
			name:    "unknown account",
			in:      models.NewTransaction{AccountID: uuid.New(), TypeID: typeExpense, Amount: dec("1"), OccurredOn: testNow},
			wantErr: services.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.ledger.AddTransaction(ctx, tt.in)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
	assert.Empty(t, e.register(t, a.ID))
}

func TestLedger_InactiveAccount(t *testing.T) {
	e := newEnv(t)
	a := e.account(t, "First Bank", "Checking", "0")
	existing := e.txn(t, a.ID, typeExpense, "coffee", "4", false)
	top := e.txn(t, a.ID, typeExpense, "bagel", "2", true)
	ctx := t.Context()

	require.NoError(t, e.ledger.SetAccountActive(ctx, a.ID, false))

	_, err := e.ledger.AddTransaction(ctx, models.NewTransaction{
		AccountID: a.ID, TypeID: typeExpense, Amount: dec("1"), OccurredOn: testNow,
	})
	assert.ErrorIs(t, err, services.ErrAccountInactive)

	_, err = e.ledger.EditTransaction(ctx, existing.ID, models.NewTransaction{
		TypeID: typeExpense, Description: "tea", Amount: dec("3"), OccurredOn: testNow,
	})
	assert.ErrorIs(t, err, services.ErrAccountInactive)

	ordering := e.ledger.Ordering()
	writes := []struct {
		name string
		run  func() error
	}{
		{"set pending", func() error { return e.ledger.SetPending(ctx, top.ID, false) }},
		{"delete", func() error { return e.ledger.DeleteTransaction(ctx, existing.ID) }},
		{"move up", func() error {
			_, err := ordering.MoveUp(ctx, a.ID, existing.ID)
			return err
		}},
		{"move down", func() error {
			_, err := ordering.MoveDown(ctx, a.ID, top.ID)
			return err
		}},
		{"move before", func() error { return ordering.MoveBefore(ctx, a.ID, existing.ID, top.ID) }},
	}
	for _, w := range writes {
		t.Run(w.name, func(t *testing.T) {
			assert.ErrorIs(t, w.run(), services.ErrAccountInactive)
		})
	}

	// History stays readable and untouched.
	assert.Equal(t, []string{"bagel", "coffee"}, e.register(t, a.ID))
	got, err := e.ledger.GetTransaction(ctx, a.ID, top.ID)
	require.NoError(t, err)
	assert.True(t, got.Pending)

	require.NoError(t, e.ledger.SetAccountActive(ctx, a.ID, true))
	e.txn(t, a.ID, typeExpense, "tea", "3", false)
	assert.Equal(t, []string{"tea", "bagel", "coffee"}, e.register(t, a.ID))
	require.NoError(t, e.ledger.SetPending(ctx, top.ID, false))
}

func TestLedger_EditTransaction(t *testing.T) {
	e := newEnv(t)
	a := e.account(t, "First Bank", "Checking", "0")
	first := e.txn(t, a.ID, typeExpense, "first", "10", false)
	e.txn(t, a.ID, typeExpense, "second", "10", false)
	ctx := t.Context()

	updated, err := e.ledger.EditTransaction(ctx, first.ID, models.NewTransaction{
		AccountID:   a.ID,
		TypeID:      typeDeposit,
		Description: " refund ",
		Amount:      dec("-12.5"),
		OccurredOn:  services.Date(2024, time.June, 1),
		Pending:     true,
	})
	require.NoError(t, err)
	assert.Equal(t, first.OrderKey, updated.OrderKey)
	assert.Equal(t, "refund", updated.Description)
	assert.True(t, updated.Pending)
	requireDecimal(t, "12.5", updated.Amount)

	// A later date does not move the row; order keys decide.
	assert.Equal(t, []string{"second", "refund"}, e.register(t, a.ID))

	_, err = e.ledger.EditTransaction(ctx, first.ID, models.NewTransaction{
		AccountID: uuid.New(), TypeID: typeExpense, Amount: dec("1"), OccurredOn: testNow,
	})
	assert.ErrorIs(t, err, services.ErrNotFound)
}

func TestLedger_DeleteAndPending(t *testing.T) {
	e := newEnv(t)
	a := e.account(t, "First Bank", "Checking", "0")
	txn := e.txn(t, a.ID, typeExpense, "coffee", "4", false)
	ctx := t.Context()

	require.NoError(t, e.ledger.SetPending(ctx, txn.ID, true))
	got, err := e.ledger.GetTransaction(ctx, a.ID, txn.ID)
	require.NoError(t, err)
	assert.True(t, got.Pending)

	_, err = e.ledger.GetTransaction(ctx, uuid.New(), txn.ID)
	assert.ErrorIs(t, err, services.ErrNotFound)

	require.NoError(t, e.ledger.DeleteTransaction(ctx, txn.ID))
	assert.ErrorIs(t, e.ledger.DeleteTransaction(ctx, txn.ID), services.ErrNotFound)
	assert.ErrorIs(t, e.ledger.SetPending(ctx, txn.ID, false), services.ErrNotFound)
	assert.Empty(t, e.register(t, a.ID))
}

func TestLedger_ListTransactionsLabels(t *testing.T) {
	e := newEnv(t)
	a := e.account(t, "First Bank", "Checking", "0")
	method := methodNA
	class := classBills

	_, err := e.ledger.AddTransaction(t.Context(), models.NewTransaction{
		AccountID:        a.ID,
		TypeID:           typeExpense,
		Description:      "power",
		MethodID:         &method,
		ClassificationID: &class,
		Amount:           dec("60"),
		OccurredOn:       testNow,
	})
	require.NoError(t, err)

	rows, err := e.ledger.ListTransactions(t.Context(), a.ID)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Expense", rows[0].TypeLabel)
	assert.Equal(t, models.KindExpense, rows[0].Kind)
	assert.Equal(t, "N/A", rows[0].MethodLabel)
	assert.Equal(t, "Bills", rows[0].ClassificationLabel)

	_, err = e.ledger.ListTransactions(t.Context(), uuid.New())
	assert.ErrorIs(t, err, services.ErrNotFound)
}

func TestLedger_Sidebar(t *testing.T) {
	e := newEnv(t)
	zeta := e.account(t, "Zeta CU", "Share", "5")
	e.account(t, "Acme Bank", "Savings", "200")
	checking := e.account(t, "Acme Bank", "Checking", "100")
	closed := e.account(t, "Acme Bank", "Old", "1")
	require.NoError(t, e.ledger.SetAccountActive(t.Context(), closed.ID, false))
	e.txn(t, checking.ID, typeExpense, "rent", "40", true)
	e.txn(t, zeta.ID, typeDeposit, "pay", "10", false)

	groups, err := e.ledger.Sidebar(t.Context())
	require.NoError(t, err)
	require.Len(t, groups, 2)

	assert.Equal(t, "Acme Bank", groups[0].Institution)
	require.Len(t, groups[0].Accounts, 2)
	assert.Equal(t, "Checking", groups[0].Accounts[0].Account.Name)
	requireDecimal(t, "100", groups[0].Accounts[0].Posted)
	requireDecimal(t, "60", groups[0].Accounts[0].Available)
	assert.Equal(t, "Savings", groups[0].Accounts[1].Account.Name)

	assert.Equal(t, "Zeta CU", groups[1].Institution)
	requireDecimal(t, "15", groups[1].Accounts[0].Available)
}
