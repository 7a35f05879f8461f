package services

import (
	"context"
	"fmt"

	"github.com/ashmitsharp/payledger-api/internal/models"
	"github.com/shopspring/decimal"
)

// PostedBalance is the opening balance plus every non-pending transaction.
func PostedBalance(opening decimal.Decimal, txns []models.Transaction) decimal.Decimal {
	total := opening
	for _, t := range txns {
		if !t.Pending {
			total = total.Add(t.Amount)
		}
	}
	return total
}

// AvailableBalance is the opening balance plus every transaction, pending included.
func AvailableBalance(opening decimal.Decimal, txns []models.Transaction) decimal.Decimal {
	total := opening
	for _, t := range txns {
		total = total.Add(t.Amount)
	}
	return total
}

// BalanceCalculator computes balances through the store's aggregate queries.
type BalanceCalculator struct {
	store Store
}

// NewBalanceCalculator creates a calculator over store.
func NewBalanceCalculator(store Store) *BalanceCalculator {
	return &BalanceCalculator{store: store}
}

// Balances returns the posted and available balance of one account.
func (b *BalanceCalculator) Balances(ctx context.Context, account models.Account) (models.AccountBalance, error) {
	posted, err := b.store.SumTransactions(ctx, account.ID, PostedOnly)
	if err != nil {
		return models.AccountBalance{}, fmt.Errorf("failed to sum posted transactions: %w", err)
	}
	all, err := b.store.SumTransactions(ctx, account.ID, AllTransactions)
	if err != nil {
		return models.AccountBalance{}, fmt.Errorf("failed to sum transactions: %w", err)
	}
	return models.AccountBalance{
		Account:   account,
		Posted:    account.OpeningBalance.Add(posted),
		Available: account.OpeningBalance.Add(all),
	}, nil
}

// Posted returns the posted balance of the account with the given id.
func (b *BalanceCalculator) Posted(ctx context.Context, account models.Account) (decimal.Decimal, error) {
	bal, err := b.Balances(ctx, account)
	return bal.Posted, err
}

// Available returns the available balance of the account with the given id.
func (b *BalanceCalculator) Available(ctx context.Context, account models.Account) (decimal.Decimal, error) {
	bal, err := b.Balances(ctx, account)
	return bal.Available, err
}

// TotalAvailable sums the available balance of every active account and
// reports how many accounts contributed.
func (b *BalanceCalculator) TotalAvailable(ctx context.Context) (decimal.Decimal, int, error) {
	accounts, err := b.store.ListAccounts(ctx, true)
	if err != nil {
		return decimal.Zero, 0, fmt.Errorf("failed to list accounts: %w", err)
	}
	total := decimal.Zero
	for _, a := range accounts {
		avail, err := b.Available(ctx, a)
		if err != nil {
			return decimal.Zero, 0, err
		}
		total = total.Add(avail)
	}
	return total, len(accounts), nil
}
