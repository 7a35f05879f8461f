package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/ashmitsharp/payledger-api/internal/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// NewAccount carries the fields supplied when opening an account.
type NewAccount struct {
	Institution    string
	Name           string
	OpeningBalance decimal.Decimal
	EarnsInterest  bool
}

// Ledger owns accounts and their transactions.
type Ledger struct {
	store    Store
	lookups  *LookupResolver
	ordering *OrderingEngine
	balances *BalanceCalculator
	now      Clock
}

// NewLedger creates a ledger over store.
func NewLedger(store Store, lookups *LookupResolver) *Ledger {
	return &Ledger{
		store:    store,
		lookups:  lookups,
		ordering: NewOrderingEngine(store),
		balances: NewBalanceCalculator(store),
		now:      time.Now,
	}
}

// WithClock overrides the ledger's notion of now.
func (l *Ledger) WithClock(now Clock) *Ledger {
	l.now = now
	return l
}

// Ordering exposes the ledger's ordering engine.
func (l *Ledger) Ordering() *OrderingEngine { return l.ordering }

// Balances exposes the ledger's balance calculator.
func (l *Ledger) Balances() *BalanceCalculator { return l.balances }

// CreateAccount opens an active account dated today.
func (l *Ledger) CreateAccount(ctx context.Context, in NewAccount) (models.Account, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return models.Account{}, fmt.Errorf("%w: account name is required", ErrInvalidInput)
	}
	opening, err := NewAmount(in.OpeningBalance)
	if err != nil {
		return models.Account{}, err
	}

	a := models.Account{
		ID:             uuid.Must(uuid.NewV7()),
		Institution:    strings.TrimSpace(in.Institution),
		Name:           name,
		OpeningBalance: opening,
		EarnsInterest:  in.EarnsInterest,
		Active:         true,
		OpenedOn:       DateOf(l.now()),
	}
	if err := l.store.InsertAccount(ctx, a); err != nil {
		return models.Account{}, fmt.Errorf("failed to create account: %w", err)
	}
	return a, nil
}

// GetAccount returns one account.
func (l *Ledger) GetAccount(ctx context.Context, id uuid.UUID) (models.Account, error) {
	return l.store.GetAccount(ctx, id)
}

// SetAccountActive deactivates or reactivates an account.
func (l *Ledger) SetAccountActive(ctx context.Context, id uuid.UUID, active bool) error {
	if _, err := l.store.GetAccount(ctx, id); err != nil {
		return err
	}
	return l.store.SetAccountActive(ctx, id, active)
}

// AccountHeader returns an account with its posted and available balances.
func (l *Ledger) AccountHeader(ctx context.Context, id uuid.UUID) (models.AccountBalance, error) {
	a, err := l.store.GetAccount(ctx, id)
	if err != nil {
		return models.AccountBalance{}, err
	}
	return l.balances.Balances(ctx, a)
}

// Sidebar groups active accounts by institution, each with its available balance.
func (l *Ledger) Sidebar(ctx context.Context) ([]models.InstitutionGroup, error) {
	accounts, err := l.store.ListAccounts(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	sort.SliceStable(accounts, func(i, j int) bool {
		if accounts[i].Institution != accounts[j].Institution {
			return accounts[i].Institution < accounts[j].Institution
		}
		return accounts[i].Name < accounts[j].Name
	})

	groups := []models.InstitutionGroup{}
	for _, a := range accounts {
		bal, err := l.balances.Balances(ctx, a)
		if err != nil {
			return nil, err
		}
		if n := len(groups); n > 0 && groups[n-1].Institution == a.Institution {
			groups[n-1].Accounts = append(groups[n-1].Accounts, bal)
			continue
		}
		groups = append(groups, models.InstitutionGroup{
			Institution: a.Institution,
			Accounts:    []models.AccountBalance{bal},
		})
	}
	return groups, nil
}

// AddTransaction records a transaction at the top of the account's register.
// The amount's sign is normalized by the type's kind.
func (l *Ledger) AddTransaction(ctx context.Context, in models.NewTransaction) (models.Transaction, error) {
	var created models.Transaction
	err := l.store.WithTx(ctx, func(tx Store) error {
		var err error
		created, err = l.addTransaction(ctx, tx, in)
		return err
	})
	return created, err
}

func (l *Ledger) addTransaction(ctx context.Context, tx Store, in models.NewTransaction) (models.Transaction, error) {
	if err := checkAccountWritable(ctx, tx, in.AccountID); err != nil {
		return models.Transaction{}, err
	}
	amount, err := l.normalizedAmount(ctx, tx, in)
	if err != nil {
		return models.Transaction{}, err
	}
	key, err := NextOrderIndex(ctx, tx, in.AccountID)
	if err != nil {
		return models.Transaction{}, err
	}

	t := models.Transaction{
		ID:               uuid.Must(uuid.NewV7()),
		AccountID:        in.AccountID,
		TypeID:           in.TypeID,
		Description:      strings.TrimSpace(in.Description),
		MethodID:         in.MethodID,
		ClassificationID: in.ClassificationID,
		Amount:           amount,
		OccurredOn:       DateOf(in.OccurredOn),
		Pending:          in.Pending,
		OrderKey:         key,
	}
	if err := tx.InsertTransaction(ctx, t); err != nil {
		return models.Transaction{}, fmt.Errorf("failed to insert transaction: %w", err)
	}
	return t, nil
}

// EditTransaction rewrites a transaction in place, keeping its order key.
func (l *Ledger) EditTransaction(ctx context.Context, id uuid.UUID, in models.NewTransaction) (models.Transaction, error) {
	var updated models.Transaction
	err := l.store.WithTx(ctx, func(tx Store) error {
		existing, err := tx.GetTransaction(ctx, id)
		if err != nil {
			return err
		}
		if in.AccountID != uuid.Nil && in.AccountID != existing.AccountID {
			return fmt.Errorf("transaction %s in account %s: %w", id, in.AccountID, ErrNotFound)
		}
		in.AccountID = existing.AccountID
		if err := checkAccountWritable(ctx, tx, existing.AccountID); err != nil {
			return err
		}
		amount, err := l.normalizedAmount(ctx, tx, in)
		if err != nil {
			return err
		}

		existing.TypeID = in.TypeID
		existing.Description = strings.TrimSpace(in.Description)
		existing.MethodID = in.MethodID
		existing.ClassificationID = in.ClassificationID
		existing.Amount = amount
		existing.OccurredOn = DateOf(in.OccurredOn)
		existing.Pending = in.Pending
		if err := tx.UpdateTransaction(ctx, existing); err != nil {
			return fmt.Errorf("failed to update transaction: %w", err)
		}
		updated = existing
		return nil
	})
	return updated, err
}

// GetTransaction returns a transaction, failing with ErrNotFound when it does
// not belong to accountID.
func (l *Ledger) GetTransaction(ctx context.Context, accountID, id uuid.UUID) (models.Transaction, error) {
	return accountTransaction(ctx, l.store, accountID, id)
}

// SetPending toggles whether a transaction counts toward the posted balance.
func (l *Ledger) SetPending(ctx context.Context, id uuid.UUID, pending bool) error {
	return l.store.WithTx(ctx, func(tx Store) error {
		if err := writableTransaction(ctx, tx, id); err != nil {
			return err
		}
		return tx.SetTransactionPending(ctx, id, pending)
	})
}

// DeleteTransaction removes a transaction permanently.
func (l *Ledger) DeleteTransaction(ctx context.Context, id uuid.UUID) error {
	return l.store.WithTx(ctx, func(tx Store) error {
		if err := writableTransaction(ctx, tx, id); err != nil {
			return err
		}
		return tx.DeleteTransaction(ctx, id)
	})
}

// ListTransactions returns an account's register in display order.
func (l *Ledger) ListTransactions(ctx context.Context, accountID uuid.UUID) ([]models.TransactionRow, error) {
	if _, err := l.store.GetAccount(ctx, accountID); err != nil {
		return nil, err
	}
	rows, err := l.store.ListTransactions(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	SortRegister(rows)
	return rows, nil
}

// checkAccountWritable fails with ErrAccountInactive for a deactivated
// account. Deactivated accounts keep their history readable but frozen.
func checkAccountWritable(ctx context.Context, store AccountStore, accountID uuid.UUID) error {
	a, err := store.GetAccount(ctx, accountID)
	if err != nil {
		return err
	}
	if !a.Active {
		return fmt.Errorf("account %s: %w", accountID, ErrAccountInactive)
	}
	return nil
}

func writableTransaction(ctx context.Context, tx Store, id uuid.UUID) error {
	t, err := tx.GetTransaction(ctx, id)
	if err != nil {
		return err
	}
	return checkAccountWritable(ctx, tx, t.AccountID)
}

func (l *Ledger) normalizedAmount(ctx context.Context, tx Store, in models.NewTransaction) (decimal.Decimal, error) {
	if in.OccurredOn.IsZero() {
		return decimal.Zero, fmt.Errorf("%w: occurrence date is required", ErrInvalidDate)
	}
	kind, err := l.lookups.kindIn(ctx, tx, in.TypeID)
	if err != nil {
		return decimal.Zero, err
	}
	if err := l.checkLookup(ctx, tx, models.TableMethod, in.MethodID); err != nil {
		return decimal.Zero, err
	}
	if err := l.checkLookup(ctx, tx, models.TableClassification, in.ClassificationID); err != nil {
		return decimal.Zero, err
	}
	amount, err := NewAmount(in.Amount)
	if err != nil {
		return decimal.Zero, err
	}
	return Normalize(amount, kind)
}

func (l *Ledger) checkLookup(ctx context.Context, store LookupStore, table models.LookupTable, id *int32) error {
	if id == nil {
		return nil
	}
	_, ok, err := l.lookups.getIn(ctx, store, table, *id)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %s id %d", ErrInvalidLookup, table, *id)
	}
	return nil
}
