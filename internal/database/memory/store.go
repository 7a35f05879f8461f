// Package memory is an in-process services.Store used for local runs and tests.
package memory

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/ashmitsharp/payledger-api/internal/models"
	"github.com/ashmitsharp/payledger-api/internal/services"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type paymentKey struct {
	billID uuid.UUID
	due    time.Time
}

type state struct {
	accounts     map[uuid.UUID]models.Account
	transactions map[uuid.UUID]models.Transaction
	lookups      map[models.LookupTable][]models.Lookup
	bills        map[uuid.UUID]models.Bill
	payments     map[paymentKey]models.BillPayment
	schedule     *models.PaySchedule
}

func (s *state) clone() *state {
	c := &state{
		accounts:     maps.Clone(s.accounts),
		transactions: maps.Clone(s.transactions),
		lookups:      make(map[models.LookupTable][]models.Lookup, len(s.lookups)),
		bills:        maps.Clone(s.bills),
		payments:     maps.Clone(s.payments),
	}
	for table, rows := range s.lookups {
		c.lookups[table] = slices.Clone(rows)
	}
	if s.schedule != nil {
		sched := *s.schedule
		c.schedule = &sched
	}
	return c
}

// core holds one version of the data behind a mutex. Reads go straight to it.
type core struct {
	mu   sync.RWMutex
	data *state
}

func (c *core) seed(table models.LookupTable, labels ...string) {
	for _, label := range labels {
		l := models.Lookup{Table: table, Label: label}
		if table == models.TableTxnType {
			l.Kind = models.KindFromLabel(label)
		}
		l.ID = int32(len(c.data.lookups[table]) + 1)
		c.data.lookups[table] = append(c.data.lookups[table], l)
	}
}

// Store keeps every record in maps. Writers are serialized on txMu; a
// transaction works on a private clone of the data that replaces the
// committed version only when it succeeds, so readers never see
// uncommitted writes and a rollback cannot discard anyone else's.
type Store struct {
	*core
	txMu sync.Mutex
}

var _ services.Store = (*Store)(nil)

// New returns an empty store with the default lookup rows.
func New() *Store {
	c := &core{data: &state{
		accounts:     make(map[uuid.UUID]models.Account),
		transactions: make(map[uuid.UUID]models.Transaction),
		lookups:      make(map[models.LookupTable][]models.Lookup),
		bills:        make(map[uuid.UUID]models.Bill),
		payments:     make(map[paymentKey]models.BillPayment),
	}}
	c.seed(models.TableTxnType, "Expense", "Deposit", "Transfer")
	c.seed(models.TableMethod, "N/A", "Card", "Cash", "Check", "ACH")
	c.seed(models.TableClassification, "Bills", "Groceries", "Income", "Misc")
	return &Store{core: c}
}

// txStore is the view handed to WithTx callbacks. It writes to the
// transaction's clone without taking txMu; nested calls join the enclosing
// transaction.
type txStore struct {
	*core
}

func (t txStore) WithTx(_ context.Context, fn func(tx services.Store) error) error {
	return fn(t)
}

func (s *Store) WithTx(_ context.Context, fn func(tx services.Store) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.RLock()
	work := &core{data: s.data.clone()}
	s.mu.RUnlock()

	if err := fn(txStore{work}); err != nil {
		return err
	}

	s.mu.Lock()
	s.data = work.data
	s.mu.Unlock()
	return nil
}

// write runs a single mutation outside any transaction.
func (s *Store) write(fn func() error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()
	return fn()
}

func (s *Store) InsertAccount(ctx context.Context, a models.Account) error {
	return s.write(func() error { return s.core.InsertAccount(ctx, a) })
}

func (s *Store) SetAccountActive(ctx context.Context, id uuid.UUID, active bool) error {
	return s.write(func() error { return s.core.SetAccountActive(ctx, id, active) })
}

func (s *Store) InsertTransaction(ctx context.Context, t models.Transaction) error {
	return s.write(func() error { return s.core.InsertTransaction(ctx, t) })
}

func (s *Store) UpdateTransaction(ctx context.Context, t models.Transaction) error {
	return s.write(func() error { return s.core.UpdateTransaction(ctx, t) })
}

func (s *Store) DeleteTransaction(ctx context.Context, id uuid.UUID) error {
	return s.write(func() error { return s.core.DeleteTransaction(ctx, id) })
}

func (s *Store) SetTransactionPending(ctx context.Context, id uuid.UUID, pending bool) error {
	return s.write(func() error { return s.core.SetTransactionPending(ctx, id, pending) })
}

func (s *Store) SwapOrderKeys(ctx context.Context, a, b uuid.UUID) error {
	return s.write(func() error { return s.core.SwapOrderKeys(ctx, a, b) })
}

func (s *Store) InsertLookup(ctx context.Context, l models.Lookup) (models.Lookup, error) {
	var inserted models.Lookup
	err := s.write(func() error {
		var err error
		inserted, err = s.core.InsertLookup(ctx, l)
		return err
	})
	return inserted, err
}

func (s *Store) InsertBill(ctx context.Context, b models.Bill) error {
	return s.write(func() error { return s.core.InsertBill(ctx, b) })
}

func (s *Store) UpdateBill(ctx context.Context, b models.Bill) error {
	return s.write(func() error { return s.core.UpdateBill(ctx, b) })
}

func (s *Store) UpsertBillPaid(ctx context.Context, p models.BillPayment) error {
	return s.write(func() error { return s.core.UpsertBillPaid(ctx, p) })
}

func (s *Store) UpsertBillIgnored(ctx context.Context, billID uuid.UUID, due time.Time, ignored bool) error {
	return s.write(func() error { return s.core.UpsertBillIgnored(ctx, billID, due, ignored) })
}

func (s *Store) DeleteBillPayment(ctx context.Context, billID uuid.UUID, due time.Time) error {
	return s.write(func() error { return s.core.DeleteBillPayment(ctx, billID, due) })
}

func (s *Store) UpsertPaySchedule(ctx context.Context, ps models.PaySchedule) error {
	return s.write(func() error { return s.core.UpsertPaySchedule(ctx, ps) })
}

func notFound(what string, id any) error {
	return fmt.Errorf("%s %v: %w", what, id, services.ErrNotFound)
}

func (c *core) InsertAccount(_ context.Context, a models.Account) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.data.accounts[a.ID]; ok {
		return fmt.Errorf("account %s already exists", a.ID)
	}
	c.data.accounts[a.ID] = a
	return nil
}

func (c *core) GetAccount(_ context.Context, id uuid.UUID) (models.Account, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	a, ok := c.data.accounts[id]
	if !ok {
		return models.Account{}, notFound("account", id)
	}
	return a, nil
}

func (c *core) ListAccounts(_ context.Context, activeOnly bool) ([]models.Account, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var out []models.Account
	for _, a := range c.data.accounts {
		if activeOnly && !a.Active {
			continue
		}
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Institution != out[j].Institution {
			return out[i].Institution < out[j].Institution
		}
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out, nil
}

func (c *core) SetAccountActive(_ context.Context, id uuid.UUID, active bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	a, ok := c.data.accounts[id]
	if !ok {
		return notFound("account", id)
	}
	a.Active = active
	c.data.accounts[id] = a
	return nil
}

func (c *core) InsertTransaction(_ context.Context, t models.Transaction) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.data.transactions[t.ID]; ok {
		return fmt.Errorf("transaction %s already exists", t.ID)
	}
	for _, other := range c.data.transactions {
		if other.AccountID == t.AccountID && other.OrderKey == t.OrderKey {
			return fmt.Errorf("order key %d already used in account %s", t.OrderKey, t.AccountID)
		}
	}
	c.data.transactions[t.ID] = t
	return nil
}

func (c *core) UpdateTransaction(_ context.Context, t models.Transaction) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	existing, ok := c.data.transactions[t.ID]
	if !ok || existing.AccountID != t.AccountID {
		return notFound("transaction", t.ID)
	}
	t.OrderKey = existing.OrderKey
	c.data.transactions[t.ID] = t
	return nil
}

func (c *core) GetTransaction(_ context.Context, id uuid.UUID) (models.Transaction, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	t, ok := c.data.transactions[id]
	if !ok {
		return models.Transaction{}, notFound("transaction", id)
	}
	return t, nil
}

func (c *core) DeleteTransaction(_ context.Context, id uuid.UUID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.data.transactions[id]; !ok {
		return notFound("transaction", id)
	}
	delete(c.data.transactions, id)
	return nil
}

func (c *core) ListTransactions(_ context.Context, accountID uuid.UUID) ([]models.TransactionRow, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var out []models.TransactionRow
	for _, t := range c.data.transactions {
		if t.AccountID != accountID {
			continue
		}
		row := models.TransactionRow{Transaction: t}
		if l, ok := c.lookup(models.TableTxnType, t.TypeID); ok {
			row.TypeLabel = l.Label
			row.Kind = l.Kind
		}
		if t.MethodID != nil {
			if l, ok := c.lookup(models.TableMethod, *t.MethodID); ok {
				row.MethodLabel = l.Label
			}
		}
		if t.ClassificationID != nil {
			if l, ok := c.lookup(models.TableClassification, *t.ClassificationID); ok {
				row.ClassificationLabel = l.Label
			}
		}
		out = append(out, row)
	}
	services.SortRegister(out)
	return out, nil
}

func (c *core) SetTransactionPending(_ context.Context, id uuid.UUID, pending bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	t, ok := c.data.transactions[id]
	if !ok {
		return notFound("transaction", id)
	}
	t.Pending = pending
	c.data.transactions[id] = t
	return nil
}

func (c *core) SumTransactions(_ context.Context, accountID uuid.UUID, filter services.PendingFilter) (decimal.Decimal, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	total := decimal.Zero
	for _, t := range c.data.transactions {
		if t.AccountID != accountID {
			continue
		}
		if (filter == services.PostedOnly && t.Pending) || (filter == services.PendingOnly && !t.Pending) {
			continue
		}
		total = total.Add(t.Amount)
	}
	return total, nil
}

func (c *core) MaxOrderKey(_ context.Context, accountID uuid.UUID) (int64, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var (
		maxKey int64
		found  bool
	)
	for _, t := range c.data.transactions {
		if t.AccountID == accountID && (!found || t.OrderKey > maxKey) {
			maxKey, found = t.OrderKey, true
		}
	}
	return maxKey, found, nil
}

func (c *core) NextOrderKeyAbove(_ context.Context, accountID uuid.UUID, key int64) (models.Transaction, bool, error) {
	return c.nearest(accountID, func(t models.Transaction, best *models.Transaction) bool {
		return t.OrderKey > key && (best == nil || t.OrderKey < best.OrderKey)
	})
}

func (c *core) NextOrderKeyBelow(_ context.Context, accountID uuid.UUID, key int64) (models.Transaction, bool, error) {
	return c.nearest(accountID, func(t models.Transaction, best *models.Transaction) bool {
		return t.OrderKey < key && (best == nil || t.OrderKey > best.OrderKey)
	})
}

func (c *core) nearest(accountID uuid.UUID, better func(t models.Transaction, best *models.Transaction) bool) (models.Transaction, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var best *models.Transaction
	for _, t := range c.data.transactions {
		if t.AccountID != accountID {
			continue
		}
		if better(t, best) {
			t := t
			best = &t
		}
	}
	if best == nil {
		return models.Transaction{}, false, nil
	}
	return *best, true, nil
}

func (c *core) SwapOrderKeys(_ context.Context, a, b uuid.UUID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	ta, okA := c.data.transactions[a]
	tb, okB := c.data.transactions[b]
	if !okA || !okB || ta.AccountID != tb.AccountID {
		return fmt.Errorf("swap %s/%s: %w", a, b, services.ErrNotFound)
	}
	ta.OrderKey, tb.OrderKey = tb.OrderKey, ta.OrderKey
	c.data.transactions[a] = ta
	c.data.transactions[b] = tb
	return nil
}

// lookup must be called with mu held.
func (c *core) lookup(table models.LookupTable, id int32) (models.Lookup, bool) {
	for _, l := range c.data.lookups[table] {
		if l.ID == id {
			return l, true
		}
	}
	return models.Lookup{}, false
}

func (c *core) ListLookups(_ context.Context, table models.LookupTable) ([]models.Lookup, error) {
	if !table.Valid() {
		return nil, fmt.Errorf("%w: table %q", services.ErrInvalidLookup, table)
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.data.lookups[table]), nil
}

func (c *core) InsertLookup(_ context.Context, l models.Lookup) (models.Lookup, error) {
	if !l.Table.Valid() {
		return models.Lookup{}, fmt.Errorf("%w: table %q", services.ErrInvalidLookup, l.Table)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	rows := c.data.lookups[l.Table]
	for _, row := range rows {
		if row.Label == l.Label {
			return models.Lookup{}, fmt.Errorf("%s label %q already exists", l.Table, l.Label)
		}
	}
	l.ID = int32(len(rows) + 1)
	c.data.lookups[l.Table] = append(rows, l)
	return l, nil
}

func (c *core) InsertBill(_ context.Context, b models.Bill) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.data.bills[b.ID]; ok {
		return fmt.Errorf("bill %s already exists", b.ID)
	}
	c.data.bills[b.ID] = b
	return nil
}

func (c *core) UpdateBill(_ context.Context, b models.Bill) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.data.bills[b.ID]; !ok {
		return notFound("bill", b.ID)
	}
	c.data.bills[b.ID] = b
	return nil
}

func (c *core) GetBill(_ context.Context, id uuid.UUID) (models.Bill, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	b, ok := c.data.bills[id]
	if !ok {
		return models.Bill{}, notFound("bill", id)
	}
	return b, nil
}

func (c *core) ListBills(_ context.Context, activeOnly bool) ([]models.Bill, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var out []models.Bill
	for _, b := range c.data.bills {
		if activeOnly && !b.Active {
			continue
		}
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool {
		pi, pj := strings.ToLower(out[i].Payee), strings.ToLower(out[j].Payee)
		if pi != pj {
			return pi < pj
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out, nil
}

func (c *core) GetBillPayment(_ context.Context, billID uuid.UUID, due time.Time) (models.BillPayment, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.data.payments[paymentKey{billID, services.DateOf(due)}]
	return p, ok, nil
}

func (c *core) UpsertBillPaid(_ context.Context, p models.BillPayment) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	p.DueDate = services.DateOf(p.DueDate)
	p.Ignored = false
	c.data.payments[paymentKey{p.BillID, p.DueDate}] = p
	return nil
}

func (c *core) UpsertBillIgnored(_ context.Context, billID uuid.UUID, due time.Time, ignored bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	key := paymentKey{billID, services.DateOf(due)}
	p, ok := c.data.payments[key]
	if !ok {
		p = models.BillPayment{BillID: billID, DueDate: key.due, Amount: decimal.Zero}
	}
	p.Ignored = ignored
	c.data.payments[key] = p
	return nil
}

func (c *core) DeleteBillPayment(_ context.Context, billID uuid.UUID, due time.Time) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data.payments, paymentKey{billID, services.DateOf(due)})
	return nil
}

func (c *core) GetPaySchedule(_ context.Context) (models.PaySchedule, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.data.schedule == nil {
		return models.PaySchedule{}, false, nil
	}
	return *c.data.schedule, true, nil
}

func (c *core) UpsertPaySchedule(_ context.Context, ps models.PaySchedule) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	ps.Anchor = services.DateOf(ps.Anchor)
	c.data.schedule = &ps
	return nil
}
