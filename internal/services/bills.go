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

const (
	billPaymentMethod         = "N/A"
	billPaymentClassification = "Bills"
)

// NewBill carries the user-editable fields of a bill.
type NewBill struct {
	Payee      string
	Recurrence models.Recurrence
	AmountDue  decimal.Decimal
	AccountID  *uuid.UUID
	TotalDebt  decimal.Decimal
	Notes      string
}

// BillListing is a bill with its next due date and linked account name.
type BillListing struct {
	Bill        models.Bill `json:"bill"`
	NextDue     time.Time   `json:"next_due"`
	AccountName string      `json:"account_name,omitempty"`
}

// PaymentLookups are the lookup ids stamped on a synthesized bill payment.
type PaymentLookups struct {
	ExpenseTypeID    int32
	MethodID         *int32
	ClassificationID *int32
}

// MarkPaidPlan is the outcome of marking an occurrence paid, before it is
// committed: the state record to upsert and, on the transition from unpaid to
// paid, the ledger transaction to create.
type MarkPaidPlan struct {
	Payment     models.BillPayment
	Transaction *models.NewTransaction
	SkipReason  string
}

// MarkPaidResult is what MarkPaid committed.
type MarkPaidResult struct {
	Payment     models.BillPayment  `json:"payment"`
	Transaction *models.Transaction `json:"transaction,omitempty"`
	SkipReason  string              `json:"skip_reason,omitempty"`
}

// PlanMarkPaid decides what marking bill paid for due does. A transaction is
// only planned when no paid record exists yet and the bill has a linked account.
func PlanMarkPaid(bill models.Bill, due time.Time, existing *models.BillPayment, refs PaymentLookups, now time.Time) MarkPaidPlan {
	paidAt := now
	plan := MarkPaidPlan{
		Payment: models.BillPayment{
			BillID:  bill.ID,
			DueDate: DateOf(due),
			Amount:  bill.AmountDue,
			PaidAt:  &paidAt,
			Ignored: false,
		},
	}

	switch {
	case existing != nil && existing.PaidAt != nil:
		plan.SkipReason = "occurrence already paid"
	case bill.AccountID == nil:
		plan.SkipReason = "bill has no linked account"
	default:
		plan.Transaction = &models.NewTransaction{
			AccountID:        *bill.AccountID,
			TypeID:           refs.ExpenseTypeID,
			Description:      bill.Payee,
			MethodID:         refs.MethodID,
			ClassificationID: refs.ClassificationID,
			Amount:           bill.AmountDue,
			OccurredOn:       DateOf(due),
			Pending:          false,
		}
	}
	return plan
}

// BillService manages bills and the paid/ignored state of their occurrences.
type BillService struct {
	store   Store
	ledger  *Ledger
	lookups *LookupResolver
	now     Clock
}

// NewBillService creates a bill service. Synthesized payments go through ledger.
func NewBillService(store Store, ledger *Ledger, lookups *LookupResolver) *BillService {
	return &BillService{
		store:   store,
		ledger:  ledger,
		lookups: lookups,
		now:     time.Now,
	}
}

// WithClock overrides the service's notion of now.
func (s *BillService) WithClock(now Clock) *BillService {
	s.now = now
	return s
}

// AddBill creates an active bill.
func (s *BillService) AddBill(ctx context.Context, in NewBill) (models.Bill, error) {
	b := models.Bill{ID: uuid.Must(uuid.NewV7()), Active: true}
	if err := s.apply(ctx, &b, in); err != nil {
		return models.Bill{}, err
	}
	if err := s.store.InsertBill(ctx, b); err != nil {
		return models.Bill{}, fmt.Errorf("failed to create bill: %w", err)
	}
	return b, nil
}

// EditBill rewrites a bill's fields, keeping its active flag.
func (s *BillService) EditBill(ctx context.Context, id uuid.UUID, in NewBill) (models.Bill, error) {
	b, err := s.store.GetBill(ctx, id)
	if err != nil {
		return models.Bill{}, err
	}
	if err := s.apply(ctx, &b, in); err != nil {
		return models.Bill{}, err
	}
	if err := s.store.UpdateBill(ctx, b); err != nil {
		return models.Bill{}, fmt.Errorf("failed to update bill: %w", err)
	}
	return b, nil
}

func (s *BillService) apply(ctx context.Context, b *models.Bill, in NewBill) error {
	payee := strings.TrimSpace(in.Payee)
	if payee == "" {
		return fmt.Errorf("%w: payee is required", ErrInvalidInput)
	}
	rec := in.Recurrence
	rec.Frequency = models.Frequency(strings.ToLower(string(rec.Frequency)))
	if rec.Frequency == models.FrequencyMonthly {
		rec.Month = 0
	}
	if err := ValidateRecurrence(rec); err != nil {
		return err
	}
	due, err := NewAmount(in.AmountDue)
	if err != nil {
		return err
	}
	debt, err := NewAmount(in.TotalDebt)
	if err != nil {
		return err
	}
	if in.AccountID != nil {
		if _, err := s.store.GetAccount(ctx, *in.AccountID); err != nil {
			return fmt.Errorf("linked account: %w", err)
		}
	}

	b.Payee = payee
	b.Recurrence = rec
	b.AmountDue = due
	b.AccountID = in.AccountID
	b.TotalDebt = debt
	b.Notes = in.Notes
	return nil
}

// GetBill returns one bill.
func (s *BillService) GetBill(ctx context.Context, id uuid.UUID) (models.Bill, error) {
	return s.store.GetBill(ctx, id)
}

// SetBillActive deactivates or reactivates a bill.
func (s *BillService) SetBillActive(ctx context.Context, id uuid.UUID, active bool) error {
	b, err := s.store.GetBill(ctx, id)
	if err != nil {
		return err
	}
	b.Active = active
	return s.store.UpdateBill(ctx, b)
}

// ListBills returns bills ordered by payee, each with its next due date on or after ref.
func (s *BillService) ListBills(ctx context.Context, activeOnly bool, ref time.Time) ([]BillListing, error) {
	bills, err := s.store.ListBills(ctx, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to list bills: %w", err)
	}
	names, err := s.accountNames(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]BillListing, 0, len(bills))
	for _, b := range bills {
		next, err := NextDue(b.Recurrence, ref)
		if err != nil {
			continue
		}
		listing := BillListing{Bill: b, NextDue: next}
		if b.AccountID != nil {
			listing.AccountName = names[*b.AccountID]
		}
		out = append(out, listing)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return strings.ToLower(out[i].Bill.Payee) < strings.ToLower(out[j].Bill.Payee)
	})
	return out, nil
}

// IsPaid reports whether any state record exists for the occurrence.
func (s *BillService) IsPaid(ctx context.Context, billID uuid.UUID, due time.Time) (bool, error) {
	_, ok, err := s.store.GetBillPayment(ctx, billID, DateOf(due))
	return ok, err
}

// IsIgnored reports whether the occurrence's state record has its ignored flag set.
func (s *BillService) IsIgnored(ctx context.Context, billID uuid.UUID, due time.Time) (bool, error) {
	p, ok, err := s.store.GetBillPayment(ctx, billID, DateOf(due))
	return ok && p.Ignored, err
}

// MarkPaid records the occurrence as paid for the bill's current amount due
// and, the first time, books the payment on the bill's linked account. The
// state record and the transaction commit together.
func (s *BillService) MarkPaid(ctx context.Context, billID uuid.UUID, due time.Time) (MarkPaidResult, error) {
	due = DateOf(due)

	var result MarkPaidResult
	addedType := false
	err := s.store.WithTx(ctx, func(tx Store) error {
		bill, err := tx.GetBill(ctx, billID)
		if err != nil {
			return err
		}
		refs, added, err := s.paymentLookups(ctx, tx)
		if err != nil {
			return err
		}
		addedType = added
		var existing *models.BillPayment
		if p, ok, err := tx.GetBillPayment(ctx, billID, due); err != nil {
			return err
		} else if ok {
			existing = &p
		}

		plan := PlanMarkPaid(bill, due, existing, refs, s.now())
		if plan.Transaction != nil {
			if reason, ok := s.accountUsable(ctx, tx, plan.Transaction.AccountID); !ok {
				plan.Transaction = nil
				plan.SkipReason = reason
			}
		}

		if err := tx.UpsertBillPaid(ctx, plan.Payment); err != nil {
			return fmt.Errorf("failed to record payment: %w", err)
		}
		result = MarkPaidResult{Payment: plan.Payment, SkipReason: plan.SkipReason}
		if plan.Transaction == nil {
			return nil
		}

		created, err := s.ledger.addTransaction(ctx, tx, *plan.Transaction)
		if err != nil {
			return fmt.Errorf("failed to book payment: %w", err)
		}
		result.Transaction = &created
		return nil
	})
	if addedType {
		s.lookups.Invalidate(models.TableTxnType)
	}
	return result, err
}

func (s *BillService) accountUsable(ctx context.Context, tx Store, accountID uuid.UUID) (string, bool) {
	a, err := tx.GetAccount(ctx, accountID)
	if err != nil {
		return "linked account not found", false
	}
	if !a.Active {
		return "linked account is inactive", false
	}
	return "", true
}

// paymentLookups resolves the rows a synthesized payment is booked under,
// reading through tx so an appended expense type rolls back with it.
func (s *BillService) paymentLookups(ctx context.Context, tx Store) (PaymentLookups, bool, error) {
	expense, added, err := s.lookups.expenseTypeIn(ctx, tx)
	if err != nil {
		return PaymentLookups{}, false, fmt.Errorf("failed to resolve expense type: %w", err)
	}
	refs := PaymentLookups{ExpenseTypeID: expense.ID}

	if m, ok, err := s.lookups.resolveIn(ctx, tx, models.TableMethod, billPaymentMethod); err == nil && ok {
		refs.MethodID = &m.ID
	}
	if c, ok, err := s.lookups.resolveIn(ctx, tx, models.TableClassification, billPaymentClassification); err == nil && ok {
		refs.ClassificationID = &c.ID
	}
	return refs, added, nil
}

// SetIgnored sets the ignored flag of an occurrence, creating a zero-amount
// record if none exists. Amount and paid timestamp are left untouched.
func (s *BillService) SetIgnored(ctx context.Context, billID uuid.UUID, due time.Time, ignored bool) error {
	if _, err := s.store.GetBill(ctx, billID); err != nil {
		return err
	}
	return s.store.UpsertBillIgnored(ctx, billID, DateOf(due), ignored)
}

// ResetOccurrence deletes the occurrence's state record so it reads as unpaid.
// Transactions already booked for it are left in the ledger.
func (s *BillService) ResetOccurrence(ctx context.Context, billID uuid.UUID, due time.Time) error {
	if _, err := s.store.GetBill(ctx, billID); err != nil {
		return err
	}
	return s.store.DeleteBillPayment(ctx, billID, DateOf(due))
}

// Upcoming returns, for every active bill whose next due date on or after the
// window start falls inside the window, that occurrence with its paid and
// ignored flags, sorted by due date then payee.
func (s *BillService) Upcoming(ctx context.Context, window models.Window) ([]models.Occurrence, error) {
	bills, err := s.store.ListBills(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("failed to list bills: %w", err)
	}
	names, err := s.accountNames(ctx)
	if err != nil {
		return nil, err
	}

	out := []models.Occurrence{}
	for _, b := range bills {
		due, err := NextDue(b.Recurrence, window.Start)
		if err != nil || !window.Contains(due) {
			continue
		}
		p, ok, err := s.store.GetBillPayment(ctx, b.ID, due)
		if err != nil {
			return nil, fmt.Errorf("failed to load payment state: %w", err)
		}
		occ := models.Occurrence{
			Bill:    b,
			DueDate: due,
			Paid:    ok,
			Ignored: ok && p.Ignored,
		}
		if b.AccountID != nil {
			occ.AccountName = names[*b.AccountID]
		}
		out = append(out, occ)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].DueDate.Equal(out[j].DueDate) {
			return out[i].DueDate.Before(out[j].DueDate)
		}
		return strings.ToLower(out[i].Bill.Payee) < strings.ToLower(out[j].Bill.Payee)
	})
	return out, nil
}

func (s *BillService) accountNames(ctx context.Context) (map[uuid.UUID]string, error) {
	accounts, err := s.store.ListAccounts(ctx, false)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	names := make(map[uuid.UUID]string, len(accounts))
	for _, a := range accounts {
		names[a.ID] = a.Name
	}
	return names, nil
}
