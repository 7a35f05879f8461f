package database

import (
	"context"
	"fmt"
	"time"

	"github.com/ashmitsharp/payledger-api/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const billColumns = `id, payee, frequency, due_day, due_month, amount_due, total_debt, account_id, active, notes`

func scanBill(row scanner) (models.Bill, error) {
	var (
		b         models.Bill
		frequency string
		dueDay    int16
		dueMonth  pgtype.Int2
		amountDue pgtype.Numeric
		totalDebt pgtype.Numeric
		accountID pgtype.UUID
	)
	if err := row.Scan(&b.ID, &b.Payee, &frequency, &dueDay, &dueMonth, &amountDue, &totalDebt, &accountID, &b.Active, &b.Notes); err != nil {
		return models.Bill{}, err
	}
	b.Recurrence = models.Recurrence{
		Frequency:  models.Frequency(frequency),
		DayOfMonth: int(dueDay),
	}
	if dueMonth.Valid {
		b.Recurrence.Month = int(dueMonth.Int16)
	}
	b.AmountDue = fromNumeric(amountDue)
	b.TotalDebt = fromNumeric(totalDebt)
	b.AccountID = fromPgUUID(accountID)
	return b, nil
}

func dueMonth(r models.Recurrence) pgtype.Int2 {
	if r.Frequency != models.FrequencyYearly {
		return pgtype.Int2{}
	}
	return pgtype.Int2{Int16: int16(r.Month), Valid: true}
}

func (s *Store) InsertBill(ctx context.Context, b models.Bill) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO bills (`+billColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, b.ID, b.Payee, string(b.Recurrence.Frequency), int16(b.Recurrence.DayOfMonth), dueMonth(b.Recurrence),
		numeric(b.AmountDue), numeric(b.TotalDebt), pgUUID(b.AccountID), b.Active, b.Notes)
	return err
}

func (s *Store) UpdateBill(ctx context.Context, b models.Bill) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE bills
		   SET payee = $1,
		       frequency = $2,
		       due_day = $3,
		       due_month = $4,
		       amount_due = $5,
		       total_debt = $6,
		       account_id = $7,
		       active = $8,
		       notes = $9
		 WHERE id = $10
	`, b.Payee, string(b.Recurrence.Frequency), int16(b.Recurrence.DayOfMonth), dueMonth(b.Recurrence),
		numeric(b.AmountDue), numeric(b.TotalDebt), pgUUID(b.AccountID), b.Active, b.Notes, b.ID)
	if err != nil {
		return err
	}
	return expectOne(tag, fmt.Sprintf("bill %s", b.ID))
}

func (s *Store) GetBill(ctx context.Context, id uuid.UUID) (models.Bill, error) {
	b, err := scanBill(s.db.QueryRow(ctx, `SELECT `+billColumns+` FROM bills WHERE id = $1`, id))
	if err != nil {
		return models.Bill{}, notFound(err, fmt.Sprintf("bill %s", id))
	}
	return b, nil
}

func (s *Store) ListBills(ctx context.Context, activeOnly bool) ([]models.Bill, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+billColumns+`
		FROM bills
		WHERE (NOT $1) OR active
		ORDER BY LOWER(payee), id
	`, activeOnly)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Bill
	for rows.Next() {
		b, err := scanBill(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (s *Store) GetBillPayment(ctx context.Context, billID uuid.UUID, due time.Time) (models.BillPayment, bool, error) {
	var (
		p       models.BillPayment
		dueDate pgtype.Date
		amount  pgtype.Numeric
		paidAt  pgtype.Timestamptz
	)
	err := s.db.QueryRow(ctx, `
		SELECT bill_id, due_date, amount, paid_at, ignored
		FROM bill_payments
		WHERE bill_id = $1 AND due_date = $2
	`, billID, pgDate(due)).Scan(&p.BillID, &dueDate, &amount, &paidAt, &p.Ignored)
	if err == pgx.ErrNoRows {
		return models.BillPayment{}, false, nil
	}
	if err != nil {
		return models.BillPayment{}, false, err
	}
	p.DueDate = dueDate.Time
	p.Amount = fromNumeric(amount)
	if paidAt.Valid {
		t := paidAt.Time.UTC()
		p.PaidAt = &t
	}
	return p, true, nil
}

func (s *Store) UpsertBillPaid(ctx context.Context, p models.BillPayment) error {
	paidAt := pgtype.Timestamptz{}
	if p.PaidAt != nil {
		paidAt = pgtype.Timestamptz{Time: *p.PaidAt, Valid: true}
	}
	_, err := s.db.Exec(ctx, `
		INSERT INTO bill_payments (bill_id, due_date, amount, paid_at, ignored)
		VALUES ($1, $2, $3, $4, FALSE)
		ON CONFLICT (bill_id, due_date) DO UPDATE
		   SET amount = EXCLUDED.amount,
		       paid_at = EXCLUDED.paid_at,
		       ignored = FALSE
	`, p.BillID, pgDate(p.DueDate), numeric(p.Amount), paidAt)
	return err
}

func (s *Store) UpsertBillIgnored(ctx context.Context, billID uuid.UUID, due time.Time, ignored bool) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO bill_payments (bill_id, due_date, amount, ignored)
		VALUES ($1, $2, 0, $3)
		ON CONFLICT (bill_id, due_date) DO UPDATE
		   SET ignored = EXCLUDED.ignored
	`, billID, pgDate(due), ignored)
	return err
}

func (s *Store) DeleteBillPayment(ctx context.Context, billID uuid.UUID, due time.Time) error {
	_, err := s.db.Exec(ctx, `DELETE FROM bill_payments WHERE bill_id = $1 AND due_date = $2`, billID, pgDate(due))
	return err
}
