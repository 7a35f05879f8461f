package database

import (
	"context"
	"fmt"

	"github.com/ashmitsharp/payledger-api/internal/models"
	"github.com/ashmitsharp/payledger-api/internal/services"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

const transactionColumns = `t.id, t.account_id, t.type_id, t.description, t.method_id, t.cat_id, t.amount, t.occurred_on, t.pending, t.order_key`

func transactionDest(t *models.Transaction, method, cat *pgtype.Int4, amount *pgtype.Numeric, occurred *pgtype.Date) []any {
	return []any{&t.ID, &t.AccountID, &t.TypeID, &t.Description, method, cat, amount, occurred, &t.Pending, &t.OrderKey}
}

func scanTransaction(row scanner) (models.Transaction, error) {
	var (
		t        models.Transaction
		method   pgtype.Int4
		cat      pgtype.Int4
		amount   pgtype.Numeric
		occurred pgtype.Date
	)
	if err := row.Scan(transactionDest(&t, &method, &cat, &amount, &occurred)...); err != nil {
		return models.Transaction{}, err
	}
	t.MethodID = fromInt4(method)
	t.ClassificationID = fromInt4(cat)
	t.Amount = fromNumeric(amount)
	t.OccurredOn = occurred.Time
	return t, nil
}

func (s *Store) InsertTransaction(ctx context.Context, t models.Transaction) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO transactions
			(id, account_id, order_key, type_id, description, method_id, cat_id, amount, occurred_on, pending)
		VALUES
			($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, t.ID, t.AccountID, t.OrderKey, t.TypeID, t.Description, pgInt4(t.MethodID), pgInt4(t.ClassificationID),
		numeric(t.Amount), pgDate(t.OccurredOn), t.Pending)
	return err
}

func (s *Store) UpdateTransaction(ctx context.Context, t models.Transaction) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE transactions
		   SET type_id = $1,
		       description = $2,
		       method_id = $3,
		       cat_id = $4,
		       amount = $5,
		       occurred_on = $6,
		       pending = $7
		 WHERE id = $8 AND account_id = $9
	`, t.TypeID, t.Description, pgInt4(t.MethodID), pgInt4(t.ClassificationID), numeric(t.Amount),
		pgDate(t.OccurredOn), t.Pending, t.ID, t.AccountID)
	if err != nil {
		return err
	}
	return expectOne(tag, fmt.Sprintf("transaction %s", t.ID))
}

func (s *Store) GetTransaction(ctx context.Context, id uuid.UUID) (models.Transaction, error) {
	row := s.db.QueryRow(ctx, `SELECT `+transactionColumns+` FROM transactions t WHERE t.id = $1`, id)
	t, err := scanTransaction(row)
	if err != nil {
		return models.Transaction{}, notFound(err, fmt.Sprintf("transaction %s", id))
	}
	return t, nil
}

func (s *Store) DeleteTransaction(ctx context.Context, id uuid.UUID) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM transactions WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return expectOne(tag, fmt.Sprintf("transaction %s", id))
}

func (s *Store) ListTransactions(ctx context.Context, accountID uuid.UUID) ([]models.TransactionRow, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+transactionColumns+`,
		       COALESCE(tt.label, ''), COALESCE(tt.kind, ''),
		       COALESCE(tm.label, ''), COALESCE(tc.label, '')
		FROM transactions t
		LEFT JOIN trans_type   tt ON tt.id = t.type_id
		LEFT JOIN trans_method tm ON tm.id = t.method_id
		LEFT JOIN trans_cat    tc ON tc.id = t.cat_id
		WHERE t.account_id = $1
		ORDER BY t.order_key DESC, t.occurred_on DESC, t.id DESC
	`, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.TransactionRow
	for rows.Next() {
		var (
			r        models.TransactionRow
			method   pgtype.Int4
			cat      pgtype.Int4
			amount   pgtype.Numeric
			occurred pgtype.Date
			kind     string
		)
		dest := transactionDest(&r.Transaction, &method, &cat, &amount, &occurred)
		dest = append(dest, &r.TypeLabel, &kind, &r.MethodLabel, &r.ClassificationLabel)
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		r.MethodID = fromInt4(method)
		r.ClassificationID = fromInt4(cat)
		r.Amount = fromNumeric(amount)
		r.OccurredOn = occurred.Time
		r.Kind, _ = models.ParseTxnKind(kind)
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Store) SetTransactionPending(ctx context.Context, id uuid.UUID, pending bool) error {
	tag, err := s.db.Exec(ctx, `UPDATE transactions SET pending = $1 WHERE id = $2`, pending, id)
	if err != nil {
		return err
	}
	return expectOne(tag, fmt.Sprintf("transaction %s", id))
}

func (s *Store) SumTransactions(ctx context.Context, accountID uuid.UUID, filter services.PendingFilter) (decimal.Decimal, error) {
	query := `SELECT COALESCE(SUM(amount), 0) FROM transactions WHERE account_id = $1`
	switch filter {
	case services.PostedOnly:
		query += ` AND NOT pending`
	case services.PendingOnly:
		query += ` AND pending`
	}

	var total pgtype.Numeric
	if err := s.db.QueryRow(ctx, query, accountID).Scan(&total); err != nil {
		return decimal.Zero, err
	}
	return fromNumeric(total), nil
}

func (s *Store) MaxOrderKey(ctx context.Context, accountID uuid.UUID) (int64, bool, error) {
	var key pgtype.Int8
	if err := s.db.QueryRow(ctx, `SELECT MAX(order_key) FROM transactions WHERE account_id = $1`, accountID).Scan(&key); err != nil {
		return 0, false, err
	}
	return key.Int64, key.Valid, nil
}

func (s *Store) NextOrderKeyAbove(ctx context.Context, accountID uuid.UUID, key int64) (models.Transaction, bool, error) {
	return s.neighbour(ctx, `
		SELECT `+transactionColumns+` FROM transactions t
		WHERE t.account_id = $1 AND t.order_key > $2
		ORDER BY t.order_key ASC, t.id ASC
		LIMIT 1
	`, accountID, key)
}

func (s *Store) NextOrderKeyBelow(ctx context.Context, accountID uuid.UUID, key int64) (models.Transaction, bool, error) {
	return s.neighbour(ctx, `
		SELECT `+transactionColumns+` FROM transactions t
		WHERE t.account_id = $1 AND t.order_key < $2
		ORDER BY t.order_key DESC, t.id DESC
		LIMIT 1
	`, accountID, key)
}

func (s *Store) neighbour(ctx context.Context, query string, accountID uuid.UUID, key int64) (models.Transaction, bool, error) {
	t, err := scanTransaction(s.db.QueryRow(ctx, query, accountID, key))
	if err == pgx.ErrNoRows {
		return models.Transaction{}, false, nil
	}
	if err != nil {
		return models.Transaction{}, false, err
	}
	return t, true, nil
}

// SwapOrderKeys exchanges two keys in a single UPDATE; the unique constraint on
// (account_id, order_key) is deferred to commit.
func (s *Store) SwapOrderKeys(ctx context.Context, a, b uuid.UUID) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE transactions AS t
		   SET order_key = o.order_key
		  FROM transactions AS o
		 WHERE (t.id = $1 AND o.id = $2)
		    OR (t.id = $2 AND o.id = $1)
	`, a, b)
	if err != nil {
		return err
	}
	if tag.RowsAffected() != 2 {
		return fmt.Errorf("swap %s/%s: %w", a, b, services.ErrNotFound)
	}
	return nil
}
