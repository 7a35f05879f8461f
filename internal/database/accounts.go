package database

import (
	"context"
	"fmt"

	"github.com/ashmitsharp/payledger-api/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const accountColumns = `id, institution, name, opening_balance, earns_interest, active, opened_on`

func scanAccount(row scanner) (models.Account, error) {
	var (
		a       models.Account
		opening pgtype.Numeric
		opened  pgtype.Date
	)
	if err := row.Scan(&a.ID, &a.Institution, &a.Name, &opening, &a.EarnsInterest, &a.Active, &opened); err != nil {
		return models.Account{}, err
	}
	a.OpeningBalance = fromNumeric(opening)
	a.OpenedOn = opened.Time
	return a, nil
}

func (s *Store) InsertAccount(ctx context.Context, a models.Account) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO accounts (`+accountColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, a.ID, a.Institution, a.Name, numeric(a.OpeningBalance), a.EarnsInterest, a.Active, pgDate(a.OpenedOn))
	return err
}

func (s *Store) GetAccount(ctx context.Context, id uuid.UUID) (models.Account, error) {
	row := s.db.QueryRow(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id = $1`, id)
	a, err := scanAccount(row)
	if err != nil {
		return models.Account{}, notFound(err, fmt.Sprintf("account %s", id))
	}
	return a, nil
}

func (s *Store) ListAccounts(ctx context.Context, activeOnly bool) ([]models.Account, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+accountColumns+`
		FROM accounts
		WHERE (NOT $1) OR active
		ORDER BY institution, name
	`, activeOnly)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *Store) SetAccountActive(ctx context.Context, id uuid.UUID, active bool) error {
	tag, err := s.db.Exec(ctx, `UPDATE accounts SET active = $1 WHERE id = $2`, active, id)
	if err != nil {
		return err
	}
	return expectOne(tag, fmt.Sprintf("account %s", id))
}
