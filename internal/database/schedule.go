package database

import (
	"context"

	"github.com/ashmitsharp/payledger-api/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

func (s *Store) GetPaySchedule(ctx context.Context) (models.PaySchedule, bool, error) {
	var (
		ps     models.PaySchedule
		anchor pgtype.Date
	)
	err := s.db.QueryRow(ctx, `SELECT cadence_days, anchor_date FROM pay_schedule WHERE id = 1`).Scan(&ps.CadenceDays, &anchor)
	if err == pgx.ErrNoRows {
		return models.PaySchedule{}, false, nil
	}
	if err != nil {
		return models.PaySchedule{}, false, err
	}
	ps.Anchor = anchor.Time
	return ps, true, nil
}

func (s *Store) UpsertPaySchedule(ctx context.Context, ps models.PaySchedule) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO pay_schedule (id, cadence_days, anchor_date, updated_at)
		VALUES (1, $1, $2, NOW())
		ON CONFLICT (id) DO UPDATE
		   SET cadence_days = EXCLUDED.cadence_days,
		       anchor_date = EXCLUDED.anchor_date,
		       updated_at = NOW()
	`, ps.CadenceDays, pgDate(ps.Anchor))
	return err
}
