package database

import (
	"context"
	"fmt"

	"github.com/ashmitsharp/payledger-api/internal/models"
	"github.com/ashmitsharp/payledger-api/internal/services"
)

func (s *Store) ListLookups(ctx context.Context, table models.LookupTable) ([]models.Lookup, error) {
	if !table.Valid() {
		return nil, fmt.Errorf("%w: table %q", services.ErrInvalidLookup, table)
	}
	kindColumn := "''"
	if table == models.TableTxnType {
		kindColumn = "kind"
	}
	// table is one of a closed set of constants.
	rows, err := s.db.Query(ctx, fmt.Sprintf(`SELECT id, label, %s FROM %s ORDER BY id`, kindColumn, table))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Lookup
	for rows.Next() {
		var (
			l    models.Lookup
			kind string
		)
		if err := rows.Scan(&l.ID, &l.Label, &kind); err != nil {
			return nil, err
		}
		l.Table = table
		if table == models.TableTxnType {
			l.Kind, _ = models.ParseTxnKind(kind)
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (s *Store) InsertLookup(ctx context.Context, l models.Lookup) (models.Lookup, error) {
	if !l.Table.Valid() {
		return models.Lookup{}, fmt.Errorf("%w: table %q", services.ErrInvalidLookup, l.Table)
	}

	var err error
	if l.Table == models.TableTxnType {
		err = s.db.QueryRow(ctx,
			`INSERT INTO trans_type (label, kind) VALUES ($1, $2) RETURNING id`,
			l.Label, l.Kind.String(),
		).Scan(&l.ID)
	} else {
		err = s.db.QueryRow(ctx,
			fmt.Sprintf(`INSERT INTO %s (label) VALUES ($1) RETURNING id`, l.Table),
			l.Label,
		).Scan(&l.ID)
	}
	if err != nil {
		return models.Lookup{}, err
	}
	return l, nil
}
