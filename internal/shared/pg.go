package shared

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const selectShared = `SELECT id::text, name, domain, app_id, app_key FROM shared`

// PG lee tiendas de la tabla shared (ver migrations/0001_init.up.sql).
type PG struct {
	pool *pgxpool.Pool
}

func NewPG(pool *pgxpool.Pool) *PG { return &PG{pool: pool} }

func (p *PG) Get(ctx context.Context, id string) (Store, error) {
	var s Store
	err := p.pool.QueryRow(ctx, selectShared+` WHERE id::text = $1`, id).
		Scan(&s.ID, &s.Name, &s.Domain, &s.AppID, &s.AppKey)
	if errors.Is(err, pgx.ErrNoRows) {
		return Store{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return Store{}, fmt.Errorf("shared: query %s: %w", id, err)
	}
	return s, nil
}

func (p *PG) List(ctx context.Context) ([]Store, error) {
	rows, err := p.pool.Query(ctx, selectShared+` ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("shared: list: %w", err)
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Store, error) {
		var s Store
		err := row.Scan(&s.ID, &s.Name, &s.Domain, &s.AppID, &s.AppKey)
		return s, err
	})
	if err != nil {
		return nil, fmt.Errorf("shared: list: %w", err)
	}
	return out, nil
}
