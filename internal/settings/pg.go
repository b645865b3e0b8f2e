package settings

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PG lee settings de la tabla config(key text primary key, value text).
type PG struct {
	pool *pgxpool.Pool
}

func NewPG(pool *pgxpool.Pool) *PG { return &PG{pool: pool} }

func (p *PG) Get(ctx context.Context, name string) (string, error) {
	var v string
	err := p.pool.QueryRow(ctx, `SELECT value FROM config WHERE key = $1`, name).Scan(&v)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if err != nil {
		return "", fmt.Errorf("settings: query %s: %w", name, err)
	}
	return v, nil
}
