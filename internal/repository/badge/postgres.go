package badge

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const badgeName = "cartCount"

type postgresRepo struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) Repository {
	return &postgresRepo{pool: pool}
}

func (r *postgresRepo) Get(ctx context.Context) (int, error) {
	const q = `
SELECT count
FROM nav_badges
WHERE name = $1
`
	var count int
	if err := r.pool.QueryRow(ctx, q, badgeName).Scan(&count); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}
		return 0, err
	}
	return count, nil
}

func (r *postgresRepo) Set(ctx context.Context, count int) error {
	const q = `
INSERT INTO nav_badges (name, count, updated_at)
VALUES ($1, $2, now())
ON CONFLICT (name)
DO UPDATE SET count = EXCLUDED.count, updated_at = now()
`
	_, err := r.pool.Exec(ctx, q, badgeName, count)
	return err
}
