package token

import (
	"context"
	"errors"

	"bookworm/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// refreshTokenName is the single row key; the store holds one credential.
const refreshTokenName = "refresh"

type postgresRepo struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) Repository {
	return &postgresRepo{pool: pool}
}

func (r *postgresRepo) Get(ctx context.Context) (*RefreshToken, error) {
	const q = `
SELECT token, updated_at
FROM refresh_credentials
WHERE name = $1
`
	var out RefreshToken
	if err := r.pool.QueryRow(ctx, q, refreshTokenName).Scan(&out.Token, &out.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &out, nil
}

func (r *postgresRepo) Put(ctx context.Context, token string) error {
	const q = `
INSERT INTO refresh_credentials (name, token, updated_at)
VALUES ($1, $2, now())
ON CONFLICT (name)
DO UPDATE SET token = EXCLUDED.token, updated_at = now()
`
	_, err := r.pool.Exec(ctx, q, refreshTokenName, token)
	return err
}

func (r *postgresRepo) Delete(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM refresh_credentials WHERE name = $1`, refreshTokenName)
	return err
}
