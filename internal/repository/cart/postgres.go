package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"bookworm/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type postgresRepo struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) Repository {
	return &postgresRepo{pool: pool}
}

func (r *postgresRepo) Load(ctx context.Context, identityKey string) (*domain.PartitionSnapshot, error) {
	const q = `
SELECT payload
FROM cart_partitions
WHERE identity_key = $1
`
	var payload []byte
	if err := r.pool.QueryRow(ctx, q, identityKey).Scan(&payload); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	var snap domain.PartitionSnapshot
	if err := json.Unmarshal(payload, &snap); err != nil {
		return nil, fmt.Errorf("decode partition %q: %w", identityKey, err)
	}
	if snap.SchemaVersion != domain.SnapshotSchemaVersion {
		return nil, fmt.Errorf("partition %q version %d: %w", identityKey, snap.SchemaVersion, domain.ErrSchemaVersion)
	}
	return &snap, nil
}

func (r *postgresRepo) Save(ctx context.Context, identityKey string, snap domain.PartitionSnapshot) error {
	snap.SchemaVersion = domain.SnapshotSchemaVersion
	payload, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode partition %q: %w", identityKey, err)
	}

	const q = `
INSERT INTO cart_partitions (identity_key, schema_version, payload, updated_at)
VALUES ($1, $2, $3, now())
ON CONFLICT (identity_key)
DO UPDATE SET schema_version = EXCLUDED.schema_version,
              payload = EXCLUDED.payload,
              updated_at = now()
`
	_, err = r.pool.Exec(ctx, q, identityKey, snap.SchemaVersion, payload)
	return err
}
