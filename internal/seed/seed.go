package seed

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"bookworm/internal/domain"
)

// Apply inserts demo cart partitions for manual testing. It is idempotent
// via ON CONFLICT.
func Apply(ctx context.Context, pool *pgxpool.Pool) error {
	partitions := map[string][]domain.CartLine{
		domain.Anonymous.Key(): {
			{
				BookID:         "seed-book-1",
				Title:          "The Name of the Wind",
				CoverURL:       "https://covers.example.com/seed-book-1.jpg",
				Price:          24.99,
				DiscountPrice:  19.99,
				CurrencySymbol: "$",
				Quantity:       1,
			},
		},
		domain.UserIdentity("1").Key(): {
			{
				BookID:         "seed-book-2",
				Title:          "Project Hail Mary",
				CoverURL:       "https://covers.example.com/seed-book-2.jpg",
				Price:          28.99,
				DiscountPrice:  28.99,
				CurrencySymbol: "$",
				Quantity:       2,
			},
			{
				BookID:         "seed-book-3",
				Title:          "Piranesi",
				CoverURL:       "https://covers.example.com/seed-book-3.jpg",
				Price:          16.99,
				DiscountPrice:  12.99,
				CurrencySymbol: "$",
				Quantity:       1,
			},
		},
	}

	for key, lines := range partitions {
		if err := upsertPartition(ctx, pool, key, lines); err != nil {
			return fmt.Errorf("upsert partition %s: %w", key, err)
		}
	}

	count := 0
	for _, line := range partitions[domain.Anonymous.Key()] {
		count += line.Quantity
	}
	if err := upsertBadge(ctx, pool, "cartCount", count); err != nil {
		return fmt.Errorf("upsert badge: %w", err)
	}

	return nil
}

func upsertPartition(ctx context.Context, pool *pgxpool.Pool, key string, lines []domain.CartLine) error {
	snap := domain.PartitionSnapshot{
		SchemaVersion: domain.SnapshotSchemaVersion,
		Lines:         lines,
	}
	payload, err := json.Marshal(snap)
	if err != nil {
		return err
	}

	const q = `
INSERT INTO cart_partitions (identity_key, schema_version, payload, updated_at)
VALUES ($1, $2, $3, now())
ON CONFLICT (identity_key) DO UPDATE
SET schema_version = EXCLUDED.schema_version,
    payload = EXCLUDED.payload,
    updated_at = now()
`
	_, err = pool.Exec(ctx, q, key, domain.SnapshotSchemaVersion, payload)
	return err
}

func upsertBadge(ctx context.Context, pool *pgxpool.Pool, name string, count int) error {
	const q = `
INSERT INTO nav_badges (name, count, updated_at)
VALUES ($1, $2, now())
ON CONFLICT (name) DO UPDATE
SET count = EXCLUDED.count,
    updated_at = now()
`
	_, err := pool.Exec(ctx, q, name, count)
	return err
}
