package cart

import (
	"context"

	"bookworm/internal/domain"
)

// Repository persists one cart partition per identity key. Writes are whole
// snapshot upserts; the store never patches a partition in place.
type Repository interface {
	// Load returns the partition for the identity key, or domain.ErrNotFound
	// when none has been persisted yet.
	Load(ctx context.Context, identityKey string) (*domain.PartitionSnapshot, error)
	// Save replaces the partition for the identity key with the snapshot.
	Save(ctx context.Context, identityKey string, snap domain.PartitionSnapshot) error
}
