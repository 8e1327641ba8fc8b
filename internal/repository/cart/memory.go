package cart

import (
	"context"
	"sync"

	"bookworm/internal/domain"
)

// memoryRepo keeps partitions in a map. Used by tests and the seeder; the
// snapshot-per-key contract matches the postgres implementation.
type memoryRepo struct {
	mu         sync.RWMutex
	partitions map[string]domain.PartitionSnapshot
}

func NewMemory() Repository {
	return &memoryRepo{partitions: make(map[string]domain.PartitionSnapshot)}
}

func (r *memoryRepo) Load(_ context.Context, identityKey string) (*domain.PartitionSnapshot, error) {
	r.mu.RLock()
	snap, ok := r.partitions[identityKey]
	r.mu.RUnlock()
	if !ok {
		return nil, domain.ErrNotFound
	}
	if snap.SchemaVersion != domain.SnapshotSchemaVersion {
		return nil, domain.ErrSchemaVersion
	}
	out := snap
	out.Lines = append([]domain.CartLine(nil), snap.Lines...)
	return &out, nil
}

func (r *memoryRepo) Save(_ context.Context, identityKey string, snap domain.PartitionSnapshot) error {
	snap.SchemaVersion = domain.SnapshotSchemaVersion
	snap.Lines = append([]domain.CartLine(nil), snap.Lines...)
	r.mu.Lock()
	r.partitions[identityKey] = snap
	r.mu.Unlock()
	return nil
}
