package badge

import (
	"context"
	"sync"
)

type memoryRepo struct {
	mu    sync.Mutex
	count int
}

func NewMemory() Repository {
	return &memoryRepo{}
}

func (r *memoryRepo) Get(_ context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.count, nil
}

func (r *memoryRepo) Set(_ context.Context, count int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.count = count
	return nil
}
