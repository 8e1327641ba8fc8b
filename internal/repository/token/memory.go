package token

import (
	"context"
	"sync"
	"time"

	"bookworm/internal/domain"
)

type memoryRepo struct {
	mu    sync.Mutex
	token *RefreshToken
}

func NewMemory() Repository {
	return &memoryRepo{}
}

func (r *memoryRepo) Get(_ context.Context) (*RefreshToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.token == nil {
		return nil, domain.ErrNotFound
	}
	out := *r.token
	return &out, nil
}

func (r *memoryRepo) Put(_ context.Context, tok string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.token = &RefreshToken{Token: tok, UpdatedAt: time.Now()}
	return nil
}

func (r *memoryRepo) Delete(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.token = nil
	return nil
}
