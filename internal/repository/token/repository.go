// Package token persists the refresh credential across process restarts,
// filling the role the browser's httpOnly cookie store plays for the web
// client: session bootstrap can silently resume without a login.
package token

import (
	"context"
	"time"
)

// RefreshToken is the stored refresh credential.
type RefreshToken struct {
	Token     string
	UpdatedAt time.Time
}

// Repository stores at most one refresh credential.
type Repository interface {
	// Get returns the stored credential, or domain.ErrNotFound.
	Get(ctx context.Context) (*RefreshToken, error)
	// Put replaces the stored credential.
	Put(ctx context.Context, token string) error
	// Delete removes the stored credential; absent is not an error.
	Delete(ctx context.Context) error
}
