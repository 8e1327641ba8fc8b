// Package badge stores the navigation cart-count badge shown before the
// cart partition itself is loaded. One entry, mirroring the web client's
// "cartCount" local-storage key.
package badge

import "context"

type Repository interface {
	// Get returns the stored badge count; a missing entry reads as zero.
	Get(ctx context.Context) (int, error)
	// Set replaces the badge count.
	Set(ctx context.Context, count int) error
}
