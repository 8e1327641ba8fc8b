// Package cart owns the shopping basket: per-identity persisted line items
// with merge and capacity invariants. Mutations are atomic and each one is
// followed by a full rewrite of the persisted partition, so durable state
// always matches memory.
package cart

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"

	"bookworm/internal/domain"
	badgerepo "bookworm/internal/repository/badge"
	cartrepo "bookworm/internal/repository/cart"
)

// Service is the cart store for whatever identity is currently active.
// Switching identity swaps in a completely independent persisted partition.
type Service struct {
	repo   cartrepo.Repository
	badges badgerepo.Repository
	logger *log.Logger

	mu       sync.Mutex
	identity domain.Identity
	lines    []domain.CartLine
	loaded   bool
}

func New(repo cartrepo.Repository, badges badgerepo.Repository, logger *log.Logger) *Service {
	return &Service{
		repo:     repo,
		badges:   badges,
		logger:   logger,
		identity: domain.Anonymous,
	}
}

// Identity returns the identity whose partition is active.
func (s *Service) Identity() domain.Identity {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.identity
}

// Lines returns a snapshot copy of the active partition.
func (s *Service) Lines(ctx context.Context) ([]domain.CartLine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoadedLocked(ctx); err != nil {
		return nil, err
	}
	return append([]domain.CartLine(nil), s.lines...), nil
}

// Count returns the total quantity across all lines, the number the
// navigation badge shows.
func (s *Service) Count(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoadedLocked(ctx); err != nil {
		return 0, err
	}
	return countLocked(s.lines), nil
}

// AddLine validates and merges one line into the cart. When the book is
// already present the quantities are summed and clamped to
// domain.MaxLineQuantity; clamped reports whether the unclamped sum
// exceeded the bound, which is a warning for the user, not a failure.
func (s *Service) AddLine(ctx context.Context, line domain.CartLine) (clamped bool, err error) {
	if err := validateLine(line); err != nil {
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoadedLocked(ctx); err != nil {
		return false, err
	}

	clamped = s.mergeLocked(line)
	if err := s.persistLocked(ctx); err != nil {
		return false, err
	}
	return clamped, nil
}

// mergeLocked applies the AddLine merge rule and reports clamping.
func (s *Service) mergeLocked(line domain.CartLine) bool {
	for i, existing := range s.lines {
		if existing.BookID != line.BookID {
			continue
		}
		sum := existing.Quantity + line.Quantity
		s.lines[i].Quantity = min(sum, domain.MaxLineQuantity)
		return sum > domain.MaxLineQuantity
	}

	clamped := line.Quantity > domain.MaxLineQuantity
	line.Quantity = min(line.Quantity, domain.MaxLineQuantity)
	s.lines = append(s.lines, line)
	return clamped
}

// ReplaceLine overwrites the line with the same book id, or appends it.
// Quantity zero means "take it out of the cart" and is equivalent to
// RemoveLine. Quantities are kept within bounds.
func (s *Service) ReplaceLine(ctx context.Context, line domain.CartLine) error {
	if strings.TrimSpace(line.BookID) == "" {
		return fmt.Errorf("%w: book id required", domain.ErrInvalidInput)
	}
	if line.Quantity < 0 {
		return fmt.Errorf("%w: quantity must not be negative", domain.ErrInvalidInput)
	}
	if line.Quantity == 0 {
		return s.RemoveLine(ctx, line.BookID)
	}
	line.Quantity = min(line.Quantity, domain.MaxLineQuantity)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoadedLocked(ctx); err != nil {
		return err
	}

	replaced := false
	for i, existing := range s.lines {
		if existing.BookID == line.BookID {
			s.lines[i] = line
			replaced = true
			break
		}
	}
	if !replaced {
		s.lines = append(s.lines, line)
	}
	return s.persistLocked(ctx)
}

// RemoveLine deletes the line with the given book id; absent is a no-op.
func (s *Service) RemoveLine(ctx context.Context, bookID string) error {
	return s.RemoveLines(ctx, []string{bookID})
}

// RemoveLines deletes the lines whose book ids are listed, keeping the
// rest. Used when an order rejection names specific offending books.
func (s *Service) RemoveLines(ctx context.Context, bookIDs []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoadedLocked(ctx); err != nil {
		return err
	}

	drop := make(map[string]bool, len(bookIDs))
	for _, id := range bookIDs {
		drop[id] = true
	}

	kept := s.lines[:0]
	removed := false
	for _, line := range s.lines {
		if drop[line.BookID] {
			removed = true
			continue
		}
		kept = append(kept, line)
	}
	s.lines = kept
	if !removed {
		return nil
	}
	return s.persistLocked(ctx)
}

// Clear empties the active partition.
func (s *Service) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoadedLocked(ctx); err != nil {
		return err
	}
	s.lines = nil
	return s.persistLocked(ctx)
}

// ToOrderDraft projects the cart into the order submission shape using the
// discounted unit prices. The cart itself is untouched; clearing happens
// separately once the caller has confirmed success.
func (s *Service) ToOrderDraft(ctx context.Context, ownerID int64) (domain.OrderDraft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoadedLocked(ctx); err != nil {
		return domain.OrderDraft{}, err
	}

	draft := domain.OrderDraft{UserID: ownerID, Items: make([]domain.OrderDraftRow, 0, len(s.lines))}
	for _, line := range s.lines {
		draft.Items = append(draft.Items, domain.OrderDraftRow{
			BookID:   line.BookID,
			Quantity: line.Quantity,
			Price:    line.DiscountPrice,
		})
	}
	return draft, nil
}

// SwitchIdentity activates the partition belonging to id. The previous
// partition's persisted state is left alone; the new one is loaded on next
// access.
func (s *Service) SwitchIdentity(ctx context.Context, id domain.Identity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id == s.identity {
		return nil
	}
	s.identity = id
	s.lines = nil
	s.loaded = false
	return s.ensureLoadedLocked(ctx)
}

// MigrateGuestTo merges every guest line into the user's partition via the
// AddLine rule, clears the guest partition, and leaves the user partition
// active. Invoked exactly once per anonymous-to-user login transition.
func (s *Service) MigrateGuestTo(ctx context.Context, user domain.Identity) error {
	if user.IsAnonymous() {
		return fmt.Errorf("%w: migration target must be a user", domain.ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	guest, err := s.repo.Load(ctx, domain.Anonymous.Key())
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("load guest partition: %w", err)
	}

	s.identity = user
	s.lines = nil
	s.loaded = false
	if err := s.ensureLoadedLocked(ctx); err != nil {
		return err
	}

	if guest != nil && len(guest.Lines) > 0 {
		for _, line := range guest.Lines {
			if s.mergeLocked(line) {
				s.logger.Printf("cart migration: quantity clamped for book %s", line.BookID)
			}
		}
		if err := s.repo.Save(ctx, domain.Anonymous.Key(), domain.PartitionSnapshot{SchemaVersion: domain.SnapshotSchemaVersion}); err != nil {
			return fmt.Errorf("clear guest partition: %w", err)
		}
		if err := s.persistLocked(ctx); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) ensureLoadedLocked(ctx context.Context) error {
	if s.loaded {
		return nil
	}
	snap, err := s.repo.Load(ctx, s.identity.Key())
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.lines = nil
			s.loaded = true
			return nil
		}
		return fmt.Errorf("load partition %q: %w", s.identity.Key(), err)
	}
	s.lines = snap.Lines
	s.loaded = true
	return nil
}

// persistLocked rewrites the whole persisted partition and refreshes the
// badge count. Badge failures are logged, not propagated; the badge is a
// display hint.
func (s *Service) persistLocked(ctx context.Context) error {
	snap := domain.PartitionSnapshot{
		SchemaVersion: domain.SnapshotSchemaVersion,
		Lines:         s.lines,
	}
	if err := s.repo.Save(ctx, s.identity.Key(), snap); err != nil {
		return fmt.Errorf("persist partition %q: %w", s.identity.Key(), err)
	}
	if s.badges != nil {
		if err := s.badges.Set(ctx, countLocked(s.lines)); err != nil {
			s.logger.Printf("cart badge update: %v", err)
		}
	}
	return nil
}

func validateLine(line domain.CartLine) error {
	if strings.TrimSpace(line.BookID) == "" {
		return fmt.Errorf("%w: book id required", domain.ErrInvalidInput)
	}
	if line.Quantity <= 0 {
		return fmt.Errorf("%w: quantity must be positive", domain.ErrInvalidInput)
	}
	if line.DiscountPrice < 0 {
		return fmt.Errorf("%w: discount price must not be negative", domain.ErrInvalidInput)
	}
	return nil
}

func countLocked(lines []domain.CartLine) int {
	total := 0
	for _, line := range lines {
		total += line.Quantity
	}
	return total
}

