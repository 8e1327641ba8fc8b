package cart

import (
	"context"
	"errors"
	"io"
	"log"
	"testing"

	"bookworm/internal/domain"
	badgerepo "bookworm/internal/repository/badge"
	cartrepo "bookworm/internal/repository/cart"
)

func logDiscard() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func newService() (*Service, cartrepo.Repository, badgerepo.Repository) {
	repo := cartrepo.NewMemory()
	badges := badgerepo.NewMemory()
	return New(repo, badges, logDiscard()), repo, badges
}

func line(bookID string, qty int) domain.CartLine {
	return domain.CartLine{
		BookID:         bookID,
		Title:          "Title " + bookID,
		Price:          20,
		DiscountPrice:  15,
		CurrencySymbol: "$",
		Quantity:       qty,
	}
}

func TestAddLine_MergesAndClampsAtMax(t *testing.T) {
	svc, _, _ := newService()
	ctx := context.Background()

	clamped, err := svc.AddLine(ctx, line("b1", 3))
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if clamped {
		t.Fatal("expected no clamp for quantity 3")
	}

	clamped, err = svc.AddLine(ctx, line("b1", 7))
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if !clamped {
		t.Fatal("expected clamp when 3+7 exceeds the maximum")
	}

	lines, err := svc.Lines(ctx)
	if err != nil {
		t.Fatalf("lines: %v", err)
	}
	if len(lines) != 1 || lines[0].Quantity != domain.MaxLineQuantity {
		t.Fatalf("expected single line at %d, got %+v", domain.MaxLineQuantity, lines)
	}
}

func TestAddLine_SumExactlyAtMaxIsNotClamped(t *testing.T) {
	svc, _, _ := newService()
	ctx := context.Background()

	if _, err := svc.AddLine(ctx, line("b1", 5)); err != nil {
		t.Fatalf("add: %v", err)
	}
	clamped, err := svc.AddLine(ctx, line("b1", 3))
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if clamped {
		t.Fatal("sum equal to the maximum must not report clamping")
	}
}

func TestAddLine_RejectsInvalidInput(t *testing.T) {
	svc, _, _ := newService()
	ctx := context.Background()

	if _, err := svc.AddLine(ctx, line("", 1)); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for missing book id, got %v", err)
	}
	if _, err := svc.AddLine(ctx, line("b1", 0)); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for zero quantity, got %v", err)
	}
	negative := line("b1", 1)
	negative.DiscountPrice = -1
	if _, err := svc.AddLine(ctx, negative); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for negative price, got %v", err)
	}
}

func TestReplaceLine_ZeroQuantityRemoves(t *testing.T) {
	svc, _, _ := newService()
	ctx := context.Background()

	if _, err := svc.AddLine(ctx, line("b1", 2)); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := svc.ReplaceLine(ctx, line("b1", 0)); err != nil {
		t.Fatalf("replace: %v", err)
	}

	lines, err := svc.Lines(ctx)
	if err != nil {
		t.Fatalf("lines: %v", err)
	}
	if len(lines) != 0 {
		t.Fatalf("expected empty cart, got %+v", lines)
	}
}

func TestReplaceLine_OverwritesNotMerges(t *testing.T) {
	svc, _, _ := newService()
	ctx := context.Background()

	if _, err := svc.AddLine(ctx, line("b1", 5)); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := svc.ReplaceLine(ctx, line("b1", 2)); err != nil {
		t.Fatalf("replace: %v", err)
	}

	lines, _ := svc.Lines(ctx)
	if lines[0].Quantity != 2 {
		t.Fatalf("expected quantity 2, got %d", lines[0].Quantity)
	}

	if err := svc.ReplaceLine(ctx, line("b1", 99)); err != nil {
		t.Fatalf("replace: %v", err)
	}
	lines, _ = svc.Lines(ctx)
	if lines[0].Quantity != domain.MaxLineQuantity {
		t.Fatalf("expected clamp to %d, got %d", domain.MaxLineQuantity, lines[0].Quantity)
	}

	if err := svc.ReplaceLine(ctx, line("b1", -1)); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for negative quantity, got %v", err)
	}
}

func TestRemoveLine_AbsentIsNoOp(t *testing.T) {
	svc, _, _ := newService()
	ctx := context.Background()

	if err := svc.RemoveLine(ctx, "missing"); err != nil {
		t.Fatalf("remove absent: %v", err)
	}

	if _, err := svc.AddLine(ctx, line("b1", 1)); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := svc.RemoveLine(ctx, "b1"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := svc.RemoveLine(ctx, "b1"); err != nil {
		t.Fatalf("second remove must be a no-op: %v", err)
	}

	count, _ := svc.Count(ctx)
	if count != 0 {
		t.Fatalf("expected empty cart, got count %d", count)
	}
}

func TestCountSumsQuantities(t *testing.T) {
	svc, _, badges := newService()
	ctx := context.Background()

	if _, err := svc.AddLine(ctx, line("b1", 3)); err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := svc.AddLine(ctx, line("b2", 2)); err != nil {
		t.Fatalf("add: %v", err)
	}

	count, err := svc.Count(ctx)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 5 {
		t.Fatalf("expected count 5, got %d", count)
	}

	// The badge mirrors the count after every mutation.
	badge, err := badges.Get(ctx)
	if err != nil {
		t.Fatalf("badge: %v", err)
	}
	if badge != 5 {
		t.Fatalf("expected badge 5, got %d", badge)
	}
}

func TestPartitionsAreIsolated(t *testing.T) {
	svc, _, _ := newService()
	ctx := context.Background()

	if _, err := svc.AddLine(ctx, line("b1", 2)); err != nil {
		t.Fatalf("add: %v", err)
	}

	if err := svc.SwitchIdentity(ctx, domain.UserIdentity("42")); err != nil {
		t.Fatalf("switch: %v", err)
	}
	lines, err := svc.Lines(ctx)
	if err != nil {
		t.Fatalf("lines: %v", err)
	}
	if len(lines) != 0 {
		t.Fatalf("expected the user's partition to start empty, got %+v", lines)
	}

	if _, err := svc.AddLine(ctx, line("b2", 1)); err != nil {
		t.Fatalf("add: %v", err)
	}

	if err := svc.SwitchIdentity(ctx, domain.Anonymous); err != nil {
		t.Fatalf("switch back: %v", err)
	}
	lines, _ = svc.Lines(ctx)
	if len(lines) != 1 || lines[0].BookID != "b1" || lines[0].Quantity != 2 {
		t.Fatalf("expected untouched guest cart, got %+v", lines)
	}
}

func TestMigrateGuestTo_MergesAndClearsGuest(t *testing.T) {
	svc, repo, _ := newService()
	ctx := context.Background()

	if _, err := svc.AddLine(ctx, line("b1", 6)); err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := svc.AddLine(ctx, line("b2", 1)); err != nil {
		t.Fatalf("add: %v", err)
	}

	// The user's partition already holds b1, so migration must merge and
	// clamp.
	user := domain.UserIdentity("7")
	if err := repo.Save(ctx, user.Key(), domain.PartitionSnapshot{
		SchemaVersion: domain.SnapshotSchemaVersion,
		Lines:         []domain.CartLine{line("b1", 4)},
	}); err != nil {
		t.Fatalf("seed user partition: %v", err)
	}

	if err := svc.MigrateGuestTo(ctx, user); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if svc.Identity() != user {
		t.Fatalf("expected active identity %s, got %s", user, svc.Identity())
	}

	lines, _ := svc.Lines(ctx)
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines after migration, got %+v", lines)
	}
	if lines[0].BookID != "b1" || lines[0].Quantity != domain.MaxLineQuantity {
		t.Fatalf("expected b1 clamped to %d, got %+v", domain.MaxLineQuantity, lines[0])
	}
	if lines[1].BookID != "b2" || lines[1].Quantity != 1 {
		t.Fatalf("expected b2 carried over, got %+v", lines[1])
	}

	guest, err := repo.Load(ctx, domain.Anonymous.Key())
	if err != nil {
		t.Fatalf("load guest: %v", err)
	}
	if len(guest.Lines) != 0 {
		t.Fatalf("expected guest partition emptied, got %+v", guest.Lines)
	}
}

func TestMigrateGuestTo_RejectsAnonymousTarget(t *testing.T) {
	svc, _, _ := newService()
	if err := svc.MigrateGuestTo(context.Background(), domain.Anonymous); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestToOrderDraft_UsesDiscountPriceAndLeavesCartAlone(t *testing.T) {
	svc, _, _ := newService()
	ctx := context.Background()

	l := line("b1", 2)
	l.Price = 30
	l.DiscountPrice = 25.5
	if _, err := svc.AddLine(ctx, l); err != nil {
		t.Fatalf("add: %v", err)
	}

	draft, err := svc.ToOrderDraft(ctx, 42)
	if err != nil {
		t.Fatalf("draft: %v", err)
	}
	if draft.UserID != 42 {
		t.Fatalf("expected owner 42, got %d", draft.UserID)
	}
	if len(draft.Items) != 1 || draft.Items[0].Price != 25.5 || draft.Items[0].Quantity != 2 {
		t.Fatalf("unexpected draft: %+v", draft)
	}

	count, _ := svc.Count(ctx)
	if count != 2 {
		t.Fatalf("draft must not mutate the cart, count %d", count)
	}
}

func TestMutationsSurviveReload(t *testing.T) {
	repo := cartrepo.NewMemory()
	ctx := context.Background()

	first := New(repo, badgerepo.NewMemory(), logDiscard())
	if _, err := first.AddLine(ctx, line("b1", 3)); err != nil {
		t.Fatalf("add: %v", err)
	}

	second := New(repo, badgerepo.NewMemory(), logDiscard())
	lines, err := second.Lines(ctx)
	if err != nil {
		t.Fatalf("lines: %v", err)
	}
	if len(lines) != 1 || lines[0].Quantity != 3 {
		t.Fatalf("expected persisted line to reload, got %+v", lines)
	}
}
