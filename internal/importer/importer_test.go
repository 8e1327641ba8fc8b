package importer

import (
	"context"
	"strings"
	"testing"

	"bookworm/internal/domain"
)

type stubCartRepo struct {
	snapshots map[string]domain.PartitionSnapshot
}

func newStubCartRepo() *stubCartRepo {
	return &stubCartRepo{snapshots: make(map[string]domain.PartitionSnapshot)}
}

func (s *stubCartRepo) Load(_ context.Context, identityKey string) (*domain.PartitionSnapshot, error) {
	snap, ok := s.snapshots[identityKey]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &snap, nil
}

func (s *stubCartRepo) Save(_ context.Context, identityKey string, snap domain.PartitionSnapshot) error {
	s.snapshots[identityKey] = snap
	return nil
}

func TestCSVImporter_Run(t *testing.T) {
	csvData := `identity_key,book_id,title,cover_url,price,discount_price,currency_symbol,quantity
user:7,b1,The Go Programming Language,https://example.com/b1.jpg,39.99,29.99,$,2
user:7,b2,Designing Data-Intensive Applications,https://example.com/b2.jpg,49.99,,$,1
user:7,b1,The Go Programming Language,https://example.com/b1.jpg,39.99,29.99,$,3
anonymous,b3,The Pragmatic Programmer,,44.95,39.95,$,12`

	repo := newStubCartRepo()
	imp := NewCSVImporter(strings.NewReader(csvData), repo)

	count, err := imp.Run(context.Background())
	if err != nil {
		t.Fatalf("import run: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 partitions written, got %d", count)
	}

	user := repo.snapshots["user:7"]
	if user.SchemaVersion != domain.SnapshotSchemaVersion {
		t.Fatalf("expected schema version %d, got %d", domain.SnapshotSchemaVersion, user.SchemaVersion)
	}
	if len(user.Lines) != 2 {
		t.Fatalf("expected 2 merged lines, got %d", len(user.Lines))
	}
	if user.Lines[0].BookID != "b1" || user.Lines[0].Quantity != 5 {
		t.Fatalf("expected b1 quantity 5, got %+v", user.Lines[0])
	}
	if user.Lines[1].BookID != "b2" || user.Lines[1].DiscountPrice != 49.99 {
		t.Fatalf("expected b2 discount to default to price, got %+v", user.Lines[1])
	}

	anon := repo.snapshots["anonymous"]
	if len(anon.Lines) != 1 || anon.Lines[0].Quantity != domain.MaxLineQuantity {
		t.Fatalf("expected anonymous b3 clamped to %d, got %+v", domain.MaxLineQuantity, anon.Lines)
	}
}

func TestCSVImporter_MergesIntoExistingPartition(t *testing.T) {
	repo := newStubCartRepo()
	repo.snapshots["user:7"] = domain.PartitionSnapshot{
		SchemaVersion: domain.SnapshotSchemaVersion,
		Lines: []domain.CartLine{
			{BookID: "b1", Title: "The Go Programming Language", Quantity: 6},
		},
	}

	csvData := `identity_key,book_id,title,price,quantity
user:7,b1,The Go Programming Language,39.99,4
user:7,b2,Designing Data-Intensive Applications,49.99,1`

	imp := NewCSVImporter(strings.NewReader(csvData), repo)
	if _, err := imp.Run(context.Background()); err != nil {
		t.Fatalf("import run: %v", err)
	}

	snap := repo.snapshots["user:7"]
	if len(snap.Lines) != 2 {
		t.Fatalf("expected 2 lines after merge, got %d", len(snap.Lines))
	}
	if snap.Lines[0].Quantity != domain.MaxLineQuantity {
		t.Fatalf("expected existing b1 clamped to %d, got %d", domain.MaxLineQuantity, snap.Lines[0].Quantity)
	}
}

func TestCSVImporter_RejectsBadIdentity(t *testing.T) {
	csvData := `identity_key,book_id,title,price,quantity
guest-42,b1,Some Book,10,1`

	imp := NewCSVImporter(strings.NewReader(csvData), newStubCartRepo())
	if _, err := imp.Run(context.Background()); err == nil {
		t.Fatal("expected error for malformed identity key")
	}
}

func TestCSVImporter_RejectsBadQuantity(t *testing.T) {
	csvData := `identity_key,book_id,title,price,quantity
user:7,b1,Some Book,10,zero`

	imp := NewCSVImporter(strings.NewReader(csvData), newStubCartRepo())
	if _, err := imp.Run(context.Background()); err == nil {
		t.Fatal("expected error for non-numeric quantity")
	}
}
