package domain

// MaxLineQuantity is the most copies of a single book a cart may hold.
// Mutations never leave a line above this bound; merges clamp to it.
const MaxLineQuantity = 8

// SnapshotSchemaVersion is the current persisted cart snapshot layout.
const SnapshotSchemaVersion = 1

// CartLine is one distinct book in the basket, with the display and pricing
// fields captured at add time so the cart renders without refetching.
type CartLine struct {
	BookID         string  `json:"book_id"`
	Title          string  `json:"title"`
	CoverURL       string  `json:"cover_url,omitempty"`
	Price          float64 `json:"price"`
	DiscountPrice  float64 `json:"discount_price"`
	CurrencySymbol string  `json:"currency_symbol,omitempty"`
	Quantity       int     `json:"quantity"`
}

// PartitionSnapshot is the durable form of one identity's cart.
// SchemaVersion guards against loading payloads written by an
// incompatible application version.
type PartitionSnapshot struct {
	SchemaVersion int        `json:"schema_version"`
	Lines         []CartLine `json:"lines"`
}

// OrderDraft projects a cart partition into the shape the order endpoint
// accepts. It is derived on demand at checkout and never stored.
type OrderDraft struct {
	UserID int64           `json:"user_id"`
	Items  []OrderDraftRow `json:"items"`
}

type OrderDraftRow struct {
	BookID   string  `json:"book_id"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
}
