package domain

import "time"

// Book mirrors the backend's book resource. Prices are decimal values as the
// API serializes them; the client never does money arithmetic beyond
// projecting them into an order draft.
type Book struct {
	ID            string   `json:"id"`
	Title         string   `json:"book_title"`
	Summary       string   `json:"book_summary,omitempty"`
	Price         float64  `json:"book_price"`
	DiscountPrice *float64 `json:"discount_price,omitempty"`
	CoverPhoto    string   `json:"book_cover_photo,omitempty"`
	CategoryID    int64    `json:"category_id"`
	AuthorID      int64    `json:"author_id"`
	AuthorName    string   `json:"author_name,omitempty"`
	AvgRating     float64  `json:"avg_rating,omitempty"`
	ReviewCount   int      `json:"review_count,omitempty"`
}

// EffectivePrice returns the discounted price when one is set.
func (b Book) EffectivePrice() float64 {
	if b.DiscountPrice != nil {
		return *b.DiscountPrice
	}
	return b.Price
}

// Review is one customer review of a book.
type Review struct {
	ID         string    `json:"id"`
	BookID     string    `json:"book_id"`
	Title      string    `json:"review_title"`
	Details    string    `json:"review_details,omitempty"`
	RatingStar int       `json:"rating_star"`
	Date       time.Time `json:"review_date"`
}

// User is the profile shape returned by the users/me endpoint.
type User struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Admin     bool   `json:"admin,omitempty"`
}
