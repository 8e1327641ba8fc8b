// Package catalog is the read side of the bookstore: unauthenticated,
// paginated passthrough to the backend's book and review endpoints.
package catalog

import (
	"context"
	"fmt"

	"bookworm/internal/apiclient"
	"bookworm/internal/domain"
)

type backend interface {
	ListBooks(ctx context.Context, q apiclient.BookListQuery) (domain.Page[domain.Book], error)
	GetBook(ctx context.Context, bookID string) (domain.Book, error)
	FeaturedBooks(ctx context.Context, sortBy string, topK int) ([]domain.Book, error)
	TopDiscountedBooks(ctx context.Context, topK int) ([]domain.Book, error)
	ListReviews(ctx context.Context, bookID string, q apiclient.ReviewListQuery) (domain.Page[domain.Review], error)
}

type authFetcher interface {
	Do(ctx context.Context, req apiclient.Request, out interface{}) error
}

type Service struct {
	api     backend
	session authFetcher
}

func New(api backend, session authFetcher) *Service {
	return &Service{api: api, session: session}
}

func (s *Service) ListBooks(ctx context.Context, q apiclient.BookListQuery) (domain.Page[domain.Book], error) {
	return s.api.ListBooks(ctx, q)
}

func (s *Service) GetBook(ctx context.Context, bookID string) (domain.Book, error) {
	if bookID == "" {
		return domain.Book{}, fmt.Errorf("%w: book id required", domain.ErrInvalidInput)
	}
	return s.api.GetBook(ctx, bookID)
}

func (s *Service) FeaturedBooks(ctx context.Context, sortBy string, topK int) ([]domain.Book, error) {
	return s.api.FeaturedBooks(ctx, sortBy, topK)
}

func (s *Service) TopDiscountedBooks(ctx context.Context, topK int) ([]domain.Book, error) {
	return s.api.TopDiscountedBooks(ctx, topK)
}

func (s *Service) ListReviews(ctx context.Context, bookID string, q apiclient.ReviewListQuery) (domain.Page[domain.Review], error) {
	if bookID == "" {
		return domain.Page[domain.Review]{}, fmt.Errorf("%w: book id required", domain.ErrInvalidInput)
	}
	return s.api.ListReviews(ctx, bookID, q)
}

// CreateReview posts a review through the authenticated fetch path.
func (s *Service) CreateReview(ctx context.Context, bookID string, in apiclient.ReviewInput) (domain.Review, error) {
	if bookID == "" {
		return domain.Review{}, fmt.Errorf("%w: book id required", domain.ErrInvalidInput)
	}
	if in.RatingStar < 1 || in.RatingStar > 5 {
		return domain.Review{}, fmt.Errorf("%w: rating must be 1..5", domain.ErrInvalidInput)
	}
	var review domain.Review
	if err := s.session.Do(ctx, apiclient.ReviewRequest(bookID, in), &review); err != nil {
		return domain.Review{}, err
	}
	return review, nil
}
