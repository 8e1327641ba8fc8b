package apiclient

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"bookworm/internal/domain"
)

// BookListQuery carries the catalog list filters. Zero values are omitted
// from the request so the backend applies its own defaults.
type BookListQuery struct {
	Page      int
	PageSize  int
	SortBy    string // default|popularity|price_asc|price_desc
	Category  string
	Author    string
	MinRating int
}

func (q BookListQuery) values() url.Values {
	params := url.Values{}
	if q.Page > 0 {
		params.Set("page", strconv.Itoa(q.Page))
	}
	if q.PageSize > 0 {
		params.Set("page_size", strconv.Itoa(q.PageSize))
	}
	if q.SortBy != "" {
		params.Set("sort_by", q.SortBy)
	}
	if q.Category != "" {
		params.Set("category", q.Category)
	}
	if q.Author != "" {
		params.Set("author", q.Author)
	}
	if q.MinRating > 0 {
		params.Set("min_rating", strconv.Itoa(q.MinRating))
	}
	return params
}

// ListBooks fetches one catalog page.
func (c *Client) ListBooks(ctx context.Context, q BookListQuery) (domain.Page[domain.Book], error) {
	var page domain.Page[domain.Book]
	err := c.Do(ctx, Request{
		Method: http.MethodGet,
		Path:   "/books",
		Params: q.values(),
	}, &page)
	return page, err
}

// GetBook fetches one book by id.
func (c *Client) GetBook(ctx context.Context, bookID string) (domain.Book, error) {
	var book domain.Book
	err := c.Do(ctx, Request{
		Method: http.MethodGet,
		Path:   fmt.Sprintf("/book/%s", url.PathEscape(bookID)),
	}, &book)
	return book, err
}

// FeaturedBooks fetches the home-page shelves. sortBy is "recommended" or
// "popular"; topK bounds the result size.
func (c *Client) FeaturedBooks(ctx context.Context, sortBy string, topK int) ([]domain.Book, error) {
	params := url.Values{}
	if sortBy != "" {
		params.Set("sort_by", sortBy)
	}
	if topK > 0 {
		params.Set("top_k", strconv.Itoa(topK))
	}
	var books []domain.Book
	err := c.Do(ctx, Request{
		Method: http.MethodGet,
		Path:   "/books/featured",
		Params: params,
	}, &books)
	return books, err
}

// TopDiscountedBooks fetches the books with the largest discount amounts.
func (c *Client) TopDiscountedBooks(ctx context.Context, topK int) ([]domain.Book, error) {
	params := url.Values{}
	if topK > 0 {
		params.Set("top_k", strconv.Itoa(topK))
	}
	var books []domain.Book
	err := c.Do(ctx, Request{
		Method: http.MethodGet,
		Path:   "/books/top-discounted",
		Params: params,
	}, &books)
	return books, err
}
