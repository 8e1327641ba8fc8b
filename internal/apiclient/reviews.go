package apiclient

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"bookworm/internal/domain"
)

// ReviewListQuery carries review list paging and sorting.
type ReviewListQuery struct {
	Page     int
	PageSize int
	SortBy   string // newest|oldest
	Rating   int    // filter to one star value when > 0
}

// ListReviews fetches one page of a book's reviews.
func (c *Client) ListReviews(ctx context.Context, bookID string, q ReviewListQuery) (domain.Page[domain.Review], error) {
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
	if q.Rating > 0 {
		params.Set("rating_star", strconv.Itoa(q.Rating))
	}

	var page domain.Page[domain.Review]
	err := c.Do(ctx, Request{
		Method: http.MethodGet,
		Path:   fmt.Sprintf("/book/%s/reviews", url.PathEscape(bookID)),
		Params: params,
	}, &page)
	return page, err
}

// ReviewInput is the create-review payload.
type ReviewInput struct {
	Title      string `json:"review_title"`
	Details    string `json:"review_details,omitempty"`
	RatingStar int    `json:"rating_star"`
}

// ReviewRequest builds the authenticated create-review request for the
// session manager to execute.
func ReviewRequest(bookID string, in ReviewInput) Request {
	return Request{
		Method: http.MethodPost,
		Path:   fmt.Sprintf("/book/%s/reviews", url.PathEscape(bookID)),
		Body:   in,
	}
}

// MeRequest builds the authenticated profile fetch.
func MeRequest() Request {
	return Request{Method: http.MethodGet, Path: "/users/me"}
}

// OrderRequest builds the authenticated order submission.
func OrderRequest(draft domain.OrderDraft) Request {
	return Request{Method: http.MethodPost, Path: "/order", Body: draft}
}
