// Package checkout turns the cart into an order submission and applies the
// backend's verdict back onto the cart: full success clears it, a rejection
// naming specific books prunes only those lines.
package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strconv"

	"bookworm/internal/apiclient"
	"bookworm/internal/domain"
)

type cartStore interface {
	ToOrderDraft(ctx context.Context, ownerID int64) (domain.OrderDraft, error)
	Clear(ctx context.Context) error
	RemoveLines(ctx context.Context, bookIDs []string) error
}

type authFetcher interface {
	Do(ctx context.Context, req apiclient.Request, out interface{}) error
}

// ErrEmptyCart rejects a checkout with nothing in the basket.
var ErrEmptyCart = errors.New("cart is empty")

// RejectedLinesError reports an order rejection that identified specific
// offending books (e.g. now out of stock). The named lines have already
// been pruned from the cart; the rest were preserved for retry.
type RejectedLinesError struct {
	BookIDs []string
	Message string
}

func (e *RejectedLinesError) Error() string {
	return fmt.Sprintf("order rejected %d line(s): %s", len(e.BookIDs), e.Message)
}

type Service struct {
	cart    cartStore
	session authFetcher
	logger  *log.Logger
}

func New(cart cartStore, session authFetcher, logger *log.Logger) *Service {
	return &Service{cart: cart, session: session, logger: logger}
}

// Submit builds the order draft and sends it through the authenticated
// fetch path. The cart is cleared only after the backend confirms success.
func (s *Service) Submit(ctx context.Context, ownerID int64) error {
	draft, err := s.cart.ToOrderDraft(ctx, ownerID)
	if err != nil {
		return err
	}
	if len(draft.Items) == 0 {
		return ErrEmptyCart
	}

	if err := s.session.Do(ctx, apiclient.OrderRequest(draft), nil); err != nil {
		if rejected := rejectedBookIDs(err); len(rejected) > 0 {
			if perr := s.cart.RemoveLines(ctx, rejected); perr != nil {
				s.logger.Printf("checkout: prune rejected lines: %v", perr)
			}
			var apiErr *apiclient.APIError
			msg := ""
			if errors.As(err, &apiErr) {
				msg = apiErr.Message
			}
			return &RejectedLinesError{BookIDs: rejected, Message: msg}
		}
		return fmt.Errorf("submit order: %w", err)
	}

	if err := s.cart.Clear(ctx); err != nil {
		return fmt.Errorf("clear cart after order: %w", err)
	}
	return nil
}

// rejectedBookIDs extracts the offending book ids from the backend's order
// failure envelope: {"detail": {"message": ..., "errors": [{"book_id": ...,
// "error": ...}]}}. Anything else yields nil.
func rejectedBookIDs(err error) []string {
	var apiErr *apiclient.APIError
	if !errors.As(err, &apiErr) || len(apiErr.Raw) == 0 {
		return nil
	}

	var envelope struct {
		Detail struct {
			Errors []struct {
				BookID json.RawMessage `json:"book_id"`
			} `json:"errors"`
		} `json:"detail"`
	}
	if jerr := json.Unmarshal(apiErr.Raw, &envelope); jerr != nil {
		return nil
	}

	var ids []string
	for _, row := range envelope.Detail.Errors {
		// The backend serializes book ids as bare numbers; older revisions
		// quoted them. Accept both.
		id := string(row.BookID)
		if unquoted, uerr := strconv.Unquote(id); uerr == nil {
			id = unquoted
		}
		if id == "" {
			continue
		}
		ids = append(ids, id)
	}
	return ids
}
