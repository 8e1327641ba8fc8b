// Package apiclient is the thin client for the Bookworm REST backend. It
// owns URL building, JSON encoding and status-to-error mapping; it knows
// nothing about credentials beyond attaching a bearer string it is handed.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"
)

// Client talks to the external Bookworm API. Requests carry no client-side
// timeout; callers bound them with the context.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *log.Logger
}

// New builds a Client for the given API base URL, e.g. "https://host/api".
func New(baseURL string, logger *log.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
		logger:     logger,
	}
}

// WithHTTPClient replaces the underlying transport. Used by tests.
func (c *Client) WithHTTPClient(h *http.Client) *Client {
	c.httpClient = h
	return c
}

// Request describes one backend call. Form wins over Body when both are set.
type Request struct {
	Method string
	Path   string
	Params url.Values
	Body   interface{}
	Form   url.Values
	Bearer string
}

// APIError is a non-2xx backend response. Raw keeps the response body so
// callers can extract structured failure details (e.g. rejected order rows).
type APIError struct {
	StatusCode int
	Message    string
	Raw        []byte
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api: %d %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("api: status %d", e.StatusCode)
}

// IsStatus reports whether err is an *APIError with the given status code.
func IsStatus(err error, code int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == code
}

// Do performs one backend call and decodes a 2xx JSON body into out when
// out is non-nil. A 204 leaves out untouched. Non-2xx responses become
// *APIError; transport failures are returned wrapped.
func (c *Client) Do(ctx context.Context, req Request, out interface{}) error {
	u := c.baseURL + req.Path
	if len(req.Params) > 0 {
		u += "?" + req.Params.Encode()
	}

	var body io.Reader
	contentType := ""
	switch {
	case req.Form != nil:
		body = strings.NewReader(req.Form.Encode())
		contentType = "application/x-www-form-urlencoded"
	case req.Body != nil:
		buf, err := json.Marshal(req.Body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		body = bytes.NewReader(buf)
		contentType = "application/json"
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, u, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("X-Request-ID", uuid.NewString())
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}
	if req.Bearer != "" {
		httpReq.Header.Set("Authorization", "Bearer "+req.Bearer)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("%s %s: %w", req.Method, req.Path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Raw: raw, Message: detailMessage(raw)}
		if c.logger != nil {
			c.logger.Printf("%s %s failed: %v", req.Method, req.Path, apiErr)
		}
		return apiErr
	}

	if out == nil || resp.StatusCode == http.StatusNoContent || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// detailMessage pulls a human-readable message out of the backend's error
// envelope, which is either {"detail": "..."} or {"detail": {"message":
// "...", ...}}.
func detailMessage(raw []byte) string {
	var envelope struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil || len(envelope.Detail) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(envelope.Detail, &s); err == nil {
		return s
	}
	var obj struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(envelope.Detail, &obj); err == nil {
		return obj.Message
	}
	return ""
}
