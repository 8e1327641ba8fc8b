package apiclient

import (
	"context"
	"net/http"
	"net/url"
)

// TokenPair is the backend's login/refresh response.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}

// Login exchanges username/password for a token pair. The endpoint takes an
// OAuth2 password form, not JSON.
func (c *Client) Login(ctx context.Context, username, password string) (TokenPair, error) {
	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)

	var pair TokenPair
	err := c.Do(ctx, Request{
		Method: http.MethodPost,
		Path:   "/auth/login",
		Form:   form,
	}, &pair)
	return pair, err
}

// Refresh exchanges a refresh token for a new token pair. Both tokens are
// rotated on every refresh.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (TokenPair, error) {
	var pair TokenPair
	err := c.Do(ctx, Request{
		Method: http.MethodPost,
		Path:   "/auth/refresh",
		Body:   map[string]string{"refresh_token": refreshToken},
	}, &pair)
	return pair, err
}

// Logout notifies the backend that the session is over. Callers treat
// failures as non-fatal; local state is already cleared by then.
func (c *Client) Logout(ctx context.Context, bearer, refreshToken string) error {
	body := map[string]string{}
	if refreshToken != "" {
		body["refresh_token"] = refreshToken
	}
	return c.Do(ctx, Request{
		Method: http.MethodPost,
		Path:   "/auth/logout",
		Body:   body,
		Bearer: bearer,
	}, nil)
}
