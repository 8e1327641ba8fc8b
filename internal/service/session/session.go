// Package session owns the access credential lifecycle: bootstrap, login,
// logout, proactive renewal, and the refresh-and-replay path every
// authenticated backend call goes through.
package session

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"bookworm/internal/apiclient"
	"bookworm/internal/domain"
	tokenrepo "bookworm/internal/repository/token"
	"golang.org/x/sync/singleflight"
)

// State is the manager's position in the credential lifecycle.
type State string

const (
	StateUninitialized State = "uninitialized"
	StateBootstrapping State = "bootstrapping"
	StateAuthenticated State = "authenticated"
	StateAnonymous     State = "anonymous"
	StateRefreshing    State = "refreshing"
	StateLoggingOut    State = "logging_out"
)

// DefaultRefreshLeeway is how long before expiry the proactive renewal fires.
const DefaultRefreshLeeway = 10 * time.Second

// IdentityChange describes one identity transition. ViaLogin is true only
// for an interactive login; bootstrap resolving an existing session, logout,
// and refresh failure all report false, so listeners can tell a genuine
// guest-to-user login apart from a page-reload equivalent.
type IdentityChange struct {
	Previous domain.Identity
	Current  domain.Identity
	ViaLogin bool
}

// Listener receives identity transitions. Listeners run synchronously on
// the goroutine that caused the transition.
type Listener func(ctx context.Context, change IdentityChange)

type backend interface {
	Login(ctx context.Context, username, password string) (apiclient.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (apiclient.TokenPair, error)
	Logout(ctx context.Context, bearer, refreshToken string) error
	Do(ctx context.Context, req apiclient.Request, out interface{}) error
}

// Manager maintains exactly one valid credential at a time. All refresh
// coordination lives on the instance; callers share a Manager by injection,
// never through package state.
type Manager struct {
	api    backend
	tokens tokenrepo.Repository
	logger *log.Logger
	leeway time.Duration

	mu           sync.Mutex
	state        State
	cred         *domain.Credential
	refreshToken string
	renewTimer   *time.Timer
	listeners    []Listener

	sfg singleflight.Group
}

// Option tweaks Manager construction.
type Option func(*Manager)

// WithRefreshLeeway overrides how long before expiry renewal is scheduled.
func WithRefreshLeeway(d time.Duration) Option {
	return func(m *Manager) { m.leeway = d }
}

func New(api backend, tokens tokenrepo.Repository, logger *log.Logger, opts ...Option) *Manager {
	m := &Manager{
		api:    api,
		tokens: tokens,
		logger: logger,
		leeway: DefaultRefreshLeeway,
		state:  StateUninitialized,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// OnIdentityChange registers a listener. Register before Bootstrap so no
// transition is missed.
func (m *Manager) OnIdentityChange(l Listener) {
	m.mu.Lock()
	m.listeners = append(m.listeners, l)
	m.mu.Unlock()
}

// State returns the current lifecycle state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Identity returns the identity derived from the current credential.
func (m *Manager) Identity() domain.Identity {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.identityLocked()
}

func (m *Manager) identityLocked() domain.Identity {
	if m.cred == nil {
		return domain.Anonymous
	}
	return domain.UserIdentity(m.cred.Subject)
}

// Bootstrap attempts to silently resume a session from the stored refresh
// credential. "No session" is a normal outcome, not an error; only
// infrastructure faults (e.g. storage unreachable) are returned.
func (m *Manager) Bootstrap(ctx context.Context) error {
	m.mu.Lock()
	m.state = StateBootstrapping
	m.mu.Unlock()

	stored, err := m.tokens.Get(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			m.setAnonymous(ctx, false)
			return nil
		}
		m.setAnonymous(ctx, false)
		return fmt.Errorf("load refresh credential: %w", err)
	}

	pair, err := m.api.Refresh(ctx, stored.Token)
	if err != nil {
		// The stored credential is stale or revoked; discard it quietly.
		m.logger.Printf("session bootstrap: silent refresh rejected: %v", err)
		if derr := m.tokens.Delete(ctx); derr != nil {
			m.logger.Printf("session bootstrap: drop stale refresh credential: %v", derr)
		}
		m.setAnonymous(ctx, false)
		return nil
	}

	if err := m.install(ctx, pair, false); err != nil {
		m.setAnonymous(ctx, false)
		return err
	}
	return nil
}

// Login authenticates with the backend. Invalid credentials surface as
// domain.ErrInvalidCredentials with the state left Anonymous; any prior
// session is already gone by then. A successful login that follows an
// anonymous session reports ViaLogin to listeners exactly once.
func (m *Manager) Login(ctx context.Context, username, password string) error {
	pair, err := m.api.Login(ctx, username, password)
	if err != nil {
		m.setAnonymous(ctx, false)
		if apiclient.IsStatus(err, 401) {
			return domain.ErrInvalidCredentials
		}
		return fmt.Errorf("login: %w", err)
	}
	return m.install(ctx, pair, true)
}

// Logout clears local session state first and unconditionally, then makes a
// best-effort backend notification. A failed notification is logged and
// swallowed; logout is locally successful regardless.
func (m *Manager) Logout(ctx context.Context) {
	m.mu.Lock()
	m.state = StateLoggingOut
	bearer := ""
	if m.cred != nil {
		bearer = m.cred.AccessToken
	}
	refresh := m.refreshToken
	m.mu.Unlock()

	if err := m.tokens.Delete(ctx); err != nil {
		m.logger.Printf("session logout: delete refresh credential: %v", err)
	}
	m.setAnonymous(ctx, false)

	if bearer == "" {
		return
	}
	if err := m.api.Logout(ctx, bearer, refresh); err != nil {
		m.logger.Printf("session logout: backend notify failed: %v", err)
	}
}

// Do performs an authenticated backend call. With no authenticated session
// it fails fast without touching the network. A 401 triggers exactly one
// shared refresh followed by one replay; if the refresh fails the session
// is demoted to Anonymous and the caller sees domain.ErrAuthRequired.
func (m *Manager) Do(ctx context.Context, req apiclient.Request, out interface{}) error {
	m.mu.Lock()
	if m.cred == nil {
		m.mu.Unlock()
		return domain.ErrAuthRequired
	}
	req.Bearer = m.cred.AccessToken
	m.mu.Unlock()

	err := m.api.Do(ctx, req, out)
	if err == nil || !apiclient.IsStatus(err, 401) {
		return err
	}

	access, rerr := m.refresh(ctx)
	if rerr != nil {
		return fmt.Errorf("%w: refresh after 401 failed", domain.ErrAuthRequired)
	}
	req.Bearer = access
	return m.api.Do(ctx, req, out)
}

// refresh renews the credential. Concurrent callers share one in-flight
// backend refresh; everyone observes the same outcome.
func (m *Manager) refresh(ctx context.Context) (string, error) {
	v, err, _ := m.sfg.Do("refresh", func() (interface{}, error) {
		m.mu.Lock()
		refreshToken := m.refreshToken
		if refreshToken == "" {
			m.mu.Unlock()
			return "", domain.ErrAuthRequired
		}
		m.state = StateRefreshing
		m.mu.Unlock()

		pair, err := m.api.Refresh(ctx, refreshToken)
		if err != nil {
			// Terminal for this credential: demote and clean up.
			m.logger.Printf("session refresh failed: %v", err)
			if derr := m.tokens.Delete(ctx); derr != nil {
				m.logger.Printf("session refresh: delete refresh credential: %v", derr)
			}
			m.setAnonymous(ctx, false)
			return "", fmt.Errorf("%w: %v", domain.ErrAuthRequired, err)
		}

		if err := m.install(ctx, pair, false); err != nil {
			m.setAnonymous(ctx, false)
			return "", err
		}
		return pair.AccessToken, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

// install decodes and adopts a fresh token pair, persists the rotated
// refresh credential, and (re)schedules proactive renewal.
func (m *Manager) install(ctx context.Context, pair apiclient.TokenPair, viaLogin bool) error {
	cred, err := decodeCredential(pair.AccessToken)
	if err != nil {
		return fmt.Errorf("decode access token: %w", err)
	}

	m.mu.Lock()
	prev := m.identityLocked()
	m.cred = &cred
	m.refreshToken = pair.RefreshToken
	m.state = StateAuthenticated
	next := m.identityLocked()
	m.scheduleRenewalLocked(cred.ExpiresAt)
	m.mu.Unlock()

	if err := m.tokens.Put(ctx, pair.RefreshToken); err != nil {
		m.logger.Printf("session: persist refresh credential: %v", err)
	}

	if prev != next {
		m.notify(ctx, IdentityChange{Previous: prev, Current: next, ViaLogin: viaLogin})
	}
	return nil
}

// setAnonymous drops the credential and renders the session anonymous.
func (m *Manager) setAnonymous(ctx context.Context, viaLogin bool) {
	m.mu.Lock()
	prev := m.identityLocked()
	m.cred = nil
	m.refreshToken = ""
	m.state = StateAnonymous
	m.cancelRenewalLocked()
	m.mu.Unlock()

	if !prev.IsAnonymous() {
		m.notify(ctx, IdentityChange{Previous: prev, Current: domain.Anonymous, ViaLogin: viaLogin})
	}
}

func (m *Manager) scheduleRenewalLocked(expiresAt time.Time) {
	m.cancelRenewalLocked()
	d := time.Until(expiresAt) - m.leeway
	if d <= 0 {
		return
	}
	m.renewTimer = time.AfterFunc(d, func() {
		if _, err := m.refresh(context.Background()); err != nil {
			m.logger.Printf("session proactive renewal: %v", err)
		}
	})
}

func (m *Manager) cancelRenewalLocked() {
	if m.renewTimer != nil {
		m.renewTimer.Stop()
		m.renewTimer = nil
	}
}

// Close cancels the renewal timer. The credential itself is left in place;
// teardown is not a logout.
func (m *Manager) Close() {
	m.mu.Lock()
	m.cancelRenewalLocked()
	m.mu.Unlock()
}

func (m *Manager) notify(ctx context.Context, change IdentityChange) {
	m.mu.Lock()
	listeners := append([]Listener(nil), m.listeners...)
	m.mu.Unlock()
	for _, l := range listeners {
		l(ctx, change)
	}
}
