// Package auth implements the session bootstrap: it listens to auth-state
// transitions from the upstream identity provider, drives the profile fetch
// with bounded retry, and degrades to a fallback profile rather than blocking
// consumers when the backend is unavailable.
package auth

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/plateful/plateful/internal/api"
	"github.com/plateful/plateful/internal/model"
	"github.com/plateful/plateful/internal/state"
	"github.com/plateful/plateful/internal/store"
	"github.com/plateful/plateful/internal/util"
)

const (
	// DefaultRetryDelay is the wait before the single retry of a profile
	// fetch that returned 404 (account not yet provisioned server-side).
	DefaultRetryDelay = 2 * time.Second

	// DefaultRefreshWindow throttles RefreshProfile: calls arriving within
	// the window of the previous refresh are dropped.
	DefaultRefreshWindow = 2 * time.Second
)

// Identity carries the claims the upstream auth provider hands us on a
// state transition. Token is the short-lived bearer token for REST calls.
type Identity struct {
	UID           string
	Email         string
	EmailVerified bool
	Token         string
}

// Session owns the authenticated profile state. It implements api.TokenSource
// so the HTTP client always sees the current token.
type Session struct {
	api      *api.Client
	cache    *store.Store // optional; last-known profile for offline display
	log      zerolog.Logger
	notifier *state.Notifier
	refresh  *rate.Limiter
	delay    time.Duration

	mu       sync.Mutex
	identity *Identity
	profile  *model.Profile
	errMsg   string
}

// Option configures a Session during construction.
type Option func(*Session)

// WithLogger sets the session logger.
func WithLogger(log zerolog.Logger) Option {
	return func(s *Session) { s.log = log }
}

// WithRetryDelay overrides the 404-retry delay.
func WithRetryDelay(d time.Duration) Option {
	return func(s *Session) { s.delay = d }
}

// WithRefreshWindow overrides the refresh throttle window.
func WithRefreshWindow(d time.Duration) Option {
	return func(s *Session) { s.refresh = rate.NewLimiter(rate.Every(d), 1) }
}

// WithProfileCache persists the last-known profile to the local database so
// it survives restarts for offline display.
func WithProfileCache(db *store.Store) Option {
	return func(s *Session) { s.cache = db }
}

// NewSession creates a Session and installs it as the client's token source.
func NewSession(client *api.Client, opts ...Option) *Session {
	s := &Session{
		api:      client,
		log:      zerolog.Nop(),
		notifier: state.NewNotifier("auth"),
		refresh:  rate.NewLimiter(rate.Every(DefaultRefreshWindow), 1),
		delay:    DefaultRetryDelay,
	}
	for _, opt := range opts {
		opt(s)
	}
	client.SetTokenSource(s)
	return s
}

// Token implements api.TokenSource.
func (s *Session) Token(context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.identity == nil {
		return "", nil
	}
	return s.identity.Token, nil
}

// Subscribe registers fn to run after every session change.
func (s *Session) Subscribe(fn func()) (unsubscribe func()) {
	return s.notifier.Subscribe(fn)
}

// ─── Auth-state transitions ───────────────────────────────────────────────────

// HandleSignIn reacts to an upstream sign-in: it captures the identity and
// resolves the profile. A 404 from the profile endpoint is retried once after
// the retry delay; any remaining failure synthesizes a fallback profile from
// the identity claims so consumers are never blocked on the backend.
func (s *Session) HandleSignIn(ctx context.Context, ident Identity) {
	s.mu.Lock()
	s.identity = &ident
	s.mu.Unlock()

	p, err := s.fetchProfile(ctx)
	if err != nil {
		s.log.Warn().Err(err).Str("uid", ident.UID).Msg("auth: profile fetch failed, using fallback")
		fb := fallbackProfile(ident)
		p = &fb
	} else if p.IsPro {
		s.enrichSubscription(ctx, p)
	}

	s.mu.Lock()
	s.profile = p
	s.errMsg = ""
	s.mu.Unlock()

	if s.cache != nil {
		if err := s.cache.PutProfile(*p); err != nil {
			s.log.Warn().Err(err).Msg("auth: caching profile failed")
		}
	}
	s.notifier.Notify()
}

// Attach installs the identity without resolving the profile. Token-bearing
// calls work immediately; the profile arrives on the next refresh or
// HandleSignIn.
func (s *Session) Attach(ident Identity) {
	s.mu.Lock()
	s.identity = &ident
	s.mu.Unlock()
}

// HandleSignOut clears all session state.
func (s *Session) HandleSignOut() {
	s.mu.Lock()
	s.identity = nil
	s.profile = nil
	s.errMsg = ""
	s.mu.Unlock()

	if s.cache != nil {
		if err := s.cache.DeleteProfile(); err != nil {
			s.log.Warn().Err(err).Msg("auth: clearing cached profile failed")
		}
	}
	s.notifier.Notify()
}

// RefreshAuthState re-validates the identity claims (token rotation, email
// verification changes) without touching the profile endpoint.
func (s *Session) RefreshAuthState(ident Identity) {
	s.mu.Lock()
	if s.identity == nil || s.identity.UID != ident.UID {
		s.mu.Unlock()
		return
	}
	s.identity = &ident
	s.mu.Unlock()
	s.notifier.Notify()
}

// ─── Profile operations ───────────────────────────────────────────────────────

// RefreshProfile re-fetches the profile. Calls within the throttle window of
// the previous refresh are dropped and return false; multiple screens may
// call this concurrently without multiplying backend load.
func (s *Session) RefreshProfile(ctx context.Context) bool {
	if !s.refresh.Allow() {
		s.log.Debug().Msg("auth: refresh throttled")
		return false
	}

	s.mu.Lock()
	signedIn := s.identity != nil
	s.mu.Unlock()
	if !signedIn {
		return false
	}

	p, err := s.fetchProfile(ctx)
	if err != nil {
		s.setError(err)
		return false
	}
	if p.IsPro {
		s.enrichSubscription(ctx, p)
	}

	s.mu.Lock()
	s.profile = p
	s.errMsg = ""
	s.mu.Unlock()

	if s.cache != nil {
		_ = s.cache.PutProfile(*p)
	}
	s.notifier.Notify()
	return true
}

// Register creates the backend account. Required fields are validated
// locally first — a validation failure sets Err and skips the network
// entirely. On success the session adopts the server's profile, not the
// submitted input.
func (s *Session) Register(ctx context.Context, form api.ProfileForm) bool {
	if form.Email == "" || form.UserName == "" {
		s.mu.Lock()
		s.errMsg = "email and username are required"
		s.mu.Unlock()
		s.notifier.Notify()
		return false
	}

	p, err := s.api.Register(ctx, form)
	if err != nil {
		s.setError(err)
		return false
	}
	s.adoptProfile(p)
	return true
}

// UpdateProfile submits profile edits and adopts the server's response, so
// server-side normalization (recomputed flags, image URL) wins.
func (s *Session) UpdateProfile(ctx context.Context, form api.ProfileForm) bool {
	p, err := s.api.UpdateProfile(ctx, form)
	if err != nil {
		s.setError(err)
		return false
	}
	s.adoptProfile(p)
	return true
}

// CheckUsername reports whether a username is available. The second return
// is false when the check itself failed.
func (s *Session) CheckUsername(ctx context.Context, userName string) (available, ok bool) {
	available, err := s.api.CheckUsername(ctx, userName)
	if err != nil {
		s.setError(err)
		return false, false
	}
	return available, true
}

// DeleteAccount removes the backend account and clears the session.
func (s *Session) DeleteAccount(ctx context.Context) bool {
	if err := s.api.DeleteAccount(ctx); err != nil {
		s.setError(err)
		return false
	}
	s.HandleSignOut()
	return true
}

// ─── Reads ────────────────────────────────────────────────────────────────────

// Profile returns the current profile and whether one is present.
func (s *Session) Profile() (model.Profile, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.profile == nil {
		return model.Profile{}, false
	}
	return *s.profile, true
}

// CachedProfile returns the last profile persisted for offline display.
func (s *Session) CachedProfile() (model.Profile, bool) {
	if s.cache == nil {
		return model.Profile{}, false
	}
	p, found, err := s.cache.GetProfile()
	if err != nil || !found {
		return model.Profile{}, false
	}
	return p, true
}

// SignedIn reports whether an identity is present.
func (s *Session) SignedIn() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.identity != nil
}

// Err returns the display message from the most recent failed action, or ""
// after a success.
func (s *Session) Err() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.errMsg
}

// ─── Internals ────────────────────────────────────────────────────────────────

// fetchProfile calls the profile endpoint, retrying exactly once after the
// retry delay when the backend answers 404 — a freshly created account may
// not be provisioned yet. All other failures are terminal.
func (s *Session) fetchProfile(ctx context.Context) (*model.Profile, error) {
	var p *model.Profile
	op := func() error {
		var err error
		p, err = s.api.GetProfile(ctx)
		if err == nil {
			return nil
		}
		if api.IsNotFound(err) {
			return err // transient: not yet provisioned
		}
		return backoff.Permanent(err)
	}
	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewConstantBackOff(s.delay), 1), ctx)
	if err := backoff.Retry(op, policy); err != nil {
		return nil, err
	}
	return p, nil
}

// enrichSubscription attaches subscription details to a pro profile.
// Best effort — a failure leaves the profile as-is.
func (s *Session) enrichSubscription(ctx context.Context, p *model.Profile) {
	sub, err := s.api.GetSubscription(ctx)
	if err != nil {
		s.log.Debug().Err(err).Msg("auth: subscription lookup failed")
		return
	}
	p.Subscription = sub
}

func (s *Session) adoptProfile(p *model.Profile) {
	s.mu.Lock()
	s.profile = p
	s.errMsg = ""
	s.mu.Unlock()

	if s.cache != nil {
		_ = s.cache.PutProfile(*p)
	}
	s.notifier.Notify()
}

func (s *Session) setError(err error) {
	s.mu.Lock()
	s.errMsg = displayError(err)
	s.mu.Unlock()
	s.log.Warn().Err(err).Msg("auth: action failed")
	s.notifier.Notify()
}

// fallbackProfile synthesizes the degraded profile from identity claims
// alone. The username derives from the email's local part.
func fallbackProfile(ident Identity) model.Profile {
	return model.Profile{
		UID:               ident.UID,
		Email:             ident.Email,
		UserName:          util.EmailLocalPart(ident.Email),
		IsProfileComplete: false,
	}
}

// displayError converts an action error into the string surfaced to the UI.
func displayError(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "The request took too long. Check your connection and try again."
	case errors.Is(err, context.Canceled):
		return "The request was cancelled."
	}
	var se *api.StatusError
	if errors.As(err, &se) && se.Message != "" {
		return se.Message
	}
	return "Something went wrong. Please try again."
}
