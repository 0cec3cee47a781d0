// Package favorites maintains the local mirror of the user's saved recipes.
//
// The backend owns the collection; the mirror changes only after a confirmed
// round trip (confirm-then-mutate). Remote failures never escape the action
// API as Go errors — every action resolves to a boolean and leaves a
// human-readable message in Err, so callers branch on return values, not on
// panics or error types.
package favorites

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/plateful/plateful/internal/api"
	"github.com/plateful/plateful/internal/model"
	"github.com/plateful/plateful/internal/state"
)

// DefaultLoadTimeout bounds the one-shot initial load.
const DefaultLoadTimeout = 12 * time.Second

// Store mirrors the remote favorites collection.
type Store struct {
	api         *api.Client
	log         zerolog.Logger
	notifier    *state.Notifier
	loadTimeout time.Duration

	initOnce sync.Once

	mu      sync.Mutex
	recipes []model.FavoriteRecipe
	errMsg  string
	loading bool
	seq     uint64 // last issued load sequence
	applied uint64 // sequence of the last load whose result was applied
}

// Option configures a Store during construction.
type Option func(*Store)

// WithLoadTimeout overrides the initial-load timeout.
func WithLoadTimeout(d time.Duration) Option {
	return func(s *Store) { s.loadTimeout = d }
}

// WithLogger sets the store logger.
func WithLogger(log zerolog.Logger) Option {
	return func(s *Store) { s.log = log }
}

// New creates a favorites store backed by the given API client.
func New(client *api.Client, opts ...Option) *Store {
	s := &Store{
		api:         client,
		log:         zerolog.Nop(),
		notifier:    state.NewNotifier("favorites"),
		loadTimeout: DefaultLoadTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Subscribe registers fn to run after every mirror change.
func (s *Store) Subscribe(fn func()) (unsubscribe func()) {
	return s.notifier.Subscribe(fn)
}

// EnsureLoaded triggers the one-shot background load of the mirror. Only the
// first call across the store's lifetime starts a load; later calls are
// no-ops, so every consumer can call it unconditionally. The load is bounded
// by the load timeout and a timeout surfaces through Err, not a retry.
func (s *Store) EnsureLoaded() {
	s.initOnce.Do(func() {
		s.mu.Lock()
		s.loading = true
		s.mu.Unlock()

		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), s.loadTimeout)
			defer cancel()
			s.load(ctx)
		}()
	})
}

// Refresh synchronously re-fetches the collection. On success the mirror is
// replaced; on failure the last-known mirror is preserved and Err is set.
func (s *Store) Refresh(ctx context.Context) bool {
	return s.load(ctx)
}

// load fetches the remote list and applies it under a sequence check: a
// response belonging to an older load than the one last applied is discarded,
// so a slow response cannot clobber newer state.
func (s *Store) load(ctx context.Context) bool {
	s.mu.Lock()
	s.seq++
	seq := s.seq
	s.loading = true
	s.mu.Unlock()
	s.notifier.Notify()

	list, err := s.api.ListFavorites(ctx)

	s.mu.Lock()
	if seq < s.applied {
		s.mu.Unlock()
		s.log.Debug().Uint64("seq", seq).Msg("favorites: discarding stale load result")
		return false
	}
	s.applied = seq
	s.loading = false
	ok := err == nil
	if ok {
		s.recipes = list
		s.errMsg = ""
	} else {
		s.errMsg = displayError(err)
		s.log.Warn().Err(err).Msg("favorites: load failed")
	}
	s.mu.Unlock()
	s.notifier.Notify()
	return ok
}

// Add saves a recipe remotely and, once confirmed, appends the server's
// record to the mirror. Returns false (with Err set) on failure; the mirror
// is untouched in that case.
func (s *Store) Add(ctx context.Context, recipe model.FavoriteRecipe) bool {
	created, err := s.api.CreateFavorite(ctx, recipe)
	if err != nil {
		s.setError(err)
		return false
	}

	s.mu.Lock()
	s.recipes = append(s.recipes, *created)
	s.errMsg = ""
	s.mu.Unlock()
	s.notifier.Notify()
	return true
}

// Remove deletes a recipe remotely and, once confirmed, filters it out of
// the mirror.
func (s *Store) Remove(ctx context.Context, recipeID string) bool {
	if err := s.api.DeleteFavorite(ctx, recipeID); err != nil {
		s.setError(err)
		return false
	}

	s.mu.Lock()
	kept := s.recipes[:0]
	for _, r := range s.recipes {
		if r.RecipeID != recipeID {
			kept = append(kept, r)
		}
	}
	s.recipes = kept
	s.errMsg = ""
	s.mu.Unlock()
	s.notifier.Notify()
	return true
}

// Update patches a recipe remotely and, once confirmed, merges the patch
// into the matching mirror entry in place.
func (s *Store) Update(ctx context.Context, recipeID string, patch model.RecipePatch) bool {
	if err := s.api.UpdateFavorite(ctx, recipeID, patch); err != nil {
		s.setError(err)
		return false
	}

	s.mu.Lock()
	for i := range s.recipes {
		if s.recipes[i].RecipeID == recipeID {
			patch.Apply(&s.recipes[i])
			break
		}
	}
	s.errMsg = ""
	s.mu.Unlock()
	s.notifier.Notify()
	return true
}

// IsFavorite reports membership against the current mirror. Synchronous —
// this drives bookmark state and must not touch the network.
func (s *Store) IsFavorite(recipeID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.recipes {
		if r.RecipeID == recipeID {
			return true
		}
	}
	return false
}

// Favorites returns a copy of the current mirror.
func (s *Store) Favorites() []model.FavoriteRecipe {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.FavoriteRecipe, len(s.recipes))
	copy(out, s.recipes)
	return out
}

// Err returns the display message from the most recent failed action, or ""
// after a success.
func (s *Store) Err() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.errMsg
}

// Loading reports whether a load is in flight.
func (s *Store) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

func (s *Store) setError(err error) {
	s.mu.Lock()
	s.errMsg = displayError(err)
	s.mu.Unlock()
	s.log.Warn().Err(err).Msg("favorites: action failed")
	s.notifier.Notify()
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
