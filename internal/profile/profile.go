// Package profile is the minimal shared profile cache: a short-lived bridge
// between a profile-edit flow and other consumers observing the same profile
// without a backend round trip. Purely in-memory — state resets on process
// restart.
package profile

import (
	"github.com/plateful/plateful/internal/model"
	"github.com/plateful/plateful/internal/state"
)

// Store holds the shared in-memory profile snapshot.
type Store struct {
	value    *state.Value[model.Profile]
	notifier *state.Notifier
}

// New creates an empty profile store.
func New() *Store {
	return &Store{
		value:    state.NewValue(model.Profile{}),
		notifier: state.NewNotifier("profile"),
	}
}

// Subscribe registers fn to run after every change.
func (s *Store) Subscribe(fn func()) (unsubscribe func()) {
	return s.notifier.Subscribe(fn)
}

// Update merges the non-nil patch fields into the cached profile.
func (s *Store) Update(patch model.ProfilePatch) {
	s.value.Update(func(p model.Profile) model.Profile {
		patch.Apply(&p)
		return p
	})
	s.notifier.Notify()
}

// UpdateImage sets only the profile image reference.
func (s *Store) UpdateImage(uri string) {
	s.value.Update(func(p model.Profile) model.Profile {
		p.ProfileImage = uri
		return p
	})
	s.notifier.Notify()
}

// Set replaces the whole cached profile.
func (s *Store) Set(p model.Profile) {
	s.value.Store(p)
	s.notifier.Notify()
}

// Snapshot returns the current profile synchronously.
func (s *Store) Snapshot() model.Profile {
	return s.value.Load()
}
