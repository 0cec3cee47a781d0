// Package app wires together configuration, the API client, the local
// database, and the sync stores into a single Deps struct that commands
// receive at runtime.
package app

import (
	"os"

	"github.com/rs/zerolog"

	"github.com/plateful/plateful/internal/api"
	"github.com/plateful/plateful/internal/auth"
	"github.com/plateful/plateful/internal/config"
	"github.com/plateful/plateful/internal/diet"
	"github.com/plateful/plateful/internal/favorites"
	"github.com/plateful/plateful/internal/profile"
	"github.com/plateful/plateful/internal/store"
)

// Deps holds all runtime dependencies injected into command Run functions.
type Deps struct {
	Config    *config.Config
	Log       zerolog.Logger
	Client    *api.Client
	Store     *store.Store
	Session   *auth.Session
	Favorites *favorites.Store
	Diet      *diet.Store
	Profile   *profile.Store
}

// New builds a Deps from resolved config, opening the local database and
// constructing every store. One store instance per process.
func New(cfg *config.Config) (*Deps, error) {
	log := newLogger(cfg)

	db, err := store.Open(cfg.DBPath)
	if err != nil {
		return nil, err
	}

	client := api.NewClient(cfg.BaseURL, cfg.Timeout, cfg.Rate, log)
	session := auth.NewSession(client,
		auth.WithLogger(log),
		auth.WithProfileCache(db),
	)
	dietStore, err := diet.New(db,
		diet.WithLogger(log),
		diet.WithWaterTarget(cfg.WaterTarget),
	)
	if err != nil {
		db.Close()
		return nil, err
	}

	profileStore := profile.New()
	// The session owns the authoritative profile; mirror it into the
	// profile store so consumers of either see the same state.
	session.Subscribe(func() {
		if p, ok := session.Profile(); ok {
			profileStore.Set(p)
		}
	})

	return &Deps{
		Config:    cfg,
		Log:       log,
		Client:    client,
		Store:     db,
		Session:   session,
		Favorites: favorites.New(client, favorites.WithLogger(log)),
		Diet:      dietStore,
		Profile:   profileStore,
	}, nil
}

// Identity builds the auth identity from config for CLI-driven sign-in.
func (d *Deps) Identity() auth.Identity {
	return auth.Identity{
		UID:   d.Config.UID,
		Email: d.Config.Email,
		Token: d.Config.Token,
	}
}

// Close releases the local database.
func (d *Deps) Close() error {
	return d.Store.Close()
}

// newLogger builds the process logger from config verbosity flags.
func newLogger(cfg *config.Config) zerolog.Logger {
	level := zerolog.InfoLevel
	switch {
	case cfg.Debug:
		level = zerolog.DebugLevel
	case cfg.Quiet:
		level = zerolog.ErrorLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().Timestamp().Logger()
}
