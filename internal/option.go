package internal

import "github.com/starford/dagaz/internal/sync"

// Option is a functional option for configuring the application.
type Option func(*application)

type application struct {
	config   *Config
	provider sync.Provider
}

// WithConfig sets the application configuration.
func WithConfig(cfg *Config) Option {
	return func(a *application) {
		a.config = cfg
	}
}

// WithSyncProvider injects a pre-built sync provider, bypassing the
// registry lookup. Used by tests.
func WithSyncProvider(p sync.Provider) Option {
	return func(a *application) {
		a.provider = p
	}
}
