// Package app provides the application context and dependency management
// for the mutant CLI: configuration, logging, the lazily created client and
// lifecycle management.
package app

import (
	"context"
	"net/http"
	"sync"

	"github.com/rs/zerolog"

	"github.com/mutantautomate/mutant"
	"github.com/mutantautomate/mutant/internal/appcontext"
	"github.com/mutantautomate/mutant/internal/cache"
	"github.com/mutantautomate/mutant/internal/output"
	"github.com/mutantautomate/mutant/internal/sources/uniprot"
	"github.com/mutantautomate/mutant/internal/transport"
	"github.com/mutantautomate/mutant/pkg/constants"
	"github.com/mutantautomate/mutant/pkg/errors"
)

// App represents the mutant application with all its dependencies.
type App struct {
	// Version information
	version string
	commit  string
	date    string
	builtBy string

	config *Config
	logger *zerolog.Logger

	// Client instance (lazy-initialized, singleton)
	mu     sync.RWMutex
	client mutant.Client
}

var _ appcontext.Interface = (*App)(nil)

// New creates a new App instance with the given version information.
func New(version, commit, date, builtBy string, opts ...Option) (*App, error) {
	app := &App{
		version: version,
		commit:  commit,
		date:    date,
		builtBy: builtBy,
	}

	config, err := LoadConfig("")
	if err != nil {
		return nil, errors.WrapResource("load", "config", "", err)
	}
	app.config = config

	logger := NewLogger(config)
	app.logger = &logger

	for _, opt := range opts {
		if err := opt(app); err != nil {
			return nil, err
		}
	}

	return app, nil
}

// Version returns the version information.
func (a *App) Version() string {
	return a.version
}

// Commit returns the git commit hash.
func (a *App) Commit() string {
	return a.commit
}

// Date returns the build date.
func (a *App) Date() string {
	return a.date
}

// BuiltBy returns the build system identifier.
func (a *App) BuiltBy() string {
	return a.builtBy
}

// Config returns the application configuration.
func (a *App) Config() *Config {
	return a.config
}

// Logger returns the application logger.
func (a *App) Logger() *zerolog.Logger {
	return a.logger
}

// OutputFormat returns the configured format, detecting one from the
// terminal when none was given.
func (a *App) OutputFormat() string {
	return string(output.DetectFormat(a.config.Format))
}

// Client returns the default client, creating it lazily if needed.
func (a *App) Client() (mutant.Client, error) {
	a.mu.RLock()
	if a.client != nil {
		c := a.client
		a.mu.RUnlock()
		return c, nil
	}
	a.mu.RUnlock()

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.client != nil {
		return a.client, nil
	}

	c, err := mutant.New(a.clientOptions()...)
	if err != nil {
		return nil, errors.WrapResource("create", "client", "", err)
	}
	a.client = c
	return c, nil
}

// ClientWithOptions returns a new client built from the configuration plus
// opts. The caller owns it and must Close it.
func (a *App) ClientWithOptions(opts ...mutant.Option) (mutant.Client, error) {
	c, err := mutant.New(append(a.clientOptions(), opts...)...)
	if err != nil {
		return nil, errors.WrapResource("create", "client", "with custom options", err)
	}
	return c, nil
}

// UniProt returns a UniProt record client for the configured endpoint.
func (a *App) UniProt() *uniprot.Client {
	var store *cache.Cache
	if a.config.CacheTTL > 0 {
		store = cache.New(a.config.CacheTTL, constants.CacheCleanupInterval)
	}
	return uniprot.New(a.config.UniProtURL, store,
		transport.WithHTTPClient(a.httpClient()),
		transport.WithRetries(a.config.MaxRetries),
		transport.WithRateLimit(a.config.RateLimit),
		transport.WithLogger(a.logger),
	)
}

// Shutdown closes the default client, which stops any run in progress.
func (a *App) Shutdown(_ context.Context) error {
	a.mu.Lock()
	c := a.client
	a.client = nil
	a.mu.Unlock()

	if c == nil {
		return nil
	}
	return c.Close()
}

// clientOptions constructs client options from the app configuration.
func (a *App) clientOptions() []mutant.Option {
	return []mutant.Option{
		mutant.WithBackendURL(a.config.BackendURL),
		mutant.WithUniProtURL(a.config.UniProtURL),
		mutant.WithRCSBURL(a.config.RCSBURL),
		mutant.WithAlphaFoldURL(a.config.AlphaFoldURL),
		mutant.WithHTTPClient(a.httpClient()),
		mutant.WithRetries(a.config.MaxRetries),
		mutant.WithRateLimit(a.config.RateLimit),
		mutant.WithCache(a.config.CacheTTL),
		mutant.WithLogger(a.logger),
	}
}

func (a *App) httpClient() *http.Client {
	return &http.Client{Timeout: a.config.HTTPTimeout}
}

// Option is a functional option for configuring the App.
type Option func(*App) error

// WithConfig sets a custom configuration.
func WithConfig(config *Config) Option {
	return func(a *App) error {
		if err := config.Validate(); err != nil {
			return err
		}
		a.config = config
		return nil
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(a *App) error {
		a.logger = logger
		return nil
	}
}

// WithClient sets a custom default client (useful for testing).
func WithClient(c mutant.Client) Option {
	return func(a *App) error {
		a.client = c
		return nil
	}
}
