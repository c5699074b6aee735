// Package appcontext provides the shared application context interface
// used by all commands.
package appcontext

import (
	"github.com/rs/zerolog"

	"github.com/mutantautomate/mutant"
	"github.com/mutantautomate/mutant/internal/sources/uniprot"
)

// Interface defines the application context interface that commands need.
// The App struct from cmd/mutant/app implements it; tests use Mock.
type Interface interface {
	// Client returns the default client, creating it lazily if needed.
	Client() (mutant.Client, error)

	// ClientWithOptions creates a new client from the configuration plus opts.
	// Later options win, so commands can bind viewers or a different logger.
	ClientWithOptions(opts ...mutant.Option) (mutant.Client, error)

	// UniProt returns a UniProt record client using the configured endpoint.
	UniProt() *uniprot.Client

	// Logger returns the configured logger instance.
	Logger() *zerolog.Logger

	// OutputFormat returns the configured output format (table, json, yaml, markdown).
	OutputFormat() string

	// Version returns the application version string.
	Version() string

	// Commit returns the git commit hash.
	Commit() string

	// Date returns the build date.
	Date() string

	// BuiltBy returns the build system identifier.
	BuiltBy() string
}
