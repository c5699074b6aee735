package appcontext

import (
	"github.com/rs/zerolog"

	"github.com/mutantautomate/mutant"
	"github.com/mutantautomate/mutant/internal/sources/uniprot"
)

// Mock provides a mock implementation of Interface for testing.
// Each method can be customized by setting the corresponding function field.
// If a function field is nil, the method returns a default/zero value.
//
// Example Usage:
//
//	mock := &appcontext.Mock{
//	    ClientWithOptionsFunc: func(opts ...mutant.Option) (mutant.Client, error) {
//	        return mutant.New(append(testOptions, opts...)...)
//	    },
//	}
//	cmd := run.NewCommand(mock)
type Mock struct {
	ClientFunc            func() (mutant.Client, error)
	ClientWithOptionsFunc func(opts ...mutant.Option) (mutant.Client, error)
	UniProtFunc           func() *uniprot.Client
	LoggerFunc            func() *zerolog.Logger
	OutputFormatFunc      func() string
	VersionFunc           func() string
	CommitFunc            func() string
	DateFunc              func() string
	BuiltByFunc           func() string
}

// Client returns a client using ClientFunc, then ClientWithOptionsFunc, or nil.
func (m *Mock) Client() (mutant.Client, error) {
	if m.ClientFunc != nil {
		return m.ClientFunc()
	}
	if m.ClientWithOptionsFunc != nil {
		return m.ClientWithOptionsFunc()
	}
	return nil, nil
}

// ClientWithOptions returns a client using the mock function or nil.
func (m *Mock) ClientWithOptions(opts ...mutant.Option) (mutant.Client, error) {
	if m.ClientWithOptionsFunc != nil {
		return m.ClientWithOptionsFunc(opts...)
	}
	return nil, nil
}

// UniProt returns a UniProt client using the mock function or one for the
// public endpoint.
func (m *Mock) UniProt() *uniprot.Client {
	if m.UniProtFunc != nil {
		return m.UniProtFunc()
	}
	return uniprot.New("", nil)
}

// Logger returns a logger using the mock function or a no-op logger.
func (m *Mock) Logger() *zerolog.Logger {
	if m.LoggerFunc != nil {
		return m.LoggerFunc()
	}
	logger := zerolog.Nop()
	return &logger
}

// OutputFormat returns output format using the mock function or "table".
func (m *Mock) OutputFormat() string {
	if m.OutputFormatFunc != nil {
		return m.OutputFormatFunc()
	}
	return "table"
}

// Version returns version using the mock function or "dev".
func (m *Mock) Version() string {
	if m.VersionFunc != nil {
		return m.VersionFunc()
	}
	return "dev"
}

// Commit returns commit using the mock function or "unknown".
func (m *Mock) Commit() string {
	if m.CommitFunc != nil {
		return m.CommitFunc()
	}
	return "unknown"
}

// Date returns date using the mock function or "unknown".
func (m *Mock) Date() string {
	if m.DateFunc != nil {
		return m.DateFunc()
	}
	return "unknown"
}

// BuiltBy returns builtBy using the mock function or "test".
func (m *Mock) BuiltBy() string {
	if m.BuiltByFunc != nil {
		return m.BuiltByFunc()
	}
	return "test"
}

// Ensure Mock implements Interface at compile time.
var _ Interface = (*Mock)(nil)
