// Package logging provides structured logging for the mutant client using zerolog.
// Terminals get human-readable console output; everything else gets JSON lines
// that can be shipped alongside the run diagnostics.
//
// Example usage:
//
//	log := logging.Default()
//	log.Info().Str("gene", "NLGN1").Msg("Starting analysis run")
//
//	ctx := logging.WithLogger(context.Background(), log)
//	ctx = logging.WithRunID(ctx, runID)
//	logging.FromContext(ctx).Debug().Msg("Stream opened")
package logging

import (
	"os"
	"sync"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Environment variables read by the default logger.
const (
	EnvLevel  = "MUTANT_LOG_LEVEL"
	EnvFormat = "MUTANT_LOG_FORMAT"
)

var (
	defaultMu     sync.RWMutex
	defaultLogger = NewLoggerFromConfig(envConfig())
)

// envConfig is DefaultConfig with the MUTANT_LOG_* overrides applied.
func envConfig() *Config {
	cfg := DefaultConfig()
	if level := os.Getenv(EnvLevel); level != "" {
		cfg.Level = level
	}
	if format := os.Getenv(EnvFormat); format != "" {
		cfg.Format = format
	}
	return cfg
}

// Default returns the process-wide logger used when a context carries none.
func Default() *zerolog.Logger {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return &defaultLogger
}

// SetDefault replaces the process-wide logger, including zerolog's global
// log.Logger.
func SetDefault(logger zerolog.Logger) {
	defaultMu.Lock()
	defaultLogger = logger
	defaultMu.Unlock()
	log.Logger = logger
}

func isTerminal(f *os.File) bool {
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
