// Package serve provides the serve command, which exposes a client over HTTP
// with live viewer commands on a WebSocket and run updates over SSE.
package serve

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/mutantautomate/mutant"
	"github.com/mutantautomate/mutant/internal/appcontext"
	"github.com/mutantautomate/mutant/internal/server"
	ws "github.com/mutantautomate/mutant/internal/server/websocket"
	"github.com/mutantautomate/mutant/pkg/errors"
)

// APIKeyEnv is read when --api-key is not given.
const APIKeyEnv = "MUTANT_API_KEY"

const shutdownTimeout = 30 * time.Second

// NewCommand creates the serve command.
func NewCommand(app appcontext.Interface) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "serve",
		GroupID: "core",
		Short:   "Serve the analysis client over HTTP",
		Long: `Serve starts an HTTP server around a single analysis client.

Endpoints (under --prefix):
  POST   /runs                          start a run
  DELETE /runs/current                  stop the current run
  GET    /state, /events, /sequence     client state
  GET    /blobs/{kind}                  raw, trimmed or mutated structure
  POST   /isoforms/{id}/sequence        fetch an isoform sequence
  POST   /isoforms/{id}/structure       load an experimental structure
  POST   /isoforms/{id}/prediction      load a predicted structure
  POST   /mutate, /zoom                 mutate or highlight
  GET    /updates/stream                updates as Server-Sent Events
  GET    /viewer/ws                     viewer commands over WebSocket
  GET    /health, /stats, /examples

Viewer commands for the trimmed and mutated slots are broadcast to every
WebSocket client; a new client receives a redraw of the loaded models.`,
		Example: `  mutant serve
  mutant serve --port 3000 --cors
  mutant serve --auth --api-key secret --rate-limit 60`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := parseConfig(cmd)
			if err != nil {
				return err
			}
			return run(cmd.Context(), app, cfg)
		},
	}

	defaults := server.DefaultConfig()
	flags := cmd.Flags()
	flags.IntP("port", "p", defaults.Port, "Server port")
	flags.String("host", defaults.Host, "Bind address")
	flags.String("prefix", defaults.PathPrefix, "API path prefix")

	flags.Bool("cors", false, "Enable CORS for all origins")
	flags.StringSlice("cors-origins", []string{}, "Allowed CORS origins (comma-separated)")

	flags.Bool("auth", false, "Enable API key authentication")
	flags.String("auth-header", defaults.AuthHeader, "Authentication header name")
	flags.String("api-key", "", "API key (default $"+APIKeyEnv+")")

	flags.Int("rate-limit", defaults.RateLimit, "Requests per minute per IP (0 to disable)")

	flags.Duration("read-timeout", defaults.ReadTimeout, "HTTP read timeout")
	flags.Duration("write-timeout", defaults.WriteTimeout, "HTTP write timeout (0 keeps streams open)")
	flags.Duration("idle-timeout", defaults.IdleTimeout, "HTTP idle timeout")

	return cmd
}

func run(ctx context.Context, app appcontext.Interface, cfg server.Config) error {
	logger := app.Logger()

	hub := ws.NewHub(logger)
	trimmed, mutated := server.RemoteViewers(hub, logger)

	client, err := app.ClientWithOptions(mutant.WithViewers(trimmed, mutated))
	if err != nil {
		return err
	}
	defer func() { _ = client.Close() }()

	logger.Info().
		Int("port", cfg.Port).
		Str("host", cfg.Host).
		Str("prefix", cfg.PathPrefix).
		Bool("cors", cfg.CORSEnabled).
		Bool("auth", cfg.AuthEnabled).
		Int("rate_limit", cfg.RateLimit).
		Msg("Starting server")

	srv := server.New(client, hub, cfg, logger)
	srv.Start()

	httpServer := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      srv.Handler(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return serveUntilDone(ctx, httpServer, srv, logger)
}

// parseConfig reads the flags into a server configuration. HTTP_PORT and
// HTTP_HOST override the flags.
func parseConfig(cmd *cobra.Command) (server.Config, error) {
	cfg := server.Config{
		Host:         mustGetString(cmd, "host"),
		Port:         mustGetInt(cmd, "port"),
		PathPrefix:   mustGetString(cmd, "prefix"),
		CORSEnabled:  mustGetBool(cmd, "cors"),
		CORSOrigins:  mustGetStringSlice(cmd, "cors-origins"),
		AuthEnabled:  mustGetBool(cmd, "auth"),
		AuthHeader:   mustGetString(cmd, "auth-header"),
		APIKey:       mustGetString(cmd, "api-key"),
		RateLimit:    mustGetInt(cmd, "rate-limit"),
		ReadTimeout:  mustGetDuration(cmd, "read-timeout"),
		WriteTimeout: mustGetDuration(cmd, "write-timeout"),
		IdleTimeout:  mustGetDuration(cmd, "idle-timeout"),
	}

	if envPort := os.Getenv("HTTP_PORT"); envPort != "" {
		port, err := parsePort(envPort)
		if err != nil {
			return server.Config{}, err
		}
		cfg.Port = port
	}
	if envHost := os.Getenv("HTTP_HOST"); envHost != "" {
		cfg.Host = envHost
	}
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv(APIKeyEnv)
	}

	if cfg.Port < 1 || cfg.Port > 65535 {
		return server.Config{}, errors.NewValidationError("port", cfg.Port, "must be between 1 and 65535")
	}
	if cfg.RateLimit < 0 {
		return server.Config{}, errors.NewValidationError("rate-limit", cfg.RateLimit, "must not be negative")
	}
	if cfg.AuthEnabled && cfg.APIKey == "" {
		return server.Config{}, errors.NewValidationError("api-key", "", "required when --auth is set (or set "+APIKeyEnv+")")
	}
	return cfg, nil
}

func parsePort(s string) (int, error) {
	port, err := strconv.Atoi(s)
	if err != nil {
		return 0, errors.NewValidationError("HTTP_PORT", s, "invalid port number")
	}
	return port, nil
}

// serveUntilDone runs httpServer until it fails or ctx is cancelled, then
// drains connections and stops the background services.
func serveUntilDone(ctx context.Context, httpServer *http.Server, srv *server.Server, logger *zerolog.Logger) error {
	serverErr := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", httpServer.Addr).Msg("HTTP server listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- fmt.Errorf("server failed: %w", err)
		}
	}()

	select {
	case err := <-serverErr:
		_ = srv.Shutdown(context.Background())
		return err
	case <-ctx.Done():
		logger.Info().Msg("Shutdown signal received")

		// ctx is already cancelled here.
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown failed: %w", err)
		}
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn().Err(err).Msg("Background services shutdown had issues")
		}

		logger.Info().Msg("Server stopped gracefully")
		return nil
	}
}

// mustGetInt retrieves an integer flag value or panics if the flag doesn't exist.
// This should only be used for flags defined in this package.
func mustGetInt(cmd *cobra.Command, name string) int {
	val, err := cmd.Flags().GetInt(name)
	if err != nil {
		panic(fmt.Sprintf("programming error: failed to get flag %q: %v", name, err))
	}
	return val
}

func mustGetString(cmd *cobra.Command, name string) string {
	val, err := cmd.Flags().GetString(name)
	if err != nil {
		panic(fmt.Sprintf("programming error: failed to get flag %q: %v", name, err))
	}
	return val
}

func mustGetBool(cmd *cobra.Command, name string) bool {
	val, err := cmd.Flags().GetBool(name)
	if err != nil {
		panic(fmt.Sprintf("programming error: failed to get flag %q: %v", name, err))
	}
	return val
}

func mustGetStringSlice(cmd *cobra.Command, name string) []string {
	val, err := cmd.Flags().GetStringSlice(name)
	if err != nil {
		panic(fmt.Sprintf("programming error: failed to get flag %q: %v", name, err))
	}
	return val
}

func mustGetDuration(cmd *cobra.Command, name string) time.Duration {
	val, err := cmd.Flags().GetDuration(name)
	if err != nil {
		panic(fmt.Sprintf("programming error: failed to get flag %q: %v", name, err))
	}
	return val
}
