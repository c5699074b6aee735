package server

import (
	"net/http"

	"github.com/mutantautomate/mutant/internal/server/handlers"
	"github.com/mutantautomate/mutant/internal/server/middleware"
)

// setupRouter creates the HTTP handler with routes and middleware.
func (s *Server) setupRouter() http.Handler {
	mux := http.NewServeMux()

	h := handlers.New(
		s.client,
		s.broker,
		s.wsHub,
		s.sseBroadcaster,
		s.upgrader,
		s.logger,
		s.startTime,
	)

	s.registerRoutes(mux, h)
	return s.applyMiddleware(mux)
}

// registerRoutes registers all HTTP routes.
func (s *Server) registerRoutes(mux *http.ServeMux, h *handlers.Handlers) {
	p := s.config.PathPrefix

	mux.HandleFunc("GET /favicon.ico", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	// Health
	mux.HandleFunc("GET /health", h.HandleHealth)
	mux.HandleFunc("GET "+p+"/health", h.HandleHealth)
	mux.HandleFunc("GET "+p+"/stats", h.HandleStats)

	// Runs
	mux.HandleFunc("GET "+p+"/examples", h.HandleExamples)
	mux.HandleFunc("POST "+p+"/runs", h.HandleStartRun)
	mux.HandleFunc("DELETE "+p+"/runs/current", h.HandleStopRun)

	// State
	mux.HandleFunc("GET "+p+"/state", h.HandleState)
	mux.HandleFunc("GET "+p+"/events", h.HandleEvents)
	mux.HandleFunc("GET "+p+"/blobs/{kind}", h.HandleBlob)
	mux.HandleFunc("GET "+p+"/sequence", h.HandleSequence)

	// Actions
	mux.HandleFunc("POST "+p+"/isoforms/{id}/sequence", h.HandleFetchSequence)
	mux.HandleFunc("POST "+p+"/isoforms/{id}/structure", h.HandleFetchStructure)
	mux.HandleFunc("POST "+p+"/isoforms/{id}/prediction", h.HandleLoadPrediction)
	mux.HandleFunc("POST "+p+"/mutate", h.HandleMutate)
	mux.HandleFunc("POST "+p+"/zoom", h.HandleZoom)

	// Real-time
	mux.HandleFunc("GET "+p+"/updates/stream", h.HandleSSE)
	mux.HandleFunc("GET "+p+"/updates/ws", h.HandleWebSocket)
	mux.HandleFunc("GET "+p+"/viewer/ws", h.HandleWebSocket)
}

// applyMiddleware wraps handler with middleware chain.
func (s *Server) applyMiddleware(handler http.Handler) http.Handler {
	cfg := s.config

	if s.rateLimiter != nil {
		handler = middleware.RateLimit(s.rateLimiter)(handler)
	}

	if cfg.AuthEnabled {
		authConfig := middleware.DefaultAuthConfig()
		authConfig.Enabled = true
		authConfig.APIKey = cfg.APIKey
		if cfg.AuthHeader != "" {
			authConfig.HeaderName = cfg.AuthHeader
		}
		authConfig.PublicPaths = []string{"/health", cfg.PathPrefix + "/health"}
		handler = middleware.Auth(authConfig, s.logger)(handler)
	}

	if cfg.CORSEnabled {
		corsConfig := middleware.DefaultCORSConfig()
		if len(cfg.CORSOrigins) > 0 {
			corsConfig.AllowedOrigins = cfg.CORSOrigins
		} else {
			corsConfig.AllowAll = true
		}
		handler = middleware.CORS(corsConfig)(handler)
	}

	return middleware.Chain(
		middleware.Recovery(s.logger),
		middleware.Logger(s.logger),
		middleware.RequestID(),
	)(handler)
}
