package server

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/mutantautomate/mutant"
	"github.com/mutantautomate/mutant/internal/server/middleware"
	"github.com/mutantautomate/mutant/internal/server/sse"
	"github.com/mutantautomate/mutant/internal/server/updates"
	"github.com/mutantautomate/mutant/internal/server/updates/adapters"
	ws "github.com/mutantautomate/mutant/internal/server/websocket"
	"github.com/mutantautomate/mutant/pkg/constants"
	"github.com/mutantautomate/mutant/pkg/events"
	"github.com/mutantautomate/mutant/pkg/viewer"
	"github.com/mutantautomate/mutant/pkg/views"
)

// Server holds the HTTP server state and dependencies.
type Server struct {
	client         mutant.Client
	broker         *updates.Broker
	wsHub          *ws.Hub
	sseBroadcaster *sse.Broadcaster
	rateLimiter    *middleware.RateLimiter
	upgrader       websocket.Upgrader
	logger         *zerolog.Logger
	config         Config
	startTime      time.Time

	ctx    context.Context
	cancel context.CancelFunc
	group  *errgroup.Group

	startOnce sync.Once
}

// RemoteViewers returns the two viewers to bind to a client served by a
// Server using hub. Their commands reach browsers over the viewer websocket.
func RemoteViewers(hub *ws.Hub, logger *zerolog.Logger) (trimmed, mutated viewer.Viewer) {
	return viewer.NewRemote(viewer.SlotTrimmed, hub, logger), viewer.NewRemote(viewer.SlotMutated, hub, logger)
}

// New creates a server for client. hub must be the hub the client's viewers
// publish to, or nil when the client has no remote viewers.
func New(client mutant.Client, hub *ws.Hub, cfg Config, logger *zerolog.Logger) *Server {
	if hub == nil {
		hub = ws.NewHub(logger)
	}

	broker := updates.NewBroker(logger)
	sseBroadcaster := sse.NewBroadcaster(logger)

	broker.Subscribe(adapters.NewSSESubscriber(sseBroadcaster))
	broker.Subscribe(adapters.NewWebSocketSubscriber(hub))
	logger.Debug().Msg("Real-time transports subscribed to update broker")

	ctx, cancel := context.WithCancel(context.Background())

	s := &Server{
		client:         client,
		broker:         broker,
		wsHub:          hub,
		sseBroadcaster: sseBroadcaster,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		logger:    logger,
		config:    cfg,
		startTime: time.Now(),
		ctx:       ctx,
		cancel:    cancel,
	}
	if cfg.RateLimit > 0 {
		s.rateLimiter = middleware.NewRateLimiter(cfg.RateLimit, logger)
	}

	s.connectHooks()
	return s
}

// connectHooks publishes every client change to the broker.
func (s *Server) connectHooks() {
	s.client.OnRunStateChanged(func(id mutant.RunID, state mutant.RunState) {
		s.broker.Publish(updates.RunState, map[string]any{"run_id": id, "state": state})
	})

	s.client.OnEvent(func(id mutant.RunID, e events.Event) {
		s.broker.Publish(updates.RunEvent, map[string]any{"run_id": id, "kind": e.Kind(), "event": e})
	})

	s.client.OnViewsChanged(func(snap views.Snapshot) {
		s.broker.Publish(updates.ViewsChanged, snap)
	})

	// Blob bodies can be megabytes; clients fetch them from /blobs/{kind}.
	s.client.OnBlobChanged(func(kind mutant.BlobKind, content string) {
		s.broker.Publish(updates.BlobChanged, map[string]any{"kind": kind, "size": len(content)})
	})

	s.client.OnSequenceChanged(func(residues string) {
		s.broker.Publish(updates.SequenceChanged, map[string]any{"length": len(residues)})
	})

	s.client.OnDiagnostic(func(d mutant.Diagnostic) {
		s.broker.Publish(updates.Diagnostic, d)
	})

	s.logger.Debug().Msg("Client hooks connected to update broker")
}

// Start starts background services: update broker, WebSocket hub, SSE
// broadcaster and rate limiter cleanup.
func (s *Server) Start() {
	s.startOnce.Do(func() {
		g, ctx := errgroup.WithContext(s.ctx)
		s.group = g

		g.Go(func() error { s.broker.Run(ctx); return nil })
		g.Go(func() error { s.wsHub.Run(ctx); return nil })
		g.Go(func() error { s.sseBroadcaster.Run(ctx); return nil })
		if s.rateLimiter != nil {
			g.Go(func() error { s.rateLimiter.Cleanup(ctx, constants.CacheCleanupInterval); return nil })
		}

		s.logger.Debug().Msg("Background services started")
	})
}

// Handler returns the configured http.Handler with middleware chain applied.
func (s *Server) Handler() http.Handler {
	return s.setupRouter()
}

// Shutdown stops background services and waits for them, up to ctx.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info().Msg("Shutting down server background services")
	s.cancel()

	if s.group == nil {
		return nil
	}

	done := make(chan error, 1)
	go func() { done <- s.group.Wait() }()

	select {
	case err := <-done:
		s.logger.Info().Msg("Background services shut down")
		return err
	case <-ctx.Done():
		s.logger.Warn().Msg("Background services shutdown timed out")
		return ctx.Err()
	}
}

// Broker returns the update broker.
func (s *Server) Broker() *updates.Broker {
	return s.broker
}

// StartTime returns the server start time for uptime calculations.
func (s *Server) StartTime() time.Time {
	return s.startTime
}
