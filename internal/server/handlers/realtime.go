package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/mutantautomate/mutant/internal/server/sse"
	ws "github.com/mutantautomate/mutant/internal/server/websocket"
	"github.com/mutantautomate/mutant/pkg/logging"
)

// HandleWebSocket handles WebSocket connections at /api/v1/viewer/ws and
// /api/v1/updates/ws. Viewers are redrawn once the client is registered so a
// new browser catches up with the current structures.
// @Summary Viewer commands and updates
// @Tags updates
// @Success 101 "Switching Protocols"
// @Router /viewer/ws [get].
func (h *Handlers) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}

	client := ws.NewClient(uuid.NewString(), h.wsHub, conn)
	if err := h.wsHub.Register(r.Context(), client); err != nil {
		logging.FromContext(r.Context()).Warn().Err(err).Msg("WebSocket client not registered")
		_ = conn.Close()
		return
	}

	go client.WritePump()
	go client.ReadPump()

	h.client.RefreshViewers()
}

// HandleSSE handles Server-Sent Events at /api/v1/updates/stream. The stream
// opens with the current status.
// @Summary Client updates stream
// @Tags updates
// @Produce text/event-stream
// @Success 200 "Event stream"
// @Router /updates/stream [get].
func (h *Handlers) HandleSSE(w http.ResponseWriter, r *http.Request) {
	h.sseBroadcaster.Serve(w, r,
		sse.Event{
			Event: "connected",
			ID:    fmt.Sprintf("connect-%d", time.Now().UnixNano()),
			Data:  map[string]any{"message": "Connected to mutant updates stream", "timestamp": time.Now().UTC()},
		},
		sse.Event{Event: "status", Data: h.client.Status()},
	)
}
