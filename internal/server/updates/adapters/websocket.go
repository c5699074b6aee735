package adapters

import (
	"github.com/mutantautomate/mutant/internal/server/updates"
	ws "github.com/mutantautomate/mutant/internal/server/websocket"
)

// WebSocketSubscriber adapts the WebSocket hub to the Subscriber interface.
type WebSocketSubscriber struct {
	hub *ws.Hub
}

// NewWebSocketSubscriber creates a new WebSocket subscriber.
func NewWebSocketSubscriber(hub *ws.Hub) *WebSocketSubscriber {
	return &WebSocketSubscriber{hub: hub}
}

// Send delivers an update to all WebSocket clients.
func (w *WebSocketSubscriber) Send(u updates.Update) error {
	w.hub.Broadcast(ws.Message{
		Type:      string(u.Type),
		Timestamp: u.Timestamp,
		Data:      u.Data,
	})
	return nil
}

// Close is a no-op; the hub manages its own lifecycle.
func (w *WebSocketSubscriber) Close() error {
	return nil
}
