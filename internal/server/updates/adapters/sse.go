// Package adapters attaches the real-time transports to the update broker.
package adapters

import (
	"github.com/mutantautomate/mutant/internal/server/sse"
	"github.com/mutantautomate/mutant/internal/server/updates"
)

// SSESubscriber adapts the SSE broadcaster to the Subscriber interface.
type SSESubscriber struct {
	broadcaster *sse.Broadcaster
}

// NewSSESubscriber creates a new SSE subscriber.
func NewSSESubscriber(broadcaster *sse.Broadcaster) *SSESubscriber {
	return &SSESubscriber{broadcaster: broadcaster}
}

// Send delivers an update to all SSE clients.
func (s *SSESubscriber) Send(u updates.Update) error {
	s.broadcaster.Broadcast(sse.Event{
		Event: string(u.Type),
		Data:  u.Data,
	})
	return nil
}

// Close is a no-op; the broadcaster manages its own lifecycle.
func (s *SSESubscriber) Close() error {
	return nil
}
