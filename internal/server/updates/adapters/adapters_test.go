package adapters

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/mutantautomate/mutant/internal/server/sse"
	"github.com/mutantautomate/mutant/internal/server/updates"
	ws "github.com/mutantautomate/mutant/internal/server/websocket"
)

var (
	_ updates.Subscriber = (*SSESubscriber)(nil)
	_ updates.Subscriber = (*WebSocketSubscriber)(nil)
)

// TestWebSocketSubscriber_Send tests that updates reach connected viewers with their type.
func TestWebSocketSubscriber_Send(t *testing.T) {
	logger := zerolog.Nop()
	hub := ws.NewHub(&logger)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		client := ws.NewClient("test", hub, conn)
		if err := hub.Register(r.Context(), client); err != nil {
			_ = conn.Close()
			return
		}
		go client.WritePump()
		go client.ReadPump()
	}))
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for hub.ClientCount() != 1 {
		if time.Now().After(deadline) {
			t.Fatal("client not registered")
		}
		time.Sleep(5 * time.Millisecond)
	}

	sub := NewWebSocketSubscriber(hub)
	ts := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	if err := sub.Send(updates.Update{Type: updates.RunState, Timestamp: ts, Data: "idle"}); err != nil {
		t.Fatalf("Send() error = %v", err)
	}

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var got ws.Message
	if err := conn.ReadJSON(&got); err != nil {
		t.Fatalf("ReadJSON() error = %v", err)
	}
	if got.Type != string(updates.RunState) || got.Data != "idle" || !got.Timestamp.Equal(ts) {
		t.Errorf("unexpected message %+v", got)
	}
}

// TestSSESubscriber_Send tests that Send never blocks, even without a running broadcaster.
func TestSSESubscriber_Send(t *testing.T) {
	logger := zerolog.Nop()
	sub := NewSSESubscriber(sse.NewBroadcaster(&logger))

	done := make(chan struct{})
	go func() {
		for i := 0; i < 1000; i++ {
			_ = sub.Send(updates.Update{Type: updates.RunEvent, Data: i})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Send() blocked")
	}
	if err := sub.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}
