package updates

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

type recordingSubscriber struct {
	mu      sync.Mutex
	updates []Update
	closed  bool
}

func (r *recordingSubscriber) Send(u Update) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.updates = append(r.updates, u)
	return nil
}

func (r *recordingSubscriber) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	return nil
}

func (r *recordingSubscriber) types() []Type {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Type, len(r.updates))
	for i, u := range r.updates {
		out[i] = u.Type
	}
	return out
}

func (r *recordingSubscriber) isClosed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closed
}

func waitFor(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal(msg)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

// TestBroker_SubscribeBeforeRun tests that Subscribe does not block before Run starts.
func TestBroker_SubscribeBeforeRun(t *testing.T) {
	logger := zerolog.Nop()
	b := NewBroker(&logger)

	done := make(chan struct{})
	go func() {
		for i := 0; i < 3; i++ {
			b.Subscribe(&recordingSubscriber{})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Subscribe() blocked before Run()")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go b.Run(ctx)

	waitFor(t, func() bool { return b.SubscriberCount() == 3 }, "subscribers were not registered")
}

// TestBroker_PublishOrder tests that every subscriber sees updates in publish order.
func TestBroker_PublishOrder(t *testing.T) {
	logger := zerolog.Nop()
	b := NewBroker(&logger)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go b.Run(ctx)

	s1, s2 := &recordingSubscriber{}, &recordingSubscriber{}
	b.Subscribe(s1)
	b.Subscribe(s2)
	waitFor(t, func() bool { return b.SubscriberCount() == 2 }, "subscribers were not registered")

	want := []Type{RunState, RunEvent, ViewsChanged, BlobChanged, SequenceChanged, Diagnostic}
	for _, typ := range want {
		b.Publish(typ, nil)
	}

	for _, s := range []*recordingSubscriber{s1, s2} {
		waitFor(t, func() bool { return len(s.types()) == len(want) }, "updates were not delivered")
		got := s.types()
		for i := range want {
			if got[i] != want[i] {
				t.Fatalf("update %d: expected %s, got %s", i, want[i], got[i])
			}
		}
	}
	if b.Published() != int64(len(want)) {
		t.Errorf("expected %d published, got %d", len(want), b.Published())
	}
}

// TestBroker_Unsubscribe tests that an unsubscribed subscriber is closed.
func TestBroker_Unsubscribe(t *testing.T) {
	logger := zerolog.Nop()
	b := NewBroker(&logger)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go b.Run(ctx)

	sub := &recordingSubscriber{}
	b.Subscribe(sub)
	waitFor(t, func() bool { return b.SubscriberCount() == 1 }, "subscriber was not registered")

	b.Unsubscribe(sub)
	waitFor(t, func() bool { return b.SubscriberCount() == 0 }, "subscriber was not removed")
	if !sub.isClosed() {
		t.Error("unsubscribed subscriber was not closed")
	}
}

// TestBroker_Shutdown tests that cancelling closes every subscriber.
func TestBroker_Shutdown(t *testing.T) {
	logger := zerolog.Nop()
	b := NewBroker(&logger)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		b.Run(ctx)
		close(done)
	}()

	sub := &recordingSubscriber{}
	b.Subscribe(sub)
	waitFor(t, func() bool { return b.SubscriberCount() == 1 }, "subscriber was not registered")

	cancel()
	<-done

	if b.SubscriberCount() != 0 {
		t.Errorf("expected 0 subscribers after shutdown, got %d", b.SubscriberCount())
	}
	if !sub.isClosed() {
		t.Error("subscriber was not closed on shutdown")
	}
}

// TestBroker_DropsWhenFull tests that Publish never blocks.
func TestBroker_DropsWhenFull(t *testing.T) {
	logger := zerolog.Nop()
	b := NewBroker(&logger)

	for i := 0; i < cap(b.updates)+3; i++ {
		b.Publish(RunEvent, i)
	}
	if b.Dropped() != 3 {
		t.Errorf("expected 3 dropped, got %d", b.Dropped())
	}
}
