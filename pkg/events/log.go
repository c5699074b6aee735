package events

import (
	"slices"
	"sync"
)

// Change describes one mutation of a Log.
type Change struct {
	// Reset is true when the log was emptied.
	Reset bool

	// Appended holds the events added by this mutation, in order.
	Appended []Event

	// Events is the full log after the mutation. It is shared and must not be modified.
	Events []Event
}

// Subscriber is called after every mutation of a Log.
type Subscriber func(Change)

// Log is the append-only event store for the current run.
//
// Between two calls to Reset the log only grows. Subscribers are notified
// synchronously, one mutation at a time, in mutation order; they must not
// mutate the log they are subscribed to.
type Log struct {
	mu     sync.RWMutex
	events []Event
	subs   []*subscription

	// notifyMu serializes mutation plus notification so observers see
	// changes in the order they were applied.
	notifyMu sync.Mutex
}

type subscription struct {
	fn Subscriber
}

// NewLog creates an empty log.
func NewLog() *Log {
	return &Log{}
}

// Reset empties the log.
func (l *Log) Reset() {
	l.notifyMu.Lock()
	defer l.notifyMu.Unlock()

	l.mu.Lock()
	l.events = nil
	subs := slices.Clone(l.subs)
	l.mu.Unlock()

	l.notify(subs, Change{Reset: true})
}

// Append adds events to the end of the log.
func (l *Log) Append(evs ...Event) {
	if len(evs) == 0 {
		return
	}

	l.notifyMu.Lock()
	defer l.notifyMu.Unlock()

	l.mu.Lock()
	l.events = append(l.events, evs...)
	n := len(l.events)
	// Elements are never rewritten, so a capacity-capped view is a stable snapshot.
	snapshot := l.events[:n:n]
	subs := slices.Clone(l.subs)
	l.mu.Unlock()

	l.notify(subs, Change{Appended: slices.Clone(evs), Events: snapshot})
}

// Len returns the number of events in the log.
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.events)
}

// Events returns a copy of the log contents in arrival order.
func (l *Log) Events() []Event {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return slices.Clone(l.events)
}

// Subscribe registers fn for every future mutation and returns a function
// that removes it.
func (l *Log) Subscribe(fn Subscriber) (unsubscribe func()) {
	sub := &subscription{fn: fn}

	l.mu.Lock()
	l.subs = append(l.subs, sub)
	l.mu.Unlock()

	return func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		l.subs = slices.DeleteFunc(l.subs, func(s *subscription) bool { return s == sub })
	}
}

func (l *Log) notify(subs []*subscription, change Change) {
	for _, s := range subs {
		s.fn(change)
	}
}
