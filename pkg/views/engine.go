package views

import (
	"slices"
	"sync"

	"github.com/mutantautomate/mutant/pkg/events"
)

// Listener receives the snapshot produced by a log change.
type Listener func(Snapshot)

// Engine keeps a Snapshot current with an events.Log.
//
// It recomputes eagerly on every append, swaps the snapshot in, and only then
// notifies listeners, so no observer sees a log mutated mid-recomputation.
type Engine struct {
	mu        sync.RWMutex
	snapshot  Snapshot
	listeners []*listener
	stop      func()
}

type listener struct {
	fn Listener
}

// NewEngine attaches an engine to log, seeded with the log's current contents.
func NewEngine(log *events.Log) *Engine {
	e := &Engine{}
	// Seed after subscribing. A change that races in recomputes in full.
	e.stop = log.Subscribe(e.onChange)
	e.mu.Lock()
	if e.snapshot.Events == 0 {
		e.snapshot = Compute(log.Events())
	}
	e.mu.Unlock()
	return e
}

// Snapshot returns the current views.
func (e *Engine) Snapshot() Snapshot {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.snapshot
}

// Subscribe registers fn for every recomputation and returns a function that removes it.
func (e *Engine) Subscribe(fn Listener) (unsubscribe func()) {
	l := &listener{fn: fn}
	e.mu.Lock()
	e.listeners = append(e.listeners, l)
	e.mu.Unlock()

	return func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		e.listeners = slices.DeleteFunc(e.listeners, func(x *listener) bool { return x == l })
	}
}

// Close detaches the engine from its log.
func (e *Engine) Close() {
	if e.stop != nil {
		e.stop()
	}
}

func (e *Engine) onChange(c events.Change) {
	e.mu.Lock()
	switch {
	case c.Reset:
		e.snapshot = Snapshot{}
	case e.snapshot.Events+len(c.Appended) == len(c.Events):
		for _, ev := range c.Appended {
			e.snapshot = e.snapshot.Apply(ev)
		}
	default:
		e.snapshot = Compute(c.Events)
	}
	snap := e.snapshot
	listeners := slices.Clone(e.listeners)
	e.mu.Unlock()

	for _, l := range listeners {
		l.fn(snap)
	}
}
