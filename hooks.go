package mutant

import (
	"sync"

	"github.com/mutantautomate/mutant/pkg/events"
	"github.com/mutantautomate/mutant/pkg/views"
)

// Hook function types for client changes
type (
	// EventHook is called for every event appended to the log
	EventHook func(runID RunID, event events.Event)

	// ViewsHook is called after the derived views are recomputed
	ViewsHook func(snapshot views.Snapshot)

	// RunStateHook is called when a run changes state
	RunStateHook func(runID RunID, state RunState)

	// BlobHook is called when a structure blob is replaced
	BlobHook func(kind BlobKind, content string)

	// SequenceHook is called when the viewer sequence is replaced
	SequenceHook func(residues string)

	// DiagnosticHook is called when a failure is recorded
	DiagnosticHook func(d Diagnostic)
)

// Hooks registers callbacks for client changes. Callbacks run synchronously on
// the goroutine that made the change and must not block.
type Hooks interface {
	OnEvent(EventHook)
	OnViewsChanged(ViewsHook)
	OnRunStateChanged(RunStateHook)
	OnBlobChanged(BlobHook)
	OnSequenceChanged(SequenceHook)
	OnDiagnostic(DiagnosticHook)
}

// hooks manages event callbacks for client changes
type hooks struct {
	mu           sync.RWMutex
	onEvent      []EventHook
	onViews      []ViewsHook
	onRunState   []RunStateHook
	onBlob       []BlobHook
	onSequence   []SequenceHook
	onDiagnostic []DiagnosticHook
}

// newHooks creates a new hooks instance
func newHooks() *hooks {
	return &hooks{}
}

// OnEvent registers a callback for appended events
func (h *hooks) OnEvent(fn EventHook) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onEvent = append(h.onEvent, fn)
}

// OnViewsChanged registers a callback for view recomputations
func (h *hooks) OnViewsChanged(fn ViewsHook) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onViews = append(h.onViews, fn)
}

// OnRunStateChanged registers a callback for run-state transitions
func (h *hooks) OnRunStateChanged(fn RunStateHook) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onRunState = append(h.onRunState, fn)
}

// OnBlobChanged registers a callback for structure blob changes
func (h *hooks) OnBlobChanged(fn BlobHook) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onBlob = append(h.onBlob, fn)
}

// OnSequenceChanged registers a callback for viewer sequence changes
func (h *hooks) OnSequenceChanged(fn SequenceHook) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onSequence = append(h.onSequence, fn)
}

// OnDiagnostic registers a callback for recorded failures
func (h *hooks) OnDiagnostic(fn DiagnosticHook) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onDiagnostic = append(h.onDiagnostic, fn)
}

func (h *hooks) triggerEvent(runID RunID, e events.Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, fn := range h.onEvent {
		fn(runID, e)
	}
}

func (h *hooks) triggerViews(s views.Snapshot) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, fn := range h.onViews {
		fn(s)
	}
}

func (h *hooks) triggerRunState(runID RunID, state RunState) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, fn := range h.onRunState {
		fn(runID, state)
	}
}

func (h *hooks) triggerBlob(kind BlobKind, content string) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, fn := range h.onBlob {
		fn(kind, content)
	}
}

func (h *hooks) triggerSequence(residues string) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, fn := range h.onSequence {
		fn(residues)
	}
}

func (h *hooks) triggerDiagnostic(d Diagnostic) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, fn := range h.onDiagnostic {
		fn(d)
	}
}
