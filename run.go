package mutant

import (
	"context"
	"io"
	"sync"

	"github.com/google/uuid"

	"github.com/mutantautomate/mutant/internal/sse"
	"github.com/mutantautomate/mutant/pkg/errors"
	"github.com/mutantautomate/mutant/pkg/events"
	"github.com/mutantautomate/mutant/pkg/logging"
)

// Runner starts and stops analysis runs.
type Runner interface {
	// Start begins a new run, stopping any run in progress first. The event
	// log, blobs, viewer sequence and diagnostics are cleared.
	Start(ctx context.Context, params Params) (RunID, error)

	// Stop closes the stream of the current run and cancels its actions.
	Stop()

	// Wait blocks until the current run is no longer running or ctx ends.
	Wait(ctx context.Context) (RunState, error)

	// RunID returns the id of the current run, empty before the first Start.
	RunID() RunID

	// RunState returns the state of the current run.
	RunState() RunState

	// Params returns the parameters of the current run.
	Params() (Params, bool)
}

// run is one analysis run. Its context is cancelled when the run is stopped
// or replaced, which closes the stream.
type run struct {
	id     RunID
	params Params
	ctx    context.Context
	cancel context.CancelFunc

	// scope bounds the actions bound to the run. Stopping the run ends the
	// scope and opens a new one, so only actions in flight are cancelled.
	// Guarded by client.mu, as is state.
	scope    context.Context
	endScope context.CancelFunc

	state RunState

	// finished is closed when state leaves StateRunning.
	finished     chan struct{}
	finishedOnce sync.Once

	// exited is closed when the ingest goroutine returns.
	exited chan struct{}
}

func (r *run) finish() {
	r.finishedOnce.Do(func() { close(r.finished) })
}

func (r *run) openScope() {
	r.scope, r.endScope = context.WithCancel(context.WithoutCancel(r.ctx))
}

// Start implements Runner.
func (c *client) Start(ctx context.Context, params Params) (RunID, error) {
	c.lifecycle.Lock()
	defer c.lifecycle.Unlock()

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return "", errors.ErrClosed
	}
	prev := c.run
	c.mu.Unlock()

	// The previous stream is fully closed before anything is reset.
	if prev != nil {
		c.stopRun(prev)
	}

	id := RunID(uuid.NewString())
	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	runCtx = logging.WithRunID(logging.WithLogger(runCtx, c.logger), string(id))

	r := &run{
		id:       id,
		params:   params,
		ctx:      runCtx,
		cancel:   cancel,
		state:    StateRunning,
		finished: make(chan struct{}),
		exited:   make(chan struct{}),
	}
	r.openScope()

	c.mu.Lock()
	c.run = r
	c.diagnostics = nil
	c.mu.Unlock()

	c.log.Reset()
	c.clearStructures()

	logging.FromContext(runCtx).Info().
		Str("gene_name", params.GeneName).
		Str("residue1", params.Residue1).
		Int("position", params.Position).
		Str("residue2", params.Residue2).
		Msg("Run started")
	c.triggerRunState(id, StateRunning)

	go c.ingest(r)
	return id, nil
}

// Stop implements Runner.
func (c *client) Stop() {
	c.lifecycle.Lock()
	defer c.lifecycle.Unlock()

	c.mu.Lock()
	r := c.run
	c.mu.Unlock()

	if r != nil {
		c.stopRun(r)
	}
}

// stopRun cancels r, waits for its stream to close and marks it idle.
// Actions in flight are cancelled; later ones may still act on r's results
// unless the client is closed. Caller holds c.lifecycle.
func (c *client) stopRun(r *run) {
	r.cancel()
	<-r.exited

	c.mu.Lock()
	r.endScope()
	if !c.closed {
		r.openScope()
	}
	c.mu.Unlock()

	if c.setState(r, StateIdle) {
		logging.FromContext(r.ctx).Info().Msg("Run stopped")
	}
}

// setState moves r to state and reports whether it changed. Transitions out
// of a finished run are ignored except to idle.
func (c *client) setState(r *run, state RunState) bool {
	c.mu.Lock()
	if r.state == state || (r.state != StateRunning && state != StateIdle) {
		c.mu.Unlock()
		return false
	}
	r.state = state
	c.mu.Unlock()

	c.triggerRunState(r.id, state)
	if state != StateRunning {
		r.finish()
	}
	return true
}

// Wait implements Runner.
func (c *client) Wait(ctx context.Context) (RunState, error) {
	c.mu.Lock()
	r := c.run
	c.mu.Unlock()

	if r == nil {
		return StateIdle, nil
	}

	select {
	case <-r.finished:
		return c.stateOf(r), nil
	case <-ctx.Done():
		return c.stateOf(r), ctx.Err()
	}
}

func (c *client) stateOf(r *run) RunState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return r.state
}

// RunID implements Runner.
func (c *client) RunID() RunID {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.currentID()
}

// RunState implements Runner.
func (c *client) RunState() RunState {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.run == nil {
		return StateIdle
	}
	return c.run.state
}

// Params implements Runner.
func (c *client) Params() (Params, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.run == nil {
		return Params{}, false
	}
	return c.run.params, true
}

// ingest reads the stream of r until done, failure or cancellation.
func (c *client) ingest(r *run) {
	defer close(r.exited)

	logger := logging.FromContext(r.ctx)
	p := r.params

	body, err := c.analyzer.Stream(r.ctx, p.GeneName, p.Residue1, p.Position, p.Residue2)
	if err != nil {
		c.failRun(r, err)
		return
	}
	defer func() { _ = body.Close() }()

	reader := sse.NewReader(body)
	for {
		frame, err := reader.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				err = errors.ErrStreamEnded
			}
			c.failRun(r, err)
			return
		}

		evs, err := events.Decode(frame.Data)
		if err != nil {
			c.diagnose(r.id, SourceStream, err)
		}
		if len(evs) == 0 {
			continue
		}
		if r.ctx.Err() != nil {
			return
		}

		c.log.Append(evs...)
		done := false
		for _, e := range evs {
			c.triggerEvent(r.id, e)
			if _, ok := e.(events.Done); ok {
				done = true
			}
		}

		if done {
			logger.Info().Int("events", c.log.Len()).Msg("Run finished")
			c.setState(r, StateIdle)
			return
		}
	}
}

// failRun records a transport failure of r. Failures caused by stopping the
// run are not failures.
func (c *client) failRun(r *run, err error) {
	if r.ctx.Err() != nil {
		return
	}
	c.diagnose(r.id, SourceStream, errors.NewStreamError(string(r.id), err))
	c.setState(r, StateErrored)
}
