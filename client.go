// Package mutant is a client for the MutantAutoMate analysis service.
//
// A Client starts an analysis run for a gene and point mutation, ingests the
// backend's progress stream into an append-only event log, and derives the
// views a display needs from that log. Follow-up actions fetch isoform
// sequences, experimental and predicted structures, and mutated structures,
// and bound viewers are kept in step with the structures.
//
// Example usage:
//
//	client, err := mutant.New(mutant.WithBackendURL("http://localhost:8000"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	client.OnEvent(func(_ mutant.RunID, e events.Event) {
//	    if m, ok := e.(events.LogMessage); ok {
//	        fmt.Println(m.Text)
//	    }
//	})
//
//	if _, err := client.Start(ctx, mutant.Params{GeneName: "NLGN1", Residue1: "D", Position: 140, Residue2: "Y"}); err != nil {
//	    log.Fatal(err)
//	}
//	state, err := client.Wait(ctx)
package mutant

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/mutantautomate/mutant/internal/cache"
	"github.com/mutantautomate/mutant/internal/sources"
	"github.com/mutantautomate/mutant/internal/sources/alphafold"
	"github.com/mutantautomate/mutant/internal/sources/backend"
	"github.com/mutantautomate/mutant/internal/sources/rcsb"
	"github.com/mutantautomate/mutant/internal/sources/uniprot"
	"github.com/mutantautomate/mutant/internal/transport"
	"github.com/mutantautomate/mutant/pkg/constants"
	"github.com/mutantautomate/mutant/pkg/events"
	"github.com/mutantautomate/mutant/pkg/viewer"
	"github.com/mutantautomate/mutant/pkg/views"
)

// Compile-time interface checks to ensure proper implementation.
var (
	_ Client  = (*client)(nil)
	_ Runner  = (*client)(nil)
	_ Actions = (*client)(nil)
	_ State   = (*client)(nil)
	_ Hooks   = (*client)(nil)
)

// Client runs analyses and holds their results.
type Client interface {

	// Runner starts and stops analysis runs
	Runner

	// Actions fetch sequences and structures for the current run
	Actions

	// State provides read access to the current data
	State

	// Hooks provides access to change callback registration
	Hooks

	// Close stops the current run and releases resources. Start fails afterwards.
	Close() error
}

// client is the internal implementation of the Client interface.
type client struct {
	options *options
	logger  *zerolog.Logger

	analyzer    sources.Analyzer
	sequences   sources.SequenceSource
	structures  sources.StructureSource
	predictions sources.PredictionSource

	log    *events.Log
	engine *views.Engine
	viewer *viewer.Sync
	*hooks

	// lifecycle serializes Start, Stop and Close.
	lifecycle sync.Mutex

	// commitMu serializes blob and sequence commits with their notifications.
	commitMu sync.Mutex

	mu          sync.Mutex
	closed      bool
	run         *run
	blobs       Blobs
	sequence    string
	diagnostics []Diagnostic

	mutating atomic.Bool
}

// New creates a new Client instance with the given options.
func New(opts ...Option) (Client, error) {
	o, err := defaultOptions().apply(opts...)
	if err != nil {
		return nil, err
	}

	var store *cache.Cache
	if o.cacheTTL > 0 {
		store = cache.New(o.cacheTTL, constants.CacheCleanupInterval)
	}

	base := []transport.Option{
		transport.WithRetries(o.retries),
		transport.WithLogger(o.logger),
	}
	if o.httpClient != nil {
		base = append(base, transport.WithHTTPClient(o.httpClient))
	}
	// Third-party services are rate limited; the analysis backend is our own.
	limited := append(base[:len(base):len(base)], transport.WithRateLimit(o.rateLimit))

	c := &client{
		options:     o,
		logger:      o.logger,
		analyzer:    backend.New(o.backendURL, base...),
		sequences:   uniprot.New(o.uniprotURL, store, limited...),
		structures:  rcsb.New(o.rcsbURL, store, limited...),
		predictions: alphafold.New(o.alphafoldURL, store, limited...),
		log:         events.NewLog(),
		viewer:      viewer.NewSync(o.trimmed, o.mutated),
		hooks:       newHooks(),
	}
	c.engine = views.NewEngine(c.log)
	c.engine.Subscribe(c.triggerViews)

	c.logger.Debug().
		Str("backend", o.backendURL).
		Str("uniprot", o.uniprotURL).
		Str("rcsb", o.rcsbURL).
		Str("alphafold", o.alphafoldURL).
		Msg("Client created")

	return c, nil
}

// Close stops the current run and releases resources.
func (c *client) Close() error {
	c.lifecycle.Lock()
	defer c.lifecycle.Unlock()

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	r := c.run
	c.mu.Unlock()

	if r != nil {
		c.stopRun(r)
	}
	c.engine.Close()
	return nil
}

// ZoomTo highlights a residue in every viewer that holds a model.
func (c *client) ZoomTo(position int) {
	c.viewer.ZoomTo(position)
}

// RefreshViewers redraws every bound viewer from the current structures.
func (c *client) RefreshViewers() {
	c.viewer.Refresh()
}

// diagnose records a failure, logs it and notifies hooks.
func (c *client) diagnose(runID RunID, source string, err error) Diagnostic {
	d := Diagnostic{
		Time:    time.Now().UTC(),
		RunID:   runID,
		Source:  source,
		Message: err.Error(),
	}

	c.mu.Lock()
	if c.currentID() == runID {
		c.diagnostics = append(c.diagnostics, d)
	}
	c.mu.Unlock()

	c.logger.Warn().
		Err(err).
		Str("run_id", string(runID)).
		Str("source", source).
		Msg("Operation failed")
	c.triggerDiagnostic(d)
	return d
}

// currentID returns the id of the current run. Caller holds c.mu.
func (c *client) currentID() RunID {
	if c.run == nil {
		return ""
	}
	return c.run.id
}
