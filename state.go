package mutant

import (
	"slices"
	"time"

	"github.com/mutantautomate/mutant/pkg/events"
	"github.com/mutantautomate/mutant/pkg/structure"
	"github.com/mutantautomate/mutant/pkg/views"
)

// RunID identifies one analysis run.
type RunID string

// RunState is the lifecycle state of the current run.
type RunState string

// Run states.
const (
	// StateIdle means no stream is open: nothing started yet, the run
	// finished with a done event, or it was stopped.
	StateIdle RunState = "idle"

	// StateRunning means the analysis stream is open.
	StateRunning RunState = "running"

	// StateErrored means the stream failed before a done event arrived.
	StateErrored RunState = "errored"
)

// Params are the inputs of one analysis request. They are sent verbatim.
type Params struct {
	GeneName string `json:"gene_name" yaml:"gene_name"`
	Residue1 string `json:"residue1" yaml:"residue1"`
	Position int    `json:"position" yaml:"position"`
	Residue2 string `json:"residue2" yaml:"residue2"`
}

// BlobKind names a structure blob.
type BlobKind = structure.Kind

// Structure blob kinds.
const (
	BlobRaw     = structure.Raw
	BlobTrimmed = structure.Trimmed
	BlobMutated = structure.Mutated
)

// Blobs holds the structure texts of the current run. Empty means absent.
type Blobs struct {
	Raw     string `json:"raw"`
	Trimmed string `json:"trimmed"`
	Mutated string `json:"mutated"`
}

// Get returns the blob of the given kind.
func (b Blobs) Get(kind BlobKind) string {
	switch kind {
	case BlobRaw:
		return b.Raw
	case BlobTrimmed:
		return b.Trimmed
	case BlobMutated:
		return b.Mutated
	}
	return ""
}

func (b *Blobs) set(kind BlobKind, content string) {
	switch kind {
	case BlobRaw:
		b.Raw = content
	case BlobTrimmed:
		b.Trimmed = content
	case BlobMutated:
		b.Mutated = content
	}
}

// Diagnostic sources.
const (
	SourceStream         = "stream"
	SourceFetchSequence  = "fetch-sequence"
	SourceFetchStructure = "fetch-structure"
	SourceLoadPrediction = "load-prediction"
	SourceMutate         = "mutate"
)

// Diagnostic is a recorded failure of the stream or an action.
type Diagnostic struct {
	Time    time.Time `json:"time"`
	RunID   RunID     `json:"run_id,omitempty"`
	Source  string    `json:"source"`
	Message string    `json:"message"`
}

// Status is a point-in-time summary of the client.
type Status struct {
	RunID       RunID            `json:"run_id,omitempty"`
	State       RunState         `json:"state"`
	Params      *Params          `json:"params,omitempty"`
	Views       views.Snapshot   `json:"views"`
	BlobSizes   map[BlobKind]int `json:"blob_sizes"`
	Sequence    int              `json:"sequence_length"`
	Mutating    bool             `json:"mutating"`
	Diagnostics []Diagnostic     `json:"diagnostics"`
}

// State provides read access to the client's current data.
type State interface {
	// Events returns a copy of the event log.
	Events() []events.Event

	// Views returns the derived views of the event log.
	Views() views.Snapshot

	// Blob returns one structure blob.
	Blob(kind BlobKind) string

	// Blobs returns every structure blob.
	Blobs() Blobs

	// Sequence returns the viewer sequence, residues only.
	Sequence() string

	// Diagnostics returns the failures recorded since the current run started.
	Diagnostics() []Diagnostic

	// Status summarizes the client.
	Status() Status
}

// Events returns a copy of the event log.
func (c *client) Events() []events.Event {
	return c.log.Events()
}

// Views returns the derived views of the event log.
func (c *client) Views() views.Snapshot {
	return c.engine.Snapshot()
}

// Blob returns one structure blob.
func (c *client) Blob(kind BlobKind) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.blobs.Get(kind)
}

// Blobs returns every structure blob.
func (c *client) Blobs() Blobs {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.blobs
}

// Sequence returns the viewer sequence.
func (c *client) Sequence() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sequence
}

// Diagnostics returns the recorded failures in order.
func (c *client) Diagnostics() []Diagnostic {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.diagnostics)
}

// Status summarizes the client.
func (c *client) Status() Status {
	c.mu.Lock()
	st := Status{
		State:       StateIdle,
		BlobSizes:   make(map[BlobKind]int, len(structure.Kinds)),
		Sequence:    len(c.sequence),
		Diagnostics: append([]Diagnostic{}, c.diagnostics...),
	}
	for _, kind := range structure.Kinds {
		st.BlobSizes[kind] = len(c.blobs.Get(kind))
	}
	if r := c.run; r != nil {
		params := r.params
		st.RunID = r.id
		st.State = r.state
		st.Params = &params
	}
	c.mu.Unlock()

	st.Views = c.engine.Snapshot()
	st.Mutating = c.mutating.Load()
	return st
}
