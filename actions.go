package mutant

import (
	"context"

	"github.com/mutantautomate/mutant/pkg/errors"
	"github.com/mutantautomate/mutant/pkg/logging"
	"github.com/mutantautomate/mutant/pkg/structure"
)

// Actions are the follow-up operations on the current run's results.
//
// Each action is bound to the run that is current when it starts: stopping or
// replacing that run cancels it, and its results are only committed while that
// run is still current. Actions started after Stop work on the stopped run's
// results. Failures other than rejected preconditions are recorded as
// diagnostics.
type Actions interface {
	// FetchSequence loads an isoform's residues into the viewer sequence.
	FetchSequence(ctx context.Context, isoform string) (string, error)

	// FetchStructure loads an experimental structure and its trimmed form.
	// chainSpec is the chain specification listed with the structure, such
	// as "A/B=1-100"; empty keeps every chain.
	FetchStructure(ctx context.Context, isoform, pdbID, chainSpec string) (Blobs, error)

	// LoadPrediction loads the first predicted structure of an isoform as both
	// the raw and the trimmed structure.
	LoadPrediction(ctx context.Context, isoform string) (Blobs, error)

	// Mutate applies the run's substitution to the trimmed structure.
	Mutate(ctx context.Context) (string, error)

	// Mutating reports whether a mutation is in flight.
	Mutating() bool

	// ZoomTo highlights a residue in every viewer that holds a model.
	ZoomTo(position int)

	// RefreshViewers redraws every bound viewer from the current structures.
	RefreshViewers()
}

// binding ties an action to the run, and the action scope of that run, that
// was current when it started.
type binding struct {
	ctx     context.Context
	run     *run
	scope   context.Context
	release func()
}

// bind derives the action context from ctx, cancelled also when the current
// run is stopped or replaced.
func (c *client) bind(ctx context.Context, operation string) binding {
	c.mu.Lock()
	r := c.run
	var scope context.Context
	if r != nil {
		scope = r.scope
	}
	c.mu.Unlock()

	actx, cancel := context.WithCancel(ctx)
	stop := func() bool { return false }
	if r != nil {
		stop = context.AfterFunc(scope, cancel)
		actx = logging.WithRunID(actx, string(r.id))
	}
	actx = logging.WithOperation(logging.WithLogger(actx, c.logger), operation)

	return binding{
		ctx:   actx,
		run:   r,
		scope: scope,
		release: func() {
			stop()
			cancel()
		},
	}
}

func (b binding) runID() RunID {
	if b.run == nil {
		return ""
	}
	return b.run.id
}

// current reports whether the bound run is still the client's current run and
// the action was not cut off by Stop. Caller holds c.mu.
func (c *client) current(b binding) bool {
	if c.run != b.run {
		return false
	}
	return b.run == nil || (b.scope == b.run.scope && b.scope.Err() == nil)
}

// fail turns an action error into its returned form. Errors of a superseded
// run become errors.ErrStaleRun without a diagnostic.
func (c *client) fail(b binding, source string, err error) error {
	c.mu.Lock()
	stale := !c.current(b)
	c.mu.Unlock()

	if stale {
		logging.FromContext(b.ctx).Debug().Err(err).Msg("Discarding result of superseded run")
		return errors.ErrStaleRun
	}
	c.diagnose(b.runID(), source, err)
	return err
}

// commit atomically replaces the sequence (when non-nil) and the given blobs,
// then notifies in order: sequence, then blobs in argument order.
func (c *client) commit(b binding, sequence *string, kinds []BlobKind, contents []string) bool {
	c.commitMu.Lock()
	defer c.commitMu.Unlock()

	c.mu.Lock()
	if !c.current(b) {
		c.mu.Unlock()
		return false
	}
	if sequence != nil {
		c.sequence = *sequence
	}
	for i, kind := range kinds {
		c.blobs.set(kind, contents[i])
	}
	c.mu.Unlock()

	if sequence != nil {
		c.triggerSequence(*sequence)
	}
	for i, kind := range kinds {
		c.triggerBlob(kind, contents[i])
		c.viewer.Update(kind, contents[i])
	}
	return true
}

// clearStructures empties every blob and the viewer sequence for a new run.
func (c *client) clearStructures() {
	c.commitMu.Lock()
	defer c.commitMu.Unlock()

	c.mu.Lock()
	c.blobs = Blobs{}
	c.sequence = ""
	c.mu.Unlock()

	c.triggerSequence("")
	for _, kind := range structure.Kinds {
		c.triggerBlob(kind, "")
		c.viewer.Update(kind, "")
	}
}

func (c *client) fetchResidues(ctx context.Context, isoform string) (string, error) {
	text, err := c.sequences.FASTA(ctx, isoform)
	if err != nil {
		return "", errors.WrapResource("fetch", "sequence", isoform, err)
	}
	_, residues := structure.ParseFASTA(text)
	return residues, nil
}

// FetchSequence implements Actions.
func (c *client) FetchSequence(ctx context.Context, isoform string) (string, error) {
	b := c.bind(ctx, SourceFetchSequence)
	defer b.release()

	residues, err := c.fetchResidues(b.ctx, isoform)
	if err != nil {
		return "", c.fail(b, SourceFetchSequence, err)
	}
	if !c.commit(b, &residues, nil, nil) {
		return "", errors.ErrStaleRun
	}

	logging.FromContext(b.ctx).Debug().Str("isoform", isoform).Int("residues", len(residues)).Msg("Sequence loaded")
	return residues, nil
}

// FetchStructure implements Actions.
func (c *client) FetchStructure(ctx context.Context, isoform, pdbID, chainSpec string) (Blobs, error) {
	b := c.bind(ctx, SourceFetchStructure)
	defer b.release()

	residues, err := c.fetchResidues(b.ctx, isoform)
	if err != nil {
		return Blobs{}, c.fail(b, SourceFetchStructure, err)
	}

	raw, err := c.structures.PDB(b.ctx, pdbID)
	if err != nil {
		return Blobs{}, c.fail(b, SourceFetchStructure, errors.WrapResource("fetch", "structure", pdbID, err))
	}

	chains := structure.ParseChainSpec(chainSpec)
	trimmed, err := c.analyzer.Trim(b.ctx, raw, chains)
	if err != nil {
		return Blobs{}, c.fail(b, SourceFetchStructure, errors.WrapResource("trim", "structure", pdbID, err))
	}

	if !c.commit(b, &residues, []BlobKind{BlobRaw, BlobTrimmed}, []string{raw, trimmed}) {
		return Blobs{}, errors.ErrStaleRun
	}

	logging.FromContext(b.ctx).Info().
		Str("isoform", isoform).
		Str("pdb_id", pdbID).
		Strs("chains", chains).
		Int("raw_bytes", len(raw)).
		Int("trimmed_bytes", len(trimmed)).
		Msg("Structure loaded")
	return c.Blobs(), nil
}

// LoadPrediction implements Actions.
func (c *client) LoadPrediction(ctx context.Context, isoform string) (Blobs, error) {
	b := c.bind(ctx, SourceLoadPrediction)
	defer b.release()

	residues, err := c.fetchResidues(b.ctx, isoform)
	if err != nil {
		return Blobs{}, c.fail(b, SourceLoadPrediction, err)
	}

	modelURL, err := c.predictions.PredictionURL(b.ctx, isoform)
	if err != nil {
		return Blobs{}, c.fail(b, SourceLoadPrediction, errors.WrapResource("fetch", "prediction", isoform, err))
	}

	model, err := c.predictions.Download(b.ctx, modelURL)
	if err != nil {
		return Blobs{}, c.fail(b, SourceLoadPrediction, errors.WrapResource("fetch", "prediction", isoform, err))
	}

	if !c.commit(b, &residues, []BlobKind{BlobRaw, BlobTrimmed}, []string{model, model}) {
		return Blobs{}, errors.ErrStaleRun
	}

	logging.FromContext(b.ctx).Info().
		Str("isoform", isoform).
		Str("url", modelURL).
		Int("bytes", len(model)).
		Msg("Prediction loaded")
	return c.Blobs(), nil
}

// Mutate implements Actions.
func (c *client) Mutate(ctx context.Context) (string, error) {
	b := c.bind(ctx, SourceMutate)
	defer b.release()

	c.mu.Lock()
	trimmed := c.blobs.Trimmed
	var params Params
	if b.run != nil {
		params = b.run.params
	}
	c.mu.Unlock()

	if trimmed == "" {
		return "", errors.ErrNoStructure
	}
	if !c.mutating.CompareAndSwap(false, true) {
		return "", errors.ErrMutationBusy
	}
	defer c.mutating.Store(false)

	mutated, err := c.analyzer.Mutate(b.ctx, trimmed, params.Residue1, params.Position, params.Residue2)
	if err != nil {
		return "", c.fail(b, SourceMutate, errors.WrapResource("mutate", "structure", "", err))
	}

	if !c.commit(b, nil, []BlobKind{BlobMutated}, []string{mutated}) {
		return "", errors.ErrStaleRun
	}

	logging.FromContext(b.ctx).Info().
		Str("residue1", params.Residue1).
		Int("position", params.Position).
		Str("residue2", params.Residue2).
		Int("bytes", len(mutated)).
		Msg("Structure mutated")
	return mutated, nil
}

// Mutating implements Actions.
func (c *client) Mutating() bool {
	return c.mutating.Load()
}
