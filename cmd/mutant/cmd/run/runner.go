package run

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/mutantautomate/mutant"
	"github.com/mutantautomate/mutant/internal/appcontext"
	"github.com/mutantautomate/mutant/internal/output"
	"github.com/mutantautomate/mutant/internal/report"
	"github.com/mutantautomate/mutant/pkg/errors"
	"github.com/mutantautomate/mutant/pkg/events"
	"github.com/mutantautomate/mutant/pkg/structure"
	"github.com/mutantautomate/mutant/pkg/viewer"
	"github.com/mutantautomate/mutant/pkg/views"
)

// cardConcurrency bounds parallel UniProt lookups for --isoforms.
const cardConcurrency = 4

// Result is the machine readable output of a run.
type Result struct {
	Status     mutant.Status          `json:"status" yaml:"status"`
	Cards      []report.Card          `json:"cards,omitempty" yaml:"cards,omitempty"`
	Structure  string                 `json:"structure,omitempty" yaml:"structure,omitempty"`
	Prediction string                 `json:"prediction,omitempty" yaml:"prediction,omitempty"`
	Mutated    bool                   `json:"mutated" yaml:"mutated"`
	Files      []string               `json:"files,omitempty" yaml:"files,omitempty"`
	Viewer     map[string][]viewer.Op `json:"viewer,omitempty" yaml:"viewer,omitempty"`
}

type runner struct {
	app    appcontext.Interface
	opts   Options
	out    io.Writer
	log    *lockedWriter
	logger *zerolog.Logger

	trimmed *viewer.Recorder
	mutated *viewer.Recorder
}

func newRunner(app appcontext.Interface, cmd *cobra.Command, opts Options) *runner {
	return &runner{
		app:     app,
		opts:    opts,
		out:     cmd.OutOrStdout(),
		log:     &lockedWriter{w: cmd.ErrOrStderr()},
		logger:  app.Logger(),
		trimmed: viewer.NewRecorder(viewer.SlotTrimmed),
		mutated: viewer.NewRecorder(viewer.SlotMutated),
	}
}

func (r *runner) run(ctx context.Context, params mutant.Params) error {
	if r.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.opts.Timeout)
		defer cancel()
	}

	client, err := r.app.ClientWithOptions(mutant.WithViewers(r.trimmed, r.mutated))
	if err != nil {
		return err
	}
	defer func() { _ = client.Close() }()

	client.OnEvent(func(_ mutant.RunID, e events.Event) {
		if m, ok := e.(events.LogMessage); ok {
			fmt.Fprintln(r.log, m.Text)
		}
	})
	client.OnDiagnostic(func(d mutant.Diagnostic) {
		r.logger.Warn().Str("source", d.Source).Msg(d.Message)
	})

	runID, err := client.Start(ctx, params)
	if err != nil {
		return err
	}
	r.logger.Debug().Str("run_id", string(runID)).Str("gene", params.GeneName).Msg("Run started")

	state, err := client.Wait(ctx)
	if err != nil {
		return errors.WrapResource("wait", "run", string(runID), err)
	}

	var failures []error
	if state == mutant.StateErrored {
		failures = append(failures, errors.New("analysis stream failed before completion"))
	}

	result := Result{}
	if state == mutant.StateIdle {
		result, failures = r.followUps(ctx, client, params, failures)
	}
	result.Status = client.Status()
	result.Viewer = map[string][]viewer.Op{
		viewer.SlotTrimmed: r.trimmed.Ops(),
		viewer.SlotMutated: r.mutated.Ops(),
	}

	if r.opts.OutDir != "" {
		files, err := writeBlobs(r.opts.OutDir, client.Blobs())
		result.Files = files
		if err != nil {
			failures = append(failures, err)
		}
	}

	if r.opts.Report != "" {
		if err := r.writeReport(result, client.Blobs()); err != nil {
			failures = append(failures, err)
		} else {
			result.Files = append(result.Files, r.opts.Report)
		}
	}

	if err := r.print(result); err != nil {
		return err
	}
	return errors.Join(failures...)
}

// followUps runs the requested steps in order. A failed step is recorded and
// the remaining steps still run.
func (r *runner) followUps(ctx context.Context, client mutant.Client, params mutant.Params, failures []error) (Result, []error) {
	var result Result
	snapshot := client.Views()

	if r.opts.Isoforms {
		result.Cards = r.cards(ctx, snapshot.FilteredIsoforms, params)
	}

	switch {
	case r.opts.Structure != "":
		isoform, pdbID, chains, _ := ParseStructure(r.opts.Structure)
		if chains == "" {
			chains = listedChains(snapshot, isoform, pdbID)
		}
		if _, err := client.FetchStructure(ctx, isoform, pdbID, chains); err != nil {
			failures = append(failures, err)
		} else {
			result.Structure = isoform + " " + pdbID
		}
	case r.opts.Prediction != "":
		if _, err := client.LoadPrediction(ctx, r.opts.Prediction); err != nil {
			failures = append(failures, err)
		} else {
			result.Prediction = r.opts.Prediction
		}
	}

	if r.opts.Mutate {
		if _, err := client.Mutate(ctx); err != nil {
			failures = append(failures, err)
		} else {
			result.Mutated = true
		}
	}

	if r.opts.Zoom {
		client.ZoomTo(params.Position)
	}

	return result, failures
}

// listedChains returns the chain spec the backend listed for a structure.
func listedChains(s views.Snapshot, isoform, pdbID string) string {
	for _, ref := range views.StructuresFor(s, isoform) {
		if ref.PDBID == pdbID {
			return ref.ChainSpec
		}
	}
	return ""
}

// cards fetches every isoform sequence concurrently and reports the residue at
// the requested position. Lookup failures land on the card.
func (r *runner) cards(ctx context.Context, isoforms []string, params mutant.Params) []report.Card {
	source := r.app.UniProt()
	cards := make([]report.Card, len(isoforms))

	var g errgroup.Group
	g.SetLimit(cardConcurrency)
	for i, iso := range isoforms {
		g.Go(func() error {
			card := report.Card{Isoform: iso}
			residues, err := source.Sequence(ctx, iso)
			if err != nil {
				card.Error = err.Error()
				r.logger.Warn().Err(err).Str("isoform", iso).Msg("Isoform sequence lookup failed")
			} else {
				card.Length = len(residues)
				if params.Position >= 1 && params.Position <= len(residues) {
					card.Residue = residues[params.Position-1 : params.Position]
					card.Matches = card.Residue == params.Residue1
				}
			}
			cards[i] = card
			return nil
		})
	}
	_ = g.Wait()
	return cards
}

func (r *runner) writeReport(result Result, blobs mutant.Blobs) error {
	f, err := os.Create(r.opts.Report)
	if err != nil {
		return &errors.IOError{Operation: "create", Path: r.opts.Report, Err: err}
	}
	defer f.Close()

	rep := report.Report{
		Generated: time.Now(),
		Status:    result.Status,
		Cards:     result.Cards,
		Blobs:     blobs,
		Structure: result.Structure,
		Predicted: result.Prediction,
	}
	if err := report.Write(f, rep); err != nil {
		return &errors.IOError{Operation: "write", Path: r.opts.Report, Err: err}
	}
	return nil
}

// writeBlobs writes every non-empty blob as <kind>.pdb.
func writeBlobs(dir string, blobs mutant.Blobs) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, &errors.IOError{Operation: "mkdir", Path: dir, Err: err}
	}
	var files []string
	for _, kind := range structure.Kinds {
		content := blobs.Get(kind)
		if content == "" {
			continue
		}
		path := filepath.Join(dir, string(kind)+".pdb")
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			return files, &errors.IOError{Operation: "write", Path: path, Err: err}
		}
		files = append(files, path)
	}
	return files, nil
}

func (r *runner) print(result Result) error {
	format := output.Format(r.app.OutputFormat())
	formatter := output.NewFormatter(format)
	if !format.Tabular() {
		return formatter.Format(r.out, result)
	}

	status := result.Status
	sections := []struct {
		title string
		data  output.Data
		show  bool
	}{
		{"Summary", output.SummaryToTableData(status), true},
		{"Isoforms", output.IsoformsToTableData(views.IsoformRows(status.Views)), len(status.Views.AllIsoforms) > 0},
		{"Structures", output.StructuresToTableData(views.Structures(status.Views)), len(status.Views.PDBIDs) > 0},
		{"Isoform Sequences", cardsToTableData(result.Cards), len(result.Cards) > 0},
		{"Diagnostics", output.DiagnosticsToTableData(status.Diagnostics), len(status.Diagnostics) > 0},
	}

	for _, s := range sections {
		if !s.show {
			continue
		}
		heading := s.title
		if format == output.FormatMarkdown {
			heading = "## " + heading
		}
		if _, err := fmt.Fprintf(r.out, "\n%s\n\n", heading); err != nil {
			return err
		}
		if err := formatter.Format(r.out, s.data); err != nil {
			return err
		}
	}

	for _, f := range result.Files {
		if _, err := fmt.Fprintf(r.out, "\nWrote %s", f); err != nil {
			return err
		}
	}
	if len(result.Files) > 0 {
		_, err := fmt.Fprintln(r.out)
		return err
	}
	return nil
}

func cardsToTableData(cards []report.Card) output.Data {
	rows := make([][]string, 0, len(cards))
	for _, c := range cards {
		if c.Error != "" {
			rows = append(rows, []string{c.Isoform, output.Missing, output.Missing, c.Error})
			continue
		}
		match := output.No
		if c.Matches {
			match = output.Yes
		}
		residue := c.Residue
		if residue == "" {
			residue = output.Missing
		}
		rows = append(rows, []string{c.Isoform, fmt.Sprint(c.Length), residue, match})
	}
	return output.Data{
		Headers:         []string{"Isoform", "Length", "Residue", "Matches"},
		Rows:            rows,
		ColumnAlignment: []output.Align{output.AlignLeft, output.AlignRight, output.AlignCenter, output.AlignLeft},
	}
}

// lockedWriter serializes log lines written from client hooks.
type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}
