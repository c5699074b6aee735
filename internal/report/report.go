// Package report renders a finished analysis run as a markdown document.
package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	md "github.com/nao1215/markdown"

	"github.com/mutantautomate/mutant"
	"github.com/mutantautomate/mutant/internal/sources/rcsb"
	"github.com/mutantautomate/mutant/pkg/views"
)

// Card summarizes one isoform sequence at the requested position.
type Card struct {
	Isoform string `json:"isoform" yaml:"isoform"`
	Length  int    `json:"length" yaml:"length"`
	Residue string `json:"residue,omitempty" yaml:"residue,omitempty"`
	Matches bool   `json:"matches" yaml:"matches"`
	Error   string `json:"error,omitempty" yaml:"error,omitempty"`
}

// Report is everything a run produced.
type Report struct {
	Generated time.Time
	Status    mutant.Status
	Cards     []Card
	Blobs     mutant.Blobs
	Structure string
	Predicted string
}

// Title returns the document title.
func (r Report) Title() string {
	if r.Status.Params == nil {
		return "Mutation report"
	}
	return "Mutation report: " + mutant.Example{Params: *r.Status.Params}.Label()
}

// Write renders the report.
func Write(w io.Writer, r Report) error {
	s := r.Status.Views
	doc := md.NewMarkdown(w)

	doc.H1(r.Title()).LF()
	doc.BulletList(summary(r)...).LF()

	doc.H2("Statements").LF()
	doc.BulletList(
		md.Bold("Grantham score")+": "+text(s.GranthamScore),
		md.Bold("Charge")+": "+text(s.ChargeStatement),
	).LF()

	if rows := views.IsoformRows(s); len(rows) > 0 {
		doc.H2("Isoforms").LF()
		table := md.TableSet{Header: []string{"Isoform", "Sequence", "Residue match", "Gene name match"}}
		for _, row := range rows {
			table.Rows = append(table.Rows, []string{
				md.Code(row.Isoform), mark(row.HasSequence), mark(row.ResidueMatch), mark(row.GeneNameMatch),
			})
		}
		doc.Table(table).LF()
	}

	if len(r.Cards) > 0 {
		doc.H2("Isoform sequences").LF()
		table := md.TableSet{Header: []string{"Isoform", "Length", "Residue", "Matches"}}
		for _, c := range r.Cards {
			if c.Error != "" {
				table.Rows = append(table.Rows, []string{md.Code(c.Isoform), "-", "-", c.Error})
				continue
			}
			table.Rows = append(table.Rows, []string{
				md.Code(c.Isoform), strconv.Itoa(c.Length), dash(c.Residue), mark(c.Matches),
			})
		}
		doc.Table(table).LF()
	}

	if refs := views.Structures(s); len(refs) > 0 {
		doc.H2("Structures").LF()
		table := md.TableSet{Header: []string{"Isoform", "PDB ID", "Chains"}}
		for _, ref := range refs {
			table.Rows = append(table.Rows, []string{
				md.Code(ref.Isoform), md.Link(ref.PDBID, rcsb.PageURL(ref.PDBID)), dash(ref.ChainSpec),
			})
		}
		doc.Table(table).LF()
	}

	if loaded := loadedBlobs(r.Blobs); len(loaded) > 0 {
		doc.H2("Loaded models").LF()
		if r.Structure != "" {
			doc.PlainTextf("Structure: %s", r.Structure).LF().LF()
		}
		if r.Predicted != "" {
			doc.PlainTextf("Prediction: %s", r.Predicted).LF().LF()
		}
		doc.BulletList(loaded...).LF()
	}

	if len(r.Status.Diagnostics) > 0 {
		doc.H2("Diagnostics").LF()
		table := md.TableSet{Header: []string{"Time", "Source", "Message"}}
		for _, d := range r.Status.Diagnostics {
			table.Rows = append(table.Rows, []string{d.Time.UTC().Format(time.RFC3339), d.Source, d.Message})
		}
		doc.Table(table).LF()
	}

	if s.Log != "" {
		doc.H2("Log").LF()
		doc.CodeBlocks(md.SyntaxHighlight("text"), s.Log).LF()
	}

	return doc.Build()
}

func summary(r Report) []string {
	items := []string{
		md.Bold("Run") + ": " + md.Code(string(r.Status.RunID)),
		md.Bold("State") + ": " + string(r.Status.State),
		md.Bold("Events") + ": " + strconv.Itoa(r.Status.Views.Events),
	}
	if !r.Generated.IsZero() {
		items = append(items, md.Bold("Generated")+": "+r.Generated.UTC().Format(time.RFC3339))
	}
	return items
}

func loadedBlobs(b mutant.Blobs) []string {
	var items []string
	for _, kind := range []mutant.BlobKind{mutant.BlobRaw, mutant.BlobTrimmed, mutant.BlobMutated} {
		if content := b.Get(kind); content != "" {
			items = append(items, fmt.Sprintf("%s: %d bytes, %d lines", kind, len(content), strings.Count(content, "\n")))
		}
	}
	return items
}

func text(s *string) string {
	if s == nil || *s == "" {
		return "not reported"
	}
	return *s
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func mark(ok bool) string {
	if ok {
		return "yes"
	}
	return "no"
}
