// Package isoform provides the isoform lookup command.
package isoform

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mutantautomate/mutant/internal/appcontext"
	"github.com/mutantautomate/mutant/internal/output"
	"github.com/mutantautomate/mutant/internal/sources/uniprot"
	"github.com/mutantautomate/mutant/pkg/errors"
)

// Summary is the printed form of an isoform record.
type Summary struct {
	Accession string        `json:"accession" yaml:"accession"`
	EntryName string        `json:"entry_name" yaml:"entry_name"`
	Reviewed  bool          `json:"reviewed" yaml:"reviewed"`
	Protein   string        `json:"protein,omitempty" yaml:"protein,omitempty"`
	Genes     []string      `json:"genes,omitempty" yaml:"genes,omitempty"`
	Organism  string        `json:"organism,omitempty" yaml:"organism,omitempty"`
	Length    int           `json:"length" yaml:"length"`
	Links     uniprot.Links `json:"links" yaml:"links"`
}

// NewCommand creates the isoform command.
func NewCommand(app appcontext.Interface) *cobra.Command {
	var record string

	cmd := &cobra.Command{
		Use:     "isoform ID",
		GroupID: "lookup",
		Short:   "Show a UniProt isoform record",
		Long: `Isoform looks up a UniProtKB accession, such as Q8N2Q7 or Q8N2Q7-2,
and prints its names, sequence length and record links.

With --record the raw record is printed instead, as fasta, txt or json.`,
		Example: `  mutant isoform Q8N2Q7
  mutant isoform Q8N2Q7-2 --record fasta`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := strings.TrimSpace(args[0])
			source := app.UniProt()

			if record != "" {
				return printRecord(cmd, source, id, record)
			}

			entry, err := source.Entry(cmd.Context(), id)
			if err != nil {
				return err
			}
			summary := summarize(entry, source.Links(id))

			format := output.Format(app.OutputFormat())
			var data any = summary
			if format.Tabular() {
				data = toTableData(summary)
			}
			return output.NewFormatter(format).Format(cmd.OutOrStdout(), data)
		},
	}

	cmd.Flags().StringVar(&record, "record", "", "print the raw record: fasta, txt or json")

	return cmd
}

func printRecord(cmd *cobra.Command, source *uniprot.Client, id, record string) error {
	format := uniprot.Format(strings.ToLower(record))
	switch format {
	case uniprot.FormatFASTA, uniprot.FormatText, uniprot.FormatJSON:
	default:
		return errors.NewValidationError("record", record, "must be one of: fasta, txt, json")
	}

	text, err := source.Record(cmd.Context(), id, format)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if _, err := io.WriteString(out, text); err != nil {
		return err
	}
	if !strings.HasSuffix(text, "\n") {
		_, err = fmt.Fprintln(out)
	}
	return err
}

func summarize(entry *uniprot.Entry, links uniprot.Links) Summary {
	return Summary{
		Accession: entry.PrimaryAccession,
		EntryName: entry.UniProtKBID,
		Reviewed:  strings.Contains(strings.ToLower(entry.EntryType), " reviewed"),
		Protein:   entry.ProteinName(),
		Genes:     entry.GeneNames(),
		Organism:  entry.Organism.ScientificName,
		Length:    entry.Sequence.Length,
		Links:     links,
	}
}

func toTableData(s Summary) output.Data {
	reviewed := output.No
	if s.Reviewed {
		reviewed = output.Yes
	}
	return output.Data{
		Headers: []string{"Property", "Value"},
		Rows: [][]string{
			{"Accession", s.Accession},
			{"Entry Name", s.EntryName},
			{"Reviewed", reviewed},
			{"Protein", orMissing(s.Protein)},
			{"Genes", orMissing(strings.Join(s.Genes, ", "))},
			{"Organism", orMissing(s.Organism)},
			{"Length", strconv.Itoa(s.Length)},
			{"Page", s.Links.Page},
			{"FASTA", s.Links.FASTA},
			{"Text", s.Links.Text},
			{"JSON", s.Links.JSON},
		},
	}
}

func orMissing(s string) string {
	if s == "" {
		return output.Missing
	}
	return s
}
