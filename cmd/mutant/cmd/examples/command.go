// Package examples provides the examples command.
package examples

import (
	"github.com/spf13/cobra"

	"github.com/mutantautomate/mutant"
	"github.com/mutantautomate/mutant/internal/appcontext"
	"github.com/mutantautomate/mutant/internal/output"
)

// Entry is one preset as printed by the command.
type Entry struct {
	Label         string `json:"label" yaml:"label"`
	mutant.Params `yaml:",inline"`
}

// NewCommand creates the examples command.
func NewCommand(app appcontext.Interface) *cobra.Command {
	return &cobra.Command{
		Use:     "examples",
		GroupID: "lookup",
		Short:   "List preset analysis requests",
		Example: `  mutant examples
  mutant examples -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			presets := mutant.Examples()
			format := output.Format(app.OutputFormat())

			var data any
			if format.Tabular() {
				data = output.ExamplesToTableData(presets)
			} else {
				entries := make([]Entry, 0, len(presets))
				for _, e := range presets {
					entries = append(entries, Entry{Label: e.Label(), Params: e.Params})
				}
				data = entries
			}
			return output.NewFormatter(format).Format(cmd.OutOrStdout(), data)
		},
	}
}
