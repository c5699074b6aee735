// Package run provides the run command: one analysis from submission to
// structures, mutation and report.
package run

import (
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/mutantautomate/mutant"
	"github.com/mutantautomate/mutant/internal/appcontext"
	"github.com/mutantautomate/mutant/pkg/errors"
)

// Options are the follow-up steps requested on the command line.
type Options struct {
	Structure  string
	Prediction string
	Mutate     bool
	Zoom       bool
	Isoforms   bool
	OutDir     string
	Report     string
	Timeout    time.Duration
}

// NewCommand creates the run command.
func NewCommand(app appcontext.Interface) *cobra.Command {
	var opts Options

	cmd := &cobra.Command{
		Use:     "run GENE RESIDUE1 POSITION RESIDUE2",
		GroupID: "core",
		Short:   "Analyze a missense mutation",
		Long: `Run submits a gene and a residue substitution to the analysis backend,
prints its log while it streams, and then prints the findings: Grantham score,
charge statement, isoform filtering and the structures available per isoform.

Follow-up steps run after the stream ends, in this order:
  --isoforms     fetch every filtered isoform sequence and show the residue
                 at POSITION
  --structure    load an experimental structure (ISOFORM:PDB[:CHAINS]); when
                 CHAINS is omitted the chains listed by the backend are used
  --prediction   load the AlphaFold prediction of an isoform instead
  --mutate       apply the substitution to the trimmed structure
  --zoom         highlight POSITION in the loaded models
  --out          write raw.pdb, trimmed.pdb and mutated.pdb to a directory
  --report       write a markdown report`,
		Example: `  mutant run NLGN1 D 140 Y
  mutant run NLGN1 D 140 Y --structure Q8N2Q7:3BIX --mutate --out ./pdb
  mutant run SHANK3 D 26 Y --prediction Q9BYB0 --mutate --report shank3.md -o json`,
		Args: cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			params, err := ParseParams(args)
			if err != nil {
				return err
			}
			if opts.Structure != "" && opts.Prediction != "" {
				return errors.NewValidationError("structure", opts.Structure, "cannot be combined with --prediction")
			}
			if opts.Structure != "" {
				if _, _, _, err := ParseStructure(opts.Structure); err != nil {
					return err
				}
			}
			return newRunner(app, cmd, opts).run(cmd.Context(), params)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.Structure, "structure", "", "load a structure: ISOFORM:PDB[:CHAINS]")
	flags.StringVar(&opts.Prediction, "prediction", "", "load the predicted structure of an isoform")
	flags.BoolVar(&opts.Mutate, "mutate", false, "mutate the loaded structure")
	flags.BoolVar(&opts.Zoom, "zoom", false, "highlight the mutated position")
	flags.BoolVar(&opts.Isoforms, "isoforms", false, "fetch filtered isoform sequences")
	flags.StringVar(&opts.OutDir, "out", "", "directory for .pdb files")
	flags.StringVar(&opts.Report, "report", "", "markdown report file")
	flags.DurationVar(&opts.Timeout, "timeout", 10*time.Minute, "overall time limit (0 for none)")

	return cmd
}

// ParseParams converts the positional arguments. Only POSITION is checked;
// everything else is sent as given.
func ParseParams(args []string) (mutant.Params, error) {
	position, err := strconv.Atoi(args[2])
	if err != nil {
		return mutant.Params{}, errors.NewValidationError("position", args[2], "must be an integer")
	}
	return mutant.Params{
		GeneName: args[0],
		Residue1: args[1],
		Position: position,
		Residue2: args[3],
	}, nil
}

// ParseStructure splits ISOFORM:PDB[:CHAINS]. CHAINS is a chain spec such as
// "A/B=46-635".
func ParseStructure(s string) (isoform, pdbID, chains string, err error) {
	parts := strings.SplitN(s, ":", 3)
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return "", "", "", errors.NewValidationError("structure", s, "must be ISOFORM:PDB[:CHAINS]")
	}
	if len(parts) == 3 {
		chains = parts[2]
	}
	return parts[0], parts[1], chains, nil
}
