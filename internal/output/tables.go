package output

import (
	"strconv"
	"strings"

	"github.com/mutantautomate/mutant"
	"github.com/mutantautomate/mutant/pkg/views"
)

// Symbols used in table cells.
const (
	Yes     = "✓"
	No      = "✗"
	Missing = "-"
)

func check(ok bool) string {
	if ok {
		return Yes
	}
	return No
}

func orMissing(s *string) string {
	if s == nil || *s == "" {
		return Missing
	}
	return *s
}

// SummaryToTableData renders the scalar views of a run as a key-value table.
func SummaryToTableData(status mutant.Status) Data {
	params := Missing
	if status.Params != nil {
		params = mutant.Example{Params: *status.Params}.Label()
	}
	s := status.Views
	return Data{
		Headers: []string{"Property", "Value"},
		Rows: [][]string{
			{"Run", string(status.RunID)},
			{"State", string(status.State)},
			{"Mutation", params},
			{"Grantham Score", orMissing(s.GranthamScore)},
			{"Charge Statement", orMissing(s.ChargeStatement)},
			{"All Isoforms", countOrMissing(s.AllIsoforms)},
			{"Matching Isoforms", countOrMissing(s.MatchingIsoforms)},
			{"Filtered Isoforms", countOrMissing(s.FilteredIsoforms)},
			{"Structures", strconv.Itoa(len(views.Structures(s)))},
			{"Events", strconv.Itoa(s.Events)},
			{"Done", check(s.Done)},
		},
	}
}

func countOrMissing(ids []string) string {
	if ids == nil {
		return Missing
	}
	return strconv.Itoa(len(ids))
}

// IsoformsToTableData renders the isoform filter table.
func IsoformsToTableData(rows []views.IsoformRow) Data {
	out := make([][]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, []string{r.Isoform, check(r.HasSequence), check(r.ResidueMatch), check(r.GeneNameMatch)})
	}
	return Data{
		Headers:         []string{"Isoform", "Sequence", "Residue Match", "Gene Name Match"},
		Rows:            out,
		ColumnAlignment: []Align{AlignLeft, AlignCenter, AlignCenter, AlignCenter},
	}
}

// StructuresToTableData renders the loadable structures of every isoform.
func StructuresToTableData(refs []views.StructureRef) Data {
	rows := make([][]string, 0, len(refs))
	for _, ref := range refs {
		chains := Missing
		if len(ref.Chains) > 0 {
			chains = strings.Join(ref.Chains, ",")
		}
		spec := ref.ChainSpec
		if spec == "" {
			spec = Missing
		}
		rows = append(rows, []string{ref.Isoform, ref.PDBID, spec, chains})
	}
	return Data{
		Headers: []string{"Isoform", "PDB ID", "Chain Spec", "Chains"},
		Rows:    rows,
	}
}

// ExamplesToTableData renders the preset analysis requests.
func ExamplesToTableData(examples []mutant.Example) Data {
	rows := make([][]string, 0, len(examples))
	for _, e := range examples {
		rows = append(rows, []string{e.Label(), e.GeneName, e.Residue1, strconv.Itoa(e.Position), e.Residue2})
	}
	return Data{
		Headers:         []string{"Example", "Gene", "Residue 1", "Position", "Residue 2"},
		Rows:            rows,
		ColumnAlignment: []Align{AlignLeft, AlignLeft, AlignCenter, AlignRight, AlignCenter},
	}
}

// DiagnosticsToTableData renders recorded failures.
func DiagnosticsToTableData(diags []mutant.Diagnostic) Data {
	rows := make([][]string, 0, len(diags))
	for _, d := range diags {
		rows = append(rows, []string{d.Time.Format("15:04:05"), d.Source, d.Message})
	}
	return Data{
		Headers: []string{"Time", "Source", "Message"},
		Rows:    rows,
	}
}
