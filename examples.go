package mutant

import "fmt"

// Example is a preset analysis request.
type Example struct {
	Params
}

// Label returns the short form used on buttons and in tables, e.g. "NLGN1 D140Y".
func (e Example) Label() string {
	return fmt.Sprintf("%s %s%d%s", e.GeneName, e.Residue1, e.Position, e.Residue2)
}

var examples = []Example{
	{Params{GeneName: "NLGN1", Residue1: "D", Position: 140, Residue2: "Y"}},
	{Params{GeneName: "SHANK3", Residue1: "D", Position: 26, Residue2: "Y"}},
	{Params{GeneName: "NRXN1", Residue1: "K", Position: 287, Residue2: "E"}},
	{Params{GeneName: "CSNK1G1", Residue1: "T", Position: 140, Residue2: "C"}},
	{Params{GeneName: "SCN2A", Residue1: "R", Position: 1635, Residue2: "C"}},
}

// Examples returns the preset analysis requests.
func Examples() []Example {
	out := make([]Example, len(examples))
	copy(out, examples)
	return out
}
