package views

import (
	"slices"
	"sort"

	"github.com/mutantautomate/mutant/pkg/structure"
)

// IsoformRow summarizes how one isoform fared in the filtering steps.
type IsoformRow struct {
	Isoform       string `json:"isoform" yaml:"isoform"`
	HasSequence   bool   `json:"has_sequence" yaml:"has_sequence"`
	ResidueMatch  bool   `json:"residue_match" yaml:"residue_match"`
	GeneNameMatch bool   `json:"gene_name_match" yaml:"gene_name_match"`
}

// IsoformRows builds one row per isoform in the all-isoforms view.
func IsoformRows(s Snapshot) []IsoformRow {
	withSeq := make(map[string]bool, len(s.Sequences))
	for _, seq := range s.Sequences {
		withSeq[seq.Isoform] = true
	}

	rows := make([]IsoformRow, 0, len(s.AllIsoforms))
	for _, iso := range s.AllIsoforms {
		rows = append(rows, IsoformRow{
			Isoform:       iso,
			HasSequence:   withSeq[iso],
			ResidueMatch:  slices.Contains(s.MatchingIsoforms, iso),
			GeneNameMatch: slices.Contains(s.FilteredIsoforms, iso),
		})
	}
	return rows
}

// StructureRef is one loadable experimental structure of an isoform.
type StructureRef struct {
	Isoform   string   `json:"isoform" yaml:"isoform"`
	PDBID     string   `json:"pdb_id" yaml:"pdb_id"`
	ChainSpec string   `json:"chain_spec,omitempty" yaml:"chain_spec,omitempty"`
	Chains    []string `json:"chains,omitempty" yaml:"chains,omitempty"`
}

// Structures flattens the structure map, ordered by isoform then arrival order.
func Structures(s Snapshot) []StructureRef {
	isoforms := make([]string, 0, len(s.PDBIDs))
	for iso := range s.PDBIDs {
		isoforms = append(isoforms, iso)
	}
	sort.Strings(isoforms)

	var refs []StructureRef
	for _, iso := range isoforms {
		for _, entry := range s.PDBIDs[iso] {
			ref := StructureRef{Isoform: iso, PDBID: entry.ID}
			if entry.HasChains {
				ref.ChainSpec = entry.ChainSpec
				ref.Chains = structure.ParseChainSpec(entry.ChainSpec)
			}
			refs = append(refs, ref)
		}
	}
	return refs
}

// StructuresFor returns the structures listed for one isoform.
func StructuresFor(s Snapshot, isoform string) []StructureRef {
	var refs []StructureRef
	for _, ref := range Structures(s) {
		if ref.Isoform == isoform {
			refs = append(refs, ref)
		}
	}
	return refs
}
