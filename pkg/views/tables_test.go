package views_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mutantautomate/mutant/pkg/events"
	"github.com/mutantautomate/mutant/pkg/views"
)

func TestIsoformRows(t *testing.T) {
	s := views.Compute([]events.Event{
		events.AllIsoforms{IDs: []string{"A", "B", "C"}},
		events.Sequence{Isoform: "A", Text: "MK"},
		events.Sequence{Isoform: "B", Text: "MK"},
		events.MatchingIsoforms{IDs: []string{"A", "B"}},
		events.FilteredIsoforms{IDs: []string{"B"}},
	})

	assert.Equal(t, []views.IsoformRow{
		{Isoform: "A", HasSequence: true, ResidueMatch: true},
		{Isoform: "B", HasSequence: true, ResidueMatch: true, GeneNameMatch: true},
		{Isoform: "C"},
	}, views.IsoformRows(s))

	assert.Empty(t, views.IsoformRows(views.Snapshot{}))
}

func TestStructures(t *testing.T) {
	s := views.Compute([]events.Event{
		events.PDBIDs{Entries: map[string][]events.PDBEntry{
			"Q2": {{ID: "2XYZ"}},
			"Q1": {
				{ID: "1ABC", ChainSpec: "A/B=1-100", HasChains: true},
				{ID: "1DEF", ChainSpec: "C=3-40", HasChains: true},
			},
		}},
	})

	assert.Equal(t, []views.StructureRef{
		{Isoform: "Q1", PDBID: "1ABC", ChainSpec: "A/B=1-100", Chains: []string{"A", "B"}},
		{Isoform: "Q1", PDBID: "1DEF", ChainSpec: "C=3-40", Chains: []string{"C"}},
		{Isoform: "Q2", PDBID: "2XYZ"},
	}, views.Structures(s))

	assert.Len(t, views.StructuresFor(s, "Q1"), 2)
	assert.Empty(t, views.StructuresFor(s, "Q3"))
}
