package report

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mutantautomate/mutant"
	"github.com/mutantautomate/mutant/pkg/events"
	"github.com/mutantautomate/mutant/pkg/views"
)

func finishedRun() mutant.Status {
	params := mutant.Params{GeneName: "NLGN1", Residue1: "D", Position: 140, Residue2: "Y"}
	snapshot := views.Compute([]events.Event{
		events.LogMessage{Text: "Analyzing NLGN1"},
		events.GranthamScore{Statement: "Grantham score: 160"},
		events.AllIsoforms{IDs: []string{"Q8N2Q7", "Q8N2Q7-2"}},
		events.MatchingIsoforms{IDs: []string{"Q8N2Q7"}},
		events.PDBIDs{Entries: map[string][]events.PDBEntry{
			"Q8N2Q7": {{ID: "3BIX", ChainSpec: "A/B=46-635", HasChains: true}},
		}},
		events.Done{},
	})
	return mutant.Status{
		RunID:  "run-1",
		State:  mutant.StateIdle,
		Params: &params,
		Views:  snapshot,
		Diagnostics: []mutant.Diagnostic{
			{Time: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC), Source: mutant.SourceMutate, Message: "backend unavailable"},
		},
	}
}

func TestWrite(t *testing.T) {
	var buf bytes.Buffer
	r := Report{
		Generated: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
		Status:    finishedRun(),
		Cards: []Card{
			{Isoform: "Q8N2Q7", Length: 823, Residue: "D", Matches: true},
			{Isoform: "Q8N2Q7-2", Error: "not found"},
		},
		Blobs:     mutant.Blobs{Raw: "HEADER\nATOM\n", Trimmed: "ATOM\n"},
		Structure: "Q8N2Q7 3BIX",
	}
	require.NoError(t, Write(&buf, r))

	out := buf.String()
	assert.Contains(t, out, "# Mutation report: NLGN1 D140Y")
	assert.Contains(t, out, "Grantham score: 160")
	assert.Contains(t, out, "not reported")
	assert.Contains(t, out, "## Isoforms")
	assert.Contains(t, out, "## Isoform sequences")
	assert.Contains(t, out, "823")
	assert.Contains(t, out, "not found")
	assert.Contains(t, out, "[3BIX](")
	assert.Contains(t, out, "A/B=46-635")
	assert.Contains(t, out, "raw: 12 bytes, 2 lines")
	assert.Contains(t, out, "trimmed: 5 bytes, 1 lines")
	assert.NotContains(t, out, "mutated:")
	assert.Contains(t, out, "Structure: Q8N2Q7 3BIX")
	assert.Contains(t, out, "backend unavailable")
	assert.Contains(t, out, "2024-01-02T03:04:05Z")
	assert.Contains(t, out, "Analyzing NLGN1")
}

func TestWriteEmptyRun(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, Report{Status: mutant.Status{State: mutant.StateIdle}}))

	out := buf.String()
	assert.Contains(t, out, "# Mutation report")
	assert.NotContains(t, out, "## Isoforms")
	assert.NotContains(t, out, "## Structures")
	assert.NotContains(t, out, "## Loaded models")
	assert.NotContains(t, out, "## Log")
}
