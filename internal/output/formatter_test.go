package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mutantautomate/mutant"
	"github.com/mutantautomate/mutant/pkg/events"
	"github.com/mutantautomate/mutant/pkg/views"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"table", FormatTable, false},
		{"JSON", FormatJSON, false},
		{"yaml", FormatYAML, false},
		{"markdown", FormatMarkdown, false},
		{"", "", false},
		{"xml", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDetectFormatExplicit(t *testing.T) {
	assert.Equal(t, FormatYAML, DetectFormat("YAML"))
}

func TestJSONFormatter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewFormatter(FormatJSON).Format(&buf, map[string]int{"events": 3}))
	assert.JSONEq(t, `{"events":3}`, buf.String())
}

func TestYAMLFormatter(t *testing.T) {
	var buf bytes.Buffer
	params := mutant.Params{GeneName: "NLGN1", Residue1: "D", Position: 140, Residue2: "Y"}
	require.NoError(t, NewFormatter(FormatYAML).Format(&buf, params))
	assert.Contains(t, buf.String(), "gene_name: NLGN1")
	assert.Contains(t, buf.String(), "position: 140")
}

func TestTableFormatterData(t *testing.T) {
	var buf bytes.Buffer
	data := ExamplesToTableData(mutant.Examples()[:1])
	require.NoError(t, NewFormatter(FormatTable).Format(&buf, data))

	out := buf.String()
	assert.Contains(t, out, "NLGN1 D140Y")
	assert.Contains(t, out, "140")
}

func TestTableFormatterStructSlice(t *testing.T) {
	var buf bytes.Buffer
	rows := []views.IsoformRow{{Isoform: "Q8N2Q7", HasSequence: true}}
	require.NoError(t, (&TableFormatter{}).Format(&buf, rows))

	out := strings.ToUpper(buf.String())
	assert.Contains(t, out, "HAS SEQUENCE")
	assert.Contains(t, out, "Q8N2Q7")
}

func TestTableFormatterFallsBackToJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&TableFormatter{}).Format(&buf, []string{"a", "b"}))

	var got []string
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, []string{"a", "b"}, got)
}

func TestMarkdownFormatter(t *testing.T) {
	var buf bytes.Buffer
	data := Data{Headers: []string{"Isoform", "PDB ID"}, Rows: [][]string{{"Q8N2Q7", "3BIX"}}}
	require.NoError(t, NewFormatter(FormatMarkdown).Format(&buf, data))

	out := buf.String()
	assert.Contains(t, out, "Isoform")
	assert.Contains(t, out, "Q8N2Q7")
	assert.Contains(t, out, "|")
	assert.Contains(t, out, "3BIX")
}

func TestColumnNameTitleCase(t *testing.T) {
	data, ok := toData(views.StructureRef{Isoform: "Q8N2Q7", PDBID: "3BIX"})
	require.True(t, ok)
	assert.Equal(t, []string{"Property", "Value"}, data.Headers)
	assert.Equal(t, "Isoform", data.Rows[0][0])
	assert.Equal(t, "Pdb Id", data.Rows[1][0])
	assert.Equal(t, "3BIX", data.Rows[1][1])
}

func TestSummaryToTableData(t *testing.T) {
	grantham := "Grantham score: 160"
	status := mutant.Status{
		RunID: "run-1",
		State: mutant.StateIdle,
		Views: views.Snapshot{GranthamScore: &grantham, MatchingIsoforms: []string{}, Done: true, Events: 4},
	}
	data := SummaryToTableData(status)

	values := make(map[string]string, len(data.Rows))
	for _, row := range data.Rows {
		values[row[0]] = row[1]
	}
	assert.Equal(t, "run-1", values["Run"])
	assert.Equal(t, Missing, values["Mutation"])
	assert.Equal(t, grantham, values["Grantham Score"])
	assert.Equal(t, Missing, values["Charge Statement"])
	assert.Equal(t, Missing, values["All Isoforms"])
	assert.Equal(t, "0", values["Matching Isoforms"])
	assert.Equal(t, Yes, values["Done"])
}

func TestStructuresToTableData(t *testing.T) {
	s := views.Compute([]events.Event{
		events.PDBIDs{Entries: map[string][]events.PDBEntry{
			"Q8N2Q7": {{ID: "3BIX", ChainSpec: "A/B=46-635", HasChains: true}, {ID: "2XB6"}},
		}},
	})
	data := StructuresToTableData(views.Structures(s))
	require.Len(t, data.Rows, 2)
	assert.Equal(t, []string{"Q8N2Q7", "3BIX", "A/B=46-635", "A,B"}, data.Rows[0])
	assert.Equal(t, []string{"Q8N2Q7", "2XB6", Missing, Missing}, data.Rows[1])
}
