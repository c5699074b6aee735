package events_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mutantautomate/mutant/pkg/errors"
	"github.com/mutantautomate/mutant/pkg/events"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name string
		data string
		want []events.Event
	}{
		{
			name: "log message",
			data: `{"message": "Fetching isoforms for NLGN1"}`,
			want: []events.Event{events.LogMessage{Text: "Fetching isoforms for NLGN1"}},
		},
		{
			name: "empty log message is kept",
			data: `{"message": ""}`,
			want: []events.Event{events.LogMessage{Text: ""}},
		},
		{
			name: "grantham score",
			data: `{"type": "grantham_score", "grantham_statement": "Score 160: radical"}`,
			want: []events.Event{events.GranthamScore{Statement: "Score 160: radical"}},
		},
		{
			name: "charge statement",
			data: `{"type": "charge_statement", "charge_statement": "negative to neutral"}`,
			want: []events.Event{events.ChargeStatement{Statement: "negative to neutral"}},
		},
		{
			name: "sequence",
			data: `{"type": "sequence", "isoform": "Q8N2Q7-1", "sequence": "MALP"}`,
			want: []events.Event{events.Sequence{Isoform: "Q8N2Q7-1", Text: "MALP"}},
		},
		{
			name: "done",
			data: `{"type": "done"}`,
			want: []events.Event{events.Done{}},
		},
		{
			name: "empty isoform list is present",
			data: `{"all_isoforms": []}`,
			want: []events.Event{events.AllIsoforms{IDs: []string{}}},
		},
		{
			name: "log message with matching isoforms",
			data: `{"message": "2 isoforms match", "matching_isoforms": ["A", "B"]}`,
			want: []events.Event{
				events.LogMessage{Text: "2 isoforms match"},
				events.MatchingIsoforms{IDs: []string{"A", "B"}},
			},
		},
		{
			name: "field order is fixed",
			data: `{"pdb_ids": {}, "filtered_isoforms": ["C"], "all_isoforms": ["A"], "type": "done"}`,
			want: []events.Event{
				events.Done{},
				events.AllIsoforms{IDs: []string{"A"}},
				events.FilteredIsoforms{IDs: []string{"C"}},
				events.PDBIDs{Entries: map[string][]events.PDBEntry{}},
			},
		},
		{
			name: "pdb ids with and without chains",
			data: `{"pdb_ids": {"P12345": [["1ABC", "A/B=1-100"], ["2XYZ", null], ["3DEF"]]}}`,
			want: []events.Event{events.PDBIDs{Entries: map[string][]events.PDBEntry{
				"P12345": {
					{ID: "1ABC", ChainSpec: "A/B=1-100", HasChains: true},
					{ID: "2XYZ"},
					{ID: "3DEF"},
				},
			}}},
		},
		{
			name: "null fields are absent",
			data: `{"message": "hi", "matching_isoforms": null, "pdb_ids": null}`,
			want: []events.Event{events.LogMessage{Text: "hi"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := events.Decode([]byte(tt.data))
			require.NoError(t, err)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Decode() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name         string
		data         string
		unrecognized bool
	}{
		{name: "invalid json", data: `{"message": `},
		{name: "not an object", data: `["message"]`},
		{name: "null", data: `null`},
		{name: "unknown shape", data: `{"pairwise_scores": {"A": 1}}`, unrecognized: true},
		{name: "unknown type", data: `{"type": "heartbeat"}`, unrecognized: true},
		{name: "isoforms not a list", data: `{"all_isoforms": "A,B"}`},
		{name: "pdb entry without id", data: `{"pdb_ids": {"P1": [[]]}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := events.Decode([]byte(tt.data))
			require.Error(t, err)
			assert.Nil(t, got)

			var parseErr *errors.ParseError
			assert.True(t, errors.As(err, &parseErr))
			assert.Equal(t, tt.unrecognized, errors.Is(err, errors.ErrUnrecognizedEvent))
		})
	}
}

func TestDecodeKeepsValidSiblings(t *testing.T) {
	tests := []struct {
		name string
		data string
		want []events.Event
	}{
		{
			name: "log line next to bad isoform list",
			data: `{"message": "x", "all_isoforms": "bad"}`,
			want: []events.Event{events.LogMessage{Text: "x"}},
		},
		{
			name: "isoforms next to bad pdb ids",
			data: `{"matching_isoforms": ["A"], "pdb_ids": {"A": [[]]}}`,
			want: []events.Event{events.MatchingIsoforms{IDs: []string{"A"}}},
		},
		{
			name: "log line next to bad type",
			data: `{"message": "y", "type": 7}`,
			want: []events.Event{events.LogMessage{Text: "y"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := events.Decode([]byte(tt.data))
			require.Error(t, err)

			var parseErr *errors.ParseError
			assert.True(t, errors.As(err, &parseErr))
			assert.False(t, errors.Is(err, errors.ErrUnrecognizedEvent))
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Decode() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestEncodeDecode(t *testing.T) {
	all := []events.Event{
		events.LogMessage{Text: "line"},
		events.GranthamScore{Statement: "g"},
		events.ChargeStatement{Statement: "c"},
		events.AllIsoforms{IDs: []string{"A", "B"}},
		events.MatchingIsoforms{IDs: []string{}},
		events.FilteredIsoforms{IDs: []string{"B"}},
		events.PDBIDs{Entries: map[string][]events.PDBEntry{"B": {{ID: "1ABC", ChainSpec: "A=1-9", HasChains: true}, {ID: "2DEF"}}}},
		events.Sequence{Isoform: "B", Text: "MKV"},
		events.Done{},
	}

	for _, e := range all {
		t.Run(string(e.Kind()), func(t *testing.T) {
			data, err := events.Encode(e)
			require.NoError(t, err)

			got, err := events.Decode(data)
			require.NoError(t, err)
			require.Len(t, got, 1)
			if diff := cmp.Diff(e, got[0]); diff != "" {
				t.Errorf("round trip mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestEncodeNil(t *testing.T) {
	_, err := events.Encode(nil)
	assert.True(t, errors.IsValidationError(err))
}
