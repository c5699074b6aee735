package isoform

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mutantautomate/mutant/internal/appcontext"
	"github.com/mutantautomate/mutant/internal/sources/uniprot"
	"github.com/mutantautomate/mutant/internal/transport"
	"github.com/mutantautomate/mutant/pkg/errors"
)

const entryJSON = `{
  "primaryAccession": "Q8N2Q7",
  "uniProtkbId": "NLGN1_HUMAN",
  "entryType": "UniProtKB reviewed (Swiss-Prot)",
  "proteinDescription": {"recommendedName": {"fullName": {"value": "Neuroligin-1"}}},
  "genes": [{"geneName": {"value": "NLGN1"}}],
  "organism": {"scientificName": "Homo sapiens"},
  "sequence": {"value": "MALPRCTWPN", "length": 10}
}`

func newMock(t *testing.T, format string) *appcontext.Mock {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/uniprotkb/Q8N2Q7.json":
			_, _ = io.WriteString(w, entryJSON)
		case "/uniprotkb/Q8N2Q7.fasta":
			_, _ = io.WriteString(w, ">sp|Q8N2Q7|NLGN1_HUMAN\nMALPRCTWPN")
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)

	return &appcontext.Mock{
		UniProtFunc: func() *uniprot.Client {
			return uniprot.New(srv.URL, nil, transport.WithRetries(0))
		},
		OutputFormatFunc: func() string { return format },
	}
}

func execute(mock *appcontext.Mock, args ...string) (string, error) {
	cmd := NewCommand(mock)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestIsoformSummaryJSON(t *testing.T) {
	out, err := execute(newMock(t, "json"), "Q8N2Q7")
	require.NoError(t, err)

	var got Summary
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "Q8N2Q7", got.Accession)
	assert.Equal(t, "NLGN1_HUMAN", got.EntryName)
	assert.True(t, got.Reviewed)
	assert.Equal(t, "Neuroligin-1", got.Protein)
	assert.Equal(t, []string{"NLGN1"}, got.Genes)
	assert.Equal(t, 10, got.Length)
	assert.Contains(t, got.Links.FASTA, "/uniprotkb/Q8N2Q7.fasta")
}

func TestIsoformSummaryTable(t *testing.T) {
	out, err := execute(newMock(t, "table"), "Q8N2Q7")
	require.NoError(t, err)
	assert.Contains(t, out, "Neuroligin-1")
	assert.Contains(t, out, "Homo sapiens")
}

func TestIsoformRecord(t *testing.T) {
	out, err := execute(newMock(t, "table"), "Q8N2Q7", "--record", "FASTA")
	require.NoError(t, err)
	assert.Equal(t, ">sp|Q8N2Q7|NLGN1_HUMAN\nMALPRCTWPN\n", out)
}

func TestIsoformRecordInvalidFormat(t *testing.T) {
	_, err := execute(newMock(t, "table"), "Q8N2Q7", "--record", "xml")
	assert.True(t, errors.IsValidationError(err))
}

func TestIsoformNotFound(t *testing.T) {
	_, err := execute(newMock(t, "json"), "P00000")
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
}

func TestReviewedFlag(t *testing.T) {
	entry := &uniprot.Entry{EntryType: "UniProtKB unreviewed (TrEMBL)"}
	assert.False(t, summarize(entry, uniprot.Links{}).Reviewed)
}
