package structure_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mutantautomate/mutant/pkg/structure"
)

func TestParseChainSpec(t *testing.T) {
	tests := []struct {
		spec string
		want []string
	}{
		{"A=1-100", []string{"A"}},
		{"A/B=1-100", []string{"A", "B"}},
		{"A/B/C=5-80", []string{"A", "B", "C"}},
		{"B", []string{"B"}},
		{"", nil},
		{"=1-100", nil},
		{" A / B =1-9", []string{"A", "B"}},
	}

	for _, tt := range tests {
		t.Run(tt.spec, func(t *testing.T) {
			assert.Equal(t, tt.want, structure.ParseChainSpec(tt.spec))
		})
	}
}

func TestParseFASTA(t *testing.T) {
	header, residues := structure.ParseFASTA(">sp|Q8N2Q7|NLGN1_HUMAN Neuroligin-1\nMALPRC\nTLDFL\n")
	assert.Equal(t, "sp|Q8N2Q7|NLGN1_HUMAN Neuroligin-1", header)
	assert.Equal(t, "MALPRCTLDFL", residues)

	header, residues = structure.ParseFASTA("MKV\nLLA")
	assert.Empty(t, header)
	assert.Equal(t, "MKVLLA", residues)

	header, residues = structure.ParseFASTA("")
	assert.Empty(t, header)
	assert.Empty(t, residues)
}

func TestResidueAt(t *testing.T) {
	r, ok := structure.ResidueAt("MKD", 3)
	assert.True(t, ok)
	assert.Equal(t, byte('D'), r)

	_, ok = structure.ResidueAt("MKD", 0)
	assert.False(t, ok)
	_, ok = structure.ResidueAt("MKD", 4)
	assert.False(t, ok)
}

const samplePDB = `HEADER    TEST
ATOM      1  N   MET A   1      11.104   6.134  -6.504  1.00  0.00           N
ATOM      2  CA  MET A   1      11.639   6.071  -5.147  1.00  0.00           C
ATOM      3  N   LYS A   2      12.104   7.134  -6.504  1.00  0.00           N
ATOM      4  N   ASP B   1      13.104   8.134  -6.504  1.00  0.00           N
HETATM    5  O   HOH B 101      14.104   9.134  -6.504  1.00  0.00           O
END
`

func TestSummarize(t *testing.T) {
	s := structure.Summarize(samplePDB)
	assert.Equal(t, []string{"A", "B"}, s.Chains)
	assert.Equal(t, 5, s.Atoms)
	assert.Equal(t, 4, s.Residues)

	assert.Equal(t, []string{"A", "B"}, structure.Chains(samplePDB))
	assert.Empty(t, structure.Chains("HEADER ONLY\n"))
}
