// Package structure holds small parsers for the text formats the client
// handles: chain specifications, FASTA sequences and PDB coordinate files.
package structure

import (
	"bufio"
	"slices"
	"strings"
)

// ParseChainSpec returns the chain identifiers named by a chain specification
// such as "A/B=1-100". The residue range after "=" is ignored. An empty
// specification selects no chains, which means no filtering.
func ParseChainSpec(spec string) []string {
	head, _, _ := strings.Cut(spec, "=")
	var chains []string
	for _, c := range strings.Split(head, "/") {
		if c = strings.TrimSpace(c); c != "" {
			chains = append(chains, c)
		}
	}
	return chains
}

// ParseFASTA splits a single-record FASTA document into its header line
// (without the leading '>') and its residues. Line breaks and any character
// outside A-Z are dropped from the residues.
func ParseFASTA(text string) (header, residues string) {
	var b strings.Builder
	sc := bufio.NewScanner(strings.NewReader(text))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	firstLine := true
	for sc.Scan() {
		line := sc.Text()
		if firstLine {
			firstLine = false
			if h, ok := strings.CutPrefix(line, ">"); ok {
				header = strings.TrimSpace(h)
				continue
			}
		}
		for _, r := range line {
			if r >= 'A' && r <= 'Z' {
				b.WriteRune(r)
			}
		}
	}
	return header, b.String()
}

// ResidueAt returns the residue at a 1-based position.
func ResidueAt(residues string, position int) (byte, bool) {
	if position < 1 || position > len(residues) {
		return 0, false
	}
	return residues[position-1], true
}

// Summary describes the contents of a PDB file.
type Summary struct {
	Chains   []string `json:"chains" yaml:"chains"`
	Atoms    int      `json:"atoms" yaml:"atoms"`
	Residues int      `json:"residues" yaml:"residues"`
}

// Summarize counts atoms and residues and lists chains in order of first
// appearance. Only ATOM and HETATM records are considered.
func Summarize(pdb string) Summary {
	var s Summary
	type residueKey struct {
		chain string
		seq   string
	}
	seen := make(map[residueKey]bool)

	for line := range strings.Lines(pdb) {
		if !strings.HasPrefix(line, "ATOM  ") && !strings.HasPrefix(line, "HETATM") {
			continue
		}
		s.Atoms++
		if len(line) < 27 {
			continue
		}
		chain := strings.TrimSpace(line[21:22])
		if !slices.Contains(s.Chains, chain) {
			s.Chains = append(s.Chains, chain)
		}
		key := residueKey{chain: chain, seq: strings.TrimSpace(line[22:27])}
		if !seen[key] {
			seen[key] = true
			s.Residues++
		}
	}
	return s
}

// Chains lists the chain identifiers present in a PDB file.
func Chains(pdb string) []string {
	return Summarize(pdb).Chains
}

// Kind names one of the structure blobs a client holds.
type Kind string

// Structure blob kinds.
const (
	Raw     Kind = "raw"
	Trimmed Kind = "trimmed"
	Mutated Kind = "mutated"
)

// Kinds lists every blob kind in notification order.
var Kinds = []Kind{Raw, Trimmed, Mutated}

// ParseKind converts a string to a Kind.
func ParseKind(s string) (Kind, bool) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	return k, slices.Contains(Kinds, k)
}
