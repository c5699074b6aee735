// Package sources names the upstream services the client depends on.
//
// Each service lives in its own subpackage; the interfaces here are what the
// client accepts, so tests can substitute any of them.
package sources

import (
	"context"
	"io"
)

// ID identifies an upstream service in logs, errors and diagnostics.
type ID string

// Upstream service identifiers.
const (
	Backend   ID = "backend"
	UniProt   ID = "uniprot"
	RCSB      ID = "rcsb"
	AlphaFold ID = "alphafold"
)

// String returns the string representation of a source ID.
func (id ID) String() string {
	return string(id)
}

// Analyzer is the analysis backend.
type Analyzer interface {
	// Stream opens the progress stream for one analysis request.
	Stream(ctx context.Context, geneName, residue1 string, position int, residue2 string) (io.ReadCloser, error)

	// Trim reduces a structure to the given chains. Nil chains keeps every chain.
	Trim(ctx context.Context, pdb string, chains []string) (string, error)

	// Mutate applies a point substitution to a trimmed structure.
	Mutate(ctx context.Context, pdb, residue1 string, position int, residue2 string) (string, error)
}

// SequenceSource returns FASTA records for isoforms.
type SequenceSource interface {
	FASTA(ctx context.Context, isoform string) (string, error)
}

// StructureSource downloads experimental structures.
type StructureSource interface {
	PDB(ctx context.Context, pdbID string) (string, error)
}

// PredictionSource looks up predicted structures.
type PredictionSource interface {
	// PredictionURL returns the model URL of the first prediction candidate.
	PredictionURL(ctx context.Context, isoform string) (string, error)

	// Download fetches a model by URL.
	Download(ctx context.Context, url string) (string, error)
}
