// Package uniprot fetches isoform records from the UniProt REST API.
package uniprot

import (
	"context"
	"net/url"
	"strings"

	"github.com/mutantautomate/mutant/internal/cache"
	"github.com/mutantautomate/mutant/internal/sources"
	"github.com/mutantautomate/mutant/internal/transport"
	"github.com/mutantautomate/mutant/pkg/constants"
	"github.com/mutantautomate/mutant/pkg/errors"
	"github.com/mutantautomate/mutant/pkg/structure"
)

// Format is a UniProtKB record format.
type Format string

// Record formats served by the REST API.
const (
	FormatFASTA Format = "fasta"
	FormatText  Format = "txt"
	FormatJSON  Format = "json"
)

// Client fetches UniProtKB records.
type Client struct {
	baseURL   string
	transport *transport.Client
	cache     *cache.Cache
}

var _ sources.SequenceSource = (*Client)(nil)

// New creates a UniProt client. An empty baseURL uses constants.DefaultUniProtURL.
// A nil store disables caching.
func New(baseURL string, store *cache.Cache, opts ...transport.Option) *Client {
	if baseURL == "" {
		baseURL = constants.DefaultUniProtURL
	}
	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		transport: transport.New(sources.UniProt.String(), opts...),
		cache:     store,
	}
}

// RecordURL returns the REST URL of an isoform record.
func (c *Client) RecordURL(isoform string, format Format) string {
	return c.baseURL + "/uniprotkb/" + url.PathEscape(isoform) + "." + string(format)
}

// Record fetches the raw record text.
func (c *Client) Record(ctx context.Context, isoform string, format Format) (string, error) {
	if isoform == "" {
		return "", errors.NewValidationError("isoform", isoform, "must not be empty")
	}
	u := c.RecordURL(isoform, format)
	return c.cache.Text(ctx, u, func(ctx context.Context) (string, error) {
		return c.transport.GetText(ctx, u)
	})
}

// FASTA implements sources.SequenceSource.
func (c *Client) FASTA(ctx context.Context, isoform string) (string, error) {
	return c.Record(ctx, isoform, FormatFASTA)
}

// Sequence fetches the FASTA record and returns its residues only.
func (c *Client) Sequence(ctx context.Context, isoform string) (string, error) {
	text, err := c.FASTA(ctx, isoform)
	if err != nil {
		return "", err
	}
	_, residues := structure.ParseFASTA(text)
	return residues, nil
}

// Entry is the subset of a UniProtKB JSON record the CLI reports.
type Entry struct {
	PrimaryAccession string `json:"primaryAccession"`
	UniProtKBID      string `json:"uniProtkbId"`
	EntryType        string `json:"entryType"`

	ProteinDescription struct {
		RecommendedName struct {
			FullName struct {
				Value string `json:"value"`
			} `json:"fullName"`
		} `json:"recommendedName"`
	} `json:"proteinDescription"`

	Genes []struct {
		GeneName struct {
			Value string `json:"value"`
		} `json:"geneName"`
	} `json:"genes"`

	Organism struct {
		ScientificName string `json:"scientificName"`
	} `json:"organism"`

	Sequence struct {
		Value  string `json:"value"`
		Length int    `json:"length"`
	} `json:"sequence"`
}

// ProteinName returns the recommended full name, if any.
func (e *Entry) ProteinName() string {
	return e.ProteinDescription.RecommendedName.FullName.Value
}

// GeneNames returns the primary gene names.
func (e *Entry) GeneNames() []string {
	names := make([]string, 0, len(e.Genes))
	for _, g := range e.Genes {
		if g.GeneName.Value != "" {
			names = append(names, g.GeneName.Value)
		}
	}
	return names
}

// Entry fetches and decodes the JSON record of an isoform.
func (c *Client) Entry(ctx context.Context, isoform string) (*Entry, error) {
	if isoform == "" {
		return nil, errors.NewValidationError("isoform", isoform, "must not be empty")
	}
	var entry Entry
	if err := c.transport.GetJSON(ctx, c.RecordURL(isoform, FormatJSON), &entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

// Links are the human and machine readable locations of an isoform record.
type Links struct {
	Page  string `json:"page" yaml:"page"`
	Text  string `json:"text" yaml:"text"`
	JSON  string `json:"json" yaml:"json"`
	FASTA string `json:"fasta" yaml:"fasta"`
}

// Links returns the record links for an isoform.
func (c *Client) Links(isoform string) Links {
	return Links{
		Page:  constants.UniProtWebURL + "/uniprotkb/" + url.PathEscape(isoform),
		Text:  c.RecordURL(isoform, FormatText),
		JSON:  c.RecordURL(isoform, FormatJSON),
		FASTA: c.RecordURL(isoform, FormatFASTA),
	}
}
