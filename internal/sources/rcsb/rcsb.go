// Package rcsb downloads experimental structures from the RCSB file service.
package rcsb

import (
	"context"
	"net/url"
	"strings"

	"github.com/mutantautomate/mutant/internal/cache"
	"github.com/mutantautomate/mutant/internal/sources"
	"github.com/mutantautomate/mutant/internal/transport"
	"github.com/mutantautomate/mutant/pkg/constants"
	"github.com/mutantautomate/mutant/pkg/errors"
)

// Client fetches PDB files.
type Client struct {
	baseURL   string
	transport *transport.Client
	cache     *cache.Cache
}

var _ sources.StructureSource = (*Client)(nil)

// New creates an RCSB client. An empty baseURL uses constants.DefaultRCSBURL.
func New(baseURL string, store *cache.Cache, opts ...transport.Option) *Client {
	if baseURL == "" {
		baseURL = constants.DefaultRCSBURL
	}
	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		transport: transport.New(sources.RCSB.String(), opts...),
		cache:     store,
	}
}

// DownloadURL returns the file URL of a structure.
func (c *Client) DownloadURL(pdbID string) string {
	return c.baseURL + "/download/" + url.PathEscape(pdbID) + ".pdb"
}

// PDB implements sources.StructureSource.
func (c *Client) PDB(ctx context.Context, pdbID string) (string, error) {
	if pdbID == "" {
		return "", errors.NewValidationError("pdb_id", pdbID, "must not be empty")
	}
	u := c.DownloadURL(pdbID)
	return c.cache.Text(ctx, u, func(ctx context.Context) (string, error) {
		return c.transport.GetText(ctx, u)
	})
}

// PageURL returns the RCSB entry page of a structure.
func PageURL(pdbID string) string {
	return "https://www.rcsb.org/structure/" + url.PathEscape(pdbID)
}
