// Package backend is the client for the analysis backend's /process,
// /trim_pdb and /mutate endpoints.
package backend

import (
	"context"
	"io"
	"net/url"
	"strconv"
	"strings"

	"github.com/mutantautomate/mutant/internal/sources"
	"github.com/mutantautomate/mutant/internal/transport"
	"github.com/mutantautomate/mutant/pkg/constants"
)

// Client talks to one analysis backend.
type Client struct {
	baseURL   string
	transport *transport.Client
}

var _ sources.Analyzer = (*Client)(nil)

// New creates a backend client. An empty baseURL uses constants.DefaultBackendURL.
func New(baseURL string, opts ...transport.Option) *Client {
	if baseURL == "" {
		baseURL = constants.DefaultBackendURL
	}
	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		transport: transport.New(sources.Backend.String(), opts...),
	}
}

// BaseURL returns the backend root.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// ProcessURL builds the stream URL. Parameters are passed through verbatim.
func (c *Client) ProcessURL(geneName, residue1 string, position int, residue2 string) string {
	q := url.Values{}
	q.Set("gene_name", geneName)
	q.Set("residue1", residue1)
	q.Set("position", strconv.Itoa(position))
	q.Set("residue2", residue2)
	return c.baseURL + "/process?" + q.Encode()
}

// Stream implements sources.Analyzer.
func (c *Client) Stream(ctx context.Context, geneName, residue1 string, position int, residue2 string) (io.ReadCloser, error) {
	return c.transport.OpenStream(ctx, c.ProcessURL(geneName, residue1, position, residue2))
}

type trimRequest struct {
	PDBData string   `json:"pdb_data"`
	Chains  []string `json:"chains"`
}

// Trim implements sources.Analyzer. Nil chains is sent as JSON null.
func (c *Client) Trim(ctx context.Context, pdb string, chains []string) (string, error) {
	return c.transport.PostJSON(ctx, c.baseURL+"/trim_pdb", trimRequest{PDBData: pdb, Chains: chains})
}

type mutateRequest struct {
	PDBString string `json:"pdb_string"`
	Residue1  string `json:"residue1"`
	Position  int    `json:"position"`
	Residue2  string `json:"residue2"`
}

// Mutate implements sources.Analyzer.
func (c *Client) Mutate(ctx context.Context, pdb, residue1 string, position int, residue2 string) (string, error) {
	return c.transport.PostJSON(ctx, c.baseURL+"/mutate", mutateRequest{
		PDBString: pdb,
		Residue1:  residue1,
		Position:  position,
		Residue2:  residue2,
	})
}
