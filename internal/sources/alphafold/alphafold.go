// Package alphafold looks up predicted structures in the AlphaFold database.
package alphafold

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

// Prediction is one candidate returned by the prediction endpoint.
type Prediction struct {
	EntryID          string `json:"entryId"`
	UniProtAccession string `json:"uniprotAccession"`
	PDBURL           string `json:"pdbUrl"`
	CIFURL           string `json:"cifUrl"`
	LatestVersion    int    `json:"latestVersion"`
}

// Client queries the AlphaFold API.
type Client struct {
	baseURL   string
	transport *transport.Client
	cache     *cache.Cache
}

var _ sources.PredictionSource = (*Client)(nil)

// New creates an AlphaFold client. An empty baseURL uses constants.DefaultAlphaFoldURL.
func New(baseURL string, store *cache.Cache, opts ...transport.Option) *Client {
	if baseURL == "" {
		baseURL = constants.DefaultAlphaFoldURL
	}
	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		transport: transport.New(sources.AlphaFold.String(), opts...),
		cache:     store,
	}
}

// PredictionsURL returns the prediction endpoint of an isoform.
func (c *Client) PredictionsURL(isoform string) string {
	return c.baseURL + "/api/prediction/" + url.PathEscape(isoform)
}

// Predictions lists every prediction candidate of an isoform.
func (c *Client) Predictions(ctx context.Context, isoform string) ([]Prediction, error) {
	if isoform == "" {
		return nil, errors.NewValidationError("isoform", isoform, "must not be empty")
	}
	var out []Prediction
	if err := c.transport.GetJSON(ctx, c.PredictionsURL(isoform), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// PredictionURL implements sources.PredictionSource. An empty candidate list
// or a first candidate without a model URL is errors.ErrNoPrediction.
func (c *Client) PredictionURL(ctx context.Context, isoform string) (string, error) {
	preds, err := c.Predictions(ctx, isoform)
	if err != nil {
		return "", err
	}
	if len(preds) == 0 || preds[0].PDBURL == "" {
		return "", errors.ErrNoPrediction
	}
	return preds[0].PDBURL, nil
}

// Download implements sources.PredictionSource.
func (c *Client) Download(ctx context.Context, modelURL string) (string, error) {
	return c.cache.Text(ctx, modelURL, func(ctx context.Context) (string, error) {
		return c.transport.GetText(ctx, modelURL)
	})
}
