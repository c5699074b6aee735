package mutant

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/mutantautomate/mutant/pkg/constants"
	"github.com/mutantautomate/mutant/pkg/errors"
	"github.com/mutantautomate/mutant/pkg/logging"
	"github.com/mutantautomate/mutant/pkg/viewer"
)

// options configures a client.
type options struct {
	backendURL   string
	uniprotURL   string
	rcsbURL      string
	alphafoldURL string

	httpClient *http.Client
	retries    int
	rateLimit  float64
	cacheTTL   time.Duration

	logger  *zerolog.Logger
	trimmed viewer.Viewer
	mutated viewer.Viewer
}

func defaultOptions() *options {
	return &options{
		backendURL:   constants.DefaultBackendURL,
		uniprotURL:   constants.DefaultUniProtURL,
		rcsbURL:      constants.DefaultRCSBURL,
		alphafoldURL: constants.DefaultAlphaFoldURL,
		retries:      constants.MaxRetries,
		rateLimit:    constants.DefaultRateLimit,
		cacheTTL:     constants.CacheTTL,
		logger:       logging.Default(),
	}
}

// Option is a function that configures a Client.
type Option func(*options) error

func (o *options) apply(opts ...Option) (*options, error) {
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	return o, nil
}

func requireURL(field, value string) error {
	if value == "" {
		return &errors.ValidationError{Field: field, Message: "cannot be empty"}
	}
	return nil
}

// WithBackendURL sets the analysis backend root.
func WithBackendURL(url string) Option {
	return func(o *options) error {
		if err := requireURL("backend_url", url); err != nil {
			return err
		}
		o.backendURL = url
		return nil
	}
}

// WithUniProtURL sets the UniProt REST root.
func WithUniProtURL(url string) Option {
	return func(o *options) error {
		if err := requireURL("uniprot_url", url); err != nil {
			return err
		}
		o.uniprotURL = url
		return nil
	}
}

// WithRCSBURL sets the RCSB file download root.
func WithRCSBURL(url string) Option {
	return func(o *options) error {
		if err := requireURL("rcsb_url", url); err != nil {
			return err
		}
		o.rcsbURL = url
		return nil
	}
}

// WithAlphaFoldURL sets the AlphaFold API root.
func WithAlphaFoldURL(url string) Option {
	return func(o *options) error {
		if err := requireURL("alphafold_url", url); err != nil {
			return err
		}
		o.alphafoldURL = url
		return nil
	}
}

// WithHTTPClient sets the HTTP client used for every upstream request.
func WithHTTPClient(hc *http.Client) Option {
	return func(o *options) error {
		if hc == nil {
			return &errors.ValidationError{Field: "http_client", Message: "cannot be nil"}
		}
		o.httpClient = hc
		return nil
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(o *options) error {
		if logger == nil {
			return &errors.ValidationError{Field: "logger", Message: "cannot be nil"}
		}
		o.logger = logger
		return nil
	}
}

// WithViewers binds viewers to the trimmed and mutated structures.
// Either may be nil.
func WithViewers(trimmed, mutated viewer.Viewer) Option {
	return func(o *options) error {
		o.trimmed = trimmed
		o.mutated = mutated
		return nil
	}
}

// WithCache sets how long upstream lookups are cached. Zero disables caching.
func WithCache(ttl time.Duration) Option {
	return func(o *options) error {
		if ttl < 0 {
			return &errors.ValidationError{Field: "cache_ttl", Value: ttl, Message: "cannot be negative"}
		}
		o.cacheTTL = ttl
		return nil
	}
}

// WithRetries sets how many times a failed idempotent request is retried.
func WithRetries(n int) Option {
	return func(o *options) error {
		if n < 0 {
			return &errors.ValidationError{Field: "max_retries", Value: n, Message: "cannot be negative"}
		}
		o.retries = n
		return nil
	}
}

// WithRateLimit caps requests per second to each upstream service.
// Zero disables limiting.
func WithRateLimit(rps float64) Option {
	return func(o *options) error {
		if rps < 0 {
			return &errors.ValidationError{Field: "rate_limit", Value: rps, Message: "cannot be negative"}
		}
		o.rateLimit = rps
		return nil
	}
}
