// Package transport is the HTTP layer shared by every upstream source.
//
// One-shot requests go through go-retryablehttp with a token bucket in front;
// the long-lived analysis stream uses a plain client without a timeout and is
// bounded by its context instead.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/mutantautomate/mutant/pkg/constants"
	"github.com/mutantautomate/mutant/pkg/errors"
)

// DefaultHTTPTimeout is the default timeout for one-shot HTTP requests.
var DefaultHTTPTimeout = constants.DefaultHTTPTimeout

// Client performs requests against one upstream service.
type Client struct {
	service string
	retry   *retryablehttp.Client
	stream  *http.Client
	limiter *rate.Limiter
	logger  *zerolog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the underlying HTTP client. The stream client is a copy
// of it with the timeout removed.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc == nil {
			return
		}
		c.retry.HTTPClient = hc
		streamClient := *hc
		streamClient.Timeout = 0
		c.stream = &streamClient
	}
}

// WithRetries sets how many times a failed idempotent request is retried.
func WithRetries(n int) Option {
	return func(c *Client) {
		if n >= 0 {
			c.retry.RetryMax = n
		}
	}
}

// WithRetryWait sets the backoff bounds between retries.
func WithRetryWait(minWait, maxWait time.Duration) Option {
	return func(c *Client) {
		c.retry.RetryWaitMin = minWait
		c.retry.RetryWaitMax = maxWait
	}
}

// WithRateLimit caps requests per second. Zero or less disables limiting.
func WithRateLimit(rps float64) Option {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), constants.BurstSize)
	}
}

// WithLogger sets the logger used for retry diagnostics.
func WithLogger(logger *zerolog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New creates a client for the named service.
func New(service string, opts ...Option) *Client {
	nop := zerolog.Nop()
	c := &Client{
		service: service,
		retry:   retryablehttp.NewClient(),
		stream:  &http.Client{},
		logger:  &nop,
	}
	c.retry.HTTPClient = &http.Client{Timeout: DefaultHTTPTimeout}
	c.retry.RetryMax = constants.MaxRetries
	c.retry.RetryWaitMin = constants.RetryWaitMin
	c.retry.RetryWaitMax = constants.RetryWaitMax
	c.retry.CheckRetry = retryPolicy
	c.retry.ErrorHandler = retryablehttp.PassthroughErrorHandler

	for _, opt := range opts {
		opt(c)
	}

	logger := c.logger.With().Str("service", service).Logger()
	c.logger = &logger
	c.retry.Logger = leveledLogger{logger: c.logger}
	return c
}

// Service returns the name of the upstream service.
func (c *Client) Service() string {
	return c.service
}

// retryPolicy retries connection failures and the gateway-style 5xx statuses.
// POST bodies are never replayed after the server answered.
func retryPolicy(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if ctx.Err() != nil {
		return false, ctx.Err()
	}
	if err != nil {
		return retryablehttp.DefaultRetryPolicy(ctx, resp, err)
	}
	if resp.Request != nil && resp.Request.Method == http.MethodPost {
		return false, nil
	}
	switch resp.StatusCode {
	case http.StatusInternalServerError, http.StatusBadGateway,
		http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true, nil
	}
	return false, nil
}

func (c *Client) wait(ctx context.Context) error {
	if c.limiter == nil {
		return nil
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return c.contextError(ctx, err)
	}
	return nil
}

func (c *Client) contextError(ctx context.Context, err error) error {
	switch ctx.Err() {
	case context.Canceled:
		return errors.Join(errors.ErrCanceled, err)
	case context.DeadlineExceeded:
		return errors.Join(errors.ErrTimeout, err)
	}
	return err
}

// Do sends req with rate limiting and retries.
func (c *Client) Do(ctx context.Context, method, url string, body []byte, contentType string) (*http.Response, error) {
	if err := c.wait(ctx); err != nil {
		return nil, err
	}

	var raw any
	if body != nil {
		raw = body
	}
	req, err := retryablehttp.NewRequestWithContext(ctx, method, url, raw)
	if err != nil {
		return nil, errors.WrapResource("create", "request", method+" "+url, err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.retry.Do(req)
	if err != nil {
		if resp != nil {
			_ = resp.Body.Close()
		}
		return nil, c.contextError(ctx, errors.WrapAPI(c.service, 0, err))
	}
	return resp, nil
}

// GetText fetches url and returns the body as text.
func (c *Client) GetText(ctx context.Context, url string) (string, error) {
	resp, err := c.Do(ctx, http.MethodGet, url, nil, "")
	if err != nil {
		return "", err
	}
	return ReadText(c.service, url, resp)
}

// GetJSON fetches url and decodes the JSON body into target.
func (c *Client) GetJSON(ctx context.Context, url string, target any) error {
	resp, err := c.Do(ctx, http.MethodGet, url, nil, "")
	if err != nil {
		return err
	}
	return DecodeResponse(c.service, url, resp, target)
}

// PostJSON sends payload as JSON and returns the response body as text.
func (c *Client) PostJSON(ctx context.Context, url string, payload any) (string, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return "", errors.WrapParse("json", "request "+url, err)
	}
	resp, err := c.Do(ctx, http.MethodPost, url, body, "application/json")
	if err != nil {
		return "", err
	}
	return ReadText(c.service, url, resp)
}

// OpenStream issues a GET for an event stream and returns the open body.
// Non-2xx responses are returned as *errors.APIError with the body closed.
func (c *Client) OpenStream(ctx context.Context, url string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.WrapResource("create", "request", "GET "+url, err)
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := c.stream.Do(req)
	if err != nil {
		return nil, c.contextError(ctx, errors.WrapAPI(c.service, 0, err))
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, err := ReadText(c.service, url, resp)
		return nil, err
	}
	return resp.Body, nil
}

// ReadText reads and closes resp. Non-2xx responses become *errors.APIError.
func ReadText(service, endpoint string, resp *http.Response) (string, error) {
	body, err := readBody(resp)
	if err != nil {
		return "", err
	}
	if err := checkStatus(service, endpoint, resp, body); err != nil {
		return "", err
	}
	return string(body), nil
}

// DecodeResponse reads and closes resp, decoding a JSON body into target.
func DecodeResponse(service, endpoint string, resp *http.Response, target any) error {
	body, err := readBody(resp)
	if err != nil {
		return err
	}
	if err := checkStatus(service, endpoint, resp, body); err != nil {
		return err
	}
	if err := json.Unmarshal(body, target); err != nil {
		return errors.WrapParse("json", endpoint, err)
	}
	return nil
}

func readBody(resp *http.Response) ([]byte, error) {
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.WrapIO("read", "response body", err)
	}
	return body, nil
}

func checkStatus(service, endpoint string, resp *http.Response, body []byte) error {
	if resp.StatusCode >= 200 && resp.StatusCode <= 299 {
		return nil
	}
	message := string(bytes.TrimSpace(body))
	if message == "" {
		message = http.StatusText(resp.StatusCode)
	}
	return &errors.APIError{
		Service:    service,
		StatusCode: resp.StatusCode,
		Message:    message,
		Endpoint:   endpoint,
	}
}
