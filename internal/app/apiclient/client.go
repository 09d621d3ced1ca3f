// Package apiclient talks to the marketplace API that owns users, rooms,
// locations and bookings. staydesk never stores that data itself.
//
// Every response is wrapped in an envelope:
//
//	{ "statusCode": 200, "message": "...", "content": <payload>, "dateTime": "..." }
//
// The client unwraps content into the caller's type. Reads (GET) are retried
// with exponential backoff on transport errors and 408/429/5xx; writes are
// sent once.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	headerProjectToken = "tokenCybersoft"
	headerUserToken    = "token"
	headerRequestID    = "X-Request-ID"

	maxErrorBody = 4 << 10
)

// Metrics receives one observation per API call. *metrics.Metrics
// satisfies it.
type Metrics interface {
	APIRequest(method, endpoint string, status int, d time.Duration, failed bool)
}

// RetryConfig controls retries of idempotent reads.
type RetryConfig struct {
	MaxRetries      int
	InitialInterval time.Duration
	MaxInterval     time.Duration
	MaxElapsedTime  time.Duration
}

// DefaultRetryConfig retries a read up to three times within ten seconds.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:      3,
		InitialInterval: 200 * time.Millisecond,
		MaxInterval:     2 * time.Second,
		MaxElapsedTime:  10 * time.Second,
	}
}

// Client is safe for concurrent use.
type Client struct {
	baseURL      string
	projectToken string
	http         *http.Client
	retry        RetryConfig
	metrics      Metrics
	log          *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTimeout sets the per-attempt timeout of the underlying client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithRetry overrides the read retry policy. MaxRetries 0 disables retries.
func WithRetry(cfg RetryConfig) Option {
	return func(c *Client) { c.retry = cfg }
}

// WithMetrics attaches a metrics sink.
func WithMetrics(m Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// New builds a Client for baseURL (e.g. https://host/api). projectToken is
// sent on every request in the tokenCybersoft header.
func New(baseURL, projectToken string, logger *zap.Logger, opts ...Option) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Client{
		baseURL:      strings.TrimRight(baseURL, "/"),
		projectToken: projectToken,
		http:         &http.Client{Timeout: 15 * time.Second},
		retry:        DefaultRetryConfig(),
		log:          logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the configured API root.
func (c *Client) BaseURL() string { return c.baseURL }

// envelope is the wrapper every marketplace API response uses.
type envelope struct {
	StatusCode int             `json:"statusCode"`
	Message    string          `json:"message"`
	Content    json.RawMessage `json:"content"`
	DateTime   string          `json:"dateTime"`
}

// call describes one request. endpoint is the templated path used for
// metric labels and logs; path is the concrete one.
type call struct {
	method   string
	endpoint string
	path     string
	query    url.Values
	body     any
	token    string
	once     bool
}

func (c *Client) do(ctx context.Context, cl call, out any) error {
	start := time.Now()
	status, err := c.execute(ctx, cl, out)
	d := time.Since(start)

	if c.metrics != nil {
		c.metrics.APIRequest(cl.method, cl.endpoint, status, d, err != nil)
	}

	if err != nil {
		c.log.Warn("marketplace api call failed",
			zap.String("method", cl.method),
			zap.String("endpoint", cl.endpoint),
			zap.Int("status", status),
			zap.Duration("duration", d),
			zap.Error(err))
		return err
	}

	c.log.Debug("marketplace api call",
		zap.String("method", cl.method),
		zap.String("endpoint", cl.endpoint),
		zap.Int("status", status),
		zap.Duration("duration", d))
	return nil
}

// execute performs the request (with retries for GET) and decodes the
// envelope content into out. It returns the last HTTP status seen.
func (c *Client) execute(ctx context.Context, cl call, out any) (int, error) {
	var payload []byte
	if cl.body != nil {
		b, err := json.Marshal(cl.body)
		if err != nil {
			return 0, fmt.Errorf("apiclient: encode %s body: %w", cl.endpoint, err)
		}
		payload = b
	}

	var (
		status int
		raw    []byte
	)
	attempt := func() error {
		s, b, err := c.roundTrip(ctx, cl, payload)
		status, raw = s, b
		if err == nil {
			return nil
		}
		if !retryable(s, err) || ctx.Err() != nil {
			return backoff.Permanent(err)
		}
		return err
	}

	var err error
	if cl.method == http.MethodGet && !cl.once && c.retry.MaxRetries > 0 {
		eb := backoff.NewExponentialBackOff()
		eb.InitialInterval = c.retry.InitialInterval
		eb.MaxInterval = c.retry.MaxInterval
		eb.MaxElapsedTime = c.retry.MaxElapsedTime
		policy := backoff.WithContext(backoff.WithMaxRetries(eb, uint64(c.retry.MaxRetries)), ctx)
		err = backoff.Retry(attempt, policy)
	} else {
		err = attempt()
		var perm *backoff.PermanentError
		if errors.As(err, &perm) {
			err = perm.Err
		}
	}
	if err != nil {
		return status, err
	}

	if out == nil {
		return status, nil
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return status, &DecodeError{Endpoint: cl.endpoint, Err: err}
	}
	if len(env.Content) == 0 || string(env.Content) == "null" {
		return status, nil
	}
	if err := json.Unmarshal(env.Content, out); err != nil {
		return status, &DecodeError{Endpoint: cl.endpoint, Err: err}
	}
	return status, nil
}

// roundTrip sends a single attempt. Non-2xx responses come back as
// *APIError with the body's message.
func (c *Client) roundTrip(ctx context.Context, cl call, payload []byte) (int, []byte, error) {
	u := c.baseURL + cl.path
	if len(cl.query) > 0 {
		u += "?" + cl.query.Encode()
	}

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, cl.method, u, body)
	if err != nil {
		return 0, nil, fmt.Errorf("apiclient: build %s %s: %w", cl.method, cl.endpoint, err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.projectToken != "" {
		req.Header.Set(headerProjectToken, c.projectToken)
	}
	if cl.token != "" {
		req.Header.Set(headerUserToken, cl.token)
	}
	req.Header.Set(headerRequestID, uuid.NewString())

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("apiclient: %s %s: %w", cl.method, cl.endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return resp.StatusCode, nil, newAPIError(cl.method, cl.endpoint, resp.StatusCode, b)
	}

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("apiclient: read %s body: %w", cl.endpoint, err)
	}
	return resp.StatusCode, b, nil
}

func retryable(status int, err error) bool {
	if status == 0 {
		// Transport error; a cancelled context is checked by the caller.
		return !errors.Is(err, context.Canceled)
	}
	switch status {
	case http.StatusRequestTimeout, http.StatusTooManyRequests,
		http.StatusInternalServerError, http.StatusBadGateway,
		http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	}
	return false
}
