// Package api is the typed client for the storefront's JSON-over-HTTP
// backend. It owns request/response encoding, the normalization of the
// backend's divergent cart wire shapes, and the client's error taxonomy:
// unreachable server, rejected request, malformed response.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const defaultTimeout = 10 * time.Second

// Client talks to the storefront backend.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        zerolog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client (primarily for
// tests and custom transports).
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithTracing instruments the client's transport with OpenTelemetry so
// outbound calls show up as spans.
func WithTracing() Option {
	return func(c *Client) {
		base := c.httpClient.Transport
		if base == nil {
			base = http.DefaultTransport
		}
		c.httpClient.Transport = otelhttp.NewTransport(base)
	}
}

// WithLogger sets the client logger.
func WithLogger(log zerolog.Logger) Option {
	return func(c *Client) {
		c.log = log
	}
}

// New creates a Client for the backend at baseURL.
func New(baseURL string, options ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, errors.New("[api.New] baseURL is required")
	}

	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
		log:        zerolog.Nop(),
	}
	for _, opt := range options {
		opt(c)
	}
	return c, nil
}

// Health probes GET /api/health. Any failure — transport error or non-2xx
// status — reports the server as unreachable.
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/health", nil)
	if err != nil {
		return errors.Wrap(err, "[Client.Health] build request")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Wrap(ServerUnreachableErr, "[Client.Health]")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return errors.Wrapf(ServerUnreachableErr, "[Client.Health] status %d", resp.StatusCode)
	}
	return nil
}

// doJSON issues a request with an optional JSON body and decodes the
// response into out (skipped when out is nil). It maps failures onto the
// client's error taxonomy.
func (c *Client) doJSON(ctx context.Context, method, path string, scope *Scope, body any, out any) error {
	var reqBody io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return errors.Wrap(err, "[Client.doJSON] encode body")
		}
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return errors.Wrap(err, "[Client.doJSON] build request")
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if scope != nil {
		if scope.Token != "" {
			req.Header.Set("Authorization", "Bearer "+scope.Token)
		} else if scope.SessionID != "" {
			req.Header.Set("Session-ID", scope.SessionID)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Debug().Err(err).Str("method", method).Str("path", path).Msg("request failed")
		return errors.Wrapf(ServerUnreachableErr, "[Client.doJSON] %s %s", method, path)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrapf(MalformedResponseErr, "[Client.doJSON] read body: %v", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newStatusError(resp.StatusCode, decodeErrorMessage(data))
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return errors.Wrapf(MalformedResponseErr, "[Client.doJSON] decode body: %v", err)
	}
	return nil
}

// decodeErrorMessage extracts the server's error string from a failure
// payload, returning "" when the body carries none.
func decodeErrorMessage(data []byte) string {
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return ""
	}
	return payload.Error
}
