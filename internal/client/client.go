// Package client is the single path every console feature takes to the
// lifehub backend. It wraps net/http with JSON encoding, URL-encoded
// query parameters, a structured error taxonomy, and a rate limiter for
// background refreshes.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

// Client talks to the lifehub backend REST API.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithToken attaches a bearer token to every request. If the token is a
// JWT with an expiry claim that has already passed, a warning is logged
// up front instead of letting every request fail with a 401 surprise.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithLogger sets the logger for request diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithBackgroundRate caps poller-originated requests at r per second.
func WithBackgroundRate(r float64) Option {
	return func(c *Client) { c.limiter = rate.NewLimiter(rate.Limit(r), int(r)+1) }
}

// New creates a backend client. baseURL is required.
func New(baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("baseURL is required")
	}

	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
		limiter:    rate.NewLimiter(rate.Limit(10), 20),
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.token != "" {
		c.warnOnExpiredToken()
	}

	return c, nil
}

// BaseURL returns the configured backend URL.
func (c *Client) BaseURL() string { return c.baseURL }

func (c *Client) warnOnExpiredToken() {
	parsed, _, err := jwt.NewParser().ParseUnverified(c.token, jwt.MapClaims{})
	if err != nil {
		// Opaque tokens are fine; only JWTs can be inspected.
		return
	}
	exp, err := parsed.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		return
	}
	if time.Now().After(exp.Time) {
		c.logger.Warn("backend token is expired", "expired_at", exp.Time)
	}
}

type ctxKey int

const backgroundKey ctxKey = iota

// Background marks a context as belonging to a background refresh.
// Requests under such contexts wait on the client's rate limiter so a
// pile-up of pollers cannot flood the backend.
func Background(ctx context.Context) context.Context {
	return context.WithValue(ctx, backgroundKey, true)
}

func isBackground(ctx context.Context) bool {
	v, _ := ctx.Value(backgroundKey).(bool)
	return v
}

// RequestOptions carries the optional parts of a request.
type RequestOptions struct {
	// Query is URL-encoded into the request path.
	Query url.Values

	// Body is JSON-encoded as the request body.
	Body any
}

// Request performs an HTTP call and returns the raw decoded body.
// Contracts:
//   - 2xx with a body returns the raw JSON.
//   - 2xx without a body returns nil.
//   - 4xx fails with kind client (or validation) and the server message.
//   - 5xx fails with kind server.
//   - Network failure or abort fails with kind transport.
func (c *Client) Request(ctx context.Context, method, path string, opts RequestOptions) (json.RawMessage, error) {
	if isBackground(ctx) {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, transportError(err)
		}
	}

	var body io.Reader
	if opts.Body != nil {
		buf := &bytes.Buffer{}
		if err := json.NewEncoder(buf).Encode(opts.Body); err != nil {
			return nil, &APIError{Message: fmt.Sprintf("encode request: %v", err), Kind: KindClient}
		}
		body = buf
	}

	target := c.baseURL + path
	if len(opts.Query) > 0 {
		target += "?" + opts.Query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, &APIError{Message: err.Error(), Kind: KindClient}
	}
	c.setHeaders(req, opts.Body != nil)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug("request failed", "method", method, "path", path, "error", err)
		return nil, transportError(err)
	}
	defer func() { _ = resp.Body.Close() }()

	return c.decode(resp, method, path)
}

func (c *Client) setHeaders(req *http.Request, hasBody bool) {
	if hasBody {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.New().String())
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
}

func (c *Client) decode(resp *http.Response, method, path string) (json.RawMessage, error) {
	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, transportError(err)
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if len(bytes.TrimSpace(payload)) == 0 {
			return nil, nil
		}
		return json.RawMessage(payload), nil
	}

	var body errorBody
	_ = json.Unmarshal(payload, &body)
	apiErr := classify(resp.StatusCode, body)
	c.logger.Debug("request rejected",
		"method", method, "path", path,
		"status", resp.StatusCode, "kind", apiErr.Kind)
	return nil, apiErr
}

// get performs a GET and decodes the response into out.
func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	raw, err := c.Request(ctx, http.MethodGet, path, RequestOptions{Query: query})
	if err != nil {
		return err
	}
	return decodeInto(raw, out)
}

// send performs a write (POST/PATCH/DELETE) and optionally decodes the
// response into out.
func (c *Client) send(ctx context.Context, method, path string, body, out any) error {
	raw, err := c.Request(ctx, method, path, RequestOptions{Body: body})
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	return decodeInto(raw, out)
}

func decodeInto(raw json.RawMessage, out any) error {
	if out == nil || raw == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &APIError{Message: fmt.Sprintf("decode response: %v", err), Kind: KindServer}
	}
	return nil
}
