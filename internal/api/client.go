package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/mod/semver"
	"golang.org/x/time/rate"

	"github.com/abhisek/devquest/internal/auth"
)

// Header names exchanged with the service.
const (
	HeaderRequestID  = "X-Request-ID"
	HeaderAPIVersion = "X-API-Version"
)

// maxBodyBytes caps how much of a response body is read.
const maxBodyBytes = 4 << 20

// Client talks to the grading, content and progress service. Every
// authenticated call reads the bearer token from the TokenStore; a 401
// clears it and fires the unauthorized hook.
type Client struct {
	cfg     Config
	base    *url.URL
	http    *http.Client
	tokens  auth.TokenStore
	limiter *rate.Limiter
	retry   retrier
	logger  *slog.Logger

	onUnauthorized func()
	versionOnce    sync.Once
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithLogger sets the diagnostics logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithUnauthorizedHandler registers fn to run after a 401 has cleared the
// stored credential. Navigation is up to fn.
func WithUnauthorizedHandler(fn func()) Option {
	return func(c *Client) { c.onUnauthorized = fn }
}

// New creates a Client for cfg.
func New(cfg Config, tokens auth.TokenStore, opts ...Option) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base URL: %w", err)
	}

	c := &Client{
		cfg:     cfg,
		base:    base,
		http:    &http.Client{Timeout: cfg.Timeout},
		tokens:  tokens,
		limiter: rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.Burst),
		retry:   retrier{config: cfg.Retry},
		logger:  slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// OnUnauthorized replaces the unauthorized hook. It is meant for wiring at
// startup, before the client is shared.
func (c *Client) OnUnauthorized(fn func()) {
	c.onUnauthorized = fn
}

// request describes one call.
type request struct {
	method string
	path   string
	query  url.Values
	body   any
	schema string
	out    any

	// public calls carry no credential and never trigger the 401 hook.
	public bool
}

// do runs req. GETs are retried on transient failures; everything else is
// sent exactly once.
func (c *Client) do(ctx context.Context, req request) error {
	if req.method == http.MethodGet {
		return c.retry.do(ctx, func() error { return c.send(ctx, req) })
	}
	return c.send(ctx, req)
}

func (c *Client) send(ctx context.Context, req request) error {
	op := req.method + " " + req.path

	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	httpReq, err := c.newRequest(ctx, req)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	requestID := httpReq.Header.Get(HeaderRequestID)

	start := time.Now()
	resp, err := c.http.Do(httpReq)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("%s: %w", op, ctxErr)
		}
		c.logger.Warn("request failed", "op", op, "request_id", requestID, "error", err)
		return &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return &TransportError{Op: op, Err: fmt.Errorf("read body: %w", err)}
	}
	c.logger.Debug("request complete",
		"op", op,
		"request_id", requestID,
		"status", resp.StatusCode,
		"latency_ms", time.Since(start).Milliseconds(),
	)
	c.checkVersion(resp.Header.Get(HeaderAPIVersion))

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if req.schema == "" {
			return nil
		}
		if err := validateResponse(req.schema, raw, req.out); err != nil {
			c.logger.Warn("invalid response", "op", op, "request_id", requestID, "error", err)
			return fmt.Errorf("%s: %w", op, err)
		}
		return nil
	}

	se := &StatusError{Code: resp.StatusCode, Detail: errorDetail(raw)}
	switch {
	case resp.StatusCode == http.StatusUnauthorized && !req.public:
		c.handleUnauthorized(ctx)
		return fmt.Errorf("%s: %w", op, se)
	case resp.StatusCode == http.StatusTooManyRequests:
		se.RetryAfter = parseRetryAfter(resp.Header.Get("Retry-After"))
		return fmt.Errorf("%s: %w", op, se)
	case resp.StatusCode >= 500:
		return &TransportError{Op: op, Err: se}
	default:
		return fmt.Errorf("%s: %w", op, se)
	}
}

func (c *Client) newRequest(ctx context.Context, req request) (*http.Request, error) {
	// req.path is already escaped.
	u, err := url.Parse(c.base.String() + req.path)
	if err != nil {
		return nil, fmt.Errorf("build URL: %w", err)
	}
	if len(req.query) > 0 {
		u.RawQuery = req.query.Encode()
	}

	var body io.Reader
	if req.body != nil {
		b, err := json.Marshal(req.body)
		if err != nil {
			return nil, fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, u.String(), body)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set(HeaderRequestID, uuid.New().String())
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	if !req.public {
		token, err := c.tokens.Token(ctx)
		if err != nil {
			return nil, fmt.Errorf("read credential: %w", err)
		}
		if token == "" {
			// Signed out elsewhere, e.g. by another process sharing the slot.
			c.logger.Info("no stored credential, signed out")
			c.fireUnauthorized()
			return nil, auth.ErrUnauthorized
		}
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}
	return httpReq, nil
}

func (c *Client) handleUnauthorized(ctx context.Context) {
	if err := c.tokens.ClearToken(ctx); err != nil {
		c.logger.Warn("clear rejected credential", "error", err)
	}
	c.logger.Info("credential rejected, signed out")
	c.fireUnauthorized()
}

func (c *Client) fireUnauthorized() {
	if c.onUnauthorized != nil {
		c.onUnauthorized()
	}
}

// checkVersion warns once when the service is older than supported.
func (c *Client) checkVersion(v string) {
	if v == "" || c.cfg.MinServerVersion == "" {
		return
	}
	c.versionOnce.Do(func() {
		if !strings.HasPrefix(v, "v") {
			v = "v" + v
		}
		if !semver.IsValid(v) {
			c.logger.Warn("service sent malformed API version", "version", v)
			return
		}
		if semver.Compare(v, c.cfg.MinServerVersion) < 0 {
			c.logger.Warn("service API version is older than supported",
				"version", v, "min", c.cfg.MinServerVersion)
		}
	})
}

// errorDetail extracts the "detail" message of an error body.
func errorDetail(raw []byte) string {
	var body struct {
		Detail any `json:"detail"`
	}
	if err := json.Unmarshal(raw, &body); err != nil || body.Detail == nil {
		return strings.TrimSpace(string(raw))
	}
	if s, ok := body.Detail.(string); ok {
		return s
	}
	b, _ := json.Marshal(body.Detail)
	return string(b)
}

func parseRetryAfter(h string) time.Duration {
	if h == "" {
		return 0
	}
	if secs, err := strconv.Atoi(h); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(h); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}

// IsUnauthorized reports whether err means the credential is missing or
// was rejected.
func IsUnauthorized(err error) bool {
	return errors.Is(err, auth.ErrUnauthorized)
}
