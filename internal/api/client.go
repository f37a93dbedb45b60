package api

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

	"jobgo-agent/internal/config"
)

const maxResponseBytes = 8 << 20

// Client talks to the JobGo backend. The base URL and score threshold come
// from the config.Source snapshot taken at the start of each call.
type Client struct {
	cfg     config.Source
	hc      *http.Client
	limiter *HostLimiter
	log     *slog.Logger
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.hc = hc }
}

func WithLimiter(l *HostLimiter) Option {
	return func(c *Client) { c.limiter = l }
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.log = l }
}

func New(cfg config.Source, opts ...Option) *Client {
	c := &Client{
		cfg: cfg,
		hc:  &http.Client{Timeout: 15 * time.Second},
		log: slog.Default(),
	}
	for _, o := range opts {
		o(c)
	}
	c.log = c.log.With("component", "api")
	return c
}

// Runtime exposes the snapshot the next call would use.
func (c *Client) Runtime() config.Runtime { return c.cfg.Runtime() }

func (c *Client) request(ctx context.Context, method, path string, query url.Values, body, out any) error {
	return c.requestAt(ctx, c.cfg.Runtime(), method, path, query, body, out)
}

// requestAt sends the call against a snapshot the caller already holds, so
// values derived from it stay paired with its base URL.
func (c *Client) requestAt(ctx context.Context, rt config.Runtime, method, path string, query url.Values, body, out any) error {
	u := rt.BaseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return &Error{Message: fmt.Sprintf("encode %s %s: %v", method, path, err), Err: err}
		}
		rdr = bytes.NewReader(b)
	}

	if err := c.limiter.Wait(ctx, u); err != nil {
		return transportError(method+" "+path, err)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, rdr)
	if err != nil {
		return transportError(method+" "+path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.hc.Do(req)
	if err != nil {
		c.log.Debug("backend unreachable", "method", method, "path", path, "err", err)
		return transportError(method+" "+path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return transportError("read "+path, err)
	}

	c.log.Debug("backend call",
		"method", method, "path", path, "status", resp.StatusCode,
		"dur_ms", time.Since(start).Milliseconds())

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return backendError(resp, data)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return transportError("decode "+path, err)
	}
	return nil
}

// backendError prefers the server's {"error": "..."} message and falls back
// to the status text.
func backendError(resp *http.Response, body []byte) *Error {
	var env struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(body, &env) == nil && strings.TrimSpace(env.Error) != "" {
		return &Error{Status: resp.StatusCode, Message: env.Error}
	}
	msg := http.StatusText(resp.StatusCode)
	if msg == "" {
		msg = resp.Status
	}
	return &Error{Status: resp.StatusCode, Message: msg}
}
