package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"jobgo-agent/internal/router"
	"jobgo-agent/internal/store"
)

// Client talks to a running agent's local surface. It is what the CLI and
// an out-of-process panel use instead of an in-process router.
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

func NewClient(listenAddr string) *Client {
	base := listenAddr
	if !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		base = "http://" + base
	}
	return &Client{
		BaseURL: strings.TrimRight(base, "/"),
		HTTP:    &http.Client{Timeout: 2 * time.Minute},
	}
}

// Send posts msg to /messages. Fire-and-forget messages come back as an OK
// response with no data.
func (c *Client) Send(ctx context.Context, msg router.Message) (router.Response, error) {
	var resp router.Response
	status, err := c.do(ctx, http.MethodPost, "/messages", msg, &resp)
	if err != nil {
		return router.Response{}, err
	}
	if status == http.StatusAccepted {
		return router.Response{OK: true}, nil
	}
	return resp, nil
}

// Ping reports whether an agent is answering at BaseURL.
func (c *Client) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	_, err := c.do(ctx, http.MethodGet, "/health", nil, nil)
	return err
}

func (c *Client) Settings(ctx context.Context) (store.Settings, error) {
	var s store.Settings
	_, err := c.do(ctx, http.MethodGet, "/settings", nil, &s)
	return s, err
}

func (c *Client) SaveSettings(ctx context.Context, s store.Settings) (store.Settings, error) {
	var saved store.Settings
	_, err := c.do(ctx, http.MethodPut, "/settings", settingsBody{BackendURL: &s.BackendURL, MinScore: &s.MinScore}, &saved)
	return saved, err
}

// Shutdown asks the agent to stop.
func (c *Client) Shutdown(ctx context.Context, token string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/shutdown", nil)
	if err != nil {
		return err
	}
	req.Header.Set("X-Shutdown-Token", token)
	res, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("agent unreachable: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return fmt.Errorf("agent: %s", res.Status)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) (int, error) {
	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return 0, err
		}
		rdr = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, rdr)
	if err != nil {
		return 0, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	res, err := c.HTTP.Do(req)
	if err != nil {
		return 0, fmt.Errorf("agent unreachable: %w", err)
	}
	defer res.Body.Close()

	data, err := io.ReadAll(io.LimitReader(res.Body, maxBodyBytes))
	if err != nil {
		return res.StatusCode, err
	}
	if res.StatusCode >= 300 {
		var apiErr APIError
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Error.Message != "" {
			return res.StatusCode, fmt.Errorf("agent: %s", apiErr.Error.Message)
		}
		return res.StatusCode, fmt.Errorf("agent: %s", res.Status)
	}
	if out != nil && len(bytes.TrimSpace(data)) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return res.StatusCode, fmt.Errorf("decode %s: %w", path, err)
		}
	}
	return res.StatusCode, nil
}
