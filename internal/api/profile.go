package api

import (
	"context"
	"net/http"
)

func (c *Client) GetProfile(ctx context.Context) (Profile, error) {
	var p Profile
	err := c.request(ctx, http.MethodGet, "/profile", nil, nil, &p)
	return p, err
}

// GetStats doubles as the liveness probe for the panel's online dot.
func (c *Client) GetStats(ctx context.Context) (Stats, error) {
	var s Stats
	err := c.request(ctx, http.MethodGet, "/stats", nil, nil, &s)
	return s, err
}

func (c *Client) ListSponsors(ctx context.Context) ([]Sponsor, error) {
	var out []Sponsor
	if err := c.request(ctx, http.MethodGet, "/h1b/sponsors", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) H1BStatus(ctx context.Context) (H1BStatus, error) {
	var out H1BStatus
	err := c.request(ctx, http.MethodGet, "/h1b/status", nil, nil, &out)
	return out, err
}
