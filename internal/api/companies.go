package api

import (
	"context"
	"net/http"
	"net/url"
)

func (c *Client) ListCompanies(ctx context.Context) ([]Company, error) {
	var out []Company
	if err := c.request(ctx, http.MethodGet, "/companies", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateCompany posts a new company. The backend rejects a duplicate
// (platform, slug) with a non-2xx answer.
func (c *Client) CreateCompany(ctx context.Context, nc NewCompany) (Company, error) {
	var out Company
	err := c.request(ctx, http.MethodPost, "/companies", nil, nc, &out)
	return out, err
}

func (c *Client) DeleteCompany(ctx context.Context, id string) error {
	return c.request(ctx, http.MethodDelete, "/companies/"+url.PathEscape(id), nil, nil, nil)
}

func (c *Client) ListCart(ctx context.Context) ([]Company, error) {
	var out []Company
	if err := c.request(ctx, http.MethodGet, "/jobcart", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) AddToCart(ctx context.Context, companyID string) error {
	return c.request(ctx, http.MethodPost, "/jobcart/"+url.PathEscape(companyID), nil, nil, nil)
}

func (c *Client) RemoveFromCart(ctx context.Context, companyID string) error {
	return c.request(ctx, http.MethodDelete, "/jobcart/"+url.PathEscape(companyID), nil, nil, nil)
}

// ScanCart asks the backend to fetch and score postings for every company in
// the cart. It can take a while; the caller's ctx bounds it.
func (c *Client) ScanCart(ctx context.Context) (ScanResult, error) {
	var out ScanResult
	err := c.request(ctx, http.MethodPost, "/jobcart/scan", nil, nil, &out)
	return out, err
}
