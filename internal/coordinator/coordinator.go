// Package coordinator turns "track this company" into a company row plus a
// cart membership on the backend.
package coordinator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/sync/singleflight"

	"jobgo-agent/internal/api"
)

// Backend is the slice of the API client the coordinator needs.
type Backend interface {
	CreateCompany(ctx context.Context, nc api.NewCompany) (api.Company, error)
	ListCompanies(ctx context.Context) ([]api.Company, error)
	AddToCart(ctx context.Context, companyID string) error
}

var ErrInvalidCompany = errors.New("name, platform, and slug are required")

// CoordinationError means the company could neither be created nor found.
// Create holds the create failure that sent us down the lookup path.
type CoordinationError struct {
	Platform string
	Slug     string
	Create   error
}

func (e *CoordinationError) Error() string {
	return "could not create or find company"
}

func (e *CoordinationError) Unwrap() error { return e.Create }

type Coordinator struct {
	backend Backend
	group   singleflight.Group
	log     *slog.Logger
}

func New(backend Backend, log *slog.Logger) *Coordinator {
	if log == nil {
		log = slog.Default()
	}
	return &Coordinator{backend: backend, log: log.With("component", "coordinator")}
}

// AddCompany makes sure (platform, slug) exists on the backend and is in the
// cart, returning the company with InCart set.
//
// Concurrent calls for the same company inside this process share one run.
// Calls from separate processes can still both attempt the create; the
// backend's (platform, slug) uniqueness decides, and the loser finds the
// winner's row through the list fallback.
func (c *Coordinator) AddCompany(ctx context.Context, name, platform, slug string) (api.Company, error) {
	name, platform, slug = strings.TrimSpace(name), strings.TrimSpace(platform), strings.TrimSpace(slug)
	if name == "" || platform == "" || slug == "" {
		return api.Company{}, ErrInvalidCompany
	}

	key := platform + "/" + slug
	v, err, shared := c.group.Do(key, func() (any, error) {
		return c.addCompany(ctx, name, platform, slug)
	})
	if shared {
		c.log.Debug("joined in-flight add", "key", key)
	}
	if err != nil {
		return api.Company{}, err
	}
	return v.(api.Company), nil
}

func (c *Coordinator) addCompany(ctx context.Context, name, platform, slug string) (api.Company, error) {
	company, err := c.resolve(ctx, name, platform, slug)
	if err != nil {
		return api.Company{}, err
	}

	if err := c.backend.AddToCart(ctx, company.ID); err != nil {
		return api.Company{}, fmt.Errorf("add company %s to cart: %w", company.ID, err)
	}
	company.InCart = true

	c.log.Info("company tracked", "id", company.ID, "platform", platform, "slug", slug)
	return company, nil
}

// resolve creates the company or, when the create is refused, finds the
// existing row. Any create failure counts as a possible conflict: the backend
// does not tell a uniqueness violation apart from other errors.
func (c *Coordinator) resolve(ctx context.Context, name, platform, slug string) (api.Company, error) {
	created, createErr := c.backend.CreateCompany(ctx, api.NewCompany{Name: name, Platform: platform, Slug: slug})
	if createErr == nil {
		return created, nil
	}

	c.log.Debug("create refused, looking up existing company",
		"platform", platform, "slug", slug, "err", createErr)

	companies, err := c.backend.ListCompanies(ctx)
	if err != nil {
		return api.Company{}, fmt.Errorf("list companies after failed create (%v): %w", createErr, err)
	}
	for _, co := range companies {
		if co.Slug == slug && co.Platform == platform {
			return co, nil
		}
	}

	return api.Company{}, &CoordinationError{Platform: platform, Slug: slug, Create: createErr}
}
