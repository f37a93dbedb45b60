// Package panel is the state behind the side panel: which tab is showing,
// the job filters, the loaded lists and the scan button status. It renders
// nothing itself beyond a plain-text dump; UI layers read View.
package panel

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"jobgo-agent/internal/api"
	"jobgo-agent/internal/router"
)

type Tab string

const (
	TabJobs      Tab = "jobs"
	TabCart      Tab = "cart"
	TabCompanies Tab = "companies"
)

type Filter string

const (
	FilterNew     Filter = "new"
	FilterRemote  Filter = "remote"
	FilterVisa    Filter = "visa"
	FilterNewGrad Filter = "new_grad"
)

var (
	ErrUnknownTab    = errors.New("unknown tab")
	ErrUnknownFilter = errors.New("unknown filter")
)

// Backend is the read side; the panel talks to the backend directly for
// listings.
type Backend interface {
	ListJobs(ctx context.Context, f api.JobFilter) ([]api.Job, error)
	ListCart(ctx context.Context) ([]api.Company, error)
	ListCompanies(ctx context.Context) ([]api.Company, error)
	GetStats(ctx context.Context) (api.Stats, error)
}

// Sender delivers router messages: the in-process router or an agent
// reached over HTTP.
type Sender interface {
	Send(ctx context.Context, msg router.Message) (router.Response, error)
}

type Filters struct {
	New     bool `json:"new"`
	Remote  bool `json:"remote"`
	Visa    bool `json:"visa"`
	NewGrad bool `json:"new_grad"`
}

func (f Filters) jobFilter() api.JobFilter {
	return api.JobFilter{New: f.New, Remote: f.Remote, VisaFriendly: f.Visa, NewGrad: f.NewGrad}
}

// View is a snapshot of the panel. Slices are copies.
type View struct {
	Tab        Tab      `json:"tab"`
	Online     bool     `json:"online"`
	Filters    Filters  `json:"filters"`
	Expanded   []string `json:"expanded,omitempty"`
	ScanStatus string   `json:"scan_status,omitempty"`

	Jobs         []api.Job     `json:"jobs"`
	JobsErr      string        `json:"jobs_error,omitempty"`
	Cart         []api.Company `json:"cart"`
	CartErr      string        `json:"cart_error,omitempty"`
	Companies    []api.Company `json:"companies"`
	CompaniesErr string        `json:"companies_error,omitempty"`
}

type Controller struct {
	backend Backend
	sender  Sender
	log     *slog.Logger

	mu       sync.Mutex
	view     View
	expanded map[string]bool
}

func New(backend Backend, sender Sender, log *slog.Logger) *Controller {
	if log == nil {
		log = slog.Default()
	}
	return &Controller{
		backend:  backend,
		sender:   sender,
		log:      log.With("component", "panel"),
		view:     View{Tab: TabJobs},
		expanded: map[string]bool{},
	}
}

// Open is the panel coming into view: it acknowledges the badge, checks the
// backend and loads the jobs tab.
func (c *Controller) Open(ctx context.Context) {
	if _, err := c.sender.Send(ctx, router.Message{Type: router.TypeClearBadge}); err != nil {
		c.log.Warn("clear badge", "err", err)
	}

	var g errgroup.Group
	g.Go(func() error { c.checkHealth(ctx); return nil })
	g.Go(func() error { c.loadJobs(ctx); return nil })
	_ = g.Wait()
}

func (c *Controller) SelectTab(ctx context.Context, tab Tab) error {
	switch tab {
	case TabJobs, TabCart, TabCompanies:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownTab, tab)
	}

	c.mu.Lock()
	c.view.Tab = tab
	c.mu.Unlock()

	switch tab {
	case TabCart:
		c.loadCart(ctx)
	case TabCompanies:
		c.loadCompanies(ctx)
	}
	return nil
}

// SetFilter toggles one job filter and reloads the jobs list.
func (c *Controller) SetFilter(ctx context.Context, f Filter, on bool) error {
	c.mu.Lock()
	switch f {
	case FilterNew:
		c.view.Filters.New = on
	case FilterRemote:
		c.view.Filters.Remote = on
	case FilterVisa:
		c.view.Filters.Visa = on
	case FilterNewGrad:
		c.view.Filters.NewGrad = on
	default:
		c.mu.Unlock()
		return fmt.Errorf("%w: %q", ErrUnknownFilter, f)
	}
	c.mu.Unlock()

	c.loadJobs(ctx)
	return nil
}

func (c *Controller) ToggleExpanded(jobID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.expanded[jobID] {
		delete(c.expanded, jobID)
		return false
	}
	c.expanded[jobID] = true
	return true
}

// ScanNow asks the agent for a cart scan and reports the outcome in the
// scan status line. The jobs list is reloaded after a successful scan.
func (c *Controller) ScanNow(ctx context.Context) {
	c.setScanStatus("Scanning…")

	resp, err := c.sender.Send(ctx, router.Message{Type: router.TypeScanNow})
	if err == nil && !resp.OK {
		err = errors.New(resp.Error)
	}
	if err != nil {
		c.setScanStatus("Error: " + err.Error())
		return
	}

	res, err := scanResult(resp.Data)
	if err != nil {
		c.setScanStatus("Error: " + err.Error())
		return
	}
	c.setScanStatus(fmt.Sprintf("Done — %d new job(s)", res.NewJobs))
	c.loadJobs(ctx)
}

func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()

	v := c.view
	v.Jobs = slices.Clone(c.view.Jobs)
	v.Cart = slices.Clone(c.view.Cart)
	v.Companies = slices.Clone(c.view.Companies)
	v.Expanded = make([]string, 0, len(c.expanded))
	for id := range c.expanded {
		v.Expanded = append(v.Expanded, id)
	}
	slices.Sort(v.Expanded)
	return v
}

// JobTags are the small labels shown next to a job title.
func JobTags(j api.Job) []string {
	var tags []string
	if j.IsNewGrad {
		tags = append(tags, "new grad")
	}
	if j.VisaSentiment != nil && *j.VisaSentiment == "positive" {
		tags = append(tags, "visa+")
	}
	if j.Location != nil && strings.Contains(strings.ToLower(*j.Location), "remote") {
		tags = append(tags, "remote")
	}
	return tags
}

func (c *Controller) checkHealth(ctx context.Context) {
	_, err := c.backend.GetStats(ctx)
	if err != nil {
		c.log.Info("backend offline", "err", err)
	}
	c.mu.Lock()
	c.view.Online = err == nil
	c.mu.Unlock()
}

func (c *Controller) loadJobs(ctx context.Context) {
	c.mu.Lock()
	f := c.view.Filters.jobFilter()
	c.mu.Unlock()

	jobs, err := c.backend.ListJobs(ctx, f)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.view.Jobs, c.view.JobsErr = nil, err.Error()
		return
	}
	c.view.Jobs, c.view.JobsErr = jobs, ""
}

func (c *Controller) loadCart(ctx context.Context) {
	cart, err := c.backend.ListCart(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.view.Cart, c.view.CartErr = nil, err.Error()
		return
	}
	c.view.Cart, c.view.CartErr = cart, ""
}

func (c *Controller) loadCompanies(ctx context.Context) {
	companies, err := c.backend.ListCompanies(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.view.Companies, c.view.CompaniesErr = nil, err.Error()
		return
	}
	c.view.Companies, c.view.CompaniesErr = companies, ""
}

func (c *Controller) setScanStatus(s string) {
	c.mu.Lock()
	c.view.ScanStatus = s
	c.mu.Unlock()
}

// scanResult accepts the in-process ScanResult or its decoded JSON form.
func scanResult(data any) (api.ScanResult, error) {
	if res, ok := data.(api.ScanResult); ok {
		return res, nil
	}
	b, err := json.Marshal(data)
	if err != nil {
		return api.ScanResult{}, err
	}
	var res api.ScanResult
	if err := json.Unmarshal(b, &res); err != nil {
		return api.ScanResult{}, fmt.Errorf("unexpected scan result: %w", err)
	}
	return res, nil
}
