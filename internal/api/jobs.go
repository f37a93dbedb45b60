package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
)

// JobFilter selects jobs. Boolean filters are only sent when true. A nil
// MinScore lets ListJobs apply the runtime threshold.
type JobFilter struct {
	New          bool
	Remote       bool
	VisaFriendly bool
	NewGrad      bool
	H1B          bool
	InCart       bool
	CompanyID    string
	Title        string
	Location     string
	MinScore     *int
}

// Score is a helper for building a JobFilter with an explicit threshold.
func Score(n int) *int { return &n }

func (f JobFilter) values() url.Values {
	q := url.Values{}
	setTrue := func(key string, on bool) {
		if on {
			q.Set(key, "true")
		}
	}
	setTrue("new", f.New)
	setTrue("remote", f.Remote)
	setTrue("visa_friendly", f.VisaFriendly)
	setTrue("new_grad", f.NewGrad)
	setTrue("h1b", f.H1B)
	setTrue("in_cart", f.InCart)
	if f.CompanyID != "" {
		q.Set("company_id", f.CompanyID)
	}
	if f.Title != "" {
		q.Set("title", f.Title)
	}
	if f.Location != "" {
		q.Set("location", f.Location)
	}
	if f.MinScore != nil {
		q.Set("min_score", strconv.Itoa(*f.MinScore))
	}
	return q
}

// ListJobs fetches jobs matching f. When the caller gives no MinScore and the
// runtime threshold is positive, the threshold is sent as min_score.
func (c *Client) ListJobs(ctx context.Context, f JobFilter) ([]Job, error) {
	rt := c.cfg.Runtime()
	if f.MinScore == nil && rt.MinScore > 0 {
		f.MinScore = Score(rt.MinScore)
	}

	var jobs []Job
	if err := c.requestAt(ctx, rt, http.MethodGet, "/jobs", f.values(), nil, &jobs); err != nil {
		return nil, err
	}
	return jobs, nil
}

func (c *Client) GetJob(ctx context.Context, id string) (Job, error) {
	var job Job
	err := c.request(ctx, http.MethodGet, "/jobs/"+url.PathEscape(id), nil, nil, &job)
	return job, err
}
