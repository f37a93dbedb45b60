// Package poll keeps the badge and notifications in line with the backend:
// a badge refresh on start, a cart scan on every alarm tick.
package poll

import (
	"context"
	"log/slog"
	"strconv"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"jobgo-agent/internal/api"
	"jobgo-agent/internal/notify"
	"jobgo-agent/internal/scheduler"
)

// AlarmName is the alarm whose ticks trigger a poll cycle.
const AlarmName = "poll"

type Backend interface {
	ListJobs(ctx context.Context, f api.JobFilter) ([]api.Job, error)
	ScanCart(ctx context.Context) (api.ScanResult, error)
}

type Badge interface {
	Set(text, color string)
	Clear()
}

// Status describes the last poll cycle.
type Status struct {
	LastRunAt   string `json:"last_run_at"`
	LastOkAt    string `json:"last_ok_at"`
	LastError   string `json:"last_error"`
	LastNewJobs int    `json:"last_new_jobs"`
	Running     bool   `json:"running"`
}

type Reconciler struct {
	backend    Backend
	badge      Badge
	notifier   notify.Notifier
	badgeColor string
	log        *slog.Logger

	scans  singleflight.Group
	status atomic.Value // stores Status
}

func NewReconciler(backend Backend, badge Badge, notifier notify.Notifier, badgeColor string, log *slog.Logger) *Reconciler {
	if log == nil {
		log = slog.Default()
	}
	r := &Reconciler{
		backend:    backend,
		badge:      badge,
		notifier:   notifier,
		badgeColor: badgeColor,
		log:        log.With("component", "poll"),
	}
	r.status.Store(Status{})
	return r
}

func (r *Reconciler) Status() Status {
	return r.status.Load().(Status)
}

// UpdateBadge shows the number of new jobs. When the backend cannot be
// asked, the badge is cleared rather than left showing an old count.
func (r *Reconciler) UpdateBadge(ctx context.Context) error {
	jobs, err := r.backend.ListJobs(ctx, api.JobFilter{New: true})
	if err != nil {
		r.badge.Clear()
		r.log.Warn("badge refresh failed, cleared", "err", err)
		return err
	}

	text := ""
	if n := len(jobs); n > 0 {
		text = strconv.Itoa(n)
	}
	r.badge.Set(text, r.badgeColor)
	r.log.Debug("badge refreshed", "new_jobs", len(jobs))
	return nil
}

// ClearBadge blanks the badge when the user has seen the panel. It never
// talks to the backend.
func (r *Reconciler) ClearBadge() {
	r.badge.Clear()
}

// ScanNow runs a cart scan on request. It records the outcome but sends no
// notification: the requester shows the result itself.
func (r *Reconciler) ScanNow(ctx context.Context) (api.ScanResult, error) {
	return r.scan(ctx)
}

// PollOnce is one poll cycle: scan the cart and, when the scan found
// anything, send exactly one notification carrying the count.
func (r *Reconciler) PollOnce(ctx context.Context) (int, error) {
	res, err := r.scan(ctx)
	if err != nil {
		return 0, err
	}
	if res.NewJobs <= 0 {
		return 0, nil
	}

	if err := r.notifier.Notify(ctx, notify.NewJobs(res.NewJobs)); err != nil {
		r.log.Warn("notification delivery incomplete", "err", err)
	}
	_ = r.UpdateBadge(ctx)
	return res.NewJobs, nil
}

// scan joins the scan already in flight, if any, so a manual scan during a
// scheduled poll gets that poll's result. The shared scan is detached from
// any one caller's cancellation; each caller still stops waiting on its own.
func (r *Reconciler) scan(ctx context.Context) (api.ScanResult, error) {
	ch := r.scans.DoChan("scan", func() (any, error) {
		return r.runScan(context.WithoutCancel(ctx))
	})
	select {
	case res := <-ch:
		if res.Shared {
			r.log.Debug("joined in-flight scan")
		}
		return res.Val.(api.ScanResult), res.Err
	case <-ctx.Done():
		return api.ScanResult{}, ctx.Err()
	}
}

func (r *Reconciler) runScan(ctx context.Context) (api.ScanResult, error) {
	st := r.Status()
	st.Running = true
	st.LastRunAt = time.Now().Format(time.RFC3339)
	r.status.Store(st)

	res, err := r.backend.ScanCart(ctx)

	st = r.Status()
	st.Running = false
	if err != nil {
		st.LastError = err.Error()
		r.log.Error("scan failed", "err", err)
	} else {
		st.LastError = ""
		st.LastOkAt = time.Now().Format(time.RFC3339)
		st.LastNewJobs = res.NewJobs
		r.log.Info("scan ok", "new_jobs", res.NewJobs, "companies", res.Companies)
	}
	r.status.Store(st)
	return res, err
}

// OnInit refreshes the badge after install and on every agent start.
func (r *Reconciler) OnInit(ctx context.Context, reason scheduler.InitReason) {
	r.log.Info("init", "reason", reason)
	_ = r.UpdateBadge(ctx)
}

// OnTimerTick runs a poll cycle for the poll alarm. Failures are already
// logged; the next tick is the retry.
func (r *Reconciler) OnTimerTick(ctx context.Context, alarm string) {
	if alarm != AlarmName {
		r.log.Debug("ignoring alarm", "alarm", alarm)
		return
	}
	_, _ = r.PollOnce(ctx)
}
