// Package notify delivers "new jobs found" notifications to the user.
package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"jobgo-agent/internal/events"
	"jobgo-agent/internal/store"
)

type Notification struct {
	Title   string `json:"title"`
	Message string `json:"message"`
	NewJobs int    `json:"new_jobs"`
}

const NewJobsTitle = "JobGo - New Jobs Found"

// NewJobs builds the notification for one poll cycle.
func NewJobs(n int) Notification {
	return Notification{
		Title:   NewJobsTitle,
		Message: fmt.Sprintf("%d new job(s) matched your profile", n),
		NewJobs: n,
	}
}

type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

// Func adapts a plain function.
type Func func(ctx context.Context, n Notification) error

func (f Func) Notify(ctx context.Context, n Notification) error { return f(ctx, n) }

// Multi delivers to every sink, even when earlier ones fail.
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, n Notification) error {
	var errs []error
	for _, s := range m {
		if err := s.Notify(ctx, n); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Log writes the notification to the structured log.
type Log struct {
	Logger *slog.Logger
}

func (l Log) Notify(_ context.Context, n Notification) error {
	l.Logger.Info("NEW MATCHES", "component", "notify", "title", n.Title, "message", n.Message, "new_jobs", n.NewJobs)
	return nil
}

// Events pushes the notification to UI surfaces subscribed to the hub.
type Events struct {
	Hub *events.Hub
}

func (e Events) Notify(_ context.Context, n Notification) error {
	e.Hub.Emit(events.TypeNotification, n)
	return nil
}

type recordStore interface {
	RecordNotification(ctx context.Context, rec store.NotificationRecord) (store.NotificationRecord, error)
}

// Recorder appends every notification to the local log table.
type Recorder struct {
	Store recordStore
}

func (r Recorder) Notify(ctx context.Context, n Notification) error {
	_, err := r.Store.RecordNotification(ctx, store.NotificationRecord{
		Title:   n.Title,
		Message: n.Message,
		NewJobs: n.NewJobs,
	})
	if err != nil {
		return fmt.Errorf("record notification: %w", err)
	}
	return nil
}
