// Package scheduler owns the agent's persistent alarms. An alarm survives
// restarts: its period and last fire time live in the store, and a restarted
// agent picks the cadence up where it left off.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"jobgo-agent/internal/store"
)

// InitReason tells the hooks why the agent is initializing.
type InitReason string

const (
	Install InitReason = "install" // no alarm existed yet
	Startup InitReason = "startup" // alarm carried over from an earlier run
)

type Hooks interface {
	OnInit(ctx context.Context, reason InitReason)
	OnTimerTick(ctx context.Context, alarm string)
}

type AlarmStore interface {
	GetAlarm(ctx context.Context, name string) (store.Alarm, error)
	CreateAlarm(ctx context.Context, name string, periodMinutes int) (store.Alarm, error)
	MarkAlarmFired(ctx context.Context, name string, at time.Time) error
}

type Scheduler struct {
	alarms AlarmStore
	hooks  Hooks
	cron   *cron.Cron
	log    *slog.Logger

	mu      sync.Mutex
	entries map[string]cron.EntryID
}

func New(alarms AlarmStore, hooks Hooks, log *slog.Logger) *Scheduler {
	if log == nil {
		log = slog.Default()
	}
	log = log.With("component", "scheduler")
	cl := cronLogger{log}
	return &Scheduler{
		alarms: alarms,
		hooks:  hooks,
		cron: cron.New(
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		log:     log,
		entries: map[string]cron.EntryID{},
	}
}

// Start makes sure the named alarm exists with the given period, runs the
// init hook, then starts ticking. A stored alarm keeps its last fire time,
// so an agent that was down past its due time fires promptly.
func (s *Scheduler) Start(ctx context.Context, name string, period time.Duration) (InitReason, error) {
	minutes := int(period / time.Minute)
	if minutes < 1 {
		minutes = 1
	}

	reason := Startup
	a, err := s.alarms.GetAlarm(ctx, name)
	switch {
	case errors.Is(err, store.ErrNoAlarm):
		reason = Install
		a, err = s.alarms.CreateAlarm(ctx, name, minutes)
	case err == nil && a.PeriodMinutes != minutes:
		s.log.Info("alarm period changed", "alarm", name, "from_min", a.PeriodMinutes, "to_min", minutes)
		a, err = s.alarms.CreateAlarm(ctx, name, minutes)
	}
	if err != nil {
		return "", fmt.Errorf("alarm %q: %w", name, err)
	}

	s.hooks.OnInit(ctx, reason)

	id := s.cron.Schedule(newAlarmSchedule(a), cron.FuncJob(func() { s.fire(ctx, name) }))
	s.mu.Lock()
	s.entries[name] = id
	s.mu.Unlock()

	s.cron.Start()
	s.log.Info("alarm armed", "alarm", name, "reason", reason, "period_min", a.PeriodMinutes)
	return reason, nil
}

// Tick fires the named alarm now, outside its schedule.
func (s *Scheduler) Tick(ctx context.Context, name string) {
	s.fire(ctx, name)
}

// NextRun reports when the named alarm fires next; zero if it is not armed.
func (s *Scheduler) NextRun(name string) time.Time {
	s.mu.Lock()
	id, ok := s.entries[name]
	s.mu.Unlock()
	if !ok {
		return time.Time{}
	}
	return s.cron.Entry(id).Next
}

// Stop halts the alarms and waits for a running tick to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.log.Info("alarms stopped")
}

func (s *Scheduler) fire(ctx context.Context, name string) {
	if err := s.alarms.MarkAlarmFired(ctx, name, time.Now()); err != nil {
		s.log.Warn("record alarm fire", "alarm", name, "err", err)
	}
	s.hooks.OnTimerTick(ctx, name)
}

// alarmSchedule is a fixed-period cron.Schedule whose first fire is anchored
// to the stored alarm, the last fire time or else the creation time, instead
// of process start.
type alarmSchedule struct {
	period   time.Duration
	anchor   time.Time
	anchored bool
}

func newAlarmSchedule(a store.Alarm) *alarmSchedule {
	anchor := a.LastFiredAt
	if anchor.IsZero() {
		anchor = a.CreatedAt
	}
	return &alarmSchedule{period: a.Period(), anchor: anchor}
}

func (s *alarmSchedule) Next(t time.Time) time.Time {
	if !s.anchored {
		s.anchored = true
		if !s.anchor.IsZero() {
			due := s.anchor.Add(s.period)
			if due.Before(t) {
				return t
			}
			return due
		}
	}
	return t.Add(s.period)
}

// cronLogger routes cron's own logging into slog.
type cronLogger struct{ l *slog.Logger }

func (c cronLogger) Info(msg string, kv ...any) {
	c.l.Debug("cron: "+msg, kv...)
}

func (c cronLogger) Error(err error, msg string, kv ...any) {
	c.l.Error("cron: "+msg, append(kv, "err", err)...)
}
