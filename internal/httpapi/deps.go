package httpapi

import (
	"context"
	"log/slog"

	"jobgo-agent/internal/badge"
	"jobgo-agent/internal/config"
	"jobgo-agent/internal/detect"
	"jobgo-agent/internal/events"
	"jobgo-agent/internal/poll"
	"jobgo-agent/internal/router"
	"jobgo-agent/internal/store"
)

type Dispatcher interface {
	Dispatch(ctx context.Context, msg router.Message) router.Outcome
}

type Poller interface {
	Status() poll.Status
	PollOnce(ctx context.Context) (int, error)
}

type SettingsStore interface {
	LoadSettings(ctx context.Context) (store.Settings, error)
	SaveSettings(ctx context.Context, s store.Settings) error
}

type NotificationLog interface {
	ListNotifications(ctx context.Context, limit int) ([]store.NotificationRecord, error)
}

type Deps struct {
	Hub    *events.Hub
	Router Dispatcher
	Badge  func() badge.State
	Poll   Poller

	Settings      SettingsStore
	Live          *config.Live
	Notifications NotificationLog

	// Agent config as loaded at startup; read-only over HTTP.
	Config     config.Config
	ConfigPath string

	// Page metadata lookup for /detect?fetch=1; nil disables fetching.
	FetchMeta func(ctx context.Context, url string) (detect.PageMeta, error)

	SetWebhookURL    func(url string) error
	DeleteWebhookURL func() error

	// Shutdown is registered at /shutdown when set.
	ShutdownToken string
	Shutdown      func()

	Log *slog.Logger
}
