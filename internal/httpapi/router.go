package httpapi

import (
	"log/slog"
	"net/http"
)

// NewMux returns the raw mux; main wraps it in the middleware chain.
func NewMux(d Deps) *http.ServeMux {
	if d.Log == nil {
		d.Log = slog.Default()
	}
	mux := http.NewServeMux()

	mux.HandleFunc("/health", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: HealthHandler{Live: d.Live}.Health,
	}))

	// Router surface
	mh := MessagesHandler{Router: d.Router}
	mux.HandleFunc("/messages", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: mh.Post,
	}))

	// Badge and poll state
	sh := StatusHandler{BadgeState: d.Badge, Poll: d.Poll, Log: d.Log}
	mux.HandleFunc("/badge", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: sh.Badge,
	}))
	mux.HandleFunc("/poll/status", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: sh.PollStatus,
	}))
	mux.HandleFunc("/poll/run", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: sh.PollRun,
	}))

	// Settings and config
	seth := SettingsHandler{Store: d.Settings, Live: d.Live, Hub: d.Hub, Log: d.Log}
	mux.HandleFunc("/settings", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: seth.Get,
		http.MethodPut: seth.Put,
	}))
	ch := ConfigHandler{Config: d.Config, Path: d.ConfigPath}
	mux.HandleFunc("/config", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: ch.Get,
	}))
	mux.HandleFunc("/config/validate", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: ch.Validate,
	}))

	// Secrets
	sech := SecretsHandler{Set: d.SetWebhookURL, Delete: d.DeleteWebhookURL}
	mux.HandleFunc("/secrets/webhook", methodMux(map[string]http.HandlerFunc{
		http.MethodPost:   sech.SetWebhook,
		http.MethodDelete: sech.DeleteWebhook,
	}))

	// Detection and history
	dh := DetectHandler{FetchMeta: d.FetchMeta}
	mux.HandleFunc("/detect", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: dh.Get,
	}))
	nh := NotificationsHandler{Log: d.Notifications}
	mux.HandleFunc("/notifications", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: nh.List,
	}))

	// SSE events
	eh := EventsHandler{Hub: d.Hub}
	mux.HandleFunc("/events", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: eh.ServeSSE,
	}))

	if d.Shutdown != nil {
		shh := ShutdownHandler{Token: d.ShutdownToken, Shutdown: d.Shutdown}
		mux.HandleFunc("/shutdown", methodMux(map[string]http.HandlerFunc{
			http.MethodPost: shh.Post,
		}))
	}

	return mux
}
