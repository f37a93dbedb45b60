package httpapi

import (
	"context"
	"log/slog"
	"net/http"

	"jobgo-agent/internal/badge"
)

type StatusHandler struct {
	BadgeState func() badge.State
	Poll       Poller
	Log        *slog.Logger
}

func (h StatusHandler) Badge(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.BadgeState())
}

func (h StatusHandler) PollStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.Poll.Status())
}

// PollRun starts a poll cycle in the background, notifications included.
func (h StatusHandler) PollRun(w http.ResponseWriter, r *http.Request) {
	if h.Poll.Status().Running {
		writeJSON(w, map[string]any{"ok": false, "msg": "already running"})
		return
	}

	ctx := context.WithoutCancel(r.Context())
	go func() {
		if _, err := h.Poll.PollOnce(ctx); err != nil {
			h.Log.Warn("manual poll failed", "err", err)
		}
	}()
	writeJSON(w, map[string]any{"ok": true})
}
