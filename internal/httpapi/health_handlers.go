package httpapi

import (
	"net/http"

	"jobgo-agent/internal/config"
)

type HealthHandler struct {
	Live *config.Live
}

func (h HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	out := map[string]any{"ok": true}
	if h.Live != nil {
		out["backend_url"] = h.Live.Runtime().BaseURL
	}
	writeJSON(w, out)
}
