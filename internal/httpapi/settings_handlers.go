package httpapi

import (
	"log/slog"
	"net/http"

	"jobgo-agent/internal/config"
	"jobgo-agent/internal/events"
	"jobgo-agent/internal/store"
)

// SettingsHandler serves the backend settings. A save persists first and
// then swaps the runtime snapshot, so later backend calls see the new
// values all at once.
type SettingsHandler struct {
	Store SettingsStore
	Live  *config.Live
	Hub   *events.Hub
	Log   *slog.Logger
}

type settingsBody struct {
	BackendURL *string `json:"backendUrl"`
	MinScore   *int    `json:"minScore"`
}

func (h SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	s, err := h.Store.LoadSettings(r.Context())
	if err != nil {
		WriteError(w, r, http.StatusInternalServerError, "settings_unavailable", err.Error())
		return
	}
	writeJSON(w, s)
}

// Put accepts a partial update; omitted fields keep their stored value.
func (h SettingsHandler) Put(w http.ResponseWriter, r *http.Request) {
	var body settingsBody
	if err := decodeStrict(r, &body); err != nil {
		WriteError(w, r, http.StatusBadRequest, "invalid_json", "invalid JSON: "+err.Error())
		return
	}

	cur, err := h.Store.LoadSettings(r.Context())
	if err != nil {
		WriteError(w, r, http.StatusInternalServerError, "settings_unavailable", err.Error())
		return
	}
	if body.BackendURL != nil {
		cur.BackendURL = *body.BackendURL
	}
	if body.MinScore != nil {
		cur.MinScore = *body.MinScore
	}

	rt := config.NewRuntime(cur.BackendURL, cur.MinScore)
	next := store.Settings{BackendURL: rt.BaseURL, MinScore: rt.MinScore}
	if err := h.Store.SaveSettings(r.Context(), next); err != nil {
		WriteError(w, r, http.StatusInternalServerError, "settings_save_failed", err.Error())
		return
	}

	prev := h.Live.Swap(rt)
	h.Log.Info("settings saved", "backend_url", rt.BaseURL, "min_score", rt.MinScore, "prev_backend_url", prev.BaseURL)
	h.Hub.Emit(events.TypeSettingsSaved, next)
	writeJSON(w, next)
}

// ConfigHandler shows the agent's file config. Editing happens in the file.
type ConfigHandler struct {
	Config config.Config
	Path   string
}

func (h ConfigHandler) Get(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{"path": h.Path, "config": h.Config})
}

func (h ConfigHandler) Validate(w http.ResponseWriter, r *http.Request) {
	_, vr := config.NormalizeAndValidate(h.Config)
	writeJSON(w, vr)
}
