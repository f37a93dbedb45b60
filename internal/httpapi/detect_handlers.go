package httpapi

import (
	"context"
	"net/http"

	"jobgo-agent/internal/detect"
	"jobgo-agent/internal/router"
)

type DetectHandler struct {
	FetchMeta func(ctx context.Context, url string) (detect.PageMeta, error)
}

type detectResponse struct {
	Detected bool              `json:"detected"`
	Page     *detect.Detection `json:"page,omitempty"`
	Message  *router.Message   `json:"message,omitempty"`
	Warning  string            `json:"warning,omitempty"`
}

// Get classifies ?url=. With fetch=1 the page is downloaded so the company
// name can come from its metadata; otherwise the name is built from the slug.
func (h DetectHandler) Get(w http.ResponseWriter, r *http.Request) {
	raw := detect.Canonical(r.URL.Query().Get("url"))
	if raw == "" {
		WriteError(w, r, http.StatusBadRequest, "missing_url", "url query parameter is required")
		return
	}

	var out detectResponse
	var meta detect.PageMeta
	if r.URL.Query().Get("fetch") == "1" && h.FetchMeta != nil && detect.Detect(raw) != nil {
		m, err := h.FetchMeta(r.Context(), raw)
		if err != nil {
			out.Warning = "page metadata unavailable: " + err.Error()
		} else {
			meta = m
		}
	}

	if d := detect.Resolve(raw, meta); d != nil {
		msg := router.TrackMessage(*d)
		out.Detected, out.Page, out.Message = true, d, &msg
	}
	writeJSON(w, out)
}
