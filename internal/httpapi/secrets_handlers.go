package httpapi

import (
	"net/http"
	"net/url"
	"strings"
)

type SecretsHandler struct {
	Set    func(url string) error
	Delete func() error
}

type setWebhookReq struct {
	URL string `json:"url"`
}

func (h SecretsHandler) SetWebhook(w http.ResponseWriter, r *http.Request) {
	if h.Set == nil {
		WriteError(w, r, http.StatusNotImplemented, codeFor(http.StatusNotImplemented), "secret storage unavailable")
		return
	}
	var req setWebhookReq
	if err := decodeStrict(r, &req); err != nil {
		WriteError(w, r, http.StatusBadRequest, "invalid_json", "invalid JSON: "+err.Error())
		return
	}
	u, err := url.Parse(strings.TrimSpace(req.URL))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		WriteError(w, r, http.StatusBadRequest, codeFor(http.StatusBadRequest), "webhook url must be an absolute http(s) URL")
		return
	}
	if err := h.Set(u.String()); err != nil {
		WriteError(w, r, http.StatusInternalServerError, "secret_store_failed", "failed to store webhook: "+err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h SecretsHandler) DeleteWebhook(w http.ResponseWriter, r *http.Request) {
	if h.Delete == nil {
		WriteError(w, r, http.StatusNotImplemented, codeFor(http.StatusNotImplemented), "secret storage unavailable")
		return
	}
	if err := h.Delete(); err != nil {
		WriteError(w, r, http.StatusInternalServerError, "secret_store_failed", err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
