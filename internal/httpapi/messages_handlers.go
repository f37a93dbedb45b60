package httpapi

import (
	"net/http"

	"jobgo-agent/internal/router"
)

// MessagesHandler exposes the router to UI surfaces that speak HTTP.
type MessagesHandler struct {
	Router Dispatcher
}

// Post answers with the router response. Fire-and-forget messages get a
// bare 202. A deferred reply whose caller has gone away is dropped; the
// work itself still completes.
func (h MessagesHandler) Post(w http.ResponseWriter, r *http.Request) {
	var msg router.Message
	if err := decodeStrict(r, &msg); err != nil {
		WriteError(w, r, http.StatusBadRequest, "invalid_json", "invalid JSON: "+err.Error())
		return
	}

	switch o := h.Router.Dispatch(r.Context(), msg).(type) {
	case router.Immediate:
		writeJSON(w, o.Response)
	case router.Deferred:
		resp, err := o.Future.Wait(r.Context())
		if err != nil {
			return
		}
		writeJSON(w, resp)
	default:
		w.WriteHeader(http.StatusAccepted)
	}
}
