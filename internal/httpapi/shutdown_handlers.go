package httpapi

import (
	"crypto/subtle"
	"net"
	"net/http"
)

// ShutdownHandler stops the agent on request from the local CLI. Callers
// must be on loopback and present the token from the data directory.
type ShutdownHandler struct {
	Token    string
	Shutdown func()
}

func (h ShutdownHandler) Post(w http.ResponseWriter, r *http.Request) {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	if ip := net.ParseIP(host); ip == nil || !ip.IsLoopback() {
		WriteError(w, r, http.StatusForbidden, "forbidden", "shutdown is local only")
		return
	}

	got := r.Header.Get("X-Shutdown-Token")
	if h.Token == "" || got == "" || subtle.ConstantTimeCompare([]byte(got), []byte(h.Token)) != 1 {
		WriteError(w, r, http.StatusUnauthorized, "unauthorized", "bad shutdown token")
		return
	}

	writeJSON(w, map[string]any{"ok": true})
	go h.Shutdown()
}
