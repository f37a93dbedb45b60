package config

import (
	"net/url"
	"strings"
	"sync/atomic"
)

const (
	DefaultBackendURL = "http://localhost:8080/api"
	DefaultMinScore   = 0
)

// Runtime is the backend settings every client call reads. Values are
// immutable; a settings change builds a new Runtime and swaps it into Live.
type Runtime struct {
	BaseURL  string `json:"backendUrl"`
	MinScore int    `json:"minScore"`
}

// NewRuntime normalizes raw settings. A malformed URL falls back to
// DefaultBackendURL and a negative score to zero.
func NewRuntime(baseURL string, minScore int) Runtime {
	return Runtime{
		BaseURL:  normalizeBaseURL(baseURL),
		MinScore: max(minScore, 0),
	}
}

func DefaultRuntime() Runtime {
	return Runtime{BaseURL: DefaultBackendURL, MinScore: DefaultMinScore}
}

// Runtime lets a fixed value act as a Source.
func (r Runtime) Runtime() Runtime { return r }

func normalizeBaseURL(raw string) string {
	raw = strings.TrimRight(strings.TrimSpace(raw), "/")
	if raw == "" {
		return DefaultBackendURL
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return DefaultBackendURL
	}
	return raw
}

// Source hands out the current runtime snapshot.
type Source interface {
	Runtime() Runtime
}

// Live holds the process-wide runtime snapshot. Readers never observe a
// half-applied update.
type Live struct {
	v atomic.Value // stores Runtime
}

func NewLive(rt Runtime) *Live {
	l := &Live{}
	l.v.Store(rt)
	return l
}

func (l *Live) Runtime() Runtime {
	if rt, ok := l.v.Load().(Runtime); ok {
		return rt
	}
	return DefaultRuntime()
}

// Swap installs rt and returns the previous snapshot.
func (l *Live) Swap(rt Runtime) Runtime {
	prev, _ := l.v.Swap(rt).(Runtime)
	return prev
}
