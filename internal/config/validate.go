package config

import (
	"fmt"
	"net"
	"strings"
)

type Validation struct {
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

func (v *Validation) addErr(format string, args ...any) {
	v.Errors = append(v.Errors, fmt.Sprintf(format, args...))
}
func (v *Validation) addWarn(format string, args ...any) {
	v.Warnings = append(v.Warnings, fmt.Sprintf(format, args...))
}
func (v Validation) OK() bool { return len(v.Errors) == 0 }

// NormalizeAndValidate returns a normalized copy of cfg and what is wrong
// with it.
func NormalizeAndValidate(cfg Config) (Config, Validation) {
	out := cfg
	var res Validation

	out.App.ListenAddr = strings.TrimSpace(out.App.ListenAddr)
	out.Badge.Color = strings.TrimSpace(out.Badge.Color)
	out.Logging.Level = strings.ToLower(strings.TrimSpace(out.Logging.Level))
	out.Logging.Format = strings.ToLower(strings.TrimSpace(out.Logging.Format))

	if out.App.ListenAddr == "" {
		res.addErr("app.listen_addr is required")
	} else if host, _, err := net.SplitHostPort(out.App.ListenAddr); err != nil {
		res.addErr("app.listen_addr %q is not host:port", out.App.ListenAddr)
	} else if host != "127.0.0.1" && host != "localhost" && host != "::1" {
		res.addWarn("app.listen_addr binds %q; the agent API has no auth and should stay on loopback.", host)
	}

	if out.Backend.TimeoutSeconds <= 0 {
		res.addErr("backend.timeout_seconds must be > 0")
	}
	if out.Backend.RatePerSec <= 0 {
		res.addErr("backend.rate_per_sec must be > 0")
	}
	if out.Backend.Burst <= 0 {
		res.addErr("backend.burst must be > 0")
	}

	if out.Polling.IntervalMinutes <= 0 {
		res.addErr("polling.interval_minutes must be > 0")
	} else if out.Polling.IntervalMinutes < 5 {
		res.addWarn("polling.interval_minutes is very low (%d); every tick triggers a backend scan.", out.Polling.IntervalMinutes)
	}

	if out.Badge.Color == "" {
		res.addWarn("badge.color is empty; the badge will use the host default.")
	}

	switch out.Logging.Level {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		res.addWarn("logging.level %q is unknown; using info.", out.Logging.Level)
	}
	switch out.Logging.Format {
	case "", "console", "json":
	default:
		res.addErr("logging.format must be console or json")
	}

	return out, res
}
