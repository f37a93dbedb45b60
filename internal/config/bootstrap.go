package config

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

const configFileName = "config.yml"

// EnsureUserConfig returns the path of the user's config file inside dataDir,
// writing the defaults there first if it does not exist yet.
func EnsureUserConfig(dataDir string) (string, error) {
	userPath := filepath.Join(dataDir, configFileName)

	_, err := os.Stat(userPath)
	if err == nil {
		return userPath, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return "", err
	}

	if err := SaveAtomic(userPath, Default()); err != nil {
		return "", err
	}
	return userPath, nil
}

// OverlayEnv applies JOBGO_* environment overrides. Unparseable numbers are
// ignored.
func OverlayEnv(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv("JOBGO_LISTEN_ADDR")); v != "" {
		cfg.App.ListenAddr = v
	}
	if v := strings.TrimSpace(os.Getenv("JOBGO_LOG_LEVEL")); v != "" {
		cfg.Logging.Level = v
	}
	if v := strings.TrimSpace(os.Getenv("JOBGO_LOG_FORMAT")); v != "" {
		cfg.Logging.Format = v
	}
	if v := strings.TrimSpace(os.Getenv("JOBGO_POLL_MINUTES")); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Polling.IntervalMinutes = n
		}
	}
	if v := strings.TrimSpace(os.Getenv("JOBGO_BADGE_COLOR")); v != "" {
		cfg.Badge.Color = v
	}
}
