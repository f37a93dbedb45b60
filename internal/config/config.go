// internal/config/config.go
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the agent's file configuration. Backend URL and score threshold
// are not here: they are user settings kept in the store and swapped into a
// Live runtime snapshot.
type Config struct {
	App struct {
		DataDir    string `yaml:"data_dir"`
		ListenAddr string `yaml:"listen_addr"`
	} `yaml:"app"`

	Backend struct {
		TimeoutSeconds int     `yaml:"timeout_seconds"`
		RatePerSec     float64 `yaml:"rate_per_sec"`
		Burst          int     `yaml:"burst"`
	} `yaml:"backend"`

	Polling struct {
		IntervalMinutes int `yaml:"interval_minutes"`
	} `yaml:"polling"`

	Badge struct {
		Color string `yaml:"color"`
	} `yaml:"badge"`

	Notify struct {
		Desktop  bool   `yaml:"desktop"`
		Webhook  bool   `yaml:"webhook"`
		IconPath string `yaml:"icon_path"`
	} `yaml:"notify"`

	Logging struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"logging"`
}

func Default() Config {
	var cfg Config
	cfg.App.ListenAddr = "127.0.0.1:38472"
	cfg.Backend.TimeoutSeconds = 15
	cfg.Backend.RatePerSec = 5
	cfg.Backend.Burst = 10
	cfg.Polling.IntervalMinutes = 30
	cfg.Badge.Color = "#2563eb"
	cfg.Notify.Desktop = true
	cfg.Logging.Level = "info"
	cfg.Logging.Format = "console"
	return cfg
}

// Load reads path on top of Default, so keys missing from the file keep
// their defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}
