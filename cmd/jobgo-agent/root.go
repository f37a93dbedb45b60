package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"jobgo-agent/internal/config"
	"jobgo-agent/internal/logger"
)

const dbFileName = "jobgo.db"

// app is what every subcommand gets after the root pre-run.
type app struct {
	dataDir string
	cfgPath string
	cfg     config.Config
	log     *slog.Logger
}

func (a *app) dbPath() string { return filepath.Join(a.dataDir, dbFileName) }

func newRootCmd() *cobra.Command {
	a := &app{}
	var dataDir, logLevel string

	root := &cobra.Command{
		Use:           "jobgo-agent",
		Short:         "Background agent that tracks companies and polls JobGo for new matches",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// .env is optional
			_ = godotenv.Load()

			if dataDir == "" {
				dataDir = defaultDataDir()
			}
			if err := os.MkdirAll(dataDir, 0o755); err != nil {
				return fmt.Errorf("data dir: %w", err)
			}
			a.dataDir = dataDir

			path, err := config.EnsureUserConfig(dataDir)
			if err != nil {
				return fmt.Errorf("config bootstrap failed: %w", err)
			}
			cfg, err := config.Load(path)
			if err != nil {
				return fmt.Errorf("config load failed (%s): %w", path, err)
			}
			config.OverlayEnv(&cfg)
			if logLevel != "" {
				cfg.Logging.Level = logLevel
			}

			cfg, vr := config.NormalizeAndValidate(cfg)
			if !vr.OK() {
				return fmt.Errorf("invalid config %s: %s", path, strings.Join(vr.Errors, "; "))
			}
			a.cfg, a.cfgPath = cfg, path

			a.log = logger.New(logger.Config{Level: cfg.Logging.Level, Format: cfg.Logging.Format})
			for _, w := range vr.Warnings {
				a.log.Warn("config", "warning", w)
			}
			return nil
		},
	}

	root.PersistentFlags().StringVar(&dataDir, "data-dir", "", "data directory (default $JOBGO_DATA_DIR or the user config dir)")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "override the configured log level")

	root.AddCommand(
		runCmd(a),
		stopCmd(a),
		detectCmd(a),
		trackCmd(a),
		scanCmd(a),
		clearBadgeCmd(a),
		panelCmd(a),
		settingsCmd(a),
		webhookCmd(a),
	)
	return root
}

func defaultDataDir() string {
	if v := strings.TrimSpace(os.Getenv("JOBGO_DATA_DIR")); v != "" {
		return v
	}
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "jobgo")
	}
	return "."
}
