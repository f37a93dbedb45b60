package store

import (
	"context"
	"database/sql"
	"strconv"
	"strings"
	"time"

	"jobgo-agent/internal/config"
)

const (
	KeyBackendURL = "backendUrl"
	KeyMinScore   = "minScore"
)

// Settings are the user-editable backend settings.
type Settings struct {
	BackendURL string `json:"backendUrl"`
	MinScore   int    `json:"minScore"`
}

func DefaultSettings() Settings {
	return Settings{BackendURL: config.DefaultBackendURL, MinScore: config.DefaultMinScore}
}

// Runtime converts settings into the normalized snapshot clients read.
func (s Settings) Runtime() config.Runtime {
	return config.NewRuntime(s.BackendURL, s.MinScore)
}

// GetSetting returns the stored value and whether the key exists.
func (d *DB) GetSetting(ctx context.Context, key string) (string, bool, error) {
	var v string
	err := d.Pool.QueryRowContext(ctx,
		`SELECT value FROM settings WHERE key = ? LIMIT 1;`, key,
	).Scan(&v)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

func (d *DB) SetSetting(ctx context.Context, key, value string) error {
	_, err := d.Pool.ExecContext(ctx, `
INSERT INTO settings(key, value, updated_at)
VALUES(?,?,?)
ON CONFLICT(key) DO UPDATE SET
  value = excluded.value,
  updated_at = excluded.updated_at;
`, key, value, time.Now().UTC().Format(time.RFC3339))
	return err
}

// LoadSettings reads the persisted settings. Missing or malformed values fall
// back to their defaults without error; only storage failures are returned.
func (d *DB) LoadSettings(ctx context.Context) (Settings, error) {
	s := DefaultSettings()

	if v, ok, err := d.GetSetting(ctx, KeyBackendURL); err != nil {
		return s, err
	} else if ok && strings.TrimSpace(v) != "" {
		s.BackendURL = strings.TrimSpace(v)
	}

	if v, ok, err := d.GetSetting(ctx, KeyMinScore); err != nil {
		return s, err
	} else if ok {
		if n, convErr := strconv.Atoi(strings.TrimSpace(v)); convErr == nil && n >= 0 {
			s.MinScore = n
		}
	}

	return s, nil
}

// SaveSettings persists both keys in one transaction.
func (d *DB) SaveSettings(ctx context.Context, s Settings) error {
	tx, err := d.Pool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UTC().Format(time.RFC3339)
	for k, v := range map[string]string{
		KeyBackendURL: s.BackendURL,
		KeyMinScore:   strconv.Itoa(s.MinScore),
	} {
		if _, err := tx.ExecContext(ctx, `
INSERT INTO settings(key, value, updated_at)
VALUES(?,?,?)
ON CONFLICT(key) DO UPDATE SET
  value = excluded.value,
  updated_at = excluded.updated_at;
`, k, v, now); err != nil {
			return err
		}
	}
	return tx.Commit()
}
