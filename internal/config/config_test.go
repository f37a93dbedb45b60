package config

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRuntime(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		score   int
		wantURL string
		wantMin int
	}{
		{"keeps valid url", "http://127.0.0.1:9000/api", 40, "http://127.0.0.1:9000/api", 40},
		{"strips trailing slashes", "https://jobs.example.com/api//", 0, "https://jobs.example.com/api", 0},
		{"empty falls back", "  ", 5, DefaultBackendURL, 5},
		{"no scheme falls back", "localhost:8080/api", 5, DefaultBackendURL, 5},
		{"bad scheme falls back", "ftp://host/api", 5, DefaultBackendURL, 5},
		{"negative score clamps", "http://h/api", -3, "http://h/api", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rt := NewRuntime(tt.url, tt.score)
			assert.Equal(t, tt.wantURL, rt.BaseURL)
			assert.Equal(t, tt.wantMin, rt.MinScore)
		})
	}
}

func TestLive_SwapIsWholesale(t *testing.T) {
	live := NewLive(DefaultRuntime())
	assert.Equal(t, DefaultRuntime(), live.Runtime())

	next := NewRuntime("http://backend:1/api", 40)
	prev := live.Swap(next)
	assert.Equal(t, DefaultRuntime(), prev)
	assert.Equal(t, next, live.Runtime())
}

func TestLive_ConcurrentReadersSeeWholeSnapshots(t *testing.T) {
	a := NewRuntime("http://a/api", 10)
	b := NewRuntime("http://b/api", 20)
	live := NewLive(a)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 1000; j++ {
				rt := live.Runtime()
				if rt.BaseURL == a.BaseURL {
					assert.Equal(t, a.MinScore, rt.MinScore)
				} else {
					assert.Equal(t, b, rt)
				}
			}
		}()
	}
	for j := 0; j < 1000; j++ {
		if j%2 == 0 {
			live.Swap(b)
		} else {
			live.Swap(a)
		}
	}
	wg.Wait()
}

func TestZeroLiveReturnsDefault(t *testing.T) {
	var live Live
	assert.Equal(t, DefaultRuntime(), live.Runtime())
}

func TestNormalizeAndValidate(t *testing.T) {
	cfg := Default()
	_, vr := NormalizeAndValidate(cfg)
	assert.True(t, vr.OK(), "defaults must validate: %v", vr.Errors)

	bad := Default()
	bad.App.ListenAddr = "nope"
	bad.Polling.IntervalMinutes = 0
	bad.Logging.Format = "xml"
	_, vr = NormalizeAndValidate(bad)
	assert.False(t, vr.OK())
	assert.Len(t, vr.Errors, 3)

	exposed := Default()
	exposed.App.ListenAddr = "0.0.0.0:38472"
	_, vr = NormalizeAndValidate(exposed)
	assert.True(t, vr.OK())
	assert.NotEmpty(t, vr.Warnings)
}

func TestEnsureUserConfigAndLoad(t *testing.T) {
	dir := t.TempDir()

	path, err := EnsureUserConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "config.yml"), path)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	// second call keeps the user's edits
	require.NoError(t, os.WriteFile(path, []byte("polling:\n  interval_minutes: 45\n"), 0o644))
	_, err = EnsureUserConfig(dir)
	require.NoError(t, err)

	cfg, err = Load(path)
	require.NoError(t, err)
	assert.Equal(t, 45, cfg.Polling.IntervalMinutes)
	assert.Equal(t, "127.0.0.1:38472", cfg.App.ListenAddr, "unset keys keep defaults")
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read config")

	path := filepath.Join(t.TempDir(), "bad.yml")
	require.NoError(t, os.WriteFile(path, []byte("polling: [unclosed"), 0o644))
	_, err = Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config")
}

func TestSaveAtomic_RejectsInvalidAndKeepsBackup(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, SaveAtomic(path, Default()))

	bad := Default()
	bad.Backend.Burst = 0
	require.Error(t, SaveAtomic(path, bad))

	next := Default()
	next.Badge.Color = "#ff0000"
	require.NoError(t, SaveAtomic(path, next))

	_, err := os.Stat(path + ".bak")
	require.NoError(t, err)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "#ff0000", cfg.Badge.Color)
}

func TestOverlayEnv(t *testing.T) {
	t.Setenv("JOBGO_LISTEN_ADDR", "127.0.0.1:9999")
	t.Setenv("JOBGO_POLL_MINUTES", "12")
	t.Setenv("JOBGO_LOG_LEVEL", "debug")

	cfg := Default()
	OverlayEnv(&cfg)
	assert.Equal(t, "127.0.0.1:9999", cfg.App.ListenAddr)
	assert.Equal(t, 12, cfg.Polling.IntervalMinutes)
	assert.Equal(t, "debug", cfg.Logging.Level)

	t.Setenv("JOBGO_POLL_MINUTES", "soon")
	cfg = Default()
	OverlayEnv(&cfg)
	assert.Equal(t, 30, cfg.Polling.IntervalMinutes)
}
