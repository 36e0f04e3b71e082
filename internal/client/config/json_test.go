package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempJSON(t *testing.T, data map[string]any) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cfg.json")
	b, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))
	return path
}

func TestParseJSON(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	path := writeTempJSON(t, map[string]any{
		"api_base_url":           "http://backend:9000",
		"ws_url":                 "ws://backend:9000/ws/notifications",
		"online_check_interval":  "10s",
		"reconnect_max_attempts": 7,
	})

	t.Run("loads from flag-named file", func(t *testing.T) {
		os.Args = []string{"testbin", "-config", path}

		cfg := &Config{}
		cfg.LoadDefaults()
		parseJSON(cfg)

		assert.Equal(t, "http://backend:9000", cfg.APIBaseURL)
		assert.Equal(t, "ws://backend:9000/ws/notifications", cfg.WSURL)
		assert.Equal(t, 10*time.Second, cfg.OnlineCheckInterval)
		assert.Equal(t, 7, cfg.ReconnectMaxAttempts)
	})

	t.Run("partial file keeps untouched fields", func(t *testing.T) {
		os.Args = []string{"testbin", "-config", path}

		cfg := &Config{}
		cfg.LoadDefaults()
		parseJSON(cfg)

		assert.Equal(t, "tournops.db", cfg.DatabasePath)
		assert.Equal(t, 10*time.Second, cfg.RequestTimeout)
	})

	t.Run("no flag means no JSON stage", func(t *testing.T) {
		os.Args = []string{"testbin"}

		cfg := &Config{APIBaseURL: "http://defaults:1234"}
		parseJSON(cfg)

		assert.Equal(t, "http://defaults:1234", cfg.APIBaseURL)
	})
}
