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

func writeTempJSON(t *testing.T, dir, name string, data map[string]any) string {
	t.Helper()
	if dir == "" {
		dir = t.TempDir()
	}
	if name == "" {
		name = "cfg.json"
	}
	path := filepath.Join(dir, name)
	b, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))
	return path
}

func Test_parseJson_SourcesAndPrecedence(t *testing.T) {
	isolate(t)

	dir := t.TempDir()
	pathFlag := writeTempJSON(t, dir, "flag.json", map[string]any{
		"api_url":               "https://www.example/api",
		"online_check_interval": "10s",
		"request_timeout":       float64(2 * time.Second),
		"ice_servers":           []string{"stun:one.example"},
		"s3":                    map[string]any{"bucket": "pics", "public_url": "https://cdn.example"},
	})

	t.Run("loads from flags", func(t *testing.T) {
		os.Args = []string{"testbin", "-config", pathFlag}

		cfg := defaults()
		parseJson(cfg)

		assert.Equal(t, "https://www.example/api", cfg.APIURL)
		assert.Equal(t, 10*time.Second, cfg.OnlineCheckInterval)
		assert.Equal(t, 2*time.Second, cfg.RequestTimeout)
		assert.Equal(t, []string{"stun:one.example"}, cfg.ICEServers)
		assert.Equal(t, "pics", cfg.S3Bucket)
		assert.Equal(t, "https://cdn.example", cfg.S3PublicURL)
		// absent fields keep earlier values
		assert.Equal(t, "ws://localhost:8000/ws", cfg.WSURL)
		assert.Equal(t, "us-east-1", cfg.S3Region)
	})

	t.Run("loads from EXPERTCONNECT_CONFIG", func(t *testing.T) {
		os.Args = []string{"testbin"}
		t.Setenv("EXPERTCONNECT_CONFIG", pathFlag)

		cfg := defaults()
		parseJson(cfg)
		assert.Equal(t, "https://www.example/api", cfg.APIURL)
	})

	t.Run("no config and no flags, no changes", func(t *testing.T) {
		os.Args = []string{"testbin"}
		t.Setenv("EXPERTCONNECT_CONFIG", "")

		cfg := &Config{APIURL: "defaults", OnlineCheckInterval: 42 * time.Second}
		parseJson(cfg)

		assert.Equal(t, "defaults", cfg.APIURL)
		assert.Equal(t, 42*time.Second, cfg.OnlineCheckInterval)
	})

	t.Run("invalid JSON panics", func(t *testing.T) {
		bad := filepath.Join(dir, "bad.json")
		require.NoError(t, os.WriteFile(bad, []byte(`{ this is not valid json`), 0o600))

		os.Args = []string{"testbin", "-config", bad}
		require.Panics(t, func() { parseJson(defaults()) })
	})

	t.Run("missing file panics", func(t *testing.T) {
		os.Args = []string{"testbin", "-c", filepath.Join(dir, "nope.json")}
		require.Panics(t, func() { parseJson(defaults()) })
	})
}
