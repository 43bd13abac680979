package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadServer_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := LoadServer("")
	require.NoError(t, err)

	require.Equal(t, ":8080", cfg.REST.Addr)
	require.Equal(t, 100, cfg.Queue.MaxConcurrent)
	require.Equal(t, 5*time.Minute, cfg.Queue.CallTimeout)
	require.Equal(t, 4096, cfg.AI.MaxTokens)
	require.True(t, cfg.AI.Stream)
	require.Equal(t, "memory", cfg.Storage.Driver)
	require.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadServer_FileAndEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "server.yaml")
	content := `
queue:
  max_concurrent: 1
  call_timeout: 90s
ai:
  model: gpt-4o
logging:
  level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	t.Setenv("STYLIZE_SERVER_AI_API_KEY", "secret")
	t.Setenv("STYLIZE_SERVER_REST_ADDR", ":9999")

	cfg, err := LoadServer(path)
	require.NoError(t, err)

	require.Equal(t, 1, cfg.Queue.MaxConcurrent)
	require.Equal(t, 90*time.Second, cfg.Queue.CallTimeout)
	require.Equal(t, "gpt-4o", cfg.AI.Model)
	require.Equal(t, "secret", cfg.AI.APIKey)
	require.Equal(t, ":9999", cfg.REST.Addr)
	require.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadServer_InvalidConcurrency(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "server.yaml")
	require.NoError(t, os.WriteFile(path, []byte("queue:\n  max_concurrent: 0\n"), 0o644))

	_, err := LoadServer(path)
	require.Error(t, err)
}

func TestLoadServer_MissingExplicitFile(t *testing.T) {
	_, err := LoadServer(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestLoadBatch_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := LoadBatch("")
	require.NoError(t, err)

	require.Equal(t, 4, cfg.Queue.MaxConcurrent)
	require.Equal(t, time.Second, cfg.PollInterval)
	require.Equal(t, "text", cfg.Logging.Format)
}
