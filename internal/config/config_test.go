package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, ""))
	require.NoError(t, err)

	assert.Equal(t, "api", cfg.Collector.Mode)
	assert.Equal(t, "youtube_spam_bot_config", cfg.Wiki.Page)
	assert.Equal(t, 4, cfg.Engine.Workers)
	assert.Equal(t, 100, cfg.Ingest.PageSize)
	assert.False(t, cfg.Enforcement.DryRun)
}

func TestLoadOverrides(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
collector:
  mode: mock
ingest:
  poll_interval: 5s
  page_size: 25
engine:
  workers: 2
enforcement:
  dry_run: true
`))
	require.NoError(t, err)

	assert.Equal(t, "mock", cfg.Collector.Mode)
	assert.Equal(t, 25, cfg.Ingest.PageSize)
	assert.Equal(t, 2, cfg.Engine.Workers)
	assert.True(t, cfg.Enforcement.DryRun)
}

func TestLoadRejectsInvalid(t *testing.T) {
	cases := []struct {
		name    string
		content string
	}{
		{"bad mode", "collector:\n  mode: carrier-pigeon\n"},
		{"oversized page", "ingest:\n  page_size: 500\n"},
		{"zero workers", "engine:\n  workers: 0\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tc.content))
			assert.Error(t, err)
		})
	}
}
