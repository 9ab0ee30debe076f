package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleYAML = `
app:
  data_dir: ./data
  db_file: engine.db
fetch:
  user_agent: "TestBot/1.0"
  timeout_seconds: 20
sources:
  eurobrussels:
    enabled: true
    base_url: https://jobs.example.eu
    max_listings: 50
  euractiv:
    enabled: true
    feed_url: https://feed.example.eu/jobs.rss
notify:
  enabled: true
  base_url: https://api.mail.example/v3/mg.example.eu
  from: "JobMill <noreply@example.eu>"
expiry:
  default_days: 14
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	cfg, err := Load(writeConfig(t, sampleYAML))
	require.NoError(t, err)

	assert.Equal(t, "engine.db", cfg.App.DBFile)
	assert.Equal(t, "TestBot/1.0", cfg.Fetch.UserAgent)
	assert.Equal(t, 20, cfg.Fetch.TimeoutSeconds)
	assert.True(t, cfg.Sources.EuroBrussels.Enabled)
	assert.Equal(t, 50, cfg.Sources.EuroBrussels.MaxListings)
	assert.Equal(t, "https://feed.example.eu/jobs.rss", cfg.Sources.Euractiv.FeedURL)
	assert.Equal(t, 14, cfg.Expiry.DefaultDays)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
	require.Error(t, err)
}

func TestNormalizeDefaults(t *testing.T) {
	cfg, res := NormalizeAndValidate(Config{})

	assert.True(t, res.OK(), "empty config is valid, just useless: %v", res.Errors)
	assert.NotEmpty(t, res.Warnings, "no sources enabled should warn")

	assert.Equal(t, "./data", cfg.App.DataDir)
	assert.Equal(t, "jobmill.db", cfg.App.DBFile)
	assert.Equal(t, 30, cfg.Fetch.TimeoutSeconds)
	assert.Equal(t, float64(1), cfg.Fetch.PerHostRPS)
	assert.Equal(t, 3, cfg.Fetch.Retries)
	assert.Equal(t, 500, cfg.Fetch.BackoffMillis)
	assert.Equal(t, 2, cfg.Notify.BatchSize)
	assert.Equal(t, 1000, cfg.Notify.WindowMillis)
	assert.Equal(t, 30, cfg.Expiry.DefaultDays)
	assert.Equal(t, 100, cfg.Sources.EuroBrussels.MaxListings)
}

func TestValidateSourceEndpoints(t *testing.T) {
	var cfg Config
	cfg.Sources.EuroBrussels.Enabled = true
	cfg.Sources.Storyblok.Enabled = true
	cfg.Sources.Storyblok.BaseURL = "https://api.cms.example/v2"
	cfg.Notify.Enabled = true

	_, res := NormalizeAndValidate(cfg)
	assert.False(t, res.OK())
	assert.Contains(t, res.Errors, "sources.eurobrussels.base_url is required when enabled")
	assert.Contains(t, res.Errors, "sources.storyblok.token is required when enabled")
	assert.Contains(t, res.Errors, "notify.base_url is required when notify.enabled=true")
	assert.Contains(t, res.Errors, "notify.from is required when notify.enabled=true")
}

func TestEnsureUserConfig(t *testing.T) {
	dir := t.TempDir()
	defaultPath := filepath.Join(dir, "default.yml")
	require.NoError(t, os.WriteFile(defaultPath, []byte(sampleYAML), 0o644))

	dataDir := filepath.Join(dir, "data")
	userPath, err := EnsureUserConfig(dataDir, defaultPath)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dataDir, "config.yml"), userPath)

	seeded, err := os.ReadFile(userPath)
	require.NoError(t, err)
	assert.Equal(t, sampleYAML, string(seeded))

	// user edits survive later calls
	require.NoError(t, os.WriteFile(userPath, []byte("app: {}\n"), 0o644))
	again, err := EnsureUserConfig(dataDir, defaultPath)
	require.NoError(t, err)
	assert.Equal(t, userPath, again)

	kept, err := os.ReadFile(userPath)
	require.NoError(t, err)
	assert.Equal(t, "app: {}\n", string(kept))
}
