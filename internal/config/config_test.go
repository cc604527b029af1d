package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, yaml string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))
	return path
}

func validConfig(t *testing.T) Config {
	t.Helper()
	cfg, err := Load(writeConfig(t, "db:\n  dsn: postgres://localhost/events\n"))
	require.NoError(t, err)
	return cfg
}

func TestLoadAppliesDefaults(t *testing.T) {
	t.Parallel()

	cfg := validConfig(t)

	assert.True(t, cfg.Logging.Development)
	assert.Equal(t, "https://www.puntoticket.com", cfg.Site.BaseURL)
	assert.Equal(t, "/todos", cfg.Site.ListingPath)
	assert.Equal(t, []string{"/musica", "/deportes", "/teatro", "/familia", "/especiales"}, cfg.Site.Categories)

	assert.True(t, cfg.Browser.Headless)
	assert.NotEmpty(t, cfg.Browser.UserAgents)
	assert.Equal(t, 3, cfg.Browser.NavRetries)

	assert.Equal(t, 1, cfg.Scraping.Concurrency)
	assert.Equal(t, 2, cfg.Scraping.TaskRetries)
	assert.Equal(t, 2000, cfg.Scraping.MinDelayMs)
	assert.Equal(t, 5000, cfg.Scraping.MaxDelayMs)
	assert.Equal(t, 100, cfg.Scraping.MaxScrolls)
	assert.Equal(t, 50, cfg.Scraping.CategoryMaxScrolls)

	assert.Equal(t, "events_v2", cfg.DB.Table)
	assert.Equal(t, "noop", cfg.Archive.Provider)
	assert.Equal(t, "noop", cfg.Publish.Provider)
	assert.False(t, cfg.Diag.Enabled)

	assert.Equal(t, 60*time.Second, cfg.NavTimeout())
	assert.Equal(t, 30*time.Second, cfg.ChallengeTimeout())
	assert.Equal(t, 60*time.Second, cfg.PageTimeout())
}

func TestLoadWithFileOverrides(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `
db:
  dsn: postgres://localhost/events
  table: events_test
site:
  base_url: https://staging.puntoticket.com
scraping:
  concurrency: 3
  task_retries: 1
browser:
  headless: false
  nav_retries: 5
archive:
  provider: local
  base_dir: /tmp/pages
publish:
  provider: memory
diag:
  enabled: true
  addr: ":9999"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "events_test", cfg.DB.Table)
	assert.Equal(t, "https://staging.puntoticket.com", cfg.Site.BaseURL)
	assert.Equal(t, 3, cfg.Scraping.Concurrency)
	assert.Equal(t, 1, cfg.Scraping.TaskRetries)
	assert.False(t, cfg.Browser.Headless)
	assert.Equal(t, 5, cfg.Browser.NavRetries)
	assert.Equal(t, "local", cfg.Archive.Provider)
	assert.Equal(t, "/tmp/pages", cfg.Archive.BaseDir)
	assert.Equal(t, "memory", cfg.Publish.Provider)
	assert.True(t, cfg.Diag.Enabled)
	assert.Equal(t, ":9999", cfg.Diag.Addr)
}

func TestLoadRequiresDSN(t *testing.T) {
	t.Parallel()

	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db.dsn")
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{name: "zero concurrency", mutate: func(c *Config) { c.Scraping.Concurrency = 0 }},
		{name: "inverted delay bounds", mutate: func(c *Config) { c.Scraping.MinDelayMs = 9000 }},
		{name: "zero nav retries", mutate: func(c *Config) { c.Browser.NavRetries = 0 }},
		{name: "no user agents", mutate: func(c *Config) {
			c.Browser.UserAgents = nil
			c.Browser.UserAgent = ""
		}},
		{name: "unknown archive provider", mutate: func(c *Config) { c.Archive.Provider = "s3" }},
		{name: "local archive without base dir", mutate: func(c *Config) {
			c.Archive.Provider = "local"
			c.Archive.BaseDir = ""
		}},
		{name: "gcs archive without bucket", mutate: func(c *Config) { c.Archive.Provider = "gcs" }},
		{name: "unknown publish provider", mutate: func(c *Config) { c.Publish.Provider = "kafka" }},
		{name: "pubsub without project", mutate: func(c *Config) { c.Publish.Provider = "pubsub" }},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			cfg := validConfig(t)
			tc.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
