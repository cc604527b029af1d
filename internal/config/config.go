// Package config loads and validates crawler configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config captures all configuration knobs loaded via Viper.
type Config struct {
	Logging  LoggingConfig  `mapstructure:"logging"`
	Site     SiteConfig     `mapstructure:"site"`
	Browser  BrowserConfig  `mapstructure:"browser"`
	Scraping ScrapingConfig `mapstructure:"scraping"`
	DB       DBConfig       `mapstructure:"db"`
	Archive  ArchiveConfig  `mapstructure:"archive"`
	Publish  PublishConfig  `mapstructure:"publish"`
	Diag     DiagConfig     `mapstructure:"diag"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// SiteConfig describes the target site's layout.
type SiteConfig struct {
	BaseURL     string   `mapstructure:"base_url"`
	ListingPath string   `mapstructure:"listing_path"`
	Categories  []string `mapstructure:"categories"`
}

// BrowserConfig governs the stealth browser session.
type BrowserConfig struct {
	Headless            bool     `mapstructure:"headless"`
	UserAgent           string   `mapstructure:"user_agent"`
	UserAgents          []string `mapstructure:"user_agents"`
	NavTimeoutSec       int      `mapstructure:"nav_timeout_seconds"`
	NavRetries          int      `mapstructure:"nav_retries"`
	ChallengeTimeoutSec int      `mapstructure:"challenge_timeout_seconds"`
}

// ScrapingConfig governs pacing, scrolling and the extraction queue.
type ScrapingConfig struct {
	Concurrency        int `mapstructure:"concurrency"`
	TaskRetries        int `mapstructure:"task_retries"`
	MinDelayMs         int `mapstructure:"min_delay_ms"`
	MaxDelayMs         int `mapstructure:"max_delay_ms"`
	ScrollDelayMs      int `mapstructure:"scroll_delay_ms"`
	MaxScrolls         int `mapstructure:"max_scrolls"`
	CategoryMaxScrolls int `mapstructure:"category_max_scrolls"`
	PageTimeoutSec     int `mapstructure:"page_timeout_seconds"`
}

// DBConfig controls access to the events database.
type DBConfig struct {
	DSN             string `mapstructure:"dsn"`
	Table           string `mapstructure:"table"`
	MaxConns        int32  `mapstructure:"max_conns"`
	MinConns        int32  `mapstructure:"min_conns"`
	MaxConnLifetime int    `mapstructure:"max_conn_lifetime_seconds"`
}

// ArchiveConfig selects the rendered-page archive provider.
type ArchiveConfig struct {
	Provider string `mapstructure:"provider"`
	BaseDir  string `mapstructure:"base_dir"`
	Bucket   string `mapstructure:"gcs_bucket"`
}

// PublishConfig selects the ingest-notification publisher.
type PublishConfig struct {
	Provider  string `mapstructure:"provider"`
	ProjectID string `mapstructure:"project_id"`
	Topic     string `mapstructure:"topic"`
}

// DiagConfig controls the diagnostics HTTP server.
type DiagConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Addr    string `mapstructure:"addr"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("CRAWLER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logging.development", true)

	v.SetDefault("site.base_url", "https://www.puntoticket.com")
	v.SetDefault("site.listing_path", "/todos")
	v.SetDefault("site.categories", []string{
		"/musica", "/deportes", "/teatro", "/familia", "/especiales",
	})

	v.SetDefault("browser.headless", true)
	v.SetDefault("browser.user_agents", []string{
		"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.2.1 Safari/605.1.15",
		"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:121.0) Gecko/20100101 Firefox/121.0",
	})
	v.SetDefault("browser.nav_timeout_seconds", 60)
	v.SetDefault("browser.nav_retries", 3)
	v.SetDefault("browser.challenge_timeout_seconds", 30)

	v.SetDefault("scraping.concurrency", 1)
	v.SetDefault("scraping.task_retries", 2)
	v.SetDefault("scraping.min_delay_ms", 2000)
	v.SetDefault("scraping.max_delay_ms", 5000)
	v.SetDefault("scraping.scroll_delay_ms", 1500)
	v.SetDefault("scraping.max_scrolls", 100)
	v.SetDefault("scraping.category_max_scrolls", 50)
	v.SetDefault("scraping.page_timeout_seconds", 60)

	v.SetDefault("db.table", "events_v2")
	v.SetDefault("db.max_conns", 4)

	v.SetDefault("archive.provider", "noop")
	v.SetDefault("publish.provider", "noop")

	v.SetDefault("diag.enabled", false)
	v.SetDefault("diag.addr", ":9090")
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.DB.DSN == "" {
		return fmt.Errorf("db.dsn is required")
	}
	if c.Site.BaseURL == "" {
		return fmt.Errorf("site.base_url is required")
	}
	if c.Scraping.Concurrency <= 0 {
		return fmt.Errorf("scraping.concurrency must be > 0")
	}
	if c.Scraping.MinDelayMs > c.Scraping.MaxDelayMs {
		return fmt.Errorf("scraping.min_delay_ms must be <= scraping.max_delay_ms")
	}
	if c.Browser.NavRetries <= 0 {
		return fmt.Errorf("browser.nav_retries must be > 0")
	}
	if len(c.Browser.UserAgents) == 0 && c.Browser.UserAgent == "" {
		return fmt.Errorf("browser.user_agents must not be empty")
	}
	switch c.Archive.Provider {
	case "noop", "local", "gcs":
	default:
		return fmt.Errorf("unknown archive provider: %s", c.Archive.Provider)
	}
	if c.Archive.Provider == "local" && c.Archive.BaseDir == "" {
		return fmt.Errorf("archive.base_dir is required for the local provider")
	}
	if c.Archive.Provider == "gcs" && c.Archive.Bucket == "" {
		return fmt.Errorf("archive.gcs_bucket is required for the gcs provider")
	}
	switch c.Publish.Provider {
	case "noop", "memory", "pubsub":
	default:
		return fmt.Errorf("unknown publish provider: %s", c.Publish.Provider)
	}
	if c.Publish.Provider == "pubsub" && (c.Publish.ProjectID == "" || c.Publish.Topic == "") {
		return fmt.Errorf("publish.project_id and publish.topic are required for the pubsub provider")
	}
	return nil
}

// NavTimeout returns the per-attempt navigation timeout.
func (c Config) NavTimeout() time.Duration {
	return time.Duration(c.Browser.NavTimeoutSec) * time.Second
}

// ChallengeTimeout returns the challenge-poll budget.
func (c Config) ChallengeTimeout() time.Duration {
	return time.Duration(c.Browser.ChallengeTimeoutSec) * time.Second
}

// PageTimeout returns the per-task extraction budget.
func (c Config) PageTimeout() time.Duration {
	return time.Duration(c.Scraping.PageTimeoutSec) * time.Second
}
