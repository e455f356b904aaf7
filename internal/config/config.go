// Package config loads and validates scraper configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config captures all scraper configuration knobs loaded via Viper.
type Config struct {
	Wiki      WikiConfig      `mapstructure:"wiki"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit"`
	Scrape    ScrapeConfig    `mapstructure:"scrape"`
	Output    OutputConfig    `mapstructure:"output"`
	Publish   PublishConfig   `mapstructure:"publish"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// WikiConfig locates the wiki and tunes requests to it.
type WikiConfig struct {
	PageEndpoint   string        `mapstructure:"page_endpoint"`
	APIEndpoint    string        `mapstructure:"api_endpoint"`
	UserAgent      string        `mapstructure:"user_agent"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	RetryCooldown  time.Duration `mapstructure:"retry_cooldown"`
	// IndexPages are the pages whose backlinks enumerate song pages.
	IndexPages []string `mapstructure:"index_pages"`
}

// RateLimitConfig bounds the request rate shared by all fetches.
type RateLimitConfig struct {
	RPS   float64 `mapstructure:"rps"`
	Burst int     `mapstructure:"burst"`
}

// ScrapeConfig governs the batch run.
type ScrapeConfig struct {
	Concurrency    int      `mapstructure:"concurrency"`
	SingerRequired bool     `mapstructure:"singer_required"`
	ExcludePages   []string `mapstructure:"exclude_pages"`
	// Sample keeps a random subset of discovered pages when positive.
	Sample int `mapstructure:"sample"`
}

// OutputConfig selects where export tables are written.
type OutputConfig struct {
	Provider  string `mapstructure:"provider"`
	Dir       string `mapstructure:"dir"`
	GCSBucket string `mapstructure:"gcs_bucket"`
	Prefix    string `mapstructure:"prefix"`
}

// PublishConfig controls the per-record Pub/Sub stream.
type PublishConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	ProjectID string `mapstructure:"project_id"`
	Topic     string `mapstructure:"topic"`
}

// MetricsConfig configures the ops server. An empty Addr disables it.
type MetricsConfig struct {
	Addr string `mapstructure:"addr"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("NOPLP")
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
	v.SetDefault("wiki.page_endpoint", "https://n-oubliez-pas-les-paroles.fandom.com/fr/rest.php/v1/page")
	v.SetDefault("wiki.api_endpoint", "https://n-oubliez-pas-les-paroles.fandom.com/fr/api.php")
	v.SetDefault("wiki.user_agent", "noplp-songs/0.1")
	v.SetDefault("wiki.request_timeout", 15*time.Second)
	v.SetDefault("wiki.retry_cooldown", 30*time.Second)
	v.SetDefault("wiki.index_pages", []string{
		"Liste des chansons existantes",
		"Liste des chansons existantes (de la lettre A à la lettre M)",
		"Liste des chansons existantes (de la lettre N à la lettre Z)",
	})
	v.SetDefault("ratelimit.rps", 5.0)
	v.SetDefault("ratelimit.burst", 1)
	v.SetDefault("scrape.concurrency", 8)
	v.SetDefault("scrape.singer_required", false)
	v.SetDefault("scrape.exclude_pages", []string{"Les feuilles mortes"})
	v.SetDefault("scrape.sample", 0)
	v.SetDefault("output.provider", "local")
	v.SetDefault("output.dir", "data")
	v.SetDefault("output.prefix", "exports")
	v.SetDefault("publish.enabled", false)
	v.SetDefault("publish.topic", "noplp-songs")
	v.SetDefault("metrics.addr", "")
	v.SetDefault("logging.development", true)
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Wiki.PageEndpoint == "" {
		return fmt.Errorf("wiki.page_endpoint is required")
	}
	if c.Wiki.RequestTimeout <= 0 {
		return fmt.Errorf("wiki.request_timeout must be > 0")
	}
	if c.Wiki.RetryCooldown <= 0 {
		return fmt.Errorf("wiki.retry_cooldown must be > 0")
	}
	if c.RateLimit.RPS < 0 {
		return fmt.Errorf("ratelimit.rps must be >= 0")
	}
	if c.Scrape.Concurrency <= 0 {
		return fmt.Errorf("scrape.concurrency must be > 0")
	}
	if c.Scrape.Sample < 0 {
		return fmt.Errorf("scrape.sample must be >= 0")
	}
	switch c.Output.Provider {
	case "local":
		if c.Output.Dir == "" {
			return fmt.Errorf("output.dir must be set for the local provider")
		}
	case "gcs":
		if c.Output.GCSBucket == "" {
			return fmt.Errorf("output.gcs_bucket must be set for the gcs provider")
		}
	case "memory":
	default:
		return fmt.Errorf("output.provider must be one of local, gcs, memory")
	}
	if c.Publish.Enabled && (c.Publish.ProjectID == "" || c.Publish.Topic == "") {
		return fmt.Errorf("publish.project_id and publish.topic must be set when publishing is enabled")
	}
	return nil
}
