// Package config loads daemon configuration from environment variables,
// with an optional YAML overlay for dashboard-facing tunables.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// Config holds all daemon configuration loaded from environment variables.
type Config struct {
	// General
	Environment string `envconfig:"ENVIRONMENT" default:"development"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`
	ListenAddr  string `envconfig:"LISTEN_ADDR" default:":5174"`
	CORSOrigins string `envconfig:"CORS_ORIGINS"`

	// Peer data source (companion desktop process; optional — the daemon
	// runs fine when the peer is not running)
	PeerBaseURL string        `envconfig:"PEER_BASE_URL" default:"http://localhost:5173"`
	PeerTimeout time.Duration `envconfig:"PEER_TIMEOUT" default:"5s"`

	// Local store
	StorePath         string        `envconfig:"STORE_PATH" default:"workpulse.db"`
	StoreQueryTimeout time.Duration `envconfig:"STORE_QUERY_TIMEOUT" default:"3s"`
	StoreRangeTimeout time.Duration `envconfig:"STORE_RANGE_TIMEOUT" default:"10s"`

	// Cache
	ActivityCacheTTL time.Duration `envconfig:"ACTIVITY_CACHE_TTL" default:"1s"`
	MetricsCacheTTL  time.Duration `envconfig:"METRICS_CACHE_TTL" default:"30s"`
	CacheCapacity    int           `envconfig:"CACHE_CAPACITY" default:"256"`

	// API
	RateLimitRPS   int    `envconfig:"RATE_LIMIT_RPS" default:"100"`
	RateLimitBurst int    `envconfig:"RATE_LIMIT_BURST" default:"200"`
	OverlayPath    string `envconfig:"CONFIG_OVERLAY"`
}

// Overlay carries the subset of settings tunable from a YAML file next to
// the dashboard install. Pointers distinguish "absent" from zero.
type Overlay struct {
	PeerBaseURL       *string        `yaml:"peer_base_url"`
	PeerTimeout       *time.Duration `yaml:"peer_timeout"`
	StoreQueryTimeout *time.Duration `yaml:"store_query_timeout"`
	StoreRangeTimeout *time.Duration `yaml:"store_range_timeout"`
	ActivityCacheTTL  *time.Duration `yaml:"activity_cache_ttl"`
	MetricsCacheTTL   *time.Duration `yaml:"metrics_cache_ttl"`
	CacheCapacity     *int           `yaml:"cache_capacity"`
}

// PeerEnabled returns true if a peer base URL is configured.
func (c *Config) PeerEnabled() bool {
	return c.PeerBaseURL != ""
}

// Load reads configuration from environment variables and applies the
// overlay file if one is configured.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if cfg.OverlayPath != "" {
		if err := cfg.ApplyOverlay(cfg.OverlayPath); err != nil {
			return nil, err
		}
	}
	return &cfg, nil
}

// ApplyOverlay merges settings from a YAML file over the env-derived
// config. A missing file is an error; the overlay is only read when
// explicitly configured.
func (c *Config) ApplyOverlay(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config overlay: %w", err)
	}

	var o Overlay
	if err := yaml.Unmarshal(data, &o); err != nil {
		return fmt.Errorf("parsing config overlay %s: %w", path, err)
	}

	if o.PeerBaseURL != nil {
		c.PeerBaseURL = *o.PeerBaseURL
	}
	if o.PeerTimeout != nil {
		c.PeerTimeout = *o.PeerTimeout
	}
	if o.StoreQueryTimeout != nil {
		c.StoreQueryTimeout = *o.StoreQueryTimeout
	}
	if o.StoreRangeTimeout != nil {
		c.StoreRangeTimeout = *o.StoreRangeTimeout
	}
	if o.ActivityCacheTTL != nil {
		c.ActivityCacheTTL = *o.ActivityCacheTTL
	}
	if o.MetricsCacheTTL != nil {
		c.MetricsCacheTTL = *o.MetricsCacheTTL
	}
	if o.CacheCapacity != nil {
		c.CacheCapacity = *o.CacheCapacity
	}

	return nil
}
