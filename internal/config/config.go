// Package config loads and validates service configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config captures all service configuration knobs loaded via Viper.
type Config struct {
	Server   ServerConfig  `mapstructure:"server"`
	Auth     AuthConfig    `mapstructure:"auth"`
	Render   RenderConfig  `mapstructure:"render"`
	Sessions SessionConfig `mapstructure:"sessions"`
	Checks   ChecksConfig  `mapstructure:"checks"`
	Cache    CacheConfig   `mapstructure:"cache"`
	Targets  TargetsConfig `mapstructure:"targets"`
	Logging  LoggingConfig `mapstructure:"logging"`
	Scoring  ScoringConfig `mapstructure:"scoring"`
}

// ServerConfig controls HTTP server behavior.
type ServerConfig struct {
	Port            int `mapstructure:"port"`
	RequestTimeout  int `mapstructure:"request_timeout_seconds"`
	ShutdownTimeout int `mapstructure:"shutdown_timeout_seconds"`
}

// AuthConfig defines API authentication toggles.
type AuthConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	APIKey  string `mapstructure:"api_key"`
}

// RenderConfig governs how pages are rendered into snapshots.
type RenderConfig struct {
	TimeoutSeconds    int    `mapstructure:"timeout_seconds"`
	SettleWaitMs      int    `mapstructure:"settle_wait_ms"`
	UserAgent         string `mapstructure:"user_agent"`
	MaxConcurrentRuns int    `mapstructure:"max_concurrent_runs"`
}

// SessionConfig bounds the headless browser session pool.
type SessionConfig struct {
	PoolSize          int     `mapstructure:"pool_size"`
	MaxSessionRenders int     `mapstructure:"max_session_renders"`
	HostQPS           float64 `mapstructure:"host_qps"`
}

// ChecksConfig selects which checker categories run by default.
type ChecksConfig struct {
	DisabledCategories []string `mapstructure:"disabled_categories"`
}

// CacheConfig controls the result cache.
type CacheConfig struct {
	TTLMinutes           int `mapstructure:"ttl_minutes"`
	SweepIntervalMinutes int `mapstructure:"sweep_interval_minutes"`
}

// TargetsConfig restricts which URLs may be checked.
type TargetsConfig struct {
	BlockedHosts []string `mapstructure:"blocked_hosts"`
	AllowPrivate bool     `mapstructure:"allow_private"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// ScoringConfig overrides the scoring tables. Empty maps mean built-in
// defaults.
type ScoringConfig struct {
	Weights   map[string]float64 `mapstructure:"weights"`
	Penalties map[string]float64 `mapstructure:"penalties"`
	Grades    map[string]float64 `mapstructure:"grades"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("A11Y")
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
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.request_timeout_seconds", 60)
	v.SetDefault("server.shutdown_timeout_seconds", 10)
	v.SetDefault("render.timeout_seconds", 25)
	v.SetDefault("render.settle_wait_ms", 1500)
	v.SetDefault("render.user_agent", "a11ycheck-bot/0.1")
	v.SetDefault("render.max_concurrent_runs", 4)
	v.SetDefault("sessions.pool_size", 2)
	v.SetDefault("sessions.max_session_renders", 50)
	v.SetDefault("sessions.host_qps", 1.0)
	v.SetDefault("cache.ttl_minutes", 1440)
	v.SetDefault("cache.sweep_interval_minutes", 10)
	v.SetDefault("targets.allow_private", false)
	v.SetDefault("logging.development", true)
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Server.Port <= 0 {
		return fmt.Errorf("server.port must be > 0")
	}
	if c.Render.TimeoutSeconds <= 0 {
		return fmt.Errorf("render.timeout_seconds must be > 0")
	}
	if c.Render.MaxConcurrentRuns <= 0 {
		return fmt.Errorf("render.max_concurrent_runs must be > 0")
	}
	if c.Sessions.PoolSize <= 0 {
		return fmt.Errorf("sessions.pool_size must be > 0")
	}
	if c.Cache.TTLMinutes <= 0 {
		return fmt.Errorf("cache.ttl_minutes must be > 0")
	}
	if c.Auth.Enabled && c.Auth.APIKey == "" {
		return fmt.Errorf("auth.api_key must be set when auth is enabled")
	}
	for cat, w := range c.Scoring.Weights {
		if w < 0 {
			return fmt.Errorf("scoring.weights.%s must be non-negative", cat)
		}
	}
	for sev, p := range c.Scoring.Penalties {
		if p < 0 {
			return fmt.Errorf("scoring.penalties.%s must be non-negative", sev)
		}
	}
	for grade, min := range c.Scoring.Grades {
		if min < 0 || min > 100 {
			return fmt.Errorf("scoring.grades.%s must be between 0 and 100", grade)
		}
	}
	return nil
}

// RenderTimeout converts the render timeout into a duration.
func (c Config) RenderTimeout() time.Duration {
	return time.Duration(c.Render.TimeoutSeconds) * time.Second
}

// SettleWait converts the settle window into a duration.
func (c Config) SettleWait() time.Duration {
	return time.Duration(c.Render.SettleWaitMs) * time.Millisecond
}

// CacheTTL converts the cache TTL into a duration.
func (c Config) CacheTTL() time.Duration {
	return time.Duration(c.Cache.TTLMinutes) * time.Minute
}

// SweepInterval converts the janitor period into a duration.
func (c Config) SweepInterval() time.Duration {
	return time.Duration(c.Cache.SweepIntervalMinutes) * time.Minute
}

// RequestTimeout converts the per-request budget into a duration.
func (c Config) RequestTimeout() time.Duration {
	return time.Duration(c.Server.RequestTimeout) * time.Second
}

// ShutdownTimeout converts the drain budget into a duration.
func (c Config) ShutdownTimeout() time.Duration {
	return time.Duration(c.Server.ShutdownTimeout) * time.Second
}
