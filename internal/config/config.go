// Package config loads and validates scanner configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config captures all scanner configuration knobs loaded via Viper.
type Config struct {
	Scan    ScanConfig    `mapstructure:"scan"`
	HTTP    HTTPConfig    `mapstructure:"http"`
	Rules   RulesConfig   `mapstructure:"rules"`
	Server  ServerConfig  `mapstructure:"server"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// ScanConfig governs batch dispatch behavior.
type ScanConfig struct {
	Concurrency       int `mapstructure:"concurrency"`
	BatchDelaySeconds int `mapstructure:"batch_delay_seconds"`
}

// HTTPConfig configures the inventory endpoint and client retry behavior.
type HTTPConfig struct {
	Endpoint         string `mapstructure:"endpoint"`
	Origin           string `mapstructure:"origin"`
	UserAgent        string `mapstructure:"user_agent"`
	TimeoutSeconds   int    `mapstructure:"timeout_seconds"`
	MaxRetries       int    `mapstructure:"max_retries"`
	BackoffInitialMs int    `mapstructure:"backoff_initial_ms"`
	BackoffMaxMs     int    `mapstructure:"backoff_max_ms"`
}

// RulesConfig toggles the structural rule classes and lists literal targets.
// The five-digit sequence rule is always active and has no toggle.
type RulesConfig struct {
	QuadRun        bool     `mapstructure:"quad_run"`
	TripleRun      bool     `mapstructure:"triple_run"`
	QuadSequence   bool     `mapstructure:"quad_sequence"`
	TripleSequence bool     `mapstructure:"triple_sequence"`
	Targets        []string `mapstructure:"targets"`
}

// ServerConfig controls the optional status HTTP server.
type ServerConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Port    int  `mapstructure:"port"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("VANITYSCAN")
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
	v.SetDefault("scan.concurrency", 100)
	v.SetDefault("scan.batch_delay_seconds", 2)
	v.SetDefault("http.endpoint", "https://graphql.nova.is/graphql")
	v.SetDefault("http.origin", "https://portal.nova.is")
	v.SetDefault("http.user_agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/143.0.0.0 Safari/537.36")
	v.SetDefault("http.timeout_seconds", 10)
	v.SetDefault("http.max_retries", 3)
	v.SetDefault("http.backoff_initial_ms", 1000)
	v.SetDefault("http.backoff_max_ms", 8000)
	v.SetDefault("rules.quad_run", true)
	v.SetDefault("rules.triple_run", true)
	v.SetDefault("rules.quad_sequence", true)
	v.SetDefault("rules.triple_sequence", false)
	v.SetDefault("rules.targets", []string{})
	v.SetDefault("server.enabled", false)
	v.SetDefault("server.port", 8080)
	v.SetDefault("logging.development", true)
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Scan.Concurrency <= 0 {
		return fmt.Errorf("scan.concurrency must be > 0")
	}
	if c.Scan.BatchDelaySeconds < 0 {
		return fmt.Errorf("scan.batch_delay_seconds must be >= 0")
	}
	if c.HTTP.Endpoint == "" {
		return fmt.Errorf("http.endpoint must be set")
	}
	if c.HTTP.TimeoutSeconds <= 0 {
		return fmt.Errorf("http.timeout_seconds must be > 0")
	}
	if c.HTTP.MaxRetries < 0 {
		return fmt.Errorf("http.max_retries must be >= 0")
	}
	if c.Server.Enabled && c.Server.Port <= 0 {
		return fmt.Errorf("server.port must be > 0 when the status server is enabled")
	}
	return nil
}

// BatchDelay converts the inter-round pacing config into a duration.
func (c Config) BatchDelay() time.Duration {
	return time.Duration(c.Scan.BatchDelaySeconds) * time.Second
}

// RequestTimeout converts the per-call timeout config into a duration.
func (c Config) RequestTimeout() time.Duration {
	return time.Duration(c.HTTP.TimeoutSeconds) * time.Second
}
