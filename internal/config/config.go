// Package config defines the top-level configuration for the signal agent and
// provides validation helpers.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config is the root configuration structure. Fields are populated from a TOML
// file and then optionally overridden by POLYAGENT_* environment variables.
type Config struct {
	Signals    SignalsConfig    `toml:"signals"`
	Discovery  DiscoveryConfig  `toml:"discovery"`
	Scanner    ScannerConfig    `toml:"scanner"`
	Polymarket PolymarketConfig `toml:"polymarket"`
	Postgres   PostgresConfig   `toml:"postgres"`
	Redis      RedisConfig      `toml:"redis"`
	S3         S3Config         `toml:"s3"`
	Notify     NotifyConfig     `toml:"notify"`
	Mode       string           `toml:"mode"`
	LogLevel   string           `toml:"log_level"`
}

// SignalsConfig holds the tunables of the signal engine.
type SignalsConfig struct {
	EMAAlpha     float64  `toml:"ema_alpha"`
	MaxSpreadBps float64  `toml:"max_spread_bps"`
	MinDepthUSDC float64  `toml:"min_depth_usdc"`
	MaxStaleness duration `toml:"max_staleness"`
	TopNToLog    int      `toml:"top_n_to_log"`
}

// DiscoveryConfig holds market discovery parameters.
type DiscoveryConfig struct {
	MaxMarkets   int      `toml:"max_markets"`
	MinVolume24h float64  `toml:"min_volume_24h"`
	Keywords     []string `toml:"keywords"`
}

// ScannerConfig holds scan-cycle scheduling and failure handling.
type ScannerConfig struct {
	Interval       duration `toml:"interval"`
	Jitter         duration `toml:"jitter"`
	MaxErrorBurst  int      `toml:"max_error_burst"`
	FetchWorkers   int      `toml:"fetch_workers"`
	RequestsPerSec int      `toml:"requests_per_sec"`
	BookCacheTTL   duration `toml:"book_cache_ttl"`
}

// PolymarketConfig holds Polymarket API endpoints.
type PolymarketConfig struct {
	ClobHost  string `toml:"clob_host"`
	GammaHost string `toml:"gamma_host"`
	WsHost    string `toml:"ws_host"`
}

// PostgresConfig holds PostgreSQL connection parameters.
type PostgresConfig struct {
	DSN           string `toml:"dsn"`
	Host          string `toml:"host"`
	Port          int    `toml:"port"`
	Database      string `toml:"database"`
	User          string `toml:"user"`
	Password      string `toml:"password"`
	SSLMode       string `toml:"ssl_mode"`
	PoolMaxConns  int    `toml:"pool_max_conns"`
	PoolMinConns  int    `toml:"pool_min_conns"`
	RunMigrations bool   `toml:"run_migrations"`
}

// RedisConfig holds Redis connection parameters.
type RedisConfig struct {
	Addr       string `toml:"addr"`
	Password   string `toml:"password"`
	DB         int    `toml:"db"`
	PoolSize   int    `toml:"pool_size"`
	MaxRetries int    `toml:"max_retries"`
	TLSEnabled bool   `toml:"tls_enabled"`
}

// S3Config holds S3-compatible object storage parameters.
type S3Config struct {
	Enabled        bool   `toml:"enabled"`
	Endpoint       string `toml:"endpoint"`
	Region         string `toml:"region"`
	Bucket         string `toml:"bucket"`
	AccessKey      string `toml:"access_key"`
	SecretKey      string `toml:"secret_key"`
	UseSSL         bool   `toml:"use_ssl"`
	ForcePathStyle bool   `toml:"force_path_style"`
}

// NotifyConfig holds notification channel credentials.
type NotifyConfig struct {
	TelegramToken     string   `toml:"telegram_token"`
	TelegramChatID    string   `toml:"telegram_chat_id"`
	DiscordWebhookURL string   `toml:"discord_webhook_url"`
	Events            []string `toml:"events"`
}

// duration is a wrapper around time.Duration that supports TOML string decoding
// (e.g. "5m", "30s").
type duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler so the TOML decoder can
// parse duration strings like "5m" or "30s".
func (d *duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText implements encoding.TextMarshaler for round-trip encoding.
func (d duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Defaults returns a Config populated with reasonable default values.
// These match the values in config.example.toml.
func Defaults() Config {
	return Config{
		Signals: SignalsConfig{
			EMAAlpha:     0.2,
			MaxSpreadBps: 500,
			MinDepthUSDC: 100,
			MaxStaleness: duration{30 * time.Second},
			TopNToLog:    20,
		},
		Discovery: DiscoveryConfig{
			MaxMarkets:   50,
			MinVolume24h: 10000,
			Keywords:     []string{},
		},
		Scanner: ScannerConfig{
			Interval:       duration{30 * time.Second},
			Jitter:         duration{2 * time.Second},
			MaxErrorBurst:  5,
			FetchWorkers:   8,
			RequestsPerSec: 10,
			BookCacheTTL:   duration{10 * time.Second},
		},
		Polymarket: PolymarketConfig{
			ClobHost:  "https://clob.polymarket.com",
			GammaHost: "https://gamma-api.polymarket.com",
			WsHost:    "wss://ws-subscriptions-clob.polymarket.com",
		},
		Postgres: PostgresConfig{
			DSN:           "",
			Host:          "localhost",
			Port:          5432,
			Database:      "postgres",
			User:          "postgres",
			SSLMode:       "disable",
			PoolMaxConns:  10,
			PoolMinConns:  2,
			RunMigrations: true,
		},
		Redis: RedisConfig{
			Addr:       "localhost:6379",
			DB:         0,
			PoolSize:   20,
			MaxRetries: 3,
			TLSEnabled: false,
		},
		S3: S3Config{
			Enabled:        false,
			Endpoint:       "http://localhost:9000",
			Region:         "us-east-1",
			Bucket:         "polyagent-data",
			UseSSL:         false,
			ForcePathStyle: true,
		},
		Notify: NotifyConfig{
			Events: []string{"signal_detected", "scanner_halted", "error"},
		},
		Mode:     "scan",
		LogLevel: "info",
	}
}

// validModes enumerates the accepted values for Config.Mode.
var validModes = map[string]bool{
	"scan": true,
	"once": true,
	"feed": true,
}

// validLogLevels enumerates the accepted values for Config.LogLevel.
var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Validate checks Config for obviously invalid or missing values and returns a
// combined error describing every problem found.
func (c *Config) Validate() error {
	var errs []string

	// Mode
	if !validModes[strings.ToLower(c.Mode)] {
		errs = append(errs, fmt.Sprintf("unknown mode %q (valid: scan, once, feed)", c.Mode))
	}

	// LogLevel
	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		errs = append(errs, fmt.Sprintf("unknown log_level %q (valid: debug, info, warn, error)", c.LogLevel))
	}

	// Signals
	if c.Signals.EMAAlpha <= 0 || c.Signals.EMAAlpha > 1 {
		errs = append(errs, fmt.Sprintf("signals: ema_alpha must be in (0, 1], got %v", c.Signals.EMAAlpha))
	}
	if c.Signals.MaxSpreadBps <= 0 {
		errs = append(errs, "signals: max_spread_bps must be > 0")
	}
	if c.Signals.MinDepthUSDC < 0 {
		errs = append(errs, "signals: min_depth_usdc must be >= 0")
	}
	if c.Signals.MaxStaleness.Duration <= 0 {
		errs = append(errs, "signals: max_staleness must be > 0")
	}
	if c.Signals.TopNToLog < 0 {
		errs = append(errs, "signals: top_n_to_log must be >= 0")
	}

	// Discovery
	if c.Discovery.MaxMarkets < 1 {
		errs = append(errs, "discovery: max_markets must be >= 1")
	}
	if c.Discovery.MinVolume24h < 0 {
		errs = append(errs, "discovery: min_volume_24h must be >= 0")
	}

	// Scanner
	if c.Scanner.Interval.Duration <= 0 {
		errs = append(errs, "scanner: interval must be > 0")
	}
	if c.Scanner.Jitter.Duration < 0 {
		errs = append(errs, "scanner: jitter must be >= 0")
	}
	if c.Scanner.MaxErrorBurst < 1 {
		errs = append(errs, "scanner: max_error_burst must be >= 1")
	}
	if c.Scanner.FetchWorkers < 1 {
		errs = append(errs, "scanner: fetch_workers must be >= 1")
	}
	if c.Scanner.RequestsPerSec < 1 {
		errs = append(errs, "scanner: requests_per_sec must be >= 1")
	}

	// Polymarket endpoints
	if c.Polymarket.ClobHost == "" {
		errs = append(errs, "polymarket: clob_host must not be empty")
	}
	if c.Polymarket.GammaHost == "" {
		errs = append(errs, "polymarket: gamma_host must not be empty")
	}

	// Postgres
	if strings.TrimSpace(c.Postgres.DSN) == "" {
		if c.Postgres.Host == "" {
			errs = append(errs, "postgres: host must not be empty (or set postgres.dsn)")
		}
		if c.Postgres.Port <= 0 || c.Postgres.Port > 65535 {
			errs = append(errs, fmt.Sprintf("postgres: port must be 1-65535, got %d", c.Postgres.Port))
		}
		if c.Postgres.Database == "" {
			errs = append(errs, "postgres: database must not be empty")
		}
	}
	if c.Postgres.PoolMaxConns < 1 {
		errs = append(errs, "postgres: pool_max_conns must be >= 1")
	}
	if c.Postgres.PoolMinConns < 0 {
		errs = append(errs, "postgres: pool_min_conns must be >= 0")
	}
	if c.Postgres.PoolMinConns > c.Postgres.PoolMaxConns {
		errs = append(errs, "postgres: pool_min_conns must not exceed pool_max_conns")
	}

	// Redis
	if c.Redis.Addr == "" {
		errs = append(errs, "redis: addr must not be empty")
	}
	if c.Redis.PoolSize < 1 {
		errs = append(errs, "redis: pool_size must be >= 1")
	}

	// S3
	if c.S3.Enabled {
		if c.S3.Endpoint == "" {
			errs = append(errs, "s3: endpoint must not be empty when enabled")
		}
		if c.S3.Bucket == "" {
			errs = append(errs, "s3: bucket must not be empty when enabled")
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
