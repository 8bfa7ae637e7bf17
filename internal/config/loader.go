package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Load reads a TOML configuration file at path, merges it on top of the
// built-in defaults, applies POLYAGENT_* environment variable overrides, and
// returns the final Config. The returned Config has NOT been validated; the
// caller should invoke Config.Validate() after Load.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, err
	}

	// Load .env file if present (silently ignore if missing).
	_ = godotenv.Load()

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

// applyEnvOverrides reads well-known POLYAGENT_* environment variables and
// overwrites the corresponding Config fields when a variable is set (i.e. not
// empty). This lets operators inject secrets at deploy time without touching
// the TOML file.
func applyEnvOverrides(cfg *Config) {
	// ── Signals ──
	setFloat64(&cfg.Signals.EMAAlpha, "POLYAGENT_SIGNALS_EMA_ALPHA")
	setFloat64(&cfg.Signals.MaxSpreadBps, "POLYAGENT_SIGNALS_MAX_SPREAD_BPS")
	setFloat64(&cfg.Signals.MinDepthUSDC, "POLYAGENT_SIGNALS_MIN_DEPTH_USDC")
	setDuration(&cfg.Signals.MaxStaleness, "POLYAGENT_SIGNALS_MAX_STALENESS")
	setInt(&cfg.Signals.TopNToLog, "POLYAGENT_SIGNALS_TOP_N_TO_LOG")

	// ── Discovery ──
	setInt(&cfg.Discovery.MaxMarkets, "POLYAGENT_DISCOVERY_MAX_MARKETS")
	setFloat64(&cfg.Discovery.MinVolume24h, "POLYAGENT_DISCOVERY_MIN_VOLUME_24H")
	setStringSlice(&cfg.Discovery.Keywords, "POLYAGENT_DISCOVERY_KEYWORDS")

	// ── Scanner ──
	setDuration(&cfg.Scanner.Interval, "POLYAGENT_SCANNER_INTERVAL")
	setDuration(&cfg.Scanner.Jitter, "POLYAGENT_SCANNER_JITTER")
	setInt(&cfg.Scanner.MaxErrorBurst, "POLYAGENT_SCANNER_MAX_ERROR_BURST")
	setInt(&cfg.Scanner.FetchWorkers, "POLYAGENT_SCANNER_FETCH_WORKERS")
	setInt(&cfg.Scanner.RequestsPerSec, "POLYAGENT_SCANNER_REQUESTS_PER_SEC")
	setDuration(&cfg.Scanner.BookCacheTTL, "POLYAGENT_SCANNER_BOOK_CACHE_TTL")

	// ── Polymarket ──
	setStr(&cfg.Polymarket.ClobHost, "POLYAGENT_POLYMARKET_CLOB_HOST")
	setStr(&cfg.Polymarket.GammaHost, "POLYAGENT_POLYMARKET_GAMMA_HOST")
	setStr(&cfg.Polymarket.WsHost, "POLYAGENT_POLYMARKET_WS_HOST")

	// ── Postgres ──
	setStr(&cfg.Postgres.DSN, "POLYAGENT_POSTGRES_DSN")
	setStr(&cfg.Postgres.Host, "POLYAGENT_POSTGRES_HOST")
	setInt(&cfg.Postgres.Port, "POLYAGENT_POSTGRES_PORT")
	setStr(&cfg.Postgres.Database, "POLYAGENT_POSTGRES_DATABASE")
	setStr(&cfg.Postgres.User, "POLYAGENT_POSTGRES_USER")
	setStr(&cfg.Postgres.Password, "POLYAGENT_POSTGRES_PASSWORD")
	setStr(&cfg.Postgres.SSLMode, "POLYAGENT_POSTGRES_SSL_MODE")
	setInt(&cfg.Postgres.PoolMaxConns, "POLYAGENT_POSTGRES_POOL_MAX_CONNS")
	setInt(&cfg.Postgres.PoolMinConns, "POLYAGENT_POSTGRES_POOL_MIN_CONNS")
	setBool(&cfg.Postgres.RunMigrations, "POLYAGENT_POSTGRES_RUN_MIGRATIONS")

	// ── Redis ──
	setStr(&cfg.Redis.Addr, "POLYAGENT_REDIS_ADDR")
	setStr(&cfg.Redis.Password, "POLYAGENT_REDIS_PASSWORD")
	setInt(&cfg.Redis.DB, "POLYAGENT_REDIS_DB")
	setInt(&cfg.Redis.PoolSize, "POLYAGENT_REDIS_POOL_SIZE")
	setInt(&cfg.Redis.MaxRetries, "POLYAGENT_REDIS_MAX_RETRIES")
	setBool(&cfg.Redis.TLSEnabled, "POLYAGENT_REDIS_TLS_ENABLED")

	// ── S3 ──
	setBool(&cfg.S3.Enabled, "POLYAGENT_S3_ENABLED")
	setStr(&cfg.S3.Endpoint, "POLYAGENT_S3_ENDPOINT")
	setStr(&cfg.S3.Region, "POLYAGENT_S3_REGION")
	setStr(&cfg.S3.Bucket, "POLYAGENT_S3_BUCKET")
	setStr(&cfg.S3.AccessKey, "POLYAGENT_S3_ACCESS_KEY")
	setStr(&cfg.S3.SecretKey, "POLYAGENT_S3_SECRET_KEY")
	setBool(&cfg.S3.UseSSL, "POLYAGENT_S3_USE_SSL")
	setBool(&cfg.S3.ForcePathStyle, "POLYAGENT_S3_FORCE_PATH_STYLE")

	// ── Notify ──
	setStr(&cfg.Notify.TelegramToken, "POLYAGENT_NOTIFY_TELEGRAM_TOKEN")
	setStr(&cfg.Notify.TelegramChatID, "POLYAGENT_NOTIFY_TELEGRAM_CHAT_ID")
	setStr(&cfg.Notify.DiscordWebhookURL, "POLYAGENT_NOTIFY_DISCORD_WEBHOOK_URL")
	setStringSlice(&cfg.Notify.Events, "POLYAGENT_NOTIFY_EVENTS")

	// ── Top-level ──
	setStr(&cfg.Mode, "POLYAGENT_MODE")
	setStr(&cfg.LogLevel, "POLYAGENT_LOG_LEVEL")
}

// ---------------------------------------------------------------------------
// Typed env-var helpers. Each only mutates the target when the environment
// variable is present and non-empty.
// ---------------------------------------------------------------------------

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setFloat64(dst *float64, key string) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			dst.Duration = d
		}
	}
}

func setStringSlice(dst *[]string, key string) {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		cleaned := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				cleaned = append(cleaned, p)
			}
		}
		if len(cleaned) > 0 {
			*dst = cleaned
		}
	}
}
