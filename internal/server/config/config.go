// Package config handles configuration for the server component,
// including defaults, JSON overlay, environment (.env) and command-line flags.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrConfiguration marks an unusable configuration.
var ErrConfiguration = errors.New("configuration error")

// Config holds runtime settings for the GhostNote server.
//
// Fields:
//   - HTTPAddr: bind address for the HTTP API.
//   - DatabaseDSN: PostgreSQL DSN (pgx). Empty means the gateway refuses to connect.
//   - SecretKey: HMAC secret for signing session tokens (HS256).
//   - SessionTTL / VerifyCodeTTL: session token and verification code lifetimes.
//   - MaxMessageLength: upper bound for anonymous message content, in characters.
//   - DB*: persistence gateway retry budget and pool sizing.
//   - SMTP* / EmailFrom*: outbound mail. Empty SMTPHost disables email delivery.
//   - OpenAI*: suggestion provider. Empty key serves canned suggestions only.
//   - PublicBaseURL: used to build links in outgoing email.
//   - Environment: "development" enables debug logging and the dev code lookup.
//   - Notify*: notification queue capacity and retry policy.
//   - RateLimit*: per-client token bucket on public write endpoints.
//   - StatsBaseline*: offsets added to public statistics.
type Config struct {
	HTTPAddr              string        `env:"HTTP_ADDR"`
	DatabaseDSN           string        `env:"DATABASE_URL"`
	SecretKey             string        `env:"SESSION_SECRET"`
	SessionTTL            time.Duration `env:"SESSION_TTL,strict"`
	VerifyCodeTTL         time.Duration `env:"VERIFY_CODE_TTL,strict"`
	MaxMessageLength      int           `env:"MAX_MESSAGE_LENGTH,strict"`
	DBConnectAttempts     int           `env:"DB_CONNECT_ATTEMPTS,strict"`
	DBConnectRetryDelay   time.Duration `env:"DB_CONNECT_RETRY_DELAY,strict"`
	DBConnectTimeout      time.Duration `env:"DB_CONNECT_TIMEOUT,strict"`
	DBMaxOpenConns        int           `env:"DB_MAX_OPEN_CONNS,strict"`
	DBMaxIdleConns        int           `env:"DB_MAX_IDLE_CONNS,strict"`
	DBConnMaxIdleTime     time.Duration `env:"DB_CONN_MAX_IDLE_TIME,strict"`
	SMTPHost              string        `env:"SMTP_HOST"`
	SMTPPort              int           `env:"SMTP_PORT,strict"`
	SMTPUser              string        `env:"SMTP_USER"`
	SMTPPassword          string        `env:"SMTP_PASS"`
	EmailFrom             string        `env:"EMAIL_FROM"`
	EmailFromName         string        `env:"EMAIL_FROM_NAME"`
	OpenAIAPIKey          string        `env:"OPENAI_API_KEY"`
	OpenAIModel           string        `env:"OPENAI_MODEL"`
	PublicBaseURL         string        `env:"PUBLIC_BASE_URL"`
	Environment           string        `env:"APP_ENV"`
	NotifyQueueSize       int           `env:"NOTIFY_QUEUE_SIZE,strict"`
	NotifyMaxRetries      int           `env:"NOTIFY_MAX_RETRIES,strict"`
	NotifyRetryDelay      time.Duration `env:"NOTIFY_RETRY_DELAY,strict"`
	RateLimitRPS          float64       `env:"RATE_LIMIT_RPS,strict"`
	RateLimitBurst        int           `env:"RATE_LIMIT_BURST,strict"`
	StatsBaselineUsers    int64         `env:"STATS_BASELINE_USERS,strict"`
	StatsBaselineMessages int64         `env:"STATS_BASELINE_MESSAGES,strict"`
}

// LoadDefaults populates Config with defaults suitable for local development.
// DatabaseDSN and SecretKey have no default and must be supplied.
func (c *Config) LoadDefaults() {
	c.HTTPAddr = ":8080"
	c.SessionTTL = 30 * 24 * time.Hour
	c.VerifyCodeTTL = time.Hour
	c.MaxMessageLength = 1000
	c.DBConnectAttempts = 3
	c.DBConnectRetryDelay = 5 * time.Second
	c.DBConnectTimeout = 10 * time.Second
	c.DBMaxOpenConns = 10
	c.DBMaxIdleConns = 2
	c.DBConnMaxIdleTime = 30 * time.Second
	c.SMTPPort = 587
	c.EmailFromName = "GhostNote"
	c.OpenAIModel = "gpt-3.5-turbo"
	c.PublicBaseURL = "http://localhost:8080"
	c.Environment = "production"
	c.NotifyQueueSize = 100
	c.NotifyMaxRetries = 3
	c.NotifyRetryDelay = 2 * time.Second
	c.RateLimitRPS = 5
	c.RateLimitBurst = 20
}

// IsDevelopment reports whether the server runs in development mode.
func (c *Config) IsDevelopment() bool {
	return strings.EqualFold(c.Environment, "development")
}

// SMTPConfigured reports whether outbound email can be delivered.
func (c *Config) SMTPConfigured() bool {
	return c.SMTPHost != "" && c.EmailFrom != ""
}

// Validate rejects settings the server cannot start with.
func (c *Config) Validate() error {
	if c.SecretKey == "" {
		return fmt.Errorf("%w: session secret is empty", ErrConfiguration)
	}
	if c.MaxMessageLength < 2 {
		return fmt.Errorf("%w: max message length must be at least 2", ErrConfiguration)
	}
	if c.SessionTTL <= 0 || c.VerifyCodeTTL <= 0 {
		return fmt.Errorf("%w: token lifetimes must be positive", ErrConfiguration)
	}
	return nil
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file, the environment (after loading .env) and
// finally from command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseEnv(cfg)
	parseFlags(cfg)
	return cfg
}
