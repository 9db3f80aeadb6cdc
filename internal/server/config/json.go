package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/ghostnote/internal/flagx"
	"github.com/dmitrijs2005/ghostnote/internal/timex"
)

// JsonConfig defines a configuration structure tailored for JSON unmarshalling.
// It uses timex.Duration for interval fields, which allows parsing both
// string values such as "1s" and integer nanoseconds.
//
// This struct is an intermediate DTO used only for reading JSON configuration
// files. After unmarshalling, fields that are present (non-zero) are copied
// into the runtime Config struct.
type JsonConfig struct {
	HTTPAddr              string         `json:"http_addr"`
	DatabaseDSN           string         `json:"database_dsn"`
	SecretKey             string         `json:"secret_key"`
	SessionTTL            timex.Duration `json:"session_ttl"`
	VerifyCodeTTL         timex.Duration `json:"verify_code_ttl"`
	MaxMessageLength      int            `json:"max_message_length"`
	DBConnectAttempts     int            `json:"db_connect_attempts"`
	DBConnectRetryDelay   timex.Duration `json:"db_connect_retry_delay"`
	DBConnectTimeout      timex.Duration `json:"db_connect_timeout"`
	DBMaxOpenConns        int            `json:"db_max_open_conns"`
	DBMaxIdleConns        int            `json:"db_max_idle_conns"`
	DBConnMaxIdleTime     timex.Duration `json:"db_conn_max_idle_time"`
	SMTPHost              string         `json:"smtp_host"`
	SMTPPort              int            `json:"smtp_port"`
	SMTPUser              string         `json:"smtp_user"`
	SMTPPassword          string         `json:"smtp_password"`
	EmailFrom             string         `json:"email_from"`
	EmailFromName         string         `json:"email_from_name"`
	OpenAIAPIKey          string         `json:"openai_api_key"`
	OpenAIModel           string         `json:"openai_model"`
	PublicBaseURL         string         `json:"public_base_url"`
	Environment           string         `json:"environment"`
	NotifyQueueSize       int            `json:"notify_queue_size"`
	NotifyMaxRetries      int            `json:"notify_max_retries"`
	NotifyRetryDelay      timex.Duration `json:"notify_retry_delay"`
	RateLimitRPS          float64        `json:"rate_limit_rps"`
	RateLimitBurst        int            `json:"rate_limit_burst"`
	StatsBaselineUsers    int64          `json:"stats_baseline_users"`
	StatsBaselineMessages int64          `json:"stats_baseline_messages"`
}

// parseJson loads configuration values from a JSON file into the provided
// Config instance.
//
// The JSON file path comes from the -c or -config command-line flags. If
// neither is set, no JSON file is loaded. If the file cannot be read or
// contains invalid JSON, the function panics.
func parseJson(config *Config) {

	// try flags
	jsonConfigFile := flagx.JsonConfigFlags()

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	err = json.Unmarshal(file, c)
	if err != nil {
		panic(err)
	}

	setString(&config.HTTPAddr, c.HTTPAddr)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	setValue(&config.SessionTTL, c.SessionTTL.Duration)
	setValue(&config.VerifyCodeTTL, c.VerifyCodeTTL.Duration)
	setValue(&config.MaxMessageLength, c.MaxMessageLength)
	setValue(&config.DBConnectAttempts, c.DBConnectAttempts)
	setValue(&config.DBConnectRetryDelay, c.DBConnectRetryDelay.Duration)
	setValue(&config.DBConnectTimeout, c.DBConnectTimeout.Duration)
	setValue(&config.DBMaxOpenConns, c.DBMaxOpenConns)
	setValue(&config.DBMaxIdleConns, c.DBMaxIdleConns)
	setValue(&config.DBConnMaxIdleTime, c.DBConnMaxIdleTime.Duration)
	setString(&config.SMTPHost, c.SMTPHost)
	setValue(&config.SMTPPort, c.SMTPPort)
	setString(&config.SMTPUser, c.SMTPUser)
	setString(&config.SMTPPassword, c.SMTPPassword)
	setString(&config.EmailFrom, c.EmailFrom)
	setString(&config.EmailFromName, c.EmailFromName)
	setString(&config.OpenAIAPIKey, c.OpenAIAPIKey)
	setString(&config.OpenAIModel, c.OpenAIModel)
	setString(&config.PublicBaseURL, c.PublicBaseURL)
	setString(&config.Environment, c.Environment)
	setValue(&config.NotifyQueueSize, c.NotifyQueueSize)
	setValue(&config.NotifyMaxRetries, c.NotifyMaxRetries)
	setValue(&config.NotifyRetryDelay, c.NotifyRetryDelay.Duration)
	setValue(&config.RateLimitRPS, c.RateLimitRPS)
	setValue(&config.RateLimitBurst, c.RateLimitBurst)
	setValue(&config.StatsBaselineUsers, c.StatsBaselineUsers)
	setValue(&config.StatsBaselineMessages, c.StatsBaselineMessages)
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setValue[T int | float64 | ~int64](dst *T, v T) {
	if v != 0 {
		*dst = v
	}
}
