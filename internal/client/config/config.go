package config

import "time"

// Config holds runtime settings for the GhostNote CLI.
//
// Fields:
//   - ServerURL: base URL of the GhostNote HTTP API.
//   - RequestTimeout: per-request deadline applied to every API call.
//   - SessionDir: directory holding the saved session token.
type Config struct {
	ServerURL      string
	RequestTimeout time.Duration
	SessionDir     string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://127.0.0.1:8080"
	c.RequestTimeout = 10 * time.Second
	c.SessionDir = ".ghostnote"
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
