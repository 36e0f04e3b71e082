package config

import "time"

// Config holds runtime settings for the TournOps terminal client.
//
// Units: all intervals are time.Duration values.
type Config struct {
	// APIBaseURL is the HTTP origin of the tournament platform API,
	// e.g. "http://127.0.0.1:8080". Request paths are appended by the
	// API client.
	APIBaseURL string
	// WSURL is the websocket endpoint delivering push notifications,
	// e.g. "ws://127.0.0.1:8080/ws/notifications".
	WSURL string
	// DatabasePath is the sqlite file holding the persisted session.
	DatabasePath string

	// RequestTimeout bounds every single API round trip.
	RequestTimeout time.Duration
	// OnlineCheckInterval is how often the client probes API reachability.
	OnlineCheckInterval time.Duration

	// ReconnectBaseDelay is the first push-channel retry delay; it doubles
	// per attempt.
	ReconnectBaseDelay time.Duration
	// ReconnectMaxAttempts bounds consecutive failed channel dials.
	ReconnectMaxAttempts int
}

// LoadDefaults populates c with sensible defaults for a local setup.
func (c *Config) LoadDefaults() {
	c.APIBaseURL = "http://127.0.0.1:8080"
	c.WSURL = "ws://127.0.0.1:8080/ws/notifications"
	c.DatabasePath = "tournops.db"
	c.RequestTimeout = 10 * time.Second
	c.OnlineCheckInterval = 3 * time.Second
	c.ReconnectBaseDelay = time.Second
	c.ReconnectMaxAttempts = 5
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present), environment variables, and command-line flags. Later
// sources take precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJSON(cfg)
	parseEnv(cfg)
	parseFlags(cfg)
	return cfg
}
