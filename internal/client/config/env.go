package config

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

// envConfig mirrors Config for envconfig processing under the TOURNOPS
// prefix, e.g. TOURNOPS_API_BASE_URL, TOURNOPS_REQUEST_TIMEOUT=5s.
type envConfig struct {
	APIBaseURL           string        `envconfig:"API_BASE_URL"`
	WSURL                string        `envconfig:"WS_URL"`
	DatabasePath         string        `envconfig:"DATABASE_PATH"`
	RequestTimeout       time.Duration `envconfig:"REQUEST_TIMEOUT"`
	OnlineCheckInterval  time.Duration `envconfig:"ONLINE_CHECK_INTERVAL"`
	ReconnectBaseDelay   time.Duration `envconfig:"RECONNECT_BASE_DELAY"`
	ReconnectMaxAttempts int           `envconfig:"RECONNECT_MAX_ATTEMPTS"`
}

// parseEnv overlays cfg with TOURNOPS_* environment variables. Unset
// variables leave the corresponding field untouched.
func parseEnv(cfg *Config) {
	var ec envConfig
	if err := envconfig.Process("TOURNOPS", &ec); err != nil {
		panic(err)
	}

	if ec.APIBaseURL != "" {
		cfg.APIBaseURL = ec.APIBaseURL
	}
	if ec.WSURL != "" {
		cfg.WSURL = ec.WSURL
	}
	if ec.DatabasePath != "" {
		cfg.DatabasePath = ec.DatabasePath
	}
	if ec.RequestTimeout > 0 {
		cfg.RequestTimeout = ec.RequestTimeout
	}
	if ec.OnlineCheckInterval > 0 {
		cfg.OnlineCheckInterval = ec.OnlineCheckInterval
	}
	if ec.ReconnectBaseDelay > 0 {
		cfg.ReconnectBaseDelay = ec.ReconnectBaseDelay
	}
	if ec.ReconnectMaxAttempts > 0 {
		cfg.ReconnectMaxAttempts = ec.ReconnectMaxAttempts
	}
}
