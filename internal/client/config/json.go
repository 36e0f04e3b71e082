package config

import (
	"encoding/json"
	"os"

	"github.com/matchline/tournops/internal/flagx"
	"github.com/matchline/tournops/internal/timex"
)

// jsonConfig is a DTO used exclusively for JSON unmarshalling. It relies on
// timex.Duration so intervals can be either strings like "3s" or integer
// nanoseconds. Parsed values are copied into the runtime Config.
type jsonConfig struct {
	APIBaseURL           string         `json:"api_base_url"`
	WSURL                string         `json:"ws_url"`
	DatabasePath         string         `json:"database_path"`
	RequestTimeout       timex.Duration `json:"request_timeout"`
	OnlineCheckInterval  timex.Duration `json:"online_check_interval"`
	ReconnectBaseDelay   timex.Duration `json:"reconnect_base_delay"`
	ReconnectMaxAttempts int            `json:"reconnect_max_attempts"`
}

// parseJSON overlays cfg with values from the JSON file named by -c/-config.
// Absent file flag means no JSON stage. Only fields present in the file
// override; zero values are skipped so the file can be partial.
func parseJSON(cfg *Config) {
	path := flagx.JSONConfigFlags()
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}
	var jc jsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.APIBaseURL != "" {
		cfg.APIBaseURL = jc.APIBaseURL
	}
	if jc.WSURL != "" {
		cfg.WSURL = jc.WSURL
	}
	if jc.DatabasePath != "" {
		cfg.DatabasePath = jc.DatabasePath
	}
	if jc.RequestTimeout.Duration > 0 {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	if jc.OnlineCheckInterval.Duration > 0 {
		cfg.OnlineCheckInterval = jc.OnlineCheckInterval.Duration
	}
	if jc.ReconnectBaseDelay.Duration > 0 {
		cfg.ReconnectBaseDelay = jc.ReconnectBaseDelay.Duration
	}
	if jc.ReconnectMaxAttempts > 0 {
		cfg.ReconnectMaxAttempts = jc.ReconnectMaxAttempts
	}
}
