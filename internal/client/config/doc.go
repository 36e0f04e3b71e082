// Package config loads runtime configuration for the TournOps client.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected via -c or -config.
//  3. TOURNOPS_* environment variables.
//  4. Command-line flags, which override everything.
//
// # JSON schema
//
// The JSON loader uses timex.Duration for intervals, so values can be either
// strings like "3s" or integer nanoseconds:
//
//	{
//	  "api_base_url": "http://127.0.0.1:8080",
//	  "ws_url": "ws://127.0.0.1:8080/ws/notifications",
//	  "database_path": "tournops.db",
//	  "request_timeout": "10s",
//	  "online_check_interval": "3s",
//	  "reconnect_base_delay": "1s",
//	  "reconnect_max_attempts": 5
//	}
package config
