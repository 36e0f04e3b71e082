package config

import (
	"flag"
	"os"
	"time"

	"github.com/matchline/tournops/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   base URL of the platform API (default from Config)
//	-w string   websocket URL for push notifications
//	-d string   path to the local session database
//	-i int      online check interval in seconds
//
// os.Args is filtered to the flags handled here, via flagx.FilterArgs, to
// avoid interference with other components.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-w", "-d", "-i"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.APIBaseURL, "a", cfg.APIBaseURL, "base URL of the platform API")
	fs.StringVar(&cfg.WSURL, "w", cfg.WSURL, "websocket URL for push notifications")
	fs.StringVar(&cfg.DatabasePath, "d", cfg.DatabasePath, "path to the local session database")
	onlineCheckInterval := fs.Int("i", int(cfg.OnlineCheckInterval.Seconds()), "online check interval (in seconds)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.OnlineCheckInterval = time.Duration(*onlineCheckInterval) * time.Second
}
