// Command devserver runs the local stand-in for the tournament platform.
// It serves the auth/role API and the notification websocket on one port
// and pushes a demo notification to every connected user on an interval.
package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/matchline/tournops/internal/devserver"
	"github.com/matchline/tournops/internal/logging"
)

func main() {
	addr := flag.String("addr", "127.0.0.1:8080", "listen address")
	demo := flag.Duration("demo", 0, "push a demo notification on this interval (0 disables)")
	flag.Parse()

	ctx := context.Background()
	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	hub := devserver.NewHub(logger)
	go hub.Run(ctx)

	srv := devserver.New(hub, logger)
	admin := srv.Seed("admin", "admin@example.com", "admin", "admin")
	log.Printf("seeded account admin@example.com / admin (user id %s)", admin.ID)

	if *demo > 0 {
		go func() {
			ticker := time.NewTicker(*demo)
			defer ticker.Stop()
			for range ticker.C {
				_ = hub.Notify("", map[string]any{
					"type":      "announcement",
					"title":     "demo",
					"message":   "hello from devserver",
					"timestamp": time.Now().UTC().Format(time.RFC3339),
				})
			}
		}()
	}

	log.Printf("devserver listening on %s", *addr)
	if err := http.ListenAndServe(*addr, srv.Handler()); err != nil {
		log.Fatalf("%v", err)
	}
}
