package main

import (
	"context"
	"log"
	"log/slog"
	"os"

	"github.com/matchline/tournops/internal/client/cli"
	"github.com/matchline/tournops/internal/client/config"
	"github.com/matchline/tournops/internal/logging"
)

func main() {
	ctx := context.Background()
	cfg := config.LoadConfig()

	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	})))

	app, err := cli.NewApp(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("%v", err)
	}

	if err := app.Run(ctx); err != nil {
		log.Fatalf("%v", err)
	}
}
