package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"carlog/internal/cli"
	"carlog/internal/config"
	"carlog/internal/logging"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.LoadConfig()
	log := logging.NewDefault(slog.LevelWarn)

	app, err := cli.NewApp(ctx, cfg, log)
	if err != nil {
		log.Error(ctx, "startup failed", "error", err)
		os.Exit(1)
	}

	app.Run(ctx)
}
