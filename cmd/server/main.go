// Package main is the entry point for the daily diary server.
//
// main() stays minimal on purpose: read configuration, build a logger,
// assemble the server, run it. Everything with behavior worth testing lives
// in the internal packages.
package main

import (
	"os"

	"log/slog"

	"github.com/sakif/daily-diary/internal/config"
	"github.com/sakif/daily-diary/internal/server"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("configuration error", slog.String("error", err.Error()))
		os.Exit(1)
	}

	srv, err := server.New(*cfg, logger)
	if err != nil {
		logger.Error("failed to create server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := srv.Start(); err != nil {
		logger.Error("server stopped with error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
