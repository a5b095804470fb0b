package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/parlorchat/parlor/internal/server"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file loaded, using process environment", "error", err)
	}

	cfg, err := server.LoadConfig()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	}))
	slog.SetDefault(logger)

	hub := server.NewHub(logger)
	go hub.Run()

	handler := server.NewHandler(hub, cfg, logger)
	srv := server.CreateServer(cfg.Port, server.NewRouter(handler))

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.StartServer(srv, logger)
	}()

	failed := false
	select {
	case <-ctx.Done():
		_ = server.ShutdownServer(srv, cfg.ShutdownTimeout, logger)
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			failed = true
		}
	}

	// Both exits drain the hub so live connections close cleanly.
	if err := hub.Shutdown(cfg.ShutdownTimeout); err != nil {
		logger.Warn("hub shutdown incomplete", "error", err)
	}
	if failed {
		os.Exit(1)
	}
}
