// Package server constructs and controls the relay's HTTP server with
// production timeout defaults.
package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

// CreateServer creates an HTTP server for the given address and handler with
// timeouts suited to long-lived WebSocket traffic.
func CreateServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}

// StartServer begins listening and blocks until the server exits.
func StartServer(srv *http.Server, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("server listening", "addr", srv.Addr)
	return srv.ListenAndServe()
}

// ShutdownServer gracefully stops the HTTP server, waiting for in-flight
// requests up to the timeout.
func ShutdownServer(srv *http.Server, timeout time.Duration, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("http server shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("http server shutdown error", "error", err)
		return err
	}

	logger.Info("http server shutdown complete")
	return nil
}
