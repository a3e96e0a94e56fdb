// Stockpulse - Live Sales and Inventory Snapshot Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/stockpulse

package services

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/tomtom215/stockpulse/internal/logging"
)

// HTTPServer interface matches *http.Server lifecycle methods.
//
// Satisfied by *http.Server from net/http:
//   - Serve(l net.Listener) error
//   - Shutdown(ctx context.Context) error
type HTTPServer interface {
	Serve(l net.Listener) error
	Shutdown(ctx context.Context) error
}

// ListenFunc opens the listening socket. Defaults to net.Listen("tcp", addr).
type ListenFunc func(addr string) (net.Listener, error)

// HTTPServerService wraps an HTTP server as a supervised service.
//
// Binding happens synchronously at the top of Serve, so an address already
// in use surfaces as an error the supervisor can count, and the bound
// address (including an OS-assigned port) is known before the first request.
//
// Example usage:
//
//	server := &http.Server{Handler: router.SetupChi()}
//	svc := services.NewHTTPServerService(server, cfg.Server.Addr(), 10*time.Second)
//	_, err := tree.Add(supervisor.LayerAPI, svc)
type HTTPServerService struct {
	server          HTTPServer
	addr            string
	listen          ListenFunc
	shutdownTimeout time.Duration
	name            string

	mu    sync.Mutex
	bound net.Addr
}

// NewHTTPServerService creates a new HTTP server service wrapper.
//
// The shutdownTimeout determines how long to wait for active connections
// to close during graceful shutdown.
func NewHTTPServerService(server HTTPServer, addr string, shutdownTimeout time.Duration) *HTTPServerService {
	if shutdownTimeout <= 0 {
		shutdownTimeout = 10 * time.Second
	}
	return &HTTPServerService{
		server:          server,
		addr:            addr,
		listen:          func(addr string) (net.Listener, error) { return net.Listen("tcp", addr) },
		shutdownTimeout: shutdownTimeout,
		name:            "http-server",
	}
}

// WithListenFunc replaces the listener factory. Used by tests.
func (h *HTTPServerService) WithListenFunc(fn ListenFunc) *HTTPServerService {
	h.listen = fn
	return h
}

// Addr returns the address of the current listener, or nil before the
// first successful bind.
func (h *HTTPServerService) Addr() net.Addr {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.bound
}

// Serve implements suture.Service.
//
// This method:
//  1. Binds the listening socket
//  2. Serves in a goroutine until context cancellation or server error
//  3. On shutdown, calls server.Shutdown bounded by the shutdown timeout
//
// http.ErrServerClosed is expected on shutdown and is not an error.
func (h *HTTPServerService) Serve(ctx context.Context) error {
	ln, err := h.listen(h.addr)
	if err != nil {
		return fmt.Errorf("http server listen on %s: %w", h.addr, err)
	}

	h.mu.Lock()
	h.bound = ln.Addr()
	h.mu.Unlock()
	logging.Info().Str("addr", ln.Addr().String()).Msg("HTTP server listening")

	errCh := make(chan error, 1)
	go func() {
		if err := h.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil

	case <-ctx.Done():
		// The original context is already canceled.
		shutdownCtx, cancel := context.WithTimeout(context.Background(), h.shutdownTimeout)
		defer cancel()

		if err := h.server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http server shutdown failed: %w", err)
		}

		<-errCh
		logging.Info().Msg("HTTP server stopped")
		return ctx.Err()
	}
}

// String implements fmt.Stringer for logging.
// Suture uses this to identify the service in log messages.
func (h *HTTPServerService) String() string {
	return h.name
}
