// Stockpulse - Live Sales and Inventory Snapshot Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/stockpulse

package services

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/thejerf/suture/v4"

	"github.com/tomtom215/stockpulse/internal/logging"
)

//nolint:gochecknoinits // init ensures consistent logging for tests
func init() {
	logging.Init(logging.Config{Level: "error", Format: "console", Output: io.Discard})
}

// mockRunner is a test double for ContextHub and ChangeDetector.
type mockRunner struct {
	runErr   error
	runCount atomic.Int32
}

func (m *mockRunner) RunWithContext(ctx context.Context) error {
	m.runCount.Add(1)
	if m.runErr != nil {
		return m.runErr
	}
	<-ctx.Done()
	return ctx.Err()
}

func TestServiceInterfaces(t *testing.T) {
	var _ suture.Service = (*HTTPServerService)(nil)
	var _ suture.Service = (*WebSocketHubService)(nil)
	var _ suture.Service = (*DetectorService)(nil)
}

func TestServiceNames(t *testing.T) {
	tests := []struct {
		svc  interface{ String() string }
		want string
	}{
		{NewDetectorService(&mockRunner{}), "change-detector"},
		{NewWebSocketHubService(&mockRunner{}), "websocket-hub"},
		{NewHTTPServerService(&http.Server{}, ":0", time.Second), "http-server"},
	}
	for _, tt := range tests {
		if got := tt.svc.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestRunnerServices(t *testing.T) {
	wrappers := map[string]func(*mockRunner) suture.Service{
		"detector": func(m *mockRunner) suture.Service { return NewDetectorService(m) },
		"hub":      func(m *mockRunner) suture.Service { return NewWebSocketHubService(m) },
	}

	for name, wrap := range wrappers {
		t.Run(name+" returns context error on cancellation", func(t *testing.T) {
			m := &mockRunner{}
			svc := wrap(m)
			ctx, cancel := context.WithCancel(context.Background())

			errCh := make(chan error, 1)
			go func() { errCh <- svc.Serve(ctx) }()

			time.Sleep(20 * time.Millisecond)
			cancel()

			select {
			case err := <-errCh:
				if !errors.Is(err, context.Canceled) {
					t.Errorf("expected context.Canceled, got %v", err)
				}
			case <-time.After(time.Second):
				t.Fatal("Serve did not return after context cancellation")
			}
			if m.runCount.Load() != 1 {
				t.Errorf("expected 1 run, got %d", m.runCount.Load())
			}
		})

		t.Run(name+" propagates errors", func(t *testing.T) {
			want := errors.New("startup error")
			svc := wrap(&mockRunner{runErr: want})
			if err := svc.Serve(context.Background()); !errors.Is(err, want) {
				t.Errorf("expected %v, got %v", want, err)
			}
		})
	}
}

func TestDetectorService_RestartedBySupervisor(t *testing.T) {
	m := &mockRunner{runErr: errors.New("crashed")}
	sup := suture.New("test-sup", suture.Spec{
		FailureThreshold: 100,
		FailureBackoff:   10 * time.Millisecond,
		Timeout:          100 * time.Millisecond,
	})
	sup.Add(NewDetectorService(m))

	ctx, cancel := context.WithCancel(context.Background())
	errCh := sup.ServeBackground(ctx)

	deadline := time.Now().Add(2 * time.Second)
	for m.runCount.Load() < 3 {
		if time.Now().After(deadline) {
			t.Fatalf("restarts = %d, want at least 3", m.runCount.Load())
		}
		time.Sleep(5 * time.Millisecond)
	}

	cancel()
	<-errCh
}

// mockHTTPServer is a test double for the HTTPServer interface.
type mockHTTPServer struct {
	serveErr      error
	shutdownErr   error
	serveCount    atomic.Int32
	shutdownCount atomic.Int32
	served        chan struct{}
	stopCh        chan struct{}
}

func newMockHTTPServer() *mockHTTPServer {
	return &mockHTTPServer{
		served: make(chan struct{}, 1),
		stopCh: make(chan struct{}),
	}
}

func (m *mockHTTPServer) Serve(l net.Listener) error {
	m.serveCount.Add(1)
	select {
	case m.served <- struct{}{}:
	default:
	}
	if m.serveErr != nil {
		return m.serveErr
	}
	<-m.stopCh
	return http.ErrServerClosed
}

func (m *mockHTTPServer) Shutdown(ctx context.Context) error {
	m.shutdownCount.Add(1)
	close(m.stopCh)
	return m.shutdownErr
}

func TestNewHTTPServerService_DefaultTimeout(t *testing.T) {
	for _, timeout := range []time.Duration{0, -5 * time.Second} {
		svc := NewHTTPServerService(newMockHTTPServer(), ":0", timeout)
		if svc.shutdownTimeout != 10*time.Second {
			t.Errorf("timeout %v: got %v, want default 10s", timeout, svc.shutdownTimeout)
		}
	}
}

func TestHTTPServerService_Serve(t *testing.T) {
	t.Run("shuts down gracefully on context cancellation", func(t *testing.T) {
		server := newMockHTTPServer()
		svc := NewHTTPServerService(server, "127.0.0.1:0", time.Second)
		ctx, cancel := context.WithCancel(context.Background())

		errCh := make(chan error, 1)
		go func() { errCh <- svc.Serve(ctx) }()

		select {
		case <-server.served:
		case <-time.After(time.Second):
			t.Fatal("server did not start")
		}
		if svc.Addr() == nil {
			t.Error("Addr() = nil after bind")
		}
		cancel()

		select {
		case err := <-errCh:
			if !errors.Is(err, context.Canceled) {
				t.Errorf("expected context.Canceled, got %v", err)
			}
		case <-time.After(2 * time.Second):
			t.Fatal("Serve did not return after context cancellation")
		}
		if server.shutdownCount.Load() != 1 {
			t.Errorf("expected 1 Shutdown call, got %d", server.shutdownCount.Load())
		}
	})

	t.Run("returns listen failure without serving", func(t *testing.T) {
		bindErr := errors.New("bind: address already in use")
		server := newMockHTTPServer()
		svc := NewHTTPServerService(server, ":8000", time.Second).
			WithListenFunc(func(string) (net.Listener, error) { return nil, bindErr })

		err := svc.Serve(context.Background())
		if !errors.Is(err, bindErr) {
			t.Errorf("expected %v, got %v", bindErr, err)
		}
		if server.serveCount.Load() != 0 {
			t.Error("Serve called after failed bind")
		}
	})

	t.Run("returns serve failure", func(t *testing.T) {
		serveErr := errors.New("accept failed")
		server := newMockHTTPServer()
		server.serveErr = serveErr
		svc := NewHTTPServerService(server, "127.0.0.1:0", time.Second)

		if err := svc.Serve(context.Background()); !errors.Is(err, serveErr) {
			t.Errorf("expected %v, got %v", serveErr, err)
		}
	})

	t.Run("returns shutdown error if shutdown fails", func(t *testing.T) {
		shutdownErr := errors.New("shutdown timeout")
		server := newMockHTTPServer()
		server.shutdownErr = shutdownErr
		svc := NewHTTPServerService(server, "127.0.0.1:0", time.Second)
		ctx, cancel := context.WithCancel(context.Background())

		errCh := make(chan error, 1)
		go func() { errCh <- svc.Serve(ctx) }()
		<-server.served
		cancel()

		select {
		case err := <-errCh:
			if !errors.Is(err, shutdownErr) {
				t.Errorf("expected shutdown error, got %v", err)
			}
		case <-time.After(2 * time.Second):
			t.Fatal("Serve did not return")
		}
	})
}

func TestHTTPServerService_RealServer(t *testing.T) {
	server := &http.Server{
		Handler: http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte("ok"))
		}),
		ReadHeaderTimeout: time.Second,
	}
	svc := NewHTTPServerService(server, "127.0.0.1:0", time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- svc.Serve(ctx) }()

	deadline := time.Now().Add(time.Second)
	for svc.Addr() == nil {
		if time.Now().After(deadline) {
			t.Fatal("server did not bind")
		}
		time.Sleep(5 * time.Millisecond)
	}

	resp, err := http.Get("http://" + svc.Addr().String() + "/")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if string(body) != "ok" {
		t.Errorf("body = %q, want ok", body)
	}

	cancel()
	if err := <-errCh; !errors.Is(err, context.Canceled) {
		t.Errorf("Serve() = %v, want context.Canceled", err)
	}
}
