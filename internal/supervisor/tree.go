// Stockpulse - Live Sales and Inventory Snapshot Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/stockpulse

package supervisor

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/thejerf/suture/v4"
	"github.com/thejerf/sutureslog"
)

// Layer names one child supervisor of the tree.
type Layer string

// Layers in start order.
const (
	// LayerIngest runs the change detector.
	LayerIngest Layer = "ingest"
	// LayerMessaging runs the websocket hub.
	LayerMessaging Layer = "messaging"
	// LayerAPI runs the HTTP server.
	LayerAPI Layer = "api"
)

// Layers returns every layer in start order.
func Layers() []Layer {
	return []Layer{LayerIngest, LayerMessaging, LayerAPI}
}

// TreeConfig holds supervisor tree configuration. Zero fields take the
// DefaultTreeConfig value.
type TreeConfig struct {
	// FailureThreshold is the number of failures before entering backoff.
	FailureThreshold float64

	// FailureDecay is the rate at which failures decay, in seconds.
	FailureDecay float64

	// FailureBackoff is the pause once the threshold is exceeded.
	FailureBackoff time.Duration

	// ShutdownTimeout bounds how long each service gets to stop.
	ShutdownTimeout time.Duration
}

// DefaultTreeConfig returns suture's built-in defaults.
func DefaultTreeConfig() TreeConfig {
	return TreeConfig{
		FailureThreshold: 5.0,
		FailureDecay:     30.0,
		FailureBackoff:   15 * time.Second,
		ShutdownTimeout:  10 * time.Second,
	}
}

func (c TreeConfig) withDefaults() TreeConfig {
	def := DefaultTreeConfig()
	if c.FailureThreshold == 0 {
		c.FailureThreshold = def.FailureThreshold
	}
	if c.FailureDecay == 0 {
		c.FailureDecay = def.FailureDecay
	}
	if c.FailureBackoff == 0 {
		c.FailureBackoff = def.FailureBackoff
	}
	if c.ShutdownTimeout == 0 {
		c.ShutdownTimeout = def.ShutdownTimeout
	}
	return c
}

func (c TreeConfig) spec(hook suture.EventHook) suture.Spec {
	return suture.Spec{
		EventHook:        hook,
		FailureThreshold: c.FailureThreshold,
		FailureDecay:     c.FailureDecay,
		FailureBackoff:   c.FailureBackoff,
		Timeout:          c.ShutdownTimeout,
	}
}

// SupervisorTree is the root supervisor with one child per Layer.
//
// A crashing detector is restarted inside the ingest layer without dropping
// websocket clients, and the API keeps serving the last snapshot meanwhile.
type SupervisorTree struct {
	root   *suture.Supervisor
	layers map[Layer]*suture.Supervisor
	config TreeConfig

	mu       sync.Mutex
	services map[Layer][]string
}

// NewSupervisorTree builds the root and its layers. Supervisor events are
// logged through sutureslog to logger.
func NewSupervisorTree(logger *slog.Logger, config TreeConfig) (*SupervisorTree, error) {
	if logger == nil {
		return nil, fmt.Errorf("supervisor: logger is required")
	}
	config = config.withDefaults()

	// MustHook has a pointer receiver.
	handler := &sutureslog.Handler{Logger: logger}
	root := suture.New("stockpulse", config.spec(handler.MustHook()))

	t := &SupervisorTree{
		root:     root,
		layers:   make(map[Layer]*suture.Supervisor, 3),
		config:   config,
		services: make(map[Layer][]string, 3),
	}
	for _, layer := range Layers() {
		// Children inherit the root's EventHook once added.
		child := suture.New(string(layer)+"-layer", config.spec(nil))
		root.Add(child)
		t.layers[layer] = child
	}
	return t, nil
}

// Add supervises svc in layer.
func (t *SupervisorTree) Add(layer Layer, svc suture.Service) (suture.ServiceToken, error) {
	sup, ok := t.layers[layer]
	if !ok {
		return suture.ServiceToken{}, fmt.Errorf("supervisor: unknown layer %q", layer)
	}

	t.mu.Lock()
	t.services[layer] = append(t.services[layer], serviceName(svc))
	t.mu.Unlock()

	return sup.Add(svc), nil
}

// Services lists the names added to each layer, sorted.
func (t *SupervisorTree) Services() map[Layer][]string {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make(map[Layer][]string, len(t.services))
	for layer, names := range t.services {
		sorted := append([]string(nil), names...)
		sort.Strings(sorted)
		out[layer] = sorted
	}
	return out
}

func serviceName(svc suture.Service) string {
	if s, ok := svc.(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprintf("%T", svc)
}

// Root returns the root supervisor.
func (t *SupervisorTree) Root() *suture.Supervisor {
	return t.root
}

// Serve runs the tree until ctx is canceled.
func (t *SupervisorTree) Serve(ctx context.Context) error {
	return t.root.Serve(ctx)
}

// ServeBackground runs the tree in a goroutine. The returned channel receives
// exactly one value when the tree stops and is never closed.
func (t *SupervisorTree) ServeBackground(ctx context.Context) <-chan error {
	return t.root.ServeBackground(ctx)
}

// UnstoppedServiceReport lists services that ignored the shutdown timeout.
// Only meaningful after Serve has returned.
func (t *SupervisorTree) UnstoppedServiceReport() ([]suture.UnstoppedService, error) {
	return t.root.UnstoppedServiceReport()
}

// ShutdownTimeout returns the per-service stop bound in effect.
func (t *SupervisorTree) ShutdownTimeout() time.Duration {
	return t.config.ShutdownTimeout
}
