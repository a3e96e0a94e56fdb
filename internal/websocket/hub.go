// Stockpulse - Live Sales and Inventory Snapshot Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/stockpulse

package websocket

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/time/rate"

	"github.com/tomtom215/stockpulse/internal/logging"
	"github.com/tomtom215/stockpulse/internal/metrics"
	"github.com/tomtom215/stockpulse/internal/models"
)

// ShutdownReason identifies why the hub is shutting down.
type ShutdownReason string

const (
	// ShutdownReasonContextCanceled indicates the parent context was canceled.
	// This is the normal graceful shutdown path (e.g., SIGTERM).
	ShutdownReasonContextCanceled ShutdownReason = "context_canceled"

	// ShutdownReasonContextDeadline indicates the context deadline was exceeded.
	ShutdownReasonContextDeadline ShutdownReason = "context_deadline"
)

// broadcastQueueSize bounds the snapshots waiting for the event loop.
const broadcastQueueSize = 64

// SnapshotSource provides the snapshot sent to a client on connect.
// Satisfied by *snapshot.Store.
type SnapshotSource interface {
	Get() models.Snapshot
}

// Hub maintains the set of active clients and broadcasts messages to them.
//
// All membership changes and all deliveries happen on the goroutine running
// RunWithContext. Other goroutines reach the hub only through its channels.
type Hub struct {
	source     SnapshotSource
	clients    map[*Client]bool
	broadcast  chan models.Message
	Register   chan *Client
	Unregister chan *Client
	mu         sync.RWMutex
	running    atomic.Bool
	dropWarn   rate.Sometimes
}

// NewHub creates a new Hub seeding new clients from source.
func NewHub(source SnapshotSource) *Hub {
	return &Hub{
		source:     source,
		broadcast:  make(chan models.Message, broadcastQueueSize),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		clients:    make(map[*Client]bool),
		dropWarn:   rate.Sometimes{First: 1, Interval: 10 * time.Second},
	}
}

// IsRunning reports whether the event loop is active.
func (h *Hub) IsRunning() bool {
	return h.running.Load()
}

// RunWithContext runs the event loop until ctx is canceled, then closes
// every client and returns ctx.Err(). Designed for use with suture
// supervision.
//
// DETERMINISM: Uses priority-based selection to ensure predictable behavior:
// - Priority 1: Context cancellation (shutdown)
// - Priority 2: Client lifecycle events (Register/Unregister)
// - Priority 3: Broadcast messages
func (h *Hub) RunWithContext(ctx context.Context) error {
	h.running.Store(true)
	defer h.running.Store(false)

	for {
		// Priority 1: Check for shutdown (highest priority, non-blocking)
		select {
		case <-ctx.Done():
			h.logGracefulShutdown(ctx)
			return ctx.Err()
		default:
		}

		// Priority 2: Handle client lifecycle events (non-blocking check)
		select {
		case client := <-h.Register:
			h.addClient(client)
			continue
		case client := <-h.Unregister:
			h.removeClient(client)
			continue
		default:
		}

		// Priority 3: Handle broadcast messages or wait for any event (blocking)
		select {
		case <-ctx.Done():
			h.logGracefulShutdown(ctx)
			return ctx.Err()
		case client := <-h.Register:
			h.addClient(client)
		case client := <-h.Unregister:
			h.removeClient(client)
		case message := <-h.broadcast:
			h.broadcastToClients(message)
		}
	}
}

// addClient adds c to the active set and seeds it with the current snapshot,
// ahead of any later broadcast.
func (h *Hub) addClient(c *Client) {
	h.mu.Lock()
	h.clients[c] = true
	total := len(h.clients)
	h.mu.Unlock()
	metrics.WSConnections.Set(float64(total))

	snap := models.EmptySnapshot()
	if h.source != nil {
		snap = h.source.Get()
	}
	seed := models.NewSnapshotMessage(snap)
	if !c.deliver(seed) {
		h.removeClient(c)
		return
	}
	c.observe(seed)
	logging.Info().Uint64("client_id", c.id).Int("total_clients", total).Msg("websocket client connected")
}

// removeClient drops c from the active set. Removing an absent client is a no-op.
func (h *Hub) removeClient(c *Client) {
	h.mu.Lock()
	_, ok := h.clients[c]
	if ok {
		delete(h.clients, c)
		c.close()
	}
	total := len(h.clients)
	h.mu.Unlock()

	if ok {
		metrics.WSConnections.Set(float64(total))
		logging.Info().Uint64("client_id", c.id).Int("total_clients", total).Msg("websocket client disconnected")
	}
}

// logGracefulShutdown closes all clients and logs the shutdown.
// ctx.Err() is not logged as an error because cancellation is the expected
// shutdown path.
func (h *Hub) logGracefulShutdown(ctx context.Context) {
	clientCount := h.GetClientCount()
	h.closeAllClients()

	logging.Info().
		Str("component", "websocket-hub").
		Str("reason", string(getShutdownReason(ctx))).
		Int("clients_closed", clientCount).
		Msg("websocket hub stopped")
}

func getShutdownReason(ctx context.Context) ShutdownReason {
	switch ctx.Err() {
	case context.DeadlineExceeded:
		return ShutdownReasonContextDeadline
	default:
		return ShutdownReasonContextCanceled
	}
}

// sortedClients copies the membership in client ID order.
// DETERMINISM: map iteration order is random; ID order keeps delivery
// sequence reproducible.
func (h *Hub) sortedClients() []*Client {
	h.mu.RLock()
	clients := make([]*Client, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}
	h.mu.RUnlock()

	sort.Slice(clients, func(i, j int) bool {
		return clients[i].id < clients[j].id
	})
	return clients
}

// broadcastToClients delivers message to every active client. Membership is
// copied under the lock and delivery runs without it; clients that are
// closed or whose buffer is full are removed after the sweep. A client seeded
// with a newer snapshot than message skips it, so a snapshot still queued
// when the client connected never overwrites its seed.
func (h *Hub) broadcastToClients(message models.Message) {
	clients := h.sortedClients()

	var failed []*Client
	for _, client := range clients {
		if !client.IsClosed() && client.stale(message) {
			continue
		}
		if !client.deliver(message) {
			failed = append(failed, client)
			continue
		}
		client.observe(message)
	}

	for _, client := range failed {
		h.removeClient(client)
	}
	if len(failed) > 0 {
		metrics.WSClientsPruned.Add(float64(len(failed)))
		logging.Debug().
			Int("pruned", len(failed)).
			Int("delivered", len(clients)-len(failed)).
			Msg("Removed websocket clients after failed delivery")
	}
}

// closeAllClients closes every client in ID order. Called on shutdown.
func (h *Hub) closeAllClients() {
	clients := h.sortedClients()

	h.mu.Lock()
	for _, client := range clients {
		client.close()
		delete(h.clients, client)
	}
	h.mu.Unlock()
	metrics.WSConnections.Set(0)
}

// BroadcastSnapshot hands snap to the event loop without blocking. If the loop
// is not running the snapshot is dropped: the next client to connect is
// seeded with the current snapshot anyway.
func (h *Hub) BroadcastSnapshot(snap models.Snapshot) {
	if !h.running.Load() {
		metrics.WSBroadcastDrops.WithLabelValues("not_running").Inc()
		logging.Debug().Msg("websocket hub not running, dropping snapshot broadcast")
		return
	}

	select {
	case h.broadcast <- models.NewSnapshotMessage(snap):
	default:
		metrics.WSBroadcastDrops.WithLabelValues("queue_full").Inc()
		h.dropWarn.Do(func() {
			logging.Warn().
				Int("queue_size", broadcastQueueSize).
				Msg("broadcast channel full, dropping snapshot message")
		})
	}
}

// SnapshotSubscriber returns the callback that bridges snapshot
// notifications into the hub's event loop.
func (h *Hub) SnapshotSubscriber() func(models.Snapshot) error {
	return func(snap models.Snapshot) error {
		h.BroadcastSnapshot(snap)
		return nil
	}
}

// GetClientCount returns the number of connected clients
func (h *Hub) GetClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// register hands c to the event loop, giving up if the loop is not running.
func (h *Hub) register(c *Client, timeout time.Duration) bool {
	return h.send(h.Register, c, timeout)
}

// unregister hands c to the event loop. It returns once the loop accepts it
// or the loop is no longer running.
func (h *Hub) unregister(c *Client) {
	for {
		if h.send(h.Unregister, c, 100*time.Millisecond) || !h.running.Load() {
			return
		}
	}
}

func (h *Hub) send(ch chan *Client, c *Client, timeout time.Duration) bool {
	t := time.NewTimer(timeout)
	defer t.Stop()
	select {
	case ch <- c:
		return true
	case <-t.C:
		return false
	}
}

// MarshalMessage converts a message to JSON
func MarshalMessage(msg models.Message) ([]byte, error) {
	return json.Marshal(msg)
}
