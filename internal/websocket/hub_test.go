// Stockpulse - Live Sales and Inventory Snapshot Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/stockpulse

package websocket

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/tomtom215/stockpulse/internal/logging"
	"github.com/tomtom215/stockpulse/internal/models"
)

//nolint:gochecknoinits // init ensures consistent logging for tests
func init() {
	logging.Init(logging.Config{
		Level:  "info",
		Format: "console",
		Output: io.Discard,
	})
}

// staticSource serves a fixed snapshot.
type staticSource struct {
	mu   sync.Mutex
	snap models.Snapshot
}

func (s *staticSource) Get() models.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap.Clone()
}

func (s *staticSource) set(snap models.Snapshot) {
	s.mu.Lock()
	s.snap = snap
	s.mu.Unlock()
}

func snapshotWithRows(n int) models.Snapshot {
	s := models.EmptySnapshot()
	now := time.Now()
	s.RowCount = n
	s.BuiltAt = &now
	return s
}

// setupHub creates and starts a hub, stopping it when the test ends.
func setupHub(t *testing.T, src SnapshotSource) *Hub {
	t.Helper()
	hub := NewHub(src)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = hub.RunWithContext(ctx)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	waitUntil(t, time.Second, hub.IsRunning)
	return hub
}

// createTestClient creates a client without a connection; tests read its
// send channel directly.
func createTestClient(hub *Hub) *Client {
	return NewClient(hub, nil)
}

// registerClient registers a client and waits until the hub has it.
func registerClient(t *testing.T, hub *Hub, client *Client) {
	t.Helper()
	if !hub.register(client, time.Second) {
		t.Fatal("register timed out")
	}
	waitUntil(t, time.Second, func() bool {
		hub.mu.RLock()
		defer hub.mu.RUnlock()
		return hub.clients[client]
	})
}

func receive(t *testing.T, c *Client) models.Message {
	t.Helper()
	select {
	case msg, ok := <-c.send:
		if !ok {
			t.Fatal("send channel closed")
		}
		return msg
	case <-time.After(time.Second):
		t.Fatal("no message received")
	}
	return models.Message{}
}

func waitUntil(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatal("condition not met before timeout")
}

func TestNewHub(t *testing.T) {
	hub := NewHub(nil)

	checks := []struct {
		name   string
		check  bool
		errMsg string
	}{
		{"clients map", hub.clients != nil, "clients map not initialized"},
		{"broadcast channel", hub.broadcast != nil, "broadcast channel not initialized"},
		{"Register channel", hub.Register != nil, "Register channel not initialized"},
		{"Unregister channel", hub.Unregister != nil, "Unregister channel not initialized"},
		{"empty clients", len(hub.clients) == 0, "clients map should be empty"},
		{"not running", !hub.IsRunning(), "hub should not be running before RunWithContext"},
	}

	for _, c := range checks {
		if !c.check {
			t.Errorf("%s: %s", c.name, c.errMsg)
		}
	}
}

func TestHub_ConnectSeedsDefaultSnapshot(t *testing.T) {
	hub := setupHub(t, &staticSource{snap: models.EmptySnapshot()})
	client := createTestClient(hub)
	registerClient(t, hub, client)

	msg := receive(t, client)
	if msg.Type != models.MessageTypeSnapshot {
		t.Fatalf("first message type = %q, want snapshot", msg.Type)
	}
	snap, ok := msg.Data.(models.Snapshot)
	if !ok {
		t.Fatalf("data type = %T", msg.Data)
	}
	if snap.RowCount != 0 || snap.BuiltAt != nil {
		t.Errorf("expected default snapshot, got %+v", snap)
	}
}

func TestHub_ConnectSeedsBeforeBroadcast(t *testing.T) {
	src := &staticSource{snap: snapshotWithRows(1)}
	hub := setupHub(t, src)

	client := createTestClient(hub)
	registerClient(t, hub, client)
	src.set(snapshotWithRows(2))
	hub.BroadcastSnapshot(snapshotWithRows(2))

	first := receive(t, client).Data.(models.Snapshot)
	second := receive(t, client).Data.(models.Snapshot)
	if first.RowCount != 1 || second.RowCount != 2 {
		t.Errorf("order = %d,%d want 1,2", first.RowCount, second.RowCount)
	}
}

// TestHub_QueuedOlderSnapshotSkipsNewerSeed covers a client that connects
// while an older snapshot is still queued: the seed wins and the older frame
// is skipped for that client only.
func TestHub_QueuedOlderSnapshotSkipsNewerSeed(t *testing.T) {
	base := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	built := func(rows int, at time.Time) models.Snapshot {
		s := models.EmptySnapshot()
		s.RowCount = rows
		s.BuiltAt = &at
		return s
	}
	older := built(1, base)
	newer := built(2, base.Add(time.Second))
	newest := built(3, base.Add(2*time.Second))

	hub := NewHub(&staticSource{snap: newer})
	veteran := createTestClient(hub)
	hub.clients[veteran] = true

	joiner := createTestClient(hub)
	hub.addClient(joiner)

	hub.broadcastToClients(models.NewSnapshotMessage(older))
	hub.broadcastToClients(models.NewSnapshotMessage(newest))

	var got []int
	for len(joiner.send) > 0 {
		got = append(got, (<-joiner.send).Data.(models.Snapshot).RowCount)
	}
	if len(got) != 2 || got[0] != 2 || got[1] != 3 {
		t.Errorf("joiner rows = %v, want [2 3]", got)
	}
	if !hub.clients[joiner] {
		t.Error("skipping a stale frame must not prune the client")
	}

	if n := len(veteran.send); n != 2 {
		t.Errorf("veteran received %d frames, want 2", n)
	}
}

// TestHub_SameSnapshotAfterSeedIsDelivered keeps the seed-then-broadcast
// sequence for the snapshot the client was seeded with.
func TestHub_SameSnapshotAfterSeedIsDelivered(t *testing.T) {
	snap := snapshotWithRows(4)
	hub := NewHub(&staticSource{snap: snap})
	client := createTestClient(hub)
	hub.addClient(client)

	hub.broadcastToClients(models.NewSnapshotMessage(snap))
	if n := len(client.send); n != 2 {
		t.Errorf("frames = %d, want seed and broadcast", n)
	}
}

func TestHub_NilSourceSeedsEmptySnapshot(t *testing.T) {
	hub := setupHub(t, nil)
	client := createTestClient(hub)
	registerClient(t, hub, client)

	msg := receive(t, client)
	if snap := msg.Data.(models.Snapshot); snap.StockByProduct == nil {
		t.Error("seed snapshot should carry empty maps")
	}
}

// TestHub_BroadcastIsolatesClosedClient checks that a closed client is
// pruned while the live ones still receive the payload.
func TestHub_BroadcastIsolatesClosedClient(t *testing.T) {
	hub := NewHub(&staticSource{snap: models.EmptySnapshot()})

	live1, dead, live2 := createTestClient(hub), createTestClient(hub), createTestClient(hub)
	for _, c := range []*Client{live1, dead, live2} {
		hub.clients[c] = true
	}
	dead.markClosed()

	hub.broadcastToClients(models.NewSnapshotMessage(snapshotWithRows(5)))

	for _, c := range []*Client{live1, live2} {
		msg := receive(t, c)
		if msg.Data.(models.Snapshot).RowCount != 5 {
			t.Errorf("client %d got %+v", c.id, msg)
		}
	}
	if hub.GetClientCount() != 2 {
		t.Errorf("clients = %d, want 2", hub.GetClientCount())
	}
	if hub.clients[dead] {
		t.Error("closed client still in active set")
	}
	if _, ok := <-dead.send; ok {
		t.Error("pruned client send channel should be closed")
	}
}

func TestHub_BroadcastPrunesFullClient(t *testing.T) {
	hub := NewHub(nil)
	slow := createTestClient(hub)
	fast := createTestClient(hub)
	hub.clients[slow] = true
	hub.clients[fast] = true

	for i := 0; i < sendBufferSize; i++ {
		slow.send <- models.Message{Type: "filler"}
	}

	hub.broadcastToClients(models.NewSnapshotMessage(snapshotWithRows(1)))

	if hub.clients[slow] || !slow.IsClosed() {
		t.Error("client with a full buffer should be pruned and closed")
	}
	if !hub.clients[fast] || len(fast.send) != 1 {
		t.Error("fast client should stay and receive the message")
	}
}

func TestHub_UnregisterIdempotent(t *testing.T) {
	hub := setupHub(t, nil)
	client := createTestClient(hub)
	registerClient(t, hub, client)

	hub.unregister(client)
	hub.unregister(client)
	waitUntil(t, time.Second, func() bool { return hub.GetClientCount() == 0 })

	stranger := createTestClient(hub)
	hub.unregister(stranger)
	if stranger.IsClosed() {
		t.Error("unregistering an unknown client should not touch it")
	}
}

func TestHub_SnapshotSubscriber(t *testing.T) {
	t.Run("dropped when hub is not running", func(t *testing.T) {
		hub := NewHub(nil)
		if err := hub.SnapshotSubscriber()(snapshotWithRows(1)); err != nil {
			t.Fatalf("subscriber returned %v", err)
		}
		if len(hub.broadcast) != 0 {
			t.Error("snapshot queued while hub not running")
		}
	})

	t.Run("delivered through the event loop", func(t *testing.T) {
		hub := setupHub(t, nil)
		client := createTestClient(hub)
		registerClient(t, hub, client)
		_ = receive(t, client)

		if err := hub.SnapshotSubscriber()(snapshotWithRows(3)); err != nil {
			t.Fatalf("subscriber returned %v", err)
		}
		msg := receive(t, client)
		if msg.Data.(models.Snapshot).RowCount != 3 {
			t.Errorf("got %+v", msg)
		}
	})

	t.Run("queue full never blocks", func(t *testing.T) {
		hub := NewHub(nil)
		hub.running.Store(true)
		done := make(chan struct{})
		go func() {
			for i := 0; i < broadcastQueueSize*2; i++ {
				hub.BroadcastSnapshot(snapshotWithRows(i))
			}
			close(done)
		}()
		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("BroadcastSnapshot blocked on a full queue")
		}
		if len(hub.broadcast) != broadcastQueueSize {
			t.Errorf("queued = %d, want %d", len(hub.broadcast), broadcastQueueSize)
		}
	})
}

func TestHub_RunWithContext_ClosesClients(t *testing.T) {
	hub := NewHub(nil)
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- hub.RunWithContext(ctx) }()
	waitUntil(t, time.Second, hub.IsRunning)

	clients := []*Client{createTestClient(hub), createTestClient(hub)}
	for _, c := range clients {
		registerClient(t, hub, c)
	}

	cancel()
	select {
	case err := <-errCh:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("RunWithContext = %v, want context.Canceled", err)
		}
	case <-time.After(time.Second):
		t.Fatal("hub did not stop")
	}

	if hub.GetClientCount() != 0 || hub.IsRunning() {
		t.Error("hub should be empty and stopped")
	}
	for _, c := range clients {
		if !c.IsClosed() {
			t.Errorf("client %d not closed", c.id)
		}
	}
}

func TestHub_ConcurrentBroadcastAndRegister(t *testing.T) {
	hub := setupHub(t, &staticSource{snap: models.EmptySnapshot()})

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			c := createTestClient(hub)
			hub.register(c, time.Second)
			hub.unregister(c)
		}()
		go func(n int) {
			defer wg.Done()
			hub.BroadcastSnapshot(snapshotWithRows(n))
		}(i)
	}
	wg.Wait()
	waitUntil(t, time.Second, func() bool { return hub.GetClientCount() == 0 })
}

func TestGetShutdownReason(t *testing.T) {
	canceled, cancel := context.WithCancel(context.Background())
	cancel()
	expired, cancel2 := context.WithTimeout(context.Background(), -time.Second)
	defer cancel2()

	tests := []struct {
		name string
		ctx  context.Context
		want ShutdownReason
	}{
		{"canceled", canceled, ShutdownReasonContextCanceled},
		{"deadline", expired, ShutdownReasonContextDeadline},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := getShutdownReason(tt.ctx); got != tt.want {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}
}

func TestMarshalMessage(t *testing.T) {
	b, err := MarshalMessage(models.Message{Type: models.MessageTypePong})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != `{"type":"pong","data":null}` {
		t.Errorf("got %s", b)
	}
}
