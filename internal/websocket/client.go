// Stockpulse - Live Sales and Inventory Snapshot Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/stockpulse

package websocket

import (
	"errors"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"

	"github.com/tomtom215/stockpulse/internal/logging"
	"github.com/tomtom215/stockpulse/internal/metrics"
	"github.com/tomtom215/stockpulse/internal/models"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512 * 1024 // 512 KB
	sendBufferSize = 256
	registerWait   = 5 * time.Second
)

// clientIDCounter generates unique, monotonically increasing IDs for clients.
// DETERMINISM: This ensures clients can be sorted in a consistent order for
// broadcast operations, eliminating non-deterministic map iteration order.
var clientIDCounter atomic.Uint64

// Client is a middleman between the websocket connection and the hub.
//
// The hub is the only sender on send and the only goroutine that closes it.
// closed records liveness: it is set when the hub removes the client or when
// a write to the connection fails, and a closed client accepts no delivery.
type Client struct {
	id        uint64
	hub       *Hub
	conn      *websocket.Conn
	send      chan models.Message
	pong      chan struct{}
	closed    atomic.Bool
	closeOnce sync.Once

	// seen is the BuiltAt of the newest snapshot queued to this client.
	// Hub goroutine only.
	seen time.Time
}

// NewClient creates a new Client with a unique deterministic ID
func NewClient(hub *Hub, conn *websocket.Conn) *Client {
	return &Client{
		id:   clientIDCounter.Add(1),
		hub:  hub,
		conn: conn,
		send: make(chan models.Message, sendBufferSize),
		pong: make(chan struct{}, 1),
	}
}

// ID returns the client's unique identifier for deterministic ordering
func (c *Client) ID() uint64 {
	return c.id
}

// IsClosed reports whether the client can no longer receive messages.
func (c *Client) IsClosed() bool {
	return c.closed.Load()
}

// deliver queues message without blocking. It fails if the client is closed
// or its buffer is full.
func (c *Client) deliver(message models.Message) bool {
	if c.closed.Load() {
		return false
	}
	select {
	case c.send <- message:
		return true
	default:
		return false
	}
}

// stale reports whether message carries a snapshot older than one already
// queued to c. Such a frame is skipped rather than delivered.
func (c *Client) stale(message models.Message) bool {
	built, ok := message.BuiltAt()
	return ok && built.Before(c.seen)
}

// observe records the snapshot carried by a delivered message.
func (c *Client) observe(message models.Message) {
	if built, ok := message.BuiltAt(); ok && built.After(c.seen) {
		c.seen = built
	}
}

// close marks the client closed and releases the write pump. Hub goroutine only.
func (c *Client) close() {
	c.closed.Store(true)
	c.closeOnce.Do(func() { close(c.send) })
}

// markClosed records a failed write.
func (c *Client) markClosed() {
	c.closed.Store(true)
}

// readPump pumps messages from the websocket connection to the hub
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister(c)
		_ = c.conn.Close() // best-effort cleanup
	}()

	c.conn.SetReadLimit(maxMessageSize)
	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		logging.Error().Err(err).Msg("failed to set read deadline")
		return
	}

	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				metrics.WSErrors.WithLabelValues("unexpected_close").Inc()
				logging.Warn().Err(err).Uint64("client_id", c.id).Msg("unexpected websocket close error")
			}
			return
		}
		metrics.WSMessagesReceived.Inc()

		var msg models.Message
		if err := json.Unmarshal(data, &msg); err != nil {
			continue
		}
		if msg.Type == models.MessageTypePing {
			select {
			case c.pong <- struct{}{}:
			default:
			}
		}
	}
}

// writePump pumps messages from the hub to the websocket connection
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.markClosed()
		_ = c.conn.Close() // best-effort cleanup
	}()

	for {
		select {
		case message, ok := <-c.send:
			if !ok {
				// The hub closed the channel
				_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.write(message); err != nil {
				metrics.WSErrors.WithLabelValues("write").Inc()
				logging.Debug().Err(err).Uint64("client_id", c.id).Msg("websocket write failed")
				return
			}

		case <-c.pong:
			if err := c.write(models.Message{Type: models.MessageTypePong}); err != nil {
				return
			}

		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) write(message models.Message) error {
	payload, err := MarshalMessage(message)
	if err != nil {
		return err
	}
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
		return err
	}
	metrics.WSMessagesSent.Inc()
	return nil
}

// Start begins reading and writing for the client
func (c *Client) Start() {
	go c.writePump()
	go c.readPump()
}

// ErrHubNotRunning is returned when a connection arrives while the hub's
// event loop is stopped.
var ErrHubNotRunning = errors.New("websocket hub not running")

// ServeWS upgrades the request, registers the client with hub and starts its
// pumps. The client receives the current snapshot as its first message.
func ServeWS(hub *Hub, w http.ResponseWriter, r *http.Request, upgrader *websocket.Upgrader) error {
	return serveWSWithWait(hub, w, r, upgrader, registerWait)
}

func serveWSWithWait(hub *Hub, w http.ResponseWriter, r *http.Request, upgrader *websocket.Upgrader, wait time.Duration) error {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}

	client := NewClient(hub, conn)
	if !hub.register(client, wait) {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseTryAgainLater, "server not ready"),
			time.Now().Add(writeWait))
		_ = conn.Close()
		return ErrHubNotRunning
	}
	client.Start()
	return nil
}
