// Stockpulse - Live Sales and Inventory Snapshot Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/stockpulse

/*
Package websocket pushes snapshots to browser clients over WebSocket.

It uses the gorilla/websocket library with a hub-client architecture:

  - Hub: owns the active set of clients and runs a single event loop
  - Client: one connection with a read pump and a write pump

All membership changes and deliveries happen on the hub's event loop.
Snapshots computed on background goroutines reach the loop through
SnapshotSubscriber, which enqueues without blocking:

	store := snapshot.NewStore()
	hub := websocket.NewHub(store)
	subscribers.Subscribe(hub.SnapshotSubscriber())
	_, _ = tree.Add(supervisor.LayerMessaging, services.NewWebSocketHubService(hub))

Protocol:

On connect the server sends the current snapshot, or the empty snapshot if
none has been built yet, before any broadcast:

	{"type": "snapshot", "data": {"total_sales": 9, "stock_by_product": {"A": 7}, ...}}

Every later snapshot is sent the same way. A client may send {"type":"ping"}
and receives {"type":"pong","data":null}; transport-level pings keep idle
connections alive.

Failure isolation:

A client whose buffer is full or whose connection failed is removed after
the broadcast sweep that noticed it. Other clients are unaffected. If the
event loop is not running, broadcasts are dropped: a client that connects
later is seeded with the current snapshot anyway.
*/
package websocket
