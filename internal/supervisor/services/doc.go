// Stockpulse - Live Sales and Inventory Snapshot Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/stockpulse

/*
Package services provides suture.Service wrappers for Stockpulse components.

Each wrapper implements the suture.Service interface:

	type Service interface {
	    Serve(ctx context.Context) error
	}

and fmt.Stringer, so suture log lines name the service.

# Available Services

Change Detector (DetectorService):
  - Wraps detector.Detector
  - Startup load, then watch and poll until canceled

WebSocket Hub (WebSocketHubService):
  - Wraps websocket.Hub
  - Closes every client on shutdown

HTTP Server (HTTPServerService):
  - Wraps *http.Server with graceful shutdown
  - Binds synchronously so bind failures reach the supervisor
  - Configurable shutdown timeout for draining connections

The wrappers depend on small interfaces rather than the concrete types, so
this package imports none of the component packages.
*/
package services
