// Stockpulse - Live Sales and Inventory Snapshot Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/stockpulse

/*
Package supervisor provides the suture v4 supervision tree for Stockpulse.

# Tree Layout

	stockpulse (root)
	├── ingest-layer
	│   └── change-detector
	├── messaging-layer
	│   └── websocket-hub
	└── api-layer
	    └── http-server

Each layer is its own supervisor, so repeated failures in one layer back off
without restarting the others. Supervisor events are logged through
sutureslog into the zerolog-backed slog handler.

# Usage

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	if err != nil {
	    return err
	}
	_, _ = tree.Add(supervisor.LayerIngest, services.NewDetectorService(det))
	_, _ = tree.Add(supervisor.LayerMessaging, services.NewWebSocketHubService(hub))
	_, _ = tree.Add(supervisor.LayerAPI, services.NewHTTPServerService(server, addr, 10*time.Second))

	err = tree.Serve(ctx) // returns when ctx is canceled

After Serve returns, UnstoppedServiceReport lists services that ignored the
shutdown timeout.
*/
package supervisor
