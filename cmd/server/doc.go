// Stockpulse - Live Sales and Inventory Snapshot Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/stockpulse

/*
Package main is the entry point for the Stockpulse server.

Stockpulse watches a CSV file of timestamped sales and stock readings,
aggregates it into a dashboard snapshot whenever the file changes, and
serves that snapshot over HTTP and pushes it to WebSocket clients.

# Application Architecture

The server runs under a Suture v4 supervisor tree:

	RootSupervisor ("stockpulse")
	├── IngestSupervisor ("ingest-layer")
	│   └── Change detector (fsnotify push + poll fallback)
	├── MessagingSupervisor ("messaging-layer")
	│   └── WebSocket hub (snapshot broadcast)
	└── APISupervisor ("api-layer")
	    └── HTTP server (chi router)

Component initialization order:

 1. Configuration: Koanf v2 with defaults, config file and environment variables
 2. Logging: zerolog with JSON/console output modes
 3. Snapshot store and subscriber list
 4. CSV reader with bounded retry
 5. WebSocket hub, subscribed to snapshot publications
 6. Change detector
 7. HTTP server: chi router with CORS, rate limiting and Prometheus metrics
 8. Supervisor tree

# Configuration

Configuration is loaded via Koanf v2 (highest priority wins):

	Priority: Environment variables > Config file > Defaults

Core environment variables:

	CSV_PATH=app/sample_data.csv   # source file (alias SOURCE_PATH)
	REFRESH_INTERVAL=5s            # poll interval
	WATCH_ENABLED=true             # fsnotify push notifications
	HTTP_PORT=8000
	LOG_LEVEL=info                 # trace, debug, info, warn, error
	LOG_FORMAT=json                # json or console

See internal/config for the complete list.

# Signal Handling

The server shuts down gracefully on SIGINT and SIGTERM:

 1. Stops accepting new HTTP connections and drains in-flight requests
 2. Stops the change detector and its file watcher
 3. Closes WebSocket clients
 4. Reports any services that failed to stop

# Usage Examples

	go run ./cmd/simulator generate --out app/sample_data.csv
	CSV_PATH=app/sample_data.csv LOG_FORMAT=console go run ./cmd/server

	curl localhost:8000/api/data
	curl 'localhost:8000/api/historico?limit=20'

# See Also

  - internal/detector: Change detection
  - internal/aggregate: Snapshot aggregation
  - internal/websocket: Broadcast hub
  - internal/supervisor: Process supervision
*/
package main
