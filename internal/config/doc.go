// Stockpulse - Live Sales and Inventory Snapshot Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/stockpulse

/*
Package config provides centralized configuration management for Stockpulse.

Configuration is layered with Koanf v2. Built-in defaults are loaded first,
then an optional YAML file, then environment variables. Later layers win.

# Config File

The file is taken from CONFIG_PATH when set, otherwise the first of
config.yaml, config.yml, /etc/stockpulse/config.yaml and
/etc/stockpulse/config.yml that exists.

	source:
	  path: /data/sales.csv
	  poll_interval: 5s
	server:
	  port: 8000
	logging:
	  level: debug

# Environment Variables

Source:
  - CSV_PATH (or SOURCE_PATH): data file (default: app/sample_data.csv)
  - CSV_DELIMITER: field separator (default: ,)
  - REFRESH_INTERVAL (or POLL_INTERVAL): poll period (default: 5s)
  - READ_ATTEMPTS: parse attempts per reload (default: 5)
  - READ_BACKOFF: pause between attempts (default: 200ms)
  - WATCH_ENABLED: filesystem notifications (default: true)
  - WATCH_DEBOUNCE: notification coalescing window (default: 250ms)
  - WATCH_STOP_TIMEOUT: watcher shutdown bound (default: 2s)

HTTP Server:
  - HTTP_HOST: bind address (default: 0.0.0.0)
  - HTTP_PORT: listen port (default: 8000)
  - HTTP_TIMEOUT: read/write timeout (default: 30s)
  - SHUTDOWN_TIMEOUT: graceful shutdown bound (default: 10s)
  - ENVIRONMENT: development, staging or production

API:
  - API_DEFAULT_TAIL_LIMIT: rows returned by /api/historico (default: 100)
  - API_MAX_TAIL_LIMIT: largest accepted limit (default: 1000)
  - HISTORY_CACHE_TTL: reuse of a parsed unchanged file, 0 disables (default: 1s)

Security:
  - CORS_ORIGINS: comma-separated origins (default: *)
  - RATE_LIMIT_REQUESTS: requests per window per IP (default: 100)
  - RATE_LIMIT_WINDOW: window length (default: 1m)
  - DISABLE_RATE_LIMIT: turn rate limiting off

Logging:
  - LOG_LEVEL: trace, debug, info, warn, error (case-insensitive)
  - LOG_FORMAT: json or console (plain is accepted as console)
  - LOG_CALLER: add file:line to records
  - LOG_FILE: also append JSON records to this file

Environment variables not in this list are ignored.
*/
package config
