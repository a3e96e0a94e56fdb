// Stockpulse - Live Sales and Inventory Snapshot Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/stockpulse

/*
Package metrics provides Prometheus metrics collection and export.

All collectors are package-level variables registered with the default
registry through promauto, so instrumented packages import this one and
update the collectors directly.

# Metrics Endpoint

Metrics are exposed at the /metrics endpoint in Prometheus text format:

	curl http://localhost:8000/metrics

# Available Metrics

Source and reload:
  - source_read_attempts_total{outcome}: individual read attempts
  - snapshot_reloads_total{trigger,result}: reload gate outcomes
    trigger: startup, poll, watch; result: absent, unchanged, read_failed, empty, stale, updated
  - snapshot_reload_duration_seconds: time spent reading and aggregating
  - source_watcher_events_total: debounced file change notifications
  - source_malformed_cells_total{column}: numeric cells that failed to parse

Snapshot:
  - snapshot_rows, snapshot_products: shape of the current snapshot
  - snapshot_last_update_timestamp: unix time of the last replacement
  - snapshot_subscriber_failures_total: failed subscriber callbacks

WebSocket:
  - websocket_connections: active clients
  - websocket_messages_sent_total, websocket_messages_received_total
  - websocket_errors_total{error_type}
  - websocket_broadcast_drops_total{reason}: snapshots not handed to the hub
  - websocket_clients_pruned_total: clients removed after a failed delivery

API:
  - api_requests_total{method,endpoint,status_code}
  - api_request_duration_seconds{method,endpoint}
  - api_active_requests
  - api_rate_limit_hits_total{endpoint}
*/
package metrics
