// Stockpulse - Live Sales and Inventory Snapshot Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/stockpulse

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus instrumentation for:
// - Source reads and reload outcomes
// - The current snapshot
// - Push subscribers and broadcast fan-out
// - API endpoint latency and throughput
// - History table cache effectiveness

var (
	// Source Metrics
	SourceReadAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "source_read_attempts_total",
			Help: "Total number of source read attempts",
		},
		[]string{"outcome"}, // "ok", "error"
	)

	ReloadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "snapshot_reloads_total",
			Help: "Total number of reload gate invocations by result",
		},
		[]string{"trigger", "result"},
	)

	ReloadDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "snapshot_reload_duration_seconds",
			Help:    "Duration of reloads that read the source",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5}, // retries cap near 1s
		},
	)

	WatcherEvents = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "source_watcher_events_total",
			Help: "Total number of debounced file change notifications",
		},
	)

	// Snapshot Metrics
	SnapshotRows = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "snapshot_rows",
			Help: "Row count of the current snapshot",
		},
	)

	SnapshotProducts = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "snapshot_products",
			Help: "Number of distinct products in the current snapshot",
		},
	)

	SnapshotLastUpdate = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "snapshot_last_update_timestamp",
			Help: "Unix timestamp of the last snapshot replacement",
		},
	)

	MalformedCells = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "source_malformed_cells_total",
			Help: "Total number of numeric cells that failed to parse",
		},
		[]string{"column"},
	)

	SubscriberFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "snapshot_subscriber_failures_total",
			Help: "Total number of subscriber callbacks that returned an error or panicked",
		},
	)

	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	APIRateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_rate_limit_hits_total",
			Help: "Total number of rate limit rejections",
		},
		[]string{"endpoint"},
	)

	// WebSocket Metrics
	WSConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "websocket_connections",
			Help: "Current number of active WebSocket connections",
		},
	)

	WSMessagesSent = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "websocket_messages_sent_total",
			Help: "Total number of WebSocket messages sent",
		},
	)

	WSMessagesReceived = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "websocket_messages_received_total",
			Help: "Total number of WebSocket messages received",
		},
	)

	WSErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "websocket_errors_total",
			Help: "Total number of WebSocket errors",
		},
		[]string{"error_type"},
	)

	WSBroadcastDrops = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "websocket_broadcast_drops_total",
			Help: "Total number of snapshots not handed to the hub",
		},
		[]string{"reason"}, // "not_running", "queue_full"
	)

	WSClientsPruned = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "websocket_clients_pruned_total",
			Help: "Total number of clients removed after a failed delivery",
		},
	)

	// Cache Metrics
	TableCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "table_cache_lookups_total",
			Help: "Total number of parsed table cache lookups",
		},
		[]string{"result"}, // "hit", "miss"
	)
)

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordReload records one pass through the reload gate. Duration is only
// observed when the source was actually read.
func RecordReload(trigger, result string, duration time.Duration, read bool) {
	ReloadsTotal.WithLabelValues(trigger, result).Inc()
	if read {
		ReloadDuration.Observe(duration.Seconds())
	}
}

// RecordSnapshot updates the gauges describing the current snapshot.
func RecordSnapshot(rows, products int, builtAt time.Time) {
	SnapshotRows.Set(float64(rows))
	SnapshotProducts.Set(float64(products))
	SnapshotLastUpdate.Set(float64(builtAt.Unix()))
}
