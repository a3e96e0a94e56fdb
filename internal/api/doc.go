// Stockpulse - Live Sales and Inventory Snapshot Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/stockpulse

/*
Package api provides the HTTP layer for Stockpulse.

It exposes the current snapshot for pull clients, a raw tail of the source
file for charting, the websocket push endpoint, health probes and Prometheus
metrics.

Routes:

  - GET /api/data: current snapshot as a bare JSON object
  - GET /api/historico?limit=N: last N raw rows as a JSON array, most recent last
  - GET /api/v1/health/live: liveness probe
  - GET /api/v1/health/ready: 200 once a snapshot has been built, 503 before
  - GET /ws: websocket push, first frame is the current snapshot
  - GET /metrics: Prometheus exposition

Pull endpoints return bare payloads so existing dashboards keep working.
Errors use the APIResponse envelope:

	{"success":false,"error":{"code":"VALIDATION_ERROR","message":"limit must be at least 1"},"meta":{...}}

Middleware Stack:

	RequestID -> RealIP -> Recoverer -> CORS -> (per group) rate limit,
	security headers, Prometheus metrics, gzip

Usage Example:

	handler := api.NewHandler(cfg, store, reader, hub, det)
	router := api.NewRouter(handler, api.NewChiMiddlewareFromConfig(cfg))
	srv := &http.Server{Addr: cfg.Server.Addr(), Handler: router.SetupChi()}
*/
package api
