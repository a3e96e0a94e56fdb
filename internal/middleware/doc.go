// Stockpulse - Live Sales and Inventory Snapshot Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/stockpulse

/*
Package middleware provides HTTP middleware components for the application.

Key Components:

  - RequestID: UUID-based request tracking. The ID is echoed in X-Request-ID
    and stored in the logging context together with a fresh correlation ID.
  - PrometheusMetrics: request count, duration and in-flight gauge, labelled
    by chi route pattern.

Both are plain func(http.Handler) http.Handler values and plug straight into
chi's r.Use:

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Route("/api", func(r chi.Router) {
	    r.Use(middleware.PrometheusMetrics)
	    r.Get("/data", h.Data)
	})

The metrics wrapper implements http.Hijacker, so websocket upgrades may sit
behind it.
*/
package middleware
