// Stockpulse - Live Sales and Inventory Snapshot Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/stockpulse

package api

import (
	"net/http"
	"time"

	"github.com/tomtom215/stockpulse/internal/detector"
)

// ReadinessStatus is the body of the readiness probe.
type ReadinessStatus struct {
	Ready         bool           `json:"ready"`
	DetectorMode  string         `json:"detector_mode"`
	Clients       int            `json:"clients"`
	HubRunning    bool           `json:"hub_running"`
	SnapshotBuilt *time.Time     `json:"snapshot_built_at"`
	Reloads       detector.Stats `json:"reloads"`
	Uptime        float64        `json:"uptime"`
}

// HealthLive handles liveness probe requests (Kubernetes-style).
// Returns 200 OK if the process is alive, regardless of the source file.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	NewResponseWriter(w, r).Success(map[string]interface{}{
		"alive":  true,
		"uptime": time.Since(h.startTime).Seconds(),
	})
}

// HealthReady handles readiness probe requests (Kubernetes-style).
// Returns 200 once a snapshot has been built and 503 until then.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	status := ReadinessStatus{
		Ready:        h.snapshots.Built(),
		DetectorMode: "unknown",
		Uptime:       time.Since(h.startTime).Seconds(),
	}
	if h.detector != nil {
		status.DetectorMode = h.detector.Mode()
		status.Reloads = h.detector.Stats()
	}
	if h.wsHub != nil {
		status.Clients = h.wsHub.GetClientCount()
		status.HubRunning = h.wsHub.IsRunning()
	}
	if status.Ready {
		status.SnapshotBuilt = h.snapshots.Get().BuiltAt
	}

	code := http.StatusOK
	if !status.Ready {
		code = http.StatusServiceUnavailable
	}
	NewResponseWriter(w, r).Status(code, status)
}
