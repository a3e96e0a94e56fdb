// Stockpulse - Live Sales and Inventory Snapshot Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/stockpulse

package api

import (
	"context"
	"time"

	"github.com/tomtom215/stockpulse/internal/config"
	"github.com/tomtom215/stockpulse/internal/detector"
	"github.com/tomtom215/stockpulse/internal/models"
	"github.com/tomtom215/stockpulse/internal/source"
	ws "github.com/tomtom215/stockpulse/internal/websocket"
)

// SnapshotProvider serves the current snapshot.
type SnapshotProvider interface {
	Get() models.Snapshot
	Built() bool
}

// TableReader reads the raw source for the history endpoint.
type TableReader interface {
	Read(ctx context.Context, path string) (source.Table, error)
}

// DetectorStatus reports what the change detector is doing.
type DetectorStatus interface {
	Mode() string
	Stats() detector.Stats
}

// Handler contains dependencies for API handlers.
//
// Handler methods are split across files:
//   - handlers_data.go: snapshot and history endpoints
//   - handlers_health.go: liveness and readiness probes
//   - handlers_websocket.go: websocket upgrade
type Handler struct {
	config    *config.Config
	snapshots SnapshotProvider
	reader    TableReader
	wsHub     *ws.Hub
	detector  DetectorStatus
	startTime time.Time
}

// NewHandler creates a new API handler.
//
// det and hub may be nil; the probes then report the detector as "unknown"
// and /ws answers 503.
func NewHandler(cfg *config.Config, snapshots SnapshotProvider, reader TableReader, hub *ws.Hub, det DetectorStatus) *Handler {
	return &Handler{
		config:    cfg,
		snapshots: snapshots,
		reader:    reader,
		wsHub:     hub,
		detector:  det,
		startTime: time.Now(),
	}
}
