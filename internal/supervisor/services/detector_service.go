// Stockpulse - Live Sales and Inventory Snapshot Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/stockpulse

package services

import (
	"context"
)

// ChangeDetector matches *detector.Detector's RunWithContext method.
type ChangeDetector interface {
	// RunWithContext performs the startup load, then reacts to filesystem
	// notifications and the poll ticker until ctx is canceled.
	RunWithContext(ctx context.Context) error
}

// DetectorService wraps the change detector as a supervised service.
//
// If the detector returns before its context is canceled the supervisor
// restarts it; the restart performs a fresh forced load.
//
// Example usage:
//
//	det := detector.New(detector.DefaultConfig(path), reader, agg, store, subs)
//	_, err := tree.Add(supervisor.LayerIngest, services.NewDetectorService(det))
type DetectorService struct {
	detector ChangeDetector
	name     string
}

// NewDetectorService creates a new change detector service wrapper.
func NewDetectorService(det ChangeDetector) *DetectorService {
	return &DetectorService{
		detector: det,
		name:     "change-detector",
	}
}

// Serve implements suture.Service. Returns ctx.Err() on normal shutdown.
func (d *DetectorService) Serve(ctx context.Context) error {
	return d.detector.RunWithContext(ctx)
}

// String implements fmt.Stringer for logging.
func (d *DetectorService) String() string {
	return d.name
}
