// Stockpulse - Live Sales and Inventory Snapshot Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/stockpulse

// Package snapshot holds the current Snapshot and the in-process listeners
// that are told when it changes.
package snapshot

import (
	"sync"

	"github.com/tomtom215/stockpulse/internal/models"
)

// Store owns the current snapshot. Readers always receive a private copy.
type Store struct {
	mu      sync.RWMutex
	current models.Snapshot
	built   bool
}

// NewStore returns a store holding the empty snapshot.
func NewStore() *Store {
	return &Store{current: models.EmptySnapshot()}
}

// Get returns a copy of the current snapshot, or the empty snapshot if none
// was ever stored.
func (s *Store) Get() models.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.Clone()
}

// Replace stores a copy of snap as the current snapshot.
func (s *Store) Replace(snap models.Snapshot) {
	c := snap.Clone()
	s.mu.Lock()
	s.current = c
	s.built = true
	s.mu.Unlock()
}

// Built reports whether Replace was ever called.
func (s *Store) Built() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.built
}
