// Stockpulse - Live Sales and Inventory Snapshot Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/stockpulse

package snapshot

import (
	"fmt"
	"sync"

	"github.com/tomtom215/stockpulse/internal/logging"
	"github.com/tomtom215/stockpulse/internal/metrics"
	"github.com/tomtom215/stockpulse/internal/models"
)

// Subscriber is called with every new snapshot.
type Subscriber func(models.Snapshot) error

// Subscribers is an append-only registry of listeners for the lifetime of
// the process.
type Subscribers struct {
	mu   sync.RWMutex
	subs []Subscriber
}

// NewSubscribers creates an empty registry.
func NewSubscribers() *Subscribers {
	return &Subscribers{}
}

// Subscribe registers fn. Nil callbacks are ignored.
func (s *Subscribers) Subscribe(fn Subscriber) {
	if fn == nil {
		return
	}
	s.mu.Lock()
	s.subs = append(s.subs, fn)
	s.mu.Unlock()
}

// Len returns the number of registered subscribers.
func (s *Subscribers) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.subs)
}

// Notify calls every subscriber in registration order, each with its own
// copy of snap. A subscriber that fails or panics is logged and skipped.
func (s *Subscribers) Notify(snap models.Snapshot) {
	s.mu.RLock()
	subs := make([]Subscriber, len(s.subs))
	copy(subs, s.subs)
	s.mu.RUnlock()

	for i, fn := range subs {
		if err := call(fn, snap.Clone()); err != nil {
			metrics.SubscriberFailures.Inc()
			logging.Warn().
				Err(err).
				Int("subscriber", i).
				Msg("Snapshot subscriber failed")
		}
	}
}

func call(fn Subscriber, snap models.Snapshot) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("subscriber panic: %v", r)
		}
	}()
	return fn(snap)
}
