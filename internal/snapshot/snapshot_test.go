// Stockpulse - Live Sales and Inventory Snapshot Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/stockpulse

package snapshot

import (
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/tomtom215/stockpulse/internal/logging"
	"github.com/tomtom215/stockpulse/internal/models"
)

//nolint:gochecknoinits // init ensures consistent logging for tests
func init() {
	logging.Init(logging.Config{
		Level:  "info",
		Format: "console",
		Output: io.Discard,
	})
}

func builtSnapshot(rows int) models.Snapshot {
	s := models.EmptySnapshot()
	now := time.Now()
	s.BuiltAt = &now
	s.RowCount = rows
	s.StockByProduct["A"] = float64(rows)
	return s
}

func TestStore_DefaultSnapshot(t *testing.T) {
	st := NewStore()
	if st.Built() {
		t.Error("new store should not be built")
	}
	got := st.Get()
	if got.RowCount != 0 || got.StockByProduct == nil || got.SalesByProduct == nil || got.BuiltAt != nil {
		t.Errorf("unexpected default snapshot: %+v", got)
	}

	var zero Store
	if zero.Get().StockByProduct == nil {
		t.Error("zero-value store should still return non-nil maps")
	}
}

func TestStore_GetReturnsCopy(t *testing.T) {
	st := NewStore()
	in := builtSnapshot(3)
	st.Replace(in)

	in.StockByProduct["A"] = 99
	got := st.Get()
	if got.StockByProduct["A"] != 3 {
		t.Errorf("store aliased caller map: %v", got.StockByProduct)
	}

	got.StockByProduct["A"] = 42
	if st.Get().StockByProduct["A"] != 3 {
		t.Error("store aliased returned map")
	}
	if !st.Built() {
		t.Error("store should be built after Replace")
	}
}

func TestStore_ConcurrentAccess(t *testing.T) {
	st := NewStore()
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func(n int) {
			defer wg.Done()
			st.Replace(builtSnapshot(n))
		}(i)
		go func() {
			defer wg.Done()
			s := st.Get()
			if s.BuiltAt != nil && s.StockByProduct["A"] != float64(s.RowCount) {
				t.Errorf("torn snapshot: rows %d stock %v", s.RowCount, s.StockByProduct["A"])
			}
		}()
	}
	wg.Wait()
}

func TestSubscribers_NotifyIsolatesFailures(t *testing.T) {
	subs := NewSubscribers()
	var order []string

	subs.Subscribe(func(models.Snapshot) error {
		order = append(order, "first")
		return errors.New("boom")
	})
	subs.Subscribe(func(models.Snapshot) error {
		order = append(order, "second")
		panic("kaboom")
	})
	subs.Subscribe(func(s models.Snapshot) error {
		order = append(order, "third")
		s.StockByProduct["A"] = -1
		return nil
	})
	subs.Subscribe(nil)

	snap := builtSnapshot(2)
	subs.Notify(snap)

	if len(order) != 3 || order[0] != "first" || order[1] != "second" || order[2] != "third" {
		t.Errorf("call order = %v", order)
	}
	if snap.StockByProduct["A"] != 2 {
		t.Error("subscriber mutated the caller's snapshot")
	}
	if subs.Len() != 3 {
		t.Errorf("Len = %d, want 3", subs.Len())
	}
}
