// Stockpulse - Live Sales and Inventory Snapshot Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/stockpulse

package detector

import (
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

func TestFileWatcher_DebouncesBurst(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sales.csv")
	if err := os.WriteFile(path, []byte("a\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	var fired atomic.Int64
	w := NewFileWatcher(path, 100*time.Millisecond, func() { fired.Add(1) })
	if err := w.Start(); err != nil {
		t.Skipf("fsnotify unavailable: %v", err)
	}
	defer func() { _ = w.Close(time.Second) }()

	for i := 0; i < 5; i++ {
		if err := os.WriteFile(path, []byte("a\n1\n"), 0o600); err != nil {
			t.Fatal(err)
		}
		time.Sleep(10 * time.Millisecond)
	}

	waitFor(t, 2*time.Second, func() bool { return fired.Load() >= 1 })
	time.Sleep(200 * time.Millisecond)
	if n := fired.Load(); n != 1 {
		t.Errorf("callbacks = %d, want 1 for one burst", n)
	}
}

func TestFileWatcher_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sales.csv")

	var fired atomic.Int64
	w := NewFileWatcher(path, 10*time.Millisecond, func() { fired.Add(1) })
	if err := w.Start(); err != nil {
		t.Skipf("fsnotify unavailable: %v", err)
	}
	defer func() { _ = w.Close(time.Second) }()

	if err := os.WriteFile(filepath.Join(dir, "other.csv"), []byte("x\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	time.Sleep(150 * time.Millisecond)
	if fired.Load() != 0 {
		t.Error("change to another file should not fire")
	}
}

func TestFileWatcher_RenameIntoPlace(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sales.csv")

	var fired atomic.Int64
	w := NewFileWatcher(path, 10*time.Millisecond, func() { fired.Add(1) })
	if err := w.Start(); err != nil {
		t.Skipf("fsnotify unavailable: %v", err)
	}
	defer func() { _ = w.Close(time.Second) }()

	tmp := filepath.Join(dir, ".sales.csv.tmp")
	if err := os.WriteFile(tmp, []byte("a\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.Rename(tmp, path); err != nil {
		t.Fatal(err)
	}
	waitFor(t, 2*time.Second, func() bool { return fired.Load() >= 1 })
}

func TestFileWatcher_StartFailsOnMissingDir(t *testing.T) {
	w := NewFileWatcher(filepath.Join(t.TempDir(), "nope", "sales.csv"), 0, func() {})
	if err := w.Start(); err == nil {
		_ = w.Close(time.Second)
		t.Fatal("expected error watching a missing directory")
	}
}

func TestFileWatcher_CloseIdempotent(t *testing.T) {
	w := NewFileWatcher(filepath.Join(t.TempDir(), "sales.csv"), 0, func() {})
	if err := w.Close(time.Second); err != nil {
		t.Errorf("close before start: %v", err)
	}
	if err := w.Close(time.Second); err != nil {
		t.Errorf("second close: %v", err)
	}
}
