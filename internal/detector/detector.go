// Stockpulse - Live Sales and Inventory Snapshot Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/stockpulse

package detector

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tomtom215/stockpulse/internal/logging"
	"github.com/tomtom215/stockpulse/internal/metrics"
	"github.com/tomtom215/stockpulse/internal/models"
	"github.com/tomtom215/stockpulse/internal/source"
)

// Result is the outcome of one pass through the reload gate.
type Result int

const (
	// ResultAbsent means the source does not exist.
	ResultAbsent Result = iota
	// ResultUnchanged means the modification time was already seen.
	ResultUnchanged
	// ResultReadFailed means every read attempt failed; the change stays unseen.
	ResultReadFailed
	// ResultEmpty means the source had no rows; nothing was published.
	ResultEmpty
	// ResultStale means a concurrent reload already published this or a newer change.
	ResultStale
	// ResultUpdated means a new snapshot was stored and subscribers were notified.
	ResultUpdated
)

func (r Result) String() string {
	switch r {
	case ResultAbsent:
		return "absent"
	case ResultUnchanged:
		return "unchanged"
	case ResultReadFailed:
		return "read_failed"
	case ResultEmpty:
		return "empty"
	case ResultStale:
		return "stale"
	case ResultUpdated:
		return "updated"
	default:
		return "unknown"
	}
}

// Reload triggers, used as metric labels.
const (
	TriggerStartup = "startup"
	TriggerPoll    = "poll"
	TriggerWatch   = "watch"
	TriggerManual  = "manual"
)

// Modes reported by Mode.
const (
	ModeStopped  = "stopped"
	ModePoll     = "poll"
	ModePushPoll = "push+poll"
)

// TableReader reads the source. Satisfied by *source.Reader.
type TableReader interface {
	Read(ctx context.Context, path string) (source.Table, error)
}

// Builder aggregates a table. Satisfied by *aggregate.Aggregator.
type Builder interface {
	Aggregate(t source.Table) (models.Snapshot, bool)
}

// Publisher stores the current snapshot. Satisfied by *snapshot.Store.
type Publisher interface {
	Replace(models.Snapshot)
}

// Notifier fans a new snapshot out to listeners. Satisfied by *snapshot.Subscribers.
type Notifier interface {
	Notify(models.Snapshot)
}

// Config holds detector settings.
type Config struct {
	Path             string
	PollInterval     time.Duration
	WatchEnabled     bool
	WatchDebounce    time.Duration
	WatchStopTimeout time.Duration
}

// DefaultConfig returns a 5s poll with the file watcher enabled.
func DefaultConfig(path string) Config {
	return Config{
		Path:             path,
		PollInterval:     5 * time.Second,
		WatchEnabled:     true,
		WatchDebounce:    250 * time.Millisecond,
		WatchStopTimeout: 2 * time.Second,
	}
}

// Stats is a point-in-time copy of the detector counters.
type Stats struct {
	Reloads      int64 `json:"reloads"`
	Updates      int64 `json:"updates"`
	Skipped      int64 `json:"skipped"`
	ReadFailures int64 `json:"read_failures"`
	PushEvents   int64 `json:"push_events"`
}

// Detector decides when the source has changed and republishes the snapshot.
type Detector struct {
	cfg        Config
	reader     TableReader
	builder    Builder
	publisher  Publisher
	notifier   Notifier
	newWatcher WatcherFactory
	stat       func(string) (os.FileInfo, error)

	// mu guards lastSeen and serializes the publish step.
	mu       sync.Mutex
	lastSeen time.Time

	mode atomic.Value // string

	reloads      atomic.Int64
	updates      atomic.Int64
	skipped      atomic.Int64
	readFailures atomic.Int64
	pushEvents   atomic.Int64
}

// Option configures a Detector.
type Option func(*Detector)

// WithWatcherFactory replaces the fsnotify watcher.
func WithWatcherFactory(f WatcherFactory) Option {
	return func(d *Detector) {
		d.newWatcher = f
	}
}

// New creates a detector. Zero durations in cfg take their defaults.
func New(cfg Config, reader TableReader, builder Builder, publisher Publisher, notifier Notifier, opts ...Option) *Detector {
	def := DefaultConfig(cfg.Path)
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = def.PollInterval
	}
	if cfg.WatchDebounce < 0 {
		cfg.WatchDebounce = def.WatchDebounce
	}
	if cfg.WatchStopTimeout <= 0 {
		cfg.WatchStopTimeout = def.WatchStopTimeout
	}

	d := &Detector{
		cfg:        cfg,
		reader:     reader,
		builder:    builder,
		publisher:  publisher,
		notifier:   notifier,
		newWatcher: NewFileWatcherFactory(),
		stat:       os.Stat,
	}
	d.mode.Store(ModeStopped)
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Mode reports which triggers are armed.
func (d *Detector) Mode() string {
	return d.mode.Load().(string)
}

// Stats returns the detector counters.
func (d *Detector) Stats() Stats {
	return Stats{
		Reloads:      d.reloads.Load(),
		Updates:      d.updates.Load(),
		Skipped:      d.skipped.Load(),
		ReadFailures: d.readFailures.Load(),
		PushEvents:   d.pushEvents.Load(),
	}
}

// Reload runs the reload gate once. force bypasses the modification time
// check. Safe to call concurrently; at most one snapshot is published per
// modification.
func (d *Detector) Reload(ctx context.Context, force bool) (Result, error) {
	return d.reload(ctx, force, TriggerManual)
}

func (d *Detector) reload(ctx context.Context, force bool, trigger string) (result Result, err error) {
	d.reloads.Add(1)
	start := time.Now()
	read := false
	defer func() {
		metrics.RecordReload(trigger, result.String(), time.Since(start), read)
		if result != ResultUpdated {
			d.skipped.Add(1)
		}
	}()

	info, err := d.stat(d.cfg.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return ResultAbsent, nil
	}
	if err != nil {
		d.readFailures.Add(1)
		logging.Warn().Err(err).Str("path", d.cfg.Path).Msg("Source stat failed")
		return ResultReadFailed, err
	}
	mtime := info.ModTime()

	d.mu.Lock()
	seen := d.lastSeen
	d.mu.Unlock()
	if !force && !mtime.After(seen) {
		return ResultUnchanged, nil
	}

	read = true
	table, err := d.reader.Read(ctx, d.cfg.Path)
	if errors.Is(err, source.ErrNotFound) {
		return ResultAbsent, nil
	}
	if err != nil {
		d.readFailures.Add(1)
		logging.Error().
			Err(err).
			Str("path", d.cfg.Path).
			Str("trigger", trigger).
			Msg("Source read failed after retries")
		return ResultReadFailed, err
	}

	snap, ok := d.builder.Aggregate(table)
	if !ok {
		d.mu.Lock()
		if mtime.After(d.lastSeen) {
			d.lastSeen = mtime
		}
		d.mu.Unlock()
		logging.Debug().Str("path", d.cfg.Path).Msg("Source has no rows, keeping current snapshot")
		return ResultEmpty, nil
	}

	d.mu.Lock()
	if !force && !mtime.After(d.lastSeen) {
		d.mu.Unlock()
		return ResultStale, nil
	}
	d.publisher.Replace(snap)
	if mtime.After(d.lastSeen) {
		d.lastSeen = mtime
	}
	d.mu.Unlock()

	d.updates.Add(1)
	metrics.RecordSnapshot(snap.RowCount, productCount(snap), *snap.BuiltAt)

	event := logging.Info().
		Str("trigger", trigger).
		Int("rows", snap.RowCount).
		Int("products", productCount(snap))
	if snap.TotalSales != nil {
		event = event.Float64("total_sales", *snap.TotalSales)
	}
	if snap.LastTimestamp != nil {
		event = event.Str("last_timestamp", *snap.LastTimestamp)
	}
	event.Msg("Snapshot updated")

	if d.notifier != nil {
		d.notifier.Notify(snap)
	}
	return ResultUpdated, nil
}

// productCount returns the number of distinct products in either map.
func productCount(s models.Snapshot) int {
	n := len(s.SalesByProduct)
	for k := range s.StockByProduct {
		if _, ok := s.SalesByProduct[k]; !ok {
			n++
		}
	}
	return n
}

// RunWithContext populates the initial snapshot, arms the push trigger if
// available, then polls until ctx is cancelled. Reloads already underway
// when ctx is cancelled are allowed to finish their retries.
func (d *Detector) RunWithContext(ctx context.Context) error {
	reloadCtx := context.WithoutCancel(ctx)

	_, _ = d.reload(reloadCtx, true, TriggerStartup)

	var watcher Watcher
	if d.cfg.WatchEnabled && d.newWatcher != nil {
		watcher = d.newWatcher(d.cfg.Path, d.cfg.WatchDebounce, func() {
			d.pushEvents.Add(1)
			metrics.WatcherEvents.Inc()
			_, _ = d.reload(reloadCtx, false, TriggerWatch)
		})
		if err := watcher.Start(); err != nil {
			logging.Warn().
				Err(err).
				Str("path", d.cfg.Path).
				Msg("File watcher disabled, using polling only")
			watcher = nil
		}
	}

	if watcher != nil {
		d.mode.Store(ModePushPoll)
		defer func() {
			if err := watcher.Close(d.cfg.WatchStopTimeout); err != nil {
				logging.Warn().Err(err).Msg("File watcher stop")
			}
		}()
	} else {
		d.mode.Store(ModePoll)
	}
	defer d.mode.Store(ModeStopped)

	logging.Info().
		Str("path", d.cfg.Path).
		Str("mode", d.Mode()).
		Dur("poll_interval", d.cfg.PollInterval).
		Msg("Change detector started")

	ticker := time.NewTicker(d.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logging.Info().Msg("Change detector stopped")
			return ctx.Err()
		case <-ticker.C:
			_, _ = d.reload(reloadCtx, false, TriggerPoll)
		}
	}
}
