// Stockpulse - Live Sales and Inventory Snapshot Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/stockpulse

package simulate

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/tomtom215/stockpulse/internal/aggregate"
	"github.com/tomtom215/stockpulse/internal/logging"
	"github.com/tomtom215/stockpulse/internal/source"
)

// DefaultAppendProducts is the catalogue used by the live appender.
var DefaultAppendProducts = []string{"Produto A", "Produto B", "Produto C", "Produto D"}

// defaultStock is assumed for products not yet present in the file.
const defaultStock = 100

// TableReader reads the existing file. Satisfied by *source.Reader.
type TableReader interface {
	Read(ctx context.Context, path string) (source.Table, error)
}

// Record is one appended row.
type Record struct {
	Timestamp string
	Product   string
	Sales     int
	Stock     int
}

// AppenderOptions configures NewAppender.
type AppenderOptions struct {
	Products []string

	// Seed makes product and sales choices reproducible when non-nil.
	Seed *uint64

	// Now defaults to time.Now.
	Now func() time.Time
}

// Appender adds one random sale at a time to the end of the file, carrying
// on from the last stock level recorded for each product.
type Appender struct {
	path     string
	products []string
	now      func() time.Time

	mu    sync.Mutex
	rng   *rand.Rand
	stock map[string]int
}

// NewAppender loads the last known stock per product from path. A missing
// or unreadable file starts every product at 100.
func NewAppender(ctx context.Context, path string, reader TableReader, opts AppenderOptions) (*Appender, error) {
	products := opts.Products
	if len(products) == 0 {
		products = DefaultAppendProducts
	}
	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}

	a := &Appender{
		path:     path,
		products: products,
		now:      now,
		rng:      newRand(opts.Seed),
		stock:    make(map[string]int, len(products)),
	}
	for _, p := range products {
		a.stock[p] = defaultStock
	}

	if reader == nil {
		return a, nil
	}
	table, err := reader.Read(ctx, path)
	switch {
	case err == nil:
		a.loadStock(table)
	case errors.Is(err, source.ErrNotFound):
	case ctx.Err() != nil:
		return nil, ctx.Err()
	default:
		logging.Warn().Err(err).Str("path", path).Msg("Could not read existing stock, starting from defaults")
	}
	return a, nil
}

func (a *Appender) loadStock(t source.Table) {
	for _, row := range t.Rows {
		product, ok := row.String(aggregate.ColumnProduct)
		if !ok {
			continue
		}
		stock, ok := row.Float(aggregate.ColumnStock)
		if !ok {
			continue
		}
		a.stock[product] = int(stock)
	}
}

// Stock returns the current stock level for product.
func (a *Appender) Stock(product string) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	if s, ok := a.stock[product]; ok {
		return s
	}
	return defaultStock
}

// Append writes one row: a random product selling 1..8 units. The header is
// written first when the file is new or empty.
func (a *Appender) Append() (Record, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	product := a.products[a.rng.IntN(len(a.products))]
	sales := 1 + a.rng.IntN(8)
	current, ok := a.stock[product]
	if !ok {
		current = defaultStock
	}
	rec := Record{
		Timestamp: a.now().UTC().Format(appendTimestampLayout),
		Product:   product,
		Sales:     sales,
		Stock:     max(0, current-sales),
	}

	if err := a.write(rec); err != nil {
		return Record{}, err
	}
	a.stock[product] = rec.Stock
	return rec, nil
}

func (a *Appender) write(rec Record) error {
	if err := os.MkdirAll(filepath.Dir(a.path), 0o755); err != nil {
		return fmt.Errorf("simulate: create directory: %w", err)
	}
	f, err := os.OpenFile(a.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("simulate: open %s: %w", a.path, err)
	}
	defer func() {
		_ = f.Close() //nolint:errcheck // close after flush checked below
	}()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("simulate: stat %s: %w", a.path, err)
	}

	w := csv.NewWriter(f)
	if info.Size() == 0 {
		if err := w.Write(aggregate.ExpectedColumns); err != nil {
			return fmt.Errorf("simulate: write header: %w", err)
		}
	}
	if err := w.Write(record(rec.Timestamp, rec.Product, rec.Sales, rec.Stock)); err != nil {
		return fmt.Errorf("simulate: write row: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("simulate: flush: %w", err)
	}
	return f.Sync()
}

// RunOptions configures Run.
type RunOptions struct {
	// MinPause and MaxPause bound the random wait between rows.
	MinPause time.Duration
	MaxPause time.Duration

	// Count stops after this many rows. Zero runs until ctx is cancelled.
	Count int

	// OnAppend is called after every successful write.
	OnAppend func(Record)
}

// Run appends rows until ctx is cancelled or opts.Count is reached. Write
// errors are logged and the loop continues.
func (a *Appender) Run(ctx context.Context, opts RunOptions) error {
	if opts.MaxPause < opts.MinPause {
		opts.MaxPause = opts.MinPause
	}

	written := 0
	for {
		rec, err := a.Append()
		if err != nil {
			logging.Error().Err(err).Str("path", a.path).Msg("Failed to append row")
		} else {
			written++
			logging.Info().
				Str("product", rec.Product).
				Int("sales", rec.Sales).
				Int("stock", rec.Stock).
				Msg("Row appended")
			if opts.OnAppend != nil {
				opts.OnAppend(rec)
			}
		}
		if opts.Count > 0 && written >= opts.Count {
			return nil
		}

		timer := time.NewTimer(a.pause(opts.MinPause, opts.MaxPause))
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

func (a *Appender) pause(lo, hi time.Duration) time.Duration {
	if hi <= lo {
		return lo
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	return lo + time.Duration(a.rng.Int64N(int64(hi-lo)))
}
