// Stockpulse - Live Sales and Inventory Snapshot Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/stockpulse

package simulate

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/tomtom215/stockpulse/internal/aggregate"
)

// Timestamp layouts written by the producers. Both are zone-less UTC.
const (
	batchTimestampLayout  = "2006-01-02T15:04"
	appendTimestampLayout = "2006-01-02T15:04:05"
)

// DefaultProducts is the catalogue used by the batch generator.
var DefaultProducts = []string{"Produto A", "Produto B", "Produto C"}

// ErrInvalidOptions is returned when GenerateOptions cannot produce any rows.
var ErrInvalidOptions = errors.New("simulate: invalid options")

// GenerateOptions configures Generate.
type GenerateOptions struct {
	// Duration is the time window covered, ending now.
	Duration time.Duration

	// Interval is the spacing between timestamps.
	Interval time.Duration

	Products     []string
	InitialStock int

	// Seed makes the output reproducible when non-nil.
	Seed *uint64

	// Now defaults to time.Now.
	Now func() time.Time
}

// DefaultGenerateOptions returns a 30 minute window at 5 minute steps.
func DefaultGenerateOptions() GenerateOptions {
	return GenerateOptions{
		Duration:     30 * time.Minute,
		Interval:     5 * time.Minute,
		Products:     DefaultProducts,
		InitialStock: 100,
	}
}

// Generate overwrites path with a batch of rows covering opts.Duration.
// Every timestamp carries one row per product with 0..10 sales; stock only
// decreases and never goes below zero. The file is replaced atomically so a
// running detector never sees a partial write. Returns the number of rows.
func Generate(path string, opts GenerateOptions) (int, error) {
	if opts.Interval <= 0 || opts.Duration < 0 || len(opts.Products) == 0 {
		return 0, ErrInvalidOptions
	}
	if opts.InitialStock < 0 {
		opts.InitialStock = 0
	}
	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}

	rng := newRand(opts.Seed)
	start := now().UTC().Add(-opts.Duration)
	steps := int(opts.Duration/opts.Interval) + 1

	stock := make(map[string]int, len(opts.Products))
	for _, p := range opts.Products {
		stock[p] = opts.InitialStock
	}

	records := make([][]string, 0, steps*len(opts.Products))
	for i := 0; i < steps; i++ {
		ts := start.Add(time.Duration(i) * opts.Interval).Format(batchTimestampLayout)
		for _, p := range opts.Products {
			sales := rng.IntN(11)
			stock[p] = max(0, stock[p]-sales)
			records = append(records, record(ts, p, sales, stock[p]))
		}
	}

	if err := writeAtomic(path, func(w io.Writer) error {
		cw := csv.NewWriter(w)
		if err := cw.Write(aggregate.ExpectedColumns); err != nil {
			return err
		}
		if err := cw.WriteAll(records); err != nil {
			return err
		}
		return cw.Error()
	}); err != nil {
		return 0, err
	}
	return len(records), nil
}

func record(ts, product string, sales, stock int) []string {
	return []string{ts, product, strconv.Itoa(sales), strconv.Itoa(stock)}
}

func newRand(seed *uint64) *rand.Rand {
	if seed != nil {
		return rand.New(rand.NewPCG(*seed, *seed))
	}
	return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
}

// writeAtomic writes through a temp file in the target directory and renames
// it over path.
func writeAtomic(path string, write func(io.Writer) error) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("simulate: create directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("simulate: create temp file: %w", err)
	}
	tmpName := tmp.Name()
	cleanup := func() {
		_ = os.Remove(tmpName) //nolint:errcheck // best effort
	}
	if err := tmp.Chmod(0o644); err != nil {
		_ = tmp.Close() //nolint:errcheck // already failing
		cleanup()
		return fmt.Errorf("simulate: chmod temp file: %w", err)
	}

	if err := write(tmp); err != nil {
		_ = tmp.Close() //nolint:errcheck // already failing
		cleanup()
		return fmt.Errorf("simulate: write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("simulate: close temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		cleanup()
		return fmt.Errorf("simulate: replace %s: %w", path, err)
	}
	return nil
}
