// Stockpulse - Live Sales and Inventory Snapshot Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/stockpulse

package source

import (
	"bufio"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/tomtom215/stockpulse/internal/logging"
	"github.com/tomtom215/stockpulse/internal/metrics"
)

var (
	// ErrNotFound means the source does not exist yet. Callers skip the cycle.
	ErrNotFound = errors.New("source not found")

	// ErrExhausted means every read attempt failed. Returned errors wrap the
	// last underlying cause; match with errors.Is.
	ErrExhausted = errors.New("source read attempts exhausted")
)

// ExhaustedError carries the attempt count and the last failure.
type ExhaustedError struct {
	Attempts int
	Err      error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("source: read failed after %d attempts: %v", e.Attempts, e.Err)
}

func (e *ExhaustedError) Unwrap() error { return e.Err }

// Is matches ErrExhausted.
func (e *ExhaustedError) Is(target error) bool { return target == ErrExhausted }

// Options configures a Reader.
type Options struct {
	// Delimiter separates fields. Defaults to ','.
	Delimiter rune

	// Attempts is the total number of reads tried before giving up.
	Attempts int

	// Backoff is the fixed pause between attempts.
	Backoff time.Duration
}

// DefaultOptions returns five attempts 200ms apart on a comma-separated file.
func DefaultOptions() Options {
	return Options{
		Delimiter: ',',
		Attempts:  5,
		Backoff:   200 * time.Millisecond,
	}
}

// Reader parses the source with bounded retry. Safe for concurrent use.
type Reader struct {
	opts Options
	open func(path string) (io.ReadCloser, error)
}

// NewReader creates a Reader. Zero fields in opts take their defaults.
func NewReader(opts Options) *Reader {
	def := DefaultOptions()
	if opts.Delimiter == 0 {
		opts.Delimiter = def.Delimiter
	}
	if opts.Attempts <= 0 {
		opts.Attempts = def.Attempts
	}
	if opts.Backoff < 0 {
		opts.Backoff = 0
	}
	return &Reader{
		opts: opts,
		open: func(path string) (io.ReadCloser, error) { return os.Open(path) },
	}
}

// Read parses path. A missing file returns ErrNotFound without retrying.
// Parse and I/O failures are retried; the pause between attempts is cut
// short if ctx is cancelled.
func (r *Reader) Read(ctx context.Context, path string) (Table, error) {
	var lastErr error
	for attempt := 1; attempt <= r.opts.Attempts; attempt++ {
		if attempt > 1 {
			if err := sleepCtx(ctx, r.opts.Backoff); err != nil {
				return Table{}, fmt.Errorf("source: read interrupted after %d attempts: %w", attempt-1, err)
			}
		}

		table, err := r.readOnce(path)
		if err == nil {
			metrics.SourceReadAttempts.WithLabelValues("ok").Inc()
			return table, nil
		}
		if errors.Is(err, fs.ErrNotExist) {
			return Table{}, ErrNotFound
		}

		metrics.SourceReadAttempts.WithLabelValues("error").Inc()
		logging.Debug().
			Err(err).
			Str("path", path).
			Int("attempt", attempt).
			Int("max_attempts", r.opts.Attempts).
			Msg("Source read attempt failed")
		lastErr = err
	}
	return Table{}, &ExhaustedError{Attempts: r.opts.Attempts, Err: lastErr}
}

const utf8BOM = "\xef\xbb\xbf"

func (r *Reader) readOnce(path string) (Table, error) {
	f, err := r.open(path)
	if err != nil {
		return Table{}, err
	}
	defer f.Close()

	br := bufio.NewReader(f)
	if b, err := br.Peek(len(utf8BOM)); err == nil && string(b) == utf8BOM {
		if _, err := br.Discard(len(utf8BOM)); err != nil {
			return Table{}, err
		}
	}

	cr := csv.NewReader(br)
	cr.Comma = r.opts.Delimiter
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return Table{}, nil
	}
	if err != nil {
		return Table{}, fmt.Errorf("read header: %w", err)
	}
	columns := make([]string, len(header))
	for i, h := range header {
		columns[i] = strings.TrimSpace(h)
	}

	table := Table{Columns: columns}
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return Table{}, fmt.Errorf("read record: %w", err)
		}
		if len(rec) > len(columns) {
			line, _ := cr.FieldPos(0)
			return Table{}, fmt.Errorf("line %d: expected %d fields, saw %d", line, len(columns), len(rec))
		}
		table.Rows = append(table.Rows, NewRow(columns, rec))
	}
	return table, nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
