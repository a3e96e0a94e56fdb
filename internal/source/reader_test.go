// Stockpulse - Live Sales and Inventory Snapshot Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/stockpulse

package source

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/tomtom215/stockpulse/internal/logging"
)

//nolint:gochecknoinits // init ensures consistent logging for tests
func init() {
	logging.Init(logging.Config{
		Level:  "info",
		Format: "console",
		Output: io.Discard,
	})
}

func writeSource(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sales.csv")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write source: %v", err)
	}
	return path
}

func TestReader_Read(t *testing.T) {
	path := writeSource(t, "\xef\xbb\xbf timestamp ,produto,vendas,estoque\n"+
		"2025-01-01T10:00:00,A,3,10\n"+
		"\n"+
		"2025-01-01T10:01:00,B,2,5\n")

	table, err := NewReader(DefaultOptions()).Read(context.Background(), path)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}

	wantCols := []string{"timestamp", "produto", "vendas", "estoque"}
	if strings.Join(table.Columns, ",") != strings.Join(wantCols, ",") {
		t.Errorf("columns = %v, want %v", table.Columns, wantCols)
	}
	if table.Len() != 2 {
		t.Fatalf("rows = %d, want 2", table.Len())
	}
	if p, _ := table.Rows[1].String("produto"); p != "B" {
		t.Errorf("second row product = %q, want B", p)
	}
	if v, ok := table.Rows[0].Float("vendas"); !ok || v != 3 {
		t.Errorf("first row sales = %v,%v, want 3,true", v, ok)
	}
}

func TestReader_Delimiter(t *testing.T) {
	path := writeSource(t, "produto;vendas\nA;4\n")
	table, err := NewReader(Options{Delimiter: ';'}).Read(context.Background(), path)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if v, ok := table.Rows[0].Float("vendas"); !ok || v != 4 {
		t.Errorf("sales = %v,%v, want 4,true", v, ok)
	}
}

func TestReader_Missing(t *testing.T) {
	r := NewReader(DefaultOptions())
	opens := 0
	r.open = func(path string) (io.ReadCloser, error) {
		opens++
		return os.Open(path)
	}

	_, err := r.Read(context.Background(), filepath.Join(t.TempDir(), "absent.csv"))
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	if opens != 1 {
		t.Errorf("opens = %d, want 1 (no retry on missing file)", opens)
	}
}

func TestReader_EmptyFile(t *testing.T) {
	path := writeSource(t, "")
	table, err := NewReader(DefaultOptions()).Read(context.Background(), path)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if table.Len() != 0 || len(table.Columns) != 0 {
		t.Errorf("expected empty table, got %+v", table)
	}
}

func TestReader_ShortRowPadded(t *testing.T) {
	path := writeSource(t, "produto,vendas,estoque\nA,1,9\nB,2\n")
	table, err := NewReader(DefaultOptions()).Read(context.Background(), path)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if table.Rows[1].Has("estoque") {
		t.Error("trailing cell of a short row should be absent")
	}
}

// TestReader_RetryBound checks that a file which never parses is read
// exactly five times with at least the backoff between attempts.
func TestReader_RetryBound(t *testing.T) {
	path := writeSource(t, "produto,vendas\nA,1,extra,fields\n")

	r := NewReader(DefaultOptions())
	var (
		mu    sync.Mutex
		times []time.Time
	)
	r.open = func(p string) (io.ReadCloser, error) {
		mu.Lock()
		times = append(times, time.Now())
		mu.Unlock()
		return os.Open(p)
	}

	_, err := r.Read(context.Background(), path)
	if !errors.Is(err, ErrExhausted) {
		t.Fatalf("err = %v, want ErrExhausted", err)
	}
	var ex *ExhaustedError
	if !errors.As(err, &ex) || ex.Attempts != 5 {
		t.Fatalf("expected ExhaustedError with 5 attempts, got %v", err)
	}

	if len(times) != 5 {
		t.Fatalf("attempts = %d, want 5", len(times))
	}
	for i := 1; i < len(times); i++ {
		if gap := times[i].Sub(times[i-1]); gap < 200*time.Millisecond {
			t.Errorf("gap before attempt %d = %v, want >= 200ms", i+1, gap)
		}
	}
}

func TestReader_RecoversMidRetry(t *testing.T) {
	path := writeSource(t, "produto,vendas\n\"A,1\n")

	r := NewReader(Options{Attempts: 5, Backoff: 10 * time.Millisecond})
	calls := 0
	r.open = func(p string) (io.ReadCloser, error) {
		calls++
		if calls == 3 {
			if err := os.WriteFile(p, []byte("produto,vendas\nA,1\n"), 0o600); err != nil {
				t.Fatalf("rewrite: %v", err)
			}
		}
		return os.Open(p)
	}

	table, err := r.Read(context.Background(), path)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if calls != 3 || table.Len() != 1 {
		t.Errorf("calls = %d rows = %d, want 3 and 1", calls, table.Len())
	}
}

func TestReader_ContextCancelStopsRetry(t *testing.T) {
	path := writeSource(t, "a,b\n1,2,3\n")

	ctx, cancel := context.WithCancel(context.Background())
	r := NewReader(Options{Attempts: 5, Backoff: time.Second})
	r.open = func(p string) (io.ReadCloser, error) {
		cancel()
		return os.Open(p)
	}

	start := time.Now()
	_, err := r.Read(ctx, path)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if time.Since(start) > 500*time.Millisecond {
		t.Error("cancelled read should not wait out the backoff")
	}
}
