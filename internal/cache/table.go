// Stockpulse - Live Sales and Inventory Snapshot Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/stockpulse

package cache

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/tomtom215/stockpulse/internal/metrics"
	"github.com/tomtom215/stockpulse/internal/source"
)

// TableReader reads and parses the source. Satisfied by *source.Reader.
type TableReader interface {
	Read(ctx context.Context, path string) (source.Table, error)
}

// TableCache memoizes parsed tables by file identity: path, size and
// modification time. A rewrite that changes any of them is a miss; the TTL
// bounds how long a same-size rewrite within one mtime tick can be served.
// Failed reads are never cached. At most one identity per path is kept: a
// newer one replaces it and a missing file drops it.
type TableCache struct {
	reader  TableReader
	entries *LRU[source.Table]
	stat    func(string) (os.FileInfo, error)

	mu      sync.Mutex
	current map[string]string
}

// NewTableCache wraps reader. Safe for concurrent use.
func NewTableCache(reader TableReader, capacity int, ttl time.Duration) *TableCache {
	return &TableCache{
		reader:  reader,
		entries: NewLRU[source.Table](capacity, ttl),
		stat:    os.Stat,
		current: make(map[string]string),
	}
}

// Read returns the cached table for the file's current identity, reading
// through on a miss. Errors from the underlying reader pass through
// unchanged, so source.ErrNotFound still matches with errors.Is.
func (c *TableCache) Read(ctx context.Context, path string) (source.Table, error) {
	info, err := c.stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			c.track(path, "")
			return source.Table{}, source.ErrNotFound
		}
		return c.reader.Read(ctx, path)
	}

	key := identity(path, info)
	if t, ok := c.entries.Get(key); ok {
		metrics.TableCacheLookups.WithLabelValues("hit").Inc()
		return t, nil
	}
	metrics.TableCacheLookups.WithLabelValues("miss").Inc()
	c.entries.CleanupExpired()

	t, err := c.reader.Read(ctx, path)
	if err != nil {
		return source.Table{}, err
	}
	c.entries.Add(key, t)
	c.track(path, key)
	return t, nil
}

// track records key as the live identity of path and evicts the one it
// replaces. An empty key forgets path.
func (c *TableCache) track(path, key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if prev, ok := c.current[path]; ok && prev != key {
		c.entries.Remove(prev)
	}
	if key == "" {
		delete(c.current, path)
		return
	}
	c.current[path] = key
}

// Len returns the number of cached tables.
func (c *TableCache) Len() int {
	return c.entries.Len()
}

func identity(path string, info os.FileInfo) string {
	return path + "|" + strconv.FormatInt(info.Size(), 10) + "|" + strconv.FormatInt(info.ModTime().UnixNano(), 10)
}
