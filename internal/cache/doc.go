// Stockpulse - Live Sales and Inventory Snapshot Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/stockpulse

/*
Package cache provides the in-memory caches used on the API read path.

LRU is a generic, thread-safe least recently used cache with lazy TTL
expiry. TableCache builds on it to memoize parsed source tables for the
history endpoint, keyed by the file's path, size and modification time, so
repeated polls of an unchanged file skip the CSV parse:

	reader := cache.NewTableCache(source.NewReader(opts), 4, time.Second)
	table, err := reader.Read(ctx, path)

Lookups are counted in the table_cache_lookups_total metric.
*/
package cache
