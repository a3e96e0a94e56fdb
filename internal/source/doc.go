// Stockpulse - Live Sales and Inventory Snapshot Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/stockpulse

/*
Package source reads the delimited sales file that an external producer
writes to while the service is running.

The producer never coordinates with readers, so a read may observe a file
that is half written. Reader retries a bounded number of times with a fixed
pause between attempts before giving up with ErrExhausted. A missing file is
reported as ErrNotFound and is never retried: it means "no data yet".

The column set is not fixed. Rows keep their raw cells and expose typed
accessors that report absence instead of failing, leaving every degrade
decision to the aggregation step:

	table, err := source.NewReader(source.DefaultOptions()).Read(ctx, path)
	if errors.Is(err, source.ErrNotFound) {
		return // nothing to do yet
	}
	for _, row := range table.Rows {
		if v, ok := row.Float("vendas"); ok {
			total += v
		}
	}

Tail returns the most recent rows for the raw history endpoint.
*/
package source
