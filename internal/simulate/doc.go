// Stockpulse - Live Sales and Inventory Snapshot Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/stockpulse

// Package simulate produces demo data in the source file format.
//
// Generate rewrites the file with a batch covering a time window. Appender
// adds one live sale at a time, continuing each product's stock level from
// what is already in the file, which lets the change detector and the
// WebSocket push be exercised end to end:
//
//	a, _ := simulate.NewAppender(ctx, path, source.NewReader(source.DefaultOptions()), simulate.AppenderOptions{})
//	_ = a.Run(ctx, simulate.RunOptions{MinPause: 3 * time.Second, MaxPause: 8 * time.Second})
package simulate
