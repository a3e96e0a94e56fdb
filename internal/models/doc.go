// Stockpulse - Live Sales and Inventory Snapshot Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/stockpulse

/*
Package models defines the data structures shared across Stockpulse.

Key Components:

  - Snapshot: the aggregated dashboard state built from the source file
  - Message: the envelope of every WebSocket frame

Snapshot fields that cannot be computed from the current file are nil and
encode as JSON null; the per-product maps are always present, possibly empty:

	{
	  "total_sales": 42,
	  "stock_by_product": {"Produto A": 81},
	  "sales_by_product": {"Produto A": 19},
	  "row_count": 12,
	  "last_timestamp": "2025-01-01T10:30:00",
	  "built_at": "2025-01-01T10:30:02Z"
	}

Push frames wrap a snapshot:

	{"type": "snapshot", "data": { ... }}

A built Snapshot is never modified; Clone it before mutating.
*/
package models
