// Stockpulse - Live Sales and Inventory Snapshot Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/stockpulse

package models

import "time"

// Snapshot is the aggregated summary of the source at one instant.
// Every field is derived from the same read; a Snapshot is never updated in
// place once built. Use Clone before handing one to code that may mutate it.
type Snapshot struct {
	// TotalSales is the sum of the sales column over all rows.
	// Nil when the column is missing from the source.
	TotalSales *float64 `json:"total_sales"`

	// StockByProduct holds the last valid stock value per product in source order.
	StockByProduct map[string]float64 `json:"stock_by_product"`

	// SalesByProduct holds the sum of sales per product.
	SalesByProduct map[string]float64 `json:"sales_by_product"`

	// RowCount is the number of data rows in the read.
	RowCount int `json:"row_count"`

	// LastTimestamp is the maximum parseable timestamp, ISO-8601.
	// Nil when the column is missing or no cell parses.
	LastTimestamp *string `json:"last_timestamp"`

	// BuiltAt is when the snapshot was computed. Nil on the default snapshot.
	BuiltAt *time.Time `json:"built_at"`
}

// EmptySnapshot returns the default snapshot served before any successful
// reload: empty maps, zero rows, absent optional fields.
func EmptySnapshot() Snapshot {
	return Snapshot{
		StockByProduct: map[string]float64{},
		SalesByProduct: map[string]float64{},
	}
}

// IsEmpty reports whether s was never built.
func (s Snapshot) IsEmpty() bool {
	return s.BuiltAt == nil
}

// Clone returns a deep copy of s. Nil maps come back as empty maps.
func (s Snapshot) Clone() Snapshot {
	out := Snapshot{
		RowCount:       s.RowCount,
		StockByProduct: make(map[string]float64, len(s.StockByProduct)),
		SalesByProduct: make(map[string]float64, len(s.SalesByProduct)),
	}
	for k, v := range s.StockByProduct {
		out.StockByProduct[k] = v
	}
	for k, v := range s.SalesByProduct {
		out.SalesByProduct[k] = v
	}
	if s.TotalSales != nil {
		v := *s.TotalSales
		out.TotalSales = &v
	}
	if s.LastTimestamp != nil {
		v := *s.LastTimestamp
		out.LastTimestamp = &v
	}
	if s.BuiltAt != nil {
		v := *s.BuiltAt
		out.BuiltAt = &v
	}
	return out
}
