// Stockpulse - Live Sales and Inventory Snapshot Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/stockpulse

// Package aggregate turns a parsed source table into a Snapshot.
//
// Missing columns and malformed cells degrade the affected fields instead of
// failing the aggregation. A malformed numeric cell is treated as absent: it
// adds nothing to the sales sums and does not overwrite a product's stock.
package aggregate

import (
	"math"
	"sort"
	"time"

	"github.com/tomtom215/stockpulse/internal/logging"
	"github.com/tomtom215/stockpulse/internal/metrics"
	"github.com/tomtom215/stockpulse/internal/models"
	"github.com/tomtom215/stockpulse/internal/source"
)

// Expected source columns.
const (
	ColumnTimestamp = "timestamp"
	ColumnProduct   = "produto"
	ColumnSales     = "vendas"
	ColumnStock     = "estoque"
)

// ExpectedColumns lists the columns the aggregation reads.
var ExpectedColumns = []string{ColumnTimestamp, ColumnProduct, ColumnSales, ColumnStock}

// Aggregator builds snapshots. The zero value uses time.Now.
type Aggregator struct {
	Now func() time.Time
}

// New returns an Aggregator on the wall clock.
func New() *Aggregator {
	return &Aggregator{Now: time.Now}
}

// MissingColumns returns the expected columns absent from t, sorted.
func MissingColumns(t source.Table) []string {
	var missing []string
	for _, c := range ExpectedColumns {
		if !t.HasColumn(c) {
			missing = append(missing, c)
		}
	}
	sort.Strings(missing)
	return missing
}

// Aggregate computes the snapshot for t. It returns false when t has no rows;
// an empty read never replaces the current snapshot.
func (a *Aggregator) Aggregate(t source.Table) (models.Snapshot, bool) {
	if t.Len() == 0 {
		return models.Snapshot{}, false
	}

	if missing := MissingColumns(t); len(missing) > 0 {
		logging.Warn().
			Strs("missing", missing).
			Strs("columns", t.Columns).
			Msg("Source is missing expected columns")
	}

	hasTS := t.HasColumn(ColumnTimestamp)
	hasProduct := t.HasColumn(ColumnProduct)
	hasSales := t.HasColumn(ColumnSales)
	hasStock := t.HasColumn(ColumnStock)

	snap := models.EmptySnapshot()
	snap.RowCount = t.Len()

	var (
		total        float64
		latest       time.Time
		latestRaw    string
		haveLatest   bool
		badSales     int
		badStock     int
		badTimestamp int
	)

	for _, row := range t.Rows {
		product, hasProductCell := "", false
		if hasProduct {
			product, hasProductCell = row.String(ColumnProduct)
		}

		sales, salesOK := 0.0, false
		if hasSales {
			sales, salesOK = row.Float(ColumnSales)
			if !salesOK && row.Malformed(ColumnSales) {
				badSales++
			}
			// A cell that would push a sum past float64 range is malformed too;
			// the snapshot must stay JSON-encodable.
			if salesOK && (overflows(total, sales) ||
				(hasProductCell && overflows(snap.SalesByProduct[product], sales))) {
				salesOK = false
				badSales++
			}
			if salesOK {
				total += sales
			}
		}

		if hasProductCell {
			if hasSales {
				if _, seen := snap.SalesByProduct[product]; !seen {
					snap.SalesByProduct[product] = 0
				}
				if salesOK {
					snap.SalesByProduct[product] += sales
				}
			}
			if hasStock {
				if stock, ok := row.Float(ColumnStock); ok {
					snap.StockByProduct[product] = stock
				} else if row.Malformed(ColumnStock) {
					badStock++
				}
			}
		}

		if hasTS {
			raw, present := row.String(ColumnTimestamp)
			if !present {
				continue
			}
			ts, ok := source.ParseTimestamp(raw)
			if !ok {
				badTimestamp++
				continue
			}
			if !haveLatest || ts.After(latest) {
				latest, latestRaw, haveLatest = ts, raw, true
			}
		}
	}

	if hasSales {
		snap.TotalSales = &total
	}
	if haveLatest {
		s := source.FormatTimestamp(latest, source.HasZone(latestRaw))
		snap.LastTimestamp = &s
	}

	if badSales+badStock+badTimestamp > 0 {
		metrics.MalformedCells.WithLabelValues(ColumnSales).Add(float64(badSales))
		metrics.MalformedCells.WithLabelValues(ColumnStock).Add(float64(badStock))
		metrics.MalformedCells.WithLabelValues(ColumnTimestamp).Add(float64(badTimestamp))
		logging.Warn().
			Int("sales", badSales).
			Int("stock", badStock).
			Int("timestamp", badTimestamp).
			Msg("Malformed cells treated as absent")
	}

	now := time.Now
	if a != nil && a.Now != nil {
		now = a.Now
	}
	built := now()
	snap.BuiltAt = &built

	return snap, true
}

// overflows reports whether sum+v leaves the finite float64 range.
func overflows(sum, v float64) bool {
	return math.IsInf(sum+v, 0)
}
