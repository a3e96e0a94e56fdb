// Stockpulse - Live Sales and Inventory Snapshot Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/stockpulse

package source

import (
	"bytes"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

// Row is one record of the source. Cells are kept as raw strings, indexed by
// the table header.
type Row struct {
	columns []string
	index   map[string]int
	cells   []string
}

// NewRow builds a row from a header and its cells. Missing trailing cells are
// treated as absent.
func NewRow(columns []string, cells []string) Row {
	index := make(map[string]int, len(columns))
	for i, c := range columns {
		if _, dup := index[c]; !dup {
			index[c] = i
		}
	}
	return Row{columns: columns, index: index, cells: cells}
}

// Has reports whether the row carries a non-blank value for col.
func (r Row) Has(col string) bool {
	_, ok := r.String(col)
	return ok
}

// String returns the trimmed cell for col. Blank cells are absent.
func (r Row) String(col string) (string, bool) {
	i, ok := r.index[col]
	if !ok || i >= len(r.cells) {
		return "", false
	}
	v := strings.TrimSpace(r.cells[i])
	if v == "" {
		return "", false
	}
	return v, true
}

// Float parses the cell for col as a number.
func (r Row) Float(col string) (float64, bool) {
	s, ok := r.String(col)
	if !ok {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// Time parses the cell for col with ParseTimestamp.
func (r Row) Time(col string) (time.Time, bool) {
	s, ok := r.String(col)
	if !ok {
		return time.Time{}, false
	}
	return ParseTimestamp(s)
}

// Malformed reports whether col holds a value that is present but does not
// parse as a number.
func (r Row) Malformed(col string) bool {
	if _, ok := r.String(col); !ok {
		return false
	}
	_, ok := r.Float(col)
	return !ok
}

// MarshalJSON encodes the row as an object in header order. Integer and
// float cells become JSON numbers, blank cells null, everything else a string.
func (r Row) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, col := range r.columns {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(col)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')

		var val []byte
		raw, ok := "", false
		if i < len(r.cells) {
			raw = strings.TrimSpace(r.cells[i])
			ok = raw != ""
		}
		switch {
		case !ok:
			val = []byte("null")
		case isNumber(raw):
			val = []byte(raw)
		default:
			if val, err = json.Marshal(raw); err != nil {
				return nil, err
			}
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// isNumber reports whether s is a valid JSON number literal.
func isNumber(s string) bool {
	if s == "" || (s[0] != '-' && (s[0] < '0' || s[0] > '9')) {
		return false
	}
	return json.Valid([]byte(s))
}

// Table is the parsed source: header plus rows in file order.
type Table struct {
	Columns []string
	Rows    []Row
}

// HasColumn reports whether the header contains name.
func (t Table) HasColumn(name string) bool {
	for _, c := range t.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// Len returns the number of data rows.
func (t Table) Len() int {
	return len(t.Rows)
}

// Tail returns the last limit rows, most recent last. When every row has a
// parseable timestamp in timeCol the rows are stably sorted by it first;
// otherwise file order is kept.
func Tail(t Table, timeCol string, limit int) []Row {
	if limit <= 0 || len(t.Rows) == 0 {
		return []Row{}
	}

	rows := make([]Row, len(t.Rows))
	copy(rows, t.Rows)

	if t.HasColumn(timeCol) {
		stamps := make([]time.Time, len(rows))
		sortable := true
		for i, r := range rows {
			ts, ok := r.Time(timeCol)
			if !ok {
				sortable = false
				break
			}
			stamps[i] = ts
		}
		if sortable {
			idx := make([]int, len(rows))
			for i := range idx {
				idx[i] = i
			}
			sort.SliceStable(idx, func(a, b int) bool {
				return stamps[idx[a]].Before(stamps[idx[b]])
			})
			sorted := make([]Row, len(rows))
			for i, j := range idx {
				sorted[i] = rows[j]
			}
			rows = sorted
		}
	}

	if len(rows) > limit {
		rows = rows[len(rows)-limit:]
	}
	return rows
}
