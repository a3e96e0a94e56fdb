// Stockpulse - Live Sales and Inventory Snapshot Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/stockpulse

package models

import (
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
)

func TestSnapshot_CloneIsDeep(t *testing.T) {
	total := 9.0
	ts := "2025-01-01T10:00:00"
	now := time.Now()
	orig := Snapshot{
		TotalSales:     &total,
		StockByProduct: map[string]float64{"A": 7},
		SalesByProduct: map[string]float64{"A": 9},
		RowCount:       3,
		LastTimestamp:  &ts,
		BuiltAt:        &now,
	}

	c := orig.Clone()
	c.StockByProduct["A"] = 1
	c.SalesByProduct["B"] = 2
	*c.TotalSales = 100
	*c.LastTimestamp = "changed"

	if orig.StockByProduct["A"] != 7 {
		t.Errorf("stock map aliased: %v", orig.StockByProduct)
	}
	if _, ok := orig.SalesByProduct["B"]; ok {
		t.Errorf("sales map aliased: %v", orig.SalesByProduct)
	}
	if *orig.TotalSales != 9 || *orig.LastTimestamp != ts {
		t.Error("pointer fields aliased")
	}
	if c.RowCount != 3 || !c.BuiltAt.Equal(now) {
		t.Errorf("scalar fields not copied: %+v", c)
	}
}

func TestEmptySnapshot_JSON(t *testing.T) {
	s := EmptySnapshot()
	if !s.IsEmpty() {
		t.Error("expected empty snapshot")
	}

	b, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	got := string(b)
	for _, want := range []string{
		`"total_sales":null`,
		`"stock_by_product":{}`,
		`"sales_by_product":{}`,
		`"row_count":0`,
		`"last_timestamp":null`,
		`"built_at":null`,
	} {
		if !strings.Contains(got, want) {
			t.Errorf("expected %s in %s", want, got)
		}
	}
}

func TestNewSnapshotMessage(t *testing.T) {
	msg := NewSnapshotMessage(EmptySnapshot())
	b, err := json.Marshal(msg)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.HasPrefix(string(b), `{"type":"snapshot","data":{`) {
		t.Errorf("unexpected frame: %s", b)
	}
}

func TestMessage_BuiltAt(t *testing.T) {
	at := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	built := EmptySnapshot()
	built.BuiltAt = &at

	tests := []struct {
		name string
		msg  Message
		want time.Time
		ok   bool
	}{
		{"built snapshot", NewSnapshotMessage(built), at, true},
		{"default snapshot", NewSnapshotMessage(EmptySnapshot()), time.Time{}, false},
		{"pong frame", Message{Type: MessageTypePong}, time.Time{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.msg.BuiltAt()
			if ok != tt.ok || !got.Equal(tt.want) {
				t.Errorf("BuiltAt() = %v,%v want %v,%v", got, ok, tt.want, tt.ok)
			}
		})
	}
}
