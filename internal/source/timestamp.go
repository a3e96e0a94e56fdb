// Stockpulse - Live Sales and Inventory Snapshot Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/stockpulse

package source

import (
	"strings"
	"time"
)

// Zoned layouts carry an offset; the rest are read as wall-clock time in UTC
// and rendered without a zone.
var (
	zonedLayouts = []string{
		time.RFC3339Nano,
		"2006-01-02 15:04:05.999999999Z07:00",
	}
	localLayouts = []string{
		"2006-01-02T15:04:05.999999999",
		"2006-01-02T15:04",
		"2006-01-02 15:04:05.999999999",
		"2006-01-02 15:04",
		"2006-01-02",
	}
)

// ParseTimestamp parses s with the layouts the producer is known to emit.
func ParseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range zonedLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// HasZone reports whether s carries an explicit UTC offset.
func HasZone(s string) bool {
	s = strings.TrimSpace(s)
	for _, layout := range zonedLayouts {
		if _, err := time.Parse(layout, s); err == nil {
			return true
		}
	}
	return false
}

// FormatTimestamp renders t in ISO-8601. Zone-less inputs stay zone-less and
// fractional seconds appear only when present.
func FormatTimestamp(t time.Time, zoned bool) string {
	layout := "2006-01-02T15:04:05"
	if t.Nanosecond() != 0 {
		layout += ".999999"
	}
	if zoned {
		layout += "Z07:00"
	}
	return t.Format(layout)
}
