// Stockpulse - Live Sales and Inventory Snapshot Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/stockpulse

package models

import "time"

// Message types on the push channel.
const (
	MessageTypeSnapshot = "snapshot"
	MessageTypePing     = "ping"
	MessageTypePong     = "pong"
)

// Message is the envelope of every frame sent to push subscribers.
type Message struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// NewSnapshotMessage wraps s in a snapshot frame.
func NewSnapshotMessage(s Snapshot) Message {
	return Message{Type: MessageTypeSnapshot, Data: s}
}

// BuiltAt returns when the snapshot carried by a snapshot frame was built.
// It reports false for other frames and for the default snapshot.
func (m Message) BuiltAt() (time.Time, bool) {
	s, ok := m.Data.(Snapshot)
	if !ok || m.Type != MessageTypeSnapshot || s.IsEmpty() {
		return time.Time{}, false
	}
	return *s.BuiltAt, true
}
