// Stockpulse - Live Sales and Inventory Snapshot Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/stockpulse

// Package logging provides the zerolog-backed structured logger shared by every
// Stockpulse component.
//
// The package keeps one global logger configured once at startup:
//
//	logging.Init(logging.Config{Level: "info", Format: "json"})
//
//	logging.Info().Int("rows", n).Msg("snapshot updated")
//	logging.Warn().Err(err).Str("path", p).Msg("source read failed after retries")
//
// # Configuration
//
// Environment variables (applied through internal/config):
//
//	LOG_LEVEL   - trace, debug, info, warn, error (default: info)
//	LOG_FORMAT  - json, console (default: json)
//	LOG_CALLER  - include file:line (default: false)
//	LOG_FILE    - also append JSON records to this file (default: unset)
//
// # Context
//
// HTTP middleware stores a request ID and a short correlation ID in the request
// context. Ctx(ctx) returns a logger carrying both fields.
//
// # slog bridge
//
// The supervisor tree (suture + sutureslog) logs through log/slog. NewSlogLogger
// returns an *slog.Logger whose records are written by the global zerolog logger,
// so supervisor events share the same output and format.
//
// Always terminate an event chain with Msg or Send; an unterminated chain is
// never written.
package logging
