// Stockpulse - Live Sales and Inventory Snapshot Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/stockpulse

package api

import (
	"errors"
	"net/http"

	"github.com/tomtom215/stockpulse/internal/aggregate"
	"github.com/tomtom215/stockpulse/internal/logging"
	"github.com/tomtom215/stockpulse/internal/source"
)

// Data returns the current snapshot. Before the first successful reload it
// returns the empty snapshot, never an error.
func (h *Handler) Data(w http.ResponseWriter, r *http.Request) {
	respondRaw(w, r, http.StatusOK, h.snapshots.Get())
}

// History returns the last limit raw rows of the source, most recent last.
//
// A missing source answers 200 with an empty array. Any other read failure
// answers 500 with an empty array so chart clients keep a valid document.
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	req, apiErr := parseHistoryRequest(r, h.config.API.DefaultTailLimit, h.config.API.MaxTailLimit)
	if apiErr != nil {
		NewResponseWriter(w, r).ValidationError(apiErr.Message, apiErr.Details)
		return
	}

	table, err := h.reader.Read(r.Context(), h.config.Source.Path)
	switch {
	case errors.Is(err, source.ErrNotFound):
		respondRaw(w, r, http.StatusOK, []source.Row{})
		return
	case err != nil:
		logging.Ctx(r.Context()).Warn().Err(err).Str("path", h.config.Source.Path).Msg("History read failed")
		respondRaw(w, r, http.StatusInternalServerError, []source.Row{})
		return
	}

	respondRaw(w, r, http.StatusOK, source.Tail(table, aggregate.ColumnTimestamp, req.Limit))
}
