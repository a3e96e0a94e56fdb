// Stockpulse - Live Sales and Inventory Snapshot Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/stockpulse

package api

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/tomtom215/stockpulse/internal/validation"
)

// HistoryRequest represents the validated query parameters for /api/historico.
//
// Fields:
//   - Limit: rows to return, at least 1 and at most the configured maximum
type HistoryRequest struct {
	Limit int `query:"limit" validate:"min=1"`
}

// parseHistoryRequest reads and validates the history query. On failure it
// returns the error body to send with a 400.
func parseHistoryRequest(r *http.Request, defaultLimit, maxLimit int) (HistoryRequest, *APIError) {
	req := HistoryRequest{Limit: defaultLimit}

	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return req, &APIError{
				Code:    ErrCodeValidation,
				Message: "limit must be an integer",
				Details: map[string]interface{}{"field": "limit", "tag": "integer", "value": sanitizeLogValue(raw)},
			}
		}
		req.Limit = n
	}

	if apiErr := validateRequest(&req); apiErr != nil {
		return req, apiErr
	}
	if req.Limit > maxLimit {
		return req, &APIError{
			Code:    ErrCodeValidation,
			Message: fmt.Sprintf("limit must be %d or less", maxLimit),
			Details: map[string]interface{}{"field": "limit", "tag": "max", "value": req.Limit},
		}
	}
	return req, nil
}

// validateRequest validates a struct using go-playground/validator.
// Returns nil if validation passes.
func validateRequest(v interface{}) *APIError {
	validationErr := validation.ValidateStruct(v)
	if validationErr == nil {
		return nil
	}

	apiErr := validationErr.ToAPIError()
	return &APIError{
		Code:    apiErr.Code,
		Message: apiErr.Message,
		Details: apiErr.Details,
	}
}
