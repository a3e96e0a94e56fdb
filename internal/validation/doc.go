// Stockpulse - Live Sales and Inventory Snapshot Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/stockpulse

// Package validation provides struct validation using go-playground/validator v10.
//
// A single validator instance is shared by the configuration loader and the
// HTTP handlers. Field names in messages come from the query, koanf or json
// tag so users see the name they typed:
//
//	type TailRequest struct {
//	    Limit int `query:"limit" validate:"min=1,max=1000"`
//	}
//
//	if err := validation.ValidateStruct(&req); err != nil {
//	    apiErr := err.ToAPIError() // VALIDATION_ERROR, "limit must be at most 1000"
//	}
//
// Custom tags:
//   - delimiter: a single character other than a quote or newline
package validation
