// Stockpulse - Live Sales and Inventory Snapshot Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/stockpulse

package validation

import (
	"strings"
	"testing"
	"time"
)

func TestGetValidator_Singleton(t *testing.T) {
	if GetValidator() != GetValidator() {
		t.Error("GetValidator should return the same instance")
	}
}

type tailRequest struct {
	Limit int `query:"limit" validate:"min=1,max=1000"`
}

func TestValidateStruct_Range(t *testing.T) {
	tests := []struct {
		name    string
		limit   int
		wantErr string
	}{
		{"lower bound", 1, ""},
		{"upper bound", 1000, ""},
		{"zero", 0, "limit must be at least 1"},
		{"too large", 1001, "limit must be at most 1000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStruct(&tailRequest{Limit: tt.limit})
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("expected error")
			}
			if err.Error() != tt.wantErr {
				t.Errorf("message = %q, want %q", err.Error(), tt.wantErr)
			}
			if got := err.Errors()[0].Field(); got != "limit" {
				t.Errorf("field = %q, want limit", got)
			}
		})
	}
}

type sourceSection struct {
	Delimiter    string        `koanf:"delimiter" validate:"delimiter"`
	PollInterval time.Duration `koanf:"poll_interval" validate:"gt=0"`
}

type rootConfig struct {
	Source sourceSection `koanf:"source"`
}

func TestValidateStruct_NestedFieldPath(t *testing.T) {
	err := ValidateStruct(&rootConfig{Source: sourceSection{Delimiter: ",", PollInterval: 0}})
	if err == nil {
		t.Fatal("expected error")
	}
	if got := err.Errors()[0].Field(); got != "source.poll_interval" {
		t.Errorf("field = %q, want source.poll_interval", got)
	}
}

func TestDelimiterValidation(t *testing.T) {
	tests := []struct {
		delim string
		ok    bool
	}{
		{",", true},
		{";", true},
		{"\t", true},
		{"|", true},
		{"", false},
		{",,", false},
		{"\"", false},
		{"\n", false},
	}

	for _, tt := range tests {
		t.Run(strings.ReplaceAll(tt.delim, "\n", `\n`), func(t *testing.T) {
			err := ValidateStruct(&sourceSection{Delimiter: tt.delim, PollInterval: time.Second})
			if (err == nil) != tt.ok {
				t.Errorf("delimiter %q: err = %v, want ok=%v", tt.delim, err, tt.ok)
			}
		})
	}
}

func TestToAPIError(t *testing.T) {
	t.Run("single error", func(t *testing.T) {
		apiErr := ValidateStruct(&tailRequest{Limit: 0}).ToAPIError()
		if apiErr.Code != "VALIDATION_ERROR" {
			t.Errorf("code = %s", apiErr.Code)
		}
		if apiErr.Details["field"] != "limit" || apiErr.Details["tag"] != "min" {
			t.Errorf("details = %v", apiErr.Details)
		}
	})

	t.Run("multiple errors", func(t *testing.T) {
		apiErr := ValidateStruct(&sourceSection{Delimiter: "", PollInterval: 0}).ToAPIError()
		fields, ok := apiErr.Details["fields"].([]map[string]interface{})
		if !ok || len(fields) != 2 {
			t.Fatalf("details = %v", apiErr.Details)
		}
		if !strings.Contains(apiErr.Message, "; ") {
			t.Errorf("message should join errors: %s", apiErr.Message)
		}
	})

	t.Run("empty", func(t *testing.T) {
		apiErr := (&RequestValidationError{}).ToAPIError()
		if apiErr.Message != "Validation failed" {
			t.Errorf("message = %s", apiErr.Message)
		}
	})
}
