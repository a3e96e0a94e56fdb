// Stockpulse - Live Sales and Inventory Snapshot Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/stockpulse

package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/tomtom215/stockpulse/internal/validation"
)

// Rate limit constants
const (
	maxRateLimitRequests = 100000      // Maximum 100K requests per window
	minRateLimitWindow   = time.Second // Minimum 1 second window
	maxRateLimitWindow   = time.Hour   // Maximum 1 hour window
)

// logFormatAliases accepts the format names older deployments used.
var logFormatAliases = map[string]string{
	"plain": "console",
	"text":  "console",
}

// normalize lower-cases enumerated values so LOG_LEVEL=INFO works.
func (c *Config) normalize() {
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if alias, ok := logFormatAliases[c.Logging.Format]; ok {
		c.Logging.Format = alias
	}
	if c.Logging.Level == "warning" {
		c.Logging.Level = "warn"
	}
	c.Server.Environment = strings.ToLower(strings.TrimSpace(c.Server.Environment))
}

// Validate checks that required configuration is present and valid
func (c *Config) Validate() error {
	if verr := validation.ValidateStruct(c); verr != nil {
		return verr
	}
	return c.validateRateLimits()
}

// validateRateLimits validates rate limiting configuration bounds.
func (c *Config) validateRateLimits() error {
	if c.Security.RateLimitDisabled {
		return nil
	}
	if c.Security.RateLimitReqs > maxRateLimitRequests {
		return fmt.Errorf("RATE_LIMIT_REQUESTS must be between 1 and %d", maxRateLimitRequests)
	}
	if c.Security.RateLimitWindow < minRateLimitWindow || c.Security.RateLimitWindow > maxRateLimitWindow {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be between %v and %v", minRateLimitWindow, maxRateLimitWindow)
	}
	return nil
}

// HasWildcardCORS reports whether any origin is allowed.
func (c *Config) HasWildcardCORS() bool {
	for _, origin := range c.Security.CORSOrigins {
		if origin == "*" {
			return true
		}
	}
	return false
}

// ShouldWarnAboutCORS returns true if a production deployment allows every origin.
func (c *Config) ShouldWarnAboutCORS() bool {
	return c.Server.IsProduction() && c.HasWildcardCORS()
}
