// Stockpulse - Live Sales and Inventory Snapshot Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/stockpulse

package config

import (
	"fmt"
	"time"
)

// Config holds all application configuration.
//
// Configuration Loading Order (Koanf v2):
//  1. Defaults: built-in values for every setting
//  2. Config File: optional YAML file (CONFIG_PATH or config.yaml)
//  3. Environment Variables: override any mapped setting
//
// Example:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal("Failed to load config:", err)
//	}
//	fmt.Println(cfg.Source.Path, cfg.Server.Addr())
type Config struct {
	Source   SourceConfig   `koanf:"source"`
	Server   ServerConfig   `koanf:"server"`
	API      APIConfig      `koanf:"api"`
	Security SecurityConfig `koanf:"security"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// SourceConfig describes the watched data file and how it is read.
type SourceConfig struct {
	// Path is the delimited file written by the producer.
	Path string `koanf:"path" validate:"required"`

	// Delimiter separates fields. Default: ","
	Delimiter string `koanf:"delimiter" validate:"delimiter"`

	// PollInterval is the period of the fallback poll. Default: 5s
	PollInterval time.Duration `koanf:"poll_interval" validate:"gte=100ms"`

	// ReadAttempts is the number of parse attempts per reload. Default: 5
	ReadAttempts int `koanf:"read_attempts" validate:"min=1,max=50"`

	// ReadBackoff is the pause between attempts. Default: 200ms
	ReadBackoff time.Duration `koanf:"read_backoff" validate:"gte=0"`

	// WatchEnabled arms the filesystem notification trigger. Default: true
	WatchEnabled bool `koanf:"watch_enabled"`

	// WatchDebounce coalesces bursts of notifications. Default: 250ms
	WatchDebounce time.Duration `koanf:"watch_debounce" validate:"gte=0"`

	// WatchStopTimeout bounds the wait for the watcher on shutdown. Default: 2s
	WatchStopTimeout time.Duration `koanf:"watch_stop_timeout" validate:"gt=0"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            int           `koanf:"port" validate:"min=1,max=65535"`
	Host            string        `koanf:"host"`
	Timeout         time.Duration `koanf:"timeout" validate:"gt=0"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"gt=0"`
	Environment     string        `koanf:"environment" validate:"oneof=development staging production"`
}

// APIConfig bounds the raw history endpoint.
type APIConfig struct {
	DefaultTailLimit int `koanf:"default_tail_limit" validate:"min=1,ltefield=MaxTailLimit"`
	MaxTailLimit     int `koanf:"max_tail_limit" validate:"min=1,max=100000"`

	// HistoryCacheTTL bounds how long a parsed table is reused for history
	// requests while the file is unchanged. Zero disables the cache.
	HistoryCacheTTL time.Duration `koanf:"history_cache_ttl" validate:"gte=0"`
}

// SecurityConfig holds CORS and rate limit settings.
type SecurityConfig struct {
	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs" validate:"min=1"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window" validate:"gt=0"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level: trace, debug, info, warn, error.
	Level string `koanf:"level" validate:"oneof=trace debug info warn error"`

	// Format is the output format: json or console.
	Format string `koanf:"format" validate:"oneof=json console"`

	// Caller includes caller file and line number in logs.
	Caller bool `koanf:"caller"`

	// File additionally receives JSON records when set.
	File string `koanf:"file"`
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// IsProduction reports whether the server runs in production mode.
func (s ServerConfig) IsProduction() bool {
	return s.Environment == "production"
}

// DelimiterRune returns the configured delimiter, defaulting to a comma.
func (s SourceConfig) DelimiterRune() rune {
	for _, r := range s.Delimiter {
		return r
	}
	return ','
}
