// EstateSync - Property Listing Catalog and Real-Time Sync
// Copyright 2026 Kardo Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kardolabs/estatesync

// Package config loads and validates server configuration via Koanf v2
// with layered sources: built-in defaults, then an optional YAML config
// file, then environment variables (highest priority).
package config

import (
	"fmt"
	"time"
)

// Config is the root configuration for the EstateSync server.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Database  DatabaseConfig  `koanf:"database"`
	Stream    StreamConfig    `koanf:"stream"`
	RateLimit RateLimitConfig `koanf:"ratelimit"`
	Auth      AuthConfig      `koanf:"auth"`
	Logging   LoggingConfig   `koanf:"logging"`
	NATS      NATSConfig      `koanf:"nats"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	CORSOrigins     []string      `koanf:"cors_origins"`
}

// DatabaseConfig holds DuckDB settings. Path ":memory:" runs fully
// in-memory, which is what the tests use.
type DatabaseConfig struct {
	Path      string `koanf:"path"`
	MaxMemory string `koanf:"max_memory"`
	Threads   int    `koanf:"threads"`
}

// StreamConfig holds change-broadcast settings.
//
// HeartbeatInterval is the per-connection heartbeat cadence keeping idle
// viewer connections alive through intermediaries. PaddingBytes is the
// size of the one-time padding field on the NDJSON connected frame that
// defeats proxy response buffering; zero disables it.
type StreamConfig struct {
	HeartbeatInterval time.Duration `koanf:"heartbeat_interval"`
	SendBuffer        int           `koanf:"send_buffer"`
	PaddingBytes      int           `koanf:"padding_bytes"`
}

// Bucket is one rate-limit bucket: at most Requests per Window per client.
type Bucket struct {
	Requests int           `koanf:"requests"`
	Window   time.Duration `koanf:"window"`
}

// RateLimitConfig classifies inbound requests into named buckets.
type RateLimitConfig struct {
	Disabled bool   `koanf:"disabled"`
	Auth     Bucket `koanf:"auth"`
	Search   Bucket `koanf:"search"`
	Admin    Bucket `koanf:"admin"`
	Heavy    Bucket `koanf:"heavy"`
	Upload   Bucket `koanf:"upload"`
}

// AuthConfig holds the authentication contract settings. Token issuance is
// external; the server only verifies bearer tokens signed with JWTSecret.
// Disabled mode maps every request to a super-admin actor and exists for
// local development only.
type AuthConfig struct {
	JWTSecret string `koanf:"jwt_secret"`
	Disabled  bool   `koanf:"disabled"`
}

// LoggingConfig mirrors logging.Config for the koanf layer.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// NATSConfig configures the optional cross-instance event bridge
// (effective only in builds with the nats tag).
type NATSConfig struct {
	Enabled bool   `koanf:"enabled"`
	URL     string `koanf:"url"`
	Subject string `koanf:"subject"`
}

// Default returns a Config with all default values. These are applied
// first, then overridden by the config file and environment variables.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    0, // streaming responses must not be cut off
			ShutdownTimeout: 10 * time.Second,
			CORSOrigins:     []string{},
		},
		Database: DatabaseConfig{
			Path:      "data/estatesync.db",
			MaxMemory: "1GB",
			Threads:   0, // 0 = runtime.NumCPU
		},
		Stream: StreamConfig{
			HeartbeatInterval: 15 * time.Second,
			SendBuffer:        64,
			PaddingBytes:      2048,
		},
		RateLimit: RateLimitConfig{
			Disabled: false,
			Auth:     Bucket{Requests: 10, Window: 5 * time.Minute},
			Search:   Bucket{Requests: 300, Window: time.Minute},
			Admin:    Bucket{Requests: 60, Window: time.Minute},
			Heavy:    Bucket{Requests: 5, Window: time.Minute},
			Upload:   Bucket{Requests: 30, Window: time.Minute},
		},
		Auth: AuthConfig{
			JWTSecret: "",
			Disabled:  false,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		NATS: NATSConfig{
			Enabled: false,
			URL:     "nats://127.0.0.1:4222",
			Subject: "estatesync.listings",
		},
	}
}

// Validate checks the configuration for values that would make the server
// misbehave at runtime. It is called once after loading, before any
// component is constructed.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be 1-65535, got %d", c.Server.Port)
	}
	if c.Database.Path == "" {
		return fmt.Errorf("database.path must not be empty")
	}
	if c.Stream.HeartbeatInterval <= 0 {
		return fmt.Errorf("stream.heartbeat_interval must be positive, got %s", c.Stream.HeartbeatInterval)
	}
	if c.Stream.SendBuffer < 1 {
		return fmt.Errorf("stream.send_buffer must be at least 1, got %d", c.Stream.SendBuffer)
	}
	if !c.Auth.Disabled && len(c.Auth.JWTSecret) < 32 {
		return fmt.Errorf("auth.jwt_secret must be at least 32 characters when auth is enabled")
	}
	if !c.RateLimit.Disabled {
		for name, b := range map[string]Bucket{
			"auth":   c.RateLimit.Auth,
			"search": c.RateLimit.Search,
			"admin":  c.RateLimit.Admin,
			"heavy":  c.RateLimit.Heavy,
			"upload": c.RateLimit.Upload,
		} {
			if b.Requests < 1 || b.Window <= 0 {
				return fmt.Errorf("ratelimit.%s must have positive requests and window", name)
			}
		}
	}
	if c.NATS.Enabled && c.NATS.URL == "" {
		return fmt.Errorf("nats.url must be set when nats.enabled is true")
	}
	return nil
}
