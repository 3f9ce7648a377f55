// EstateSync - Property Listing Catalog and Real-Time Sync
// Copyright 2026 Kardo Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kardolabs/estatesync

package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths searched for a config file, in
// priority order. The first file found is used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/estatesync/config.yaml",
	"/etc/estatesync/config.yml",
}

// ConfigPathEnvVar overrides the config file path when set.
const ConfigPathEnvVar = "CONFIG_PATH"

// envPrefix namespaces the environment variables read by Load.
const envPrefix = "ESTATESYNC_"

// envMappings maps flat environment variable names (without the prefix)
// to dotted koanf keys. Only mapped variables are honored; this keeps the
// environment surface explicit and greppable.
var envMappings = map[string]string{
	"host":             "server.host",
	"port":             "server.port",
	"read_timeout":     "server.read_timeout",
	"write_timeout":    "server.write_timeout",
	"shutdown_timeout": "server.shutdown_timeout",
	"cors_origins":     "server.cors_origins",

	"db_path":       "database.path",
	"db_max_memory": "database.max_memory",
	"db_threads":    "database.threads",

	"heartbeat_interval": "stream.heartbeat_interval",
	"send_buffer":        "stream.send_buffer",
	"padding_bytes":      "stream.padding_bytes",

	"rate_limit_disabled":    "ratelimit.disabled",
	"rate_limit_auth_reqs":   "ratelimit.auth.requests",
	"rate_limit_auth_window": "ratelimit.auth.window",
	"rate_limit_search_reqs": "ratelimit.search.requests",
	"rate_limit_admin_reqs":  "ratelimit.admin.requests",
	"rate_limit_heavy_reqs":  "ratelimit.heavy.requests",
	"rate_limit_upload_reqs": "ratelimit.upload.requests",

	"jwt_secret":    "auth.jwt_secret",
	"auth_disabled": "auth.disabled",

	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",

	"nats_enabled": "nats.enabled",
	"nats_url":     "nats.url",
	"nats_subject": "nats.subject",
}

// envTransform maps ESTATESYNC_FOO_BAR to its dotted koanf key, or ""
// (skip) for unmapped variables.
func envTransform(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, envPrefix))
	if mapped, ok := envMappings[key]; ok {
		return mapped
	}
	return ""
}

// findConfigFile returns the config file path to load, or "" when no file
// exists. The CONFIG_PATH environment variable wins over the search list.
func findConfigFile() string {
	if p := os.Getenv(ConfigPathEnvVar); p != "" {
		return p
	}
	for _, p := range DefaultConfigPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// Load builds the configuration from defaults, the optional config file,
// and ESTATESYNC_-prefixed environment variables, then validates it.
func Load() (*Config, error) {
	return loadFrom(findConfigFile())
}

// loadFrom is Load with an explicit file path, "" meaning no file.
// Split out for tests.
func loadFrom(configPath string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", configPath, err)
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", envTransform), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}
