// Factorserve - Collaborative Filtering Model Serving
// Copyright 2026 Factorserve Authors
// SPDX-License-Identifier: Apache-2.0
// https://github.com/factorserve/factorserve

// Package config loads and validates the Factorserve configuration.
//
// Configuration is layered via Koanf v2, highest priority last:
//
//  1. Built-in defaults (structs provider)
//  2. Config file (config.yaml, see DefaultConfigPaths)
//  3. Environment variables (FACTORSERVE_ prefix, e.g.
//     FACTORSERVE_SERVER_PORT=8080, FACTORSERVE_ROOMS_ARTIFACT_PATH=...)
package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// Config is the root configuration for the service.
type Config struct {
	Server  ServerConfig  `koanf:"server"`
	Logging LoggingConfig `koanf:"logging"`
	Engine  EngineConfig  `koanf:"engine"`
	Dining  DomainConfig  `koanf:"dining"`
	Rooms   DomainConfig  `koanf:"rooms"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`

	// RateLimit is the per-IP request budget per minute. 0 disables limiting.
	RateLimit int `koanf:"rate_limit"`

	// CORSOrigins lists allowed origins. Defaults to "*" since the service
	// fronts browser dashboards the same way the upstream deployments did.
	CORSOrigins []string `koanf:"cors_origins"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// EngineConfig holds inference engine settings shared by all domains.
type EngineConfig struct {
	// DefaultTopN is the recommendation list size when a request does not
	// specify one.
	DefaultTopN int `koanf:"default_top_n"`

	// MaxTopN caps the recommendation list size a request may ask for.
	MaxTopN int `koanf:"max_top_n"`

	// PredictionTimeout bounds a single recommendation request.
	PredictionTimeout time.Duration `koanf:"prediction_timeout"`
}

// DomainConfig describes one recommendation domain deployment.
type DomainConfig struct {
	Enabled bool `koanf:"enabled"`

	// ArtifactPath points at the serialized model artifact produced by the
	// offline training pipeline.
	ArtifactPath string `koanf:"artifact_path"`

	// EagerLoad loads the artifact at startup. When false (or when the
	// eager load fails) the model stays unready until a load is requested.
	EagerLoad bool `koanf:"eager_load"`

	// GlobalMeanDefault is the conservative fallback rating used before a
	// model has supplied its own global mean.
	GlobalMeanDefault float64 `koanf:"global_mean_default"`
}

// DefaultConfigPaths lists where config files are searched, in order.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/factorserve/config.yaml",
	"/etc/factorserve/config.yml",
}

// ConfigPathEnvVar overrides the config file path.
const ConfigPathEnvVar = "FACTORSERVE_CONFIG"

// envPrefix is stripped from environment variables before mapping them to
// config paths: FACTORSERVE_SERVER_PORT -> server.port.
const envPrefix = "FACTORSERVE_"

// defaultConfig returns a Config populated with all default values.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            5001,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			RateLimit:       300,
			CORSOrigins:     []string{"*"},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Engine: EngineConfig{
			DefaultTopN:       10,
			MaxTopN:           100,
			PredictionTimeout: 10 * time.Second,
		},
		Dining: DomainConfig{
			Enabled:           true,
			ArtifactPath:      "/data/models/dining_model.json",
			EagerLoad:         true,
			GlobalMeanDefault: 4.66,
		},
		Rooms: DomainConfig{
			Enabled:           true,
			ArtifactPath:      "/data/models/rooms_model.json",
			EagerLoad:         true,
			GlobalMeanDefault: 3.5,
		},
	}
}

// Validate checks the configuration for internal consistency.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range [1, 65535]", c.Server.Port)
	}
	if c.Engine.DefaultTopN < 1 {
		return fmt.Errorf("engine.default_top_n must be positive, got %d", c.Engine.DefaultTopN)
	}
	if c.Engine.MaxTopN < c.Engine.DefaultTopN {
		return fmt.Errorf("engine.max_top_n %d must be >= engine.default_top_n %d",
			c.Engine.MaxTopN, c.Engine.DefaultTopN)
	}
	if c.Engine.PredictionTimeout <= 0 {
		return fmt.Errorf("engine.prediction_timeout must be positive")
	}
	if !c.Dining.Enabled && !c.Rooms.Enabled {
		return fmt.Errorf("at least one domain must be enabled")
	}
	for name, dc := range map[string]DomainConfig{"dining": c.Dining, "rooms": c.Rooms} {
		if dc.Enabled && dc.ArtifactPath == "" {
			return fmt.Errorf("%s.artifact_path is required when the domain is enabled", name)
		}
	}
	return nil
}

// findConfigFile returns the first config file found, or "".
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// envTransformFunc maps environment variable names to config paths.
// FACTORSERVE_SERVER_PORT -> server.port
// FACTORSERVE_ROOMS_ARTIFACT_PATH -> rooms.artifact_path
func envTransformFunc(key string) string {
	if !strings.HasPrefix(key, envPrefix) {
		return "" // ignore unrelated environment variables
	}
	key = strings.ToLower(strings.TrimPrefix(key, envPrefix))

	// The first underscore separates the section from the field; the rest
	// of the underscores belong to the field name.
	parts := strings.SplitN(key, "_", 2)
	if len(parts) != 2 {
		return key
	}
	return parts[0] + "." + parts[1]
}
