// Factorserve - Collaborative Filtering Model Serving
// Copyright 2026 Factorserve Authors
// SPDX-License-Identifier: Apache-2.0
// https://github.com/factorserve/factorserve

package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	t.Parallel()

	cfg := defaultConfig()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 5001, cfg.Server.Port)
	assert.Equal(t, 10, cfg.Engine.DefaultTopN)
	assert.True(t, cfg.Dining.Enabled)
	assert.True(t, cfg.Rooms.Enabled)
	assert.InDelta(t, 4.66, cfg.Dining.GlobalMeanDefault, 1e-9)
	assert.InDelta(t, 3.5, cfg.Rooms.GlobalMeanDefault, 1e-9)
}

func TestValidateRejectsBadValues(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"port_zero", func(c *Config) { c.Server.Port = 0 }},
		{"port_too_large", func(c *Config) { c.Server.Port = 70000 }},
		{"default_top_n_zero", func(c *Config) { c.Engine.DefaultTopN = 0 }},
		{"max_below_default", func(c *Config) { c.Engine.MaxTopN = 5 }},
		{"no_timeout", func(c *Config) { c.Engine.PredictionTimeout = 0 }},
		{"no_domains", func(c *Config) { c.Dining.Enabled = false; c.Rooms.Enabled = false }},
		{"enabled_without_artifact", func(c *Config) { c.Rooms.ArtifactPath = "" }},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := defaultConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestEnvTransform(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"FACTORSERVE_SERVER_PORT", "server.port"},
		{"FACTORSERVE_SERVER_RATE_LIMIT", "server.rate_limit"},
		{"FACTORSERVE_ROOMS_ARTIFACT_PATH", "rooms.artifact_path"},
		{"FACTORSERVE_DINING_GLOBAL_MEAN_DEFAULT", "dining.global_mean_default"},
		{"FACTORSERVE_LOGGING_LEVEL", "logging.level"},
		{"PATH", ""},
		{"HOME", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, envTransformFunc(tt.in), "input %q", tt.in)
	}
}

func TestLoadUsesEnvOverrides(t *testing.T) {
	t.Setenv("FACTORSERVE_SERVER_PORT", "9090")
	t.Setenv("FACTORSERVE_ROOMS_EAGER_LOAD", "false")
	t.Setenv("FACTORSERVE_SERVER_CORS_ORIGINS", "https://a.example,https://b.example")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.False(t, cfg.Rooms.EagerLoad)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.CORSOrigins)
}
