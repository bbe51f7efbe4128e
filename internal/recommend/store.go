// Factorserve - Collaborative Filtering Model Serving
// Copyright 2026 Factorserve Authors
// SPDX-License-Identifier: Apache-2.0
// https://github.com/factorserve/factorserve

package recommend

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/factorserve/factorserve/internal/metrics"
)

// Store holds the currently served model for one domain behind a
// read-write lock. Readers observe either nil (no model loaded yet) or a
// complete, validated model; a torn state is impossible because Load swaps
// the pointer only after the artifact fully parses.
type Store struct {
	domain string
	path   string
	logger zerolog.Logger

	mu       sync.RWMutex
	model    *Model
	loadTime time.Duration
	loadedAt time.Time
}

// NewStore creates an empty store for a domain. path is the artifact the
// store loads from; domain names the store in logs and metrics.
func NewStore(domain, path string, logger zerolog.Logger) *Store {
	return &Store{
		domain: domain,
		path:   path,
		logger: logger.With().Str("component", "model_store").Str("domain", domain).Logger(),
	}
}

// Model returns the current model, or nil when no load has succeeded yet.
func (s *Store) Model() *Model {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.model
}

// Ready reports whether a model is currently loaded.
func (s *Store) Ready() bool {
	return s.Model() != nil
}

// LoadDuration returns how long the most recent successful load took.
// This stands in for training time in accuracy reports; the artifact does
// not carry the offline training duration.
func (s *Store) LoadDuration() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loadTime
}

// LoadedAt returns when the current model was loaded, or the zero time.
func (s *Store) LoadedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loadedAt
}

// Load reads and validates the artifact, then atomically swaps it in.
// It is idempotent and retryable: a failed load leaves any previously
// loaded model serving, and repeated calls simply re-read the artifact.
func (s *Store) Load(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("loading %s model: %w", s.domain, err)
	}

	start := time.Now()
	model, err := ReadArtifactFile(s.path)
	if err != nil {
		metrics.RecordModelLoad(s.domain, 0, err)
		s.logger.Error().Err(err).Str("path", s.path).Msg("Model load failed")
		return fmt.Errorf("loading %s model: %w", s.domain, err)
	}
	elapsed := time.Since(start)

	s.mu.Lock()
	s.model = model
	s.loadTime = elapsed
	s.loadedAt = time.Now()
	s.mu.Unlock()

	metrics.RecordModelLoad(s.domain, elapsed, nil)
	s.logger.Info().
		Str("path", s.path).
		Int("users", model.NumUsers()).
		Int("items", model.NumItems()).
		Float64("global_mean", model.GlobalMean()).
		Dur("duration", elapsed).
		Msg("Model loaded")
	return nil
}
