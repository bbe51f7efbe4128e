// Factorserve - Collaborative Filtering Model Serving
// Copyright 2026 Factorserve Authors
// SPDX-License-Identifier: Apache-2.0
// https://github.com/factorserve/factorserve

package recommend

import (
	"context"
	"math/rand"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/factorserve/factorserve/internal/metrics"
)

// ReasonCollaborative marks recommendations scored by the factor model.
const ReasonCollaborative = "svd_collaborative_filtering"

// Options tune engine behavior shared across domains.
type Options struct {
	// DefaultTopN is used when a request supplies no list length.
	DefaultTopN int
	// MaxTopN caps requested list lengths.
	MaxTopN int
	// Seed seeds the fallback randomness. Zero means time-based.
	Seed int64
}

// Engine is the generic inference and ranking engine. One instance serves
// one domain; all domain-specific behavior lives in the injected Policy.
// Engines are safe for concurrent use.
type Engine struct {
	store  *Store
	policy Policy
	opts   Options
	logger zerolog.Logger
	rng    *rand.Rand
}

// NewEngine builds an engine around a model store and a domain policy.
func NewEngine(store *Store, policy Policy, opts Options, logger zerolog.Logger) *Engine {
	if opts.DefaultTopN <= 0 {
		opts.DefaultTopN = 10
	}
	if opts.MaxTopN <= 0 {
		opts.MaxTopN = 100
	}
	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Engine{
		store:  store,
		policy: policy,
		opts:   opts,
		logger: logger.With().Str("component", "engine").Str("domain", policy.Name()).Logger(),
		rng:    rand.New(&lockedSource{src: rand.NewSource(seed).(rand.Source64)}),
	}
}

// Store returns the engine's model store.
func (e *Engine) Store() *Store { return e.store }

// Domain returns the policy's domain name.
func (e *Engine) Domain() string { return e.policy.Name() }

// Predict computes a rating for a (user, item) pair. It never fails:
// unknown identifiers and compute errors degrade through the policy's
// fallback, and an unready model yields the policy's unready rating.
// The result is always within [1.0, 5.0].
func (e *Engine) Predict(ctx context.Context, userID, itemID string) Prediction {
	m := e.store.Model()
	rating, source := e.score(m, userID, itemID)
	metrics.RecordPrediction(e.policy.Name(), source)
	return Prediction{
		UserID:     userID,
		ItemID:     itemID,
		Rating:     rating,
		Confidence: e.policy.Confidence(m, userID, itemID),
		Source:     source,
	}
}

// Confidence returns the policy's tier for a (user, item) pair.
func (e *Engine) Confidence(userID, itemID string) Tier {
	return e.policy.Confidence(e.store.Model(), userID, itemID)
}

// score runs the prediction priority chain against a model snapshot.
func (e *Engine) score(m *Model, userID, itemID string) (float64, string) {
	if m == nil {
		return clamp(e.policy.UnreadyRating(), 1.0, 5.0), SourceUnready
	}

	userIdx, userKnown := m.UserIndex(userID)
	itemIdx, itemKnown := m.ItemIndex(itemID)
	if userKnown && itemKnown {
		rating, err := m.Dot(userIdx, itemIdx)
		if err == nil {
			return clamp(rating, 1.0, 5.0), SourceModel
		}
		e.logger.Warn().Err(err).
			Str("user_id", userID).
			Str("item_id", itemID).
			Msg("Dot-product failed, degrading to fallback")
	}

	rating := e.policy.FallbackRating(m, userID, itemID, userKnown, itemKnown, e.rng)
	return clamp(rating, 1.0, 5.0), SourceFallback
}

// Recommend scores candidates for a user and returns the topN highest
// predicted ratings in non-increasing order, plus the total number of
// candidates considered. An unready model yields an empty list. Users
// absent from the training data take the policy's cold-start path when
// the domain has one.
func (e *Engine) Recommend(ctx context.Context, userID string, candidates []string, topN int) ([]Recommendation, int) {
	topN = e.clampTopN(topN)

	m := e.store.Model()
	if m == nil {
		return []Recommendation{}, 0
	}

	if _, known := m.UserIndex(userID); !known {
		if recs := e.policy.ColdStart(m, topN); recs != nil {
			metrics.RecordRecommendation(e.policy.Name(), len(recs))
			return recs, len(recs)
		}
	}

	if len(candidates) == 0 {
		for _, row := range e.policy.DefaultCandidates(m, userID) {
			if id := m.ItemID(row); id != "" {
				candidates = append(candidates, id)
			}
		}
	}
	if len(candidates) == 0 {
		return []Recommendation{}, 0
	}

	recs := make([]Recommendation, 0, len(candidates))
	for n, itemID := range candidates {
		if n%256 == 0 && ctx.Err() != nil {
			break
		}
		rating, _ := e.score(m, userID, itemID)
		recs = append(recs, Recommendation{
			ItemID:          itemID,
			PredictedRating: rating,
			Confidence:      e.policy.Confidence(m, userID, itemID),
			Reason:          ReasonCollaborative,
			Enrichment:      e.policy.Enrich(m, itemID),
		})
	}

	total := len(recs)
	sort.SliceStable(recs, func(a, b int) bool {
		return recs[a].PredictedRating > recs[b].PredictedRating
	})
	if len(recs) > topN {
		recs = recs[:topN]
	}

	metrics.RecordRecommendation(e.policy.Name(), len(recs))
	return recs, total
}

// Popular returns the policy's non-personalized cold-start list, or an
// empty list when the domain has none or no model is loaded.
func (e *Engine) Popular(topN int) []Recommendation {
	topN = e.clampTopN(topN)
	m := e.store.Model()
	if m == nil {
		return []Recommendation{}
	}
	recs := e.policy.ColdStart(m, topN)
	if recs == nil {
		return []Recommendation{}
	}
	return recs
}

// ModelInfo summarizes the current model for diagnostics.
func (e *Engine) ModelInfo() ModelInfo {
	m := e.store.Model()
	if m == nil {
		return ModelInfo{IsLoaded: false, ModelType: "None"}
	}
	return ModelInfo{
		IsLoaded:   true,
		GlobalMean: m.GlobalMean(),
		NumUsers:   m.NumUsers(),
		NumItems:   m.NumItems(),
		ModelType:  strings.ToUpper(m.ModelType()),
	}
}

func (e *Engine) clampTopN(n int) int {
	if n <= 0 {
		return e.opts.DefaultTopN
	}
	if n > e.opts.MaxTopN {
		return e.opts.MaxTopN
	}
	return n
}

// lockedSource serializes access to a rand source so the engine's rng is
// safe under concurrent requests.
type lockedSource struct {
	mu  sync.Mutex
	src rand.Source64
}

func (s *lockedSource) Int63() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.src.Int63()
}

func (s *lockedSource) Uint64() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.src.Uint64()
}

func (s *lockedSource) Seed(seed int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.src.Seed(seed)
}
