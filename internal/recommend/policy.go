// Factorserve - Collaborative Filtering Model Serving
// Copyright 2026 Factorserve Authors
// SPDX-License-Identifier: Apache-2.0
// https://github.com/factorserve/factorserve

package recommend

import "math/rand"

// Policy captures everything that differs between recommendation domains.
// The Engine owns the shared inference flow (mapping, dot-product, clamping,
// ranking); the policy supplies fallback ratings, the confidence rule,
// output enrichment, default candidate selection, and the cold-start path.
type Policy interface {
	// Name identifies the domain in logs and metrics.
	Name() string

	// UnreadyRating is returned by Predict when no model is loaded.
	UnreadyRating() float64

	// FallbackRating supplies a rating when at least one identifier is
	// unknown, or when the dot-product could not be computed. The engine
	// clamps the result; rnd may be used for stochastic fallbacks.
	FallbackRating(m *Model, userID, itemID string, userKnown, itemKnown bool, rnd *rand.Rand) float64

	// Confidence assigns the qualitative tier for a (user, item) pair.
	Confidence(m *Model, userID, itemID string) Tier

	// Enrich returns display-only metadata for an item, or nil when the
	// domain has none.
	Enrich(m *Model, itemID string) *Enrichment

	// DefaultCandidates returns item rows to score when the caller
	// supplied no explicit candidate list. nil means the domain requires
	// explicit candidates.
	DefaultCandidates(m *Model, userID string) []int

	// ColdStart returns non-personalized recommendations for users absent
	// from the training data, or nil when the domain has no cold-start
	// path and the engine should score candidates anyway.
	ColdStart(m *Model, topN int) []Recommendation

	// PlaceholderAccuracy supplies the fixed illustrative error figures
	// reported when reconstruction metrics cannot be computed.
	PlaceholderAccuracy() (rmse, mae float64)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
