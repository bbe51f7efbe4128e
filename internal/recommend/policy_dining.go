// Factorserve - Collaborative Filtering Model Serving
// Copyright 2026 Factorserve Authors
// SPDX-License-Identifier: Apache-2.0
// https://github.com/factorserve/factorserve

package recommend

import "math/rand"

// DiningPolicy serves the recipe domain. The artifact carries only factor
// matrices and identifier mappings, so unknown identifiers fall back to
// mean-reverting noise rather than history-based estimates.
type DiningPolicy struct {
	// defaultMean is the global mean used before any artifact has loaded.
	defaultMean float64
}

// NewDiningPolicy creates the recipe-domain policy. defaultMean is the
// rating returned while no model is loaded; values outside (0, 5] fall
// back to 4.66, the training corpus average.
func NewDiningPolicy(defaultMean float64) *DiningPolicy {
	if defaultMean <= 0 || defaultMean > 5 {
		defaultMean = 4.66
	}
	return &DiningPolicy{defaultMean: defaultMean}
}

func (p *DiningPolicy) Name() string { return "dining" }

func (p *DiningPolicy) UnreadyRating() float64 { return p.defaultMean }

// FallbackRating models "no information" as mean-reverting noise: the
// global mean plus uniform jitter in [-0.5, 0.5), clamped to the rating
// scale. Intentionally non-deterministic.
func (p *DiningPolicy) FallbackRating(m *Model, userID, itemID string, userKnown, itemKnown bool, rnd *rand.Rand) float64 {
	mean := p.defaultMean
	if m != nil && m.GlobalMean() > 0 {
		mean = m.GlobalMean()
	}
	jitter := rnd.Float64() - 0.5
	return clamp(mean+jitter, 1.0, 5.0)
}

// Confidence is high only when both identifiers were seen during training.
// TierMedium is never produced for dining predictions.
func (p *DiningPolicy) Confidence(m *Model, userID, itemID string) Tier {
	if m == nil {
		return TierLow
	}
	_, userKnown := m.UserIndex(userID)
	_, itemKnown := m.ItemIndex(itemID)
	if userKnown && itemKnown {
		return TierHigh
	}
	return TierLow
}

// Enrich returns nil; the dining artifact carries no feature table.
func (p *DiningPolicy) Enrich(m *Model, itemID string) *Enrichment { return nil }

// DefaultCandidates returns nil; dining recommendations require an
// explicit candidate list from the caller.
func (p *DiningPolicy) DefaultCandidates(m *Model, userID string) []int { return nil }

// ColdStart returns nil; without a feature table there is no popularity
// signal, so unknown users are scored through the fallback path instead.
func (p *DiningPolicy) ColdStart(m *Model, topN int) []Recommendation { return nil }

func (p *DiningPolicy) PlaceholderAccuracy() (float64, float64) { return 0.61, 0.43 }
