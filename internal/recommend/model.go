// Factorserve - Collaborative Filtering Model Serving
// Copyright 2026 Factorserve Authors
// SPDX-License-Identifier: Apache-2.0
// https://github.com/factorserve/factorserve

package recommend

import (
	"fmt"
)

// Model is the strongly-typed, immutable factor store built from a model
// artifact. All fields are read-only after construction; concurrent readers
// need no locking.
type Model struct {
	// userFactors and itemFactors are dense latent factor matrices with a
	// shared inner dimension (the latent rank).
	userFactors [][]float64
	itemFactors [][]float64

	// userIndex and itemIndex map external identifiers to matrix rows.
	// Unseen identifiers are simply absent.
	userIndex map[string]int
	itemIndex map[string]int

	// itemIDs maps matrix rows back to external identifiers.
	itemIDs []string

	// ratings is the optional sparse interaction matrix (room domain).
	ratings *RatingMatrix

	// features is the optional per-item feature table (room domain).
	features map[string]ItemFeatures

	globalMean float64
	modelType  string
	rank       int
}

// UserIndex maps an external user identifier to its factor matrix row.
// The second return value reports whether the identifier was seen during
// training.
func (m *Model) UserIndex(userID string) (int, bool) {
	idx, ok := m.userIndex[userID]
	return idx, ok
}

// ItemIndex maps an external item identifier to its factor matrix row.
func (m *Model) ItemIndex(itemID string) (int, bool) {
	idx, ok := m.itemIndex[itemID]
	return idx, ok
}

// ItemID maps a factor matrix row back to the external item identifier.
func (m *Model) ItemID(idx int) string {
	if idx < 0 || idx >= len(m.itemIDs) {
		return ""
	}
	return m.itemIDs[idx]
}

// NumUsers returns the number of distinct training users.
func (m *Model) NumUsers() int { return len(m.userFactors) }

// NumItems returns the number of distinct training items.
func (m *Model) NumItems() int { return len(m.itemFactors) }

// GlobalMean returns the average rating across all training observations.
func (m *Model) GlobalMean() float64 { return m.globalMean }

// ModelType names the training algorithm that produced the factors.
func (m *Model) ModelType() string { return m.modelType }

// Ratings returns the sparse interaction matrix, or nil when the artifact
// did not carry one.
func (m *Model) Ratings() *RatingMatrix { return m.ratings }

// Features looks up the feature table row for an item.
func (m *Model) Features(itemID string) (ItemFeatures, bool) {
	f, ok := m.features[itemID]
	return f, ok
}

// FeatureItems returns the identifiers of all items present in the feature
// table. Order is unspecified.
func (m *Model) FeatureItems() []string {
	ids := make([]string, 0, len(m.features))
	for id := range m.features {
		ids = append(ids, id)
	}
	return ids
}

// Dot computes the factor dot-product for a (user row, item row) pair.
// Row bounds and the shared rank are validated at load time; the residual
// guard here converts any inconsistency into an error the caller degrades
// on instead of panicking.
func (m *Model) Dot(userIdx, itemIdx int) (float64, error) {
	if userIdx < 0 || userIdx >= len(m.userFactors) {
		return 0, fmt.Errorf("user row %d out of range [0, %d)", userIdx, len(m.userFactors))
	}
	if itemIdx < 0 || itemIdx >= len(m.itemFactors) {
		return 0, fmt.Errorf("item row %d out of range [0, %d)", itemIdx, len(m.itemFactors))
	}

	u, v := m.userFactors[userIdx], m.itemFactors[itemIdx]
	if len(u) != len(v) {
		return 0, fmt.Errorf("factor rank mismatch: user %d vs item %d", len(u), len(v))
	}

	var sum float64
	for f := range u {
		sum += u[f] * v[f]
	}
	return sum, nil
}

// RatingMatrix is a sparse user×item matrix of observed ratings.
// A missing entry means "unrated"; present entries hold 1-5 scale values.
type RatingMatrix struct {
	rows     []map[int]float64
	numItems int
}

// NumUsers returns the number of user rows.
func (rm *RatingMatrix) NumUsers() int { return len(rm.rows) }

// NumItems returns the number of item columns.
func (rm *RatingMatrix) NumItems() int { return rm.numItems }

// Rating returns the observed rating for (user row, item row), or 0 when
// the pair is unrated.
func (rm *RatingMatrix) Rating(userIdx, itemIdx int) float64 {
	if userIdx < 0 || userIdx >= len(rm.rows) {
		return 0
	}
	return rm.rows[userIdx][itemIdx]
}

// UserRatingCount returns the number of items the user has rated.
func (rm *RatingMatrix) UserRatingCount(userIdx int) int {
	if userIdx < 0 || userIdx >= len(rm.rows) {
		return 0
	}
	return len(rm.rows[userIdx])
}

// UserMean returns the user's average observed rating. The second return
// value is false when the user has no ratings.
func (rm *RatingMatrix) UserMean(userIdx int) (float64, bool) {
	if userIdx < 0 || userIdx >= len(rm.rows) || len(rm.rows[userIdx]) == 0 {
		return 0, false
	}
	var sum float64
	for _, r := range rm.rows[userIdx] {
		sum += r
	}
	return sum / float64(len(rm.rows[userIdx])), true
}

// UnratedItems returns the item rows the user has not rated, in ascending
// row order.
func (rm *RatingMatrix) UnratedItems(userIdx int) []int {
	if userIdx < 0 || userIdx >= len(rm.rows) {
		return nil
	}
	rated := rm.rows[userIdx]
	unrated := make([]int, 0, rm.numItems-len(rated))
	for i := 0; i < rm.numItems; i++ {
		if _, ok := rated[i]; !ok {
			unrated = append(unrated, i)
		}
	}
	return unrated
}

// UserRatings returns the user's observed ratings keyed by item row.
// The returned map is the matrix's own storage; callers must not mutate it.
func (rm *RatingMatrix) UserRatings(userIdx int) map[int]float64 {
	if userIdx < 0 || userIdx >= len(rm.rows) {
		return nil
	}
	return rm.rows[userIdx]
}

// NonZeroCount returns the total number of observed ratings.
func (rm *RatingMatrix) NonZeroCount() int {
	var n int
	for _, row := range rm.rows {
		n += len(row)
	}
	return n
}
