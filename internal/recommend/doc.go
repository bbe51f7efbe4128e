// Factorserve - Collaborative Filtering Model Serving
// Copyright 2026 Factorserve Authors
// SPDX-License-Identifier: Apache-2.0
// https://github.com/factorserve/factorserve

// Package recommend implements the matrix-factorization inference and
// ranking engine at the core of the service.
//
// A single generic Engine computes rating predictions as factor
// dot-products, ranks candidate items, and derives confidence tiers.
// Everything that differs between deployment domains (fallback policy,
// confidence rule, enrichment, cold start) is supplied by a Policy
// implementation, so the dining and rooms deployments share one code
// path.
//
// Prediction and ranking never return errors to callers. Unknown
// identifiers, unloaded models and shape inconsistencies all degrade to
// policy-defined in-range defaults, logged but never surfaced as faults.
package recommend
