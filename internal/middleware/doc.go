// Factorserve - Collaborative Filtering Model Serving
// Copyright 2026 Factorserve Authors
// SPDX-License-Identifier: Apache-2.0
// https://github.com/factorserve/factorserve

// Package middleware provides HTTP middleware shared across the API:
// request-ID propagation and Prometheus instrumentation. Middleware is
// written against http.HandlerFunc and adapted to chi's signature at the
// router.
package middleware
