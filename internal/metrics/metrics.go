// Factorserve - Collaborative Filtering Model Serving
// Copyright 2026 Factorserve Authors
// SPDX-License-Identifier: Apache-2.0
// https://github.com/factorserve/factorserve

// Package metrics provides Prometheus metrics collection for observability.
//
// Metrics are exposed at the /metrics endpoint in Prometheus text format.
//
// HTTP metrics:
//   - api_requests_total{method, endpoint, status_code}
//   - api_request_duration_seconds{method, endpoint}
//   - api_active_requests
//
// Model metrics:
//   - model_loaded{domain} (0/1 gauge)
//   - model_load_duration_seconds{domain}
//   - model_load_failures_total{domain}
//
// Inference metrics:
//   - predictions_total{domain, source} where source is one of
//     model, fallback, unready
//   - recommendations_total{domain}
//   - recommendation_items_returned{domain}
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// API endpoint metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	// Model lifecycle metrics
	ModelLoaded = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "model_loaded",
			Help: "Whether the domain model is loaded (1) or not (0)",
		},
		[]string{"domain"},
	)

	ModelLoadDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "model_load_duration_seconds",
			Help:    "Duration of model artifact loads in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30},
		},
		[]string{"domain"},
	)

	ModelLoadFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "model_load_failures_total",
			Help: "Total number of failed model artifact loads",
		},
		[]string{"domain"},
	)

	// Inference metrics
	PredictionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "predictions_total",
			Help: "Total number of rating predictions",
		},
		[]string{"domain", "source"}, // source: "model", "fallback", "unready"
	)

	RecommendationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommendations_total",
			Help: "Total number of recommendation requests served",
		},
		[]string{"domain"},
	)

	RecommendationItemsReturned = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "recommendation_items_returned",
			Help:    "Number of items returned per recommendation request",
			Buckets: []float64{0, 1, 5, 10, 20, 50, 100},
		},
		[]string{"domain"},
	)
)

// RecordAPIRequest records metrics for a completed API request.
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest increments or decrements the active request gauge.
func TrackActiveRequest(active bool) {
	if active {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordModelLoad records the outcome of a model artifact load attempt.
func RecordModelLoad(domain string, duration time.Duration, err error) {
	if err != nil {
		ModelLoadFailures.WithLabelValues(domain).Inc()
		ModelLoaded.WithLabelValues(domain).Set(0)
		return
	}
	ModelLoadDuration.WithLabelValues(domain).Observe(duration.Seconds())
	ModelLoaded.WithLabelValues(domain).Set(1)
}

// RecordPrediction records a single rating prediction and its source.
func RecordPrediction(domain, source string) {
	PredictionsTotal.WithLabelValues(domain, source).Inc()
}

// RecordRecommendation records a served recommendation request.
func RecordRecommendation(domain string, returned int) {
	RecommendationsTotal.WithLabelValues(domain).Inc()
	RecommendationItemsReturned.WithLabelValues(domain).Observe(float64(returned))
}
