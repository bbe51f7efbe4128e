// Factorserve - Collaborative Filtering Model Serving
// Copyright 2026 Factorserve Authors
// SPDX-License-Identifier: Apache-2.0
// https://github.com/factorserve/factorserve

// Package api provides the HTTP surface of the service using the chi
// router. Each enabled recommendation domain gets its own route group
// under /api/v1; the engine behind each group is injected, never global.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/factorserve/factorserve/internal/config"
	"github.com/factorserve/factorserve/internal/middleware"
	"github.com/factorserve/factorserve/internal/recommend"
)

// Router assembles the HTTP handler tree from the configured domains.
type Router struct {
	cfg    *config.Config
	dining *DomainHandler
	rooms  *DomainHandler
}

// NewRouter wires handlers for the enabled domains. Either engine may be
// nil, in which case its routes are not mounted.
func NewRouter(cfg *config.Config, dining, rooms *recommend.Engine) *Router {
	r := &Router{cfg: cfg}
	if dining != nil {
		r.dining = NewDomainHandler(dining, cfg.Engine.PredictionTimeout)
	}
	if rooms != nil {
		r.rooms = NewDomainHandler(rooms, cfg.Engine.PredictionTimeout)
	}
	return r
}

// chiMiddleware adapts http.HandlerFunc middleware to chi's
// func(http.Handler) http.Handler.
func chiMiddleware(mw func(http.HandlerFunc) http.HandlerFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return mw(next.ServeHTTP)
	}
}

// Setup builds the complete route tree.
func (rt *Router) Setup() http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware(middleware.RequestID))
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: rt.cfg.Server.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		MaxAge:         300,
	}))
	if rt.cfg.Server.RateLimit > 0 {
		r.Use(httprate.LimitByIP(rt.cfg.Server.RateLimit, time.Minute))
	}

	r.Route("/api/v1/health", func(r chi.Router) {
		r.Get("/live", rt.healthLive)
		r.Get("/ready", rt.healthReady)
	})

	r.Handle("/metrics", promhttp.Handler())

	if rt.dining != nil {
		r.Route("/api/v1/dining", func(r chi.Router) {
			r.Use(chiMiddleware(middleware.PrometheusMetrics))
			rt.mountDomain(r, rt.dining)
		})
	}
	if rt.rooms != nil {
		r.Route("/api/v1/rooms", func(r chi.Router) {
			r.Use(chiMiddleware(middleware.PrometheusMetrics))
			rt.mountDomain(r, rt.rooms)
			r.Get("/popular", rt.rooms.Popular)
			r.Get("/confusion-matrix", rt.rooms.ConfusionMatrix)
		})
	}

	return r
}

// mountDomain registers the routes every domain shares.
func (rt *Router) mountDomain(r chi.Router, h *DomainHandler) {
	r.Get("/health", h.Health)
	r.Get("/status", h.Status)
	r.Post("/load", h.Load)
	r.Post("/predict", h.Predict)
	r.Post("/recommendations", h.Recommend)
	r.Get("/model-info", h.ModelInfo)
	r.Get("/accuracy", h.Accuracy)
}

// healthLive reports process liveness only.
func (rt *Router) healthLive(w http.ResponseWriter, r *http.Request) {
	respondSuccess(w, http.StatusOK, map[string]string{"status": "alive"}, time.Now())
}

// healthReady reports per-domain model readiness. It returns 503 until
// every mounted domain is serving a model, so orchestrators hold traffic
// during degraded starts.
func (rt *Router) healthReady(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	domains := map[string]bool{}
	ready := true
	for _, h := range []*DomainHandler{rt.dining, rt.rooms} {
		if h == nil {
			continue
		}
		loaded := h.engine.Store().Ready()
		domains[h.engine.Domain()] = loaded
		ready = ready && loaded
	}

	status := http.StatusOK
	state := "ready"
	if !ready {
		status = http.StatusServiceUnavailable
		state = "degraded"
	}
	respondSuccess(w, status, map[string]interface{}{
		"status":  state,
		"domains": domains,
	}, started)
}
