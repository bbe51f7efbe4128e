// Factorserve - Collaborative Filtering Model Serving
// Copyright 2026 Factorserve Authors
// SPDX-License-Identifier: Apache-2.0
// https://github.com/factorserve/factorserve

package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/factorserve/factorserve/internal/logging"
	"github.com/factorserve/factorserve/internal/models"
	"github.com/factorserve/factorserve/internal/recommend"
	"github.com/factorserve/factorserve/internal/validation"
)

// PredictRequest asks for a rating prediction for one (user, item) pair.
type PredictRequest struct {
	UserID string `json:"user_id" validate:"required"`
	ItemID string `json:"item_id" validate:"required"`
}

// RecommendRequest asks for a ranked recommendation list.
type RecommendRequest struct {
	UserID     string   `json:"user_id" validate:"required"`
	Candidates []string `json:"candidates"`
	TopN       int      `json:"top_n" validate:"min=0,max=100"`
}

// RecommendResponse is the payload of a recommendation request.
type RecommendResponse struct {
	UserID          string                     `json:"user_id"`
	Recommendations []recommend.Recommendation `json:"recommendations"`
	TotalCandidates int                        `json:"total_candidates"`
	ReturnedCount   int                        `json:"returned_count"`
}

// PopularResponse is the payload of the popularity endpoint.
type PopularResponse struct {
	PopularRooms []recommend.Recommendation `json:"popular_rooms"`
	Count        int                        `json:"count"`
}

// LoadResponse reports the outcome of a model (re)load.
type LoadResponse struct {
	Success   bool                `json:"success"`
	ModelInfo recommend.ModelInfo `json:"model_info"`
}

// StatusResponse summarizes one domain deployment.
type StatusResponse struct {
	Domain       string  `json:"domain"`
	ModelLoaded  bool    `json:"model_loaded"`
	ModelReady   bool    `json:"model_ready"`
	TrainingTime float64 `json:"training_time"`
	UsersCount   int     `json:"users_count"`
	ItemsCount   int     `json:"items_count"`
}

// HealthResponse is the per-domain health payload.
type HealthResponse struct {
	Status      string `json:"status"`
	Domain      string `json:"domain"`
	ModelLoaded bool   `json:"model_loaded"`
}

// DomainHandler serves the HTTP surface of one recommendation domain.
// All model access goes through the injected engine; the handler holds no
// model state of its own.
type DomainHandler struct {
	engine  *recommend.Engine
	timeout time.Duration
	logger  zerolog.Logger
}

// NewDomainHandler builds a handler around an engine. timeout bounds
// recommendation scoring; zero means no bound.
func NewDomainHandler(engine *recommend.Engine, timeout time.Duration) *DomainHandler {
	return &DomainHandler{
		engine:  engine,
		timeout: timeout,
		logger:  logging.With().Str("component", "api").Str("domain", engine.Domain()).Logger(),
	}
}

// Health reports liveness plus model readiness for the domain.
func (h *DomainHandler) Health(w http.ResponseWriter, r *http.Request) {
	respondSuccess(w, http.StatusOK, HealthResponse{
		Status:      "healthy",
		Domain:      h.engine.Domain(),
		ModelLoaded: h.engine.Store().Ready(),
	}, time.Now())
}

// Status reports the domain's model state and dimensions.
func (h *DomainHandler) Status(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	info := h.engine.ModelInfo()
	respondSuccess(w, http.StatusOK, StatusResponse{
		Domain:       h.engine.Domain(),
		ModelLoaded:  info.IsLoaded,
		ModelReady:   info.IsLoaded,
		TrainingTime: h.engine.Store().LoadDuration().Seconds(),
		UsersCount:   info.NumUsers,
		ItemsCount:   info.NumItems,
	}, started)
}

// Load triggers a (re)load of the model artifact. A failed load reports
// success=false with the failure reason; it never takes the process down,
// and a previously loaded model keeps serving.
func (h *DomainHandler) Load(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	if err := h.engine.Store().Load(r.Context()); err != nil {
		respondSuccess(w, http.StatusOK, map[string]interface{}{
			"success": false,
			"error":   err.Error(),
		}, started)
		return
	}
	respondSuccess(w, http.StatusOK, LoadResponse{
		Success:   true,
		ModelInfo: h.engine.ModelInfo(),
	}, started)
}

// Predict returns a rating prediction for one (user, item) pair.
func (h *DomainHandler) Predict(w http.ResponseWriter, r *http.Request) {
	started := time.Now()

	var req PredictRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	p := h.engine.Predict(r.Context(), req.UserID, req.ItemID)
	h.logger.Debug().
		Str("user_id", sanitizeLogValue(req.UserID)).
		Str("item_id", sanitizeLogValue(req.ItemID)).
		Float64("rating", p.Rating).
		Str("source", p.Source).
		Msg("Prediction served")
	respondSuccess(w, http.StatusOK, p, started)
}

// Recommend returns a ranked recommendation list for a user.
func (h *DomainHandler) Recommend(w http.ResponseWriter, r *http.Request) {
	started := time.Now()

	var req RecommendRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	ctx := r.Context()
	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	recs, total := h.engine.Recommend(ctx, req.UserID, req.Candidates, req.TopN)
	respondSuccess(w, http.StatusOK, RecommendResponse{
		UserID:          req.UserID,
		Recommendations: recs,
		TotalCandidates: total,
		ReturnedCount:   len(recs),
	}, started)
}

// Popular returns the non-personalized popularity ranking.
func (h *DomainHandler) Popular(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	count := getIntParam(r, "count", 10)
	recs := h.engine.Popular(count)
	respondSuccess(w, http.StatusOK, PopularResponse{
		PopularRooms: recs,
		Count:        len(recs),
	}, started)
}

// ModelInfo reports the loaded model's dimensions and type.
func (h *DomainHandler) ModelInfo(w http.ResponseWriter, r *http.Request) {
	respondSuccess(w, http.StatusOK, h.engine.ModelInfo(), time.Now())
}

// Accuracy reports reconstruction error metrics for the loaded model.
func (h *DomainHandler) Accuracy(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	respondSuccess(w, http.StatusOK, h.engine.Accuracy(r.Context()), started)
}

// ConfusionMatrix reports classification-style metrics over a user sample.
func (h *DomainHandler) ConfusionMatrix(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	respondSuccess(w, http.StatusOK, h.engine.ConfusionMatrix(r.Context()), started)
}

// decodeRequest decodes and validates a JSON request body. It writes the
// error response itself and reports whether the handler should proceed.
func decodeRequest(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "malformed JSON body", err)
		return false
	}
	if verr := validation.ValidateStruct(dst); verr != nil {
		ve := verr.ToAPIError()
		respondValidationError(w, &models.APIError{
			Code:    ve.Code,
			Message: ve.Message,
			Details: ve.Details,
		})
		return false
	}
	return true
}

// getIntParam reads a positive integer query parameter with a default.
func getIntParam(r *http.Request, name string, def int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return def
	}
	return v
}
