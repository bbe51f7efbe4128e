// Factorserve - Collaborative Filtering Model Serving
// Copyright 2026 Factorserve Authors
// SPDX-License-Identifier: Apache-2.0
// https://github.com/factorserve/factorserve

package recommend

// Tier is a coarse qualitative confidence label for a prediction.
type Tier string

const (
	// TierLow indicates little or no supporting rating history.
	TierLow Tier = "low"
	// TierMedium indicates moderate supporting rating history.
	TierMedium Tier = "medium"
	// TierHigh indicates substantial supporting rating history.
	TierHigh Tier = "high"
)

// Rank orders tiers for comparisons: low < medium < high.
func (t Tier) Rank() int {
	switch t {
	case TierHigh:
		return 2
	case TierMedium:
		return 1
	default:
		return 0
	}
}

// Prediction sources, recorded for observability.
const (
	// SourceModel means the rating came from the factor dot-product.
	SourceModel = "model"
	// SourceFallback means an identifier was unknown and a policy
	// fallback supplied the rating.
	SourceFallback = "fallback"
	// SourceUnready means no model was loaded.
	SourceUnready = "unready"
)

// Prediction is a single predicted rating for a (user, item) pair.
// Rating is always within [1.0, 5.0].
type Prediction struct {
	UserID     string  `json:"user_id"`
	ItemID     string  `json:"item_id"`
	Rating     float64 `json:"predicted_rating"`
	Confidence Tier    `json:"confidence"`
	Source     string  `json:"-"`
}

// Enrichment carries display-only item metadata attached to room-domain
// recommendations. It never influences ordering.
type Enrichment struct {
	Hotel         string  `json:"hotel,omitempty"`
	RoomType      string  `json:"room_type,omitempty"`
	Price         float64 `json:"price,omitempty"`
	PriceCategory string  `json:"price_category,omitempty"`
	AvgRating     float64 `json:"avg_rating,omitempty"`
}

// Recommendation is one entry of a ranked recommendation list.
// The embedded Enrichment fields are flattened into the JSON object.
type Recommendation struct {
	ItemID          string  `json:"item_id"`
	PredictedRating float64 `json:"predicted_rating"`
	Confidence      Tier    `json:"confidence"`
	Reason          string  `json:"reason,omitempty"`
	*Enrichment
}

// ItemFeatures is the static per-item metadata row from the feature table.
type ItemFeatures struct {
	Hotel         string  `json:"hotel"`
	RoomType      string  `json:"room_type"`
	Price         float64 `json:"price"`
	PriceCategory string  `json:"price_category"`
	AvgRating     float64 `json:"rating"`
}

// ModelInfo summarizes the loaded model for diagnostics.
type ModelInfo struct {
	IsLoaded   bool    `json:"is_loaded"`
	GlobalMean float64 `json:"global_mean"`
	NumUsers   int     `json:"num_users"`
	NumItems   int     `json:"num_items"`
	ModelType  string  `json:"model_type"`
}

// AccuracyReport carries reconstruction error metrics.
//
// Estimated is true when the metrics could not be computed from the loaded
// model (no interaction matrix, empty entry set) and fixed illustrative
// values were substituted so the reporting endpoint stays responsive.
type AccuracyReport struct {
	RMSE         float64 `json:"rmse"`
	MAE          float64 `json:"mae"`
	TrainingTime float64 `json:"training_time"`
	ModelReady   bool    `json:"model_ready"`
	Estimated    bool    `json:"estimated"`
}

// ConfusionReport adapts classification metrics to the recommendation
// setting: an item counts as a positive when its predicted rating reaches
// the liked threshold.
type ConfusionReport struct {
	TruePositives  int     `json:"true_positives"`
	FalsePositives int     `json:"false_positives"`
	TrueNegatives  int     `json:"true_negatives"`
	FalseNegatives int     `json:"false_negatives"`
	Accuracy       float64 `json:"accuracy"`
	Precision      float64 `json:"precision"`
	Recall         float64 `json:"recall"`
	Specificity    float64 `json:"specificity"`
	F1Score        float64 `json:"f1_score"`
	SampleSize     int     `json:"sample_size"`
	Estimated      bool    `json:"estimated"`
}
