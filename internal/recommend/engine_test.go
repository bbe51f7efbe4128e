// Factorserve - Collaborative Filtering Model Serving
// Copyright 2026 Factorserve Authors
// SPDX-License-Identifier: Apache-2.0
// https://github.com/factorserve/factorserve

package recommend

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
)

// newTestEngine wires an engine around a prebuilt model with a fixed
// random seed so fallback jitter is reproducible across runs.
func newTestEngine(t *testing.T, policy Policy, art *Artifact) *Engine {
	t.Helper()

	store := NewStore(policy.Name(), "", zerolog.Nop())
	if art != nil {
		m, err := buildModel(art)
		if err != nil {
			t.Fatalf("buildModel() error = %v", err)
		}
		store.model = m
	}
	return NewEngine(store, policy, Options{Seed: 1}, zerolog.Nop())
}

// roomsArtifact builds a small rooms-domain model: three users with
// shallow, medium and deep rating history over twelve rooms.
func roomsArtifact() *Artifact {
	users := [][]float64{
		{2.0, 1.0},
		{1.0, 1.0},
		{0.5, 0.5},
	}
	items := make([][]float64, 12)
	itemIndex := make(map[string]int, 12)
	features := make(map[string]ItemFeatures, 12)
	roomIDs := []string{"r0", "r1", "r2", "r3", "r4", "r5", "r6", "r7", "r8", "r9", "r10", "r11"}
	for i, id := range roomIDs {
		items[i] = []float64{1.0, 1.0}
		itemIndex[id] = i
		features[id] = ItemFeatures{
			Hotel:         "Grand",
			RoomType:      "double",
			Price:         100 + float64(i),
			PriceCategory: "mid",
			AvgRating:     3.0 + float64(i)*0.125,
		}
	}
	// deep rated 10 rooms, mid rated 5, shallow rated 2
	var ratings []RatingEntry
	for i := 0; i < 10; i++ {
		ratings = append(ratings, RatingEntry{U: 0, I: i, R: 4.0})
	}
	for i := 0; i < 5; i++ {
		ratings = append(ratings, RatingEntry{U: 1, I: i, R: 3.0})
	}
	ratings = append(ratings,
		RatingEntry{U: 2, I: 0, R: 5.0},
		RatingEntry{U: 2, I: 1, R: 2.0},
	)

	return &Artifact{
		ModelType:    "svd",
		GlobalMean:   3.8,
		UserFactors:  users,
		ItemFactors:  items,
		UserIndex:    map[string]int{"deep": 0, "mid": 1, "shallow": 2},
		ItemIndex:    itemIndex,
		Ratings:      ratings,
		ItemFeatures: features,
	}
}

func diningArtifact() *Artifact {
	return &Artifact{
		ModelType:  "svd",
		GlobalMean: 4.66,
		UserFactors: [][]float64{
			{2.0, 1.0},
			{1.0, 0.5},
		},
		ItemFactors: [][]float64{
			{2.0, 2.2},
			{1.0, 1.0},
			{0.2, 0.1},
		},
		UserIndex: map[string]int{"u1": 0, "u2": 1},
		ItemIndex: map[string]int{"pasta": 0, "soup": 1, "toast": 2},
	}
}

func TestPredictClampsHighDotProduct(t *testing.T) {
	t.Parallel()

	// u1 · pasta = 2*2 + 1*2.2 = 6.2, outside the rating scale.
	e := newTestEngine(t, NewDiningPolicy(4.66), diningArtifact())
	p := e.Predict(context.Background(), "u1", "pasta")
	if p.Rating != 5.0 {
		t.Errorf("Predict(u1, pasta) = %g, want 5.0", p.Rating)
	}
	if p.Source != SourceModel {
		t.Errorf("Source = %q, want %q", p.Source, SourceModel)
	}
	if p.Confidence != TierHigh {
		t.Errorf("Confidence = %q, want high", p.Confidence)
	}
}

func TestPredictClampsLowDotProduct(t *testing.T) {
	t.Parallel()

	// u2 · toast = 1*0.2 + 0.5*0.1 = 0.25, below the rating scale.
	e := newTestEngine(t, NewDiningPolicy(4.66), diningArtifact())
	if got := e.Predict(context.Background(), "u2", "toast").Rating; got != 1.0 {
		t.Errorf("Predict(u2, toast) = %g, want 1.0", got)
	}
}

func TestPredictDiningUnknownUserJitters(t *testing.T) {
	t.Parallel()

	// Unknown identifiers yield global mean plus jitter in [-0.5, 0.5),
	// clamped. Exact values are intentionally non-reproducible; assert
	// the range instead.
	e := newTestEngine(t, NewDiningPolicy(4.66), diningArtifact())
	for i := 0; i < 200; i++ {
		p := e.Predict(context.Background(), "stranger", "pasta")
		if p.Rating < 4.16 || p.Rating > 5.0 {
			t.Fatalf("Predict(stranger, pasta) = %g, outside [4.16, 5.0]", p.Rating)
		}
		if p.Source != SourceFallback {
			t.Fatalf("Source = %q, want %q", p.Source, SourceFallback)
		}
		if p.Confidence != TierLow {
			t.Fatalf("Confidence = %q, want low", p.Confidence)
		}
	}
}

func TestPredictDiningUnready(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, NewDiningPolicy(4.66), nil)
	p := e.Predict(context.Background(), "u1", "pasta")
	if p.Rating != 4.66 {
		t.Errorf("Predict() on unready model = %g, want 4.66", p.Rating)
	}
	if p.Source != SourceUnready {
		t.Errorf("Source = %q, want %q", p.Source, SourceUnready)
	}
}

func TestPredictRoomsFallbacks(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, NewRoomsPolicy(), roomsArtifact())
	ctx := context.Background()

	// New user, known room: exactly the room's feature-table average.
	if got := e.Predict(ctx, "stranger", "r5").Rating; got != 3.625 {
		t.Errorf("new user, known room = %g, want 3.625", got)
	}

	// Unknown room: neutral default regardless of the user.
	if got := e.Predict(ctx, "stranger", "nowhere").Rating; got != 3.5 {
		t.Errorf("both unknown = %g, want 3.5", got)
	}

	// Known user, unknown room: the user's own mean observed rating.
	if got := e.Predict(ctx, "shallow", "nowhere").Rating; got != 3.5 {
		t.Errorf("known user (mean 3.5), unknown room = %g, want 3.5", got)
	}
	if got := e.Predict(ctx, "mid", "nowhere").Rating; got != 3.0 {
		t.Errorf("known user (mean 3.0), unknown room = %g, want 3.0", got)
	}
}

func TestConfidenceRoomsTiers(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, NewRoomsPolicy(), roomsArtifact())

	tests := []struct {
		userID string
		want   Tier
	}{
		{"deep", TierHigh},
		{"mid", TierMedium},
		{"shallow", TierLow},
		{"stranger", TierLow},
	}
	for _, tt := range tests {
		if got := e.Confidence(tt.userID, "r0"); got != tt.want {
			t.Errorf("Confidence(%s) = %q, want %q", tt.userID, got, tt.want)
		}
	}

	// Deeper history never yields a lower tier.
	if e.Confidence("deep", "r0").Rank() < e.Confidence("shallow", "r0").Rank() {
		t.Error("tier for 10 ratings ranked below tier for 2 ratings")
	}
}

func TestConfidenceDiningNeverMedium(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, NewDiningPolicy(4.66), diningArtifact())

	tests := []struct {
		userID, itemID string
		want           Tier
	}{
		{"u1", "pasta", TierHigh},
		{"u1", "unknown", TierLow},
		{"stranger", "pasta", TierLow},
		{"stranger", "unknown", TierLow},
	}
	for _, tt := range tests {
		if got := e.Confidence(tt.userID, tt.itemID); got != tt.want {
			t.Errorf("Confidence(%s, %s) = %q, want %q", tt.userID, tt.itemID, got, tt.want)
		}
	}
}

func TestRecommendSortedAndTruncated(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, NewDiningPolicy(4.66), diningArtifact())
	candidates := []string{"soup", "pasta", "toast"}

	recs, total := e.Recommend(context.Background(), "u1", candidates, 2)
	if total != 3 {
		t.Errorf("total candidates = %d, want 3", total)
	}
	if len(recs) != 2 {
		t.Fatalf("len(recs) = %d, want 2", len(recs))
	}
	for i := 1; i < len(recs); i++ {
		if recs[i].PredictedRating > recs[i-1].PredictedRating {
			t.Errorf("recs not sorted: %g before %g", recs[i-1].PredictedRating, recs[i].PredictedRating)
		}
	}
	// u1 · pasta clamps to 5.0, the highest possible score.
	if recs[0].ItemID != "pasta" {
		t.Errorf("top recommendation = %q, want pasta", recs[0].ItemID)
	}
	for _, r := range recs {
		if r.Reason != ReasonCollaborative {
			t.Errorf("Reason = %q, want %q", r.Reason, ReasonCollaborative)
		}
	}
}

func TestRecommendUnreadyReturnsEmpty(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, NewRoomsPolicy(), nil)
	recs, total := e.Recommend(context.Background(), "deep", nil, 10)
	if len(recs) != 0 || total != 0 {
		t.Errorf("Recommend() on unready model = %d recs, %d total, want 0, 0", len(recs), total)
	}
	if recs == nil {
		t.Error("Recommend() returned nil, want empty slice")
	}
}

func TestRecommendRoomsDefaultCandidatesExcludeRated(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, NewRoomsPolicy(), roomsArtifact())

	// deep has rated r0..r9; default candidates are r10 and r11.
	recs, total := e.Recommend(context.Background(), "deep", nil, 10)
	if total != 2 {
		t.Fatalf("total candidates = %d, want 2", total)
	}
	for _, r := range recs {
		if r.ItemID != "r10" && r.ItemID != "r11" {
			t.Errorf("recommended already-rated room %q", r.ItemID)
		}
		if r.Enrichment == nil {
			t.Errorf("room %q missing enrichment", r.ItemID)
		} else if r.Hotel != "Grand" {
			t.Errorf("room %q hotel = %q, want Grand", r.ItemID, r.Hotel)
		}
	}
}

func TestRecommendRoomsColdStart(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, NewRoomsPolicy(), roomsArtifact())

	recs, _ := e.Recommend(context.Background(), "stranger", nil, 3)
	if len(recs) != 3 {
		t.Fatalf("len(recs) = %d, want 3", len(recs))
	}
	// Highest static average rating is r11 (4.375).
	if recs[0].ItemID != "r11" {
		t.Errorf("top cold-start room = %q, want r11", recs[0].ItemID)
	}
	for _, r := range recs {
		if r.Reason != "popularity" {
			t.Errorf("Reason = %q, want popularity", r.Reason)
		}
		if r.Confidence != TierMedium {
			t.Errorf("Confidence = %q, want medium", r.Confidence)
		}
	}
}

func TestPopularSorted(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, NewRoomsPolicy(), roomsArtifact())
	recs := e.Popular(5)
	if len(recs) != 5 {
		t.Fatalf("len(recs) = %d, want 5", len(recs))
	}
	for i := 1; i < len(recs); i++ {
		if recs[i].PredictedRating > recs[i-1].PredictedRating {
			t.Errorf("popular not sorted: %g before %g", recs[i-1].PredictedRating, recs[i].PredictedRating)
		}
	}
}

func TestPopularDiningUnsupported(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, NewDiningPolicy(4.66), diningArtifact())
	if recs := e.Popular(5); len(recs) != 0 {
		t.Errorf("Popular() on dining = %d recs, want 0", len(recs))
	}
}

func TestModelInfoRoundTrip(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, NewRoomsPolicy(), roomsArtifact())
	info := e.ModelInfo()
	if !info.IsLoaded {
		t.Error("IsLoaded = false after load")
	}
	if info.NumUsers != 3 || info.NumItems != 12 {
		t.Errorf("dimensions = %dx%d, want 3x12", info.NumUsers, info.NumItems)
	}
	if info.ModelType != "SVD" {
		t.Errorf("ModelType = %q, want SVD", info.ModelType)
	}
	if info.GlobalMean != 3.8 {
		t.Errorf("GlobalMean = %g, want 3.8", info.GlobalMean)
	}
}

func TestModelInfoUnready(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, NewDiningPolicy(4.66), nil)
	info := e.ModelInfo()
	if info.IsLoaded {
		t.Error("IsLoaded = true with no model")
	}
	if info.ModelType != "None" {
		t.Errorf("ModelType = %q, want None", info.ModelType)
	}
}

func TestClampTopN(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, NewDiningPolicy(4.66), nil)

	tests := []struct {
		in, want int
	}{
		{0, 10},
		{-3, 10},
		{7, 7},
		{100, 100},
		{5000, 100},
	}
	for _, tt := range tests {
		if got := e.clampTopN(tt.in); got != tt.want {
			t.Errorf("clampTopN(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
