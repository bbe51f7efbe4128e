// Factorserve - Collaborative Filtering Model Serving
// Copyright 2026 Factorserve Authors
// SPDX-License-Identifier: Apache-2.0
// https://github.com/factorserve/factorserve

package recommend

import (
	"fmt"
	"io"
	"os"

	json "github.com/goccy/go-json"
)

// Artifact is the on-disk JSON form of a trained model. It is the only
// weakly-typed structure in the package; buildModel converts it into an
// immutable Model and rejects anything malformed before it can reach the
// serving path.
type Artifact struct {
	ModelType    string                 `json:"model_type"`
	GlobalMean   float64                `json:"global_mean"`
	UserFactors  [][]float64            `json:"user_factors"`
	ItemFactors  [][]float64            `json:"item_factors"`
	UserIndex    map[string]int         `json:"user_index"`
	ItemIndex    map[string]int         `json:"item_index"`
	Ratings      []RatingEntry          `json:"ratings,omitempty"`
	ItemFeatures map[string]ItemFeatures `json:"item_features,omitempty"`
}

// RatingEntry is one observed interaction in the artifact's sparse rating
// list. U and I are matrix row/column indices, not external identifiers.
type RatingEntry struct {
	U int     `json:"u"`
	I int     `json:"i"`
	R float64 `json:"r"`
}

// ReadArtifact decodes a model artifact from r and converts it into an
// immutable Model. It fails fast on any shape inconsistency.
func ReadArtifact(r io.Reader) (*Model, error) {
	var art Artifact
	dec := json.NewDecoder(r)
	if err := dec.Decode(&art); err != nil {
		return nil, fmt.Errorf("decoding model artifact: %w", err)
	}
	return buildModel(&art)
}

// ReadArtifactFile opens and decodes a model artifact from path.
func ReadArtifactFile(path string) (*Model, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening model artifact: %w", err)
	}
	defer f.Close()

	m, err := ReadArtifact(f)
	if err != nil {
		return nil, fmt.Errorf("artifact %s: %w", path, err)
	}
	return m, nil
}

// buildModel validates the artifact's shape and constructs the immutable
// Model. All invariants the serving path relies on are checked here:
// a single latent rank across both factor matrices, index maps that cover
// exactly the matrix rows, and ratings within the 1-5 scale.
func buildModel(art *Artifact) (*Model, error) {
	if len(art.UserFactors) == 0 {
		return nil, fmt.Errorf("artifact has no user factors")
	}
	if len(art.ItemFactors) == 0 {
		return nil, fmt.Errorf("artifact has no item factors")
	}

	rank := len(art.UserFactors[0])
	if rank == 0 {
		return nil, fmt.Errorf("artifact has zero latent rank")
	}
	for i, row := range art.UserFactors {
		if len(row) != rank {
			return nil, fmt.Errorf("user factor row %d has rank %d, want %d", i, len(row), rank)
		}
	}
	for i, row := range art.ItemFactors {
		if len(row) != rank {
			return nil, fmt.Errorf("item factor row %d has rank %d, want %d", i, len(row), rank)
		}
	}

	if len(art.UserIndex) != len(art.UserFactors) {
		return nil, fmt.Errorf("user index has %d entries for %d factor rows",
			len(art.UserIndex), len(art.UserFactors))
	}
	if len(art.ItemIndex) != len(art.ItemFactors) {
		return nil, fmt.Errorf("item index has %d entries for %d factor rows",
			len(art.ItemIndex), len(art.ItemFactors))
	}
	for id, idx := range art.UserIndex {
		if idx < 0 || idx >= len(art.UserFactors) {
			return nil, fmt.Errorf("user %q maps to row %d, outside [0, %d)",
				id, idx, len(art.UserFactors))
		}
	}

	itemIDs := make([]string, len(art.ItemFactors))
	seen := make([]bool, len(art.ItemFactors))
	for id, idx := range art.ItemIndex {
		if idx < 0 || idx >= len(art.ItemFactors) {
			return nil, fmt.Errorf("item %q maps to row %d, outside [0, %d)",
				id, idx, len(art.ItemFactors))
		}
		if seen[idx] {
			return nil, fmt.Errorf("item row %d mapped by more than one identifier", idx)
		}
		seen[idx] = true
		itemIDs[idx] = id
	}

	var ratings *RatingMatrix
	if len(art.Ratings) > 0 {
		rows := make([]map[int]float64, len(art.UserFactors))
		for u := range rows {
			rows[u] = make(map[int]float64)
		}
		for n, e := range art.Ratings {
			if e.U < 0 || e.U >= len(art.UserFactors) {
				return nil, fmt.Errorf("rating %d references user row %d, outside [0, %d)",
					n, e.U, len(art.UserFactors))
			}
			if e.I < 0 || e.I >= len(art.ItemFactors) {
				return nil, fmt.Errorf("rating %d references item row %d, outside [0, %d)",
					n, e.I, len(art.ItemFactors))
			}
			if e.R < 1.0 || e.R > 5.0 {
				return nil, fmt.Errorf("rating %d has value %g, outside [1, 5]", n, e.R)
			}
			rows[e.U][e.I] = e.R
		}
		ratings = &RatingMatrix{rows: rows, numItems: len(art.ItemFactors)}
	}

	if art.GlobalMean != 0 && (art.GlobalMean < 1.0 || art.GlobalMean > 5.0) {
		return nil, fmt.Errorf("global mean %g outside [1, 5]", art.GlobalMean)
	}

	modelType := art.ModelType
	if modelType == "" {
		modelType = "svd"
	}

	return &Model{
		userFactors: art.UserFactors,
		itemFactors: art.ItemFactors,
		userIndex:   art.UserIndex,
		itemIndex:   art.ItemIndex,
		itemIDs:     itemIDs,
		ratings:     ratings,
		features:    art.ItemFeatures,
		globalMean:  art.GlobalMean,
		modelType:   modelType,
		rank:        rank,
	}, nil
}
