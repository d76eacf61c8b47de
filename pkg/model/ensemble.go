// Copyright (c) 2025, NVIDIA CORPORATION.  All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package model

import (
	"encoding/json"
	"fmt"
	"os"

	apperrors "github.com/xz1/capacity-prediction/pkg/errors"
	"github.com/xz1/capacity-prediction/pkg/schema"
)

// FormatObliviousTrees is the only ensemble format understood by LoadEnsemble.
const FormatObliviousTrees = "oblivious_trees"

// Split is one level of a symmetric tree. Exactly one of Border (numeric
// features) or Category (categorical features) is set.
type Split struct {
	Feature  string   `json:"feature"`
	Border   *float64 `json:"border,omitempty"`
	Category *string  `json:"category,omitempty"`
}

// Tree is an oblivious decision tree: every node at depth d tests Splits[d],
// so the leaf is addressed by the bit pattern of the split outcomes.
type Tree struct {
	Splits     []Split   `json:"splits"`
	LeafValues []float64 `json:"leaf_values"`
}

// Ensemble is a gradient-boosted sum of oblivious trees.
type Ensemble struct {
	Format string   `json:"format"`
	Bias   float64  `json:"bias"`
	Scale  *float64 `json:"scale,omitempty"`
	Trees  []Tree   `json:"trees"`

	scale    float64
	compiled [][]split
}

type split struct {
	col      int
	numeric  bool
	border   float64
	category string
}

// LoadEnsemble reads an ensemble artifact and binds its splits to s.
func LoadEnsemble(path string, s *schema.FeatureSchema) (*Ensemble, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.WrapWithContext(apperrors.ErrCodeConfig,
			"failed to read model artifact", err, map[string]any{"path": path})
	}

	var e Ensemble
	if err := json.Unmarshal(content, &e); err != nil {
		return nil, apperrors.WrapWithContext(apperrors.ErrCodeConfig,
			"malformed model artifact", err, map[string]any{"path": path})
	}
	if err := e.Bind(s); err != nil {
		return nil, apperrors.WrapWithContext(apperrors.ErrCodeConfig,
			"model artifact does not match feature schema", err, map[string]any{"path": path})
	}
	return &e, nil
}

// Bind validates the ensemble against s and resolves feature names to
// column positions. It must be called before Score.
func (e *Ensemble) Bind(s *schema.FeatureSchema) error {
	if e.Format != "" && e.Format != FormatObliviousTrees {
		return fmt.Errorf("unsupported model format %q", e.Format)
	}

	e.scale = 1
	if e.Scale != nil {
		e.scale = *e.Scale
	}

	e.compiled = make([][]split, len(e.Trees))
	for ti, t := range e.Trees {
		depth := len(t.Splits)
		if depth > 30 {
			return fmt.Errorf("tree %d: depth %d too large", ti, depth)
		}
		if want := 1 << depth; len(t.LeafValues) != want {
			return fmt.Errorf("tree %d: expected %d leaf values for depth %d, got %d",
				ti, want, depth, len(t.LeafValues))
		}

		levels := make([]split, depth)
		for d, sp := range t.Splits {
			col, ok := s.Index(sp.Feature)
			if !ok {
				return fmt.Errorf("tree %d split %d: unknown feature %q", ti, d, sp.Feature)
			}
			switch s.KindAt(col) {
			case schema.Numeric:
				if sp.Border == nil || sp.Category != nil {
					return fmt.Errorf("tree %d split %d: numeric feature %q needs a border", ti, d, sp.Feature)
				}
				levels[d] = split{col: col, numeric: true, border: *sp.Border}
			case schema.Categorical:
				if sp.Category == nil || sp.Border != nil {
					return fmt.Errorf("tree %d split %d: categorical feature %q needs a category", ti, d, sp.Feature)
				}
				levels[d] = split{col: col, category: *sp.Category}
			}
		}
		e.compiled[ti] = levels
	}
	return nil
}

// Score returns one prediction per encoded row.
func (e *Ensemble) Score(enc *Encoded) []float64 {
	out := make([]float64, enc.Len())
	for r := range out {
		var sum float64
		for ti, levels := range e.compiled {
			idx := 0
			for d, sp := range levels {
				var hit bool
				if sp.numeric {
					// NaN compares false, which sends missing values left.
					hit = enc.numeric[sp.col][r] > sp.border
				} else {
					hit = enc.cat[sp.col][r] == sp.category
				}
				if hit {
					idx |= 1 << d
				}
			}
			sum += e.Trees[ti].LeafValues[idx]
		}
		out[r] = e.Bias + e.scale*sum
	}
	return out
}
