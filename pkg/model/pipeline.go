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
	"math"
	"os"

	apperrors "github.com/xz1/capacity-prediction/pkg/errors"
	"github.com/xz1/capacity-prediction/pkg/schema"
)

// Imputer replaces missing numeric values with fitted statistics.
type Imputer struct {
	Strategy   string             `json:"strategy" yaml:"strategy"`
	Statistics map[string]float64 `json:"statistics" yaml:"statistics"`
}

// Scaler standardizes numeric values as (x - mean) / scale.
type Scaler struct {
	Mean  map[string]float64 `json:"mean" yaml:"mean"`
	Scale map[string]float64 `json:"scale" yaml:"scale"`
}

// Pipeline is the fitted numeric transform: impute, then scale.
// Its parameters are loaded once and never refit.
type Pipeline struct {
	Imputer *Imputer `json:"imputer,omitempty" yaml:"imputer,omitempty"`
	Scaler  *Scaler  `json:"scaler,omitempty" yaml:"scaler,omitempty"`

	steps []columnStep
}

type columnStep struct {
	col     int
	fill    float64
	impute  bool
	mean    float64
	scale   float64
	doScale bool
}

// LoadPipeline reads a pipeline artifact and binds it to the numeric
// features of s.
func LoadPipeline(path string, s *schema.FeatureSchema) (*Pipeline, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.WrapWithContext(apperrors.ErrCodeConfig,
			"failed to read numeric pipeline", err, map[string]any{"path": path})
	}

	var p Pipeline
	if err := json.Unmarshal(content, &p); err != nil {
		return nil, apperrors.WrapWithContext(apperrors.ErrCodeConfig,
			"malformed numeric pipeline", err, map[string]any{"path": path})
	}
	if err := p.Bind(s); err != nil {
		return nil, apperrors.WrapWithContext(apperrors.ErrCodeConfig,
			"numeric pipeline does not match feature schema", err, map[string]any{"path": path})
	}
	return &p, nil
}

// Bind resolves the fitted parameters against the numeric features of s.
// Every numeric feature must be covered by each configured step.
func (p *Pipeline) Bind(s *schema.FeatureSchema) error {
	if p.Imputer != nil {
		switch p.Imputer.Strategy {
		case "", "median", "mean", "most_frequent", "constant":
		default:
			return fmt.Errorf("unsupported imputer strategy %q", p.Imputer.Strategy)
		}
	}

	p.steps = p.steps[:0]
	for _, name := range s.NumFeatures {
		col, _ := s.Index(name)
		step := columnStep{col: col}

		if p.Imputer != nil {
			v, ok := p.Imputer.Statistics[name]
			if !ok {
				return fmt.Errorf("imputer has no statistic for %q", name)
			}
			step.impute, step.fill = true, v
		}

		if p.Scaler != nil {
			mean, ok := p.Scaler.Mean[name]
			if !ok {
				return fmt.Errorf("scaler has no mean for %q", name)
			}
			scale, ok := p.Scaler.Scale[name]
			if !ok {
				return fmt.Errorf("scaler has no scale for %q", name)
			}
			if scale == 0 {
				scale = 1
			}
			step.doScale, step.mean, step.scale = true, mean, scale
		}

		p.steps = append(p.steps, step)
	}
	return nil
}

// Transform applies the pipeline to the numeric columns of enc in place.
func (p *Pipeline) Transform(enc *Encoded) {
	for _, st := range p.steps {
		col := enc.numeric[st.col]
		for i, x := range col {
			if st.impute && math.IsNaN(x) {
				x = st.fill
			}
			if st.doScale {
				x = (x - st.mean) / st.scale
			}
			col[i] = x
		}
	}
}
