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
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	apperrors "github.com/xz1/capacity-prediction/pkg/errors"
	"github.com/xz1/capacity-prediction/pkg/schema"
)

const (
	// DefaultModelFile is used when the descriptor has no model_path.
	DefaultModelFile = "model.json"

	// MissingCategory replaces null categorical values before scoring.
	MissingCategory = "NA"
)

// Frame is a row set with named columns. Rows are aligned to Columns, which
// may contain more columns than the model needs and in any order.
type Frame struct {
	Columns []string
	Rows    []schema.Row
}

// NewFrame returns a frame whose columns are the schema features.
func NewFrame(s *schema.FeatureSchema, rows []schema.Row) *Frame {
	return &Frame{Columns: s.FeatureCols, Rows: rows}
}

// Len returns the number of rows.
func (f *Frame) Len() int { return len(f.Rows) }

// Slice returns the rows [from, to) sharing the column header.
func (f *Frame) Slice(from, to int) *Frame {
	return &Frame{Columns: f.Columns, Rows: f.Rows[from:to]}
}

// Encoded is the model-ready columnar buffer in feature_cols order.
type Encoded struct {
	rows    int
	numeric [][]float64
	cat     [][]string
}

// Len returns the number of rows.
func (e *Encoded) Len() int { return e.rows }

// Float returns the numeric value at row r of feature column c.
func (e *Encoded) Float(r, c int) float64 { return e.numeric[c][r] }

// Category returns the categorical value at row r of feature column c.
func (e *Encoded) Category(r, c int) string { return e.cat[c][r] }

// Engine scores frames with a loaded ensemble. It holds no per-call state and
// is safe for concurrent use.
type Engine struct {
	schema   *schema.FeatureSchema
	ensemble *Ensemble
	pipeline *Pipeline
}

// NewEngine assembles an engine from already bound artifacts. pipeline may be nil.
func NewEngine(s *schema.FeatureSchema, e *Ensemble, p *Pipeline) *Engine {
	return &Engine{schema: s, ensemble: e, pipeline: p}
}

// LoadEngine loads the descriptor, the ensemble and the optional numeric
// pipeline from dir. Artifact paths in the descriptor are resolved by base
// name inside dir.
func LoadEngine(dir string) (*Engine, error) {
	descriptor, err := schema.FindDescriptor(dir)
	if err != nil {
		return nil, err
	}
	s, err := schema.Load(descriptor)
	if err != nil {
		return nil, err
	}

	modelFile := DefaultModelFile
	if s.ModelPath != "" {
		modelFile = filepath.Base(s.ModelPath)
	}
	ens, err := LoadEnsemble(filepath.Join(dir, modelFile), s)
	if err != nil {
		return nil, err
	}

	var pipe *Pipeline
	if s.PipelinePath != "" {
		p := filepath.Join(dir, filepath.Base(s.PipelinePath))
		if _, statErr := os.Stat(p); statErr == nil {
			if pipe, err = LoadPipeline(p, s); err != nil {
				return nil, err
			}
		} else {
			slog.Warn("numeric pipeline not found, scoring raw numeric features",
				"path", p)
		}
	}

	slog.Debug("engine loaded",
		"dir", dir,
		"version", s.ModelVersion,
		"features", s.Len(),
		"trees", len(ens.Trees),
		"pipeline", pipe != nil)

	return NewEngine(s, ens, pipe), nil
}

// Schema returns the feature schema the engine was trained on.
func (e *Engine) Schema() *schema.FeatureSchema { return e.schema }

// Version returns the model version tag.
func (e *Engine) Version() string { return e.schema.ModelVersion }

// Preprocess selects and reorders the frame's columns to the feature order,
// fills null categoricals with MissingCategory, parses numeric values and
// applies the numeric pipeline when present.
func (e *Engine) Preprocess(f *Frame) (*Encoded, error) {
	s := e.schema

	pos := make(map[string]int, len(f.Columns))
	for i, c := range f.Columns {
		if _, dup := pos[c]; !dup {
			pos[c] = i
		}
	}
	if missing := s.Missing(func(n string) bool { _, ok := pos[n]; return ok }); len(missing) > 0 {
		return nil, apperrors.NewWithContext(apperrors.ErrCodeSchema,
			"input is missing required feature columns", map[string]any{"missing": missing})
	}

	enc := &Encoded{
		rows:    len(f.Rows),
		numeric: make([][]float64, s.Len()),
		cat:     make([][]string, s.Len()),
	}

	for c, name := range s.FeatureCols {
		src := pos[name]
		if s.KindAt(c) == schema.Categorical {
			col := make([]string, enc.rows)
			for r, row := range f.Rows {
				v := row[src]
				if v.IsNull() {
					col[r] = MissingCategory
					continue
				}
				col[r] = v.Text()
			}
			enc.cat[c] = col
			continue
		}

		col := make([]float64, enc.rows)
		for r, row := range f.Rows {
			x, err := toFloat(row[src])
			if err != nil {
				return nil, apperrors.WrapWithContext(apperrors.ErrCodeInference,
					"could not convert value to float", err, map[string]any{
						"feature": name,
						"row":     r,
					})
			}
			col[r] = x
		}
		enc.numeric[c] = col
	}

	if e.pipeline != nil {
		e.pipeline.Transform(enc)
	}
	return enc, nil
}

// Predict preprocesses f and scores it. The result has one value per row.
func (e *Engine) Predict(f *Frame) ([]float64, error) {
	enc, err := e.Preprocess(f)
	if err != nil {
		return nil, err
	}
	return e.ensemble.Score(enc), nil
}

func toFloat(v schema.Value) (float64, error) {
	switch v.Kind() {
	case schema.KindNull:
		return math.NaN(), nil
	case schema.KindNumber:
		f, _ := v.Float()
		return f, nil
	default:
		txt := strings.TrimSpace(v.Text())
		if txt == "" {
			return math.NaN(), nil
		}
		return strconv.ParseFloat(txt, 64)
	}
}
