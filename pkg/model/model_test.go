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
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/xz1/capacity-prediction/pkg/errors"
	"github.com/xz1/capacity-prediction/pkg/model/modeltest"
	"github.com/xz1/capacity-prediction/pkg/schema"
)

func loadFixture(t *testing.T) *Engine {
	t.Helper()
	e, err := LoadEngine(modeltest.Dir(t))
	require.NoError(t, err)
	return e
}

func TestLoadEngine(t *testing.T) {
	e := loadFixture(t)
	assert.Equal(t, modeltest.Version, e.Version())
	assert.Equal(t, modeltest.Features, e.Schema().FeatureCols)
}

func TestLoadEngineWithoutPipeline(t *testing.T) {
	dir := modeltest.Dir(t)
	require.NoError(t, os.Remove(filepath.Join(dir, "num_pipeline.json")))

	e, err := LoadEngine(dir)
	require.NoError(t, err)

	// Raw values are scored directly against borders fitted on scaled input.
	out, err := e.Predict(NewFrame(e.Schema(), []schema.Row{
		{schema.Number(-1), schema.Number(-1), schema.String("B")},
	}))
	require.NoError(t, err)
	assert.Equal(t, []float64{90}, out)
}

func TestLoadEngineErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(t *testing.T, dir string)
	}{
		{
			name: "no descriptor",
			mutate: func(t *testing.T, dir string) {
				require.NoError(t, os.Remove(filepath.Join(dir, "metadata.json")))
			},
		},
		{
			name: "no model",
			mutate: func(t *testing.T, dir string) {
				require.NoError(t, os.Remove(filepath.Join(dir, "model.json")))
			},
		},
		{
			name: "bad leaf count",
			mutate: func(t *testing.T, dir string) {
				writeJSON(t, dir, "model.json", `{"trees":[{"splits":[{"feature":"cycle","border":0}],"leaf_values":[1]}]}`)
			},
		},
		{
			name: "unknown split feature",
			mutate: func(t *testing.T, dir string) {
				writeJSON(t, dir, "model.json", `{"trees":[{"splits":[{"feature":"zz","border":0}],"leaf_values":[1,2]}]}`)
			},
		},
		{
			name: "border on categorical",
			mutate: func(t *testing.T, dir string) {
				writeJSON(t, dir, "model.json", `{"trees":[{"splits":[{"feature":"grade","border":0}],"leaf_values":[1,2]}]}`)
			},
		},
		{
			name: "unknown format",
			mutate: func(t *testing.T, dir string) {
				writeJSON(t, dir, "model.json", `{"format":"cbm","trees":[]}`)
			},
		},
		{
			name: "pipeline missing statistic",
			mutate: func(t *testing.T, dir string) {
				writeJSON(t, dir, "num_pipeline.json", `{"imputer":{"strategy":"median","statistics":{"cycle":1}}}`)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := modeltest.Dir(t)
			tt.mutate(t, dir)
			_, err := LoadEngine(dir)
			require.Error(t, err)
			assert.True(t, apperrors.Is(err, apperrors.ErrCodeConfig))
		})
	}
}

func writeJSON(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600))
}

func TestPredict(t *testing.T) {
	e := loadFixture(t)

	rows := []schema.Row{
		{schema.Number(20), schema.Number(4), schema.String("A")},
		{schema.Number(5), schema.Number(3), schema.String("B")},
		{schema.Null(), schema.Null(), schema.Null()},
		{schema.String("12"), schema.String(" 3.9 "), schema.String("A")},
	}
	out, err := e.Predict(NewFrame(e.Schema(), rows))
	require.NoError(t, err)
	assert.Equal(t, []float64{
		modeltest.Expected(20, 4, "A"),
		modeltest.Expected(5, 3, "B"),
		modeltest.Expected(10, 3.5, "NA"),
		modeltest.Expected(12, 3.9, "A"),
	}, out)
}

func TestPreprocessReordersAndIgnoresExtraColumns(t *testing.T) {
	e := loadFixture(t)

	f := &Frame{
		Columns: []string{"batch", "grade", "voltage", "cycle"},
		Rows: []schema.Row{
			{schema.String("b-1"), schema.Null(), schema.Number(4), schema.Number(15)},
		},
	}
	enc, err := e.Preprocess(f)
	require.NoError(t, err)
	assert.Equal(t, 1, enc.Len())
	assert.Equal(t, MissingCategory, enc.Category(0, 2))
	assert.InDelta(t, 1.0, enc.Float(0, 0), 1e-9)
	assert.InDelta(t, 1.0, enc.Float(0, 1), 1e-9)

	out, err := e.Predict(f)
	require.NoError(t, err)
	assert.Equal(t, []float64{modeltest.Expected(15, 4, "NA")}, out)
}

func TestPreprocessMissingColumns(t *testing.T) {
	e := loadFixture(t)

	_, err := e.Preprocess(&Frame{Columns: []string{"voltage"}, Rows: nil})
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeSchema, apperrors.CodeOf(err))

	var se *apperrors.StructuredError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, []string{"cycle", "grade"}, se.Context["missing"])
}

func TestPreprocessUnparseableNumeric(t *testing.T) {
	e := loadFixture(t)

	_, err := e.Predict(NewFrame(e.Schema(), []schema.Row{
		{schema.String("abc"), schema.Number(1), schema.String("A")},
	}))
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeInference, apperrors.CodeOf(err))
}

func TestPredictIsStatelessAcrossCalls(t *testing.T) {
	e := loadFixture(t)

	var rows []schema.Row
	for i := range 23 {
		rows = append(rows, schema.Row{
			schema.Number(float64(i)),
			schema.Number(3 + float64(i%5)*0.2),
			schema.String([]string{"A", "B", "C"}[i%3]),
		})
	}
	f := NewFrame(e.Schema(), rows)

	whole, err := e.Predict(f)
	require.NoError(t, err)
	require.Len(t, whole, len(rows))

	for _, chunk := range []int{1, 4, 7, len(rows)} {
		var got []float64
		for start := 0; start < f.Len(); start += chunk {
			end := min(start+chunk, f.Len())
			part, err := e.Predict(f.Slice(start, end))
			require.NoError(t, err)
			got = append(got, part...)
		}
		assert.Equal(t, whole, got, "chunk size %d", chunk)
	}
}

func TestEnsembleNaNGoesLeft(t *testing.T) {
	s, err := schema.New([]string{"x"}, nil, nil, "v")
	require.NoError(t, err)

	border := 0.0
	ens := &Ensemble{Bias: 1, Trees: []Tree{{
		Splits:     []Split{{Feature: "x", Border: &border}},
		LeafValues: []float64{-1, 1},
	}}}
	require.NoError(t, ens.Bind(s))

	out, err := NewEngine(s, ens, nil).Predict(NewFrame(s, []schema.Row{
		{schema.Number(math.NaN())},
		{schema.Number(0.5)},
	}))
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 2}, out)
}

func TestProviderLoadsOnceUnderConcurrency(t *testing.T) {
	dir := modeltest.Dir(t)
	var loads atomic.Int32
	p := NewProvider(func(ctx context.Context) (*Engine, error) {
		loads.Add(1)
		time.Sleep(20 * time.Millisecond)
		return DirLoader(dir)(ctx)
	})

	const callers = 32
	engines := make([]*Engine, callers)
	var wg sync.WaitGroup
	for i := range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			e, err := p.Get(context.Background())
			assert.NoError(t, err)
			engines[i] = e
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), loads.Load())
	for _, e := range engines {
		assert.Same(t, engines[0], e)
	}
}

func TestProviderRetriesAfterFailure(t *testing.T) {
	dir := t.TempDir()
	p := NewProvider(DirLoader(dir))

	_, ok := p.Loaded()
	assert.False(t, ok)

	_, err := p.Get(context.Background())
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeModelUnavailable, apperrors.CodeOf(err))
	assert.Error(t, p.LastError())

	require.NoError(t, modeltest.Write(dir))
	e, err := p.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, modeltest.Version, e.Version())
	assert.NoError(t, p.LastError())

	loaded, ok := p.Loaded()
	assert.True(t, ok)
	assert.Same(t, e, loaded)
}

func TestProviderCanceledContext(t *testing.T) {
	p := NewProvider(DirLoader(modeltest.Dir(t)))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.Get(ctx)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeModelUnavailable, apperrors.CodeOf(err))
}

func TestProviderWarm(t *testing.T) {
	p := NewProvider(DirLoader(modeltest.Dir(t)))
	p.Warm(context.Background())
	_, ok := p.Loaded()
	assert.True(t, ok)

	failing := NewProvider(DirLoader(t.TempDir()))
	failing.Warm(context.Background())
	_, ok = failing.Loaded()
	assert.False(t, ok)
}
