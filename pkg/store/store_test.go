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

package store

import (
	"bufio"
	"context"
	"encoding/json"
	"net/url"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/xz1/capacity-prediction/pkg/errors"
	"github.com/xz1/capacity-prediction/pkg/schema"
)

func sampleRecord() *PredictionRecord {
	return &PredictionRecord{
		InputData: schema.Fields{
			{Name: "cycle", Value: schema.Number(3)},
			{Name: "grade", Value: schema.String("A")},
		},
		Prediction: 113,
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    Level
		wantErr bool
	}{
		{in: "", want: LevelInfo},
		{in: "info", want: LevelInfo},
		{in: "WARNING", want: LevelWarning},
		{in: " error ", want: LevelError},
		{in: "debug", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMemoryStore(t *testing.T) {
	m := NewMemoryStore()
	ctx := context.Background()

	rec := sampleRecord()
	require.NoError(t, m.InsertPrediction(ctx, rec))
	assert.Equal(t, int64(1), rec.ID)
	assert.False(t, rec.CreatedAt.IsZero())

	require.NoError(t, m.AppendLog(ctx, &LogRecord{Level: LevelInfo, Message: "a"}))
	require.NoError(t, m.AppendLog(ctx, &LogRecord{Level: LevelError, Message: "b"}))

	assert.Len(t, m.Predictions(), 1)
	logs := m.Logs()
	require.Len(t, logs, 2)
	assert.Equal(t, int64(2), logs[1].ID)
	assert.Equal(t, LevelError, logs[1].Level)
	assert.NoError(t, m.Close())
}

func TestMemoryStoreConcurrentAppends(t *testing.T) {
	m := NewMemoryStore()
	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, m.AppendLog(context.Background(), &LogRecord{Level: LevelInfo, Message: "x"}))
		}()
	}
	wg.Wait()

	seen := map[int64]bool{}
	for _, l := range m.Logs() {
		assert.False(t, seen[l.ID], "duplicate id %d", l.ID)
		seen[l.ID] = true
	}
	assert.Len(t, seen, 50)
}

func readLines(t *testing.T, path string) []map[string]any {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var out []map[string]any
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var m map[string]any
		require.NoError(t, json.Unmarshal(sc.Bytes(), &m))
		out = append(out, m)
	}
	require.NoError(t, sc.Err())
	return out
}

func TestFileStore(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	fs, err := NewFileStore(dir)
	require.NoError(t, err)

	rec := sampleRecord()
	require.NoError(t, fs.InsertPrediction(ctx, rec))
	require.NoError(t, fs.AppendLog(ctx, &LogRecord{Level: LevelInfo, Message: "ok"}))
	assert.Equal(t, int64(1), rec.ID)

	preds := readLines(t, filepath.Join(dir, "prediction_record.jsonl"))
	require.Len(t, preds, 1)
	assert.Equal(t, float64(113), preds[0]["prediction"])
	assert.Equal(t, map[string]any{"cycle": float64(3), "grade": "A"}, preds[0]["input_data"])

	// Reopening continues the id sequence.
	fs2, err := NewFileStore(dir)
	require.NoError(t, err)
	next := sampleRecord()
	require.NoError(t, fs2.InsertPrediction(ctx, next))
	assert.Equal(t, int64(2), next.ID)

	logs := readLines(t, filepath.Join(dir, "log_record.jsonl"))
	require.Len(t, logs, 1)
	assert.Equal(t, "INFO", logs[0]["level"])
}

func TestOpenBackend(t *testing.T) {
	ctx := context.Background()

	b, err := OpenBackend(ctx, "memory://")
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, b)

	dir := t.TempDir()
	b, err = OpenBackend(ctx, "file://"+filepath.ToSlash(dir))
	require.NoError(t, err)
	assert.IsType(t, &FileStore{}, b)
	require.NoError(t, b.AppendLog(ctx, &LogRecord{Level: LevelInfo, Message: "x"}))
	_, err = os.Stat(filepath.Join(dir, "log_record.jsonl"))
	assert.NoError(t, err)

	_, err = OpenBackend(ctx, "mysql://localhost/db")
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeConfig, apperrors.CodeOf(err))
}

func TestOpenBackendUnreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	for _, u := range []string{
		"postgres://user:pw@127.0.0.1:1/db?sslmode=disable&connect_timeout=1",
		"clickhouse://default:@127.0.0.1:1/default?dial_timeout=200ms",
	} {
		_, err := OpenBackend(ctx, u)
		require.Error(t, err, u)
		assert.Equal(t, apperrors.ErrCodePersistence, apperrors.CodeOf(err), u)
	}
}

func TestFilePath(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{raw: "file:///var/lib/capacity", want: "/var/lib/capacity"},
		{raw: "file://./data", want: "./data"},
		{raw: "file://data", want: "data"},
		{raw: "file:data", want: "data"},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			u, err := url.Parse(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, filepath.FromSlash(tt.want), filePath(u))
		})
	}
}

func TestRouter(t *testing.T) {
	ctx := context.Background()
	logDir := t.TempDir()

	r, err := OpenRouter(ctx, map[string]string{
		EntityDefault:   "memory://",
		EntityPredictor: "memory://",
		EntityLogger:    "file://" + filepath.ToSlash(logDir),
	})
	require.NoError(t, err)
	defer r.Close()

	assert.Same(t, r.Backend(EntityDefault), r.Backend(EntityPredictor))
	assert.IsType(t, &FileStore{}, r.Logs())
	assert.IsType(t, &MemoryStore{}, r.Predictions())
	assert.Same(t, r.Backend(EntityDefault), r.Backend("unknown"))

	_, err = OpenRouter(ctx, map[string]string{EntityLogger: "memory://"})
	assert.Error(t, err)
}

func TestRouterEmptyRouteFallsBack(t *testing.T) {
	r, err := OpenRouter(context.Background(), map[string]string{
		EntityDefault:   "memory://",
		EntityPredictor: "",
	})
	require.NoError(t, err)
	assert.Same(t, r.Backend(EntityDefault), r.Backend(EntityPredictor))
}

func TestNewRouterWith(t *testing.T) {
	m := NewMemoryStore()
	r := NewRouterWith(m)
	assert.Same(t, m, r.Predictions())
	assert.Same(t, m, r.Logs())
	assert.NoError(t, r.Close())
}
