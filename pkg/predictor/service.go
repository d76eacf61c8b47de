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

package predictor

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/xz1/capacity-prediction/pkg/defaults"
	apperrors "github.com/xz1/capacity-prediction/pkg/errors"
	"github.com/xz1/capacity-prediction/pkg/model"
	"github.com/xz1/capacity-prediction/pkg/schema"
	"github.com/xz1/capacity-prediction/pkg/store"
	"github.com/xz1/capacity-prediction/pkg/table"
	"github.com/xz1/capacity-prediction/pkg/validator"
)

// Service runs the single, batch and file prediction flows against the
// shared engine.
type Service struct {
	provider    *model.Provider
	predictions store.PredictionStore
	logs        store.LogStore
	artifacts   *store.ArtifactStore
	maxFileMB   int
	chunkSize   int
}

// Option configures a Service.
type Option func(*Service)

// WithPredictionStore sets where single-record predictions are persisted.
func WithPredictionStore(ps store.PredictionStore) Option {
	return func(s *Service) {
		s.predictions = ps
	}
}

// WithLogStore sets where audit log records are appended.
func WithLogStore(ls store.LogStore) Option {
	return func(s *Service) {
		s.logs = ls
	}
}

// WithArtifactStore sets where file-flow results are written.
func WithArtifactStore(as *store.ArtifactStore) Option {
	return func(s *Service) {
		s.artifacts = as
	}
}

// WithMaxFileMB sets the upload size limit in MiB. Non-positive values are ignored.
func WithMaxFileMB(mb int) Option {
	return func(s *Service) {
		if mb > 0 {
			s.maxFileMB = mb
		}
	}
}

// WithChunkSize sets the number of rows scored per chunk in the file flow.
// Non-positive values are ignored.
func WithChunkSize(rows int) Option {
	return func(s *Service) {
		if rows > 0 {
			s.chunkSize = rows
		}
	}
}

// New returns a Service using provider for the engine. Stores default to an
// in-memory backend and artifacts to ./media.
func New(provider *model.Provider, opts ...Option) (*Service, error) {
	if provider == nil {
		return nil, apperrors.New(apperrors.ErrCodeConfig, "model provider is required")
	}

	s := &Service{
		provider:  provider,
		maxFileMB: defaults.MaxUploadMB,
		chunkSize: defaults.ChunkSize,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.predictions == nil || s.logs == nil {
		mem := store.NewMemoryStore()
		if s.predictions == nil {
			s.predictions = mem
		}
		if s.logs == nil {
			s.logs = mem
		}
	}
	if s.artifacts == nil {
		s.artifacts = store.NewArtifactStore("media", defaults.ArtifactSubdir, "/media/")
	}
	return s, nil
}

// MaxFileBytes returns the upload size limit in bytes.
func (s *Service) MaxFileBytes() int64 {
	return int64(s.maxFileMB) << 20
}

// Artifacts returns the store result files are written to.
func (s *Service) Artifacts() *store.ArtifactStore {
	return s.artifacts
}

// SingleRequest is the payload of a single-record prediction.
type SingleRequest struct {
	Data   any     `json:"data"`
	UserID *int64  `json:"user_id,omitempty"`
	Source *string `json:"source,omitempty"`
}

// SingleResult is the response of a single-record prediction.
type SingleResult struct {
	Prediction     float64 `json:"prediction"`
	ModelVersion   string  `json:"model_version"`
	ElapsedSeconds float64 `json:"elapsed_seconds"`
}

// BatchRequest is the payload of a batch prediction.
type BatchRequest struct {
	Data any `json:"data"`
}

// BatchResult is the response of a batch prediction. Each entry carries the
// validated feature values followed by the prediction.
type BatchResult struct {
	Predictions    []schema.Fields `json:"predictions"`
	Count          int             `json:"count"`
	ModelVersion   string          `json:"model_version"`
	ElapsedSeconds float64         `json:"elapsed_seconds"`
}

// FileResult is the response of a file prediction.
type FileResult struct {
	FileName       string  `json:"file_name"`
	Rows           int     `json:"rows"`
	DownloadURL    string  `json:"download_url"`
	ModelVersion   string  `json:"model_version"`
	ElapsedSeconds float64 `json:"elapsed_seconds"`
}

// PredictSingle validates one record, scores it, persists a PredictionRecord
// and writes one audit log record for the outcome.
func (s *Service) PredictSingle(ctx context.Context, req *SingleRequest) (*SingleResult, error) {
	start := time.Now()
	res, err := s.predictSingle(ctx, req, start)
	observe(ModeSingle, 1, time.Since(start).Seconds(), err)
	return res, err
}

func (s *Service) predictSingle(ctx context.Context, req *SingleRequest, start time.Time) (*SingleResult, error) {
	eng, err := s.provider.Get(ctx)
	if err != nil {
		s.audit(ctx, store.LevelError, "Prediction failed: "+apperrors.MessageOf(err))
		return nil, err
	}
	sch := eng.Schema()

	rec, _ := req.Data.(map[string]any)
	row, rep := validator.ValidateRecord(sch, rec)
	if rep != nil {
		slog.Debug("single prediction validation failed", "error", rep.Error())
		s.audit(ctx, store.LevelError, "Validation failed: "+detailText(rep.Detail()))
		return nil, rep.Err()
	}

	preds, err := eng.Predict(model.NewFrame(sch, []schema.Row{row}))
	if err != nil {
		slog.Error("single prediction failed", "error", err)
		s.audit(ctx, store.LevelError, "Prediction failed: "+apperrors.MessageOf(err))
		return nil, err
	}
	value := preds[0]
	elapsed := time.Since(start).Seconds()

	pr := &store.PredictionRecord{
		InputData:  sch.Fields(row),
		Prediction: value,
		UserID:     req.UserID,
		Source:     req.Source,
	}
	wctx, cancel := context.WithTimeout(ctx, defaults.StoreWriteTimeout)
	defer cancel()
	if err := s.predictions.InsertPrediction(wctx, pr); err != nil {
		perr := apperrors.Wrap(apperrors.ErrCodePersistence, "failed to save prediction record", err)
		slog.Error("prediction record not saved", "error", perr)
		s.audit(ctx, store.LevelError, "Prediction failed: "+perr.Message)
		return nil, perr
	}

	s.audit(ctx, store.LevelInfo,
		fmt.Sprintf("Prediction success, value=%s, elapsed=%.3fs", schema.FormatFloat(value), elapsed))
	slog.Info("single prediction succeeded", "id", pr.ID, "elapsed", elapsed)

	return &SingleResult{
		Prediction:     value,
		ModelVersion:   eng.Version(),
		ElapsedSeconds: round(elapsed, 4),
	}, nil
}

// PredictBatch validates all records, rejecting the whole batch if any record
// fails, then scores them in one call. Nothing is persisted.
func (s *Service) PredictBatch(ctx context.Context, req *BatchRequest) (*BatchResult, error) {
	start := time.Now()
	res, err := s.predictBatch(ctx, req, start)
	rows := 0
	if res != nil {
		rows = res.Count
	}
	observe(ModeBatch, rows, time.Since(start).Seconds(), err)
	return res, err
}

func (s *Service) predictBatch(ctx context.Context, req *BatchRequest, start time.Time) (*BatchResult, error) {
	eng, err := s.provider.Get(ctx)
	if err != nil {
		return nil, err
	}
	sch := eng.Schema()

	var recs []map[string]any
	switch data := req.Data.(type) {
	case nil:
	case []any:
		recs = make([]map[string]any, len(data))
		for i, d := range data {
			recs[i], _ = d.(map[string]any)
		}
	default:
		rep := &validator.Report{Message: fmt.Sprintf("expected a list of records but got type %s", jsonType(data))}
		return nil, rep.Err()
	}

	rows, rep := validator.ValidateBatch(sch, recs)
	if rep != nil {
		slog.Debug("batch prediction validation failed", "error", rep.Error())
		return nil, rep.Err()
	}

	preds, err := eng.Predict(model.NewFrame(sch, rows))
	if err != nil {
		slog.Error("batch prediction failed", "count", len(rows), "error", err)
		return nil, err
	}

	out := make([]schema.Fields, len(rows))
	for i, row := range rows {
		out[i] = append(sch.Fields(row), schema.Field{
			Name:  defaults.PredictionColumn,
			Value: schema.Number(preds[i]),
		})
	}

	elapsed := time.Since(start).Seconds()
	slog.Info("batch prediction succeeded", "count", len(out), "elapsed", elapsed)

	return &BatchResult{
		Predictions:    out,
		Count:          len(out),
		ModelVersion:   eng.Version(),
		ElapsedSeconds: round(elapsed, 4),
	}, nil
}

// PredictFile parses an uploaded table, scores it chunk by chunk and saves
// the annotated table as a new artifact. DownloadURL is the artifact's public
// path; callers with a request should replace it with an absolute URL.
func (s *Service) PredictFile(ctx context.Context, content []byte) (*FileResult, error) {
	start := time.Now()
	res, err := s.predictFile(ctx, content, start)
	rows := 0
	if res != nil {
		rows = res.Rows
	}
	observe(ModeFile, rows, time.Since(start).Seconds(), err)
	return res, err
}

func (s *Service) predictFile(ctx context.Context, content []byte, start time.Time) (*FileResult, error) {
	eng, err := s.provider.Get(ctx)
	if err != nil {
		return nil, err
	}

	in, err := table.Parse(content)
	if err != nil {
		slog.Warn("failed to read uploaded table", "error", err)
		return nil, err
	}

	out, err := ScoreTable(ctx, eng, in, s.chunkSize)
	if err != nil {
		return nil, err
	}

	name := store.NewName()
	path, err := s.artifacts.SaveTable(name, out.Columns, out.Rows)
	if err != nil {
		slog.Error("failed to save prediction artifact", "error", err)
		return nil, err
	}

	elapsed := time.Since(start).Seconds()
	slog.Info("file prediction succeeded",
		"file", name,
		"path", path,
		"rows", out.Len(),
		"encoding", in.Encoding,
		"elapsed", elapsed)

	return &FileResult{
		FileName:       name,
		Rows:           out.Len(),
		DownloadURL:    s.artifacts.URLPath(name),
		ModelVersion:   eng.Version(),
		ElapsedSeconds: round(elapsed, 3),
	}, nil
}

// ScoreTable scores in in chunks of chunkSize rows and returns a copy of in
// with the prediction column appended, or replaced if in already has one.
// Non-feature columns are kept. Chunks are scored sequentially in order.
func ScoreTable(ctx context.Context, eng *model.Engine, in *table.Table, chunkSize int) (*table.Table, error) {
	sch := eng.Schema()
	if missing := sch.Missing(func(n string) bool { _, ok := in.Index(n); return ok }); len(missing) > 0 {
		return nil, apperrors.NewWithContext(apperrors.ErrCodeSchema,
			"input is missing required feature columns", map[string]any{"missing": missing})
	}
	if chunkSize <= 0 {
		chunkSize = defaults.ChunkSize
	}

	columns := append([]string(nil), in.Columns...)
	predIdx, ok := in.Index(defaults.PredictionColumn)
	if !ok {
		predIdx = len(columns)
		columns = append(columns, defaults.PredictionColumn)
	}

	frame := &model.Frame{Columns: in.Columns, Rows: in.Rows}
	out := &table.Table{
		Columns:  columns,
		Rows:     make([]schema.Row, 0, in.Len()),
		Encoding: table.EncodingUTF8,
	}

	for from := 0; from < frame.Len(); from += chunkSize {
		if err := ctx.Err(); err != nil {
			return nil, apperrors.Wrap(apperrors.ErrCodeTimeout, "prediction canceled", err)
		}
		to := min(from+chunkSize, frame.Len())

		preds, err := eng.Predict(frame.Slice(from, to))
		if err != nil {
			slog.Error("chunk prediction failed", "from", from, "to", to, "error", err)
			return nil, err
		}

		for i, row := range frame.Rows[from:to] {
			annotated := make(schema.Row, len(columns))
			copy(annotated, row)
			annotated[predIdx] = schema.Number(preds[i])
			out.Rows = append(out.Rows, annotated)
		}
	}
	return out, nil
}

// audit appends a log record. Failures are logged, never returned.
func (s *Service) audit(ctx context.Context, level store.Level, message string) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), defaults.StoreWriteTimeout)
	defer cancel()
	if err := s.logs.AppendLog(ctx, &store.LogRecord{Level: level, Message: message}); err != nil {
		slog.Warn("failed to append log record", "level", level, "error", err)
	}
}

func detailText(detail any) string {
	b, err := json.Marshal(detail)
	if err != nil {
		return fmt.Sprint(detail)
	}
	return string(b)
}

func jsonType(v any) string {
	switch v.(type) {
	case map[string]any:
		return "object"
	case string:
		return "string"
	case json.Number, float64:
		return "number"
	case bool:
		return "bool"
	default:
		return fmt.Sprintf("%T", v)
	}
}

func round(f float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(f*p) / p
}
