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
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/xz1/capacity-prediction/pkg/defaults"
	apperrors "github.com/xz1/capacity-prediction/pkg/errors"
	"github.com/xz1/capacity-prediction/pkg/serializer"
	"github.com/xz1/capacity-prediction/pkg/server"
	"github.com/xz1/capacity-prediction/pkg/store"
)

// Error kinds returned in the "error" field of prediction responses.
const (
	KindValidation      = "validation_error"
	KindPredictFailed   = "predict_failed"
	KindModelNotLoaded  = "model_not_loaded"
	KindNoFile          = "no_file"
	KindFileTooLarge    = "file_too_large"
	KindReadCSVFailed   = "read_csv_failed"
	KindMissingFeatures = "missing_features"
	KindSaveFailed      = "save_failed"
)

// Routes served by Handlers.
const (
	PathPredict = "/predict"
	PathBatch   = "/predict/batch"
	PathFile    = "/predict/file"
	PathLog     = "/log"
)

// multipartOverhead is the allowance for multipart framing on top of the
// file size limit.
const multipartOverhead = 1 << 20

// Handlers returns the prediction routes keyed by mux pattern.
func (s *Service) Handlers() map[string]http.HandlerFunc {
	return map[string]http.HandlerFunc{
		PathPredict: s.HandlePredict,
		PathBatch:   s.HandleBatch,
		PathFile:    s.HandleFile,
		PathLog:     s.HandleLog,
	}
}

// HealthResponse is the body of GET /health. It is always served with 200;
// a model that fails to load is reported in ModelLoadError.
type HealthResponse struct {
	Status         string `json:"status"`
	ModelVersion   string `json:"model_version,omitempty"`
	FeatureCount   *int   `json:"feature_count,omitempty"`
	ModelLoadError string `json:"model_load_error,omitempty"`
}

// HandleHealth reports liveness and the model state. A model that is not yet
// loaded is loaded here.
func (s *Service) HandleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}

	resp := HealthResponse{Status: "ok"}
	eng, err := s.provider.Get(r.Context())
	if err != nil {
		slog.Warn("health: model service not loaded", "error", err)
		resp.ModelLoadError = err.Error()
	} else {
		n := eng.Schema().Len()
		resp.ModelVersion = eng.Version()
		resp.FeatureCount = &n
	}

	serializer.RespondJSON(w, http.StatusOK, resp)
}

// HandlePredict serves POST /predict with body {"data": {feature: value}}.
// Optional "user_id" and "source" are stored with the prediction record.
func (s *Service) HandlePredict(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}

	var req SingleRequest
	if !s.decode(w, r, &req) {
		return
	}

	res, err := s.PredictSingle(r.Context(), &req)
	if err != nil {
		kind := KindPredictFailed
		switch apperrors.CodeOf(err) {
		case apperrors.ErrCodeValidation:
			kind = KindValidation
		case apperrors.ErrCodePersistence:
			kind = KindSaveFailed
		}
		server.WriteErrorFromErr(w, r, err, kind)
		return
	}

	serializer.RespondJSON(w, http.StatusOK, res)
}

// HandleBatch serves POST /predict/batch with body {"data": [{...}, ...]}.
func (s *Service) HandleBatch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}

	var req BatchRequest
	if !s.decode(w, r, &req) {
		return
	}

	res, err := s.PredictBatch(r.Context(), &req)
	if err != nil {
		kind := KindPredictFailed
		if apperrors.CodeOf(err) == apperrors.ErrCodeValidation {
			kind = KindValidation
		}
		server.WriteErrorFromErr(w, r, err, kind)
		return
	}

	serializer.RespondJSON(w, http.StatusOK, res)
}

// HandleFile serves POST /predict/file with a multipart "file" field holding
// a comma-separated table. The result is saved as an artifact and its
// download URL returned.
func (s *Service) HandleFile(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}

	maxBytes := s.MaxFileBytes()
	if r.ContentLength > maxBytes+multipartOverhead {
		s.fileTooLarge(w, r)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes+multipartOverhead)

	if err := r.ParseMultipartForm(defaults.MultipartMemory); err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			s.fileTooLarge(w, r)
			return
		}
		server.WriteError(w, r, http.StatusBadRequest, KindNoFile, err.Error(), false)
		return
	}
	defer func() {
		if err := r.MultipartForm.RemoveAll(); err != nil {
			slog.Warn("failed to remove multipart temp files", "error", err)
		}
	}()

	file, header, err := r.FormFile("file")
	if err != nil {
		server.WriteError(w, r, http.StatusBadRequest, KindNoFile, nil, false)
		return
	}
	defer file.Close()

	if header.Size > maxBytes {
		s.fileTooLarge(w, r)
		return
	}

	content, err := io.ReadAll(file)
	if err != nil {
		server.WriteError(w, r, http.StatusBadRequest, KindReadCSVFailed, err.Error(), false)
		return
	}

	slog.Debug("file prediction request",
		"filename", header.Filename,
		"size", header.Size,
		"requestID", server.RequestID(r))

	res, err := s.PredictFile(r.Context(), content)
	if err != nil {
		switch apperrors.CodeOf(err) {
		case apperrors.ErrCodeModelUnavailable:
			server.WriteErrorFromErr(w, r, err, KindModelNotLoaded)
		case apperrors.ErrCodeInvalidRequest:
			server.WriteError(w, r, http.StatusBadRequest, KindReadCSVFailed, describe(err), false)
		case apperrors.ErrCodeSchema:
			server.WriteErrorFromErr(w, r, err, KindMissingFeatures)
		case apperrors.ErrCodePersistence:
			server.WriteErrorFromErr(w, r, err, KindSaveFailed)
		default:
			server.WriteErrorFromErr(w, r, err, KindPredictFailed)
		}
		return
	}

	res.DownloadURL = s.artifacts.BuildURL(r, res.FileName)
	serializer.RespondJSON(w, http.StatusOK, res)
}

// LogRequest is the body of POST /log.
type LogRequest struct {
	Level   string  `json:"level"`
	Message *string `json:"message"`
}

// HandleLog serves POST /log, appending one audit log record. Level defaults
// to INFO. The stored record is returned with 201.
func (s *Service) HandleLog(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}

	var req LogRequest
	if !s.decode(w, r, &req) {
		return
	}

	fieldErrs := map[string]string{}
	level, err := store.ParseLevel(req.Level)
	if err != nil {
		fieldErrs["level"] = err.Error()
	}
	if req.Message == nil {
		fieldErrs["message"] = "This field is required."
	}
	if len(fieldErrs) > 0 {
		server.WriteError(w, r, http.StatusBadRequest, KindValidation, fieldErrs, false)
		return
	}

	rec := &store.LogRecord{Level: level, Message: *req.Message}
	if err := s.logs.AppendLog(r.Context(), rec); err != nil {
		server.WriteErrorFromErr(w, r,
			apperrors.Wrap(apperrors.ErrCodePersistence, "failed to save log record", err), KindSaveFailed)
		return
	}

	serializer.RespondJSON(w, http.StatusCreated, rec)
}

// decode reads a JSON body into v, writing invalid_request on failure.
func (s *Service) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, s.MaxFileBytes())
	if err := serializer.DecodeJSON(r.Body, v); err != nil {
		server.WriteError(w, r, http.StatusBadRequest, server.KindInvalidRequest,
			map[string]any{"error": "JSON parse error - " + err.Error()}, false)
		return false
	}
	return true
}

func (s *Service) fileTooLarge(w http.ResponseWriter, r *http.Request) {
	server.WriteError(w, r, http.StatusBadRequest, KindFileTooLarge,
		map[string]any{"max_mb": s.maxFileMB}, false)
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request, allowed string) {
	w.Header().Set("Allow", allowed)
	server.WriteError(w, r, http.StatusMethodNotAllowed, server.KindMethodNotAllowed,
		map[string]any{"method": r.Method}, false)
}

// describe returns the client-facing text of a request error: its message
// and, for plain causes, the cause.
func describe(err error) string {
	var se *apperrors.StructuredError
	if !errors.As(err, &se) {
		return err.Error()
	}
	var inner *apperrors.StructuredError
	if se.Cause != nil && !errors.As(se.Cause, &inner) {
		return se.Message + ": " + se.Cause.Error()
	}
	return se.Message
}
