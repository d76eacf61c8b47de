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

package server

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/xz1/capacity-prediction/pkg/errors"
	"github.com/xz1/capacity-prediction/pkg/serializer"
)

// Error kinds written by the server itself. Handlers define their own.
const (
	KindNotFound         = "not_found"
	KindMethodNotAllowed = "method_not_allowed"
	KindInvalidRequest   = "invalid_request"
	KindRateLimited      = "rate_limit_exceeded"
	KindInternal         = "internal_error"
)

// ErrorResponse is the body of every error response.
type ErrorResponse struct {
	Error     string    `json:"error"`
	Detail    any       `json:"detail,omitempty"`
	RequestID string    `json:"requestId"`
	Timestamp time.Time `json:"timestamp"`
	Retryable bool      `json:"retryable"`
}

// RequestID returns the id assigned to r by the request id middleware.
func RequestID(r *http.Request) string {
	id, _ := r.Context().Value(contextKeyRequestID).(string)
	return id
}

// WriteError writes an error response.
func WriteError(w http.ResponseWriter, r *http.Request, statusCode int,
	kind string, detail any, retryable bool) {

	requestID := RequestID(r)
	if requestID == "" {
		requestID = uuid.New().String()
	}

	serializer.RespondJSON(w, statusCode, ErrorResponse{
		Error:     kind,
		Detail:    detail,
		RequestID: requestID,
		Timestamp: time.Now().UTC(),
		Retryable: retryable,
	})
}

// WriteErrorFromErr maps err to a status code and writes it under kind.
// Client errors carry the structured context of err as detail; server errors
// carry only the top-level message, and the full chain is logged.
func WriteErrorFromErr(w http.ResponseWriter, r *http.Request, err error, kind string) {
	code := apperrors.CodeOf(err)
	status := HTTPStatusFromCode(code)

	var detail any = "internal server error"
	var se *apperrors.StructuredError
	if errors.As(err, &se) {
		detail = se.Message
	}
	if status < http.StatusInternalServerError {
		if d := clientDetail(err); d != nil {
			detail = d
		}
	} else {
		slog.Error("request failed",
			"requestID", RequestID(r),
			"method", r.Method,
			"path", r.URL.Path,
			"kind", kind,
			"error", err)
	}

	WriteError(w, r, status, kind, detail, retryableFromCode(code))
}

// clientDetail returns the "detail" context entry of the outermost structured
// error, or its whole context when there is no such entry.
func clientDetail(err error) any {
	var se *apperrors.StructuredError
	if !errors.As(err, &se) || len(se.Context) == 0 {
		return nil
	}
	if d, ok := se.Context["detail"]; ok {
		return d
	}
	return se.Context
}

// HTTPStatusFromCode maps an error code to an HTTP status.
func HTTPStatusFromCode(code apperrors.ErrorCode) int {
	switch code {
	case apperrors.ErrCodeInvalidRequest, apperrors.ErrCodeValidation, apperrors.ErrCodeSchema:
		return http.StatusBadRequest
	case apperrors.ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case apperrors.ErrCodeNotFound:
		return http.StatusNotFound
	case apperrors.ErrCodeMethodNotAllowed:
		return http.StatusMethodNotAllowed
	case apperrors.ErrCodeRateLimitExceeded:
		return http.StatusTooManyRequests
	case apperrors.ErrCodeUnavailable:
		return http.StatusServiceUnavailable
	case apperrors.ErrCodeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// retryableFromCode reports whether resubmitting the same request may succeed.
func retryableFromCode(code apperrors.ErrorCode) bool {
	switch code {
	case apperrors.ErrCodeTimeout,
		apperrors.ErrCodeUnavailable,
		apperrors.ErrCodeRateLimitExceeded,
		apperrors.ErrCodeInternal,
		apperrors.ErrCodeModelUnavailable,
		apperrors.ErrCodePersistence:
		return true
	default:
		return false
	}
}
