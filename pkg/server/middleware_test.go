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
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func newTestServer(limiter *rate.Limiter) *Server {
	return &Server{
		config:      NewConfig(),
		rateLimiter: limiter,
	}
}

func TestRequestIDMiddleware(t *testing.T) {
	s := newTestServer(rate.NewLimiter(100, 200))

	tests := []struct {
		name     string
		header   string
		keepSame bool
	}{
		{"generates when absent", "", false},
		{"keeps valid uuid", uuid.New().String(), true},
		{"replaces invalid id", "invalid-not-a-uuid", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var captured string
			handler := s.requestIDMiddleware(func(w http.ResponseWriter, r *http.Request) {
				captured = RequestID(r)
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			if tt.header != "" {
				req.Header.Set("X-Request-Id", tt.header)
			}
			rec := httptest.NewRecorder()
			handler(rec, req)

			_, err := uuid.Parse(captured)
			require.NoError(t, err)
			assert.Equal(t, captured, rec.Header().Get("X-Request-Id"))
			if tt.keepSame {
				assert.Equal(t, tt.header, captured)
			} else {
				assert.NotEqual(t, tt.header, captured)
			}
		})
	}
}

func TestVersionMiddleware(t *testing.T) {
	s := newTestServer(rate.NewLimiter(100, 200))

	var captured any
	handler := s.versionMiddleware(func(w http.ResponseWriter, r *http.Request) {
		captured = r.Context().Value(contextKeyAPIVersion)
		w.WriteHeader(http.StatusOK)
	})

	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodGet, "/test", nil))

	assert.Equal(t, DefaultAPIVersion, rec.Header().Get("X-API-Version"))
	assert.Equal(t, DefaultAPIVersion, captured)
}

func TestRateLimitMiddleware(t *testing.T) {
	t.Run("allows and sets headers", func(t *testing.T) {
		s := newTestServer(rate.NewLimiter(100, 200))

		called := false
		handler := s.rateLimitMiddleware(func(w http.ResponseWriter, _ *http.Request) {
			called = true
			w.WriteHeader(http.StatusOK)
		})

		rec := httptest.NewRecorder()
		handler(rec, httptest.NewRequest(http.MethodGet, "/test", nil))

		assert.True(t, called)
		assert.Equal(t, http.StatusOK, rec.Code)
		for _, h := range []string{"X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"} {
			assert.NotEmpty(t, rec.Header().Get(h), h)
		}
	})

	t.Run("rejects when exhausted", func(t *testing.T) {
		s := newTestServer(rate.NewLimiter(0, 0))

		called := false
		handler := s.rateLimitMiddleware(func(w http.ResponseWriter, _ *http.Request) {
			called = true
		})

		rec := httptest.NewRecorder()
		handler(rec, httptest.NewRequest(http.MethodGet, "/test", nil))

		assert.False(t, called)
		assert.Equal(t, http.StatusTooManyRequests, rec.Code)
		assert.NotEmpty(t, rec.Header().Get("Retry-After"))

		var body map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, KindRateLimited, body["error"])
		assert.Contains(t, body["detail"], "limit")
	})
}

func TestPanicRecoveryMiddleware(t *testing.T) {
	s := newTestServer(rate.NewLimiter(100, 200))

	t.Run("recovers", func(t *testing.T) {
		handler := s.panicRecoveryMiddleware(func(http.ResponseWriter, *http.Request) {
			panic("test panic")
		})

		rec := httptest.NewRecorder()
		require.NotPanics(t, func() {
			handler(rec, httptest.NewRequest(http.MethodGet, "/test", nil))
		})

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.NotContains(t, rec.Body.String(), "test panic")
	})

	t.Run("passes normal requests", func(t *testing.T) {
		handler := s.panicRecoveryMiddleware(okHandler)

		rec := httptest.NewRecorder()
		handler(rec, httptest.NewRequest(http.MethodGet, "/test", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestLoggingMiddleware_PreservesStatus(t *testing.T) {
	s := newTestServer(rate.NewLimiter(100, 200))

	for _, status := range []int{
		http.StatusOK,
		http.StatusCreated,
		http.StatusBadRequest,
		http.StatusNotFound,
		http.StatusInternalServerError,
	} {
		t.Run(http.StatusText(status), func(t *testing.T) {
			handler := s.requestIDMiddleware(s.loggingMiddleware(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(status)
			}))

			rec := httptest.NewRecorder()
			handler(rec, httptest.NewRequest(http.MethodGet, "/test", nil))
			assert.Equal(t, status, rec.Code)
		})
	}
}

func TestMiddlewareChain(t *testing.T) {
	s := newTestServer(rate.NewLimiter(100, 200))

	var hasRequestID, hasAPIVersion bool
	handler := s.withMiddleware(func(w http.ResponseWriter, r *http.Request) {
		hasRequestID = RequestID(r) != ""
		hasAPIVersion = r.Context().Value(contextKeyAPIVersion) != nil
		w.WriteHeader(http.StatusOK)
	})

	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodGet, "/test", nil))

	assert.True(t, hasRequestID)
	assert.True(t, hasAPIVersion)
	for _, header := range []string{
		"X-Request-Id",
		"X-RateLimit-Limit",
		"X-RateLimit-Remaining",
		"X-RateLimit-Reset",
		"X-API-Version",
	} {
		assert.NotEmpty(t, rec.Header().Get(header), header)
	}
}
