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

package serializer

import (
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestRespondJSON_Success(t *testing.T) {
	w := httptest.NewRecorder()
	RespondJSON(w, http.StatusCreated, map[string]any{"status": "ok"})

	if w.Code != http.StatusCreated {
		t.Errorf("expected status %d, got %d", http.StatusCreated, w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected Content-Type application/json, got %s", ct)
	}
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("unexpected body: %v", body)
	}
}

func TestRespondJSON_EncodingError(t *testing.T) {
	w := httptest.NewRecorder()
	RespondJSON(w, http.StatusOK, map[string]any{"bad": math.Inf(1)})

	if w.Code != http.StatusInternalServerError {
		t.Errorf("expected status 500, got %d", w.Code)
	}
	if strings.Contains(w.Body.String(), "bad") {
		t.Error("partial body written")
	}
}

func TestDecodeJSON_KeepsNumbers(t *testing.T) {
	var v map[string]any
	if err := DecodeJSON(strings.NewReader(`{"a": 1.50, "b": 12345678901234567890}`), &v); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	a, ok := v["a"].(json.Number)
	if !ok || a.String() != "1.50" {
		t.Errorf("expected json.Number 1.50, got %#v", v["a"])
	}
	if b := v["b"].(json.Number); b.String() != "12345678901234567890" {
		t.Errorf("expected large integer text preserved, got %s", b)
	}
}

func TestDecodeJSON_Invalid(t *testing.T) {
	var v map[string]any
	if err := DecodeJSON(strings.NewReader(`{"a":`), &v); err == nil {
		t.Error("expected error")
	}
}
