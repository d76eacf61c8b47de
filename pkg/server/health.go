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
	"net/http"
	"time"

	"github.com/xz1/capacity-prediction/pkg/serializer"
)

// HealthResponse is the body of the default probes.
type HealthResponse struct {
	Status    string    `json:"status" yaml:"status"`
	Timestamp time.Time `json:"timestamp" yaml:"timestamp"`
	Reason    string    `json:"reason,omitempty" yaml:"reason,omitempty"`
}

func respondProbe(w http.ResponseWriter, r *http.Request, code int, status, reason string) {
	if r.Method != http.MethodGet {
		WriteError(w, r, http.StatusMethodNotAllowed, KindMethodNotAllowed, nil, false)
		return
	}
	serializer.RespondJSON(w, code, HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC(),
		Reason:    reason,
	})
}

// handleHealth serves /health when no health handler is configured. It only
// reports that the process answers.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondProbe(w, r, http.StatusOK, "ok", "")
}

// handleReady reports 503 until the listener is accepting connections.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	ready := s.ready
	s.mu.RUnlock()

	if !ready {
		respondProbe(w, r, http.StatusServiceUnavailable, "not_ready", "service is initializing")
		return
	}
	respondProbe(w, r, http.StatusOK, "ready", "")
}
