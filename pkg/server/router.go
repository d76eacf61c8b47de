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
	"log/slog"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/xz1/capacity-prediction/pkg/serializer"
)

// System endpoints registered outside the middleware chain.
const (
	healthPath  = "/health"
	readyPath   = "/ready"
	metricsPath = "/metrics"
)

// setupRoutes configures all HTTP routes and middleware
func (s *Server) setupRoutes() http.Handler {
	mux := http.NewServeMux()

	// System endpoints (no rate limiting)
	health := s.health
	if health == nil {
		health = s.handleHealth
	}
	mux.HandleFunc(healthPath, health)
	mux.HandleFunc(readyPath, s.handleReady)
	mux.Handle(metricsPath, promhttp.Handler())

	for pattern, handler := range s.config.Handlers {
		switch pattern {
		case healthPath, readyPath, metricsPath:
			slog.Warn("ignoring handler for reserved path", "pattern", pattern)
			continue
		}
		mux.HandleFunc(pattern, s.withMiddleware(handler))
	}

	if prefix := s.staticPrefix(); prefix != "" {
		slog.Debug("serving static files", "prefix", prefix, "dir", s.config.StaticDir)
		mux.Handle(prefix, http.StripPrefix(prefix, http.FileServer(http.Dir(s.config.StaticDir))))
	}

	return mux
}

// staticPrefix returns the mux pattern for static files, or "" when static
// serving is off or the prefix is not a local path.
func (s *Server) staticPrefix() string {
	prefix := s.config.StaticPrefix
	if prefix == "" || s.config.StaticDir == "" || !strings.HasPrefix(prefix, "/") || prefix == "/" {
		return ""
	}
	if !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return prefix
}

// routes returns the registered patterns in display order.
func (s *Server) routes() []string {
	routes := []string{"GET " + healthPath, "GET " + readyPath, "GET " + metricsPath}
	var api []string
	for pattern := range s.config.Handlers {
		if pattern != "/" {
			api = append(api, pattern)
		}
	}
	sort.Strings(api)
	return append(routes, api...)
}

func (s *Server) handleDefault(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		WriteError(w, r, http.StatusNotFound, KindNotFound,
			map[string]any{"path": r.URL.Path}, false)
		return
	}

	if r.Method != http.MethodGet {
		WriteError(w, r, http.StatusMethodNotAllowed, KindMethodNotAllowed,
			map[string]any{"method": r.Method}, false)
		return
	}

	slog.Debug("handling default route",
		"path", r.URL.Path,
		"method", r.Method,
		"remote_addr", r.RemoteAddr,
		"user_agent", r.UserAgent(),
	)

	resp := struct {
		Name      string   `json:"name"`
		Version   string   `json:"version"`
		Ready     bool     `json:"ready"`
		Timestamp string   `json:"timestamp"`
		Routes    []string `json:"routes"`
	}{
		Name:      s.config.Name,
		Version:   s.config.Version,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Routes:    s.routes(),
	}

	s.mu.RLock()
	resp.Ready = s.ready
	s.mu.RUnlock()

	serializer.RespondJSON(w, http.StatusOK, resp)
}
