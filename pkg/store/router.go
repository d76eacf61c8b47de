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
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"path/filepath"
	"sort"
	"strings"

	apperrors "github.com/xz1/capacity-prediction/pkg/errors"
)

// Entities routed to a backend.
const (
	EntityPredictor = "predictor"
	EntityLogger    = "logger"
	EntityDefault   = "default"
)

// OpenBackend opens the backend named by rawURL. Supported schemes are
// memory, file, postgres/postgresql and clickhouse.
func OpenBackend(ctx context.Context, rawURL string) (Backend, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeConfig, "invalid database url", err)
	}

	var b Backend
	switch strings.ToLower(u.Scheme) {
	case "memory", "mem":
		b = NewMemoryStore()
	case "file":
		b, err = NewFileStore(filePath(u))
	case "postgres", "postgresql":
		b, err = NewPostgresStore(ctx, rawURL)
	case "clickhouse":
		b, err = NewClickHouseStore(ctx, rawURL)
	default:
		return nil, apperrors.NewWithContext(apperrors.ErrCodeConfig,
			"unsupported database url scheme", map[string]any{"scheme": u.Scheme})
	}
	if err != nil {
		return nil, apperrors.WrapWithContext(apperrors.ErrCodePersistence,
			"failed to open database", err, map[string]any{"scheme": u.Scheme})
	}
	return b, nil
}

// filePath maps file:///abs, file://./rel and file://rel to a directory.
func filePath(u *url.URL) string {
	p := u.Host + u.Path
	if u.Opaque != "" {
		p = u.Opaque
	}
	if p == "" {
		p = "."
	}
	return filepath.FromSlash(p)
}

// Router maps entities to backends. Entities routed to the same URL share
// one backend.
type Router struct {
	routes   map[string]string
	backends map[string]Backend
}

// OpenRouter opens one backend per distinct URL in routes. The
// EntityDefault route serves entities without their own route.
func OpenRouter(ctx context.Context, routes map[string]string) (*Router, error) {
	if routes[EntityDefault] == "" {
		return nil, apperrors.New(apperrors.ErrCodeConfig, "no default database route")
	}

	r := &Router{
		routes:   make(map[string]string, len(routes)),
		backends: make(map[string]Backend),
	}

	entities := make([]string, 0, len(routes))
	for e := range routes {
		entities = append(entities, e)
	}
	sort.Strings(entities)

	for _, entity := range entities {
		target := routes[entity]
		if target == "" {
			target = routes[EntityDefault]
		}
		r.routes[entity] = target
		if _, ok := r.backends[target]; ok {
			continue
		}
		b, err := OpenBackend(ctx, target)
		if err != nil {
			r.Close()
			return nil, err
		}
		slog.Debug("database opened", "entity", entity, "scheme", schemeOf(target))
		r.backends[target] = b
	}
	return r, nil
}

// NewRouterWith routes every entity to b. Useful for tests and embedding.
func NewRouterWith(b Backend) *Router {
	return &Router{
		routes:   map[string]string{EntityDefault: "embedded"},
		backends: map[string]Backend{"embedded": b},
	}
}

// Backend returns the backend serving entity.
func (r *Router) Backend(entity string) Backend {
	target, ok := r.routes[entity]
	if !ok {
		target = r.routes[EntityDefault]
	}
	return r.backends[target]
}

// Predictions returns the store for prediction records.
func (r *Router) Predictions() PredictionStore { return r.Backend(EntityPredictor) }

// Logs returns the store for log records.
func (r *Router) Logs() LogStore { return r.Backend(EntityLogger) }

// Close closes every backend.
func (r *Router) Close() error {
	var errs []error
	for target, b := range r.backends {
		if err := b.Close(); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", schemeOf(target), err))
		}
	}
	return errors.Join(errs...)
}

func schemeOf(raw string) string {
	if u, err := url.Parse(raw); err == nil && u.Scheme != "" {
		return u.Scheme
	}
	return "unknown"
}
