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
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	apperrors "github.com/xz1/capacity-prediction/pkg/errors"
)

// Loader constructs an engine. It is invoked by Provider at most once per
// successful load.
type Loader func(ctx context.Context) (*Engine, error)

// DirLoader returns a Loader reading artifacts from dir.
func DirLoader(dir string) Loader {
	return func(_ context.Context) (*Engine, error) {
		return LoadEngine(dir)
	}
}

// Provider is the process-wide handle to the engine. The first caller loads
// it; concurrent callers wait for that load. A successful engine is kept for
// the provider's lifetime, a failed load is not cached and the next call
// retries.
type Provider struct {
	load    Loader
	mu      sync.Mutex
	engine  atomic.Pointer[Engine]
	lastErr atomic.Pointer[error]
}

// NewProvider returns a provider using load.
func NewProvider(load Loader) *Provider {
	return &Provider{load: load}
}

// Get returns the engine, loading it if needed. Load failures are returned
// as MODEL_UNAVAILABLE.
func (p *Provider) Get(ctx context.Context) (*Engine, error) {
	if e := p.engine.Load(); e != nil {
		return e, nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if e := p.engine.Load(); e != nil {
		return e, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeModelUnavailable, "model load canceled", err)
	}

	start := time.Now()
	e, err := p.load(ctx)
	modelLoadDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		modelLoads.WithLabelValues("error").Inc()
		p.lastErr.Store(&err)
		slog.Error("model load failed", "error", err)
		return nil, apperrors.Wrap(apperrors.ErrCodeModelUnavailable, "model not loaded", err)
	}

	modelLoads.WithLabelValues("success").Inc()
	p.engine.Store(e)
	p.lastErr.Store(nil)
	slog.Info("model loaded",
		"version", e.Version(),
		"features", e.Schema().Len(),
		"duration", time.Since(start))
	return e, nil
}

// Loaded returns the engine if it has already been loaded.
func (p *Provider) Loaded() (*Engine, bool) {
	e := p.engine.Load()
	return e, e != nil
}

// LastError returns the most recent load failure, or nil.
func (p *Provider) LastError() error {
	if e := p.lastErr.Load(); e != nil {
		return *e
	}
	return nil
}

// Warm loads the engine eagerly. Failures are logged and left for the next
// request to retry.
func (p *Provider) Warm(ctx context.Context) {
	if _, err := p.Get(ctx); err != nil {
		slog.Warn("model warm-up failed, will retry on first request", "error", err)
	}
}
