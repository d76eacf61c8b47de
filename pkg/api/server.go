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

package api

import (
	"context"
	"log/slog"

	"github.com/xz1/capacity-prediction/pkg/defaults"
	"github.com/xz1/capacity-prediction/pkg/logging"
	"github.com/xz1/capacity-prediction/pkg/model"
	"github.com/xz1/capacity-prediction/pkg/predictor"
	"github.com/xz1/capacity-prediction/pkg/server"
	"github.com/xz1/capacity-prediction/pkg/store"
)

const (
	name           = "capacityd"
	versionDefault = "dev"
)

var (
	// overridden during build with ldflags to reflect actual version info
	// e.g., -X "github.com/xz1/capacity-prediction/pkg/api.version=1.0.0"
	version = versionDefault
	commit  = "unknown"
	date    = "unknown"
)

// Serve starts the prediction service configured from the environment and
// blocks until shutdown.
func Serve() error {
	logging.SetDefaultStructuredLogger(name, version)
	slog.Info("starting",
		"name", name,
		"version", version,
		"commit", commit,
		"date", date,
	)

	return ServeWithConfig(context.Background(), ConfigFromEnv())
}

// ServeWithConfig starts the prediction service and blocks until ctx is
// canceled or the process is signaled.
func ServeWithConfig(ctx context.Context, cfg *Config) error {
	app, err := New(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := app.Close(); err != nil {
			slog.Warn("failed to close stores", "error", err)
		}
	}()

	// Warm the model so the first request does not pay for the load. A
	// failure leaves the model to be loaded on demand.
	app.Provider.Warm(ctx)

	if err := app.Server.Run(ctx); err != nil {
		slog.Error("server exited with error", "error", err)
		return err
	}
	return nil
}

// App is the wired prediction service.
type App struct {
	Server   *server.Server
	Service  *predictor.Service
	Provider *model.Provider
	Stores   *store.Router
}

// New opens the stores and wires the prediction service into a server. The
// model is not loaded.
func New(ctx context.Context, cfg *Config) (*App, error) {
	if cfg == nil {
		cfg = ConfigFromEnv()
	}

	openCtx, cancel := context.WithTimeout(ctx, defaults.StoreConnectTimeout)
	defer cancel()
	stores, err := store.OpenRouter(openCtx, cfg.Routes())
	if err != nil {
		return nil, err
	}

	provider := model.NewProvider(model.DirLoader(cfg.ModelDir))
	svc, err := predictor.New(provider,
		predictor.WithPredictionStore(stores.Predictions()),
		predictor.WithLogStore(stores.Logs()),
		predictor.WithArtifactStore(store.NewArtifactStore(cfg.MediaRoot, defaults.ArtifactSubdir, cfg.MediaURL)),
		predictor.WithMaxFileMB(cfg.MaxFileMB),
		predictor.WithChunkSize(cfg.ChunkSize),
	)
	if err != nil {
		stores.Close()
		return nil, err
	}

	sc := server.NewConfig()
	if cfg.Port > 0 {
		sc.Port = cfg.Port
	}

	opts := []server.Option{
		server.WithConfig(sc),
		server.WithName(name),
		server.WithVersion(version),
		server.WithHandler(svc.Handlers()),
		server.WithHealthHandler(svc.HandleHealth),
	}
	if cfg.MediaServe {
		opts = append(opts, server.WithStatic(cfg.MediaURL, cfg.MediaRoot))
	}

	slog.Info("prediction service configured",
		"modelDir", cfg.ModelDir,
		"mediaRoot", cfg.MediaRoot,
		"mediaURL", cfg.MediaURL,
		"mediaServe", cfg.MediaServe,
		"maxFileMB", cfg.MaxFileMB,
		"chunkSize", cfg.ChunkSize,
	)

	return &App{
		Server:   server.New(opts...),
		Service:  svc,
		Provider: provider,
		Stores:   stores,
	}, nil
}

// Close releases the stores.
func (a *App) Close() error {
	return a.Stores.Close()
}
