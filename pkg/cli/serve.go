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

package cli

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/xz1/capacity-prediction/pkg/api"
	"github.com/xz1/capacity-prediction/pkg/defaults"
)

func serveCmd() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the prediction HTTP service",
		Description: `Serves /predict, /predict/batch, /predict/file and /log backed by the
model in --model-dir. Every flag can also be set through its environment variable.`,
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Listen port (default: 8080)",
				Sources: cli.EnvVars("PORT"),
			},
			modelDirFlag(),
			&cli.StringFlag{
				Name:    "media-root",
				Value:   "./media",
				Usage:   "Directory result files are written under",
				Sources: cli.EnvVars("MEDIA_ROOT"),
			},
			&cli.StringFlag{
				Name:    "media-url",
				Value:   "/media/",
				Usage:   "Public prefix result files are downloaded from (path or absolute URL)",
				Sources: cli.EnvVars("MEDIA_URL"),
			},
			&cli.BoolFlag{
				Name:    "media-serve",
				Usage:   "Serve --media-root under --media-url from this process",
				Sources: cli.EnvVars("MEDIA_SERVE"),
			},
			&cli.IntFlag{
				Name:    "max-file-mb",
				Value:   defaults.MaxUploadMB,
				Usage:   "Upload size limit in MiB",
				Sources: cli.EnvVars("PREDICT_MAX_FILE_MB"),
			},
			&cli.IntFlag{
				Name:    "chunk-size",
				Value:   defaults.ChunkSize,
				Usage:   "Rows scored per inference call for uploaded files",
				Sources: cli.EnvVars("PREDICT_CHUNK_SIZE"),
			},
			&cli.StringFlag{
				Name:    "database-url",
				Value:   "file://./data",
				Usage:   "Default store URL (memory://, file://<dir>, postgres://..., clickhouse://...)",
				Sources: cli.EnvVars("DATABASE_URL"),
			},
			&cli.StringFlag{
				Name:    "predictor-database-url",
				Usage:   "Store URL for prediction records (default: --database-url)",
				Sources: cli.EnvVars("PREDICTOR_DATABASE_URL"),
			},
			&cli.StringFlag{
				Name:    "logger-database-url",
				Usage:   "Store URL for log records (default: --database-url)",
				Sources: cli.EnvVars("LOGGER_DATABASE_URL"),
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return api.ServeWithConfig(ctx, serveConfig(cmd))
		},
	}
}

// serveConfig maps the serve flags onto the service configuration.
func serveConfig(cmd *cli.Command) *api.Config {
	cfg := api.NewConfig()
	cfg.Port = int(cmd.Int("port"))
	cfg.ModelDir = cmd.String("model-dir")
	cfg.MediaRoot = cmd.String("media-root")
	cfg.MediaURL = cmd.String("media-url")
	cfg.MediaServe = cmd.Bool("media-serve")
	if v := int(cmd.Int("max-file-mb")); v > 0 {
		cfg.MaxFileMB = v
	}
	if v := int(cmd.Int("chunk-size")); v > 0 {
		cfg.ChunkSize = v
	}
	cfg.DatabaseURL = cmd.String("database-url")
	cfg.PredictorDatabaseURL = cmd.String("predictor-database-url")
	cfg.LoggerDatabaseURL = cmd.String("logger-database-url")
	return cfg
}
