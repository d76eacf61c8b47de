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
	"os"
	"strconv"
	"strings"

	"github.com/xz1/capacity-prediction/pkg/defaults"
	"github.com/xz1/capacity-prediction/pkg/store"
)

// Config is the process configuration of the prediction service.
type Config struct {
	// Port overrides the server port when positive.
	Port int

	// ModelDir holds the feature schema descriptor and model artifacts.
	ModelDir string

	// MediaRoot is the directory artifacts are written under.
	MediaRoot string
	// MediaURL is the public prefix artifacts are downloaded from. It may be
	// a path ("/media/") or an absolute URL.
	MediaURL string
	// MediaServe serves MediaRoot under MediaURL from this process.
	MediaServe bool

	MaxFileMB int
	ChunkSize int

	// DatabaseURL is the default store; the per-entity URLs override it.
	DatabaseURL          string
	PredictorDatabaseURL string
	LoggerDatabaseURL    string
}

// NewConfig returns the defaults.
func NewConfig() *Config {
	return &Config{
		ModelDir:    "./models",
		MediaRoot:   "./media",
		MediaURL:    "/media/",
		MaxFileMB:   defaults.MaxUploadMB,
		ChunkSize:   defaults.ChunkSize,
		DatabaseURL: "file://./data",
	}
}

// ConfigFromEnv returns the defaults overridden by the environment. Invalid
// numeric values are ignored.
func ConfigFromEnv() *Config {
	cfg := NewConfig()

	setString := func(dst *string, key string) {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			*dst = v
		}
	}
	setInt := func(dst *int, key string) {
		if v, err := strconv.Atoi(strings.TrimSpace(os.Getenv(key))); err == nil && v > 0 {
			*dst = v
		}
	}

	setString(&cfg.ModelDir, "MODEL_DIR")
	setString(&cfg.MediaRoot, "MEDIA_ROOT")
	setString(&cfg.MediaURL, "MEDIA_URL")
	setString(&cfg.DatabaseURL, "DATABASE_URL")
	setString(&cfg.PredictorDatabaseURL, "PREDICTOR_DATABASE_URL")
	setString(&cfg.LoggerDatabaseURL, "LOGGER_DATABASE_URL")
	setInt(&cfg.MaxFileMB, "PREDICT_MAX_FILE_MB")
	setInt(&cfg.ChunkSize, "PREDICT_CHUNK_SIZE")

	if v, err := strconv.ParseBool(os.Getenv("MEDIA_SERVE")); err == nil {
		cfg.MediaServe = v
	}

	return cfg
}

// Routes returns the entity to database URL mapping for store.OpenRouter.
func (c *Config) Routes() map[string]string {
	return map[string]string{
		store.EntityDefault:   c.DatabaseURL,
		store.EntityPredictor: c.PredictorDatabaseURL,
		store.EntityLogger:    c.LoggerDatabaseURL,
	}
}
