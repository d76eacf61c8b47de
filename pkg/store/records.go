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
	"fmt"
	"strings"
	"time"

	"github.com/xz1/capacity-prediction/pkg/schema"
)

// Level is a LogRecord severity.
type Level string

const (
	LevelInfo    Level = "INFO"
	LevelWarning Level = "WARNING"
	LevelError   Level = "ERROR"
)

// ParseLevel normalizes s to a Level. The empty string is INFO.
func ParseLevel(s string) (Level, error) {
	switch Level(strings.ToUpper(strings.TrimSpace(s))) {
	case "", LevelInfo:
		return LevelInfo, nil
	case LevelWarning:
		return LevelWarning, nil
	case LevelError:
		return LevelError, nil
	default:
		return "", fmt.Errorf("%q is not a valid choice", s)
	}
}

// PredictionRecord is one persisted single-record prediction.
type PredictionRecord struct {
	ID         int64         `json:"id"`
	InputData  schema.Fields `json:"input_data"`
	Prediction float64       `json:"prediction"`
	CreatedAt  time.Time     `json:"created_at"`
	UserID     *int64        `json:"user_id,omitempty"`
	Source     *string       `json:"source,omitempty"`
}

// LogRecord is one entry of the audit log.
type LogRecord struct {
	ID        int64     `json:"id"`
	Level     Level     `json:"level"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// PredictionStore persists prediction records. Implementations assign ID and
// CreatedAt.
type PredictionStore interface {
	InsertPrediction(ctx context.Context, rec *PredictionRecord) error
}

// LogStore persists log records. Implementations assign ID and CreatedAt.
type LogStore interface {
	AppendLog(ctx context.Context, rec *LogRecord) error
}

// Backend is a database holding both tables. The router decides which
// backend serves which table.
type Backend interface {
	PredictionStore
	LogStore
	Close() error
}

// Table names shared by all backends.
const (
	PredictionTable = "prediction_record"
	LogTable        = "log_record"
)
