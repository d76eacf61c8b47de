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
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/lib/pq"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS prediction_record (
	id          BIGSERIAL PRIMARY KEY,
	input_data  JSONB NOT NULL,
	prediction  DOUBLE PRECISION NOT NULL,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
	user_id     BIGINT NULL,
	source      VARCHAR(100) NULL
);
CREATE TABLE IF NOT EXISTS log_record (
	id          BIGSERIAL PRIMARY KEY,
	level       VARCHAR(20) NOT NULL DEFAULT 'INFO',
	message     TEXT NOT NULL,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);`

// PostgresStore persists records in PostgreSQL. Selected by postgres:// and
// postgresql:// URLs.
type PostgresStore struct {
	DB *sql.DB
}

// NewPostgresStore connects to dsn and creates the tables if needed.
func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	if _, err := db.ExecContext(ctx, postgresSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create postgres tables: %w", err)
	}
	return &PostgresStore{DB: db}, nil
}

// InsertPrediction implements PredictionStore.
func (s *PostgresStore) InsertPrediction(ctx context.Context, rec *PredictionRecord) error {
	input, err := json.Marshal(rec.InputData)
	if err != nil {
		return fmt.Errorf("failed to encode input data: %w", err)
	}
	err = s.DB.QueryRowContext(ctx,
		`INSERT INTO prediction_record (input_data, prediction, user_id, source)
		 VALUES ($1, $2, $3, $4) RETURNING id, created_at`,
		input, rec.Prediction, rec.UserID, rec.Source,
	).Scan(&rec.ID, &rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert prediction record: %w", err)
	}
	return nil
}

// AppendLog implements LogStore.
func (s *PostgresStore) AppendLog(ctx context.Context, rec *LogRecord) error {
	err := s.DB.QueryRowContext(ctx,
		`INSERT INTO log_record (level, message) VALUES ($1, $2) RETURNING id, created_at`,
		string(rec.Level), rec.Message,
	).Scan(&rec.ID, &rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert log record: %w", err)
	}
	return nil
}

// Close implements Backend.
func (s *PostgresStore) Close() error {
	return s.DB.Close()
}
