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
	"sync"
	"time"
)

// MemoryStore keeps records in process memory. Selected by memory:// URLs.
type MemoryStore struct {
	mu          sync.Mutex
	predictions []PredictionRecord
	logs        []LogRecord
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// InsertPrediction implements PredictionStore.
func (m *MemoryStore) InsertPrediction(_ context.Context, rec *PredictionRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec.ID = int64(len(m.predictions) + 1)
	rec.CreatedAt = time.Now().UTC()
	m.predictions = append(m.predictions, *rec)
	return nil
}

// AppendLog implements LogStore.
func (m *MemoryStore) AppendLog(_ context.Context, rec *LogRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec.ID = int64(len(m.logs) + 1)
	rec.CreatedAt = time.Now().UTC()
	m.logs = append(m.logs, *rec)
	return nil
}

// Predictions returns a copy of the stored prediction records.
func (m *MemoryStore) Predictions() []PredictionRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]PredictionRecord(nil), m.predictions...)
}

// Logs returns a copy of the stored log records.
func (m *MemoryStore) Logs() []LogRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]LogRecord(nil), m.logs...)
}

// Close implements Backend.
func (m *MemoryStore) Close() error { return nil }
