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
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// FileStore appends records as JSON lines, one file per table, under a
// directory. Selected by file:// URLs.
type FileStore struct {
	dir string

	mu      sync.Mutex
	nextIDs map[string]int64
}

// NewFileStore opens (and creates) dir. IDs continue from the records
// already present.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create store directory %s: %w", dir, err)
	}

	fs := &FileStore{dir: dir, nextIDs: make(map[string]int64, 2)}
	for _, table := range []string{PredictionTable, LogTable} {
		n, err := countLines(fs.path(table))
		if err != nil {
			return nil, err
		}
		fs.nextIDs[table] = n + 1
	}
	return fs, nil
}

func (f *FileStore) path(table string) string {
	return filepath.Join(f.dir, table+".jsonl")
}

func countLines(path string) (int64, error) {
	file, err := os.Open(path)
	if os.IsNotExist(err) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer file.Close()

	var n int64
	sc := bufio.NewScanner(file)
	sc.Buffer(make([]byte, 64*1024), 16*1024*1024)
	for sc.Scan() {
		if len(sc.Bytes()) > 0 {
			n++
		}
	}
	if err := sc.Err(); err != nil {
		return 0, fmt.Errorf("failed to scan %s: %w", path, err)
	}
	return n, nil
}

// append assigns the next id via assign and writes rec as one line.
func (f *FileStore) append(table string, assign func(id int64, now time.Time), rec any) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	assign(f.nextIDs[table], time.Now().UTC())

	line, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to encode %s record: %w", table, err)
	}
	line = append(line, '\n')

	file, err := os.OpenFile(f.path(table), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", table, err)
	}
	if _, err := file.Write(line); err != nil {
		file.Close()
		return fmt.Errorf("failed to append %s record: %w", table, err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", table, err)
	}

	f.nextIDs[table]++
	return nil
}

// InsertPrediction implements PredictionStore.
func (f *FileStore) InsertPrediction(_ context.Context, rec *PredictionRecord) error {
	return f.append(PredictionTable, func(id int64, now time.Time) {
		rec.ID, rec.CreatedAt = id, now
	}, rec)
}

// AppendLog implements LogStore.
func (f *FileStore) AppendLog(_ context.Context, rec *LogRecord) error {
	return f.append(LogTable, func(id int64, now time.Time) {
		rec.ID, rec.CreatedAt = id, now
	}, rec)
}

// Close implements Backend.
func (f *FileStore) Close() error { return nil }
