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

// Package modeltest writes a small model directory for tests.
//
// The fixture scores
//
//	100 + (voltage > 3.5 ? 10 : -10) + (cycle > 10 ? 1 : 0) + (grade == "A" ? 2 : 0)
//
// where missing numeric values are imputed with 10 (cycle) and 3.5 (voltage).
package modeltest

import (
	"os"
	"path/filepath"
	"testing"
)

// Version is the fixture's model version tag.
const Version = "test-v1"

// Features is the fixture's feature order.
var Features = []string{"cycle", "voltage", "grade"}

const metadata = `{
  "feature_cols": ["cycle", "voltage", "grade"],
  "cat_features": ["grade"],
  "num_features": ["cycle", "voltage"],
  "model_path": "models/model.json",
  "num_pipeline_path": "models/num_pipeline.json",
  "model_version": "test-v1"
}`

const pipeline = `{
  "imputer": {"strategy": "median", "statistics": {"cycle": 10, "voltage": 3.5}},
  "scaler": {"mean": {"cycle": 10, "voltage": 3.5}, "scale": {"cycle": 5, "voltage": 0.5}}
}`

const ensemble = `{
  "format": "oblivious_trees",
  "bias": 100,
  "scale": 1,
  "trees": [
    {"splits": [{"feature": "voltage", "border": 0}], "leaf_values": [-10, 10]},
    {"splits": [{"feature": "cycle", "border": 0}, {"feature": "grade", "category": "A"}],
     "leaf_values": [0, 1, 2, 3]}
  ]
}`

// Expected returns the fixture's prediction for the given raw inputs.
func Expected(cycle, voltage float64, grade string) float64 {
	p := 100.0
	if voltage > 3.5 {
		p += 10
	} else {
		p -= 10
	}
	if cycle > 10 {
		p++
	}
	if grade == "A" {
		p += 2
	}
	return p
}

// Write populates dir with the fixture artifacts.
func Write(dir string) error {
	files := map[string]string{
		"metadata.json":     metadata,
		"num_pipeline.json": pipeline,
		"model.json":        ensemble,
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600); err != nil {
			return err
		}
	}
	return nil
}

// Dir writes the fixture into a fresh temp directory and returns its path.
func Dir(tb testing.TB) string {
	tb.Helper()
	dir := tb.TempDir()
	if err := Write(dir); err != nil {
		tb.Fatalf("failed to write model fixture: %v", err)
	}
	return dir
}
