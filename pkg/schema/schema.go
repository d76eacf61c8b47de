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

package schema

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	apperrors "github.com/xz1/capacity-prediction/pkg/errors"
)

// Kind is the partition a feature belongs to.
type Kind uint8

const (
	// Numeric features are coerced to float64 and may pass through the numeric pipeline.
	Numeric Kind = iota + 1
	// Categorical features are coerced to strings.
	Categorical
)

// String returns the lowercase name of the kind.
func (k Kind) String() string {
	switch k {
	case Numeric:
		return "numeric"
	case Categorical:
		return "categorical"
	default:
		return "unknown"
	}
}

// DescriptorNames are the descriptor file names probed in a model directory, in order.
var DescriptorNames = []string{"metadata.json", "metadata.yaml", "metadata.yml"}

// FeatureSchema describes the input the trained model expects.
// It is immutable after Load.
type FeatureSchema struct {
	// FeatureCols is the training-time column order.
	FeatureCols []string `json:"feature_cols" yaml:"feature_cols"`
	// CatFeatures are the categorical features.
	CatFeatures []string `json:"cat_features" yaml:"cat_features"`
	// NumFeatures are the numeric features.
	NumFeatures []string `json:"num_features" yaml:"num_features"`
	// ModelPath references the ensemble artifact; only its base name is used.
	ModelPath string `json:"model_path" yaml:"model_path"`
	// PipelinePath references the optional numeric pipeline artifact.
	PipelinePath string `json:"num_pipeline_path,omitempty" yaml:"num_pipeline_path,omitempty"`
	// ModelVersion is the version tag reported with every prediction.
	ModelVersion string `json:"model_version" yaml:"model_version"`

	index map[string]int
	kinds []Kind
}

// Load reads and validates a feature schema descriptor. The format is chosen
// by extension: .yaml/.yml are YAML, everything else JSON.
func Load(path string) (*FeatureSchema, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.WrapWithContext(apperrors.ErrCodeConfig,
			"failed to read feature schema descriptor", err, map[string]any{"path": path})
	}

	var fs FeatureSchema
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(content, &fs)
	default:
		err = json.Unmarshal(content, &fs)
	}
	if err != nil {
		return nil, apperrors.WrapWithContext(apperrors.ErrCodeConfig,
			"malformed feature schema descriptor", err, map[string]any{"path": path})
	}

	if err := fs.init(); err != nil {
		return nil, apperrors.WrapWithContext(apperrors.ErrCodeConfig,
			"inconsistent feature schema descriptor", err, map[string]any{"path": path})
	}
	return &fs, nil
}

// FindDescriptor returns the first descriptor present in dir.
func FindDescriptor(dir string) (string, error) {
	for _, name := range DescriptorNames {
		p := filepath.Join(dir, name)
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}
	return "", apperrors.NewWithContext(apperrors.ErrCodeConfig,
		"feature schema descriptor not found", map[string]any{
			"dir":   dir,
			"names": DescriptorNames,
		})
}

// New builds a schema programmatically and validates it like Load.
func New(featureCols, catFeatures, numFeatures []string, modelVersion string) (*FeatureSchema, error) {
	fs := &FeatureSchema{
		FeatureCols:  append([]string(nil), featureCols...),
		CatFeatures:  append([]string(nil), catFeatures...),
		NumFeatures:  append([]string(nil), numFeatures...),
		ModelVersion: modelVersion,
	}
	if err := fs.init(); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeConfig, "inconsistent feature schema", err)
	}
	return fs, nil
}

func (s *FeatureSchema) init() error {
	if len(s.FeatureCols) == 0 {
		return fmt.Errorf("feature_cols is empty")
	}

	s.index = make(map[string]int, len(s.FeatureCols))
	for i, c := range s.FeatureCols {
		if c == "" {
			return fmt.Errorf("feature_cols[%d] is empty", i)
		}
		if _, dup := s.index[c]; dup {
			return fmt.Errorf("duplicate feature %q in feature_cols", c)
		}
		s.index[c] = i
	}

	s.kinds = make([]Kind, len(s.FeatureCols))
	for _, c := range s.CatFeatures {
		i, ok := s.index[c]
		if !ok {
			return fmt.Errorf("categorical feature %q not in feature_cols", c)
		}
		if s.kinds[i] != 0 {
			return fmt.Errorf("duplicate categorical feature %q", c)
		}
		s.kinds[i] = Categorical
	}

	if s.NumFeatures == nil {
		for i, c := range s.FeatureCols {
			if s.kinds[i] == 0 {
				s.NumFeatures = append(s.NumFeatures, c)
			}
		}
	}
	for _, c := range s.NumFeatures {
		i, ok := s.index[c]
		if !ok {
			return fmt.Errorf("numeric feature %q not in feature_cols", c)
		}
		switch s.kinds[i] {
		case Categorical:
			return fmt.Errorf("feature %q is both categorical and numeric", c)
		case Numeric:
			return fmt.Errorf("duplicate numeric feature %q", c)
		}
		s.kinds[i] = Numeric
	}

	for i, k := range s.kinds {
		if k == 0 {
			return fmt.Errorf("feature %q is neither categorical nor numeric", s.FeatureCols[i])
		}
	}
	return nil
}

// Len returns the number of features.
func (s *FeatureSchema) Len() int { return len(s.FeatureCols) }

// Index returns the position of name in FeatureCols.
func (s *FeatureSchema) Index(name string) (int, bool) {
	i, ok := s.index[name]
	return i, ok
}

// Kind returns the partition of name.
func (s *FeatureSchema) Kind(name string) (Kind, bool) {
	i, ok := s.index[name]
	if !ok {
		return 0, false
	}
	return s.kinds[i], true
}

// KindAt returns the partition of the i-th feature.
func (s *FeatureSchema) KindAt(i int) Kind { return s.kinds[i] }

// Missing returns the features absent from present, in FeatureCols order.
func (s *FeatureSchema) Missing(present func(name string) bool) []string {
	var missing []string
	for _, c := range s.FeatureCols {
		if !present(c) {
			missing = append(missing, c)
		}
	}
	return missing
}

// Fields pairs a row with the feature names.
func (s *FeatureSchema) Fields(row Row) Fields {
	out := make(Fields, 0, len(s.FeatureCols)+1)
	for i, c := range s.FeatureCols {
		out = append(out, Field{Name: c, Value: row[i]})
	}
	return out
}
