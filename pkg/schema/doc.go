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

// Package schema is the feature metadata store: the descriptor of the model's
// expected input (feature order, categorical/numeric partition, artifact
// references, version tag) plus the Value union used for feature values.
//
// A descriptor is written next to the model artifacts at training time:
//
//	{
//	  "feature_cols": ["工步序号", "电压", "来料分容标识"],
//	  "cat_features": ["来料分容标识"],
//	  "num_features": ["工步序号", "电压"],
//	  "model_path": "models/model.json",
//	  "num_pipeline_path": "models/num_pipeline.json",
//	  "model_version": "v1"
//	}
//
// YAML descriptors (metadata.yaml) use the same keys.
package schema
