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

// Package model is the inference engine: a gradient-boosted ensemble of
// oblivious (symmetric) trees plus an optional fitted numeric pipeline,
// loaded from a model directory:
//
//	models/
//	  metadata.json       feature schema descriptor (see package schema)
//	  model.json          ensemble artifact
//	  num_pipeline.json   optional imputer/scaler parameters
//
// The ensemble artifact:
//
//	{
//	  "format": "oblivious_trees",
//	  "bias": 2.71,
//	  "scale": 1,
//	  "trees": [
//	    {"splits": [{"feature": "电压", "border": 3.6}, {"feature": "来料分容标识", "category": "A"}],
//	     "leaf_values": [0.1, -0.2, 0.05, 0.3]}
//	  ]
//	}
//
// The leaf of a tree is the bit pattern of its split outcomes, bit d set when
// split d holds (numeric: value > border, categorical: value == category).
// The prediction is bias + scale * sum(leaf values).
//
// Provider owns the single shared Engine. It loads lazily, lets concurrent
// first callers share one load, and retries on the next call after a failure.
package model
