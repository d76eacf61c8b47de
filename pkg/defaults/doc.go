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

// Package defaults provides centralized timeout and limit constants for the
// capacity prediction service.
//
// # Categories
//
//   - Server timeouts: For HTTP server configuration
//   - Store timeouts: For record persistence backends
//   - Prediction limits: Upload size, chunk size, output column naming
//
// # Usage
//
// Import and use constants directly:
//
//	import "github.com/xz1/capacity-prediction/pkg/defaults"
//
//	ctx, cancel := context.WithTimeout(ctx, defaults.StoreWriteTimeout)
//	defer cancel()
//
// Upload size and chunk size are only defaults; both are overridable through
// PREDICT_MAX_FILE_MB and PREDICT_CHUNK_SIZE.
package defaults
