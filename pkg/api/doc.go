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

// Package api wires the battery capacity prediction service: environment
// configuration, the result stores, the lazily loaded model and the HTTP
// server.
//
// # Usage
//
//	func main() {
//	    if err := api.Serve(); err != nil {
//	        log.Fatalf("server error: %v", err)
//	    }
//	}
//
// # Endpoints
//
// Application endpoints (rate limited):
//   - POST /predict        - Score one record
//   - POST /predict/batch  - Score a list of records
//   - POST /predict/file   - Score an uploaded table, returning a download URL
//   - POST /log            - Append an audit log record
//
// System endpoints (not rate limited):
//   - GET /health  - Liveness with model state; always 200
//   - GET /ready   - Readiness
//   - GET /metrics - Prometheus metrics
//
// # Environment Variables
//
//	PORT                      listen port (default 8080)
//	LOG_LEVEL                 debug, info, warn, error (default info)
//	MODEL_DIR                 model artifact directory (default ./models)
//	MEDIA_ROOT                artifact root directory (default ./media)
//	MEDIA_URL                 public artifact prefix (default /media/)
//	MEDIA_SERVE               serve MEDIA_ROOT under MEDIA_URL (default false)
//	PREDICT_MAX_FILE_MB       upload limit in MiB (default 50)
//	PREDICT_CHUNK_SIZE        rows per scoring chunk (default 5000)
//	DATABASE_URL              default store (default file://./data)
//	PREDICTOR_DATABASE_URL    store for prediction records
//	LOGGER_DATABASE_URL       store for log records
//
// Store URLs select the backend by scheme: memory://, file://<dir>,
// postgres://..., clickhouse://...
package api
