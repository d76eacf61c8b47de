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

// Package predictor drives the prediction flows: validation, scoring through
// the shared engine, and materialization of the result.
//
// Three flows are exposed over HTTP:
//
//	POST /predict        {"data": {feature: value, ...}}
//	POST /predict/batch  {"data": [{...}, ...]}
//	POST /predict/file   multipart field "file" (comma-separated table)
//
// The single flow persists one PredictionRecord and appends one audit
// LogRecord per request, on success and on failure. The batch flow is
// all-or-nothing: one invalid record rejects the batch. The file flow keeps
// every input column, scores rows in fixed-size chunks, and writes the
// annotated table as a new artifact whose download URL is returned.
//
// Error responses carry a kind in their "error" field:
//
//	validation_error   400  field-addressable detail
//	no_file            400
//	file_too_large     400  detail {"max_mb": N}
//	read_csv_failed    400
//	missing_features   400  detail {"missing": [...]}
//	predict_failed     500
//	model_not_loaded   500
//	save_failed        500
//
// Server-side failures expose only a top-level message; the cause chain is
// logged. GET /health always answers 200, reporting model_load_error when
// the model cannot be loaded.
package predictor
