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

// Package cli implements the capacity command line.
//
// # Commands
//
// serve - Run the prediction HTTP service:
//
//	capacity serve --model-dir ./models --media-root ./media --database-url postgres://...
//
// Every serve flag falls back to the environment variable the daemon reads
// (MODEL_DIR, MEDIA_ROOT, DATABASE_URL, ...), so the CLI and capacityd share
// one configuration.
//
// predict - Score a CSV file offline:
//
//	capacity predict -i cells.csv -m ./models -o scored.csv
//
// The input may be UTF-8 (with or without BOM) or GBK. The output is the
// input table with a prediction column, written as UTF-8 with a BOM.
//
// schema - Print the feature schema:
//
//	capacity schema -m ./models --format table
//
// # Global Flags
//
//	--log-level    debug, info, warn, error (default: info, env LOG_LEVEL)
//	--help, -h     Show command help
//	--version, -v  Show version information
package cli
