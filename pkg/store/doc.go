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

// Package store is the result sink: repositories for prediction and log
// records and the artifact directory for file predictions.
//
// Record backends are chosen by database URL:
//
//	memory://                          in-process, lost on exit
//	file:///var/lib/capacity           append-only JSON lines per table
//	postgres://user:pw@host/db         PostgreSQL (lib/pq)
//	clickhouse://user:pw@host:9000/db  ClickHouse MergeTree tables
//
// A Router maps the predictor and logger entities to URLs so the two tables
// can live in different databases. Records are insert-only.
package store
