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

// Package table reads and writes delimited-text tables.
//
// Input is decoded as UTF-8 (an optional byte order mark is stripped) and,
// when the bytes are not valid UTF-8, as GBK. Cells equal to a missing-value
// marker ("", "NA", "NaN", "null", ...) become null values; all other cells
// are kept as strings so the original text survives a round trip.
//
// Output is UTF-8 with a byte order mark so spreadsheet tools detect the
// encoding.
package table
