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

// Package validator checks prediction request payloads against the feature
// schema and coerces them into rows.
//
// # Coercion
//
// Every required feature is coerced by its kind:
//   - numeric: JSON numbers, numeric strings and booleans become float64;
//     anything else fails with "Expect numeric value for F, got V".
//   - categorical: null becomes "", everything else its string form.
//     Categorical coercion never fails.
//
// Keys that are not features are dropped. Missing features are never
// defaulted.
//
// # Usage
//
//	row, report := validator.ValidateRecord(s, payload)
//	if report != nil {
//	    return report.Err()
//	}
//
// ValidateBatch validates each record independently and reports errors by
// index, but rejects the whole batch when any record fails.
package validator
