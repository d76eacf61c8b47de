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

package validator

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	apperrors "github.com/xz1/capacity-prediction/pkg/errors"
)

// Report is a field-addressable validation failure. Exactly one of the
// fields is populated.
type Report struct {
	// Missing lists absent required features in feature order.
	Missing []string

	// Fields maps a feature name to its coercion error.
	Fields map[string]string

	// Records maps a batch index to that record's report.
	Records map[int]*Report

	// Message describes a payload-level problem (e.g. an empty batch).
	Message string
}

// Detail returns the JSON-ready form of the report.
func (r *Report) Detail() any {
	switch {
	case len(r.Missing) > 0:
		return map[string]any{"missing": r.Missing}
	case len(r.Fields) > 0:
		return r.Fields
	case len(r.Records) > 0:
		out := make(map[string]any, len(r.Records))
		for i, rec := range r.Records {
			out[strconv.Itoa(i)] = rec.Detail()
		}
		return out
	default:
		return map[string]any{"data": r.Message}
	}
}

// Error implements error.
func (r *Report) Error() string {
	switch {
	case len(r.Missing) > 0:
		return fmt.Sprintf("missing features: %s", strings.Join(r.Missing, ", "))
	case len(r.Fields) > 0:
		names := make([]string, 0, len(r.Fields))
		for n := range r.Fields {
			names = append(names, n)
		}
		sort.Strings(names)
		msgs := make([]string, 0, len(names))
		for _, n := range names {
			msgs = append(msgs, r.Fields[n])
		}
		return strings.Join(msgs, "; ")
	case len(r.Records) > 0:
		idx := make([]int, 0, len(r.Records))
		for i := range r.Records {
			idx = append(idx, i)
		}
		sort.Ints(idx)
		msgs := make([]string, 0, len(idx))
		for _, i := range idx {
			msgs = append(msgs, fmt.Sprintf("record %d: %s", i, r.Records[i].Error()))
		}
		return strings.Join(msgs, "; ")
	default:
		return r.Message
	}
}

// Err wraps the report as a VALIDATION_ERROR carrying the detail in its context.
func (r *Report) Err() error {
	return apperrors.WrapWithContext(apperrors.ErrCodeValidation, "validation failed", r,
		map[string]any{"detail": r.Detail()})
}
