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
	"github.com/xz1/capacity-prediction/pkg/schema"
)

// ValidateRecord coerces one payload into a row aligned to the schema's
// feature order. When features are missing, all of them are reported and no
// coercion is attempted.
func ValidateRecord(s *schema.FeatureSchema, rec map[string]any) (schema.Row, *Report) {
	if rec == nil {
		return nil, &Report{Message: "expected an object of feature values"}
	}

	if missing := s.Missing(func(n string) bool { _, ok := rec[n]; return ok }); len(missing) > 0 {
		return nil, &Report{Missing: missing}
	}

	row := make(schema.Row, s.Len())
	var fieldErrs map[string]string
	for i, name := range s.FeatureCols {
		v := rec[name]
		if s.KindAt(i) == schema.Categorical {
			row[i] = schema.String(CoerceCategorical(v))
			continue
		}
		f, ok := CoerceNumeric(v)
		if !ok {
			if fieldErrs == nil {
				fieldErrs = make(map[string]string)
			}
			fieldErrs[name] = numericError(name, v)
			continue
		}
		row[i] = schema.Number(f)
	}

	if fieldErrs != nil {
		return nil, &Report{Fields: fieldErrs}
	}
	return row, nil
}

// ValidateBatch validates every record independently and collects failures by
// index. Any failure rejects the whole batch, including records that
// validated cleanly.
func ValidateBatch(s *schema.FeatureSchema, recs []map[string]any) ([]schema.Row, *Report) {
	if len(recs) == 0 {
		return nil, &Report{Message: "expected a non-empty list of records"}
	}

	rows := make([]schema.Row, 0, len(recs))
	var failed map[int]*Report
	for i, rec := range recs {
		row, rep := ValidateRecord(s, rec)
		if rep != nil {
			if failed == nil {
				failed = make(map[int]*Report)
			}
			failed[i] = rep
			continue
		}
		rows = append(rows, row)
	}

	if failed != nil {
		return nil, &Report{Records: failed}
	}
	return rows, nil
}
