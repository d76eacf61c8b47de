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
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/xz1/capacity-prediction/pkg/errors"
	"github.com/xz1/capacity-prediction/pkg/schema"
)

func testSchema(t *testing.T) *schema.FeatureSchema {
	t.Helper()
	s, err := schema.New([]string{"cycle", "voltage", "grade"}, []string{"grade"}, nil, "v1")
	require.NoError(t, err)
	return s
}

func decode(t *testing.T, in string) map[string]any {
	t.Helper()
	dec := json.NewDecoder(strings.NewReader(in))
	dec.UseNumber()
	var m map[string]any
	require.NoError(t, dec.Decode(&m))
	return m
}

func TestValidateRecord(t *testing.T) {
	s := testSchema(t)

	tests := []struct {
		name    string
		in      string
		want    schema.Row
		missing []string
		fields  []string
	}{
		{
			name: "numbers and string",
			in:   `{"cycle": 3, "voltage": 3.61, "grade": "A", "extra": 1}`,
			want: schema.Row{schema.Number(3), schema.Number(3.61), schema.String("A")},
		},
		{
			name: "numeric strings and bool",
			in:   `{"cycle": " 12 ", "voltage": true, "grade": 7}`,
			want: schema.Row{schema.Number(12), schema.Number(1), schema.String("7")},
		},
		{
			name: "null categorical",
			in:   `{"cycle": 1, "voltage": 2, "grade": null}`,
			want: schema.Row{schema.Number(1), schema.Number(2), schema.String("")},
		},
		{
			name: "bool categorical",
			in:   `{"cycle": 1, "voltage": 2, "grade": false}`,
			want: schema.Row{schema.Number(1), schema.Number(2), schema.String("false")},
		},
		{
			name:    "all missing reported",
			in:      `{"voltage": 1}`,
			missing: []string{"cycle", "grade"},
		},
		{
			name:   "bad numerics",
			in:     `{"cycle": "abc", "voltage": null, "grade": "A"}`,
			fields: []string{"cycle", "voltage"},
		},
		{
			name:   "object as numeric",
			in:     `{"cycle": {"a": 1}, "voltage": 1, "grade": "A"}`,
			fields: []string{"cycle"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row, rep := ValidateRecord(s, decode(t, tt.in))
			switch {
			case tt.missing != nil:
				require.NotNil(t, rep)
				assert.Nil(t, row)
				assert.Equal(t, tt.missing, rep.Missing)
				assert.Equal(t, map[string]any{"missing": tt.missing}, rep.Detail())
			case tt.fields != nil:
				require.NotNil(t, rep)
				assert.Nil(t, row)
				require.Len(t, rep.Fields, len(tt.fields))
				for _, f := range tt.fields {
					assert.Contains(t, rep.Fields[f], "Expect numeric value for "+f)
				}
			default:
				require.Nil(t, rep)
				assert.Equal(t, tt.want, row)
			}
		})
	}
}

func TestNumericErrorMessage(t *testing.T) {
	s := testSchema(t)
	_, rep := ValidateRecord(s, decode(t, `{"cycle": "x1", "voltage": null, "grade": "A"}`))
	require.NotNil(t, rep)
	assert.Equal(t, "Expect numeric value for cycle, got x1", rep.Fields["cycle"])
	assert.Equal(t, "Expect numeric value for voltage, got null", rep.Fields["voltage"])
	assert.Equal(t,
		"Expect numeric value for cycle, got x1; Expect numeric value for voltage, got null",
		rep.Error())
}

func TestValidateRecordNil(t *testing.T) {
	_, rep := ValidateRecord(testSchema(t), nil)
	require.NotNil(t, rep)
	assert.NotEmpty(t, rep.Message)
}

func TestValidateBatch(t *testing.T) {
	s := testSchema(t)

	t.Run("all valid keeps order", func(t *testing.T) {
		recs := []map[string]any{
			decode(t, `{"cycle": 1, "voltage": 3, "grade": "A"}`),
			decode(t, `{"cycle": 2, "voltage": 4, "grade": "B"}`),
			decode(t, `{"cycle": 3, "voltage": 5, "grade": "C"}`),
		}
		rows, rep := ValidateBatch(s, recs)
		require.Nil(t, rep)
		require.Len(t, rows, 3)
		for i, row := range rows {
			f, _ := row[0].Float()
			assert.Equal(t, float64(i+1), f)
		}
	})

	t.Run("one bad record rejects all", func(t *testing.T) {
		recs := []map[string]any{
			decode(t, `{"cycle": 1, "voltage": 3, "grade": "A"}`),
			decode(t, `{"voltage": 4, "grade": "B"}`),
			decode(t, `{"cycle": "bad", "voltage": 5, "grade": "C"}`),
			decode(t, `{"cycle": 4, "voltage": 6, "grade": "D"}`),
		}
		rows, rep := ValidateBatch(s, recs)
		assert.Nil(t, rows)
		require.NotNil(t, rep)
		require.Len(t, rep.Records, 2)
		assert.Equal(t, []string{"cycle"}, rep.Records[1].Missing)
		assert.Contains(t, rep.Records[2].Fields, "cycle")

		detail, ok := rep.Detail().(map[string]any)
		require.True(t, ok)
		assert.Contains(t, detail, "1")
		assert.Contains(t, detail, "2")
		assert.NotContains(t, detail, "0")
		assert.NotContains(t, detail, "3")
	})

	t.Run("empty batch", func(t *testing.T) {
		rows, rep := ValidateBatch(s, nil)
		assert.Nil(t, rows)
		require.NotNil(t, rep)
		assert.Equal(t, map[string]any{"data": rep.Message}, rep.Detail())
	})
}

func TestReportErr(t *testing.T) {
	rep := &Report{Missing: []string{"grade"}}
	err := rep.Err()
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeValidation, apperrors.CodeOf(err))
	assert.Contains(t, err.Error(), "missing features: grade")
}

func TestCoerceCategorical(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{nil, ""},
		{"x", "x"},
		{json.Number("1.50"), "1.50"},
		{true, "true"},
		{2.5, "2.5"},
		{[]any{"a", json.Number("1")}, `["a",1]`},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CoerceCategorical(tt.in))
	}
}

func TestCoerceNumeric(t *testing.T) {
	tests := []struct {
		in   any
		want float64
		ok   bool
	}{
		{json.Number("2.5"), 2.5, true},
		{"1e3", 1000, true},
		{false, 0, true},
		{3, 3, true},
		{"", 0, false},
		{nil, 0, false},
		{[]any{}, 0, false},
	}
	for _, tt := range tests {
		got, ok := CoerceNumeric(tt.in)
		assert.Equal(t, tt.ok, ok, "%v", tt.in)
		if tt.ok {
			assert.Equal(t, tt.want, got)
		}
	}
}
