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

package schema

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValueUnmarshalJSON(t *testing.T) {
	tests := []struct {
		in   string
		kind ValueKind
		text string
	}{
		{in: `null`, kind: KindNull, text: ""},
		{in: `1.5`, kind: KindNumber, text: "1.5"},
		{in: `-3`, kind: KindNumber, text: "-3"},
		{in: `"abc"`, kind: KindString, text: "abc"},
		{in: `"3.2"`, kind: KindString, text: "3.2"},
		{in: `true`, kind: KindString, text: "true"},
		{in: `[1, 2]`, kind: KindString, text: "[1,2]"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			var v Value
			require.NoError(t, json.Unmarshal([]byte(tt.in), &v))
			assert.Equal(t, tt.kind, v.Kind())
			assert.Equal(t, tt.text, v.Text())
		})
	}
}

func TestValueMarshalJSON(t *testing.T) {
	b, err := json.Marshal([]Value{Number(2.25), String("x"), Null(), Number(math.NaN())})
	require.NoError(t, err)
	assert.Equal(t, `[2.25,"x",null,null]`, string(b))
}

func TestValueFloat(t *testing.T) {
	f, ok := Number(4).Float()
	assert.True(t, ok)
	assert.Equal(t, 4.0, f)

	_, ok = String("4").Float()
	assert.False(t, ok)
	assert.True(t, Null().IsNull())
}

func TestFieldsPreserveOrder(t *testing.T) {
	in := `{"z":1,"a":"two","m":null}`
	var f Fields
	require.NoError(t, json.Unmarshal([]byte(in), &f))
	require.Len(t, f, 3)
	assert.Equal(t, "z", f[0].Name)
	assert.Equal(t, "a", f[1].Name)
	assert.Equal(t, "m", f[2].Name)

	v, ok := f.Get("a")
	assert.True(t, ok)
	assert.Equal(t, "two", v.Text())

	out, err := json.Marshal(f)
	require.NoError(t, err)
	assert.Equal(t, in, string(out))
}

func TestFieldsRejectsNonObject(t *testing.T) {
	var f Fields
	assert.Error(t, json.Unmarshal([]byte(`[1,2]`), &f))
}
