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

package header

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	h := New(KindFeatureSchema, WithVersion("1.2.3"), WithMetadata("modelVersion", "m-7"))

	assert.Equal(t, KindFeatureSchema, h.Kind)
	assert.Equal(t, APIVersion, h.APIVersion)
	assert.Equal(t, "1.2.3", h.Metadata["version"])
	assert.Equal(t, "m-7", h.Metadata["modelVersion"])

	ts, err := time.Parse(time.RFC3339, h.Metadata["timestamp"])
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now(), ts, time.Minute)
}

func TestKindIsValid(t *testing.T) {
	assert.True(t, KindFeatureSchema.IsValid())
	assert.True(t, KindScoreReport.IsValid())
	assert.False(t, Kind("Recipe").IsValid())
	assert.Equal(t, "ScoreReport", KindScoreReport.String())
}
