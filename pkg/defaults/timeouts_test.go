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

package defaults

import (
	"testing"
	"time"
)

func TestTimeoutConstants(t *testing.T) {
	tests := []struct {
		name     string
		timeout  time.Duration
		minValue time.Duration
		maxValue time.Duration
	}{
		// Server timeouts
		{"ServerReadTimeout", ServerReadTimeout, 5 * time.Second, 5 * time.Minute},
		{"ServerReadHeaderTimeout", ServerReadHeaderTimeout, 1 * time.Second, 30 * time.Second},
		{"ServerWriteTimeout", ServerWriteTimeout, 30 * time.Second, 15 * time.Minute},
		{"ServerIdleTimeout", ServerIdleTimeout, 30 * time.Second, 300 * time.Second},
		{"ServerShutdownTimeout", ServerShutdownTimeout, 10 * time.Second, 60 * time.Second},

		// Store timeouts
		{"StoreConnectTimeout", StoreConnectTimeout, 1 * time.Second, 60 * time.Second},
		{"StoreWriteTimeout", StoreWriteTimeout, 1 * time.Second, 60 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.timeout < tt.minValue {
				t.Errorf("%s (%v) is below minimum expected value (%v)", tt.name, tt.timeout, tt.minValue)
			}
			if tt.timeout > tt.maxValue {
				t.Errorf("%s (%v) is above maximum expected value (%v)", tt.name, tt.timeout, tt.maxValue)
			}
		})
	}
}

func TestServerTimeoutRelationships(t *testing.T) {
	// Read timeout should be shorter than write timeout
	if ServerReadTimeout > ServerWriteTimeout {
		t.Errorf("ServerReadTimeout (%v) should not exceed ServerWriteTimeout (%v)",
			ServerReadTimeout, ServerWriteTimeout)
	}

	if ServerReadHeaderTimeout > ServerReadTimeout {
		t.Errorf("ServerReadHeaderTimeout (%v) should not exceed ServerReadTimeout (%v)",
			ServerReadHeaderTimeout, ServerReadTimeout)
	}
}

func TestLimits(t *testing.T) {
	if MaxUploadMB != 50 {
		t.Errorf("MaxUploadMB = %d, want 50", MaxUploadMB)
	}
	if ChunkSize != 5000 {
		t.Errorf("ChunkSize = %d, want 5000", ChunkSize)
	}
	if int64(MultipartMemory) > int64(MaxUploadMB)<<20 {
		t.Errorf("MultipartMemory (%d) should not exceed the upload limit", MultipartMemory)
	}
}
