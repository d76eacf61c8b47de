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

// Prediction limits.
const (
	// MaxUploadMB is the default maximum size of an uploaded prediction file.
	MaxUploadMB = 50

	// ChunkSize is the default number of rows scored per inference call in file mode.
	ChunkSize = 5000

	// MultipartMemory is the in-memory threshold for multipart parsing;
	// larger parts spill to temporary files.
	MultipartMemory = 32 << 20

	// PredictionColumn is the column appended to scored rows.
	PredictionColumn = "prediction"

	// ArtifactSubdir is the directory under the media root holding result files.
	ArtifactSubdir = "predictions"
)
