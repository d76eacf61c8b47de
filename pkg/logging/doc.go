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

// Package logging configures log/slog for the capacity binaries.
//
// Records are JSON on stderr and carry the module and version of the
// producing binary. Debug level adds the source location.
//
//	func main() {
//	    logging.SetDefaultStructuredLogger("capacityd", version)
//	    slog.Info("model loaded", "modelVersion", v)
//	}
//
// The level comes from LOG_LEVEL (debug, info, warn, error; default info)
// unless set explicitly with SetDefaultStructuredLoggerWithLevel, which the
// CLI does for --log-level:
//
//	LOG_LEVEL=debug capacity predict -i cells.csv
//
// A record looks like:
//
//	{"time":"2025-01-15T10:30:00.123Z","level":"INFO","msg":"scored file",
//	 "module":"capacity","version":"v1.0.0","rows":125}
//
// NewLogLogger bridges components that only accept a *log.Logger, such as
// http.Server.ErrorLog.
package logging
