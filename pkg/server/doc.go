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

// Package server provides the HTTP server shared by the capacity prediction
// daemon: configuration, a middleware chain, health and readiness probes,
// Prometheus metrics, and the JSON error envelope.
//
// # Usage
//
//	s := server.New(
//	    server.WithName("capacityd"),
//	    server.WithVersion(version),
//	    server.WithHandler(map[string]http.HandlerFunc{
//	        "/predict": h.HandlePredict,
//	    }),
//	)
//	if err := s.Run(ctx); err != nil {
//	    return err
//	}
//
// Handlers are keyed by http.ServeMux pattern and are wrapped, in order, by
// metrics, API version negotiation, request id, panic recovery, rate limiting
// and request logging. /health, /ready and /metrics are registered outside
// the chain so probes are never rate limited.
//
// # Configuration
//
// NewConfig reads PORT, SHUTDOWN_TIMEOUT_SECONDS, RATE_LIMIT and
// RATE_LIMIT_BURST. Invalid values are ignored.
//
// # Request IDs
//
// Requests may carry an X-Request-Id header (UUID). Otherwise one is
// generated. It is echoed in the X-Request-Id response header and in every
// error body.
//
// # Rate Limiting
//
// A token bucket (golang.org/x/time/rate) shared by all API handlers.
// Responses carry X-RateLimit-Limit, X-RateLimit-Remaining and
// X-RateLimit-Reset; rejected requests get 429 with Retry-After.
//
// # Errors
//
// Every error response has the same shape:
//
//	{
//	  "error": "validation_error",
//	  "detail": {"voltage": "Expect numeric value for voltage, got abc"},
//	  "requestId": "550e8400-e29b-41d4-a716-446655440000",
//	  "timestamp": "2025-12-22T12:00:00Z",
//	  "retryable": false
//	}
//
// WriteErrorFromErr maps a StructuredError code to the status. Client errors
// expose the error context as detail; server errors expose only the message,
// and the full cause chain goes to the log.
package server
