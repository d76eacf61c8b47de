// Package errors provides structured error types for better observability
// and programmatic error handling across the application.
//
// The taxonomy mirrors the serving pipeline: configuration and artifact load
// failures (CONFIG_ERROR, MODEL_UNAVAILABLE), client input problems
// (VALIDATION_ERROR, SCHEMA_ERROR), and runtime failures (INFERENCE_ERROR,
// PERSISTENCE_ERROR).
//
// Example usage:
//
//	err := errors.WrapWithContext(
//	    errors.ErrCodeConfig,
//	    "failed to read model descriptor",
//	    cause,
//	    map[string]any{
//	        "path": path,
//	    },
//	)
package errors
