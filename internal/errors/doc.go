// Package errors provides the classified error type used across the build
// pipeline, plus a CLI adapter that turns errors into user-facing messages and
// process exit codes.
//
// Example usage:
//
//	err := errors.WrapError(cause, errors.CategoryFileSystem, "read post").
//		WithContext("path", path).
//		Build()
package errors
