// Package errors provides classified error primitives used across pagesync.
//
// It implements the error taxonomy: a category, a severity, a retry
// strategy, and free-form structured context, built fluently and
// terminated with Build(). HTTP and CLI adapters translate classified
// errors into status codes and exit codes respectively.
//
// Example usage:
//
//	err := errors.WrapError(readErr, errors.CategoryReadFailure, "read content file").
//		WithContext("path", path).
//		Build()
package errors
