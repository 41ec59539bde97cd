// Package errors provides the classified error primitives used across mdpo.
//
// A ClassifiedError carries a category (config, parse, export, ...), a
// severity and a retry hint, plus free-form context. Errors are created with
// the fluent ErrorBuilder:
//
//	err := errors.NewError(errors.CategoryFileSystem, "read document").
//		WithContext("path", path).
//		WithCause(originalErr).
//		Build()
//
// The CLI adapter maps categories to process exit codes.
package errors
