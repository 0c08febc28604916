// Package errors provides structured error types for wasm-typecanon.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error
// category). The Error type carries the module name, a path into the module
// (for example "type.3.field.1"), and a cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseValidate, errors.KindOutOfBounds).
//		Module("app").
//		Path("type", "3", "field", "1").
//		Detail("type index %d out of bounds", 12).
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.OutOfBounds(errors.PhaseValidate, path, 12, 4)
//	err := errors.Load("parse module", cause)
//
// All errors implement the standard error interface and support errors.Is/As.
package errors
