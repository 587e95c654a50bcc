// Package errors provides structured error types for crossval.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// The Error type carries the property path to the offending value, its Go and JS
// type names, the source position for evaluation failures, and a cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseSerialize, errors.KindUnsupported).
//		Path("user", "onClick").
//		GoType("*value.Function").
//		JSType("function").
//		Detail("functions cannot be serialized").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.UnsupportedValue(path, v, "function", "function onClick")
//	err := errors.Syntax(line, col, "unexpected token %q", tok)
//
// The sentinels ErrEvaluation, ErrUnsupported, ErrPlugin and ErrCancelled match
// any error of their class through the standard errors.Is.
package errors
