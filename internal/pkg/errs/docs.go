// Package errs provides standardized error types for the shipping application.
// It implements a consistent pattern for error creation, formatting, and unwrapping
// that is used throughout the application.
//
// The package includes several error types for common error scenarios:
//   - ValueIsRequiredError, ValueIsInvalidError, ValueIsOutOfRangeError: input validation
//   - ObjectNotFoundError: an unknown shipment, carrier or quote session
//   - ConflictError: an operation that the current lifecycle state does not allow
//   - ProviderError: an upstream carrier failure, carrying the provider message verbatim
//   - AuthError: a missing or mismatched webhook token, or a missing admin role
//
// Each error type follows a consistent pattern:
//   - A sentinel error variable (e.g., ErrValueIsRequired)
//   - A struct type with fields for error details
//   - Constructor functions with and without cause
//   - Error() method for formatting the error message
//   - Unwrap() method for error wrapping/unwrapping support
//
// The HTTP adapter maps these sentinels to status codes, so handlers never
// inspect error strings.
package errs
