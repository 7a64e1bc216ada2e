package apperrors

import "errors"

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrConflict indicates that a write lost a race against a concurrent writer
// (optimistic version mismatch or a one-time-settable field already written).
var ErrConflict = errors.New("conflicting concurrent update")

// ErrForbidden indicates the caller is not allowed to perform the action.
var ErrForbidden = errors.New("forbidden")

// ErrDependency indicates an external capability (OCR, mail delivery) failed.
// Dependency failures are retryable and must never leave partial state behind.
var ErrDependency = errors.New("external dependency failure")
