package apperrors

import "errors"

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrPolicyViolation indicates that a submission violates a category policy,
// e.g. a required attachment is missing.
var ErrPolicyViolation = errors.New("policy violation")

// ErrInvalidTransition indicates an attempted status change that is not
// permitted by the approval workflow for the acting role.
var ErrInvalidTransition = errors.New("invalid status transition")

// ErrConflict indicates an optimistic concurrency conflict: the entity was
// modified by someone else since it was read. Callers should re-read and retry.
var ErrConflict = errors.New("concurrent modification conflict")

// ErrUnauthorized indicates missing or invalid credentials.
var ErrUnauthorized = errors.New("unauthorized")

// ErrForbidden indicates the acting user lacks the role required for the operation.
var ErrForbidden = errors.New("forbidden")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrInternal indicates an unexpected internal failure.
var ErrInternal = errors.New("internal error")
