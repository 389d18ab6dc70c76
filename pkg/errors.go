// Package pkg holds utilities shared across the project.
// This file defines the domain-level errors.
//
// Errors are plain values. Handlers compare them with errors.Is rather than
// by string, so a wrapped error still matches its category:
//
//	if errors.Is(err, pkg.ErrNotFound) { ... }
package pkg

import (
	"errors"
	"fmt"
)

// Error categories. The handler layer maps each one to an HTTP status code
// (see mapErrorToStatus); services and repositories return them wrapped.
var (
	ErrValidation   = errors.New("validation error")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("already exists")
	ErrUnauthorized = errors.New("unauthorized")
	ErrStorage      = errors.New("storage failure")
)

// Specific errors. Each wraps its category so callers can match either level:
// errors.Is(ErrTokenExpired, ErrUnauthorized) == true.
var (
	// Bearer header preconditions, checked before the token itself is parsed.
	ErrMissingAuthHeader = fmt.Errorf("%w: authorization header required", ErrUnauthorized)
	ErrInvalidAuthScheme = fmt.Errorf("%w: invalid authorization format, use: Bearer <token>", ErrUnauthorized)
	ErrEmptyToken        = fmt.Errorf("%w: empty bearer token", ErrUnauthorized)

	// Token verification outcomes.
	ErrTokenMalformed        = fmt.Errorf("%w: malformed token", ErrUnauthorized)
	ErrTokenInvalidSignature = fmt.Errorf("%w: invalid token signature", ErrUnauthorized)
	ErrTokenExpired          = fmt.Errorf("%w: token expired", ErrUnauthorized)

	ErrInvalidCredentials = fmt.Errorf("%w: invalid credentials", ErrUnauthorized)

	// Upload validation.
	ErrUnsupportedFileType = fmt.Errorf("%w: unsupported file type", ErrValidation)
	ErrFileTooLarge        = fmt.Errorf("%w: file too large", ErrValidation)
	ErrImageNotUploaded    = fmt.Errorf("%w: image must be sent as a file upload", ErrValidation)

	ErrStorageWriteFailed = fmt.Errorf("%w: storage write failed", ErrStorage)
)
