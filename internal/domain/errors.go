package domain

import "errors"

var (
	// ErrNotFound indicates the requested entity was not found.
	ErrNotFound = errors.New("not found")
	// ErrInvalidInput indicates a caller-supplied value failed validation.
	ErrInvalidInput = errors.New("invalid input")
	// ErrInvalidCredentials is returned when username/password do not match.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrAuthRequired is returned when an authenticated call has no usable
	// session and recovery via refresh is not possible.
	ErrAuthRequired = errors.New("authentication required")
	// ErrSchemaVersion indicates a persisted cart snapshot carries an
	// unknown schema version and was rejected rather than trusted.
	ErrSchemaVersion = errors.New("unknown snapshot schema version")
)
