package models

import (
	"errors"
	"fmt"
)

// ErrorType represents different categories of errors
type ErrorType int

const (
	// ErrIoFailure means the source could not be opened or read
	ErrIoFailure ErrorType = iota
	// ErrFormatRejected means a magic, version or structural check failed
	ErrFormatRejected
	// ErrMemberMissing means a nested archive member was not found
	ErrMemberMissing
	// ErrMalformedTagTable means an RPM header directory is out of bounds
	ErrMalformedTagTable
	ErrInvalidConfig
)

// String returns the string representation of ErrorType
func (e ErrorType) String() string {
	switch e {
	case ErrIoFailure:
		return "IoFailure"
	case ErrFormatRejected:
		return "FormatRejected"
	case ErrMemberMissing:
		return "MemberMissing"
	case ErrMalformedTagTable:
		return "MalformedTagTable"
	case ErrInvalidConfig:
		return "InvalidConfig"
	default:
		return "Unknown"
	}
}

// ExtractError represents an error during metadata extraction
type ExtractError struct {
	Type ErrorType
	Path string
	Err  error
}

// Error implements the error interface
func (e *ExtractError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Path, e.Err)
	}
	return fmt.Sprintf("[%s] %v", e.Type, e.Err)
}

// Unwrap returns the wrapped error
func (e *ExtractError) Unwrap() error {
	return e.Err
}

// IsErrorType reports whether err carries an ExtractError of type t
func IsErrorType(err error, t ErrorType) bool {
	var ee *ExtractError
	if errors.As(err, &ee) {
		return ee.Type == t
	}
	return false
}

// WithPath sets the path on err if it is an ExtractError without one
func WithPath(err error, path string) error {
	var ee *ExtractError
	if errors.As(err, &ee) && ee.Path == "" {
		ee.Path = path
	}
	return err
}
