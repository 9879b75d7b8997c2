package errors

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrorType represents the type of error
type ErrorType string

const (
	ErrTypeMalformedInput   ErrorType = "MALFORMED_INPUT"
	ErrTypeSchemaMismatch   ErrorType = "SCHEMA_MISMATCH"
	ErrTypeInsufficientData ErrorType = "INSUFFICIENT_DATA"
	ErrTypeInvalidHorizon   ErrorType = "INVALID_HORIZON"
	ErrTypeStorage          ErrorType = "STORAGE"
	ErrTypeValidation       ErrorType = "VALIDATION"
	ErrTypeConfig           ErrorType = "CONFIG"
)

// Sentinels for errors.Is. An AppError matches a sentinel of the same Type.
var (
	ErrMalformedInput   = &AppError{Type: ErrTypeMalformedInput, Message: "malformed input"}
	ErrSchemaMismatch   = &AppError{Type: ErrTypeSchemaMismatch, Message: "schema mismatch"}
	ErrInsufficientData = &AppError{Type: ErrTypeInsufficientData, Message: "insufficient data"}
	ErrInvalidHorizon   = &AppError{Type: ErrTypeInvalidHorizon, Message: "invalid horizon"}
	ErrStorage          = &AppError{Type: ErrTypeStorage, Message: "storage failure"}
	ErrValidation       = &AppError{Type: ErrTypeValidation, Message: "validation failed"}
	ErrConfig           = &AppError{Type: ErrTypeConfig, Message: "invalid configuration"}
)

// AppError represents an application-specific error
type AppError struct {
	Type    ErrorType
	Message string
	Cause   error
	Context map[string]interface{}
}

// Error implements the error interface. Context keys are rendered in sorted
// order so messages are stable across runs.
func (e *AppError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s", e.Type, e.Message)
	if len(e.Context) > 0 {
		keys := make([]string, 0, len(e.Context))
		for k := range e.Context {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, fmt.Sprintf("%s=%v", k, e.Context[k]))
		}
		fmt.Fprintf(&b, " (%s)", strings.Join(parts, " "))
	}
	if e.Cause != nil {
		fmt.Fprintf(&b, ": %v", e.Cause)
	}
	return b.String()
}

// Unwrap allows errors.Is and errors.As to work with AppError
func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is an AppError of the same type.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Type == t.Type
}

// WithContext adds context to the error
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// NewAppError creates a new application error
func NewAppError(errType ErrorType, message string, cause error) *AppError {
	return &AppError{
		Type:    errType,
		Message: message,
		Cause:   cause,
		Context: make(map[string]interface{}),
	}
}

// TypeOf returns the ErrorType of the first AppError in err's chain, or an
// empty ErrorType if there is none.
func TypeOf(err error) ErrorType {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type
	}
	return ""
}

// Helper functions for common error types

// NewMalformedInputError creates an error for unreadable or structurally invalid input
func NewMalformedInputError(message string, cause error) *AppError {
	return NewAppError(ErrTypeMalformedInput, message, cause)
}

// NewSchemaMismatchError creates an error for tables that disagree on structure
func NewSchemaMismatchError(message string) *AppError {
	return NewAppError(ErrTypeSchemaMismatch, message, nil)
}

// NewInsufficientDataError creates an error for a series too short to fit
func NewInsufficientDataError(category string, nObs, required int) *AppError {
	return NewAppError(ErrTypeInsufficientData,
		fmt.Sprintf("need at least %d observations, have %d", required, nObs), nil).
		WithContext("category", category)
}

// NewInvalidHorizonError creates an error for a non-positive forecast horizon
func NewInvalidHorizonError(horizon int) *AppError {
	return NewAppError(ErrTypeInvalidHorizon, "horizon must be at least 1", nil).
		WithContext("horizon", horizon)
}

// NewStorageError creates a storage-related error
func NewStorageError(message string, cause error) *AppError {
	return NewAppError(ErrTypeStorage, message, cause)
}

// NewAppValidationError creates a validation error for AppError type
func NewAppValidationError(message string) *AppError {
	return NewAppError(ErrTypeValidation, message, nil)
}

// NewConfigError creates a configuration error
func NewConfigError(message string, cause error) *AppError {
	return NewAppError(ErrTypeConfig, message, cause)
}
