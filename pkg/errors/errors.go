package errors

import (
	"errors"
	"fmt"
)

// ErrorType represents different types of errors in the system
type ErrorType string

const (
	// ErrorTypeAdapter indicates a coding-system search failure
	// (network, timeout, or non-2xx status from a terminology API)
	ErrorTypeAdapter ErrorType = "ADAPTER"

	// ErrorTypeCapability indicates a generative capability failure,
	// including unparseable model output
	ErrorTypeCapability ErrorType = "CAPABILITY"

	// ErrorTypeConfiguration indicates invalid or missing configuration
	ErrorTypeConfiguration ErrorType = "CONFIGURATION"

	// ErrorTypeValidation indicates a validation error
	ErrorTypeValidation ErrorType = "VALIDATION"

	// ErrorTypeInternal indicates an internal error
	ErrorTypeInternal ErrorType = "INTERNAL"
)

// AppError represents an application error
type AppError struct {
	Type    ErrorType
	Message string
	Err     error
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap implements the unwrap interface
func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAdapterError creates a new adapter error
func NewAdapterError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeAdapter,
		Message: message,
		Err:     err,
	}
}

// NewCapabilityError creates a new capability error
func NewCapabilityError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeCapability,
		Message: message,
		Err:     err,
	}
}

// NewConfigurationError creates a new configuration error
func NewConfigurationError(message string) *AppError {
	return &AppError{
		Type:    ErrorTypeConfiguration,
		Message: message,
	}
}

// NewValidationError creates a new validation error
func NewValidationError(message string) *AppError {
	return &AppError{
		Type:    ErrorTypeValidation,
		Message: message,
	}
}

// NewInternalError creates a new internal error
func NewInternalError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeInternal,
		Message: message,
		Err:     err,
	}
}

// IsAdapterError reports whether err is an AppError of type ADAPTER
func IsAdapterError(err error) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type == ErrorTypeAdapter
	}
	return false
}

// IsCapabilityError reports whether err is an AppError of type CAPABILITY
func IsCapabilityError(err error) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type == ErrorTypeCapability
	}
	return false
}
