package errors

import (
	"fmt"
)

// AppError represents a structured application error
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// New creates a new AppError
func New(code, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an error with additional context
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	if appErr, ok := err.(*AppError); ok {
		return &AppError{
			Code:    appErr.Code,
			Message: message,
			Cause:   appErr,
		}
	}
	return &AppError{
		Code:    "INTERNAL_ERROR",
		Message: message,
		Cause:   err,
	}
}

// Wrapf wraps an error with formatted additional context
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return Wrap(err, fmt.Sprintf(format, args...))
}

// WithCode adds an error code to an existing error
func WithCode(code string, err error) error {
	if err == nil {
		return nil
	}
	if appErr, ok := err.(*AppError); ok {
		return &AppError{
			Code:    code,
			Message: appErr.Message,
			Cause:   appErr.Cause,
		}
	}
	return &AppError{
		Code:    code,
		Message: err.Error(),
		Cause:   err,
	}
}

// IsAppError checks if an error is an AppError
func IsAppError(err error) bool {
	_, ok := err.(*AppError)
	return ok
}

// CodeOf returns the error code, or INTERNAL_ERROR for plain errors.
func CodeOf(err error) string {
	if appErr, ok := err.(*AppError); ok {
		return appErr.Code
	}
	return "INTERNAL_ERROR"
}

// Domain error constructors

// ConfigInvalid reports an invalid or missing configuration value.
func ConfigInvalid(message string) *AppError {
	return New("CONFIG_INVALID", message)
}

// FileInvalid reports an upload that could not be parsed at all.
func FileInvalid(message string) *AppError {
	return New("FILE_INVALID", message)
}

// ColumnsMissing reports a table missing required columns.
func ColumnsMissing(columns []string) *AppError {
	return New("COLUMNS_MISSING", fmt.Sprintf("required columns missing: %v", columns))
}

// WeekNotFound reports a request for a week with no snapshot.
func WeekNotFound(week string) *AppError {
	return New("WEEK_NOT_FOUND", fmt.Sprintf("week %q not available", week))
}

// NoData reports an operation that needs ingested data before it can run.
func NoData(message string) *AppError {
	return New("NO_DATA", message)
}

// MappingNotLoaded reports operations that need the automation mapping.
func MappingNotLoaded() *AppError {
	return New("MAPPING_NOT_LOADED", "automation mapping not loaded")
}
