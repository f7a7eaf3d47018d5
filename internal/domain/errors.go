package domain

import (
	"errors"
	"fmt"
	"time"
)

// AppError represents a standardized error response
type AppError struct {
	Code      string    `json:"code"`
	Message   string    `json:"message"`
	Details   string    `json:"details,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	RequestID string    `json:"request_id,omitempty"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Error codes for different failure scenarios
const (
	ErrParse               = "PARSE_ERROR"
	ErrIO                  = "IO_ERROR"
	ErrUnsupportedFileType = "UNSUPPORTED_FILE_TYPE"
	ErrDatabase            = "DATABASE_ERROR"
	ErrRateLimit           = "RATE_LIMIT_EXCEEDED"
	ErrInternalServer      = "INTERNAL_SERVER_ERROR"
)

// NewAppError creates a new AppError with timestamp
func NewAppError(code, message, details string) *AppError {
	return &AppError{
		Code:      code,
		Message:   message,
		Details:   details,
		Timestamp: time.Now().UTC(),
	}
}

// NewParseError creates an AppError for malformed input
func NewParseError(message string, cause error) *AppError {
	details := ""
	if cause != nil {
		details = cause.Error()
	}
	return NewAppError(ErrParse, message, details)
}

// NewIOError creates an AppError for read/fetch failures
func NewIOError(message string, cause error) *AppError {
	details := ""
	if cause != nil {
		details = cause.Error()
	}
	return NewAppError(ErrIO, message, details)
}

// NewUnsupportedFileTypeError creates an AppError for a file extension
// outside the allowed set
func NewUnsupportedFileTypeError(ext string) *AppError {
	return NewAppError(ErrUnsupportedFileType,
		fmt.Sprintf("unsupported file type %q", ext),
		"supported types are .json, .csv and .pdf")
}

// IsAppError extracts an AppError from an error chain.
func IsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// Validation error codes. Validation findings are advisory: collected,
// never thrown, and never block rendering.
const (
	ErrUnknownBiomarker = "UNKNOWN_BIOMARKER"
	ErrInvalidPoint     = "INVALID_POINT"
	ErrInvalidValue     = "INVALID_VALUE"
)

// ValidationError represents a single validator finding
type ValidationError struct {
	Code      string        `json:"code"`
	Biomarker string        `json:"biomarker"`
	Message   string        `json:"message"`
	Point     *ReadingPoint `json:"point,omitempty"`
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Biomarker)
}

// NewUnknownBiomarkerError creates a finding for a biomarker missing
// from the range table
func NewUnknownBiomarkerError(name string) ValidationError {
	return ValidationError{
		Code:      ErrUnknownBiomarker,
		Biomarker: name,
		Message:   "biomarker is not in the range table",
	}
}

// NewInvalidPointError creates a finding for a point missing its date
// or value
func NewInvalidPointError(biomarker string, point ReadingPoint) ValidationError {
	p := point
	return ValidationError{
		Code:      ErrInvalidPoint,
		Biomarker: biomarker,
		Message:   "reading is missing a date or value",
		Point:     &p,
	}
}

// NewInvalidValueError creates a finding for a non-numeric or negative
// value
func NewInvalidValueError(biomarker string, point ReadingPoint) ValidationError {
	p := point
	return ValidationError{
		Code:      ErrInvalidValue,
		Biomarker: biomarker,
		Message:   "value is not a non-negative number",
		Point:     &p,
	}
}
