package services

import (
	"errors"
	"fmt"

	apperrors "github.com/CAPTRSTEAM/survey-app-sub000/internal/errors"
)

// ===== COMMON SERVICE ERRORS =====

var (
	// Generic errors
	ErrNotFound         = errors.New("resource not found")
	ErrValidationFailed = errors.New("validation failed")
	ErrInternalError    = errors.New("internal server error")

	// Survey specific errors
	ErrSurveyNotFound = errors.New("survey not found")
	ErrSurveyExists   = errors.New("survey already exists")

	// Remote source errors
	ErrAuthenticationRequired = errors.New("remote source requires authentication")
	ErrRemoteUnavailable      = errors.New("remote source unavailable")

	// Import errors (fatal for the whole file, distinct from per-row faults)
	ErrUnsupportedFormat = errors.New("unsupported import file format")
	ErrMissingDataColumn = errors.New("import file has no DATA column")
	ErrNoValidRows       = errors.New("import file contains no valid response rows")

	// Export errors
	ErrUnsupportedExportFormat = errors.New("unsupported export format")
)

// ===== CUSTOM ERROR TYPES =====

// Shared validation errors from the errors package
type ValidationError = apperrors.ValidationError
type ValidationErrors = apperrors.ValidationErrors

// ImportError is a fatal import fault: the whole file is rejected with a
// user-facing message and nothing is written.
type ImportError struct {
	FileName string `json:"file_name"`
	Message  string `json:"message"`
	Cause    error  `json:"-"`
}

func (ie *ImportError) Error() string {
	return fmt.Sprintf("import of %s rejected: %s", ie.FileName, ie.Message)
}

func (ie *ImportError) Unwrap() error {
	return ie.Cause
}

func NewImportError(fileName, message string, cause error) *ImportError {
	return &ImportError{FileName: fileName, Message: message, Cause: cause}
}

// NewValidationError creates a new validation error using the shared type
func NewValidationError(field, message string, value interface{}) *ValidationError {
	return apperrors.NewValidationError(field, message, value)
}

// ===== ERROR HELPERS =====

// IsNotFound checks if error represents a "not found" condition
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, ErrSurveyNotFound)
}

// IsAuthRequired checks if error represents the distinct auth-required
// condition of the remote source
func IsAuthRequired(err error) bool {
	return errors.Is(err, ErrAuthenticationRequired)
}

// IsUnavailable checks if error represents a degraded remote source
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrRemoteUnavailable)
}

// IsValidation checks if error represents a validation failure
func IsValidation(err error) bool {
	if errors.Is(err, ErrValidationFailed) {
		return true
	}
	var ve apperrors.ValidationErrors
	if errors.As(err, &ve) {
		return true
	}
	var single *apperrors.ValidationError
	return errors.As(err, &single)
}

// IsFatalImport checks if error rejects a whole import file
func IsFatalImport(err error) bool {
	var ie *ImportError
	return errors.As(err, &ie) ||
		errors.Is(err, ErrUnsupportedFormat) ||
		errors.Is(err, ErrMissingDataColumn) ||
		errors.Is(err, ErrNoValidRows)
}
