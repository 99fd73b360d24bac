// Package errors carries coded errors across package boundaries so the
// CLI can report failures by category without string matching.
package errors

import (
	"errors"
	"fmt"
)

// Error codes. The code names the failure category; the message carries
// the detail.
const (
	CodeUnknown       = "UNKNOWN_ERROR"
	CodeIOError       = "IO_ERROR"
	CodeParseError    = "PARSE_ERROR"
	CodeConfigError   = "CONFIG_ERROR"
	CodeInvalidInput  = "INVALID_INPUT"
	CodeEmptyFile     = "EMPTY_FILE"
	CodeDatabaseError = "DATABASE_ERROR"
	CodeUploadError   = "UPLOAD_ERROR"
)

// AppError pairs a machine-readable code with a human-readable message
// and an optional wrapped cause.
type AppError struct {
	Code    string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("[%s] %s", e.Code, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is matches any AppError carrying the same code, so errors.Is works
// against the sentinel values below.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	return ok && e.Code == t.Code
}

// New returns an AppError with no wrapped cause.
func New(code, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

// Wrap attaches a code and message to an underlying error.
func Wrap(code, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

// Sentinels for errors.Is checks, one per code.
var (
	ErrIOError       = New(CodeIOError, "input/output error")
	ErrParseError    = New(CodeParseError, "parse error")
	ErrConfigError   = New(CodeConfigError, "configuration error")
	ErrInvalidInput  = New(CodeInvalidInput, "invalid input")
	ErrEmptyFile     = New(CodeEmptyFile, "empty file")
	ErrDatabaseError = New(CodeDatabaseError, "database error")
	ErrUploadError   = New(CodeUploadError, "upload error")
)

// IsIOError reports whether err carries the IO_ERROR code.
func IsIOError(err error) bool { return errors.Is(err, ErrIOError) }

// IsParseError reports whether err carries the PARSE_ERROR code.
func IsParseError(err error) bool { return errors.Is(err, ErrParseError) }

// IsConfigError reports whether err carries the CONFIG_ERROR code.
func IsConfigError(err error) bool { return errors.Is(err, ErrConfigError) }

// IsDatabaseError reports whether err carries the DATABASE_ERROR code.
func IsDatabaseError(err error) bool { return errors.Is(err, ErrDatabaseError) }

// IsUploadError reports whether err carries the UPLOAD_ERROR code.
func IsUploadError(err error) bool { return errors.Is(err, ErrUploadError) }

// GetErrorCode returns the code of the first AppError in err's chain, or
// CodeUnknown when there is none.
func GetErrorCode(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeUnknown
}

// GetErrorMessage returns the message of the first AppError in err's
// chain, falling back to err.Error() for plain errors.
func GetErrorMessage(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	if err != nil {
		return err.Error()
	}
	return ""
}
