package apierr

import (
	"errors"
	"fmt"
	"net/http"
)

// Stable error codes clients can branch on. The HTTP status carried next to
// the code is the collaborator mapping; the code is the contract.
const (
	CodeMissingFile     = "missing_file"
	CodeUnsupportedType = "unsupported_type"
	CodeFileTooLarge    = "file_too_large"
	CodeSchemaError     = "schema_error"
	CodeAnalysisError   = "analysis_error"
	CodeTooShort        = "too_short"
	CodeTooLong         = "too_long"
	CodeNotFound        = "not_found"
	CodeStorageError    = "storage_error"
	CodeUnauthorized    = "unauthorized"
	CodeForbidden       = "forbidden"
	CodeConflict        = "conflict"
)

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type Error struct {
	Status int
	Code   string
	Err    error
	Fields []FieldError
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Code != "" {
		return e.Code
	}
	if e.Status != 0 {
		return fmt.Sprintf("api error (%d)", e.Status)
	}
	return "api error"
}

func (e *Error) Unwrap() error { return e.Err }

func New(status int, code string, err error) *Error {
	return &Error{Status: status, Code: code, Err: err}
}

func MissingFile() *Error {
	return New(http.StatusBadRequest, CodeMissingFile, errors.New("no video file supplied"))
}

func UnsupportedType(detail string) *Error {
	return New(http.StatusBadRequest, CodeUnsupportedType, errors.New(detail))
}

func FileTooLarge(maxBytes int64) *Error {
	return New(http.StatusBadRequest, CodeFileTooLarge,
		fmt.Errorf("file exceeds the maximum allowed size of %d bytes", maxBytes))
}

func Schema(fields []FieldError) *Error {
	e := New(http.StatusBadRequest, CodeSchemaError, errors.New("invalid fields"))
	e.Fields = fields
	return e
}

func Analysis(err error) *Error {
	return New(http.StatusBadRequest, CodeAnalysisError, err)
}

func TooShort(duration, min float64) *Error {
	return New(http.StatusBadRequest, CodeTooShort,
		fmt.Errorf("video duration (%.2fs) is too short, minimum is %.0f seconds", duration, min))
}

func TooLong(duration, max float64) *Error {
	return New(http.StatusBadRequest, CodeTooLong,
		fmt.Errorf("video duration (%.2fs) is too long, maximum is %.0f seconds", duration, max))
}

func NotFound(what string) *Error {
	return New(http.StatusNotFound, CodeNotFound, fmt.Errorf("%s not found", what))
}

func Storage(err error) *Error {
	return New(http.StatusInternalServerError, CodeStorageError, err)
}

func Unauthorized(detail string) *Error {
	return New(http.StatusUnauthorized, CodeUnauthorized, errors.New(detail))
}

func Forbidden(detail string) *Error {
	return New(http.StatusForbidden, CodeForbidden, errors.New(detail))
}

func Conflict(detail string) *Error {
	return New(http.StatusConflict, CodeConflict, errors.New(detail))
}

// AsError returns the *Error inside err, or wraps err as a storage error so
// handlers always have a status and code to surface.
func AsError(err error) *Error {
	if err == nil {
		return nil
	}
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr
	}
	return Storage(err)
}

// IsCode reports whether err carries the given stable code.
func IsCode(err error, code string) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Code == code
}
