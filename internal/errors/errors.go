package errors

import (
	stderrors "errors"
	"fmt"
	"io/fs"
	"net/http"
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

// Wrap wraps an error with additional context. The code of a wrapped
// AppError or RetrievalError is preserved.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return &AppError{
		Code:    GetCode(err),
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
	var appErr *AppError
	if stderrors.As(err, &appErr) {
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

// GetCode returns the code of the outermost AppError or RetrievalError in
// the chain, otherwise "UNKNOWN".
func GetCode(err error) string {
	var appErr *AppError
	if stderrors.As(err, &appErr) && appErr.Code != "" {
		return appErr.Code
	}
	var retErr *RetrievalError
	if stderrors.As(err, &retErr) {
		return CodeRetrieval
	}
	if err == nil {
		return ""
	}
	return "UNKNOWN"
}

// HasCode reports whether any error in the chain carries code.
func HasCode(err error, code string) bool {
	for err != nil {
		if appErr, ok := err.(*AppError); ok && appErr.Code == code {
			return true
		}
		if _, ok := err.(*RetrievalError); ok && code == CodeRetrieval {
			return true
		}
		err = stderrors.Unwrap(err)
	}
	return false
}

// Predefined error codes
const (
	CodeConfigInvalid   = "CONFIG_INVALID"
	CodeValidationError = "VALIDATION_ERROR"
	CodeNotFound        = "NOT_FOUND"
	CodeInvalidInput    = "INVALID_INPUT"
	CodeRetrieval       = "RETRIEVAL_ERROR"
	CodeEmptyDataset    = "EMPTY_DATASET"
	CodeStale           = "STALE_RESULT"
)

// Common error constructors
func ConfigInvalid(message string) *AppError {
	return New(CodeConfigInvalid, message)
}

func ValidationError(message string) *AppError {
	return New(CodeValidationError, message)
}

func NotFound(resource string) *AppError {
	return New(CodeNotFound, fmt.Sprintf("%s not found", resource))
}

func InvalidInput(message string) *AppError {
	return New(CodeInvalidInput, message)
}

// EmptyDataset reports a resource that loaded fine but holds no rows.
func EmptyDataset(resource string) *AppError {
	return New(CodeEmptyDataset, fmt.Sprintf("%s has no rows", resource))
}

// Stale reports a result that was superseded by a newer request.
func Stale(slot string, token int64) *AppError {
	return New(CodeStale, fmt.Sprintf("result %d for %s superseded", token, slot))
}

func IsNotFound(err error) bool     { return HasCode(err, CodeNotFound) }
func IsEmptyDataset(err error) bool { return HasCode(err, CodeEmptyDataset) }
func IsRetrieval(err error) bool    { return HasCode(err, CodeRetrieval) }
func IsStale(err error) bool        { return HasCode(err, CodeStale) }

// IsNotExist and IsPermission classify file system errors.
func IsNotExist(err error) bool   { return stderrors.Is(err, fs.ErrNotExist) }
func IsPermission(err error) bool { return stderrors.Is(err, fs.ErrPermission) }

// RetrievalError is returned when a resource could not be fetched: a
// non-2xx response (Status holds the code) or a transport failure
// (Status is 0).
type RetrievalError struct {
	Resource string
	Status   int
	Cause    error
}

func (e *RetrievalError) Error() string {
	switch {
	case e.Status != 0 && e.Cause != nil:
		return fmt.Sprintf("retrieving %s: HTTP %d: %v", e.Resource, e.Status, e.Cause)
	case e.Status != 0:
		return fmt.Sprintf("retrieving %s: HTTP %d %s", e.Resource, e.Status, http.StatusText(e.Status))
	case e.Cause != nil:
		return fmt.Sprintf("retrieving %s: %v", e.Resource, e.Cause)
	default:
		return fmt.Sprintf("retrieving %s failed", e.Resource)
	}
}

func (e *RetrievalError) Unwrap() error {
	return e.Cause
}

// Retrieval builds a RetrievalError.
func Retrieval(resource string, status int, cause error) *RetrievalError {
	return &RetrievalError{Resource: resource, Status: status, Cause: cause}
}

// AsRetrieval extracts the RetrievalError from err's chain.
func AsRetrieval(err error) (*RetrievalError, bool) {
	var retErr *RetrievalError
	if stderrors.As(err, &retErr) {
		return retErr, true
	}
	return nil, false
}
