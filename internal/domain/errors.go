package domain

import (
	"errors"
	"net/http"
)

// Response codes carried by business errors. They share the code space of the
// API result envelope, where "00" is success and "01" is failed validation.
const (
	CodeValidation    = "01"
	CodeNotFound      = "04"
	CodeAlreadyExists = "09"
	CodeUnauthorized  = "41"
	CodeBusinessRule  = "51"
	CodeInternal      = "96"
)

// AppError is a failure that can be reported to API clients: Code goes into
// the envelope's responseCode and Message into its responseDescription. Err
// keeps the underlying cause for logs only.
type AppError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return e.Message + ": " + e.Err.Error()
}

func (e *AppError) Unwrap() error { return e.Err }

// Sentinel errors. Compare with the Is* helpers, which match on code, so an
// error built with NewAppError and the same code matches too.
var (
	ErrNotFound      = &AppError{Code: CodeNotFound, Message: "not found"}
	ErrAlreadyExists = &AppError{Code: CodeAlreadyExists, Message: "already exists"}
	ErrValidation    = &AppError{Code: CodeValidation, Message: "validation error"}
	ErrUnauthorized  = &AppError{Code: CodeUnauthorized, Message: "unauthorized"}
	ErrBusinessRule  = &AppError{Code: CodeBusinessRule, Message: "business rule violated"}
	ErrInternal      = &AppError{Code: CodeInternal, Message: "internal error"}
)

// NewAppError returns an AppError wrapping err, which may be nil.
func NewAppError(code, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

// CodeOf returns the code of the first AppError in err's chain.
func CodeOf(err error) (string, bool) {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		return "", false
	}
	return appErr.Code, true
}

func IsNotFound(err error) bool      { return hasCode(err, CodeNotFound) }
func IsAlreadyExists(err error) bool { return hasCode(err, CodeAlreadyExists) }
func IsValidation(err error) bool    { return hasCode(err, CodeValidation) }
func IsUnauthorized(err error) bool  { return hasCode(err, CodeUnauthorized) }
func IsBusinessRule(err error) bool  { return hasCode(err, CodeBusinessRule) }
func IsInternal(err error) bool      { return hasCode(err, CodeInternal) }

func hasCode(err error, code string) bool {
	got, ok := CodeOf(err)
	return ok && got == code
}

var statusByCode = map[string]int{
	CodeValidation:    http.StatusBadRequest,
	CodeNotFound:      http.StatusNotFound,
	CodeAlreadyExists: http.StatusConflict,
	CodeUnauthorized:  http.StatusUnauthorized,
	CodeBusinessRule:  http.StatusUnprocessableEntity,
	CodeInternal:      http.StatusInternalServerError,
}

// HTTPStatusCode maps err to the status its envelope is served with. Errors
// without a known code are 500.
func HTTPStatusCode(err error) int {
	if code, ok := CodeOf(err); ok {
		if status, known := statusByCode[code]; known {
			return status
		}
	}
	return http.StatusInternalServerError
}
