package errors

import (
	"errors"
	"net/http"

	"gorm.io/gorm"
)

// Kind classifies an application error for transport mapping.
type Kind string

const (
	KindValidation       Kind = "validation"
	KindNotFound         Kind = "not_found"
	KindPermissionDenied Kind = "permission_denied"
	KindUnauthenticated  Kind = "unauthenticated"
	KindDeliveryFailed   Kind = "delivery_failed"
)

// AppError is a tagged domain error. Two AppErrors match under errors.Is
// when their codes are equal, so sentinels can carry per-call detail.
type AppError struct {
	Kind    Kind
	Code    string
	Message string
	Field   string
	Fields  map[string][]string
	cause   error
}

func (e *AppError) Error() string {
	if e.cause != nil {
		return e.Message + ": " + e.cause.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.cause
}

// Is reports whether target is an AppError with the same code.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	return ok && t.Code == e.Code
}

// OnField returns a copy of e attributed to the given request field.
func (e *AppError) OnField(field string) *AppError {
	cp := *e
	cp.Field = field
	return &cp
}

// Wrap returns a copy of e with cause attached.
func (e *AppError) Wrap(cause error) *AppError {
	cp := *e
	cp.cause = cause
	return &cp
}

func newError(kind Kind, code, message, field string) *AppError {
	return &AppError{Kind: kind, Code: code, Message: message, Field: field}
}

var (
	// ErrBadName covers a malformed or reserved username and an overlong email.
	ErrBadName           = newError(KindValidation, "BAD_NAME", "This name cannot be used", "username")
	ErrUsernameNotUnique = newError(KindValidation, "USERNAME_NOT_UNIQUE", "Username is not unique", "username")
	ErrEmailNotUnique    = newError(KindValidation, "EMAIL_NOT_UNIQUE", "Email is not unique", "email")
	ErrMissingUsername   = newError(KindValidation, "MISSING_USERNAME", "Enter username", "username")
	ErrMissingCode       = newError(KindValidation, "MISSING_CODE", "Enter confirmation code", "confirmation_code")
	ErrCodeMismatch      = newError(KindValidation, "CODE_MISMATCH", "Confirmation code doesnt match the user", "confirmation_code")
	ErrDuplicateReview   = newError(KindValidation, "DUPLICATE_REVIEW", "Only one review per title is allowed", "")
	ErrSlugNotUnique     = newError(KindValidation, "SLUG_NOT_UNIQUE", "Slug is not unique", "slug")
	ErrUnknownSlug       = newError(KindValidation, "UNKNOWN_SLUG", "No object with this slug", "")
	ErrInvalidRefresh    = newError(KindUnauthenticated, "INVALID_REFRESH_TOKEN", "invalid or expired refresh token", "refresh")
	ErrNotFound          = newError(KindNotFound, "NOT_FOUND", "not found", "")
	ErrPermissionDenied  = newError(KindPermissionDenied, "PERMISSION_DENIED", "you do not have permission to perform this action", "")
	ErrUnauthenticated   = newError(KindUnauthenticated, "UNAUTHENTICATED", "authentication credentials were not provided or are invalid", "")
	ErrDeliveryFailed    = newError(KindDeliveryFailed, "DELIVERY_FAILED", "confirmation code could not be delivered", "")
	ErrValidation        = newError(KindValidation, "VALIDATION_ERROR", "invalid input", "")
	ErrDuplicate         = errors.New("duplicate key")
)

// Validation builds a field-level validation error.
func Validation(fields map[string][]string) *AppError {
	e := *ErrValidation
	e.Fields = fields
	return &e
}

// InvalidField is a shorthand for a single-field validation error.
func InvalidField(field, message string) *AppError {
	return Validation(map[string][]string{field: {message}})
}

// DeliveryFailed wraps a mail transport failure.
func DeliveryFailed(cause error) *AppError {
	return ErrDeliveryFailed.Wrap(cause)
}

// ErrorResponse represents a standardized error response.
type ErrorResponse struct {
	Error  string              `json:"error"`
	Code   string              `json:"code"`
	Fields map[string][]string `json:"fields,omitempty"`
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
	Code       string
	Fields     map[string][]string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message, code string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		Code:       code,
	}
}

// ToErrorResponse converts an HTTPError to ErrorResponse.
func (e *HTTPError) ToErrorResponse() ErrorResponse {
	return ErrorResponse{
		Error:  e.Message,
		Code:   e.Code,
		Fields: e.Fields,
	}
}

var kindStatus = map[Kind]int{
	KindValidation:       http.StatusBadRequest,
	KindNotFound:         http.StatusNotFound,
	KindPermissionDenied: http.StatusForbidden,
	KindUnauthenticated:  http.StatusUnauthorized,
	KindDeliveryFailed:   http.StatusServiceUnavailable,
}

// MapErrorToHTTP maps domain errors to HTTP errors.
func MapErrorToHTTP(err error) *HTTPError {
	var appErr *AppError
	switch {
	case errors.As(err, &appErr):
		httpErr := NewHTTPError(kindStatus[appErr.Kind], appErr.Message, appErr.Code)
		httpErr.Fields = appErr.Fields
		if httpErr.Fields == nil && appErr.Field != "" {
			httpErr.Fields = map[string][]string{appErr.Field: {appErr.Message}}
		}
		return httpErr
	case errors.Is(err, gorm.ErrRecordNotFound):
		return NewHTTPError(http.StatusNotFound, ErrNotFound.Message, ErrNotFound.Code)
	default:
		return NewHTTPError(http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
	}
}
