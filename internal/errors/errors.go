package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// DomainError is an error with a stable machine-readable code.
type DomainError struct {
	Code    string
	Message string
	Err     error // cause, kept out of client responses
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is matches any DomainError carrying the same code, so wrapped copies of a
// sentinel still satisfy errors.Is.
func (e *DomainError) Is(target error) bool {
	var t *DomainError
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// WrapError attaches err as the cause of a copy of domainErr.
func WrapError(domainErr *DomainError, err error) *DomainError {
	return &DomainError{
		Code:    domainErr.Code,
		Message: domainErr.Message,
		Err:     err,
	}
}

// Detail returns a copy of domainErr with a formatted detail attached.
func Detail(domainErr *DomainError, format string, args ...any) *DomainError {
	return WrapError(domainErr, fmt.Errorf(format, args...))
}

// Predefined domain errors
var (
	// Query errors
	ErrInvalidRange      = NewDomainError("INVALID_RANGE", "invalid date range")
	ErrInvalidArity      = NewDomainError("INVALID_ARITY", "invalid number of values")
	ErrInvalidIdentifier = NewDomainError("INVALID_IDENTIFIER", "invalid identifier")
	ErrUnsupportedFilter = NewDomainError("UNSUPPORTED_FILTER", "filter is not supported by this store")

	// User errors
	ErrUserNotFound       = NewDomainError("USER_NOT_FOUND", "user not found")
	ErrEmailExists        = NewDomainError("EMAIL_EXISTS", "email already exists")
	ErrInvalidCredentials = NewDomainError("INVALID_CREDENTIALS", "invalid credentials")
	ErrSelfDeletion       = NewDomainError("SELF_DELETION", "users cannot delete themselves")
	ErrAccountInactive    = NewDomainError("ACCOUNT_INACTIVE", "account is not active")

	// Authentication errors
	ErrUnauthorized        = NewDomainError("UNAUTHORIZED", "unauthorized")
	ErrForbidden           = NewDomainError("FORBIDDEN", "access forbidden")
	ErrInvalidToken        = NewDomainError("INVALID_TOKEN", "invalid or expired token")
	ErrTokenExpired        = NewDomainError("TOKEN_EXPIRED", "token has expired")
	ErrInvalidRefreshToken = NewDomainError("INVALID_REFRESH_TOKEN", "invalid refresh token")

	// Content errors
	ErrPostNotFound    = NewDomainError("POST_NOT_FOUND", "post not found")
	ErrSlugExists      = NewDomainError("SLUG_EXISTS", "a post with this slug already exists")
	ErrPostNotPublic   = NewDomainError("POST_NOT_PUBLISHED", "post is not published")
	ErrCommentNotFound = NewDomainError("COMMENT_NOT_FOUND", "comment not found")

	// Event errors
	ErrEventNotFound        = NewDomainError("EVENT_NOT_FOUND", "event not found")
	ErrEventFull            = NewDomainError("EVENT_FULL", "event has reached its capacity")
	ErrAlreadyRegistered    = NewDomainError("ALREADY_REGISTERED", "user is already registered for this event")
	ErrNotRegistered        = NewDomainError("NOT_REGISTERED", "user is not registered for this event")
	ErrInvalidStatusChange  = NewDomainError("INVALID_STATUS_TRANSITION", "status transition is not allowed")
	ErrEventNotOpen         = NewDomainError("EVENT_NOT_OPEN", "event is not open for registration")
	ErrInvalidEventSchedule = NewDomainError("INVALID_EVENT_SCHEDULE", "event must end after it starts")

	// Lead errors
	ErrLeadNotFound  = NewDomainError("LEAD_NOT_FOUND", "lead not found")
	ErrDuplicateLead = NewDomainError("DUPLICATE_LEAD", "a registration with this email already exists")

	// Data log and webhook errors
	ErrDataLogNotFound = NewDomainError("DATA_LOG_NOT_FOUND", "data log not found")
	ErrWebhookNotFound = NewDomainError("WEBHOOK_NOT_FOUND", "webhook not found")
	ErrInvalidTemplate = NewDomainError("INVALID_TEMPLATE", "payload template is invalid")

	// Validation errors
	ErrInvalidInput      = NewDomainError("INVALID_INPUT", "invalid input")
	ErrPasswordMismatch  = NewDomainError("PASSWORD_MISMATCH", "new password and confirmation do not match")
	ErrIncorrectPassword = NewDomainError("INCORRECT_PASSWORD", "current password is incorrect")

	// System errors
	ErrInternal           = NewDomainError("INTERNAL_ERROR", "internal server error")
	ErrServiceUnavailable = NewDomainError("SERVICE_UNAVAILABLE", "service unavailable")
)

func IsDomainError(err error) bool {
	var domainErr *DomainError
	return errors.As(err, &domainErr)
}

// GetDomainError returns the first DomainError in the chain of err.
func GetDomainError(err error) *DomainError {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	return nil
}

// ToHTTPStatus picks the response status for err; anything unknown is a 500.
func ToHTTPStatus(err error) int {
	if err == nil {
		return http.StatusOK
	}

	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErrorToHTTPStatus(domainErr)
	}

	return http.StatusInternalServerError
}

func domainErrorToHTTPStatus(err *DomainError) int {
	switch err.Code {
	// 400 Bad Request
	case "INVALID_INPUT", "PASSWORD_MISMATCH", "INVALID_RANGE", "INVALID_ARITY",
		"INVALID_IDENTIFIER", "UNSUPPORTED_FILTER", "INVALID_TEMPLATE", "INVALID_EVENT_SCHEDULE":
		return http.StatusBadRequest

	// 401 Unauthorized
	case "UNAUTHORIZED", "INVALID_CREDENTIALS", "INVALID_TOKEN",
		"TOKEN_EXPIRED", "INVALID_REFRESH_TOKEN", "INCORRECT_PASSWORD":
		return http.StatusUnauthorized

	// 403 Forbidden
	case "SELF_DELETION", "FORBIDDEN", "ACCOUNT_INACTIVE":
		return http.StatusForbidden

	// 404 Not Found
	case "USER_NOT_FOUND", "POST_NOT_FOUND", "COMMENT_NOT_FOUND", "EVENT_NOT_FOUND",
		"LEAD_NOT_FOUND", "DATA_LOG_NOT_FOUND", "WEBHOOK_NOT_FOUND", "POST_NOT_PUBLISHED":
		return http.StatusNotFound

	// 409 Conflict
	case "EMAIL_EXISTS", "SLUG_EXISTS", "EVENT_FULL", "ALREADY_REGISTERED", "NOT_REGISTERED",
		"INVALID_STATUS_TRANSITION", "EVENT_NOT_OPEN", "DUPLICATE_LEAD":
		return http.StatusConflict

	// 503 Service Unavailable
	case "SERVICE_UNAVAILABLE":
		return http.StatusServiceUnavailable

	default:
		return http.StatusInternalServerError
	}
}

// GetErrorMessage is the client-facing message of err.
func GetErrorMessage(err error) string {
	if err == nil {
		return ""
	}

	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Message
	}

	return err.Error()
}

// GetErrorCode returns the domain code of err, or INTERNAL_ERROR.
func GetErrorCode(err error) string {
	if domainErr := GetDomainError(err); domainErr != nil {
		return domainErr.Code
	}
	return ErrInternal.Code
}

// GetErrorDetails returns the detail attached to a domain error. Internal
// errors never expose their cause.
func GetErrorDetails(err error) string {
	domainErr := GetDomainError(err)
	if domainErr == nil || domainErr.Err == nil || domainErr.Code == ErrInternal.Code {
		return ""
	}
	return domainErr.Err.Error()
}
