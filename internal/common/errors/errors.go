// Package errors provides standardized error handling for the HTTP boundary.
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeActivityNotFound ErrorCode = "ACTIVITY_NOT_FOUND"
	ErrCodeAlreadySignedUp  ErrorCode = "ALREADY_SIGNED_UP"
	ErrCodeNotSignedUp      ErrorCode = "NOT_SIGNED_UP"
	ErrCodeEmailRequired    ErrorCode = "EMAIL_REQUIRED"

	ErrCodeSeedInvalid ErrorCode = "SEED_INVALID"

	ErrCodeEventDeliveryFailed      ErrorCode = "EVENT_DELIVERY_FAILED"
	ErrCodeNotificationSendFailed   ErrorCode = "NOTIFICATION_SEND_FAILED"
	ErrCodeDatabaseConnectionFailed ErrorCode = "DATABASE_CONNECTION_FAILED"

	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// Kind groups codes by how the boundary reports them.
type Kind string

const (
	KindNotFound Kind = "NOT_FOUND"
	KindConflict Kind = "CONFLICT"
	KindInvalid  Kind = "INVALID"
	KindInternal Kind = "INTERNAL"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`

	cause error
}

func (e *StandardError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("StandardError[%s]: %s (%s)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// Unwrap exposes the sentinel or underlying error, if any.
func (e *StandardError) Unwrap() error {
	return e.cause
}

// Is matches another StandardError by code.
func (e *StandardError) Is(target error) bool {
	t, ok := target.(*StandardError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// Kind reports the error kind for the code.
func (e *StandardError) Kind() Kind {
	return GetErrorKind(e.Code)
}

// ==========================
// 2. Error Constructors
// ==========================

// NewActivityNotFoundError creates a non-retryable not-found error.
func NewActivityNotFoundError(activity string) *StandardError {
	return &StandardError{
		Code:      ErrCodeActivityNotFound,
		Message:   "Activity not found",
		Details:   fmt.Sprintf("activity: %s", activity),
		Retryable: false,
		Metadata:  map[string]interface{}{"activity": activity},
		Timestamp: time.Now().UTC(),
	}
}

// NewAlreadySignedUpError creates a non-retryable duplicate signup error.
func NewAlreadySignedUpError(activity, email string) *StandardError {
	return &StandardError{
		Code:      ErrCodeAlreadySignedUp,
		Message:   "Student is already signed up",
		Details:   fmt.Sprintf("activity: %s, email: %s", activity, email),
		Retryable: false,
		Metadata:  map[string]interface{}{"activity": activity, "email": email},
		Timestamp: time.Now().UTC(),
	}
}

// NewNotSignedUpError creates a non-retryable removal error.
func NewNotSignedUpError(activity, email string) *StandardError {
	return &StandardError{
		Code:      ErrCodeNotSignedUp,
		Message:   "Student is not signed up for this activity",
		Details:   fmt.Sprintf("activity: %s, email: %s", activity, email),
		Retryable: false,
		Metadata:  map[string]interface{}{"activity": activity, "email": email},
		Timestamp: time.Now().UTC(),
	}
}

// NewEmailRequiredError creates a non-retryable presence-check error.
func NewEmailRequiredError() *StandardError {
	return &StandardError{
		Code:      ErrCodeEmailRequired,
		Message:   "email query parameter is required",
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewSeedInvalidError reports a seed document that failed validation.
func NewSeedInvalidError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeSeedInvalid,
		Message:   "Activity seed is invalid",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewEventDeliveryFailedError wraps a failed sink delivery.
func NewEventDeliveryFailedError(sink string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeEventDeliveryFailed,
		Message:   "Event delivery failed",
		Details:   fmt.Sprintf("sink: %s, error: %s", sink, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewNotificationSendFailedError wraps a failed email send.
func NewNotificationSendFailedError(notificationType string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeNotificationSendFailed,
		Message:   "Notification send failed",
		Details:   fmt.Sprintf("notificationType: %s, error: %s", notificationType, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewDatabaseConnectionFailedError creates a retryable database connection error.
func NewDatabaseConnectionFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDatabaseConnectionFailed,
		Message:   "Database connection error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewInternalError wraps anything that is not a StandardError.
func NewInternalError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeInternal,
		Message:   "Unexpected error",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// ==========================
// 3. Conversion to HTTP
// ==========================

// HTTPStatusMapping maps error codes to response status codes.
// Conflicts are reported as 400 to match the public contract.
var HTTPStatusMapping = map[ErrorCode]int{
	ErrCodeActivityNotFound: http.StatusNotFound,
	ErrCodeAlreadySignedUp:  http.StatusBadRequest,
	ErrCodeNotSignedUp:      http.StatusBadRequest,
	ErrCodeEmailRequired:    http.StatusUnprocessableEntity,
}

// HTTPStatus returns the response status for a code, 500 when unmapped.
func HTTPStatus(code ErrorCode) int {
	if status, ok := HTTPStatusMapping[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// Normalize ensures we always have a StandardError.
func Normalize(err error) *StandardError {
	if err == nil {
		return nil
	}
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr
	}
	return NewInternalError(err)
}

// ==========================
// 4. Utility Functions
// ==========================

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	switch code {
	case ErrCodeEventDeliveryFailed, ErrCodeNotificationSendFailed, ErrCodeDatabaseConnectionFailed:
		return true
	default:
		return false
	}
}

// GetErrorKind returns the kind of the error code.
func GetErrorKind(code ErrorCode) Kind {
	switch code {
	case ErrCodeActivityNotFound:
		return KindNotFound
	case ErrCodeAlreadySignedUp, ErrCodeNotSignedUp:
		return KindConflict
	case ErrCodeEmailRequired, ErrCodeSeedInvalid:
		return KindInvalid
	default:
		return KindInternal
	}
}

// GetErrorCategory returns the category of the error code, used as a metric label.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "ACTIVITY") || strings.Contains(codeStr, "SIGNED_UP"):
		return "REGISTRY"
	case strings.Contains(codeStr, "EMAIL") || strings.Contains(codeStr, "SEED"):
		return "VALIDATION"
	case strings.Contains(codeStr, "EVENT") || strings.Contains(codeStr, "NOTIFICATION"):
		return "DELIVERY"
	case strings.Contains(codeStr, "DATABASE"):
		return "DATABASE"
	default:
		return "INTERNAL"
	}
}
