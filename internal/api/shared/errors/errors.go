package errors

import (
	"encoding/json"
	stderrors "errors"
	"net/http"
	"strings"

	"github.com/feral-file/ff-launchpad/internal/domain"
)

// ErrorCode represents a standardized error code
type ErrorCode string

const (
	// Client errors (4xx)
	ErrCodeBadRequest         ErrorCode = "bad_request"
	ErrCodeNotFound           ErrorCode = "not_found"
	ErrCodeValidationFailed   ErrorCode = "validation_failed"
	ErrCodeUnauthorized       ErrorCode = "unauthorized"
	ErrCodeForbidden          ErrorCode = "forbidden"
	ErrCodeAlreadyExists      ErrorCode = "already_exists"
	ErrCodeAlreadyDone        ErrorCode = "already_done"
	ErrCodePrecondition       ErrorCode = "precondition_violation"
	ErrCodePaymentNotVerified ErrorCode = "payment_not_verified"
	ErrCodePayloadTooLarge    ErrorCode = "payload_too_large"

	// Accepted, outcome unknown (2xx)
	ErrCodeActuationIndeterminate ErrorCode = "actuation_indeterminate"

	// Server errors (5xx)
	ErrCodeInternalError    ErrorCode = "internal_error"
	ErrCodeActuationFailed  ErrorCode = "actuation_failed"
	ErrCodeConsistencyFault ErrorCode = "consistency_fault"
)

// APIError represents a structured API error that carries error code and details
type APIError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Details string    `json:"details,omitempty"`
}

func (e *APIError) Error() string {
	jsonErr, _ := json.Marshal(e)
	return string(jsonErr)
}

// Error constructors for common error types
func NewBadRequestError(message string, details ...string) *APIError {
	return &APIError{
		Code:    ErrCodeBadRequest,
		Message: message,
		Details: strings.Join(details, ", "),
	}
}

func NewNotFoundError(message string, details ...string) *APIError {
	return &APIError{
		Code:    ErrCodeNotFound,
		Message: message,
		Details: strings.Join(details, ", "),
	}
}

func NewValidationError(details ...string) *APIError {
	return &APIError{
		Code:    ErrCodeValidationFailed,
		Message: "Validation failed",
		Details: strings.Join(details, ", "),
	}
}

func NewUnauthorizedError(message string, details ...string) *APIError {
	return &APIError{
		Code:    ErrCodeUnauthorized,
		Message: message,
		Details: strings.Join(details, ", "),
	}
}

func NewForbiddenError(message string, details ...string) *APIError {
	return &APIError{
		Code:    ErrCodeForbidden,
		Message: message,
		Details: strings.Join(details, ", "),
	}
}

func NewPayloadTooLargeError(message string, details ...string) *APIError {
	return &APIError{
		Code:    ErrCodePayloadTooLarge,
		Message: message,
		Details: strings.Join(details, ", "),
	}
}

func NewInternalError(message string, details ...string) *APIError {
	return &APIError{
		Code:    ErrCodeInternalError,
		Message: message,
		Details: strings.Join(details, ", "),
	}
}

// kindMapping maps coordinator error kinds to an HTTP status and an API code
var kindMapping = map[domain.ErrorKind]struct {
	status int
	code   ErrorCode
}{
	domain.KindInvalidInput:           {http.StatusBadRequest, ErrCodeValidationFailed},
	domain.KindNotFound:               {http.StatusNotFound, ErrCodeNotFound},
	domain.KindAlreadyExists:          {http.StatusConflict, ErrCodeAlreadyExists},
	domain.KindAlreadyDone:            {http.StatusConflict, ErrCodeAlreadyDone},
	domain.KindPrecondition:           {http.StatusConflict, ErrCodePrecondition},
	domain.KindPaymentNotVerified:     {http.StatusPaymentRequired, ErrCodePaymentNotVerified},
	domain.KindActuationFailed:        {http.StatusBadGateway, ErrCodeActuationFailed},
	domain.KindActuationIndeterminate: {http.StatusAccepted, ErrCodeActuationIndeterminate},
	domain.KindConsistencyFault:       {http.StatusInternalServerError, ErrCodeConsistencyFault},
}

// FromError converts a coordinator error into an HTTP status and an API error.
// Unclassified errors become internal errors without details.
func FromError(err error) (int, *APIError) {
	var apiErr *APIError
	if stderrors.As(err, &apiErr) {
		return http.StatusBadRequest, apiErr
	}

	mapping, ok := kindMapping[domain.KindOf(err)]
	if !ok {
		return http.StatusInternalServerError, NewInternalError(domain.UserMessage(err))
	}

	apiErr = &APIError{
		Code:    mapping.code,
		Message: domain.UserMessage(err),
	}
	// Faults are reported to operators, not to callers
	if mapping.status < http.StatusInternalServerError {
		apiErr.Details = err.Error()
	}
	return mapping.status, apiErr
}
