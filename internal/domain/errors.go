package domain

import (
	"errors"
	"fmt"
)

// ErrorKind classifies coordinator failures so callers can react without string matching
type ErrorKind string

const (
	KindPrecondition           ErrorKind = "precondition_violation"
	KindNotFound               ErrorKind = "not_found"
	KindAlreadyExists          ErrorKind = "already_exists"
	KindAlreadyDone            ErrorKind = "already_done"
	KindPaymentNotVerified     ErrorKind = "payment_not_verified"
	KindActuationFailed        ErrorKind = "actuation_failed"
	KindActuationIndeterminate ErrorKind = "actuation_indeterminate"
	KindConsistencyFault       ErrorKind = "consistency_fault"
	KindInvalidInput           ErrorKind = "invalid_input"
)

var (
	// ErrPrecondition is returned when the asset is in the wrong lifecycle state for the operation
	ErrPrecondition = &Error{Kind: KindPrecondition, Message: "precondition violated"}

	// ErrNotFound is returned when the owner has no asset
	ErrNotFound = &Error{Kind: KindNotFound, Message: "asset not found"}

	// ErrAlreadyExists is returned when the owner already has an asset
	ErrAlreadyExists = &Error{Kind: KindAlreadyExists, Message: "asset already exists"}

	// ErrAlreadyUnlocked is returned when trading is already enabled for the asset
	ErrAlreadyUnlocked = &Error{Kind: KindAlreadyDone, Message: "trading already enabled"}

	// ErrAlreadyListed is returned when the listing was already submitted
	ErrAlreadyListed = &Error{Kind: KindAlreadyDone, Message: "listing already submitted"}

	// ErrPaymentNotVerified is returned when no matching payment could be found
	ErrPaymentNotVerified = &Error{Kind: KindPaymentNotVerified, Message: "payment not found"}

	// ErrActuationFailed is returned when the chain rejected the action
	ErrActuationFailed = &Error{Kind: KindActuationFailed, Message: "actuation failed"}

	// ErrActuationIndeterminate is returned when the outcome of a submitted action is unknown
	ErrActuationIndeterminate = &Error{Kind: KindActuationIndeterminate, Message: "actuation outcome unknown"}

	// ErrConsistencyFault is returned when the chain and the store disagree
	ErrConsistencyFault = &Error{Kind: KindConsistencyFault, Message: "consistency fault"}

	// ErrInvalidInput is returned when request input fails validation
	ErrInvalidInput = &Error{Kind: KindInvalidInput, Message: "invalid input"}
)

// Error is a classified coordinator error
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches errors of the same kind, so errors.Is(err, ErrNotFound) works on wrapped copies
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	if t.Kind != e.Kind {
		return false
	}
	// AlreadyUnlocked and AlreadyListed share a kind but are distinct sentinels
	if t.Kind == KindAlreadyDone {
		return t.Message == e.Message
	}
	return true
}

// Wrap returns a copy of the sentinel carrying the cause
func Wrap(sentinel *Error, cause error) *Error {
	return &Error{Kind: sentinel.Kind, Message: sentinel.Message, Err: cause}
}

// Wrapf returns a copy of the sentinel with a formatted cause
func Wrapf(sentinel *Error, format string, args ...any) *Error {
	return &Error{Kind: sentinel.Kind, Message: sentinel.Message, Err: fmt.Errorf(format, args...)}
}

// KindOf returns the kind of a classified error, or an empty kind
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// UserMessage maps an error to a message a person can act on
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	switch {
	case errors.Is(err, ErrAlreadyUnlocked):
		return "Trading is already enabled for your coin."
	case errors.Is(err, ErrAlreadyListed):
		return "Your listing has already been submitted."
	}

	switch KindOf(err) {
	case KindNotFound:
		return "You don't have a coin yet. Create one first."
	case KindAlreadyExists:
		return "You already have a coin. Only one coin per account is allowed."
	case KindPrecondition:
		return "This action is not available for your coin yet."
	case KindPaymentNotVerified:
		return "We could not find your payment yet. Check the amount and address, wait a minute for it to confirm, then try again."
	case KindActuationFailed:
		return "The on-chain transaction failed. You can try again."
	case KindActuationIndeterminate:
		return "Your transaction was submitted but is not confirmed yet. Please wait a few minutes and check the status before trying again."
	case KindConsistencyFault:
		return "Something went wrong on our side and support has been notified. Please do not retry."
	case KindInvalidInput:
		return fmt.Sprintf("Invalid request: %v", errors.Unwrap(err))
	}
	return "Unexpected error, please try again later."
}
