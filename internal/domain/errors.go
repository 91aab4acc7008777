package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrBusy = errors.New("another action is still in flight")

	ErrInsufficientFunds  = errors.New("insufficient funds")
	ErrUnknownDestination = errors.New("unknown destination")
	ErrNotFound           = errors.New("not found")
	ErrInvalidRequest     = errors.New("invalid request")

	ErrUserNotFound = errors.New("user not found")
)

// ValidationError is bad local input caught before any network call.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// RejectedError is a business-rule rejection returned by the ledger service.
// Reason is one of the Err* sentinels and is matched by errors.Is.
type RejectedError struct {
	Reason  error
	Message string
	Status  int
}

func (e *RejectedError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Reason != nil {
		return e.Reason.Error()
	}
	return "request rejected"
}

func (e *RejectedError) Is(target error) bool {
	return e.Reason != nil && e.Reason == target
}

// UnavailableError covers transport failures and non-2xx responses without
// a structured body.
type UnavailableError struct {
	Status  int
	Message string
	Err     error
}

func (e *UnavailableError) Error() string {
	switch {
	case e.Message != "" && e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	case e.Message != "":
		return e.Message
	case e.Err != nil:
		return fmt.Sprintf("service unavailable: %v", e.Err)
	case e.Status != 0:
		return fmt.Sprintf("service unavailable: status %d", e.Status)
	default:
		return "service unavailable"
	}
}

func (e *UnavailableError) Unwrap() error {
	return e.Err
}

// ClassifyRejection maps a service-supplied message onto a rejection reason.
func ClassifyRejection(status int, message string) error {
	lower := strings.ToLower(message)
	switch {
	case strings.Contains(lower, "insufficient"):
		return ErrInsufficientFunds
	case strings.Contains(lower, "both users"), strings.Contains(lower, "destination"):
		return ErrUnknownDestination
	case status == 404, strings.Contains(lower, "not found"):
		return ErrNotFound
	default:
		return ErrInvalidRequest
	}
}

// UserMessage is the text a view shows for err: the service or validation
// message when one exists, otherwise fallback.
func UserMessage(err error, fallback string) string {
	if err == nil {
		return ""
	}

	var validationErr *ValidationError
	if errors.As(err, &validationErr) && validationErr.Message != "" {
		return validationErr.Message
	}

	var rejectedErr *RejectedError
	if errors.As(err, &rejectedErr) && rejectedErr.Message != "" {
		return rejectedErr.Message
	}

	var unavailableErr *UnavailableError
	if errors.As(err, &unavailableErr) && unavailableErr.Message != "" {
		return unavailableErr.Message
	}

	if errors.Is(err, ErrBusy) {
		return ErrBusy.Error()
	}

	return fallback
}
