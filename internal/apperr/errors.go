// Package apperr defines the typed error carried from the reservation
// core to the HTTP layer.  Callers branch on Kind, never on the message.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a failure.
type Kind string

const (
	KindInvalidInput       Kind = "invalid_input"
	KindNotFound           Kind = "not_found"
	KindConflict           Kind = "conflict"
	KindForbidden          Kind = "forbidden"
	KindInvalidIdentity    Kind = "invalid_identity"
	KindInvalidPrice       Kind = "invalid_price"
	KindInternal           Kind = "internal"
	KindNotificationFailed Kind = "notification_failed"
)

// Error is a classified failure.  Seat and Passenger name the offending
// seat or passenger when one is known.
type Error struct {
	Kind      Kind
	Message   string
	Seat      string
	Passenger string
	Err       error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// New builds an Error with a formatted message.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap builds an Error around a cause.
func Wrap(kind Kind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

// WithSeat sets the offending seat label.
func (e *Error) WithSeat(seat string) *Error {
	e.Seat = seat
	return e
}

// WithPassenger sets the offending passenger name.
func (e *Error) WithPassenger(name string) *Error {
	e.Passenger = name
	return e
}

// KindOf returns the Kind of the first *Error in err's chain, or
// KindInternal when there is none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// As returns the first *Error in err's chain.
func As(err error) (*Error, bool) {
	var e *Error
	ok := errors.As(err, &e)
	return e, ok
}

// HTTPStatus maps a Kind to the response status used by the API.
func HTTPStatus(k Kind) int {
	switch k {
	case KindInvalidInput, KindInvalidIdentity:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindForbidden:
		return http.StatusForbidden
	case KindNotificationFailed:
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}
