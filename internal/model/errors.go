package model

import (
	"errors"
	"fmt"
)

var (
	ErrFlightNotFound      = errors.New("flight not found")
	ErrSeatNotFound        = errors.New("seat not found")
	ErrReservationNotFound = errors.New("reservation not found")
	ErrUserNotFound        = errors.New("user not found")
	ErrEmailExists         = errors.New("email already exists")
	ErrInvalidToken        = errors.New("invalid or expired token")
)

// ErrSeatContention is returned when the store aborted a transaction
// because another one held the same seat rows (deadlock or lock wait
// timeout).
var ErrSeatContention = errors.New("seat is being reserved by another request")

// SeatConflictError reports the first already-occupied seat met while
// claiming a set of seats.
type SeatConflictError struct {
	SeatID     uint64
	SeatNumber string
}

func (e *SeatConflictError) Error() string {
	return fmt.Sprintf("seat %s is already occupied", e.SeatNumber)
}
