package model

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// ReservationStatus is the lifecycle state of a reservation group.
type ReservationStatus string

const (
	ReservationActive    ReservationStatus = "active"
	ReservationModified  ReservationStatus = "modified"
	ReservationCancelled ReservationStatus = "cancelled"
)

// transitions lists the allowed moves.  Cancelled is terminal.
var transitions = map[ReservationStatus][]ReservationStatus{
	ReservationActive:   {ReservationModified, ReservationCancelled},
	ReservationModified: {ReservationCancelled},
}

// Valid reports whether s is a known status.
func (s ReservationStatus) Valid() bool {
	switch s {
	case ReservationActive, ReservationModified, ReservationCancelled:
		return true
	}
	return false
}

// CanTransition reports whether a group in state s may move to next.
func (s ReservationStatus) CanTransition(next ReservationStatus) bool {
	for _, t := range transitions[s] {
		if t == next {
			return true
		}
	}
	return false
}

// Transition returns next when the move is allowed and an error otherwise.
func (s ReservationStatus) Transition(next ReservationStatus) (ReservationStatus, error) {
	if !s.CanTransition(next) {
		return s, fmt.Errorf("reservation status: %s -> %s not allowed", s, next)
	}
	return next, nil
}

// ReservationGroup records one booking transaction covering one or more
// seats on one flight.  It is written exactly once together with its
// items and is never deleted.
//
// Fields:
//  ID              – primary key identifier.
//  UserID          – user who made the reservation.
//  FlightID        – flight being reserved.
//  CreatedAt       – creation timestamp.
//  Status          – lifecycle state; only active is written today.
//  TotalPrice      – sum of the items' unit prices.
//  ManualSelection – whether the passenger picked seats on the map.
//  Items           – line items, populated by detail queries only.
type ReservationGroup struct {
	ID              uint64            `json:"id"`
	UserID          uint64            `json:"user_id"`
	FlightID        uint64            `json:"flight_id"`
	CreatedAt       time.Time         `json:"created_at"`
	Status          ReservationStatus `json:"status"`
	TotalPrice      decimal.Decimal   `json:"total_price"`
	ManualSelection bool              `json:"manual_selection"`
	Items           []ReservationItem `json:"items,omitempty"`
}

// ReservationItem is one seat+passenger line within a group.  Items are
// immutable once written.  SeatNumber and SeatClass are filled from the
// seats table on read.
type ReservationItem struct {
	ID         uint64          `json:"id"`
	GroupID    uint64          `json:"reservation_group_id"`
	SeatID     uint64          `json:"seat_id"`
	SeatNumber string          `json:"seat_number,omitempty"`
	SeatClass  SeatClass       `json:"seat_class,omitempty"`
	Passenger  string          `json:"passenger_name"`
	NationalID string          `json:"national_id"`
	HasLuggage bool            `json:"has_luggage"`
	Price      decimal.Decimal `json:"price"`
	ReservedAt time.Time       `json:"reserved_at"`
}
