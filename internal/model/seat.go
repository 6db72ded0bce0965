package model

import (
	"sort"
	"strconv"
	"strings"
)

// SeatClass is the cabin class of a seat.
type SeatClass string

const (
	SeatClassBusiness SeatClass = "business"
	SeatClassEconomy  SeatClass = "economy"
)

// Valid reports whether c is one of the known classes.
func (c SeatClass) Valid() bool {
	return c == SeatClassBusiness || c == SeatClassEconomy
}

// Seat belongs to exactly one flight and has exactly one class.  The
// occupied flag only ever moves from false to true.
//
// Fields:
//  ID       – primary key identifier.
//  FlightID – owning flight.
//  Number   – row+position label such as "A1" or "C12".
//  Class    – business or economy.
//  Occupied – whether a committed reservation item references the seat.
type Seat struct {
	ID       uint64    `json:"id"`
	FlightID uint64    `json:"flight_id"`
	Number   string    `json:"seat_number"`
	Class    SeatClass `json:"seat_class"`
	Occupied bool      `json:"is_occupied"`
}

// ParseSeatNumber splits a label like "AB12" into a zero-based row index
// (A=0, Z=25, AA=26) and a numeric position.  Labels without a row part
// or without a position return ok=false.
func ParseSeatNumber(label string) (row, position int, ok bool) {
	s := strings.ToUpper(strings.TrimSpace(label))
	i := 0
	n := 0
	for i < len(s) && s[i] >= 'A' && s[i] <= 'Z' {
		n = n*26 + int(s[i]-'A'+1)
		i++
	}
	if i == 0 || i == len(s) {
		return -1, 0, false
	}
	pos, err := strconv.Atoi(s[i:])
	if err != nil || pos <= 0 {
		return -1, 0, false
	}
	return n - 1, pos, true
}

// seatLess orders seats row first, then position.  Unparsable labels
// sort after parsable ones, lexically.
func seatLess(a, b Seat) bool {
	ra, pa, oka := ParseSeatNumber(a.Number)
	rb, pb, okb := ParseSeatNumber(b.Number)
	switch {
	case oka && okb:
		if ra != rb {
			return ra < rb
		}
		if pa != pb {
			return pa < pb
		}
		return a.ID < b.ID
	case oka:
		return true
	case okb:
		return false
	}
	return a.Number < b.Number
}

// SortSeats sorts seats in seat-map order (A2 before A10).
func SortSeats(seats []Seat) {
	sort.SliceStable(seats, func(i, j int) bool { return seatLess(seats[i], seats[j]) })
}
