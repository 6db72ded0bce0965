package model

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSeatNumber(t *testing.T) {
	cases := map[string]struct {
		row, pos int
		ok       bool
	}{
		"A1":   {0, 1, true},
		"c12":  {2, 12, true},
		"AA3":  {26, 3, true},
		"12":   {-1, 0, false},
		"B":    {-1, 0, false},
		"B0":   {-1, 0, false},
		"B1x":  {-1, 0, false},
		" D4 ": {3, 4, true},
	}
	for in, want := range cases {
		row, pos, ok := ParseSeatNumber(in)
		assert.Equal(t, want.ok, ok, in)
		if want.ok {
			assert.Equal(t, want.row, row, in)
			assert.Equal(t, want.pos, pos, in)
		}
	}
}

func TestSortSeats(t *testing.T) {
	seats := []Seat{
		{ID: 1, Number: "C10"},
		{ID: 2, Number: "??"},
		{ID: 3, Number: "A2"},
		{ID: 4, Number: "C2"},
		{ID: 5, Number: "A1"},
	}
	SortSeats(seats)
	var got []string
	for _, s := range seats {
		got = append(got, s.Number)
	}
	assert.Equal(t, []string{"A1", "A2", "C2", "C10", "??"}, got)
}

func TestReservationStatusTransitions(t *testing.T) {
	next, err := ReservationActive.Transition(ReservationModified)
	require.NoError(t, err)
	assert.Equal(t, ReservationModified, next)

	assert.True(t, ReservationModified.CanTransition(ReservationCancelled))
	assert.False(t, ReservationModified.CanTransition(ReservationActive))

	_, err = ReservationCancelled.Transition(ReservationActive)
	assert.Error(t, err)
	assert.False(t, ReservationStatus("pending").Valid())
}

func TestFlightPriceFor(t *testing.T) {
	biz := decimal.NewFromInt(1200)
	f := Flight{BusinessPrice: &biz}

	p, ok := f.PriceFor(SeatClassBusiness)
	require.True(t, ok)
	assert.True(t, p.Equal(biz))

	_, ok = f.PriceFor(SeatClassEconomy)
	assert.False(t, ok)
	_, ok = f.PriceFor("first")
	assert.False(t, ok)
}
