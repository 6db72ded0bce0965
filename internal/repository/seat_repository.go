package repository

import (
	"context"

	"github.com/iliyamo/flight-seat-reservation/internal/database"
	"github.com/iliyamo/flight-seat-reservation/internal/model"
)

// SeatRepo is the seat availability ledger.  The only write it performs
// is the false -> true flip of is_occupied.
type SeatRepo struct{ db database.DBTX }

func NewSeatRepo(db database.DBTX) *SeatRepo { return &SeatRepo{db: db} }

func (r *SeatRepo) query(ctx context.Context, q string, args ...any) ([]model.Seat, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	seats := make([]model.Seat, 0)
	for rows.Next() {
		var s model.Seat
		if err := rows.Scan(&s.ID, &s.FlightID, &s.Number, &s.Class, &s.Occupied); err != nil {
			return nil, err
		}
		seats = append(seats, s)
	}
	return seats, rows.Err()
}

// ListByFlight returns the seat map of a flight in row-then-position
// order.  Sorting happens here because "A10" < "A2" in SQL.
func (r *SeatRepo) ListByFlight(ctx context.Context, flightID uint64) ([]model.Seat, error) {
	seats, err := r.query(ctx,
		`SELECT id, flight_id, seat_number, seat_class, is_occupied FROM seats WHERE flight_id = ?`, flightID)
	if err != nil {
		return nil, err
	}
	model.SortSeats(seats)
	return seats, nil
}

// LockSeats selects the requested seats FOR UPDATE in id order so that
// concurrent transactions always lock in the same sequence.
func (r *SeatRepo) LockSeats(ctx context.Context, flightID uint64, seatIDs []uint64) (map[uint64]model.Seat, error) {
	out := make(map[uint64]model.Seat, len(seatIDs))
	if len(seatIDs) == 0 {
		return out, nil
	}
	args := make([]any, 0, len(seatIDs)+1)
	args = append(args, flightID)
	for _, id := range seatIDs {
		args = append(args, id)
	}
	seats, err := r.query(ctx,
		`SELECT id, flight_id, seat_number, seat_class, is_occupied FROM seats
         WHERE flight_id = ? AND id IN (`+placeholders(len(seatIDs))+`)
         ORDER BY id FOR UPDATE`, args...)
	if err != nil {
		return nil, err
	}
	for _, s := range seats {
		out[s.ID] = s
	}
	return out, nil
}

// LockFreeSeats locks every free seat of class on the flight and returns
// them in seat-map order.
func (r *SeatRepo) LockFreeSeats(ctx context.Context, flightID uint64, class model.SeatClass) ([]model.Seat, error) {
	seats, err := r.query(ctx,
		`SELECT id, flight_id, seat_number, seat_class, is_occupied FROM seats
         WHERE flight_id = ? AND seat_class = ? AND is_occupied = FALSE
         ORDER BY id FOR UPDATE`, flightID, string(class))
	if err != nil {
		return nil, err
	}
	model.SortSeats(seats)
	return seats, nil
}

// ClaimSeats marks the seats occupied.  The rows are locked and checked
// first; the first missing or occupied seat in input order fails the
// claim.  The UPDATE only touches free rows, so a short row count means
// someone slipped past the lock and the claim is abandoned.
func (r *SeatRepo) ClaimSeats(ctx context.Context, flightID uint64, seatIDs []uint64) error {
	if len(seatIDs) == 0 {
		return nil
	}
	locked, err := r.LockSeats(ctx, flightID, seatIDs)
	if err != nil {
		return err
	}
	for _, id := range seatIDs {
		s, ok := locked[id]
		if !ok {
			return model.ErrSeatNotFound
		}
		if s.Occupied {
			return &model.SeatConflictError{SeatID: s.ID, SeatNumber: s.Number}
		}
	}

	args := make([]any, 0, len(seatIDs)+1)
	args = append(args, flightID)
	for _, id := range seatIDs {
		args = append(args, id)
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE seats SET is_occupied = TRUE
         WHERE flight_id = ? AND is_occupied = FALSE AND id IN (`+placeholders(len(seatIDs))+`)`, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if int(n) != len(seatIDs) {
		return model.ErrSeatContention
	}
	return nil
}
