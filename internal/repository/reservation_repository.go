package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/flight-seat-reservation/internal/database"
	"github.com/iliyamo/flight-seat-reservation/internal/model"
)

// ReservationRepo writes and reads reservation groups and their items.
// Groups and items are append-only.  All timestamps are stored in UTC.
type ReservationRepo struct{ db database.DBTX }

func NewReservationRepo(db database.DBTX) *ReservationRepo { return &ReservationRepo{db: db} }

// CreateGroup inserts g and fills in its generated ID.
func (r *ReservationRepo) CreateGroup(ctx context.Context, g *model.ReservationGroup) error {
	const q = `INSERT INTO reservation_groups (user_id, flight_id, created_at, status, total_price, manual_selection)
               VALUES (?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, g.UserID, g.FlightID, g.CreatedAt.UTC(), string(g.Status),
		g.TotalPrice.StringFixed(2), g.ManualSelection)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	g.ID = uint64(id)
	return nil
}

// CreateItems inserts every item in a single statement.  An empty slice
// is a no-op.
func (r *ReservationRepo) CreateItems(ctx context.Context, items []model.ReservationItem) error {
	if len(items) == 0 {
		return nil
	}
	query := `INSERT INTO reservation_items (reservation_group_id, seat_id, passenger_name, national_id, has_luggage, price, reserved_at) VALUES `
	args := make([]any, 0, len(items)*7)
	for i, it := range items {
		if i > 0 {
			query += ","
		}
		query += "(?, ?, ?, ?, ?, ?, ?)"
		args = append(args, it.GroupID, it.SeatID, it.Passenger, it.NationalID, it.HasLuggage,
			it.Price.StringFixed(2), it.ReservedAt.UTC())
	}
	_, err := r.db.ExecContext(ctx, query, args...)
	return err
}

const groupColumns = `id, user_id, flight_id, created_at, status, total_price, manual_selection`

func scanGroup(s rowScanner) (*model.ReservationGroup, error) {
	var (
		g     model.ReservationGroup
		total string
	)
	if err := s.Scan(&g.ID, &g.UserID, &g.FlightID, &g.CreatedAt, &g.Status, &total, &g.ManualSelection); err != nil {
		return nil, err
	}
	d, err := parseDecimal(total)
	if err != nil {
		return nil, err
	}
	g.TotalPrice = d
	return &g, nil
}

// GroupByID returns model.ErrReservationNotFound when the group is absent.
func (r *ReservationRepo) GroupByID(ctx context.Context, id uint64) (*model.ReservationGroup, error) {
	g, err := scanGroup(r.db.QueryRowContext(ctx, `SELECT `+groupColumns+` FROM reservation_groups WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrReservationNotFound
	}
	return g, err
}

// ItemsByGroup returns the items of one group with seat number and class
// joined from the ledger, in insertion order.
func (r *ReservationRepo) ItemsByGroup(ctx context.Context, groupID uint64) ([]model.ReservationItem, error) {
	const q = `SELECT ri.id, ri.reservation_group_id, ri.seat_id, s.seat_number, s.seat_class,
                      ri.passenger_name, ri.national_id, ri.has_luggage, ri.price, ri.reserved_at
               FROM reservation_items ri
               JOIN seats s ON s.id = ri.seat_id
               WHERE ri.reservation_group_id = ?
               ORDER BY ri.id`
	rows, err := r.db.QueryContext(ctx, q, groupID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := make([]model.ReservationItem, 0)
	for rows.Next() {
		var (
			it    model.ReservationItem
			price string
		)
		if err := rows.Scan(&it.ID, &it.GroupID, &it.SeatID, &it.SeatNumber, &it.SeatClass,
			&it.Passenger, &it.NationalID, &it.HasLuggage, &price, &it.ReservedAt); err != nil {
			return nil, err
		}
		if it.Price, err = parseDecimal(price); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// ListByUser returns the user's groups, newest first, each with its items.
func (r *ReservationRepo) ListByUser(ctx context.Context, userID uint64) ([]model.ReservationGroup, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+groupColumns+` FROM reservation_groups WHERE user_id = ? ORDER BY created_at DESC, id DESC`, userID)
	if err != nil {
		return nil, err
	}
	groups := make([]model.ReservationGroup, 0)
	for rows.Next() {
		g, err := scanGroup(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		groups = append(groups, *g)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	// Items are loaded after the group cursor is closed so a single
	// connection is enough.
	for i := range groups {
		items, err := r.ItemsByGroup(ctx, groups[i].ID)
		if err != nil {
			return nil, err
		}
		groups[i].Items = items
	}
	return groups, nil
}
