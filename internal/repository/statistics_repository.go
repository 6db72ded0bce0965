package repository

import (
	"context"

	"github.com/iliyamo/flight-seat-reservation/internal/database"
	"github.com/iliyamo/flight-seat-reservation/internal/model"
)

// UserCount is one row of a per-user tally.
type UserCount struct {
	Email string `json:"email"`
	Total int    `json:"total"`
}

// ClassOccupancy counts seats of one class.
type ClassOccupancy struct {
	Occupied int `json:"occupied"`
	Free     int `json:"free"`
	Total    int `json:"total"`
}

// Statistics is the system-wide summary served on /v1/statistics.
type Statistics struct {
	TotalUsers         int                       `json:"total_users"`
	ReservationsByUser []UserCount               `json:"reservations_by_user"`
	SeatsByUser        []UserCount               `json:"seats_by_user"`
	Seats              map[string]ClassOccupancy `json:"seats"`
	TotalReservations  int                       `json:"total_reservations"`
	SelectionType      map[string]int            `json:"selection_type"`
	ReservationStatus  map[string]int            `json:"reservation_status"`
}

// StatisticsRepo runs the aggregate queries.  Only confirmed users count.
type StatisticsRepo struct{ db database.DBTX }

func NewStatisticsRepo(db database.DBTX) *StatisticsRepo { return &StatisticsRepo{db: db} }

func (r *StatisticsRepo) userCounts(ctx context.Context, q string) ([]UserCount, error) {
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]UserCount, 0)
	for rows.Next() {
		var uc UserCount
		if err := rows.Scan(&uc.Email, &uc.Total); err != nil {
			return nil, err
		}
		out = append(out, uc)
	}
	return out, rows.Err()
}

// Summary gathers every figure in one call.
func (r *StatisticsRepo) Summary(ctx context.Context) (*Statistics, error) {
	st := &Statistics{
		Seats: map[string]ClassOccupancy{
			string(model.SeatClassBusiness): {},
			string(model.SeatClassEconomy):  {},
		},
		SelectionType: map[string]int{"manual": 0, "automatic": 0},
		ReservationStatus: map[string]int{
			string(model.ReservationActive):    0,
			string(model.ReservationModified):  0,
			string(model.ReservationCancelled): 0,
		},
	}

	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM users WHERE email_confirmed = TRUE`).Scan(&st.TotalUsers); err != nil {
		return nil, err
	}

	var err error
	st.ReservationsByUser, err = r.userCounts(ctx, `
        SELECT u.email, COUNT(DISTINCT rg.id) AS total
        FROM users u
        LEFT JOIN reservation_groups rg ON rg.user_id = u.id
        WHERE u.email_confirmed = TRUE
        GROUP BY u.id, u.email
        ORDER BY total DESC, u.email`)
	if err != nil {
		return nil, err
	}
	st.SeatsByUser, err = r.userCounts(ctx, `
        SELECT u.email, COUNT(ri.id) AS total
        FROM users u
        LEFT JOIN reservation_groups rg ON rg.user_id = u.id
        LEFT JOIN reservation_items ri ON ri.reservation_group_id = rg.id
        WHERE u.email_confirmed = TRUE
        GROUP BY u.id, u.email
        ORDER BY total DESC, u.email`)
	if err != nil {
		return nil, err
	}

	if err := r.seatOccupancy(ctx, st); err != nil {
		return nil, err
	}

	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM reservation_groups`).Scan(&st.TotalReservations); err != nil {
		return nil, err
	}

	if err := r.selectionType(ctx, st); err != nil {
		return nil, err
	}
	if err := r.statusCounts(ctx, st); err != nil {
		return nil, err
	}
	return st, nil
}

func (r *StatisticsRepo) seatOccupancy(ctx context.Context, st *Statistics) error {
	rows, err := r.db.QueryContext(ctx,
		`SELECT seat_class, is_occupied, COUNT(*) FROM seats GROUP BY seat_class, is_occupied`)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var (
			class    string
			occupied bool
			n        int
		)
		if err := rows.Scan(&class, &occupied, &n); err != nil {
			return err
		}
		c, ok := st.Seats[class]
		if !ok {
			continue
		}
		if occupied {
			c.Occupied += n
		} else {
			c.Free += n
		}
		c.Total = c.Occupied + c.Free
		st.Seats[class] = c
	}
	return rows.Err()
}

// selectionType counts seats, not groups, per selection mode.
func (r *StatisticsRepo) selectionType(ctx context.Context, st *Statistics) error {
	rows, err := r.db.QueryContext(ctx, `
        SELECT rg.manual_selection, COUNT(ri.id)
        FROM reservation_groups rg
        LEFT JOIN reservation_items ri ON ri.reservation_group_id = rg.id
        GROUP BY rg.manual_selection`)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var (
			manual bool
			n      int
		)
		if err := rows.Scan(&manual, &n); err != nil {
			return err
		}
		if manual {
			st.SelectionType["manual"] += n
		} else {
			st.SelectionType["automatic"] += n
		}
	}
	return rows.Err()
}

func (r *StatisticsRepo) statusCounts(ctx context.Context, st *Statistics) error {
	rows, err := r.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM reservation_groups GROUP BY status`)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var (
			status string
			n      int
		)
		if err := rows.Scan(&status, &n); err != nil {
			return err
		}
		if _, ok := st.ReservationStatus[status]; ok {
			st.ReservationStatus[status] += n
		}
	}
	return rows.Err()
}
