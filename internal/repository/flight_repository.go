package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/iliyamo/flight-seat-reservation/internal/database"
	"github.com/iliyamo/flight-seat-reservation/internal/model"
)

// FlightRepo reads the flights table.  It works over a *sql.DB or a
// *sql.Tx.
type FlightRepo struct{ db database.DBTX }

func NewFlightRepo(db database.DBTX) *FlightRepo { return &FlightRepo{db: db} }

const flightColumns = `id, flight_code, departure_date, origin, destination, business_price, economy_price, total_rows, notes`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanFlight(s rowScanner) (*model.Flight, error) {
	var (
		f        model.Flight
		business sql.NullString
		economy  sql.NullString
	)
	if err := s.Scan(&f.ID, &f.Code, &f.DepartureDate, &f.Origin, &f.Destination,
		&business, &economy, &f.TotalRows, &f.Notes); err != nil {
		return nil, err
	}
	f.BusinessPrice = parsePrice(business)
	f.EconomyPrice = parsePrice(economy)
	return &f, nil
}

// parsePrice turns a DECIMAL column into a decimal.  NULL or garbage
// yields nil so the pricing step can reject it.
func parsePrice(v sql.NullString) *decimal.Decimal {
	if !v.Valid {
		return nil
	}
	d, err := decimal.NewFromString(v.String)
	if err != nil {
		return nil
	}
	return &d
}

func parseDecimal(v string) (decimal.Decimal, error) {
	return decimal.NewFromString(v)
}

// FlightByID returns model.ErrFlightNotFound when no row matches.
func (r *FlightRepo) FlightByID(ctx context.Context, id uint64) (*model.Flight, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+flightColumns+` FROM flights WHERE id = ?`, id)
	f, err := scanFlight(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrFlightNotFound
	}
	return f, err
}

// List returns every flight ordered by departure.
func (r *FlightRepo) List(ctx context.Context) ([]model.Flight, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+flightColumns+` FROM flights ORDER BY departure_date, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	flights := make([]model.Flight, 0)
	for rows.Next() {
		f, err := scanFlight(rows)
		if err != nil {
			return nil, err
		}
		flights = append(flights, *f)
	}
	return flights, rows.Err()
}
