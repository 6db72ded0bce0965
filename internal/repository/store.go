package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/flight-seat-reservation/internal/database"
	"github.com/iliyamo/flight-seat-reservation/internal/service/ports"
)

// Store is the MySQL ReservationStore.  Reads go straight to the pool;
// writes happen inside WithinTx.
type Store struct {
	db *sql.DB
	*ReservationRepo
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db, ReservationRepo: NewReservationRepo(db)}
}

// txRepos binds every repository the reservation engine needs to one
// transaction.
type txRepos struct {
	*FlightRepo
	*SeatRepo
	*ReservationRepo
}

// WithinTx runs fn inside a READ COMMITTED transaction.  Lock failures
// surface as model.ErrSeatContention.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, tx ports.ReservationTx) error) error {
	opts := &sql.TxOptions{Isolation: sql.LevelReadCommitted}
	err := database.WithTx(ctx, s.db, opts, func(tx *sql.Tx) error {
		return fn(ctx, txRepos{
			FlightRepo:      NewFlightRepo(tx),
			SeatRepo:        NewSeatRepo(tx),
			ReservationRepo: NewReservationRepo(tx),
		})
	})
	return classifyTxError(err)
}

var (
	_ ports.ReservationStore = (*Store)(nil)
	_ ports.ReservationTx    = txRepos{}
	_ ports.FlightReader     = (*FlightRepo)(nil)
)
