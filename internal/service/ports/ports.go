// Package ports declares the storage and delivery contracts the services
// depend on.  Repositories and mailers in other packages satisfy them.
package ports

import (
	"context"

	"github.com/iliyamo/flight-seat-reservation/internal/model"
	"github.com/iliyamo/flight-seat-reservation/internal/queue"
)

// FlightReader loads flights outside any transaction.
type FlightReader interface {
	FlightByID(ctx context.Context, id uint64) (*model.Flight, error)
}

// ReservationTx is the set of reads and writes performed inside one
// reservation transaction.  Nothing written through it is visible to
// other transactions until WithinTx returns nil.
type ReservationTx interface {
	FlightByID(ctx context.Context, id uint64) (*model.Flight, error)
	// LockSeats row-locks the given seats of a flight and returns the ones
	// that exist, keyed by id.  Missing ids are simply absent.
	LockSeats(ctx context.Context, flightID uint64, seatIDs []uint64) (map[uint64]model.Seat, error)
	// LockFreeSeats row-locks every free seat of a class on a flight, in
	// seat-map order.
	LockFreeSeats(ctx context.Context, flightID uint64, class model.SeatClass) ([]model.Seat, error)
	// ClaimSeats flips the seats to occupied.  It fails with
	// *model.SeatConflictError if any of them was already occupied.
	ClaimSeats(ctx context.Context, flightID uint64, seatIDs []uint64) error
	CreateGroup(ctx context.Context, g *model.ReservationGroup) error
	CreateItems(ctx context.Context, items []model.ReservationItem) error
}

// ReservationStore owns reservation persistence.
type ReservationStore interface {
	// WithinTx runs fn in a single database transaction.  The transaction
	// commits only when fn returns nil; any error discards every write.
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx ReservationTx) error) error
	GroupByID(ctx context.Context, id uint64) (*model.ReservationGroup, error)
	ItemsByGroup(ctx context.Context, groupID uint64) ([]model.ReservationItem, error)
	ListByUser(ctx context.Context, userID uint64) ([]model.ReservationGroup, error)
}

// UserReader loads users.
type UserReader interface {
	UserByID(ctx context.Context, id uint64) (*model.User, error)
}

// MailMessage is one outgoing e-mail.
type MailMessage struct {
	To      string
	Subject string
	HTML    string
	Text    string
}

// Mailer delivers e-mail.
type Mailer interface {
	Send(ctx context.Context, msg MailMessage) error
}

// EventPublisher emits domain events after commit.
type EventPublisher interface {
	PublishReservationConfirmed(ctx context.Context, ev queue.ReservationConfirmedEvent) error
}

