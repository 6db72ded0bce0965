// Package queue carries domain events over RabbitMQ.
package queue

// ReservationConfirmedQueue is the durable queue reservation events go to.
const ReservationConfirmedQueue = "reservation.confirmed"

// ReservationConfirmedEvent is published after a reservation group has
// been committed.  It holds enough for downstream consumers to audit or
// notify without touching the primary database.
type ReservationConfirmedEvent struct {
	EventID     string   `json:"event_id"`
	GroupID     uint64   `json:"reservation_group_id"`
	UserID      uint64   `json:"user_id"`
	FlightID    uint64   `json:"flight_id"`
	FlightCode  string   `json:"flight_code"`
	SeatClass   string   `json:"seat_class"`
	SeatNumbers []string `json:"seats"`
	Passengers  int      `json:"passengers"`
	Total       string   `json:"total"`
	ConfirmedAt string   `json:"confirmed_at"`
}
