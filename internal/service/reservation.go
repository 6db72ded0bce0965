package service

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/flight-seat-reservation/internal/apperr"
	"github.com/iliyamo/flight-seat-reservation/internal/cui"
	"github.com/iliyamo/flight-seat-reservation/internal/metrics"
	"github.com/iliyamo/flight-seat-reservation/internal/model"
	"github.com/iliyamo/flight-seat-reservation/internal/queue"
	"github.com/iliyamo/flight-seat-reservation/internal/service/ports"
)

// PassengerSeat assigns one passenger to one seat.  SeatID is zero when
// the engine should pick the seat.
type PassengerSeat struct {
	SeatID        uint64
	PassengerName string
	NationalID    string
	HasLuggage    bool
}

// CreateReservationInput is one booking request.  ManualSelection is a
// pointer because its presence is required.
type CreateReservationInput struct {
	UserID          uint64
	UserEmail       string
	FlightID        uint64
	SeatClass       model.SeatClass
	ManualSelection *bool
	Passengers      []PassengerSeat
	NotifyEmail     string
}

// ReservationResult is what a committed booking reports back.  A failed
// notification is a degraded success: the booking stands.
type ReservationResult struct {
	GroupID    uint64
	Items      []model.ReservationItem
	UnitPrice  decimal.Decimal
	Total      decimal.Decimal
	EmailSent  bool
	EmailError *NotificationError
}

// ReservationService is the reservation transaction engine.
type ReservationService struct {
	store    ports.ReservationStore
	notifier *NotificationService
	events   ports.EventPublisher
	metrics  *metrics.Metrics
	log      logrus.FieldLogger
	now      func() time.Time
}

func NewReservationService(store ports.ReservationStore, notifier *NotificationService, events ports.EventPublisher,
	m *metrics.Metrics, log logrus.FieldLogger) *ReservationService {
	return &ReservationService{
		store:    store,
		notifier: notifier,
		events:   events,
		metrics:  m,
		log:      log,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// checkInput rejects malformed requests before any storage is touched.
// It reports whether the engine must pick the seats.
func checkInput(in CreateReservationInput) (auto bool, err error) {
	if in.FlightID == 0 {
		return false, apperr.New(apperr.KindInvalidInput, "flight_id is required")
	}
	if in.SeatClass == "" {
		return false, apperr.New(apperr.KindInvalidInput, "seat_class is required")
	}
	if !in.SeatClass.Valid() {
		return false, apperr.New(apperr.KindInvalidInput, "unknown seat class %q", in.SeatClass)
	}
	if in.ManualSelection == nil {
		return false, apperr.New(apperr.KindInvalidInput, "manual_selection is required")
	}
	if len(in.Passengers) == 0 {
		return false, apperr.New(apperr.KindInvalidInput, "at least one passenger is required")
	}

	missing := 0
	seen := make(map[uint64]bool, len(in.Passengers))
	for i, p := range in.Passengers {
		if p.SeatID == 0 {
			missing++
			if *in.ManualSelection {
				return false, apperr.New(apperr.KindInvalidInput, "seat_id is required for passenger %d", i+1)
			}
			continue
		}
		if seen[p.SeatID] {
			return false, apperr.New(apperr.KindInvalidInput, "seat %d is requested more than once", p.SeatID)
		}
		seen[p.SeatID] = true
	}
	switch missing {
	case 0:
		return false, nil
	case len(in.Passengers):
		return true, nil
	}
	return false, apperr.New(apperr.KindInvalidInput, "either every passenger has a seat_id or none does")
}

// maxPassengerName matches reservation_items.passenger_name.
const maxPassengerName = 128

// checkPassenger validates the name and national id of one passenger.
func checkPassenger(i int, p PassengerSeat) error {
	name := strings.TrimSpace(p.PassengerName)
	if name == "" {
		return apperr.New(apperr.KindInvalidInput, "passenger_name is required for passenger %d", i+1)
	}
	if utf8.RuneCountInString(name) > maxPassengerName {
		return apperr.New(apperr.KindInvalidInput, "passenger_name longer than %d characters", maxPassengerName).WithPassenger(name)
	}
	if strings.TrimSpace(p.NationalID) == "" {
		return apperr.New(apperr.KindInvalidInput, "national_id is required for passenger %d", i+1).WithPassenger(name)
	}
	if err := cui.Validate(p.NationalID); err != nil {
		return apperr.Wrap(apperr.KindInvalidIdentity, err, "invalid CUI for %s", name).WithPassenger(name)
	}
	return nil
}

// Create validates the request, claims the seats and persists the group
// and its items in one transaction, then notifies.  Any failure before
// commit leaves no trace in storage.
func (s *ReservationService) Create(ctx context.Context, in CreateReservationInput) (*ReservationResult, error) {
	log := s.log.WithFields(logrus.Fields{"user_id": in.UserID, "flight_id": in.FlightID})
	auto, err := checkInput(in)
	if err != nil {
		s.metrics.ObserveReservation(string(apperr.KindOf(err)))
		return nil, err
	}
	manual := *in.ManualSelection

	var (
		group  model.ReservationGroup
		items  []model.ReservationItem
		unit   decimal.Decimal
		flight *model.Flight
	)
	err = s.store.WithinTx(ctx, func(ctx context.Context, tx ports.ReservationTx) error {
		var err error
		unit, flight, err = NewPricingResolver(tx).PriceFor(ctx, in.FlightID, in.SeatClass)
		if err != nil {
			return err
		}

		seats, err := s.assignSeats(ctx, tx, in, auto)
		if err != nil {
			return err
		}

		now := s.now()
		total := decimal.Zero
		items = make([]model.ReservationItem, 0, len(in.Passengers))
		ids := make([]uint64, 0, len(in.Passengers))
		for i, p := range in.Passengers {
			seat := seats[i]
			items = append(items, model.ReservationItem{
				SeatID:     seat.ID,
				SeatNumber: seat.Number,
				SeatClass:  seat.Class,
				Passenger:  strings.TrimSpace(p.PassengerName),
				NationalID: cui.Normalize(p.NationalID),
				HasLuggage: p.HasLuggage,
				Price:      unit,
				ReservedAt: now,
			})
			ids = append(ids, seat.ID)
			total = total.Add(unit)
		}

		group = model.ReservationGroup{
			UserID:          in.UserID,
			FlightID:        in.FlightID,
			CreatedAt:       now,
			Status:          model.ReservationActive,
			TotalPrice:      total,
			ManualSelection: manual,
		}
		if err := tx.CreateGroup(ctx, &group); err != nil {
			return err
		}
		for i := range items {
			items[i].GroupID = group.ID
		}
		if err := tx.CreateItems(ctx, items); err != nil {
			return err
		}
		return claimError(tx.ClaimSeats(ctx, in.FlightID, ids))
	})
	if err != nil {
		err = classify(err)
		s.metrics.ObserveReservation(string(apperr.KindOf(err)))
		if apperr.KindOf(err) == apperr.KindInternal {
			log.WithError(err).Error("reservation failed")
		} else {
			log.WithError(err).Info("reservation rejected")
		}
		return nil, err
	}
	s.metrics.ObserveReservation("ok")
	group.Items = items
	log.WithFields(logrus.Fields{"reservation_group_id": group.ID, "seats": len(items)}).Info("reservation committed")

	res := &ReservationResult{GroupID: group.ID, Items: items, UnitPrice: unit, Total: group.TotalPrice}

	// Everything below runs after commit and cannot undo it.
	if s.notifier != nil {
		to := s.notifier.Recipient(context.WithoutCancel(ctx), in.NotifyEmail, in.UserID, in.UserEmail)
		out := s.notifier.SendConfirmation(ctx, Confirmation{
			To:        to,
			Group:     group,
			Flight:    *flight,
			Class:     in.SeatClass,
			Items:     items,
			UnitPrice: unit,
			Total:     group.TotalPrice,
		})
		res.EmailSent, res.EmailError = out.Sent, out.Error
	}
	s.publish(ctx, group, flight, in.SeatClass, items)
	return res, nil
}

// assignSeats returns one locked seat per passenger, in passenger order.
// Passenger checks and seat checks interleave so the first bad
// assignment in input order is the one reported.
func (s *ReservationService) assignSeats(ctx context.Context, tx ports.ReservationTx, in CreateReservationInput, auto bool) ([]model.Seat, error) {
	out := make([]model.Seat, len(in.Passengers))

	if auto {
		free, err := tx.LockFreeSeats(ctx, in.FlightID, in.SeatClass)
		if err != nil {
			return nil, err
		}
		for i, p := range in.Passengers {
			if err := checkPassenger(i, p); err != nil {
				return nil, err
			}
			if i >= len(free) {
				return nil, apperr.New(apperr.KindConflict, "only %d free %s seats left, %d requested",
					len(free), in.SeatClass, len(in.Passengers))
			}
			out[i] = free[i]
		}
		return out, nil
	}

	ids := make([]uint64, 0, len(in.Passengers))
	for _, p := range in.Passengers {
		ids = append(ids, p.SeatID)
	}
	locked, err := tx.LockSeats(ctx, in.FlightID, ids)
	if err != nil {
		return nil, err
	}
	for i, p := range in.Passengers {
		if err := checkPassenger(i, p); err != nil {
			return nil, err
		}
		seat, ok := locked[p.SeatID]
		if !ok {
			return nil, apperr.New(apperr.KindNotFound, "seat %d not found on flight %d", p.SeatID, in.FlightID)
		}
		if seat.Occupied {
			return nil, apperr.New(apperr.KindConflict, "seat %s is already occupied", seat.Number).WithSeat(seat.Number)
		}
		if seat.Class != in.SeatClass {
			return nil, apperr.New(apperr.KindInvalidInput, "seat %s is %s, not %s", seat.Number, seat.Class, in.SeatClass).
				WithSeat(seat.Number)
		}
		out[i] = seat
	}
	return out, nil
}

func claimError(err error) error {
	if err == nil {
		return nil
	}
	var conflict *model.SeatConflictError
	if errors.As(err, &conflict) {
		return apperr.Wrap(apperr.KindConflict, err, "seat %s is already occupied", conflict.SeatNumber).
			WithSeat(conflict.SeatNumber)
	}
	if errors.Is(err, model.ErrSeatNotFound) {
		return apperr.Wrap(apperr.KindNotFound, err, "seat not found")
	}
	return err
}

// classify turns whatever escaped the transaction into an *apperr.Error.
func classify(err error) error {
	if _, ok := apperr.As(err); ok {
		return err
	}
	if errors.Is(err, model.ErrSeatContention) {
		return apperr.Wrap(apperr.KindConflict, err, "seats are being reserved by another request, retry")
	}
	return apperr.Wrap(apperr.KindInternal, err, "reservation could not be stored")
}

func (s *ReservationService) publish(ctx context.Context, g model.ReservationGroup, f *model.Flight, class model.SeatClass, items []model.ReservationItem) {
	if s.events == nil {
		return
	}
	seats := make([]string, 0, len(items))
	for _, it := range items {
		seats = append(seats, it.SeatNumber)
	}
	ev := queue.ReservationConfirmedEvent{
		GroupID:     g.ID,
		UserID:      g.UserID,
		FlightID:    g.FlightID,
		FlightCode:  f.Code,
		SeatClass:   string(class),
		SeatNumbers: seats,
		Passengers:  len(items),
		Total:       g.TotalPrice.StringFixed(2),
		ConfirmedAt: g.CreatedAt.Format(time.RFC3339),
	}
	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := s.events.PublishReservationConfirmed(pctx, ev); err != nil {
		s.log.WithError(err).WithField("reservation_group_id", g.ID).Warn("reservation event not published")
	}
}

// List returns the caller's reservations, newest first.
func (s *ReservationService) List(ctx context.Context, userID uint64) ([]model.ReservationGroup, error) {
	groups, err := s.store.ListByUser(ctx, userID)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, err, "list reservations")
	}
	return groups, nil
}

// Get returns one reservation with its items.  Groups owned by someone
// else are reported as not found.
func (s *ReservationService) Get(ctx context.Context, groupID, userID uint64) (*model.ReservationGroup, error) {
	g, err := s.store.GroupByID(ctx, groupID)
	if errors.Is(err, model.ErrReservationNotFound) || (err == nil && g.UserID != userID) {
		return nil, apperr.New(apperr.KindNotFound, "reservation %d not found", groupID)
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, err, "load reservation %d", groupID)
	}
	items, err := s.store.ItemsByGroup(ctx, g.ID)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, err, "load items of reservation %d", groupID)
	}
	g.Items = items
	return g, nil
}
