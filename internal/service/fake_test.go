package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iliyamo/flight-seat-reservation/internal/model"
	"github.com/iliyamo/flight-seat-reservation/internal/service/ports"
)

// memStore is an in-memory ReservationStore.  Transactions are
// serialised by one mutex and stage their writes on copies that only
// replace the live state when fn returns nil.
type memStore struct {
	txMu sync.Mutex // held for the whole transaction
	mu   sync.Mutex // guards the fields below

	flights map[uint64]model.Flight
	seats   map[uint64]model.Seat
	groups  []model.ReservationGroup
	items   []model.ReservationItem
	nextID  uint64

	failCreateItems error
	txDelay         time.Duration
}

func newMemStore() *memStore {
	return &memStore{flights: map[uint64]model.Flight{}, seats: map[uint64]model.Seat{}, nextID: 1}
}

func (m *memStore) addFlight(f model.Flight) { m.flights[f.ID] = f }

func (m *memStore) addSeat(s model.Seat) { m.seats[s.ID] = s }

func (m *memStore) seat(id uint64) model.Seat {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.seats[id]
}

func (m *memStore) counts() (groups, items, occupied int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.seats {
		if s.Occupied {
			occupied++
		}
	}
	return len(m.groups), len(m.items), occupied
}

type memTx struct {
	store  *memStore
	seats  map[uint64]model.Seat
	groups []model.ReservationGroup
	items  []model.ReservationItem
	nextID uint64
}

func (m *memStore) WithinTx(ctx context.Context, fn func(ctx context.Context, tx ports.ReservationTx) error) error {
	m.txMu.Lock()
	defer m.txMu.Unlock()

	m.mu.Lock()
	tx := &memTx{store: m, seats: make(map[uint64]model.Seat, len(m.seats)), nextID: m.nextID}
	for k, v := range m.seats {
		tx.seats[k] = v
	}
	m.mu.Unlock()

	if m.txDelay > 0 {
		time.Sleep(m.txDelay)
	}
	if err := fn(ctx, tx); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.seats = tx.seats
	m.groups = append(m.groups, tx.groups...)
	m.items = append(m.items, tx.items...)
	m.nextID = tx.nextID
	return nil
}

func (t *memTx) FlightByID(_ context.Context, id uint64) (*model.Flight, error) {
	f, ok := t.store.flights[id]
	if !ok {
		return nil, model.ErrFlightNotFound
	}
	return &f, nil
}

func (t *memTx) LockSeats(_ context.Context, flightID uint64, ids []uint64) (map[uint64]model.Seat, error) {
	out := map[uint64]model.Seat{}
	for _, id := range ids {
		if s, ok := t.seats[id]; ok && s.FlightID == flightID {
			out[id] = s
		}
	}
	return out, nil
}

func (t *memTx) LockFreeSeats(_ context.Context, flightID uint64, class model.SeatClass) ([]model.Seat, error) {
	var out []model.Seat
	for _, s := range t.seats {
		if s.FlightID == flightID && s.Class == class && !s.Occupied {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	model.SortSeats(out)
	return out, nil
}

func (t *memTx) ClaimSeats(_ context.Context, flightID uint64, ids []uint64) error {
	for _, id := range ids {
		s, ok := t.seats[id]
		if !ok || s.FlightID != flightID {
			return model.ErrSeatNotFound
		}
		if s.Occupied {
			return &model.SeatConflictError{SeatID: id, SeatNumber: s.Number}
		}
	}
	for _, id := range ids {
		s := t.seats[id]
		s.Occupied = true
		t.seats[id] = s
	}
	return nil
}

func (t *memTx) CreateGroup(_ context.Context, g *model.ReservationGroup) error {
	g.ID = t.nextID
	t.nextID++
	t.groups = append(t.groups, *g)
	return nil
}

func (t *memTx) CreateItems(_ context.Context, items []model.ReservationItem) error {
	if t.store.failCreateItems != nil {
		return t.store.failCreateItems
	}
	for _, it := range items {
		it.ID = t.nextID
		t.nextID++
		t.items = append(t.items, it)
	}
	return nil
}

func (m *memStore) GroupByID(_ context.Context, id uint64) (*model.ReservationGroup, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, g := range m.groups {
		if g.ID == id {
			return &g, nil
		}
	}
	return nil, model.ErrReservationNotFound
}

func (m *memStore) ItemsByGroup(_ context.Context, groupID uint64) ([]model.ReservationItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.ReservationItem
	for _, it := range m.items {
		if it.GroupID == groupID {
			s := m.seats[it.SeatID]
			it.SeatNumber, it.SeatClass = s.Number, s.Class
			out = append(out, it)
		}
	}
	return out, nil
}

func (m *memStore) ListByUser(ctx context.Context, userID uint64) ([]model.ReservationGroup, error) {
	m.mu.Lock()
	var out []model.ReservationGroup
	for i := len(m.groups) - 1; i >= 0; i-- {
		if m.groups[i].UserID == userID {
			out = append(out, m.groups[i])
		}
	}
	m.mu.Unlock()
	for i := range out {
		out[i].Items, _ = m.ItemsByGroup(ctx, out[i].ID)
	}
	return out, nil
}

// FlightByID lets the store double as the FlightReader.
func (m *memStore) FlightByID(_ context.Context, id uint64) (*model.Flight, error) {
	f, ok := m.flights[id]
	if !ok {
		return nil, model.ErrFlightNotFound
	}
	return &f, nil
}

type fakeUsers map[uint64]model.User

func (u fakeUsers) UserByID(ctx context.Context, id uint64) (*model.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	usr, ok := u[id]
	if !ok {
		return nil, model.ErrUserNotFound
	}
	return &usr, nil
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []ports.MailMessage
	err  error
	wait time.Duration
}

func (f *fakeMailer) Send(ctx context.Context, msg ports.MailMessage) error {
	if f.wait > 0 {
		select {
		case <-time.After(f.wait):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if f.err != nil {
		return f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, msg)
	return nil
}

func (f *fakeMailer) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

type panicMailer struct{}

func (panicMailer) Send(context.Context, ports.MailMessage) error { panic("smtp exploded") }

var errSMTP = errors.New("535 authentication failed")

func price(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}
