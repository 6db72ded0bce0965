package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/flight-seat-reservation/internal/apperr"
	"github.com/iliyamo/flight-seat-reservation/internal/metrics"
	"github.com/iliyamo/flight-seat-reservation/internal/model"
	"github.com/iliyamo/flight-seat-reservation/internal/notification"
	"github.com/iliyamo/flight-seat-reservation/internal/service/ports"
)

// Notification failure kinds reported in NotificationError.Kind.
const (
	NotifyNoRecipient = "no_recipient"
	NotifyRender      = "render"
	NotifyTimeout     = "timeout"
	NotifyDelivery    = "delivery"
)

// NotificationError describes why a confirmation was not delivered.
type NotificationError struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

func (e *NotificationError) Error() string { return e.Kind + ": " + e.Message }

// NotificationResult is the outcome of one delivery attempt.  It never
// carries a Go error; failures are data.
type NotificationResult struct {
	Sent  bool
	Error *NotificationError
}

// Confirmation is the content of a reservation confirmation.
type Confirmation struct {
	To        string
	Group     model.ReservationGroup
	Flight    model.Flight
	Class     model.SeatClass
	Items     []model.ReservationItem
	UnitPrice decimal.Decimal
	Total     decimal.Decimal
}

// ResendResult is returned by a successful resend.
type ResendResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// NotificationService sends confirmation mails after commit and owns the
// manual resend path.  It never touches reservation state.
type NotificationService struct {
	mailer  ports.Mailer
	users   ports.UserReader
	store   ports.ReservationStore
	flights ports.FlightReader
	timeout time.Duration
	metrics *metrics.Metrics
	log     logrus.FieldLogger
}

func NewNotificationService(mailer ports.Mailer, users ports.UserReader, store ports.ReservationStore,
	flights ports.FlightReader, timeout time.Duration, m *metrics.Metrics, log logrus.FieldLogger) *NotificationService {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &NotificationService{mailer: mailer, users: users, store: store, flights: flights,
		timeout: timeout, metrics: m, log: log}
}

// Recipient picks the destination address: override first, then the
// user's registered email, then fallback (the address in the caller's
// token).  Empty means nobody to send to.
func (n *NotificationService) Recipient(ctx context.Context, override string, userID uint64, fallback string) string {
	if to := strings.TrimSpace(override); to != "" {
		return to
	}
	if n.users != nil && userID != 0 {
		u, err := n.users.UserByID(ctx, userID)
		if err == nil && strings.TrimSpace(u.Email) != "" {
			return u.Email
		}
		if err != nil && !errors.Is(err, model.ErrUserNotFound) {
			n.log.WithError(err).WithField("user_id", userID).Warn("notify: load user email")
		}
	}
	return strings.TrimSpace(fallback)
}

// SendConfirmation renders and sends a reservation confirmation.  It
// always returns; the attempt is bounded by the configured timeout and
// runs on a context detached from the caller's cancellation.
func (n *NotificationService) SendConfirmation(ctx context.Context, c Confirmation) (res NotificationResult) {
	log := n.log.WithFields(logrus.Fields{"reservation_group_id": c.Group.ID, "to": c.To})
	defer func() {
		if r := recover(); r != nil {
			log.Errorf("notify: panic: %v", r)
			res = n.fail("reservation", NotifyDelivery, fmt.Sprintf("unexpected failure: %v", r))
		}
	}()

	if strings.TrimSpace(c.To) == "" {
		return n.fail("reservation", NotifyNoRecipient, "no email address to send the confirmation to")
	}

	seats := make([]notification.SeatLine, 0, len(c.Items))
	for _, it := range c.Items {
		seats = append(seats, notification.SeatLine{Number: it.SeatNumber, Passenger: it.Passenger, HasLuggage: it.HasLuggage})
	}
	subject, html, text, err := notification.RenderReservation(notification.ReservationMail{
		GroupID:     c.Group.ID,
		FlightCode:  c.Flight.Code,
		Origin:      c.Flight.Origin,
		Destination: c.Flight.Destination,
		Departure:   c.Flight.DepartureDate,
		Class:       string(c.Class),
		Seats:       seats,
		UnitPrice:   c.UnitPrice.StringFixed(2),
		Total:       c.Total.StringFixed(2),
	})
	if err != nil {
		log.WithError(err).Error("notify: render")
		return n.fail("reservation", NotifyRender, err.Error())
	}

	if err := n.deliver(ctx, ports.MailMessage{To: c.To, Subject: subject, HTML: html, Text: text}); err != nil {
		log.WithError(err).Warn("notify: confirmation not delivered")
		if errors.Is(err, context.DeadlineExceeded) {
			return n.fail("reservation", NotifyTimeout, fmt.Sprintf("mail server did not answer within %s", n.timeout))
		}
		return n.fail("reservation", NotifyDelivery, err.Error())
	}
	n.metrics.ObserveNotification("reservation", "sent")
	log.Info("notify: confirmation sent")
	return NotificationResult{Sent: true}
}

func (n *NotificationService) deliver(ctx context.Context, msg ports.MailMessage) error {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), n.timeout)
	defer cancel()
	return n.mailer.Send(ctx, msg)
}

func (n *NotificationService) fail(flow, kind, msg string) NotificationResult {
	n.metrics.ObserveNotification(flow, kind)
	return NotificationResult{Error: &NotificationError{Kind: kind, Message: msg}}
}

// Resend re-reads a group and its items from storage and sends the
// confirmation again.  Only the owner may resend.  Delivery failure is
// returned as apperr.KindNotificationFailed; nothing is retried.
func (n *NotificationService) Resend(ctx context.Context, groupID, callerID uint64, override string) (*ResendResult, error) {
	g, err := n.store.GroupByID(ctx, groupID)
	if errors.Is(err, model.ErrReservationNotFound) {
		return nil, apperr.New(apperr.KindNotFound, "reservation %d not found", groupID)
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, err, "load reservation %d", groupID)
	}
	if g.UserID != callerID {
		return nil, apperr.New(apperr.KindForbidden, "reservation %d belongs to another user", groupID)
	}
	items, err := n.store.ItemsByGroup(ctx, g.ID)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, err, "load items of reservation %d", groupID)
	}
	f, err := n.flights.FlightByID(ctx, g.FlightID)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, err, "load flight %d", g.FlightID)
	}

	to := n.Recipient(ctx, override, g.UserID, "")
	if to == "" {
		return nil, apperr.New(apperr.KindInvalidInput, "no email address to send the confirmation to")
	}

	var class model.SeatClass
	if len(items) > 0 {
		class = items[0].SeatClass
	}
	res := n.SendConfirmation(ctx, Confirmation{
		To:        to,
		Group:     *g,
		Flight:    *f,
		Class:     class,
		Items:     items,
		UnitPrice: resendUnitPrice(g.TotalPrice, items),
		Total:     g.TotalPrice,
	})
	if !res.Sent {
		return nil, apperr.New(apperr.KindNotificationFailed, "confirmation email could not be sent: %s", res.Error.Message)
	}
	return &ResendResult{Success: true, Message: "confirmation sent to " + to}, nil
}

// resendUnitPrice uses the price stored on the items when they agree, and
// falls back to total/count otherwise.
func resendUnitPrice(total decimal.Decimal, items []model.ReservationItem) decimal.Decimal {
	if len(items) == 0 {
		return total
	}
	first := items[0].Price
	uniform := first.IsPositive()
	for _, it := range items[1:] {
		if !it.Price.Equal(first) {
			uniform = false
			break
		}
	}
	if uniform {
		return first
	}
	return total.DivRound(decimal.NewFromInt(int64(len(items))), 2)
}

// SendAccountConfirmation mails the registration link.  Unlike
// reservation confirmations the error is returned, because registration
// is undone when the mail cannot go out.
func (n *NotificationService) SendAccountConfirmation(ctx context.Context, to, link string) error {
	subject, html, text, err := notification.RenderAccountConfirmation(link)
	if err != nil {
		return err
	}
	if err := n.deliver(ctx, ports.MailMessage{To: to, Subject: subject, HTML: html, Text: text}); err != nil {
		n.metrics.ObserveNotification("account", NotifyDelivery)
		return err
	}
	n.metrics.ObserveNotification("account", "sent")
	return nil
}
