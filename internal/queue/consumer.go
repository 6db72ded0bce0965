package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

// AuditConsumer listens on reservation.confirmed and appends one line per
// event to <dir>/reservation.log.
type AuditConsumer struct {
	url string
	dir string
	log logrus.FieldLogger
}

func NewAuditConsumer(url, dir string, log logrus.FieldLogger) *AuditConsumer {
	if dir == "" {
		dir = "logs"
	}
	return &AuditConsumer{url: url, dir: dir, log: log}
}

// Run dials the broker and consumes until ctx is cancelled, reconnecting
// with exponential backoff (capped at 30s).  A message that cannot be
// handled is rejected without requeue so it cannot spin.
func (a *AuditConsumer) Run(ctx context.Context) error {
	backoff := time.Second
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		conn, err := amqp.Dial(a.url)
		if err != nil {
			a.log.WithError(err).Warnf("audit-consumer: dial failed; retrying in %s", backoff)
			if !sleep(ctx, backoff) {
				return ctx.Err()
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		err = a.consume(ctx, conn)
		_ = conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		a.log.WithError(err).Warn("audit-consumer: consume loop ended; reconnecting")
		if !sleep(ctx, 2*time.Second) {
			return ctx.Err()
		}
	}
}

func (a *AuditConsumer) consume(ctx context.Context, conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		a.log.WithError(err).Warn("audit-consumer: set QoS failed")
	}
	if _, err := ch.QueueDeclare(ReservationConfirmedQueue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	msgs, err := ch.Consume(ReservationConfirmedQueue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-msgs:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			if err := a.handle(d.Body); err != nil {
				a.log.WithError(err).Error("audit-consumer: handle message failed")
				_ = d.Nack(false, false)
				continue
			}
			_ = d.Ack(false)
		}
	}
}

func (a *AuditConsumer) handle(body []byte) error {
	if err := os.MkdirAll(a.dir, 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", a.dir, err)
	}
	f, err := os.OpenFile(filepath.Join(a.dir, "reservation.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()
	return writeAuditLine(f, body)
}

// writeAuditLine decodes one event and writes its audit line to w.
func writeAuditLine(w io.Writer, body []byte) error {
	var ev ReservationConfirmedEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	seats := fmt.Sprintf("[%s]", strings.Join(ev.SeatNumbers, ","))
	line := fmt.Sprintf("[%s] Reservation confirmed | group_id=%d | user_id=%d | flight_id=%d | flight=%q | class=%s | passengers=%d | total=%s | seats=%s\n",
		ev.ConfirmedAt, ev.GroupID, ev.UserID, ev.FlightID, ev.FlightCode, ev.SeatClass, ev.Passengers, ev.Total, seats)
	if _, err := io.WriteString(w, line); err != nil {
		return fmt.Errorf("write log: %w", err)
	}
	return nil
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
