package notification

import (
	"context"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/flight-seat-reservation/internal/config"
	"github.com/iliyamo/flight-seat-reservation/internal/service/ports"
)

func TestRenderReservation(t *testing.T) {
	subject, html, text, err := RenderReservation(ReservationMail{
		GroupID:     11,
		FlightCode:  "GU-101",
		Origin:      "GUA",
		Destination: "MIA",
		Departure:   time.Date(2026, 11, 1, 8, 30, 0, 0, time.UTC),
		Class:       "economy",
		Seats: []SeatLine{
			{Number: "C1", Passenger: "Ana <Lopez>"},
			{Number: "C2", Passenger: "Luis", HasLuggage: true},
		},
		UnitPrice: "450.00",
		Total:     "900.00",
	})
	require.NoError(t, err)

	assert.Equal(t, "Reservation confirmed - flight GU-101", subject)
	assert.Contains(t, html, "Ana &lt;Lopez&gt;")
	assert.Contains(t, html, "Q900.00")
	assert.Contains(t, text, "- C2 Luis (luggage)")
	assert.Contains(t, text, "departing 2026-11-01 08:30 UTC")
	assert.Contains(t, text, "Class: Economy")
}

func TestRenderAccountConfirmation(t *testing.T) {
	_, html, text, err := RenderAccountConfirmation("http://localhost:8080/v1/auth/confirm?token=abc")
	require.NoError(t, err)
	assert.Contains(t, html, `href="http://localhost:8080/v1/auth/confirm?token=abc"`)
	assert.Contains(t, text, "token=abc")
}

func TestNew_SelectsDriver(t *testing.T) {
	log, _ := test.NewNullLogger()

	m, err := New(config.MailConfig{Driver: "log", From: "noreply@airline.local"}, log)
	require.NoError(t, err)
	assert.IsType(t, &LogMailer{}, m)

	_, err = New(config.MailConfig{Driver: "pigeon"}, log)
	assert.ErrorIs(t, err, ErrMailConfig)
}

func TestNewSMTPMailer_ValidatesConfig(t *testing.T) {
	log, _ := test.NewNullLogger()
	base := config.MailConfig{Driver: "smtp", Host: "smtp.gmail.com", Port: 587, From: "a@gmail.com",
		Username: "a@gmail.com", Password: "app-password", Auth: "plain"}

	_, err := NewSMTPMailer(base, log)
	require.NoError(t, err)

	noHost := base
	noHost.Host = ""
	_, err = NewSMTPMailer(noHost, log)
	assert.ErrorIs(t, err, ErrMailConfig)

	oauth := base
	oauth.Auth = "xoauth2"
	_, err = NewSMTPMailer(oauth, log)
	assert.ErrorIs(t, err, ErrMailConfig)

	oauth.OAuthClientID, oauth.OAuthClientSecret, oauth.OAuthRefreshToken = "id", "secret", "refresh"
	m, err := NewSMTPMailer(oauth, log)
	require.NoError(t, err)
	assert.NotNil(t, m.tokens)
}

func TestLogMailer_Send(t *testing.T) {
	log, hook := test.NewNullLogger()
	m := &LogMailer{from: "noreply@airline.local", log: log}

	err := m.Send(context.Background(), ports.MailMessage{To: "ana@gmail.com", Subject: "hi", HTML: "<p>hi</p>", Text: "hi"})
	require.NoError(t, err)
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.InfoLevel, hook.LastEntry().Level)
	assert.Equal(t, "ana@gmail.com", hook.LastEntry().Data["to"])

	err = m.Send(context.Background(), ports.MailMessage{To: "not an address"})
	assert.Error(t, err)
}
