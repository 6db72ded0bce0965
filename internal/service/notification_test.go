package service

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/flight-seat-reservation/internal/apperr"
	"github.com/iliyamo/flight-seat-reservation/internal/model"
)

func TestNotificationService_Resend(t *testing.T) {
	f := newFixture(t)
	res, err := f.svc.Create(context.Background(), economyPair())
	require.NoError(t, err)
	groupsBefore, itemsBefore, occupiedBefore := f.store.counts()

	out, err := f.notify.Resend(context.Background(), res.GroupID, 7, "")
	require.NoError(t, err)
	assert.True(t, out.Success)
	_, err = f.notify.Resend(context.Background(), res.GroupID, 7, "copy@agency.com")
	require.NoError(t, err)

	assert.Equal(t, 3, f.mailer.count())
	assert.Equal(t, "ana@gmail.com", f.mailer.sent[1].To)
	assert.Equal(t, "copy@agency.com", f.mailer.sent[2].To)
	assert.Contains(t, f.mailer.sent[1].Text, "Unit price: Q450.00")

	g, i, o := f.store.counts()
	assert.Equal(t, []int{groupsBefore, itemsBefore, occupiedBefore}, []int{g, i, o})
}

func TestNotificationService_Resend_Errors(t *testing.T) {
	f := newFixture(t)
	res, err := f.svc.Create(context.Background(), economyPair())
	require.NoError(t, err)

	_, err = f.notify.Resend(context.Background(), 999, 7, "")
	requireKind(t, err, apperr.KindNotFound)

	_, err = f.notify.Resend(context.Background(), res.GroupID, 8, "")
	requireKind(t, err, apperr.KindForbidden)

	f.mailer.err = errSMTP
	_, err = f.notify.Resend(context.Background(), res.GroupID, 7, "")
	requireKind(t, err, apperr.KindNotificationFailed)
}

func TestNotificationService_Resend_NoRecipient(t *testing.T) {
	f := newFixture(t)
	in := economyPair()
	in.UserID = 99 // no registered user
	res, err := f.svc.Create(context.Background(), in)
	require.NoError(t, err)
	assert.True(t, res.EmailSent) // token email used at booking time

	_, err = f.notify.Resend(context.Background(), res.GroupID, 99, "")
	requireKind(t, err, apperr.KindInvalidInput)
}

func TestNotificationService_SendConfirmation_NoRecipient(t *testing.T) {
	f := newFixture(t)
	out := f.notify.SendConfirmation(context.Background(), Confirmation{})
	assert.False(t, out.Sent)
	assert.Equal(t, NotifyNoRecipient, out.Error.Kind)
}

func TestResendUnitPrice(t *testing.T) {
	p := decimal.RequireFromString
	uniform := []model.ReservationItem{{Price: p("450")}, {Price: p("450")}}
	assert.True(t, resendUnitPrice(p("900"), uniform).Equal(p("450")))

	mixed := []model.ReservationItem{{Price: p("450")}, {Price: p("300")}, {Price: p("300")}}
	assert.Equal(t, "350", resendUnitPrice(p("1050"), mixed).String())

	assert.True(t, resendUnitPrice(p("10"), nil).Equal(p("10")))
}

func TestNotificationService_SendAccountConfirmation(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.notify.SendAccountConfirmation(context.Background(), "ana@gmail.com", "http://x/confirm?token=t"))
	assert.Equal(t, "Confirm your account", f.mailer.sent[0].Subject)

	f.mailer.err = errSMTP
	assert.Error(t, f.notify.SendAccountConfirmation(context.Background(), "ana@gmail.com", "http://x"))
}

func TestPricingResolver(t *testing.T) {
	f := newFixture(t)
	p := NewPricingResolver(f.store)

	unit, fl, err := p.PriceFor(context.Background(), 1, model.SeatClassBusiness)
	require.NoError(t, err)
	assert.Equal(t, "GU-101", fl.Code)
	assert.Equal(t, "1200", unit.String())

	_, _, err = p.PriceFor(context.Background(), 1, "first")
	requireKind(t, err, apperr.KindInvalidInput)
	_, _, err = p.PriceFor(context.Background(), 2, model.SeatClassEconomy)
	requireKind(t, err, apperr.KindInvalidPrice)
	_, _, err = p.PriceFor(context.Background(), 3, model.SeatClassEconomy)
	requireKind(t, err, apperr.KindNotFound)
}
