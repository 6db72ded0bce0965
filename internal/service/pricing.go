// Package service holds the reservation engine and the notification
// reconciler.  Storage and delivery are reached only through the
// interfaces in service/ports.
package service

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/iliyamo/flight-seat-reservation/internal/apperr"
	"github.com/iliyamo/flight-seat-reservation/internal/model"
	"github.com/iliyamo/flight-seat-reservation/internal/service/ports"
)

// PricingResolver maps (flight, class) to a unit price.  Prices come
// from the flight row only; seats carry no price.
type PricingResolver struct {
	flights ports.FlightReader
}

func NewPricingResolver(flights ports.FlightReader) *PricingResolver {
	return &PricingResolver{flights: flights}
}

// PriceFor returns the unit price and the flight it was read from.
func (p *PricingResolver) PriceFor(ctx context.Context, flightID uint64, class model.SeatClass) (decimal.Decimal, *model.Flight, error) {
	if !class.Valid() {
		return decimal.Zero, nil, apperr.New(apperr.KindInvalidInput, "unknown seat class %q", class)
	}
	f, err := p.flights.FlightByID(ctx, flightID)
	if errors.Is(err, model.ErrFlightNotFound) {
		return decimal.Zero, nil, apperr.New(apperr.KindNotFound, "flight %d not found", flightID)
	}
	if err != nil {
		return decimal.Zero, nil, apperr.Wrap(apperr.KindInternal, err, "load flight %d", flightID)
	}
	unit, err := unitPrice(f, class)
	if err != nil {
		return decimal.Zero, nil, err
	}
	return unit, f, nil
}

func unitPrice(f *model.Flight, class model.SeatClass) (decimal.Decimal, error) {
	price, ok := f.PriceFor(class)
	if !ok || !price.IsPositive() {
		return decimal.Zero, apperr.New(apperr.KindInvalidPrice, "flight %s has no valid %s price", f.Code, class)
	}
	return price, nil
}
