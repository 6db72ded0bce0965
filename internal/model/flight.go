package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Flight is read-only reference data for the reservation engine.  Prices
// are kept per seat class on the flight row; individual seats carry no
// price of their own.
//
// Fields:
//  ID            – primary key identifier.
//  Code          – airline flight code (e.g. "GU-101").
//  DepartureDate – scheduled departure (UTC).
//  Origin        – departure airport or city.
//  Destination   – arrival airport or city.
//  BusinessPrice – unit price of a business seat (nil when the column is NULL).
//  EconomyPrice  – unit price of an economy seat (nil when the column is NULL).
//  TotalRows     – seat map capacity metadata.
//  Notes         – free text shown in the catalog.
type Flight struct {
	ID            uint64           `json:"id"`
	Code          string           `json:"flight_code"`
	DepartureDate time.Time        `json:"departure_date"`
	Origin        string           `json:"origin"`
	Destination   string           `json:"destination"`
	BusinessPrice *decimal.Decimal `json:"business_price"`
	EconomyPrice  *decimal.Decimal `json:"economy_price"`
	TotalRows     int              `json:"total_rows"`
	Notes         string           `json:"notes,omitempty"`
}

// PriceFor returns the stored price for the given class.  The boolean is
// false when the class is unknown or the price column is NULL or
// unparsable.
func (f *Flight) PriceFor(class SeatClass) (decimal.Decimal, bool) {
	var p *decimal.Decimal
	switch class {
	case SeatClassBusiness:
		p = f.BusinessPrice
	case SeatClassEconomy:
		p = f.EconomyPrice
	}
	if p == nil {
		return decimal.Zero, false
	}
	return *p, true
}
