package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/flight-seat-reservation/internal/model"
)

type flightCatalog interface {
	List(ctx context.Context) ([]model.Flight, error)
	FlightByID(ctx context.Context, id uint64) (*model.Flight, error)
}

type seatLister interface {
	ListByFlight(ctx context.Context, flightID uint64) ([]model.Seat, error)
}

// FlightHandler serves the read-only flight catalog.
type FlightHandler struct {
	Flights  flightCatalog
	SeatRepo seatLister
	Log      logrus.FieldLogger
}

func NewFlightHandler(f flightCatalog, s seatLister, log logrus.FieldLogger) *FlightHandler {
	return &FlightHandler{Flights: f, SeatRepo: s, Log: log}
}

// List handles GET /v1/flights.
func (h *FlightHandler) List(c echo.Context) error {
	flights, err := h.Flights.List(c.Request().Context())
	if err != nil {
		h.Log.WithError(err).Error("list flights")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list flights failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"flights": flights})
}

func (h *FlightHandler) load(c echo.Context) (*model.Flight, error) {
	id, ok := parseID(c, "id")
	if !ok {
		return nil, c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid flight id"})
	}
	f, err := h.Flights.FlightByID(c.Request().Context(), id)
	if errors.Is(err, model.ErrFlightNotFound) {
		return nil, c.JSON(http.StatusNotFound, echo.Map{"error": "flight not found"})
	}
	if err != nil {
		h.Log.WithError(err).Error("load flight")
		return nil, c.JSON(http.StatusInternalServerError, echo.Map{"error": "load flight failed"})
	}
	return f, nil
}

// Get handles GET /v1/flights/:id.
func (h *FlightHandler) Get(c echo.Context) error {
	f, err := h.load(c)
	if f == nil {
		return err
	}
	return c.JSON(http.StatusOK, f)
}

// Seats handles GET /v1/flights/:id/seats.  The seat map is read fresh on
// every call and ordered row first, then position.
func (h *FlightHandler) Seats(c echo.Context) error {
	f, err := h.load(c)
	if f == nil {
		return err
	}
	seats, err := h.SeatRepo.ListByFlight(c.Request().Context(), f.ID)
	if err != nil {
		h.Log.WithError(err).Error("list seats")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list seats failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"flight": f, "seats": seats})
}
