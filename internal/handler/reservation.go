package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/flight-seat-reservation/internal/model"
	"github.com/iliyamo/flight-seat-reservation/internal/service"
)

type reservationEngine interface {
	Create(ctx context.Context, in service.CreateReservationInput) (*service.ReservationResult, error)
	List(ctx context.Context, userID uint64) ([]model.ReservationGroup, error)
	Get(ctx context.Context, groupID, userID uint64) (*model.ReservationGroup, error)
}

type confirmationResender interface {
	Resend(ctx context.Context, groupID, callerID uint64, override string) (*service.ResendResult, error)
}

// ReservationHandler serves the authenticated reservation endpoints.
type ReservationHandler struct {
	Reservations reservationEngine
	Notifier     confirmationResender
	Log          logrus.FieldLogger
}

func NewReservationHandler(r reservationEngine, n confirmationResender, log logrus.FieldLogger) *ReservationHandler {
	return &ReservationHandler{Reservations: r, Notifier: n, Log: log}
}

type passengerReq struct {
	SeatID        uint64 `json:"seat_id"`
	PassengerName string `json:"passenger_name"`
	NationalID    string `json:"national_id"`
	HasLuggage    bool   `json:"has_luggage"`
}

// createReservationReq is the body of POST /v1/reservations.  Quantity is
// optional; when present it must match the number of passengers.
type createReservationReq struct {
	FlightID        uint64         `json:"flight_id"`
	Quantity        int            `json:"quantity"`
	SeatClass       string         `json:"seat_class"`
	ManualSelection *bool          `json:"manual_selection"`
	Passengers      []passengerReq `json:"passengers"`
	NotifyEmail     string         `json:"notify_email"`
}

type createReservationResp struct {
	GroupID    uint64                     `json:"group_id"`
	Total      decimal.Decimal            `json:"total"`
	UnitPrice  decimal.Decimal            `json:"unit_price"`
	Items      []model.ReservationItem    `json:"items"`
	EmailSent  bool                       `json:"email_sent"`
	EmailError *service.NotificationError `json:"email_error,omitempty"`
}

type resendReq struct {
	Email string `json:"email"`
}

// Create handles POST /v1/reservations.
func (h *ReservationHandler) Create(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req createReservationReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Quantity < 0 || (req.Quantity > 0 && req.Quantity != len(req.Passengers)) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "quantity must match the number of passengers"})
	}

	in := service.CreateReservationInput{
		UserID:          uid,
		UserEmail:       getEmail(c),
		FlightID:        req.FlightID,
		SeatClass:       model.SeatClass(strings.ToLower(strings.TrimSpace(req.SeatClass))),
		ManualSelection: req.ManualSelection,
		NotifyEmail:     strings.TrimSpace(req.NotifyEmail),
		Passengers:      make([]service.PassengerSeat, len(req.Passengers)),
	}
	for i, p := range req.Passengers {
		in.Passengers[i] = service.PassengerSeat{
			SeatID:        p.SeatID,
			PassengerName: p.PassengerName,
			NationalID:    p.NationalID,
			HasLuggage:    p.HasLuggage,
		}
	}

	res, err := h.Reservations.Create(c.Request().Context(), in)
	if err != nil {
		return writeError(c, h.Log, err)
	}
	return c.JSON(http.StatusCreated, createReservationResp{
		GroupID:    res.GroupID,
		Total:      res.Total,
		UnitPrice:  res.UnitPrice,
		Items:      res.Items,
		EmailSent:  res.EmailSent,
		EmailError: res.EmailError,
	})
}

// ResendEmail handles POST /v1/reservations/:id/resend-email.  The body
// is optional and may carry an override address.
func (h *ReservationHandler) ResendEmail(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}
	var req resendReq
	if c.Request().ContentLength != 0 {
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
		}
	}
	res, err := h.Notifier.Resend(c.Request().Context(), id, uid, strings.TrimSpace(req.Email))
	if err != nil {
		return writeError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, res)
}

// List handles GET /v1/reservations.
func (h *ReservationHandler) List(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	groups, err := h.Reservations.List(c.Request().Context(), uid)
	if err != nil {
		return writeError(c, h.Log, err)
	}
	if groups == nil {
		groups = []model.ReservationGroup{}
	}
	return c.JSON(http.StatusOK, echo.Map{"reservations": groups})
}

// Get handles GET /v1/reservations/:id.
func (h *ReservationHandler) Get(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}
	g, err := h.Reservations.Get(c.Request().Context(), id, uid)
	if err != nil {
		return writeError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, g)
}
