package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/flight-seat-reservation/internal/apperr"
	"github.com/iliyamo/flight-seat-reservation/internal/middleware"
)

// getUserID reads the caller id stored by middleware.JWTAuth.
func getUserID(c echo.Context) (uint64, error) {
	switch t := c.Get(middleware.CtxUserID).(type) {
	case uint64:
		if t != 0 {
			return t, nil
		}
	case string:
		if n, err := strconv.ParseUint(t, 10, 64); err == nil && n != 0 {
			return n, nil
		}
	}
	return 0, errors.New("invalid user_id in context")
}

func getEmail(c echo.Context) string {
	s, _ := c.Get(middleware.CtxEmail).(string)
	return s
}

// parseID reads a positive numeric path parameter.
func parseID(c echo.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	return id, err == nil && id != 0
}

// errorBody is the JSON shape of every error produced from an
// *apperr.Error.
type errorBody struct {
	Error     string `json:"error"`
	Kind      string `json:"kind"`
	Seat      string `json:"seat,omitempty"`
	Passenger string `json:"passenger,omitempty"`
}

// writeError renders err.  Internal failures are logged and their
// detail hidden from the client.
func writeError(c echo.Context, log logrus.FieldLogger, err error) error {
	e, ok := apperr.As(err)
	if !ok {
		e = apperr.Wrap(apperr.KindInternal, err, "internal error")
	}
	status := apperr.HTTPStatus(e.Kind)
	body := errorBody{Error: e.Error(), Kind: string(e.Kind), Seat: e.Seat, Passenger: e.Passenger}
	if status == http.StatusInternalServerError {
		log.WithError(err).WithField("path", c.Request().URL.Path).Error("request failed")
		body.Error = e.Message
	}
	return c.JSON(status, body)
}
