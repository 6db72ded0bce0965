package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMiddleware_CountsByRouteAndStatus(t *testing.T) {
	m := New(prometheus.NewRegistry())
	e := echo.New()
	e.Use(m.Middleware())
	e.GET("/v1/flights/:id", func(c echo.Context) error {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "flight not found"})
	})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/flights/9", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Requests.WithLabelValues("GET", "/v1/flights/:id", "404")))
}

func TestObserve_NilReceiver(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveReservation("ok")
		m.ObserveNotification("reservation", "sent")
	})
}

func TestObserveReservation(t *testing.T) {
	m := New(prometheus.NewRegistry())
	m.ObserveReservation("conflict")
	m.ObserveReservation("conflict")
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Reservations.WithLabelValues("conflict")))
}
