// Package metrics owns the Prometheus collectors exported on /metrics.
package metrics

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics groups the collectors so tests can use a private registry.
type Metrics struct {
	Requests      *prometheus.CounterVec
	Duration      *prometheus.HistogramVec
	Reservations  *prometheus.CounterVec
	Notifications *prometheus.CounterVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Number of HTTP requests by route, method and status.",
		}, []string{"method", "route", "status"}),
		Duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		Reservations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "reservations_total",
			Help: "Reservation attempts by outcome.",
		}, []string{"result"}),
		Notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "notifications_total",
			Help: "Confirmation e-mails by flow and outcome.",
		}, []string{"flow", "result"}),
	}
	reg.MustRegister(m.Requests, m.Duration, m.Reservations, m.Notifications)
	return m
}

// ObserveReservation counts one reservation attempt.  A nil receiver is a
// no-op so services can run without metrics.
func (m *Metrics) ObserveReservation(result string) {
	if m == nil {
		return
	}
	m.Reservations.WithLabelValues(result).Inc()
}

// ObserveNotification counts one notification attempt.
func (m *Metrics) ObserveNotification(flow, result string) {
	if m == nil {
		return
	}
	m.Notifications.WithLabelValues(flow, result).Inc()
}

// Middleware records request count and latency per route template.
func (m *Metrics) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				// let echo write the response so the status is final
				c.Error(err)
			}
			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			method := c.Request().Method
			status := strconv.Itoa(c.Response().Status)
			m.Requests.WithLabelValues(method, route, status).Inc()
			m.Duration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
			return nil
		}
	}
}
