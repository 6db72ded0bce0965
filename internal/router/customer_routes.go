package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/flight-seat-reservation/internal/handler"
	"github.com/iliyamo/flight-seat-reservation/internal/middleware"
)

// RegisterCustomer registers the authenticated reservation endpoints under
// /v1.  Every route requires a valid JWT and passes the rate limiter;
// statistics additionally sit behind the short-lived response cache.
func RegisterCustomer(e *echo.Echo, r *handler.ReservationHandler, s *handler.StatisticsHandler,
	jwtSecret string, limiter, statsCache echo.MiddlewareFunc) {
	g := e.Group("/v1", middleware.JWTAuth(jwtSecret), limiter)

	g.POST("/reservations", r.Create)
	g.GET("/reservations", r.List)
	g.GET("/reservations/:id", r.Get)
	g.POST("/reservations/:id/resend-email", r.ResendEmail)

	g.GET("/statistics", s.Get, statsCache)
}
