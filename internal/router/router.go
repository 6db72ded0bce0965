package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/iliyamo/flight-seat-reservation/internal/handler"
	"github.com/iliyamo/flight-seat-reservation/internal/middleware"
)

// RegisterRoutes registers the operational endpoints: a health check for
// load balancers and the Prometheus scrape endpoint.
func RegisterRoutes(e *echo.Echo, health echo.HandlerFunc) {
	e.GET("/healthz", health)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
}

// RegisterAuth registers all authentication-related routes.  Session-less
// operations live under /v1/auth; /v1/me needs a valid access token.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.GET("/confirm", a.Confirm)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh) // rotates the refresh token
	g.POST("/logout", a.Logout)

	auth := e.Group("/v1", middleware.JWTAuth(jwtSecret))
	auth.GET("/me", a.Me)
}

// RegisterPublic registers the unauthenticated flight catalog.  Only the
// flight list goes through the response cache; the seat map is always
// read from the database.
func RegisterPublic(e *echo.Echo, f *handler.FlightHandler, cache echo.MiddlewareFunc) {
	e.GET("/v1/flights", f.List, cache)
	e.GET("/v1/flights/:id", f.Get)
	e.GET("/v1/flights/:id/seats", f.Seats)
}
