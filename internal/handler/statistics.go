package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/flight-seat-reservation/internal/repository"
)

type statisticsSource interface {
	Summary(ctx context.Context) (*repository.Statistics, error)
}

// StatisticsHandler serves GET /v1/statistics.
type StatisticsHandler struct {
	Stats statisticsSource
	Log   logrus.FieldLogger
}

func NewStatisticsHandler(s statisticsSource, log logrus.FieldLogger) *StatisticsHandler {
	return &StatisticsHandler{Stats: s, Log: log}
}

func (h *StatisticsHandler) Get(c echo.Context) error {
	st, err := h.Stats.Summary(c.Request().Context())
	if err != nil {
		h.Log.WithError(err).Error("statistics summary")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "statistics unavailable"})
	}
	return c.JSON(http.StatusOK, st)
}
