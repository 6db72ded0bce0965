package main // Entry point package

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/iliyamo/flight-seat-reservation/internal/config"
	"github.com/iliyamo/flight-seat-reservation/internal/database"
	"github.com/iliyamo/flight-seat-reservation/internal/handler"
	"github.com/iliyamo/flight-seat-reservation/internal/logging"
	"github.com/iliyamo/flight-seat-reservation/internal/metrics"
	"github.com/iliyamo/flight-seat-reservation/internal/middleware"
	"github.com/iliyamo/flight-seat-reservation/internal/migrations"
	"github.com/iliyamo/flight-seat-reservation/internal/notification"
	"github.com/iliyamo/flight-seat-reservation/internal/queue"
	"github.com/iliyamo/flight-seat-reservation/internal/repository"
	"github.com/iliyamo/flight-seat-reservation/internal/router"
	"github.com/iliyamo/flight-seat-reservation/internal/service"
	"github.com/iliyamo/flight-seat-reservation/internal/service/ports"
)

func main() {
	_ = godotenv.Load() // .env is optional; real env wins
	cfg := config.Load()
	log := logging.New(cfg.Env, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.WithError(err).Fatal("database unavailable")
	}
	defer db.Close()
	if err := migrations.Up(ctx, db); err != nil {
		log.WithError(err).Fatal("migrations failed")
	}

	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Warn("redis unavailable; cache and rate limiting disabled")
	} else {
		defer rdb.Close()
	}

	mailer, err := notification.New(config.LoadMailConfig(), log)
	if err != nil {
		log.WithError(err).Fatal("mail configuration")
	}

	m := metrics.New(prometheus.DefaultRegisterer)

	qcfg := config.LoadQueueConfig()
	var events ports.EventPublisher = queue.NopPublisher{}
	if qcfg.Enabled {
		events = queue.NewPublisher(qcfg.URL, log)
		go func() {
			if err := queue.NewAuditConsumer(qcfg.URL, qcfg.LogDir, log).Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.WithError(err).Error("audit consumer stopped")
			}
		}()
	}

	// Repositories
	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	flights := repository.NewFlightRepo(db)
	seats := repository.NewSeatRepo(db)
	store := repository.NewStore(db)
	stats := repository.NewStatisticsRepo(db)

	// Services
	notifier := service.NewNotificationService(mailer, users, store, flights, cfg.NotifyTimeout, m, log)
	reservations := service.NewReservationService(store, notifier, events, m, log)

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.RequestID())
	e.Use(echomw.Recover())
	e.Use(middleware.RequestLog(log))
	e.Use(m.Middleware())

	cacheCfg := config.LoadCacheConfig()
	router.RegisterRoutes(e, handler.Health(db))
	router.RegisterAuth(e, handler.NewAuthHandler(cfg, users, tokens, notifier, log), cfg.JWTSecret)
	router.RegisterPublic(e, handler.NewFlightHandler(flights, seats, log),
		middleware.ResponseCache(cacheCfg, cacheCfg.TTL, rdb, log))
	router.RegisterCustomer(e,
		handler.NewReservationHandler(reservations, notifier, log),
		handler.NewStatisticsHandler(stats, log),
		cfg.JWTSecret,
		middleware.RateLimit(config.LoadRateLimitConfig(), rdb, log),
		middleware.ResponseCache(cacheCfg, cacheCfg.StatsTTL, rdb, log),
	)

	addr := ":" + cfg.Port
	go func() {
		log.WithField("env", cfg.Env).Infof("listening on %s", addr)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server failed")
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("shutdown")
	}
}
