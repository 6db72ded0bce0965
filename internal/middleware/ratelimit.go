package middleware

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/flight-seat-reservation/internal/config"
)

// bucketScript refills and takes one token atomically.  It returns
// {allowed, remaining, retry_after_ms}.
var bucketScript = redis.NewScript(`
local key = KEYS[1]
local now = tonumber(ARGV[1])
local cap = tonumber(ARGV[2])
local refill = tonumber(ARGV[3])
local every = tonumber(ARGV[4])
local ttl = tonumber(ARGV[5])

local tokens = tonumber(redis.call('HGET', key, 't'))
local last = tonumber(redis.call('HGET', key, 'l'))
if tokens == nil or last == nil then
  tokens = cap
  last = now
end

local steps = math.floor(math.max(0, now - last) / every)
if steps > 0 then
  tokens = math.min(cap, tokens + steps * refill)
  last = last + steps * every
end

local allowed = 0
local retry = 0
if tokens > 0 then
  allowed = 1
  tokens = tokens - 1
else
  retry = math.max(0, every - (now - last))
end

redis.call('HSET', key, 't', tokens, 'l', last)
redis.call('EXPIRE', key, ttl)
return {allowed, tokens, retry}
`)

type verdict struct {
	allowed   bool
	remaining int64
	retry     time.Duration
}

type bucket struct {
	cfg config.RateLimitConfig
	rdb *redis.Client
}

func (b bucket) take(ctx context.Context, key string, now time.Time) (verdict, error) {
	res, err := bucketScript.Run(ctx, b.rdb, []string{key},
		now.UnixMilli(), b.cfg.Capacity, b.cfg.RefillTokens,
		b.cfg.RefillInterval.Milliseconds(), int64(b.cfg.TTL/time.Second)).Int64Slice()
	if err != nil {
		return verdict{}, err
	}
	if len(res) != 3 {
		return verdict{}, redis.Nil
	}
	return verdict{allowed: res[0] == 1, remaining: res[1], retry: time.Duration(res[2]) * time.Millisecond}, nil
}

// RateLimit is a Redis token bucket.  With rate limiting disabled or no
// Redis it passes everything through; a Redis error also lets the
// request through.
func RateLimit(cfg config.RateLimitConfig, rdb *redis.Client, log logrus.FieldLogger) echo.MiddlewareFunc {
	if !cfg.Enabled || rdb == nil {
		return passThrough
	}
	b := bucket{cfg: cfg, rdb: rdb}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := rateKey(cfg, c)
			v, err := b.take(c.Request().Context(), key, time.Now())
			if err != nil {
				log.WithError(err).WithField("key", key).Warn("ratelimit: redis unavailable")
				return next(c)
			}

			h := c.Response().Header()
			h.Set("X-RateLimit-Limit", strconv.Itoa(cfg.Capacity))
			h.Set("X-RateLimit-Remaining", strconv.FormatInt(v.remaining, 10))
			if cfg.Debug {
				h.Set("X-RateLimit-Key", key)
			}
			if v.allowed {
				return next(c)
			}
			secs := int(math.Ceil(v.retry.Seconds()))
			h.Set("Retry-After", strconv.Itoa(secs))
			return c.JSON(http.StatusTooManyRequests, echo.Map{
				"error":       "rate limit exceeded",
				"retry_after": secs,
			})
		}
	}
}

// rateKey builds the bucket key for the configured strategy: any mix of
// "ip", "user" and "route" joined by underscores.
func rateKey(cfg config.RateLimitConfig, c echo.Context) string {
	parts := []string{cfg.Prefix}
	strategy := strings.ToLower(cfg.KeyStrategy)
	if strategy == "" {
		strategy = "ip_user_route"
	}
	for _, s := range strings.Split(strategy, "_") {
		switch s {
		case "ip":
			ip := c.RealIP()
			if ip == "" {
				ip = "unknown"
			}
			parts = append(parts, "ip", ip)
		case "user":
			parts = append(parts, "user", callerKey(c))
		case "route":
			parts = append(parts, "route", c.Request().Method+" "+c.Path())
		}
	}
	return strings.Join(parts, ":")
}

func passThrough(next echo.HandlerFunc) echo.HandlerFunc { return next }
