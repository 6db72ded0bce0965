package middleware

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/flight-seat-reservation/internal/config"
)

// cachedResponse is what is stored in Redis for one cached 200.
type cachedResponse struct {
	ContentType string `json:"ct"`
	Body        []byte `json:"b"`
}

// teeWriter forwards the response and keeps a bounded copy of the body.
type teeWriter struct {
	http.ResponseWriter
	status   int
	buf      bytes.Buffer
	limit    int
	overflow bool
}

func (w *teeWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *teeWriter) Write(b []byte) (int, error) {
	if !w.overflow {
		if w.limit > 0 && w.buf.Len()+len(b) > w.limit {
			w.overflow = true
			w.buf.Reset()
		} else {
			w.buf.Write(b)
		}
	}
	return w.ResponseWriter.Write(b)
}

// cacheKey hashes the parts selected by the key strategy.
func cacheKey(cfg config.CacheConfig, c echo.Context) string {
	r := c.Request()
	var tail string
	switch strings.ToLower(cfg.KeyStrategy) {
	case "route":
		tail = c.Path()
	case "method_route":
		tail = r.Method + " " + c.Path()
	case "method_route_query":
		tail = r.Method + " " + c.Path() + "?" + r.URL.RawQuery
	default:
		tail = c.Path() + "?" + r.URL.RawQuery
	}
	// path params are part of the key; c.Path() is the route template
	for _, v := range c.ParamValues() {
		tail += "|" + v
	}
	sum := sha1.Sum([]byte(tail))
	return cfg.Prefix + ":" + hex.EncodeToString(sum[:])
}

// ResponseCache caches successful responses in Redis for ttl.  It is
// attached per route so each route picks its own ttl.  Redis errors
// degrade to an uncached response.
func ResponseCache(cfg config.CacheConfig, ttl time.Duration, rdb *redis.Client, log logrus.FieldLogger) echo.MiddlewareFunc {
	if !cfg.Enabled || rdb == nil || ttl <= 0 {
		return passThrough
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !cfg.Methods[c.Request().Method] {
				return next(c)
			}
			ctx := c.Request().Context()
			key := cacheKey(cfg, c)

			if raw, err := rdb.Get(ctx, key).Bytes(); err == nil {
				var cr cachedResponse
				if json.Unmarshal(raw, &cr) == nil {
					c.Response().Header().Set("X-Cache", "HIT")
					return c.Blob(http.StatusOK, cr.ContentType, cr.Body)
				}
			} else if err != redis.Nil {
				log.WithError(err).Warn("cache: redis get failed")
			}

			tw := &teeWriter{ResponseWriter: c.Response().Writer, status: http.StatusOK, limit: cfg.MaxBodyBytes}
			c.Response().Writer = tw
			c.Response().Header().Set("X-Cache", "MISS")
			if err := next(c); err != nil {
				return err
			}
			if tw.status != http.StatusOK || tw.overflow {
				return nil
			}
			payload, err := json.Marshal(cachedResponse{
				ContentType: c.Response().Header().Get(echo.HeaderContentType),
				Body:        tw.buf.Bytes(),
			})
			if err != nil {
				return nil
			}
			if err := rdb.Set(context.WithoutCancel(ctx), key, payload, ttl).Err(); err != nil {
				log.WithError(err).Warn("cache: redis set failed")
			}
			return nil
		}
	}
}
