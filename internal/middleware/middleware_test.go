package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/flight-seat-reservation/internal/config"
	"github.com/iliyamo/flight-seat-reservation/internal/utils"
)

func whoami(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"id": c.Get(CtxUserID), "email": c.Get(CtxEmail)})
}

func TestJWTAuth(t *testing.T) {
	e := echo.New()
	e.GET("/me", whoami, JWTAuth("s3cret"))
	tok, err := utils.NewAccessToken("s3cret", 7, "ana@gmail.com", time.Minute)
	require.NoError(t, err)

	cases := map[string]struct {
		header string
		status int
	}{
		"valid":        {"Bearer " + tok.Token, http.StatusOK},
		"missing":      {"", http.StatusUnauthorized},
		"wrong scheme": {"Basic abc", http.StatusUnauthorized},
		"garbage":      {"Bearer abc.def.ghi", http.StatusUnauthorized},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tc.header != "" {
				req.Header.Set(echo.HeaderAuthorization, tc.header)
			}
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)
			assert.Equal(t, tc.status, rec.Code)
			if tc.status == http.StatusOK {
				assert.JSONEq(t, `{"id":7,"email":"ana@gmail.com"}`, rec.Body.String())
			}
		})
	}
}

func TestRateKey(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/v1/reservations", nil)
	req.Header.Set(echo.HeaderXRealIP, "10.0.0.1")
	c := e.NewContext(req, httptest.NewRecorder())
	c.SetPath("/v1/reservations")
	c.Set(CtxUserID, uint64(7))

	cfg := config.RateLimitConfig{Prefix: "rl", KeyStrategy: "user_route"}
	assert.Equal(t, "rl:user:7:route:POST /v1/reservations", rateKey(cfg, c))

	cfg.KeyStrategy = "ip"
	assert.Equal(t, "rl:ip:10.0.0.1", rateKey(cfg, c))

	c.Set(CtxUserID, nil)
	cfg.KeyStrategy = "user"
	assert.Equal(t, "rl:user:anon", rateKey(cfg, c))
}

func TestCacheKey_IncludesParamsAndQuery(t *testing.T) {
	e := echo.New()
	cfg := config.CacheConfig{Prefix: "cache"}
	mk := func(url, param string) string {
		c := e.NewContext(httptest.NewRequest(http.MethodGet, url, nil), httptest.NewRecorder())
		c.SetPath("/v1/flights/:id")
		c.SetParamNames("id")
		c.SetParamValues(param)
		return cacheKey(cfg, c)
	}
	assert.NotEqual(t, mk("/v1/flights/1", "1"), mk("/v1/flights/2", "2"))
	assert.NotEqual(t, mk("/v1/flights/1?a=1", "1"), mk("/v1/flights/1?a=2", "1"))
	assert.Equal(t, mk("/v1/flights/1", "1"), mk("/v1/flights/1", "1"))
}

func TestNilRedisPassesThrough(t *testing.T) {
	log, _ := test.NewNullLogger()
	e := echo.New()
	e.GET("/x", func(c echo.Context) error { return c.String(http.StatusOK, "ok") },
		RateLimit(config.RateLimitConfig{Enabled: true}, nil, log),
		ResponseCache(config.CacheConfig{Enabled: true}, time.Minute, nil, log))

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("X-Cache"))
}

func TestTeeWriter_Overflow(t *testing.T) {
	rec := httptest.NewRecorder()
	tw := &teeWriter{ResponseWriter: rec, status: http.StatusOK, limit: 4}
	_, _ = tw.Write([]byte("abc"))
	assert.False(t, tw.overflow)
	_, _ = tw.Write([]byte("def"))
	assert.True(t, tw.overflow)
	assert.Equal(t, "abcdef", rec.Body.String())
}

func TestRequestLog(t *testing.T) {
	log, hook := test.NewNullLogger()
	e := echo.New()
	e.Use(echomw.RequestID(), RequestLog(log))
	e.GET("/boom", func(c echo.Context) error { return echo.NewHTTPError(http.StatusConflict, "taken") })

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))

	assert.Equal(t, http.StatusConflict, rec.Code)
	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.WarnLevel, entry.Level)
	assert.Equal(t, http.StatusConflict, entry.Data["status"])
	assert.NotEmpty(t, entry.Data["request_id"])
}
