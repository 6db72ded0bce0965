package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadRateLimitConfig_Defaults(t *testing.T) {
	t.Setenv("RATE_LIMIT_CAPACITY", "")
	cfg := LoadRateLimitConfig()

	assert.True(t, cfg.Enabled)
	assert.Equal(t, 20, cfg.Capacity)
	assert.Equal(t, 3*time.Second, cfg.RefillInterval)
	assert.Equal(t, "user_route", cfg.KeyStrategy)
}

func TestLoadRateLimitConfig_ClampsValues(t *testing.T) {
	t.Setenv("RATE_LIMIT_CAPACITY", "0")
	t.Setenv("RATE_LIMIT_REFILL_TOKENS", "-3")
	t.Setenv("RATE_LIMIT_REFILL_INTERVAL", "2s")
	t.Setenv("RATE_LIMIT_TTL", "1s")

	cfg := LoadRateLimitConfig()

	assert.Equal(t, 1, cfg.Capacity)
	assert.Equal(t, 1, cfg.RefillTokens)
	assert.Equal(t, 10*time.Second, cfg.TTL)
}

func TestLoadMailConfig_FromFallsBackToUser(t *testing.T) {
	t.Setenv("SMTP_USER", "bookings@gmail.com")
	t.Setenv("SMTP_FROM", "")
	t.Setenv("SMTP_AUTH", "XOAUTH2")

	cfg := LoadMailConfig()

	assert.Equal(t, "bookings@gmail.com", cfg.From)
	assert.Equal(t, "xoauth2", cfg.Auth)
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"gmail.com", "outlook.com"}, splitList(" Gmail.com, ,outlook.com "))
	assert.Nil(t, splitList(""))
}

func TestEnvBool(t *testing.T) {
	t.Setenv("X_FLAG", "off")
	assert.False(t, envBool("X_FLAG", true))
	t.Setenv("X_FLAG", "maybe")
	assert.True(t, envBool("X_FLAG", true))
}
