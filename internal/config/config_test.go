package config

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("APP_ENV", "")
	t.Setenv("PORT", "")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("OTP_TTL", "")
	t.Setenv("SESSION_TTL", "")

	cfg := Load()

	assert.Equal(t, "dev", cfg.Env)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, 10*time.Minute, cfg.OTPTTL)
	assert.Equal(t, 24*time.Hour, cfg.SessionTTL)
	assert.Contains(t, cfg.DBURL, "postgres://")
	assert.False(t, cfg.CookieSecure)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("APP_ENV", "prod")
	t.Setenv("PORT", "9090")
	t.Setenv("DATABASE_URL", "postgres://u:p@db:5432/notes?sslmode=require")
	t.Setenv("OTP_TTL", "90s")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example,")

	cfg := Load()

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "postgres://u:p@db:5432/notes?sslmode=require", cfg.DBURL)
	assert.Equal(t, 90*time.Second, cfg.OTPTTL)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
	assert.True(t, cfg.CookieSecure)
}

func TestGetEnvFallsBackOnGarbage(t *testing.T) {
	t.Setenv("SOME_INT", "ten")
	t.Setenv("SOME_DUR", "soon")
	t.Setenv("SOME_BOOL", "maybe")

	assert.Equal(t, 7, getEnvInt("SOME_INT", 7))
	assert.Equal(t, time.Second, getEnvDuration("SOME_DUR", time.Second))
	assert.True(t, getEnvBool("SOME_BOOL", true))
}

func TestValidate(t *testing.T) {
	base := Config{
		Env: "dev", Port: 8080, JWTSecret: "s", SessionTTL: time.Hour,
		OTPTTL: time.Minute, OTPMaxAttempts: 5, OTPStore: "memory", MailDriver: "log",
	}
	require.NoError(t, base.Validate())

	prod := base
	prod.Env = "prod"
	prod.JWTSecret = "dev-secret-change-me"
	assert.Error(t, prod.Validate())

	smtp := base
	smtp.MailDriver = "smtp"
	assert.Error(t, smtp.Validate())
	smtp.SMTPHost = "mail.example"
	smtp.SMTPFrom = "noreply@example.com"
	assert.NoError(t, smtp.Validate())

	badStore := base
	badStore.OTPStore = "disk"
	assert.Error(t, badStore.Validate())
}

func TestWithTimeoutFollowsParent(t *testing.T) {
	parent, cancelParent := context.WithCancel(context.Background())
	ctx, cancel := WithTimeout(parent, time.Minute)
	defer cancel()

	cancelParent()
	<-ctx.Done()
	assert.ErrorIs(t, ctx.Err(), context.Canceled)
}
