package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("SECRET_KEY", "")
	t.Setenv("TOKEN_TTL", "")

	cfg := Load()

	assert.Equal(t, InsecureDefaultSecret, cfg.SecretKey)
	assert.True(t, cfg.InsecureSecret)
	assert.Equal(t, 30*24*time.Hour, cfg.TokenTTL)
	assert.Equal(t, 10*time.Minute, cfg.LoginCodeTTL)
	assert.Equal(t, []string{"http://localhost:5173", "http://127.0.0.1:5173"}, cfg.CORSOrigins)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("SECRET_KEY", "s3cret")
	t.Setenv("LOGIN_CODE_TTL", "2m")
	t.Setenv("CODE_REQUEST_LIMIT", "3")
	t.Setenv("CORS_ORIGINS", " https://a.example , ,https://b.example")

	cfg := Load()

	assert.Equal(t, "s3cret", cfg.SecretKey)
	assert.False(t, cfg.InsecureSecret)
	assert.Equal(t, 2*time.Minute, cfg.LoginCodeTTL)
	assert.Equal(t, 3, cfg.CodeRequestLimit)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("CODE_REQUEST_LIMIT", "many")
	t.Setenv("CODE_REQUEST_WINDOW", "soon")

	cfg := Load()

	assert.Equal(t, 5, cfg.CodeRequestLimit)
	assert.Equal(t, 15*time.Minute, cfg.CodeRequestWindow)
}
