package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("PORT", "")
	t.Setenv("STORE_BACKEND", "")
	t.Setenv("DEDUPE_WINDOW", "")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example")

	cfg := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, BackendSQLite, cfg.StoreBackend)
	assert.Equal(t, 2*time.Second, cfg.DedupeWindow)
	assert.Equal(t, 72*time.Hour, cfg.JWT.TTL)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
}

func TestLoad_InvalidDurationFallsBack(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("JWT_TTL", "forever")

	cfg := Load()
	assert.Equal(t, 72*time.Hour, cfg.JWT.TTL)
}

func TestR2Config_Enabled(t *testing.T) {
	assert.False(t, R2Config{AccountID: "a"}.Enabled())
	assert.True(t, R2Config{AccountID: "a", AccessKeyID: "b", SecretAccessKey: "c", BucketName: "d", PublicBaseURL: "e"}.Enabled())
}
