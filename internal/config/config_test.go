package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Setenv("JWT_SECRET", "a-sufficiently-long-test-secret")
	t.Setenv("DB_PASSWORD", "testpassword")
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "lumiflix", cfg.Database.Name)
	assert.Equal(t, 2*time.Hour, cfg.Auth.SessionTokenExpiry)
	assert.Equal(t, 5, cfg.Auth.MaxFailedLogins)
	assert.Equal(t, 15*time.Minute, cfg.Auth.LockoutDuration)
	assert.Equal(t, 15*time.Minute, cfg.Auth.LoginRateWindow)
	assert.Equal(t, 10, cfg.Auth.LoginRateMax)
	assert.Equal(t, 50, cfg.Providers.PoolMinSize)
	assert.Equal(t, 500, cfg.Providers.PoolMaxSize)
	assert.Equal(t, 250*time.Millisecond, cfg.Providers.PoolSearchDelay)
}

func TestLoad_MissingJWTSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Setenv("DB_PASSWORD", "testpassword")

	_, err := Load()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
}

func TestLoad_MissingDBPassword(t *testing.T) {
	t.Setenv("JWT_SECRET", "a-sufficiently-long-test-secret")
	t.Setenv("DB_PASSWORD", "")

	_, err := Load()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "DB_PASSWORD")
}

func TestLoad_ShortSecretInProduction(t *testing.T) {
	t.Setenv("JWT_SECRET", "short-but-over-16-ch")
	t.Setenv("DB_PASSWORD", "testpassword")
	t.Setenv("ENV", "production")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_InvalidPoolBounds(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("VIDEO_POOL_MIN_SIZE", "500")
	t.Setenv("VIDEO_POOL_MAX_SIZE", "100")

	_, err := Load()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "VIDEO_POOL_MAX_SIZE")
}

func TestLoad_EnvOverrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("MAX_FAILED_LOGINS", "3")
	t.Setenv("LOCKOUT_DURATION", "30m")
	t.Setenv("VIDEO_POOL_MIN_SIZE", "10")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Auth.MaxFailedLogins)
	assert.Equal(t, 30*time.Minute, cfg.Auth.LockoutDuration)
	assert.Equal(t, 10, cfg.Providers.PoolMinSize)
}
