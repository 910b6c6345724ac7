package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/spec-kit/permit-service/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	require.Equal(t, "mall-permit-service", cfg.App.Name)
	require.Equal(t, "0.0.0.0:8080", cfg.App.Addr())
	require.Equal(t, 30*time.Second, cfg.App.RequestTimeout())
	require.Equal(t, "info", cfg.Logger.Level)
	require.Equal(t, "127.0.0.1:6379", cfg.Redis.Addr)
	require.True(t, cfg.Postgres.RunMigrations)
	require.Equal(t, 60, cfg.Auth.AccessTokenTTLMinutes)
	require.Equal(t, "permits:notifications", cfg.Notification.Stream)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("APP_PORT", "9090")
	t.Setenv("HTTP_REQUEST_TIMEOUT_SECONDS", "5")
	t.Setenv("POSTGRES_RUN_MIGRATIONS", "false")
	t.Setenv("NOTIFY_STREAM", "permits:test")

	cfg, err := config.Load()
	require.NoError(t, err)
	require.Equal(t, "0.0.0.0:9090", cfg.App.Addr())
	require.Equal(t, 5*time.Second, cfg.App.RequestTimeout())
	require.False(t, cfg.Postgres.RunMigrations)
	require.Equal(t, "permits:test", cfg.Notification.Stream)
}

func TestLoad_BadIntFallsBack(t *testing.T) {
	t.Setenv("AUTH_ACCESS_TOKEN_TTL_MINUTES", "soon")
	cfg, err := config.Load()
	require.NoError(t, err)
	require.Equal(t, 60, cfg.Auth.AccessTokenTTLMinutes)
}

func TestLoad_RejectsBadRedisDB(t *testing.T) {
	t.Setenv("REDIS_DB", "not-a-number")
	_, err := config.Load()
	require.Error(t, err)
}
