package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DB_HOST", "db")
	t.Setenv("DB_USER", "course")
	t.Setenv("DB_NAME", "coursehub")
	t.Setenv("JWT_SECRET", "secret")
}

func TestLoad(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		setRequiredEnv(t)

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, 3306, cfg.Database.Port)
		assert.Equal(t, 8080, cfg.Server.Port)
		assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
		assert.Equal(t, "info", cfg.Logging.Level)
		assert.Equal(t, []string{"*"}, cfg.CORS.AllowedOrigins)
		assert.Equal(t, 24*time.Hour, cfg.JWT.AccessTokenExpiry)
		assert.Equal(t, "@every 1h", cfg.Scheduler.ReconcileCron)
		assert.Equal(t, 100, cfg.RateLimit.RequestsPerMinute)
		assert.Equal(t, "localhost:6379", cfg.RedisAddr())
		assert.Equal(t, "course:@tcp(db:3306)/coursehub?parseTime=true&charset=utf8mb4&multiStatements=true&clientFoundRows=true", cfg.DSN())
	})

	t.Run("overrides", func(t *testing.T) {
		setRequiredEnv(t)
		t.Setenv("DB_PORT", "3307")
		t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, ,https://b.example")
		t.Setenv("JWT_ACCESS_TOKEN_EXPIRY", "2h")
		t.Setenv("RECONCILE_CRON", "*/15 * * * *")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, 3307, cfg.Database.Port)
		assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORS.AllowedOrigins)
		assert.Equal(t, 2*time.Hour, cfg.JWT.AccessTokenExpiry)
		assert.Equal(t, "*/15 * * * *", cfg.Scheduler.ReconcileCron)
	})

	tests := []struct {
		name  string
		key   string
		value string
	}{
		{name: "missing DB_HOST", key: "DB_HOST", value: ""},
		{name: "missing JWT_SECRET", key: "JWT_SECRET", value: ""},
		{name: "invalid DB_PORT", key: "DB_PORT", value: "abc"},
		{name: "invalid expiry", key: "JWT_ACCESS_TOKEN_EXPIRY", value: "soon"},
		{name: "invalid cron", key: "RECONCILE_CRON", value: "every now and then"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequiredEnv(t)
			t.Setenv(tt.key, tt.value)

			cfg, err := Load()
			assert.Error(t, err)
			assert.Nil(t, cfg)
		})
	}
}
