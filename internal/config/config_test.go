package config

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMemoryDriver(t *testing.T) {
	t.Setenv("DB_DRIVER", DriverMemory)
	t.Setenv("JWT_SECRET_KEY", "secret")
	t.Setenv("APP_TIMEZONE", "Asia/Jakarta")
	t.Setenv("RECENT_PUNCHES_LIMIT", "25")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DriverMemory, cfg.Database.Driver)
	assert.Equal(t, "Asia/Jakarta", cfg.App.Timezone)
	assert.Equal(t, 25, cfg.App.RecentPunchesLimit)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORS.AllowedOrigins)

	level, err := cfg.Log.SlogLevel()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"postgres needs password", map[string]string{"DB_DRIVER": DriverPostgres}, "DB_PASSWORD is required"},
		{"unknown driver", map[string]string{"DB_DRIVER": "sqlite"}, "DB_DRIVER must be"},
		{"missing secret", map[string]string{"JWT_SECRET_KEY": ""}, "JWT_SECRET_KEY is required"},
		{"bad port", map[string]string{"APP_PORT": "eighty"}, "invalid APP_PORT"},
		{"bad timezone", map[string]string{"APP_TIMEZONE": "Mars/Olympus"}, "invalid APP_TIMEZONE"},
		{"bad limit", map[string]string{"RECENT_PUNCHES_LIMIT": "0"}, "RECENT_PUNCHES_LIMIT must be positive"},
		{"bad level", map[string]string{"LOG_LEVEL": "loud"}, "invalid LOG_LEVEL"},
		{"bad expiration", map[string]string{"JWT_ACCESS_EXPIRATION_TIME": "soon"}, "invalid JWT_ACCESS_EXPIRATION_TIME"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			t.Setenv("DB_DRIVER", DriverMemory)
			t.Setenv("DB_PASSWORD", "")
			t.Setenv("JWT_SECRET_KEY", "secret")
			for k, v := range c.env {
				t.Setenv(k, v)
			}

			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), c.want)
		})
	}
}

func TestDatabaseURL(t *testing.T) {
	cfg := Config{Database: DatabaseConfig{User: "u", Password: "p", Host: "db", Port: 5433, Name: "tk", SSLMode: "require"}}
	assert.Equal(t, "postgres://u:p@db:5433/tk?sslmode=require", cfg.DatabaseURL())
}
