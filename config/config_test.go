package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadDefaultsAndSecrets(t *testing.T) {
	t.Setenv("SAFEFAM_DATABASE_URL", "postgres://localhost/safefam?sslmode=disable")
	t.Setenv("SAFEFAM_JWT_SECRET", "access-secret")

	cfg, err := Load(writeConfig(t, "server:\n  port: 9090\n"))
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "postgres://localhost/safefam?sslmode=disable", cfg.Database.URL)
	assert.Equal(t, "access-secret", cfg.JWT.Secret)
	assert.Equal(t, time.Hour, cfg.JWT.AccessTTL)
	assert.Equal(t, 3, cfg.Outbox.RetryAttempts)
	assert.Equal(t, "/metrics", cfg.Metrics.Path)
	assert.True(t, cfg.Reminder.Enabled)
	assert.Empty(t, cfg.Redis.URL)
}

func TestLoadRedisURLFromEnv(t *testing.T) {
	t.Setenv("SAFEFAM_DATABASE_URL", "postgres://localhost/safefam")
	t.Setenv("SAFEFAM_JWT_SECRET", "s")
	t.Setenv("SAFEFAM_REDIS_URL", "redis://cache:6379/0")

	cfg, err := Load(writeConfig(t, "server:\n  port: 9090\n"))
	require.NoError(t, err)
	assert.Equal(t, "redis://cache:6379/0", cfg.Redis.URL)
}

func TestLoadFileValues(t *testing.T) {
	t.Setenv("SAFEFAM_JWT_SECRET", "s")

	cfg, err := Load(writeConfig(t, `
database:
  url: postgres://db/safefam
outbox:
  retry_attempts: 5
  retry_delay: 1m
email:
  provider: smtp
  smtp_host: mail.example.com
`))
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.Outbox.RetryAttempts)
	assert.Equal(t, time.Minute, cfg.Outbox.RetryDelay)
	assert.Equal(t, "smtp", cfg.Email.Provider)
	assert.Equal(t, "mail.example.com", cfg.Email.SMTPHost)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "missing database url", mutate: func(c *Config) { c.Database.URL = "" }, wantErr: "database.url"},
		{name: "missing jwt secret", mutate: func(c *Config) { c.JWT.Secret = "" }, wantErr: "jwt.secret"},
		{name: "unknown email provider", mutate: func(c *Config) { c.Email.Provider = "pigeon" }, wantErr: "email.provider"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Config{}
			c.Database.URL = "postgres://db"
			c.JWT.Secret = "s"
			tt.mutate(c)

			err := c.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestConverters(t *testing.T) {
	jwt := JWTConfig{Secret: "a", RefreshSecret: "b", Issuer: "safefam", AccessTTL: time.Minute, RefreshTTL: time.Hour}
	ac := jwt.ToAuthConfig()
	assert.Equal(t, "a", ac.Secret)
	assert.Equal(t, time.Hour, ac.RefreshTTL)

	rc := (&RedisConfig{URL: "redis://x:6379/1", PoolSize: 4}).ToBrokerConfig()
	assert.Equal(t, "redis://x:6379/1", rc.URL)
	assert.Equal(t, 4, rc.PoolSize)
}
