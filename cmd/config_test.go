package cmd

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"shipping/internal/adapters/out/postgres"
	"shipping/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("WEBHOOK_TOKEN", "hook")
	t.Setenv("DB_NAME", "shipping")
	t.Setenv("DB_USER", "shipping")
}

func TestLoadConfig_Defaults(t *testing.T) {
	setRequiredEnv(t)

	v, err := NewViper("")
	require.NoError(t, err)
	cfg, err := LoadConfig(v)
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.HTTPPort)
	assert.Equal(t, postgres.DriverPostgres, cfg.DBDriver)
	assert.Equal(t, "simulator", cfg.Provider)
	assert.Equal(t, 15*time.Second, cfg.ProviderTimeout)
	assert.Equal(t, 30*time.Minute, cfg.QuoteSessionTTL)
	assert.Equal(t, 30*time.Minute, cfg.DBConnMaxLifetime)
	assert.Equal(t, 7777, cfg.LmstfyPort)
	assert.Equal(t, "shipping_email", cfg.LmstfyQueue)
	assert.Empty(t, cfg.RedisAddr)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("PROVIDER", "Shippo")
	t.Setenv("SHIPPO_TOKEN", "shippo_test_x")
	t.Setenv("PROVIDER_TIMEOUT", "3s")
	t.Setenv("DB_MAX_OPEN_CONNS", "7")

	v, err := NewViper("")
	require.NoError(t, err)
	cfg, err := LoadConfig(v)
	require.NoError(t, err)

	assert.Equal(t, "shippo", cfg.Provider)
	assert.Equal(t, "shippo_test_x", cfg.ShippoToken)
	assert.Equal(t, 3*time.Second, cfg.ProviderTimeout)
	assert.Equal(t, 7, cfg.PoolSettings().MaxOpenConns)
}

func TestLoadConfig_ReadsConfigFile(t *testing.T) {
	setRequiredEnv(t)
	path := filepath.Join(t.TempDir(), "shipping.yaml")
	require.NoError(t, os.WriteFile(path, []byte("HTTP_PORT: \"9090\"\nQUOTE_SESSION_TTL: 5m\n"), 0o600))

	v, err := NewViper(path)
	require.NoError(t, err)
	cfg, err := LoadConfig(v)
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.HTTPPort)
	assert.Equal(t, 5*time.Minute, cfg.QuoteSessionTTL)
}

func TestNewViper_MissingConfigFile(t *testing.T) {
	_, err := NewViper(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestConfig_Validate(t *testing.T) {
	valid := Config{
		HTTPPort:        "8080",
		DBDriver:        postgres.DriverPostgres,
		DBName:          "shipping",
		DBUser:          "shipping",
		Provider:        "simulator",
		ProviderTimeout: time.Second,
		JWTSecret:       "secret",
		WebhookToken:    "hook",
	}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(c *Config)
		target error
		text   string
	}{
		{"missing jwt secret", func(c *Config) { c.JWTSecret = " " }, errs.ErrValueIsRequired, "JWT_SECRET"},
		{"missing webhook token", func(c *Config) { c.WebhookToken = "" }, errs.ErrValueIsRequired, "WEBHOOK_TOKEN"},
		{"missing db name", func(c *Config) { c.DBName = "" }, errs.ErrValueIsRequired, "DB_NAME"},
		{"unknown driver", func(c *Config) { c.DBDriver = "sqlite" }, errs.ErrValueIsInvalid, "DB_DRIVER"},
		{"unknown provider", func(c *Config) { c.Provider = "fedex" }, errs.ErrValueIsInvalid, "PROVIDER"},
		{"shippo without token", func(c *Config) { c.Provider = "shippo" }, errs.ErrValueIsRequired, "SHIPPO_TOKEN"},
		{"easypost without key", func(c *Config) { c.Provider = "easypost" }, errs.ErrValueIsRequired, "EASYPOST_API_KEY"},
		{"zero timeout", func(c *Config) { c.ProviderTimeout = 0 }, errs.ErrValueIsOutOfRange, "PROVIDER_TIMEOUT"},
		{"lmstfy without token", func(c *Config) {
			c.LmstfyHost = "lmstfy"
			c.LmstfyNamespace = "shipping"
		}, errs.ErrValueIsRequired, "LMSTFY_TOKEN"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.target)
			assert.Contains(t, err.Error(), tt.text)
		})
	}

	t.Run("dsn replaces the parts", func(t *testing.T) {
		cfg := valid
		cfg.DBName, cfg.DBUser = "", ""
		cfg.DBDSN = "postgres://u:p@db/shipping"
		assert.NoError(t, cfg.Validate())
	})

	t.Run("reports every problem", func(t *testing.T) {
		err := Config{}.Validate()
		require.Error(t, err)
		for _, key := range []string{"HTTP_PORT", "JWT_SECRET", "WEBHOOK_TOKEN", "DB_DRIVER", "PROVIDER"} {
			assert.Contains(t, err.Error(), key)
		}
	})
}

func TestConfig_DSN(t *testing.T) {
	cfg := Config{
		DBDriver:   postgres.DriverPostgres,
		DBHost:     "db",
		DBPort:     "5432",
		DBUser:     "u",
		DBPassword: "p",
		DBName:     "shipping",
		DBSslMode:  "disable",
	}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=shipping sslmode=disable", cfg.DSN())

	cfg.DBDriver = postgres.DriverMySQL
	cfg.DBPort = "3306"
	assert.Equal(t, "u:p@tcp(db:3306)/shipping?charset=utf8mb4&parseTime=true&loc=UTC", cfg.DSN())

	cfg.DBDSN = "explicit"
	assert.Equal(t, "explicit", cfg.DSN())
}
