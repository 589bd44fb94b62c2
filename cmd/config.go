package cmd

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"shipping/internal/adapters/out/postgres"
	"shipping/internal/adapters/out/providers/easypost"
	"shipping/internal/adapters/out/providers/shippo"
	"shipping/internal/adapters/out/providers/simulator"
	"shipping/internal/pkg/errs"

	"github.com/spf13/viper"
)

type Config struct {
	HTTPPort string
	LogLevel string

	DBDriver          string
	DBDSN             string
	DBHost            string
	DBPort            string
	DBUser            string
	DBPassword        string
	DBName            string
	DBSslMode         string
	DBMaxOpenConns    int
	DBMaxIdleConns    int
	DBConnMaxLifetime time.Duration

	Provider        string
	ProviderTimeout time.Duration
	ShippoToken     string
	ShippoBaseURL   string
	EasyPostAPIKey  string
	EasyPostBaseURL string
	SimulatorNodeID int64

	QuoteSessionTTL    time.Duration
	QuotePurgeSchedule string

	RedisAddr          string
	RedisPassword      string
	RedisDB            int
	RedisStatusChannel string

	LmstfyHost      string
	LmstfyPort      int
	LmstfyNamespace string
	LmstfyToken     string
	LmstfyQueue     string

	JWTSecret    string
	JWTIssuer    string
	WebhookToken string
}

var configDefaults = map[string]any{
	"HTTP_PORT":            "8080",
	"LOG_LEVEL":            "info",
	"DB_DRIVER":            postgres.DriverPostgres,
	"DB_HOST":              "localhost",
	"DB_PORT":              "5432",
	"DB_SSLMODE":           "disable",
	"DB_MAX_OPEN_CONNS":    20,
	"DB_MAX_IDLE_CONNS":    5,
	"DB_CONN_MAX_LIFETIME": "30m",
	"PROVIDER":             simulator.Name,
	"PROVIDER_TIMEOUT":     "15s",
	"SIMULATOR_NODE_ID":    1,
	"QUOTE_SESSION_TTL":    "30m",
	"QUOTE_PURGE_SCHEDULE": "0 * * * * *",
	"REDIS_DB":             0,
	"LMSTFY_PORT":          7777,
	"LMSTFY_QUEUE":         "shipping_email",
	"REDIS_STATUS_CHANNEL": "shipping.shipment.status",
	"DB_USER":              "",
	"DB_PASSWORD":          "",
	"DB_NAME":              "",
	"DB_DSN":               "",
	"SHIPPO_TOKEN":         "",
	"SHIPPO_BASE_URL":      "",
	"EASYPOST_API_KEY":     "",
	"EASYPOST_BASE_URL":    "",
	"REDIS_ADDR":           "",
	"REDIS_PASSWORD":       "",
	"LMSTFY_HOST":          "",
	"LMSTFY_NAMESPACE":     "",
	"LMSTFY_TOKEN":         "",
	"JWT_SECRET":           "",
	"JWT_ISSUER":           "",
	"WEBHOOK_TOKEN":        "",
}

// NewViper returns a viper instance reading the environment, with the
// defaults set. configFile, when not empty, is read on top.
func NewViper(configFile string) (*viper.Viper, error) {
	v := viper.New()
	for key, value := range configDefaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config failed: %w", err)
		}
	}
	return v, nil
}

// LoadConfig reads the configuration from v and validates it.
func LoadConfig(v *viper.Viper) (Config, error) {
	cfg := Config{
		HTTPPort: v.GetString("HTTP_PORT"),
		LogLevel: strings.ToLower(v.GetString("LOG_LEVEL")),

		DBDriver:          strings.ToLower(v.GetString("DB_DRIVER")),
		DBDSN:             v.GetString("DB_DSN"),
		DBHost:            v.GetString("DB_HOST"),
		DBPort:            v.GetString("DB_PORT"),
		DBUser:            v.GetString("DB_USER"),
		DBPassword:        v.GetString("DB_PASSWORD"),
		DBName:            v.GetString("DB_NAME"),
		DBSslMode:         v.GetString("DB_SSLMODE"),
		DBMaxOpenConns:    v.GetInt("DB_MAX_OPEN_CONNS"),
		DBMaxIdleConns:    v.GetInt("DB_MAX_IDLE_CONNS"),
		DBConnMaxLifetime: v.GetDuration("DB_CONN_MAX_LIFETIME"),

		Provider:        strings.ToLower(v.GetString("PROVIDER")),
		ProviderTimeout: v.GetDuration("PROVIDER_TIMEOUT"),
		ShippoToken:     v.GetString("SHIPPO_TOKEN"),
		ShippoBaseURL:   v.GetString("SHIPPO_BASE_URL"),
		EasyPostAPIKey:  v.GetString("EASYPOST_API_KEY"),
		EasyPostBaseURL: v.GetString("EASYPOST_BASE_URL"),
		SimulatorNodeID: v.GetInt64("SIMULATOR_NODE_ID"),

		QuoteSessionTTL:    v.GetDuration("QUOTE_SESSION_TTL"),
		QuotePurgeSchedule: v.GetString("QUOTE_PURGE_SCHEDULE"),

		RedisAddr:          v.GetString("REDIS_ADDR"),
		RedisPassword:      v.GetString("REDIS_PASSWORD"),
		RedisDB:            v.GetInt("REDIS_DB"),
		RedisStatusChannel: v.GetString("REDIS_STATUS_CHANNEL"),

		LmstfyHost:      v.GetString("LMSTFY_HOST"),
		LmstfyPort:      v.GetInt("LMSTFY_PORT"),
		LmstfyNamespace: v.GetString("LMSTFY_NAMESPACE"),
		LmstfyToken:     v.GetString("LMSTFY_TOKEN"),
		LmstfyQueue:     v.GetString("LMSTFY_QUEUE"),

		JWTSecret:    v.GetString("JWT_SECRET"),
		JWTIssuer:    v.GetString("JWT_ISSUER"),
		WebhookToken: v.GetString("WEBHOOK_TOKEN"),
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	var problems []error
	require := func(value, name string) {
		if strings.TrimSpace(value) == "" {
			problems = append(problems, errs.NewValueIsRequiredError(name))
		}
	}

	require(c.HTTPPort, "HTTP_PORT")
	require(c.JWTSecret, "JWT_SECRET")
	require(c.WebhookToken, "WEBHOOK_TOKEN")
	if c.DBDSN == "" {
		require(c.DBName, "DB_NAME")
		require(c.DBUser, "DB_USER")
	}

	switch c.DBDriver {
	case postgres.DriverPostgres, postgres.DriverMySQL:
	default:
		problems = append(problems, errs.NewValueIsInvalidErrorWithCause("DB_DRIVER",
			fmt.Errorf("%q is not one of %s, %s", c.DBDriver, postgres.DriverPostgres, postgres.DriverMySQL)))
	}

	switch c.Provider {
	case simulator.Name:
	case shippo.Name:
		require(c.ShippoToken, "SHIPPO_TOKEN")
	case easypost.Name:
		require(c.EasyPostAPIKey, "EASYPOST_API_KEY")
	default:
		problems = append(problems, errs.NewValueIsInvalidErrorWithCause("PROVIDER",
			fmt.Errorf("%q is not one of %s, %s, %s", c.Provider, simulator.Name, shippo.Name, easypost.Name)))
	}

	if c.ProviderTimeout <= 0 {
		problems = append(problems, errs.NewValueIsOutOfRangeError("PROVIDER_TIMEOUT", c.ProviderTimeout, "1ns", "unbounded"))
	}
	if c.LmstfyHost != "" {
		require(c.LmstfyNamespace, "LMSTFY_NAMESPACE")
		require(c.LmstfyToken, "LMSTFY_TOKEN")
	}
	return errors.Join(problems...)
}

// DSN returns DB_DSN when set, otherwise builds one from the DB_* parts.
func (c Config) DSN() string {
	if c.DBDSN != "" {
		return c.DBDSN
	}
	if c.DBDriver == postgres.DriverMySQL {
		return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=true&loc=UTC",
			c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName)
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSslMode)
}

func (c Config) PoolSettings() postgres.PoolSettings {
	return postgres.PoolSettings{
		MaxOpenConns:    c.DBMaxOpenConns,
		MaxIdleConns:    c.DBMaxIdleConns,
		ConnMaxLifetime: c.DBConnMaxLifetime,
	}
}
