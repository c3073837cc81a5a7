package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App struct {
		Name string `envconfig:"APP_NAME" default:"BuildEstimate"`
		Port int    `envconfig:"PORT" default:"8080"`
		Env  string `envconfig:"APP_ENV" default:"development"`
	}

	DB struct {
		Host     string `envconfig:"DB_HOST" default:"localhost"`
		Port     int    `envconfig:"DB_PORT" default:"5432"`
		User     string `envconfig:"DB_USER" default:"postgres"`
		Password string `envconfig:"DB_PASSWORD" default:""`
		Name     string `envconfig:"DB_NAME" default:"buildestimate"`
	}

	Server struct {
		Timeout         time.Duration `envconfig:"SERVER_TIMEOUT" default:"30s"`
		ShutdownTimeout time.Duration `envconfig:"SERVER_SHUTDOWN_TIMEOUT" default:"10s"`
	}

	Auth struct {
		JWTSecret string        `envconfig:"JWT_SECRET" required:"true"`
		TokenTTL  time.Duration `envconfig:"JWT_TTL" default:"168h"`
	}

	Log struct {
		Level  string `envconfig:"LOG_LEVEL" default:"info"`
		Format string `envconfig:"LOG_FORMAT" default:"console"`
	}

	// Redis backs rate limiting and the conversion lock. Empty address disables both.
	Redis struct {
		Addr     string `envconfig:"REDIS_ADDRESS"`
		Password string `envconfig:"REDIS_PASSWORD"`
		DB       int    `envconfig:"REDIS_DB" default:"0"`
	}

	RateLimit struct {
		Enabled  bool          `envconfig:"ENABLE_RATE_LIMITING" default:"false"`
		Requests int           `envconfig:"RATE_LIMIT_REQUESTS" default:"5"`
		Window   time.Duration `envconfig:"RATE_LIMIT_WINDOW" default:"15m"`
	}

	PubSub struct {
		ProjectID       string `envconfig:"PUBSUB_PROJECT_ID"`
		Topic           string `envconfig:"PUBSUB_TOPIC"`
		CredentialsJSON string `envconfig:"PUBSUB_CREDENTIALS_JSON"`
	}

	Payment struct {
		UPIID        string `envconfig:"UPI_ID"`
		MerchantName string `envconfig:"MERCHANT_NAME" default:"BuildEstimate"`
	}

	Invoice struct {
		DefaultDueDays int `envconfig:"INVOICE_DEFAULT_DUE_DAYS" default:"30"`
	}

	Phone struct {
		Region string `envconfig:"PHONE_REGION" default:"IN"`
	}

	// Units adds trader-specific units to the built-in vocabulary,
	// e.g. EXTRA_UNITS="pallets:Pallets,rolls:Rolls".
	Units struct {
		Extra map[string]string `envconfig:"EXTRA_UNITS"`
	}

	CORS struct {
		AllowedOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS" default:"http://localhost:3000,http://localhost:5173"`
	}
}

func (c *Config) ConnectionString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.DB.User, c.DB.Password, c.DB.Host, c.DB.Port, c.DB.Name)
}

// DefaultDueIn is the gap between issuing an invoice and its default due date.
func (c *Config) DefaultDueIn() time.Duration {
	return time.Duration(c.Invoice.DefaultDueDays) * 24 * time.Hour
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	return &cfg, nil
}
