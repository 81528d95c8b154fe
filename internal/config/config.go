package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type StoreBackend string

const (
	StoreMemory   StoreBackend = "memory"
	StoreRedis    StoreBackend = "redis"
	StorePostgres StoreBackend = "postgres"
)

type Environment string

const (
	Development Environment = "development"
	Production  Environment = "production"
)

func (e Environment) IsProduction() bool {
	return e == Production
}

type AppConfig struct {
	Port        string      `envconfig:"APP_PORT" default:"8080"`
	Environment Environment `envconfig:"APP_ENV" default:"development"`
	LogLevel    string      `envconfig:"LOG_LEVEL" default:"debug"`
}

type CartConfig struct {
	Store StoreBackend  `envconfig:"CART_STORE" default:"memory"`
	TTL   time.Duration `envconfig:"CART_TTL" default:"168h"`
}

type RedisConfig struct {
	URL          string        `envconfig:"REDIS_URL" default:"redis://localhost:6379/0"`
	ReadTimeout  time.Duration `envconfig:"REDIS_READ_TIMEOUT" default:"3s"`
	WriteTimeout time.Duration `envconfig:"REDIS_WRITE_TIMEOUT" default:"3s"`
	DialTimeout  time.Duration `envconfig:"REDIS_DIAL_TIMEOUT" default:"5s"`
}

type PostgresConfig struct {
	Host            string        `envconfig:"DB_HOST"`
	Port            string        `envconfig:"DB_PORT" default:"5432"`
	User            string        `envconfig:"DB_USER"`
	Password        string        `envconfig:"DB_PASSWORD"`
	DBName          string        `envconfig:"DB_NAME"`
	SSLMode         string        `envconfig:"DB_SSLMODE" default:"disable"`
	MaxConns        int32         `envconfig:"DB_MAX_CONNS" default:"10"`
	MinConns        int32         `envconfig:"DB_MIN_CONNS" default:"2"`
	MaxConnLifetime time.Duration `envconfig:"DB_MAX_CONN_LIFETIME" default:"30m"`
	MigrationsPath  string        `envconfig:"MIGRATIONS_PATH" default:"migrations"`
}

type CheckoutConfig struct {
	SubmitDelay   time.Duration `envconfig:"CHECKOUT_SUBMIT_DELAY" default:"1s"`
	SuccessWindow time.Duration `envconfig:"CHECKOUT_SUCCESS_WINDOW" default:"3s"`
	FailureWindow time.Duration `envconfig:"CHECKOUT_FAILURE_WINDOW" default:"5s"`
}

// OrderConfig describes the outbound order message and the deep link it is sent through.
type OrderConfig struct {
	Phone            string `envconfig:"ORDER_PHONE" default:"7440683678"`
	Location         string `envconfig:"ORDER_LOCATION" default:"Building 4, CSVTU Newai"`
	Currency         string `envconfig:"ORDER_CURRENCY" default:"₹"`
	Title            string `envconfig:"ORDER_TITLE" default:"New Order from Didi ki Rasoi"`
	Timezone         string `envconfig:"ORDER_TIMEZONE" default:"Asia/Kolkata"`
	MessagingBaseURL string `envconfig:"MESSAGING_BASE_URL" default:"https://wa.me"`
}

type SearchConfig struct {
	Debounce time.Duration `envconfig:"SEARCH_DEBOUNCE" default:"300ms"`
}

type Config struct {
	App      AppConfig
	Cart     CartConfig
	Redis    RedisConfig
	Postgres PostgresConfig
	Checkout CheckoutConfig
	Order    OrderConfig
	Search   SearchConfig
}

// NewConfig reads .env (when present) and the process environment.
func NewConfig() (*Config, error) {
	return Load(".env")
}

func Load(path string) (*Config, error) {
	if path != "" {
		if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load .env: %w", err)
		}
	}

	cfg := &Config{}
	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.Cart.Store {
	case StoreMemory, StoreRedis:
	case StorePostgres:
		if c.Postgres.Host == "" {
			return errors.New("DB_HOST is required for the postgres cart store")
		}
		if c.Postgres.User == "" {
			return errors.New("DB_USER is required for the postgres cart store")
		}
		if c.Postgres.DBName == "" {
			return errors.New("DB_NAME is required for the postgres cart store")
		}
	default:
		return fmt.Errorf("unknown CART_STORE %q", c.Cart.Store)
	}

	if c.Checkout.SubmitDelay < 0 || c.Checkout.SuccessWindow <= 0 || c.Checkout.FailureWindow <= 0 {
		return errors.New("checkout delays must be positive")
	}
	if c.Order.Phone == "" {
		return errors.New("ORDER_PHONE is required")
	}
	return nil
}
