package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/dwikikusuma/shopping-browse/pkg/postgres"
)

type Config struct {
	AppEnv   string `env:"APP_ENV" envDefault:"dev"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	HTTPPort int `env:"HTTP_PORT" envDefault:"8080"`

	Postgres postgres.Config `envPrefix:"POSTGRES_"`
	Catalog  CatalogConfig   `envPrefix:"CATALOG_"`
	Shopper  ShopperConfig   `envPrefix:"SHOPPER_"`
}

// CatalogConfig covers both sides of the catalog: the server seed file and
// the client used by the shopper.
type CatalogConfig struct {
	URL       string        `env:"URL" envDefault:"http://localhost:8080"`
	PageSize  int           `env:"PAGE_SIZE" envDefault:"20"`
	RateLimit float64       `env:"RATE_LIMIT" envDefault:"10"`
	RateBurst int           `env:"RATE_BURST" envDefault:"5"`
	Timeout   time.Duration `env:"TIMEOUT" envDefault:"5s"`
	SeedFile  string        `env:"SEED_FILE"`
}

type ShopperConfig struct {
	DataDir     string `env:"DATA_DIR"`
	RecentLimit int    `env:"RECENT_LIMIT" envDefault:"10"`
	EventBuffer int    `env:"EVENT_BUFFER" envDefault:"64"`
}

func Load() (Config, error) {
	var cfg Config
	if err := Parse(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Parse loads configuration from environment variables into target.
func Parse(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}
