// Package config loads the client configuration from the environment.
package config

import (
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
)

// Config is the storefront client configuration.
type Config struct {
	AppName        string        `env:"APP_NAME" envDefault:"Storefront"`
	Env            string        `env:"ENV" envDefault:"DEV"`
	APIBaseURL     string        `env:"API_BASE_URL" envDefault:"http://localhost:3001"`
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" envDefault:"10s"`
	CloseDelay     time.Duration `env:"DROPDOWN_CLOSE_DELAY" envDefault:"200ms"`
	DataFolder     string        `env:"FOLDER" envDefault:"./data"`
	Ephemeral      bool          `env:"EPHEMERAL" envDefault:"false"`
	Tracing        bool          `env:"TRACING" envDefault:"false"`
	LogLevel       string        `env:"LOG_LEVEL" envDefault:"info"`
}

// Load reads a .env file when present and parses the environment.
func Load() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, errors.Wrap(err, "[config.Load] parse environment")
	}
	return cfg, nil
}
