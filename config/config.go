package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"rental-savings/domain"
)

const (
	ProviderExchangeRateAPI = "exchangerate-api"
	ProviderStatic          = "static"
)

// Config runtime settings, read from the environment
type Config struct {
	Addr     string `envconfig:"ADDR" default:":8080"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	RatesProvider string        `envconfig:"RATES_PROVIDER" default:"exchangerate-api"`
	RatesURL      string        `envconfig:"RATES_API_URL" default:"https://api.exchangerate-api.com/v4/latest"`
	RatesTimeout  time.Duration `envconfig:"RATES_TIMEOUT" default:"5s"`
	RatesCacheTTL time.Duration `envconfig:"RATES_CACHE_TTL" default:"1h"`
	RefreshSpec   string        `envconfig:"RATES_REFRESH_SPEC" default:"*/30 * * * *"`
	DefaultBase   string        `envconfig:"DEFAULT_BASE" default:"USD"`

	// RedisAddr enables the shared rate cache when set
	RedisAddr string `envconfig:"REDIS_ADDR"`

	RefreshLimit  int           `envconfig:"REFRESH_LIMIT" default:"5"`
	RefreshWindow time.Duration `envconfig:"REFRESH_WINDOW" default:"1m"`

	CORSOrigins []string `envconfig:"CORS_ORIGINS" default:"*"`
}

// Load reads .env files when present, then the environment. Missing .env
// files are not an error.
func Load(logger log.Logger, envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, path := range envFiles {
		if _, err := os.Stat(path); err != nil {
			level.Debug(logger).Log("msg", "no env file", "path", path)
			continue
		}
		if err := godotenv.Load(path); err != nil {
			return nil, fmt.Errorf("loading %s: %w", path, err)
		}
		level.Info(logger).Log("msg", "loaded env file", "path", path)
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("processing env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the service cannot run with
func (c *Config) Validate() error {
	var errs []error
	switch c.RatesProvider {
	case ProviderExchangeRateAPI, ProviderStatic:
	default:
		errs = append(errs, fmt.Errorf("unknown RATES_PROVIDER %q", c.RatesProvider))
	}
	if c.RatesTimeout <= 0 {
		errs = append(errs, errors.New("RATES_TIMEOUT must be positive"))
	}
	if c.RatesCacheTTL <= 0 {
		errs = append(errs, errors.New("RATES_CACHE_TTL must be positive"))
	}
	if c.RefreshLimit <= 0 || c.RefreshWindow <= 0 {
		errs = append(errs, errors.New("REFRESH_LIMIT and REFRESH_WINDOW must be positive"))
	}
	if !c.Base().Valid() {
		errs = append(errs, fmt.Errorf("DEFAULT_BASE %q is not a currency code", c.DefaultBase))
	}
	return errors.Join(errs...)
}

// Base the default base currency
func (c *Config) Base() domain.Currency {
	return domain.ParseCurrency(c.DefaultBase)
}

// Level the go-kit level filter for LogLevel
func (c *Config) Level() level.Option {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return level.AllowDebug()
	case "warn":
		return level.AllowWarn()
	case "error":
		return level.AllowError()
	default:
		return level.AllowInfo()
	}
}
