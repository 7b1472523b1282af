// internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

const minSecretBytes = 16

type Config struct {
	Server struct {
		Addr            string        `yaml:"addr"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
		// TrustProxy takes the client IP from X-Forwarded-For/X-Real-IP.
		// Enable it only behind a proxy that overwrites those headers.
		TrustProxy bool `yaml:"trust_proxy"`
	} `yaml:"server"`

	Log struct {
		Level       string `yaml:"level"`
		Environment string `yaml:"environment"`
	} `yaml:"log"`

	Storage struct {
		Driver string `yaml:"driver"`
		DSN    string `yaml:"dsn"`
	} `yaml:"storage"`

	// RabbitMQ is optional. Without a URL events are dropped.
	RabbitMQ struct {
		URL string `yaml:"url"`
	} `yaml:"rabbitmq"`

	Workers int `yaml:"workers"`

	Auth struct {
		JWTSecret  string        `yaml:"jwt_secret"`
		TokenTTL   time.Duration `yaml:"token_ttl"`
		BcryptCost int           `yaml:"bcrypt_cost"`
	} `yaml:"auth"`

	Demo struct {
		Email  string `yaml:"email"`
		Secret string `yaml:"secret"`
		Seed   bool   `yaml:"seed"`
	} `yaml:"demo"`

	TenantDefaults struct {
		BrandColor     string   `yaml:"brand_color"`
		Departments    []string `yaml:"departments"`
		IntroTemplate  string   `yaml:"intro_template"`
		CareersPageURL string   `yaml:"careers_page_url"`
	} `yaml:"tenant_defaults"`

	RateLimit struct {
		RPS   float64 `yaml:"rps"`
		Burst int     `yaml:"burst"`
	} `yaml:"rate_limit"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	cfg := &Config{}
	cfg.Server.Addr = ":8080"
	cfg.Server.ShutdownTimeout = 10 * time.Second
	cfg.Log.Level = "info"
	cfg.Log.Environment = "production"
	cfg.Storage.Driver = "sqlite"
	cfg.Storage.DSN = "file:talent-pipeline.db"
	cfg.Workers = 3
	cfg.Auth.TokenTTL = 24 * time.Hour
	cfg.Demo.Email = "demo@company.com"
	cfg.Demo.Secret = "demo123"
	cfg.Demo.Seed = true
	cfg.RateLimit.RPS = 1
	cfg.RateLimit.Burst = 5
	return cfg
}

// LoadConfig layers the YAML file at path over the defaults, then applies
// TP_* environment overrides. A missing file is not an error.
func LoadConfig(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("failed to read config file: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to unmarshal config: %w", err)
			}
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	setEnv("TP_ADDR", &c.Server.Addr)
	setEnv("TP_LOG_LEVEL", &c.Log.Level)
	setEnv("TP_ENV", &c.Log.Environment)
	setEnv("TP_STORAGE_DRIVER", &c.Storage.Driver)
	setEnv("TP_STORAGE_DSN", &c.Storage.DSN)
	setEnv("TP_RABBITMQ_URL", &c.RabbitMQ.URL)
	setEnv("TP_JWT_SECRET", &c.Auth.JWTSecret)
	setEnv("TP_DEMO_EMAIL", &c.Demo.Email)
	setEnv("TP_DEMO_SECRET", &c.Demo.Secret)

	if v := os.Getenv("TP_WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("TP_WORKERS: %w", err)
		}
		c.Workers = n
	}
	if v := os.Getenv("TP_TOKEN_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("TP_TOKEN_TTL: %w", err)
		}
		c.Auth.TokenTTL = d
	}
	if v := os.Getenv("TP_TRUST_PROXY"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("TP_TRUST_PROXY: %w", err)
		}
		c.Server.TrustProxy = b
	}
	if v := os.Getenv("TP_DEMO_SEED"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("TP_DEMO_SEED: %w", err)
		}
		c.Demo.Seed = b
	}
	return nil
}

func setEnv(key string, dst *string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func (c *Config) Validate() error {
	var errs []error
	switch c.Storage.Driver {
	case "memory", "sqlite", "postgres":
	default:
		errs = append(errs, fmt.Errorf("storage.driver %q is not one of memory, sqlite, postgres", c.Storage.Driver))
	}
	if len(c.Auth.JWTSecret) < minSecretBytes {
		errs = append(errs, fmt.Errorf("auth.jwt_secret must be at least %d bytes", minSecretBytes))
	}
	if c.Workers < 1 {
		errs = append(errs, errors.New("workers must be at least 1"))
	}
	if c.Auth.TokenTTL <= 0 {
		errs = append(errs, errors.New("auth.token_ttl must be positive"))
	}
	// Zero selects bcrypt's default cost.
	if c.Auth.BcryptCost != 0 && (c.Auth.BcryptCost < 4 || c.Auth.BcryptCost > 31) {
		errs = append(errs, errors.New("auth.bcrypt_cost must be between 4 and 31"))
	}
	return errors.Join(errs...)
}
