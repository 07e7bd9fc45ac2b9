package app

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"

	"github.com/alex2808pl/url-shortener/pkg/jwtx"
)

// Config is the service configuration. Values come from environment
// variables, optionally layered over a YAML file named by CONFIG_PATH.
type Config struct {
	// Base64 encoded HMAC keys. Required, distinct, and at least as long as
	// the algorithm's hash output.
	AccessSecret  string `yaml:"access_secret" env:"AUTH_ACCESS_SECRET" env-required:"true"`
	RefreshSecret string `yaml:"refresh_secret" env:"AUTH_REFRESH_SECRET" env-required:"true"`
	Algorithm     string `yaml:"algorithm" env:"AUTH_ALGORITHM" env-default:"HS256"`

	DatabaseFile string `yaml:"database_file" env:"AUTH_DATABASE_FILE" env-default:"auth.db"`
	PepperFile   string `yaml:"pepper_file" env:"AUTH_PEPPER_FILE" env-default:"pepper"`

	// Seed user created at startup when SeedLogin is set. An empty password
	// is generated and logged once.
	SeedLogin     string   `yaml:"seed_login" env:"AUTH_SEED_LOGIN"`
	SeedPassword  string   `yaml:"seed_password" env:"AUTH_SEED_PASSWORD"`
	SeedFirstName string   `yaml:"seed_first_name" env:"AUTH_SEED_FIRST_NAME"`
	SeedRoles     []string `yaml:"seed_roles" env:"AUTH_SEED_ROLES" env-default:"USER"`

	// Requests per RateLimitWindow per client IP, or per caller and IP for
	// the account limit; 0 disables the limit.
	CredentialRateLimit int           `yaml:"credential_rate_limit" env:"RATE_LIMIT_CREDENTIAL" env-default:"5"`
	RenewalRateLimit    int           `yaml:"renewal_rate_limit" env:"RATE_LIMIT_RENEWAL" env-default:"20"`
	AccountRateLimit    int           `yaml:"account_rate_limit" env:"RATE_LIMIT_ACCOUNT" env-default:"60"`
	RateLimitWindow     time.Duration `yaml:"rate_limit_window" env:"RATE_LIMIT_WINDOW" env-default:"1m"`
	TrustProxy          bool          `yaml:"trust_proxy" env:"TRUST_PROXY" env-default:"false"`

	Env                 string        `yaml:"env" env:"ENV" env-default:"dev"`
	LogLevel            string        `yaml:"log_level" env:"LOG_LEVEL" env-default:"info"`
	LogFormat           string        `yaml:"log_format" env:"LOG_FORMAT" env-default:"json"`
	Port                int           `yaml:"port" env:"PORT" env-default:"8080"`
	ShutdownGracePeriod time.Duration `yaml:"shutdown_grace_period" env:"SHUTDOWN_GRACE_PERIOD" env-default:"10s"`
	RequestTimeout      time.Duration `yaml:"request_timeout" env:"REQUEST_TIMEOUT" env-default:"15s"`
}

// LoadConfig reads the file at path (or CONFIG_PATH when path is empty),
// overlays the environment and validates the result. With neither set only
// the environment is read.
func LoadConfig(path string) (Config, error) {
	var cfg Config

	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}

	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return Config{}, fmt.Errorf("config file %q: %w", path, err)
		}
		// ReadConfig also applies env overrides and defaults.
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to read config: %w", err)
		}
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to read env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks everything LoadKeys does not.
func (c Config) Validate() error {
	var errs []error

	// An env var that is set but empty satisfies env-required.
	if c.AccessSecret == "" || c.RefreshSecret == "" {
		errs = append(errs, fmt.Errorf("AUTH_ACCESS_SECRET and AUTH_REFRESH_SECRET: %w", jwtx.ErrKeyMissing))
	}
	if _, err := jwtx.NewCodec(c.Algorithm); err != nil {
		errs = append(errs, fmt.Errorf("AUTH_ALGORITHM: %w", err))
	}
	if c.DatabaseFile == "" {
		errs = append(errs, errors.New("AUTH_DATABASE_FILE must not be empty"))
	}
	if c.PepperFile == "" {
		errs = append(errs, errors.New("AUTH_PEPPER_FILE must not be empty"))
	}
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("PORT %d out of range", c.Port))
	}
	if c.CredentialRateLimit < 0 || c.RenewalRateLimit < 0 || c.AccountRateLimit < 0 {
		errs = append(errs, errors.New("rate limits must not be negative"))
	}
	if (c.CredentialRateLimit > 0 || c.RenewalRateLimit > 0 || c.AccountRateLimit > 0) && c.RateLimitWindow <= 0 {
		errs = append(errs, errors.New("RATE_LIMIT_WINDOW must be positive"))
	}
	if c.ShutdownGracePeriod <= 0 {
		errs = append(errs, errors.New("SHUTDOWN_GRACE_PERIOD must be positive"))
	}
	if c.RequestTimeout <= 0 {
		errs = append(errs, errors.New("REQUEST_TIMEOUT must be positive"))
	}

	return errors.Join(errs...)
}
