package config

import (
	"fmt"
	"log/slog"
	"net/mail"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
)

type Config struct {
	DatabaseURL string `env:"DATABASE_URL,required" validate:"required"`

	WidgetAccessKey string   `env:"WIDGET_ACCESS_KEY,required" validate:"required"`
	AdminAPIToken   string   `env:"ADMIN_API_TOKEN,required" validate:"required,min=24"`
	AllowedOrigins  []string `env:"ALLOWED_ORIGINS" envSeparator:","`

	CatalogLoadTimeout          time.Duration `env:"CATALOG_LOAD_TIMEOUT" envDefault:"15s" validate:"gt=0"`
	CatalogCacheTTL             time.Duration `env:"CATALOG_CACHE_TTL" envDefault:"60s" validate:"gt=0"`
	ResetPrintsOnCategoryChange bool          `env:"RESET_PRINTS_ON_CATEGORY_CHANGE" envDefault:"false"`

	CacheProvider         string `env:"CACHE_PROVIDER" envDefault:"memory" validate:"omitempty,oneof=memory redis"`
	RedisConnectionString string `env:"REDIS_CONNECTION_STRING" validate:"required_if=CacheProvider redis"`

	EmailProvider    string `env:"EMAIL_PROVIDER" validate:"omitempty,oneof=postmark mailgun resend"`
	EmailAPIKey      string `env:"EMAIL_API_KEY"`
	EmailFrom        string `env:"EMAIL_FROM"`
	EmailDomain      string `env:"EMAIL_DOMAIN"`
	OrderNotifyEmail string `env:"ORDER_NOTIFY_EMAIL"`
	CurrencySymbol   string `env:"CURRENCY_SYMBOL" envDefault:"₽"`

	SentryDSN              string  `env:"SENTRY_DSN" validate:"omitempty,url"`
	SentryEnvironment      string  `env:"SENTRY_ENVIRONMENT" envDefault:"development"`
	SentryTracesSampleRate float64 `env:"SENTRY_TRACES_SAMPLE_RATE" envDefault:"0.2" validate:"gte=0,lte=1"`

	LogLevel  slog.Level `env:"LOG_LEVEL" envDefault:"INFO"`
	LogFormat string     `env:"LOG_FORMAT" envDefault:"text" validate:"omitempty,oneof=text json"`
	LogFile   string     `env:"LOG_FILE"`
	Port      string     `env:"PORT" envDefault:"8080"`
}

var configValidator = validator.New()

func Load() (*Config, error) {
	var cfg Config

	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// EmailEnabled reports whether new orders are emailed to the manager.
func (c *Config) EmailEnabled() bool {
	return strings.TrimSpace(c.EmailProvider) != ""
}

func (c *Config) validate() error {
	if err := configValidator.Struct(c); err != nil {
		return err
	}

	if c.EmailEnabled() {
		if strings.TrimSpace(c.EmailAPIKey) == "" {
			return fmt.Errorf("EMAIL_API_KEY is required when EMAIL_PROVIDER is set")
		}
		if _, err := mail.ParseAddress(c.EmailFrom); err != nil {
			return fmt.Errorf("EMAIL_FROM must be a valid address when EMAIL_PROVIDER is set")
		}
		if _, err := mail.ParseAddress(c.OrderNotifyEmail); err != nil {
			return fmt.Errorf("ORDER_NOTIFY_EMAIL must be a valid address when EMAIL_PROVIDER is set")
		}
		if c.EmailProvider == "mailgun" && strings.TrimSpace(c.EmailDomain) == "" {
			return fmt.Errorf("EMAIL_DOMAIN is required for mailgun")
		}
	}

	for _, origin := range c.AllowedOrigins {
		origin = strings.TrimSpace(origin)
		if origin == "*" {
			continue
		}
		parsed, err := url.Parse(origin)
		if err != nil || parsed.Hostname() == "" || parsed.Path != "" {
			return fmt.Errorf("ALLOWED_ORIGINS entry %q must be an origin such as https://shop.example.com", origin)
		}
		if !isLocalHost(parsed.Hostname()) && !strings.EqualFold(parsed.Scheme, "https") {
			return fmt.Errorf("ALLOWED_ORIGINS entry %q must use https outside local development", origin)
		}
	}

	return nil
}

func isLocalHost(host string) bool {
	switch strings.ToLower(strings.TrimSpace(host)) {
	case "localhost", "127.0.0.1", "::1":
		return true
	default:
		return false
	}
}
