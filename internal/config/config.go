package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Cache backends accepted by CACHE_BACKEND.
const (
	CacheBackendMemory = "memory"
	CacheBackendRedis  = "redis"
)

// Config holds all configuration for the application.
type Config struct {
	Port                             string `mapstructure:"PORT"`
	GinMode                          string `mapstructure:"GIN_MODE"`
	FirebaseProjectID                string `mapstructure:"FIREBASE_PROJECT_ID"`
	GoogleApplicationCredentials     string `mapstructure:"GOOGLE_APPLICATION_CREDENTIALS"`
	FirebaseServiceAccountJSONBase64 string `mapstructure:"FIREBASE_SERVICE_ACCOUNT_JSON_BASE64"`
	ClientURL                        string `mapstructure:"CLIENT_URL"`

	MercadoPagoAccessToken   string `mapstructure:"MERCADOPAGO_ACCESS_TOKEN"`
	MercadoPagoWebhookSecret string `mapstructure:"MERCADOPAGO_WEBHOOK_SECRET"`
	MercadoPagoBaseURL       string `mapstructure:"MERCADOPAGO_BASE_URL"`
	MercadoPagoBackURL       string `mapstructure:"MERCADOPAGO_BACK_URL"`

	CacheBackend      string        `mapstructure:"CACHE_BACKEND"`
	CacheMaxCostBytes int64         `mapstructure:"CACHE_MAX_COST_BYTES"`
	ProductCacheTTL   time.Duration `mapstructure:"PRODUCT_CACHE_TTL"`
	RedisAddress      string        `mapstructure:"REDIS_ADDRESS"`
	RedisPassword     string        `mapstructure:"REDIS_PASSWORD"`
	RedisDB           int           `mapstructure:"REDIS_DB"`

	RabbitMQURL string `mapstructure:"RABBITMQ_URL"`
	EventsQueue string `mapstructure:"EVENTS_QUEUE"`

	SMTPHost   string `mapstructure:"SMTP_HOST"`
	SMTPPort   string `mapstructure:"SMTP_PORT"`
	SMTPUser   string `mapstructure:"SMTP_USER"`
	SMTPPass   string `mapstructure:"SMTP_PASS"`
	MailSender string `mapstructure:"MAIL_SENDER"`
}

var keys = []string{
	"PORT", "GIN_MODE", "FIREBASE_PROJECT_ID", "GOOGLE_APPLICATION_CREDENTIALS",
	"FIREBASE_SERVICE_ACCOUNT_JSON_BASE64", "CLIENT_URL",
	"MERCADOPAGO_ACCESS_TOKEN", "MERCADOPAGO_WEBHOOK_SECRET", "MERCADOPAGO_BASE_URL", "MERCADOPAGO_BACK_URL",
	"CACHE_BACKEND", "CACHE_MAX_COST_BYTES", "PRODUCT_CACHE_TTL", "REDIS_ADDRESS", "REDIS_PASSWORD", "REDIS_DB",
	"RABBITMQ_URL", "EVENTS_QUEUE",
	"SMTP_HOST", "SMTP_PORT", "SMTP_USER", "SMTP_PASS", "MAIL_SENDER",
}

// LoadConfig loads configuration from environment variables and, when CONFIG_PATH is set,
// from that YAML file. Environment variables win over the file.
func LoadConfig() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("PORT", "8080")
	v.SetDefault("GIN_MODE", "debug")
	v.SetDefault("MERCADOPAGO_BASE_URL", "https://api.mercadopago.com")
	v.SetDefault("CACHE_BACKEND", CacheBackendMemory)
	v.SetDefault("CACHE_MAX_COST_BYTES", int64(64<<20))
	v.SetDefault("PRODUCT_CACHE_TTL", 5*time.Minute)
	v.SetDefault("EVENTS_QUEUE", "storefront.events")
	v.SetDefault("SMTP_PORT", "587")

	for _, key := range keys {
		_ = v.BindEnv(key)
	}

	if path := v.GetString("CONFIG_PATH"); path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %q: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.New("failed to unmarshal config: " + err.Error())
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.FirebaseProjectID == "" {
		return errors.New("FIREBASE_PROJECT_ID is required")
	}
	switch c.CacheBackend {
	case CacheBackendMemory:
	case CacheBackendRedis:
		if c.RedisAddress == "" {
			return errors.New("REDIS_ADDRESS is required when CACHE_BACKEND is redis")
		}
	default:
		return fmt.Errorf("CACHE_BACKEND must be %q or %q, got %q", CacheBackendMemory, CacheBackendRedis, c.CacheBackend)
	}
	if c.ProductCacheTTL <= 0 {
		return errors.New("PRODUCT_CACHE_TTL must be positive")
	}
	return nil
}

// ValidateServer checks the settings only the HTTP server needs.
func (c *Config) ValidateServer() error {
	if c.ClientURL == "" {
		return errors.New("CLIENT_URL is required")
	}
	if c.MercadoPagoAccessToken == "" {
		return errors.New("MERCADOPAGO_ACCESS_TOKEN is required")
	}
	return nil
}

// IsRelease reports whether the server runs in gin release mode.
func (c *Config) IsRelease() bool {
	return strings.EqualFold(c.GinMode, "release")
}

// MailEnabled reports whether SMTP notification settings are complete.
func (c *Config) MailEnabled() bool {
	return c.SMTPHost != "" && c.SMTPUser != "" && c.SMTPPass != "" && c.MailSender != ""
}
