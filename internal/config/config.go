// Package config loads the application's runtime configuration from the
// environment (and an optional .env file) into a typed, nested struct using
// viper, following the same load/validate pattern used throughout the
// platform layer.
package config

import (
	"fmt"
	"log"
	"strings"

	"github.com/spf13/viper"
)

// DatabaseConfig holds Postgres connection settings.
type DatabaseConfig struct {
	URL      string `mapstructure:"url"`
	MaxConns int32  `mapstructure:"max_conns"`
	MinConns int32  `mapstructure:"min_conns"`
}

// RedisConfig holds the Redis connection used by the rate limiter (C8) and
// progress tracker (C9).
type RedisConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	DB   int    `mapstructure:"db"`
}

func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// LocationConfig configures the external place-details/nearby-search API
// consumed by the Location Resolver (C4) and Nearby-Locations Resolver (C5).
type LocationConfig struct {
	Host   string `mapstructure:"host"`
	APIKey string `mapstructure:"api_key"`
}

// EmailConfig configures the outbound mail-service client consumed by the
// Notification Dispatcher (C10).
type EmailConfig struct {
	Host           string `mapstructure:"host"`
	AuthToken      string `mapstructure:"auth_token"`
	TemplateID     string `mapstructure:"template_id"`
	AddressToAlert string `mapstructure:"address_to_alert"`
}

// ExternalAPIRateLimits holds the per-second refill rate the tokenizer (C8)
// writes into each bucket. Rates below 1 are interpreted as "1 token every
// 1/rate seconds" by the tokenizer.
type ExternalAPIRateLimits struct {
	Location float64 `mapstructure:"location"`
	Email    float64 `mapstructure:"email"`
}

// KafkaConfig configures the task queue's (C7) broker connection.
type KafkaConfig struct {
	Brokers []string `mapstructure:"brokers"`
}

// SourceConfig configures the Source Registry's (C2) bulletin-listing scrape.
type SourceConfig struct {
	ListingURL string `mapstructure:"listing_url"`
}

// AuthConfig configures JWT verification for the HTTP API.
type AuthConfig struct {
	JWKS        string   `mapstructure:"jwks"`
	Authorities []string `mapstructure:"authorities"`
	Audiences   []string `mapstructure:"audiences"`
	Issuer      string   `mapstructure:"issuer"`
}

// SearchEngineConfig configures the external text-search API used by the
// SearchLocationsByText cache-warming task.
type SearchEngineConfig struct {
	Host           string `mapstructure:"host"`
	ApplicationKey string `mapstructure:"application_key"`
	APIKey         string `mapstructure:"api_key"`
}

// Config is the application's complete runtime configuration, loaded from
// environment variables prefixed APP, with nested keys separated by "__"
// (e.g. APP_DATABASE__URL, APP_EXTERNAL_API_RATE_LIMITS__LOCATION).
type Config struct {
	Port string `mapstructure:"port"`
	Env  string `mapstructure:"env"`

	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`

	Location LocationConfig `mapstructure:"location"`
	Email    EmailConfig    `mapstructure:"email"`

	ExternalAPIRateLimits ExternalAPIRateLimits `mapstructure:"external_api_rate_limits"`

	Auth AuthConfig `mapstructure:"auth"`

	Kafka KafkaConfig `mapstructure:"kafka"`

	Source SourceConfig `mapstructure:"source"`

	SearchEngine SearchEngineConfig `mapstructure:"search_engine"`

	CORSOrigins []string `mapstructure:"cors_origins"`

	MigrationsDir string `mapstructure:"migrations_dir"`
}

// Load reads configuration from environment variables (prefixed APP_, with
// "__" as the nested-key separator) and an optional .env file, applying
// defaults for everything that isn't required.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "__"))
	v.AutomaticEnv()

	v.SetDefault("port", "8000")
	v.SetDefault("env", "development")
	v.SetDefault("database.max_conns", 20)
	v.SetDefault("database.min_conns", 5)
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.db", 0)
	v.SetDefault("email.template_id", "power-interruption-notice")
	v.SetDefault("external_api_rate_limits.location", 10)
	v.SetDefault("external_api_rate_limits.email", 5)
	v.SetDefault("cors_origins", "http://localhost:3000")
	v.SetDefault("migrations_dir", "migrations")
	v.SetDefault("kafka.brokers", "localhost:9092")
	v.SetDefault("source.listing_url", "https://www.kplc.co.ke/category/view/50/planned-power-interruptions")

	for _, key := range []string{
		"port", "env",
		"database.url", "database.max_conns", "database.min_conns",
		"redis.host", "redis.port", "redis.db",
		"location.host", "location.api_key",
		"email.host", "email.auth_token", "email.template_id", "email.address_to_alert",
		"external_api_rate_limits.location", "external_api_rate_limits.email",
		"auth.jwks", "auth.authorities", "auth.audiences", "auth.issuer",
		"search_engine.host", "search_engine.application_key", "search_engine.api_key",
		"cors_origins", "migrations_dir", "kafka.brokers", "source.listing_url",
	} {
		_ = v.BindEnv(key)
	}

	// Try reading .env file, but don't fail if missing.
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if len(cfg.CORSOrigins) == 1 && strings.Contains(cfg.CORSOrigins[0], ",") {
		cfg.CORSOrigins = strings.Split(cfg.CORSOrigins[0], ",")
	}
	if len(cfg.Kafka.Brokers) == 1 && strings.Contains(cfg.Kafka.Brokers[0], ",") {
		cfg.Kafka.Brokers = strings.Split(cfg.Kafka.Brokers[0], ",")
	}
	if len(cfg.Auth.Authorities) == 1 && strings.Contains(cfg.Auth.Authorities[0], ",") {
		cfg.Auth.Authorities = strings.Split(cfg.Auth.Authorities[0], ",")
	}
	if len(cfg.Auth.Audiences) == 1 && strings.Contains(cfg.Auth.Audiences[0], ",") {
		cfg.Auth.Audiences = strings.Split(cfg.Auth.Audiences[0], ",")
	}

	if cfg.Database.URL == "" {
		return nil, fmt.Errorf("APP_DATABASE__URL is required")
	}

	if cfg.IsDev() {
		log.Println("WARNING: ============================================================")
		log.Println("WARNING: Server is running in DEVELOPMENT mode (APP_ENV=development).")
		log.Println("WARNING: DevAuthMiddleware is active - all requests get subscriber access.")
		log.Println("WARNING: Do NOT use this configuration in production.")
		log.Println("WARNING: ============================================================")
	}

	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// IsProduction returns true when the server is configured for production mode.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Validate checks that the configuration is safe to run. Outside of
// development mode, the auth and external API integrations this service
// depends on must be fully configured.
func (c *Config) Validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("APP_DATABASE__URL is required")
	}

	if c.IsDev() {
		return nil
	}

	if c.Auth.JWKS == "" {
		return fmt.Errorf("APP_AUTH__JWKS is required outside development mode")
	}
	if len(c.Auth.Audiences) == 0 {
		return fmt.Errorf("APP_AUTH__AUDIENCES is required outside development mode")
	}
	if c.Location.Host == "" || c.Location.APIKey == "" {
		return fmt.Errorf("APP_LOCATION__HOST and APP_LOCATION__API_KEY are required outside development mode")
	}
	if c.Email.Host == "" || c.Email.AuthToken == "" {
		return fmt.Errorf("APP_EMAIL__HOST and APP_EMAIL__AUTH_TOKEN are required outside development mode")
	}
	if c.ExternalAPIRateLimits.Location <= 0 || c.ExternalAPIRateLimits.Email <= 0 {
		return fmt.Errorf("external_api_rate_limits.location and .email must be positive")
	}

	return nil
}
